package descriptor

import (
	"encoding/xml"
	"sync"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
)

// descriptorTypeProbe reads only the `deserializerType` attribute from a
// `<descriptor>` element, so the registry can dispatch before committing to
// a concrete wire shape.
type descriptorTypeProbe struct {
	XMLName          xml.Name `xml:"descriptor"`
	DeserializerType string   `xml:"deserializerType,attr"`
}

// Registry dispatches a persisted `deserializerType` tag string to the
// Deserializer that understands it: a closed, auditable map rather than
// runtime type-name reflection.
type Registry struct {
	mu            sync.RWMutex
	deserializers map[string]Deserializer
}

// NewRegistry builds a Registry pre-populated with the built-in CBC and GCM
// deserializers.
func NewRegistry() *Registry {
	r := &Registry{deserializers: make(map[string]Deserializer)}
	r.Register(CBCDeserializerTypeFQN, CBCDeserializer{})
	r.Register(GCMDeserializerTypeFQN, GCMDeserializer{})
	return r
}

// Register adds or replaces the deserializer for a given tag string.
func (r *Registry) Register(deserializerType string, d Deserializer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deserializers[deserializerType] = d
}

// Deserialize reads the `deserializerType` attribute out of xmlBytes and
// dispatches to the registered Deserializer.
func (r *Registry) Deserialize(xmlBytes []byte) (Descriptor, error) {
	var probe descriptorTypeProbe
	if err := xml.Unmarshal(xmlBytes, &probe); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "descriptor: malformed descriptor XML")
	}

	r.mu.RLock()
	d, ok := r.deserializers[probe.DeserializerType]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.Wrapf(
			apperrors.ErrConfiguration,
			"descriptor: no deserializer registered for type %q",
			probe.DeserializerType,
		)
	}

	return d.Deserialize(xmlBytes)
}
