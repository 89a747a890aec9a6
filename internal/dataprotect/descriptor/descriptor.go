// Package descriptor implements the durable configuration of an encryptor
// (algorithm identifiers plus a master secret) and its XML (de)serialization.
// Deserializers are pure: XML bytes in, Descriptor out; they
// never touch I/O. Dispatch from a
// persisted `deserializerType` string to the matching deserializer is a
// closed registry, not runtime type-name reflection.
package descriptor

import (
	"github.com/allisson/dataprotect/internal/dataprotect/cipherset"
)

// Descriptor is the durable configuration of one authenticated encryptor
// variant. It is serialized to XML for persistence and, on
// demand, instantiates the live cipherset.Encryptor it describes.
type Descriptor interface {
	// NewEncryptor builds the cipherset.Encryptor this descriptor describes.
	NewEncryptor() (cipherset.Encryptor, error)

	// Serialize renders the descriptor as the `<descriptor>` XML element
	// defined in xml_schema.go, including the `deserializerType` attribute the
	// registry uses to dispatch on read.
	Serialize() ([]byte, error)
}

// Deserializer recreates a Descriptor from previously-serialized XML bytes.
// Implementations are pure functions of their input: no I/O, no global state.
type Deserializer interface {
	Deserialize(xmlBytes []byte) (Descriptor, error)
}
