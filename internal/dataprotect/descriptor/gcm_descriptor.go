package descriptor

import (
	"encoding/base64"
	"encoding/xml"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
	"github.com/allisson/dataprotect/internal/dataprotect/cipherset"
	"github.com/allisson/dataprotect/internal/dataprotect/secret"
)

// GCMDescriptor is the durable configuration of a GCM encryptor.
type GCMDescriptor struct {
	EncryptionAlgorithm cipherset.EncryptionAlgorithm
	MasterKey           *secret.Secret
}

// NewEncryptor builds the GCMEncryptor this descriptor configures.
func (d *GCMDescriptor) NewEncryptor() (cipherset.Encryptor, error) {
	return cipherset.NewGCMEncryptor(d.MasterKey, d.EncryptionAlgorithm)
}

// Serialize renders the descriptor to its XML wire form.
func (d *GCMDescriptor) Serialize() ([]byte, error) {
	masterBuf := make([]byte, d.MasterKey.Len())
	if err := d.MasterKey.WriteInto(masterBuf); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "descriptor: failed to read master key")
	}
	defer secret.Zero(masterBuf)

	wire := gcmDescriptorXML{
		DeserializerType: GCMDeserializerTypeFQN,
		Encryption:       algAttrXML{Algorithm: string(d.EncryptionAlgorithm)},
		MasterKey: masterKeyXML{
			RequiresEncryption: requiresEncryptionAttr,
			Value:              base64.StdEncoding.EncodeToString(masterBuf),
		},
	}

	out, err := xml.Marshal(wire)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "descriptor: failed to marshal GCM descriptor")
	}
	return out, nil
}

// GCMDeserializer recreates GCMDescriptor values from XML. It is pure: no I/O.
type GCMDeserializer struct{}

// Deserialize implements Deserializer.
func (GCMDeserializer) Deserialize(xmlBytes []byte) (Descriptor, error) {
	var wire gcmDescriptorXML
	if err := xml.Unmarshal(xmlBytes, &wire); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "descriptor: malformed GCM descriptor XML")
	}

	encAlg := cipherset.EncryptionAlgorithm(wire.Encryption.Algorithm)

	raw, err := base64.StdEncoding.DecodeString(wire.MasterKey.Value)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "descriptor: invalid master key base64")
	}

	return &GCMDescriptor{
		EncryptionAlgorithm: encAlg,
		MasterKey:           secret.FromBytes(raw),
	}, nil
}
