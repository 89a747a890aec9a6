package descriptor

import (
	"encoding/base64"
	"encoding/xml"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
	"github.com/allisson/dataprotect/internal/dataprotect/cipherset"
	"github.com/allisson/dataprotect/internal/dataprotect/secret"
)

// CBCDescriptor is the durable configuration of a CBC-then-HMAC encryptor.
type CBCDescriptor struct {
	EncryptionAlgorithm cipherset.EncryptionAlgorithm
	ValidationAlgorithm cipherset.ValidationAlgorithm
	MasterKey           *secret.Secret
}

// NewEncryptor builds the CBCEncryptor this descriptor configures.
func (d *CBCDescriptor) NewEncryptor() (cipherset.Encryptor, error) {
	return cipherset.NewCBCEncryptor(d.MasterKey, d.EncryptionAlgorithm, d.ValidationAlgorithm)
}

// Serialize renders the descriptor to its XML wire form.
func (d *CBCDescriptor) Serialize() ([]byte, error) {
	masterBuf := make([]byte, d.MasterKey.Len())
	if err := d.MasterKey.WriteInto(masterBuf); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "descriptor: failed to read master key")
	}
	defer secret.Zero(masterBuf)

	wire := cbcDescriptorXML{
		DeserializerType: CBCDeserializerTypeFQN,
		Encryption:       algAttrXML{Algorithm: string(d.EncryptionAlgorithm)},
		Validation:       algAttrXML{Algorithm: string(d.ValidationAlgorithm)},
		MasterKey: masterKeyXML{
			RequiresEncryption: requiresEncryptionAttr,
			Value:              base64.StdEncoding.EncodeToString(masterBuf),
		},
	}

	out, err := xml.Marshal(wire)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "descriptor: failed to marshal CBC descriptor")
	}
	return out, nil
}

// CBCDeserializer recreates CBCDescriptor values from XML. It is pure: no I/O.
type CBCDeserializer struct{}

// Deserialize implements Deserializer.
func (CBCDeserializer) Deserialize(xmlBytes []byte) (Descriptor, error) {
	var wire cbcDescriptorXML
	if err := xml.Unmarshal(xmlBytes, &wire); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "descriptor: malformed CBC descriptor XML")
	}

	encAlg := cipherset.EncryptionAlgorithm(wire.Encryption.Algorithm)
	macAlg := cipherset.ValidationAlgorithm(wire.Validation.Algorithm)

	raw, err := base64.StdEncoding.DecodeString(wire.MasterKey.Value)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "descriptor: invalid master key base64")
	}

	return &CBCDescriptor{
		EncryptionAlgorithm: encAlg,
		ValidationAlgorithm: macAlg,
		MasterKey:           secret.FromBytes(raw),
	}, nil
}
