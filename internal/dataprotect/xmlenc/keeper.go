package xmlenc

import (
	"context"
	"encoding/base64"
	"encoding/xml"

	"gocloud.dev/secrets"

	// Register KMS provider drivers so keyURI values of each scheme resolve.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
)

// KeeperDeserializerTypeFQN is the decryptorTypeFQN a KeeperEncryptor emits;
// it names KeeperDecryptor as the XMLDecryptor that reverses the transform.
const KeeperDeserializerTypeFQN = "dataprotect.xmlenc.KeeperXmlDecryptor"

type encryptedElementXML struct {
	XMLName          xml.Name `xml:"encryptedData"`
	DecryptorType    string   `xml:"decryptorType,attr"`
	CiphertextBase64 string   `xml:",chardata"`
}

// KeeperEncryptor/KeeperDecryptor encrypt at-rest descriptor sub-trees
// through a gocloud.dev/secrets.Keeper: one interface, any of the
// registered KMS backends behind it.
type KeeperEncryptor struct {
	keeper *secrets.Keeper
}

// NewKeeperEncryptor wraps an already-open Keeper. Callers own the Keeper's
// lifecycle (including Close).
func NewKeeperEncryptor(keeper *secrets.Keeper) *KeeperEncryptor {
	return &KeeperEncryptor{keeper: keeper}
}

// Encrypt implements XMLEncryptor.
func (e *KeeperEncryptor) Encrypt(ctx context.Context, plaintextElement []byte) ([]byte, string, error) {
	ciphertext, err := e.keeper.Encrypt(ctx, plaintextElement)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrRepository, "xmlenc: keeper encrypt failed")
	}

	wire := encryptedElementXML{
		DecryptorType:    KeeperDeserializerTypeFQN,
		CiphertextBase64: base64.StdEncoding.EncodeToString(ciphertext),
	}
	out, err := xml.Marshal(wire)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrRepository, "xmlenc: failed to marshal encrypted element")
	}
	return out, KeeperDeserializerTypeFQN, nil
}

// KeeperDecryptor reverses KeeperEncryptor.
type KeeperDecryptor struct {
	keeper *secrets.Keeper
}

// NewKeeperDecryptor wraps an already-open Keeper.
func NewKeeperDecryptor(keeper *secrets.Keeper) *KeeperDecryptor {
	return &KeeperDecryptor{keeper: keeper}
}

// Decrypt implements XMLDecryptor.
func (d *KeeperDecryptor) Decrypt(ctx context.Context, encryptedElement []byte) ([]byte, error) {
	var wire encryptedElementXML
	if err := xml.Unmarshal(encryptedElement, &wire); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "xmlenc: malformed encrypted element")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(wire.CiphertextBase64)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "xmlenc: invalid ciphertext base64")
	}

	plaintext, err := d.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRepository, "xmlenc: keeper decrypt failed")
	}
	return plaintext, nil
}
