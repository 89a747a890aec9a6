package xmlenc

import "context"

// NoOpDeserializerTypeFQN is the decryptorTypeFQN NoOpEncryptor emits.
const NoOpDeserializerTypeFQN = "dataprotect.xmlenc.NoOpXmlDecryptor"

// NoOpEncryptor/NoOpDecryptor pass the element through unchanged. This is
// the default when no DATAPROTECT_KMS_KEY_URI is configured: descriptors still carry
// `requires-encryption="true"`, but nothing is encrypting the repository at
// rest, so the element is left as-is rather than silently dropping the
// requirement.
type NoOpEncryptor struct{}

// Encrypt implements XMLEncryptor as an identity transform.
func (NoOpEncryptor) Encrypt(_ context.Context, plaintextElement []byte) ([]byte, string, error) {
	return plaintextElement, NoOpDeserializerTypeFQN, nil
}

// NoOpDecryptor implements XMLDecryptor as an identity transform.
type NoOpDecryptor struct{}

// Decrypt implements XMLDecryptor as an identity transform.
func (NoOpDecryptor) Decrypt(_ context.Context, encryptedElement []byte) ([]byte, error) {
	return encryptedElement, nil
}
