// Package xmlenc implements the at-rest encryption contract: any XML
// sub-tree the key manager marks `requires-encryption="true"` is passed
// through an XMLEncryptor before it is persisted, and through the matching
// XMLDecryptor before descriptor deserialization on read.
package xmlenc

import (
	"context"
)

// XMLEncryptor encrypts a plaintext XML element for storage, returning the
// replacement element and the fully-qualified name of the XMLDecryptor that
// can reverse it.
type XMLEncryptor interface {
	Encrypt(ctx context.Context, plaintextElement []byte) (encryptedElement []byte, decryptorTypeFQN string, err error)
}

// XMLDecryptor reverses an XMLEncryptor's transform.
type XMLDecryptor interface {
	Decrypt(ctx context.Context, encryptedElement []byte) (plaintextElement []byte, err error)
}
