// Package cipherset implements the two authenticated-encryptor variants:
// CBC-then-HMAC and GCM. Both derive per-message sub-keys from a master
// secret and an AAD-bound context via kdf.Derive, then encrypt+authenticate
// with the standard library's crypto/aes and crypto/cipher. Every failure
// path collapses to apperrors.ErrCryptographic so no decryption oracle
// leaks through error detail.
package cipherset

import "github.com/allisson/dataprotect/internal/dataprotect/apperrors"

// EncryptionAlgorithm is one of the closed set of supported encryption
// algorithm identifiers.
type EncryptionAlgorithm string

// ValidationAlgorithm is one of the closed set of CBC-only MAC algorithm
// identifiers.
type ValidationAlgorithm string

const (
	AES128CBC EncryptionAlgorithm = "AES_128_CBC"
	AES192CBC EncryptionAlgorithm = "AES_192_CBC"
	AES256CBC EncryptionAlgorithm = "AES_256_CBC"
	AES128GCM EncryptionAlgorithm = "AES_128_GCM"
	AES192GCM EncryptionAlgorithm = "AES_192_GCM"
	AES256GCM EncryptionAlgorithm = "AES_256_GCM"
)

const (
	HMACSHA256 ValidationAlgorithm = "HMACSHA256"
	HMACSHA512 ValidationAlgorithm = "HMACSHA512"
)

// keySize returns the AES key size in bytes for a CBC or GCM encryption
// algorithm, or an error if alg is not in the closed set.
func keySize(alg EncryptionAlgorithm) (int, error) {
	switch alg {
	case AES128CBC, AES128GCM:
		return 16, nil
	case AES192CBC, AES192GCM:
		return 24, nil
	case AES256CBC, AES256GCM:
		return 32, nil
	default:
		return 0, apperrors.Wrap(apperrors.ErrConfiguration, "cipherset: unsupported encryption algorithm")
	}
}

// macSize returns the HMAC tag size in bytes for a validation algorithm, or
// an error if alg is not in the closed set.
func macSize(alg ValidationAlgorithm) (int, error) {
	switch alg {
	case HMACSHA256:
		return 32, nil
	case HMACSHA512:
		return 64, nil
	default:
		return 0, apperrors.Wrap(apperrors.ErrConfiguration, "cipherset: unsupported validation algorithm")
	}
}

// Encryptor is the per-message authenticated encryption contract shared by
// the CBC-then-HMAC and GCM variants. aad is bound into the integrity tag but
// never encrypted.
type Encryptor interface {
	// Encrypt returns the variant-specific body (everything in the wire
	// format after magic_header||key_id).
	Encrypt(plaintext, aad []byte) ([]byte, error)

	// Decrypt reverses Encrypt. Any failure (bad tag, truncated body, wrong
	// key) is reported as apperrors.ErrCryptographic.
	Decrypt(body, aad []byte) ([]byte, error)
}
