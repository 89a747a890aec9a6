package cipherset

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
	"github.com/allisson/dataprotect/internal/dataprotect/kdf"
	"github.com/allisson/dataprotect/internal/dataprotect/secret"
)

const gcmNonceSize = 12

// GCMEncryptor implements the GCM authenticated encryptor: a
// per-message sub-key is derived from the master secret, and AES-GCM
// provides both confidentiality and a 16-byte authentication tag. Unlike the
// CBC variant, GCM carries no separate MAC key; the cipher itself
// authenticates.
type GCMEncryptor struct {
	encAlg EncryptionAlgorithm
	master *secret.Secret

	encKeyLen int
}

// NewGCMEncryptor builds a GCM encryptor from a master secret of at least 512
// bits and the AES key size implied by encAlg.
func NewGCMEncryptor(master *secret.Secret, encAlg EncryptionAlgorithm) (*GCMEncryptor, error) {
	if master.Len()*8 < 512 {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "cipherset: master secret must be at least 512 bits")
	}

	encKeyLen, err := keySize(encAlg)
	if err != nil {
		return nil, err
	}

	return &GCMEncryptor{encAlg: encAlg, master: master, encKeyLen: encKeyLen}, nil
}

func (g *GCMEncryptor) deriveSubKey(aad, keyModifier, nonce []byte) ([]byte, error) {
	masterBuf := make([]byte, g.master.Len())
	if err := g.master.WriteInto(masterBuf); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: failed to read master secret")
	}
	defer secret.Zero(masterBuf)

	context := make([]byte, 0, len(keyModifier)+len(nonce))
	context = append(context, keyModifier...)
	context = append(context, nonce...)

	encKey, err := kdf.Derive(masterBuf, aad, context, g.encKeyLen)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: kdf derivation failed")
	}
	return encKey, nil
}

// Encrypt derives a per-message key, then seals with it. AES-GCM's own aad parameter is left
// empty; the purpose-chain AAD is instead bound in as the KDF label,
// matching the CBC variant's binding strategy.
func (g *GCMEncryptor) Encrypt(plaintext, aad []byte) ([]byte, error) {
	keyModifier := make([]byte, keyModifierSize)
	if _, err := rand.Read(keyModifier); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: failed to sample key modifier")
	}
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: failed to sample nonce")
	}

	encKey, err := g.deriveSubKey(aad, keyModifier, nonce)
	if err != nil {
		return nil, err
	}
	defer secret.Zero(encKey)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: failed to create AES cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: failed to create GCM")
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(keyModifier)+len(nonce)+len(sealed))
	out = append(out, keyModifier...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// Decrypt reverses Encrypt. AES-GCM's own integrity check surfaces as the
// same generic apperrors.ErrCryptographic.
func (g *GCMEncryptor) Decrypt(body, aad []byte) ([]byte, error) {
	minLen := keyModifierSize + gcmNonceSize + 16 // 16 = GCM tag size
	if len(body) < minLen {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: truncated payload")
	}

	keyModifier := body[:keyModifierSize]
	nonce := body[keyModifierSize : keyModifierSize+gcmNonceSize]
	sealed := body[keyModifierSize+gcmNonceSize:]

	encKey, err := g.deriveSubKey(aad, keyModifier, nonce)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: decryption failed")
	}
	defer secret.Zero(encKey)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: decryption failed")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: decryption failed")
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: tag mismatch")
	}

	return plaintext, nil
}
