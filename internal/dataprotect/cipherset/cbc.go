package cipherset

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"hash"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
	"github.com/allisson/dataprotect/internal/dataprotect/kdf"
	"github.com/allisson/dataprotect/internal/dataprotect/secret"
)

const (
	keyModifierSize = 16
	ivSize          = 16
)

// CBCEncryptor implements the CBC-then-HMAC authenticated encryptor:
// AES-CBC with PKCS7 padding for confidentiality, an HMAC over
// key_modifier||iv||ciphertext for integrity, with both sub-keys derived
// per-message from the descriptor's master secret.
type CBCEncryptor struct {
	encAlg EncryptionAlgorithm
	macAlg ValidationAlgorithm
	master *secret.Secret

	encKeyLen int
	macKeyLen int
	tagLen    int
	newHash   func() hash.Hash
}

// NewCBCEncryptor builds a CBC-then-HMAC encryptor from a master secret of at
// least 512 bits, the AES key size implied by
// encAlg, and the MAC algorithm's tag size.
func NewCBCEncryptor(master *secret.Secret, encAlg EncryptionAlgorithm, macAlg ValidationAlgorithm) (*CBCEncryptor, error) {
	if master.Len()*8 < 512 {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "cipherset: master secret must be at least 512 bits")
	}

	encKeyLen, err := keySize(encAlg)
	if err != nil {
		return nil, err
	}
	tagLen, err := macSize(macAlg)
	if err != nil {
		return nil, err
	}

	var newHash func() hash.Hash
	var macKeyLen int
	switch macAlg {
	case HMACSHA256:
		newHash = sha256.New
		macKeyLen = 32
	case HMACSHA512:
		newHash = sha512.New
		macKeyLen = 64
	}

	return &CBCEncryptor{
		encAlg:    encAlg,
		macAlg:    macAlg,
		master:    master,
		encKeyLen: encKeyLen,
		macKeyLen: macKeyLen,
		tagLen:    tagLen,
		newHash:   newHash,
	}, nil
}

// deriveSubKeys runs the SP800-108 KDF over the master secret with
// label=aad, context=keyModifier||iv, producing encKeyLen+macKeyLen bytes
// split into the per-message AES key and HMAC key.
func (c *CBCEncryptor) deriveSubKeys(aad, keyModifier, iv []byte) (encKey, macKey []byte, err error) {
	masterBuf := make([]byte, c.master.Len())
	if err := c.master.WriteInto(masterBuf); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: failed to read master secret")
	}
	defer secret.Zero(masterBuf)

	context := make([]byte, 0, len(keyModifier)+len(iv))
	context = append(context, keyModifier...)
	context = append(context, iv...)

	derived, err := kdf.Derive(masterBuf, aad, context, c.encKeyLen+c.macKeyLen)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: kdf derivation failed")
	}

	encKey = derived[:c.encKeyLen]
	macKey = derived[c.encKeyLen:]
	return encKey, macKey, nil
}

// pkcs7Pad pads buf to a multiple of blockSize per PKCS7.
func pkcs7Pad(buf []byte, blockSize int) []byte {
	padLen := blockSize - len(buf)%blockSize
	padded := make([]byte, len(buf)+padLen)
	copy(padded, buf)
	for i := len(buf); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad removes and validates PKCS7 padding. Returns an error on any
// malformed padding so callers treat it the same as any other authentication
// failure.
func pkcs7Unpad(buf []byte, blockSize int) ([]byte, error) {
	if len(buf) == 0 || len(buf)%blockSize != 0 {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: invalid padded length")
	}
	padLen := int(buf[len(buf)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(buf) {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: invalid padding")
	}
	for _, b := range buf[len(buf)-padLen:] {
		if int(b) != padLen {
			return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: invalid padding")
		}
	}
	return buf[:len(buf)-padLen], nil
}

// Encrypt implements the per-message encrypt-then-MAC protocol.
func (c *CBCEncryptor) Encrypt(plaintext, aad []byte) ([]byte, error) {
	keyModifier := make([]byte, keyModifierSize)
	if _, err := rand.Read(keyModifier); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: failed to sample key modifier")
	}
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: failed to sample iv")
	}

	encKey, macKey, err := c.deriveSubKeys(aad, keyModifier, iv)
	if err != nil {
		return nil, err
	}
	defer func() {
		secret.Zero(encKey)
		secret.Zero(macKey)
	}()

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: failed to create AES cipher")
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	mac := hmac.New(c.newHash, macKey)
	mac.Write(keyModifier)
	mac.Write(iv)
	mac.Write(ciphertext)
	tag := mac.Sum(nil)

	out := make([]byte, 0, len(keyModifier)+len(iv)+len(ciphertext)+len(tag))
	out = append(out, keyModifier...)
	out = append(out, iv...)
	out = append(out, ciphertext...)
	out = append(out, tag...)
	return out, nil
}

// Decrypt reverses Encrypt: re-derive sub-keys from
// key_modifier||iv, verify the tag in constant time, then decrypt. Any
// failure collapses to apperrors.ErrCryptographic to avoid oracles.
func (c *CBCEncryptor) Decrypt(body, aad []byte) ([]byte, error) {
	minLen := keyModifierSize + ivSize + c.tagLen
	if len(body) < minLen {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: truncated payload")
	}

	keyModifier := body[:keyModifierSize]
	iv := body[keyModifierSize : keyModifierSize+ivSize]
	ciphertext := body[keyModifierSize+ivSize : len(body)-c.tagLen]
	tag := body[len(body)-c.tagLen:]

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: malformed ciphertext length")
	}

	encKey, macKey, err := c.deriveSubKeys(aad, keyModifier, iv)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: decryption failed")
	}
	defer func() {
		secret.Zero(encKey)
		secret.Zero(macKey)
	}()

	mac := hmac.New(c.newHash, macKey)
	mac.Write(keyModifier)
	mac.Write(iv)
	mac.Write(ciphertext)
	expectedTag := mac.Sum(nil)

	if subtle.ConstantTimeCompare(expectedTag, tag) != 1 {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: tag mismatch")
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: decryption failed")
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "cipherset: decryption failed")
	}

	return plaintext, nil
}
