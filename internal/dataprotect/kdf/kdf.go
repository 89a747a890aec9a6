// Package kdf implements the NIST SP 800-108 counter-mode key derivation
// function with HMAC-SHA-512 as the PRF. HKDF is not a substitute: the
// extract-and-expand construction produces different key material from the
// same inputs, so this is built directly on crypto/hmac and crypto/sha512.
package kdf

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
)

// prfOutputSize is the output size of the PRF, HMAC-SHA-512, fixed for this
// construction.
const prfOutputSize = sha512.Size

// Derive produces exactly outputLen bytes of key material from kdk (the
// key-derivation key), label, and context, following SP 800-108 counter mode:
//
//	for each 32-bit big-endian counter i = 1, 2, ...:
//	    K(i) = PRF(kdk, [i]_32 || label || 0x00 || context || [L]_32)
//	output = K(1) || K(2) || ... truncated to outputLen
//
// where L is the requested output length in bits, encoded big-endian. Callers
// use this to derive a per-payload symmetric key (and, for CBC, an HMAC key)
// from a descriptor's master secret, with label = AAD and
// context = key_modifier || iv (CBC) or key_modifier || nonce (GCM).
func Derive(kdk, label, context []byte, outputLen int) ([]byte, error) {
	if outputLen < 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArgument, "kdf: negative output length")
	}
	if len(kdk) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "kdf: empty key derivation key")
	}

	lBits := make([]byte, 4)
	binary.BigEndian.PutUint32(lBits, uint32(outputLen)*8) //nolint:gosec // outputLen is bounded by callers to small fixed sizes

	out := make([]byte, 0, outputLen+prfOutputSize)
	var counter uint32 = 1
	for len(out) < outputLen {
		ctrBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(ctrBytes, counter)

		mac := hmac.New(sha512.New, kdk)
		mac.Write(ctrBytes)
		mac.Write(label)
		mac.Write([]byte{0x00})
		mac.Write(context)
		mac.Write(lBits)

		out = mac.Sum(out)
		counter++
	}

	return out[:outputLen], nil
}
