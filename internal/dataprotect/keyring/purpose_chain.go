package keyring

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/jellydator/validation"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
)

// PurposeChain is the ordered list of purpose strings that scopes a
// Protector. A child protector's chain is its parent's
// chain with one purpose appended; two chains that differ in any element
// or order are cryptographically unrelated.
type PurposeChain []string

// Append returns a new chain with purpose appended. The receiver is left
// unmodified: chains are immutable.
func (c PurposeChain) Append(purpose string) PurposeChain {
	out := make(PurposeChain, len(c)+1)
	copy(out, c)
	out[len(c)] = purpose
	return out
}

// Validate checks that every element is non-empty, per the InvalidArgument
// contract ("null or empty purpose list").
func (c PurposeChain) Validate() error {
	if len(c) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidArgument, "purpose chain must not be empty")
	}
	for _, p := range c {
		if err := validation.Validate(p, validation.Required); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidArgument, "purpose chain element must not be empty")
		}
	}
	return nil
}

// Digest computes the purpose digest:
//
//	SHA-512( concat_i( u32_be(utf8_len(p_i)) || utf8_bytes(p_i) ) )
//
// Length-prefixing each element (rather than a bare join) keeps
// ["ab","c"] and ["a","bc"] from colliding.
func (c PurposeChain) Digest() []byte {
	h := sha512.New()
	var lenBuf [4]byte
	for _, p := range c {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(p)))
		h.Write(lenBuf[:])
		h.Write([]byte(p))
	}
	return h.Sum(nil)
}
