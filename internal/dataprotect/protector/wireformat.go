// Package protector implements the public Protect/Unprotect API:
// purpose-chain-scoped encryption on top of a key ring.
package protector

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
)

// magicHeader identifies a protected payload.
var magicHeader = [4]byte{0x09, 0xF0, 0xC9, 0xF0}

const (
	magicHeaderLen = 4
	keyIDLen       = 16
	headerLen      = magicHeaderLen + keyIDLen
)

// buildHeader emits magic_header || key_id.
func buildHeader(keyID uuid.UUID) []byte {
	out := make([]byte, 0, headerLen)
	out = append(out, magicHeader[:]...)
	out = append(out, keyID[:]...)
	return out
}

// parseHeader reads magic_header || key_id, returning the key id and the
// remaining body.
func parseHeader(payload []byte) (uuid.UUID, []byte, error) {
	if len(payload) < headerLen {
		return uuid.UUID{}, nil, apperrors.Wrap(apperrors.ErrCryptographic, "protector: payload truncated")
	}
	if !bytes.Equal(payload[:magicHeaderLen], magicHeader[:]) {
		return uuid.UUID{}, nil, apperrors.Wrap(apperrors.ErrCryptographic, "protector: bad magic header")
	}

	var keyID uuid.UUID
	copy(keyID[:], payload[magicHeaderLen:headerLen])
	return keyID, payload[headerLen:], nil
}
