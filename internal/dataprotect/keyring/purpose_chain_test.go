package keyring

import (
	"crypto/sha512"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
)

func TestPurposeChainAppendIsImmutable(t *testing.T) {
	base := PurposeChain{"app"}
	child := base.Append("auth")

	assert.Equal(t, PurposeChain{"app"}, base)
	assert.Equal(t, PurposeChain{"app", "auth"}, child)
}

func TestPurposeChainValidate(t *testing.T) {
	require.NoError(t, PurposeChain{"app"}.Validate())

	err := PurposeChain{}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	err = PurposeChain{"app", ""}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestPurposeChainDigestIsOrderAndLengthSensitive(t *testing.T) {
	d1 := PurposeChain{"a", "b"}.Digest()
	d2 := PurposeChain{"b", "a"}.Digest()
	d3 := PurposeChain{"ab", "c"}.Digest()
	d4 := PurposeChain{"a", "bc"}.Digest()

	assert.NotEqual(t, d1, d2)
	assert.NotEqual(t, d3, d4)
	assert.Len(t, d1, sha512.Size)
}

func TestPurposeChainDigestEmptyChainIsDigestOfEmptyString(t *testing.T) {
	empty := sha512.Sum512(nil)
	assert.Equal(t, empty[:], PurposeChain{}.Digest())
}
