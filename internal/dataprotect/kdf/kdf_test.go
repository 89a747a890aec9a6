package kdf

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDeterministic(t *testing.T) {
	kdk := bytes.Repeat([]byte{0x42}, 64)
	label := []byte("aad-context")
	context := []byte("key-modifier-and-iv")

	out1, err := Derive(kdk, label, context, 48)
	require.NoError(t, err)
	out2, err := Derive(kdk, label, context, 48)
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
	assert.Len(t, out1, 48)
}

func TestDeriveDifferentContextDiffers(t *testing.T) {
	kdk := bytes.Repeat([]byte{0x01}, 64)
	label := []byte("label")

	a, err := Derive(kdk, label, []byte("ctx-a"), 32)
	require.NoError(t, err)
	b, err := Derive(kdk, label, []byte("ctx-b"), 32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDeriveMultiBlock(t *testing.T) {
	kdk := bytes.Repeat([]byte{0x07}, 64)
	// Request more than one HMAC-SHA-512 block (64 bytes) worth of output.
	out, err := Derive(kdk, []byte("l"), []byte("c"), 130)
	require.NoError(t, err)
	assert.Len(t, out, 130)
}

func TestDeriveMatchesManualCounterConstruction(t *testing.T) {
	kdk := bytes.Repeat([]byte{0x09}, 64)
	label := []byte("L")
	context := []byte("C")
	outputLen := 40

	lBits := make([]byte, 4)
	binary.BigEndian.PutUint32(lBits, uint32(outputLen)*8)

	ctr := make([]byte, 4)
	binary.BigEndian.PutUint32(ctr, 1)
	mac := hmac.New(sha512.New, kdk)
	mac.Write(ctr)
	mac.Write(label)
	mac.Write([]byte{0x00})
	mac.Write(context)
	mac.Write(lBits)
	want := mac.Sum(nil)[:outputLen]

	got, err := Derive(kdk, label, context, outputLen)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDeriveRejectsEmptyKDK(t *testing.T) {
	_, err := Derive(nil, []byte("l"), []byte("c"), 16)
	assert.Error(t, err)
}

func TestDeriveRejectsNegativeLength(t *testing.T) {
	_, err := Derive([]byte("k"), []byte("l"), []byte("c"), -1)
	assert.Error(t, err)
}

func TestDeriveZeroLength(t *testing.T) {
	out, err := Derive([]byte("k"), []byte("l"), []byte("c"), 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}
