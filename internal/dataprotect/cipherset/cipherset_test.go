package cipherset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/dataprotect/internal/dataprotect/secret"
)

func newMaster(t *testing.T, n int) *secret.Secret {
	t.Helper()
	s, err := secret.FromRandom(n)
	require.NoError(t, err)
	return s
}

func TestCBCRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		encAlg EncryptionAlgorithm
		macAlg ValidationAlgorithm
	}{
		{"aes128-sha256", AES128CBC, HMACSHA256},
		{"aes192-sha256", AES192CBC, HMACSHA256},
		{"aes256-sha512", AES256CBC, HMACSHA512},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enc, err := NewCBCEncryptor(newMaster(t, 64), tc.encAlg, tc.macAlg)
			require.NoError(t, err)

			aad := []byte("aad-context")
			plaintext := []byte("hello, protected world")

			body, err := enc.Encrypt(plaintext, aad)
			require.NoError(t, err)

			got, err := enc.Decrypt(body, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, got)
		})
	}
}

func TestCBCWrongAADFails(t *testing.T) {
	enc, err := NewCBCEncryptor(newMaster(t, 64), AES256CBC, HMACSHA512)
	require.NoError(t, err)

	body, err := enc.Encrypt([]byte("data"), []byte("aad-a"))
	require.NoError(t, err)

	_, err = enc.Decrypt(body, []byte("aad-b"))
	assert.Error(t, err)
}

func TestCBCTamperedCiphertextFails(t *testing.T) {
	enc, err := NewCBCEncryptor(newMaster(t, 64), AES256CBC, HMACSHA512)
	require.NoError(t, err)

	aad := []byte("aad")
	body, err := enc.Encrypt([]byte("0123456789"), aad)
	require.NoError(t, err)

	body[len(body)-1] ^= 0xFF
	_, err = enc.Decrypt(body, aad)
	assert.Error(t, err)
}

func TestCBCMasterTooShort(t *testing.T) {
	_, err := NewCBCEncryptor(newMaster(t, 16), AES256CBC, HMACSHA512)
	assert.Error(t, err)
}

func TestCBCTruncatedPayload(t *testing.T) {
	enc, err := NewCBCEncryptor(newMaster(t, 64), AES256CBC, HMACSHA512)
	require.NoError(t, err)

	_, err = enc.Decrypt([]byte("too short"), []byte("aad"))
	assert.Error(t, err)
}

func TestGCMRoundTrip(t *testing.T) {
	cases := []EncryptionAlgorithm{AES128GCM, AES192GCM, AES256GCM}
	for _, alg := range cases {
		t.Run(string(alg), func(t *testing.T) {
			enc, err := NewGCMEncryptor(newMaster(t, 64), alg)
			require.NoError(t, err)

			aad := []byte("purpose-digest")
			plaintext := []byte("01 02 03 04 05")

			body, err := enc.Encrypt(plaintext, aad)
			require.NoError(t, err)

			got, err := enc.Decrypt(body, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, got)
		})
	}
}

func TestGCMWrongAADFails(t *testing.T) {
	enc, err := NewGCMEncryptor(newMaster(t, 64), AES256GCM)
	require.NoError(t, err)

	body, err := enc.Encrypt([]byte("data"), []byte("aad-a"))
	require.NoError(t, err)

	_, err = enc.Decrypt(body, []byte("aad-b"))
	assert.Error(t, err)
}

func TestGCMTamperedTagFails(t *testing.T) {
	enc, err := NewGCMEncryptor(newMaster(t, 64), AES256GCM)
	require.NoError(t, err)

	aad := []byte("aad")
	body, err := enc.Encrypt([]byte("data"), aad)
	require.NoError(t, err)

	body[len(body)-1] ^= 0xFF
	_, err = enc.Decrypt(body, aad)
	assert.Error(t, err)
}

func TestGCMEmptyPlaintext(t *testing.T) {
	enc, err := NewGCMEncryptor(newMaster(t, 64), AES256GCM)
	require.NoError(t, err)

	body, err := enc.Encrypt(nil, []byte("aad"))
	require.NoError(t, err)

	got, err := enc.Decrypt(body, []byte("aad"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnsupportedAlgorithms(t *testing.T) {
	_, err := NewCBCEncryptor(newMaster(t, 64), EncryptionAlgorithm("bogus"), HMACSHA256)
	assert.Error(t, err)

	_, err = NewCBCEncryptor(newMaster(t, 64), AES256CBC, ValidationAlgorithm("bogus"))
	assert.Error(t, err)

	_, err = NewGCMEncryptor(newMaster(t, 64), EncryptionAlgorithm("bogus"))
	assert.Error(t, err)
}

// Each call to Encrypt must sample a fresh key_modifier/iv/nonce so that two
// encryptions of the same plaintext under the same AAD never collide.
func TestEncryptionsAreRandomized(t *testing.T) {
	enc, err := NewGCMEncryptor(newMaster(t, 64), AES256GCM)
	require.NoError(t, err)

	aad := []byte("aad")
	a, err := enc.Encrypt([]byte("same"), aad)
	require.NoError(t, err)
	b, err := enc.Encrypt([]byte("same"), aad)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
