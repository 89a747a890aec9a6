package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/dataprotect/internal/dataprotect/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns a config backed by the filesystem repository rooted at
// a fresh temp dir: the memory repository is scoped to a single process and
// does not survive across the separate RunX calls these tests make to
// simulate successive CLI invocations against the same key store.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		RepositoryDriver:   "filesystem",
		RepositoryPath:     t.TempDir(),
		KeyActivationDelay: 0,
		KeyLifetime:        90 * 24 * time.Hour,
		PropagationWindow:  2 * 24 * time.Hour,
		RefreshInterval:    24 * time.Hour,
		AllowRevokedKeys:   false,
	}
}

func TestRunKeyringInitCreatesKey(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	var out bytes.Buffer

	err := RunKeyringInit(ctx, cfg, testLogger(), &out, "AES_256_CBC", "HMACSHA512")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "created key")

	out.Reset()
	require.NoError(t, RunKeyringList(ctx, cfg, testLogger(), &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2, "header plus one key row")
}

func TestRunKeyringInitRejectsUnknownAlgorithm(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	var out bytes.Buffer

	err := RunKeyringInit(ctx, cfg, testLogger(), &out, "AES_1024_CBC", "HMACSHA512")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid encryption algorithm")
}

func TestRunRotateNowResolvesDefaultKey(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	var out bytes.Buffer

	err := RunRotateNow(ctx, cfg, testLogger(), &out, "AES_256_GCM", "HMACSHA256")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "default key:")
}

func TestRunKeyringRevokeThenList(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	var out bytes.Buffer

	require.NoError(t, RunKeyringInit(ctx, cfg, testLogger(), &out, "AES_256_CBC", "HMACSHA512"))
	id := strings.Fields(strings.TrimPrefix(out.String(), "created key "))[0]

	out.Reset()
	require.NoError(t, RunKeyringRevoke(ctx, cfg, testLogger(), &out, id, "compromised"))
	assert.Contains(t, out.String(), "revoked key "+id)

	out.Reset()
	require.NoError(t, RunKeyringList(ctx, cfg, testLogger(), &out))
	assert.Contains(t, out.String(), "true", "revoked column should read true")
}

func TestRunKeyringRevokeAllMassRevokes(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	var out bytes.Buffer

	require.NoError(t, RunKeyringInit(ctx, cfg, testLogger(), &out, "AES_256_CBC", "HMACSHA512"))

	out.Reset()
	require.NoError(t, RunKeyringRevokeAll(ctx, cfg, testLogger(), &out, time.Now().UTC().Add(time.Hour), "mass rotation"))
	assert.Contains(t, out.String(), "revoked every key created on or before")

	out.Reset()
	require.NoError(t, RunKeyringList(ctx, cfg, testLogger(), &out))
	assert.Contains(t, out.String(), "true")
}

func TestRunProtectUnprotectRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	var protectOut bytes.Buffer

	purposes := []string{"billing", "invoice-numbers"}
	plaintext := []byte("hello, protected world")

	require.NoError(t, RunProtect(ctx, cfg, testLogger(), &protectOut, purposes, plaintext))
	protectedBase64 := strings.TrimSpace(protectOut.String())
	require.NotEmpty(t, protectedBase64)

	var unprotectOut bytes.Buffer
	require.NoError(t, RunUnprotect(ctx, cfg, testLogger(), &unprotectOut, purposes, protectedBase64))
	assert.Equal(t, string(plaintext)+"\n", unprotectOut.String())
}

func TestRunUnprotectFailsOnWrongPurpose(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	var protectOut bytes.Buffer

	require.NoError(t, RunProtect(ctx, cfg, testLogger(), &protectOut, []string{"billing"}, []byte("secret")))
	protectedBase64 := strings.TrimSpace(protectOut.String())

	var unprotectOut bytes.Buffer
	err := RunUnprotect(ctx, cfg, testLogger(), &unprotectOut, []string{"payroll"}, protectedBase64)
	require.Error(t, err)
}

func TestRunUnprotectRejectsMalformedBase64(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	var out bytes.Buffer

	err := RunUnprotect(ctx, cfg, testLogger(), &out, []string{"billing"}, "not-base64!!!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid base64")
}
