// Package testutil provides an in-memory desktop and mock implementations for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Norgate-AV/htauto/internal/textenc"
)

// CreateTempDir creates a temporary directory for testing
func CreateTempDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "htauto-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})

	return dir
}

// CreateFakeExecutable writes a placeholder file standing in for xiadan.exe.
func CreateFakeExecutable(t *testing.T, dir string, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("MZ"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	return path
}

// CountingCodec wraps a codec and counts how often each string is encoded.
type CountingCodec struct {
	inner   textenc.Codec
	Encoded map[string]int
	Decoded int
}

func NewCountingCodec() *CountingCodec {
	return &CountingCodec{inner: textenc.GBK, Encoded: make(map[string]int)}
}

func (c *CountingCodec) ToNative(s string) ([]byte, error) {
	c.Encoded[s]++
	return c.inner.ToNative(s)
}

func (c *CountingCodec) FromNative(b []byte) (string, error) {
	c.Decoded++
	return c.inner.FromNative(b)
}
