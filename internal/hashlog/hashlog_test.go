package hashlog

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordWritesCSVLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hashes.log")

	l, err := Open(path)
	require.NoError(t, err)

	var nonce [4]byte
	copy(nonce[:], []byte{0x01, 0x02, 0x03, 0x04})
	var hash [32]byte
	hash[31] = 0xff

	require.NoError(t, l.Record(nonce, hash, 1000, "job-1"))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := fmt.Sprintf("01020304,%s,1000,job-1\n", hex.EncodeToString(hash[:]))
	require.Equal(t, want, string(data))
}

func TestOpenTruncatesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hashes.log")
	require.NoError(t, os.WriteFile(path, []byte("stale data\n"), 0o644))

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, data)
}
