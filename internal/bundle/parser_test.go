package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlp-labs/proof-of-contribution/internal/errors"
)

func writeRecord(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestListRecordFiles(t *testing.T) {
	t.Run("filters by extension and sorts by name", func(t *testing.T) {
		dir := t.TempDir()
		writeRecord(t, dir, "b.json", []byte(`{}`))
		writeRecord(t, dir, "a.json", []byte(`{}`))
		writeRecord(t, dir, "notes.txt", []byte("ignore"))
		writeRecord(t, dir, "bundle.zip", []byte("ignore"))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

		files, err := ListRecordFiles(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.json"),
			filepath.Join(dir, "b.json"),
		}, files)
	})

	t.Run("extension match is case-insensitive", func(t *testing.T) {
		dir := t.TempDir()
		writeRecord(t, dir, "RECORD.JSON", []byte(`{}`))

		files, err := ListRecordFiles(dir)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("missing directory fails", func(t *testing.T) {
		_, err := ListRecordFiles(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})
}

func TestParseFile(t *testing.T) {
	t.Run("parses a well-formed record", func(t *testing.T) {
		dir := t.TempDir()
		path := writeRecord(t, dir, "record.json", []byte(`{
			"walletAddress": "0xabc",
			"contribution": [
				{
					"type": "AMAZON",
					"taskSubType": "AMAZON_ORDER_HISTORY",
					"securedSharedData": {"orders": 7},
					"witnesses": "wss://witness.reclaimprotocol.org/ws"
				}
			]
		}`))

		b, err := ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, "0xabc", b.WalletAddress)
		assert.Equal(t, "record.json", b.SourceFile)
		require.Len(t, b.Contributions, 1)
		assert.Equal(t, "AMAZON", b.Contributions[0].Type)
		assert.Equal(t, []string{"wss://witness.reclaimprotocol.org/ws"}, []string(b.Contributions[0].Witnesses))
	})

	t.Run("accepts witnesses as an array", func(t *testing.T) {
		dir := t.TempDir()
		path := writeRecord(t, dir, "record.json", []byte(`{
			"walletAddress": "0xabc",
			"contribution": [
				{
					"type": "NETFLIX",
					"taskSubType": "NETFLIX_FAVORITE",
					"securedSharedData": {"favorites": 2},
					"witnesses": ["wss://witness.reclaimprotocol.org/ws", "wss://other.example.com"]
				}
			]
		}`))

		b, err := ParseFile(path)
		require.NoError(t, err)
		assert.Len(t, b.Contributions[0].Witnesses, 2)
	})

	t.Run("recovers non-UTF-8 content as Windows-1252", func(t *testing.T) {
		dir := t.TempDir()
		// 0xE9 is é in Windows-1252 and invalid as UTF-8.
		raw := []byte(`{"walletAddress": "caf`)
		raw = append(raw, 0xE9)
		raw = append(raw, []byte(`", "contribution": []}`)...)
		path := writeRecord(t, dir, "record.json", raw)

		b, err := ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, "café", b.WalletAddress)
	})

	t.Run("malformed content yields a parse error", func(t *testing.T) {
		dir := t.TempDir()
		path := writeRecord(t, dir, "broken.json", []byte(`{"walletAddress": `))

		_, err := ParseFile(path)
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryParse))
	})

	t.Run("missing file yields a parse error", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryParse))
	})
}
