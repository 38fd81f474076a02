// Package bundle loads submission record files into SubmissionBundle values.
package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/dlp-labs/proof-of-contribution/internal/errors"
	"github.com/dlp-labs/proof-of-contribution/internal/types"
)

// recordExtension identifies structured record files. Detection is by
// extension, not content sniffing.
const recordExtension = ".json"

// ListRecordFiles returns the record files directly under dir, sorted by name
// so processing order is deterministic.
func ListRecordFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapError(err, "failed to read input directory %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), recordExtension) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

// ParseFile loads one record file into a SubmissionBundle. Content is decoded
// as UTF-8 first; if the bytes are not valid UTF-8 they are re-decoded as
// Windows-1252 before parsing. A malformed record yields a ParseError; the
// caller logs it and moves on to the next file.
func ParseFile(path string) (*types.SubmissionBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewParseError(filepath.Base(path), err)
	}

	if !utf8.Valid(data) {
		decoded, decErr := charmap.Windows1252.NewDecoder().Bytes(data)
		if decErr != nil {
			return nil, errors.NewParseError(filepath.Base(path), decErr)
		}
		data = decoded
	}

	var b types.SubmissionBundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.NewParseError(filepath.Base(path), err)
	}
	b.SourceFile = filepath.Base(path)

	return &b, nil
}
