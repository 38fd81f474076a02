// Package archive expands compressed submission bundles into the input
// directory before parsing.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dlp-labs/proof-of-contribution/internal/errors"
)

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// ExtractAll expands every zip archive found directly in dir into dir itself.
// Members are extracted flat under their base name; name collisions get a
// numeric suffix before the extension so no existing file is ever overwritten.
// A corrupt archive is logged and skipped, it never aborts the other files.
// The returned slice lists the paths written, in deterministic order; failed
// counts the archives that were skipped as corrupt.
func ExtractAll(dir string) (extracted []string, failed int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, errors.WrapError(err, "failed to read input directory %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		isArchive, err := isZipFile(path)
		if err != nil {
			slog.Warn("Failed to probe file, leaving it untouched", "file", name, "error", err)
			continue
		}
		if !isArchive {
			continue
		}

		slog.Info("Extracting archive", "file", name)
		paths, err := extractArchive(path, dir)
		if err != nil {
			errors.Log(errors.NewExtractionError(name, err))
			failed++
			continue
		}
		extracted = append(extracted, paths...)
	}

	return extracted, failed, nil
}

// extractArchive writes every regular-file member of the zip at path into dir.
func extractArchive(path, dir string) ([]string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer errors.SafeClose(reader, path)

	var written []string
	for _, member := range reader.File {
		if member.FileInfo().IsDir() {
			continue
		}

		target, err := extractMember(member, dir)
		if err != nil {
			// One bad member should not discard the rest of the archive.
			errors.Log(errors.NewExtractionError(member.Name, err))
			continue
		}

		slog.Info("Extracted archive member", "member", member.Name, "path", target)
		written = append(written, target)
	}

	return written, nil
}

func extractMember(member *zip.File, dir string) (string, error) {
	target := uniquePath(dir, filepath.Base(member.Name))

	src, err := member.Open()
	if err != nil {
		return "", err
	}
	defer errors.SafeClose(src, member.Name)

	// O_EXCL guards against a race with uniquePath's existence check.
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(target)
		return "", err
	}

	if err := dst.Close(); err != nil {
		return "", err
	}

	return target, nil
}

// uniquePath returns a path in dir for name that does not collide with an
// existing file, appending _1, _2, ... before the extension until free.
func uniquePath(dir, name string) string {
	target := filepath.Join(dir, name)
	if !exists(target) {
		return target
	}

	ext := filepath.Ext(name)
	base := name[:len(name)-len(ext)]
	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// isZipFile reports whether path starts with the zip local-file magic.
// Detection is by content, matching the container format rather than the
// file's extension.
func isZipFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer errors.SafeClose(f, path)

	header := make([]byte, len(zipMagic))
	n, err := io.ReadFull(f, header)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return false, nil
		}
		return false, err
	}

	return bytes.Equal(header[:n], zipMagic), nil
}
