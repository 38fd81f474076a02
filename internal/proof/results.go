package proof

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/dlp-labs/proof-of-contribution/internal/errors"
	"github.com/dlp-labs/proof-of-contribution/internal/types"
)

// resultsFileName is the fixed verdict output file inside the output directory.
const resultsFileName = "results.json"

// WriteResponse writes the verdict to results.json under outputDir, creating
// the directory when needed. The file is replaced wholesale on every run.
func WriteResponse(outputDir string, response *types.ProofResponse) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.WrapError(err, "failed to create output directory %s", outputDir)
	}

	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return "", errors.WrapError(err, "failed to encode proof response")
	}

	path := filepath.Join(outputDir, resultsFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.WrapError(err, "failed to write results file %s", path)
	}

	return path, nil
}
