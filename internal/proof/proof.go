// Package proof orchestrates the contribution scoring engine: archive
// resolution, bundle parsing, the three verification scores, and the final
// verdict.
package proof

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/dlp-labs/proof-of-contribution/internal/archive"
	"github.com/dlp-labs/proof-of-contribution/internal/authenticity"
	"github.com/dlp-labs/proof-of-contribution/internal/bundle"
	"github.com/dlp-labs/proof-of-contribution/internal/config"
	"github.com/dlp-labs/proof-of-contribution/internal/database"
	"github.com/dlp-labs/proof-of-contribution/internal/download"
	"github.com/dlp-labs/proof-of-contribution/internal/errors"
	"github.com/dlp-labs/proof-of-contribution/internal/monitoring"
	"github.com/dlp-labs/proof-of-contribution/internal/ownership"
	"github.com/dlp-labs/proof-of-contribution/internal/scoring"
	"github.com/dlp-labs/proof-of-contribution/internal/types"
)

const downloadedBundleName = "remote_bundle.zip"

// OwnershipVerifier is the external ownership check. Satisfied by
// *ownership.Client; narrowed to an interface so engine tests can stub the
// validator round trip.
type OwnershipVerifier interface {
	Verify(ctx context.Context, walletAddress string, subTypes []string) (float64, error)
}

// Engine runs one submission bundle directory through the full scoring
// pipeline, synchronously, to completion.
type Engine struct {
	cfg       *config.Config
	scorer    *scoring.Scorer
	verifier  *authenticity.Verifier
	ownership OwnershipVerifier
	fetcher   *download.Fetcher
	repo      *database.Repository
	logger    *monitoring.Logger
	metrics   *monitoring.Metrics
}

// NewEngine wires the engine from its collaborators. repo may be nil when the
// verdict archive is disabled.
func NewEngine(cfg *config.Config, ownershipClient OwnershipVerifier, repo *database.Repository, logger *monitoring.Logger, metrics *monitoring.Metrics) *Engine {
	scoringCfg := scoring.DefaultConfig(cfg.ProfileScoring == config.ProfileScoringFollowers)

	return &Engine{
		cfg:       cfg,
		scorer:    scoring.NewScorer(scoringCfg),
		verifier:  authenticity.NewVerifier(),
		ownership: ownershipClient,
		fetcher:   download.NewFetcher(cfg.RequestTimeout),
		repo:      repo,
		logger:    logger,
		metrics:   metrics,
	}
}

// Generate produces the verdict for the configured input directory. A
// directory with multiple record files is processed sequentially and the last
// bundle's verdict wins; per-bundle results are fully replaced, never merged.
func (e *Engine) Generate(ctx context.Context) (*types.ProofResponse, error) {
	return e.GenerateForDir(ctx, e.cfg.InputDir)
}

// GenerateForDir runs the pipeline over an explicit input directory.
func (e *Engine) GenerateForDir(ctx context.Context, inputDir string) (*types.ProofResponse, error) {
	started := time.Now()
	e.logger.SystemLogger("proof_generation_started", inputDir)

	if e.cfg.FileDownloadURL != "" {
		if _, err := e.fetcher.Fetch(ctx, e.cfg.FileDownloadURL, inputDir, downloadedBundleName); err != nil {
			// The download is best-effort; score whatever already landed.
			errors.Log(errors.ToAppError(err), "url", e.cfg.FileDownloadURL)
		}
	}

	if err := requireInputFiles(inputDir); err != nil {
		return nil, err
	}

	_, failedArchives, err := archive.ExtractAll(inputDir)
	if err != nil {
		return nil, err
	}
	for i := 0; i < failedArchives; i++ {
		e.metrics.IncrementExtractionFailure()
	}

	files, err := bundle.ListRecordFiles(inputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.NewConfigurationError("no record files found in "+inputDir, nil)
	}

	var response *types.ProofResponse
	filesProcessed := 0

	for _, file := range files {
		b, err := bundle.ParseFile(file)
		if err != nil {
			e.metrics.IncrementParseFailure()
			errors.Log(errors.ToAppError(err), "file", filepath.Base(file))
			continue
		}

		response = e.scoreBundle(ctx, b)
		filesProcessed++
		e.metrics.IncrementBundle()
	}

	if response == nil {
		return nil, errors.NewConfigurationError("no submission bundle could be parsed in "+inputDir, nil)
	}

	response.Attributes["filesProcessed"] = filesProcessed
	e.logger.VerdictLogger(response.DlpID, response.Score, response.Valid, filesProcessed, time.Since(started))

	return response, nil
}

// scoreBundle computes all four sub-scores for one bundle and aggregates them
// into a fresh verdict.
func (e *Engine) scoreBundle(ctx context.Context, b *types.SubmissionBundle) *types.ProofResponse {
	started := time.Now()

	quality := e.scorer.ScoreBundle(b)
	authScore := e.verifier.Score(b)

	ownershipScore, err := e.ownership.Verify(ctx, b.WalletAddress, b.SubTypes())
	if err != nil {
		// Ownership failures degrade the sub-score, never the run.
		errors.Log(errors.ToAppError(err), "file", b.SourceFile, "wallet_address", b.WalletAddress)
		ownershipScore = 0
	}
	e.metrics.RecordOwnershipCall(ownershipScore == 1.0)

	response := &types.ProofResponse{
		DlpID:        e.cfg.DlpID,
		Authenticity: authScore,
		Uniqueness:   uniquenessScore,
		Quality:      quality.Normalized,
		Ownership:    ownershipScore,
		Attributes: map[string]interface{}{
			"normalizedContributionScore": quality.Normalized,
			"totalContributionScore":      quality.Raw,
			"contributionScores":          quality.PerSubType,
		},
		Metadata: map[string]interface{}{
			"sourceFile": b.SourceFile,
		},
	}
	response.Score = aggregateScore([]float64{
		response.Authenticity,
		response.Uniqueness,
		response.Quality,
		response.Ownership,
	})
	response.Valid = isValid(response.Authenticity)

	e.logger.BundleLogger(b.SourceFile, len(b.Contributions), quality.Normalized, authScore, ownershipScore, time.Since(started))

	e.archiveVerdict(response, b)

	return response
}

// archiveVerdict persists the bundle verdict when the archive is enabled.
// Failures are logged, never propagated.
func (e *Engine) archiveVerdict(response *types.ProofResponse, b *types.SubmissionBundle) {
	if e.repo == nil {
		return
	}

	if _, err := e.repo.SaveVerdict(response, b.WalletAddress, b.SourceFile); err != nil {
		errors.Log(errors.NewInternalError("failed to archive verdict", err), "file", b.SourceFile)
	}
}

// requireInputFiles fails the run before any scoring when the input directory
// is missing or empty.
func requireInputFiles(inputDir string) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return errors.NewConfigurationError("input directory is not readable: "+inputDir, err)
	}
	if len(entries) == 0 {
		return errors.NewConfigurationError("no input files found in "+inputDir, nil)
	}
	return nil
}

var _ OwnershipVerifier = (*ownership.Client)(nil)
