package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dlp-labs/proof-of-contribution/internal/types"
)

// Repository provides verdict archive operations.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveVerdict archives one bundle verdict. Archive failures are the caller's
// to log; they never fail a proof run.
func (r *Repository) SaveVerdict(response *types.ProofResponse, walletAddress, sourceFile string) (*VerdictRecord, error) {
	stmt, err := r.db.GetPreparedStatement("insert_verdict")
	if err != nil {
		return nil, err
	}

	attributes := ""
	if response.Attributes != nil {
		raw, err := json.Marshal(response.Attributes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode verdict attributes: %w", err)
		}
		attributes = string(raw)
	}

	record := &VerdictRecord{
		ID:            uuid.New().String(),
		DlpID:         response.DlpID,
		WalletAddress: walletAddress,
		SourceFile:    sourceFile,
		Valid:         response.Valid,
		Score:         response.Score,
		Authenticity:  response.Authenticity,
		Uniqueness:    response.Uniqueness,
		Quality:       response.Quality,
		Ownership:     response.Ownership,
		Attributes:    attributes,
		CreatedAt:     time.Now(),
	}

	_, err = stmt.Exec(
		record.ID, record.DlpID, record.WalletAddress, record.SourceFile,
		record.Valid, record.Score, record.Authenticity, record.Uniqueness,
		record.Quality, record.Ownership, record.Attributes, record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert verdict: %w", err)
	}

	return record, nil
}

// RecentVerdicts returns the most recently archived verdicts.
func (r *Repository) RecentVerdicts(limit int) ([]VerdictRecord, error) {
	stmt, err := r.db.GetPreparedStatement("get_recent_verdicts")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	return scanVerdicts(rows)
}

// VerdictsByWallet returns every archived verdict for a wallet address.
func (r *Repository) VerdictsByWallet(walletAddress string) ([]VerdictRecord, error) {
	stmt, err := r.db.GetPreparedStatement("get_verdicts_by_wallet")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	return scanVerdicts(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanVerdicts(rows rowScanner) ([]VerdictRecord, error) {
	var records []VerdictRecord
	for rows.Next() {
		var record VerdictRecord
		if err := rows.Scan(
			&record.ID, &record.DlpID, &record.WalletAddress, &record.SourceFile,
			&record.Valid, &record.Score, &record.Authenticity, &record.Uniqueness,
			&record.Quality, &record.Ownership, &record.Attributes, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan verdict row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verdict rows: %w", err)
	}

	return records, nil
}
