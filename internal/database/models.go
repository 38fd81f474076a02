package database

import "time"

// VerdictRecord is one archived bundle verdict.
type VerdictRecord struct {
	ID            string    `json:"id"`
	DlpID         int       `json:"dlp_id"`
	WalletAddress string    `json:"wallet_address"`
	SourceFile    string    `json:"source_file"`
	Valid         bool      `json:"valid"`
	Score         float64   `json:"score"`
	Authenticity  float64   `json:"authenticity"`
	Uniqueness    float64   `json:"uniqueness"`
	Quality       float64   `json:"quality"`
	Ownership     float64   `json:"ownership"`
	Attributes    string    `json:"attributes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
