package types

import "encoding/json"

// Witnesses holds the attestation endpoint(s) that vouched for a contribution.
// Record files carry it either as a single string or as an array of strings.
type Witnesses []string

// UnmarshalJSON accepts both the string and the array form.
func (w *Witnesses) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*w = nil
			return nil
		}
		*w = Witnesses{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*w = Witnesses(many)
	return nil
}

// Contribution is one unit of provider activity evidence.
type Contribution struct {
	Type              string          `json:"type"`
	TaskSubType       string          `json:"taskSubType"`
	SecuredSharedData json.RawMessage `json:"securedSharedData"`
	Witnesses         Witnesses       `json:"witnesses"`
}

// SubmissionBundle is the set of contributions parsed from one record file.
type SubmissionBundle struct {
	WalletAddress string         `json:"walletAddress"`
	Contributions []Contribution `json:"contribution"`

	// SourceFile is the record file the bundle was parsed from, kept for logging.
	SourceFile string `json:"-"`
}

// SubTypes returns the task subtypes declared by the bundle, in order of
// appearance with duplicates removed.
func (b *SubmissionBundle) SubTypes() []string {
	seen := make(map[string]bool, len(b.Contributions))
	subTypes := make([]string, 0, len(b.Contributions))
	for _, c := range b.Contributions {
		if c.TaskSubType == "" || seen[c.TaskSubType] {
			continue
		}
		seen[c.TaskSubType] = true
		subTypes = append(subTypes, c.TaskSubType)
	}
	return subTypes
}

// ProofResponse is the verdict produced for a submission. It is created fresh
// per bundle and fully replaced by each subsequent bundle's results.
type ProofResponse struct {
	DlpID        int                    `json:"dlp_id"`
	Valid        bool                   `json:"valid"`
	Score        float64                `json:"score"`
	Authenticity float64                `json:"authenticity"`
	Ownership    float64                `json:"ownership"`
	Uniqueness   float64                `json:"uniqueness"`
	Quality      float64                `json:"quality"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// ProveRequest is the request body for the proofd /prove endpoint.
type ProveRequest struct {
	InputDir string `json:"input_dir" binding:"required"`
}
