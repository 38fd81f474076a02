package scoring

import (
	"log/slog"

	"github.com/dlp-labs/proof-of-contribution/internal/types"
)

// Result carries the bundle's quality outcome: the raw point total, the total
// normalized against the full configured table, and the raw points credited
// per subtype.
type Result struct {
	Raw        float64            `json:"raw"`
	Normalized float64            `json:"normalized"`
	PerSubType map[string]float64 `json:"per_sub_type"`
}

// Scorer dispatches each contribution to its subtype's scoring strategy.
type Scorer struct {
	cfg *Config
}

// NewScorer creates a scorer over an immutable scoring config.
func NewScorer(cfg *Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// ScoreBundle scores every contribution in the bundle and normalizes the sum
// against the sum of all configured maxima. The result's Normalized value is
// always within [0, 1].
func (s *Scorer) ScoreBundle(b *types.SubmissionBundle) Result {
	result := Result{PerSubType: make(map[string]float64)}

	for _, c := range b.Contributions {
		score := s.scoreContribution(c)
		if score == 0 {
			continue
		}
		result.Raw += score
		result.PerSubType[c.TaskSubType] += score
	}

	if max := s.cfg.MaxTotal(); max > 0 {
		result.Normalized = result.Raw / max
	}
	// Duplicate subtypes can push the raw sum past the table total.
	if result.Normalized > 1 {
		result.Normalized = 1
	}

	return result
}

// scoreContribution returns the raw points for one contribution, bounded by
// its subtype's configured maximum. Unknown subtypes and provider/subtype
// mismatches score zero.
func (s *Scorer) scoreContribution(c types.Contribution) float64 {
	rule, ok := s.cfg.Rule(c.TaskSubType)
	if !ok {
		slog.Debug("Unrecognized task subtype", "sub_type", c.TaskSubType)
		return 0
	}
	if rule.Provider != c.Type {
		slog.Warn("Subtype declared under wrong provider",
			"sub_type", c.TaskSubType,
			"declared_provider", c.Type,
			"expected_provider", rule.Provider)
		return 0
	}

	switch rule.Kind {
	case KindTimeBucketed:
		return timeBucketedScore(c.SecuredSharedData, rule)
	case KindCount:
		return countScore(c.SecuredSharedData, rule)
	case KindDualCount:
		return dualCountScore(c.SecuredSharedData, rule)
	case KindPresence:
		return presenceScore(c.SecuredSharedData, rule, s.cfg.PresenceByFollowers)
	default:
		return 0
	}
}
