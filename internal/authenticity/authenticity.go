// Package authenticity checks that contributions were captured through a
// recognized attestation relay.
package authenticity

import (
	"math"
	"strings"

	"github.com/dlp-labs/proof-of-contribution/internal/types"
)

// Trust-domain suffixes for witness endpoints: the attestation relay itself
// and its bare domain. Matching is an exact string suffix check, no wildcards
// and no case normalization.
var defaultTrustedSuffixes = []string{
	"wss://witness.reclaimprotocol.org/ws",
	"reclaimprotocol.org",
}

// Verifier scores the fraction of a bundle's contributions vouched for by a
// trusted witness.
type Verifier struct {
	trustedSuffixes []string
}

// NewVerifier creates a verifier with the default trust-domain allow-list.
func NewVerifier() *Verifier {
	return &Verifier{trustedSuffixes: defaultTrustedSuffixes}
}

// NewVerifierWithSuffixes creates a verifier with an explicit allow-list.
func NewVerifierWithSuffixes(suffixes []string) *Verifier {
	return &Verifier{trustedSuffixes: suffixes}
}

// Score returns trusted/total over the bundle's contributions, rounded to five
// decimal places. A bundle with zero contributions scores 0.
func (v *Verifier) Score(b *types.SubmissionBundle) float64 {
	if len(b.Contributions) == 0 {
		return 0
	}

	trusted := 0
	for _, c := range b.Contributions {
		if v.isTrusted(c.Witnesses) {
			trusted++
		}
	}

	ratio := float64(trusted) / float64(len(b.Contributions))
	return math.Round(ratio*1e5) / 1e5
}

// isTrusted reports whether any witness value ends with a trusted suffix.
func (v *Verifier) isTrusted(witnesses types.Witnesses) bool {
	for _, w := range witnesses {
		for _, suffix := range v.trustedSuffixes {
			if strings.HasSuffix(w, suffix) {
				return true
			}
		}
	}
	return false
}
