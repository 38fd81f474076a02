// Package scoring computes the per-bundle quality score from provider
// activity evidence.
package scoring

// Kind selects the scoring strategy for a task subtype. The set is closed:
// dispatch happens over these variants, and an unknown subtype falls through
// to a zero score instead of a silent string-keyed miss.
type Kind int

const (
	// KindTimeBucketed partitions dated events into fixed 15-day windows and
	// averages the per-window tier scores. Sustained engagement over time beats
	// a one-time bulk upload of replayed events.
	KindTimeBucketed Kind = iota
	// KindCount applies the tier thresholds to a single count from the payload.
	KindCount
	// KindDualCount applies the tier thresholds to the sum of two counts.
	KindDualCount
	// KindPresence awards points for the snapshot being present at all.
	KindPresence
)

// Rule describes how one task subtype is scored.
type Rule struct {
	Provider  string
	Kind      Kind
	MaxPoints float64

	// EventsField names the payload array of dated events (time-bucketed).
	EventsField string
	// CountField and SecondCountField name the payload counts (count / dual-count).
	CountField       string
	SecondCountField string
	// FollowersField names the payload follower count used when presence
	// subtypes are scored by followers instead of flat.
	FollowersField string
}

// Config holds the process-wide scoring tables. Loaded once at startup,
// immutable thereafter, shared read-only by all scoring functions.
type Config struct {
	rules map[string]Rule

	// PresenceByFollowers switches presence-only subtypes from the flat full
	// award to the follower-count tier formula.
	PresenceByFollowers bool

	maxTotal float64
}

// NewConfig builds a Config from an explicit rule table.
func NewConfig(rules map[string]Rule, presenceByFollowers bool) *Config {
	total := 0.0
	for _, r := range rules {
		total += r.MaxPoints
	}
	return &Config{
		rules:               rules,
		PresenceByFollowers: presenceByFollowers,
		maxTotal:            total,
	}
}

// DefaultConfig returns the production scoring table: every known subtype is
// worth 50 points.
func DefaultConfig(presenceByFollowers bool) *Config {
	const basePoints = 50

	rules := map[string]Rule{
		"NETFLIX_HISTORY": {
			Provider:    "NETFLIX",
			Kind:        KindTimeBucketed,
			MaxPoints:   basePoints,
			EventsField: "history",
		},
		"NETFLIX_FAVORITE": {
			Provider:   "NETFLIX",
			Kind:       KindCount,
			MaxPoints:  basePoints,
			CountField: "favorites",
		},
		"SPOTIFY_HISTORY": {
			Provider:    "SPOTIFY",
			Kind:        KindTimeBucketed,
			MaxPoints:   basePoints,
			EventsField: "tracks",
		},
		"SPOTIFY_PLAYLIST": {
			Provider:   "SPOTIFY",
			Kind:       KindCount,
			MaxPoints:  basePoints,
			CountField: "playlists",
		},
		"AMAZON_PRIME_VIDEO": {
			Provider:    "AMAZON",
			Kind:        KindTimeBucketed,
			MaxPoints:   basePoints,
			EventsField: "history",
		},
		"AMAZON_ORDER_HISTORY": {
			Provider:   "AMAZON",
			Kind:       KindCount,
			MaxPoints:  basePoints,
			CountField: "orders",
		},
		"YOUTUBE_HISTORY": {
			Provider:    "YOUTUBE",
			Kind:        KindTimeBucketed,
			MaxPoints:   basePoints,
			EventsField: "videos",
		},
		"YOUTUBE_PLAYLIST": {
			Provider:   "YOUTUBE",
			Kind:       KindCount,
			MaxPoints:  basePoints,
			CountField: "playlists",
		},
		"YOUTUBE_SUBSCRIBERS": {
			Provider:   "YOUTUBE",
			Kind:       KindCount,
			MaxPoints:  basePoints,
			CountField: "subscribers",
		},
		"COINMARKETCAP_USER_WATCHLIST": {
			Provider:         "COINMARKETCAP",
			Kind:             KindDualCount,
			MaxPoints:        basePoints,
			CountField:       "coins",
			SecondCountField: "pairs",
		},
		"TWITTER_USERINFO": {
			Provider:       "TWITTER",
			Kind:           KindPresence,
			MaxPoints:      basePoints,
			FollowersField: "followers",
		},
		"FARCASTER_USERINFO": {
			Provider:       "FARCASTER",
			Kind:           KindPresence,
			MaxPoints:      basePoints,
			FollowersField: "followers",
		},
	}

	return NewConfig(rules, presenceByFollowers)
}

// Rule looks up the scoring rule for a task subtype.
func (c *Config) Rule(subType string) (Rule, bool) {
	r, ok := c.rules[subType]
	return r, ok
}

// MaxTotal is the sum of the configured maxima across every known subtype.
// Normalization divides by this, so a bundle can only reach 1.0 by supplying
// evidence for the whole table.
func (c *Config) MaxTotal() float64 {
	return c.maxTotal
}

// SubTypes lists every configured subtype.
func (c *Config) SubTypes() []string {
	subTypes := make([]string, 0, len(c.rules))
	for subType := range c.rules {
		subTypes = append(subTypes, subType)
	}
	return subTypes
}
