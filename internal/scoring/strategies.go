package scoring

import (
	"encoding/json"
	"log/slog"
	"math"
	"time"
)

// Tier thresholds shared by every counting strategy.
const (
	fullTierCount    = 10
	halfTierCount    = 4
	minimalTierCount = 1

	halfTierFactor    = 0.5
	minimalTierFactor = 0.1
)

// Follower thresholds for the follower-based presence formula.
const (
	fullTierFollowers    = 1000
	halfTierFollowers    = 100
	minimalTierFollowers = 1
)

// bucketWindow is the fixed window width for time-bucketed history scoring.
const bucketWindow = 15 * 24 * time.Hour

// Accepted event date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
}

// tierScore maps a count to its tier of the subtype maximum:
// >=10 full, 4-9 half, 1-3 minimal, 0 nothing.
func tierScore(count int, max float64) float64 {
	switch {
	case count >= fullTierCount:
		return max
	case count >= halfTierCount:
		return max * halfTierFactor
	case count >= minimalTierCount:
		return max * minimalTierFactor
	default:
		return 0
	}
}

func followerTierScore(followers int, max float64) float64 {
	switch {
	case followers >= fullTierFollowers:
		return max
	case followers >= halfTierFollowers:
		return max * halfTierFactor
	case followers >= minimalTierFollowers:
		return max * minimalTierFactor
	default:
		return 0
	}
}

type datedEvent struct {
	Date string `json:"date"`
}

// timeBucketedScore partitions the full range spanned by the contribution's
// events into 15-day windows anchored at the earliest event, tiers each
// window's event count, and returns the mean window score. Bucketing keeps a
// single burst of replayed events from dominating the score.
func timeBucketedScore(payload json.RawMessage, rule Rule) float64 {
	raw := payloadField(payload, rule.EventsField)
	if raw == nil {
		return 0
	}

	var events []datedEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		slog.Warn("Malformed event list in payload", "field", rule.EventsField, "error", err)
		return 0
	}

	var dates []time.Time
	for _, event := range events {
		if t, ok := parseEventDate(event.Date); ok {
			dates = append(dates, t)
		}
	}
	if len(dates) == 0 {
		return 0
	}

	earliest := dates[0]
	latest := dates[0]
	for _, t := range dates[1:] {
		if t.Before(earliest) {
			earliest = t
		}
		if t.After(latest) {
			latest = t
		}
	}

	windows := int(latest.Sub(earliest)/bucketWindow) + 1
	counts := make([]int, windows)
	for _, t := range dates {
		counts[int(t.Sub(earliest)/bucketWindow)]++
	}

	total := 0.0
	for _, count := range counts {
		total += tierScore(count, rule.MaxPoints)
	}
	return total / float64(windows)
}

// countScore applies the tier thresholds to a single count from the payload.
// Zero items always yields zero regardless of any other field.
func countScore(payload json.RawMessage, rule Rule) float64 {
	return tierScore(payloadCount(payload, rule.CountField), rule.MaxPoints)
}

// dualCountScore applies the tier thresholds to the sum of two payload counts.
func dualCountScore(payload json.RawMessage, rule Rule) float64 {
	sum := payloadCount(payload, rule.CountField) + payloadCount(payload, rule.SecondCountField)
	return tierScore(sum, rule.MaxPoints)
}

// presenceScore awards the full maximum for the snapshot being present, or
// tiers on the payload follower count when the follower policy is selected.
func presenceScore(payload json.RawMessage, rule Rule, byFollowers bool) float64 {
	if !byFollowers {
		return rule.MaxPoints
	}
	return followerTierScore(payloadCount(payload, rule.FollowersField), rule.MaxPoints)
}

// payloadField returns the named top-level field of the payload, or nil when
// the payload is empty, malformed, or missing the field.
func payloadField(payload json.RawMessage, field string) json.RawMessage {
	if len(payload) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		slog.Warn("Malformed securedSharedData payload", "error", err)
		return nil
	}
	return fields[field]
}

// payloadCount reads a count from the payload: either a number or the length
// of an array. Anything else counts as zero.
func payloadCount(payload json.RawMessage, field string) int {
	raw := payloadField(payload, field)
	if raw == nil {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		switch {
		case n < 0:
			return 0
		case n > math.MaxInt32:
			// Clamp above every tier threshold; a direct int conversion of a
			// huge float is out of range.
			return math.MaxInt32
		default:
			return int(n)
		}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return len(items)
	}

	return 0
}

func parseEventDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
