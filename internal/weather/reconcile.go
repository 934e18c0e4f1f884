package weather

import (
	"strings"
	"time"

	"github.com/i474232898/gag-stock-relay/internal/common"
)

// Policy controls how competing weather observations are reconciled into one
// canonical state.
type Policy struct {
	// OngoingWindow is how long after its start an open-ended history entry
	// (no endTime) is still considered in effect.
	OngoingWindow time.Duration

	// BaselineTypes are the types, compared case-insensitively, that mean
	// "nothing special is happening".
	BaselineTypes []string
}

// DefaultPolicy returns the policy used by Reconcile.
func DefaultPolicy() Policy {
	return Policy{
		OngoingWindow: time.Hour,
		BaselineTypes: []string{"", "normal", TypeNone},
	}
}

// Reconcile selects the canonical observation using DefaultPolicy.
func Reconcile(probe, embedded *Observation, history []HistoryEntry, now time.Time) Observation {
	return DefaultPolicy().Reconcile(probe, embedded, history, now)
}

// Reconcile combines the probe, the snapshot's embedded weather and the
// ongoing history entries into exactly one observation.
//
// Candidates are considered in that order. An active, non-baseline candidate
// always wins over baseline or inactive ones; among equally eligible
// candidates the most recently updated one wins, a missing timestamp counts as
// the oldest, and ties keep the earlier candidate. With no candidates the
// Sentinel is returned, and a winner without a type is reported as TypeNone.
func (p Policy) Reconcile(probe, embedded *Observation, history []HistoryEntry, now time.Time) Observation {
	candidates := make([]Observation, 0, 2+len(history))
	if probe != nil {
		candidates = append(candidates, probe.clone())
	}
	if embedded != nil {
		candidates = append(candidates, embedded.clone())
	}
	for _, entry := range history {
		if obs, ok := p.ongoing(entry, now); ok {
			candidates = append(candidates, obs)
		}
	}

	if len(candidates) == 0 {
		return Sentinel()
	}

	var noteworthy []Observation
	for _, c := range candidates {
		if p.Noteworthy(c) {
			noteworthy = append(noteworthy, c)
		}
	}
	best := latest(candidates)
	if len(noteworthy) > 0 {
		best = latest(noteworthy)
	}
	if strings.TrimSpace(best.Type) == "" {
		best.Type = TypeNone
	}
	return best
}

// Noteworthy reports whether o is active and not a baseline state.
func (p Policy) Noteworthy(o Observation) bool {
	return o.Active && !p.isBaseline(o.Type)
}

func (p Policy) isBaseline(typ string) bool {
	typ = common.NormalizeLower(typ)
	for _, b := range p.BaselineTypes {
		if typ == common.NormalizeLower(b) {
			return true
		}
	}
	return false
}

// ongoing converts a history entry into an observation when it is judged to
// still be in effect at now.
func (p Policy) ongoing(entry HistoryEntry, now time.Time) (Observation, bool) {
	inEffect := entry.Active ||
		(entry.EndTime != nil && entry.EndTime.After(now)) ||
		(entry.EndTime == nil && entry.StartTime != nil && now.Sub(*entry.StartTime) < p.OngoingWindow)
	if !inEffect {
		return Observation{}, false
	}

	var updated time.Time
	switch {
	case entry.EndTime != nil:
		updated = *entry.EndTime
	case entry.StartTime != nil:
		updated = *entry.StartTime
	default:
		updated = now.UTC()
	}

	return Observation{
		Type:        entry.Type,
		Active:      true,
		Effects:     append([]string{}, entry.Effects...),
		LastUpdated: &updated,
	}, true
}

// latest returns the most recently updated observation. A nil timestamp is
// older than any timestamp; ties keep the first one.
func latest(candidates []Observation) Observation {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if newer(c, best) {
			best = c
		}
	}
	return best
}

func newer(a, b Observation) bool {
	if a.LastUpdated == nil {
		return false
	}
	if b.LastUpdated == nil {
		return true
	}
	return a.LastUpdated.After(*b.LastUpdated)
}
