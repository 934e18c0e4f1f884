package weather

import (
	"time"
)

// TypeNone is the type of the sentinel observation returned when there is no
// weather evidence at all.
const TypeNone = "none"

// Observation is one report of the weather state. It is produced by the quick
// probe, by the weather embedded in a stock snapshot, and by ongoing
// weather-history entries.
type Observation struct {
	Type        string     `json:"type"`
	Active      bool       `json:"active"`
	Effects     []string   `json:"effects"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"` // always UTC
}

// HistoryEntry is a past weather event as listed in a snapshot's
// weatherHistory. It carries a start/end window instead of lastUpdated.
type HistoryEntry struct {
	Type      string     `json:"type"`
	Active    bool       `json:"active"`
	Effects   []string   `json:"effects"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// Sentinel returns the explicit "no evidence" observation.
func Sentinel() Observation {
	return Observation{
		Type:    TypeNone,
		Active:  false,
		Effects: []string{},
	}
}

func (o Observation) clone() Observation {
	c := o
	c.Effects = append([]string{}, o.Effects...)
	if o.LastUpdated != nil {
		ts := *o.LastUpdated
		c.LastUpdated = &ts
	}
	return c
}
