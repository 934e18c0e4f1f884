package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	ts := now.Add(d)
	return &ts
}

func TestReconcile_NoCandidatesReturnsSentinel(t *testing.T) {
	got := Reconcile(nil, nil, nil, now)

	assert.Equal(t, TypeNone, got.Type)
	assert.False(t, got.Active)
	require.NotNil(t, got.Effects)
	assert.Empty(t, got.Effects)
}

func TestReconcile_UntypedCandidateReportsNone(t *testing.T) {
	probe := &Observation{}
	embedded := &Observation{Type: " ", LastUpdated: at(-time.Minute)}

	got := Reconcile(probe, embedded, nil, now)

	assert.Equal(t, TypeNone, got.Type)
	assert.False(t, got.Active)
	assert.NotNil(t, got.Effects)
}

func TestReconcile_FinishedHistoryIsNotACandidate(t *testing.T) {
	history := []HistoryEntry{
		{Type: "Rain", StartTime: at(-3 * time.Hour), EndTime: at(-2 * time.Hour)},
	}

	got := Reconcile(nil, nil, history, now)

	assert.Equal(t, Sentinel(), got)
}

func TestReconcile_SingleNoteworthyWinsOverNewerBaseline(t *testing.T) {
	probe := &Observation{Type: "Normal", Active: true, LastUpdated: at(0)}
	embedded := &Observation{Type: "Thunderstorm", Active: true, LastUpdated: at(-30 * time.Minute)}

	got := Reconcile(probe, embedded, nil, now)

	assert.Equal(t, "Thunderstorm", got.Type)
}

func TestReconcile_LatestNoteworthyWins(t *testing.T) {
	probe := &Observation{Type: "Rain", Active: true, LastUpdated: at(-10 * time.Minute)}
	embedded := &Observation{Type: "Frost", Active: true, LastUpdated: at(-time.Minute)}

	got := Reconcile(probe, embedded, nil, now)

	assert.Equal(t, "Frost", got.Type)
}

func TestReconcile_MissingTimestampSortsOldest(t *testing.T) {
	probe := &Observation{Type: "Rain", Active: true}
	embedded := &Observation{Type: "Frost", Active: true, LastUpdated: at(-24 * time.Hour)}

	got := Reconcile(probe, embedded, nil, now)

	assert.Equal(t, "Frost", got.Type)
}

func TestReconcile_TieKeepsCandidateOrder(t *testing.T) {
	ts := at(-5 * time.Minute)
	probe := &Observation{Type: "Rain", Active: true, LastUpdated: ts}
	embedded := &Observation{Type: "Frost", Active: true, LastUpdated: ts}
	history := []HistoryEntry{{Type: "Windy", Active: true, EndTime: ts}}

	assert.Equal(t, "Rain", Reconcile(probe, embedded, history, now).Type)
	assert.Equal(t, "Frost", Reconcile(nil, embedded, history, now).Type)
}

func TestReconcile_NoNoteworthyPicksLatestOverall(t *testing.T) {
	probe := &Observation{Type: "normal", Active: false, LastUpdated: at(-time.Hour)}
	embedded := &Observation{Type: "Rain", Active: false, LastUpdated: at(-time.Minute)}

	got := Reconcile(probe, embedded, nil, now)

	assert.Equal(t, "Rain", got.Type)
	assert.False(t, got.Active)
}

func TestReconcile_BaselineIsCaseInsensitive(t *testing.T) {
	probe := &Observation{Type: " NONE ", Active: true, LastUpdated: at(0)}
	embedded := &Observation{Type: "Blood Moon", Active: true, LastUpdated: at(-time.Hour)}

	got := Reconcile(probe, embedded, nil, now)

	assert.Equal(t, "Blood Moon", got.Type)
}

// Probe says normal, history has an ongoing Rain entry.
func TestReconcile_OngoingHistoryBeatsNormalProbe(t *testing.T) {
	probe := &Observation{Type: "normal", Active: false, LastUpdated: at(0)}
	history := []HistoryEntry{
		{Type: "Sunny", StartTime: at(-5 * time.Hour), EndTime: at(-4 * time.Hour)},
		{Type: "Rain", Active: true, StartTime: at(-2 * time.Minute)},
	}

	got := Reconcile(probe, nil, history, now)

	assert.Equal(t, "Rain", got.Type)
	assert.True(t, got.Active)
}

func TestReconcile_OngoingRules(t *testing.T) {
	tests := []struct {
		name        string
		entry       HistoryEntry
		ongoing     bool
		wantUpdated *time.Time
	}{
		{
			name:        "active flag",
			entry:       HistoryEntry{Type: "Rain", Active: true},
			ongoing:     true,
			wantUpdated: &now,
		},
		{
			name:        "ends in the future",
			entry:       HistoryEntry{Type: "Rain", StartTime: at(-2 * time.Hour), EndTime: at(time.Minute)},
			ongoing:     true,
			wantUpdated: at(time.Minute),
		},
		{
			name:        "open ended and recent",
			entry:       HistoryEntry{Type: "Rain", StartTime: at(-59 * time.Minute)},
			ongoing:     true,
			wantUpdated: at(-59 * time.Minute),
		},
		{
			name:    "open ended and stale",
			entry:   HistoryEntry{Type: "Rain", StartTime: at(-61 * time.Minute)},
			ongoing: false,
		},
		{
			name:    "no times and inactive",
			entry:   HistoryEntry{Type: "Rain"},
			ongoing: false,
		},
	}

	p := DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, ok := p.ongoing(tt.entry, now)
			require.Equal(t, tt.ongoing, ok)
			if !ok {
				return
			}
			assert.True(t, obs.Active)
			require.NotNil(t, obs.LastUpdated)
			assert.True(t, tt.wantUpdated.Equal(*obs.LastUpdated))
		})
	}
}

func TestReconcile_DoesNotAliasInputs(t *testing.T) {
	probe := &Observation{Type: "Rain", Active: true, Effects: []string{"Wet"}}

	got := Reconcile(probe, nil, nil, now)
	got.Effects[0] = "Dry"

	assert.Equal(t, "Wet", probe.Effects[0])
}
