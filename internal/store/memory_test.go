package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/gag-stock-relay/internal/relay"
)

var base = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func record(i int) relay.RunRecord {
	return relay.RunRecord{ID: fmt.Sprintf("run-%d", i), StartedAt: base.Add(time.Duration(i) * 5 * time.Minute)}
}

func TestMemoryStore_Empty(t *testing.T) {
	s := NewMemoryStore(10, 0)

	_, err := s.GetLatest()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetRange(base, base.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	s := NewMemoryStore(3, 0)
	for i := 0; i < 5; i++ {
		s.SaveRun(record(i))
	}

	latest, err := s.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, "run-4", latest.ID)

	all, err := s.GetRange(base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-2", all[0].ID)
}

func TestMemoryStore_RetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, 12*time.Minute)
	s.now = func() time.Time { return base.Add(20 * time.Minute) }
	for i := 0; i < 5; i++ {
		s.SaveRun(record(i))
	}

	all, err := s.GetRange(base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-2", all[0].ID)
}

func TestMemoryStore_GetRangeInclusive(t *testing.T) {
	s := NewMemoryStore(0, 0)
	for i := 0; i < 4; i++ {
		s.SaveRun(record(i))
	}

	got, err := s.GetRange(base.Add(5*time.Minute), base.Add(10*time.Minute))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-1", got[0].ID)
	assert.Equal(t, "run-2", got[1].ID)
}
