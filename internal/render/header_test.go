package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/gag-stock-relay/internal/weather"
)

func TestRenderHeader(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	updated := now.Add(-3 * time.Minute)
	w := weather.Observation{Type: "Rain", Active: true, Effects: []string{"Wet", "Growth"}, LastUpdated: &updated}
	blocks := []Block{{Title: "Seeds", Marker: "🌱", Count: 1234}}

	u := RenderHeader(w, blocks, now)

	assert.Equal(t, HeaderTitle, u.Title)
	assert.Contains(t, u.Description, "Rain (active)")
	assert.Contains(t, u.Description, "Wet, Growth")
	assert.Contains(t, u.Description, "3 minutes ago")
	require.Len(t, u.Fields, 1)
	assert.Equal(t, "🌱 Seeds", u.Fields[0].Name)
	assert.Equal(t, "1,234", u.Fields[0].Value)
	assert.True(t, u.Fields[0].Inline)
	require.NotNil(t, u.Timestamp)
	assert.True(t, now.Equal(*u.Timestamp))
}

func TestRenderHeader_Sentinel(t *testing.T) {
	u := RenderHeader(weather.Sentinel(), nil, time.Now())

	assert.Equal(t, "**Weather:** none reported", u.Description)
	assert.Empty(t, u.Fields)
}
