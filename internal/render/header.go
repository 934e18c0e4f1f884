package render

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/i474232898/gag-stock-relay/internal/weather"
)

const (
	HeaderTitle = "Grow a Garden — Stocks & Weather"
	HeaderURL   = "https://www.game.guide/grow-a-garden-stock-tracker"
	HeaderColor = 0x5865F2
)

var weatherIcons = map[string]string{
	"rain":         "🌧️",
	"thunderstorm": "⛈️",
	"frost":        "❄️",
	"snow":         "🌨️",
	"windy":        "💨",
	"heatwave":     "🔥",
	"tornado":      "🌪️",
	"blood moon":   "🌕",
	"meteor":       "☄️",
}

// RenderHeader renders the canonical weather and a count field per block.
func RenderHeader(w weather.Observation, blocks []Block, now time.Time) Unit {
	ts := now.UTC()
	u := Unit{
		Title:       HeaderTitle,
		URL:         HeaderURL,
		Description: weatherText(w, now),
		Color:       HeaderColor,
		Timestamp:   &ts,
	}
	for _, b := range blocks {
		u.Fields = append(u.Fields, Field{
			Name:   strings.TrimSpace(b.Marker + " " + b.Title),
			Value:  humanize.Comma(int64(b.Count)),
			Inline: true,
		})
	}
	return u
}

func weatherText(w weather.Observation, now time.Time) string {
	if strings.EqualFold(strings.TrimSpace(w.Type), weather.TypeNone) || strings.TrimSpace(w.Type) == "" {
		return "**Weather:** none reported"
	}

	icon, ok := weatherIcons[strings.ToLower(strings.TrimSpace(w.Type))]
	if !ok {
		icon = "🌤️"
	}

	var b strings.Builder
	b.WriteString("**Weather:** " + icon + " " + w.Type)
	if w.Active {
		b.WriteString(" (active)")
	}
	if len(w.Effects) > 0 {
		b.WriteString("\n**Effects:** " + strings.Join(w.Effects, ", "))
	}
	if w.LastUpdated != nil {
		b.WriteString("\n_Updated " + humanize.RelTime(*w.LastUpdated, now, "ago", "from now") + "_")
	}
	return b.String()
}
