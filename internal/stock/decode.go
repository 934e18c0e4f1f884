package stock

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/i474232898/gag-stock-relay/internal/weather"
)

const unknownName = "?"

// DecodeSnapshot decodes the stock snapshot body into a fully defaulted
// Snapshot. The snapshot is always usable; a non-nil error is a
// *weather.DecodeError listing what had to be defaulted.
func DecodeSnapshot(body []byte) (Snapshot, error) {
	snap := Empty()
	derr := &weather.DecodeError{Source: "stock snapshot"}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		derr.Add("body is not a JSON object: %v", err)
		return snap, derr
	}

	for _, c := range Categories {
		for _, key := range append([]string{c.Key}, c.Aliases...) {
			raw, ok := fields[key]
			if !ok {
				continue
			}
			snap.Collections[c.Key] = decodeItems(key, raw, derr)
			break
		}
	}

	if raw, ok := fields["weather"]; ok && !isNull(raw) {
		var wf map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wf); err != nil {
			derr.Add("weather is not an object")
		} else {
			obs := weather.DecodeObservation(wf, derr)
			snap.Weather = &obs
		}
	}

	if raw, ok := fields["weatherHistory"]; ok && !isNull(raw) {
		snap.History = weather.DecodeHistory(raw, derr)
	}

	if raw, ok := fields["travelingMerchant"]; ok && !isNull(raw) {
		snap.Merchant = decodeMerchant(raw, derr)
	}

	return snap, derr.Err()
}

func decodeMerchant(raw json.RawMessage, derr *weather.DecodeError) Merchant {
	m := Merchant{Items: []Item{}}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		derr.Add("travelingMerchant is not an object")
		return m
	}
	if v, ok := fields["merchantName"]; ok {
		if err := json.Unmarshal(v, &m.Name); err != nil {
			derr.Add("travelingMerchant.merchantName is not a string")
		}
		m.Name = strings.TrimSpace(m.Name)
	}
	if v, ok := fields["items"]; ok {
		m.Items = decodeItems("travelingMerchant.items", v, derr)
	}
	return m
}

// decodeItems keeps source order and length. Entries without a usable name
// are named "?"; non-integer quantities are treated as absent.
func decodeItems(key string, raw json.RawMessage, derr *weather.DecodeError) []Item {
	items := []Item{}
	if isNull(raw) {
		return items
	}

	var entries []any
	if err := json.Unmarshal(raw, &entries); err != nil {
		derr.Add("%s is not a list", key)
		return items
	}

	for i, entry := range entries {
		item := Item{Name: unknownName}
		switch e := entry.(type) {
		case map[string]any:
			if name, ok := e["name"].(string); ok && strings.TrimSpace(name) != "" {
				item.Name = strings.TrimSpace(name)
			} else {
				derr.Add("%s[%d] has no name", key, i)
			}
			if q, ok := integer(e["quantity"]); ok {
				item.Quantity = &q
			}
		case string:
			if strings.TrimSpace(e) != "" {
				item.Name = strings.TrimSpace(e)
			}
		default:
			derr.Add("%s[%d] is not an object", key, i)
		}
		items = append(items, item)
	}
	return items
}

func integer(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
