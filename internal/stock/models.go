package stock

import (
	"github.com/i474232898/gag-stock-relay/internal/weather"
)

// Item is one stocked item. Quantity is nil when the upstream did not report
// an integer quantity.
type Item struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity,omitempty"`
}

// Merchant is the traveling merchant record. A zero Merchant means the
// merchant is not in town.
type Merchant struct {
	Name  string `json:"merchantName"`
	Items []Item `json:"items"`
}

// Category describes how one snapshot collection is presented.
type Category struct {
	Key     string
	Aliases []string
	Marker  string
	Color   int
}

// Categories is the presentation order of the snapshot collections.
var Categories = []Category{
	{Key: "seeds", Marker: "🌱", Color: 0x57F287},
	{Key: "gear", Marker: "🛠️", Color: 0x95A5A6},
	{Key: "eggs", Marker: "🥚", Color: 0xFEE75C},
	{Key: "cosmetics", Marker: "🎨", Color: 0xEB459E},
	{Key: "honey", Marker: "🍯", Color: 0xF1A33C},
	{Key: "events", Aliases: []string{"event"}, Marker: "🎉", Color: 0x9B59B6},
}

// MerchantCategory is used to present the traveling merchant's items.
var MerchantCategory = Category{Key: "travelingMerchant", Marker: "🧳", Color: 0x1ABC9C}

// Snapshot is one full, fully defaulted data pull. Every key of Categories is
// present in Collections with a non-nil slice.
type Snapshot struct {
	Collections map[string][]Item      `json:"collections"`
	Weather     *weather.Observation   `json:"weather,omitempty"`
	History     []weather.HistoryEntry `json:"weatherHistory"`
	Merchant    Merchant               `json:"travelingMerchant"`
}

// Items returns the collection for a category key, never nil.
func (s Snapshot) Items(key string) []Item {
	if items, ok := s.Collections[key]; ok && items != nil {
		return items
	}
	return []Item{}
}

// Empty returns a snapshot with every collection present and empty.
func Empty() Snapshot {
	s := Snapshot{
		Collections: make(map[string][]Item, len(Categories)),
		History:     []weather.HistoryEntry{},
		Merchant:    Merchant{Items: []Item{}},
	}
	for _, c := range Categories {
		s.Collections[c.Key] = []Item{}
	}
	return s
}
