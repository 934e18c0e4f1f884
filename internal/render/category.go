package render

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/gag-stock-relay/internal/common"
	"github.com/i474232898/gag-stock-relay/internal/stock"
)

// EmptyText is the text of a block whose category has no items.
const EmptyText = "No items"

// RarityMarkers are name substrings of high-tier items. Matching names are
// underlined.
var RarityMarkers = []string{"Legendary", "Mythical", "Divine", "Prismatic", "Transcendent"}

// Title turns a snapshot key such as "seeds" into a display title.
func Title(key string) string {
	return cases.Title(language.English).String(strings.TrimSpace(key))
}

// RenderCategory renders up to maxItems lines for items and clamps the result
// to budget characters. Count is always len(items).
func RenderCategory(title, marker string, color int, items []stock.Item, maxItems, budget int) Block {
	b := Block{
		Title:  title,
		Marker: marker,
		Color:  color,
		Count:  len(items),
	}

	if len(items) == 0 {
		b.Text = common.Truncate(EmptyText, budget)
		return b
	}

	if maxItems < 0 {
		maxItems = 0
	}
	shown := min(len(items), maxItems)

	lines := make([]string, 0, shown+1)
	for _, item := range items[:shown] {
		lines = append(lines, itemLine(item))
	}
	if hidden := len(items) - shown; hidden > 0 {
		lines = append(lines, fmt.Sprintf("…and %s more", humanize.Comma(int64(hidden))))
	}

	b.Text = common.Truncate(strings.Join(lines, "\n"), budget)
	return b
}

// RenderStock renders every catalogue category of snap in order, followed by
// the traveling merchant when it has items.
func RenderStock(snap stock.Snapshot, maxItems, budget int) []Block {
	blocks := make([]Block, 0, len(stock.Categories)+1)
	for _, c := range stock.Categories {
		blocks = append(blocks, RenderCategory(Title(c.Key), c.Marker, c.Color, snap.Items(c.Key), maxItems, budget))
	}

	if m := snap.Merchant; len(m.Items) > 0 {
		title := "Traveling Merchant"
		if m.Name != "" {
			title += " — " + m.Name
		}
		mc := stock.MerchantCategory
		blocks = append(blocks, RenderCategory(title, mc.Marker, mc.Color, m.Items, maxItems, budget))
	}
	return blocks
}

func itemLine(item stock.Item) string {
	name := item.Name
	if common.HasAny(name, RarityMarkers...) {
		name = "__" + name + "__"
	}
	line := "• " + name
	if item.Quantity != nil {
		line += " `×" + humanize.Comma(int64(*item.Quantity)) + "`"
	}
	return line
}

func countLabel(n int) string {
	if n == 1 {
		return "1 item"
	}
	return humanize.Comma(int64(n)) + " items"
}
