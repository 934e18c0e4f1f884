package render

import (
	"fmt"

	"github.com/i474232898/gag-stock-relay/internal/common"
)

const maxFooterLength = 2048

// Compose assembles the header and one unit per block into a Message that
// satisfies limits.
//
// With Columns > 1, filler units complete the last row of category units.
// When the unit ceiling is hit, fillers are dropped first and then trailing
// categories. When the length ceiling is hit, the longest descriptions are
// re-truncated first; trailing categories are dropped only once every
// description is empty.
func Compose(header Unit, blocks []Block, limits Limits) Message {
	cats := make([]Unit, 0, len(blocks))
	for _, b := range blocks {
		cats = append(cats, categoryUnit(b))
	}

	omitted := 0
	if limits.MaxUnits > 0 && 1+len(cats) > limits.MaxUnits {
		keep := limits.MaxUnits - 1
		omitted = len(cats) - keep
		cats = cats[:keep]
	}

	fillers := fillerCount(len(cats), limits.Columns)
	if limits.MaxUnits > 0 && 1+len(cats)+fillers > limits.MaxUnits {
		fillers = 0
	}

	units := make([]Unit, 0, 1+len(cats)+fillers)
	units = append(units, header)
	units = append(units, cats...)
	for i := 0; i < fillers; i++ {
		units = append(units, Unit{Filler: true})
	}

	for i := range units {
		units[i] = clampUnit(units[i], limits)
	}
	setOmitted(&units[0], omitted)

	if limits.MaxTotalLength > 0 {
		units, omitted = fitTotal(units, omitted, limits.MaxTotalLength)
	}

	return Message{Units: units, Omitted: omitted}
}

func categoryUnit(b Block) Unit {
	title := b.Title + " (" + countLabel(b.Count) + ")"
	if b.Marker != "" {
		title = b.Marker + " " + title
	}
	return Unit{
		Title:       title,
		Description: b.Text,
		Color:       b.Color,
	}
}

// fillerCount is the number of fillers needed to complete the last row.
func fillerCount(n, columns int) int {
	if columns <= 1 || n == 0 {
		return 0
	}
	return (columns - n%columns) % columns
}

// clampUnit enforces the per-unit ceilings.
func clampUnit(u Unit, limits Limits) Unit {
	if limits.MaxTitleLength > 0 {
		u.Title = common.Truncate(u.Title, limits.MaxTitleLength)
	}
	if limits.MaxUnitLength > 0 {
		u.Description = common.Truncate(u.Description, limits.MaxUnitLength)
	}
	if limits.MaxFields > 0 && len(u.Fields) > limits.MaxFields {
		u.Fields = u.Fields[:limits.MaxFields]
	}
	if len(u.Fields) > 0 {
		fields := make([]Field, len(u.Fields))
		for i, f := range u.Fields {
			if limits.MaxTitleLength > 0 {
				f.Name = common.Truncate(f.Name, limits.MaxTitleLength)
			}
			if limits.MaxFieldLength > 0 {
				f.Value = common.Truncate(f.Value, limits.MaxFieldLength)
			}
			fields[i] = f
		}
		u.Fields = fields
	}
	u.Footer = common.Truncate(u.Footer, maxFooterLength)
	return u
}

func setOmitted(header *Unit, omitted int) {
	switch {
	case omitted == 1:
		header.Footer = "1 more category not shown"
	case omitted > 1:
		header.Footer = fmt.Sprintf("%d more categories not shown", omitted)
	}
}

// fitTotal shrinks units until their summed length is within ceiling.
func fitTotal(units []Unit, omitted, ceiling int) ([]Unit, int) {
	for {
		excess := total(units) - ceiling
		if excess <= 0 {
			return units, omitted
		}

		if i, target := shrinkTarget(units, excess); i >= 0 {
			units[i].Description = common.Truncate(units[i].Description, target)
			continue
		}

		// Every description is empty: drop the last non-header unit.
		last := len(units) - 1
		if last == 0 {
			h := &units[0]
			title := h.Title
			h.Fields = nil
			h.Title = common.Truncate(title, ceiling-common.Len(h.Footer))
			if total(units) > ceiling {
				h.Footer = ""
				h.Title = common.Truncate(title, ceiling)
			}
			return units, omitted
		}
		if !units[last].Filler {
			omitted++
		}
		units = units[:last]
		setOmitted(&units[0], omitted)
	}
}

// shrinkTarget picks the unit with the longest description (earliest on
// ties) and the length to cut it to. It shares the excess among tied units
// and never cuts below the next shorter description. i is -1 when every
// description is empty.
func shrinkTarget(units []Unit, excess int) (i, target int) {
	i = -1
	longest, ties := 0, 0
	for j, u := range units {
		n := common.Len(u.Description)
		switch {
		case n > longest:
			i, longest, ties = j, n, 1
		case n == longest && n > 0:
			ties++
		}
	}
	if i < 0 {
		return -1, 0
	}

	next := 0
	for _, u := range units {
		if n := common.Len(u.Description); n < longest && n > next {
			next = n
		}
	}

	share := (excess + ties - 1) / ties
	target = max(longest-share, next)
	if target >= longest {
		target = longest - 1
	}
	return i, target
}

func total(units []Unit) int {
	n := 0
	for _, u := range units {
		n += u.Len()
	}
	return n
}
