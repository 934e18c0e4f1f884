package render

import (
	"time"

	"github.com/i474232898/gag-stock-relay/internal/common"
)

// Block is one category rendered into a length-bounded text.
type Block struct {
	Title  string `json:"title"`
	Marker string `json:"marker"`
	Color  int    `json:"color"`
	Text   string `json:"text"`
	// Count is the source collection length, not the number of lines shown.
	Count int `json:"count"`
}

// Field is a small key/value pair shown inside a unit.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Unit is one presentation unit of a message: the header, a category, or a
// layout filler. Fillers carry no content.
type Unit struct {
	Title       string     `json:"title,omitempty"`
	URL         string     `json:"url,omitempty"`
	Description string     `json:"description,omitempty"`
	Color       int        `json:"color,omitempty"`
	Fields      []Field    `json:"fields,omitempty"`
	Footer      string     `json:"footer,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Filler      bool       `json:"filler,omitempty"`
}

// Blank is the zero-width text a publisher puts where the platform requires
// text but the unit has none: filler units, empty field names or values, and
// units with no title, description or fields.
const Blank = "\u200b"

// Len is the unit's contribution to the message-wide length ceiling,
// including any Blank text it will be published with.
func (u Unit) Len() int {
	if u.Filler {
		return common.Len(Blank)
	}
	n := common.Len(u.Title) + common.Len(u.Description) + common.Len(u.Footer)
	for _, f := range u.Fields {
		n += textLen(f.Name) + textLen(f.Value)
	}
	if u.Title == "" && u.Description == "" && len(u.Fields) == 0 {
		n += common.Len(Blank)
	}
	return n
}

func textLen(s string) int {
	if s == "" {
		return common.Len(Blank)
	}
	return common.Len(s)
}

// Message is the composed, bounded result handed to the publisher.
type Message struct {
	Units []Unit `json:"units"`
	// Omitted is the number of category units dropped to respect MaxUnits
	// or MaxTotalLength.
	Omitted int `json:"omitted"`
}

// Len is the summed length of all units.
func (m Message) Len() int {
	n := 0
	for _, u := range m.Units {
		n += u.Len()
	}
	return n
}

// Limits are the platform ceilings the composer enforces. A value <= 0
// disables the corresponding ceiling, except Columns where <= 1 disables
// filler insertion.
type Limits struct {
	Columns        int `yaml:"columns" validate:"gte=0"`
	MaxUnits       int `yaml:"max_units" validate:"gte=0"`
	MaxTotalLength int `yaml:"max_total_length" validate:"gte=0,lte=6000"`
	MaxUnitLength  int `yaml:"max_unit_length" validate:"gte=0"`
	MaxFieldLength int `yaml:"max_field_length" validate:"gte=0"`
	MaxTitleLength int `yaml:"max_title_length" validate:"gte=0"`
	MaxFields      int `yaml:"max_fields" validate:"gte=0"`
}

// DefaultLimits returns Discord embed limits with a safety margin on the text
// ceilings.
func DefaultLimits() Limits {
	return Limits{
		Columns:        3,
		MaxUnits:       10,
		MaxTotalLength: 5800,
		MaxUnitLength:  3800,
		MaxFieldLength: 1024,
		MaxTitleLength: 256,
		MaxFields:      25,
	}
}
