package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CellKind tags the value held by a Cell.
type CellKind int

const (
	EmptyCell CellKind = iota
	StringCell
	NumberCell
	BoolCell
	DateCell
)

func (k CellKind) String() string {
	switch k {
	case StringCell:
		return "string"
	case NumberCell:
		return "number"
	case BoolCell:
		return "bool"
	case DateCell:
		return "date"
	default:
		return "empty"
	}
}

// Cell is one raw spreadsheet value. Only the field matching Kind is meaningful,
// except Text which keeps the formatted representation for every non-empty kind.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
	Date   time.Time
}

func EmptyValue() Cell {
	return Cell{Kind: EmptyCell}
}

func StringValue(s string) Cell {
	return Cell{Kind: StringCell, Text: s}
}

func NumberValue(f float64) Cell {
	return Cell{Kind: NumberCell, Number: f, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

func BoolValue(b bool) Cell {
	return Cell{Kind: BoolCell, Bool: b, Text: strconv.FormatBool(b)}
}

func DateValue(t time.Time) Cell {
	return Cell{Kind: DateCell, Date: t, Text: t.Format("2006-01-02")}
}

// IsEmpty reports whether the cell carries no usable value. Whitespace-only
// strings count as empty.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case EmptyCell:
		return true
	case StringCell:
		return strings.TrimSpace(c.Text) == ""
	default:
		return false
	}
}

// TrimmedText returns the textual form of the cell without surrounding whitespace.
func (c Cell) TrimmedText() string {
	if c.Kind == EmptyCell {
		return ""
	}
	return strings.TrimSpace(c.Text)
}

// UnmarshalJSON resolves a JSON scalar into the matching cell kind.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = EmptyValue()
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = BoolValue(b)
	case '[':
		// Lists (e.g. several authors) collapse into one text cell.
		var parts []Cell
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			if !p.IsEmpty() {
				texts = append(texts, p.TrimmedText())
			}
		}
		if len(texts) == 0 {
			*c = EmptyValue()
			return nil
		}
		*c = StringValue(strings.Join(texts, ", "))
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("unsupported cell value %s", string(data))
		}
		*c = NumberValue(f)
	}
	return nil
}

// MarshalJSON writes the cell back as a JSON scalar.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case EmptyCell:
		return []byte("null"), nil
	case NumberCell:
		return json.Marshal(c.Number)
	case BoolCell:
		return json.Marshal(c.Bool)
	case DateCell:
		return json.Marshal(c.Date.Format(time.RFC3339))
	default:
		return json.Marshal(c.Text)
	}
}
