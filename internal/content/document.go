package content

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotArray indicates that a document payload is not a JSON array.
var ErrNotArray = errors.New("document payload is not a JSON array")

// CellKind discriminates the table cell forms.
type CellKind int

// Table cell forms: a string, a number, or a quinary-tally count.
const (
	CellText CellKind = iota
	CellNumber
	CellTally
)

// Cell is one table cell. The JSON forms are a bare string, a bare
// number, or {"tally": n}.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Tally  int
}

// tallyCell is the wire form of a tally-valued cell.
type tallyCell struct {
	Tally *int `json:"tally"`
}

// UnmarshalJSON decodes the three cell forms. Anything unrecognized
// decodes as an empty text cell rather than failing the document.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Cell{Kind: CellText, Text: s, Number: 0, Tally: 0}

		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*c = Cell{Kind: CellNumber, Text: "", Number: n, Tally: 0}

		return nil
	}

	var t tallyCell
	if err := json.Unmarshal(data, &t); err == nil && t.Tally != nil {
		*c = Cell{Kind: CellTally, Text: "", Number: 0, Tally: *t.Tally}

		return nil
	}

	*c = Cell{Kind: CellText, Text: "", Number: 0, Tally: 0}

	return nil
}

// blockHeader is the common envelope peeked before selecting the concrete
// block type.
type blockHeader struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`
}

// DecodeDocument unmarshals a JSON array of tagged blocks into a Document.
// Unknown type tags decode to Unknown placeholders; they are preserved in
// order so identifiers stay aligned with the authored document.
func DecodeDocument(data []byte) (Document, error) {
	var raws []json.RawMessage

	err := json.Unmarshal(data, &raws)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotArray, err)
	}

	doc := make(Document, 0, len(raws))

	for i, raw := range raws {
		block, decodeErr := decodeBlock(raw)
		if decodeErr != nil {
			return nil, fmt.Errorf("block %d: %w", i, decodeErr)
		}

		doc = append(doc, block)
	}

	return doc, nil
}

// UnmarshalJSON lets a Document be decoded as a field of a larger payload.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := DecodeDocument(data)
	if err != nil {
		return err
	}

	*d = doc

	return nil
}

func decodeBlock(raw json.RawMessage) (Block, error) {
	var header blockHeader

	err := json.Unmarshal(raw, &header)
	if err != nil {
		return nil, fmt.Errorf("failed to decode block envelope: %w", err)
	}

	block := newBlock(header.Type)
	if block == nil {
		return Unknown{BlockID: header.ID, Tag: header.Type}, nil
	}

	err = json.Unmarshal(raw, block)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q block: %w", header.Type, err)
	}

	return deref(block), nil
}

// newBlock returns a pointer to the zero value of the concrete type for a
// tag, or nil for tags outside the variant set.
func newBlock(tag Type) any {
	switch tag {
	case TypeText:
		return &Text{}
	case TypeImage:
		return &Image{}
	case TypeTable:
		return &Table{}
	case TypeMath:
		return &Math{}
	case TypeGrid:
		return &Grid{}
	case TypeNumberLine:
		return &NumberLine{}
	case TypeChart:
		return &Chart{}
	case TypeShape:
		return &Shape{}
	case TypeTally:
		return &Tally{}
	case TypeClock:
		return &Clock{}
	case TypeMoney:
		return &Money{}
	case TypeFraction:
		return &Fraction{}
	case TypeSpacer:
		return &Spacer{}
	default:
		return nil
	}
}

func deref(block any) Block {
	switch b := block.(type) {
	case *Text:
		return *b
	case *Image:
		return *b
	case *Table:
		return *b
	case *Math:
		return *b
	case *Grid:
		return *b
	case *NumberLine:
		return *b
	case *Chart:
		return *b
	case *Shape:
		return *b
	case *Tally:
		return *b
	case *Clock:
		return *b
	case *Money:
		return *b
	case *Fraction:
		return *b
	case *Spacer:
		return *b
	default:
		return nil
	}
}

// optionWire is the JSON form of an answer option.
type optionWire struct {
	ID      string          `json:"id"`
	Text    string          `json:"text,omitempty"`
	Image   *Image          `json:"image,omitempty"`
	Blocks  json.RawMessage `json:"blocks,omitempty"`
	Correct bool            `json:"correct,omitempty"`
}

// UnmarshalJSON decodes an option, including a nested block list when
// present.
func (o *Option) UnmarshalJSON(data []byte) error {
	var wire optionWire

	err := json.Unmarshal(data, &wire)
	if err != nil {
		return fmt.Errorf("failed to decode option: %w", err)
	}

	var blocks Document

	if len(wire.Blocks) > 0 {
		blocks, err = DecodeDocument(wire.Blocks)
		if err != nil {
			return fmt.Errorf("option %q blocks: %w", wire.ID, err)
		}
	}

	*o = Option{
		ID:      wire.ID,
		Text:    wire.Text,
		Image:   wire.Image,
		Blocks:  blocks,
		Correct: wire.Correct,
	}

	return nil
}
