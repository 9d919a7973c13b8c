// Package content defines the question content document model: a closed set
// of typed content blocks plus answer options.
//
// Blocks are immutable value objects. They are constructed upstream per
// question, handed to the renderer and the linearizer read-only, and
// discarded by the caller afterwards; no component retains a block past the
// render call that used it.
package content

// Type tags the block variants. Consumers dispatch on it with a type switch
// over the concrete block types; an unrecognized tag is not an error and
// renders as nothing.
type Type string

// The full block variant set.
const (
	TypeText       Type = "text"
	TypeImage      Type = "image"
	TypeTable      Type = "table"
	TypeMath       Type = "math"
	TypeGrid       Type = "grid"
	TypeNumberLine Type = "number-line"
	TypeChart      Type = "chart"
	TypeShape      Type = "shape"
	TypeTally      Type = "tally"
	TypeClock      Type = "clock"
	TypeMoney      Type = "money"
	TypeFraction   Type = "fraction"
	TypeSpacer     Type = "spacer"
)

// Block is one typed unit of a question document. Identifiers are unique
// within one rendered list; they are used as render keys and are not
// enforced by the model.
type Block interface {
	ID() string
	Type() Type
}

// Document is an ordered, read-only list of content blocks.
type Document []Block

// Text is a plain prose block.
type Text struct {
	BlockID string `json:"id"`
	Content string `json:"content"`
}

// Image references a picture either by direct URL or by an object-storage
// {bucket, path} pair that must be resolved to a signed URL before use.
type Image struct {
	BlockID string `json:"id"`
	URL     string `json:"url,omitempty"`
	Bucket  string `json:"bucket,omitempty"`
	Path    string `json:"path,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// Table holds an optional header row and a row-major cell matrix.
type Table struct {
	BlockID string   `json:"id"`
	Caption string   `json:"caption,omitempty"`
	Headers []string `json:"headers,omitempty"`
	Rows    [][]Cell `json:"rows"`
}

// Math carries a constrained LaTeX-like expression.
type Math struct {
	BlockID string `json:"id"`
	Latex   string `json:"latex"`
}

// GridCell addresses one highlighted cell in top-down row order.
type GridCell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// GridMarker is a labeled point in Cartesian (bottom-up) coordinates.
// Markers model map coordinates while cells model screen rows; the
// renderer reconciles the two, see render.MarkerAt.
type GridMarker struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// Grid is a rows×cols matrix with sparse highlighted cells and markers.
// Rows and Cols are ≥ 1 for well-formed documents.
type Grid struct {
	BlockID     string       `json:"id"`
	Rows        int          `json:"rows"`
	Cols        int          `json:"cols"`
	FilledCells []GridCell   `json:"filledCells,omitempty"`
	Markers     []GridMarker `json:"markers,omitempty"`
}

// NumberLinePoint is a labeled marker on a number line.
type NumberLinePoint struct {
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

// NumberLine spans [Min, Max] with Max > Min. A zero Step means the
// renderer picks the default of (Max−Min)/4.
type NumberLine struct {
	BlockID string            `json:"id"`
	Min     float64           `json:"min"`
	Max     float64           `json:"max"`
	Step    float64           `json:"step,omitempty"`
	Markers []NumberLinePoint `json:"markers,omitempty"`
}

// ChartKind selects the chart layout.
type ChartKind string

// Supported chart kinds.
const (
	ChartBar ChartKind = "bar"
	ChartDot ChartKind = "dot"
)

// ChartValue is one labeled category value.
type ChartValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is a bar chart or dot plot over labeled category values.
type Chart struct {
	BlockID string       `json:"id"`
	Kind    ChartKind    `json:"chartType"`
	Title   string       `json:"title,omitempty"`
	Values  []ChartValue `json:"values"`
}

// Shape is a simple named geometric shape.
type Shape struct {
	BlockID string `json:"id"`
	Kind    string `json:"shape"`
	Color   string `json:"color,omitempty"`
}

// Tally shows a count as quinary tally marks.
type Tally struct {
	BlockID string `json:"id"`
	Count   int    `json:"count"`
}

// Clock shows an analog clock face. Hours ∈ [0,23], Minutes ∈ [0,59].
type Clock struct {
	BlockID     string `json:"id"`
	Hours       int    `json:"hours"`
	Minutes     int    `json:"minutes"`
	ShowDigital bool   `json:"showDigital,omitempty"`
}

// Coin is one denomination of a coin breakdown.
type Coin struct {
	Denomination float64 `json:"denomination"`
	Count        int     `json:"count"`
}

// Money renders either a coin breakdown or a single formatted amount.
type Money struct {
	BlockID  string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Coins    []Coin  `json:"coins,omitempty"`
}

// FractionDisplay selects the fraction rendering mode.
type FractionDisplay string

// Fraction display modes.
const (
	FractionCircle  FractionDisplay = "circle"
	FractionBar     FractionDisplay = "bar"
	FractionNumeric FractionDisplay = "numeric"
)

// Fraction is numerator/denominator with a display mode. Denominator is
// ≥ 1; numerator may exceed the denominator for improper-fraction callers,
// and the renderer must not assume otherwise.
type Fraction struct {
	BlockID     string          `json:"id"`
	Numerator   int             `json:"numerator"`
	Denominator int             `json:"denominator"`
	Display     FractionDisplay `json:"display,omitempty"`
}

// Spacer is vertical whitespace. It renders as empty space and is omitted
// from speech.
type Spacer struct {
	BlockID string `json:"id"`
	Height  int    `json:"height,omitempty"`
}

// Unknown preserves a block whose type tag is not part of the variant set.
// It renders as nothing and speaks as nothing.
type Unknown struct {
	BlockID string
	Tag     Type
}

func (b Text) ID() string       { return b.BlockID }
func (b Image) ID() string      { return b.BlockID }
func (b Table) ID() string      { return b.BlockID }
func (b Math) ID() string       { return b.BlockID }
func (b Grid) ID() string       { return b.BlockID }
func (b NumberLine) ID() string { return b.BlockID }
func (b Chart) ID() string      { return b.BlockID }
func (b Shape) ID() string      { return b.BlockID }
func (b Tally) ID() string      { return b.BlockID }
func (b Clock) ID() string      { return b.BlockID }
func (b Money) ID() string      { return b.BlockID }
func (b Fraction) ID() string   { return b.BlockID }
func (b Spacer) ID() string     { return b.BlockID }
func (b Unknown) ID() string    { return b.BlockID }

func (b Text) Type() Type       { return TypeText }
func (b Image) Type() Type      { return TypeImage }
func (b Table) Type() Type      { return TypeTable }
func (b Math) Type() Type       { return TypeMath }
func (b Grid) Type() Type       { return TypeGrid }
func (b NumberLine) Type() Type { return TypeNumberLine }
func (b Chart) Type() Type      { return TypeChart }
func (b Shape) Type() Type      { return TypeShape }
func (b Tally) Type() Type      { return TypeTally }
func (b Clock) Type() Type      { return TypeClock }
func (b Money) Type() Type      { return TypeMoney }
func (b Fraction) Type() Type   { return TypeFraction }
func (b Spacer) Type() Type     { return TypeSpacer }
func (b Unknown) Type() Type    { return b.Tag }

// Option is one answer choice. Exactly one of Text, Image, or Blocks is
// populated; Correct is consulted only by answer-review contexts.
type Option struct {
	ID      string
	Text    string
	Image   *Image
	Blocks  Document
	Correct bool
}
