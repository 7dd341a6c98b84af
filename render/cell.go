package render

// Attr represents text attributes (bitmask)
type Attr uint8

const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << 0
	AttrDim       Attr = 1 << 1
	AttrItalic    Attr = 1 << 2
	AttrUnderline Attr = 1 << 3
	AttrReverse   Attr = 1 << 4
)

// Cell is a single composed terminal cell
// Rune 0 marks either an empty cell or the trailing half of a wide rune
type Cell struct {
	Rune  rune
	Fg    RGB
	Bg    RGB
	Attrs Attr
	wide  bool // continuation of the wide rune to the left
}
