// Package pdfdoc lays out fixed-size US Letter documents with a running
// vertical cursor and renders them to PDF bytes.
//
// Coordinates are PDF points with the origin at the bottom-left corner. The
// cursor starts at the top margin and moves down by a fixed height after every
// primitive. When the next primitive would take the cursor below the layout's
// low-water mark a new page is started first.
package pdfdoc

import "fmt"

const (
	PageWidth  = 612.0
	PageHeight = 792.0

	MarginLeft  = 50.0
	MarginRight = 50.0
	MarginTop   = 50.0

	// One low-water mark per document type.
	LetterLowWater = 72.0
	ReportLowWater = 60.0

	NoteLimit = 80

	TitleHeight  = 28.0
	HeaderHeight = 20.0
	LineHeight   = 16.0
	NoteHeight   = 13.0
	NoteIndent   = 14.0
	SectionGap   = 10.0
	RuleGap      = 10.0
)

type Color struct{ R, G, B int }

var (
	Black  = Color{0, 0, 0}
	Muted  = Color{128, 128, 128}
	Accent = Color{24, 64, 128}
)

// Style selects a core font. Only the standard 14 fonts are used so the
// output never embeds font files.
type Style struct {
	Font  string
	Bold  bool
	Size  float64
	Color Color
}

var (
	TitleStyle  = Style{Font: "Helvetica", Bold: true, Size: 18, Color: Accent}
	HeaderStyle = Style{Font: "Helvetica", Bold: true, Size: 13, Color: Black}
	BodyStyle   = Style{Font: "Helvetica", Size: 11, Color: Black}
	BoldStyle   = Style{Font: "Helvetica", Bold: true, Size: 11, Color: Black}
	MutedStyle  = Style{Font: "Helvetica", Size: 11, Color: Muted}
	NoteStyle   = Style{Font: "Helvetica", Size: 9, Color: Muted}
	SmallStyle  = Style{Font: "Helvetica", Size: 8, Color: Black}
)

type OpKind int

const (
	OpText OpKind = iota
	OpLine
)

// Op is one recorded drawing primitive.
type Op struct {
	Kind   OpKind
	X, Y   float64
	X2, Y2 float64 // line end, OpLine only
	Width  float64 // stroke width, OpLine only
	Text   string
	Style  Style
	Role   Role
}

// Role tags text ops so callers and tests can reason about structure.
type Role int

const (
	RoleBody Role = iota
	RoleTitle
	RoleHeader
	RoleItem
	RoleNote
	RoleEmpty
)

type Page struct {
	Ops []Op
}

// Layout is the pagination state: the page list and the cursor on the last page.
type Layout struct {
	Pages    []Page
	CursorY  float64
	LowWater float64
}

// New starts a one-page layout with the given low-water mark.
func New(lowWater float64) *Layout {
	l := &Layout{LowWater: lowWater}
	l.AddPage()
	return l
}

// Top is the cursor position at the start of every page.
func Top() float64 {
	return PageHeight - MarginTop
}

func (l *Layout) PageCount() int {
	return len(l.Pages)
}

// AddPage appends a blank page and resets the cursor to the top margin.
func (l *Layout) AddPage() {
	l.Pages = append(l.Pages, Page{})
	l.CursorY = Top()
}

// EnsureSpace starts a new page when drawing needed points would cross the
// low-water mark. It reports whether a page break happened.
func (l *Layout) EnsureSpace(needed float64) bool {
	if l.CursorY-needed < l.LowWater {
		l.AddPage()
		return true
	}
	return false
}

func (l *Layout) current() *Page {
	return &l.Pages[len(l.Pages)-1]
}

func (l *Layout) put(x float64, text string, style Style, role Role, height float64) {
	l.current().Ops = append(l.current().Ops, Op{Kind: OpText, X: x, Y: l.CursorY, Text: text, Style: style, Role: role})
	l.CursorY -= height
}

// Text draws one line at x and advances the cursor by height.
func (l *Layout) Text(x float64, text string, style Style, height float64) {
	l.EnsureSpace(height)
	l.put(x, text, style, RoleBody, height)
}

// Line draws one body line at the left margin.
func (l *Layout) Line(text string) {
	l.Text(MarginLeft, text, BodyStyle, LineHeight)
}

// Styled draws one line at the left margin in the given style.
func (l *Layout) Styled(text string, style Style) {
	l.Text(MarginLeft, text, style, lineHeightFor(style))
}

// Title draws the document title.
func (l *Layout) Title(text string) {
	l.EnsureSpace(TitleHeight)
	l.put(MarginLeft, text, TitleStyle, RoleTitle, TitleHeight)
}

// Heading draws a header line in style. The page breaks first unless the
// header and firstLine points of body below it fit above the low-water mark.
func (l *Layout) Heading(text string, style Style, firstLine float64) {
	h := lineHeightFor(style)
	l.EnsureSpace(h + firstLine)
	l.put(MarginLeft, text, style, RoleHeader, h)
}

// Paragraph wraps text to width characters and draws each line.
func (l *Layout) Paragraph(text string, width int, style Style) {
	for _, line := range Wrap(text, width) {
		l.Styled(line, style)
	}
}

// Cell is one column of a table row.
type Cell struct {
	X     float64
	Text  string
	Style Style
}

// Row draws cells on the same baseline.
func (l *Layout) Row(cells ...Cell) {
	l.EnsureSpace(LineHeight)
	y := l.CursorY
	for _, c := range cells {
		l.current().Ops = append(l.current().Ops, Op{Kind: OpText, X: c.X, Y: y, Text: c.Text, Style: c.Style, Role: RoleBody})
	}
	l.CursorY -= LineHeight
}

// KeyValue draws a label and its value as a two-column row.
func (l *Layout) KeyValue(label, value string) {
	l.Row(
		Cell{X: MarginLeft, Text: label, Style: BodyStyle},
		Cell{X: MarginLeft + 260, Text: value, Style: BoldStyle},
	)
}

// Rule draws a horizontal line across the content width.
func (l *Layout) Rule() {
	l.EnsureSpace(RuleGap)
	y := l.CursorY + LineHeight/2 - 2
	l.current().Ops = append(l.current().Ops, Op{
		Kind: OpLine, X: MarginLeft, Y: y, X2: PageWidth - MarginRight, Y2: y, Width: 0.5, Style: Style{Color: Muted},
	})
	l.CursorY -= RuleGap
}

// Gap moves the cursor down without drawing.
func (l *Layout) Gap(h float64) {
	l.CursorY -= h
}

// Item is one entry of a section list.
type Item struct {
	Text string
	Note string // optional second line, truncated to NoteLimit
}

func (it Item) height() float64 {
	if it.Note != "" {
		return LineHeight + NoteHeight
	}
	return LineHeight
}

// Section draws "<title> (<n>)" followed by one line per item, or a muted
// "None" when items is empty. The header is only drawn where its first body
// line fits below it, so a header never ends a page on its own.
func (l *Layout) Section(title string, items []Item) {
	first := LineHeight
	if len(items) > 0 {
		first = items[0].height()
	}
	l.EnsureSpace(HeaderHeight + first)
	l.put(MarginLeft, fmt.Sprintf("%s (%d)", title, len(items)), HeaderStyle, RoleHeader, HeaderHeight)

	if len(items) == 0 {
		l.put(MarginLeft, "None", MutedStyle, RoleEmpty, LineHeight)
	}
	for _, it := range items {
		l.EnsureSpace(it.height())
		l.put(MarginLeft, it.Text, BodyStyle, RoleItem, LineHeight)
		if it.Note != "" {
			l.put(MarginLeft+NoteIndent, Truncate(it.Note, NoteLimit), NoteStyle, RoleNote, NoteHeight)
		}
	}
	l.Gap(SectionGap)
}

func lineHeightFor(s Style) float64 {
	switch {
	case s.Size >= 18:
		return TitleHeight
	case s.Size >= 13:
		return HeaderHeight
	case s.Size <= 9:
		return NoteHeight
	default:
		return LineHeight
	}
}
