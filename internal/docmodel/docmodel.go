// Package docmodel defines the content-node model all merge logic operates
// on. A document is an ordered list of tagged-variant nodes (Paragraph,
// Table, PageBreak); images hang off runs. OOXML round-tripping lives in
// internal/docio so the merge core never depends on a library's internal
// object graph.
package docmodel

import (
	"bytes"
	"strings"
)

// EMU (English Metric Unit) conversion constants for image extents.
const (
	EMUPerInch = 914400
	EMUPerCM   = 360000
)

// Node is one block-level element of a document.
type Node interface {
	// CloneNode returns a deep copy sharing no mutable state with the
	// receiver, including backing byte slices.
	CloneNode() Node
}

// Document is the root of a parsed or composed document.
type Document struct {
	Title string
	Nodes []Node
}

// Paragraph is a styled run sequence.
type Paragraph struct {
	Style string // named style, e.g. "Heading1"; empty means body text
	Align string // "left", "center", "right", "both"; empty means inherit

	// Spacing values in twips; zero means unset and must not be copied
	// over a target's style defaults.
	SpacingBefore int
	SpacingAfter  int
	SpacingLine   int

	Runs []Run
}

// Run is a span of uniformly formatted text, possibly carrying inline images.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	FontSize  string // half-points, e.g. "24"; empty means inherit
	FontName  string
	Color     string // RRGGBB, no leading '#'
	Images    []Image
}

// Image is an embedded picture with its display extent.
type Image struct {
	Data      []byte
	WidthEMU  int64
	HeightEMU int64
}

// Table is a grid of cells, each holding its own paragraphs.
type Table struct {
	Style string
	Rows  [][]Cell
}

// Cell is one table cell.
type Cell struct {
	Paragraphs []Paragraph
}

// PageBreak forces the following content onto a new page.
type PageBreak struct{}

// Text returns the concatenated run text of the paragraph.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// SetText replaces the paragraph's visible text while preserving run-level
// formatting: the new text is written into the first run (one is created if
// the paragraph has none) and the text of any remaining runs is cleared.
// Images attached to runs are left in place.
func (p *Paragraph) SetText(s string) {
	if len(p.Runs) == 0 {
		p.Runs = []Run{{Text: s}}
		return
	}
	p.Runs[0].Text = s
	for i := 1; i < len(p.Runs); i++ {
		p.Runs[i].Text = ""
	}
}

// HeadingLevel reports the outline depth of a heading style name
// ("Heading1".."Heading9" or "heading 1".."heading 9"), or 0 for body text.
func HeadingLevel(style string) int {
	s := strings.ToLower(strings.TrimSpace(style))
	s = strings.TrimPrefix(s, "heading")
	s = strings.TrimSpace(s)
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0
	}
	return int(s[0] - '0')
}

// IsHeading reports whether the paragraph carries a heading style.
func (p *Paragraph) IsHeading() bool {
	return HeadingLevel(p.Style) > 0
}

func (p *Paragraph) CloneNode() Node { return p.Clone() }

// Clone returns a deep copy of the paragraph.
func (p *Paragraph) Clone() *Paragraph {
	cp := *p
	cp.Runs = make([]Run, len(p.Runs))
	for i, r := range p.Runs {
		cp.Runs[i] = r.Clone()
	}
	return &cp
}

// Clone returns a deep copy of the run, including image bytes.
func (r Run) Clone() Run {
	cp := r
	if len(r.Images) > 0 {
		cp.Images = make([]Image, len(r.Images))
		for i, img := range r.Images {
			cp.Images[i] = img.Clone()
		}
	}
	return cp
}

// Clone returns a deep copy of the image; the pixel data is copied so the
// clone never aliases the source buffer.
func (img Image) Clone() Image {
	return Image{
		Data:      bytes.Clone(img.Data),
		WidthEMU:  img.WidthEMU,
		HeightEMU: img.HeightEMU,
	}
}

func (t *Table) CloneNode() Node { return t.Clone() }

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cp := &Table{Style: t.Style, Rows: make([][]Cell, len(t.Rows))}
	for i, row := range t.Rows {
		cp.Rows[i] = make([]Cell, len(row))
		for j, cell := range row {
			paras := make([]Paragraph, len(cell.Paragraphs))
			for k := range cell.Paragraphs {
				paras[k] = *cell.Paragraphs[k].Clone()
			}
			cp.Rows[i][j] = Cell{Paragraphs: paras}
		}
	}
	return cp
}

// Columns returns the widest row length, 0 for an empty table.
func (t *Table) Columns() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

func (PageBreak) CloneNode() Node { return PageBreak{} }

// Clone returns a deep copy of the whole document.
func (d *Document) Clone() *Document {
	cp := &Document{Title: d.Title, Nodes: make([]Node, len(d.Nodes))}
	for i, n := range d.Nodes {
		cp.Nodes[i] = n.CloneNode()
	}
	return cp
}

// AddParagraph appends a body paragraph with a single text run and returns it.
func (d *Document) AddParagraph(text string) *Paragraph {
	p := &Paragraph{}
	if text != "" {
		p.Runs = []Run{{Text: text}}
	}
	d.Nodes = append(d.Nodes, p)
	return p
}

// AddHeading appends a heading paragraph at the given level and returns it.
func (d *Document) AddHeading(text string, level int) *Paragraph {
	if level < 1 {
		level = 1
	}
	if level > 9 {
		level = 9
	}
	p := d.AddParagraph(text)
	p.Style = "Heading" + string(rune('0'+level))
	return p
}

// Paragraphs returns the top-level paragraphs of the document in order.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, n := range d.Nodes {
		if p, ok := n.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Counts reports the number of top-level paragraphs and tables, and the
// number of inline images anywhere in the document.
func (d *Document) Counts() (paragraphs, tables, images int) {
	for _, n := range d.Nodes {
		switch v := n.(type) {
		case *Paragraph:
			paragraphs++
			images += countImages(v)
		case *Table:
			tables++
			for _, row := range v.Rows {
				for _, cell := range row {
					for k := range cell.Paragraphs {
						images += countImages(&cell.Paragraphs[k])
					}
				}
			}
		}
	}
	return
}

func countImages(p *Paragraph) int {
	n := 0
	for _, r := range p.Runs {
		n += len(r.Images)
	}
	return n
}
