// Package inject places user-supplied images after anchor paragraphs inside
// an already-composed document. Each image is centered, resized to the
// requested width with its aspect ratio preserved, and followed by a bold
// centered caption.
package inject

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/reportmerge/internal/docmodel"
	"github.com/fumiama/imgsz"
)

// Insertion is one requested image placement.
type Insertion struct {
	Image    []byte
	Caption  string
	Anchor   string // substring searched for in paragraph text
	WidthEMU int64
}

// Miss records an insertion that was skipped; it never aborts the others.
type Miss struct {
	Anchor  string
	Caption string
	Reason  string
}

// Apply processes insertions in order. For each, the first paragraph whose
// text contains the anchor receives the image and caption immediately after
// it; repeated anchors stack in request order, the earliest insertion
// staying closest to the anchor.
func Apply(doc *docmodel.Document, insertions []Insertion) []Miss {
	var misses []Miss
	// Nodes already injected after a given anchor paragraph, so later
	// insertions on the same anchor land below earlier ones.
	offsets := make(map[*docmodel.Paragraph]int)

	for _, ins := range insertions {
		anchor, idx := findAnchor(doc, ins.Anchor)
		if anchor == nil {
			misses = append(misses, Miss{Anchor: ins.Anchor, Caption: ins.Caption, Reason: "anchor text not found"})
			continue
		}

		img, err := sized(ins.Image, ins.WidthEMU)
		if err != nil {
			misses = append(misses, Miss{Anchor: ins.Anchor, Caption: ins.Caption, Reason: err.Error()})
			continue
		}

		figure := &docmodel.Paragraph{
			Align: "center",
			Runs:  []docmodel.Run{{Images: []docmodel.Image{img}}},
		}
		caption := &docmodel.Paragraph{
			Align: "center",
			Runs:  []docmodel.Run{{Text: ins.Caption, Bold: true}},
		}

		at := idx + 1 + offsets[anchor]
		doc.Nodes = append(doc.Nodes[:at:at], append([]docmodel.Node{figure, caption}, doc.Nodes[at:]...)...)
		offsets[anchor] += 2
	}
	return misses
}

// findAnchor returns the first paragraph containing the anchor substring and
// its node index.
func findAnchor(doc *docmodel.Document, anchor string) (*docmodel.Paragraph, int) {
	for i, node := range doc.Nodes {
		p, ok := node.(*docmodel.Paragraph)
		if !ok {
			continue
		}
		if anchor != "" && strings.Contains(p.Text(), anchor) {
			return p, i
		}
	}
	return nil, -1
}

// sized decodes the source dimensions and derives the display extent:
// height = width * srcH / srcW, preserving the aspect ratio exactly.
func sized(data []byte, widthEMU int64) (docmodel.Image, error) {
	sz, _, err := imgsz.DecodeSize(bytes.NewReader(data))
	if err != nil {
		return docmodel.Image{}, fmt.Errorf("decode image: %w", err)
	}
	if sz.Width <= 0 || sz.Height <= 0 {
		return docmodel.Image{}, fmt.Errorf("decode image: empty dimensions")
	}
	return docmodel.Image{
		Data:      bytes.Clone(data),
		WidthEMU:  widthEMU,
		HeightEMU: widthEMU * int64(sz.Height) / int64(sz.Width),
	}, nil
}
