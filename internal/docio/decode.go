// Package docio converts between .docx byte streams and the docmodel
// representation. All go-docx API usage is confined here so the merge core
// stays independent of the library's object graph.
package docio

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/reportmerge/internal/docmodel"
	"github.com/fumiama/go-docx"
)

// Decode parses a .docx container into a docmodel document. The input slice
// is read non-destructively and may be decoded again later.
func Decode(data []byte, title string) (*docmodel.Document, error) {
	f, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &docmodel.Document{Title: title}
	for _, item := range f.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			out.Nodes = append(out.Nodes, decodeParagraph(f, v))
		case *docx.Table:
			out.Nodes = append(out.Nodes, decodeTable(f, v))
		}
	}
	return out, nil
}

func decodeParagraph(f *docx.Docx, para *docx.Paragraph) *docmodel.Paragraph {
	p := &docmodel.Paragraph{}
	if para.Properties != nil {
		if para.Properties.Style != nil {
			p.Style = normalizeStyle(para.Properties.Style.Val)
		}
		if para.Properties.Justification != nil {
			p.Align = para.Properties.Justification.Val
		}
		// The library's spacing element has no w:after attribute, so
		// SpacingAfter stays zero through a round trip.
		if sp := para.Properties.Spacing; sp != nil {
			p.SpacingBefore = int(sp.Before)
			p.SpacingLine = int(sp.Line)
		}
	}
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		p.Runs = append(p.Runs, decodeRun(f, run))
	}
	return p
}

func decodeRun(f *docx.Docx, run *docx.Run) docmodel.Run {
	r := docmodel.Run{}
	if rp := run.RunProperties; rp != nil {
		r.Bold = rp.Bold != nil
		r.Italic = rp.Italic != nil
		r.Underline = rp.Underline != nil
		if rp.Color != nil {
			r.Color = rp.Color.Val
		}
		if rp.Size != nil {
			r.FontSize = rp.Size.Val
		}
		if rp.Fonts != nil {
			r.FontName = rp.Fonts.ASCII
		}
	}
	var text strings.Builder
	for _, child := range run.Children {
		switch v := child.(type) {
		case *docx.Text:
			text.WriteString(v.Text)
		case *docx.Drawing:
			if img, ok := decodeDrawing(f, v); ok {
				r.Images = append(r.Images, img)
			}
		}
	}
	r.Text = text.String()
	return r
}

// decodeDrawing resolves a drawing's blip relationship to the embedded media
// bytes so the picture can be re-serialized into another container.
func decodeDrawing(f *docx.Docx, d *docx.Drawing) (docmodel.Image, bool) {
	embed, cx, cy := drawingRef(d)
	if embed == "" {
		return docmodel.Image{}, false
	}
	target, err := f.ReferTarget(embed)
	if err != nil {
		return docmodel.Image{}, false
	}
	media := f.Media(strings.TrimPrefix(target, "media/"))
	if media == nil || len(media.Data) == 0 {
		return docmodel.Image{}, false
	}
	return docmodel.Image{
		Data:      bytes.Clone(media.Data),
		WidthEMU:  cx,
		HeightEMU: cy,
	}, true
}

func drawingRef(d *docx.Drawing) (embed string, cx, cy int64) {
	graphic := (*docx.AGraphic)(nil)
	if d.Inline != nil {
		graphic = d.Inline.Graphic
		if d.Inline.Extent != nil {
			cx, cy = d.Inline.Extent.CX, d.Inline.Extent.CY
		}
	} else if d.Anchor != nil {
		graphic = d.Anchor.Graphic
		if d.Anchor.Extent != nil {
			cx, cy = d.Anchor.Extent.CX, d.Anchor.Extent.CY
		}
	}
	if graphic == nil || graphic.GraphicData == nil || graphic.GraphicData.Pic == nil {
		return "", cx, cy
	}
	pic := graphic.GraphicData.Pic
	if pic.BlipFill == nil {
		return "", cx, cy
	}
	return pic.BlipFill.Blip.Embed, cx, cy
}

func decodeTable(f *docx.Docx, tbl *docx.Table) *docmodel.Table {
	t := &docmodel.Table{}
	for _, row := range tbl.TableRows {
		var cells []docmodel.Cell
		for _, cell := range row.TableCells {
			c := docmodel.Cell{}
			for _, para := range cell.Paragraphs {
				c.Paragraphs = append(c.Paragraphs, *decodeParagraph(f, para))
			}
			cells = append(cells, c)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// normalizeStyle maps style id spellings ("heading 1", "Heading1") onto the
// catalog form used by the output document.
func normalizeStyle(style string) string {
	if lvl := docmodel.HeadingLevel(style); lvl > 0 {
		return "Heading" + string(rune('0'+lvl))
	}
	return style
}
