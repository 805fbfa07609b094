package docio

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/reportmerge/internal/docmodel"
	"github.com/fumiama/go-docx"
)

// DefaultStyleCatalog lists the named styles present in the output template.
// Source styles outside this set fall back to the default body style during
// composition.
func DefaultStyleCatalog() map[string]bool {
	return map[string]bool{
		"Normal":   true,
		"Heading1": true,
		"Heading2": true,
		"Heading3": true,
		"Heading4": true,
		"Heading5": true,
		"Heading6": true,
	}
}

// Encode serializes a docmodel document into .docx container bytes.
func Encode(doc *docmodel.Document) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	for _, node := range doc.Nodes {
		switch v := node.(type) {
		case *docmodel.Paragraph:
			encodeParagraph(w.AddParagraph(), v)
		case *docmodel.Table:
			if err := encodeTable(w, v); err != nil {
				return nil, err
			}
		case docmodel.PageBreak:
			w.AddParagraph().AddPageBreaks()
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize docx: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeParagraph(p *docx.Paragraph, src *docmodel.Paragraph) {
	if src.Style != "" {
		p.Style(src.Style)
	}
	if src.Align != "" {
		p.Justification(src.Align)
	}
	// Zero spacing means unset; writing it would override style defaults.
	if src.SpacingBefore > 0 || src.SpacingLine > 0 {
		if p.Properties == nil {
			p.Properties = &docx.ParagraphProperties{}
		}
		p.Properties.Spacing = &docx.Spacing{
			Before: src.SpacingBefore,
			Line:   src.SpacingLine,
		}
	}
	for _, r := range src.Runs {
		for _, img := range r.Images {
			encodeImage(p, img)
		}
		if r.Text == "" {
			continue
		}
		run := p.AddText(r.Text)
		if r.Bold {
			run.Bold()
		}
		if r.Italic {
			run.Italic()
		}
		if r.Underline {
			run.Underline("single")
		}
		if r.FontSize != "" {
			run.Size(r.FontSize)
		}
		if r.Color != "" {
			run.Color(r.Color)
		}
		if r.FontName != "" {
			run.Font(r.FontName, "", "", "")
		}
	}
}

// encodeImage embeds the picture and pins its extent to the model's values
// rather than the library's default scaling.
func encodeImage(p *docx.Paragraph, img docmodel.Image) {
	run, err := p.AddInlineDrawing(bytes.Clone(img.Data))
	if err != nil {
		// Undecodable picture bytes; the paragraph text still carries over.
		return
	}
	if img.WidthEMU <= 0 || img.HeightEMU <= 0 {
		return
	}
	for _, child := range run.Children {
		d, ok := child.(*docx.Drawing)
		if !ok || d.Inline == nil || d.Inline.Extent == nil {
			continue
		}
		d.Inline.Extent.CX = img.WidthEMU
		d.Inline.Extent.CY = img.HeightEMU
	}
}

func encodeTable(w *docx.Docx, src *docmodel.Table) error {
	rows := len(src.Rows)
	cols := src.Columns()
	if rows == 0 || cols == 0 {
		return nil
	}
	tbl := w.AddTable(rows, cols, 0, nil)
	if len(tbl.TableRows) < rows {
		return fmt.Errorf("table allocation: want %d rows, got %d", rows, len(tbl.TableRows))
	}
	for i, row := range src.Rows {
		for j, cell := range row {
			if j >= len(tbl.TableRows[i].TableCells) {
				break
			}
			tc := tbl.TableRows[i].TableCells[j]
			for k := range cell.Paragraphs {
				encodeParagraph(tc.AddParagraph(), &cell.Paragraphs[k])
			}
		}
	}
	return nil
}
