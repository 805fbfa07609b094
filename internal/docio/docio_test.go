package docio

import (
	"bytes"
	"testing"

	"github.com/dgallion1/reportmerge/internal/docmodel"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	src := &docmodel.Document{Title: "section"}

	h := src.AddHeading("4.1 Scope", 2)
	h.Align = "center"
	h.SpacingBefore = 240
	h.SpacingLine = 360

	p := src.AddParagraph("")
	p.Runs = []docmodel.Run{
		{Text: "plain "},
		{Text: "emphasized", Bold: true, Italic: true, FontSize: "28", Color: "FF0000", FontName: "Arial"},
	}

	src.Nodes = append(src.Nodes, &docmodel.Table{
		Rows: [][]docmodel.Cell{
			{
				{Paragraphs: []docmodel.Paragraph{{Runs: []docmodel.Run{{Text: "layer", Bold: true}}}}},
				{Paragraphs: []docmodel.Paragraph{{Runs: []docmodel.Run{{Text: "thickness", Bold: true}}}}},
			},
			{
				{Paragraphs: []docmodel.Paragraph{{Runs: []docmodel.Run{{Text: "base"}}}}},
				{Paragraphs: []docmodel.Paragraph{{Runs: []docmodel.Run{{Text: "20 cm"}}}}},
			},
		},
	})

	data, err := Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("output is not a zip container (%d bytes)", len(data))
	}

	got, err := Decode(data, "section")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	paras := got.Paragraphs()
	if len(paras) < 2 {
		t.Fatalf("paragraphs = %d, want at least 2", len(paras))
	}
	if paras[0].Text() != "4.1 Scope" {
		t.Errorf("heading text = %q", paras[0].Text())
	}
	if docmodel.HeadingLevel(paras[0].Style) != 2 {
		t.Errorf("heading style = %q, want level 2", paras[0].Style)
	}
	if paras[0].Align != "center" {
		t.Errorf("heading align = %q", paras[0].Align)
	}
	if paras[0].SpacingBefore != 240 || paras[0].SpacingLine != 360 {
		t.Errorf("heading spacing = before %d line %d, want 240/360",
			paras[0].SpacingBefore, paras[0].SpacingLine)
	}
	if paras[1].SpacingBefore != 0 || paras[1].SpacingLine != 0 {
		t.Errorf("unset spacing came back nonzero: before %d line %d",
			paras[1].SpacingBefore, paras[1].SpacingLine)
	}
	if paras[1].Text() != "plain emphasized" {
		t.Errorf("body text = %q", paras[1].Text())
	}

	var bold *docmodel.Run
	for i := range paras[1].Runs {
		if paras[1].Runs[i].Text == "emphasized" {
			bold = &paras[1].Runs[i]
		}
	}
	if bold == nil {
		t.Fatal("emphasized run not found after round trip")
	}
	if !bold.Bold || !bold.Italic {
		t.Errorf("run flags lost: %+v", bold)
	}
	if bold.FontSize != "28" || bold.Color != "FF0000" {
		t.Errorf("run size/color lost: %+v", bold)
	}
	if bold.FontName != "Arial" {
		t.Errorf("run font lost: %q", bold.FontName)
	}

	var tbl *docmodel.Table
	for _, n := range got.Nodes {
		if v, ok := n.(*docmodel.Table); ok {
			tbl = v
		}
	}
	if tbl == nil {
		t.Fatal("table lost in round trip")
	}
	if len(tbl.Rows) != 2 || tbl.Columns() != 2 {
		t.Fatalf("table = %dx%d, want 2x2", len(tbl.Rows), tbl.Columns())
	}
	if got := cellText(tbl, 1, 1); got != "20 cm" {
		t.Errorf("cell(1,1) = %q", got)
	}
}

func cellText(t *docmodel.Table, row, col int) string {
	var b bytes.Buffer
	for i := range t.Rows[row][col].Paragraphs {
		b.WriteString(t.Rows[row][col].Paragraphs[i].Text())
	}
	return b.String()
}

func TestDecode_InvalidBytes(t *testing.T) {
	if _, err := Decode([]byte("not a docx container"), "bad"); err == nil {
		t.Fatal("expected error for invalid container bytes")
	}
}

func TestDefaultStyleCatalog_HasHeadings(t *testing.T) {
	cat := DefaultStyleCatalog()
	for _, style := range []string{"Normal", "Heading1", "Heading2", "Heading3"} {
		if !cat[style] {
			t.Errorf("catalog missing %s", style)
		}
	}
}
