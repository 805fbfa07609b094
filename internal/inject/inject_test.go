package inject

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/dgallion1/reportmerge/internal/docmodel"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func anchorDoc(lines ...string) *docmodel.Document {
	doc := &docmodel.Document{}
	for _, l := range lines {
		doc.AddParagraph(l)
	}
	return doc
}

func TestApply_AspectRatioPreserved(t *testing.T) {
	doc := anchorDoc("results are shown in the layout figure")

	const widthEMU = 10 * docmodel.EMUPerCM // 10cm
	misses := Apply(doc, []Insertion{{
		Image:    pngBytes(t, 800, 600),
		Caption:  "Figure 5-1 Layout",
		Anchor:   "layout figure",
		WidthEMU: widthEMU,
	}})
	if len(misses) != 0 {
		t.Fatalf("misses = %+v", misses)
	}

	figure, ok := doc.Nodes[1].(*docmodel.Paragraph)
	if !ok || len(figure.Runs) == 0 || len(figure.Runs[0].Images) != 1 {
		t.Fatalf("node after anchor is not an image paragraph: %#v", doc.Nodes[1])
	}
	img := figure.Runs[0].Images[0]
	if img.WidthEMU != widthEMU {
		t.Errorf("width = %d, want %d", img.WidthEMU, widthEMU)
	}
	// 10cm * 600/800 = 7.5cm
	if want := int64(7.5 * docmodel.EMUPerCM); img.HeightEMU != want {
		t.Errorf("height = %d, want %d", img.HeightEMU, want)
	}
	if figure.Align != "center" {
		t.Errorf("figure alignment = %q, want center", figure.Align)
	}

	caption, ok := doc.Nodes[2].(*docmodel.Paragraph)
	if !ok || caption.Text() != "Figure 5-1 Layout" {
		t.Fatalf("caption paragraph missing: %#v", doc.Nodes[2])
	}
	if !caption.Runs[0].Bold || caption.Align != "center" {
		t.Error("caption must be bold and centered")
	}
}

func TestApply_AnchorMissIsNonFatal(t *testing.T) {
	doc := anchorDoc("intro", "the valid anchor lives here", "outro")
	img := pngBytes(t, 100, 50)

	misses := Apply(doc, []Insertion{
		{Image: img, Caption: "Missing", Anchor: "no such text", WidthEMU: docmodel.EMUPerCM},
		{Image: img, Caption: "Present", Anchor: "valid anchor", WidthEMU: docmodel.EMUPerCM},
	})

	if len(misses) != 1 || misses[0].Anchor != "no such text" {
		t.Fatalf("misses = %+v, want exactly the missing anchor", misses)
	}
	// The valid insertion landed right after its anchor paragraph.
	figure, ok := doc.Nodes[2].(*docmodel.Paragraph)
	if !ok || len(figure.Runs) == 0 || len(figure.Runs[0].Images) != 1 {
		t.Fatalf("valid insertion misplaced: %#v", doc.Nodes[2])
	}
}

func TestApply_SameAnchorStacksInRequestOrder(t *testing.T) {
	doc := anchorDoc("see the shared anchor", "tail")
	img := pngBytes(t, 10, 10)

	misses := Apply(doc, []Insertion{
		{Image: img, Caption: "first", Anchor: "shared anchor", WidthEMU: docmodel.EMUPerCM},
		{Image: img, Caption: "second", Anchor: "shared anchor", WidthEMU: docmodel.EMUPerCM},
	})
	if len(misses) != 0 {
		t.Fatalf("misses = %+v", misses)
	}

	var captions []string
	for _, n := range doc.Nodes {
		if p, ok := n.(*docmodel.Paragraph); ok {
			if txt := p.Text(); txt == "first" || txt == "second" {
				captions = append(captions, txt)
			}
		}
	}
	if len(captions) != 2 || captions[0] != "first" || captions[1] != "second" {
		t.Errorf("captions in document order = %v, want [first second]", captions)
	}
	if last, ok := doc.Nodes[len(doc.Nodes)-1].(*docmodel.Paragraph); !ok || last.Text() != "tail" {
		t.Error("insertions must go after the anchor, not at document end")
	}
}

func TestApply_UndecodableImageSkipped(t *testing.T) {
	doc := anchorDoc("anchor here")
	misses := Apply(doc, []Insertion{
		{Image: []byte("not an image"), Caption: "Bad", Anchor: "anchor here", WidthEMU: docmodel.EMUPerCM},
	})
	if len(misses) != 1 {
		t.Fatalf("misses = %+v, want one", misses)
	}
	if len(doc.Nodes) != 1 {
		t.Errorf("document grew despite skipped insertion: %d nodes", len(doc.Nodes))
	}
}

func TestApply_FirstContainingParagraphWins(t *testing.T) {
	doc := anchorDoc("the anchor text", "the anchor text again")
	misses := Apply(doc, []Insertion{
		{Image: pngBytes(t, 10, 10), Caption: "cap", Anchor: "anchor text", WidthEMU: docmodel.EMUPerCM},
	})
	if len(misses) != 0 {
		t.Fatalf("misses = %+v", misses)
	}
	if p, ok := doc.Nodes[1].(*docmodel.Paragraph); !ok || len(p.Runs) == 0 || len(p.Runs[0].Images) == 0 {
		t.Error("image must follow the first matching paragraph")
	}
}
