package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/reportmerge/internal/docmodel"
	"github.com/dgallion1/reportmerge/internal/inventory"
)

func testInventory(t *testing.T, sections map[string]string) *inventory.Inventory {
	t.Helper()
	inv := inventory.New()
	for name, content := range sections {
		if _, err := inv.Ingest(name, []byte(content)); err != nil {
			t.Fatalf("Ingest(%s): %v", name, err)
		}
	}
	return inv
}

func baseRequest() Request {
	return Request{
		Chapter:      5,
		ProjectTitle: "Pavement Design Report",
		ReportDate:   "2026-08-23",
	}
}

func TestMerge_UsageErrorBeforeAnyParse(t *testing.T) {
	inv := testInventory(t, map[string]string{"a.txt": "alpha"})
	for _, f := range inv.Fragments() {
		inv.SetEnabled(f.ID, false)
	}

	m := NewMerger(inv, nil)
	parses := 0
	m.loadDoc = func(f *inventory.Fragment) (*docmodel.Document, error) {
		parses++
		return f.Document()
	}

	_, err := m.Merge(baseRequest())
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("err = %v, want *UsageError", err)
	}
	if parses != 0 {
		t.Errorf("parse calls = %d, want 0 before usage validation", parses)
	}
}

func TestMerge_UsageErrorValidation(t *testing.T) {
	inv := testInventory(t, map[string]string{"a.txt": "alpha"})
	m := NewMerger(inv, nil)

	tests := []struct {
		name string
		mut  func(*Request)
	}{
		{"empty title", func(r *Request) { r.ProjectTitle = "" }},
		{"zero chapter", func(r *Request) { r.Chapter = 0 }},
		{"negative chapter", func(r *Request) { r.Chapter = -3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mut(&req)
			_, err := m.Merge(req)
			var uerr *UsageError
			if !errors.As(err, &uerr) {
				t.Errorf("err = %v, want *UsageError", err)
			}
		})
	}
}

func TestMerge_ProducesDocx(t *testing.T) {
	inv := testInventory(t, map[string]string{
		"a.txt": "alpha body",
		"b.md":  "## 4.1 Scope\n\nbeta body\n",
	})
	m := NewMerger(inv, nil)

	result, err := m.Merge(baseRequest())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("diagnostics = %+v", result.Diagnostics)
	}
	// A .docx container is a zip archive.
	if !bytes.HasPrefix(result.Data, []byte("PK")) {
		t.Errorf("output does not look like a docx container (%d bytes)", len(result.Data))
	}
}

func TestMerge_RenumbersHeadings(t *testing.T) {
	inv := testInventory(t, map[string]string{"b.md": "## 4.1 Scope\n\nbody\n"})
	m := NewMerger(inv, nil)

	var captured *docmodel.Document
	m.encode = func(doc *docmodel.Document) ([]byte, error) {
		captured = doc
		return []byte("PK"), nil
	}

	req := baseRequest()
	req.RenumberHeadings = true
	req.SectionStart = 1
	if _, err := m.Merge(req); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	var texts []string
	for _, p := range captured.Paragraphs() {
		texts = append(texts, p.Text())
	}
	joined := strings.Join(texts, "\n")
	if !strings.Contains(joined, "5.1 Scope") {
		t.Errorf("heading not renumbered:\n%s", joined)
	}
	// The inventory's fragment is untouched by the merge.
	frag := inv.Fragments()[0]
	doc, err := frag.Document()
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Paragraphs()[0].Text(); got != "4.1 Scope" {
		t.Errorf("source fragment mutated: %q", got)
	}
}

func TestMerge_SectionNumberOverridesChapterPerFragment(t *testing.T) {
	inv := testInventory(t, map[string]string{
		"a.md": "## 4.1 Alpha\n\nbody\n",
		"b.md": "## 4.1 Beta\n\nbody\n",
	})
	for _, f := range inv.Fragments() {
		if f.Name == "b.md" {
			if err := inv.SetSectionNumber(f.ID, "9.3"); err != nil {
				t.Fatal(err)
			}
		}
	}

	m := NewMerger(inv, nil)
	var captured *docmodel.Document
	m.encode = func(doc *docmodel.Document) ([]byte, error) {
		captured = doc
		return []byte("PK"), nil
	}

	req := baseRequest()
	req.RenumberHeadings = true
	req.SectionStart = 1
	if _, err := m.Merge(req); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	var texts []string
	for _, p := range captured.Paragraphs() {
		texts = append(texts, p.Text())
	}
	joined := strings.Join(texts, "\n")
	if !strings.Contains(joined, "5.1 Alpha") {
		t.Errorf("request chapter not applied to a.md:\n%s", joined)
	}
	if !strings.Contains(joined, "9.3 Beta") {
		t.Errorf("section override not applied to b.md:\n%s", joined)
	}
}

func TestMerge_PartialFailureCollectsDiagnostics(t *testing.T) {
	inv := testInventory(t, map[string]string{
		"a.txt": "alpha",
		"b.txt": "beta",
		"c.txt": "gamma",
	})
	m := NewMerger(inv, nil)
	m.loadDoc = func(f *inventory.Fragment) (*docmodel.Document, error) {
		if f.Name == "b.txt" {
			return nil, errors.New("corrupt container")
		}
		return f.Document()
	}

	result, err := m.Merge(baseRequest())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Name != "b.txt" {
		t.Fatalf("diagnostics = %+v, want one for b.txt", result.Diagnostics)
	}
}

func TestMerge_AllFragmentsFailing(t *testing.T) {
	inv := testInventory(t, map[string]string{"a.txt": "alpha"})
	m := NewMerger(inv, nil)
	m.loadDoc = func(f *inventory.Fragment) (*docmodel.Document, error) {
		return nil, errors.New("corrupt")
	}
	if _, err := m.Merge(baseRequest()); err == nil {
		t.Fatal("expected hard failure when every fragment fails")
	}
}

func TestSessionSnapshotOmitsContent(t *testing.T) {
	inv := testInventory(t, map[string]string{"a.txt": "alpha"})
	m := NewMerger(inv, nil)
	sess := m.Session(baseRequest())
	if sess.ProjectTitle != "Pavement Design Report" || len(sess.Fragments) != 1 {
		t.Errorf("session = %+v", sess)
	}
	if sess.Fragments[0].Name != "a.txt" {
		t.Errorf("fragment name = %q", sess.Fragments[0].Name)
	}
}
