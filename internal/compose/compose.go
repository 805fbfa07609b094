// Package compose assembles the merged report: a generated cover/TOC seed
// followed by a deep copy of every enabled fragment, with page breaks and
// optional bold section banners in between.
//
// The output never shares mutable structure with a source fragment, so
// post-composition edits (renumbering, image injection) cannot corrupt a
// fragment still held by the inventory.
package compose

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgallion1/reportmerge/internal/docmodel"
)

// Diagnostic records a per-fragment, non-fatal failure surfaced alongside
// the composed result.
type Diagnostic struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Source is one fragment feeding the composer. Load re-reads the fragment's
// bytes into a fresh document; a load failure excludes the fragment and is
// reported as a diagnostic. A non-nil Transform takes precedence over
// Options.Transform for this source only.
type Source struct {
	Name      string
	Title     string
	Load      func() (*docmodel.Document, error)
	Transform func(*docmodel.Document)
}

// Options controls composition.
type Options struct {
	// SectionBanners prefixes each fragment with a bold "<n>. <title>"
	// paragraph.
	SectionBanners bool

	// StyleCatalog names the styles available in the output; source styles
	// outside it fall back to the default body style. Nil keeps all styles.
	StyleCatalog map[string]bool

	// FailFast aborts on the first fragment error instead of collecting it.
	FailFast bool

	// Transform, when set, runs over each fragment's freshly loaded
	// document before it is copied in (the renumbering hook).
	Transform func(*docmodel.Document)

	Log *slog.Logger
}

// Cover builds the cover/TOC seed document: project title, report date and
// one numbered TOC entry per enabled fragment, numbered from 1.
func Cover(projectTitle, reportDate string, entries []string) *docmodel.Document {
	doc := &docmodel.Document{Title: projectTitle}

	title := doc.AddParagraph("")
	title.Align = "center"
	title.Runs = []docmodel.Run{{Text: projectTitle, Bold: true, FontSize: "44"}}

	date := doc.AddParagraph("")
	date.Align = "center"
	date.Runs = []docmodel.Run{{Text: reportDate}}

	doc.Nodes = append(doc.Nodes, docmodel.PageBreak{})

	toc := doc.AddParagraph("")
	toc.Align = "center"
	toc.Runs = []docmodel.Run{{Text: "Table of Contents", Bold: true, FontSize: "32"}}

	for i, entry := range entries {
		doc.AddParagraph(strconv.Itoa(i+1) + ". " + entry)
	}
	return doc
}

// Compose builds the output document from the cover seed and the ordered
// fragment sources. One bad fragment does not abort the merge unless
// FailFast is set; failures come back as diagnostics in source order.
func Compose(cover *docmodel.Document, sources []Source, opts Options) (*docmodel.Document, []Diagnostic, error) {
	out := cover.Clone()
	var diags []Diagnostic

	n := 0
	for _, src := range sources {
		doc, err := src.Load()
		if err != nil {
			if opts.FailFast {
				return nil, diags, fmt.Errorf("fragment %s: %w", src.Name, err)
			}
			diags = append(diags, Diagnostic{Name: src.Name, Message: err.Error()})
			continue
		}
		transform := opts.Transform
		if src.Transform != nil {
			transform = src.Transform
		}
		if transform != nil {
			transform(doc)
		}
		n++

		out.Nodes = append(out.Nodes, docmodel.PageBreak{})
		if opts.SectionBanners {
			banner := &docmodel.Paragraph{
				Runs: []docmodel.Run{{Text: strconv.Itoa(n) + ". " + src.Title, Bold: true}},
			}
			out.Nodes = append(out.Nodes, banner)
		}
		appendFragment(out, doc, opts)
	}
	return out, diags, nil
}

// appendFragment deep-copies every node of doc into out, applying style
// fallback against the output's catalog.
func appendFragment(out, doc *docmodel.Document, opts Options) {
	for _, node := range doc.Nodes {
		cp := node.CloneNode()
		switch v := cp.(type) {
		case *docmodel.Paragraph:
			v.Style = fallbackStyle(v.Style, opts)
		case *docmodel.Table:
			v.Style = fallbackStyle(v.Style, opts)
			for _, row := range v.Rows {
				for i := range row {
					for j := range row[i].Paragraphs {
						p := &row[i].Paragraphs[j]
						p.Style = fallbackStyle(p.Style, opts)
					}
				}
			}
		}
		out.Nodes = append(out.Nodes, cp)
	}
}

// fallbackStyle returns the style name if the output catalog has it, else
// empty (default body style). The fallback is logged, never surfaced as an
// error.
func fallbackStyle(style string, opts Options) string {
	if style == "" || opts.StyleCatalog == nil || opts.StyleCatalog[style] {
		return style
	}
	if opts.Log != nil {
		opts.Log.Debug("style not in output catalog, using default", "style", style)
	}
	return ""
}
