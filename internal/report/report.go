// Package report is the merge entry point: it validates the request, runs
// renumbering over each enabled fragment, composes the output document and
// serializes it, collecting non-fatal diagnostics along the way.
package report

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/reportmerge/internal/compose"
	"github.com/dgallion1/reportmerge/internal/docio"
	"github.com/dgallion1/reportmerge/internal/docmodel"
	"github.com/dgallion1/reportmerge/internal/inject"
	"github.com/dgallion1/reportmerge/internal/inventory"
	"github.com/dgallion1/reportmerge/internal/renumber"
)

// UsageError marks a request that is invalid before any processing starts.
// It is fatal: the merge is not attempted.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string { return "usage: " + e.Reason }

// Request is one merge invocation.
type Request struct {
	Chapter          int
	SectionStart     int
	RenumberHeadings bool
	RenumberCaptions bool
	SectionBanners   bool
	ProjectTitle     string
	ReportDate       string
	Mapping          map[string]string
	Insertions       []inject.Insertion
	FailFast         bool
}

// Result is the merged report plus per-fragment and per-insertion
// diagnostics. Diagnostics non-empty means partial success.
type Result struct {
	Data        []byte
	Diagnostics []compose.Diagnostic
}

// Merger runs merges against one fragment inventory.
type Merger struct {
	inv *inventory.Inventory
	log *slog.Logger

	// loadDoc re-reads a fragment into a fresh document tree. Overridable
	// in tests; defaults to Fragment.Document.
	loadDoc func(*inventory.Fragment) (*docmodel.Document, error)
	// encode serializes the composed document; defaults to docio.Encode.
	encode func(*docmodel.Document) ([]byte, error)

	styleCatalog map[string]bool
}

func NewMerger(inv *inventory.Inventory, log *slog.Logger) *Merger {
	return &Merger{
		inv:          inv,
		log:          log,
		loadDoc:      (*inventory.Fragment).Document,
		encode:       docio.Encode,
		styleCatalog: docio.DefaultStyleCatalog(),
	}
}

// Merge produces the merged report. It fails with *UsageError before any
// fragment is parsed when the request cannot be served at all; fragment
// parse failures and missed image anchors degrade to diagnostics.
func (m *Merger) Merge(req Request) (*Result, error) {
	if req.ProjectTitle == "" {
		return nil, &UsageError{Reason: "project title is required"}
	}
	if req.Chapter < 1 {
		return nil, &UsageError{Reason: fmt.Sprintf("chapter number must be positive, got %d", req.Chapter)}
	}
	enabled := m.inv.Enabled()
	if len(enabled) == 0 {
		return nil, &UsageError{Reason: "no enabled fragments"}
	}

	entries := make([]string, len(enabled))
	sources := make([]compose.Source, len(enabled))
	for i, frag := range enabled {
		entries[i] = frag.Title
		f := frag
		sources[i] = compose.Source{
			Name:  f.Name,
			Title: f.Title,
			Load:  func() (*docmodel.Document, error) { return m.loadDoc(f) },
		}
	}

	opts := compose.Options{
		SectionBanners: req.SectionBanners,
		StyleCatalog:   m.styleCatalog,
		FailFast:       req.FailFast,
		Log:            m.log,
	}
	if req.RenumberHeadings || req.RenumberCaptions {
		base := renumber.Options{
			Chapter:      req.Chapter,
			SectionStart: req.SectionStart,
			Headings:     req.RenumberHeadings,
			Captions:     req.RenumberCaptions,
			Mapping:      req.Mapping,
		}
		// A fragment's custom section number overrides the request-wide
		// chapter and section start for that fragment alone.
		for i, frag := range enabled {
			ropts := base
			if frag.SectionNumber != "" {
				ropts = ropts.WithSection(frag.SectionNumber)
			}
			sources[i].Transform = func(doc *docmodel.Document) { renumber.Apply(doc, ropts) }
		}
	}

	cover := compose.Cover(req.ProjectTitle, req.ReportDate, entries)
	merged, diags, err := compose.Compose(cover, sources, opts)
	if err != nil {
		return nil, err
	}
	if len(diags) == len(enabled) {
		return nil, fmt.Errorf("all %d fragments failed to merge", len(enabled))
	}

	for _, miss := range inject.Apply(merged, req.Insertions) {
		diags = append(diags, compose.Diagnostic{
			Name:    "image:" + miss.Caption,
			Message: fmt.Sprintf("skipped (%s): anchor %q", miss.Reason, miss.Anchor),
		})
	}

	data, err := m.encode(merged)
	if err != nil {
		return nil, fmt.Errorf("serialize merged report: %w", err)
	}

	if m.log != nil {
		m.log.Info("merge complete",
			"fragments", len(enabled),
			"diagnostics", len(diags),
			"bytes", len(data),
		)
	}
	return &Result{Data: data, Diagnostics: diags}, nil
}

// Session snapshots the inventory plus the request defaults for persistence.
func (m *Merger) Session(req Request) inventory.Session {
	return inventory.Session{
		Chapter:          req.Chapter,
		SectionStart:     req.SectionStart,
		RenumberHeadings: req.RenumberHeadings,
		RenumberCaptions: req.RenumberCaptions,
		SectionBanners:   req.SectionBanners,
		ProjectTitle:     req.ProjectTitle,
		ReportDate:       req.ReportDate,
		Mapping:          req.Mapping,
		Fragments:        m.inv.Snapshot(),
	}
}
