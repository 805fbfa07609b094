// Package inventory tracks the uploaded report fragments for one merge
// session: their bytes, extracted metadata, enablement and output order.
// Fragments are parsed once at ingestion for metadata; merge-time consumers
// re-parse the retained bytes, which are never mutated.
package inventory

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/dgallion1/reportmerge/internal/docmodel"
	"github.com/dgallion1/reportmerge/internal/parser"
)

// Heading is one heading occurrence extracted at ingestion.
type Heading struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Fragment is one uploaded document unit.
type Fragment struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"` // report title used for TOC entries and banners

	Headings       []Heading `json:"headings"`
	ParagraphCount int       `json:"paragraph_count"`
	TableCount     int       `json:"table_count"`
	ImageCount     int       `json:"image_count"`

	Enabled       bool   `json:"enabled"`
	OrderIndex    int    `json:"order_index"` // position among enabled fragments, -1 when disabled
	SectionNumber string `json:"section_number,omitempty"`

	raw []byte
}

// Bytes returns the fragment's source content. Callers must treat the slice
// as read-only; repeated reads observe identical bytes.
func (f *Fragment) Bytes() []byte { return f.raw }

// Document re-parses the fragment's bytes into a fresh document tree.
func (f *Fragment) Document() (*docmodel.Document, error) {
	return parser.Parse(bytes.NewReader(f.raw), f.Name)
}

// Inventory holds the ordered fragment list for one session.
type Inventory struct {
	mu    sync.Mutex
	frags []*Fragment
}

func New() *Inventory {
	return &Inventory{}
}

// Ingest parses the uploaded bytes, extracts metadata and appends the
// fragment. Re-uploading an existing name replaces that fragment's content
// in place, keeping its order and enablement.
func (inv *Inventory) Ingest(name string, data []byte) (*Fragment, error) {
	doc, err := parser.Parse(bytes.NewReader(data), name)
	if err != nil {
		return nil, err
	}

	frag := &Fragment{
		ID:      contentHashHex(data)[:16],
		Name:    name,
		Title:   doc.Title,
		Enabled: true,
		raw:     bytes.Clone(data),
	}
	frag.ParagraphCount, frag.TableCount, frag.ImageCount = doc.Counts()
	for _, p := range doc.Paragraphs() {
		if lvl := docmodel.HeadingLevel(p.Style); lvl > 0 {
			frag.Headings = append(frag.Headings, Heading{Text: p.Text(), Level: lvl})
		}
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if i := inv.indexByName(name); i >= 0 {
		frag.Enabled = inv.frags[i].Enabled
		frag.Title = inv.frags[i].Title
		frag.SectionNumber = inv.frags[i].SectionNumber
		inv.frags[i] = frag
	} else {
		inv.frags = append(inv.frags, frag)
	}
	inv.renumberLocked()
	return frag, nil
}

// Reorder moves the fragment at position from to position to within the
// full list. Out-of-range indices are rejected.
func (inv *Inventory) Reorder(from, to int) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n := len(inv.frags)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("reorder: index out of range (%d -> %d of %d)", from, to, n)
	}
	f := inv.frags[from]
	inv.frags = append(inv.frags[:from], inv.frags[from+1:]...)
	rest := append([]*Fragment{}, inv.frags[to:]...)
	inv.frags = append(inv.frags[:to:to], f)
	inv.frags = append(inv.frags, rest...)
	inv.renumberLocked()
	return nil
}

// SetEnabled toggles a fragment's inclusion in the merge output.
func (inv *Inventory) SetEnabled(id string, enabled bool) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, f := range inv.frags {
		if f.ID == id {
			f.Enabled = enabled
			inv.renumberLocked()
			return nil
		}
	}
	return fmt.Errorf("fragment %s not found", id)
}

// SetTitle overrides the report title used for TOC entries and banners.
func (inv *Inventory) SetTitle(id, title string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, f := range inv.frags {
		if f.ID == id {
			f.Title = title
			return nil
		}
	}
	return fmt.Errorf("fragment %s not found", id)
}

// SetSectionNumber overrides the section number applied to a fragment's
// headings during renumbering, e.g. "7" or "7.3". Empty clears the override.
func (inv *Inventory) SetSectionNumber(id, section string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, f := range inv.frags {
		if f.ID == id {
			f.SectionNumber = section
			return nil
		}
	}
	return fmt.Errorf("fragment %s not found", id)
}

// Remove deletes a fragment by id.
func (inv *Inventory) Remove(id string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for i, f := range inv.frags {
		if f.ID == id {
			inv.frags = append(inv.frags[:i], inv.frags[i+1:]...)
			inv.renumberLocked()
			return nil
		}
	}
	return fmt.Errorf("fragment %s not found", id)
}

// Fragments returns the fragments in list order.
func (inv *Inventory) Fragments() []*Fragment {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return append([]*Fragment{}, inv.frags...)
}

// Enabled returns only the enabled fragments, in output order.
func (inv *Inventory) Enabled() []*Fragment {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	var out []*Fragment
	for _, f := range inv.frags {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// renumberLocked keeps OrderIndex a 0..N-1 permutation over the enabled
// fragments; disabled fragments do not occupy output slots.
func (inv *Inventory) renumberLocked() {
	idx := 0
	for _, f := range inv.frags {
		if f.Enabled {
			f.OrderIndex = idx
			idx++
		} else {
			f.OrderIndex = -1
		}
	}
}

func (inv *Inventory) indexByName(name string) int {
	for i, f := range inv.frags {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func contentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
