package inventory

// Session is the JSON-serializable snapshot of a merge session's
// configuration. Fragment content bytes are deliberately not persisted;
// restoring a session re-associates metadata with re-uploaded content by
// fragment name.
type Session struct {
	Chapter          int               `json:"chapter"`
	SectionStart     int               `json:"section_start"`
	RenumberHeadings bool              `json:"renumber_headings"`
	RenumberCaptions bool              `json:"renumber_captions"`
	SectionBanners   bool              `json:"section_banners"`
	ProjectTitle     string            `json:"project_title"`
	ReportDate       string            `json:"report_date"`
	Mapping          map[string]string `json:"mapping,omitempty"`
	Fragments        []SessionFragment `json:"fragments"`
}

// SessionFragment is the persisted per-fragment metadata.
type SessionFragment struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	Enabled       bool   `json:"enabled"`
	SectionNumber string `json:"section_number,omitempty"`
}

// Snapshot captures the inventory's fragment metadata in list order.
func (inv *Inventory) Snapshot() []SessionFragment {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]SessionFragment, 0, len(inv.frags))
	for _, f := range inv.frags {
		out = append(out, SessionFragment{
			Name:          f.Name,
			Title:         f.Title,
			Enabled:       f.Enabled,
			SectionNumber: f.SectionNumber,
		})
	}
	return out
}

// Restore reapplies persisted metadata to already-ingested fragments,
// matching by name, and reorders the list to the persisted sequence.
// Persisted entries without uploaded content are skipped; fragments absent
// from the snapshot keep their current state and sort after restored ones.
func (inv *Inventory) Restore(saved []SessionFragment) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	var ordered []*Fragment
	seen := make(map[string]bool)
	for _, s := range saved {
		i := inv.indexByName(s.Name)
		if i < 0 {
			continue
		}
		f := inv.frags[i]
		f.Title = s.Title
		f.Enabled = s.Enabled
		f.SectionNumber = s.SectionNumber
		ordered = append(ordered, f)
		seen[s.Name] = true
	}
	for _, f := range inv.frags {
		if !seen[f.Name] {
			ordered = append(ordered, f)
		}
	}
	inv.frags = ordered
	inv.renumberLocked()
}
