// Package renumber rewrites heading numbers and figure/table caption numbers
// so independently authored report sections line up under one chapter.
//
// Only run text changes; styles, alignment and run formatting are untouched.
// Anything that does not match the numbering grammar exactly is passed
// through verbatim; that passthrough is part of the contract, not a bug.
package renumber

import (
	"strconv"
	"strings"

	"github.com/dgallion1/reportmerge/internal/docmodel"
)

// Options controls one renumbering pass over a single fragment.
type Options struct {
	// Chapter replaces the first segment of every heading number and the
	// first numeral of every caption number.
	Chapter int

	// SectionStart is the value the second heading segment should start
	// from; segment two is shifted by SectionStart-1. Zero means 1
	// (no shift).
	SectionStart int

	// Headings and Captions toggle the two independent rewrites.
	Headings bool
	Captions bool

	// Mapping maps an original full heading number (e.g. "4.2") to an
	// explicit replacement used verbatim, overriding the default rule.
	// A value that is not itself a dotted number is still written through
	// as-is.
	Mapping map[string]string
}

// WithSection derives per-fragment options from a custom section number such
// as "7" or "7.3": the first segment replaces Chapter and a second segment,
// when present, replaces SectionStart. A value outside the numbering grammar
// leaves the options unchanged.
func (o Options) WithSection(section string) Options {
	num, label, ok := splitNumber(section)
	if !ok || label != "" {
		return o
	}
	segs := strings.Split(num, ".")
	if n, err := strconv.Atoi(segs[0]); err == nil {
		o.Chapter = n
	}
	if len(segs) > 1 {
		if n, err := strconv.Atoi(segs[1]); err == nil {
			o.SectionStart = n
		}
	}
	return o
}

func (o Options) sectionOffset() int {
	if o.SectionStart <= 0 {
		return 0
	}
	return o.SectionStart - 1
}

// Apply rewrites one fragment's headings and captions in place. Caption
// counters start from 1 on every call, so each fragment's figures and tables
// are numbered independently.
func Apply(doc *docmodel.Document, opts Options) {
	figures, tables := 0, 0
	for _, p := range doc.Paragraphs() {
		if p.IsHeading() {
			if opts.Headings {
				if out, ok := RewriteHeading(p.Text(), opts); ok {
					p.SetText(out)
				}
			}
			continue
		}
		if !opts.Captions {
			continue
		}
		if out, ok := rewriteCaption(p.Text(), opts.Chapter, &figures, &tables); ok {
			p.SetText(out)
		}
	}
}

// RewriteHeading renumbers a single heading line. It reports false when the
// text does not begin with a dotted-number prefix, in which case the caller
// must leave the paragraph untouched.
func RewriteHeading(text string, opts Options) (string, bool) {
	num, label, ok := splitNumber(text)
	if !ok {
		return "", false
	}

	var replacement string
	if mapped, ok := opts.Mapping[num]; ok {
		replacement = mapped
	} else {
		segs := strings.Split(num, ".")
		segs[0] = strconv.Itoa(opts.Chapter)
		if len(segs) > 1 {
			if n, err := strconv.Atoi(segs[1]); err == nil {
				segs[1] = strconv.Itoa(n + opts.sectionOffset())
			}
		}
		replacement = strings.Join(segs, ".")
	}

	if label == "" {
		return replacement, true
	}
	return replacement + " " + label, true
}

// splitNumber parses the strict numbering grammar: one or more digit groups
// joined by single dots, starting at the first byte. The remainder, with
// leading spaces dropped, is the label. A trailing dot or a dot not followed
// by a digit ends the number and becomes part of the label.
func splitNumber(s string) (num, label string, ok bool) {
	i := 0
	n := len(s)
	if i >= n || !isDigit(s[i]) {
		return "", "", false
	}
	for i < n && isDigit(s[i]) {
		i++
	}
	for i+1 < n && s[i] == '.' && isDigit(s[i+1]) {
		i++
		for i < n && isDigit(s[i]) {
			i++
		}
	}
	num = s[:i]
	label = strings.TrimLeft(s[i:], " \t")
	return num, label, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Caption markers recognized at the start of a paragraph. The original
// reports use both the hyphen and dot forms ("Figure 3-1", "Table 3.2").
var captionMarkers = []struct {
	prefix string
	table  bool
}{
	{"Figure", false},
	{"Fig.", false},
	{"Table", true},
}

// rewriteCaption renumbers "Figure <a>-<b> ..." / "Table <a>.<b> ..." text.
// The numeric part becomes "<chapter>-<counter>" where the counter runs
// sequentially per kind within one fragment, regardless of the original
// numbers.
func rewriteCaption(text string, chapter int, figures, tables *int) (string, bool) {
	for _, m := range captionMarkers {
		if !strings.HasPrefix(text, m.prefix) {
			continue
		}
		rest := text[len(m.prefix):]
		trimmed := strings.TrimLeft(rest, " \t")
		tail, ok := splitCaptionNumber(trimmed)
		if !ok {
			return "", false
		}
		counter := figures
		if m.table {
			counter = tables
		}
		*counter++
		sep := ""
		if len(rest) != len(trimmed) {
			sep = rest[:len(rest)-len(trimmed)]
		} else {
			sep = " "
		}
		return m.prefix + sep + strconv.Itoa(chapter) + "-" + strconv.Itoa(*counter) + tail, true
	}
	return "", false
}

// splitCaptionNumber matches "<digits>(-|.)<digits>" and returns everything
// after the matched number.
func splitCaptionNumber(s string) (tail string, ok bool) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 || i >= len(s) || (s[i] != '-' && s[i] != '.') {
		return "", false
	}
	j := i + 1
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j == i+1 {
		return "", false
	}
	return s[j:], true
}
