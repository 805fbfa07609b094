// Package parser converts uploaded report-section bytes into docmodel
// documents. Only .docx round-trips with full formatting fidelity; the other
// formats import as plain styled text so a section drafted in Markdown or
// exported as PDF text can still join the merged report.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/reportmerge/internal/docmodel"
)

// Parser converts raw fragment bytes into a document.
type Parser interface {
	Parse(r io.Reader, filename string) (*docmodel.Document, error)
}

// ParseError marks fragment bytes that could not be interpreted as a valid
// document of their declared format.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".docx":     true,
	".md":       true,
	".markdown": true,
	".txt":      true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
}

// EnablePdftotextFallback toggles shelling out to pdftotext when the Go PDF
// library cannot extract text. Set once at startup.
var EnablePdftotextFallback = true

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: EnablePdftotextFallback}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Parse reads all of r and runs the parser matching the filename, wrapping
// failures in a *ParseError naming the fragment.
func Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, &ParseError{Name: filename, Err: err}
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, &ParseError{Name: filename, Err: err}
	}
	return doc, nil
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
