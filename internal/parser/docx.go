package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/reportmerge/internal/docio"
	"github.com/dgallion1/reportmerge/internal/docmodel"
)

// DOCXParser handles .docx files with full formatting fidelity.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	return docio.Decode(data, titleFromFilename(filename))
}
