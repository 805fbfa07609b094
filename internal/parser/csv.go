package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/reportmerge/internal/docmodel"
)

// CSVParser imports a CSV file as a single table with a bold header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	out := &docmodel.Document{Title: titleFromFilename(filename)}
	if len(records) == 0 {
		return out, nil
	}

	tbl := &docmodel.Table{}
	for i, record := range records {
		var cells []docmodel.Cell
		for _, field := range record {
			para := docmodel.Paragraph{
				Runs: []docmodel.Run{{Text: field, Bold: i == 0}},
			}
			cells = append(cells, docmodel.Cell{Paragraphs: []docmodel.Paragraph{para}})
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	out.Nodes = append(out.Nodes, tbl)
	return out, nil
}
