package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// RecordField is one labelled line in a defense record document.
type RecordField struct {
	Label string
	Value string
}

// Record describes a single-document export, such as a defense record.
type Record struct {
	Institution string
	Title       string
	Fields      []RecordField
	Signatures  []string
}

// PDFExporter renders defense records and tabular datasets into PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderRecord creates a one-page document with labelled fields and
// signature lines at the bottom.
func (e *PDFExporter) RenderRecord(record Record) ([]byte, error) {
	if record.Title == "" {
		return nil, fmt.Errorf("pdf record requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	if record.Institution != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, record.Institution, "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "B", 15)
	pdf.CellFormat(0, 10, strings.ToUpper(record.Title), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for _, field := range record.Fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 8, field.Label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 8, field.Value, "", "L", false)
		pdf.Ln(1)
	}

	if len(record.Signatures) > 0 {
		pdf.Ln(14)
		for _, name := range record.Signatures {
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(0, 6, strings.Repeat("_", 48), "", 1, "C", false, 0, "")
			pdf.CellFormat(0, 6, name, "", 1, "C", false, 0, "")
			pdf.Ln(4)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf record: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTable creates a PDF document with an optional title and table body.
func (e *PDFExporter) RenderTable(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
