package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// TimetableRow is one grid row: a period label followed by one cell per day.
type TimetableRow struct {
	Label string
	Cells []string
}

// TimetableDocument is a printable weekly grid.
type TimetableDocument struct {
	Title   string
	Columns []string
	Rows    []TimetableRow
}

// PDFExporter renders weekly timetables into a tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a landscape PDF with the period column and one column per
// working day.
func (e *PDFExporter) Render(doc TimetableDocument) ([]byte, error) {
	if len(doc.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one day column")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(doc.Title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	labelWidth := 35.0
	colWidth := (277.0 - labelWidth) / float64(len(doc.Columns))

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(labelWidth, 8, "Period", "1", 0, "C", false, 0, "")
	for _, col := range doc.Columns {
		pdf.CellFormat(colWidth, 8, col, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range doc.Rows {
		pdf.CellFormat(labelWidth, 7, row.Label, "1", 0, "", false, 0, "")
		for i := 0; i < len(doc.Columns); i++ {
			cell := ""
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}
			pdf.CellFormat(colWidth, 7, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
