package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/shinoburc/drivelog-export/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the export run history as a one-page-per-50-rows
// landscape report.
func (g *Generator) Generate(entries []model.ExportHistoryEntry) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Export History Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated at %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Exported At", "Filename", "Result", "Records", "Bytes", "Elapsed"}
	widths := []float64{40, 100, 25, 30, 30, 30}
	drawRow(pdf, headers, widths, true)

	for _, entry := range entries {
		result := "OK"
		if !entry.Success {
			result = entry.ErrorCode
			if result == "" {
				result = "FAILED"
			}
		}
		row := []string{
			entry.ExportedAt.Format("2006-01-02 15:04"),
			entry.Filename,
			result,
			fmt.Sprintf("%d/%d", entry.ExportedRecords, entry.TotalRecords),
			fmt.Sprintf("%d", entry.ByteSize),
			entry.Elapsed.Round(time.Millisecond).String(),
		}
		drawRow(pdf, row, widths, false)
	}

	if len(entries) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "No exports recorded yet.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 9)
	for i, col := range cols {
		align := "L"
		if i >= 3 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
