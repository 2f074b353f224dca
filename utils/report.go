package utils

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"businessboard/backend/models"
)

// WriteBoardReport renders the per-state summary and the business list as an
// A4 PDF.
func WriteBoardReport(w io.Writer, b models.Board, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Business Board Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Generated "+generated.Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	totals := b.Totals()
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Businesses: %d   Total: %s   Average: %s", totals.Count, totals.Total, totals.Average), "", 1, "L", false, 0, "")
	if totals.MostPopular != nil {
		pdf.CellFormat(0, 8, tr("Most popular state: "+totals.MostPopular.Name), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	for _, h := range []struct {
		w     float64
		title string
	}{{60, "State"}, {25, "Count"}, {35, "Total"}, {35, "Average"}, {25, "Share"}} {
		pdf.CellFormat(h.w, 9, h.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	for _, s := range b.ColumnSummaries() {
		pdf.CellFormat(60, 8, tr(s.State.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", s.Count), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, s.Total.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, s.Average.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%.2f%%", s.Percentage), "1", 1, "R", false, 0, "")
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	for _, h := range []struct {
		w     float64
		title string
	}{{55, "Business"}, {35, "Type"}, {35, "Owner"}, {35, "State"}, {30, "Value"}} {
		pdf.CellFormat(h.w, 9, h.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, biz := range b.Businesses {
		pdf.CellFormat(55, 8, tr(biz.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, tr(typeName(b, biz)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, tr(userName(b, biz)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, tr(stateName(b, biz)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, biz.Value.String(), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
