package utils

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"businessboard/backend/models"
)

const (
	SummarySheet    = "Summary"
	BusinessesSheet = "Businesses"
)

// WriteBoardWorkbook renders the board as an XLSX workbook with a per-state
// summary sheet and a flat list of businesses.
func WriteBoardWorkbook(w io.Writer, b models.Board) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(BusinessesSheet); err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	summaries := b.ColumnSummaries()
	if err := writeRow(f, SummarySheet, 1, []any{"State", "Businesses", "Total", "Average", "Share (%)"}); err != nil {
		return err
	}
	for i, s := range summaries {
		row := []any{s.State.Name, s.Count, s.Total.Decimal().InexactFloat64(), s.Average.Decimal().InexactFloat64(), s.Percentage}
		if err := writeRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
	}
	totals := b.Totals()
	last := len(summaries) + 2
	if err := writeRow(f, SummarySheet, last, []any{"All", totals.Count, totals.Total.Decimal().InexactFloat64(), totals.Average.Decimal().InexactFloat64(), 100}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "C2", fmt.Sprintf("D%d", last), money); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "E1", bold); err != nil {
		return err
	}

	if err := writeRow(f, BusinessesSheet, 1, []any{"ID", "Name", "Type", "Sales Representative", "State", "Value"}); err != nil {
		return err
	}
	for i, biz := range b.Businesses {
		row := []any{biz.ID, biz.Name, typeName(b, biz), userName(b, biz), stateName(b, biz), biz.Value.Decimal().InexactFloat64()}
		if err := writeRow(f, BusinessesSheet, i+2, row); err != nil {
			return err
		}
	}
	if len(b.Businesses) > 0 {
		if err := f.SetCellStyle(BusinessesSheet, "F2", fmt.Sprintf("F%d", len(b.Businesses)+1), money); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(BusinessesSheet, "A1", "F1", bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	_, err = f.WriteTo(w)
	return err
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// The lookups fall back to the board lists when a business was listed
// without its relations.
func typeName(b models.Board, biz models.Business) string {
	if biz.BusinessType != nil {
		return biz.BusinessType.Name
	}
	for _, t := range b.BusinessTypes {
		if t.ID == biz.BusinessTypeID {
			return t.Name
		}
	}
	return ""
}

func userName(b models.Board, biz models.Business) string {
	if biz.User != nil {
		return biz.User.Name
	}
	for _, u := range b.Users {
		if u.ID == biz.UserID {
			return u.Name
		}
	}
	return ""
}

func stateName(b models.Board, biz models.Business) string {
	if biz.State != nil {
		return biz.State.Name
	}
	for _, s := range b.States {
		if s.ID == biz.StateID {
			return s.Name
		}
	}
	return ""
}
