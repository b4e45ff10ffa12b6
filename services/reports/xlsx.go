package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"counsellor-console/models"
)

const statusSheet = "Status Report"

// WriteStatusXLSX renders the pivot report as a workbook with a TOTAL footer row.
func WriteStatusXLSX(w io.Writer, report *models.StatusReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statusSheet); err != nil {
		return err
	}

	label := "Counsellor"
	if report.ReportType == models.ReportColleges {
		label = "College"
	}
	header := []interface{}{label}
	for _, s := range report.Statuses {
		header = append(header, s)
	}
	header = append(header, "Total")
	if err := f.SetSheetRow(statusSheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range report.Rows {
		values := []interface{}{row.Name}
		for _, s := range report.Statuses {
			values = append(values, row.Counts[s])
		}
		values = append(values, row.Total)
		if err := setRow(f, i+2, values); err != nil {
			return err
		}
	}

	footer := []interface{}{"TOTAL"}
	for _, s := range report.Statuses {
		footer = append(footer, report.Totals.StatusTotals[s])
	}
	footer = append(footer, report.Totals.GrandTotal)
	footerRow := len(report.Rows) + 2
	if err := setRow(f, footerRow, footer); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol := len(header)
	for _, r := range []int{1, footerRow} {
		from, _ := excelize.CoordinatesToCellName(1, r)
		to, _ := excelize.CoordinatesToCellName(lastCol, r)
		if err := f.SetCellStyle(statusSheet, from, to, bold); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(statusSheet, "A", "A", 36); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing status report workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(statusSheet, cell, &values)
}
