package report

import (
	"context"
	"fmt"
	"time"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/user"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX renders the filtered report table as a spreadsheet,
// administrator only.
func (s *ReportServiceImpl) ExportXLSX(ctx context.Context, actor *user.User, filter ListFilter) ([]byte, string, error) {
	if !actor.IsAdministrator() {
		return nil, "", apperr.Forbidden("only administrators can export reports")
	}

	rows, _, err := s.List(ctx, actor, filter, 0, 0)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Reports"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", apperr.Store(err, "failed to build spreadsheet")
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	columns := []string{"Name", "Call Ref", "Machine Type", "Serial Number", "Status", "Created", "Finished"}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		status := StatusInProcess
		finished := ""
		if row.FinishedAt != nil {
			status = StatusFinalized
			finished = row.FinishedAt.Format("2006-01-02 15:04:05")
		}
		values := []any{
			row.Name,
			row.CallRef,
			row.MachineType,
			row.SerialNumber,
			string(status),
			row.CreatedAt.Format("2006-01-02 15:04:05"),
			finished,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", apperr.Store(err, "failed to write spreadsheet")
	}

	filename := fmt.Sprintf("reports_%s.xlsx", time.Now().UTC().Format("060102"))
	return buffer.Bytes(), filename, nil
}
