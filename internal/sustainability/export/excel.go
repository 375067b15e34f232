package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

const sheetName = "ESG Report"

func renderExcel(r *domain.ESGReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2E7D32"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	numberStyle, err := file.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheetName, cell, col); err != nil {
			return nil, err
		}
	}
	if err := file.SetCellStyle(sheetName, "A1", "D1", headerStyle); err != nil {
		return nil, err
	}

	for i, row := range Rows(r) {
		rowNum := i + 2
		values := []interface{}{row.Section, row.Metric, row.Value, row.Unit}
		for col, val := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			if b, ok := val.(bool); ok {
				val = formatValue(b)
			}
			if err := file.SetCellValue(sheetName, cell, val); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
		if _, ok := row.Value.(float64); ok {
			cell, _ := excelize.CoordinatesToCellName(3, rowNum)
			if err := file.SetCellStyle(sheetName, cell, cell, numberStyle); err != nil {
				return nil, err
			}
		}
	}

	_ = file.SetColWidth(sheetName, "A", "A", 16)
	_ = file.SetColWidth(sheetName, "B", "B", 30)
	_ = file.SetColWidth(sheetName, "C", "C", 40)
	_ = file.SetColWidth(sheetName, "D", "D", 12)
	_ = file.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
