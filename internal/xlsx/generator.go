package xlsx

import (
	"github.com/xuri/excelize/v2"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the prepared header and data rows as a workbook with
// a summary sheet and a data sheet.
func (g *Generator) Generate(header []string, rows [][]string, title string) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "サマリー"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, title, len(rows)); err != nil {
		return nil, err
	}

	dataSheet := "データ"
	if _, err := file.NewSheet(dataSheet); err != nil {
		return nil, err
	}
	if err := g.writeData(file, dataSheet, header, rows); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet, title string, recordCount int) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "タイトル")
	set("B1", title)
	set("A2", "件数")
	set("B2", recordCount)

	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "B", 36)
	return nil
}

func (g *Generator) writeData(file *excelize.File, sheet string, header []string, rows [][]string) error {
	for i, cell := range header {
		name, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, name, cell); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, cell := range row {
			name, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, name, cell); err != nil {
				return err
			}
		}
	}

	if len(header) > 0 {
		last, err := excelize.ColumnNumberToName(len(header))
		if err != nil {
			return err
		}
		_ = file.SetColWidth(sheet, "A", last, 18)
	}
	return nil
}
