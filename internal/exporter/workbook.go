package exporter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
)

const (
	// numFmtThousands 内置格式 "#,##0"
	numFmtThousands = 3

	labelColWidth = 28
	valueColWidth = 16
)

var currencyPrinter = message.NewPrinter(language.Korean)

// FormatCurrency 金额文本：千分位、无小数
func FormatCurrency(v float64) string {
	return currencyPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// OutputFileName 下载文件名：processed_<program>_<上传文件名>
func OutputFileName(program, uploaded string) string {
	name := filepath.Base(strings.TrimSpace(uploaded))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "result.xlsx"
	}
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
	}
	return fmt.Sprintf("processed_%s_%s", program, name)
}

// Build 排版并写出工作簿
func Build(report *model.Report) (*excelize.File, error) {
	return WriteWorkbook(Assemble(report))
}

type styles struct {
	title    int
	header   int
	currency int
}

// WriteWorkbook 将文档写成 excelize 工作簿，调用方负责 Close
func WriteWorkbook(doc *model.Document) (*excelize.File, error) {
	f := excelize.NewFile()

	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, sheet := range doc.Sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", sheet.Name, err)
		}

		if err := writeSheet(f, sheet, st); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write sheet %s: %w", sheet.Name, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	if st.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	}); err != nil {
		return st, fmt.Errorf("create title style: %w", err)
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return st, fmt.Errorf("create header style: %w", err)
	}
	if st.currency, err = f.NewStyle(&excelize.Style{NumFmt: numFmtThousands}); err != nil {
		return st, fmt.Errorf("create currency style: %w", err)
	}
	return st, nil
}

func writeSheet(f *excelize.File, sheet *model.DocumentSheet, st styles) error {
	maxCols := 1
	for _, e := range sheet.Entries {
		switch e.Kind {
		case model.EntryTitle:
			cell, _ := excelize.CoordinatesToCellName(1, e.Row+1)
			if err := f.SetCellStr(sheet.Name, cell, e.Text); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet.Name, cell, cell, st.title); err != nil {
				return err
			}
		case model.EntryTable:
			cols, err := writeTable(f, sheet.Name, e, st)
			if err != nil {
				return err
			}
			if cols > maxCols {
				maxCols = cols
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(maxCols)
	if err := f.SetColWidth(sheet.Name, "A", "A", labelColWidth); err != nil {
		return err
	}
	if maxCols > 1 {
		return f.SetColWidth(sheet.Name, "B", lastCol, valueColWidth)
	}
	return nil
}

// writeTable 写出表头与数据行（含合计行），返回占用列数
func writeTable(f *excelize.File, sheet string, e model.Entry, st styles) (int, error) {
	t := e.Table
	offset := 0
	if e.WithLabel {
		offset = 1
	}
	headerRow := e.Row + 1

	header := make([]interface{}, 0, len(t.Columns)+offset)
	if e.WithLabel {
		header = append(header, t.KeyName)
	}
	for _, c := range t.Columns {
		header = append(header, c.Name)
	}
	start, _ := excelize.CoordinatesToCellName(1, headerRow)
	end, _ := excelize.CoordinatesToCellName(len(header), headerRow)
	if err := f.SetSheetRow(sheet, start, &header); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(sheet, start, end, st.header); err != nil {
		return 0, err
	}

	for ri, row := range t.AllRows() {
		excelRow := headerRow + 1 + ri
		if e.WithLabel {
			cell, _ := excelize.CoordinatesToCellName(1, excelRow)
			if err := f.SetCellStr(sheet, cell, row.Label); err != nil {
				return 0, err
			}
		}
		for ci, c := range t.Columns {
			if ci >= len(row.Values) {
				break
			}
			cell, _ := excelize.CoordinatesToCellName(ci+1+offset, excelRow)
			v := row.Values[ci]
			switch {
			case c.Format == model.FormatCurrencyText:
				if err := f.SetCellStr(sheet, cell, FormatCurrency(v)); err != nil {
					return 0, err
				}
			case c.IsCurrency():
				if err := f.SetCellFloat(sheet, cell, v, 0, 64); err != nil {
					return 0, err
				}
				if err := f.SetCellStyle(sheet, cell, cell, st.currency); err != nil {
					return 0, err
				}
			default:
				if err := f.SetCellFloat(sheet, cell, v, -1, 64); err != nil {
					return 0, err
				}
			}
		}
	}

	return len(header), nil
}
