package excel

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
	"github.com/Gt-kt/dealertire-Autoworld/internal/parser"
)

// ErrEmptySheet 工作表没有表头行
var ErrEmptySheet = errors.New("empty sheet")

// maxExcelSerial 9999-12-31 之后的序列值不视为日期
const maxExcelSerial = 2958466

// ReadOptions 读取选项
type ReadOptions struct {
	// Sheet 为空时读取第一个工作表
	Sheet string
}

// ReadTable 读取上传的工作簿：第一行为表头，其余为数据行
func ReadTable(r io.Reader, opts ReadOptions) (*model.RawTable, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer file.Close()

	return ReadWorkbook(file, opts)
}

// ReadWorkbook 从已打开的工作簿读取原始表格
func ReadWorkbook(file *excelize.File, opts ReadOptions) (*model.RawTable, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrEmptySheet)
	}

	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = parser.NormalizeColumnName(col)
	}

	table := &model.RawTable{
		SheetName: sheet,
		Header:    header,
		Rows:      make([][]string, 0, len(rows)-1),
	}
	dates, err := newDateColumn(file, sheet, header)
	if err != nil {
		return nil, err
	}

	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		// GetRows 会截掉行尾空单元格，补齐到表头宽度
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		dates.apply(i+1, row)
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// dateColumn 订单日列的原始单元格值
// GetRows 返回按格式渲染的文本，日期单元格会变成 "10-15-25" 之类，需按序列值还原
type dateColumn struct {
	index    int
	raw      [][]string
	date1904 bool
}

func newDateColumn(file *excelize.File, sheet string, header []string) (*dateColumn, error) {
	col := &dateColumn{index: -1}
	for i, name := range header {
		if name == parser.ColOrderDate {
			col.index = i
			break
		}
	}
	if col.index < 0 {
		return col, nil
	}

	raw, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	col.raw = raw
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		col.date1904 = *props.Date1904
	}
	return col, nil
}

// apply 把序列值日期改写为 YYYYMMDD；文本与 YYYYMMDD 数值保持原样
func (c *dateColumn) apply(rowIdx int, row []string) {
	if c.index < 0 || rowIdx >= len(c.raw) || c.index >= len(c.raw[rowIdx]) {
		return
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(c.raw[rowIdx][c.index]), 64)
	if err != nil || serial <= 0 || serial >= maxExcelSerial {
		return
	}
	t, err := excelize.ExcelDateToTime(serial, c.date1904)
	if err != nil {
		return
	}
	row[c.index] = t.Format(parser.OrderDateLayout)
}
