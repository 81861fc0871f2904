package excel_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Gt-kt/dealertire-Autoworld/internal/calendar"
	"github.com/Gt-kt/dealertire-Autoworld/internal/config"
	"github.com/Gt-kt/dealertire-Autoworld/internal/parser"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/excel"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("SetSheetName failed: %v", err)
		}
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf
}

func TestReadTable_FirstSheet(t *testing.T) {
	t.Parallel()

	buf := writeWorkbook(t, "주문", [][]interface{}{
		{" 상품타입 ", "주문\n수량", "장착비"},
		{"타이어", "4"},
		{"", "", ""},
		{"배터리", "1", "22000"},
	})

	table, err := excel.ReadTable(buf, excel.ReadOptions{})
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if table.SheetName != "주문" {
		t.Fatalf("SheetName=%q", table.SheetName)
	}
	if got := table.Header; len(got) != 3 || got[0] != "상품타입" || got[1] != "주문수량" {
		t.Fatalf("Header=%v", got)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Rows=%d, want 2 (blank row skipped)", len(table.Rows))
	}
	if len(table.Rows[0]) != 3 || table.Rows[0][2] != "" {
		t.Fatalf("short row not padded: %v", table.Rows[0])
	}
	if table.Rows[1][2] != "22000" {
		t.Fatalf("Rows[1]=%v", table.Rows[1])
	}
}

func TestReadTable_Errors(t *testing.T) {
	t.Parallel()

	if _, err := excel.ReadTable(bytes.NewBufferString("not a workbook"), excel.ReadOptions{}); err == nil {
		t.Fatalf("expected error for invalid workbook")
	}

	buf := writeWorkbook(t, "Sheet1", nil)
	_, err := excel.ReadTable(buf, excel.ReadOptions{})
	if !errors.Is(err, excel.ErrEmptySheet) {
		t.Fatalf("err=%v, want ErrEmptySheet", err)
	}
}

func TestReadTable_DateCellsBecomeOrderDates(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(parser.RequiredColumns))
	for i, name := range parser.RequiredColumns {
		header[i] = name
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow failed: %v", err)
	}
	rows := [][]interface{}{
		{"타이어", "금호", "온라인", "p", "1", "1000", "1000", "0", "", "A1", "C1"},
		{"타이어", "금호", "온라인", "p", "1", "1000", "1000", "0", "20251016", "A2", "C2"},
		{"타이어", "금호", "온라인", "p", "1", "1000", "1000", "0", 20251017, "A3", "C3"},
	}
	for i, row := range rows {
		r := row
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	// I2 为真正的日期单元格，短日期格式 (NumFmt 14)
	if err := f.SetCellValue("Sheet1", "I2", time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("SetCellValue failed: %v", err)
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatalf("NewStyle failed: %v", err)
	}
	if err := f.SetCellStyle("Sheet1", "I2", "I2", style); err != nil {
		t.Fatalf("SetCellStyle failed: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	table, err := excel.ReadTable(buf, excel.ReadOptions{})
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	dateIdx := 8
	want := []string{"20251015", "20251016", "20251017"}
	for i, w := range want {
		if got := table.Rows[i][dateIdx]; got != w {
			t.Fatalf("row %d date=%q, want %q", i, got, w)
		}
	}

	cal, err := calendar.Parse(config.DefaultConfig().Calendar.Holidays)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	_, stats, err := parser.NewNormalizer(cal, nil, nil).Normalize(table)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if stats.KeptRows != 3 || stats.DroppedRows != 0 {
		t.Fatalf("stats=%+v, want all rows kept", stats)
	}
}
