package exporter

import (
	"fmt"

	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
)

// 版式间距（行）
const (
	historicalGap = 5 // 标题 + 空行 + 表头 + 表后两行空白
	titleGap      = 2
	dayTableGap   = 3
	combinedGap   = 4
	emptyBlockGap = 2
)

// CombinedCaption 平日+周末合并行的标题
const CombinedCaption = "▶ 평일+주말 통합 예측 결과"

// WeekdayCaption 平日预测表标题
func WeekdayCaption(daysObserved, remaining int) string {
	return fmt.Sprintf("평일 최종 예측 (데이터 %d일, 남은 평일 %d일)", daysObserved, remaining)
}

// WeekendCaption 周末预测表标题
func WeekendCaption(daysObserved, remaining int) string {
	return fmt.Sprintf("주말 최종 예측 (데이터 %d일, 남은 주말 %d일)", daysObserved, remaining)
}

// Assemble 把分析结果排版为两个工作表
//
// 下游模板填充依赖固定行偏移，间距不可随意调整：
// 历史表：标题在 cursor，表头在 cursor+2，cursor += 行数+5；
// 预测表：标题后 cursor += 2，平日/周末说明在 cursor、表在 cursor+1，cursor += 行数+3；
// 合并行说明在 cursor、表在 cursor+1，cursor += 行数+4；两侧都无数据时 cursor += 2。
func Assemble(report *model.Report) *model.Document {
	return &model.Document{
		Sheets: []*model.DocumentSheet{
			assembleHistorical(report.Historical),
			assembleForecasts(report.Forecasts),
		},
	}
}

func assembleHistorical(blocks []*model.HistoricalBlock) *model.DocumentSheet {
	sheet := &model.DocumentSheet{Name: model.SheetAnalysis}
	cursor := 0
	for _, b := range blocks {
		if b == nil || b.Table.IsEmpty() {
			continue
		}
		sheet.Entries = append(sheet.Entries,
			model.Entry{Kind: model.EntryTitle, Row: cursor, Text: b.Title},
			model.Entry{Kind: model.EntryTable, Row: cursor + 2, Table: b.Table, WithLabel: b.Table.KeyName != ""},
		)
		cursor += b.Table.RowCount() + historicalGap
	}
	return sheet
}

func assembleForecasts(blocks []*model.ForecastBlock) *model.DocumentSheet {
	sheet := &model.DocumentSheet{Name: model.SheetPrediction}
	cursor := 0
	for _, b := range blocks {
		if b == nil {
			continue
		}
		sheet.Entries = append(sheet.Entries, model.Entry{Kind: model.EntryTitle, Row: cursor, Text: b.Title})
		cursor += titleGap

		for _, p := range []model.DayProjection{b.Weekday, b.Weekend} {
			if !p.Present() {
				continue
			}
			caption := WeekdayCaption(p.DaysObserved, p.RemainingDays)
			if p.DayType == model.Weekend {
				caption = WeekendCaption(p.DaysObserved, p.RemainingDays)
			}
			sheet.Entries = append(sheet.Entries,
				model.Entry{Kind: model.EntryTitle, Row: cursor, Text: caption},
				model.Entry{Kind: model.EntryTable, Row: cursor + 1, Table: p.Table, WithLabel: true},
			)
			cursor += p.Table.RowCount() + dayTableGap
		}

		if !b.HasData() || b.Combined.IsEmpty() {
			cursor += emptyBlockGap
			continue
		}
		sheet.Entries = append(sheet.Entries,
			model.Entry{Kind: model.EntryTitle, Row: cursor, Text: CombinedCaption},
			model.Entry{Kind: model.EntryTable, Row: cursor + 1, Table: b.Combined, WithLabel: true},
		)
		cursor += b.Combined.RowCount() + combinedGap
	}
	return sheet
}
