package forecast

import (
	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/calculator"
)

// BlockSpec 预测块定义
// GroupKey 为 FieldNone 时按单行汇总外推
type BlockSpec struct {
	Title    string
	GroupKey model.Field
	KeyName  string
	Metrics  []calculator.Metric
}

// Engine 月末预测引擎：按平日 / 周末分别计算日均值并外推剩余天数
type Engine struct {
	agg *calculator.Aggregator
}

// NewEngine 创建预测引擎
func NewEngine(agg *calculator.Aggregator) *Engine {
	return &Engine{agg: agg}
}

// Project 生成预测块：
// 分组汇总（含税原值）→ 日均 → 外推剩余天数 → 与历史相加 → 单价折算 → 增值税还原 → 合计 → 取整
func (e *Engine) Project(records []model.Record, spec BlockSpec, month model.MonthContext) *model.ForecastBlock {
	block := &model.ForecastBlock{
		Title:   spec.Title,
		Weekday: e.projectDayType(records, spec, model.Weekday, month.Remaining(model.Weekday)),
		Weekend: e.projectDayType(records, spec, model.Weekend, month.Remaining(model.Weekend)),
	}
	block.Combined = Combine(block.Weekday.Table, block.Weekend.Table)
	return block
}

func (e *Engine) projectDayType(records []model.Record, spec BlockSpec, dt model.DayType, remaining int) model.DayProjection {
	subset := calculator.FilterByDayType(records, dt)
	p := model.DayProjection{
		DayType:       dt,
		DaysObserved:  calculator.DistinctDays(subset),
		RemainingDays: remaining,
	}
	if p.DaysObserved == 0 {
		return p
	}

	hist := e.agg.Reduce(subset, spec.GroupKey, spec.KeyName, spec.Metrics)
	if hist.IsEmpty() {
		return p
	}

	for ri := range hist.Rows {
		for ci, v := range hist.Rows[ri].Values {
			hist.Rows[ri].Values[ci] = Extrapolate(v, p.DaysObserved, remaining)
		}
	}
	calculator.ApplyMultipliers(hist, spec.Metrics)
	e.agg.Finalize(hist)

	p.Table = hist
	return p
}

// Extrapolate 线性外推：historical + historical/daysObserved × remainingDays
func Extrapolate(historical float64, daysObserved, remainingDays int) float64 {
	if daysObserved <= 0 {
		return historical
	}
	perDay := historical / float64(daysObserved)
	return historical + perDay*float64(remainingDays)
}

// Combine 平日与周末的汇总行按列名相加（缺列按 0），再统一标记为合并行
// 只有一侧有数据时等于该侧汇总；两侧都没有时返回 nil
func Combine(weekday, weekend *model.Table) *model.Table {
	var sides []*model.Table
	for _, t := range []*model.Table{weekday, weekend} {
		if !t.IsEmpty() {
			sides = append(sides, t)
		}
	}
	if len(sides) == 0 {
		return nil
	}

	var columns []model.Column
	seen := make(map[string]int)
	for _, t := range sides {
		for _, c := range t.Columns {
			if _, ok := seen[c.Name]; ok {
				continue
			}
			seen[c.Name] = len(columns)
			columns = append(columns, c)
		}
	}

	combined := model.Row{Values: make([]float64, len(columns))}
	for _, t := range sides {
		summary, ok := t.Summary()
		if !ok {
			continue
		}
		for ci, c := range t.Columns {
			if ci < len(summary.Values) {
				combined.Values[seen[c.Name]] += summary.Values[ci]
			}
		}
	}
	combined.Label = model.CombinedLabel

	out := model.NewTable(model.TableScalar, "", columns)
	out.Rows = []model.Row{combined}
	return out
}
