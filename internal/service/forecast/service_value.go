package forecast

import (
	"github.com/samber/lo"

	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/calculator"
)

// ProjectServiceValue 용역가치 预测：
// 三个分项各自按所在子集的观测天数外推，合计行为三项之和，所有行最后取整
func (e *Engine) ProjectServiceValue(title string, subsets calculator.ServiceSubsets, oilFee float64, month model.MonthContext) *model.ForecastBlock {
	block := &model.ForecastBlock{
		Title:   title,
		Weekday: e.projectServiceDayType(subsets, oilFee, model.Weekday, month.Remaining(model.Weekday)),
		Weekend: e.projectServiceDayType(subsets, oilFee, model.Weekend, month.Remaining(model.Weekend)),
	}
	block.Combined = Combine(block.Weekday.Table, block.Weekend.Table)
	return block
}

func (e *Engine) projectServiceDayType(subsets calculator.ServiceSubsets, oilFee float64, dt model.DayType, remaining int) model.DayProjection {
	sub := subsets.Filter(func(r model.Record) bool { return r.DayType == dt })
	p := model.DayProjection{
		DayType:       dt,
		DaysObserved:  calculator.DistinctDays(lo.Flatten([][]model.Record{sub.Tire, sub.Other, sub.Oil})),
		RemainingDays: remaining,
	}
	if p.DaysObserved == 0 {
		return p
	}

	v := e.agg.ServiceValue(sub, oilFee)
	projected := calculator.ServiceValue{
		Tire:  Extrapolate(v.Tire, calculator.DistinctDays(sub.Tire), remaining),
		Other: Extrapolate(v.Other, calculator.DistinctDays(sub.Other), remaining),
		Oil:   Extrapolate(v.Oil, calculator.DistinctDays(sub.Oil), remaining),
	}
	p.Table = e.agg.ServiceValueTable(projected)
	return p
}
