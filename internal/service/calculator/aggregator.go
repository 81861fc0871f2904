package calculator

import (
	"sort"

	"github.com/samber/lo"

	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
)

// Reducer 聚合方式
type Reducer int

const (
	ReduceSum Reducer = iota
	ReduceCountDistinct
)

// Metric 指标定义：输出列 + 来源字段 + 聚合方式
// Multiplier > 0 时输出列 = 来源字段合计 × Multiplier（在预测外推之后应用）
type Metric struct {
	Column     model.Column
	Source     model.Field
	Reducer    Reducer
	Multiplier float64
}

// Sum 求和指标
func Sum(name string, kind model.ColumnKind, source model.Field) Metric {
	return Metric{
		Column:  model.Column{Name: name, Kind: kind},
		Source:  source,
		Reducer: ReduceSum,
	}
}

// CountDistinct 去重计数指标（空值不计）
func CountDistinct(name string, source model.Field) Metric {
	return Metric{
		Column:  model.Column{Name: name, Kind: model.KindCount},
		Source:  source,
		Reducer: ReduceCountDistinct,
	}
}

// FeeOf 数量 × 固定单价，结果按千分位文本输出
func FeeOf(name string, source model.Field, fee float64) Metric {
	return Metric{
		Column:     model.Column{Name: name, Kind: model.KindFee, Format: model.FormatCurrencyText},
		Source:     source,
		Reducer:    ReduceSum,
		Multiplier: fee,
	}
}

// Columns 指标对应的输出列
func Columns(metrics []Metric) []model.Column {
	return lo.Map(metrics, func(m Metric, _ int) model.Column {
		return m.Column
	})
}

// Aggregator 历史分组汇总
type Aggregator struct {
	policy Policy
}

// NewAggregator 创建汇总器
func NewAggregator(policy Policy) *Aggregator {
	return &Aggregator{policy: policy}
}

// Policy 当前金额口径
func (a *Aggregator) Policy() Policy {
	return a.policy
}

// Aggregate 历史分析表：分组汇总 → 固定单价折算 → 增值税还原 → 合计 → 取整
// groupKey 为 FieldNone 时生成单行表（输入为空时各列为 0）；分组表输入为空时返回空表
func (a *Aggregator) Aggregate(records []model.Record, groupKey model.Field, keyName string, metrics []Metric) *model.Table {
	t := a.Reduce(records, groupKey, keyName, metrics)
	if t.IsEmpty() {
		return t
	}
	ApplyMultipliers(t, metrics)
	a.Finalize(t)
	return t
}

// Reduce 原始分组汇总：含税口径、无合计行、不应用单价
func (a *Aggregator) Reduce(records []model.Record, groupKey model.Field, keyName string, metrics []Metric) *model.Table {
	if groupKey == model.FieldNone {
		t := model.NewTable(model.TableScalar, "", Columns(metrics))
		t.Rows = append(t.Rows, model.Row{Values: reduceRow(records, metrics)})
		return t
	}

	t := model.NewTable(model.TableGrouped, keyName, Columns(metrics))
	if len(records) == 0 {
		return t
	}

	groups := lo.GroupBy(records, func(r model.Record) string {
		return r.Text(groupKey)
	})
	keys := lo.Keys(groups)
	sort.Strings(keys)

	for _, key := range keys {
		t.Rows = append(t.Rows, model.Row{
			Label:  key,
			Values: reduceRow(groups[key], metrics),
		})
	}
	return t
}

// Finalize 含税列还原 → 分组表重算合计行 → 金额列取整
func (a *Aggregator) Finalize(t *model.Table) {
	if t.IsEmpty() {
		return
	}
	a.policy.excludeVATInPlace(t)
	if t.Kind == model.TableGrouped {
		total := t.SumRows(model.TotalLabel)
		t.Total = &total
	}
	a.policy.roundCurrencyInPlace(t)
}

// ApplyMultipliers 对固定单价列应用单价
func ApplyMultipliers(t *model.Table, metrics []Metric) {
	for ci, m := range metrics {
		if m.Multiplier <= 0 || ci >= len(t.Columns) {
			continue
		}
		for ri := range t.Rows {
			t.Rows[ri].Values[ci] *= m.Multiplier
		}
	}
}

func reduceRow(records []model.Record, metrics []Metric) []float64 {
	values := make([]float64, len(metrics))
	for i, m := range metrics {
		switch m.Reducer {
		case ReduceCountDistinct:
			ids := lo.Compact(lo.Map(records, func(r model.Record, _ int) string {
				return r.Text(m.Source)
			}))
			values[i] = float64(len(lo.Uniq(ids)))
		default:
			values[i] = lo.SumBy(records, func(r model.Record) float64 {
				return r.Number(m.Source)
			})
		}
	}
	return values
}

// DistinctDays 数据中出现的不同订单日数量
func DistinctDays(records []model.Record) int {
	return len(lo.Uniq(lo.Map(records, func(r model.Record, _ int) string {
		return r.DateKey()
	})))
}

// FilterByDayType 按日期类型筛选
func FilterByDayType(records []model.Record, dt model.DayType) []model.Record {
	return lo.Filter(records, func(r model.Record, _ int) bool {
		return r.DayType == dt
	})
}
