package calculator

import (
	"github.com/samber/lo"

	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
)

// 용역가치 表的行标签与列名
const (
	ServiceValueKey        = "구분"
	ServiceValueColumn     = "금액"
	ServiceValueTireLabel  = "타이어 용역가치 (1)"
	ServiceValueOtherLabel = "기타상품 용역가치 (2)"
	ServiceValueOilLabel   = "엔진오일 용역가치 (3)"
	ServiceValueTotalLabel = "총 용역가치"
)

// ServiceSubsets 용역가치 的三个来源子集
type ServiceSubsets struct {
	Tire  []model.Record
	Other []model.Record
	Oil   []model.Record
}

// Filter 按条件筛选三个子集
func (s ServiceSubsets) Filter(keep func(model.Record) bool) ServiceSubsets {
	pick := func(records []model.Record) []model.Record {
		return lo.Filter(records, func(r model.Record, _ int) bool { return keep(r) })
	}
	return ServiceSubsets{
		Tire:  pick(s.Tire),
		Other: pick(s.Other),
		Oil:   pick(s.Oil),
	}
}

// ServiceValue 용역가치 三个分项（不含税、未取整）
type ServiceValue struct {
	Tire  float64 `json:"tire"`
	Other float64 `json:"other"`
	Oil   float64 `json:"oil"`
}

// Total 合计
func (v ServiceValue) Total() float64 {
	return v.Tire + v.Other + v.Oil
}

// ServiceValue 计算 용역가치：
// 轮胎 = 实付 - 订单额；其他商品 = 实付 - 订单额 - 安装费；发动机油 = 机滤数量 × oilFee
// 金额先做增值税还原，oilFee 为固定单价不做还原
func (a *Aggregator) ServiceValue(s ServiceSubsets, oilFee float64) ServiceValue {
	sum := func(records []model.Record, f model.Field) float64 {
		return lo.SumBy(records, func(r model.Record) float64 { return r.Number(f) })
	}
	p := a.policy
	return ServiceValue{
		Tire: p.ExcludeVAT(sum(s.Tire, model.FieldPaidAmount)) -
			p.ExcludeVAT(sum(s.Tire, model.FieldOrderAmount)),
		Other: p.ExcludeVAT(sum(s.Other, model.FieldPaidAmount)) -
			p.ExcludeVAT(sum(s.Other, model.FieldOrderAmount)) -
			p.ExcludeVAT(sum(s.Other, model.FieldInstallFee)),
		Oil: sum(s.Oil, model.FieldQuantity) * oilFee,
	}
}

// ServiceValueTable 용역가치 表：三个分项 + 合计行，仅在此处取整
func (a *Aggregator) ServiceValueTable(v ServiceValue) *model.Table {
	t := model.NewTable(model.TableGrouped, ServiceValueKey, []model.Column{{
		Name:   ServiceValueColumn,
		Kind:   model.KindFee,
		Format: model.FormatCurrencyText,
	}})
	t.Rows = []model.Row{
		{Label: ServiceValueTireLabel, Values: []float64{v.Tire}},
		{Label: ServiceValueOtherLabel, Values: []float64{v.Other}},
		{Label: ServiceValueOilLabel, Values: []float64{v.Oil}},
	}
	t.Total = &model.Row{Label: ServiceValueTotalLabel, Values: []float64{v.Total()}}
	a.policy.roundCurrencyInPlace(t)
	return t
}
