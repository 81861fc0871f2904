package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
)

// Policy 金额口径：增值税还原系数与取整单位
type Policy struct {
	VATRate   float64 `json:"vatRate"`   // 含税金额 / VATRate = 不含税金额
	RoundUnit float64 `json:"roundUnit"` // 金额取整单位
}

// ExcludeVAT 含税金额还原为不含税金额
func (p Policy) ExcludeVAT(v float64) float64 {
	if p.VATRate <= 0 {
		return v
	}
	return v / p.VATRate
}

// Round 取整到 RoundUnit
func (p Policy) Round(v float64) float64 {
	return RoundToUnit(v, p.RoundUnit)
}

// RoundToUnit 四舍五入到 unit 的整数倍，恰好在中点时远离零取整
func RoundToUnit(v, unit float64) float64 {
	if unit <= 0 {
		return v
	}
	u := decimal.NewFromFloat(unit)
	return decimal.NewFromFloat(v).Div(u).Round(0).Mul(u).InexactFloat64()
}

// roundCurrencyInPlace 金额列取整（含合计行）
func (p Policy) roundCurrencyInPlace(t *model.Table) {
	for ci, col := range t.Columns {
		if !col.IsCurrency() {
			continue
		}
		for ri := range t.Rows {
			t.Rows[ri].Values[ci] = p.Round(t.Rows[ri].Values[ci])
		}
		if t.Total != nil {
			t.Total.Values[ci] = p.Round(t.Total.Values[ci])
		}
	}
}

// excludeVATInPlace 含税金额列做增值税还原（不含合计行，合计在还原后重算）
func (p Policy) excludeVATInPlace(t *model.Table) {
	for ci, col := range t.Columns {
		if !col.IncludesVAT() {
			continue
		}
		for ri := range t.Rows {
			t.Rows[ri].Values[ci] = p.ExcludeVAT(t.Rows[ri].Values[ci])
		}
	}
}
