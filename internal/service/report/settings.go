package report

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/Gt-kt/dealertire-Autoworld/internal/calendar"
	"github.com/Gt-kt/dealertire-Autoworld/internal/config"
	"github.com/Gt-kt/dealertire-Autoworld/internal/parser"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/calculator"
)

// Settings B2C 周报的业务口径
type Settings struct {
	TireCategory      string   `json:"tireCategory"`
	ExcludedBrand     string   `json:"excludedBrand"`
	OtherCategories   []string `json:"otherCategories"`
	OilCategory       string   `json:"oilCategory"`
	OilFilterKeyword  string   `json:"oilFilterKeyword"`
	AlignmentCategory string   `json:"alignmentCategory"`
	OilServiceFee     float64  `json:"oilServiceFee"`
	AlignmentFee      float64  `json:"alignmentFee"`

	Policy      calculator.Policy       `json:"policy"`
	BrandSplits []parser.BrandSplitRule `json:"brandSplits"`
}

// SettingsFromConfig 由 [report] 配置生成口径
func SettingsFromConfig(rc config.ReportConfig) Settings {
	return Settings{
		TireCategory:      rc.TireCategory,
		ExcludedBrand:     rc.ExcludedBrand,
		OtherCategories:   append([]string(nil), rc.OtherCategories...),
		OilCategory:       rc.OilCategory,
		OilFilterKeyword:  rc.OilFilterKeyword,
		AlignmentCategory: rc.AlignmentCategory,
		OilServiceFee:     rc.OilServiceFee,
		AlignmentFee:      rc.AlignmentFee,
		Policy: calculator.Policy{
			VATRate:   rc.VATRate,
			RoundUnit: rc.RoundUnit,
		},
		BrandSplits: lo.Map(rc.BrandSplits, func(r config.BrandSplitRule, _ int) parser.BrandSplitRule {
			return parser.BrandSplitRule{
				Brand:      r.Brand,
				Contains:   r.Contains,
				MatchLabel: r.MatchLabel,
				OtherLabel: r.OtherLabel,
			}
		}),
	}
}

// NewServiceFromConfig 按应用配置创建服务
func NewServiceFromConfig(cfg *config.AppConfig, logger logrus.FieldLogger) (*Service, error) {
	cal, err := calendar.Parse(cfg.Calendar.Holidays)
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	return NewService(cal, SettingsFromConfig(cfg.Report), logger), nil
}
