package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/Gt-kt/dealertire-Autoworld/internal/calendar"
	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
	"github.com/Gt-kt/dealertire-Autoworld/internal/parser"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/calculator"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/forecast"
)

// ProgramB2CWeekly 程序标识
const ProgramB2CWeekly = "b2c_weekly_p"

// 输出列名
const (
	colQuantity     = "주문수량"
	colOrderAmount  = "상품주문금액"
	colPaidAmount   = "실결제금액"
	colInstallFee   = "장착비"
	colOrderCount   = "개수(count)"
	colCustomers    = "고유고객수"
	colAlignmentQty = "주문수량 합계"

	keyChannel  = "주문채널"
	keyCategory = "상품타입"
	keyBrand    = "브랜드"

	forecastSuffix = " - 예측"
)

// 报表块标题
const (
	TitleTireByChannel = "1. 타이어 판매 현황 (by 주문채널)"
	TitleOtherGoods    = "2. 기타 상품 판매 현황"
	TitleOilFilter     = "3. 엔진오일(오일필터) 주문 내역 (집계)"
	TitleServiceValue  = "4. 용역 가치 분석"
	TitleTireCustomers = "5. 타이어 구매 고객 분석"
	TitleTireByBrand   = "6. 타이어 판매 현황 (by 브랜드)"
	TitleAlignment     = "7. 휠얼라이먼트 분석"
)

// RunOptions 运行选项
type RunOptions struct {
	Progress func(ProgressEvent)
}

// Service B2C 周度分析与月末预测
type Service struct {
	calendar   *calendar.Calendar
	settings   Settings
	normalizer *parser.Normalizer
	agg        *calculator.Aggregator
	engine     *forecast.Engine
	logger     logrus.FieldLogger
	now        func() time.Time
}

// NewService 创建服务；日历与口径在构造后只读
func NewService(cal *calendar.Calendar, settings Settings, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	agg := calculator.NewAggregator(settings.Policy)
	return &Service{
		calendar:   cal,
		settings:   settings,
		normalizer: parser.NewNormalizer(cal, settings.BrandSplits, logger),
		agg:        agg,
		engine:     forecast.NewEngine(agg),
		logger:     logger,
		now:        time.Now,
	}
}

// Settings 当前口径
func (s *Service) Settings() Settings {
	return s.settings
}

// HolidayCount 日历中去重后的节假日数
func (s *Service) HolidayCount() int {
	return s.calendar.HolidayCount()
}

// Run 清洗原始表格并生成完整分析结果
func (s *Service) Run(raw *model.RawTable, opts RunOptions) (*model.Report, error) {
	runID := uuid.NewString()
	log := s.logger.WithFields(logrus.Fields{
		"run_id":  runID,
		"program": ProgramB2CWeekly,
	})

	reportProgress(opts.Progress, 5, StageNormalize)
	records, stats, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("File Read/Clean Error: %w", err)
	}

	report := s.Build(records, opts)
	report.RunID = runID
	report.Stats = stats

	log.WithFields(logrus.Fields{
		"rows":        stats.TotalRows,
		"dropped":     stats.DroppedRows,
		"latest_date": report.Month.LatestDate.Format("2006-01-02"),
		"historical":  len(report.Historical),
		"forecasts":   len(report.Forecasts),
	}).Info("b2c weekly report built")

	return report, nil
}

// Build 由清洗后的订单行生成历史块与预测块
func (s *Service) Build(records []model.Record, opts RunOptions) *model.Report {
	subsets := s.split(records)
	month := s.calendar.NewMonthContext(records, s.now())

	reportProgress(opts.Progress, 30, StageHistorical)
	historical := s.historicalBlocks(subsets)

	reportProgress(opts.Progress, 60, StageForecast)
	forecasts := s.forecastBlocks(subsets, month)

	reportProgress(opts.Progress, 100, StageDone)
	return &model.Report{
		Program:    ProgramB2CWeekly,
		Month:      month,
		Stats:      model.NormalizeStats{TotalRows: len(records), KeptRows: len(records)},
		Historical: historical,
		Forecasts:  forecasts,
	}
}

// subsets 报表使用的筛选子集
type subsets struct {
	tire      []model.Record
	other     []model.Record
	oil       []model.Record
	alignment []model.Record
}

func (s *Service) split(records []model.Record) subsets {
	cfg := s.settings
	return subsets{
		tire: lo.Filter(records, func(r model.Record, _ int) bool {
			return r.Category == cfg.TireCategory && r.Brand != cfg.ExcludedBrand
		}),
		other: lo.Filter(records, func(r model.Record, _ int) bool {
			return lo.Contains(cfg.OtherCategories, r.Category)
		}),
		oil: lo.Filter(records, func(r model.Record, _ int) bool {
			return r.Category == cfg.OilCategory && strings.Contains(r.Product, cfg.OilFilterKeyword)
		}),
		alignment: lo.Filter(records, func(r model.Record, _ int) bool {
			return r.Category == cfg.AlignmentCategory
		}),
	}
}

func (s *Service) serviceSubsets(sub subsets) calculator.ServiceSubsets {
	return calculator.ServiceSubsets{Tire: sub.tire, Other: sub.other, Oil: sub.oil}
}

func tireMetrics() []calculator.Metric {
	return []calculator.Metric{
		calculator.Sum(colQuantity, model.KindQuantity, model.FieldQuantity),
		calculator.Sum(colOrderAmount, model.KindCurrency, model.FieldOrderAmount),
		calculator.Sum(colPaidAmount, model.KindCurrency, model.FieldPaidAmount),
	}
}

func otherMetrics() []calculator.Metric {
	return []calculator.Metric{
		calculator.Sum(colQuantity, model.KindQuantity, model.FieldQuantity),
		calculator.Sum(colOrderAmount, model.KindCurrency, model.FieldOrderAmount),
		calculator.Sum(colInstallFee, model.KindCurrency, model.FieldInstallFee),
		calculator.Sum(colPaidAmount, model.KindCurrency, model.FieldPaidAmount),
	}
}

func customerMetrics() []calculator.Metric {
	return []calculator.Metric{calculator.CountDistinct(colCustomers, model.FieldCustomerID)}
}

func (s *Service) alignmentMetrics() []calculator.Metric {
	fee := s.settings.AlignmentFee
	return []calculator.Metric{
		calculator.Sum(colAlignmentQty, model.KindQuantity, model.FieldQuantity),
		calculator.FeeOf(fmt.Sprintf("계산결과 (수량*%.0f)", fee), model.FieldQuantity, fee),
	}
}

func (s *Service) historicalBlocks(sub subsets) []*model.HistoricalBlock {
	oilMetrics := append([]calculator.Metric{
		calculator.CountDistinct(colOrderCount, model.FieldOrderID),
	}, tireMetrics()...)

	serviceTable := s.agg.ServiceValueTable(s.agg.ServiceValue(s.serviceSubsets(sub), s.settings.OilServiceFee))

	// 휠얼라인먼트 单行表附带 상품타입 标签列
	alignment := s.agg.Aggregate(sub.alignment, model.FieldNone, "", s.alignmentMetrics())
	alignment.KeyName = keyCategory
	alignment.Rows[0].Label = s.settings.AlignmentCategory

	return []*model.HistoricalBlock{
		{Title: TitleTireByChannel, Table: s.agg.Aggregate(sub.tire, model.FieldChannel, keyChannel, tireMetrics())},
		{Title: TitleOtherGoods, Table: s.agg.Aggregate(sub.other, model.FieldCategory, keyCategory, otherMetrics())},
		{Title: TitleOilFilter, Table: s.agg.Aggregate(sub.oil, model.FieldNone, "", oilMetrics)},
		{Title: TitleServiceValue, Table: serviceTable},
		{Title: TitleTireCustomers, Table: s.agg.Aggregate(sub.tire, model.FieldChannel, keyChannel, customerMetrics())},
		{Title: TitleTireByBrand, Table: s.agg.Aggregate(sub.tire, model.FieldBrand, keyBrand, tireMetrics())},
		{Title: TitleAlignment, Table: alignment},
	}
}

func (s *Service) forecastBlocks(sub subsets, month model.MonthContext) []*model.ForecastBlock {
	project := func(records []model.Record, title string, key model.Field, keyName string, metrics []calculator.Metric) *model.ForecastBlock {
		return s.engine.Project(records, forecast.BlockSpec{
			Title:    title + forecastSuffix,
			GroupKey: key,
			KeyName:  keyName,
			Metrics:  metrics,
		}, month)
	}

	return []*model.ForecastBlock{
		project(sub.tire, TitleTireByChannel, model.FieldChannel, keyChannel, tireMetrics()),
		project(sub.other, TitleOtherGoods, model.FieldCategory, keyCategory, otherMetrics()),
		project(sub.oil, TitleOilFilter, model.FieldNone, "", tireMetrics()),
		s.engine.ProjectServiceValue(TitleServiceValue+forecastSuffix, s.serviceSubsets(sub), s.settings.OilServiceFee, month),
		project(sub.tire, TitleTireCustomers, model.FieldChannel, keyChannel, customerMetrics()),
		project(sub.tire, TitleTireByBrand, model.FieldBrand, keyBrand, tireMetrics()),
		project(sub.alignment, TitleAlignment, model.FieldNone, "", s.alignmentMetrics()),
	}
}
