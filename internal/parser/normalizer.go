package parser

import (
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
)

// DayClassifier 日期分类器
type DayClassifier interface {
	Classify(d time.Time) model.DayType
}

// Normalizer 订单明细清洗器
type Normalizer struct {
	classifier DayClassifier
	splits     []BrandSplitRule
	logger     logrus.FieldLogger
}

// NewNormalizer 创建清洗器
func NewNormalizer(classifier DayClassifier, splits []BrandSplitRule, logger logrus.FieldLogger) *Normalizer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Normalizer{
		classifier: classifier,
		splits:     append([]BrandSplitRule(nil), splits...),
		logger:     logger,
	}
}

// Normalize 校验列、清洗文本与数值、解析订单日并标注日期类型
// 订单日无法解析的行整行丢弃；数值无法解析时按 0 处理
func (n *Normalizer) Normalize(raw *model.RawTable) ([]model.Record, model.NormalizeStats, error) {
	var stats model.NormalizeStats
	if raw == nil {
		return nil, stats, errors.New("raw table is nil")
	}

	colIndex := make(map[string]int, len(raw.Header))
	for i, col := range raw.Header {
		name := NormalizeColumnName(col)
		if _, dup := colIndex[name]; !dup {
			colIndex[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := colIndex[NormalizeColumnName(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, stats, &SchemaError{Missing: missing}
	}

	records := make([]model.Record, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		stats.TotalRows++
		rec, ok := n.parseRow(row, colIndex, i+2)
		if !ok {
			stats.DroppedRows++
			continue
		}
		records = append(records, rec)
	}
	stats.KeptRows = len(records)

	if stats.DroppedRows > 0 {
		n.logger.WithFields(logrus.Fields{
			"sheet":   raw.SheetName,
			"dropped": stats.DroppedRows,
		}).Debug("rows without a valid order date were dropped")
	}

	return records, stats, nil
}

// parseRow 解析单行；订单日无效时返回 false
func (n *Normalizer) parseRow(row []string, colIndex map[string]int, rowNum int) (model.Record, bool) {
	getValue := func(col string) string {
		if idx, ok := colIndex[NormalizeColumnName(col)]; ok && idx < len(row) {
			return row[idx]
		}
		return ""
	}
	getText := func(col string) string {
		return strings.TrimSpace(getValue(col))
	}

	orderDate, ok := ParseOrderDate(getValue(ColOrderDate))
	if !ok {
		return model.Record{}, false
	}

	rec := model.Record{
		RowNo:       rowNum,
		Category:    getText(ColCategory),
		Brand:       getText(ColBrand),
		Channel:     getText(ColChannel),
		Product:     getText(ColProduct),
		Pattern:     getText(ColPattern),
		Quantity:    ParseNumber(getValue(ColQuantity)),
		OrderAmount: ParseNumber(getValue(ColOrderAmount)),
		PaidAmount:  ParseNumber(getValue(ColPaidAmount)),
		InstallFee:  ParseNumber(getValue(ColInstallFee)),
		OrderDate:   orderDate,
		OrderID:     getText(ColOrderID),
		CustomerID:  getText(ColCustomerID),
	}
	if rec.Pattern == "" {
		rec.Pattern = rec.Product
	}
	rec.Brand = n.splitBrand(rec.Brand, rec.Pattern)
	rec.DayType = n.classifier.Classify(orderDate)

	return rec, true
}

// splitBrand 依次应用品牌拆分规则（首个命中的规则生效）
func (n *Normalizer) splitBrand(brand, pattern string) string {
	for _, rule := range n.splits {
		if rule.Brand == brand {
			return rule.Apply(brand, pattern)
		}
	}
	return brand
}
