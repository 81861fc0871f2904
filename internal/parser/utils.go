package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// 订单日格式
const (
	OrderDateLayout    = "20060102"
	orderDateAltLayout = "2006-01-02"
)

// NormalizeColumnName 规范化列名，去除空格和换行
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\n", "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\t", "")
	return reWhitespace.ReplaceAllString(name, "")
}

// ParseNumber 去掉千分位后转数值，无法解析时返回 0
// ParseFloat 接受 NaN / Inf 字面量，这类值同样视为无法解析
func ParseNumber(val string) float64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	val = strings.ReplaceAll(val, ",", "")
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseOrderDate 按 YYYYMMDD 解析订单日
// 表格把日期列渲染成 YYYY-MM-DD 时也接受；数值单元格可能带 ".0" 后缀
func ParseOrderDate(val string) (time.Time, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, ".0")
	if val == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(OrderDateLayout, val); err == nil {
		return d, true
	}
	if d, err := time.Parse(orderDateAltLayout, val); err == nil {
		return d, true
	}
	return time.Time{}, false
}
