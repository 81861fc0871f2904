package model

import "time"

// DayType 日期类型（平日 / 周末含节假日）
type DayType string

const (
	Weekday DayType = "Weekday"
	Weekend DayType = "Weekend"
)

// Field 订单行字段（分组键或指标来源）
type Field int

const (
	FieldNone Field = iota
	FieldCategory
	FieldBrand
	FieldChannel
	FieldProduct
	FieldPattern
	FieldQuantity
	FieldOrderAmount
	FieldPaidAmount
	FieldInstallFee
	FieldOrderID
	FieldCustomerID
)

// Record 清洗后的订单行
type Record struct {
	RowNo int `json:"rowNo"`

	Category string `json:"category"` // 상품타입
	Brand    string `json:"brand"`    // 브랜드
	Channel  string `json:"channel"`  // 주문채널
	Product  string `json:"product"`  // 주문상품
	Pattern  string `json:"pattern"`  // 패턴（缺列时取商品名）

	Quantity    float64 `json:"quantity"`    // 주문수량
	OrderAmount float64 `json:"orderAmount"` // 상품주문금액（含税）
	PaidAmount  float64 `json:"paidAmount"`  // 실결제금액（含税）
	InstallFee  float64 `json:"installFee"`  // 장착비（含税）

	OrderDate  time.Time `json:"orderDate"`
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`

	DayType DayType `json:"dayType"`
}

// Text 取文本字段值
func (r *Record) Text(f Field) string {
	switch f {
	case FieldCategory:
		return r.Category
	case FieldBrand:
		return r.Brand
	case FieldChannel:
		return r.Channel
	case FieldProduct:
		return r.Product
	case FieldPattern:
		return r.Pattern
	case FieldOrderID:
		return r.OrderID
	case FieldCustomerID:
		return r.CustomerID
	default:
		return ""
	}
}

// Number 取数值字段值，非数值字段返回 0
func (r *Record) Number(f Field) float64 {
	switch f {
	case FieldQuantity:
		return r.Quantity
	case FieldOrderAmount:
		return r.OrderAmount
	case FieldPaidAmount:
		return r.PaidAmount
	case FieldInstallFee:
		return r.InstallFee
	default:
		return 0
	}
}

// DateKey 订单日（按日去重）
func (r *Record) DateKey() string {
	return r.OrderDate.Format("2006-01-02")
}

// MonthContext 当月上下文：由数据中最新订单日推导，一次运行内共享
type MonthContext struct {
	Year              int       `json:"year"`
	Month             int       `json:"month"`
	LatestDate        time.Time `json:"latestDate"`
	LastObservedDay   int       `json:"lastObservedDay"`
	DaysInMonth       int       `json:"daysInMonth"`
	RemainingWeekdays int       `json:"remainingWeekdays"`
	RemainingWeekends int       `json:"remainingWeekends"`
}

// Remaining 返回指定日期类型的剩余天数
func (m MonthContext) Remaining(dt DayType) int {
	if dt == Weekend {
		return m.RemainingWeekends
	}
	return m.RemainingWeekdays
}

// RawTable 上传表格解码后的原始数据
type RawTable struct {
	SheetName string     `json:"sheetName"`
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
}
