package parser

import (
	"fmt"
	"strings"
)

// 输入列名
const (
	ColCategory    = "상품타입"
	ColBrand       = "브랜드"
	ColChannel     = "주문채널"
	ColProduct     = "주문상품"
	ColQuantity    = "주문수량"
	ColOrderAmount = "상품주문금액"
	ColPaidAmount  = "실결제금액"
	ColInstallFee  = "장착비"
	ColOrderDate   = "주문일"
	ColOrderID     = "주문번호"
	ColCustomerID  = "고객id"
	ColPattern     = "패턴" // 可选列
)

// RequiredColumns 必填列（按原表顺序）
var RequiredColumns = []string{
	ColCategory, ColBrand, ColChannel, ColProduct, ColQuantity,
	ColOrderAmount, ColPaidAmount, ColInstallFee, ColOrderDate, ColOrderID, ColCustomerID,
}

// SchemaError 缺少必填列
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("입력 파일에 필수 컬럼이 없습니다: %s. 열 이름을 확인해주세요.", strings.Join(e.Missing, ", "))
}

// BrandSplitRule 品牌拆分规则：Brand 等于指定值时按花纹是否包含关键字拆成两个子标签
type BrandSplitRule struct {
	Brand      string `json:"brand"`
	Contains   string `json:"contains"`
	MatchLabel string `json:"matchLabel"`
	OtherLabel string `json:"otherLabel"`
}

// Apply 返回拆分后的品牌；不匹配的品牌原样返回
func (r BrandSplitRule) Apply(brand, pattern string) string {
	if brand != r.Brand {
		return brand
	}
	if r.Contains != "" && strings.Contains(pattern, r.Contains) {
		return r.MatchLabel
	}
	return r.OtherLabel
}
