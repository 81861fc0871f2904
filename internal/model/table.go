package model

// TotalLabel 合计行标签
const TotalLabel = "합계"

// CombinedLabel 平日+周末合并行标签
const CombinedLabel = "평일+주말 총합계"

// ColumnKind 指标列类型
type ColumnKind int

const (
	KindQuantity ColumnKind = iota // 数量
	KindCurrency                   // 金额：做增值税还原并取整到千
	KindCount                      // 去重计数
	KindFee                        // 固定单价折算的金额：取整到千，不做增值税还原
)

// ColumnFormat 输出格式
type ColumnFormat int

const (
	FormatNumber       ColumnFormat = iota // 数值单元格
	FormatCurrencyText                     // 千分位文本（仅在写出时格式化）
)

// Column 指标列定义
type Column struct {
	Name   string       `json:"name"`
	Kind   ColumnKind   `json:"kind"`
	Format ColumnFormat `json:"format"`
}

// IsCurrency 是否金额列（含固定单价折算）
func (c Column) IsCurrency() bool {
	return c.Kind == KindCurrency || c.Kind == KindFee
}

// IncludesVAT 源数据为含税金额，需要还原
func (c Column) IncludesVAT() bool {
	return c.Kind == KindCurrency
}

// TableKind 表格形态
type TableKind int

const (
	TableGrouped TableKind = iota // 分组表：每组一行 + 合计行
	TableScalar                   // 单行汇总
)

// Row 表格行，Values 与 Columns 一一对应
type Row struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Table 统一的结果表（分组 / 单行两种形态）
type Table struct {
	Kind    TableKind `json:"kind"`
	KeyName string    `json:"keyName,omitempty"` // 分组列名
	Columns []Column  `json:"columns"`
	Rows    []Row     `json:"rows"`
	Total   *Row      `json:"total,omitempty"`
}

// NewTable 创建空表
func NewTable(kind TableKind, keyName string, columns []Column) *Table {
	return &Table{
		Kind:    kind,
		KeyName: keyName,
		Columns: append([]Column(nil), columns...),
	}
}

// IsEmpty 无数据行
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// RowCount 写出时的数据行数（含合计行）
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	n := len(t.Rows)
	if t.Total != nil {
		n++
	}
	return n
}

// AllRows 数据行 + 合计行
func (t *Table) AllRows() []Row {
	if t == nil {
		return nil
	}
	rows := make([]Row, 0, t.RowCount())
	rows = append(rows, t.Rows...)
	if t.Total != nil {
		rows = append(rows, *t.Total)
	}
	return rows
}

// ColumnIndex 按列名查找，找不到返回 -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// FindRow 按标签查找数据行
func (t *Table) FindRow(label string) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	for _, r := range t.Rows {
		if r.Label == label {
			return r, true
		}
	}
	return Row{}, false
}

// Value 按列名取值，缺列视为 0
func (t *Table) Value(row Row, column string) float64 {
	idx := t.ColumnIndex(column)
	if idx < 0 || idx >= len(row.Values) {
		return 0
	}
	return row.Values[idx]
}

// Summary 表格的汇总行：分组表取合计行，单行表取唯一行
func (t *Table) Summary() (Row, bool) {
	if t.IsEmpty() {
		return Row{}, false
	}
	if t.Total != nil {
		return *t.Total, true
	}
	return t.Rows[0], true
}

// SumRows 按列求和生成合计行
func (t *Table) SumRows(label string) Row {
	total := Row{Label: label, Values: make([]float64, len(t.Columns))}
	for _, r := range t.Rows {
		for i := range total.Values {
			if i < len(r.Values) {
				total.Values[i] += r.Values[i]
			}
		}
	}
	return total
}
