package model

// 输出工作表名
const (
	SheetAnalysis   = "Analysis_Results"
	SheetPrediction = "Prediction_Analysis"
)

// EntryKind 文档条目类型
type EntryKind int

const (
	EntryTitle EntryKind = iota
	EntryTable
)

// Entry 工作表中的定位条目（Row 从 0 开始）
type Entry struct {
	Kind      EntryKind `json:"kind"`
	Row       int       `json:"row"`
	Text      string    `json:"text,omitempty"`
	Table     *Table    `json:"table,omitempty"`
	WithLabel bool      `json:"withLabel"` // 是否写出首列标签（分组键 / 行索引）
}

// DocumentSheet 文档中的一个工作表
type DocumentSheet struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Document 待写出的报表文档
type Document struct {
	Sheets []*DocumentSheet `json:"sheets"`
}

// Sheet 按名称获取工作表
func (d *Document) Sheet(name string) *DocumentSheet {
	for _, s := range d.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}
