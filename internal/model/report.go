package model

// HistoricalBlock 历史分析块
type HistoricalBlock struct {
	Title string `json:"title"`
	Table *Table `json:"table"`
}

// DayProjection 单一日期类型的预测结果
type DayProjection struct {
	DayType       DayType `json:"dayType"`
	DaysObserved  int     `json:"daysObserved"`
	RemainingDays int     `json:"remainingDays"`
	Table         *Table  `json:"table,omitempty"` // daysObserved 为 0 时为 nil
}

// Present 是否有预测表
func (p DayProjection) Present() bool {
	return !p.Table.IsEmpty()
}

// ForecastBlock 预测块：平日表、周末表、合并行
type ForecastBlock struct {
	Title    string        `json:"title"`
	Weekday  DayProjection `json:"weekday"`
	Weekend  DayProjection `json:"weekend"`
	Combined *Table        `json:"combined,omitempty"`
}

// HasData 平日或周末至少一侧有数据
func (b *ForecastBlock) HasData() bool {
	return b.Weekday.Present() || b.Weekend.Present()
}

// Report 一次运行的完整分析结果
type Report struct {
	RunID      string             `json:"runId"`
	Program    string             `json:"program"`
	Month      MonthContext       `json:"month"`
	Stats      NormalizeStats     `json:"stats"`
	Historical []*HistoricalBlock `json:"historical"`
	Forecasts  []*ForecastBlock   `json:"forecasts"`
}

// NormalizeStats 清洗统计
type NormalizeStats struct {
	TotalRows   int `json:"totalRows"`
	KeptRows    int `json:"keptRows"`
	DroppedRows int `json:"droppedRows"`
}
