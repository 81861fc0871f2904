package report

// ProgressEvent 运行进度事件
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

// 进度阶段
const (
	StageNormalize  = "normalize"
	StageHistorical = "historical"
	StageForecast   = "forecast"
	StageDone       = "done"
)

func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	progress(ProgressEvent{
		Percent: percent,
		Stage:   stage,
	})
}
