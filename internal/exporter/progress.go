package exporter

// Stage 导出阶段
type Stage string

const (
	StageHierarchy  Stage = "writing hierarchy sheet"
	StageReferences Stage = "writing references sheet"
	StageAmbiguous  Stage = "writing ambiguous sheet"
	StageDone       Stage = "workbook ready"
)

// stagePercent 各阶段开始时的进度
var stagePercent = map[Stage]int{
	StageHierarchy:  10,
	StageReferences: 60,
	StageAmbiguous:  85,
	StageDone:       100,
}

// ProgressEvent 导出进度事件（用于 UI 展示）
type ProgressEvent struct {
	Percent int
	Stage   Stage
}

func (e *Exporter) enter(stage Stage) {
	if e.opts.Progress == nil {
		return
	}
	e.opts.Progress(ProgressEvent{Percent: stagePercent[stage], Stage: stage})
}
