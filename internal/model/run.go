package model

import "time"

// RunStatus 运行状态
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// EdgeDetail 引用关系明细（用合同编号与名称展示）
type EdgeDetail struct {
	Supplier string    `json:"supplier" yaml:"supplier"`
	FromID   string    `json:"fromId" yaml:"fromId"`
	FromName string    `json:"fromName" yaml:"fromName"`
	ToID     string    `json:"toId" yaml:"toId"`
	ToName   string    `json:"toName" yaml:"toName"`
	Token    string    `json:"token" yaml:"token"`
	Match    MatchKind `json:"match" yaml:"match"`
}

// AmbiguityDetail 歧义匹配明细
type AmbiguityDetail struct {
	Supplier     string   `json:"supplier" yaml:"supplier"`
	ContractID   string   `json:"contractId" yaml:"contractId"`
	FileName     string   `json:"fileName" yaml:"fileName"`
	Token        string   `json:"token" yaml:"token"`
	CandidateIDs []string `json:"candidateIds" yaml:"candidateIds"`
}

// RunReport 一次分类运行的汇总报告
type RunReport struct {
	RunID      string `json:"runId" yaml:"runId"`
	Filename   string `json:"filename" yaml:"filename"`
	SheetName  string `json:"sheetName,omitempty" yaml:"sheetName,omitempty"`
	SortKey    string `json:"sortKey" yaml:"sortKey"`
	OutputPath string `json:"outputPath,omitempty" yaml:"outputPath,omitempty"`

	TotalRecords int                    `json:"totalRecords" yaml:"totalRecords"`
	TotalGroups  int                    `json:"totalGroups" yaml:"totalGroups"`
	SkippedRows  int                    `json:"skippedRows" yaml:"skippedRows"`
	LabelCounts  map[HierarchyLabel]int `json:"labelCounts" yaml:"labelCounts"`
	Edges        int                    `json:"edges" yaml:"edges"`

	EdgeDetails []EdgeDetail      `json:"edgeDetails,omitempty" yaml:"edgeDetails,omitempty"`
	Ambiguities []AmbiguityDetail `json:"ambiguities,omitempty" yaml:"ambiguities,omitempty"`
	Warnings    []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	StartedAt   time.Time `json:"startedAt" yaml:"startedAt"`
	CompletedAt time.Time `json:"completedAt" yaml:"completedAt"`
	DurationMs  int64     `json:"durationMs" yaml:"durationMs"`
}

// RunRecord 运行历史记录（可选的审计日志）
type RunRecord struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	SheetName    string     `json:"sheetName"`
	SortKey      string     `json:"sortKey"`
	TotalRecords int        `json:"totalRecords"`
	TotalGroups  int        `json:"totalGroups"`
	Parents      int        `json:"parents"`
	Children     int        `json:"children"`
	ChildParents int        `json:"childParents"`
	SubChildren  int        `json:"subChildren"`
	Edges        int        `json:"edges"`
	Ambiguities  int        `json:"ambiguities"`
	Warnings     int        `json:"warnings"`
	Status       RunStatus  `json:"status"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}
