package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contracthierarchy/internal/exporter"
	"contracthierarchy/internal/hierarchy"
	"contracthierarchy/internal/model"
	"contracthierarchy/internal/parser"
)

// HistoryStore 运行历史（可选）
type HistoryStore interface {
	CreateRun(id, filename, sheet, sortKey string, startedAt time.Time) error
	CompleteRun(report *model.RunReport) error
	FailRun(id, message string, completedAt time.Time) error
}

// Config 协调器配置
type Config struct {
	Classifier hierarchy.Options
	Aliases    map[parser.Field][]string
	History    HistoryStore // 为 nil 时不记录历史
	Logger     *zap.Logger
}

// Coordinator 分类运行协调器：解析 -> 分类 -> 导出
type Coordinator struct {
	opts    hierarchy.Options
	aliases map[parser.Field][]string
	history HistoryStore
	logger  *zap.Logger

	classify func(opts hierarchy.Options, records []*model.ContractRecord, logger *zap.Logger) *hierarchy.Result
}

func classifyRecords(opts hierarchy.Options, records []*model.ContractRecord, logger *zap.Logger) *hierarchy.Result {
	return hierarchy.NewEngine(opts, logger).Classify(records)
}

// NewCoordinator 创建协调器
func NewCoordinator(cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		opts:     cfg.Classifier,
		aliases:  cfg.Aliases,
		history:  cfg.History,
		logger:   logger,
		classify: classifyRecords,
	}
}

// RunOptions 单次运行参数
type RunOptions struct {
	FilePath   string
	Filename   string // 报告中展示的文件名；为空时取 FilePath 的文件名
	Sheet      string
	SortKey    string // 为空时使用配置
	OutputPath string // 为空时不写工作簿
	ReportPath string // 为空时不写报告
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/parsed/warning/classified/export/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// 事件类型
const (
	EventStart      = "start"
	EventParsed     = "parsed"
	EventWarning    = "warning"
	EventClassified = "classified"
	EventExport     = "export"
	EventDone       = "done"
	EventError      = "error"
)

// ErrorData error 事件附带的数据
type ErrorData struct {
	RunID       string              `json:"runId,omitempty"`
	Code        Code                `json:"code"`
	Error       string              `json:"error"`
	Missing     []string            `json:"missing,omitempty"`
	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

// Outcome 一次成功运行的产物
type Outcome struct {
	Report *model.RunReport
	Parse  *parser.ParseResult
	Result *hierarchy.Result
	Rows   []model.OutputRow
}

// Run 异步执行，返回进度通道。done 与 error 事件保证送达（调用方需读完通道），其余事件在通道满时丢弃。
func (c *Coordinator) Run(opts RunOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		runID := uuid.NewString()
		outcome, err := c.execute(runID, opts, func(ev ProgressEvent) {
			c.sendProgress(progressChan, ev)
		})
		if err != nil {
			progressChan <- ProgressEvent{
				Type:      EventError,
				Message:   err.Error(),
				Data:      NewErrorData(runID, err),
				Timestamp: time.Now(),
			}
			return
		}
		progressChan <- ProgressEvent{
			Type:      EventDone,
			Message:   "分类完成",
			Data:      outcome.Report,
			Timestamp: time.Now(),
		}
	}()

	return progressChan
}

// Execute 同步执行
func (c *Coordinator) Execute(opts RunOptions) (*Outcome, error) {
	return c.execute(uuid.NewString(), opts, nil)
}

// NewErrorData 构造错误事件数据；SchemaError 附带缺失列与建议
func NewErrorData(runID string, err error) ErrorData {
	data := ErrorData{RunID: runID, Code: ErrorCode(err), Error: err.Error()}
	var se *parser.SchemaError
	if errors.As(err, &se) {
		data.Missing = se.MissingNames()
		if len(se.Suggestions) > 0 {
			data.Suggestions = make(map[string][]string, len(se.Suggestions))
			for f, s := range se.Suggestions {
				data.Suggestions[f.DisplayName()] = s
			}
		}
	}
	return data
}

func (c *Coordinator) execute(runID string, opts RunOptions, emit func(ProgressEvent)) (outcome *Outcome, err error) {
	startTime := time.Now()
	filename := opts.Filename
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}
	logger := c.logger.With(zap.String("run_id", runID), zap.String("file", filename))

	sortKey := string(c.opts.SortKey)
	if opts.SortKey != "" {
		sortKey = opts.SortKey
	}
	if c.history != nil {
		if herr := c.history.CreateRun(runID, filename, opts.Sheet, sortKey, startTime); herr != nil {
			logger.Warn("record run start failed", zap.Error(herr))
		}
	}

	// 工作簿先写到输出目录下的临时文件，全部成功后再改名到目标路径；
	// 失败时只清理本次创建的临时文件，不动目标路径上已有的文件
	var tmpOutput string
	defer func() {
		if r := recover(); r != nil {
			logger.Error("run panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrUnhandled, r)
			outcome = nil
		}
		if tmpOutput != "" {
			_ = os.Remove(tmpOutput)
		}
		if err != nil {
			logger.Warn("run failed", zap.String("code", string(ErrorCode(err))), zap.Error(err))
			if c.history != nil {
				if herr := c.history.FailRun(runID, err.Error(), time.Now()); herr != nil {
					logger.Warn("record run failure failed", zap.Error(herr))
				}
			}
		}
	}()

	classifierOpts := c.opts
	if opts.SortKey != "" {
		key, perr := hierarchy.ParseSortKey(opts.SortKey)
		if perr != nil {
			return nil, perr
		}
		classifierOpts.SortKey = key
	}
	for _, out := range []string{opts.OutputPath, opts.ReportPath} {
		if out != "" && SamePath(opts.FilePath, out) {
			return nil, fmt.Errorf("%w: %s", ErrOutputIsInput, out)
		}
	}

	send := func(typ, msg string, data interface{}) {
		if emit != nil {
			emit(ProgressEvent{Type: typ, Message: msg, Data: data, Timestamp: time.Now()})
		}
	}

	send(EventStart, "开始分类", map[string]string{"runId": runID, "filename": filename})

	p := parser.NewContractParser(parser.Options{Sheet: opts.Sheet, Aliases: c.aliases})
	parsed, err := p.ParseFile(opts.FilePath)
	if err != nil {
		return nil, err
	}
	send(EventParsed, fmt.Sprintf("读取 %d 条合同记录", len(parsed.Records)), map[string]interface{}{
		"sheet":       parsed.SheetName,
		"headerRow":   parsed.HeaderRow + 1,
		"records":     len(parsed.Records),
		"skippedRows": parsed.SkippedRows,
	})
	for _, w := range parsed.Warnings {
		logger.Warn("cell parse warning", zap.Int("row", w.Row), zap.String("column", w.Column), zap.String("value", w.Value))
		send(EventWarning, w.Error(), w)
	}

	result := c.classify(classifierOpts, parsed.Records, logger)
	counts := result.LabelCounts()
	send(EventClassified, fmt.Sprintf("%d 个供应商分组，%d 条引用", len(result.Groups), len(result.Edges())), counts)

	if opts.OutputPath != "" {
		ex := exporter.NewExporter(exporter.ExportOptions{
			IncludeAribaSupplierName: parsed.HasAribaSupplierName,
			IncludeWorkspaceID:       parsed.HasWorkspaceID,
			Progress: func(ev exporter.ProgressEvent) {
				send(EventExport, string(ev.Stage), ev.Percent)
			},
		})
		tmp, terr := tempOutputPath(opts.OutputPath)
		if terr != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutput, terr)
		}
		tmpOutput = tmp
		if xerr := ex.ExportFile(result, tmpOutput); xerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutput, xerr)
		}
	}

	completed := time.Now()
	warnings := make([]string, 0, len(parsed.Warnings))
	for _, w := range parsed.Warnings {
		warnings = append(warnings, w.Error())
	}
	report := &model.RunReport{
		RunID:        runID,
		Filename:     filename,
		SheetName:    parsed.SheetName,
		SortKey:      string(classifierOpts.SortKey),
		OutputPath:   opts.OutputPath,
		TotalRecords: result.TotalRecords(),
		TotalGroups:  len(result.Groups),
		SkippedRows:  parsed.SkippedRows,
		LabelCounts:  counts,
		Edges:        len(result.Edges()),
		EdgeDetails:  result.EdgeDetails(),
		Ambiguities:  result.AmbiguityDetails(),
		Warnings:     warnings,
		StartedAt:    startTime,
		CompletedAt:  completed,
		DurationMs:   completed.Sub(startTime).Milliseconds(),
	}

	if opts.ReportPath != "" {
		if rerr := exporter.WriteReportFile(opts.ReportPath, report); rerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutput, rerr)
		}
	}
	if tmpOutput != "" {
		if rerr := os.Rename(tmpOutput, opts.OutputPath); rerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutput, rerr)
		}
		tmpOutput = ""
	}

	if c.history != nil {
		if herr := c.history.CompleteRun(report); herr != nil {
			logger.Warn("record run completion failed", zap.Error(herr))
		}
	}
	logger.Info("run completed",
		zap.Int("records", report.TotalRecords),
		zap.Int("groups", report.TotalGroups),
		zap.Int("edges", report.Edges),
		zap.Int("ambiguities", len(report.Ambiguities)),
		zap.Int64("duration_ms", report.DurationMs))

	return &Outcome{
		Report: report,
		Parse:  parsed,
		Result: result,
		Rows:   result.Rows(),
	}, nil
}

// tempOutputPath 在目标目录下创建同扩展名的临时文件（excelize 按扩展名决定保存格式）
func tempOutputPath(target string) (string, error) {
	ext := filepath.Ext(target)
	base := strings.TrimSuffix(filepath.Base(target), ext)
	if ext == "" {
		ext = ".xlsx"
	}
	f, err := os.CreateTemp(filepath.Dir(target), "."+base+"-*"+ext)
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

// SamePath 两个路径是否指向同一文件（均存在时按 inode 比较，否则比较绝对路径）
func SamePath(a, b string) bool {
	if ai, err := os.Stat(a); err == nil {
		if bi, err := os.Stat(b); err == nil {
			return os.SameFile(ai, bi)
		}
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// sendProgress 非阻塞发送，通道已满时丢弃
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
