package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contracthierarchy/internal/hierarchy"
	"contracthierarchy/internal/importer"
	"contracthierarchy/internal/model"
	"contracthierarchy/internal/parser"
)

// MaxUploadBytes 上传文件大小上限
const MaxUploadBytes = 10 << 20

// downloadTTL 导出文件下载链接有效期
const downloadTTL = 10 * time.Minute

// RunLister 运行历史查询
type RunLister interface {
	ListRuns(limit int) ([]*model.RunRecord, error)
}

// Deps 处理器依赖
type Deps struct {
	Coordinator *importer.Coordinator
	Classifier  hierarchy.Options
	Aliases     map[parser.Field][]string
	History     RunLister // 为 nil 时运行历史关闭
	Logger      *zap.Logger
	Version     string
}

// Handler API 处理器
type Handler struct {
	coordinator *importer.Coordinator
	classifier  hierarchy.Options
	aliases     map[parser.Field][]string
	history     RunLister
	logger      *zap.Logger
	version     string
	startedAt   time.Time
	downloads   *exportDownloadStore
}

// NewHandler 创建 API 处理器
func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		coordinator: deps.Coordinator,
		classifier:  deps.Classifier,
		aliases:     deps.Aliases,
		history:     deps.History,
		logger:      logger,
		version:     deps.Version,
		startedAt:   time.Now(),
		downloads:   newExportDownloadStore(),
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	// 生效的分类参数
	router.GET("/config", h.GetConfig)

	// 分类
	router.POST("/classify", h.Classify)
	router.POST("/classify/stream", h.ClassifyStream)

	// 结果下载
	router.GET("/export/download/:token", h.DownloadExport)

	// 运行历史
	router.GET("/runs", h.ListRuns)
}
