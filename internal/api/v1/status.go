package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contracthierarchy/internal/model"
	"contracthierarchy/internal/parser"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	UptimeSeconds  int64  `json:"uptimeSeconds"`
	HistoryEnabled bool   `json:"historyEnabled"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:         "ok",
		Version:        h.version,
		UptimeSeconds:  int64(time.Since(h.startedAt).Seconds()),
		HistoryEnabled: h.history != nil,
	})
}

// ConfigResponse 生效的分类参数
type ConfigResponse struct {
	RootTypeMarkers       []string            `json:"rootTypeMarkers"`
	MinFragmentLength     int                 `json:"minFragmentLength"`
	MaxNumericTokenDigits int                 `json:"maxNumericTokenDigits"`
	SortKey               string              `json:"sortKey"`
	ColumnAliases         map[string][]string `json:"columnAliases"`
	RequiredColumns       []string            `json:"requiredColumns"`
	MaxUploadBytes        int64               `json:"maxUploadBytes"`
	AcceptedExtensions    []string            `json:"acceptedExtensions"`
}

// GetConfig 获取生效的分类参数（只读）
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	aliases := make(map[string][]string)
	for _, f := range parser.AllFields() {
		list := append([]string{}, parser.DefaultAliases[f]...)
		list = append(list, h.aliases[f]...)
		aliases[string(f)] = list
	}
	required := make([]string, 0, len(parser.RequiredFields))
	for _, f := range parser.RequiredFields {
		required = append(required, f.DisplayName())
	}

	c.JSON(http.StatusOK, ConfigResponse{
		RootTypeMarkers:       h.classifier.RootTypeMarkers,
		MinFragmentLength:     h.classifier.MinFragmentLength,
		MaxNumericTokenDigits: h.classifier.MaxNumericTokenDigits,
		SortKey:               string(h.classifier.SortKey),
		ColumnAliases:         aliases,
		RequiredColumns:       required,
		MaxUploadBytes:        MaxUploadBytes,
		AcceptedExtensions:    []string{".xlsx", ".xlsm", ".csv"},
	})
}

// ListRuns 运行历史（未启用时返回空列表）
// GET /api/runs?limit=N
func (h *Handler) ListRuns(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 limit", "code": "input"})
			return
		}
		limit = n
	}

	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "items": []*model.RunRecord{}})
		return
	}
	runs, err := h.history.ListRuns(limit)
	if err != nil {
		h.logger.Error("list runs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取运行历史失败"})
		return
	}
	if runs == nil {
		runs = []*model.RunRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "items": runs})
}
