package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contracthierarchy/internal/importer"
	"contracthierarchy/internal/model"
	"contracthierarchy/internal/parser"
)

// ClassifyResponse 分类结果
type ClassifyResponse struct {
	RunID       string            `json:"runId"`
	Report      *model.RunReport  `json:"report"`
	Rows        []model.OutputRow `json:"rows"`
	DownloadURL string            `json:"downloadUrl"`
}

// upload 已保存到临时目录的上传文件
type upload struct {
	path     string
	filename string
}

// Classify 上传合同清单并返回分类结果
// POST /api/classify
func (h *Handler) Classify(c *gin.Context) {
	up, ok := h.saveUpload(c)
	if !ok {
		return
	}
	defer os.Remove(up.path)

	outputPath := newExportPath()
	outcome, err := h.coordinator.Execute(importer.RunOptions{
		FilePath:   up.path,
		Filename:   up.filename,
		Sheet:      strings.TrimSpace(c.PostForm("sheet")),
		SortKey:    strings.TrimSpace(c.PostForm("sortKey")),
		OutputPath: outputPath,
	})
	if err != nil {
		data := importer.NewErrorData("", err)
		c.JSON(statusForCode(data.Code), errorBody(data))
		return
	}

	token := h.downloads.put(outputPath, downloadName(up.filename), downloadTTL)
	c.JSON(http.StatusOK, ClassifyResponse{
		RunID:       outcome.Report.RunID,
		Report:      outcome.Report,
		Rows:        outcome.Rows,
		DownloadURL: downloadURL(c, token),
	})
}

// ClassifyStream 上传合同清单并以 SSE 推送进度，完成后提供下载地址
// POST /api/classify/stream
func (h *Handler) ClassifyStream(c *gin.Context) {
	up, ok := h.saveUpload(c)
	if !ok {
		return
	}
	defer os.Remove(up.path)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	outputPath := newExportPath()
	progressChan := h.coordinator.Run(importer.RunOptions{
		FilePath:   up.path,
		Filename:   up.filename,
		Sheet:      strings.TrimSpace(c.PostForm("sheet")),
		SortKey:    strings.TrimSpace(c.PostForm("sortKey")),
		OutputPath: outputPath,
	})

	for event := range progressChan {
		if event.Type == importer.EventDone {
			token := h.downloads.put(outputPath, downloadName(up.filename), downloadTTL)
			event.Data = map[string]any{
				"report":      event.Data,
				"downloadUrl": downloadURL(c, token),
			}
		}

		// SSE 格式: data: {json}\n\n
		eventData, err := json.Marshal(event)
		if err != nil {
			h.logger.Warn("marshal progress event failed", zap.String("type", event.Type), zap.Error(err))
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// DownloadExport 下载分类结果（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}
	defer os.Remove(item.filePath)

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": item.filename}))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(item.filePath)
}

// saveUpload 校验并保存上传文件；失败时已写出响应
func (h *Handler) saveUpload(c *gin.Context) (upload, bool) {
	// 表单其余字段很小，预留 1MB
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "文件过大", "code": "input"})
			return upload{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件", "code": "input"})
		return upload{}, false
	}
	if fh.Size > MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "文件过大", "code": "input"})
		return upload{}, false
	}

	filename := filepath.Base(fh.Filename)
	if !parser.SupportedExtension(filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "仅支持 .xlsx / .xlsm / .csv 文件", "code": "input"})
		return upload{}, false
	}

	// 保存到临时目录（保留扩展名以便识别格式）
	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("contracthierarchy_upload_%d%s", time.Now().UnixNano(), strings.ToLower(filepath.Ext(filename))))
	if err := c.SaveUploadedFile(fh, tempPath); err != nil {
		h.logger.Error("save upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return upload{}, false
	}
	return upload{path: tempPath, filename: filename}, true
}

func newExportPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("contracthierarchy_export_%d_%d.xlsx", time.Now().UnixNano(), os.Getpid()))
}

func downloadName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		base = "contracts"
	}
	return base + "_hierarchy.xlsx"
}

func downloadURL(c *gin.Context, token string) string {
	prefix := "/api"
	if strings.HasPrefix(c.Request.URL.Path, "/api/v1/") {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/export/download/%s", prefix, token)
}

func statusForCode(code importer.Code) int {
	switch code {
	case importer.CodeSchema, importer.CodeInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func errorBody(data importer.ErrorData) gin.H {
	body := gin.H{"error": data.Error, "code": data.Code}
	if len(data.Missing) > 0 {
		body["missing"] = data.Missing
	}
	if len(data.Suggestions) > 0 {
		body["suggestions"] = data.Suggestions
	}
	return body
}
