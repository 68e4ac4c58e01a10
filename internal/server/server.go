package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "contracthierarchy/internal/api/v1"
	"contracthierarchy/internal/config"
	"contracthierarchy/internal/importer"
	"contracthierarchy/internal/store"
)

// Options 服务器依赖
type Options struct {
	Config  *config.AppConfig
	History *store.Store // 为 nil 时运行历史关闭
	Logger  *zap.Logger
	Version string
}

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// NewServer 创建服务器
func NewServer(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	classifier, err := cfg.ClassifierOptions()
	if err != nil {
		return nil, fmt.Errorf("classifier config: %w", err)
	}
	aliases := cfg.ColumnAliases()

	coordCfg := importer.Config{
		Classifier: classifier,
		Aliases:    aliases,
		Logger:     logger.Named("importer"),
	}
	deps := v1.Deps{
		Classifier: classifier,
		Aliases:    aliases,
		Logger:     logger.Named("api"),
		Version:    opts.Version,
	}
	// 接口字段只在启用时赋值，避免出现非 nil 接口包着 nil 指针
	if opts.History != nil {
		coordCfg.History = opts.History
		deps.History = opts.History
	}
	deps.Coordinator = importer.NewCoordinator(coordCfg)

	s := &Server{
		router: gin.New(),
		logger: logger,
	}
	s.setupRoutes(v1.NewHandler(deps))
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(h *v1.Handler) {
	s.router.Use(requestLogger(s.logger.Named("http")), gin.Recovery())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// /api 与 /api/v1 挂同一组路由
	h.RegisterRoutes(s.router.Group("/api"))
	h.RegisterRoutes(s.router.Group("/api/v1"))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// requestLogger 访问日志
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Handler 返回路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，直到 Shutdown 被调用
func (s *Server) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
