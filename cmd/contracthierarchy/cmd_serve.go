package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contracthierarchy/internal/server"
	"contracthierarchy/internal/store"
)

var (
	servePort int
	serveDev  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	Long: `启动上传分类服务，接口挂载在 /api 与 /api/v1 下。

端口优先级: config.toml / 环境变量 > --port > 默认值。`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "服务端口（仅当配置中未显式指定 port 时生效）")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "开发模式")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort > 0 && !cfgInfo.PortSpecified {
		cfg.Server.Port = servePort
	}
	if serveDev {
		cfg.Server.DevMode = true
	}

	opts := server.Options{Config: cfg, Logger: logger, Version: version}
	if cfg.History.Enabled {
		dbPath := cfg.HistoryDBPath()
		st, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("打开运行历史失败: %w", err)
		}
		defer st.Close()
		opts.History = st
		logger.Info("run history enabled", zap.String("db", dbPath))
	}

	srv, err := server.NewServer(opts)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(addr)
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "服务已启动: http://localhost:%d/api/status\n按 Ctrl+C 停止服务...\n", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	return <-errCh
}
