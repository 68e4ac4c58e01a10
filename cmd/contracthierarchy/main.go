package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contracthierarchy/internal/config"
	"contracthierarchy/internal/logging"
)

// version 由构建时 -ldflags "-X main.version=..." 注入
var version = "dev"

var (
	// 全局参数
	configPath string
	logLevel   string

	cfg     *config.AppConfig
	cfgInfo config.LoadConfigInfo
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "contracthierarchy",
	Short: "合同主/子协议层级识别",
	Long: `读取合同清单（.xlsx / .xlsm / .csv），按供应商分组，
根据合同名称与关联说明推断主协议、子协议与补充协议的层级关系，
输出带层级标签的 Excel 报表。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, cfgInfo, err = config.LoadConfigWithInfo(configPath)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		level := cfg.Log.Level
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		logger, err = logging.New(level, cfg.Log.Development)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认读取可执行文件同目录下的 config.toml）")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "日志级别: debug, info, warn, error")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}
