package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"contracthierarchy/internal/hierarchy"
	"contracthierarchy/internal/parser"
)

// 环境变量覆盖
const (
	EnvPort      = "CONTRACT_HIERARCHY_PORT"
	EnvHistoryDB = "CONTRACT_HIERARCHY_HISTORY_DB"
)

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Classifier ClassifierConfig `toml:"classifier"`
	Columns    ColumnsConfig    `toml:"columns"`
	History    HistoryConfig    `toml:"history"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// ClassifierConfig 分类参数
type ClassifierConfig struct {
	RootTypeMarkers       []string `toml:"root_type_markers"`
	MinFragmentLength     int      `toml:"min_fragment_length"`
	MaxNumericTokenDigits int      `toml:"max_numeric_token_digits"`
	SortKey               string   `toml:"sort_key"`
}

// ColumnsConfig 追加的列名别名
type ColumnsConfig struct {
	FileName          []string `toml:"file_name"`
	ContractID        []string `toml:"contract_id"`
	ContractType      []string `toml:"contract_type"`
	Supplier          []string `toml:"supplier"`
	LinkText          []string `toml:"link_text"`
	AribaSupplierName []string `toml:"ariba_supplier_name"`
	WorkspaceID       []string `toml:"workspace_id"`
	EffectiveDate     []string `toml:"effective_date"`
}

// HistoryConfig 运行历史（SQLite），默认关闭
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string // 实际读取的配置文件；未读取时为空
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	defaults := hierarchy.DefaultOptions()
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Classifier: ClassifierConfig{
			RootTypeMarkers:       defaults.RootTypeMarkers,
			MinFragmentLength:     defaults.MinFragmentLength,
			MaxNumericTokenDigits: defaults.MaxNumericTokenDigits,
			SortKey:               string(defaults.SortKey),
		},
		History: HistoryConfig{
			Enabled: false,
			DBPath:  filepath.Join("data", "history.db"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 加载配置并返回元信息。
// path 为空时读取可执行文件同目录下的 config.toml，文件不存在则使用默认配置；
// 显式指定的 path 必须存在。
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.Path = path
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, fmt.Errorf("read config: %w", err)
	}

	// 环境变量覆盖（用于部署 / 本地运行）
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, info, fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDB)); v != "" {
		config.History.DBPath = v
		config.History.Enabled = true
	}

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if _, err := c.ClassifierOptions(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if c.History.Enabled && strings.TrimSpace(c.History.DBPath) == "" {
		return fmt.Errorf("history.db_path must be set when history is enabled")
	}
	return nil
}

// ClassifierOptions 转换为分类引擎参数
func (c *AppConfig) ClassifierOptions() (hierarchy.Options, error) {
	key, err := hierarchy.ParseSortKey(c.Classifier.SortKey)
	if err != nil {
		return hierarchy.Options{}, err
	}
	markers := make([]string, 0, len(c.Classifier.RootTypeMarkers))
	for _, m := range c.Classifier.RootTypeMarkers {
		if m = strings.TrimSpace(m); m != "" {
			markers = append(markers, m)
		}
	}
	opts := hierarchy.Options{
		RootTypeMarkers:       markers,
		MinFragmentLength:     c.Classifier.MinFragmentLength,
		MaxNumericTokenDigits: c.Classifier.MaxNumericTokenDigits,
		SortKey:               key,
	}
	if err := opts.Validate(); err != nil {
		return hierarchy.Options{}, err
	}
	return opts, nil
}

// ColumnAliases 列名别名（追加到默认别名之后）
func (c *AppConfig) ColumnAliases() map[parser.Field][]string {
	out := map[parser.Field][]string{}
	add := func(f parser.Field, aliases []string) {
		if len(aliases) > 0 {
			out[f] = aliases
		}
	}
	add(parser.FieldFileName, c.Columns.FileName)
	add(parser.FieldContractID, c.Columns.ContractID)
	add(parser.FieldContractType, c.Columns.ContractType)
	add(parser.FieldSupplier, c.Columns.Supplier)
	add(parser.FieldLinkText, c.Columns.LinkText)
	add(parser.FieldAribaSupplierName, c.Columns.AribaSupplierName)
	add(parser.FieldWorkspaceID, c.Columns.WorkspaceID)
	add(parser.FieldEffectiveDate, c.Columns.EffectiveDate)
	return out
}

// HistoryDBPath 运行历史数据库路径；相对路径以可执行文件目录为基准
func (c *AppConfig) HistoryDBPath() string {
	p := c.History.DBPath
	if filepath.IsAbs(p) {
		return p
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, p)
}
