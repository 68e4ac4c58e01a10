package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"contracthierarchy/internal/model"
)

// ReportFormat 运行报告格式
type ReportFormat string

const (
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
)

// ReportFormatFor 按扩展名选择格式：.yaml/.yml 为 YAML，其余为 JSON
func ReportFormatFor(path string) ReportFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReportYAML
	}
	return ReportJSON
}

// EncodeReport 写出运行报告
func EncodeReport(w io.Writer, format ReportFormat, report *model.RunReport) error {
	switch format {
	case ReportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		return nil
	}
}

// WriteReportFile 将运行报告写到 path
func WriteReportFile(path string, report *model.RunReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := EncodeReport(f, ReportFormatFor(path), report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
