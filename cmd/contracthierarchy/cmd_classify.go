package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contracthierarchy/internal/importer"
	"contracthierarchy/internal/model"
	"contracthierarchy/internal/parser"
	"contracthierarchy/internal/store"
)

var (
	classifyOutput  string
	classifyReport  string
	classifySheet   string
	classifySortKey string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <input>",
	Short: "识别合同层级并导出 Excel",
	Long: `读取合同清单并输出带 Parent / Child/Parent / Child / Sub Child 标签的工作簿。

示例:
  contracthierarchy classify contracts.xlsx
  contracthierarchy classify contracts.csv -o out.xlsx --report run.yaml --sort-key effective_date`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyOutput, "output", "o", "", "输出文件（默认 <input>_hierarchy.xlsx）")
	classifyCmd.Flags().StringVar(&classifyReport, "report", "", "运行报告输出路径（.json / .yaml）")
	classifyCmd.Flags().StringVar(&classifySheet, "sheet", "", "指定工作表（默认自动识别）")
	classifyCmd.Flags().StringVar(&classifySortKey, "sort-key", "", "排序口径: file, effective_date（默认取配置）")
}

func runClassify(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := classifyOutput
	if output == "" {
		output = defaultOutputPath(input)
	}
	if importer.SamePath(input, output) {
		return fmt.Errorf("输出文件不能覆盖输入文件: %s", output)
	}

	classifier, err := cfg.ClassifierOptions()
	if err != nil {
		return err
	}
	coordCfg := importer.Config{
		Classifier: classifier,
		Aliases:    cfg.ColumnAliases(),
		Logger:     logger.Named("importer"),
	}
	if cfg.History.Enabled {
		st, err := store.New(cfg.HistoryDBPath())
		if err != nil {
			return fmt.Errorf("打开运行历史失败: %w", err)
		}
		defer st.Close()
		coordCfg.History = st
	}

	outcome, err := importer.NewCoordinator(coordCfg).Execute(importer.RunOptions{
		FilePath:   input,
		Filename:   filepath.Base(input),
		Sheet:      classifySheet,
		SortKey:    classifySortKey,
		OutputPath: output,
		ReportPath: classifyReport,
	})
	if err != nil {
		printSchemaHint(cmd.ErrOrStderr(), err)
		logger.Debug("classify failed", zap.String("code", string(importer.ErrorCode(err))), zap.Error(err))
		return err
	}

	printSummary(cmd.OutOrStdout(), outcome.Report)
	return nil
}

func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_hierarchy.xlsx"
}

// printSchemaHint 缺列时列出可能的候选表头
func printSchemaHint(w io.Writer, err error) {
	var se *parser.SchemaError
	if !errors.As(err, &se) {
		return
	}
	fmt.Fprintf(w, "工作表 %q 缺少必需列:\n", se.SheetName)
	for _, f := range se.Missing {
		line := "  - " + f.DisplayName()
		if s := se.Suggestions[f]; len(s) > 0 {
			line += fmt.Sprintf("（可能是: %s）", strings.Join(s, ", "))
		}
		fmt.Fprintln(w, line)
	}
}

func printSummary(w io.Writer, report *model.RunReport) {
	fmt.Fprintf(w, "已输出: %s\n", report.OutputPath)
	fmt.Fprintf(w, "工作表: %s  合同: %d  供应商分组: %d  跳过空行: %d\n",
		report.SheetName, report.TotalRecords, report.TotalGroups, report.SkippedRows)
	for _, label := range model.AllLabels {
		fmt.Fprintf(w, "  %-13s %d\n", label, report.LabelCounts[label])
	}
	if n := len(report.Ambiguities); n > 0 {
		fmt.Fprintf(w, "歧义引用: %d（详见 Ambiguous 工作表）\n", n)
	}
	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "警告: %d\n", len(report.Warnings))
		for _, msg := range report.Warnings {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
}
