package exporter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"contracthierarchy/internal/hierarchy"
	"contracthierarchy/internal/model"
)

const (
	SheetHierarchy  = "Hierarchy"
	SheetReferences = "References"
	SheetAmbiguous  = "Ambiguous"
)

// 输出表固定列；Ariba Supplier Name / Workspace ID 仅在输入带有时输出
const (
	colFileName          = "FileName"
	colContractID        = "ContractID"
	colParentChild       = "Parent_Child"
	colContractType      = "ContractType"
	colPartyName         = "PartyName"
	colAribaSupplierName = "Ariba Supplier Name"
	colWorkspaceID       = "Workspace ID"
)

// Exporter 层级结果导出器
type Exporter struct {
	opts ExportOptions
}

// ExportOptions 导出选项
type ExportOptions struct {
	IncludeAribaSupplierName bool
	IncludeWorkspaceID       bool
	Progress                 func(ProgressEvent)
}

// NewExporter 创建导出器
func NewExporter(opts ExportOptions) *Exporter {
	return &Exporter{opts: opts}
}

// Columns 层级表的列（按输出顺序）
func (e *Exporter) Columns() []string {
	cols := []string{colFileName, colContractID, colParentChild, colContractType, colPartyName}
	if e.opts.IncludeAribaSupplierName {
		cols = append(cols, colAribaSupplierName)
	}
	if e.opts.IncludeWorkspaceID {
		cols = append(cols, colWorkspaceID)
	}
	return cols
}

// Export 生成工作簿。调用方负责 Close。
func (e *Exporter) Export(res *hierarchy.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := e.fill(f, res); err != nil {
		_ = f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// ExportFile 生成工作簿并保存到 path
func (e *Exporter) ExportFile(res *hierarchy.Result, path string) error {
	f, err := e.Export(res)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (e *Exporter) fill(f *excelize.File, res *hierarchy.Result) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#8EA9DB", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetHierarchy); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	e.enter(StageHierarchy)
	if err := e.writeHierarchy(f, res, headerStyle); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", SheetHierarchy, err)
	}

	e.enter(StageReferences)
	if err := writeReferences(f, res.EdgeDetails(), headerStyle); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", SheetReferences, err)
	}

	if amb := res.AmbiguityDetails(); len(amb) > 0 {
		e.enter(StageAmbiguous)
		if err := writeAmbiguities(f, amb, headerStyle); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", SheetAmbiguous, err)
		}
	}

	e.enter(StageDone)
	return nil
}

func (e *Exporter) writeHierarchy(f *excelize.File, res *hierarchy.Result, headerStyle int) error {
	cols := e.Columns()
	if err := writeHeader(f, SheetHierarchy, cols, headerStyle); err != nil {
		return err
	}

	row := 2
	for out := range res.Emit().All() {
		values := []any{out.FileName, out.ContractID, string(out.ParentChild), out.ContractType, out.PartyName}
		if e.opts.IncludeAribaSupplierName {
			values = append(values, out.AribaSupplierName)
		}
		if e.opts.IncludeWorkspaceID {
			values = append(values, out.WorkspaceID)
		}
		if err := writeRow(f, SheetHierarchy, row, values); err != nil {
			return err
		}
		row++
	}

	widths := map[string]float64{
		colFileName:          48,
		colContractID:        16,
		colParentChild:       14,
		colContractType:      28,
		colPartyName:         36,
		colAribaSupplierName: 36,
		colWorkspaceID:       18,
	}
	for i, c := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetHierarchy, name, name, widths[c]); err != nil {
			return err
		}
	}
	return nil
}

func writeReferences(f *excelize.File, edges []model.EdgeDetail, headerStyle int) error {
	if _, err := f.NewSheet(SheetReferences); err != nil {
		return err
	}
	cols := []string{"Supplier", "From ID", "From Name", "To ID", "To Name", "Token", "Match"}
	if err := writeHeader(f, SheetReferences, cols, headerStyle); err != nil {
		return err
	}
	for i, e := range edges {
		values := []any{e.Supplier, e.FromID, e.FromName, e.ToID, e.ToName, e.Token, string(e.Match)}
		if err := writeRow(f, SheetReferences, i+2, values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetReferences, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetReferences, "C", "C", 40); err != nil {
		return err
	}
	return f.SetColWidth(SheetReferences, "E", "F", 40)
}

func writeAmbiguities(f *excelize.File, list []model.AmbiguityDetail, headerStyle int) error {
	if _, err := f.NewSheet(SheetAmbiguous); err != nil {
		return err
	}
	cols := []string{"Supplier", "Contract ID", "FileName", "Token", "Candidate IDs"}
	if err := writeHeader(f, SheetAmbiguous, cols, headerStyle); err != nil {
		return err
	}
	for i, a := range list {
		values := []any{a.Supplier, a.ContractID, a.FileName, a.Token, strings.Join(a.CandidateIDs, ", ")}
		if err := writeRow(f, SheetAmbiguous, i+2, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetAmbiguous, "A", "E", 32)
}

// writeHeader 写表头：加粗底色、冻结首行
func writeHeader(f *excelize.File, sheet string, cols []string, style int) error {
	values := make([]any, len(cols))
	for i, c := range cols {
		values[i] = c
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
