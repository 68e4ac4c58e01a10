package parser

import "contracthierarchy/internal/model"

// Field 输入表格中的逻辑字段
type Field string

const (
	FieldFileName          Field = "FileName"
	FieldContractID        Field = "ContractID"
	FieldContractType      Field = "ContractType"
	FieldSupplier          Field = "Supplier"
	FieldLinkText          Field = "LinkText"
	FieldAribaSupplierName Field = "AribaSupplierName"
	FieldWorkspaceID       Field = "WorkspaceID"
	FieldEffectiveDate     Field = "EffectiveDate"
)

// RequiredFields 必填字段（缺失即为 SchemaError）
var RequiredFields = []Field{
	FieldFileName,
	FieldContractID,
	FieldContractType,
	FieldSupplier,
	FieldLinkText,
}

// OptionalFields 可选字段
var OptionalFields = []Field{
	FieldAribaSupplierName,
	FieldWorkspaceID,
	FieldEffectiveDate,
}

// AllFields 全部字段（必填在前）
func AllFields() []Field {
	out := make([]Field, 0, len(RequiredFields)+len(OptionalFields))
	out = append(out, RequiredFields...)
	return append(out, OptionalFields...)
}

// DisplayName 用于错误提示的列名
func (f Field) DisplayName() string {
	switch f {
	case FieldFileName:
		return "Original Name"
	case FieldContractID:
		return "ID"
	case FieldContractType:
		return "Contract Type"
	case FieldSupplier:
		return "Supplier Legal Entity"
	case FieldLinkText:
		return "Supplier Parent Child agreement links"
	case FieldAribaSupplierName:
		return "Ariba Supplier Name"
	case FieldWorkspaceID:
		return "Workspace ID"
	case FieldEffectiveDate:
		return "Effective Date"
	}
	return string(f)
}

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName  string   `json:"sheetName"`
	HeaderRow  int      `json:"headerRow"`  // 表头所在行（从 0 开始）
	Confidence float64  `json:"confidence"` // 置信度 0-1（命中的必填字段比例）
	Headers    []string `json:"headers"`
}

// FieldMapping 字段映射结果
type FieldMapping struct {
	ColumnIndex int    `json:"columnIndex"` // 列索引
	ColumnName  string `json:"columnName"`  // 原始列名
	Field       Field  `json:"field"`
}

// ParseResult 解析结果
type ParseResult struct {
	Filename    string                  `json:"filename"`
	SheetName   string                  `json:"sheetName"`
	HeaderRow   int                     `json:"headerRow"`
	Confidence  float64                 `json:"confidence"`
	Records     []*model.ContractRecord `json:"-"`
	Warnings    []ParseError            `json:"warnings,omitempty"`
	SkippedRows int                     `json:"skippedRows"`

	// 输入中是否出现可选列（决定输出是否带对应列）
	HasAribaSupplierName bool `json:"hasAribaSupplierName"`
	HasWorkspaceID       bool `json:"hasWorkspaceId"`
	HasEffectiveDate     bool `json:"hasEffectiveDate"`
}
