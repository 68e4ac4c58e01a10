package model

import "time"

// ContractRecord 合同记录（输入表格中的一行）
type ContractRecord struct {
	Index int `json:"index"` // 输入顺序（从 0 开始，作为记录的稳定标识）
	RowNo int `json:"rowNo"` // 表格行号（从 1 开始，含表头）

	ID                string     `json:"id"`
	Name              string     `json:"name"` // Original Name / FileName
	ContractType      string     `json:"contractType"`
	Supplier          string     `json:"supplier"` // Supplier Legal Entity，分组键
	AribaSupplierName string     `json:"aribaSupplierName,omitempty"`
	WorkspaceID       string     `json:"workspaceId,omitempty"`
	LinkText          string     `json:"linkText"`
	EffectiveDate     *time.Time `json:"effectiveDate,omitempty"`

	SourceSheet string `json:"sourceSheet,omitempty"`
}

// HasLinkText 是否填写了关联说明
func (r *ContractRecord) HasLinkText() bool {
	return r != nil && r.LinkText != ""
}

// VendorGroup 供应商分组：同一供应商下的全部合同
type VendorGroup struct {
	Key      string            `json:"key"`      // 规范化后的供应商键
	Supplier string            `json:"supplier"` // 首条记录的原始供应商名称
	Records  []*ContractRecord `json:"records"`
}
