package model

// OutputRow 输出表格的一行
type OutputRow struct {
	FileName          string         `json:"fileName" yaml:"fileName"`
	ContractID        string         `json:"contractId" yaml:"contractId"`
	ParentChild       HierarchyLabel `json:"parentChild" yaml:"parentChild"`
	ContractType      string         `json:"contractType" yaml:"contractType"`
	PartyName         string         `json:"partyName" yaml:"partyName"`
	AribaSupplierName string         `json:"aribaSupplierName,omitempty" yaml:"aribaSupplierName,omitempty"`
	WorkspaceID       string         `json:"workspaceId,omitempty" yaml:"workspaceId,omitempty"`

	Index int    `json:"index" yaml:"index"` // 对应 ContractRecord.Index
	Group string `json:"group" yaml:"group"` // 供应商分组键
	Depth int    `json:"depth" yaml:"depth"` // 遍历深度（根为 0，未挂接记录为 -1）
}

// NewOutputRow 由合同记录与标签构造输出行
func NewOutputRow(r *ContractRecord, label HierarchyLabel, group string, depth int) OutputRow {
	return OutputRow{
		FileName:          r.Name,
		ContractID:        r.ID,
		ParentChild:       label,
		ContractType:      r.ContractType,
		PartyName:         r.Supplier,
		AribaSupplierName: r.AribaSupplierName,
		WorkspaceID:       r.WorkspaceID,
		Index:             r.Index,
		Group:             group,
		Depth:             depth,
	}
}
