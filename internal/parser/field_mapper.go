package parser

import (
	"regexp"
	"sort"

	"github.com/sahilm/fuzzy"
)

// DefaultAliases 各字段的默认列名别名（未规范化）
var DefaultAliases = map[Field][]string{
	FieldFileName:     {"Original Name", "FileName", "File Name", "Contract Name"},
	FieldContractID:   {"ID", "ContractID", "Contract ID"},
	FieldContractType: {"Contract Type", "ContractType"},
	FieldSupplier: {
		"Supplier Legal Entity",
		"Supplier Legal Entity (Contracts)",
		"PartyName",
		"Party Name",
	},
	FieldLinkText: {
		"Supplier Parent Child agreement links",
		"Supplier Parent Child Link Info",
		"Parent Child Link",
		"Parent Child Links",
	},
	FieldAribaSupplierName: {"Ariba Supplier Name"},
	FieldWorkspaceID:       {"Workspace ID", "WorkspaceID"},
	FieldEffectiveDate:     {"Effective Date", "EffectiveDate", "Contract Effective Date"},
}

// 关联说明列的命名在各版本表格中不固定
var linkColumnPattern = regexp.MustCompile(`parentchild.*(link|info)`)

// FieldMapper 字段映射器
type FieldMapper struct {
	aliases map[string]Field // 规范化列名 -> 字段
	order   map[Field][]string
}

// NewFieldMapper 创建字段映射器，extra 为配置中追加的别名
func NewFieldMapper(extra map[Field][]string) *FieldMapper {
	m := &FieldMapper{
		aliases: make(map[string]Field),
		order:   make(map[Field][]string),
	}
	for _, f := range AllFields() {
		for _, alias := range DefaultAliases[f] {
			m.add(f, alias)
		}
		for _, alias := range extra[f] {
			m.add(f, alias)
		}
	}
	return m
}

func (m *FieldMapper) add(f Field, alias string) {
	key := NormalizeColumnName(alias)
	if key == "" {
		return
	}
	if _, ok := m.aliases[key]; ok {
		return
	}
	m.aliases[key] = f
	m.order[f] = append(m.order[f], key)
}

// MatchField 识别单个列名对应的字段
func (m *FieldMapper) MatchField(column string) (Field, bool) {
	key := NormalizeColumnName(column)
	if key == "" {
		return "", false
	}
	if f, ok := m.aliases[key]; ok {
		return f, true
	}
	if linkColumnPattern.MatchString(key) {
		return FieldLinkText, true
	}
	return "", false
}

// MapColumns 映射表头。同一字段出现多列时取最左侧的一列。
func (m *FieldMapper) MapColumns(headers []string) map[Field]FieldMapping {
	mappings := make(map[Field]FieldMapping)
	for idx, col := range headers {
		f, ok := m.MatchField(col)
		if !ok {
			continue
		}
		if _, dup := mappings[f]; dup {
			continue
		}
		mappings[f] = FieldMapping{ColumnIndex: idx, ColumnName: col, Field: f}
	}
	return mappings
}

// MissingRequired 未映射到的必填字段（按固定顺序）
func MissingRequired(mappings map[Field]FieldMapping) []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if _, ok := mappings[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Suggest 为缺失字段在未使用的列名里找近似拼写
func (m *FieldMapper) Suggest(headers []string, mappings map[Field]FieldMapping, missing []Field) map[Field][]string {
	used := make(map[int]struct{}, len(mappings))
	for _, fm := range mappings {
		used[fm.ColumnIndex] = struct{}{}
	}

	out := make(map[Field][]string)
	for _, f := range missing {
		aliases := m.order[f]
		best := make(map[string]int)
		for idx, col := range headers {
			if _, ok := used[idx]; ok {
				continue
			}
			key := NormalizeColumnName(col)
			if key == "" {
				continue
			}
			// 表头作为模式在别名中做子序列匹配（缩写、漏词）
			for _, match := range fuzzy.Find(key, aliases) {
				if s, ok := best[col]; !ok || match.Score > s {
					best[col] = match.Score
				}
			}
			// 反向匹配覆盖多出字符的写法
			for _, alias := range aliases {
				for _, match := range fuzzy.Find(alias, []string{key}) {
					if s, ok := best[col]; !ok || match.Score > s {
						best[col] = match.Score
					}
				}
			}
		}
		if len(best) == 0 {
			continue
		}
		cols := make([]string, 0, len(best))
		for col := range best {
			cols = append(cols, col)
		}
		sort.Slice(cols, func(i, j int) bool {
			if best[cols[i]] != best[cols[j]] {
				return best[cols[i]] > best[cols[j]]
			}
			return cols[i] < cols[j]
		})
		out[f] = cols
	}
	return out
}
