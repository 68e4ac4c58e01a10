package hierarchy

import (
	"strings"

	"contracthierarchy/internal/model"
)

// Labels 记录 Index -> 层级标签
type Labels map[int]model.HierarchyLabel

// Count 统计各标签数量
func (l Labels) Count() map[model.HierarchyLabel]int {
	out := make(map[model.HierarchyLabel]int, len(model.AllLabels))
	for _, lb := range model.AllLabels {
		out[lb] = 0
	}
	for _, lb := range l {
		out[lb]++
	}
	return out
}

// Classifier 层级分类器
type Classifier struct {
	norm    *Normalizer
	markers []string
}

// NewClassifier 创建分类器
func NewClassifier(norm *Normalizer, rootTypeMarkers []string) *Classifier {
	markers := make([]string, 0, len(rootTypeMarkers))
	for _, m := range rootTypeMarkers {
		if m = norm.Normalize(m); m != "" {
			markers = append(markers, m)
		}
	}
	return &Classifier{norm: norm, markers: markers}
}

// IsRootType 合同类型是否命中主协议关键字（不区分大小写的子串匹配）
func (c *Classifier) IsRootType(contractType string) bool {
	t := c.norm.Normalize(contractType)
	if t == "" {
		return false
	}
	for _, m := range c.markers {
		if strings.Contains(t, m) {
			return true
		}
	}
	return false
}

// Classify 为分组内每条记录分配层级标签
//
// 规则依次为：主协议类型 -> Parent；其余默认 Child；被引用的非 Parent 提升为 Child/Parent；
// 仍为 Child 且引用了 Child/Parent 的记录降为 Sub Child，直到不再变化。
// Parent 与 Child/Parent 一旦确定不会再降级。
func (c *Classifier) Classify(group *model.VendorGroup, refs *References) Labels {
	labels := make(Labels, len(group.Records))

	for _, r := range group.Records {
		if c.IsRootType(r.ContractType) {
			labels[r.Index] = model.LabelParent
		} else {
			labels[r.Index] = model.LabelChild
		}
	}

	for _, r := range group.Records {
		if labels[r.Index] != model.LabelParent && refs.IsReferenced(r.Index) {
			labels[r.Index] = model.LabelChildParent
		}
	}

	for changed := true; changed; {
		changed = false
		for _, r := range group.Records {
			if labels[r.Index] != model.LabelChild {
				continue
			}
			targets := refs.References(r.Index)
			if !referencesIntermediate(labels, targets) {
				continue
			}
			labels[r.Index] = model.LabelSubChild
			changed = true
			for _, t := range targets {
				if c.promoteChain(labels, refs, t, make(map[int]struct{})) {
					changed = true
				}
			}
		}
	}

	return labels
}

func referencesIntermediate(labels Labels, targets []int) bool {
	for _, t := range targets {
		if labels[t] == model.LabelChildParent {
			return true
		}
	}
	return false
}

// promoteChain 将被引用的记录及其上游链路上的非 Parent 记录提升为 Child/Parent
func (c *Classifier) promoteChain(labels Labels, refs *References, idx int, visited map[int]struct{}) bool {
	if _, ok := visited[idx]; ok {
		return false
	}
	visited[idx] = struct{}{}

	changed := false
	switch labels[idx] {
	case model.LabelParent:
		return false
	case model.LabelChild, model.LabelSubChild:
		labels[idx] = model.LabelChildParent
		changed = true
	}
	for _, up := range refs.References(idx) {
		if c.promoteChain(labels, refs, up, visited) {
			changed = true
		}
	}
	return changed
}
