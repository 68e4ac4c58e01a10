package model

import "strings"

// HierarchyLabel 合同在主/子协议层级中的位置
type HierarchyLabel string

const (
	LabelParent      HierarchyLabel = "Parent"
	LabelChild       HierarchyLabel = "Child"
	LabelChildParent HierarchyLabel = "Child/Parent"
	LabelSubChild    HierarchyLabel = "Sub Child"
)

// AllLabels 全部层级标签（按层级从上到下）
var AllLabels = []HierarchyLabel{LabelParent, LabelChildParent, LabelChild, LabelSubChild}

// ParseHierarchyLabel 解析各种历史写法的层级标签
// 支持: "Parent" / "Child" / "Child/Parent" / "ChildParent" / "Sub Child" / "Subchild" / "SubChild"
func ParseHierarchyLabel(s string) (HierarchyLabel, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "/", "", "-", "", "_", "").Replace(key)
	switch key {
	case "parent":
		return LabelParent, true
	case "child":
		return LabelChild, true
	case "childparent":
		return LabelChildParent, true
	case "subchild":
		return LabelSubChild, true
	}
	return "", false
}

// MatchKind 引用匹配方式
type MatchKind string

const (
	MatchWord      MatchKind = "word"      // 整词匹配
	MatchSubstring MatchKind = "substring" // 子串兜底匹配
)

// ReferenceEdge 引用关系：From 的关联说明中出现了 To 的匹配词
type ReferenceEdge struct {
	From  int       `json:"from" yaml:"from"` // 记录 Index
	To    int       `json:"to" yaml:"to"`
	Token string    `json:"token" yaml:"token"`
	Match MatchKind `json:"match" yaml:"match"`
}

// Ambiguity 歧义匹配：同一个匹配词同时属于多条候选记录，不建立引用
type Ambiguity struct {
	From       int    `json:"from" yaml:"from"`
	Token      string `json:"token" yaml:"token"`
	Candidates []int  `json:"candidates" yaml:"candidates"`
}
