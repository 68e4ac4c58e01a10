package hierarchy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalizer 文本规范化：NFKC + 大小写折叠 + 空白压缩
// cases.Caser 非并发安全，每个 Normalizer 只在单次分类流程内使用。
type Normalizer struct {
	folder cases.Caser
}

// NewNormalizer 创建规范化器
func NewNormalizer() *Normalizer {
	return &Normalizer{folder: cases.Fold()}
}

// Normalize 规范化文本
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = n.folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// isWordRune 是否为“词内”字符（字母或数字）
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isNumeric 是否为纯数字
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// splitFragments 按非字母数字边界切分
func splitFragments(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
}
