package hierarchy

import (
	"sort"
	"time"
	"unicode/utf8"

	"contracthierarchy/internal/model"
)

// TokenKind 匹配词来源
type TokenKind int

const (
	TokenName     TokenKind = iota // 完整名称
	TokenID                        // 合同编号
	TokenDate                      // 生效日期的某种写法
	TokenFragment                  // 名称片段
)

func (k TokenKind) String() string {
	switch k {
	case TokenName:
		return "name"
	case TokenID:
		return "id"
	case TokenDate:
		return "date"
	case TokenFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// Token 单个匹配词
type Token struct {
	Text string
	Kind TokenKind
}

// TokenSet 一条记录的匹配词集合（已去重，顺序确定：长的在前，同长按字典序）
type TokenSet []Token

// Contains 是否包含某个匹配词
func (s TokenSet) Contains(text string) bool {
	for _, t := range s {
		if t.Text == text {
			return true
		}
	}
	return false
}

// Texts 返回全部匹配词文本
func (s TokenSet) Texts() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.Text
	}
	return out
}

// dateLayouts 关联说明里可能出现的日期写法
var dateLayouts = []string{
	"1/2/2006",        // M/D/YYYY
	"01/02/2006",      // MM/DD/YYYY
	"Jan 2, 2006",     // 缩写月份
	"January 2, 2006", // 完整月份
	"2006-01-02",      // ISO
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
}

// TokenExtractor 匹配词提取器
type TokenExtractor struct {
	norm              *Normalizer
	minFragmentLength int
}

// NewTokenExtractor 创建提取器
func NewTokenExtractor(norm *Normalizer, minFragmentLength int) *TokenExtractor {
	if minFragmentLength < 1 {
		minFragmentLength = 1
	}
	return &TokenExtractor{norm: norm, minFragmentLength: minFragmentLength}
}

// Extract 提取一条记录的匹配词（纯函数）
func (e *TokenExtractor) Extract(r *model.ContractRecord) TokenSet {
	seen := make(map[string]struct{})
	var set TokenSet
	add := func(text string, kind TokenKind) {
		if text == "" {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		set = append(set, Token{Text: text, Kind: kind})
	}

	name := e.norm.Normalize(r.Name)
	add(name, TokenName)

	// 合同编号不设长度门槛；短编号只能整词命中（见 Resolver.substringEligible）
	add(e.norm.Normalize(r.ID), TokenID)

	for _, d := range DateRenderings(r.EffectiveDate) {
		add(e.norm.Normalize(d), TokenDate)
	}

	for _, frag := range splitFragments(name) {
		if utf8.RuneCountInString(frag) >= e.minFragmentLength {
			add(frag, TokenFragment)
		}
	}

	sort.SliceStable(set, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(set[i].Text), utf8.RuneCountInString(set[j].Text)
		if li != lj {
			return li > lj
		}
		return set[i].Text < set[j].Text
	})
	return set
}

// DateRenderings 生效日期的全部写法（未规范化大小写）
func DateRenderings(d *time.Time) []string {
	if d == nil || d.IsZero() {
		return nil
	}
	out := make([]string, 0, len(dateLayouts))
	for _, layout := range dateLayouts {
		out = append(out, d.Format(layout))
	}
	return out
}
