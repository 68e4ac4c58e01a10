package hierarchy

import (
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"contracthierarchy/internal/model"
)

// References 组内引用关系（按记录 Index 索引）
type References struct {
	order map[int]int // Index -> 组内位置
	refs  map[int]map[int]struct{}
	refBy map[int]map[int]struct{}

	Edges       []model.ReferenceEdge
	Ambiguities []model.Ambiguity
}

func newReferences(group *model.VendorGroup) *References {
	order := make(map[int]int, len(group.Records))
	for pos, r := range group.Records {
		order[r.Index] = pos
	}
	return &References{
		order: order,
		refs:  make(map[int]map[int]struct{}),
		refBy: make(map[int]map[int]struct{}),
	}
}

func (r *References) addEdge(edge model.ReferenceEdge) bool {
	if edge.From == edge.To {
		return false
	}
	if _, ok := r.refs[edge.From][edge.To]; ok {
		return false
	}
	if r.refs[edge.From] == nil {
		r.refs[edge.From] = make(map[int]struct{})
	}
	if r.refBy[edge.To] == nil {
		r.refBy[edge.To] = make(map[int]struct{})
	}
	r.refs[edge.From][edge.To] = struct{}{}
	r.refBy[edge.To][edge.From] = struct{}{}
	r.Edges = append(r.Edges, edge)
	return true
}

// References 返回 i 引用的记录（组内顺序）
func (r *References) References(i int) []int {
	return r.sorted(r.refs[i])
}

// ReferencedBy 返回引用了 i 的记录（组内顺序）
func (r *References) ReferencedBy(i int) []int {
	return r.sorted(r.refBy[i])
}

// IsReferenced 是否被组内其他记录引用
func (r *References) IsReferenced(i int) bool {
	return len(r.refBy[i]) > 0
}

// HasEdge 是否存在 from -> to
func (r *References) HasEdge(from, to int) bool {
	_, ok := r.refs[from][to]
	return ok
}

func (r *References) sorted(set map[int]struct{}) []int {
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Slice(out, func(a, b int) bool { return r.order[out[a]] < r.order[out[b]] })
	return out
}

// Resolver 引用解析器：在关联说明中查找组内其他记录的匹配词
type Resolver struct {
	norm                  *Normalizer
	minFragmentLength     int
	maxNumericTokenDigits int
	logger                *zap.Logger
}

// NewResolver 创建引用解析器
func NewResolver(norm *Normalizer, opts Options, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		norm:                  norm,
		minFragmentLength:     opts.MinFragmentLength,
		maxNumericTokenDigits: opts.MaxNumericTokenDigits,
		logger:                logger,
	}
}

// occurrence 匹配词在文本中的一次出现
type occurrence struct {
	token      string
	start, end int
	kind       model.MatchKind
}

func (o occurrence) length() int { return o.end - o.start }

func (o occurrence) within(other occurrence) bool {
	return other.start <= o.start && o.end <= other.end && other.length() > o.length()
}

// Resolve 解析一个供应商分组的引用关系
func (r *Resolver) Resolve(group *model.VendorGroup, tokens map[int]TokenSet) *References {
	refs := newReferences(group)

	// 匹配词 -> 拥有者（组内顺序）
	owners := make(map[string][]int)
	var distinct []string
	for _, rec := range group.Records {
		for _, t := range tokens[rec.Index] {
			if _, ok := owners[t.Text]; !ok {
				distinct = append(distinct, t.Text)
			}
			owners[t.Text] = append(owners[t.Text], rec.Index)
		}
	}

	for _, from := range group.Records {
		text := r.norm.Normalize(from.LinkText)
		if text == "" {
			continue
		}

		occs := make(map[string][]occurrence, len(distinct))
		var all []occurrence
		for _, tok := range distinct {
			found := r.findOccurrences(text, tok)
			if len(found) > 0 {
				occs[tok] = found
				all = append(all, found...)
			}
		}
		if len(all) == 0 {
			continue
		}

		reported := make(map[string]struct{})
		for _, to := range group.Records {
			if to.Index == from.Index {
				continue
			}
			for _, t := range tokens[to.Index] {
				found := occs[t.Text]
				if len(found) == 0 {
					continue
				}
				candidates := without(owners[t.Text], from.Index)
				usable := firstUnshadowed(found, all, func(o occurrence) bool {
					return ownedOnlyBy(owners[o.token], to.Index)
				})
				if usable == nil {
					continue
				}
				if len(candidates) > 1 {
					if _, ok := reported[t.Text]; !ok {
						reported[t.Text] = struct{}{}
						refs.Ambiguities = append(refs.Ambiguities, model.Ambiguity{
							From:       from.Index,
							Token:      t.Text,
							Candidates: candidates,
						})
						r.logger.Warn("ambiguous reference token",
							zap.String("supplier", group.Supplier),
							zap.String("contract_id", from.ID),
							zap.String("token", t.Text),
							zap.Ints("candidates", candidates))
					}
					continue
				}
				refs.addEdge(model.ReferenceEdge{
					From:  from.Index,
					To:    to.Index,
					Token: t.Text,
					Match: usable.kind,
				})
				break
			}
		}
	}

	return refs
}

// findOccurrences 查找匹配词的全部出现位置：优先整词；没有整词命中时按门槛做子串兜底
func (r *Resolver) findOccurrences(text, token string) []occurrence {
	if token == "" || len(token) > len(text) {
		return nil
	}
	var word, sub []occurrence
	for offset := 0; offset < len(text); {
		p := strings.Index(text[offset:], token)
		if p < 0 {
			break
		}
		start := offset + p
		end := start + len(token)
		if isWordBoundary(text, token, start, end) {
			word = append(word, occurrence{token: token, start: start, end: end, kind: model.MatchWord})
		} else {
			sub = append(sub, occurrence{token: token, start: start, end: end, kind: model.MatchSubstring})
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	if len(word) > 0 {
		return word
	}
	if r.substringEligible(token) {
		return sub
	}
	return nil
}

// substringEligible 子串兜底门槛：足够长，或不超过位数上限的纯数字
func (r *Resolver) substringEligible(token string) bool {
	n := utf8.RuneCountInString(token)
	if n >= r.minFragmentLength {
		return true
	}
	return isNumeric(token) && n <= r.maxNumericTokenDigits
}

// isWordBoundary 与正则 \b 语义一致：词字符与非词字符之间才算边界
func isWordBoundary(text, token string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(token)
	last, _ := utf8.DecodeLastRuneInString(token)
	if start > 0 && isWordRune(first) {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(prev) {
			return false
		}
	}
	if end < len(text) && isWordRune(last) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(next) {
			return false
		}
	}
	return true
}

// firstUnshadowed 返回第一个未被更长出现覆盖的位置。
// 覆盖它的更长匹配词若只属于目标记录本身，则不算遮蔽。
func firstUnshadowed(found, all []occurrence, ownTarget func(occurrence) bool) *occurrence {
	for i := range found {
		o := found[i]
		shadowed := false
		for _, other := range all {
			if other.token == o.token || !o.within(other) {
				continue
			}
			if ownTarget(other) {
				continue
			}
			shadowed = true
			break
		}
		if !shadowed {
			return &o
		}
	}
	return nil
}

func ownedOnlyBy(owners []int, idx int) bool {
	for _, o := range owners {
		if o != idx {
			return false
		}
	}
	return len(owners) > 0
}

func without(list []int, idx int) []int {
	out := make([]int, 0, len(list))
	for _, v := range list {
		if v != idx {
			out = append(out, v)
		}
	}
	return out
}
