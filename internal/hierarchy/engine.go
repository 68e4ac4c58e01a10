package hierarchy

import (
	"sort"

	"go.uber.org/zap"

	"contracthierarchy/internal/model"
)

// GroupResult 单个供应商分组的分类结果
type GroupResult struct {
	Group  *model.VendorGroup
	Tokens map[int]TokenSet
	Refs   *References
	Labels Labels
}

// Result 一次分类的完整结果
type Result struct {
	Groups []*GroupResult
	total  int
}

// Engine 分类引擎：分组 -> 提取匹配词 -> 解析引用 -> 分配标签
type Engine struct {
	opts   Options
	logger *zap.Logger
}

// NewEngine 创建分类引擎
func NewEngine(opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{opts: opts, logger: logger}
}

// Options 返回引擎参数
func (e *Engine) Options() Options {
	return e.opts
}

// Classify 对全部记录分类。每次调用都重新构建全部中间结构。
func (e *Engine) Classify(records []*model.ContractRecord) *Result {
	norm := NewNormalizer()
	extractor := NewTokenExtractor(norm, e.opts.MinFragmentLength)
	resolver := NewResolver(norm, e.opts, e.logger)
	classifier := NewClassifier(norm, e.opts.RootTypeMarkers)

	ordered := SortRecords(records, e.opts.SortKey)
	groups := GroupByVendor(ordered, norm)

	result := &Result{Groups: make([]*GroupResult, 0, len(groups)), total: len(records)}
	for _, g := range groups {
		tokens := make(map[int]TokenSet, len(g.Records))
		for _, r := range g.Records {
			tokens[r.Index] = extractor.Extract(r)
		}
		refs := resolver.Resolve(g, tokens)
		labels := classifier.Classify(g, refs)

		e.logger.Debug("vendor group classified",
			zap.String("supplier", g.Supplier),
			zap.Int("records", len(g.Records)),
			zap.Int("edges", len(refs.Edges)),
			zap.Int("ambiguities", len(refs.Ambiguities)))

		result.Groups = append(result.Groups, &GroupResult{
			Group:  g,
			Tokens: tokens,
			Refs:   refs,
			Labels: labels,
		})
	}
	return result
}

// SortRecords 按排序口径返回新的记录切片（稳定排序，不修改入参）
func SortRecords(records []*model.ContractRecord, key SortKey) []*model.ContractRecord {
	out := make([]*model.ContractRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if key == SortByEffectiveDate {
			switch {
			case a.EffectiveDate != nil && b.EffectiveDate == nil:
				return true
			case a.EffectiveDate == nil && b.EffectiveDate != nil:
				return false
			case a.EffectiveDate != nil && b.EffectiveDate != nil && !a.EffectiveDate.Equal(*b.EffectiveDate):
				return a.EffectiveDate.Before(*b.EffectiveDate)
			}
		}
		return a.Index < b.Index
	})
	return out
}

// GroupByVendor 按规范化后的供应商名称分组，组的顺序为首次出现的顺序
func GroupByVendor(records []*model.ContractRecord, norm *Normalizer) []*model.VendorGroup {
	var groups []*model.VendorGroup
	byKey := make(map[string]*model.VendorGroup)
	for _, r := range records {
		key := norm.Normalize(r.Supplier)
		g, ok := byKey[key]
		if !ok {
			g = &model.VendorGroup{Key: key, Supplier: r.Supplier}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.Records = append(g.Records, r)
	}
	return groups
}

// Emit 返回新的输出遍历器
func (r *Result) Emit() *Emitter {
	return newEmitter(r.Groups)
}

// Rows 输出全部行
func (r *Result) Rows() []model.OutputRow {
	return r.Emit().Collect()
}

// TotalRecords 输入记录数
func (r *Result) TotalRecords() int {
	return r.total
}

// Label 返回指定记录的标签
func (r *Result) Label(index int) (model.HierarchyLabel, bool) {
	for _, g := range r.Groups {
		if lb, ok := g.Labels[index]; ok {
			return lb, true
		}
	}
	return "", false
}

// Labels 合并全部分组的标签
func (r *Result) Labels() Labels {
	out := make(Labels, r.total)
	for _, g := range r.Groups {
		for idx, lb := range g.Labels {
			out[idx] = lb
		}
	}
	return out
}

// LabelCounts 各标签数量
func (r *Result) LabelCounts() map[model.HierarchyLabel]int {
	return r.Labels().Count()
}

// Edges 全部引用关系（按分组顺序）
func (r *Result) Edges() []model.ReferenceEdge {
	var out []model.ReferenceEdge
	for _, g := range r.Groups {
		out = append(out, g.Refs.Edges...)
	}
	return out
}

// Ambiguities 全部歧义匹配
func (r *Result) Ambiguities() []model.Ambiguity {
	var out []model.Ambiguity
	for _, g := range r.Groups {
		out = append(out, g.Refs.Ambiguities...)
	}
	return out
}

// EdgeDetails 引用关系明细（按分组顺序）
func (r *Result) EdgeDetails() []model.EdgeDetail {
	var out []model.EdgeDetail
	for _, g := range r.Groups {
		byIndex := g.recordsByIndex()
		for _, e := range g.Refs.Edges {
			from, to := byIndex[e.From], byIndex[e.To]
			out = append(out, model.EdgeDetail{
				Supplier: g.Group.Supplier,
				FromID:   from.ID,
				FromName: from.Name,
				ToID:     to.ID,
				ToName:   to.Name,
				Token:    e.Token,
				Match:    e.Match,
			})
		}
	}
	return out
}

// AmbiguityDetails 歧义匹配明细（按分组顺序）
func (r *Result) AmbiguityDetails() []model.AmbiguityDetail {
	var out []model.AmbiguityDetail
	for _, g := range r.Groups {
		byIndex := g.recordsByIndex()
		for _, a := range g.Refs.Ambiguities {
			from := byIndex[a.From]
			ids := make([]string, 0, len(a.Candidates))
			for _, c := range a.Candidates {
				ids = append(ids, byIndex[c].ID)
			}
			out = append(out, model.AmbiguityDetail{
				Supplier:     g.Group.Supplier,
				ContractID:   from.ID,
				FileName:     from.Name,
				Token:        a.Token,
				CandidateIDs: ids,
			})
		}
	}
	return out
}

func (g *GroupResult) recordsByIndex() map[int]*model.ContractRecord {
	out := make(map[int]*model.ContractRecord, len(g.Group.Records))
	for _, rec := range g.Group.Records {
		out[rec.Index] = rec
	}
	return out
}
