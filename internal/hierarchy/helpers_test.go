package hierarchy

import (
	"time"

	"contracthierarchy/internal/model"
)

func rec(idx int, id, name, contractType, supplier, link string) *model.ContractRecord {
	return &model.ContractRecord{
		Index:        idx,
		RowNo:        idx + 2,
		ID:           id,
		Name:         name,
		ContractType: contractType,
		Supplier:     supplier,
		LinkText:     link,
	}
}

func dated(r *model.ContractRecord, year int, month time.Month, day int) *model.ContractRecord {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	r.EffectiveDate = &d
	return r
}

func groupOf(records ...*model.ContractRecord) *model.VendorGroup {
	g := &model.VendorGroup{Key: "acme", Supplier: "Acme"}
	g.Records = append(g.Records, records...)
	return g
}

func resolveGroup(opts Options, g *model.VendorGroup) *References {
	norm := NewNormalizer()
	ex := NewTokenExtractor(norm, opts.MinFragmentLength)
	tokens := make(map[int]TokenSet, len(g.Records))
	for _, r := range g.Records {
		tokens[r.Index] = ex.Extract(r)
	}
	return NewResolver(norm, opts, nil).Resolve(g, tokens)
}

// acmeScenario 主协议 -> SOW -> 变更单
func acmeScenario() []*model.ContractRecord {
	return []*model.ContractRecord{
		rec(0, "", "Acme MSA", "MSA", "Acme", ""),
		rec(1, "", "Acme SOW-1", "SOW", "Acme", "references Acme MSA"),
		rec(2, "", "Acme SOW-1-CO1", "Change Order", "Acme", "amends Acme SOW-1"),
	}
}

func labelsByName(res *Result, records []*model.ContractRecord) map[string]model.HierarchyLabel {
	out := make(map[string]model.HierarchyLabel, len(records))
	for _, r := range records {
		lb, _ := res.Label(r.Index)
		out[r.Name] = lb
	}
	return out
}
