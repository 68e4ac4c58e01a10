package hierarchy

import (
	"iter"

	"contracthierarchy/internal/model"
)

type frame struct {
	idx   int
	depth int
}

// Emitter 按层级顺序输出记录：从每个 Parent 出发沿“被引用”关系深度优先遍历，
// 每条记录至多输出一次；最后按组内顺序补上未被访问的记录。
// Emitter 只能遍历一次。
type Emitter struct {
	groups []*GroupResult

	gi      int
	byIndex map[int]*model.ContractRecord
	visited map[int]struct{}
	stack   []frame
	rootPos int
	tailPos int
}

func newEmitter(groups []*GroupResult) *Emitter {
	e := &Emitter{groups: groups}
	e.resetGroup()
	return e
}

func (e *Emitter) resetGroup() {
	e.visited = make(map[int]struct{})
	e.stack = e.stack[:0]
	e.rootPos = 0
	e.tailPos = 0
	e.byIndex = nil
	if e.gi < len(e.groups) {
		recs := e.groups[e.gi].Group.Records
		e.byIndex = make(map[int]*model.ContractRecord, len(recs))
		for _, r := range recs {
			e.byIndex[r.Index] = r
		}
	}
}

// Next 返回下一行；遍历结束时返回 false
func (e *Emitter) Next() (model.OutputRow, bool) {
	for e.gi < len(e.groups) {
		g := e.groups[e.gi]
		recs := g.Group.Records

		if n := len(e.stack); n > 0 {
			f := e.stack[n-1]
			e.stack = e.stack[:n-1]
			if _, ok := e.visited[f.idx]; ok {
				continue
			}
			e.visited[f.idx] = struct{}{}

			children := g.Refs.ReferencedBy(f.idx)
			for i := len(children) - 1; i >= 0; i-- {
				if _, ok := e.visited[children[i]]; !ok {
					e.stack = append(e.stack, frame{idx: children[i], depth: f.depth + 1})
				}
			}
			return model.NewOutputRow(e.byIndex[f.idx], g.Labels[f.idx], g.Group.Key, f.depth), true
		}

		if e.rootPos < len(recs) {
			r := recs[e.rootPos]
			e.rootPos++
			if _, ok := e.visited[r.Index]; !ok && g.Labels[r.Index] == model.LabelParent {
				e.stack = append(e.stack, frame{idx: r.Index, depth: 0})
			}
			continue
		}

		if e.tailPos < len(recs) {
			r := recs[e.tailPos]
			e.tailPos++
			if _, ok := e.visited[r.Index]; ok {
				continue
			}
			e.visited[r.Index] = struct{}{}
			return model.NewOutputRow(r, g.Labels[r.Index], g.Group.Key, -1), true
		}

		e.gi++
		e.resetGroup()
	}
	return model.OutputRow{}, false
}

// All 以 iter.Seq 形式返回剩余的行
func (e *Emitter) All() iter.Seq[model.OutputRow] {
	return func(yield func(model.OutputRow) bool) {
		for {
			row, ok := e.Next()
			if !ok || !yield(row) {
				return
			}
		}
	}
}

// Collect 取出剩余全部行
func (e *Emitter) Collect() []model.OutputRow {
	var rows []model.OutputRow
	for row := range e.All() {
		rows = append(rows, row)
	}
	return rows
}
