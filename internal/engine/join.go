package engine

import (
	"context"

	"github.com/nao1215/sheetsql/domain/model"
)

// rowSet is a flat arena of joined rows. Row i occupies refs[i*width:(i+1)*width],
// one row index per source table, -1 for a padded side.
type rowSet struct {
	width int
	refs  []int
}

func newRowSet(width, capacity int) *rowSet {
	return &rowSet{width: width, refs: make([]int, 0, width*capacity)}
}

// scan returns a single-source row set holding every row of t.
func scan(t *model.TableInfo) *rowSet {
	rs := newRowSet(1, t.RowCount())
	for i := range t.RowCount() {
		rs.refs = append(rs.refs, i)
	}
	return rs
}

func (rs *rowSet) Len() int {
	if rs.width == 0 {
		return 0
	}
	return len(rs.refs) / rs.width
}

func (rs *rowSet) At(i int) []int {
	return rs.refs[i*rs.width : (i+1)*rs.width]
}

// appendJoined adds left extended by one right index.
func (rs *rowSet) appendJoined(left []int, right int) {
	rs.refs = append(rs.refs, left...)
	rs.refs = append(rs.refs, right)
}

// appendPadded adds a row whose left sources are all padding.
func (rs *rowSet) appendPadded(right int) {
	for range rs.width - 1 {
		rs.refs = append(rs.refs, -1)
	}
	rs.refs = append(rs.refs, right)
}

// joinKey is the lookup key of a join column value. Numbers use their
// canonical form so that 1 and 1.0 meet.
type joinKey struct {
	numeric bool
	text    string
}

func keyOf(v model.Value) (joinKey, bool) {
	if v.IsNull() {
		return joinKey{}, false
	}
	if d, ok := v.Decimal(); ok {
		return joinKey{numeric: true, text: d.String()}, true
	}
	return joinKey{text: v.String()}, true
}

// executeJoins folds the join chain over the main table's rows.
func executeJoins(ctx context.Context, plan *model.Plan) (*rowSet, error) {
	tables := plan.Tables()
	current := scan(plan.Main)
	for i, join := range plan.Joins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := hashJoin(current, tables[:i+2], join)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// hashJoin joins the accumulated rows with join.Table on an equality condition.
// Missing values on either side never match.
func hashJoin(left *rowSet, tables []*model.TableInfo, join model.JoinInfo) (*rowSet, error) {
	right := join.Table
	rightSource := len(tables) - 1
	cond := join.Condition
	if cond.Right.Source != rightSource || cond.Left.Source >= rightSource {
		return nil, model.PlanErrorf("join condition %s = %s does not reference %s", cond.Left, cond.Right, right.Name())
	}

	index := make(map[joinKey][]int)
	for r := range right.RowCount() {
		if key, ok := keyOf(right.Cell(cond.Right.Index, r)); ok {
			index[key] = append(index[key], r)
		}
	}

	out := newRowSet(left.width+1, left.Len())
	matchedRight := make([]bool, right.RowCount())
	leftTable := tables[cond.Left.Source]

	for i := range left.Len() {
		refs := left.At(i)
		matched := false
		if key, ok := keyOf(leftTable.Cell(cond.Left.Index, refs[cond.Left.Source])); ok {
			for _, r := range index[key] {
				out.appendJoined(refs, r)
				matchedRight[r] = true
				matched = true
			}
		}
		if !matched && (join.Type == model.JoinLeft || join.Type == model.JoinFullOuter) {
			out.appendJoined(refs, -1)
		}
	}

	if join.Type == model.JoinRight || join.Type == model.JoinFullOuter {
		for r, ok := range matchedRight {
			if !ok {
				out.appendPadded(r)
			}
		}
	}
	return out, nil
}
