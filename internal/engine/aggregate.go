package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/nao1215/sheetsql/domain/model"
	"github.com/shopspring/decimal"
)

// group is one partition of the filtered rows.
type group struct {
	// first is the row the group was created from; plain columns read it.
	first []int
	// values holds the final aggregate slot values.
	values []model.Value
	accs   []*accumulator
}

// accumulator folds the inputs of one aggregate slot.
type accumulator struct {
	call     model.AggregateCall
	count    int64
	numeric  int64
	sum      decimal.Decimal
	extreme  model.Value
	distinct map[string]struct{}
}

func newAccumulator(call model.AggregateCall) *accumulator {
	acc := &accumulator{call: call, extreme: model.Null()}
	if call.Distinct {
		acc.distinct = make(map[string]struct{})
	}
	return acc
}

func (a *accumulator) add(row Row) error {
	if a.call.Arg == nil {
		a.count++
		return nil
	}
	v, err := Evaluate(a.call.Arg, row)
	if err != nil {
		return err
	}
	if v.IsNull() {
		return nil
	}
	if a.distinct != nil {
		key := valueKey(v)
		if _, seen := a.distinct[key]; seen {
			return nil
		}
		a.distinct[key] = struct{}{}
	}

	a.count++
	if d, ok := v.Decimal(); ok {
		a.numeric++
		a.sum = a.sum.Add(d)
	}
	switch a.call.Func {
	case model.AggMin:
		if a.extreme.IsNull() || model.Compare(v, a.extreme) < 0 {
			a.extreme = v
		}
	case model.AggMax:
		if a.extreme.IsNull() || model.Compare(v, a.extreme) > 0 {
			a.extreme = v
		}
	}
	return nil
}

func (a *accumulator) result() model.Value {
	switch a.call.Func {
	case model.AggCount:
		return model.Int(a.count)
	case model.AggSum:
		return model.Number(a.sum)
	case model.AggAvg:
		return model.Average(a.sum, a.numeric)
	default:
		return a.extreme
	}
}

// valueKey encodes v so that distinct values never share a key.
// Numbers use their canonical form, so 1 and 1.0 are the same key.
func valueKey(v model.Value) string {
	text := v.String()
	if d, ok := v.Decimal(); ok {
		text = d.String()
	}
	return strconv.Itoa(int(v.Kind())) + ":" + strconv.Itoa(len(text)) + ":" + text
}

// groupKey concatenates the encoded group-by values of one row.
func groupKey(exprs []*model.Expr, row Row) (string, error) {
	var sb strings.Builder
	for _, e := range exprs {
		v, err := Evaluate(e, row)
		if err != nil {
			return "", err
		}
		sb.WriteString(valueKey(v))
		sb.WriteByte('|')
	}
	return sb.String(), nil
}

// aggregate partitions rows by the plan's GROUP BY keys in first-appearance
// order and computes every aggregate slot. Without GROUP BY the whole input
// is one group, which exists even when the input is empty.
func aggregate(ctx context.Context, plan *model.Plan, tables []*model.TableInfo, rows *rowSet) ([]*group, error) {
	var groups []*group
	index := make(map[string]*group)

	newGroup := func(first []int) *group {
		g := &group{first: first, accs: make([]*accumulator, len(plan.Aggregates))}
		for i, call := range plan.Aggregates {
			g.accs[i] = newAccumulator(call)
		}
		groups = append(groups, g)
		return g
	}

	if len(plan.GroupBy) == 0 {
		padding := make([]int, len(tables))
		for i := range padding {
			padding[i] = -1
		}
		g := newGroup(padding)
		if rows.Len() > 0 {
			g.first = rows.At(0)
		}
	}

	for i := range rows.Len() {
		if i%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := Row{Tables: tables, Refs: rows.At(i)}

		var g *group
		if len(plan.GroupBy) == 0 {
			g = groups[0]
		} else {
			key, err := groupKey(plan.GroupBy, row)
			if err != nil {
				return nil, err
			}
			if g = index[key]; g == nil {
				g = newGroup(row.Refs)
				index[key] = g
			}
		}
		for _, acc := range g.accs {
			if err := acc.add(row); err != nil {
				return nil, err
			}
		}
	}

	for _, g := range groups {
		g.values = make([]model.Value, len(g.accs))
		for i, acc := range g.accs {
			g.values[i] = acc.result()
		}
		g.accs = nil
	}
	return groups, nil
}

// having keeps the groups whose HAVING predicate holds.
func having(plan *model.Plan, tables []*model.TableInfo, groups []*group) ([]*group, error) {
	if plan.Having == nil {
		return groups, nil
	}
	kept := groups[:0]
	for _, g := range groups {
		ok, err := MatchesGroup(plan.Having, Row{Tables: tables, Refs: g.first}, g.values)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, g)
		}
	}
	return kept, nil
}
