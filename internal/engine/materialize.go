package engine

import (
	"context"

	"github.com/nao1215/sheetsql/domain/model"
)

// filter keeps the rows matching the WHERE predicate.
func filter(ctx context.Context, where *model.Expr, tables []*model.TableInfo, rows *rowSet) (*rowSet, error) {
	if where == nil {
		return rows, nil
	}
	out := newRowSet(rows.width, rows.Len())
	for i := range rows.Len() {
		if i%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		refs := rows.At(i)
		ok, err := Matches(where, Row{Tables: tables, Refs: refs})
		if err != nil {
			return nil, err
		}
		if ok {
			out.refs = append(out.refs, refs...)
		}
	}
	return out, nil
}

// project evaluates the select list and the ORDER BY keys against one row.
func project(plan *model.Plan, row Row) (outputRow, error) {
	out := outputRow{
		values: make([]model.Value, len(plan.Select)),
		keys:   make([]model.Value, len(plan.OrderBy)),
	}
	for i, item := range plan.Select {
		v, err := Evaluate(item.Expr, row)
		if err != nil {
			return outputRow{}, err
		}
		out.values[i] = v
	}
	for i, item := range plan.OrderBy {
		v, err := Evaluate(item.Expr, row)
		if err != nil {
			return outputRow{}, err
		}
		out.keys[i] = v
	}
	return out, nil
}

// projectRows projects ungrouped rows.
func projectRows(ctx context.Context, plan *model.Plan, tables []*model.TableInfo, rows *rowSet) ([]outputRow, error) {
	out := make([]outputRow, 0, rows.Len())
	for i := range rows.Len() {
		if i%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := project(plan, Row{Tables: tables, Refs: rows.At(i)})
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// projectGroups projects one row per group. Plain columns read the group's first row.
func projectGroups(plan *model.Plan, tables []*model.TableInfo, groups []*group) ([]outputRow, error) {
	out := make([]outputRow, 0, len(groups))
	for _, g := range groups {
		row, err := project(plan, Row{Tables: tables, Refs: g.first, Aggregates: g.values})
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// materialize copies the final rows into a column-major result.
func materialize(plan *model.Plan, rows []outputRow) *model.Result {
	columns := make([]string, len(plan.Select))
	types := make([]model.ColumnType, len(plan.Select))
	for i, item := range plan.Select {
		columns[i] = item.Label
		types[i] = item.Type
	}
	result := model.NewResult(columns, types, len(rows))
	for _, row := range rows {
		result.AppendRow(row.values)
	}
	return result
}
