package engine

import (
	"slices"
	"strings"

	"github.com/nao1215/sheetsql/domain/model"
)

// outputRow is a projected row together with its ORDER BY keys.
type outputRow struct {
	values []model.Value
	keys   []model.Value
}

// sortRows orders rows stably by their keys. Missing values sort lowest in
// ascending order, so they come last under DESC.
func sortRows(rows []outputRow, order []model.OrderByItem) {
	if len(order) == 0 {
		return
	}
	slices.SortStableFunc(rows, func(a, b outputRow) int {
		for i, item := range order {
			c := model.Compare(a.keys[i], b.keys[i])
			if c == 0 {
				continue
			}
			if item.Desc {
				return -c
			}
			return c
		}
		return 0
	})
}

// distinctRows drops rows equal to an earlier row, keeping the first.
func distinctRows(rows []outputRow) []outputRow {
	seen := make(map[string]struct{}, len(rows))
	kept := rows[:0]
	for _, row := range rows {
		var sb strings.Builder
		for _, v := range row.values {
			sb.WriteString(valueKey(v))
			sb.WriteByte('|')
		}
		key := sb.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	return kept
}

// paginate applies OFFSET then LIMIT. An offset past the end yields no rows.
func paginate(rows []outputRow, offset, limit *int) []outputRow {
	if offset != nil {
		if *offset >= len(rows) {
			return nil
		}
		rows = rows[*offset:]
	}
	if limit != nil && *limit < len(rows) {
		rows = rows[:*limit]
	}
	return rows
}
