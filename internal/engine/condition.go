package engine

import "github.com/nao1215/sheetsql/domain/model"

// CompareValues applies a comparison operator. Two missing operands are equal
// only under "="; a single missing operand makes every comparison false.
// Numeric operands compare numerically, anything else as text.
func CompareValues(op string, l, r model.Value) bool {
	if l.IsNull() || r.IsNull() {
		return l.IsNull() && r.IsNull() && (op == "=" || op == "<=>")
	}
	c := model.Compare(l, r)
	switch op {
	case "=", "<=>":
		return c == 0
	case "!=", "<>":
		return c != 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	default:
		return false
	}
}

// Matches evaluates a WHERE predicate against one row. A nil predicate matches everything.
func Matches(cond *model.Expr, row Row) (bool, error) {
	if cond == nil {
		return true, nil
	}
	v, err := Evaluate(cond, row)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// MatchesGroup evaluates a HAVING predicate against a group's first row and
// its computed aggregate slots.
func MatchesGroup(cond *model.Expr, row Row, aggregates []model.Value) (bool, error) {
	row.Aggregates = aggregates
	return Matches(cond, row)
}
