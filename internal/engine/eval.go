package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/sheetsql/domain/model"
)

// Row is the evaluation context of one (possibly joined) row.
type Row struct {
	Tables []*model.TableInfo
	// Refs holds one row index per table; -1 marks a padded side of an outer join.
	Refs []int
	// Aggregates holds the slot values of the current group. Nil outside grouping.
	Aggregates []model.Value
}

// Evaluate computes e against row. It never mutates e or row.
func Evaluate(e *model.Expr, row Row) (model.Value, error) {
	switch e.Kind {
	case model.ExprLiteral:
		return e.Literal, nil

	case model.ExprColumn:
		src := e.Ref.Source
		if src < 0 || src >= len(row.Tables) || src >= len(row.Refs) {
			return model.Null(), model.EvaluationErrorf("column %s is not in scope", e.Ref)
		}
		return row.Tables[src].Cell(e.Ref.Index, row.Refs[src]), nil

	case model.ExprParen:
		return Evaluate(e.Left, row)

	case model.ExprNeg:
		v, err := Evaluate(e.Left, row)
		if err != nil {
			return model.Null(), err
		}
		if d, ok := v.Decimal(); ok {
			return model.Number(d.Neg()), nil
		}
		return model.Null(), nil

	case model.ExprArith:
		l, r, err := evaluatePair(e, row)
		if err != nil {
			return model.Null(), err
		}
		return model.Arithmetic(e.Op, l, r), nil

	case model.ExprCompare:
		l, r, err := evaluatePair(e, row)
		if err != nil {
			return model.Null(), err
		}
		return model.Bool(CompareValues(e.Op, l, r)), nil

	case model.ExprLogical:
		return evaluateLogical(e, row)

	case model.ExprNot:
		v, err := Evaluate(e.Left, row)
		if err != nil {
			return model.Null(), err
		}
		return model.Bool(!v.Truthy()), nil

	case model.ExprLike:
		return evaluateLike(e, row)

	case model.ExprIn:
		return evaluateIn(e, row)

	case model.ExprBetween:
		return evaluateBetween(e, row)

	case model.ExprIsNull:
		v, err := Evaluate(e.Left, row)
		if err != nil {
			return model.Null(), err
		}
		return model.Bool(v.IsNull() != e.Negate), nil

	case model.ExprFunc:
		args := make([]model.Value, len(e.Args))
		for i, arg := range e.Args {
			v, err := Evaluate(arg, row)
			if err != nil {
				return model.Null(), err
			}
			args[i] = v
		}
		return callFunction(e.Name, args), nil

	case model.ExprAggregate:
		if e.Slot < 0 || e.Slot >= len(row.Aggregates) {
			return model.Null(), model.EvaluationErrorf("aggregate slot %d is not available here", e.Slot)
		}
		return row.Aggregates[e.Slot], nil

	default:
		return model.Null(), model.EvaluationErrorf("unknown expression kind %d", e.Kind)
	}
}

func evaluatePair(e *model.Expr, row Row) (model.Value, model.Value, error) {
	l, err := Evaluate(e.Left, row)
	if err != nil {
		return model.Null(), model.Null(), err
	}
	r, err := Evaluate(e.Right, row)
	if err != nil {
		return model.Null(), model.Null(), err
	}
	return l, r, nil
}

func evaluateLogical(e *model.Expr, row Row) (model.Value, error) {
	l, err := Evaluate(e.Left, row)
	if err != nil {
		return model.Null(), err
	}
	switch e.Op {
	case "AND":
		if !l.Truthy() {
			return model.Bool(false), nil
		}
	case "OR":
		if l.Truthy() {
			return model.Bool(true), nil
		}
	default:
		return model.Null(), model.EvaluationErrorf("unknown logical operator %s", e.Op)
	}
	r, err := Evaluate(e.Right, row)
	if err != nil {
		return model.Null(), err
	}
	return model.Bool(r.Truthy()), nil
}

func evaluateLike(e *model.Expr, row Row) (model.Value, error) {
	l, r, err := evaluatePair(e, row)
	if err != nil {
		return model.Null(), err
	}
	if l.IsNull() || r.IsNull() {
		return model.Bool(false), nil
	}
	re := e.Pattern
	if re == nil {
		if re, err = CompileLike(r.String()); err != nil {
			return model.Null(), err
		}
	}
	return model.Bool(re.MatchString(l.String()) != e.Negate), nil
}

func evaluateIn(e *model.Expr, row Row) (model.Value, error) {
	l, err := Evaluate(e.Left, row)
	if err != nil {
		return model.Null(), err
	}
	if l.IsNull() {
		return model.Bool(false), nil
	}
	found := false
	for _, arg := range e.Args {
		v, err := Evaluate(arg, row)
		if err != nil {
			return model.Null(), err
		}
		if CompareValues("=", l, v) {
			found = true
			break
		}
	}
	return model.Bool(found != e.Negate), nil
}

func evaluateBetween(e *model.Expr, row Row) (model.Value, error) {
	if len(e.Args) != 2 {
		return model.Null(), model.EvaluationErrorf("BETWEEN needs two bounds, got %d", len(e.Args))
	}
	v, err := Evaluate(e.Left, row)
	if err != nil {
		return model.Null(), err
	}
	lo, err := Evaluate(e.Args[0], row)
	if err != nil {
		return model.Null(), err
	}
	hi, err := Evaluate(e.Args[1], row)
	if err != nil {
		return model.Null(), err
	}
	if v.IsNull() || lo.IsNull() || hi.IsNull() {
		return model.Bool(false), nil
	}
	in := model.Compare(v, lo) >= 0 && model.Compare(v, hi) <= 0
	return model.Bool(in != e.Negate), nil
}

// CompileLike translates a LIKE pattern into an anchored regular expression:
// % matches any run, _ matches one character, everything else is literal.
func CompileLike(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, model.EvaluationErrorf("invalid LIKE pattern %q: %v", pattern, err)
	}
	return re, nil
}

// callFunction applies a scalar function. Unknown functions return their first argument.
func callFunction(name string, args []model.Value) model.Value {
	switch name {
	case "CONCAT":
		var sb strings.Builder
		for _, arg := range args {
			sb.WriteString(arg.String())
		}
		return model.ParseCell(sb.String())
	case "LENGTH", "CHAR_LENGTH", "CHARACTER_LENGTH":
		if len(args) == 0 || args[0].IsNull() {
			return model.Int(0)
		}
		return model.Int(int64(utf8.RuneCountInString(args[0].String())))
	}

	if len(args) == 0 {
		return model.Null()
	}
	arg := args[0]
	if arg.IsNull() {
		return arg
	}
	switch name {
	case "UPPER", "UCASE":
		return model.ParseCell(strings.ToUpper(arg.String()))
	case "LOWER", "LCASE":
		return model.ParseCell(strings.ToLower(arg.String()))
	case "TRIM":
		return model.ParseCell(strings.TrimSpace(arg.String()))
	case "LTRIM":
		return model.ParseCell(strings.TrimLeft(arg.String(), " \t\r\n"))
	case "RTRIM":
		return model.ParseCell(strings.TrimRight(arg.String(), " \t\r\n"))
	default:
		return arg
	}
}
