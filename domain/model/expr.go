package model

import "regexp"

// ExprKind tags the node kinds of Expr.
type ExprKind uint8

const (
	// ExprLiteral is a constant value.
	ExprLiteral ExprKind = iota
	// ExprColumn is a column reference bound to a source table.
	ExprColumn
	// ExprArith is + - * / % or || between Left and Right.
	ExprArith
	// ExprCompare is = <> != > >= < <= between Left and Right.
	ExprCompare
	// ExprLogical is AND/OR between Left and Right.
	ExprLogical
	// ExprNot negates Left.
	ExprNot
	// ExprNeg is unary minus applied to Left.
	ExprNeg
	// ExprLike matches Left against the pattern in Right.
	ExprLike
	// ExprIn tests Left for membership in Args.
	ExprIn
	// ExprBetween tests Left against the inclusive range Args[0]..Args[1].
	ExprBetween
	// ExprIsNull tests Left for a missing value.
	ExprIsNull
	// ExprParen wraps Left.
	ExprParen
	// ExprFunc calls the scalar function Name with Args.
	ExprFunc
	// ExprAggregate reads the aggregate value stored in Slot.
	ExprAggregate
)

// Expr is one node of an expression tree. Only the fields relevant to Kind are set.
type Expr struct {
	Kind ExprKind

	// Op holds the operator of arithmetic, comparison and logical nodes.
	Op string
	// Negate turns LIKE, IN, BETWEEN and IS NULL into their NOT forms.
	Negate bool

	Left  *Expr
	Right *Expr
	Args  []*Expr

	// Literal is the value of ExprLiteral.
	Literal Value

	// Ref is the bound column of ExprColumn.
	Ref ColumnRef

	// Name is the upper-cased function name of ExprFunc.
	Name string

	// Slot indexes Plan.Aggregates for ExprAggregate.
	Slot int

	// Pattern is the compiled LIKE pattern when Right is a literal.
	Pattern *regexp.Regexp
}

// ColumnRef names a column, optionally qualified, and where it was bound.
type ColumnRef struct {
	Table  string
	Column string
	// Source is the position of the owning table in Plan.Tables().
	Source int
	// Index is the column position inside that table.
	Index int
}

// String returns the reference as written.
func (r ColumnRef) String() string {
	if r.Table == "" {
		return r.Column
	}
	return r.Table + "." + r.Column
}

// Lit returns a literal node.
func Lit(v Value) *Expr {
	return &Expr{Kind: ExprLiteral, Literal: v}
}

// Col returns a column node bound to source and index.
func Col(table, column string, source, index int) *Expr {
	return &Expr{Kind: ExprColumn, Ref: ColumnRef{Table: table, Column: column, Source: source, Index: index}}
}

// Binary returns a node of kind with the given operator and operands.
func Binary(kind ExprKind, op string, left, right *Expr) *Expr {
	return &Expr{Kind: kind, Op: op, Left: left, Right: right}
}

// AggregateRef returns a node reading aggregate slot.
func AggregateRef(slot int) *Expr {
	return &Expr{Kind: ExprAggregate, Slot: slot}
}

// Walk calls fn for e and every node below it, depth first.
func Walk(e *Expr, fn func(*Expr)) {
	if e == nil {
		return
	}
	fn(e)
	Walk(e.Left, fn)
	Walk(e.Right, fn)
	for _, arg := range e.Args {
		Walk(arg, fn)
	}
}

// HasAggregate reports whether e reads any aggregate slot.
func HasAggregate(e *Expr) bool {
	found := false
	Walk(e, func(n *Expr) {
		if n.Kind == ExprAggregate {
			found = true
		}
	})
	return found
}
