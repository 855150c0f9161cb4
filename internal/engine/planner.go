package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/sheetsql/domain/model"
	"github.com/xwb1989/sqlparser"
)

// aliasMode controls how unqualified names may refer to select-list aliases.
type aliasMode int

const (
	// aliasNone resolves names against table columns only.
	aliasNone aliasMode = iota
	// aliasFirst prefers aliases over columns (HAVING, ORDER BY).
	aliasFirst
	// aliasFallback uses aliases when no column matches (GROUP BY).
	aliasFallback
)

// scope describes what an expression position may reference.
type scope struct {
	clause     string
	aggregates bool
	aliases    aliasMode
}

var (
	whereScope   = scope{clause: "WHERE"}
	joinScope    = scope{clause: "JOIN"}
	selectScope  = scope{clause: "SELECT", aggregates: true}
	groupScope   = scope{clause: "GROUP BY", aliases: aliasFallback}
	havingScope  = scope{clause: "HAVING", aggregates: true, aliases: aliasFirst}
	orderScope   = scope{clause: "ORDER BY", aggregates: true, aliases: aliasFirst}
	argumentOnly = scope{clause: "aggregate argument"}
)

// Planner turns parsed statements into plans.
type Planner struct {
	binder *Binder
}

// NewPlanner returns a planner that binds tables through b.
func NewPlanner(b *Binder) *Planner {
	return &Planner{binder: b}
}

// Build converts stmt into a self-contained plan. args bind positional placeholders.
func (p *Planner) Build(stmt sqlparser.Statement, args []model.Value) (*model.Plan, error) {
	switch node := stmt.(type) {
	case *sqlparser.Select:
		b := &planBuilder{
			binder:   p.binder,
			args:     args,
			plan:     &model.Plan{},
			aggIndex: make(map[string]int),
			aliases:  make(map[string]*model.Expr),
		}
		return b.build(node)
	case *sqlparser.ParenSelect:
		return p.Build(node.Select, args)
	case *sqlparser.Insert, *sqlparser.Update, *sqlparser.Delete, *sqlparser.DDL:
		return nil, fmt.Errorf("%w: %s", model.ErrReadOnly, sqlparser.String(stmt))
	default:
		return nil, model.PlanErrorf("unsupported statement: %s", sqlparser.String(stmt))
	}
}

// planBuilder carries the state of one Build call.
type planBuilder struct {
	binder   *Binder
	args     []model.Value
	plan     *model.Plan
	tables   []*model.TableInfo
	aggIndex map[string]int
	aliases  map[string]*model.Expr
}

func (b *planBuilder) build(sel *sqlparser.Select) (*model.Plan, error) {
	if len(sel.From) != 1 {
		return nil, model.PlanErrorf("comma-separated FROM lists are not supported")
	}
	if err := b.from(sel.From[0]); err != nil {
		return nil, err
	}
	b.plan.Distinct = sel.Distinct != ""

	if err := b.selectList(sel.SelectExprs); err != nil {
		return nil, err
	}

	if sel.Where != nil {
		where, err := b.convert(sel.Where.Expr, whereScope)
		if err != nil {
			return nil, err
		}
		b.plan.Where = where
	}

	for _, g := range sel.GroupBy {
		expr, err := b.convert(g, groupScope)
		if err != nil {
			return nil, err
		}
		b.plan.GroupBy = append(b.plan.GroupBy, expr)
	}

	if sel.Having != nil {
		having, err := b.convert(sel.Having.Expr, havingScope)
		if err != nil {
			return nil, err
		}
		if !b.plan.Grouped() {
			return nil, model.PlanErrorf("HAVING requires GROUP BY or an aggregate")
		}
		b.plan.Having = having
	}

	for _, order := range sel.OrderBy {
		expr, err := b.orderExpr(order.Expr)
		if err != nil {
			return nil, err
		}
		b.plan.OrderBy = append(b.plan.OrderBy, model.OrderByItem{
			Expr: expr,
			Desc: order.Direction == sqlparser.DescScr,
		})
	}

	if sel.Limit != nil {
		if err := b.limit(sel.Limit); err != nil {
			return nil, err
		}
	}
	return b.plan, nil
}

// from binds the FROM clause as a left-deep join chain.
func (b *planBuilder) from(te sqlparser.TableExpr) error {
	switch node := te.(type) {
	case *sqlparser.AliasedTableExpr:
		t, err := b.bindTable(node)
		if err != nil {
			return err
		}
		b.plan.Main = t
		b.tables = append(b.tables, t)
		return nil

	case *sqlparser.ParenTableExpr:
		if len(node.Exprs) != 1 {
			return model.PlanErrorf("parenthesized table lists are not supported")
		}
		return b.from(node.Exprs[0])

	case *sqlparser.JoinTableExpr:
		if err := b.from(node.LeftExpr); err != nil {
			return err
		}
		joinType, err := joinTypeOf(node.Join)
		if err != nil {
			return err
		}
		right, ok := node.RightExpr.(*sqlparser.AliasedTableExpr)
		if !ok {
			return model.PlanErrorf("nested joins on the right side are not supported")
		}
		t, err := b.bindTable(right)
		if err != nil {
			return err
		}
		b.tables = append(b.tables, t)

		cond, err := b.joinCondition(node.Condition, len(b.tables)-1)
		if err != nil {
			return err
		}
		b.plan.Joins = append(b.plan.Joins, model.JoinInfo{Type: joinType, Table: t, Condition: cond})
		return nil

	default:
		return model.PlanErrorf("unsupported FROM clause: %s", sqlparser.String(te))
	}
}

func joinTypeOf(join string) (model.JoinType, error) {
	switch join {
	case sqlparser.JoinStr:
		return model.JoinInner, nil
	case sqlparser.LeftJoinStr:
		return model.JoinLeft, nil
	case sqlparser.RightJoinStr:
		return model.JoinRight, nil
	case sqlparser.StraightJoinStr:
		return model.JoinFullOuter, nil
	default:
		return model.JoinInner, model.PlanErrorf("%s is not supported", strings.ToUpper(join))
	}
}

func (b *planBuilder) bindTable(node *sqlparser.AliasedTableExpr) (*model.TableInfo, error) {
	name, ok := node.Expr.(sqlparser.TableName)
	if !ok {
		return nil, model.PlanErrorf("derived tables are not supported: %s", sqlparser.String(node))
	}
	return b.binder.Bind(TableRef{
		Workbook: name.Qualifier.String(),
		Name:     name.Name.String(),
		Alias:    node.As.String(),
	})
}

// joinCondition accepts a single equality between the joined table and a table already in scope.
func (b *planBuilder) joinCondition(jc sqlparser.JoinCondition, right int) (model.JoinCondition, error) {
	if len(jc.Using) > 0 {
		return model.JoinCondition{}, model.PlanErrorf("JOIN ... USING is not supported")
	}
	if jc.On == nil {
		return model.JoinCondition{}, model.PlanErrorf("JOIN requires an ON condition")
	}

	on := jc.On
	for {
		paren, ok := on.(*sqlparser.ParenExpr)
		if !ok {
			break
		}
		on = paren.Expr
	}
	cmp, ok := on.(*sqlparser.ComparisonExpr)
	if !ok || cmp.Operator != sqlparser.EqualStr {
		return model.JoinCondition{}, model.PlanErrorf("only equality join conditions are supported: %s", sqlparser.String(jc.On))
	}
	lcol, lok := cmp.Left.(*sqlparser.ColName)
	rcol, rok := cmp.Right.(*sqlparser.ColName)
	if !lok || !rok {
		return model.JoinCondition{}, model.PlanErrorf("join conditions must compare two columns: %s", sqlparser.String(jc.On))
	}

	left, err := b.resolveColumn(lcol)
	if err != nil {
		return model.JoinCondition{}, err
	}
	rightRef, err := b.resolveColumn(rcol)
	if err != nil {
		return model.JoinCondition{}, err
	}
	if left.Source == right && rightRef.Source < right {
		left, rightRef = rightRef, left
	}
	if rightRef.Source != right || left.Source >= right {
		return model.JoinCondition{}, model.PlanErrorf("join condition must relate %s to a preceding table: %s",
			b.tables[right].Name(), sqlparser.String(jc.On))
	}
	return model.JoinCondition{Left: left, Right: rightRef, Operator: sqlparser.EqualStr}, nil
}

// selectList expands stars and converts every select item.
func (b *planBuilder) selectList(exprs sqlparser.SelectExprs) error {
	for _, se := range exprs {
		switch node := se.(type) {
		case *sqlparser.StarExpr:
			if err := b.star(node); err != nil {
				return err
			}

		case *sqlparser.AliasedExpr:
			expr, err := b.convert(node.Expr, selectScope)
			if err != nil {
				return err
			}
			label := node.As.String()
			if label != "" {
				b.aliases[strings.ToLower(label)] = expr
				if expr.Kind == model.ExprAggregate && b.plan.Aggregates[expr.Slot].Alias == "" {
					b.plan.Aggregates[expr.Slot].Alias = label
				}
			} else {
				label = b.defaultLabel(node.Expr, expr)
			}
			b.plan.Select = append(b.plan.Select, model.SelectItem{
				Expr:  expr,
				Label: label,
				Type:  b.typeOf(expr),
			})

		default:
			return model.PlanErrorf("unsupported select item: %s", sqlparser.String(se))
		}
	}
	return nil
}

func (b *planBuilder) star(node *sqlparser.StarExpr) error {
	qualifier := node.TableName.Name.String()
	matched := false
	for src, t := range b.tables {
		if qualifier != "" && !t.Matches(qualifier) {
			continue
		}
		matched = true
		for idx, column := range t.Columns() {
			b.plan.Select = append(b.plan.Select, model.SelectItem{
				Expr:  model.Col(t.Name(), column, src, idx),
				Label: column,
				Type:  t.Types()[idx],
			})
		}
	}
	if !matched {
		return model.ResolutionErrorf("table %s not found for %s.*", qualifier, qualifier)
	}
	return nil
}

func (b *planBuilder) defaultLabel(node sqlparser.Expr, expr *model.Expr) string {
	switch expr.Kind {
	case model.ExprColumn:
		if col, ok := node.(*sqlparser.ColName); ok {
			return col.Name.String()
		}
	case model.ExprAggregate:
		return b.plan.Aggregates[expr.Slot].DisplayName
	}
	return exprText(node)
}

// exprText renders node as SQL text, printing the rewritten ^ back as ||.
func exprText(node sqlparser.SQLNode) string {
	return sqlparser.NewTrackedBuffer(formatConcat).WriteNode(node).String()
}

func formatConcat(buf *sqlparser.TrackedBuffer, node sqlparser.SQLNode) {
	if bin, ok := node.(*sqlparser.BinaryExpr); ok && bin.Operator == sqlparser.BitXorStr {
		buf.Myprintf("%v %s %v", bin.Left, model.OpConcat, bin.Right)
		return
	}
	node.Format(buf)
}

func (b *planBuilder) orderExpr(node sqlparser.Expr) (*model.Expr, error) {
	if val, ok := node.(*sqlparser.SQLVal); ok && val.Type == sqlparser.IntVal {
		pos, err := strconv.Atoi(string(val.Val))
		if err != nil || pos < 1 || pos > len(b.plan.Select) {
			return nil, model.PlanErrorf("ORDER BY position %s is out of range", string(val.Val))
		}
		return b.plan.Select[pos-1].Expr, nil
	}
	return b.convert(node, orderScope)
}

func (b *planBuilder) limit(l *sqlparser.Limit) error {
	if l.Rowcount != nil {
		n, err := b.intValue(l.Rowcount, "LIMIT")
		if err != nil {
			return err
		}
		b.plan.Limit = &n
	}
	if l.Offset != nil {
		n, err := b.intValue(l.Offset, "OFFSET")
		if err != nil {
			return err
		}
		b.plan.Offset = &n
	}
	return nil
}

func (b *planBuilder) intValue(node sqlparser.Expr, clause string) (int, error) {
	val, ok := node.(*sqlparser.SQLVal)
	if !ok {
		return 0, model.PlanErrorf("%s must be an integer: %s", clause, sqlparser.String(node))
	}
	var text string
	switch val.Type {
	case sqlparser.IntVal:
		text = string(val.Val)
	case sqlparser.ValArg:
		arg, err := b.placeholder(string(val.Val))
		if err != nil {
			return 0, err
		}
		text = arg.Literal.String()
	default:
		return 0, model.PlanErrorf("%s must be an integer: %s", clause, sqlparser.String(node))
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0, model.PlanErrorf("%s must be a non-negative integer: %s", clause, text)
	}
	return n, nil
}

// convert translates a parser expression into a bound model expression.
func (b *planBuilder) convert(node sqlparser.Expr, sc scope) (*model.Expr, error) {
	switch n := node.(type) {
	case *sqlparser.SQLVal:
		switch n.Type {
		case sqlparser.StrVal, sqlparser.IntVal, sqlparser.FloatVal:
			return model.Lit(model.ParseCell(string(n.Val))), nil
		case sqlparser.ValArg:
			return b.placeholder(string(n.Val))
		default:
			return nil, model.PlanErrorf("unsupported literal: %s", sqlparser.String(n))
		}

	case *sqlparser.NullVal:
		return model.Lit(model.Null()), nil

	case sqlparser.BoolVal:
		return model.Lit(model.Bool(bool(n))), nil

	case *sqlparser.ColName:
		return b.column(n, sc)

	case *sqlparser.ParenExpr:
		inner, err := b.convert(n.Expr, sc)
		if err != nil {
			return nil, err
		}
		return &model.Expr{Kind: model.ExprParen, Left: inner}, nil

	case *sqlparser.AndExpr:
		return b.binary(model.ExprLogical, "AND", n.Left, n.Right, sc)

	case *sqlparser.OrExpr:
		return b.binary(model.ExprLogical, "OR", n.Left, n.Right, sc)

	case *sqlparser.NotExpr:
		inner, err := b.convert(n.Expr, sc)
		if err != nil {
			return nil, err
		}
		return &model.Expr{Kind: model.ExprNot, Left: inner}, nil

	case *sqlparser.ComparisonExpr:
		return b.comparison(n, sc)

	case *sqlparser.RangeCond:
		left, err := b.convert(n.Left, sc)
		if err != nil {
			return nil, err
		}
		from, err := b.convert(n.From, sc)
		if err != nil {
			return nil, err
		}
		to, err := b.convert(n.To, sc)
		if err != nil {
			return nil, err
		}
		return &model.Expr{
			Kind:   model.ExprBetween,
			Left:   left,
			Args:   []*model.Expr{from, to},
			Negate: n.Operator == sqlparser.NotBetweenStr,
		}, nil

	case *sqlparser.IsExpr:
		if n.Operator != sqlparser.IsNullStr && n.Operator != sqlparser.IsNotNullStr {
			return nil, model.PlanErrorf("unsupported IS test: %s", sqlparser.String(n))
		}
		inner, err := b.convert(n.Expr, sc)
		if err != nil {
			return nil, err
		}
		return &model.Expr{Kind: model.ExprIsNull, Left: inner, Negate: n.Operator == sqlparser.IsNotNullStr}, nil

	case *sqlparser.BinaryExpr:
		switch n.Operator {
		case sqlparser.PlusStr, sqlparser.MinusStr, sqlparser.MultStr, sqlparser.DivStr, sqlparser.ModStr:
			return b.binary(model.ExprArith, n.Operator, n.Left, n.Right, sc)
		case sqlparser.BitXorStr:
			// Parse rewrites || to ^.
			return b.binary(model.ExprArith, model.OpConcat, n.Left, n.Right, sc)
		default:
			return nil, model.PlanErrorf("unsupported operator %s", n.Operator)
		}

	case *sqlparser.UnaryExpr:
		inner, err := b.convert(n.Expr, sc)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case sqlparser.UMinusStr:
			return &model.Expr{Kind: model.ExprNeg, Left: inner}, nil
		case sqlparser.UPlusStr:
			return inner, nil
		default:
			return nil, model.PlanErrorf("unsupported unary operator %s", n.Operator)
		}

	case *sqlparser.FuncExpr:
		return b.function(n, sc)

	case *sqlparser.Subquery:
		return nil, model.PlanErrorf("subqueries are not supported")

	default:
		return nil, model.PlanErrorf("unsupported expression in %s: %s", sc.clause, sqlparser.String(node))
	}
}

func (b *planBuilder) binary(kind model.ExprKind, op string, l, r sqlparser.Expr, sc scope) (*model.Expr, error) {
	left, err := b.convert(l, sc)
	if err != nil {
		return nil, err
	}
	right, err := b.convert(r, sc)
	if err != nil {
		return nil, err
	}
	return model.Binary(kind, op, left, right), nil
}

func (b *planBuilder) comparison(n *sqlparser.ComparisonExpr, sc scope) (*model.Expr, error) {
	switch n.Operator {
	case sqlparser.EqualStr, sqlparser.NotEqualStr, sqlparser.NullSafeEqualStr,
		sqlparser.LessThanStr, sqlparser.LessEqualStr, sqlparser.GreaterThanStr, sqlparser.GreaterEqualStr:
		return b.binary(model.ExprCompare, n.Operator, n.Left, n.Right, sc)

	case sqlparser.InStr, sqlparser.NotInStr:
		tuple, ok := n.Right.(sqlparser.ValTuple)
		if !ok {
			return nil, model.PlanErrorf("IN requires a value list: %s", sqlparser.String(n))
		}
		left, err := b.convert(n.Left, sc)
		if err != nil {
			return nil, err
		}
		args := make([]*model.Expr, 0, len(tuple))
		for _, item := range tuple {
			arg, err := b.convert(item, sc)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &model.Expr{Kind: model.ExprIn, Left: left, Args: args, Negate: n.Operator == sqlparser.NotInStr}, nil

	case sqlparser.LikeStr, sqlparser.NotLikeStr:
		if n.Escape != nil {
			return nil, model.PlanErrorf("LIKE ... ESCAPE is not supported")
		}
		e, err := b.binary(model.ExprLike, n.Operator, n.Left, n.Right, sc)
		if err != nil {
			return nil, err
		}
		e.Negate = n.Operator == sqlparser.NotLikeStr
		if e.Right.Kind == model.ExprLiteral && !e.Right.Literal.IsNull() {
			if e.Pattern, err = CompileLike(e.Right.Literal.String()); err != nil {
				return nil, err
			}
		}
		return e, nil

	default:
		return nil, model.PlanErrorf("unsupported comparison %s", n.Operator)
	}
}

var aggregateFuncs = map[string]model.AggregateFunc{
	"COUNT": model.AggCount,
	"SUM":   model.AggSum,
	"AVG":   model.AggAvg,
	"MIN":   model.AggMin,
	"MAX":   model.AggMax,
}

func (b *planBuilder) function(n *sqlparser.FuncExpr, sc scope) (*model.Expr, error) {
	name := strings.ToUpper(n.Name.String())
	if fn, ok := aggregateFuncs[name]; ok {
		return b.aggregate(fn, n, sc)
	}
	if n.Distinct {
		return nil, model.PlanErrorf("DISTINCT is only allowed in aggregates: %s", sqlparser.String(n))
	}

	args := make([]*model.Expr, 0, len(n.Exprs))
	for _, se := range n.Exprs {
		ae, ok := se.(*sqlparser.AliasedExpr)
		if !ok {
			return nil, model.PlanErrorf("unsupported argument in %s", sqlparser.String(n))
		}
		arg, err := b.convert(ae.Expr, sc)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &model.Expr{Kind: model.ExprFunc, Name: name, Args: args}, nil
}

// aggregate registers an aggregate call and returns a reference to its slot.
// Calls with the same display name share one slot.
func (b *planBuilder) aggregate(fn model.AggregateFunc, n *sqlparser.FuncExpr, sc scope) (*model.Expr, error) {
	if !sc.aggregates {
		return nil, model.PlanErrorf("aggregate %s is not allowed in %s", sqlparser.String(n), sc.clause)
	}
	if len(n.Exprs) != 1 {
		return nil, model.PlanErrorf("%s takes exactly one argument", fn)
	}

	call := model.AggregateCall{Func: fn, Distinct: n.Distinct}
	var argText string
	switch arg := n.Exprs[0].(type) {
	case *sqlparser.StarExpr:
		if fn != model.AggCount || n.Distinct || !arg.TableName.IsEmpty() {
			return nil, model.PlanErrorf("%s is not allowed", sqlparser.String(n))
		}
		argText = "*"
	case *sqlparser.AliasedExpr:
		expr, err := b.convert(arg.Expr, argumentOnly)
		if err != nil {
			return nil, err
		}
		call.Arg = expr
		argText = exprText(arg.Expr)
	default:
		return nil, model.PlanErrorf("unsupported argument in %s", sqlparser.String(n))
	}

	if n.Distinct {
		argText = "DISTINCT " + argText
	}
	call.DisplayName = string(fn) + "(" + argText + ")"

	key := strings.ToLower(call.DisplayName)
	if slot, ok := b.aggIndex[key]; ok {
		return model.AggregateRef(slot), nil
	}
	call.Slot = len(b.plan.Aggregates)
	b.plan.Aggregates = append(b.plan.Aggregates, call)
	b.aggIndex[key] = call.Slot
	return model.AggregateRef(call.Slot), nil
}

func (b *planBuilder) placeholder(name string) (*model.Expr, error) {
	pos, err := strconv.Atoi(strings.TrimPrefix(name, ":v"))
	if err != nil || pos < 1 {
		return nil, model.PlanErrorf("named placeholders are not supported: %s", name)
	}
	if pos > len(b.args) {
		return nil, model.PlanErrorf("missing argument %d", pos)
	}
	return model.Lit(b.args[pos-1]), nil
}

func (b *planBuilder) column(n *sqlparser.ColName, sc scope) (*model.Expr, error) {
	unqualified := n.Qualifier.IsEmpty()
	if unqualified && sc.aliases == aliasFirst {
		if expr, ok := b.aliases[n.Name.Lowered()]; ok {
			return expr, nil
		}
	}

	ref, err := b.resolveColumn(n)
	if err == nil {
		return &model.Expr{Kind: model.ExprColumn, Ref: ref}, nil
	}
	if unqualified && sc.aliases == aliasFallback {
		if expr, ok := b.aliases[n.Name.Lowered()]; ok && !model.HasAggregate(expr) {
			return expr, nil
		}
	}
	if sc.clause == havingScope.clause && errors.Is(err, model.ErrResolution) {
		known := make([]string, len(b.plan.Aggregates))
		for i, call := range b.plan.Aggregates {
			known[i] = call.Label()
		}
		return nil, model.EvaluationErrorf("cannot resolve %s in HAVING; known aggregates: [%s]",
			sqlparser.String(n), strings.Join(known, ", "))
	}
	return nil, err
}

// resolveColumn binds a column name to the tables in scope.
func (b *planBuilder) resolveColumn(n *sqlparser.ColName) (model.ColumnRef, error) {
	qualifier := n.Qualifier.Name.String()
	workbook := n.Qualifier.Qualifier.String()
	name := n.Name.String()

	var found []model.ColumnRef
	for src, t := range b.tables {
		if qualifier != "" && !t.Matches(qualifier) {
			continue
		}
		if workbook != "" && !strings.EqualFold(workbook, t.Workbook()) {
			continue
		}
		if idx, ok := t.ColumnIndex(name); ok {
			found = append(found, model.ColumnRef{Table: qualifier, Column: name, Source: src, Index: idx})
		}
	}

	switch len(found) {
	case 0:
		return model.ColumnRef{}, model.ResolutionErrorf("column %s not found", sqlparser.String(n))
	case 1:
		return found[0], nil
	default:
		return model.ColumnRef{}, model.ResolutionErrorf("column %s is ambiguous", sqlparser.String(n))
	}
}

// typeOf reports the type tag of an output expression.
func (b *planBuilder) typeOf(e *model.Expr) model.ColumnType {
	switch e.Kind {
	case model.ExprColumn:
		return b.tables[e.Ref.Source].Types()[e.Ref.Index]
	case model.ExprParen:
		return b.typeOf(e.Left)
	case model.ExprAggregate:
		call := b.plan.Aggregates[e.Slot]
		switch call.Func {
		case model.AggCount:
			return model.ColumnTypeInteger
		case model.AggSum, model.AggAvg:
			return model.ColumnTypeReal
		default:
			return b.typeOf(call.Arg)
		}
	case model.ExprArith:
		if e.Op == model.OpConcat {
			return model.ColumnTypeText
		}
		return model.ColumnTypeReal
	case model.ExprNeg:
		return model.ColumnTypeReal
	case model.ExprCompare, model.ExprLogical, model.ExprNot, model.ExprLike,
		model.ExprIn, model.ExprBetween, model.ExprIsNull:
		return model.ColumnTypeBoolean
	case model.ExprFunc:
		if e.Name == "LENGTH" || e.Name == "CHAR_LENGTH" || e.Name == "CHARACTER_LENGTH" {
			return model.ColumnTypeInteger
		}
		return model.ColumnTypeText
	default:
		return model.ColumnTypeText
	}
}
