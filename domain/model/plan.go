package model

// JoinType is the kind of a join.
type JoinType int

const (
	// JoinInner emits matching pairs only.
	JoinInner JoinType = iota
	// JoinLeft keeps every left row.
	JoinLeft
	// JoinRight keeps every right row.
	JoinRight
	// JoinFullOuter keeps every row of both sides.
	JoinFullOuter
)

// String returns the SQL spelling of the join type.
func (jt JoinType) String() string {
	switch jt {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	case JoinFullOuter:
		return "FULL_OUTER"
	default:
		return "UNKNOWN"
	}
}

// JoinCondition is an equality between a column already in scope and a
// column of the joined table.
type JoinCondition struct {
	Left     ColumnRef
	Right    ColumnRef
	Operator string
}

// JoinInfo describes one step of the left-deep join chain.
type JoinInfo struct {
	Type      JoinType
	Table     *TableInfo
	Condition JoinCondition
}

// AggregateFunc names an aggregate function.
type AggregateFunc string

const (
	// AggCount is COUNT.
	AggCount AggregateFunc = "COUNT"
	// AggSum is SUM.
	AggSum AggregateFunc = "SUM"
	// AggAvg is AVG.
	AggAvg AggregateFunc = "AVG"
	// AggMin is MIN.
	AggMin AggregateFunc = "MIN"
	// AggMax is MAX.
	AggMax AggregateFunc = "MAX"
)

// AggregateCall is one aggregate slot of a plan.
type AggregateCall struct {
	Func AggregateFunc
	// Arg is nil for COUNT(*).
	Arg      *Expr
	Distinct bool
	// DisplayName is the canonical text, e.g. COUNT(*) or SUM(amount).
	DisplayName string
	Alias       string
	// Slot is the position of this call in Plan.Aggregates.
	Slot int
}

// Label returns the alias when present, the display name otherwise.
func (a AggregateCall) Label() string {
	if a.Alias != "" {
		return a.Alias
	}
	return a.DisplayName
}

// SelectItem is one output column.
type SelectItem struct {
	Expr  *Expr
	Label string
	Type  ColumnType
}

// OrderByItem is one ORDER BY key.
type OrderByItem struct {
	Expr *Expr
	Desc bool
}

// Plan is the self-contained representation of one SELECT.
type Plan struct {
	Select     []SelectItem
	Aggregates []AggregateCall
	Main       *TableInfo
	Joins      []JoinInfo
	Where      *Expr
	GroupBy    []*Expr
	Having     *Expr
	OrderBy    []OrderByItem
	Distinct   bool
	// Limit and Offset are nil when absent.
	Limit  *int
	Offset *int
}

// HasAggregation reports whether the plan computes aggregates.
func (p *Plan) HasAggregation() bool {
	return len(p.Aggregates) > 0
}

// Grouped reports whether rows are partitioned before projection.
func (p *Plan) Grouped() bool {
	return p.HasAggregation() || len(p.GroupBy) > 0
}

// Tables returns the main table followed by every joined table.
// Column references bind to positions in this slice.
func (p *Plan) Tables() []*TableInfo {
	tables := make([]*TableInfo, 0, len(p.Joins)+1)
	tables = append(tables, p.Main)
	for _, j := range p.Joins {
		tables = append(tables, j.Table)
	}
	return tables
}
