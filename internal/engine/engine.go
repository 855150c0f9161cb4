// Package engine executes read-only SELECT statements over the sheets of a
// model.Reader. The native engine binds, plans and evaluates statements in
// memory; the SQLite engine copies the sheets into an in-memory SQLite
// database and lets SQLite evaluate them.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/sheetsql/domain/model"
	"github.com/nao1215/sheetsql/internal/logger"
)

// checkInterval is how many rows a stage processes between context checks.
const checkInterval = 1024

const (
	// NativeName selects the native engine.
	NativeName = "native"
	// SQLiteName selects the SQLite engine.
	SQLiteName = "sqlite"
)

// Engine runs one statement at a time and returns a fully materialized result.
type Engine interface {
	// Query parses, plans and executes query. args bind positional placeholders.
	Query(ctx context.Context, query string, args []model.Value) (*model.Result, error)
	// Close releases the resources held by the engine.
	Close() error
}

// Option configures an engine.
type Option func(*options)

type options struct {
	log *logger.Logger
}

// WithLogger sets the logger used for statement tracing.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func newOptions(opts []Option) options {
	o := options{log: logger.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the engine registered under name.
func New(ctx context.Context, name string, r model.Reader, opts ...Option) (Engine, error) {
	switch strings.ToLower(name) {
	case "", NativeName:
		return NewNative(r, opts...), nil
	case SQLiteName:
		return NewSQLite(ctx, r, opts...)
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)", name, NativeName, SQLiteName)
	}
}

// Native is the in-memory query engine. It is safe for concurrent use as
// long as the underlying reader is.
type Native struct {
	planner *Planner
	log     *logger.Logger
}

var _ Engine = (*Native)(nil)

// NewNative returns a native engine reading tables from r.
func NewNative(r model.Reader, opts ...Option) *Native {
	o := newOptions(opts)
	return &Native{
		planner: NewPlanner(NewBinder(r)),
		log:     o.log.Named("engine"),
	}
}

// Query implements Engine.
func (n *Native) Query(ctx context.Context, query string, args []model.Value) (*model.Result, error) {
	id := uuid.NewString()
	log := n.log.With("statement_id", id)
	start := time.Now()
	log.Debug("statement started", "sql", query)

	result, err := n.query(ctx, query, args)
	if err != nil {
		log.Debug("statement failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}
	log.Debug("statement finished", "rows", result.RowCount, "elapsed", time.Since(start))
	return result, nil
}

func (n *Native) query(ctx context.Context, query string, args []model.Value) (*model.Result, error) {
	stmt, err := Parse(query)
	if err != nil {
		return nil, err
	}
	plan, err := n.planner.Build(stmt, args)
	if err != nil {
		return nil, err
	}
	return Execute(ctx, plan)
}

// Close implements Engine.
func (n *Native) Close() error {
	return nil
}

// Execute runs a plan: join, filter, group, project, sort, deduplicate and paginate.
// The plan is not modified, so executing it twice yields identical results.
func Execute(ctx context.Context, plan *model.Plan) (*model.Result, error) {
	tables := plan.Tables()

	rows, err := executeJoins(ctx, plan)
	if err != nil {
		return nil, err
	}
	if rows, err = filter(ctx, plan.Where, tables, rows); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []outputRow
	if plan.Grouped() {
		groups, err := aggregate(ctx, plan, tables, rows)
		if err != nil {
			return nil, err
		}
		if groups, err = having(plan, tables, groups); err != nil {
			return nil, err
		}
		if out, err = projectGroups(plan, tables, groups); err != nil {
			return nil, err
		}
	} else if out, err = projectRows(ctx, plan, tables, rows); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortRows(out, plan.OrderBy)
	if plan.Distinct {
		out = distinctRows(out)
	}
	out = paginate(out, plan.Offset, plan.Limit)
	return materialize(plan, out), nil
}
