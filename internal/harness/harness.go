package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/notify"
	"github.com/roach88/books/internal/provider"
	"github.com/roach88/books/internal/querysql"
	"github.com/roach88/books/internal/store"
	"github.com/roach88/books/internal/values"
)

// Harness runs scenario steps against one provider and traces them.
type Harness struct {
	provider *provider.Provider
	clock    *notify.Clock
	logger   *slog.Logger

	// pending collects changes published while a step runs; they are traced
	// after the step's op event.
	pending []notify.Change
}

// stepOutcome is what a successful step produced.
type stepOutcome struct {
	address string
	count   int64
	columns []string
	rows    []values.Values
	kind    string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with a logical clock
// starting at zero, so traces are identical across runs. Op events take a
// sequence number before the operation runs; the changes it publishes are
// stamped from the same clock and traced right after it.
//
// The returned error reports a scenario that could not be executed, such as
// a failing setup step. Failed expectations and assertions are recorded in
// the Result.
func Run(scenario *Scenario) (*Result, error) {
	authority := scenario.Authority
	if authority == "" {
		authority = contract.Authority
	}

	clock := notify.NewClock()
	bus := notify.NewBusWithClock(clock)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	p := provider.New(store.NewHelper(":memory:"), provider.NewRoutes(authority),
		provider.WithBus(bus),
		provider.WithLogger(logger),
	)
	defer p.Close()

	h := &Harness{
		provider: p,
		clock:    clock,
		logger:   logger,
	}

	ctx := context.Background()

	for i, step := range scenario.Setup {
		if _, err := h.execute(ctx, step); err != nil {
			return nil, fmt.Errorf("failed to execute setup: step %d: %w", i, err)
		}
	}

	root := contract.NewAddress(contract.Scheme, authority)
	sub := bus.Subscribe(root, true, notify.ObserverFunc(func(c notify.Change) {
		h.pending = append(h.pending, c)
	}))
	defer sub.Cancel()

	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	actx := &AssertionContext{
		Provider: p,
		Ctx:      ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeFlow runs the flow steps, traces them and checks expect clauses.
func (h *Harness) executeFlow(ctx context.Context, flow []Step, result *Result) error {
	for i, step := range flow {
		addr, err := h.address(step)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
		args, err := stepArgs(step)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		seq := h.clock.Next()
		out, opErr := h.execute(ctx, step)

		outcome := OutcomeOK
		var traceResult map[string]any
		if opErr != nil {
			outcome = provider.Kind(opErr)
			traceResult = map[string]any{"error": opErr.Error()}
		} else {
			traceResult = out.traceResult(step.Op)
		}
		result.AddOpTrace(step.Op, addr.String(), args, outcome, traceResult, seq)

		for _, c := range h.pending {
			result.AddChangeTrace(c.Address.String(), c.Seq)
		}
		h.pending = h.pending[:0]

		for _, msg := range checkExpect(step, out, opErr) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Op, msg))
		}

		h.logger.Info("flow step completed",
			"step", i,
			"op", step.Op,
			"address", addr.String(),
			"outcome", outcome,
			"seq", seq,
		)
	}
	return nil
}

// execute performs one step against the provider.
func (h *Harness) execute(ctx context.Context, step Step) (stepOutcome, error) {
	addr, err := h.address(step)
	if err != nil {
		return stepOutcome{}, err
	}
	filter, err := stepFilter(step)
	if err != nil {
		return stepOutcome{}, err
	}

	switch step.Op {
	case OpInsert:
		vals, err := values.FromMap(step.Values)
		if err != nil {
			return stepOutcome{}, err
		}
		created, err := h.provider.Insert(ctx, addr, vals)
		if err != nil {
			return stepOutcome{}, err
		}
		return stepOutcome{address: created.String()}, nil

	case OpList:
		rs, err := h.provider.List(ctx, addr, provider.ListOptions{
			Fields:    step.Fields,
			Filter:    filter,
			SortOrder: step.Sort,
		})
		if err != nil {
			return stepOutcome{}, err
		}
		defer rs.Close()
		return stepOutcome{count: int64(rs.Len()), columns: rs.Columns, rows: rs.Rows}, nil

	case OpUpdate:
		vals, err := values.FromMap(step.Values)
		if err != nil {
			return stepOutcome{}, err
		}
		n, err := h.provider.Update(ctx, addr, vals, filter)
		if err != nil {
			return stepOutcome{}, err
		}
		return stepOutcome{count: n}, nil

	case OpDelete:
		n, err := h.provider.Delete(ctx, addr, filter)
		if err != nil {
			return stepOutcome{}, err
		}
		return stepOutcome{count: n}, nil

	case OpType:
		kind, err := h.provider.ResolveType(addr)
		if err != nil {
			return stepOutcome{}, err
		}
		return stepOutcome{kind: kind}, nil
	}

	return stepOutcome{}, fmt.Errorf("unknown op %q", step.Op)
}

// address parses the step address, defaulting to the collection.
func (h *Harness) address(step Step) (contract.Address, error) {
	if step.Address == "" {
		return h.provider.CollectionAddress(), nil
	}
	return contract.ParseAddress(step.Address)
}

// traceResult renders the outcome of a successful op for the trace.
func (o stepOutcome) traceResult(op string) map[string]any {
	switch op {
	case OpInsert:
		return map[string]any{"address": o.address}
	case OpList:
		rows := o.rows
		if rows == nil {
			rows = []values.Values{}
		}
		return map[string]any{"columns": o.columns, "count": o.count, "rows": rows}
	case OpUpdate, OpDelete:
		return map[string]any{"count": o.count}
	case OpType:
		return map[string]any{"type": o.kind}
	}
	return nil
}

// checkExpect compares a step outcome with its expect clause and returns
// one message per mismatch.
func checkExpect(step Step, out stepOutcome, opErr error) []string {
	exp := step.Expect
	if exp == nil || exp.Error == "" {
		if opErr != nil {
			return []string{fmt.Sprintf("unexpected error: %v", opErr)}
		}
	} else {
		if opErr == nil {
			return []string{fmt.Sprintf("expected %s error, got success", exp.Error)}
		}
		if kind := provider.Kind(opErr); kind != exp.Error {
			return []string{fmt.Sprintf("expected %s error, got %s: %v", exp.Error, kind, opErr)}
		}
		return nil
	}
	if exp == nil {
		return nil
	}

	var msgs []string
	if exp.Address != "" && exp.Address != out.address {
		msgs = append(msgs, fmt.Sprintf("expected address %s, got %s", exp.Address, out.address))
	}
	if exp.Count != nil && *exp.Count != out.count {
		msgs = append(msgs, fmt.Sprintf("expected count %d, got %d", *exp.Count, out.count))
	}
	if exp.Type != "" && exp.Type != out.kind {
		msgs = append(msgs, fmt.Sprintf("expected type %s, got %s", exp.Type, out.kind))
	}
	if exp.Rows != nil {
		msgs = append(msgs, compareRows(exp.Rows, out.rows)...)
	}
	return msgs
}

// compareRows compares rows in order by canonical JSON.
func compareRows(expected []map[string]any, actual []values.Values) []string {
	if len(expected) != len(actual) {
		return []string{fmt.Sprintf("expected %d rows, got %d", len(expected), len(actual))}
	}
	var msgs []string
	for i := range expected {
		want, err := values.FromMap(expected[i])
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("rows[%d]: %v", i, err))
			continue
		}
		if !canonicalEqual(want, actual[i]) {
			wantJSON, _ := values.MarshalCanonical(want)
			gotJSON, _ := values.MarshalCanonical(actual[i])
			msgs = append(msgs, fmt.Sprintf("rows[%d]: expected %s, got %s", i, wantJSON, gotJSON))
		}
	}
	return msgs
}

// stepFilter builds the filter from where and args.
func stepFilter(step Step) (querysql.Filter, error) {
	if step.Where == "" {
		return querysql.Filter{}, nil
	}
	args := make([]any, len(step.Args))
	for i, a := range step.Args {
		v, err := values.FromAny(a)
		if err != nil {
			return querysql.Filter{}, fmt.Errorf("args[%d]: %w", i, err)
		}
		args[i] = values.ToSQL(v)
	}
	return querysql.Filter{Where: step.Where, Args: args}, nil
}

// stepArgs renders the inputs of a step for the trace.
func stepArgs(step Step) (map[string]any, error) {
	args := map[string]any{}
	if step.Values != nil {
		vals, err := values.FromMap(step.Values)
		if err != nil {
			return nil, err
		}
		args["values"] = vals
	}
	if step.Where != "" {
		filter, err := stepFilter(step)
		if err != nil {
			return nil, err
		}
		args["where"] = filter.Where
		args["args"] = filter.Args
	}
	if len(step.Fields) > 0 {
		args["fields"] = step.Fields
	}
	if step.Sort != "" {
		args["sort"] = step.Sort
	}
	if len(args) == 0 {
		return nil, nil
	}
	return args, nil
}

// canonicalEqual compares two values by their canonical JSON encoding.
func canonicalEqual(a, b any) bool {
	aj, err := values.MarshalCanonical(a)
	if err != nil {
		return false
	}
	bj, err := values.MarshalCanonical(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
