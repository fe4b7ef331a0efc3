package harness

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/books/internal/provider"
	"github.com/roach88/books/internal/querysql"
	"github.com/roach88/books/internal/values"
)

// validIdentifier matches column names usable in a final_state where.
// Identifiers cannot be bound as parameters.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			if event.Type == EventOp {
				fmt.Fprintf(&buf, "  [%d] %s %s %s\n", event.Seq, event.Op, event.Address, event.Outcome)
			} else {
				fmt.Fprintf(&buf, "  [%d] change %s\n", event.Seq, event.Address)
			}
		}
	}

	return buf.String()
}

// assertTraceContains checks that the trace contains an op matching the
// expected args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type == EventOp && event.Op == assertion.Op && matchArgs(event.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("op %s with args %v", assertion.Op, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that ops appear in the specified order.
// Ops don't need to be consecutive; each is matched at its first occurrence
// after the previous one.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	pos := 0
	for _, want := range assertion.Ops {
		found := false
		for pos < len(trace) {
			event := trace[pos]
			pos++
			if event.Type == EventOp && event.Op == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
				Actual:   fmt.Sprintf("%s not found after position %d", want, pos),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that the op appears exactly the specified number
// of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventOp && event.Op == assertion.Op {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertNotified checks how many changes were published at exactly the
// given address.
func assertNotified(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventChange && event.Address == assertion.Address {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertNotified,
			Expected: fmt.Sprintf("%d changes at %s", assertion.Count, assertion.Address),
			Actual:   fmt.Sprintf("%d changes", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState lists the collection with an equality filter built from
// assertion.Where and checks the expected fields of the single matching row.
func assertFinalState(ctx context.Context, p *provider.Provider, assertion Assertion) error {
	filter, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	rs, err := p.List(ctx, p.CollectionAddress(), provider.ListOptions{Filter: filter})
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("list %s", p.CollectionAddress()),
			Actual:   fmt.Sprintf("list error: %v", err),
		}
	}
	defer rs.Close()

	whereDesc := formatWhereClause(assertion.Where)
	switch rs.Len() {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row where %s", whereDesc),
			Actual:   "row not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row where %s", whereDesc),
			Actual:   fmt.Sprintf("%d rows matched (assertion is ambiguous)", rs.Len()),
		}
	}

	row := rs.Rows[0]
	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		actual, ok := row.Get(key)
		if !ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, rs.Columns),
			}
		}
		expected, err := values.FromAny(assertion.Expect[key])
		if err != nil {
			return fmt.Errorf("final_state expect %q: %w", key, err)
		}
		if !canonicalEqual(expected, actual) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v", key, values.Native(expected)),
				Actual:   fmt.Sprintf("field %q = %v", key, values.Native(actual)),
			}
		}
	}
	return nil
}

// buildWhereClause constructs a parameterized filter from where.
// Keys are sorted for determinism.
func buildWhereClause(where map[string]any) (querysql.Filter, error) {
	if len(where) == 0 {
		return querysql.Filter{}, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return querysql.Filter{}, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		v, err := values.FromAny(where[key])
		if err != nil {
			return querysql.Filter{}, fmt.Errorf("where %q: %w", key, err)
		}
		if _, isNull := v.(values.Null); isNull {
			clauses = append(clauses, fmt.Sprintf("%q IS NULL", key))
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%q = ?", key))
		args = append(args, values.ToSQL(v))
	}

	return querysql.Filter{Where: strings.Join(clauses, " AND "), Args: args}, nil
}

// formatWhereClause creates a human-readable description of where.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// matchArgs checks that actual contains every expected key with an equal
// canonical value. Extra keys in actual are ignored.
func matchArgs(actual map[string]any, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok {
			return false
		}
		if !canonicalEqual(normalizeYAML(want), got) {
			return false
		}
	}
	return true
}

// normalizeYAML converts decoded YAML into types MarshalCanonical accepts.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = normalizeYAML(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeYAML(e)
		}
		return out
	default:
		if scalar, err := values.FromAny(val); err == nil {
			return scalar
		}
		return val
	}
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Provider *provider.Provider
	Ctx      context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides provider access for final_state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertNotified:
			err = assertNotified(result.Trace, assertion)
		case AssertFinalState:
			if actx == nil || actx.Provider == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires a provider", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Provider, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
