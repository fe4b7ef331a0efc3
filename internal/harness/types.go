package harness

// Trace event types.
const (
	EventOp     = "op"
	EventChange = "change"
)

// Outcome of an op event that did not fail.
const OutcomeOK = "ok"

// TraceEvent is one entry in a scenario trace: either a provider operation
// or a change notification the operation published.
type TraceEvent struct {
	Type    string         `json:"type"` // "op" or "change"
	Op      string         `json:"op,omitempty"`
	Address string         `json:"address"`
	Args    map[string]any `json:"args,omitempty"`
	Outcome string         `json:"outcome,omitempty"` // "ok" or an error kind
	Result  map[string]any `json:"result,omitempty"`
	Seq     int64          `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains ops and changes in sequence order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddOpTrace appends an operation to the trace.
func (r *Result) AddOpTrace(op, address string, args map[string]any, outcome string, result map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:    EventOp,
		Op:      op,
		Address: address,
		Args:    args,
		Outcome: outcome,
		Result:  result,
		Seq:     seq,
	})
}

// AddChangeTrace appends a change notification to the trace.
func (r *Result) AddChangeTrace(address string, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:    EventChange,
		Address: address,
		Seq:     seq,
	})
}
