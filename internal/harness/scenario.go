package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/provider"
)

// Scenario defines a conformance scenario: provider operations run against
// a fresh database, checked step by step and by final assertions.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Authority overrides the provider authority. Default: the books
	// authority.
	Authority string `yaml:"authority,omitempty"`

	// Setup contains steps run before the flow. They must succeed and are
	// not traced.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the traced steps.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one provider operation.
type Step struct {
	// Op is one of insert, list, update, delete or type.
	Op string `yaml:"op"`

	// Address defaults to the collection address.
	Address string `yaml:"address,omitempty"`

	// Values is the record or partial update (insert, update).
	Values map[string]any `yaml:"values,omitempty"`

	// Where and Args form the filter (list, update, delete).
	Where string `yaml:"where,omitempty"`
	Args  []any  `yaml:"args,omitempty"`

	// Fields and Sort shape a list.
	Fields []string `yaml:"fields,omitempty"`
	Sort   string   `yaml:"sort,omitempty"`

	// Expect validates the step outcome. Nil expects success.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step. Only the fields that are
// set are checked.
type Expect struct {
	// Error is the expected error kind: validation, address, no_record or
	// store. Empty expects success.
	Error string `yaml:"error,omitempty"`

	// Address is the expected address returned by insert.
	Address string `yaml:"address,omitempty"`

	// Count is the expected row count of list, update or delete.
	Count *int64 `yaml:"count,omitempty"`

	// Rows are the expected list rows, in order, compared exactly.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Type is the expected result kind from type.
	Type string `yaml:"type,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an op appears with matching args
	// - "trace_order": ops appear in order
	// - "trace_count": an op appears exactly N times
	// - "notified": changes at an address were published exactly N times
	// - "final_state": one row matches where and has the expected fields
	Type string `yaml:"type"`

	// Op is the operation (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Args are the expected op args (trace_contains). Subset match.
	Args map[string]any `yaml:"args,omitempty"`

	// Ops is the expected op order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Address is the change address (notified).
	Address string `yaml:"address,omitempty"`

	// Count is the expected number of occurrences.
	Count int `yaml:"count,omitempty"`

	// Where selects the row by column equality (final_state).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values (final_state). Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Operation names.
const (
	OpInsert = "insert"
	OpList   = "list"
	OpUpdate = "update"
	OpDelete = "delete"
	OpType   = "type"
)

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertNotified      = "notified"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), &s.Setup[i]); err != nil {
			return err
		}
		if s.Setup[i].Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}

	for i := range s.Flow {
		if err := validateStep(fmt.Sprintf("flow[%d]", i), &s.Flow[i]); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(where string, step *Step) error {
	switch step.Op {
	case OpInsert, OpUpdate:
		if step.Values == nil {
			return fmt.Errorf("%s: values is required for %s (use an empty map for none)", where, step.Op)
		}
	case OpList, OpDelete, OpType:
	case "":
		return fmt.Errorf("%s: op is required", where)
	default:
		return fmt.Errorf("%s: unknown op %q", where, step.Op)
	}

	if step.Address != "" {
		if _, err := contract.ParseAddress(step.Address); err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
	}

	if step.Expect != nil {
		switch step.Expect.Error {
		case "", provider.KindValidation, provider.KindAddress, provider.KindNoRecord, provider.KindStore:
		default:
			return fmt.Errorf("%s.expect: unknown error kind %q", where, step.Expect.Error)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertNotified:
		if a.Address == "" {
			return fmt.Errorf("assertions[%d]: address is required for notified", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for notified", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
