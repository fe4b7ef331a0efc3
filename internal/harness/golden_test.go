package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_BooksLifecycle(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/books_lifecycle.yaml")
	require.NoError(t, err)

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_BooksLifecycle -update
	err = RunWithGolden(t, scenario)
	require.NoError(t, err)
}

func TestRunWithGolden_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/books_lifecycle.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalTrace(scenario.Name, first.Trace)
	require.NoError(t, err)
	b, err := MarshalTrace(scenario.Name, second.Trace)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMarshalTrace_Canonical(t *testing.T) {
	trace := []TraceEvent{
		{
			Type:    EventOp,
			Op:      OpUpdate,
			Address: "content://com.example.android.books/books/1",
			Args:    map[string]any{"values": map[string]any{"quanity": 4}},
			Outcome: OutcomeOK,
			Result:  map[string]any{"count": int64(1)},
			Seq:     4,
		},
		{Type: EventChange, Address: "content://com.example.android.books/books/1", Seq: 5},
	}

	got, err := MarshalTrace("update", trace)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"update","trace":[`+
			`{"address":"content://com.example.android.books/books/1","args":{"values":{"quanity":4}},"op":"update","outcome":"ok","result":{"count":1},"seq":4,"type":"op"},`+
			`{"address":"content://com.example.android.books/books/1","seq":5,"type":"change"}]}`,
		string(got))
}
