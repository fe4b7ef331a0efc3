// Package harness runs conformance scenarios against the record store.
//
// A scenario is a YAML file listing provider operations. Each runs against a
// fresh in-memory database; the harness records a trace of operations and
// the change notifications they publish, checks each step's expect clause,
// then evaluates assertions over the trace and the final table.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	setup:
//	  - op: insert
//	    values: { product_name: Seed }
//	flow:
//	  - op: insert
//	    values: { product_name: Algorithms, quanity: 5 }
//	    expect:
//	      address: content://com.example.android.books/books/2
//	  - op: update
//	    address: content://com.example.android.books/books/2
//	    values: { quanity: 4 }
//	    expect: { count: 1 }
//	  - op: insert
//	    values: { price: 3 }
//	    expect: { error: validation }
//	assertions:
//	  - type: trace_order
//	    ops: [insert, update]
//	  - type: notified
//	    address: content://com.example.android.books/books/2
//	    count: 1
//	  - type: final_state
//	    where: { _id: 2 }
//	    expect: { quanity: 4 }
//
// Steps default to the collection address. Ops are insert, list, update,
// delete and type. Error kinds are validation, address, no_record and store.
//
// # Assertion Types
//
//   - trace_contains: an op appears in the trace with matching args
//   - trace_order: ops appear in the given order
//   - trace_count: an op appears exactly N times
//   - notified: changes were published at an address exactly N times
//   - final_state: one row matches where and has the expected fields
//
// # Deterministic Traces
//
// Sequence numbers come from a logical clock shared with the notification
// bus, starting at zero for every run. Setup steps advance the clock but are
// not traced. Traces serialize to canonical JSON for golden comparison.
package harness
