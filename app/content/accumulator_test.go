package content

import (
	"testing"
)

func TestAccumulator_Feed_IncrementalParse(t *testing.T) {
	acc := NewAccumulator()

	results, ok := acc.Feed("[")
	if ok || results != nil {
		t.Errorf("Expected no results after feeding '[', got %v", results)
	}

	results, ok = acc.Feed(`{"a":1}`)
	if ok || results != nil {
		t.Errorf("Expected no results after feeding object body, got %v", results)
	}

	results, ok = acc.Feed("]")
	if !ok {
		t.Fatal("Expected successful parse after closing bracket")
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if v, _ := results[0]["a"].(float64); v != 1 {
		t.Errorf("Expected a=1, got %v", results[0]["a"])
	}
}

func TestAccumulator_Feed_MidTokenSplit(t *testing.T) {
	acc := NewAccumulator()

	chunks := []string{`[{"ti`, `tle":"X","ty`, `pe":"article"`, `}`, `]`}
	var results []map[string]any
	var ok bool
	for i, chunk := range chunks {
		results, ok = acc.Feed(chunk)
		if ok && i != len(chunks)-1 {
			t.Errorf("Parse succeeded too early at chunk %d", i)
		}
	}

	if !ok {
		t.Fatal("Expected successful parse after all chunks")
	}
	if results[0]["title"] != "X" {
		t.Errorf("Expected title 'X', got %v", results[0]["title"])
	}
}

func TestAccumulator_Feed_SurroundingProse(t *testing.T) {
	acc := NewAccumulator()

	results, ok := acc.Feed(`Here are your results: [{"title":"Y"}] hope this helps!`)
	if !ok {
		t.Fatal("Expected parse to succeed with surrounding prose")
	}
	if len(results) != 1 || results[0]["title"] != "Y" {
		t.Errorf("Expected single item with title 'Y', got %v", results)
	}
}

func TestAccumulator_Feed_SatisfiedIsTerminal(t *testing.T) {
	acc := NewAccumulator()

	if _, ok := acc.Feed(`[{"a":1}]`); !ok {
		t.Fatal("Expected first parse to succeed")
	}
	if !acc.Satisfied() {
		t.Error("Accumulator should be satisfied after successful parse")
	}

	if results, ok := acc.Feed(`[{"b":2}]`); ok || results != nil {
		t.Errorf("Feed after satisfaction should be a no-op, got %v", results)
	}
}

func TestAccumulator_Feed_NonObjectList(t *testing.T) {
	acc := NewAccumulator()

	// A valid JSON array whose elements are not objects must not satisfy.
	results, ok := acc.Feed(`[1, 2, 3]`)
	if ok || results != nil {
		t.Errorf("Expected list of scalars to be rejected, got %v", results)
	}
	if acc.Satisfied() {
		t.Error("Accumulator should not be satisfied by a non-object list")
	}
}

func TestAccumulator_Feed_EmptyArray(t *testing.T) {
	acc := NewAccumulator()

	results, ok := acc.Feed(`[]`)
	if !ok {
		t.Fatal("Expected empty array to parse")
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 results, got %d", len(results))
	}
}
