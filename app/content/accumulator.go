package content

import (
	"encoding/json"
	"strings"
)

// Accumulator owns the running concatenation of answer text for one streaming
// request and attempts to carve a complete JSON array out of it after every
// append. Parse failures are expected while the array is still arriving and are
// silently retried on the next Feed call.
type Accumulator struct {
	buf       strings.Builder
	satisfied bool
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Feed appends text to the buffer and tries to parse the span from the first
// '[' to the last ']' as a JSON array of objects. Once a parse succeeds the
// accumulator is satisfied and all further calls are no-ops.
func (a *Accumulator) Feed(text string) ([]map[string]any, bool) {
	if a.satisfied {
		return nil, false
	}

	a.buf.WriteString(text)

	s := a.buf.String()
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return nil, false
	}

	var results []map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &results); err != nil {
		// Incomplete or invalid so far, keep accumulating.
		return nil, false
	}

	a.satisfied = true
	return results, true
}

// Satisfied reports whether a complete array has already been extracted.
func (a *Accumulator) Satisfied() bool {
	return a.satisfied
}

// Len returns the number of buffered bytes.
func (a *Accumulator) Len() int {
	return a.buf.Len()
}
