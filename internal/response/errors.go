package response

import (
	"encoding/json"
	"fmt"
)

// FieldErrors accumulates validation failures per field while remembering
// insertion order, so the summary message is deterministic instead of
// depending on map iteration. It marshals as a plain field -> messages map.
type FieldErrors struct {
	order []string
	msgs  map[string][]string
}

// NewFieldErrors returns an empty accumulator.
func NewFieldErrors() *FieldErrors {
	return &FieldErrors{msgs: make(map[string][]string)}
}

// Add records a failure message for a field.
func (e *FieldErrors) Add(field, message string) {
	if _, seen := e.msgs[field]; !seen {
		e.order = append(e.order, field)
	}
	e.msgs[field] = append(e.msgs[field], message)
}

// Empty reports whether no failures were recorded.
func (e *FieldErrors) Empty() bool { return len(e.order) == 0 }

// Has reports whether the field has at least one failure.
func (e *FieldErrors) Has(field string) bool { return len(e.msgs[field]) > 0 }

// count returns the total number of messages across all fields.
func (e *FieldErrors) count() int {
	n := 0
	for _, m := range e.msgs {
		n += len(m)
	}
	return n
}

// Summary returns the first recorded message, suffixed with how many more
// follow when the set holds several.
func (e *FieldErrors) Summary() string {
	if e.Empty() {
		return ""
	}
	first := e.msgs[e.order[0]][0]
	switch rest := e.count() - 1; {
	case rest == 1:
		return fmt.Sprintf("%s (and 1 more error)", first)
	case rest > 1:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	default:
		return first
	}
}

// MarshalJSON renders the accumulator as {"field": ["msg", ...], ...}.
func (e *FieldErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.msgs)
}
