package engine

import (
	"fmt"
	"strings"
)

// EventKind classifies a trace event.
type EventKind string

// Trace event kinds, one per per-occurrence decision.
const (
	EventFound                EventKind = "found"
	EventSuppressedQuestion   EventKind = "suppressed-question"
	EventSuppressedUnverified EventKind = "suppressed-unverified"
	EventAlternateMissing     EventKind = "alternate-missing"
	EventAlternateError       EventKind = "alternate-error"
	EventCounted              EventKind = "counted"
)

// Event is one entry in the diagnostic trace of an evaluation.
type Event struct {
	Kind      EventKind
	Phrase    string
	Detail    string
	LineIndex int
}

func (e Event) String() string {
	s := fmt.Sprintf("%s: '%s' at line %d", e.Kind, e.Phrase, e.LineIndex)
	if e.Detail != "" {
		s += fmt.Sprintf(" (%s)", e.Detail)
	}
	return s
}

// Trace is the ordered sequence of decisions made while evaluating one call.
// It is observable output for audit logging, not stored state.
type Trace []Event

func (t *Trace) add(kind EventKind, phrase string, lineIndex int, detail string) {
	*t = append(*t, Event{Kind: kind, Phrase: phrase, LineIndex: lineIndex, Detail: detail})
}

func (t Trace) String() string {
	lines := make([]string, 0, len(t))
	for _, e := range t {
		lines = append(lines, e.String())
	}
	return strings.Join(lines, "\n")
}
