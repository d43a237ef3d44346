package model

import "time"

// Scoring constants. The rubric is binary: a call either passes with full
// marks or fails with zero.
const (
	MaxSlangScore = 2
	SlangCriteria = "No Slang (Using Proper English)"
)

// Finding is one distinct non-suppressed slang phrase detected in a call,
// with its occurrence count and suggested alternative.
type Finding struct {
	Phrase      string
	Alternative string
	Count       int
}

// Evaluation is the scored result for one call. It is derived once from the
// final set of occurrences and immutable after creation.
type Evaluation struct {
	CreatedAt             time.Time
	Grade                 string // "Yes" if passed, "No" otherwise
	Criteria              string
	Explanation           string
	ImprovementSuggestion string
	Context               string // agent lines joined, for reviewer reference
	Transcript            string // the raw transcript that was evaluated
	Findings              []Finding
	Occurrences           []MatchOccurrence // all occurrences, suppressed included
	References            []string          // human-readable per-occurrence notes
	TranscriptionID       int64
	CallID                int64
	Score                 int
	MaxScore              int
	Passed                bool
}

// HasSlang reports whether any non-suppressed occurrence survived filtering.
func (e *Evaluation) HasSlang() bool {
	return len(e.Findings) > 0
}
