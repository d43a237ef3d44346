package model

// SuppressionReason records why a match occurrence was excluded from scoring.
type SuppressionReason string

// Suppression reason constants.
const (
	SuppressionNone             SuppressionReason = "NONE"
	SuppressionQuestionContext  SuppressionReason = "QUESTION_CONTEXT"
	SuppressionNotCrossVerified SuppressionReason = "NOT_CROSS_VERIFIED"
)

// MatchOccurrence is one hit of a slang phrase in an agent line. Occurrences
// are created by the matcher and only ever mutated by the two filter stages;
// suppressed occurrences are kept for audit output rather than deleted.
type MatchOccurrence struct {
	Phrase     string
	Timestamp  string
	Context    string // text of the enclosing agent line
	Reason     SuppressionReason
	LineIndex  int
	Suppressed bool
}
