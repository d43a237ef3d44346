// Package model defines the core domain models used throughout the application.
package model

// Speaker identifies who produced a transcript line.
type Speaker string

// Speaker constants.
const (
	SpeakerAgent  Speaker = "AGENT"
	SpeakerCaller Speaker = "CALLER"
	SpeakerOther  Speaker = "OTHER"
)

// TranscriptLine is a single speaker-tagged line of a call transcript.
// Lines are immutable once parsed; LineIndex preserves the transcript's
// original order and drives the question-adjacency window.
type TranscriptLine struct {
	Speaker   Speaker
	Timestamp string // opaque timestamp token, empty when the line had none
	Text      string
	LineIndex int
}

// IsAgent reports whether the line is attributed to the agent.
func (l TranscriptLine) IsAgent() bool {
	return l.Speaker == SpeakerAgent
}
