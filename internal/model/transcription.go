package model

import "time"

// Transcription is a stored raw transcript for one call, as imported from the
// primary transcription source.
type Transcription struct {
	ImportedAt time.Time
	Transcript string
	HumanGrade string // reviewer grade from the validated dataset, empty if ungraded
	CallID     int64
}
