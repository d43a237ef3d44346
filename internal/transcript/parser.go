// Package transcript parses raw speaker-tagged call transcripts into ordered
// sequences of lines.
package transcript

import (
	"regexp"
	"strings"

	"github.com/callqa/slangcheck/internal/model"
)

// taggedLine matches an optional bracketed timestamp token followed by a
// line-initial speaker tag, e.g. "[00:12] AGENT: Yeah, I can help."
var taggedLine = regexp.MustCompile(`^(\[[^\]]*\])?\s*([A-Za-z][A-Za-z ._-]*?)\s*:\s*(.*)$`)

// Parse splits a raw transcript blob into speaker-tagged lines. Parsing is
// tolerant: lines without a recognized speaker tag (malformed timestamps
// included) are classified as OTHER rather than rejected, so a degraded
// transcript degrades matching quality instead of failing evaluation.
func Parse(raw string) []model.TranscriptLine {
	if raw == "" {
		return nil
	}

	rawLines := strings.Split(raw, "\n")
	lines := make([]model.TranscriptLine, 0, len(rawLines))
	for i, rawLine := range rawLines {
		lines = append(lines, parseLine(strings.TrimSpace(rawLine), i))
	}
	return lines
}

func parseLine(text string, index int) model.TranscriptLine {
	line := model.TranscriptLine{
		Speaker:   model.SpeakerOther,
		Text:      text,
		LineIndex: index,
	}

	m := taggedLine.FindStringSubmatch(text)
	if m == nil {
		return line
	}

	speaker := speakerForTag(m[2])
	if speaker == model.SpeakerOther {
		return line
	}

	line.Speaker = speaker
	line.Timestamp = m[1]
	line.Text = m[3]
	return line
}

func speakerForTag(tag string) model.Speaker {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "AGENT":
		return model.SpeakerAgent
	case "CALLER", "CUSTOMER":
		return model.SpeakerCaller
	default:
		return model.SpeakerOther
	}
}

// AgentLines returns the subsequence of lines spoken by the agent, preserving
// each line's original LineIndex. Question-adjacency is defined over this
// subsequence: a caller line between two agent lines does not break adjacency.
func AgentLines(lines []model.TranscriptLine) []model.TranscriptLine {
	agent := make([]model.TranscriptLine, 0, len(lines))
	for _, l := range lines {
		if l.IsAgent() {
			agent = append(agent, l)
		}
	}
	return agent
}
