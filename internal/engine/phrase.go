package engine

import (
	"regexp"
	"strings"

	"github.com/callqa/slangcheck/internal/model"
	"github.com/callqa/slangcheck/internal/transcript"
)

// FindPhrase returns every occurrence of a single phrase in the agent portion
// of a raw transcript, with no suppression applied. Used by the crosscheck
// audit, which inspects one phrase across both transcription sources.
func FindPhrase(raw, phrase string) []model.MatchOccurrence {
	phrase = strings.ToLower(phrase)
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)

	var occs []model.MatchOccurrence
	for _, line := range transcript.AgentLines(transcript.Parse(raw)) {
		text := strings.ToLower(line.Text)
		for range re.FindAllStringIndex(text, -1) {
			occs = append(occs, model.MatchOccurrence{
				Phrase:    phrase,
				Timestamp: line.Timestamp,
				Context:   line.Text,
				LineIndex: line.LineIndex,
				Reason:    model.SuppressionNone,
			})
		}
	}
	return occs
}

// CorroboratesPhrase reports whether the agent portion of raw contains the
// phrase under the separator-insensitive matching used for cross-verification.
func CorroboratesPhrase(raw, phrase string) bool {
	agent := transcript.AgentLines(transcript.Parse(raw))
	texts := make([]string, 0, len(agent))
	for _, l := range agent {
		texts = append(texts, strings.ToLower(l.Text))
	}
	return compileAlternatePattern(strings.ToLower(phrase)).MatchString(strings.Join(texts, "\n"))
}
