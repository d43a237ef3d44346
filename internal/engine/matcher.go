package engine

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/callqa/slangcheck/internal/model"
)

// phrasePattern pairs a rule with its compiled whole-word pattern.
type phrasePattern struct {
	re   *regexp.Regexp
	rule model.SlangRule
}

// candidate is a match occurrence plus the bookkeeping the filter stages
// need: the rule it matched and the occurrence's position within the
// agent-only subsequence.
type candidate struct {
	occ       model.MatchOccurrence
	reference string
	rule      model.SlangRule
	agentPos  int
}

// compilePatterns builds a case-insensitive whole-word pattern per rule.
// Boundaries are alphanumeric edges, so "gonna" matches in "gonna-be-late"
// and "gonna be late" alike, once per literal occurrence.
func compilePatterns(rules *model.RuleSet) []phrasePattern {
	patterns := make([]phrasePattern, 0, rules.Len())
	for _, r := range rules.Rules() {
		patterns = append(patterns, phrasePattern{
			rule: r,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(r.Phrase) + `\b`),
		})
	}
	return patterns
}

// compileAlternatePattern builds the pattern used to corroborate a phrase in
// the alternate transcription. Internal hyphens and spaces are normalized so
// "bye-bye" is confirmed by "bye bye": the two transcription sources do not
// agree on separator conventions.
func compileAlternatePattern(phrase string) *regexp.Regexp {
	parts := regexp.MustCompile(`[\s-]+`).Split(phrase, -1)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`\b` + strings.Join(parts, `[\s-]+`) + `\b`)
}

// match scans the agent lines for every rule and emits one candidate per
// occurrence. No suppression decision is made here.
func (e *Evaluator) match(agent []model.TranscriptLine, trace *Trace) []*candidate {
	var cands []*candidate
	for pos, line := range agent {
		text := strings.ToLower(line.Text)
		for _, p := range e.patterns {
			for _, loc := range p.re.FindAllStringIndex(text, -1) {
				c := &candidate{
					rule:     p.rule,
					agentPos: pos,
					occ: model.MatchOccurrence{
						Phrase:    p.rule.Phrase,
						Timestamp: line.Timestamp,
						Context:   line.Text,
						LineIndex: line.LineIndex,
						Reason:    model.SuppressionNone,
					},
					reference: formatReference(line.Timestamp, p.rule, text, loc[0], loc[1]),
				}
				cands = append(cands, c)
				trace.add(EventFound, c.occ.Phrase, c.occ.LineIndex, snippet(text, loc[0], loc[1]))
			}
		}
	}
	return cands
}

// snippet extracts a short window of text around a match for reporting. The
// window is widened to rune boundaries so multi-byte text is never split.
func snippet(text string, start, end int) string {
	const pad = 10
	from := start - pad
	if from < 0 {
		from = 0
	}
	to := end + pad
	if to > len(text) {
		to = len(text)
	}
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}
	return text[from:to]
}

func formatReference(timestamp string, rule model.SlangRule, text string, start, end int) string {
	return fmt.Sprintf("%s - '%s' (proper: '%s') in '%s'",
		timestamp, rule.Phrase, rule.Alternative, snippet(text, start, end))
}
