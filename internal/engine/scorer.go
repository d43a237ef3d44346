package engine

import (
	"fmt"
	"strings"

	"github.com/callqa/slangcheck/internal/model"
)

// score aggregates the final occurrence list into an evaluation. Findings are
// grouped by phrase in order of first occurrence; the rubric is binary, so a
// single surviving occurrence fails the call.
func (e *Evaluator) score(callID int64, raw string, agent []model.TranscriptLine, cands []*candidate, trace *Trace) *model.Evaluation {
	var (
		findings   []model.Finding
		references []string
		byPhrase   = make(map[string]int) // phrase -> index into findings
	)

	occurrences := make([]model.MatchOccurrence, 0, len(cands))
	for _, c := range cands {
		occurrences = append(occurrences, c.occ)
		if c.occ.Suppressed {
			continue
		}

		trace.add(EventCounted, c.occ.Phrase, c.occ.LineIndex, c.occ.Context)
		references = append(references, c.reference)

		if i, ok := byPhrase[c.occ.Phrase]; ok {
			findings[i].Count++
			continue
		}
		byPhrase[c.occ.Phrase] = len(findings)
		findings = append(findings, model.Finding{
			Phrase:      c.occ.Phrase,
			Alternative: c.rule.Alternative,
			Count:       1,
		})
	}

	eval := &model.Evaluation{
		CallID:      callID,
		Criteria:    model.SlangCriteria,
		MaxScore:    model.MaxSlangScore,
		Findings:    findings,
		Occurrences: occurrences,
		References:  references,
		Context:     joinAgentLines(agent),
		Transcript:  raw,
	}

	if len(findings) == 0 {
		eval.Score = model.MaxSlangScore
		eval.Passed = true
		eval.Grade = "Yes"
		eval.Explanation = "Agent used proper English with no slang words."
		return eval
	}

	eval.Score = 0
	eval.Passed = false
	eval.Grade = "No"
	eval.Explanation = buildExplanation(findings)
	eval.ImprovementSuggestion = "Use proper English in customer interactions. Avoid casual slang and informal language."
	return eval
}

func buildExplanation(findings []model.Finding) string {
	used := make([]string, 0, len(findings))
	alternatives := make([]string, 0, len(findings))
	for _, f := range findings {
		plural := ""
		if f.Count > 1 {
			plural = "s"
		}
		used = append(used, fmt.Sprintf("'%s' (%d time%s)", f.Phrase, f.Count, plural))
		if f.Alternative != "" {
			alternatives = append(alternatives, fmt.Sprintf("'%s' -> '%s'", f.Phrase, f.Alternative))
		}
	}

	explanation := "Agent used inappropriate slang: " + strings.Join(used, ", ")
	if len(alternatives) > 0 {
		explanation += "\n\nProper alternatives: " + strings.Join(alternatives, ", ")
	}
	return explanation
}

func joinAgentLines(agent []model.TranscriptLine) string {
	lines := make([]string, 0, len(agent))
	for _, l := range agent {
		if l.Timestamp != "" {
			lines = append(lines, fmt.Sprintf("%s AGENT: %s", l.Timestamp, l.Text))
		} else {
			lines = append(lines, "AGENT: "+l.Text)
		}
	}
	return strings.Join(lines, "\n")
}
