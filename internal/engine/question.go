package engine

import (
	"strings"

	"github.com/callqa/slangcheck/internal/model"
)

// applyQuestionContext suppresses casual-affirmative occurrences that bracket
// a question exchange in the agent's own speech. The window is the matched
// line plus the immediately preceding and following agent lines; interposed
// caller lines do not break adjacency.
func (e *Evaluator) applyQuestionContext(agent []model.TranscriptLine, cands []*candidate, trace *Trace) {
	for _, c := range cands {
		if !c.rule.QuestionContextCheck || c.occ.Suppressed {
			continue
		}
		if nearQuestion(agent, c.agentPos) {
			c.occ.Suppressed = true
			c.occ.Reason = model.SuppressionQuestionContext
			trace.add(EventSuppressedQuestion, c.occ.Phrase, c.occ.LineIndex, c.occ.Context)
		}
	}
}

// nearQuestion reports whether the agent line at pos, or its neighbor on
// either side in the agent-only subsequence, contains a question mark.
func nearQuestion(agent []model.TranscriptLine, pos int) bool {
	if strings.Contains(agent[pos].Text, "?") {
		return true
	}
	if pos > 0 && strings.Contains(agent[pos-1].Text, "?") {
		return true
	}
	if pos < len(agent)-1 && strings.Contains(agent[pos+1].Text, "?") {
		return true
	}
	return false
}
