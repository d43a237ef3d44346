package engine

import (
	"context"
	"strings"

	"github.com/callqa/slangcheck/internal/model"
	"github.com/callqa/slangcheck/internal/service"
	"github.com/callqa/slangcheck/internal/transcript"
)

// altCache memoizes the alternate-transcription fetch for one call so that
// repeated verified occurrences trigger at most one lookup. It is created per
// Evaluate invocation and never shared across calls.
type altCache struct {
	src       service.AlternateSource
	agentText string
	err       error
	fetched   bool
	present   bool
}

// agentPortion returns the lowercased agent-tagged portion of the alternate
// transcript, fetching it on first use. present is false when no alternate
// transcript exists for the call at all.
func (c *altCache) agentPortion(ctx context.Context, callID int64) (agentText string, present bool, err error) {
	if c.fetched {
		return c.agentText, c.present, c.err
	}
	c.fetched = true

	raw, fetchErr := c.src.FetchTranscript(ctx, callID)
	if fetchErr != nil {
		c.err = fetchErr
		return "", false, fetchErr
	}
	if raw == "" {
		return "", false, nil
	}
	c.present = true

	agent := transcript.AgentLines(transcript.Parse(raw))
	texts := make([]string, 0, len(agent))
	for _, l := range agent {
		texts = append(texts, strings.ToLower(l.Text))
	}
	c.agentText = strings.Join(texts, "\n")
	return c.agentText, true, nil
}

// crossVerify suppresses occurrences of verified phrases that the alternate
// transcription does not corroborate. The policy fails open toward counting
// as slang: a missing or unreadable alternate transcript never clears a
// flagged phrase.
func (e *Evaluator) crossVerify(ctx context.Context, callID int64, cands []*candidate, trace *Trace) {
	if e.alt == nil {
		return
	}

	cache := &altCache{src: e.alt}
	for _, c := range cands {
		if !e.verified[c.occ.Phrase] || c.occ.Suppressed {
			continue
		}

		agentText, present, err := cache.agentPortion(ctx, callID)
		if err != nil {
			trace.add(EventAlternateError, c.occ.Phrase, c.occ.LineIndex, err.Error())
			continue
		}
		if !present {
			trace.add(EventAlternateMissing, c.occ.Phrase, c.occ.LineIndex, "")
			continue
		}

		if !e.altPatterns[c.occ.Phrase].MatchString(agentText) {
			c.occ.Suppressed = true
			c.occ.Reason = model.SuppressionNotCrossVerified
			trace.add(EventSuppressedUnverified, c.occ.Phrase, c.occ.LineIndex, c.occ.Context)
		}
	}
}
