// Package engine implements the slang detection and verification engine: it
// matches configured slang phrases in agent speech, applies the
// question-context exemption and the dual-transcript cross-verification rule,
// and scores each call.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/callqa/slangcheck/internal/common"
	"github.com/callqa/slangcheck/internal/model"
	"github.com/callqa/slangcheck/internal/service"
	"github.com/callqa/slangcheck/internal/transcript"
)

// Options holds the recognized evaluation options.
type Options struct {
	// VerifiedPhrases overrides which registered phrases require
	// cross-verification. Nil means the rule flags decide.
	VerifiedPhrases   []string
	QuestionContext   bool
	CrossVerification bool
}

// DefaultOptions returns the default configuration: both suppression
// mechanisms enabled, verified phrases taken from the rule registry.
func DefaultOptions() Options {
	return Options{
		QuestionContext:   true,
		CrossVerification: true,
	}
}

// Validate checks the options against a rule registry. An unknown phrase in
// VerifiedPhrases is a configuration error: it would silently verify nothing.
func (o Options) Validate(rules *model.RuleSet) error {
	for _, phrase := range o.VerifiedPhrases {
		if _, ok := rules.Lookup(phrase); !ok {
			return fmt.Errorf("%w: verified phrase %q is not a registered slang rule",
				common.ErrInvalidConfig, phrase)
		}
	}
	return nil
}

// Evaluator scores call transcripts for slang usage. It is safe to reuse
// across calls: the only per-call state (the alternate-transcription cache)
// is scoped to a single Evaluate invocation.
type Evaluator struct {
	rules       *model.RuleSet
	alt         service.AlternateSource
	patterns    []phrasePattern
	altPatterns map[string]*regexp.Regexp
	verified    map[string]bool
	opts        Options
}

// New creates an evaluator for the given rule registry. alt may be nil when
// cross-verification is disabled. Invalid options are rejected up front; this
// is the only condition that halts evaluation before it starts.
func New(rules *model.RuleSet, alt service.AlternateSource, opts Options) (*Evaluator, error) {
	if rules == nil {
		rules = model.DefaultRuleSet()
	}
	if err := opts.Validate(rules); err != nil {
		return nil, err
	}

	e := &Evaluator{
		rules:    rules,
		alt:      alt,
		opts:     opts,
		patterns: compilePatterns(rules),
		verified: make(map[string]bool),
	}

	if opts.VerifiedPhrases != nil {
		for _, phrase := range opts.VerifiedPhrases {
			// Keys must match the lowercased registry phrases carried on
			// occurrences, whatever casing the configuration used.
			e.verified[strings.ToLower(strings.TrimSpace(phrase))] = true
		}
	} else {
		for _, r := range rules.Rules() {
			if r.CrossVerify {
				e.verified[r.Phrase] = true
			}
		}
	}

	e.altPatterns = make(map[string]*regexp.Regexp, len(e.verified))
	for phrase := range e.verified {
		e.altPatterns[phrase] = compileAlternatePattern(phrase)
	}

	return e, nil
}

// Evaluate runs the full pipeline for one call: parse, match, filter, verify,
// score. It never fails on input; malformed transcripts degrade to fewer
// recognized agent lines and an empty transcript passes with no findings. The
// returned trace is the ordered list of per-occurrence decisions.
func (e *Evaluator) Evaluate(ctx context.Context, callID int64, raw string) (*model.Evaluation, Trace) {
	var trace Trace

	lines := transcript.Parse(raw)
	agent := transcript.AgentLines(lines)

	cands := e.match(agent, &trace)

	if e.opts.QuestionContext {
		e.applyQuestionContext(agent, cands, &trace)
	}
	if e.opts.CrossVerification {
		e.crossVerify(ctx, callID, cands, &trace)
	}

	eval := e.score(callID, raw, agent, cands, &trace)
	eval.CreatedAt = time.Now()
	return eval, trace
}
