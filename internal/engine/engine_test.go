package engine

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callqa/slangcheck/internal/common"
	"github.com/callqa/slangcheck/internal/model"
	"github.com/callqa/slangcheck/internal/service"
	"github.com/callqa/slangcheck/internal/testutil"
)

func newEvaluator(t *testing.T, alt service.AlternateSource, opts Options) *Evaluator {
	t.Helper()
	e, err := New(model.DefaultRuleSet(), alt, opts)
	require.NoError(t, err)
	return e
}

func TestEvaluateNoAgentLines(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty transcript", raw: ""},
		{name: "caller only", raw: "CALLER: Yeah whatever.\nCALLER: Gonna hang up now."},
		{name: "untagged noise", raw: "line noise\nmore noise"},
	}

	e := newEvaluator(t, nil, DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, trace := e.Evaluate(context.Background(), 1, tt.raw)
			assert.True(t, eval.Passed)
			assert.Equal(t, model.MaxSlangScore, eval.Score)
			assert.Empty(t, eval.Findings)
			assert.Empty(t, eval.Occurrences)
			assert.Empty(t, trace)
		})
	}
}

func TestEvaluatePlainSlangNeverSuppressed(t *testing.T) {
	// "gonna" carries neither policy flag: question marks nearby and a
	// missing alternate transcript must not clear it.
	raw := "AGENT: Can I put you on hold?\nAGENT: We are gonna look into it, okay?"

	e := newEvaluator(t, &testutil.StubAlternateSource{}, DefaultOptions())
	eval, _ := e.Evaluate(context.Background(), 7, raw)

	require.Len(t, eval.Findings, 1)
	assert.Equal(t, "gonna", eval.Findings[0].Phrase)
	assert.Equal(t, 1, eval.Findings[0].Count)
	assert.Equal(t, "going to", eval.Findings[0].Alternative)
	assert.False(t, eval.Passed)
	assert.Equal(t, 0, eval.Score)
}

func TestEvaluateIdempotent(t *testing.T) {
	raw := "[00:00] AGENT: Yeah, thanks for your patience.\n[00:10] AGENT: Lemme check that."
	alt := &testutil.StubAlternateSource{}

	e := newEvaluator(t, alt, DefaultOptions())
	first, firstTrace := e.Evaluate(context.Background(), 3, raw)
	second, secondTrace := e.Evaluate(context.Background(), 3, raw)

	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.Occurrences, second.Occurrences)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, firstTrace, secondTrace)
}

func TestQuestionContextSuppression(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		suppressed bool
	}{
		{
			name:       "question mark on the same line",
			raw:        "AGENT: Yeah, can I get your name?",
			suppressed: true,
		},
		{
			name:       "question mark on the following agent line",
			raw:        "AGENT: Yeah, I can help.\nAGENT: What's your account number?",
			suppressed: true,
		},
		{
			name:       "question mark on the preceding agent line",
			raw:        "AGENT: What's your account number?\nAGENT: Yeah, I see it.",
			suppressed: true,
		},
		{
			name:       "adjacency skips an interposed caller line",
			raw:        "AGENT: Yeah, one moment.\nCALLER: Sure.\nAGENT: What's your account number?",
			suppressed: true,
		},
		{
			name:       "isolated affirmative is counted",
			raw:        "AGENT: Yeah, thanks for your patience.",
			suppressed: false,
		},
		{
			name:       "question mark in caller speech does not exempt",
			raw:        "AGENT: Yeah, one moment.\nCALLER: Could you hurry?\nAGENT: Thanks for holding.",
			suppressed: false,
		},
		{
			name:       "question two agent lines away does not exempt",
			raw:        "AGENT: Yeah, one moment.\nAGENT: Thanks for holding.\nAGENT: What's your account number?",
			suppressed: false,
		},
	}

	e := newEvaluator(t, nil, DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, _ := e.Evaluate(context.Background(), 11, tt.raw)

			require.Len(t, eval.Occurrences, 1)
			occ := eval.Occurrences[0]
			assert.Equal(t, "yeah", occ.Phrase)
			assert.Equal(t, tt.suppressed, occ.Suppressed)
			if tt.suppressed {
				assert.Equal(t, model.SuppressionQuestionContext, occ.Reason)
				assert.True(t, eval.Passed)
				assert.Empty(t, eval.Findings)
			} else {
				assert.Equal(t, model.SuppressionNone, occ.Reason)
				assert.False(t, eval.Passed)
				require.Len(t, eval.Findings, 1)
				assert.Equal(t, "yeah", eval.Findings[0].Phrase)
			}
		})
	}
}

func TestQuestionContextDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.QuestionContext = false

	e := newEvaluator(t, nil, opts)
	eval, _ := e.Evaluate(context.Background(), 11, "AGENT: Yeah, can I get your name?")

	require.Len(t, eval.Findings, 1)
	assert.Equal(t, "yeah", eval.Findings[0].Phrase)
	assert.False(t, eval.Passed)
}

func TestCrossVerification(t *testing.T) {
	primary := "[01:00] AGENT: Alright, bye-bye now"

	tests := []struct {
		name       string
		alternate  string
		suppressed bool
	}{
		{
			name:       "phrase absent from alternate suppresses",
			alternate:  "[01:00] AGENT: Alright, goodbye now",
			suppressed: true,
		},
		{
			name:       "exact form in alternate corroborates",
			alternate:  "[01:02] AGENT: okay bye-bye",
			suppressed: false,
		},
		{
			name:       "hyphenless form in alternate corroborates",
			alternate:  "[01:02] AGENT: okay bye bye",
			suppressed: false,
		},
		{
			name:       "phrase in alternate caller speech does not corroborate",
			alternate:  "[01:02] CALLER: bye bye\n[01:03] AGENT: goodbye",
			suppressed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alt := &testutil.StubAlternateSource{Transcripts: map[int64]string{42: tt.alternate}}
			e := newEvaluator(t, alt, DefaultOptions())

			eval, _ := e.Evaluate(context.Background(), 42, primary)

			require.Len(t, eval.Occurrences, 1)
			occ := eval.Occurrences[0]
			assert.Equal(t, "bye-bye", occ.Phrase)
			assert.Equal(t, tt.suppressed, occ.Suppressed)
			if tt.suppressed {
				assert.Equal(t, model.SuppressionNotCrossVerified, occ.Reason)
				assert.True(t, eval.Passed)
			} else {
				assert.False(t, eval.Passed)
				require.Len(t, eval.Findings, 1)
				assert.Equal(t, "bye-bye", eval.Findings[0].Phrase)
			}
		})
	}
}

func TestCrossVerificationFailsOpen(t *testing.T) {
	primary := "AGENT: Alright, bye-bye now"

	t.Run("no alternate transcript", func(t *testing.T) {
		alt := &testutil.StubAlternateSource{}
		e := newEvaluator(t, alt, DefaultOptions())

		eval, trace := e.Evaluate(context.Background(), 42, primary)

		require.Len(t, eval.Findings, 1)
		assert.Equal(t, "bye-bye", eval.Findings[0].Phrase)
		assert.False(t, eval.Passed)
		assert.Contains(t, trace, Event{Kind: EventAlternateMissing, Phrase: "bye-bye", LineIndex: 0})
	})

	t.Run("lookup error", func(t *testing.T) {
		alt := &testutil.StubAlternateSource{Err: errors.New("connection refused")}
		e := newEvaluator(t, alt, DefaultOptions())

		eval, trace := e.Evaluate(context.Background(), 42, primary)

		require.Len(t, eval.Findings, 1)
		assert.False(t, eval.Passed)
		require.NotEmpty(t, trace)
		assert.Equal(t, EventAlternateError, trace[len(trace)-2].Kind)
	})

	t.Run("no source configured", func(t *testing.T) {
		e := newEvaluator(t, nil, DefaultOptions())

		eval, _ := e.Evaluate(context.Background(), 42, primary)
		require.Len(t, eval.Findings, 1)
		assert.False(t, eval.Passed)
	})
}

func TestCrossVerificationFetchesOnce(t *testing.T) {
	// Three verified occurrences across two phrases: one fetch.
	raw := "AGENT: All righty, bye-bye now\nAGENT: bye-bye!"
	alt := &testutil.StubAlternateSource{Transcripts: map[int64]string{9: "AGENT: goodbye"}}

	e := newEvaluator(t, alt, DefaultOptions())
	eval, _ := e.Evaluate(context.Background(), 9, raw)

	assert.Equal(t, 1, alt.Fetches)
	assert.Len(t, eval.Occurrences, 3)
	assert.True(t, eval.Passed)
}

func TestCrossVerificationDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.CrossVerification = false
	alt := &testutil.StubAlternateSource{Transcripts: map[int64]string{9: "AGENT: goodbye"}}

	e := newEvaluator(t, alt, opts)
	eval, _ := e.Evaluate(context.Background(), 9, "AGENT: Alright, bye-bye now")

	assert.Zero(t, alt.Fetches)
	require.Len(t, eval.Findings, 1)
	assert.Equal(t, "bye-bye", eval.Findings[0].Phrase)
}

func TestVerifiedPhrasesOverride(t *testing.T) {
	// Override moves verification to "gonna"; "bye-bye" then counts without
	// corroboration and "gonna" requires it.
	opts := DefaultOptions()
	opts.VerifiedPhrases = []string{"gonna"}
	alt := &testutil.StubAlternateSource{Transcripts: map[int64]string{5: "AGENT: nothing relevant"}}

	e := newEvaluator(t, alt, opts)
	eval, _ := e.Evaluate(context.Background(), 5, "AGENT: We are gonna say bye-bye")

	require.Len(t, eval.Findings, 1)
	assert.Equal(t, "bye-bye", eval.Findings[0].Phrase)

	var gonna model.MatchOccurrence
	for _, occ := range eval.Occurrences {
		if occ.Phrase == "gonna" {
			gonna = occ
		}
	}
	assert.True(t, gonna.Suppressed)
	assert.Equal(t, model.SuppressionNotCrossVerified, gonna.Reason)
}

func TestVerifiedPhrasesCaseInsensitive(t *testing.T) {
	// Configuration casing must not decide whether verification runs: a
	// mixed-case entry verifies the same lowercased registry phrase.
	opts := DefaultOptions()
	opts.VerifiedPhrases = []string{"Bye-Bye"}
	alt := &testutil.StubAlternateSource{Transcripts: map[int64]string{8: "AGENT: goodbye now"}}

	e := newEvaluator(t, alt, opts)
	eval, _ := e.Evaluate(context.Background(), 8, "AGENT: Alright, bye-bye now")

	assert.Equal(t, 1, alt.Fetches)
	require.Len(t, eval.Occurrences, 1)
	assert.True(t, eval.Occurrences[0].Suppressed)
	assert.Equal(t, model.SuppressionNotCrossVerified, eval.Occurrences[0].Reason)
	assert.True(t, eval.Passed)
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	opts.VerifiedPhrases = []string{"totally-unknown"}

	_, err := New(model.DefaultRuleSet(), nil, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidConfig))
}

func TestMultipleOccurrencesOnOneLine(t *testing.T) {
	e := newEvaluator(t, nil, DefaultOptions())
	eval, _ := e.Evaluate(context.Background(), 2, "AGENT: We are gonna check and gonna call back.")

	require.Len(t, eval.Findings, 1)
	assert.Equal(t, 2, eval.Findings[0].Count)
	assert.Len(t, eval.Occurrences, 2)
}

func TestSnippetKeepsRunesWhole(t *testing.T) {
	// Multi-byte text on both sides of the match: the context window must
	// widen to rune boundaries instead of splitting a rune.
	raw := "AGENT: ééééé gonna ééééé"

	e := newEvaluator(t, nil, DefaultOptions())
	eval, trace := e.Evaluate(context.Background(), 4, raw)

	require.Len(t, eval.Findings, 1)
	for _, ev := range trace {
		assert.True(t, utf8.ValidString(ev.Detail), "trace detail %q is not valid UTF-8", ev.Detail)
	}
	for _, ref := range eval.References {
		assert.True(t, utf8.ValidString(ref), "reference %q is not valid UTF-8", ref)
	}
}

func TestWordBoundaryMatching(t *testing.T) {
	e := newEvaluator(t, nil, DefaultOptions())

	// "ya" must not match inside "yard"; "cool" must not match "cooldown";
	// hyphen edges still count as boundaries.
	eval, _ := e.Evaluate(context.Background(), 2, "AGENT: The yard cooldown is gonna-be-late territory.")

	require.Len(t, eval.Findings, 1)
	assert.Equal(t, "gonna", eval.Findings[0].Phrase)
}

func TestFindingsOrderedByFirstOccurrence(t *testing.T) {
	// "lemme" registers after "nope" but appears first in the call.
	raw := "AGENT: Lemme check.\nAGENT: Nope, not seeing it."

	e := newEvaluator(t, nil, DefaultOptions())
	eval, _ := e.Evaluate(context.Background(), 6, raw)

	require.Len(t, eval.Findings, 2)
	assert.Equal(t, "lemme", eval.Findings[0].Phrase)
	assert.Equal(t, "nope", eval.Findings[1].Phrase)
}

func TestEvaluateEndToEnd(t *testing.T) {
	raw := "[00:00] AGENT: Good afternoon, how may I help you?\n" +
		"[00:12] AGENT: Yeah, I can help. What's your account number?\n" +
		"[00:50] AGENT: Yeah, I see that. We are gonna look into it."

	e := newEvaluator(t, nil, DefaultOptions())
	eval, trace := e.Evaluate(context.Background(), 1001, raw)

	// Both affirmatives bracket the question exchange; only "gonna" counts.
	require.Len(t, eval.Findings, 1)
	assert.Equal(t, "gonna", eval.Findings[0].Phrase)
	assert.Equal(t, 1, eval.Findings[0].Count)
	assert.Equal(t, 0, eval.Score)
	assert.False(t, eval.Passed)
	assert.Equal(t, "No", eval.Grade)

	assert.Len(t, eval.Occurrences, 3)
	suppressed := 0
	for _, occ := range eval.Occurrences {
		if occ.Suppressed {
			suppressed++
			assert.Equal(t, "yeah", occ.Phrase)
			assert.Equal(t, model.SuppressionQuestionContext, occ.Reason)
		}
	}
	assert.Equal(t, 2, suppressed)

	assert.Contains(t, eval.Explanation, "'gonna' (1 time)")
	assert.Contains(t, eval.Explanation, "going to")
	require.Len(t, eval.References, 1)
	assert.Contains(t, eval.References[0], "[00:50]")

	// Trace records every decision in order: three found events, two
	// question suppressions, one counted.
	var kinds []EventKind
	for _, ev := range trace {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{
		EventFound, EventFound, EventFound,
		EventSuppressedQuestion, EventSuppressedQuestion,
		EventCounted,
	}, kinds)
}
