package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleSet(t *testing.T) {
	rs, err := NewRuleSet([]SlangRule{
		{Phrase: "Gonna", Alternative: "going to"},
		{Phrase: "yeah", Alternative: "yes", QuestionContextCheck: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())

	// Phrases are normalized to lower case.
	rule, ok := rs.Lookup("GONNA")
	require.True(t, ok)
	assert.Equal(t, "gonna", rule.Phrase)
	assert.Equal(t, "going to", rule.Alternative)
}

func TestNewRuleSetRejectsDuplicates(t *testing.T) {
	_, err := NewRuleSet([]SlangRule{
		{Phrase: "yeah"},
		{Phrase: "Yeah"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewRuleSetRejectsEmptyPhrase(t *testing.T) {
	_, err := NewRuleSet([]SlangRule{{Phrase: "   "}})
	require.Error(t, err)
}

func TestDefaultRuleSet(t *testing.T) {
	rs := DefaultRuleSet()

	// The casual affirmatives carry the question-context exemption.
	for _, phrase := range []string{"yeah", "yup", "yep", "ya"} {
		rule, ok := rs.Lookup(phrase)
		require.True(t, ok, "missing rule for %q", phrase)
		assert.True(t, rule.QuestionContextCheck, "%q should be question-exempt", phrase)
		assert.False(t, rule.CrossVerify)
	}

	// The transcription-artifact phrases require cross-verification.
	for _, phrase := range []string{"bye-bye", "all righty"} {
		rule, ok := rs.Lookup(phrase)
		require.True(t, ok, "missing rule for %q", phrase)
		assert.True(t, rule.CrossVerify, "%q should require cross-verification", phrase)
	}

	// Plain slang carries neither policy.
	rule, ok := rs.Lookup("gonna")
	require.True(t, ok)
	assert.False(t, rule.QuestionContextCheck)
	assert.False(t, rule.CrossVerify)
	assert.Equal(t, "going to", rule.Alternative)
}
