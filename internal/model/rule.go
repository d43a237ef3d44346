package model

import (
	"fmt"
	"strings"
)

// SlangRule describes one flagged phrase and the policies that apply to it.
// Phrases are matched case-insensitively on word boundaries.
type SlangRule struct {
	Phrase               string
	Alternative          string // suggested replacement, empty if none
	QuestionContextCheck bool   // suppress when adjacent to a question in agent speech
	CrossVerify          bool   // require the phrase in the alternate transcription
}

// RuleSet is a registry of slang rules keyed by phrase.
type RuleSet struct {
	byPhrase map[string]SlangRule
	ordered  []SlangRule
}

// NewRuleSet builds a registry from the given rules. Phrases are unique keys;
// duplicates and empty phrases are rejected.
func NewRuleSet(rules []SlangRule) (*RuleSet, error) {
	rs := &RuleSet{
		byPhrase: make(map[string]SlangRule, len(rules)),
		ordered:  make([]SlangRule, 0, len(rules)),
	}
	for _, r := range rules {
		phrase := strings.ToLower(strings.TrimSpace(r.Phrase))
		if phrase == "" {
			return nil, fmt.Errorf("slang rule with empty phrase")
		}
		if _, exists := rs.byPhrase[phrase]; exists {
			return nil, fmt.Errorf("duplicate slang rule for phrase %q", phrase)
		}
		r.Phrase = phrase
		rs.byPhrase[phrase] = r
		rs.ordered = append(rs.ordered, r)
	}
	return rs, nil
}

// Rules returns the rules in registration order.
func (rs *RuleSet) Rules() []SlangRule {
	return rs.ordered
}

// Lookup returns the rule for a phrase, if registered.
func (rs *RuleSet) Lookup(phrase string) (SlangRule, bool) {
	r, ok := rs.byPhrase[strings.ToLower(phrase)]
	return r, ok
}

// Len returns the number of registered rules.
func (rs *RuleSet) Len() int {
	return len(rs.ordered)
}

// DefaultRuleSet returns the built-in slang registry: the phrases the original
// rubric flags, their suggested replacements, and the two policy flags. Casual
// affirmatives carry the question-context exemption; "bye-bye" is prone to
// transcription-source false positives and requires cross-verification.
func DefaultRuleSet() *RuleSet {
	rs, err := NewRuleSet([]SlangRule{
		{Phrase: "nope", Alternative: "no"},
		{Phrase: "gonna", Alternative: "going to"},
		{Phrase: "gunna", Alternative: "going to"},
		{Phrase: "gotcha", Alternative: "I understand"},
		{Phrase: "lemme", Alternative: "let me"},
		{Phrase: "okey dokey", Alternative: "okay"},
		{Phrase: "okay dokey", Alternative: "okay"},
		{Phrase: "all righty", Alternative: "alright", CrossVerify: true},
		{Phrase: "cool", Alternative: "good/great"},
		{Phrase: "ain't", Alternative: "is not/are not"},
		{Phrase: "bye-bye", Alternative: "goodbye", CrossVerify: true},
		{Phrase: "yup", Alternative: "yes", QuestionContextCheck: true},
		{Phrase: "yep", Alternative: "yes", QuestionContextCheck: true},
		{Phrase: "ya", Alternative: "you/yes", QuestionContextCheck: true},
		{Phrase: "yeah", Alternative: "yes", QuestionContextCheck: true},
	})
	if err != nil {
		// The built-in list is static; a failure here is a programming error.
		panic(err)
	}
	return rs
}
