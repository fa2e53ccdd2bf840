package morph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRules = `
noun:
  base: [dog, city, child, box]
  base_tags: [NN]
  exceptions: {children: child, Mice: mouse}
  exception_tags: [NNS]
  rules:
    - {suffix: ies, base: y, tags: [NNS]}
    - {suffix: es, base: "", tags: [NNS]}
    - {suffix: s, base: "", tags: [NNS]}
verb:
  base: [walk, run, dog]
  base_tags: [VB, VBP]
  exceptions: {ran: run}
  exception_tags: [VBD]
  rules:
    - {suffix: s, base: "", tags: [VBZ]}
    - {suffix: ing, base: "", tags: [VBG]}
    - {suffix: ed, base: "", tags: [VBD, VBN]}
adj:
  base: [big]
  base_tags: [JJ]
  rules:
    - {suffix: gger, base: g, tags: [JJR]}
adv:
  base: [fast]
  base_tags: [RB]
cardinals: [one, two]
ordinals: [first]
abbreviations: {dr._NNP: doctor}
`

func newTestAnalyzer(t *testing.T) *Analyzer {
	rules, err := ParseRules([]byte(testRules))
	require.NoError(t, err)
	a, err := NewAnalyzer(rules)
	require.NoError(t, err)
	return a
}

func TestAnalyze(t *testing.T) {
	a := newTestAnalyzer(t)

	for token, expected := range map[string][]string{
		"dog":      {"NN", "VB", "VBP"},
		"dogs":     {"NNS", "VBZ"},
		"cities":   {"NNS"},
		"boxes":    {"NNS"},
		"Children": {"NNS"},
		"mice":     {"NNS"},
		"walked":   {"VBD", "VBN"},
		"walking":  {"VBG"},
		"ran":      {"VBD"},
		"bigger":   {"JJR"},
		"fast":     {"RB"},
		"two":      {"CD"},
		"first":    {"JJ"},
		"21st":     {"JJ"},
		"zebra":    nil,
	} {
		assert.Equal(t, expected, a.Analyze(token), token)
	}
	assert.Empty(t, a.Analyze("www.example.com"))
}

func TestLemma(t *testing.T) {
	a := newTestAnalyzer(t)

	for _, tc := range []struct {
		form, tag, expected string
	}{
		{"cities", "NNS", "city"},
		{"Children", "NNS", "child"},
		{"ran", "VBD", "run"},
		{"walking", "VBG", "walk"},
		{"walking", "NN", "walking"},
		{"bigger", "jjr", "big"},
		{"one", "CD", "#crd#"},
		{"first", "CD", "#ord#"},
		{"3rd", "CD", "#ord#"},
		{"Dr.", "NNP", "doctor"},
		{"1,000", "CD", "0"},
		{"Wait!!!", "UH", "wait!!"},
		{"http://example.com/a", "NN", urlResult},
	} {
		assert.Equal(t, tc.expected, a.Lemma(tc.form, tc.tag), "%s/%s", tc.form, tc.tag)
	}
}

func TestParseRulesErrors(t *testing.T) {
	_, err := ParseRules([]byte("noun: [not, a, class]"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("verb:\n  rules:\n    - {suffix: '', base: x}\n"))
	assert.Error(t, err)

	rules, err := ParseRules([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, []string{CD}, rules.CardinalTags)
	assert.Equal(t, []string{JJ}, rules.OrdinalTags)
}
