package lexicon

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"text2phenotype.com/hmmtag/freq"
)

func entries(d *Distribution) []Entry {
	return d.Entries()
}

func TestTrieInsertLookup(t *testing.T) {
	trie := NewTrie()
	trie.Insert("dog", "NN", 2)
	trie.Insert("dog", "VB", 1)
	trie.Insert("dog", "NN", 3)
	trie.Insert("do", "VB", 7)

	d := trie.Lookup("dog")
	assert.Equal(t, []Entry{{"NN", 5}, {"VB", 1}}, entries(d))
	assert.Equal(t, 6.0, d.Total())
	assert.Equal(t, 7.0, trie.Lookup("do").Weight("VB"))

	assert.True(t, trie.Lookup("d").Empty())
	assert.True(t, trie.Lookup("cat").Empty())
	assert.True(t, trie.Lookup("dogs").Empty())
	assert.Equal(t, 4, trie.Size())
}

func TestLexicon(t *testing.T) {
	lf := freq.NewLexfreqs()
	require.NoError(t, lf.AddLexicalCount("the", "DT", 100))
	require.NoError(t, lf.AddLexicalCount("run", "VB", 3))
	require.NoError(t, lf.AddLexicalCount("run", "NN", 2))

	lex := BuildLexicon(lf)
	assert.Equal(t, 2, lex.Len())
	assert.True(t, lex.Contains("run"))
	assert.False(t, lex.Contains("ru"))
	assert.False(t, lex.Contains("runs"))
	assert.Equal(t, []Entry{{"VB", 3}, {"NN", 2}}, entries(lex.Lookup("run")))
}

func suffixModel(t *testing.T) *freq.Lexfreqs {
	lf := freq.NewLexfreqs()
	for token, counts := range map[string]map[string]float64{
		"log":       {"NN": 3},
		"fog":       {"NN": 2},
		"jog":       {"VB": 1},
		"quickly":   {"RB": 4},
		"slowly":    {"RB": 2},
		"ugly":      {"JJ": 1},
		"the":       {"DT": 100},
		"@CARD":     {"CD": 5},
		"hopefully": {"RB": 11},
	} {
		for tag, n := range counts {
			require.NoError(t, lf.AddLexicalCount(token, tag, n))
		}
	}
	return lf
}

func TestSuffixTrieLongestMatch(t *testing.T) {
	st := BuildSuffixTrie(suffixModel(t), SuffixParams{MaxCount: 10, MaxSuffixLen: 5, MinSuffixLen: 1})

	m := st.LookupSuffix("dog")
	require.False(t, m.Empty())
	assert.Equal(t, "og", m.Suffix)
	assert.Equal(t, 2, m.Length)
	assert.Equal(t, 6.0, m.Count)
	// tags come in the order the suffix first saw them: fog (NN) sorts before jog (VB)
	require.Equal(t, 2, m.Probs.Len())
	assert.Equal(t, "NN", m.Probs.Entries()[0].Tag)
	assert.Equal(t, "VB", m.Probs.Entries()[1].Tag)
	assert.Greater(t, m.Probs.Weight("NN"), m.Probs.Weight("VB"))
	assert.InDelta(t, 1.0, m.Probs.Total(), 1e-12)

	ly := st.LookupSuffix("friendly")
	assert.Equal(t, "ly", ly.Suffix)
	assert.Equal(t, "RB", ly.Probs.Entries()[0].Tag)

	// frequent and class tokens stay out of the trie
	assert.True(t, st.LookupSuffix("she").Empty())
	assert.True(t, st.LookupSuffix("xyz").Empty())
}

func TestSuffixTrieDeterminism(t *testing.T) {
	st := BuildSuffixTrie(suffixModel(t), SuffixParams{MaxCount: 10, MaxSuffixLen: 5, MinSuffixLen: 1})

	cog := st.LookupSuffix("cog")
	bog := st.LookupSuffix("bog")
	require.Equal(t, cog.Suffix, bog.Suffix)
	if diff := cmp.Diff(entries(cog.Probs), entries(bog.Probs)); diff != "" {
		t.Errorf("tokens sharing a suffix got different distributions:\n%s", diff)
	}

	again := st.LookupSuffix("cog")
	assert.Equal(t, entries(cog.Probs), entries(again.Probs))
}

func TestSuffixTrieFloor(t *testing.T) {
	st := BuildSuffixTrie(suffixModel(t), SuffixParams{MaxCount: 10, MaxSuffixLen: 5, MinSuffixLen: 3})

	// only "og" is shared with "dog", shorter than the floor
	assert.True(t, st.LookupSuffix("dog").Empty())
	m := st.LookupSuffix("smelly")
	require.False(t, m.Empty())
	assert.Equal(t, "lly", m.Suffix)
}

func TestSuffixSmoothing(t *testing.T) {
	lf := freq.NewLexfreqs()
	require.NoError(t, lf.AddLexicalCount("ab", "X", 1))
	require.NoError(t, lf.AddLexicalCount("cb", "Y", 3))

	st := BuildSuffixTrie(lf, SuffixParams{MaxSuffixLen: 2, MinSuffixLen: 1})
	st.SetTheta(1)

	m := st.LookupSuffix("ab")
	assert.Equal(t, "ab", m.Suffix)
	require.Equal(t, 1, m.Probs.Len())
	assert.Equal(t, 1.0, m.Probs.Weight("X"))

	m = st.LookupSuffix("zb")
	assert.Equal(t, "b", m.Suffix)
	// root: X=.25 Y=.75; "b" MLE equals root, so smoothing keeps it
	assert.InDelta(t, 0.25, m.Probs.Weight("X"), 1e-12)
	assert.InDelta(t, 0.75, m.Probs.Weight("Y"), 1e-12)
}

func TestTheta(t *testing.T) {
	lf := freq.NewLexfreqs()
	require.NoError(t, lf.AddLexicalCount("a", "X", 3))
	require.NoError(t, lf.AddLexicalCount("b", "Y", 1))
	// P = .75, .25; mean .5; sample variance = 2*.0625/1
	assert.InDelta(t, math.Sqrt(0.125), Theta(lf), 1e-12)

	single := freq.NewLexfreqs()
	require.NoError(t, single.AddLexicalCount("a", "X", 3))
	assert.Equal(t, 0.0, Theta(single))
}
