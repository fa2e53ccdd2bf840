package pos

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"text2phenotype.com/hmmtag/freq"
	"text2phenotype.com/hmmtag/types"
)

func tokens(text string) []*types.Token {
	var res []*types.Token
	for _, w := range strings.Fields(text) {
		res = append(res, &types.Token{Span: types.Span{Text: w}})
	}
	return res
}

func tags(tokens []*types.Token) []string {
	res := make([]string, len(tokens))
	for i, token := range tokens {
		res[i] = token.Tag
	}
	return res
}

func newTagger(t *testing.T, m *Model, params DecoderParams) Tagger {
	tagger, err := NewTagger(m, params)
	require.NoError(t, err)
	return tagger
}

func TestTagUnknownBySuffix(t *testing.T) {
	fm := freq.NewModel()
	require.NoError(t, fm.Lex.AddLexicalCount("the", "DT", 100))
	require.NoError(t, fm.Lex.AddLexicalCount("log", "NN", 3))
	require.NoError(t, fm.Lex.AddLexicalCount("fog", "NN", 2))
	require.NoError(t, fm.Lex.AddLexicalCount("jog", "VB", 1))
	require.NoError(t, fm.Ngrams.AddNgramCount([]string{"DT", "NN"}, 80))
	require.NoError(t, fm.Ngrams.AddNgramCount([]string{"DT", "VB"}, 5))

	m, err := Compile(fm, nil, DefaultModelParams())
	require.NoError(t, err)
	tagger := newTagger(t, m, DefaultDecoderParams())

	sent := tokens("the dog")
	res, err := tagger(sent)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, []string{"DT", "NN"}, res[0].Outcomes)
	assert.Equal(t, []string{"DT", "NN"}, tags(sent))
	assert.False(t, sent[0].Unknown)
	assert.True(t, sent[1].Unknown)
	assert.Equal(t, "@LOWER", sent[1].Flavor)
}

func TestTagEmptySentence(t *testing.T) {
	tagger := newTagger(t, compileModel(t, DefaultModelParams()), DefaultDecoderParams())

	res, err := tagger(nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Empty(t, res[0].Outcomes)
	assert.Equal(t, 0.0, res[0].Score)
}

func TestTagSentences(t *testing.T) {
	tagger := newTagger(t, compileModel(t, DefaultModelParams()), DefaultDecoderParams())

	for text, expected := range map[string][]string{
		"the cat runs":   {"DT", "NN", "VBZ"},
		"a dog sleeps":   {"DT", "NN", "VBZ"},
		"dogs run":       {"NNS", "VB"},
		"the fox jumps":  {"DT", "NN", "VBZ"},
		"12 dogs run":    {"CD", "NNS", "VB"},
		"1984 dogs run":  {"CD", "NNS", "VB"},
		"the dog barks":  {"DT", "NN", "VBZ"},
		"the run ends":   {"DT", "NN", "VBZ"},
	} {
		t.Run(text, func(t *testing.T) {
			sent := tokens(text)
			res, err := tagger(sent)
			require.NoError(t, err)
			assert.Equal(t, expected, res[0].Outcomes)
			assert.Equal(t, expected, tags(sent))
			assert.Len(t, res[0].Scores, len(sent))
		})
	}
}

func TestTopK(t *testing.T) {
	m := compileModel(t, DefaultModelParams())
	tagger := newTagger(t, m, DecoderParams{BeamWidth: ExactBeam(), TopK: 3})

	// "dogs" has one reading and "run" two, so only two paths exist
	res, err := tagger(tokens("dogs run"))
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, []string{"NNS", "VB"}, res[0].Outcomes)
	assert.Equal(t, []string{"NNS", "NN"}, res[1].Outcomes)
	assert.Greater(t, res[0].Score, res[1].Score)

	res, err = tagger(tokens("the fox jumps"))
	require.NoError(t, err)
	require.Len(t, res, 3)
	seen := make(map[string]bool)
	for i, seq := range res {
		if i > 0 {
			assert.GreaterOrEqual(t, res[i-1].Score, seq.Score)
		}
		key := strings.Join(seq.Outcomes, " ")
		assert.False(t, seen[key], "duplicate sequence %s", key)
		seen[key] = true
	}

	best := newTagger(t, m, DecoderParams{BeamWidth: ExactBeam(), TopK: 1})
	single, err := best(tokens("the fox jumps"))
	require.NoError(t, err)
	if diff := cmp.Diff(single[0], res[0]); diff != "" {
		t.Errorf("best of k differs from the single best:\n%s", diff)
	}
}

func TestBeamAgainstExactSearch(t *testing.T) {
	m := compileModel(t, DefaultModelParams())
	exact := newTagger(t, m, DecoderParams{BeamWidth: ExactBeam(), TopK: 1})

	for _, text := range []string{"the cat runs", "the fox jumps", "12 dogs run", "dogs run the dog", "a cat"} {
		want, err := exact(tokens(text))
		require.NoError(t, err)

		// widths ascend; on these models a wider beam never scores lower than a narrower one
		narrower := math.Inf(-1)
		for _, width := range []float64{0, 0.5, 1, 2, 5, 10, 1000} {
			beam := newTagger(t, m, DecoderParams{BeamWidth: width, TopK: 1})
			got, err := beam(tokens(text))
			require.NoError(t, err)
			require.Len(t, got[0].Outcomes, len(want[0].Outcomes))
			assert.LessOrEqual(t, got[0].Score, want[0].Score+1e-9, "%q width %v", text, width)
			assert.GreaterOrEqual(t, got[0].Score, narrower-1e-9, "%q width %v", text, width)
			narrower = got[0].Score
			if width == 1000 {
				assert.Equal(t, want[0].Outcomes, got[0].Outcomes, text)
			}
		}
	}
}

func TestUseAnalyses(t *testing.T) {
	m := compileModel(t, DefaultModelParams())

	sent := tokens("dogs run")
	sent[1].Analyses = []string{"NN"}

	_, err := newTagger(t, m, DecoderParams{BeamWidth: 1000, TopK: 1})(sent)
	require.NoError(t, err)
	assert.Equal(t, []string{"NNS", "VB"}, tags(sent))

	_, err = newTagger(t, m, DecoderParams{BeamWidth: 1000, TopK: 1, UseAnalyses: true})(sent)
	require.NoError(t, err)
	assert.Equal(t, []string{"NNS", "NN"}, tags(sent))

	// analyses outside the candidate set leave the token unrestricted
	sent[1].Analyses = []string{"JJ"}
	_, err = newTagger(t, m, DecoderParams{BeamWidth: 1000, TopK: 1, UseAnalyses: true})(sent)
	require.NoError(t, err)
	assert.Equal(t, []string{"NNS", "VB"}, tags(sent))
}

func TestConcurrentTagging(t *testing.T) {
	m := compileModel(t, DefaultModelParams())
	tagger := newTagger(t, m, DecoderParams{BeamWidth: 1000, TopK: 2})
	texts := []string{"the fox jumps", "12 dogs run", "a cat sleeps", "the zebra walks"}

	want := make([][]Sequence, len(texts))
	for i, text := range texts {
		res, err := tagger(tokens(text))
		require.NoError(t, err)
		want[i] = res
	}

	var wg sync.WaitGroup
	got := make([][]Sequence, 8*len(texts))
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = tagger(tokens(texts[i%len(texts)]))
		}(i)
	}
	wg.Wait()

	for i := range got {
		if diff := cmp.Diff(want[i%len(texts)], got[i]); diff != "" {
			t.Errorf("run %d differs:\n%s", i, diff)
		}
	}
}

func TestDecoderConfigErrors(t *testing.T) {
	m := compileModel(t, DefaultModelParams())

	_, err := NewTagger(m, DecoderParams{BeamWidth: 10, TopK: 0})
	assert.True(t, errors.Is(err, ErrConfig))
	_, err = NewTagger(m, DecoderParams{BeamWidth: -1, TopK: 1})
	assert.True(t, errors.Is(err, ErrConfig))
	_, err = NewBeamSearch(m, math.NaN(), nil)
	assert.True(t, errors.Is(err, ErrConfig))
}
