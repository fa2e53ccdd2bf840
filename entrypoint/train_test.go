package main

import (
	"io/ioutil"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/types"
)

const corpus = `the	DT
dog	NN
runs	VBZ

a	DT
cat	NN
sleeps	VBZ
`

func TestTrainAndCheck(t *testing.T) {
	hmmLogger := logger.NewLogger("Test Main")
	dir := t.TempDir()
	corpusPath := path.Join(dir, "corpus.tt")
	require.NoError(t, ioutil.WriteFile(corpusPath, []byte(corpus), 0o644))

	t.Run("requires an output prefix", func(t *testing.T) {
		assert.Error(t, train(trainParams{Corpus: corpusPath, Boundary: types.DefaultBoundaryTag}, hmmLogger))
	})

	prefix := path.Join(dir, "small")
	require.NoError(t, train(trainParams{
		Corpus:   corpusPath,
		Out:      prefix,
		Boundary: types.DefaultBoundaryTag,
		Compact:  true,
	}, hmmLogger))

	lex, err := ioutil.ReadFile(prefix + lexfreqsExt)
	require.NoError(t, err)
	assert.Equal(t, "a\tDT\t1\ncat\tNN\t1\ndog\tNN\t1\nruns\tVBZ\t1\nsleeps\tVBZ\t1\nthe\tDT\t1\n", string(lex))

	ngrams, err := ioutil.ReadFile(prefix + ngramsExt)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(ngrams), "DT\t2\n"), string(ngrams))

	cfg := "model:\n  lexfreqs: small.lex\n  ngrams: small.123\n"
	require.NoError(t, ioutil.WriteFile(path.Join(dir, "small.yaml"), []byte(cfg), 0o644))
	broken := "model:\n  lexfreqs: missing.lex\n  ngrams: small.123\n"
	require.NoError(t, ioutil.WriteFile(path.Join(dir, "broken.yaml"), []byte(broken), 0o644))

	cfgs, err := types.LoadConfigurations(dir)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)
	assert.Equal(t, 1, checkConfigurations(cfgs, nil, hmmLogger))

	fetcher, err := modelFetcher(cfgs)
	require.NoError(t, err)
	assert.Nil(t, fetcher)
}
