package types

import (
	"io/ioutil"
	"math"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const englishConfig = `
model:
  lexfreqs: models/en.lex
  ngrams: models/en.123
  strict: true
decoder:
  beam_width: .inf
  top_k: 3
smoothing:
  lambdas: [0.1, 0.3, 0.6]
unknown:
  open_class_tags: [NN, NNS, VB, JJ]
flavors:
  priority: ["@CARD"]
`

func TestParseConfiguration(t *testing.T) {
	cfg, err := ParseConfiguration("en", []byte(englishConfig))
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Name)
	assert.Equal(t, DefaultBoundaryTag, cfg.Boundary)
	assert.Equal(t, ModelSourceFile, cfg.Model.Source)
	assert.True(t, cfg.Model.Strict)
	require.NotNil(t, cfg.Decoder.BeamWidth)
	assert.True(t, math.IsInf(*cfg.Decoder.BeamWidth, 1))
	assert.Equal(t, 3, cfg.Decoder.TopK)
	assert.Equal(t, []float64{0.1, 0.3, 0.6}, cfg.Smoothing.Lambdas)
	assert.Equal(t, DefaultFloor, cfg.Smoothing.Floor)
	assert.Equal(t, float64(DefaultMaxCount), cfg.Unknown.MaxCount)
	assert.Equal(t, DefaultMaxSuffixLen, cfg.Unknown.MaxSuffixLen)
	assert.Equal(t, []string{"NN", "NNS", "VB", "JJ"}, cfg.Unknown.OpenClassTags)
	assert.Equal(t, []string{"@CARD"}, cfg.Flavors.Priority)
}

func TestParseConfigurationErrors(t *testing.T) {
	t.Run("missing model files", func(t *testing.T) {
		_, err := ParseConfiguration("x", []byte("decoder:\n  top_k: 2\n"))
		require.Error(t, err)
	})
	t.Run("negative beam", func(t *testing.T) {
		_, err := ParseConfiguration("x", []byte("model: {lexfreqs: a, ngrams: b}\ndecoder: {beam_width: -1}\n"))
		require.Error(t, err)
	})
	t.Run("unknown source", func(t *testing.T) {
		_, err := ParseConfiguration("x", []byte("model: {lexfreqs: a, ngrams: b, source: ftp}\n"))
		require.Error(t, err)
	})
	t.Run("suffix bounds", func(t *testing.T) {
		_, err := ParseConfiguration("x", []byte("model: {lexfreqs: a, ngrams: b}\nunknown: {min_suffix_len: 4, max_suffix_len: 2}\n"))
		require.Error(t, err)
	})
	t.Run("zero beam is allowed", func(t *testing.T) {
		cfg, err := ParseConfiguration("x", []byte("model: {lexfreqs: a, ngrams: b}\ndecoder: {beam_width: 0}\n"))
		require.NoError(t, err)
		assert.Equal(t, 0.0, *cfg.Decoder.BeamWidth)
	})
}

func TestLoadConfigurations(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(path.Join(dir, "en.yaml"), []byte(englishConfig), 0o644))
	require.NoError(t, ioutil.WriteFile(path.Join(dir, "de.yaml"), []byte("model: {lexfreqs: de.lex, ngrams: de.123}\n"), 0o644))
	require.NoError(t, ioutil.WriteFile(path.Join(dir, "broken.yaml"), []byte("model: {source: ftp}\n"), 0o644))
	require.NoError(t, ioutil.WriteFile(path.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	cfgs, err := LoadConfigurations(dir)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)
	assert.Equal(t, "de", cfgs[0].Name)
	assert.Equal(t, "en", cfgs[1].Name)
	assert.Equal(t, path.Join(dir, "en.yaml"), cfgs[1].FilePath)
}
