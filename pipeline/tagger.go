package pipeline

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/types"
	"text2phenotype.com/hmmtag/utils"
)

// Lemmatizer gives the base form of a tagged token.
type Lemmatizer interface {
	Lemma(text string, tag string) string
}

// SentenceCache stores the k best taggings of a sentence, best first.
type SentenceCache interface {
	GetTags(ctx context.Context, key string) ([]types.Alternative, bool, error)
	SetTags(ctx context.Context, key string, alternatives []types.Alternative) error
}

type TaggerParams struct {
	Name      string
	Decoder   pos.DecoderParams
	Normalize bool
}

// NewPOSTagger tags every sentence in its own goroutine; sentences leave in completion order.
// Tokens are NFC-normalised first when Normalize is set.
func NewPOSTagger(model *pos.Model, params TaggerParams, cache SentenceCache) (func(in <-chan types.Sentence) <-chan types.Sentence, error) {
	tagger, err := pos.NewTagger(model, params.Decoder)
	if err != nil {
		return nil, err
	}
	lemmatizer, _ := model.Oracle().(Lemmatizer)
	hmmLogger := logger.NewLogger("POS Tagger").With().Str("config", params.Name).Logger()

	return func(in <-chan types.Sentence) <-chan types.Sentence {
		out := make(chan types.Sentence)
		go func() {
			defer close(out)
			var wg sync.WaitGroup
			for sent := range in {

				wg.Add(1)
				go func(sent types.Sentence) {
					defer wg.Done()
					if sent.Err == nil && len(sent.Tokens) > 0 {
						if params.Normalize {
							for _, token := range sent.Tokens {
								token.Text = norm.NFC.String(token.Text)
							}
						}
						tagSentence(&sent, model, tagger, params, cache, hmmLogger)
						if lemmatizer != nil && sent.Err == nil {
							for _, token := range sent.Tokens {
								token.Lemma = lemmatizer.Lemma(token.Text, token.Tag)
							}
						}
					}
					out <- sent
				}(sent)

			}

			wg.Wait()

		}()
		return out
	}, nil
}

func tagSentence(sent *types.Sentence, model *pos.Model, tagger pos.Tagger, params TaggerParams, cache SentenceCache, hmmLogger zerolog.Logger) {
	var key string
	if cache != nil {
		key = cacheKey(params, sent.Tokens)
		alternatives, found, err := cache.GetTags(context.Background(), key)
		if err != nil {
			hmmLogger.Warn().Err(err).Str("key", key).Msg("Sentence cache lookup failed")
		}
		if found && len(alternatives) > 0 && len(alternatives[0].Tags) == len(sent.Tokens) {
			applyTags(sent, model, alternatives)
			return
		}
	}

	seqs, err := tagger(sent.Tokens)
	if err != nil {
		hmmLogger.Err(err).Int("sentence", sent.Index).Msg("Failed to tag sentence")
		sent.Err = err
		return
	}
	alternatives := make([]types.Alternative, len(seqs))
	for i, seq := range seqs {
		alternatives[i] = types.Alternative{Score: seq.Score, Tags: seq.Outcomes}
	}
	sent.Score = alternatives[0].Score
	sent.Alternatives = alternatives[1:]

	if cache != nil {
		if err := cache.SetTags(context.Background(), key, alternatives); err != nil {
			hmmLogger.Warn().Err(err).Str("key", key).Msg("Failed to cache sentence tags")
		}
	}
}

func applyTags(sent *types.Sentence, model *pos.Model, alternatives []types.Alternative) {
	for i, token := range sent.Tokens {
		token.Tag = alternatives[0].Tags[i]
		token.Unknown = !model.Known(token.Text)
		if token.Unknown {
			token.Flavor = model.Classify(token.Text)
		}
	}
	sent.Score = alternatives[0].Score
	sent.Alternatives = alternatives[1:]
}

// cacheKey identifies a sentence under one configuration. Analyses are part of the key since they add candidates.
func cacheKey(params TaggerParams, tokens []*types.Token) string {
	parts := make([]string, 0, len(tokens)+2)
	parts = append(parts, params.Name, strconv.Itoa(params.Decoder.TopK))
	for _, token := range tokens {
		if len(token.Analyses) == 0 {
			parts = append(parts, token.Text)
			continue
		}
		parts = append(parts, token.Text+"\t"+strings.Join(token.Analyses, "\t"))
	}
	return "hmm_tags:" + strconv.FormatUint(utils.HashStrings(parts...), 16)
}
