package pos

import (
	"math"

	"text2phenotype.com/hmmtag/types"
)

type DecoderParams struct {
	BeamWidth   float64
	TopK        int
	UseAnalyses bool
}

func DefaultDecoderParams() DecoderParams {
	return DecoderParams{BeamWidth: 1000, TopK: 1}
}

// Tagger decodes a sentence, writes the best tags into the tokens and returns the k best sequences.
// A failed sentence leaves its tokens untouched.
type Tagger func(tokens []*types.Token) ([]Sequence, error)

func NewTagger(model *Model, params DecoderParams) (Tagger, error) {
	if params.TopK < 1 {
		return nil, configError("top-k must be at least 1, got %d", params.TopK)
	}
	search, err := NewBeamSearch(model, params.BeamWidth, NewSequenceValidator(params.UseAnalyses))
	if err != nil {
		return nil, err
	}

	return func(tokens []*types.Token) ([]Sequence, error) {
		res, err := search(tokens, params.TopK)
		if err != nil {
			return nil, err
		}
		best := res[0]
		for i, token := range tokens {
			token.Tag = best.Outcomes[i]
			token.Unknown = !model.Known(token.Text)
			if token.Unknown {
				token.Flavor = model.Classify(token.Text)
			}
		}
		return res, nil
	}, nil
}

// ExactBeam is the beam width that disables pruning.
func ExactBeam() float64 {
	return math.Inf(1)
}
