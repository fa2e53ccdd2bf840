package types

// Alternative is one of the k best taggings of a sentence.
type Alternative struct {
	Score float64
	Tags  []string
}

type Sentence struct {
	Span
	Index        int
	Tokens       []*Token
	Score        float64
	Alternatives []Alternative
	Err          error
}

// Clone deep-copies the tokens so that independent taggers can write tags without sharing state.
func (sent Sentence) Clone() Sentence {
	tokens := make([]*Token, len(sent.Tokens))
	for i, token := range sent.Tokens {
		cloned := token.Clone()
		tokens[i] = &cloned
	}
	return Sentence{
		Span:   sent.Span,
		Index:  sent.Index,
		Tokens: tokens,
	}
}
