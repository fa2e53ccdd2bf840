package types

// Token is a single unit of tagger input. Text is never modified once the token is read.
// Analyses carries optional candidate tags supplied with the input (e.g. by a morphological analyzer).
type Token struct {
	Span
	Tag      string
	Analyses []string
	Flavor   string
	Unknown  bool
	Lemma    string
}

func (token *Token) HasAnalysis(tag string) bool {
	for _, a := range token.Analyses {
		if a == tag {
			return true
		}
	}
	return false
}

func (token Token) Clone() Token {
	var analyses []string
	if token.Analyses != nil {
		analyses = make([]string, len(token.Analyses))
		copy(analyses, token.Analyses)
	}
	return Token{
		Span: Span{
			Begin: token.Begin,
			End:   token.End,
			Text:  token.Text,
		},
		Tag:      token.Tag,
		Analyses: analyses,
		Flavor:   token.Flavor,
		Unknown:  token.Unknown,
		Lemma:    token.Lemma,
	}
}

func TokenTexts(tokens []*Token) []string {
	res := make([]string, len(tokens))
	for i, token := range tokens {
		res[i] = token.Text
	}
	return res
}
