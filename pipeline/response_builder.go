package pipeline

import (
	"sort"

	"text2phenotype.com/hmmtag/types"
)

type Result struct {
	ConfigName string
	Data       interface{}
}

// NewTaggingResult collects the sentences of one configuration and restores document order.
func NewTaggingResult() func(in <-chan types.Sentence, cfgName string, request Request) <-chan Result {
	return func(in <-chan types.Sentence, cfgName string, request Request) <-chan Result {
		out := make(chan Result)

		go func() {
			defer close(out)
			var sentences []types.Sentence
			for sent := range in {
				sentences = append(sentences, sent)
			}
			sort.Slice(sentences, func(i, j int) bool {
				return sentences[i].Index < sentences[j].Index
			})

			response := types.TaggingResponse{
				BaseResponse: types.BaseResponse{DocId: request.Tid, Config: cfgName},
				Sentences:    make([]types.SentenceSection, len(sentences)),
			}
			for i, sent := range sentences {
				response.Sentences[i] = sentenceSection(sent)
				response.TokenCount += len(sent.Tokens)
			}

			out <- Result{
				ConfigName: cfgName,
				Data:       response,
			}
		}()

		return out
	}
}

func sentenceSection(sent types.Sentence) types.SentenceSection {
	section := types.SentenceSection{
		Id:     sent.Index,
		Span:   []int32{sent.Begin, sent.End},
		Score:  sent.Score,
		Tokens: make([]types.TaggedToken, len(sent.Tokens)),
	}
	for i, token := range sent.Tokens {
		section.Tokens[i] = types.TaggedToken{
			Text:    token.Text,
			Tag:     token.Tag,
			Begin:   token.Begin,
			End:     token.End,
			Unknown: token.Unknown,
			Flavor:  token.Flavor,
			Lemma:   token.Lemma,
		}
	}
	for _, alt := range sent.Alternatives {
		section.Alternatives = append(section.Alternatives, types.AlternativeSection{Score: alt.Score, Tags: alt.Tags})
	}
	if sent.Err != nil {
		section.Error = sent.Err.Error()
	}
	return section
}
