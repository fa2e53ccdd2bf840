package pipeline

import (
	"strings"
	"unicode/utf8"

	"text2phenotype.com/hmmtag/types"
	"text2phenotype.com/hmmtag/utils"
)

const maxLineLength = 1024 * 1024

type SentenceReader func(in <-chan string) <-chan types.Sentence

// NewSentenceReader splits documents into sentences of tokens. Offsets are rune offsets into the
// document; a token spans its text on its own line, a sentence spans its first to its last token.
// A read error ends the document with a sentence carrying the error.
func NewSentenceReader() SentenceReader {
	return func(in <-chan string) <-chan types.Sentence {
		out := make(chan types.Sentence)
		go func() {
			defer close(out)
			for doc := range in {
				readSentences(doc, out)
			}
		}()
		return out
	}
}

func readSentences(doc string, out chan<- types.Sentence) {
	scanner := utils.NewLineScanner(strings.NewReader(doc), maxLineLength)
	var offset int32
	index := 0
	var tokens []*types.Token

	flush := func() {
		if len(tokens) == 0 {
			return
		}
		out <- newSentence(index, tokens)
		index++
		tokens = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineStart := offset
		offset += int32(utf8.RuneCountInString(line)) + 1

		line = strings.TrimRight(line, "\r")
		if utils.IsBlank(line) {
			flush()
			continue
		}
		if strings.HasPrefix(line, "%%") {
			continue
		}

		fields := strings.Split(line, "\t")
		text := fields[0]
		if text == "" {
			continue
		}
		token := &types.Token{Span: types.Span{
			Begin: lineStart,
			End:   lineStart + int32(utf8.RuneCountInString(text)),
			Text:  text,
		}}
		for _, analysis := range fields[1:] {
			if analysis = strings.TrimSpace(analysis); analysis != "" {
				token.Analyses = append(token.Analyses, analysis)
			}
		}
		tokens = append(tokens, token)
	}
	flush()
	if err := scanner.Err(); err != nil {
		out <- types.Sentence{Index: index, Span: types.Span{Begin: offset, End: offset}, Err: err}
	}
}

func newSentence(index int, tokens []*types.Token) types.Sentence {
	return types.Sentence{
		Span: types.Span{
			Begin: tokens[0].Begin,
			End:   tokens[len(tokens)-1].End,
			Text:  strings.Join(types.TokenTexts(tokens), " "),
		},
		Index:  index,
		Tokens: tokens,
	}
}
