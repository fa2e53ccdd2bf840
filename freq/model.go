package freq

import (
	"fmt"
	"io"
	"strings"

	"text2phenotype.com/hmmtag/utils"
)

// Model bundles the two count tables a tagger is compiled from.
type Model struct {
	Lex    *Lexfreqs
	Ngrams *Ngrams
}

func NewModel() *Model {
	return &Model{Lex: NewLexfreqs(), Ngrams: NewNgrams()}
}

func (m *Model) Clear() {
	m.Lex.Clear()
	m.Ngrams.Clear()
}

const commentPrefix = "%%"

// TrainError reports a malformed corpus line.
type TrainError struct {
	Line int
	Text string
	Msg  string
}

func (e *TrainError) Error() string {
	return fmt.Sprintf("corpus line %d: %s near %q", e.Line, e.Msg, e.Text)
}

// Train counts a tagged corpus into the model. Each non-blank line holds TOKEN\tTAG, further fields
// are ignored; a blank line ends a sentence. Sentences are padded with the boundary tag: one leading
// boundary for bigrams, two for trigrams, and one trailing boundary for both.
func (m *Model) Train(r io.Reader, boundary string) (sentences int, err error) {
	scanner := utils.NewLineScanner(r, 1024*1024)
	var tags []string
	lineNo := 0

	flush := func() error {
		if len(tags) == 0 {
			return nil
		}
		sentences++
		err := m.addSentence(tags, boundary)
		tags = tags[:0]
		return err
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if utils.IsBlank(line) {
			if err := flush(); err != nil {
				return sentences, err
			}
			continue
		}
		if strings.HasPrefix(line, commentPrefix) {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			return sentences, &TrainError{Line: lineNo, Text: line, Msg: "expected TOKEN<TAB>TAG"}
		}
		if fields[1] == boundary {
			return sentences, &TrainError{Line: lineNo, Text: fields[1], Msg: "boundary tag used as a token tag"}
		}
		if err := m.Lex.AddLexicalCount(fields[0], fields[1], 1); err != nil {
			return sentences, err
		}
		tags = append(tags, fields[1])
	}
	if err := scanner.Err(); err != nil {
		return sentences, err
	}
	return sentences, flush()
}

func (m *Model) addSentence(tags []string, boundary string) error {
	padded := make([]string, 0, len(tags)+3)
	padded = append(padded, boundary, boundary)
	padded = append(padded, tags...)
	padded = append(padded, boundary)

	// unigrams: one boundary per sentence plus every tag
	for _, tag := range padded[2:] {
		if err := m.Ngrams.AddNgramCount([]string{tag}, 1); err != nil {
			return err
		}
	}
	for i := 1; i+1 < len(padded); i++ {
		if err := m.Ngrams.AddNgramCount(padded[i:i+2], 1); err != nil {
			return err
		}
	}
	for i := 0; i+2 < len(padded); i++ {
		if err := m.Ngrams.AddNgramCount(padded[i:i+3], 1); err != nil {
			return err
		}
	}
	return nil
}
