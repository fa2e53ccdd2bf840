package lexicon

import (
	"text2phenotype.com/hmmtag/freq"
)

// Lexicon answers exact token lookups over the known vocabulary.
type Lexicon struct {
	trie   *Trie
	tokens int
}

func NewLexicon() *Lexicon {
	return &Lexicon{trie: NewTrie()}
}

// BuildLexicon loads every token of lf, keeping each token's tags in first-seen order.
func BuildLexicon(lf *freq.Lexfreqs) *Lexicon {
	lex := NewLexicon()
	for _, token := range lf.Tokens() {
		entry := lf.Entry(token)
		for _, tag := range entry.Tags {
			lex.Insert(token, tag, entry.Counts[tag])
		}
	}
	return lex
}

func (lex *Lexicon) Insert(token string, tag string, weight float64) {
	node := lex.trie.walkCreate([]rune(token))
	if node.dist == nil {
		lex.tokens++
	}
	node.add(tag, weight)
}

func (lex *Lexicon) Lookup(token string) *Distribution {
	return lex.trie.Lookup(token)
}

func (lex *Lexicon) Contains(token string) bool {
	node := lex.trie.find([]rune(token))
	return node != nil && node.dist != nil
}

func (lex *Lexicon) Len() int {
	return lex.tokens
}
