package freq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNegativeCount = errors.New("count must be non-negative")
	ErrInvalidCount  = errors.New("count must be a finite number")
)

func checkCount(n float64) error {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidCount, n)
	}
	if n < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeCount, n)
	}
	return nil
}

// FormatCount prints a count in the shortest %g form that parses back to the same value.
func FormatCount(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// LexEntry holds the counts of one token. Tags lists the token's tag set in the order the tags were first seen.
type LexEntry struct {
	Total  float64
	Tags   []string
	Counts map[string]float64
}

func (entry *LexEntry) add(tag string, n float64) {
	if _, ok := entry.Counts[tag]; !ok {
		entry.Tags = append(entry.Tags, tag)
	}
	entry.Counts[tag] += n
	entry.Total += n
}

// Lexfreqs is the token/tag co-occurrence table.
type Lexfreqs struct {
	entries   map[string]*LexEntry
	tagTotals map[string]float64
	tagOrder  []string
	NTokens   float64
}

func NewLexfreqs() *Lexfreqs {
	lf := &Lexfreqs{}
	lf.Clear()
	return lf
}

func (lf *Lexfreqs) Clear() {
	lf.entries = make(map[string]*LexEntry)
	lf.tagTotals = make(map[string]float64)
	lf.tagOrder = nil
	lf.NTokens = 0
}

// AddLexicalCount adds n occurrences of token tagged with tag. A negative or non-finite n leaves the table unchanged.
func (lf *Lexfreqs) AddLexicalCount(token string, tag string, n float64) error {
	if err := checkCount(n); err != nil {
		return err
	}
	entry, ok := lf.entries[token]
	if !ok {
		entry = &LexEntry{Counts: make(map[string]float64, 1)}
		lf.entries[token] = entry
	}
	entry.add(tag, n)

	if _, ok := lf.tagTotals[tag]; !ok {
		lf.tagOrder = append(lf.tagOrder, tag)
	}
	lf.tagTotals[tag] += n
	lf.NTokens += n
	return nil
}

func (lf *Lexfreqs) LookupLexical(token string, tag string) float64 {
	entry, ok := lf.entries[token]
	if !ok {
		return 0
	}
	return entry.Counts[tag]
}

func (lf *Lexfreqs) Total(token string) float64 {
	entry, ok := lf.entries[token]
	if !ok {
		return 0
	}
	return entry.Total
}

// TagSet returns the tags seen with token in first-seen order. The slice must not be modified.
func (lf *Lexfreqs) TagSet(token string) []string {
	entry, ok := lf.entries[token]
	if !ok {
		return nil
	}
	return entry.Tags
}

// Entry returns the entry for token or nil. The entry is owned by the table and must not be modified.
func (lf *Lexfreqs) Entry(token string) *LexEntry {
	return lf.entries[token]
}

func (lf *Lexfreqs) TagTotal(tag string) float64 {
	return lf.tagTotals[tag]
}

// Tags lists every tag of the table in first-seen order.
func (lf *Lexfreqs) Tags() []string {
	res := make([]string, len(lf.tagOrder))
	copy(res, lf.tagOrder)
	return res
}

func (lf *Lexfreqs) Len() int {
	return len(lf.entries)
}

// Tokens returns all tokens sorted in byte order.
func (lf *Lexfreqs) Tokens() []string {
	tokens := make([]string, 0, len(lf.entries))
	for token := range lf.entries {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// ComputeSpecials aggregates the counts of every token into a pseudo-token named after its class.
// Tokens for which classify returns "" or include returns false are left out, as are tokens that
// already name a class (leading '@'). The receiver is not modified.
func (lf *Lexfreqs) ComputeSpecials(classify func(token string) string, include func(token, class string, total float64) bool) *Lexfreqs {
	specials := NewLexfreqs()
	for _, token := range lf.Tokens() {
		if strings.HasPrefix(token, "@") {
			continue
		}
		class := classify(token)
		if class == "" {
			continue
		}
		entry := lf.entries[token]
		if include != nil && !include(token, class, entry.Total) {
			continue
		}
		for _, tag := range entry.Tags {
			// counts in the table are already validated
			_ = specials.AddLexicalCount(class, tag, entry.Counts[tag])
		}
	}
	return specials
}

// Save writes one line per token: TOKEN(\tTAG\tCOUNT)+, tokens sorted, pairs in first-seen order.
func (lf *Lexfreqs) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, token := range lf.Tokens() {
		entry := lf.entries[token]
		if _, err := bw.WriteString(token); err != nil {
			return err
		}
		for _, tag := range entry.Tags {
			if _, err := fmt.Fprintf(bw, "\t%s\t%s", tag, FormatCount(entry.Counts[tag])); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
