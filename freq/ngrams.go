package freq

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

const MaxOrder = 3

const keySeparator = "\t"

// Ngrams is the tag n-gram table for orders 1 to MaxOrder.
type Ngrams struct {
	counts       map[string]float64
	UnigramTotal float64
}

func NewNgrams() *Ngrams {
	ng := &Ngrams{}
	ng.Clear()
	return ng
}

func (ng *Ngrams) Clear() {
	ng.counts = make(map[string]float64)
	ng.UnigramTotal = 0
}

func ngramKey(tags []string) string {
	return strings.Join(tags, keySeparator)
}

func checkOrder(tags []string) error {
	if len(tags) == 0 || len(tags) > MaxOrder {
		return fmt.Errorf("n-gram order must be between 1 and %d, got %d", MaxOrder, len(tags))
	}
	return nil
}

func (ng *Ngrams) AddNgramCount(tags []string, n float64) error {
	if err := checkOrder(tags); err != nil {
		return err
	}
	if err := checkCount(n); err != nil {
		return err
	}
	ng.counts[ngramKey(tags)] += n
	if len(tags) == 1 {
		ng.UnigramTotal += n
	}
	return nil
}

func (ng *Ngrams) LookupNgram(tags ...string) float64 {
	return ng.counts[ngramKey(tags)]
}

func (ng *Ngrams) Len() int {
	return len(ng.counts)
}

// Ngram is one entry of the table.
type Ngram struct {
	Tags  []string
	Count float64
}

func lessTags(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Sorted lists all entries ordered element-wise by tag tuple; a tuple sorts before its extensions.
func (ng *Ngrams) Sorted() []Ngram {
	res := make([]Ngram, 0, len(ng.counts))
	for key, count := range ng.counts {
		res = append(res, Ngram{Tags: strings.Split(key, keySeparator), Count: count})
	}
	sort.Slice(res, func(i, j int) bool {
		return lessTags(res[i].Tags, res[j].Tags)
	})
	return res
}

// Tags lists every tag occurring in the table, sorted.
func (ng *Ngrams) Tags() []string {
	seen := make(map[string]bool)
	for key := range ng.counts {
		for _, tag := range strings.Split(key, keySeparator) {
			seen[tag] = true
		}
	}
	res := make([]string, 0, len(seen))
	for tag := range seen {
		res = append(res, tag)
	}
	sort.Strings(res)
	return res
}

func sharedPrefix(prev, cur []string) int {
	n := 0
	for n < len(prev) && n < len(cur)-1 && prev[n] == cur[n] {
		n++
	}
	return n
}

// Save writes TAG1..TAGn\tCOUNT lines sorted by tuple. In compact mode the leading tags a line shares
// with its predecessor are written as empty fields. The last tag of a line is always written.
func (ng *Ngrams) Save(w io.Writer, compact bool) error {
	bw := bufio.NewWriter(w)
	var prev []string
	for _, ngram := range ng.Sorted() {
		skip := 0
		if compact {
			skip = sharedPrefix(prev, ngram.Tags)
		}
		for i, tag := range ngram.Tags {
			if i >= skip {
				if _, err := bw.WriteString(tag); err != nil {
					return err
				}
			}
			if err := bw.WriteByte('\t'); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(FormatCount(ngram.Count)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		prev = ngram.Tags
	}
	return bw.Flush()
}
