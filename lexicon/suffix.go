package lexicon

import (
	"math"
	"strings"

	"text2phenotype.com/hmmtag/freq"
	"text2phenotype.com/hmmtag/utils"
)

type SuffixParams struct {
	// MaxCount limits the trie to rare tokens; zero or less admits every token.
	MaxCount     float64
	MaxSuffixLen int
	// MinSuffixLen is the shortest suffix a lookup may settle on.
	MinSuffixLen int
}

// SuffixTrie is a trie over reversed tokens used to guess tags of unknown words.
// Every node on a token's path accumulates that token's tag counts, so a node holds
// the counts of all stored tokens ending in its suffix.
type SuffixTrie struct {
	trie   *Trie
	params SuffixParams
	theta  float64
}

// SuffixMatch is the result of a suffix lookup. Probs holds the smoothed P(tag|suffix)
// over the tags seen with the suffix, in first-insertion order, summing to one.
type SuffixMatch struct {
	Suffix string
	Length int
	Count  float64
	Probs  *Distribution
}

func (m SuffixMatch) Empty() bool {
	return m.Length == 0 || m.Probs.Empty()
}

func NewSuffixTrie(params SuffixParams) *SuffixTrie {
	return &SuffixTrie{trie: NewTrie(), params: params}
}

// BuildSuffixTrie inserts the suffixes of every token whose total count does not exceed MaxCount.
// Class pseudo-tokens (leading '@') are skipped.
func BuildSuffixTrie(lf *freq.Lexfreqs, params SuffixParams) *SuffixTrie {
	st := NewSuffixTrie(params)
	for _, token := range lf.Tokens() {
		if strings.HasPrefix(token, "@") {
			continue
		}
		entry := lf.Entry(token)
		if params.MaxCount > 0 && entry.Total > params.MaxCount {
			continue
		}
		for _, tag := range entry.Tags {
			st.InsertSuffixes(token, tag, entry.Counts[tag])
		}
	}
	st.theta = Theta(lf)
	return st
}

// Theta is the sample standard deviation of the unigram tag probabilities of lf.
func Theta(lf *freq.Lexfreqs) float64 {
	tags := lf.Tags()
	if len(tags) < 2 || lf.NTokens <= 0 {
		return 0
	}
	mean := 0.0
	for _, tag := range tags {
		mean += lf.TagTotal(tag) / lf.NTokens
	}
	mean /= float64(len(tags))

	variance := 0.0
	for _, tag := range tags {
		d := lf.TagTotal(tag)/lf.NTokens - mean
		variance += d * d
	}
	variance /= float64(len(tags) - 1)
	return math.Sqrt(variance)
}

// InsertSuffixes adds weight for tag at the root and at every suffix node of token up to MaxSuffixLen.
func (st *SuffixTrie) InsertSuffixes(token string, tag string, weight float64) {
	rev := utils.ReverseRunes(token)
	if st.params.MaxSuffixLen > 0 && len(rev) > st.params.MaxSuffixLen {
		rev = rev[:st.params.MaxSuffixLen]
	}
	node := st.trie.root
	node.add(tag, weight)
	for _, r := range rev {
		next := node.child(r, false)
		if next == nil {
			next = node.child(r, true)
			st.trie.nodes++
		}
		next.add(tag, weight)
		node = next
	}
}

func (st *SuffixTrie) Theta() float64 {
	return st.theta
}

// SetTheta overrides the smoothing weight computed at build time.
func (st *SuffixTrie) SetTheta(theta float64) {
	st.theta = theta
}

// LookupSuffix matches the longest stored suffix of token, trying shorter suffixes until one
// carries counts. Matches shorter than MinSuffixLen (and never shorter than one character) are
// reported as empty. The probabilities are smoothed from the root down the matched path:
// P_i(t) = (MLE_i(t) + theta*P_{i-1}(t)) / (1+theta).
func (st *SuffixTrie) LookupSuffix(token string) SuffixMatch {
	rev := utils.ReverseRunes(token)
	nodes := st.trie.path(rev, st.params.MaxSuffixLen)

	floor := st.params.MinSuffixLen
	if floor < 1 {
		floor = 1
	}
	depth := len(nodes) - 1
	for depth >= floor && nodes[depth].dist.Empty() {
		depth--
	}
	if depth < floor {
		return SuffixMatch{Probs: NewDistribution()}
	}

	matched := nodes[depth]
	probs := make(map[string]float64, matched.dist.Len())
	for _, node := range nodes[:depth+1] {
		total := node.dist.Total()
		for _, e := range matched.dist.Entries() {
			mle := 0.0
			if total > 0 {
				mle = node.dist.Weight(e.Tag) / total
			}
			if node.depth == 0 {
				probs[e.Tag] = mle
				continue
			}
			probs[e.Tag] = (mle + st.theta*probs[e.Tag]) / (1 + st.theta)
		}
	}

	res := NewDistribution()
	for _, e := range matched.dist.Entries() {
		res.Add(e.Tag, probs[e.Tag])
	}

	suffix := make([]rune, depth)
	for i := 0; i < depth; i++ {
		suffix[i] = rev[depth-1-i]
	}
	return SuffixMatch{
		Suffix: string(suffix),
		Length: depth,
		Count:  matched.dist.Total(),
		Probs:  res.Normalized(),
	}
}

func (st *SuffixTrie) Size() int {
	return st.trie.Size()
}
