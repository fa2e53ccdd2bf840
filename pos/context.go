package pos

import (
	"math"
	"sort"

	"text2phenotype.com/hmmtag/lexicon"
	"text2phenotype.com/hmmtag/types"
)

const (
	SourceLexicon = "lexicon"
	SourceClass   = "class"
	SourceSuffix  = "suffix"
	SourceOpen    = "open"
)

// Candidate is a tag the decoder may assign to a token. Score is the emission score
// log P(tag|token) - log P(tag), which stands in for log P(token|tag) up to a per-token constant.
type Candidate struct {
	Tag   int
	Prob  float64
	Score float64
}

// LexicalResult is what the model knows about a token: its candidate tags sorted by tag id
// and where they came from.
type LexicalResult struct {
	Candidates []Candidate
	Known      bool
	Flavor     string
	Source     string
}

// Lexical returns the candidates for token. Input analyses join the candidate set: known
// tokens smooth them in with the lexicon counts, unknown tokens get them at the prior.
func (m *Model) Lexical(token *types.Token) LexicalResult {
	var res LexicalResult
	dist := m.lexicon.Lookup(token.Text)
	if !dist.Empty() {
		res = m.known(dist, token.Analyses)
	} else {
		res = m.unknown(token.Text)
		if len(token.Analyses) > 0 {
			res.Candidates = m.union(res.Candidates, token.Analyses)
		}
	}
	return res
}

// Candidates is Lexical without the bookkeeping.
func (m *Model) Candidates(token *types.Token) []Candidate {
	return m.Lexical(token).Candidates
}

func (m *Model) known(dist *lexicon.Distribution, analyses []string) LexicalResult {
	counts := make(map[int]float64, dist.Len()+len(analyses))
	for _, e := range dist.Entries() {
		if id, ok := m.tags.Lookup(e.Tag); ok {
			counts[id] += e.Weight
		}
	}
	k := m.params.LexSmoothing
	if k > 0 {
		// add-k spreads mass over the whole closed tag set, so unseen tags become candidates
		for id := 0; id < m.tags.Len(); id++ {
			if _, seen := counts[id]; !seen && id != m.boundary {
				counts[id] = 0
			}
		}
	} else {
		for _, tag := range analyses {
			if id, ok := m.tags.Lookup(tag); ok && id != m.boundary {
				if _, seen := counts[id]; !seen {
					counts[id] = 0
				}
			}
		}
	}

	total := dist.Total() + k*float64(len(counts))
	cands := make([]Candidate, 0, len(counts))
	for id, c := range counts {
		p := 0.0
		if total > 0 {
			p = (c + k) / total
		}
		cands = append(cands, m.candidate(id, p))
	}
	sortCandidates(cands)
	return LexicalResult{Candidates: cands, Known: true, Source: SourceLexicon}
}

func (m *Model) unknown(text string) LexicalResult {
	if m.cache != nil {
		if res, ok := m.cache.Get(text); ok {
			return res
		}
	}

	class := m.taster.Classify(text)
	classDist := m.classes[class]
	res := LexicalResult{Flavor: class}

	switch match := m.suffixes.LookupSuffix(text); {
	case m.taster.IsPriority(class) && !classDist.Empty():
		res.Candidates, res.Source = m.fromDistribution(classDist), SourceClass
	case !match.Empty() && match.Count >= m.params.Unknown.MinSuffixCount:
		res.Candidates, res.Source = m.fromDistribution(match.Probs), SourceSuffix
	case !classDist.Empty():
		res.Candidates, res.Source = m.fromDistribution(classDist), SourceClass
	case !match.Empty():
		res.Candidates, res.Source = m.fromDistribution(match.Probs), SourceSuffix
	}
	if len(res.Candidates) == 0 {
		res.Candidates, res.Source = m.openClassCandidates(), SourceOpen
	}
	if m.params.Oracle != nil {
		res.Candidates = m.union(res.Candidates, m.params.Oracle.Analyze(text))
	}

	if m.cache != nil {
		m.cache.Add(text, res)
	}
	return res
}

func (m *Model) candidate(id int, p float64) Candidate {
	if p < m.params.Floor {
		p = m.params.Floor
	}
	return Candidate{Tag: id, Prob: p, Score: math.Log(p) - m.logPrior[id]}
}

func (m *Model) fromDistribution(dist *lexicon.Distribution) []Candidate {
	total := dist.Total()
	if total <= 0 {
		return nil
	}
	cands := make([]Candidate, 0, dist.Len())
	for _, e := range dist.Entries() {
		id, ok := m.tags.Lookup(e.Tag)
		if !ok || id == m.boundary {
			continue
		}
		cands = append(cands, m.candidate(id, e.Weight/total))
	}
	sortCandidates(cands)
	return cands
}

func (m *Model) openClassCandidates() []Candidate {
	cands := make([]Candidate, len(m.openClass))
	for i, id := range m.openClass {
		cands[i] = Candidate{Tag: id, Prob: math.Exp(m.logPrior[id])}
	}
	return cands
}

// union returns a new slice with tags missing from cands added at the prior. cands is never modified
// since it may be shared through the cache.
func (m *Model) union(cands []Candidate, tags []string) []Candidate {
	res := make([]Candidate, len(cands), len(cands)+len(tags))
	copy(res, cands)
	for _, tag := range tags {
		id, ok := m.tags.Lookup(tag)
		if !ok || id == m.boundary || hasTag(res, id) {
			continue
		}
		res = append(res, Candidate{Tag: id, Prob: math.Exp(m.logPrior[id])})
	}
	sortCandidates(res)
	return res
}

func hasTag(cands []Candidate, id int) bool {
	for _, c := range cands {
		if c.Tag == id {
			return true
		}
	}
	return false
}

func sortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		return cands[i].Tag < cands[j].Tag
	})
}
