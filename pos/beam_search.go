package pos

import (
	"container/heap"
	"fmt"
	"math"

	"text2phenotype.com/hmmtag/types"
	"text2phenotype.com/hmmtag/utils"
)

// BeamSearch returns the k best taggings of a sentence, best first.
type BeamSearch func(tokens []*types.Token, k int) ([]Sequence, error)

// cell is a lattice state: the tag of the current token and of the one before it.
type cell struct {
	tag   int
	prev  int
	score float64
	local float64
	back  int
}

// NewBeamSearch builds a second-order Viterbi decoder. After each token every cell scoring more than
// beamWidth below the best cell of its column is dropped; an infinite width keeps the search exact.
func NewBeamSearch(model *Model, beamWidth float64, validator SequenceValidator) (BeamSearch, error) {
	if math.IsNaN(beamWidth) || beamWidth < 0 {
		return nil, configError("beam width must be non-negative, got %v", beamWidth)
	}
	if validator == nil {
		validator = NewSequenceValidator(false)
	}
	n := model.ntags
	b := model.boundary

	return func(tokens []*types.Token, k int) ([]Sequence, error) {
		if len(tokens) == 0 {
			return []Sequence{{Outcomes: []string{}, Scores: []float64{}}}, nil
		}
		if k < 1 {
			k = 1
		}

		columns := make([][]cell, len(tokens)+1)
		columns[0] = []cell{{tag: b, prev: b, back: -1}}

		for i, token := range tokens {
			cands := filterCandidates(model, validator, tokens, i, model.Candidates(token))
			prevCol := columns[i]
			next := make([]cell, 0, len(cands))
			index := make(map[int]int, len(cands))

			for _, c := range cands {
				for pi, p := range prevCol {
					local := model.LogTransition(p.prev, p.tag, c.Tag) + c.Score
					score := p.score + local
					key := c.Tag*n + p.tag
					if j, ok := index[key]; ok {
						if score > next[j].score {
							next[j].score, next[j].local, next[j].back = score, local, pi
						}
						continue
					}
					index[key] = len(next)
					next = append(next, cell{tag: c.Tag, prev: p.tag, score: score, local: local, back: pi})
				}
			}

			next = prune(next, beamWidth)
			if len(next) == 0 {
				return nil, fmt.Errorf("%w at token %d (%q)", ErrNoViablePath, i, token.Text)
			}
			columns[i+1] = next
		}

		last := columns[len(tokens)]
		pq := make(utils.PriorityQueue, 0, k+1)
		for ci, c := range last {
			t := terminal{score: c.score + model.LogTransition(c.prev, c.tag, b), cell: ci}
			if math.IsNaN(t.score) || math.IsInf(t.score, -1) {
				continue
			}
			if pq.Len() < k {
				heap.Push(&pq, t)
			} else if pq.Peek().Less(t) {
				heap.Pop(&pq)
				heap.Push(&pq, t)
			}
		}
		if pq.Len() == 0 {
			return nil, ErrNoViablePath
		}

		res := make([]Sequence, pq.Len())
		for i := len(res) - 1; i >= 0; i-- {
			res[i] = backtrace(model, columns, heap.Pop(&pq).(terminal))
		}
		return res, nil
	}, nil
}

// filterCandidates applies the validator. When it rejects everything the token keeps its full
// candidate set so that one bad analysis cannot sink the sentence.
func filterCandidates(model *Model, validator SequenceValidator, tokens []*types.Token, i int, cands []Candidate) []Candidate {
	res := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if validator.ValidSequence(i, tokens, model.TagName(c.Tag)) {
			res = append(res, c)
		}
	}
	if len(res) == 0 {
		return cands
	}
	return res
}

func prune(col []cell, beamWidth float64) []cell {
	best := math.Inf(-1)
	for _, c := range col {
		if c.score > best {
			best = c.score
		}
	}
	if math.IsInf(best, -1) {
		return nil
	}
	if math.IsInf(beamWidth, 1) {
		return col
	}
	threshold := best - beamWidth
	kept := col[:0]
	for _, c := range col {
		if c.score >= threshold {
			kept = append(kept, c)
		}
	}
	return kept
}

func backtrace(model *Model, columns [][]cell, t terminal) Sequence {
	n := len(columns) - 1
	seq := Sequence{
		Score:    t.score,
		Outcomes: make([]string, n),
		Scores:   make([]float64, n),
	}
	idx := t.cell
	for i := n; i >= 1; i-- {
		c := columns[i][idx]
		seq.Outcomes[i-1] = model.TagName(c.tag)
		seq.Scores[i-1] = c.local
		idx = c.back
	}
	return seq
}
