package pos

// Sequence is one complete tagging of a sentence. Scores holds the per-token increments
// (transition plus emission); Score is their sum plus the transition into the closing boundary.
type Sequence struct {
	Score    float64
	Outcomes []string
	Scores   []float64
}

// terminal is a candidate end of the lattice, ordered so that a min-heap pops the worst one first.
// Among equal scores the later cell is worse, which keeps the earlier-declared tag on ties.
type terminal struct {
	score float64
	cell  int
}

func (t terminal) Less(o interface{}) bool {
	c, isOk := o.(terminal)
	if !isOk {
		return false
	}
	if t.score != c.score {
		return t.score < c.score
	}
	return t.cell > c.cell
}
