package pos

import "text2phenotype.com/hmmtag/types"

type SequenceValidator interface {
	ValidSequence(i int, inputSequence []*types.Token, outcome string) bool
}

type defaultSequenceValidator struct {
	useAnalyses bool
}

// ValidSequence restricts a token to its input analyses when they are enabled and present.
func (g defaultSequenceValidator) ValidSequence(i int, inputSequence []*types.Token, outcome string) bool {
	if g.useAnalyses && len(inputSequence[i].Analyses) > 0 {
		return inputSequence[i].HasAnalysis(outcome)
	}
	return true
}

func NewSequenceValidator(useAnalyses bool) SequenceValidator {
	return defaultSequenceValidator{useAnalyses: useAnalyses}
}
