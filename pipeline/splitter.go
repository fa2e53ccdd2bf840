package pipeline

import (
	"sync"

	"text2phenotype.com/hmmtag/types"
)

// NewSentenceChannelSplitter fans every sentence out to n channels. Each channel gets its own copy
// of the tokens since the taggers downstream write into them.
func NewSentenceChannelSplitter(n int) func(in <-chan types.Sentence) []chan types.Sentence {

	return func(in <-chan types.Sentence) []chan types.Sentence {
		outs := make([]chan types.Sentence, n)
		// init channels
		for i := 0; i < n; i++ {
			outs[i] = make(chan types.Sentence)
		}

		go func() {
			defer closeAllChannels(outs)
			var wg sync.WaitGroup

			for sent := range in {
				wg.Add(1)
				go func(sent types.Sentence) {
					defer wg.Done()
					for _, out := range outs {
						cloned := sent.Clone()
						cloned.Err = sent.Err
						out <- cloned
					}
				}(sent)

			}

			wg.Wait()
		}()
		return outs
	}
}

func closeAllChannels(outs []chan types.Sentence) {
	for _, out := range outs {
		close(out)
	}
}
