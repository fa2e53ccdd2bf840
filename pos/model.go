package pos

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"text2phenotype.com/hmmtag/flavor"
	"text2phenotype.com/hmmtag/freq"
	"text2phenotype.com/hmmtag/lexicon"
	"text2phenotype.com/hmmtag/utils"
)

var (
	ErrConfig       = errors.New("tagger configuration error")
	ErrNoViablePath = errors.New("no viable path: every lattice cell was pruned")
)

var DefaultLambdas = [3]float64{0.1, 0.3, 0.6}

// MorphOracle proposes candidate tags for tokens missing from the lexicon.
type MorphOracle interface {
	Analyze(token string) []string
}

type UnknownParams struct {
	MaxCount       float64
	MaxSuffixLen   int
	MinSuffixLen   int
	MinSuffixCount float64
	OpenClassTags  []string
	CacheSize      int
}

type ModelParams struct {
	Boundary string
	// LexSmoothing is the add-k constant for known tokens. Zero means plain relative frequency.
	LexSmoothing float64
	// Lambdas are the unigram, bigram and trigram interpolation weights. Nil means estimate them.
	Lambdas []float64
	// Floor is the smallest probability the model hands out.
	Floor   float64
	Unknown UnknownParams
	Oracle  MorphOracle
}

func DefaultModelParams() ModelParams {
	return ModelParams{
		Boundary: "__$",
		Floor:    1e-10,
		Unknown: UnknownParams{
			MaxCount:     10,
			MaxSuffixLen: 10,
			MinSuffixLen: 1,
			CacheSize:    8192,
		},
	}
}

func configError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

func (params ModelParams) validate() error {
	if params.Boundary == "" {
		return configError("boundary tag is empty")
	}
	if !(params.Floor > 0 && params.Floor < 1) {
		return configError("probability floor must be in (0, 1), got %v", params.Floor)
	}
	if params.LexSmoothing < 0 || math.IsNaN(params.LexSmoothing) || math.IsInf(params.LexSmoothing, 0) {
		return configError("lexical smoothing must be a non-negative number, got %v", params.LexSmoothing)
	}
	if params.Lambdas != nil {
		if len(params.Lambdas) != 3 {
			return configError("expected 3 interpolation weights, got %d", len(params.Lambdas))
		}
		sum := 0.0
		for _, l := range params.Lambdas {
			if l < 0 || math.IsNaN(l) || math.IsInf(l, 0) {
				return configError("interpolation weights must be non-negative, got %v", params.Lambdas)
			}
			sum += l
		}
		if sum <= 0 {
			return configError("interpolation weights sum to zero")
		}
	}
	if params.Unknown.MaxSuffixLen < 0 || params.Unknown.MinSuffixLen < 0 {
		return configError("suffix lengths must be non-negative")
	}
	if params.Unknown.MaxSuffixLen > 0 && params.Unknown.MinSuffixLen > params.Unknown.MaxSuffixLen {
		return configError("min suffix length %d exceeds max suffix length %d", params.Unknown.MinSuffixLen, params.Unknown.MaxSuffixLen)
	}
	return nil
}

// Model is the compiled, read-only probability model. It is safe for concurrent use.
type Model struct {
	params   ModelParams
	tags     *utils.StringStore
	ntags    int
	boundary int

	lexicon   *lexicon.Lexicon
	suffixes  *lexicon.SuffixTrie
	taster    *flavor.Taster
	classes   map[string]*lexicon.Distribution
	openClass []int

	uniCount []float64
	uniTotal float64
	logPrior []float64
	biCount  map[int]float64
	biCtx    []float64
	triCount map[int]float64
	triCtx   map[int]float64
	lambdas  [3]float64

	cache *lru.Cache[string, LexicalResult]
}

// Compile derives the probability model from raw counts. The tag set is closed here: the boundary tag
// gets id 0 and every other tag an id in lexicographic order.
func Compile(fm *freq.Model, taster *flavor.Taster, params ModelParams) (*Model, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if fm == nil || fm.Lex == nil || fm.Ngrams == nil {
		return nil, configError("frequency model is incomplete")
	}
	if taster == nil {
		taster = flavor.DefaultTaster()
	}

	tagNames, err := collectTags(fm, params.Boundary)
	if err != nil {
		return nil, err
	}

	m := &Model{
		params:   params,
		tags:     utils.NewStringStore(params.Boundary),
		taster:   taster,
		biCount:  make(map[int]float64),
		triCount: make(map[int]float64),
		triCtx:   make(map[int]float64),
	}
	for _, tag := range tagNames {
		m.tags.GetID(tag)
	}
	m.tags.Lock()
	m.ntags = m.tags.Len()
	m.boundary = 0

	if err := m.compileNgrams(fm); err != nil {
		return nil, err
	}
	if params.Lambdas != nil {
		sum := params.Lambdas[0] + params.Lambdas[1] + params.Lambdas[2]
		for i := range m.lambdas {
			m.lambdas[i] = params.Lambdas[i] / sum
		}
	} else {
		m.lambdas = m.estimateLambdas(fm.Ngrams)
	}

	m.lexicon = lexicon.BuildLexicon(fm.Lex)
	m.suffixes = lexicon.BuildSuffixTrie(fm.Lex, lexicon.SuffixParams{
		MaxCount:     params.Unknown.MaxCount,
		MaxSuffixLen: params.Unknown.MaxSuffixLen,
		MinSuffixLen: params.Unknown.MinSuffixLen,
	})
	m.compileClasses(fm.Lex)
	if err := m.compileOpenClass(); err != nil {
		return nil, err
	}

	if params.Unknown.CacheSize > 0 {
		m.cache, err = lru.New[string, LexicalResult](params.Unknown.CacheSize)
		if err != nil {
			return nil, configError("unknown-token cache: %v", err)
		}
	}
	return m, nil
}

func collectTags(fm *freq.Model, boundary string) ([]string, error) {
	seen := make(map[string]bool)
	for _, tag := range fm.Lex.Tags() {
		if tag == boundary {
			return nil, configError("boundary tag %q occurs in the lexical table", boundary)
		}
		seen[tag] = true
	}
	for _, tag := range fm.Ngrams.Tags() {
		if tag != boundary {
			seen[tag] = true
		}
	}
	if len(seen) == 0 {
		return nil, configError("empty tag set")
	}
	names := make([]string, 0, len(seen))
	for tag := range seen {
		names = append(names, tag)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Model) compileNgrams(fm *freq.Model) error {
	n := m.ntags
	m.uniCount = make([]float64, n)
	m.biCtx = make([]float64, n)

	for _, ngram := range fm.Ngrams.Sorted() {
		ids := make([]int, len(ngram.Tags))
		for i, tag := range ngram.Tags {
			ids[i] = m.tags.GetID(tag)
		}
		switch len(ids) {
		case 1:
			m.uniCount[ids[0]] += ngram.Count
			m.uniTotal += ngram.Count
		case 2:
			m.biCount[ids[0]*n+ids[1]] += ngram.Count
			m.biCtx[ids[0]] += ngram.Count
		case 3:
			m.triCount[(ids[0]*n+ids[1])*n+ids[2]] += ngram.Count
			m.triCtx[ids[0]*n+ids[1]] += ngram.Count
		}
	}

	// n-gram files without unigrams fall back to the lexical tag totals
	if m.uniTotal <= 0 {
		for _, tag := range fm.Lex.Tags() {
			id := m.tags.GetID(tag)
			m.uniCount[id] += fm.Lex.TagTotal(tag)
			m.uniTotal += fm.Lex.TagTotal(tag)
		}
	}
	if m.uniTotal <= 0 {
		return configError("model has no unigram mass")
	}

	m.logPrior = make([]float64, n)
	for t := 0; t < n; t++ {
		m.logPrior[t] = math.Log(math.Max(m.uniCount[t]/m.uniTotal, m.params.Floor))
	}
	return nil
}

func ratio(num, den float64) float64 {
	if den <= 0 || num <= 0 {
		return 0
	}
	return num / den
}

// estimateLambdas runs deleted interpolation: each trigram votes with its count for the order whose
// estimate, computed with that trigram removed, is highest. Without trigrams bigrams vote between the
// two lower orders. With no votes at all the defaults are used.
func (m *Model) estimateLambdas(ng *freq.Ngrams) [3]float64 {
	n := m.ntags
	var votes [3]float64
	trigrams := 0
	for _, ngram := range ng.Sorted() {
		if len(ngram.Tags) != 3 {
			continue
		}
		trigrams++
		t1, t2, t3 := m.tags.GetID(ngram.Tags[0]), m.tags.GetID(ngram.Tags[1]), m.tags.GetID(ngram.Tags[2])
		f123 := ngram.Count
		c3 := ratio(f123-1, m.triCtx[t1*n+t2]-1)
		c2 := ratio(m.biCount[t2*n+t3]-1, m.biCtx[t2]-1)
		c1 := ratio(m.uniCount[t3]-1, m.uniTotal-1)
		switch {
		case c3 >= c2 && c3 >= c1:
			votes[2] += f123
		case c2 >= c1:
			votes[1] += f123
		default:
			votes[0] += f123
		}
	}
	if trigrams == 0 {
		for _, ngram := range ng.Sorted() {
			if len(ngram.Tags) != 2 {
				continue
			}
			t2, t3 := m.tags.GetID(ngram.Tags[0]), m.tags.GetID(ngram.Tags[1])
			c2 := ratio(ngram.Count-1, m.biCtx[t2]-1)
			c1 := ratio(m.uniCount[t3]-1, m.uniTotal-1)
			if c2 >= c1 {
				votes[1] += ngram.Count
			} else {
				votes[0] += ngram.Count
			}
		}
	}

	sum := votes[0] + votes[1] + votes[2]
	if sum <= 0 {
		return DefaultLambdas
	}
	return [3]float64{votes[0] / sum, votes[1] / sum, votes[2] / sum}
}

// compileClasses builds the per-flavor tag distributions. A class pseudo-token stored in the lexical
// table (e.g. "@CARD") wins; otherwise counts are aggregated from the tokens of that class, all of them
// for priority classes and only the rare ones for the rest.
func (m *Model) compileClasses(lf *freq.Lexfreqs) {
	maxCount := m.params.Unknown.MaxCount
	specials := lf.ComputeSpecials(m.taster.Classify, func(token, class string, total float64) bool {
		return m.taster.IsPriority(class) || maxCount <= 0 || total <= maxCount
	})

	m.classes = make(map[string]*lexicon.Distribution)
	for _, label := range m.taster.Labels() {
		if label == "" {
			continue
		}
		entry := lf.Entry(label)
		if entry == nil || !strings.HasPrefix(label, "@") {
			entry = specials.Entry(label)
		}
		if entry == nil || entry.Total <= 0 {
			continue
		}
		dist := lexicon.NewDistribution()
		for _, tag := range entry.Tags {
			dist.Add(tag, entry.Counts[tag])
		}
		m.classes[label] = dist
	}
}

func (m *Model) compileOpenClass() error {
	if len(m.params.Unknown.OpenClassTags) == 0 {
		for t := 1; t < m.ntags; t++ {
			m.openClass = append(m.openClass, t)
		}
		return nil
	}
	for _, tag := range m.params.Unknown.OpenClassTags {
		id, ok := m.tags.Lookup(tag)
		if !ok || id == m.boundary {
			return configError("open class tag %q is not in the tag set", tag)
		}
		m.openClass = append(m.openClass, id)
	}
	sort.Ints(m.openClass)
	return nil
}

// Transition returns the interpolated P(t3 | t1, t2), t1 being the earlier tag. Weights of orders
// whose context was never seen move to the lower orders, so the estimate stays a distribution.
func (m *Model) Transition(t1, t2, t3 int) float64 {
	n := m.ntags
	w1, w2, w3 := m.lambdas[0], m.lambdas[1], m.lambdas[2]

	p1 := m.uniCount[t3] / m.uniTotal
	p2, p3 := 0.0, 0.0
	if ctx := m.triCtx[t1*n+t2]; ctx > 0 {
		p3 = m.triCount[(t1*n+t2)*n+t3] / ctx
	} else {
		if w1+w2 > 0 {
			w1, w2 = w1+w3*w1/(w1+w2), w2+w3*w2/(w1+w2)
		} else {
			w2 = w3
		}
		w3 = 0
	}
	if ctx := m.biCtx[t2]; ctx > 0 {
		p2 = m.biCount[t2*n+t3] / ctx
	} else {
		w1 += w2
		w2 = 0
	}

	p := w1*p1 + w2*p2 + w3*p3
	if p < m.params.Floor {
		return m.params.Floor
	}
	return p
}

func (m *Model) LogTransition(t1, t2, t3 int) float64 {
	return math.Log(m.Transition(t1, t2, t3))
}

func (m *Model) Lambdas() [3]float64 {
	return m.lambdas
}

// Tags lists the tag set without the boundary tag, in id order.
func (m *Model) Tags() []string {
	return m.tags.Strings()[1:]
}

func (m *Model) TagID(tag string) (int, bool) {
	return m.tags.Lookup(tag)
}

func (m *Model) TagName(id int) string {
	return m.tags.GetString(id)
}

func (m *Model) Boundary() int {
	return m.boundary
}

func (m *Model) Known(token string) bool {
	return m.lexicon.Contains(token)
}

func (m *Model) Classify(token string) string {
	return m.taster.Classify(token)
}

func (m *Model) Suffixes() *lexicon.SuffixTrie {
	return m.suffixes
}

// Oracle returns the morphological oracle the model was compiled with, or nil.
func (m *Model) Oracle() MorphOracle {
	return m.params.Oracle
}
