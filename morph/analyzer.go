package morph

import (
	"strings"
)

// Analyzer proposes tags for word forms and lemmatizes tagged forms using a rule file.
type Analyzer struct {
	rules      *Rules
	normalizer *normalizer
}

func NewAnalyzer(rules *Rules) (*Analyzer, error) {
	n, err := newNormalizer()
	if err != nil {
		return nil, err
	}
	return &Analyzer{rules: rules, normalizer: n}, nil
}

func (a *Analyzer) form(text string) string {
	return strings.ToLower(a.normalizer.normalize(text))
}

// Analyze lists the tags a form can carry according to the rules, without duplicates and in rule
// order: numbers, then nouns, verbs, adjectives and adverbs.
func (a *Analyzer) Analyze(token string) []string {
	form := a.form(token)
	if form == urlResult {
		return nil
	}
	var tags []string
	add := func(ts []string) {
		for _, t := range ts {
			if !AnyOf(t, tags...) {
				tags = append(tags, t)
			}
		}
	}

	if a.rules.cardinals[form] {
		add(a.rules.CardinalTags)
	}
	if a.rules.ordinals[form] || isDigitOrdinal(form) {
		add(a.rules.OrdinalTags)
	}
	for _, class := range a.rules.classes() {
		if class.base[form] {
			add(class.BaseTags)
		}
		if _, ok := class.getException(form); ok {
			add(class.ExceptionTags)
		}
		if _, rule, ok := class.getBase(form); ok {
			add(rule.Tags)
		}
	}
	return tags
}

// Lemma returns the base form of a tagged form, or the normalized lower-cased form when no rule applies.
func (a *Analyzer) Lemma(text string, tag string) string {
	form := a.form(text)
	tag = strings.ToUpper(tag)

	if number, ok := a.rules.getNumber(form, tag); ok {
		return number
	}
	if class := a.rules.classOf(tag); class != nil {
		if exception, ok := class.getException(form); ok {
			return exception
		}
		if base, _, ok := class.getBase(form); ok {
			return base
		}
	}
	if abbreviation, ok := a.rules.getAbbreviation(form, tag); ok {
		return abbreviation
	}
	return form
}
