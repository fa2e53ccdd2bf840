package morph

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule derives a base form by replacing Suffix with Base. Tags are the tags of forms it applies to.
type Rule struct {
	Suffix string   `yaml:"suffix"`
	Base   string   `yaml:"base"`
	Tags   []string `yaml:"tags"`
}

// Class holds the word list and inflection rules of one open word class.
type Class struct {
	Base          []string          `yaml:"base"`
	BaseTags      []string          `yaml:"base_tags"`
	Exceptions    map[string]string `yaml:"exceptions"`
	ExceptionTags []string          `yaml:"exception_tags"`
	Rules         []Rule            `yaml:"rules"`

	base map[string]bool
}

// Rules is the content of a morphology file.
type Rules struct {
	Noun          Class             `yaml:"noun"`
	Verb          Class             `yaml:"verb"`
	Adj           Class             `yaml:"adj"`
	Adv           Class             `yaml:"adv"`
	Cardinals     []string          `yaml:"cardinals"`
	Ordinals      []string          `yaml:"ordinals"`
	CardinalTags  []string          `yaml:"cardinal_tags"`
	OrdinalTags   []string          `yaml:"ordinal_tags"`
	Abbreviations map[string]string `yaml:"abbreviations"`

	cardinals map[string]bool
	ordinals  map[string]bool
}

var (
	defaultCardinalTags = []string{CD}
	defaultOrdinalTags  = []string{JJ}
)

func ParseRules(src []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(src, &rules); err != nil {
		return nil, fmt.Errorf("morphology rules: %w", err)
	}
	if err := rules.init(); err != nil {
		return nil, err
	}
	return &rules, nil
}

func (rules *Rules) init() error {
	for _, class := range rules.classes() {
		class.base = toSet(class.Base)
		exceptions := make(map[string]string, len(class.Exceptions))
		for form, base := range class.Exceptions {
			exceptions[strings.ToLower(form)] = base
		}
		class.Exceptions = exceptions
		for _, rule := range class.Rules {
			if rule.Suffix == "" {
				return errors.New("morphology rules: rule with an empty suffix")
			}
		}
	}
	rules.cardinals = toSet(rules.Cardinals)
	rules.ordinals = toSet(rules.Ordinals)
	if len(rules.CardinalTags) == 0 {
		rules.CardinalTags = defaultCardinalTags
	}
	if len(rules.OrdinalTags) == 0 {
		rules.OrdinalTags = defaultOrdinalTags
	}
	return nil
}

func (rules *Rules) classes() []*Class {
	return []*Class{&rules.Noun, &rules.Verb, &rules.Adj, &rules.Adv}
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

func (rules *Rules) classOf(tag string) *Class {
	switch {
	case IsNoun(tag):
		return &rules.Noun
	case IsVerb(tag):
		return &rules.Verb
	case IsAdjective(tag):
		return &rules.Adj
	case IsAdverb(tag):
		return &rules.Adv
	}
	return nil
}

func (rules *Rules) getNumber(form string, tag string) (string, bool) {
	if tag != CD {
		return "", false
	}
	if rules.cardinals[form] {
		return "#crd#", true
	}
	if rules.ordinals[form] || isDigitOrdinal(form) {
		return "#ord#", true
	}
	return "", false
}

func isDigitOrdinal(form string) bool {
	return AnyOf(form, "0st", "0nd", "0rd", "0th")
}

func (class *Class) getException(form string) (string, bool) {
	exc, ok := class.Exceptions[form]
	return exc, ok
}

// getBase returns the base form of the first rule whose result is a listed base word.
func (class *Class) getBase(form string) (string, *Rule, bool) {
	for i := range class.Rules {
		rule := &class.Rules[i]
		if !strings.HasSuffix(form, rule.Suffix) {
			continue
		}
		base := form[:len(form)-len(rule.Suffix)] + rule.Base
		if class.base[base] {
			return base, rule, true
		}
	}
	return "", nil, false
}

func (rules *Rules) getAbbreviation(form string, tag string) (string, bool) {
	r, ok := rules.Abbreviations[form+"_"+tag]
	return r, ok
}
