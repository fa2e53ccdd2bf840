// Package flavor classifies tokens by their orthographic shape with an ordered list of regular expressions.
package flavor

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"text2phenotype.com/hmmtag/utils"
)

const (
	DefaultLabel = "@OTHER"

	Card       = "@CARD"
	CardPunct  = "@CARDPUNCT"
	CardSeps   = "@CARDSEPS"
	CardSuffix = "@CARDSUFFIX"
	Roman      = "@ROMAN"
	Punct      = "@PUNCT"
	Abbrev     = "@ABBREV"
	Hyphen     = "@HYPHEN"
	Upper      = "@UPPER"
	Capital    = "@CAPITALIZED"
	Lower      = "@LOWER"
	Mixed      = "@MIXED"

	defaultKeyword = "DEFAULT"
)

// Rule maps tokens matching Pattern to Label.
type Rule struct {
	Label   string
	Pattern string
	re      *regexp.Regexp
}

// Taster applies its rules in declaration order; the first match wins.
type Taster struct {
	rules    []Rule
	Default  string
	priority map[string]bool
}

func NewTaster() *Taster {
	return &Taster{Default: DefaultLabel, priority: make(map[string]bool)}
}

// romanNumeral accepts well-formed numerals up to MMMMCMXCIX. Each alternative starts at a different
// non-empty place value so the empty string never matches.
const romanNumeral = `^(M{1,4}(CM|CD|D?C{0,3})(XC|XL|L?X{0,3})(IX|IV|V?I{0,3})` +
	`|(CM|CD|DC{0,3}|C{1,3})(XC|XL|L?X{0,3})(IX|IV|V?I{0,3})` +
	`|(XC|XL|LX{0,3}|X{1,3})(IX|IV|V?I{0,3})` +
	`|(IX|IV|VI{0,3}|I{1,3}))\.?$`

// DefaultTaster returns the built-in rule set with numbers, roman numerals and punctuation as priority classes.
func DefaultTaster() *Taster {
	t := NewTaster()
	for _, r := range []struct{ label, pattern string }{
		{Card, `^[0-9]+$`},
		{CardPunct, `^[0-9]+[,.\-]$`},
		{CardSeps, `^[0-9][0-9,.\-]+$`},
		{CardSuffix, `^[0-9][0-9,.\-]*[^0-9,.\-].{0,3}$`},
		// single letters are words or initials before they are numerals
		{Upper, `^[MDCLXVI]$`},
		{Abbrev, `^[MDCLXVI]\.$`},
		{Roman, romanNumeral},
		{Punct, `^[\p{P}\p{S}]+$`},
		{Abbrev, `^(\p{L}\.){2,}$|^\p{L}{1,4}\.$`},
		{Hyphen, `^[\p{L}\p{N}]+(-[\p{L}\p{N}]+)+$`},
		{Upper, `^\p{Lu}+$`},
		{Capital, `^\p{Lu}\p{Ll}+$`},
		{Lower, `^\p{Ll}+$`},
		{Mixed, `^\p{L}+$`},
	} {
		// built-in patterns are known to compile
		if err := t.AddRule(r.label, r.pattern); err != nil {
			panic(err)
		}
	}
	t.SetPriority(Card, CardPunct, CardSeps, CardSuffix, Roman, Punct)
	return t
}

func (t *Taster) AddRule(label string, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("rule %q: %w", label, err)
	}
	t.rules = append(t.rules, Rule{Label: label, Pattern: pattern, re: re})
	return nil
}

// Classify returns the label of the first matching rule, or the default label.
func (t *Taster) Classify(token string) string {
	for i := range t.rules {
		if t.rules[i].re.MatchString(token) {
			return t.rules[i].Label
		}
	}
	return t.Default
}

func (t *Taster) Rules() []Rule {
	return t.rules
}

// Labels lists the rule labels in declaration order without duplicates, followed by the default label.
func (t *Taster) Labels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, r := range t.rules {
		if !seen[r.Label] {
			seen[r.Label] = true
			labels = append(labels, r.Label)
		}
	}
	if !seen[t.Default] {
		labels = append(labels, t.Default)
	}
	return labels
}

func (t *Taster) HasLabel(label string) bool {
	for _, l := range t.Labels() {
		if l == label {
			return true
		}
	}
	return false
}

// SetPriority marks classes whose statistics take precedence over the suffix trie for unknown tokens.
func (t *Taster) SetPriority(labels ...string) {
	t.priority = make(map[string]bool, len(labels))
	for _, l := range labels {
		t.priority[l] = true
	}
}

func (t *Taster) IsPriority(label string) bool {
	return t.priority[label]
}

// Load appends rules read from r. Each line is LABEL<TAB>REGEX; a DEFAULT<TAB>LABEL line sets the
// default label; lines starting with %% and lines without a tab are ignored.
func (t *Taster) Load(r io.Reader, name string) error {
	scanner := utils.NewLineScanner(r, 64*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "%%") {
			continue
		}
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			continue
		}
		label, pattern := line[:tab], strings.TrimSpace(line[tab+1:])
		if label == defaultKeyword {
			t.Default = pattern
			continue
		}
		if pattern == "" {
			continue
		}
		if err := t.AddRule(label, pattern); err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
	}
	return scanner.Err()
}

func LoadFile(path string) (*Taster, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	t := NewTaster()
	if err := t.Load(file, path); err != nil {
		return nil, err
	}
	return t, nil
}
