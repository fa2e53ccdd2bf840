package morph

import "regexp"

const urlResult = "#url#"

type normalizer struct {
	digitLike   *regexp.Regexp
	digitSpan   *regexp.Regexp
	urlSpan     *regexp.Regexp
	punctRepeat *regexp.Regexp
}

// normalize collapses digit runs to "0", repeated punctuation to two
// characters and whole URLs to a placeholder.
func (n *normalizer) normalize(form string) string {
	if n.urlSpan.MatchString(form) {
		return urlResult
	}
	form = n.digitLike.ReplaceAllString(form, "0")
	form = n.digitSpan.ReplaceAllString(form, "0")
	return n.punctRepeat.ReplaceAllStringFunc(form, func(s string) string {
		return s[0:2]
	})
}

func newNormalizer() (*normalizer, error) {
	var n normalizer

	re, err := regexp.Compile(`\d%|\$\d|(^|\d)\.\d|\d,\d|\d:\d|\d-\d|\d\/\d`)
	if err != nil {
		return nil, err
	}
	n.digitLike = re

	re, err = regexp.Compile(`\d+`)
	if err != nil {
		return nil, err
	}
	n.digitSpan = re

	re, err = regexp.Compile(`((([A-Za-z]{3,9}:(?:\/\/)?)(?:[-;:&=\+\$,\w]+@)?[A-Za-z0-9.-]+|(?:www.|[-;:&=\+\$,\w]+@)[A-Za-z0-9.-]+)((?:\/[\+~%\/.\w-_]*)?\??(?:[-\+=&;%@.\w_]*)#?(?:[.\!\/\\w]*))?|(\w+\.)+(com|edu|gov|int|mil|net|org|biz)$)`)
	if err != nil {
		return nil, err
	}
	n.urlSpan = re

	re, err = regexp.Compile(`\.{2,}|\!{2,}|\?{2,}|\-{2,}|\*{2,}|\={2,}|\~{2,}|\,{2,}`)
	if err != nil {
		return nil, err
	}
	n.punctRepeat = re

	return &n, nil
}
