package compiler

import (
	"errors"
	"math"
	"strconv"

	"text2phenotype.com/hmmtag/freq"
)

type lexPair struct {
	tag   string
	count float64
}

// parser keeps the tags of the last n-gram line for compact continuation lines. prevSkipped marks
// a rejected last line, whose prefix is unknown.
type parser struct {
	file        string
	sc          *scanner
	prev        []string
	prevSkipped bool
}

func (p *parser) errorAt(f field, msg string) *Error {
	return &Error{File: p.file, Line: f.line, Column: f.column, Text: f.text, Msg: msg}
}

func (p *parser) errorAtEnd(rec record, msg string) *Error {
	last := rec.fields[len(rec.fields)-1]
	return &Error{File: p.file, Line: rec.line, Column: rec.end, Text: last.text, Msg: msg}
}

func (p *parser) count(f field) (float64, *Error) {
	if f.text == "" {
		return 0, p.errorAt(f, "missing count")
	}
	n, err := strconv.ParseFloat(f.text, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, p.errorAt(f, "count out of range")
		}
		return 0, p.errorAt(f, "malformed count")
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, p.errorAt(f, "count must be finite")
	}
	if n < 0 {
		return 0, p.errorAt(f, "negative count")
	}
	return n, nil
}

// lexLine parses `token (TAB tag TAB count)+`. The legacy layout `token TAB total (TAB tag TAB count)+`
// is recognised by its even field count; its total is checked and then recomputed from the pairs.
func (p *parser) lexLine(rec record) (string, []lexPair, *Error) {
	fields := rec.fields
	token := fields[0]
	if token.text == "" {
		return "", nil, p.errorAt(token, "empty token")
	}
	if len(fields) < 3 {
		return "", nil, p.errorAtEnd(rec, "expected TAG and COUNT after token")
	}

	first := 1
	if len(fields)%2 == 0 {
		if _, err := p.count(fields[1]); err != nil {
			if _, parseErr := strconv.ParseFloat(fields[1].text, 64); parseErr != nil {
				return "", nil, p.errorAtEnd(rec, "expected COUNT after tag")
			}
			err.Msg = "invalid token total: " + err.Msg
			return "", nil, err
		}
		first = 2
	}

	pairs := make([]lexPair, 0, (len(fields)-first)/2)
	for i := first; i+1 < len(fields); i += 2 {
		tag := fields[i]
		if tag.text == "" {
			return "", nil, p.errorAt(tag, "empty tag")
		}
		n, err := p.count(fields[i+1])
		if err != nil {
			return "", nil, err
		}
		pairs = append(pairs, lexPair{tag: tag.text, count: n})
	}
	return token.text, pairs, nil
}

// ngramLine parses `tag+ TAB count`. Leading empty tags are taken from the previous n-gram line.
func (p *parser) ngramLine(rec record) ([]string, float64, *Error) {
	fields := rec.fields
	if len(fields) < 2 {
		return nil, 0, p.errorAtEnd(rec, "expected at least one tag and a count")
	}
	tagFields := fields[:len(fields)-1]
	if len(tagFields) > freq.MaxOrder {
		return nil, 0, p.errorAt(tagFields[freq.MaxOrder], "n-gram longer than a trigram")
	}

	tags := make([]string, len(tagFields))
	leading := true
	for i, f := range tagFields {
		if f.text != "" {
			leading = false
			tags[i] = f.text
			continue
		}
		if !leading {
			return nil, 0, p.errorAt(f, "empty tag after a non-empty tag")
		}
		if p.prevSkipped {
			return nil, 0, p.errorAt(f, "empty tag continues a skipped n-gram")
		}
		if i >= len(p.prev) {
			return nil, 0, p.errorAt(f, "empty tag with no previous n-gram to continue")
		}
		tags[i] = p.prev[i]
	}
	if leading {
		return nil, 0, p.errorAt(tagFields[len(tagFields)-1], "compact line omits every tag")
	}

	n, err := p.count(fields[len(fields)-1])
	if err != nil {
		return nil, 0, err
	}
	return tags, n, nil
}
