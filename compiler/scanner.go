package compiler

import (
	"unicode/utf8"
)

// field is one TAB-delimited cell of a record, positioned at its first character.
type field struct {
	text   string
	line   int
	column int
}

// record is one non-empty source line split into fields. end is the column just past the last character.
type record struct {
	line   int
	end    int
	fields []field
}

// scanner walks the source bytes with an explicit cursor. Lines and columns are 1-based; columns count runes.
type scanner struct {
	src  []byte
	pos  int
	line int
}

func newScanner(src []byte) *scanner {
	return &scanner{src: src, line: 0}
}

// next returns the next record, skipping blank and comment lines. ok is false at end of input.
func (s *scanner) next() (rec record, ok bool) {
	for s.pos < len(s.src) {
		s.line++
		start := s.pos
		for s.pos < len(s.src) && s.src[s.pos] != '\n' {
			s.pos++
		}
		end := s.pos
		if s.pos < len(s.src) {
			s.pos++ // newline
		}
		if end > start && s.src[end-1] == '\r' {
			end--
		}
		line := s.src[start:end]
		if isBlank(line) || isComment(line) {
			continue
		}
		return s.split(line), true
	}
	return record{}, false
}

func (s *scanner) split(line []byte) record {
	rec := record{line: s.line}
	column := 1
	fieldStart, fieldColumn := 0, 1
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRune(line[i:])
		if r == '\t' {
			rec.fields = append(rec.fields, field{text: string(line[fieldStart:i]), line: s.line, column: fieldColumn})
			fieldStart, fieldColumn = i+size, column+1
		}
		i += size
		column++
	}
	rec.fields = append(rec.fields, field{text: string(line[fieldStart:]), line: s.line, column: fieldColumn})
	rec.end = column
	return rec
}

func isBlank(line []byte) bool {
	for _, b := range line {
		if b != ' ' && b != '\t' {
			return false
		}
	}
	return true
}

func isComment(line []byte) bool {
	return len(line) >= 2 && line[0] == '%' && line[1] == '%'
}
