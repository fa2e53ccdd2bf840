// Package compiler reads the textual lexical and n-gram parameter files into frequency tables.
package compiler

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/rs/zerolog"
	"text2phenotype.com/hmmtag/freq"
	"text2phenotype.com/hmmtag/logger"
)

// Options controls how malformed lines are handled. In strict mode the first malformed line
// fails the whole load; otherwise the line is logged, recorded in the report and skipped.
type Options struct {
	Strict bool
}

// Report summarises a successful load.
type Report struct {
	File    string
	Records int
	Skipped []*Error
}

type Compiler struct {
	opts      Options
	hmmLogger zerolog.Logger
}

func New(opts Options) *Compiler {
	return &Compiler{opts: opts, hmmLogger: logger.NewLogger("ModelCompiler")}
}

// handle decides what a diagnostic does to the current load. A nil return means skip and continue.
func (c *Compiler) handle(report *Report, diag *Error) error {
	if c.opts.Strict {
		return diag
	}
	c.hmmLogger.Warn().
		Str("file", diag.File).
		Int("line", diag.Line).
		Int("column", diag.Column).
		Str("text", diag.Text).
		Msg("Skipping malformed line: " + diag.Msg)
	report.Skipped = append(report.Skipped, diag)
	return nil
}

func readAll(r io.Reader, name string) ([]byte, error) {
	src, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, &Error{File: name, Line: 1, Column: 1, Msg: "read failed: " + err.Error()}
	}
	return src, nil
}

// Lexfreqs compiles a lexical frequency file. The returned table is only handed out when the whole
// load succeeded; a failed load never exposes partial counts.
func (c *Compiler) Lexfreqs(r io.Reader, name string) (*freq.Lexfreqs, Report, error) {
	report := Report{File: name}
	src, err := readAll(r, name)
	if err != nil {
		return nil, report, err
	}

	lf := freq.NewLexfreqs()
	p := parser{file: name, sc: newScanner(src)}
	for rec, ok := p.sc.next(); ok; rec, ok = p.sc.next() {
		token, pairs, diag := p.lexLine(rec)
		if diag != nil {
			if err := c.handle(&report, diag); err != nil {
				return nil, report, err
			}
			continue
		}
		for _, pair := range pairs {
			if err := lf.AddLexicalCount(token, pair.tag, pair.count); err != nil {
				return nil, report, &Error{File: name, Line: rec.line, Column: 1, Text: token, Msg: err.Error()}
			}
		}
		report.Records++
	}
	c.hmmLogger.Debug().Str("file", name).Int("records", report.Records).Int("skipped", len(report.Skipped)).Msg("Compiled lexical frequencies")
	return lf, report, nil
}

// Ngrams compiles an n-gram file in verbose or compact form.
func (c *Compiler) Ngrams(r io.Reader, name string) (*freq.Ngrams, Report, error) {
	report := Report{File: name}
	src, err := readAll(r, name)
	if err != nil {
		return nil, report, err
	}

	ng := freq.NewNgrams()
	p := parser{file: name, sc: newScanner(src)}
	for rec, ok := p.sc.next(); ok; rec, ok = p.sc.next() {
		tags, n, diag := p.ngramLine(rec)
		if diag != nil {
			if err := c.handle(&report, diag); err != nil {
				return nil, report, err
			}
			p.prev, p.prevSkipped = nil, true
			continue
		}
		if err := ng.AddNgramCount(tags, n); err != nil {
			return nil, report, &Error{File: name, Line: rec.line, Column: 1, Text: rec.fields[0].text, Msg: err.Error()}
		}
		p.prev, p.prevSkipped = tags, false
		report.Records++
	}
	c.hmmLogger.Debug().Str("file", name).Int("records", report.Records).Int("skipped", len(report.Skipped)).Msg("Compiled n-grams")
	return ng, report, nil
}

func (c *Compiler) LexfreqsFile(path string) (*freq.Lexfreqs, Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Report{File: path}, fmt.Errorf("open lexical frequencies: %w", err)
	}
	defer file.Close()
	return c.Lexfreqs(file, path)
}

func (c *Compiler) NgramsFile(path string) (*freq.Ngrams, Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Report{File: path}, fmt.Errorf("open n-grams: %w", err)
	}
	defer file.Close()
	return c.Ngrams(file, path)
}

// Model compiles both parameter streams into a frequency model. Either both tables load or nothing is returned.
func (c *Compiler) Model(lex io.Reader, lexName string, ngrams io.Reader, ngramsName string) (*freq.Model, []Report, error) {
	lf, lexReport, err := c.Lexfreqs(lex, lexName)
	if err != nil {
		return nil, []Report{lexReport}, err
	}
	ng, ngReport, err := c.Ngrams(ngrams, ngramsName)
	if err != nil {
		return nil, []Report{lexReport, ngReport}, err
	}
	return &freq.Model{Lex: lf, Ngrams: ng}, []Report{lexReport, ngReport}, nil
}

func (c *Compiler) LoadModel(lexPath string, ngramsPath string) (*freq.Model, []Report, error) {
	lexFile, err := os.Open(lexPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open lexical frequencies: %w", err)
	}
	defer lexFile.Close()
	ngFile, err := os.Open(ngramsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open n-grams: %w", err)
	}
	defer ngFile.Close()
	return c.Model(lexFile, lexPath, ngFile, ngramsPath)
}
