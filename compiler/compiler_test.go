package compiler

import (
	"bytes"
	"io/ioutil"
	"math/rand"
	"path"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"text2phenotype.com/hmmtag/freq"
)

func ngramDump(ng *freq.Ngrams) []freq.Ngram {
	return ng.Sorted()
}

type lexRow struct {
	Token string
	Tags  []string
	Total float64
	Count map[string]float64
}

func lexDump(lf *freq.Lexfreqs) []lexRow {
	var rows []lexRow
	for _, token := range lf.Tokens() {
		entry := lf.Entry(token)
		rows = append(rows, lexRow{Token: token, Tags: entry.Tags, Total: entry.Total, Count: entry.Counts})
	}
	return rows
}

func TestLexfreqsRoundTrip(t *testing.T) {
	lf := freq.NewLexfreqs()
	require.NoError(t, lf.AddLexicalCount("the", "DT", 100))
	require.NoError(t, lf.AddLexicalCount("run", "VB", 3))
	require.NoError(t, lf.AddLexicalCount("run", "NN", 2.25))
	require.NoError(t, lf.AddLexicalCount("naïve", "JJ", 1e-9))
	require.NoError(t, lf.AddLexicalCount("1984", "CD", 12345678901))

	var buf bytes.Buffer
	require.NoError(t, lf.Save(&buf))

	loaded, report, err := New(Options{Strict: true}).Lexfreqs(&buf, "roundtrip.lex")
	require.NoError(t, err)
	assert.Equal(t, 4, report.Records)
	assert.Empty(t, report.Skipped)
	if diff := cmp.Diff(lexDump(lf), lexDump(loaded)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, lf.NTokens, loaded.NTokens)
}

func randomNgrams(rnd *rand.Rand) *freq.Ngrams {
	tags := []string{"A", "B", "C", "D"}
	ng := freq.NewNgrams()
	for i := 0; i < 200; i++ {
		order := 1 + rnd.Intn(freq.MaxOrder)
		tuple := make([]string, order)
		for j := range tuple {
			tuple[j] = tags[rnd.Intn(len(tags))]
		}
		_ = ng.AddNgramCount(tuple, float64(rnd.Intn(50))/4)
	}
	return ng
}

func TestNgramsRoundTripAndCompactEquivalence(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for round := 0; round < 5; round++ {
		ng := randomNgrams(rnd)

		var verbose, compact bytes.Buffer
		require.NoError(t, ng.Save(&verbose, false))
		require.NoError(t, ng.Save(&compact, true))
		require.Less(t, compact.Len(), verbose.Len())

		c := New(Options{Strict: true})
		fromVerbose, _, err := c.Ngrams(&verbose, "verbose.123")
		require.NoError(t, err)
		fromCompact, _, err := c.Ngrams(&compact, "compact.123")
		require.NoError(t, err)

		if diff := cmp.Diff(ngramDump(ng), ngramDump(fromVerbose)); diff != "" {
			t.Fatalf("verbose round trip mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(ngramDump(fromVerbose), ngramDump(fromCompact)); diff != "" {
			t.Fatalf("compact decoding differs from verbose (-verbose +compact):\n%s", diff)
		}
		assert.Equal(t, ng.UnigramTotal, fromCompact.UnigramTotal)
	}
}

func TestMalformedCountIsReportedWithPosition(t *testing.T) {
	src := "%% model\n" +
		"the\tDT\t100\n" +
		"\n" +
		"dog\tNN\tabc\n" +
		"cat\tNN\t4\n"

	lf, _, err := New(Options{Strict: true}).Lexfreqs(strings.NewReader(src), "en.lex")
	require.Error(t, err)
	assert.Nil(t, lf)

	diag, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "en.lex", diag.File)
	assert.Equal(t, 4, diag.Line)
	assert.Equal(t, 8, diag.Column)
	assert.Equal(t, "abc", diag.Text)
	assert.Contains(t, err.Error(), "en.lex:4:8")
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestLenientModeSkipsLines(t *testing.T) {
	src := "the\tDT\t100\n" +
		"dog\tNN\tabc\n" +
		"\tNN\t3\n" +
		"cat\tNN\t4\n"

	lf, report, err := New(Options{}).Lexfreqs(strings.NewReader(src), "en.lex")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Records)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, 2, report.Skipped[0].Line)
	assert.Equal(t, "abc", report.Skipped[0].Text)
	assert.Equal(t, 3, report.Skipped[1].Line)
	assert.Equal(t, "empty token", report.Skipped[1].Msg)

	assert.Equal(t, 0.0, lf.Total("dog"))
	assert.Equal(t, 4.0, lf.Total("cat"))
}

func TestLexfreqsSyntax(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		line   int
		column int
		text   string
	}{
		{"missing pair", "dog\n", 1, 4, "dog"},
		{"dangling tag", "dog\tNN\t3\tVB\n", 1, 12, "VB"},
		{"empty tag", "dog\t\t3\n", 1, 5, ""},
		{"negative", "dog\tNN\t-3\n", 1, 8, "-3"},
		{"infinite", "dog\tNN\tInf\n", 1, 8, "Inf"},
		{"bad legacy total", "dog\t-1\tNN\t3\n", 1, 5, "-1"},
		{"multibyte column", "çà\tNN\tx\n", 1, 7, "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := New(Options{Strict: true}).Lexfreqs(strings.NewReader(tc.src), "case.lex")
			diag, ok := AsError(err)
			require.True(t, ok, "expected a positioned error, got %v", err)
			assert.Equal(t, tc.line, diag.Line)
			assert.Equal(t, tc.column, diag.Column)
			assert.Equal(t, tc.text, diag.Text)
		})
	}
}

func TestLexfreqsFormats(t *testing.T) {
	src := "the\t100\tDT\t100\r\n" +
		"run\tVB\t3e0\tNN\t.5\n" +
		"   \n" +
		"walk\t7\tVB\t5\tNN\t2\n"

	lf, report, err := New(Options{Strict: true}).Lexfreqs(strings.NewReader(src), "mixed.lex")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Records)
	assert.Equal(t, 100.0, lf.LookupLexical("the", "DT"))
	assert.Equal(t, 3.5, lf.Total("run"))
	assert.Equal(t, []string{"VB", "NN"}, lf.TagSet("walk"))
	assert.Equal(t, 7.0, lf.Total("walk"))
}

func TestNgramsSyntax(t *testing.T) {
	t.Run("compact continuation", func(t *testing.T) {
		src := "A\tB\tC\t5\n\t\tD\t3\n\tE\t1\nF\t2\n"
		ng, _, err := New(Options{Strict: true}).Ngrams(strings.NewReader(src), "x.123")
		require.NoError(t, err)
		assert.Equal(t, 3.0, ng.LookupNgram("A", "B", "D"))
		assert.Equal(t, 1.0, ng.LookupNgram("A", "E"))
		assert.Equal(t, 2.0, ng.LookupNgram("F"))
		assert.Equal(t, 2.0, ng.UnigramTotal)
	})

	t.Run("continuation after a skipped line", func(t *testing.T) {
		src := "A\tB\tC\t5\nX\tY\tZ\tabc\n\t\tW\t3\nV\t1\n\tU\t2\n"
		ng, report, err := New(Options{}).Ngrams(strings.NewReader(src), "x.123")
		require.NoError(t, err)
		assert.Equal(t, 3, report.Records)
		require.Len(t, report.Skipped, 2)
		assert.Equal(t, 2, report.Skipped[0].Line)
		assert.Equal(t, 3, report.Skipped[1].Line)
		assert.Equal(t, 1, report.Skipped[1].Column)
		assert.Equal(t, "empty tag continues a skipped n-gram", report.Skipped[1].Msg)

		assert.Equal(t, 0.0, ng.LookupNgram("A", "B", "W"))
		assert.Equal(t, 0.0, ng.LookupNgram("X", "Y", "W"))
		assert.Equal(t, 2.0, ng.LookupNgram("V", "U"))
	})

	cases := []struct {
		name   string
		src    string
		line   int
		column int
		text   string
	}{
		{"continuation without predecessor", "\tB\t1\n", 1, 1, ""},
		{"continuation longer than predecessor", "A\t1\n\t\tC\t1\n", 2, 2, ""},
		{"hole after tag", "A\t\tC\t1\n", 1, 3, ""},
		{"all tags omitted", "A\tB\t2\n\t\t3\n", 2, 2, ""},
		{"too long", "A\tB\tC\tD\t1\n", 1, 7, "D"},
		{"missing count", "A\n", 1, 2, "A"},
		{"bad count", "A\tB\t1,5\n", 1, 5, "1,5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := New(Options{Strict: true}).Ngrams(strings.NewReader(tc.src), "case.123")
			diag, ok := AsError(err)
			require.True(t, ok, "expected a positioned error, got %v", err)
			assert.Equal(t, tc.line, diag.Line)
			assert.Equal(t, tc.column, diag.Column)
			assert.Equal(t, tc.text, diag.Text)
		})
	}
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	lexPath := path.Join(dir, "m.lex")
	ngPath := path.Join(dir, "m.123")
	require.NoError(t, ioutil.WriteFile(lexPath, []byte("the\tDT\t100\n"), 0o644))
	require.NoError(t, ioutil.WriteFile(ngPath, []byte("DT\t100\nDT\tNN\t80\n"), 0o644))

	m, reports, err := New(Options{Strict: true}).LoadModel(lexPath, ngPath)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 100.0, m.Lex.Total("the"))
	assert.Equal(t, 80.0, m.Ngrams.LookupNgram("DT", "NN"))

	require.NoError(t, ioutil.WriteFile(ngPath, []byte("DT\tNN\tx\n"), 0o644))
	m, _, err = New(Options{Strict: true}).LoadModel(lexPath, ngPath)
	require.Error(t, err)
	assert.Nil(t, m)

	_, _, err = New(Options{}).LoadModel(path.Join(dir, "missing.lex"), ngPath)
	require.Error(t, err)
}
