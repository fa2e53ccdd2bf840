package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/rs/zerolog"
	"text2phenotype.com/hmmtag/freq"
	"text2phenotype.com/hmmtag/pipeline"
	"text2phenotype.com/hmmtag/s3client"
	"text2phenotype.com/hmmtag/types"
)

const (
	lexfreqsExt = ".lex"
	ngramsExt   = ".123"
)

type trainParams struct {
	Corpus   string
	Out      string
	Boundary string
	Compact  bool
	Upload   string
}

func train(params trainParams, hmmLogger zerolog.Logger) error {
	if params.Out == "" {
		return fmt.Errorf("-out is required with -train")
	}
	f, err := os.Open(params.Corpus)
	if err != nil {
		return err
	}
	defer f.Close()

	fm := freq.NewModel()
	sentences, err := fm.Train(f, params.Boundary)
	if err != nil {
		return fmt.Errorf("train on %s: %w", params.Corpus, err)
	}
	hmmLogger.Info().
		Str("corpus", params.Corpus).
		Int("sentences", sentences).
		Int("tokens", fm.Lex.Len()).
		Int("ngrams", fm.Ngrams.Len()).
		Msg("Counted corpus")

	lexPath := params.Out + lexfreqsExt
	ngramsPath := params.Out + ngramsExt
	if err := writeFile(lexPath, fm.Lex.Save); err != nil {
		return err
	}
	err = writeFile(ngramsPath, func(w io.Writer) error {
		return fm.Ngrams.Save(w, params.Compact)
	})
	if err != nil {
		return err
	}
	hmmLogger.Info().Str("lexfreqs", lexPath).Str("ngrams", ngramsPath).Msg("Saved parameter files")

	if params.Upload == "" {
		return nil
	}
	client, err := s3client.New()
	if err != nil {
		return err
	}
	defer client.Close()
	for _, file := range []string{lexPath, ngramsPath} {
		key := params.Upload + path.Base(file)
		if _, err := client.UploadFile(file, key); err != nil {
			return fmt.Errorf("upload %s: %w", file, err)
		}
		hmmLogger.Info().Str("file", file).Str("key", key).Msg("Uploaded parameter file")
	}
	return nil
}

func writeFile(filePath string, save func(w io.Writer) error) error {
	f, err := os.Create(filePath)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := save(w); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// checkConfigurations compiles every configuration and returns how many failed.
func checkConfigurations(cfgs []types.Configuration, fetcher pipeline.ModelFetcher, hmmLogger zerolog.Logger) int {
	failed := 0
	for _, cfg := range cfgs {
		model, err := pipeline.LoadModel(cfg, fetcher)
		if err != nil {
			hmmLogger.Err(err).Str("config", cfg.Name).Msg("Configuration does not compile")
			failed++
			continue
		}
		if _, err := pipeline.NewPOSTagger(model, pipeline.TaggerParams{Name: cfg.Name, Decoder: pipeline.DecoderParams(cfg)}, nil); err != nil {
			hmmLogger.Err(err).Str("config", cfg.Name).Msg("Invalid decoder parameters")
			failed++
			continue
		}
		lambdas := model.Lambdas()
		hmmLogger.Info().
			Str("config", cfg.Name).
			Int("tags", len(model.Tags())).
			Floats64("lambdas", lambdas[:]).
			Msg("Configuration compiles")
	}
	return failed
}
