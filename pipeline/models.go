package pipeline

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"text2phenotype.com/hmmtag/compiler"
	"text2phenotype.com/hmmtag/flavor"
	"text2phenotype.com/hmmtag/morph"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/types"
)

// ModelFetcher downloads parameter files of configurations whose model source is S3.
type ModelFetcher interface {
	Download(key string) ([]byte, error)
}

// LoadModel compiles the parameter files named by cfg into a probability model. Relative file
// paths are resolved against the directory of the configuration file.
func LoadModel(cfg types.Configuration, fetcher ModelFetcher) (*pos.Model, error) {
	lexSrc, err := readResource(cfg, cfg.Model.Lexfreqs, fetcher)
	if err != nil {
		return nil, err
	}
	ngSrc, err := readResource(cfg, cfg.Model.Ngrams, fetcher)
	if err != nil {
		return nil, err
	}

	c := compiler.New(compiler.Options{Strict: cfg.Model.Strict})
	fm, _, err := c.Model(bytes.NewReader(lexSrc), cfg.Model.Lexfreqs, bytes.NewReader(ngSrc), cfg.Model.Ngrams)
	if err != nil {
		return nil, err
	}

	taster, err := loadTaster(cfg, fetcher)
	if err != nil {
		return nil, err
	}
	params := ModelParams(cfg)
	analyzer, err := loadAnalyzer(cfg, fetcher)
	if err != nil {
		return nil, err
	}
	if analyzer != nil {
		params.Oracle = analyzer
	}
	return pos.Compile(fm, taster, params)
}

func loadAnalyzer(cfg types.Configuration, fetcher ModelFetcher) (*morph.Analyzer, error) {
	if cfg.Morph.File == "" {
		return nil, nil
	}
	src, err := readResource(cfg, cfg.Morph.File, fetcher)
	if err != nil {
		return nil, err
	}
	rules, err := morph.ParseRules(src)
	if err != nil {
		return nil, fmt.Errorf("configuration %q: %w", cfg.Name, err)
	}
	return morph.NewAnalyzer(rules)
}

func readResource(cfg types.Configuration, name string, fetcher ModelFetcher) ([]byte, error) {
	if cfg.Model.Source == types.ModelSourceS3 {
		if fetcher == nil {
			return nil, fmt.Errorf("configuration %q reads its model from S3 but no S3 client is available", cfg.Name)
		}
		buf, err := fetcher.Download(name)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", name, err)
		}
		return buf, nil
	}
	return ioutil.ReadFile(resolvePath(cfg, name))
}

func resolvePath(cfg types.Configuration, name string) string {
	if filepath.IsAbs(name) || cfg.FilePath == "" {
		return name
	}
	return filepath.Join(filepath.Dir(cfg.FilePath), name)
}

func loadTaster(cfg types.Configuration, fetcher ModelFetcher) (*flavor.Taster, error) {
	flavors := cfg.Flavors
	var taster *flavor.Taster
	if flavors.File == "" && len(flavors.Rules) == 0 {
		taster = flavor.DefaultTaster()
	} else {
		taster = flavor.NewTaster()
	}

	if flavors.File != "" {
		src, err := readResource(cfg, flavors.File, fetcher)
		if err != nil {
			return nil, err
		}
		if err := taster.Load(bytes.NewReader(src), flavors.File); err != nil {
			return nil, err
		}
	}
	for _, rule := range flavors.Rules {
		if err := taster.AddRule(rule.Label, rule.Pattern); err != nil {
			return nil, fmt.Errorf("configuration %q: %w", cfg.Name, err)
		}
	}
	if flavors.Default != "" {
		taster.Default = flavors.Default
	}
	if len(flavors.Priority) > 0 {
		taster.SetPriority(flavors.Priority...)
	}
	return taster, nil
}

func ModelParams(cfg types.Configuration) pos.ModelParams {
	return pos.ModelParams{
		Boundary:     cfg.Boundary,
		LexSmoothing: cfg.Smoothing.LexSmoothing,
		Lambdas:      cfg.Smoothing.Lambdas,
		Floor:        cfg.Smoothing.Floor,
		Unknown: pos.UnknownParams{
			MaxCount:       cfg.Unknown.MaxCount,
			MaxSuffixLen:   cfg.Unknown.MaxSuffixLen,
			MinSuffixLen:   cfg.Unknown.MinSuffixLen,
			MinSuffixCount: cfg.Unknown.MinSuffixCount,
			OpenClassTags:  cfg.Unknown.OpenClassTags,
			CacheSize:      cfg.Unknown.CacheSize,
		},
	}
}

func DecoderParams(cfg types.Configuration) pos.DecoderParams {
	params := pos.DecoderParams{
		BeamWidth:   types.DefaultBeamWidth,
		TopK:        cfg.Decoder.TopK,
		UseAnalyses: cfg.Decoder.UseAnalyses,
	}
	if cfg.Decoder.BeamWidth != nil {
		params.BeamWidth = *cfg.Decoder.BeamWidth
	}
	return params
}
