package types

import (
	"errors"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
	"text2phenotype.com/hmmtag/logger"
)

const (
	ModelSourceFile = "file"
	ModelSourceS3   = "s3"

	DefaultBoundaryTag  = "__$"
	DefaultBeamWidth    = 1000.0
	DefaultTopK         = 1
	DefaultMaxCount     = 10
	DefaultMaxSuffixLen = 10
	DefaultMinSuffixLen = 1
	DefaultFloor        = 1e-10
	DefaultCacheSize    = 8192
)

type ModelConfig struct {
	Lexfreqs string `yaml:"lexfreqs" json:"lexfreqs"`
	Ngrams   string `yaml:"ngrams" json:"ngrams"`
	Source   string `yaml:"source" json:"source"`
	Strict   bool   `yaml:"strict" json:"strict"`
}

type DecoderConfig struct {
	BeamWidth   *float64 `yaml:"beam_width" json:"beam_width"`
	TopK        int      `yaml:"top_k" json:"top_k"`
	UseAnalyses bool     `yaml:"use_analyses" json:"use_analyses"`
	Normalize   bool     `yaml:"normalize" json:"normalize"`
}

type SmoothingConfig struct {
	LexSmoothing float64   `yaml:"lex_smoothing" json:"lex_smoothing"`
	Lambdas      []float64 `yaml:"lambdas" json:"lambdas"`
	Floor        float64   `yaml:"floor" json:"floor"`
}

type UnknownConfig struct {
	MaxCount       float64  `yaml:"max_count" json:"max_count"`
	MaxSuffixLen   int      `yaml:"max_suffix_len" json:"max_suffix_len"`
	MinSuffixLen   int      `yaml:"min_suffix_len" json:"min_suffix_len"`
	MinSuffixCount float64  `yaml:"min_suffix_count" json:"min_suffix_count"`
	OpenClassTags  []string `yaml:"open_class_tags" json:"open_class_tags"`
	CacheSize      int      `yaml:"cache_size" json:"cache_size"`
}

type FlavorRule struct {
	Label   string `yaml:"label" json:"label"`
	Pattern string `yaml:"pattern" json:"pattern"`
}

type FlavorConfig struct {
	File     string       `yaml:"file" json:"file"`
	Rules    []FlavorRule `yaml:"rules" json:"rules"`
	Default  string       `yaml:"default" json:"default"`
	Priority []string     `yaml:"priority" json:"priority"`
}

// MorphConfig names a morphology rule file. Its analyzer proposes tags for unknown tokens and
// lemmatizes the tagged output.
type MorphConfig struct {
	File string `yaml:"file" json:"file"`
}

type Configuration struct {
	Name      string          `json:"name"`
	FilePath  string          `json:"file_path"`
	Boundary  string          `yaml:"boundary" json:"boundary"`
	Model     ModelConfig     `yaml:"model" json:"model"`
	Decoder   DecoderConfig   `yaml:"decoder" json:"decoder"`
	Smoothing SmoothingConfig `yaml:"smoothing" json:"smoothing"`
	Unknown   UnknownConfig   `yaml:"unknown" json:"unknown"`
	Flavors   FlavorConfig    `yaml:"flavors" json:"flavors"`
	Morph     MorphConfig     `yaml:"morph" json:"morph"`
}

// SetDefaults fills every unset field with the service defaults.
func (cfg *Configuration) SetDefaults() {
	if cfg.Boundary == "" {
		cfg.Boundary = DefaultBoundaryTag
	}
	if cfg.Model.Source == "" {
		cfg.Model.Source = ModelSourceFile
	}
	if cfg.Decoder.BeamWidth == nil {
		width := DefaultBeamWidth
		cfg.Decoder.BeamWidth = &width
	}
	if cfg.Decoder.TopK == 0 {
		cfg.Decoder.TopK = DefaultTopK
	}
	if cfg.Smoothing.Floor == 0 {
		cfg.Smoothing.Floor = DefaultFloor
	}
	if cfg.Unknown.MaxCount == 0 {
		cfg.Unknown.MaxCount = DefaultMaxCount
	}
	if cfg.Unknown.MaxSuffixLen == 0 {
		cfg.Unknown.MaxSuffixLen = DefaultMaxSuffixLen
	}
	if cfg.Unknown.MinSuffixLen == 0 {
		cfg.Unknown.MinSuffixLen = DefaultMinSuffixLen
	}
	if cfg.Unknown.CacheSize == 0 {
		cfg.Unknown.CacheSize = DefaultCacheSize
	}
}

// Validate catches configuration errors that can be detected without loading the model.
func (cfg Configuration) Validate() error {
	if cfg.Model.Lexfreqs == "" || cfg.Model.Ngrams == "" {
		return errors.New("model.lexfreqs and model.ngrams are required")
	}
	if cfg.Model.Source != ModelSourceFile && cfg.Model.Source != ModelSourceS3 {
		return fmt.Errorf("unknown model source %q", cfg.Model.Source)
	}
	if cfg.Decoder.BeamWidth != nil && (*cfg.Decoder.BeamWidth < 0 || math.IsNaN(*cfg.Decoder.BeamWidth)) {
		return fmt.Errorf("beam width must be non-negative, got %v", *cfg.Decoder.BeamWidth)
	}
	if cfg.Decoder.TopK < 0 {
		return fmt.Errorf("top_k must be positive, got %d", cfg.Decoder.TopK)
	}
	if cfg.Unknown.MinSuffixLen > cfg.Unknown.MaxSuffixLen {
		return fmt.Errorf("min_suffix_len %d exceeds max_suffix_len %d", cfg.Unknown.MinSuffixLen, cfg.Unknown.MaxSuffixLen)
	}
	return nil
}

func ParseConfiguration(name string, buf []byte) (Configuration, error) {
	cfg := Configuration{Name: name}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, err
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}

func LoadConfigurations(dirPath string) ([]Configuration, error) {
	hmmLogger := logger.NewLogger("LoadConfigurations")

	files, err := ioutil.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.FileInfo) {
			defer wg.Done()
			filePath := path.Join(dirPath, file.Name())
			buf, err := ioutil.ReadFile(filePath)
			if err != nil {
				hmmLogger.Err(err).Str("file", filePath).Msg("Failed to read configuration")
				return
			}
			cfg, err := ParseConfiguration(strings.TrimSuffix(file.Name(), ".yaml"), buf)
			if err != nil {
				hmmLogger.Err(err).Str("file", filePath).Msg("Invalid configuration, skipping")
				return
			}
			cfg.FilePath = filePath

			configChan <- cfg
		}(f)
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(configChan))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
	return configs, nil
}
