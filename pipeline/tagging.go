package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/types"
)

var ErrUnknownConfig = errors.New("unknown configuration")

type TaggingParams struct {
	Configurations []types.Configuration `json:"configurations"`
}

// Tagging compiles one model per configuration and returns the pipeline serving all of them.
func Tagging(params TaggingParams, fetcher ModelFetcher, cache SentenceCache) (Pipeline, error) {
	hmmLogger := logger.NewLogger("Tagging pipeline")
	errLogger := hmmLogger.With().Caller().Logger()
	hmmLogger.Info().
		Interface("params", params).
		Msg("Starting tagging pipeline (see parameters in 'params' field)")

	if len(params.Configurations) == 0 {
		return nil, errors.New("no tagger configurations")
	}

	var names []string
	taggers := make(map[string]func(in <-chan types.Sentence) <-chan types.Sentence, len(params.Configurations))
	for _, cfg := range params.Configurations {
		model, err := LoadModel(cfg, fetcher)
		if err != nil {
			errLogger.Err(err).
				Str("config", cfg.Name).
				Interface("model", cfg.Model).
				Msg("Failed to load model")
			return nil, err
		}
		tagger, err := NewPOSTagger(model, TaggerParams{
			Name:      cfg.Name,
			Decoder:   DecoderParams(cfg),
			Normalize: cfg.Decoder.Normalize,
		}, cache)
		if err != nil {
			errLogger.Err(err).
				Str("config", cfg.Name).
				Interface("decoder", cfg.Decoder).
				Msg("Failed to create tagger")
			return nil, err
		}
		names = append(names, cfg.Name)
		taggers[cfg.Name] = tagger
		hmmLogger.Info().Str("config", cfg.Name).Int("tags", len(model.Tags())).Msg("Model loaded")
	}

	reader := NewSentenceReader()
	taggingResult := NewTaggingResult()

	return func(request Request) <-chan string {
		responseChan := make(chan string)
		pplnLog := hmmLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Msg("Started tagging pipeline")

		go func() {
			defer close(responseChan)

			selected, err := selectConfigs(request.Configs, taggers, names)
			if err != nil {
				pplnLog.Err(err).Strs("configs", request.Configs).Msg("Rejected request")
				return
			}

			var in = make(chan string)
			split := NewSentenceChannelSplitter(len(selected))(reader(in))

			resultChannel := make(chan Result)
			for i, name := range selected {
				tagged := taggers[name](split[i])
				connect(taggingResult(tagged, name, request), resultChannel)
			}

			in <- request.Text
			close(in)
			response := make(map[string]interface{})

			for i := 0; i < len(selected); i++ {
				res := <-resultChannel
				pplnLog.Info().
					Str("config_name", res.ConfigName).
					Msg("Finished pipeline for configuration")
				response[res.ConfigName] = res.Data
			}

			buf, err := json.Marshal(response)
			if err != nil {
				pplnLog.Err(err).Msg("Failed to marshall response")
				return
			}
			pplnLog.Info().Msg("Finished tagging pipeline")
			responseChan <- string(buf)
		}()

		return responseChan
	}, nil
}

// selectConfigs returns the requested configurations, or all of them when none are named.
func selectConfigs(requested []string, taggers map[string]func(in <-chan types.Sentence) <-chan types.Sentence, all []string) ([]string, error) {
	if len(requested) == 0 {
		return all, nil
	}
	seen := make(map[string]bool, len(requested))
	var res []string
	for _, name := range requested {
		if _, ok := taggers[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownConfig, name)
		}
		if !seen[name] {
			seen[name] = true
			res = append(res, name)
		}
	}
	return res, nil
}

func connect(from <-chan Result, to chan<- Result) {
	go func() {
		for v := range from {
			to <- v
		}
	}()
}
