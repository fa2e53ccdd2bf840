package api

import (
	"fmt"
	"io/ioutil"
	"net/http"

	"text2phenotype.com/hmmtag/pipeline"
)

type Request struct {
	Pipeline pipeline.Pipeline
	// Configs lists the configuration names the pipeline serves.
	Configs []string
}

// ProcessData tags a token stream posted as the request body. Each `config` query parameter
// selects a configuration; without any, every configuration runs.
func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != http.MethodPost {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	configs := r.URL.Query()["config"]
	for _, name := range configs {
		if !req.known(name) {
			logger.Error().Str("config", name).Int("status", http.StatusBadRequest).Msg("Unknown configuration")
			http.Error(w, fmt.Sprintf("unknown configuration %q", name), http.StatusBadRequest)
			return
		}
	}

	msg, err := ioutil.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	request := pipeline.Request{
		Tid:     "test_api",
		Text:    string(msg),
		Configs: configs,
	}
	logger.Info().Str("tid", request.Tid).Msg("Starting pipeline for request from API")
	resp, ok := <-req.Pipeline(request)
	if !ok {
		logger.Error().Int("status", http.StatusInternalServerError).Msg("Pipeline returned no response")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(resp))
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}

func (req *Request) known(name string) bool {
	for _, cfg := range req.Configs {
		if cfg == name {
			return true
		}
	}
	return false
}
