package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"text2phenotype.com/hmmtag/logger"
)

var defaultLogger = logger.NewLogger("API")

type endpointLoggerFields struct {
	Method  string   `json:"method"`
	Url     string   `json:"url"`
	Configs []string `json:"configs,omitempty"`
}

const RequestInfoFieldsKey = "request_info"

func makeRequestLogger(request *http.Request) zerolog.Logger {
	fields := endpointLoggerFields{
		Method:  request.Method,
		Url:     request.URL.String(),
		Configs: request.URL.Query()["config"],
	}
	return defaultLogger.
		With().Interface(RequestInfoFieldsKey, fields).Logger()
}
