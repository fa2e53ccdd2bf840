package pipeline

// Request is one document to tag. Text holds the token stream: one token per line, optional
// TAB-separated analyses after the token, a blank line between sentences.
type Request struct {
	Text    string   `json:"text"`
	Tid     string   `json:"tid"`
	Configs []string `json:"configs,omitempty"`
}

// Pipeline tags a request and delivers the JSON response, a map from configuration name to
// types.TaggingResponse. The channel is closed without a value when the request cannot be served.
type Pipeline func(request Request) <-chan string
