package types

type BaseResponse struct {
	DocId  string `json:"docId"`
	Config string `json:"config"`
}

type TaggedToken struct {
	Text    string `json:"text"`
	Tag     string `json:"tag"`
	Begin   int32  `json:"begin"`
	End     int32  `json:"end"`
	Unknown bool   `json:"unknown,omitempty"`
	Flavor  string `json:"flavor,omitempty"`
	Lemma   string `json:"lemma,omitempty"`
}

type AlternativeSection struct {
	Score float64  `json:"score"`
	Tags  []string `json:"tags"`
}

type SentenceSection struct {
	Id           int                  `json:"id"`
	Span         []int32              `json:"span"`
	Score        float64              `json:"score"`
	Tokens       []TaggedToken        `json:"tokens"`
	Alternatives []AlternativeSection `json:"alternatives,omitempty"`
	Error        string               `json:"error,omitempty"`
}

type TaggingResponse struct {
	BaseResponse
	TokenCount int               `json:"tokenCount"`
	Sentences  []SentenceSection `json:"sentences"`
}
