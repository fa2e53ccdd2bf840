package types

// Span locates a text in the request body. Begin and End are rune offsets, End is exclusive.
type Span struct {
	Begin int32
	End   int32
	Text  string
}
