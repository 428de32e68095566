package ports

// Tokenizer splits text into word tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// StopwordSource reports whether a token is a stopword for the configured language.
// Matching is exact and case-sensitive.
type StopwordSource interface {
	IsStopword(token string) bool
}

// Lemmatizer reduces a word to its base form. Implementations must return
// the input unchanged when no reduction applies.
type Lemmatizer interface {
	Lemmatize(word string) string
}
