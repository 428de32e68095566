package cleaning

import (
	"fmt"
	"strings"
)

// LemmatizeMode selects how the lemmatization stage walks the text.
type LemmatizeMode string

const (
	// LemmatizeCharacters applies the lemmatizer to every character and joins
	// the results without separators. This is the compatible default.
	LemmatizeCharacters LemmatizeMode = "character"
	// LemmatizeTokens applies the lemmatizer to every whitespace token and
	// joins the results with single spaces.
	LemmatizeTokens LemmatizeMode = "token"
)

// DefaultLanguage is the stopword language used when none is configured.
const DefaultLanguage = "english"

// Options toggles the optional cleaning stages.
type Options struct {
	RemovePunctuation bool          `json:"remove_punctuation" yaml:"remove_punctuation"`
	LowerText         bool          `json:"lower_text" yaml:"lower_text"`
	RemoveNumbers     bool          `json:"remove_numbers" yaml:"remove_numbers"`
	RemoveStopwords   bool          `json:"remove_stopwords" yaml:"remove_stopwords"`
	Lemmatize         bool          `json:"lemmatize" yaml:"lemmatize"`
	Language          string        `json:"language,omitempty" yaml:"language"`
	LemmatizeMode     LemmatizeMode `json:"lemmatize_mode,omitempty" yaml:"lemmatize_mode"`
}

// DefaultOptions returns options with every stage enabled.
func DefaultOptions() Options {
	return Options{
		RemovePunctuation: true,
		LowerText:         true,
		RemoveNumbers:     true,
		RemoveStopwords:   true,
		Lemmatize:         true,
		Language:          DefaultLanguage,
		LemmatizeMode:     LemmatizeCharacters,
	}
}

// withDefaults fills empty language and mode fields.
func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.LemmatizeMode == "" {
		o.LemmatizeMode = LemmatizeCharacters
	}
	return o
}

// Canonical returns the options in the form used to share pipelines: the
// language is trimmed and lower cased, defaults are filled, and the language
// and lemmatize mode are cleared when their stages are off.
func (o Options) Canonical() Options {
	o.Language = strings.ToLower(strings.TrimSpace(o.Language))
	o = o.withDefaults()
	if !o.RemoveStopwords {
		o.Language = ""
	}
	if !o.Lemmatize {
		o.LemmatizeMode = ""
	}
	return o
}

// Validate checks if the options are valid. An empty language or mode
// selects the default.
func (o Options) Validate() error {
	switch o.LemmatizeMode {
	case "", LemmatizeCharacters, LemmatizeTokens:
	default:
		return fmt.Errorf("unknown lemmatize mode %q", o.LemmatizeMode)
	}
	return nil
}
