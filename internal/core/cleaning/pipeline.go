// Package cleaning normalizes tweets into the canonical form the classifiers
// were trained on.
//
// Stages run in a fixed order because later stages rely on the shape produced
// by earlier ones:
//
//  1. strip a leading @mention and a leading RT marker
//  2. replace runs of non-letters with one space (optional)
//  3. lower case (optional)
//  4. drop digits (optional)
//  5. drop stopwords (optional)
//  6. lemmatize (optional)
//  7. collapse repeated words
//  8. trim
package cleaning

import (
	"errors"
	"strings"

	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

// Stage names, in execution order.
const (
	StageMentions     = "mentions"
	StagePunctuation  = "punctuation"
	StageLowercase    = "lowercase"
	StageNumbers      = "numbers"
	StageStopwords    = "stopwords"
	StageLemmatize    = "lemmatize"
	StageRepeatedWord = "repeated_words"
	StageTrim         = "trim"
)

// Resources are the language resources the optional stages depend on.
type Resources struct {
	Tokenizer  ports.Tokenizer
	Stopwords  ports.StopwordSource
	Lemmatizer ports.Lemmatizer
}

type stage struct {
	name  string
	apply func(string) string
}

// Pipeline applies the configured cleaning stages to text.
// It is immutable after construction and safe for concurrent use.
type Pipeline struct {
	options Options
	stages  []stage
	logger  ports.Logger
}

// NewPipeline creates a pipeline for the given options.
func NewPipeline(options Options, resources Resources, logger ports.Logger) (*Pipeline, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	options = options.withDefaults()

	if options.RemoveStopwords && (resources.Tokenizer == nil || resources.Stopwords == nil) {
		return nil, errors.New("stopword removal needs a tokenizer and a stopword source")
	}
	if options.Lemmatize && resources.Lemmatizer == nil {
		return nil, errors.New("lemmatization needs a lemmatizer")
	}

	stages := []stage{{name: StageMentions, apply: stripMentions}}
	if options.RemovePunctuation {
		stages = append(stages, stage{name: StagePunctuation, apply: removePunctuation})
	}
	if options.LowerText {
		stages = append(stages, stage{name: StageLowercase, apply: lowerText})
	}
	if options.RemoveNumbers {
		stages = append(stages, stage{name: StageNumbers, apply: removeNumbers})
	}
	if options.RemoveStopwords {
		tokenizer, stopwords := resources.Tokenizer, resources.Stopwords
		stages = append(stages, stage{name: StageStopwords, apply: func(s string) string {
			return removeStopwords(s, tokenizer, stopwords)
		}})
	}
	if options.Lemmatize {
		lemmatizer := resources.Lemmatizer
		lemmatize := lemmatizeCharacters
		if options.LemmatizeMode == LemmatizeTokens {
			lemmatize = lemmatizeTokens
		}
		stages = append(stages, stage{name: StageLemmatize, apply: func(s string) string {
			return lemmatize(s, lemmatizer)
		}})
	}
	stages = append(stages,
		stage{name: StageRepeatedWord, apply: CollapseRepeatedWords},
		stage{name: StageTrim, apply: strings.TrimSpace},
	)

	logger.Debug("Cleaning pipeline created",
		"stages", len(stages),
		"language", options.Language,
		"lemmatize_mode", string(options.LemmatizeMode),
	)

	return &Pipeline{
		options: options,
		stages:  stages,
		logger:  logger,
	}, nil
}

// Options returns the effective options.
func (p *Pipeline) Options() Options {
	return p.options
}

// Stages returns the names of the active stages in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.name
	}
	return names
}

// Clean stringifies v and runs it through every active stage.
func (p *Pipeline) Clean(v any) string {
	text := Stringify(v)
	for _, s := range p.stages {
		text = s.apply(text)
	}
	return text
}

// Normalize implements ports.Normalizer.
func (p *Pipeline) Normalize(text string) string {
	return p.Clean(text)
}
