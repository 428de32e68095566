package domain

import "errors"

var (
	// ErrModelNotFound is returned when no artifact exists for a model name.
	ErrModelNotFound = errors.New("model artifact not found")

	// ErrModelKind is returned when an artifact does not provide the requested capability.
	ErrModelKind = errors.New("model artifact has the wrong kind")

	// ErrInvalidArtifact is returned when an artifact cannot be decoded or is incomplete.
	ErrInvalidArtifact = errors.New("invalid model artifact")

	// ErrInvalidPrediction is returned when a binary predictor reports something other than 0 or 1.
	ErrInvalidPrediction = errors.New("binary prediction must be 0 or 1")

	// ErrEmptyClassification is returned when the type classifier yields no labels.
	ErrEmptyClassification = errors.New("type classifier returned no labels")

	// ErrMissingTextColumn is returned when a table has no text column to clean.
	ErrMissingTextColumn = errors.New("table has no text column")

	// ErrColumnLength is returned when a column does not match the table's row count.
	ErrColumnLength = errors.New("column length does not match table length")

	// ErrUnsupportedLanguage is returned when no stopword list exists for a language.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
