package cleaning

import (
	"fmt"
	"math"
	"reflect"

	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
)

// Placeholder replaces values downstream vectorizers cannot handle.
const Placeholder = "a"

// ToTable coerces raw input into a table with a text column. A string becomes
// a one-row table, a slice or array becomes the text column, a table is
// copied. Any other value is treated as a single row.
func ToTable(raw any) *domain.Table {
	switch v := raw.(type) {
	case *domain.Table:
		if v == nil {
			return domain.NewTextTable([]any{})
		}
		return v.Clone()
	case domain.Table:
		return v.Clone()
	case string, []byte:
		return domain.NewTextTable([]any{v})
	case []string:
		values := make([]any, len(v))
		for i, s := range v {
			values[i] = s
		}
		return domain.NewTextTable(values)
	case []any:
		values := make([]any, len(v))
		copy(values, v)
		return domain.NewTextTable(values)
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		values := make([]any, rv.Len())
		for i := range values {
			values[i] = rv.Index(i).Interface()
		}
		return domain.NewTextTable(values)
	}
	return domain.NewTextTable([]any{raw})
}

// CleanTable cleans every row of the text column of raw and sanitizes the
// result. Row order is preserved and the input is never modified.
func (p *Pipeline) CleanTable(raw any) (*domain.Table, error) {
	table, _, err := p.CleanTableCount(raw)
	return table, err
}

// CleanTableCount is CleanTable that also reports how many cells, in any
// column, were replaced by Placeholder.
func (p *Pipeline) CleanTableCount(raw any) (*domain.Table, int, error) {
	table := ToTable(raw)

	texts, ok := table.Column(domain.TextColumn)
	if !ok {
		return nil, 0, fmt.Errorf("clean table with columns %v: %w", table.Columns(), domain.ErrMissingTextColumn)
	}

	cleaned := make([]any, len(texts))
	for i, v := range texts {
		cleaned[i] = p.Clean(v)
	}
	if err := table.SetColumn(domain.TextColumn, cleaned); err != nil {
		return nil, 0, err
	}

	replaced := Sanitize(table)
	p.logger.Debug("Cleaned table",
		"rows", table.Len(),
		"placeholders", replaced,
	)
	return table, replaced, nil
}

// CleanTexts cleans and sanitizes a list of texts.
func (p *Pipeline) CleanTexts(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = SanitizeText(p.Clean(t))
	}
	return out
}

// Sanitize replaces every missing value in every column with Placeholder and
// returns the number of replaced cells.
func Sanitize(table *domain.Table) int {
	replaced := 0
	for _, name := range table.Columns() {
		col, _ := table.Column(name)
		for i, v := range col {
			if IsMissing(v) {
				col[i] = Placeholder
				replaced++
			}
		}
	}
	return replaced
}

// SanitizeText returns Placeholder for an empty string.
func SanitizeText(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// IsMissing reports values that are empty, null or infinite. NaN counts as null.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return math.IsNaN(x) || math.IsInf(x, 0)
	case float32:
		f := float64(x)
		return math.IsNaN(f) || math.IsInf(f, 0)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
