package cleaning

import (
	"strings"
	"unicode"
)

// isWordRune matches the \w class: letters, digits, marks and underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// CollapseRepeatedWords replaces every run of a repeated whole word, separated
// by non-word characters, with the first occurrence of the word. Comparison is
// case-insensitive. It is the equivalent of substituting
// \b(\w+)(?:\W+\1\b)+ with the first capture.
func CollapseRepeatedWords(text string) string {
	runes := []rune(text)
	n := len(runes)

	var sb strings.Builder
	sb.Grow(len(text))

	i := 0
	for i < n {
		// Only a word start can open a run.
		if !isWordRune(runes[i]) || (i > 0 && isWordRune(runes[i-1])) {
			sb.WriteRune(runes[i])
			i++
			continue
		}

		wordEnd := i
		for wordEnd < n && isWordRune(runes[wordEnd]) {
			wordEnd++
		}
		word := string(runes[i:wordEnd])

		runEnd := wordEnd
		for {
			next := runEnd
			for next < n && !isWordRune(runes[next]) {
				next++
			}
			if next == runEnd || next == n {
				break
			}
			nextEnd := next
			for nextEnd < n && isWordRune(runes[nextEnd]) {
				nextEnd++
			}
			if !strings.EqualFold(string(runes[next:nextEnd]), word) {
				break
			}
			runEnd = nextEnd
		}

		sb.WriteString(word)
		i = runEnd
	}
	return sb.String()
}
