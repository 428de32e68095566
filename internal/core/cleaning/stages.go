package cleaning

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/baditaflorin/go_cyberbullying/internal/pool"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

var (
	// leadingMention matches an @handle at the very start of the text.
	leadingMention = regexp.MustCompile(`(?i)^@[\p{L}\p{N}\p{Mn}_]+`)
	// leadingRetweet matches an RT marker followed by whitespace at the start of the text.
	leadingRetweet = regexp.MustCompile(`(?i)^RT[\s\p{Z}]+`)
)

var (
	bytePool    = pool.NewBufferPool(512)
	builderPool = pool.NewTextBuilderPool(256)
)

// stripMentions removes the first leading @handle, then a leading RT marker.
// Both patterns are anchored: "hurt you" keeps its "rt", and so does
// "@alice RT hi" because the space left by the mention blocks the anchor.
func stripMentions(text string) string {
	text = leadingMention.ReplaceAllString(text, "")
	return leadingRetweet.ReplaceAllString(text, "")
}

// removePunctuation replaces every run of characters outside [a-zA-Z] with one space.
func removePunctuation(text string) string {
	buffer := bytePool.Get()
	defer bytePool.Put(buffer)

	lastWasSpace := false
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			*buffer = append(*buffer, byte(r))
			lastWasSpace = false
			continue
		}
		if !lastWasSpace {
			*buffer = append(*buffer, ' ')
			lastWasSpace = true
		}
	}
	return string(*buffer)
}

// lowerText folds the whole string to lower case. A Caser keeps state, so
// one is created per call.
func lowerText(text string) string {
	return cases.Lower(language.Und).String(text)
}

// removeNumbers drops every decimal digit character.
func removeNumbers(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, text)
}

// removeStopwords tokenizes text and drops exact stopword matches.
func removeStopwords(text string, tokenizer ports.Tokenizer, stopwords ports.StopwordSource) string {
	tokens := tokenizer.Tokenize(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !stopwords.IsStopword(tok) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// lemmatizeCharacters lemmatizes each character on its own and concatenates
// the results with no separator.
func lemmatizeCharacters(text string, lemmatizer ports.Lemmatizer) string {
	sb := builderPool.Get()
	defer builderPool.Put(sb)

	for _, r := range text {
		ch := string(r)
		if lemma := lemmatizer.Lemmatize(ch); lemma != ch {
			sb.WriteString(lemma)
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// lemmatizeTokens lemmatizes each whitespace token and joins with single spaces.
func lemmatizeTokens(text string, lemmatizer ports.Lemmatizer) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = lemmatizer.Lemmatize(f)
	}
	return strings.Join(fields, " ")
}
