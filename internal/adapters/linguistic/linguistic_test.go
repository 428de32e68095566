package linguistic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
)

func TestStopwords(t *testing.T) {
	set, err := Stopwords("English")
	require.NoError(t, err)

	assert.True(t, set.IsStopword("i"))
	assert.True(t, set.IsStopword("you"))
	assert.True(t, set.IsStopword("don't"))
	assert.False(t, set.IsStopword("I"), "matching is case-sensitive")
	assert.False(t, set.IsStopword("hate"))
	assert.Equal(t, 179, set.(*StopwordSet).Len())

	again, err := Stopwords(English)
	require.NoError(t, err)
	assert.Same(t, set, again, "sets are built once and shared")
}

func TestStopwordsUnsupportedLanguage(t *testing.T) {
	_, err := Stopwords("klingon")
	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
}

func TestTreebankTokenizer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "plain words", in: "user i hate you", want: []string{"user", "i", "hate", "you"}},
		{name: "trailing exclamations", in: "you!!!", want: []string{"you", "!", "!", "!"}},
		{name: "contraction", in: "don't go", want: []string{"do", "n't", "go"}},
		{name: "possessive", in: "it's mine", want: []string{"it", "'s", "mine"}},
		{name: "cannot", in: "you cannot win", want: []string{"you", "can", "not", "win"}},
		{name: "gonna", in: "i am gonna win", want: []string{"i", "am", "gon", "na", "win"}},
		{name: "wanna", in: "i wanna fight", want: []string{"i", "wan", "na", "fight"}},
		{name: "gotta", in: "gotta go", want: []string{"got", "ta", "go"}},
		{name: "gimme", in: "gimme that", want: []string{"gim", "me", "that"}},
		{name: "lemme", in: "lemme see", want: []string{"lem", "me", "see"}},
		{name: "hyphen kept", in: "well-known", want: []string{"well-known"}},
		{name: "empty", in: "   ", want: []string{}},
	}

	tok := NewTreebankTokenizer()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tok.Tokenize(tc.in))
		})
	}
}

func TestDictionaryLemmatizer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dogs", "dog"},
		{"children", "child"},
		{"always", "always"},
		{"perhaps", "perhaps"},
		{"news", "news"},
		{"series", "series"},
		{"xqzzyv", "xqzzyv"},
		{"s", "s"},
		{"a", "a"},
		{" ", " "},
	}

	lem := EnglishLemmatizer()
	require.NoError(t, lem.Load())
	assert.Same(t, lem, EnglishLemmatizer())
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, lem.Lemmatize(tc.in))
		})
	}
}
