package linguistic

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// DictionaryLemmatizer maps English inflected forms to their base form with
// the golem dictionary. Words missing from the dictionary and single
// characters are returned unchanged.
//
// The dictionary is large, so it is loaded on the first lookup of a word with
// more than one character and shared by every caller.
type DictionaryLemmatizer struct {
	once sync.Once
	lem  *golem.Lemmatizer
	err  error
}

var english = &DictionaryLemmatizer{}

// EnglishLemmatizer returns the shared English lemmatizer.
func EnglishLemmatizer() *DictionaryLemmatizer {
	return english
}

// Load reads the dictionary if it is not loaded yet.
func (d *DictionaryLemmatizer) Load() error {
	d.once.Do(func() {
		d.lem, d.err = golem.New(en.New())
		if d.err != nil {
			d.err = fmt.Errorf("load english lemma dictionary: %w", d.err)
		}
	})
	return d.err
}

// Lemmatize returns the base form of word.
func (d *DictionaryLemmatizer) Lemmatize(word string) string {
	if utf8.RuneCountInString(word) < 2 {
		return word
	}
	if d.Load() != nil {
		return word
	}
	return d.lem.Lemma(word)
}
