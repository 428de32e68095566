// Package linguistic provides the default language resources used by the
// cleaning pipeline: stopword sets, a word tokenizer and a lemmatizer.
package linguistic

import (
	"fmt"
	"strings"
	"sync"

	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

// English is the default language.
const English = "english"

// englishStopwords is the classic English stopword list (179 entries).
const englishStopwords = `i me my myself we our ours ourselves you you're you've you'll you'd
your yours yourself yourselves he him his himself she she's her hers herself it it's its itself
they them their theirs themselves what which who whom this that that'll these those am is are was
were be been being have has had having do does did doing a an the and but if or because as until
while of at by for with about against between into through during before after above below to
from up down in out on off over under again further then once here there when where why how all
any both each few more most other some such no nor not only own same so than too very s t can
will just don don't should should've now d ll m o re ve y ain aren aren't couldn couldn't didn didn't
doesn doesn't hadn hadn't hasn hasn't haven haven't isn isn't ma mightn mightn't mustn mustn't
needn needn't shan shan't shouldn shouldn't wasn wasn't weren weren't won won't wouldn wouldn't`

// stopwordLists maps a language to its raw, whitespace separated list.
var stopwordLists = map[string]string{
	English: englishStopwords,
}

// StopwordSet is an immutable set of stopwords for one language.
type StopwordSet struct {
	language string
	words    map[string]struct{}
}

// IsStopword reports whether token is in the set. Matching is case-sensitive.
func (s *StopwordSet) IsStopword(token string) bool {
	_, ok := s.words[token]
	return ok
}

// Language returns the language of the set.
func (s *StopwordSet) Language() string {
	return s.language
}

// Len returns the number of stopwords.
func (s *StopwordSet) Len() int {
	return len(s.words)
}

type lazySet struct {
	once sync.Once
	set  *StopwordSet
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]*lazySet)
)

// Stopwords returns the stopword set for a language. Sets are built on first
// use and shared read-only afterwards.
func Stopwords(language string) (ports.StopwordSource, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	raw, ok := stopwordLists[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, language)
	}

	registryMu.Lock()
	entry, ok := registry[language]
	if !ok {
		entry = &lazySet{}
		registry[language] = entry
	}
	registryMu.Unlock()

	entry.once.Do(func() {
		fields := strings.Fields(raw)
		words := make(map[string]struct{}, len(fields))
		for _, w := range fields {
			words[w] = struct{}{}
		}
		entry.set = &StopwordSet{language: language, words: words}
	})
	return entry.set, nil
}

// SupportedLanguages lists the languages with a stopword set.
func SupportedLanguages() []string {
	out := make([]string, 0, len(stopwordLists))
	for lang := range stopwordLists {
		out = append(out, lang)
	}
	return out
}
