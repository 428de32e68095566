package linguistic

import (
	"github.com/jdkato/prose/tokenize"
)

// TreebankTokenizer splits text following the Penn Treebank convention:
// punctuation is separated ("you!!!" -> "you" "!" "!" "!"), clitics are split
// ("don't" -> "do" "n't") and fused forms are broken up ("cannot" -> "can"
// "not", "wanna" -> "wan" "na").
type TreebankTokenizer struct {
	tokenizer *tokenize.TreebankWordTokenizer
}

// NewTreebankTokenizer creates a tokenizer.
func NewTreebankTokenizer() *TreebankTokenizer {
	return &TreebankTokenizer{tokenizer: tokenize.NewTreebankWordTokenizer()}
}

// Tokenize splits text into tokens. Empty tokens are dropped.
func (t *TreebankTokenizer) Tokenize(text string) []string {
	raw := t.tokenizer.Tokenize(text)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
