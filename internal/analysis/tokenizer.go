// Package analysis extracts interest tokens from free text.
package analysis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the shortest token kept by Extract.
const MinTokenLength = 3

// defaultStopWords covers articles, prepositions, pronouns, verbs of desire and purchase,
// filler words and social/streaming boilerplate.
var defaultStopWords = []string{
	"a", "o", "as", "os", "um", "uma", "uns", "umas",
	"de", "do", "da", "dos", "das", "em", "no", "na", "nos", "nas",
	"por", "pelo", "pela", "pelos", "pelas", "para", "pra", "p/",
	"com", "sem", "e", "ou", "mas", "se", "que", "como",
	"eu", "voce", "você", "me", "mim", "meu", "minha", "seu", "sua", "teu", "tua",
	"queria", "quero", "gostaria", "preciso", "busco", "procuro", "desejo",
	"comprar", "achar", "encontrar", "ver", "olhar", "adquirir",
	"muito", "bastante", "pouco", "mais", "menos", "tão",
	"ser", "estar", "ter", "tem", "fazer", "ir", "são", "era", "foi",
	"adorei", "amei", "curti", "legal", "top", "show", "ruim", "bom",
	"sobre", "review", "analise", "video", "assistir", "assistiu", "vi",
	"post", "foto", "imagem", "hoje", "ontem", "agora", "aqui", "ali",
}

// Tokenizer turns text into unique, lowercase, accent-free tokens.
type Tokenizer struct {
	stopWords map[string]struct{}
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithStopWords adds words to the built-in stop-word set.
func WithStopWords(words ...string) TokenizerOption {
	return func(t *Tokenizer) {
		for _, w := range words {
			if w = fold(w); w != "" {
				t.stopWords[w] = struct{}{}
			}
		}
	}
}

// NewTokenizer returns a tokenizer seeded with the default stop words.
func NewTokenizer(opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{stopWords: make(map[string]struct{}, len(defaultStopWords))}
	for _, w := range defaultStopWords {
		t.stopWords[fold(w)] = struct{}{}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Extract returns the tokens of text in first-occurrence order.
func (t *Tokenizer) Extract(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, fold(text))

	tokens := []string{}
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(cleaned) {
		if !t.keep(word) {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		tokens = append(tokens, word)
	}
	return tokens
}

// IsStopWord reports whether word (after folding) is a stop word.
func (t *Tokenizer) IsStopWord(word string) bool {
	_, ok := t.stopWords[fold(word)]
	return ok
}

func (t *Tokenizer) keep(word string) bool {
	if utf8.RuneCountInString(word) < MinTokenLength {
		return false
	}
	if isNumeric(word) || !hasLetterOrDigit(word) {
		return false
	}
	_, stop := t.stopWords[word]
	return !stop
}

// Normalize trims and lowercases word. Index keys use this form.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// fold lowercases s and strips combining marks ("Tênis" -> "tenis").
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(tr, s)
	if err != nil {
		return s
	}
	return out
}

// decimalNumber matches plain decimal numbers with an optional sign and exponent.
// Hex floats, digit separators and infinities are words, not numbers.
var decimalNumber = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`)

func isNumeric(word string) bool {
	return decimalNumber.MatchString(word)
}

func hasLetterOrDigit(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
