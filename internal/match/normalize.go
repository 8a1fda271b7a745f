package match

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeIdent normalizes an identifier, label or header for matching.
// The normalization pipeline:
// 1. Unicode NFKC.
// 2. Tokenize CamelCase and split letters from digits.
// 3. Case-fold every token.
// 4. Join without separators.
func NormalizeIdent(s string) string {
	return strings.Join(Words(s), "")
}

// Words splits s into normalized, case-folded words.
// A "#" that does not start an index ("Catalog #") reads as the word "number".
func Words(s string) []string {
	tokens := tokenizeCamelCase(expandHash(norm.NFKC.String(s)))

	folder := cases.Fold()
	for i, t := range tokens {
		tokens[i] = folder.String(t)
	}

	return tokens
}

// Header is a normalized spreadsheet header.
type Header struct {
	Raw string
	// Words are the normalized words, digits included.
	Words []string
	// Joined concatenates Words.
	Joined string
	// Bare is Joined without numeric words.
	Bare string
	// Index is the first numeric word ("Collector 2 Last Name" -> 2), 0 if none.
	Index int
}

// NormalizeHeader normalizes a header and extracts its numeric index hint.
func NormalizeHeader(raw string) Header {
	h := Header{Raw: raw, Words: Words(raw)}
	h.Joined = strings.Join(h.Words, "")

	var bare strings.Builder

	for _, w := range h.Words {
		if n, err := strconv.Atoi(w); err == nil {
			if h.Index == 0 && n > 0 {
				h.Index = n
			}

			continue
		}

		bare.WriteString(w)
	}

	h.Bare = bare.String()

	return h
}

// Variants returns the forms of the header worth comparing: Joined and,
// when the header carries numbers, Bare.
func (h Header) Variants() []string {
	if h.Bare != h.Joined && h.Bare != "" {
		return []string{h.Joined, h.Bare}
	}

	return []string{h.Joined}
}

// IsEmpty reports whether nothing matchable is left after normalization.
func (h Header) IsEmpty() bool {
	return h.Joined == ""
}

func expandHash(s string) string {
	if !strings.ContainsRune(s, '#') {
		return s
	}

	runes := []rune(s)

	var b strings.Builder

	for i, r := range runes {
		if r != '#' {
			b.WriteRune(r)

			continue
		}

		if i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
			b.WriteRune(' ')

			continue
		}

		b.WriteString(" number ")
	}

	return b.String()
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "catalogNumber" -> ["catalog", "Number"]
//   - "GUID" -> ["GUID"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "latitude1" -> ["latitude", "1"]
//   - "Collector Last Name" -> ["Collector", "Last", "Name"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		// Handle separators - start a new token
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator returns true for anything that is neither a letter nor a digit.
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]

	if isSeparator(prevRune) {
		return false
	}

	// Letter/digit boundary: "latitude1" -> "latitude" + "1"
	if unicode.IsDigit(r) != unicode.IsDigit(prevRune) {
		return true
	}

	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)

	// Transition from lowercase to uppercase: start new token
	// e.g., "catalogNumber" -> split before 'N'
	if isUpper && !isPrevUpper {
		return true
	}

	// End of acronym: check if next character is lowercase
	// e.g., "XMLParser" -> "XML" + "Parser", split before 'P'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}
