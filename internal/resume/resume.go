// Package resume pre-fills assessment skills from a résumé.
package resume

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// maxTextBytes bounds how much extracted text is scanned.
const maxTextBytes = 1 << 20

// ExtractText returns the plain text of the PDF at path.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if f != nil {
		defer f.Close()
	}
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	b, err := io.ReadAll(io.LimitReader(plain, maxTextBytes))
	if err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	return string(b), nil
}

// MatchSkills returns the catalog entries that appear in text as whole
// words, case-insensitively, in catalog order. Runs of whitespace in text
// match a single space in a multi-word skill.
func MatchSkills(text string, catalog []string) []string {
	haystack := strings.ToLower(strings.Join(strings.Fields(text), " "))

	var found []string
	for _, skill := range catalog {
		needle := strings.ToLower(strings.Join(strings.Fields(skill), " "))
		if needle != "" && containsWord(haystack, needle) {
			found = append(found, skill)
		}
	}
	return found
}

// containsWord reports whether needle occurs in haystack bounded on both
// sides by a non-word rune or the string edge.
func containsWord(haystack, needle string) bool {
	for start := 0; start <= len(haystack)-len(needle); {
		i := strings.Index(haystack[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(needle)
		if boundaryBefore(haystack, i) && boundaryAfter(haystack, end) {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}
