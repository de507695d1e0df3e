package client

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	documentPrefix = "doc:"
	namePrefix     = "n:"
	cityPrefix     = "|c:"
	statePrefix    = "|s:"
)

// NormalizedIdentity is the comparable form of a record's identity fields.
type NormalizedIdentity struct {
	Name     string
	City     string
	State    string
	Document string
}

func Normalize(name, city, state, document string) NormalizedIdentity {
	return NormalizedIdentity{
		Name:     NormalizeText(name),
		City:     NormalizeText(city),
		State:    NormalizeState(state),
		Document: NormalizeDocument(document),
	}
}

func NormalizeFields(fields KnownIdentityFields) NormalizedIdentity {
	return Normalize(fields.Name, fields.City, fields.State, fields.Document)
}

// NormalizeText trims, case-folds and strips diacritics ("São Paulo" -> "sao paulo").
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	// transform.Chain is stateful, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	// marks can sit next to the outer whitespace, trim again once they are gone
	return strings.TrimSpace(stripped)
}

// NormalizeState is permissive: no code list, only trim and uppercase.
func NormalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeDocument keeps ASCII digits only; "" means no document.
func NormalizeDocument(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func (id NormalizedIdentity) HasDocument() bool {
	return id.Document != ""
}

// Fingerprint is the single identity key: document-based when a document exists,
// composite otherwise.
func (id NormalizedIdentity) Fingerprint() string {
	if key, ok := id.DocumentKey(); ok {
		return key
	}
	return id.CompositeKey()
}

func (id NormalizedIdentity) DocumentKey() (string, bool) {
	if !id.HasDocument() {
		return "", false
	}
	return documentPrefix + id.Document, true
}

func (id NormalizedIdentity) CompositeKey() string {
	return namePrefix + id.Name + cityPrefix + id.City + statePrefix + id.State
}
