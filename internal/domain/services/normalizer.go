package services

import (
	"strings"
)

// Normalizer prepares raw OCR text for keyword matching. OCR output is
// noisy (line breaks mid-sentence, mixed-width spaces), so matching
// always runs against the normalized form.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize lowercases the text and collapses all whitespace runs to a
// single space. Empty input yields an empty string; it never fails.
// Normalize is idempotent.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(text)
	return strings.Join(strings.Fields(lowered), " ")
}
