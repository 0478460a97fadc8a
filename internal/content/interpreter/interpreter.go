// Package interpreter turns raw backend text into GeneratedContent.
package interpreter

import (
	"encoding/json"
	"strings"

	"content-creator/internal/models"
)

const (
	fenceJSON = "```json"
	fence     = "```"

	fallbackCTA            = "Get Started Today"
	fallbackQuestion       = "What is this?"
	maxFallbackDescription = 160
)

// Interpret extracts and decodes the structured payload from raw. When the
// payload cannot be decoded into a JSON object of the expected shape it
// returns the fallback built from title and description, with primary false.
// No truncation is performed on the primary path.
func Interpret(raw, title, description string) (content models.GeneratedContent, primary bool) {
	payload := ExtractPayload(raw)

	decoded, ok := decode(payload)
	if !ok {
		return Fallback(title, description), false
	}
	return decoded.Normalized(), true
}

// ExtractPayload strips a fenced code block if one is present. A "```json"
// fence takes precedence over a bare "```" fence; an unterminated fence runs
// to the end of the text.
func ExtractPayload(raw string) string {
	text := strings.TrimSpace(raw)

	if _, after, found := strings.Cut(text, fenceJSON); found {
		text, _, _ = strings.Cut(after, fence)
	} else if _, after, found := strings.Cut(text, fence); found {
		text, _, _ = strings.Cut(after, fence)
	}
	return strings.TrimSpace(text)
}

func decode(payload string) (models.GeneratedContent, bool) {
	var content models.GeneratedContent
	if payload == "" {
		return content, false
	}

	// The payload must be an object; null and other top-level values fall back.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil || fields == nil {
		return content, false
	}
	if err := json.Unmarshal([]byte(payload), &content); err != nil {
		return content, false
	}
	return content, true
}

// Fallback synthesizes placeholder content from the request alone.
func Fallback(title, description string) models.GeneratedContent {
	return models.GeneratedContent{
		HeroSection: "Welcome to " + title + ". " + description,
		Features:    []string{"Feature 1", "Feature 2", "Feature 3"},
		Benefits:    []string{"Benefit 1", "Benefit 2", "Benefit 3"},
		SEOMeta: models.SEOMeta{
			Title:       title,
			Description: truncateRunes(description, maxFallbackDescription),
			Keywords:    []string{"keyword1", "keyword2", "keyword3"},
		},
		CTA: fallbackCTA,
		FAQs: []models.FAQ{
			{Question: fallbackQuestion, Answer: description},
		},
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
