// Package prompt composes the instruction sent to the generation backend.
package prompt

import (
	"fmt"
	"strings"

	"content-creator/internal/models"
)

// NoContext is emitted in place of the snippet list when retrieval found nothing.
const NoContext = "No specific context available."

const jsonExample = `{
  "hero_section": "A compelling hero message (2-3 sentences)",
  "features": ["Feature 1", "Feature 2", "Feature 3", "Feature 4"],
  "benefits": ["Benefit 1", "Benefit 2", "Benefit 3"],
  "seo_meta": {
    "title": "SEO optimized title (60 chars max)",
    "description": "SEO meta description (160 chars max)",
    "keywords": ["keyword1", "keyword2", "keyword3", "keyword4", "keyword5"]
  },
  "cta": "Clear call-to-action message",
  "faqs": [
    {"question": "Question 1", "answer": "Answer 1"},
    {"question": "Question 2", "answer": "Answer 2"},
    {"question": "Question 3", "answer": "Answer 3"}
  ]
}`

// Compose builds the generation instruction. req must already carry defaults.
// The labels "about:", "Description:\n", "Tone:" and "Content Type:" are read
// back by the local backend and must stay stable.
func Compose(req models.GenerationRequest, snippets []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert content creator specializing in %s creation.\n\n", req.ContentType)
	fmt.Fprintf(&b, "Task: Generate comprehensive, engaging content for a %s about: %s\n\n", req.ContentType, req.Title)
	fmt.Fprintf(&b, "Product/Service Description:\n%s\n\n", req.Description)
	fmt.Fprintf(&b, "Relevant Context from Knowledge Base:\n%s\n\n", contextBlock(snippets))

	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "1. Tone: %s\n", req.Tone)
	fmt.Fprintf(&b, "2. Language: %s\n", req.Language)
	fmt.Fprintf(&b, "3. Content Type: %s\n\n", req.ContentType)

	b.WriteString("Generate the following sections in JSON format:\n\n")
	b.WriteString(jsonExample)
	b.WriteString("\n\n")

	b.WriteString("Ensure all content:\n")
	b.WriteString("- Aligns with STANDs framework (Secure, Trusted, Aligned, Neutral, Defendable, Sustainable)\n")
	b.WriteString("- Is engaging and conversion-focused\n")
	b.WriteString("- Maintains the specified tone\n")
	fmt.Fprintf(&b, "- Is in %s\n", req.Language)
	b.WriteString("- Is original and compelling\n\n")
	b.WriteString("Return ONLY valid JSON, no additional text.")

	return b.String()
}

func contextBlock(snippets []string) string {
	if len(snippets) == 0 {
		return NoContext
	}
	lines := make([]string, len(snippets))
	for i, s := range snippets {
		lines[i] = "- " + s
	}
	return strings.Join(lines, "\n")
}
