// internal/models/content.go
package models

// Request defaults.
const (
	DefaultTone        = "professional"
	DefaultLanguage    = "en"
	DefaultContentType = "landing_page"
)

// GenerationRequest is the inbound request to produce content.
type GenerationRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tone        string `json:"tone,omitempty"`
	Language    string `json:"language,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// WithDefaults returns a copy with absent or empty optional fields filled.
func (r GenerationRequest) WithDefaults() GenerationRequest {
	if r.Tone == "" {
		r.Tone = DefaultTone
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.ContentType == "" {
		r.ContentType = DefaultContentType
	}
	return r
}

type SEOMeta struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GeneratedContent is the structured content, either parsed from the model
// output or synthesized as a fallback.
type GeneratedContent struct {
	HeroSection string   `json:"hero_section"`
	Features    []string `json:"features"`
	Benefits    []string `json:"benefits"`
	SEOMeta     SEOMeta  `json:"seo_meta"`
	CTA         string   `json:"cta"`
	FAQs        []FAQ    `json:"faqs"`
}

// Normalized replaces nil sequences with empty ones so they serialize as [].
func (c GeneratedContent) Normalized() GeneratedContent {
	if c.Features == nil {
		c.Features = []string{}
	}
	if c.Benefits == nil {
		c.Benefits = []string{}
	}
	if c.FAQs == nil {
		c.FAQs = []FAQ{}
	}
	if c.SEOMeta.Keywords == nil {
		c.SEOMeta.Keywords = []string{}
	}
	return c
}

// RenderedContent is GeneratedContent plus its HTML and Markdown renderings.
type RenderedContent struct {
	GeneratedContent
	HTMLContent     string `json:"html_content"`
	MarkdownContent string `json:"markdown_content"`
}
