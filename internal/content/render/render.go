// Package render produces the HTML and Markdown renderings of generated content.
package render

import (
	"html"
	"strings"

	"content-creator/internal/models"
)

const defaultButton = "Get Started"

// Renderer renders GeneratedContent. The zero value interpolates text verbatim.
type Renderer struct {
	// EscapeHTML escapes user and model text in the HTML rendering only.
	EscapeHTML bool
}

// New returns a Renderer.
func New(escapeHTML bool) *Renderer {
	return &Renderer{EscapeHTML: escapeHTML}
}

// Render is Renderer{}.Render.
func Render(content models.GeneratedContent, title string) models.RenderedContent {
	return Renderer{}.Render(content, title)
}

// Render attaches both renderings to content.
func (r Renderer) Render(content models.GeneratedContent, title string) models.RenderedContent {
	content = content.Normalized()
	return models.RenderedContent{
		GeneratedContent: content,
		HTMLContent:      r.HTML(content, title),
		MarkdownContent:  Markdown(content, title),
	}
}

// HTML renders the fixed landing page skeleton.
func (r Renderer) HTML(content models.GeneratedContent, title string) string {
	esc := func(s string) string { return s }
	if r.EscapeHTML {
		esc = html.EscapeString
	}

	pageTitle := content.SEOMeta.Title
	if pageTitle == "" {
		pageTitle = title
	}
	button := content.CTA
	if button == "" {
		button = defaultButton
	}
	keywords := make([]string, len(content.SEOMeta.Keywords))
	for i, k := range content.SEOMeta.Keywords {
		keywords[i] = esc(k)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n")
	b.WriteString("<head>\n")
	b.WriteString("    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("    <title>" + esc(pageTitle) + "</title>\n")
	b.WriteString("    <meta name=\"description\" content=\"" + esc(content.SEOMeta.Description) + "\">\n")
	b.WriteString("    <meta name=\"keywords\" content=\"" + strings.Join(keywords, ", ") + "\">\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString("    <header>\n")
	b.WriteString("        <h1>" + esc(title) + "</h1>\n")
	b.WriteString("    </header>\n")
	b.WriteString("    <main>\n")
	b.WriteString("        <section class=\"hero\">\n")
	b.WriteString("            <p>" + esc(content.HeroSection) + "</p>\n")
	b.WriteString("        </section>\n")
	b.WriteString("        <section class=\"features\">\n")
	b.WriteString("            <h2>Features</h2>\n")
	b.WriteString("            <ul>" + listItems(content.Features, esc) + "</ul>\n")
	b.WriteString("        </section>\n")
	b.WriteString("        <section class=\"benefits\">\n")
	b.WriteString("            <h2>Benefits</h2>\n")
	b.WriteString("            <ul>" + listItems(content.Benefits, esc) + "</ul>\n")
	b.WriteString("        </section>\n")
	b.WriteString("        <section class=\"cta\">\n")
	b.WriteString("            <button>" + esc(button) + "</button>\n")
	b.WriteString("        </section>\n")
	b.WriteString("        <section class=\"faqs\">\n")
	b.WriteString("            <h2>Frequently Asked Questions</h2>\n")
	b.WriteString("            " + faqBlocks(content.FAQs, esc) + "\n")
	b.WriteString("        </section>\n")
	b.WriteString("    </main>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>")
	return b.String()
}

func listItems(items []string, esc func(string) string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("<li>" + esc(item) + "</li>")
	}
	return b.String()
}

func faqBlocks(faqs []models.FAQ, esc func(string) string) string {
	var b strings.Builder
	for _, faq := range faqs {
		b.WriteString(`<div class="faq"><h3>` + esc(faq.Question) + `</h3><p>` + esc(faq.Answer) + `</p></div>`)
	}
	return b.String()
}

// Markdown renders the flat Markdown document. Text is never escaped.
func Markdown(content models.GeneratedContent, title string) string {
	features := bullets(content.Features)
	benefits := bullets(content.Benefits)

	faqs := make([]string, len(content.FAQs))
	for i, faq := range content.FAQs {
		faqs[i] = "### " + faq.Question + "\n\n" + faq.Answer + "\n"
	}

	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	b.WriteString(content.HeroSection + "\n\n")
	b.WriteString("## Features\n\n" + features + "\n\n")
	b.WriteString("## Benefits\n\n" + benefits + "\n\n")
	b.WriteString("## Call to Action\n\n" + content.CTA + "\n\n")
	b.WriteString("## Frequently Asked Questions\n\n" + strings.Join(faqs, "\n") + "\n")
	return b.String()
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}
