package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"sync"
	"time"

	"content-creator/internal/models"
)

var baseFeatures = []string{
	"Advanced security and encryption",
	"Real-time analytics and insights",
	"Seamless integration capabilities",
	"24/7 customer support",
	"Scalable infrastructure",
	"User-friendly interface",
}

var baseBenefits = []string{
	"Increase productivity and efficiency",
	"Reduce operational costs",
	"Improve customer satisfaction",
	"Enhance security and compliance",
	"Accelerate time to market",
	"Enable data-driven decisions",
}

var toneActions = map[string]string{
	"professional":   "Discover",
	"casual":         "Check out",
	"friendly":       "Welcome to",
	"formal":         "We present",
	"conversational": "Hey there!",
}

var toneCTAs = map[string]string{
	"professional":   "Get Started Today",
	"casual":         "Try It Now",
	"friendly":       "Join Us Now",
	"formal":         "Request a Demo",
	"conversational": "Let's Get Started!",
}

const (
	defaultAction = "Discover"
	defaultCTA    = "Get Started"
	// characters taken when an end marker is missing
	extractWindow = 100
)

// Local is a deterministic stand-in for a hosted model. It reads the request
// fields back out of the prompt and builds a plausible JSON reply without any
// network I/O. Only the feature and benefit selection is random.
type Local struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocal returns a Local backend. A nil rng is seeded from the clock.
func NewLocal(rng *rand.Rand) *Local {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Local{rng: rng}
}

func (l *Local) Name() string { return "local" }

func (l *Local) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	title := extractBetween(prompt, "about:", "\n")
	description := extractBetween(prompt, "Description:\n", "\n\n")
	tone := extractBetween(prompt, "Tone:", "\n")

	content := models.GeneratedContent{
		HeroSection: hero(title, description, tone),
		Features:    l.sample(baseFeatures, 4),
		Benefits:    l.sample(baseBenefits, 3),
		SEOMeta:     seo(title, description),
		CTA:         lookup(toneCTAs, tone, defaultCTA),
		FAQs:        faqs(title, description),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(content); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// sample picks n distinct entries in random order.
func (l *Local) sample(from []string, n int) []string {
	l.mu.Lock()
	perm := l.rng.Perm(len(from))
	l.mu.Unlock()

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = from[perm[i]]
	}
	return out
}

// extractBetween returns the trimmed text after the first start marker up to
// the next end marker. Missing start yields ""; missing end yields the next
// extractWindow characters.
func extractBetween(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	rest := s[i+len(start):]
	if j := strings.Index(rest, end); j >= 0 {
		return strings.TrimSpace(rest[:j])
	}
	return strings.TrimSpace(prefix(rest, extractWindow))
}

func hero(title, description, tone string) string {
	action := lookup(toneActions, tone, defaultAction)
	return action + " " + title + ". " + prefix(description, 100) +
		"... Experience the future of innovation and excellence."
}

func seo(title, description string) models.SEOMeta {
	keyword := "solution"
	if fields := strings.Fields(strings.ToLower(title)); len(fields) > 0 {
		keyword = fields[0]
	}
	return models.SEOMeta{
		Title:       ellipsize(title, 60),
		Description: ellipsize(description, 160),
		Keywords:    []string{keyword, "enterprise", "platform", "software", "technology"},
	}
}

func faqs(title, description string) []models.FAQ {
	return []models.FAQ{
		{
			Question: "What is " + title + "?",
			Answer:   title + " is a comprehensive solution that " + prefix(description, 80) + "...",
		},
		{
			Question: "How does it work?",
			Answer:   "Our platform uses advanced technology to provide seamless integration and powerful features that help you achieve your goals efficiently.",
		},
		{
			Question: "Is it secure?",
			Answer:   "Yes, we implement enterprise-grade security measures including encryption, access controls, and compliance with industry standards.",
		},
	}
}

func lookup(m map[string]string, key, def string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ellipsize keeps s when it fits in max runes, else cuts to max-3 and appends "...".
func ellipsize(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
