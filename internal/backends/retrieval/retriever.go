// Package retrieval provides the top-k document stores used to ground prompts.
package retrieval

import "context"

// DefaultTopK is the number of snippets the pipeline asks for.
const DefaultTopK = 3

// Retriever returns up to topK snippets relevant to query, best first.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]string, error)
	Name() string
}

// SampleDocuments is the built-in knowledge base.
var SampleDocuments = []string{
	"Our platform provides enterprise-grade security with end-to-end encryption.",
	"We offer 24/7 customer support with dedicated account managers.",
	"Scalable infrastructure that grows with your business needs.",
	"Comprehensive analytics dashboard with real-time insights.",
	"Integration with popular tools like Slack, Jira, and Salesforce.",
	"Compliance with GDPR, SOC 2, and ISO 27001 standards.",
	"AI-powered features that automate repetitive tasks.",
	"Mobile-first design with responsive layouts for all devices.",
}
