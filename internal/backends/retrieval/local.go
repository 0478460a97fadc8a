package retrieval

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// Local ranks an in-memory document set by query term overlap.
type Local struct {
	docs  []string
	terms []map[string]struct{}
}

// NewLocal indexes docs. A nil slice uses SampleDocuments.
func NewLocal(docs []string) *Local {
	if docs == nil {
		docs = SampleDocuments
	}
	l := &Local{docs: docs, terms: make([]map[string]struct{}, len(docs))}
	for i, d := range docs {
		l.terms[i] = termSet(d)
	}
	return l
}

func (l *Local) Name() string { return "local" }

// Search returns the topK documents sharing the most distinct terms with
// query. Ties keep document order.
func (l *Local) Search(ctx context.Context, query string, topK int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []string{}, nil
	}

	queryTerms := termSet(query)
	type scored struct {
		idx   int
		score int
	}
	ranked := make([]scored, len(l.docs))
	for i := range l.docs {
		n := 0
		for t := range queryTerms {
			if _, ok := l.terms[i][t]; ok {
				n++
			}
		}
		ranked[i] = scored{idx: i, score: n}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	if topK > len(ranked) {
		topK = len(ranked)
	}
	out := make([]string, topK)
	for i := 0; i < topK; i++ {
		out[i] = l.docs[ranked[i].idx]
	}
	return out, nil
}

func termSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[f] = struct{}{}
	}
	return set
}
