package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "content-creator/internal/common/errors"
)

// contentField holds the snippet text in every indexed document.
const contentField = "content"

// Elasticsearch runs a match query against one index.
type Elasticsearch struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearch(client *elasticsearch.Client, index string) *Elasticsearch {
	return &Elasticsearch{client: client, index: index}
}

func (e *Elasticsearch) Name() string { return "elasticsearch" }

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *Elasticsearch) Search(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		return []string{}, nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"size": topK,
		"query": map[string]interface{}{
			"match": map[string]interface{}{contentField: query},
		},
		"_source": []string{contentField},
	})
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewIndexNotFoundError(e.index)
	}
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search query failed: %s %s", res.Status(), bytes.TrimSpace(msg))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		if text, ok := hit.Source[contentField].(string); ok {
			out = append(out, text)
		}
	}
	return out, nil
}

// Index stores docs with sequential ids doc_0..doc_n and refreshes the index.
func (e *Elasticsearch) Index(ctx context.Context, docs []string) error {
	for i, doc := range docs {
		body, err := json.Marshal(map[string]string{contentField: doc})
		if err != nil {
			return err
		}
		req := esapi.IndexRequest{
			Index:      e.index,
			DocumentID: "doc_" + strconv.Itoa(i),
			Body:       bytes.NewReader(body),
			Refresh:    "true",
		}
		res, err := req.Do(ctx, e.client)
		if err != nil {
			return fmt.Errorf("index document %d: %w", i, err)
		}
		isErr, status := res.IsError(), res.Status()
		res.Body.Close()
		if isErr {
			return fmt.Errorf("index document %d: %s", i, status)
		}
	}
	return nil
}
