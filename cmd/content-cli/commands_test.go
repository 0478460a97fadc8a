package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const localConfig = `
generation:
  provider: local
retrieval:
  provider: local
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate_JSON(t *testing.T) {
	cfg := writeConfig(t, localConfig)

	out, err := run(t, "generate", "--config", cfg, "--title", "Acme", "--description", "A widget", "--tone", "casual")
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "Try It Now", body["cta"])
	assert.Contains(t, body, "html_content")
}

func TestGenerate_Formats(t *testing.T) {
	cfg := writeConfig(t, localConfig)

	out, err := run(t, "generate", "-c", cfg, "--title", "Acme", "--description", "A widget", "--format", "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Acme\n\n"))

	out, err = run(t, "generate", "-c", cfg, "--title", "Acme", "--description", "A widget", "--format", "html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))

	_, err = run(t, "generate", "-c", cfg, "--title", "Acme", "--description", "A widget", "--format", "pdf")
	assert.ErrorContains(t, err, `unknown format "pdf"`)
}

func TestGenerate_Validation(t *testing.T) {
	cfg := writeConfig(t, localConfig)

	_, err := run(t, "generate", "-c", cfg, "--title", "Acme")
	assert.EqualError(t, err, "Title and description are required")
}

func TestSeed(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPut {
			mu.Lock()
			paths = append(paths, r.URL.Path)
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := writeConfig(t, localConfig+`
  index: kb
database:
  elasticsearch:
    url: `+srv.URL+`
`)

	out, err := run(t, "seed", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 8 documents into kb")
	require.Len(t, paths, 8)
	assert.Equal(t, "/kb/_doc/doc_0", paths[0])
}

func TestSeed_RequiresElasticsearch(t *testing.T) {
	cfg := writeConfig(t, localConfig)
	_, err := run(t, "seed", "-c", cfg)
	assert.ErrorContains(t, err, "database.elasticsearch.url is required")
}
