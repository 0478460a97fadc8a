package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRequest_WithDefaults(t *testing.T) {
	req := GenerationRequest{Title: "Acme", Description: "A widget"}.WithDefaults()
	assert.Equal(t, "professional", req.Tone)
	assert.Equal(t, "en", req.Language)
	assert.Equal(t, "landing_page", req.ContentType)

	req = GenerationRequest{Title: "Acme", Description: "A widget", Tone: "casual", Language: "fr", ContentType: "blog"}.WithDefaults()
	assert.Equal(t, "casual", req.Tone)
	assert.Equal(t, "fr", req.Language)
	assert.Equal(t, "blog", req.ContentType)
}

func TestRenderedContent_AllKeysPresent(t *testing.T) {
	rendered := RenderedContent{GeneratedContent: GeneratedContent{}.Normalized()}
	raw, err := json.Marshal(rendered)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	for _, key := range []string{"hero_section", "features", "benefits", "seo_meta", "cta", "faqs", "html_content", "markdown_content"} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, []interface{}{}, body["features"])
	assert.Equal(t, []interface{}{}, body["faqs"])
	assert.Equal(t, []interface{}{}, body["seo_meta"].(map[string]interface{})["keywords"])
}

func TestEventFromRecord(t *testing.T) {
	rec := NewHistoryRecord(GenerationRequest{Title: "Acme", ContentType: "landing_page"}, RenderedContent{}, true)
	ev := EventFromRecord(rec)
	assert.Equal(t, EventTypeContentGenerated, ev.Type)
	assert.Equal(t, rec.ID, ev.ID)
	assert.True(t, ev.Fallback)
}
