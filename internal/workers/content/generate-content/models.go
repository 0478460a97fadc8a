// internal/workers/content/generate-content/models.go
package generatecontent

import "content-creator/internal/models"

// Input is the job variable document. Its fields are validated by the
// pipeline's request schema, so it is kept as a raw map.
type Input map[string]interface{}

// Output becomes the job's result variables.
type Output struct {
	models.RenderedContent
	Fallback bool `json:"fallback"`
}
