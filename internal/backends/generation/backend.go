// Package generation provides the text-in/text-out generation backends.
package generation

import "context"

// Backend turns a prompt into raw model text. Implementations attempt each
// call exactly once.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}
