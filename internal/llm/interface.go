package llm

import (
	"context"

	"github.com/comigor/jokebot-go/internal/api"
)

// Request is one completion call: the full upstream turn list (the user turn last)
// and the system instruction to attach out of band.
type Request struct {
	Contents          []api.Content
	SystemInstruction string
}

// Client is the completion capability used by the relay; it is easy to mock in tests.
// Generate returns the generated text, which may be empty.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}
