package synthesis

import (
	"context"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

// ChatModel produces a completion for a system and a user prompt.
type ChatModel interface {
	Generate(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error)
}
