package application

import (
	"context"

	"stockvoice/internal/domain"
)

// TextGenerator sends a role-tagged conversation to a language model and returns
// the reply text.
type TextGenerator interface {
	Generate(ctx context.Context, messages []domain.Message) (string, error)
}
