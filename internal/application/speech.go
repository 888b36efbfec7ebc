package application

import (
	"context"

	"stockvoice/internal/domain"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio domain.Audio) (string, error)
}
