//go:build !portaudio

package audio

import (
	"context"
	"errors"
	"log/slog"

	"stockvoice/internal/domain"
)

var errNoPortAudio = errors.New("microphone not available: rebuild with -tags portaudio")

// Microphone stub when portaudio is not available
type Microphone struct {
	logger *slog.Logger
}

func NewMicrophone(_, _ int, logger *slog.Logger) *Microphone {
	return &Microphone{logger: logger}
}

func (m *Microphone) Start(_ context.Context) error {
	return errNoPortAudio
}

func (m *Microphone) Stop() error {
	return nil
}

func (m *Microphone) Record(_ context.Context) (domain.Audio, error) {
	return domain.Audio{}, errNoPortAudio
}
