//go:build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"

	"stockvoice/internal/domain"
)

// Microphone records utterances from the default input device.
type Microphone struct {
	stream     *portaudio.Stream
	buffer     []int16
	sampleRate int
	maxSeconds int
	logger     *slog.Logger
}

func NewMicrophone(sampleRate, maxSeconds int, logger *slog.Logger) *Microphone {
	return &Microphone{
		sampleRate: sampleRate,
		maxSeconds: maxSeconds,
		logger:     logger,
		buffer:     make([]int16, FramesPerBuffer),
	}
}

func (m *Microphone) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(m.buffer), m.buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}
	m.stream = stream

	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}

	m.logger.Info("microphone started", "sample_rate", m.sampleRate)
	return nil
}

func (m *Microphone) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
	}
	portaudio.Terminate()
	return nil
}

// Record captures one utterance and returns it as a WAV recording.
func (m *Microphone) Record(ctx context.Context) (domain.Audio, error) {
	capture := NewCapture(m.sampleRate, m.maxSeconds)

	for {
		select {
		case <-ctx.Done():
			return domain.Audio{}, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return domain.Audio{}, fmt.Errorf("reading from stream: %w", err)
		}

		if capture.Add(m.buffer) {
			break
		}
	}

	return domain.Audio{Data: capture.WAV(), MIMEType: "audio/wav"}, nil
}
