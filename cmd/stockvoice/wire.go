package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stockvoice/config"
	"stockvoice/internal/application"
	"stockvoice/internal/infra/anthropic"
	"stockvoice/internal/infra/gemini"
	"stockvoice/internal/infra/openai"
	"stockvoice/internal/infra/pushover"
	"stockvoice/internal/infra/serpapi"
)

const defaultTimeout = 60 * time.Second

func buildTranscriber(cfg *config.Config) (application.Transcriber, error) {
	switch cfg.Speech.Provider {
	case "gemini":
		return newGeminiClient(cfg), nil
	case "openai":
		return openai.NewWhisperClient(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.BaseURL,
			cfg.OpenAI.WhisperModel,
			cfg.OpenAI.Language,
			config.Duration(cfg.OpenAI.Timeout, defaultTimeout),
		), nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Speech.Provider)
	}
}

func buildGenerator(ctx context.Context, cfg *config.Config) (application.TextGenerator, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return newGeminiClient(cfg), nil
	case "anthropic":
		return anthropic.NewClaudeClient(
			cfg.Anthropic.APIKey,
			cfg.Anthropic.Model,
			cfg.Anthropic.MaxTokens,
			config.Duration(cfg.Anthropic.Timeout, defaultTimeout),
		), nil
	case "openai":
		return openai.NewChatClient(ctx, openai.ChatOptions{
			APIKey:    cfg.OpenAI.APIKey,
			BaseURL:   cfg.OpenAI.BaseURL,
			Model:     cfg.OpenAI.Model,
			MaxTokens: cfg.OpenAI.MaxTokens,
			Timeout:   config.Duration(cfg.OpenAI.Timeout, defaultTimeout),
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func buildNotifier(cfg *config.Config) application.Notifier {
	if cfg.Pushover.Enabled {
		return pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	}
	return &application.NoopNotifier{}
}

func buildAnalyst(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application.Analyst, error) {
	stt, err := buildTranscriber(cfg)
	if err != nil {
		return nil, err
	}

	llm, err := buildGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	search := serpapi.NewClient(
		cfg.SerpAPI.APIKey,
		cfg.SerpAPI.BaseURL,
		config.Duration(cfg.SerpAPI.Timeout, defaultTimeout),
	)

	return application.NewAnalyst(stt, llm, search, buildNotifier(cfg), logger), nil
}

func newGeminiClient(cfg *config.Config) *gemini.Client {
	return gemini.NewClient(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.TranscribeModel,
		config.Duration(cfg.Gemini.Timeout, defaultTimeout),
	)
}
