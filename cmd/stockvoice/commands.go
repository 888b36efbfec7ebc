package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stockvoice/config"
	"stockvoice/internal/client"
	"stockvoice/internal/domain"
	"stockvoice/internal/infra/audio"
	"stockvoice/internal/infra/httpapi"
	"stockvoice/internal/logging"
)

var version = "dev"

type rootOptions struct {
	configPath string
	serverURL  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "stockvoice",
		Short: "Voice-driven stock analysis assistant",
		Long: `stockvoice transcribes a spoken question about stocks, looks up current market
data for every company mentioned and answers with an AI-generated analysis.

Run "stockvoice serve" to start the API, then "stockvoice record", "ask" or "text" to query it.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&opts.serverURL, "server", "", "server URL (overrides client.server_url)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newAskCmd(opts))
	rootCmd.AddCommand(newTextCmd(opts))
	rootCmd.AddCommand(newRecordCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.configPath)
		},
	}
}

func runServe(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	defer logger.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analyst, err := buildAnalyst(ctx, cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("building analyst: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		watcher := config.NewWatcher(configPath, cfg, func(next *config.Config, err error) {
			if err != nil {
				return
			}
			logger.SetLevel(next.Log.Level)
			logger.Info("log level updated", "level", next.Log.Level)
		}, logger.Logger)
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("config hot reload disabled", "error", err)
		}
	}

	server := httpapi.NewServer(analyst, httpapi.Options{
		Addr:           cfg.Server.Addr,
		AuthToken:      cfg.Server.AuthToken,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RateLimit:      cfg.Server.RateLimit,
		WriteTimeout:   config.Duration(cfg.Server.WriteTimeout, 5*time.Minute),
	}, logger.Logger)

	logger.Info("starting stock analyst",
		"speech_provider", cfg.Speech.Provider,
		"llm_provider", cfg.LLM.Provider,
		"addr", cfg.Server.Addr,
	)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return server.Stop()
}

// session is the client-side state shared by ask, text and record.
type session struct {
	uploader     *client.Uploader
	conversation *client.Conversation
	renderer     *client.Renderer
	cfg          *config.Config
}

func newSession(opts *rootOptions, out io.Writer) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	serverURL := cfg.Client.ServerURL
	if opts.serverURL != "" {
		serverURL = opts.serverURL
	}

	return &session{
		uploader:     client.NewUploader(serverURL, cfg.Client.AuthToken, config.Duration(cfg.Client.Timeout, 5*time.Minute)),
		conversation: client.NewConversation(),
		renderer:     client.NewRenderer(out),
		cfg:          cfg,
	}, nil
}

func (s *session) show(resp *client.AnalysisResponse, err error) error {
	if err != nil {
		if resp != nil && resp.Transcription != "" {
			s.renderer.Render(client.ChatMessage{Role: client.RoleUser, Content: resp.Transcription, Timestamp: time.Now()})
		}
		s.renderer.RenderError(err)
		return err
	}

	for _, msg := range s.conversation.Record(resp, time.Now()) {
		s.renderer.Render(msg)
	}
	return nil
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask FILE",
		Short: "Upload a recorded question and print the analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			recording, err := audio.LoadFile(args[0])
			if err != nil {
				return err
			}

			return s.show(s.uploader.Ask(cmd.Context(), recording, filepath.Base(args[0])))
		},
	}
}

func newTextCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "text QUERY",
		Short: "Send a typed question and print the analysis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return s.show(s.uploader.AskText(cmd.Context(), strings.Join(args, " ")))
		},
	}
}

func newRecordCmd(opts *rootOptions) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record questions from the microphone until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := logging.New(logging.Options{Level: s.cfg.Log.Level, Format: s.cfg.Log.Format, File: s.cfg.Log.File})
			defer logger.Close()

			mic := audio.NewMicrophone(s.cfg.Client.SampleRate, s.cfg.Client.MaxSeconds, logger.Logger)
			if err := mic.Start(ctx); err != nil {
				return err
			}
			defer mic.Stop()

			for {
				fmt.Fprintln(cmd.OutOrStdout(), "Listening... ask about a stock.")

				recording, err := mic.Record(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if err != nil {
					return err
				}

				if err := s.show(s.uploader.Ask(ctx, recording, recordingName(recording))); err != nil && once {
					return err
				}
				if once {
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "stop after one question")
	return cmd
}

func recordingName(a domain.Audio) string {
	if a.MIMEType == "audio/wav" {
		return "recording.wav"
	}
	return "recording.webm"
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stockvoice %s\n", version)
		},
	}
}
