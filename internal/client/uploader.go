package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"stockvoice/internal/domain"
)

// AnalysisResponse mirrors the server's JSON envelope for both outcomes.
type AnalysisResponse struct {
	Success       bool     `json:"success"`
	Transcription string   `json:"transcription"`
	Symbols       []string `json:"symbols"`
	Analysis      string   `json:"analysis"`
	Error         string   `json:"error"`
	Details       string   `json:"details"`
}

// Uploader sends recordings and typed queries to a running server.
type Uploader struct {
	client *resty.Client
}

func NewUploader(serverURL, authToken string, timeout time.Duration) *Uploader {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(serverURL, "/"))
	client.SetTimeout(timeout)
	if authToken != "" {
		client.SetHeader("X-Auth-Token", authToken)
	}
	return &Uploader{client: client}
}

// Ask uploads one recording as the multipart field "audio".
func (u *Uploader) Ask(ctx context.Context, audio domain.Audio, filename string) (*AnalysisResponse, error) {
	resp, err := u.client.R().
		SetContext(ctx).
		SetMultipartField("audio", filename, audio.MIMEType, bytes.NewReader(audio.Data)).
		Post("/api/chat")
	if err != nil {
		return nil, fmt.Errorf("uploading audio: %w", err)
	}
	return decodeResponse(resp)
}

// AskText sends a typed query, skipping transcription on the server.
func (u *Uploader) AskText(ctx context.Context, query string) (*AnalysisResponse, error) {
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"query": query}).
		Post("/api/text")
	if err != nil {
		return nil, fmt.Errorf("sending query: %w", err)
	}
	return decodeResponse(resp)
}

func decodeResponse(resp *resty.Response) (*AnalysisResponse, error) {
	var result AnalysisResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode(), err)
	}

	if !result.Success {
		if result.Details != "" {
			return &result, fmt.Errorf("server error %d: %s: %s", resp.StatusCode(), result.Error, result.Details)
		}
		return &result, fmt.Errorf("server error %d: %s", resp.StatusCode(), result.Error)
	}
	return &result, nil
}
