package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stockvoice/internal/domain"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"

	transcribeInstruction = "Transcribe this audio query about stocks accurately, preserving any comparison or recommendation requests."
)

// Client talks to the Gemini generateContent REST endpoint. It serves both as
// the speech-to-text collaborator and as a text generator.
type Client struct {
	apiKey          string
	httpClient      *http.Client
	baseURL         string
	model           string
	transcribeModel string
}

func NewClient(apiKey, model, transcribeModel string, timeout time.Duration) *Client {
	return NewClientWithURL(apiKey, model, transcribeModel, DefaultBaseURL, timeout)
}

func NewClientWithURL(apiKey, model, transcribeModel, baseURL string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	if transcribeModel == "" {
		transcribeModel = model
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:          apiKey,
		httpClient:      &http.Client{Timeout: timeout},
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		model:           model,
		transcribeModel: transcribeModel,
	}
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type request struct {
	Contents       []content `json:"contents"`
	SystemInstruct *content  `json:"systemInstruction,omitempty"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// Transcribe sends the recording inline with a fixed transcription instruction.
func (c *Client) Transcribe(ctx context.Context, audio domain.Audio) (string, error) {
	reqBody := request{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{Text: transcribeInstruction},
					{InlineData: &inlineData{
						MIMEType: domain.BaseMIMEType(audio.MIMEType),
						Data:     base64.StdEncoding.EncodeToString(audio.Data),
					}},
				},
			},
		},
	}

	text, err := c.generate(ctx, c.transcribeModel, reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini transcription: %w", err)
	}
	return text, nil
}

// Generate maps the conversation onto Gemini contents. System messages become
// the system instruction and assistant turns use the "model" role.
func (c *Client) Generate(ctx context.Context, messages []domain.Message) (string, error) {
	var reqBody request
	var system []part

	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, part{Text: m.Content})
		case domain.RoleAssistant:
			reqBody.Contents = append(reqBody.Contents, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			reqBody.Contents = append(reqBody.Contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}
	if len(system) > 0 {
		reqBody.SystemInstruct = &content{Parts: system}
	}

	return c.generate(ctx, c.model, reqBody)
}

func (c *Client) generate(ctx context.Context, model string, reqBody request) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Keep the key out of the URL; transport errors print it.
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("gemini error: %s", result.Error.Message)
	}

	if len(result.Candidates) == 0 {
		return "", domain.ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
