package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "config.schema.json"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Speech    SpeechConfig    `yaml:"speech"`
	LLM       LLMConfig       `yaml:"llm"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	SerpAPI   SerpAPIConfig   `yaml:"serpapi"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	Client    ClientConfig    `yaml:"client"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	AuthToken      string `yaml:"auth_token"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	RateLimit      int    `yaml:"rate_limit"`
	WriteTimeout   string `yaml:"write_timeout"`
}

// SpeechConfig selects the transcription provider: gemini or openai.
type SpeechConfig struct {
	Provider string `yaml:"provider"`
}

// LLMConfig selects the text generation provider: gemini, anthropic or openai.
type LLMConfig struct {
	Provider string `yaml:"provider"`
}

type GeminiConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	TranscribeModel string `yaml:"transcribe_model"`
	Timeout         string `yaml:"timeout"`
}

type OpenAIConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	WhisperModel string `yaml:"whisper_model"`
	Language     string `yaml:"language"`
	MaxTokens    int    `yaml:"max_tokens"`
	Timeout      string `yaml:"timeout"`
}

type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Timeout   string `yaml:"timeout"`
}

type SerpAPIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

// ClientConfig drives the CLI commands that talk to a running server.
type ClientConfig struct {
	ServerURL  string `yaml:"server_url"`
	AuthToken  string `yaml:"auth_token"`
	SampleRate int    `yaml:"sample_rate"`
	MaxSeconds int    `yaml:"max_seconds"`
	Timeout    string `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Load reads .env (when present) into the environment, then the YAML file with
// ${VAR} expansion. A missing file yields defaults plus environment keys.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	return loadFile(path)
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data = nil
	} else if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse expands, validates and decodes a YAML document.
func Parse(data []byte) (*Config, error) {
	expanded := []byte(os.ExpandEnv(string(data)))

	if err := validate(expanded); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func validate(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if raw == nil {
		return nil
	}

	// Round-trip through JSON so the validator sees JSON types.
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("converting config to JSON: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return fmt.Errorf("converting config to JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("loading config schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 50 << 20
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "5m"
	}
	if c.Speech.Provider == "" {
		c.Speech.Provider = "gemini"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Gemini.TranscribeModel == "" {
		c.Gemini.TranscribeModel = c.Gemini.Model
	}
	if c.Gemini.Timeout == "" {
		c.Gemini.Timeout = "60s"
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.WhisperModel == "" {
		c.OpenAI.WhisperModel = "whisper-1"
	}
	if c.OpenAI.Timeout == "" {
		c.OpenAI.Timeout = "60s"
	}
	if c.Anthropic.APIKey == "" {
		c.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if c.Anthropic.MaxTokens == 0 {
		c.Anthropic.MaxTokens = 4096
	}
	if c.Anthropic.Timeout == "" {
		c.Anthropic.Timeout = "60s"
	}
	if c.SerpAPI.APIKey == "" {
		c.SerpAPI.APIKey = os.Getenv("SERP_API_KEY")
	}
	if c.SerpAPI.BaseURL == "" {
		c.SerpAPI.BaseURL = "https://serpapi.com"
	}
	if c.SerpAPI.Timeout == "" {
		c.SerpAPI.Timeout = "60s"
	}
	if c.Pushover.Token == "" {
		c.Pushover.Token = os.Getenv("PUSHOVER_TOKEN")
	}
	if c.Pushover.UserKey == "" {
		c.Pushover.UserKey = os.Getenv("PUSHOVER_USER_KEY")
	}
	if c.Client.ServerURL == "" {
		c.Client.ServerURL = "http://localhost:3000"
	}
	if c.Client.SampleRate == 0 {
		c.Client.SampleRate = 16000
	}
	if c.Client.MaxSeconds == 0 {
		c.Client.MaxSeconds = 30
	}
	if c.Client.Timeout == "" {
		c.Client.Timeout = "5m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Duration parses a duration setting, falling back when empty or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
