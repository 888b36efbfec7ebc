package application

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"stockvoice/internal/domain"
)

//go:embed prompts/*.md
var promptFiles embed.FS

const promptExtractSymbols = "extract_symbols"

var analysisPrompts = map[domain.Mode]string{
	domain.ModeComparison:     "analysis_comparison",
	domain.ModeRecommendation: "analysis_recommendation",
	domain.ModeGeneral:        "analysis_general",
}

func loadPrompt(name string) (string, error) {
	content, err := promptFiles.ReadFile(fmt.Sprintf("prompts/%s.md", name))
	if err != nil {
		return "", fmt.Errorf("loading prompt %s: %w", name, err)
	}
	return string(content), nil
}

func renderPrompt(ctx context.Context, name string, vars map[string]any) ([]domain.Message, error) {
	tpl, err := loadPrompt(name)
	if err != nil {
		return nil, err
	}

	promptTemp := prompt.FromMessages(schema.FString, schema.UserMessage(tpl))
	rendered, err := promptTemp.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("formatting prompt %s: %w", name, err)
	}

	messages := make([]domain.Message, 0, len(rendered))
	for _, m := range rendered {
		messages = append(messages, domain.Message{Role: domain.Role(m.Role), Content: m.Content})
	}
	return messages, nil
}

// ExtractionPrompt builds the symbol extraction request for a transcription.
func ExtractionPrompt(ctx context.Context, text string) ([]domain.Message, error) {
	return renderPrompt(ctx, promptExtractSymbols, map[string]any{"text": text})
}

// AnalysisPrompt builds the analysis request for one symbol. The template is
// chosen from the query alone; the data only fills placeholders.
func AnalysisPrompt(ctx context.Context, query, symbol string, data domain.StockData) ([]domain.Message, error) {
	vars := map[string]any{"symbol": symbol}
	for _, c := range domain.Categories {
		vars[string(c)] = strings.Join(data.Snippets(c), "\n")
	}
	return renderPrompt(ctx, analysisPrompts[domain.SelectMode(query)], vars)
}
