package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"stockvoice/internal/domain"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		query string
		want  domain.Mode
	}{
		{"Compare Apple and Microsoft", domain.ModeComparison},
		{"apple VERSUS google", domain.ModeComparison},
		{"tsla vs nvda", domain.ModeComparison},
		{"Should I buy Tesla?", domain.ModeRecommendation},
		{"is amazon worth buying", domain.ModeRecommendation},
		{"Is Nvidia a good investment", domain.ModeRecommendation},
		{"Should I buy Apple or compare it with Google?", domain.ModeComparison},
		{"How is Apple doing", domain.ModeGeneral},
		{"Can I buy Tesla stock today?", domain.ModeGeneral},
		{"", domain.ModeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.SelectMode(tt.query))
		})
	}
}

func TestParseSymbols(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"single", "AAPL", []string{"AAPL"}},
		{"lowercase and spaces", " aapl , msft,googl \n", []string{"AAPL", "MSFT", "GOOGL"}},
		{"null", "NULL", []string{}},
		{"null lowercase padded", "  null\n", []string{}},
		{"market suffix", "tsla:nasdaq", []string{"TSLA:NASDAQ"}},
		{"empty tokens dropped", "AAPL,,MSFT,", []string{"AAPL", "MSFT"}},
		{"conversational reply kept", "hi there", []string{"HI THERE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseSymbols(tt.reply))
		})
	}
}

func TestCombineAnalyses(t *testing.T) {
	t.Run("single is verbatim", func(t *testing.T) {
		got := domain.CombineAnalyses([]domain.SymbolAnalysis{{Symbol: "AAPL", Analysis: "good"}})
		assert.Equal(t, "good", got)
	})

	t.Run("multiple keep order", func(t *testing.T) {
		got := domain.CombineAnalyses([]domain.SymbolAnalysis{
			{Symbol: "TSLA", Analysis: "a"},
			{Symbol: "NVDA", Analysis: "b"},
			{Symbol: "AMD", Analysis: "c"},
		})
		assert.Equal(t, "TSLA:\na\n\nNVDA:\nb\n\nAMD:\nc", got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", domain.CombineAnalyses(nil))
	})
}

func TestFailureMessages(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, "Analysis failed for AAPL: boom", domain.AnalysisFailure("AAPL", err))
	assert.Equal(t, "Unable to analyze AAPL: boom", domain.SymbolFailure("AAPL", err))

	reqErr := &domain.SearchRequestError{Category: domain.CategoryNews, Status: "Bad Gateway"}
	assert.Equal(t, "search request failed for news: Bad Gateway", reqErr.Error())
}
