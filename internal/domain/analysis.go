package domain

import (
	"fmt"
	"strings"
)

// Mode selects which analysis prompt is sent for a query.
type Mode string

const (
	ModeComparison     Mode = "comparison"
	ModeRecommendation Mode = "recommendation"
	ModeGeneral        Mode = "general"
)

var (
	comparisonKeywords     = []string{"compare", "versus", "vs"}
	recommendationKeywords = []string{"should i buy", "worth buying", "good investment"}
)

// NoSymbolsMessage is returned as the analysis when no symbol was recognised.
const NoSymbolsMessage = "I couldn't identify any stock symbols. Please mention specific companies or stocks you'd like to analyze."

// SelectMode picks the analysis mode from plain substring matches on the query.
// Comparison wins over recommendation when both match.
func SelectMode(query string) Mode {
	q := strings.ToLower(query)
	if containsAny(q, comparisonKeywords) {
		return ModeComparison
	}
	if containsAny(q, recommendationKeywords) {
		return ModeRecommendation
	}
	return ModeGeneral
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// SymbolAnalysis is the outcome for one symbol. Analysis always holds displayable
// text, including the failure message when the symbol could not be analysed.
type SymbolAnalysis struct {
	Symbol   string
	Analysis string
	Failed   bool
}

// AnalysisFailure formats the message used when the model could not produce an analysis.
func AnalysisFailure(symbol string, err error) string {
	return fmt.Sprintf("Analysis failed for %s: %s", symbol, err)
}

// SymbolFailure formats the message used when a symbol's pipeline failed outright.
func SymbolFailure(symbol string, err error) string {
	return fmt.Sprintf("Unable to analyze %s: %s", symbol, err)
}

// CombineAnalyses joins per-symbol analyses in order. A single analysis is
// returned verbatim; several are prefixed with "SYMBOL:\n" and separated by a blank line.
func CombineAnalyses(results []SymbolAnalysis) string {
	if len(results) == 0 {
		return ""
	}
	if len(results) == 1 {
		return results[0].Analysis
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, r.Symbol+":\n"+r.Analysis)
	}
	return strings.Join(blocks, "\n\n")
}

// Result is the outcome of one full pipeline run.
type Result struct {
	Transcription string
	Symbols       []string
	Analysis      string
	Details       []SymbolAnalysis
}

// ParseSymbols turns a raw extraction reply into tickers. The reply is upper-cased,
// split on commas and trimmed; the literal NULL means no symbols. Empty tokens are dropped.
func ParseSymbols(reply string) []string {
	raw := strings.ToUpper(strings.TrimSpace(reply))
	if raw == "" || raw == "NULL" {
		return []string{}
	}

	symbols := make([]string, 0, strings.Count(raw, ",")+1)
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}
