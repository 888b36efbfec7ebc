package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"stockvoice/internal/domain"
)

// Analyst runs the voice query pipeline: transcribe, extract symbols, gather
// search data per symbol, analyse and combine.
type Analyst struct {
	stt      Transcriber
	llm      TextGenerator
	search   SearchEngine
	notifier Notifier
	logger   *slog.Logger
}

func NewAnalyst(
	stt Transcriber,
	llm TextGenerator,
	search SearchEngine,
	notifier Notifier,
	logger *slog.Logger,
) *Analyst {
	if notifier == nil {
		notifier = &NoopNotifier{}
	}
	return &Analyst{
		stt:      stt,
		llm:      llm,
		search:   search,
		notifier: notifier,
		logger:   logger,
	}
}

// ProcessAudio transcribes the recording and runs the text pipeline on it.
// When a later step fails the returned result still carries the transcription.
func (a *Analyst) ProcessAudio(ctx context.Context, audio domain.Audio) (*domain.Result, error) {
	a.logger.Info("received audio", "bytes", len(audio.Data), "mime_type", audio.MIMEType)

	text, err := a.Transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}

	a.logger.Info("transcribed", "text", text)
	return a.ProcessText(ctx, text)
}

// ProcessText runs the pipeline from symbol extraction onwards.
func (a *Analyst) ProcessText(ctx context.Context, text string) (*domain.Result, error) {
	result := &domain.Result{Transcription: text, Symbols: []string{}}

	symbols, err := a.ExtractSymbols(ctx, text)
	if err != nil {
		return result, err
	}
	result.Symbols = symbols

	if len(symbols) == 0 {
		a.logger.Info("no symbols found", "text", text)
		result.Analysis = domain.NoSymbolsMessage
		return result, nil
	}

	a.logger.Info("extracted symbols", "symbols", symbols)

	result.Details = a.analyzeAll(ctx, symbols, text)
	result.Analysis = domain.CombineAnalyses(result.Details)

	a.notify(ctx, result)
	return result, nil
}

func (a *Analyst) Transcribe(ctx context.Context, audio domain.Audio) (string, error) {
	text, err := a.stt.Transcribe(ctx, audio)
	if errors.Is(err, domain.ErrEmptyCompletion) {
		return "", domain.ErrEmptyTranscription
	}
	if err != nil {
		return "", fmt.Errorf("transcribing: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyTranscription
	}
	return text, nil
}

// ExtractSymbols asks the model for the tickers mentioned in text. Any non-NULL
// reply is trusted; see domain.ParseSymbols.
func (a *Analyst) ExtractSymbols(ctx context.Context, text string) ([]string, error) {
	messages, err := ExtractionPrompt(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSymbolExtraction, err)
	}

	reply, err := a.llm.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSymbolExtraction, err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrSymbolExtraction, domain.ErrEmptyCompletion)
	}

	return domain.ParseSymbols(reply), nil
}

// FetchStockData runs one search per category concurrently. Any failed search
// fails the whole bundle.
func (a *Analyst) FetchStockData(ctx context.Context, symbol string) (domain.StockData, error) {
	found := make([][]domain.SearchResult, len(domain.Categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, category := range domain.Categories {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("searching %s: %v", category, r)
				}
			}()

			results, err := a.search.Search(gctx, domain.SearchQuery(symbol, category))
			if err != nil {
				var reqErr *domain.SearchRequestError
				if errors.As(err, &reqErr) {
					return &domain.SearchRequestError{Category: category, Status: reqErr.Status}
				}
				return fmt.Errorf("searching %s: %w", category, err)
			}
			if len(results) > domain.MaxResultsPerCategory {
				results = results[:domain.MaxResultsPerCategory]
			}
			found[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching stock data: %w", err)
	}

	data := domain.NewStockData()
	for i, category := range domain.Categories {
		if found[i] != nil {
			data[category] = found[i]
		}
	}
	return data, nil
}

// AnalyzeStock produces the analysis text for one symbol. Failures never
// propagate; they are returned as an "Analysis failed" message.
func (a *Analyst) AnalyzeStock(ctx context.Context, symbol string, data domain.StockData, query string) string {
	analysis, _ := a.analyze(ctx, symbol, data, query)
	return analysis
}

// analyze reports false when the returned text is a failure message.
func (a *Analyst) analyze(ctx context.Context, symbol string, data domain.StockData, query string) (string, bool) {
	analysis, err := a.synthesize(ctx, symbol, data, query)
	if err != nil {
		a.logger.Error("analyzing stock", "symbol", symbol, "error", err)
		return domain.AnalysisFailure(symbol, err), false
	}
	return analysis, true
}

func (a *Analyst) synthesize(ctx context.Context, symbol string, data domain.StockData, query string) (string, error) {
	messages, err := AnalysisPrompt(ctx, query, symbol, data)
	if err != nil {
		return "", err
	}

	reply, err := a.llm.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", domain.ErrEmptyCompletion
	}
	return reply, nil
}

func (a *Analyst) analyzeAll(ctx context.Context, symbols []string, query string) []domain.SymbolAnalysis {
	results := make([]domain.SymbolAnalysis, len(symbols))

	var g errgroup.Group
	for i, symbol := range symbols {
		g.Go(func() error {
			results[i] = a.analyzeSymbol(ctx, symbol, query)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (a *Analyst) analyzeSymbol(ctx context.Context, symbol, query string) (res domain.SymbolAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("symbol pipeline panicked", "symbol", symbol, "panic", r)
			res = domain.SymbolAnalysis{
				Symbol:   symbol,
				Analysis: domain.SymbolFailure(symbol, fmt.Errorf("%v", r)),
				Failed:   true,
			}
		}
	}()

	data, err := a.FetchStockData(ctx, symbol)
	if err != nil {
		a.logger.Error("fetching stock data", "symbol", symbol, "error", err)
		return domain.SymbolAnalysis{Symbol: symbol, Analysis: domain.SymbolFailure(symbol, err), Failed: true}
	}

	analysis, ok := a.analyze(ctx, symbol, data, query)
	if !ok {
		return domain.SymbolAnalysis{Symbol: symbol, Analysis: analysis, Failed: true}
	}

	a.logger.Info("analyzed symbol", "symbol", symbol, "chars", len(analysis))
	return domain.SymbolAnalysis{Symbol: symbol, Analysis: analysis}
}

// notify sends the result in the background; the request does not wait for it
// and a closed connection does not cancel it.
func (a *Analyst) notify(ctx context.Context, result *domain.Result) {
	message := fmt.Sprintf("%s\n\n%s", strings.Join(result.Symbols, ", "), result.Analysis)
	ctx = context.WithoutCancel(ctx)

	go func() {
		if err := a.notifier.Notify(ctx, message); err != nil {
			a.logger.Error("notifying result", "error", err)
		}
	}()
}
