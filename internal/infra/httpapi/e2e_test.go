package httpapi_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockvoice/internal/application"
	"stockvoice/internal/infra/gemini"
	"stockvoice/internal/infra/httpapi"
	"stockvoice/internal/infra/serpapi"
)

// fakeGemini answers transcription, extraction and analysis requests the way
// the real endpoint would for a fixed conversation.
func fakeGemini(t *testing.T, transcription, symbols string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					Text       string          `json:"text"`
					InlineData json.RawMessage `json:"inlineData"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		parts := req.Contents[0].Parts
		var reply string
		switch {
		case len(parts) > 1 && parts[1].InlineData != nil:
			reply = transcription
		case strings.Contains(parts[0].Text, "extract the stock symbol"):
			reply = symbols
		default:
			reply = "Solid fundamentals."
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": reply}}}},
			},
		})
	}))
}

func fakeSerpAPI(t *testing.T, failPrefix string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if failPrefix != "" && strings.HasPrefix(r.URL.Query().Get("q"), failPrefix) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic_results":[
			{"title":"1","snippet":"one"},{"title":"2","snippet":"two"},
			{"title":"3","snippet":"three"},{"title":"4","snippet":"four"}
		]}`))
	}))
}

func newPipelineServer(t *testing.T, geminiURL, serpURL string) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	llm := gemini.NewClientWithURL("g-key", "gemini-test", "gemini-test", geminiURL, 5*time.Second)
	search := serpapi.NewClient("s-key", serpURL, 5*time.Second)
	analyst := application.NewAnalyst(llm, llm, search, &application.NoopNotifier{}, logger)

	return httpapi.NewServer(analyst, httpapi.Options{}, logger).Handler()
}

func TestEndToEnd_CompareTwoStocks(t *testing.T) {
	var searches atomic.Int32
	gem := fakeGemini(t, "Compare Apple and Microsoft", "aapl, msft")
	defer gem.Close()
	serp := fakeSerpAPI(t, "", &searches)
	defer serp.Close()

	handler := newPipelineServer(t, gem.URL, serp.URL)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, audioUpload(t, "audio", "audio/webm", []byte("recording")))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Compare Apple and Microsoft", body["transcription"])
	assert.Equal(t, []any{"AAPL", "MSFT"}, body["symbols"])
	assert.Equal(t, "AAPL:\nSolid fundamentals.\n\nMSFT:\nSolid fundamentals.", body["analysis"])
	assert.Equal(t, int32(8), searches.Load())
}

func TestEndToEnd_NoSymbols(t *testing.T) {
	var searches atomic.Int32
	gem := fakeGemini(t, "Hello there", "NULL")
	defer gem.Close()
	serp := fakeSerpAPI(t, "", &searches)
	defer serp.Close()

	handler := newPipelineServer(t, gem.URL, serp.URL)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, audioUpload(t, "audio", "audio/wav", []byte("recording")))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []any{}, body["symbols"])
	assert.Contains(t, body["analysis"], "couldn't identify any stock symbols")
	assert.Equal(t, int32(0), searches.Load())
}

func TestEndToEnd_SearchFailureIsolatedPerSymbol(t *testing.T) {
	var searches atomic.Int32
	gem := fakeGemini(t, "Apple and Microsoft", "AAPL,MSFT")
	defer gem.Close()
	serp := fakeSerpAPI(t, "MSFT ", &searches)
	defer serp.Close()

	handler := newPipelineServer(t, gem.URL, serp.URL)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, audioUpload(t, "audio", "audio/webm", []byte("recording")))

	require.Equal(t, http.StatusOK, rec.Code)
	analysis := decodeBody(t, rec)["analysis"].(string)
	assert.True(t, strings.HasPrefix(analysis, "AAPL:\nSolid fundamentals.\n\nMSFT:\nUnable to analyze MSFT: "), analysis)
	assert.Contains(t, analysis, "search request failed for ")
	assert.Contains(t, analysis, "Internal Server Error")
}

func TestEndToEnd_TextQuery(t *testing.T) {
	var searches atomic.Int32
	gem := fakeGemini(t, "", "TSLA")
	defer gem.Close()
	serp := fakeSerpAPI(t, "", &searches)
	defer serp.Close()

	handler := newPipelineServer(t, gem.URL, serp.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/text", strings.NewReader(`{"query":"Should I buy Tesla?"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Should I buy Tesla?", body["transcription"])
	assert.Equal(t, "Solid fundamentals.", body["analysis"])
}

func TestEndToEnd_EmptyTranscription(t *testing.T) {
	var searches atomic.Int32
	gem := fakeGemini(t, "   ", "AAPL")
	defer gem.Close()
	serp := fakeSerpAPI(t, "", &searches)
	defer serp.Close()

	handler := newPipelineServer(t, gem.URL, serp.URL)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, audioUpload(t, "audio", "audio/webm", []byte("silence")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Error processing voice stock analysis", body["error"])
	assert.Equal(t, "failed to transcribe audio", body["details"])
}
