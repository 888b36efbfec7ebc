package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockvoice/internal/domain"
)

func TestNewStockData(t *testing.T) {
	data := domain.NewStockData()

	assert.Len(t, data, 4)
	for _, c := range domain.Categories {
		assert.NotNil(t, data[c])
		assert.Empty(t, data.Snippets(c))
	}
}

func TestStockData_Snippets(t *testing.T) {
	data := domain.NewStockData()
	data[domain.CategoryNews] = []domain.SearchResult{
		{Title: "a", Snippet: "first"},
		{Title: "b", Snippet: "second"},
	}

	assert.Equal(t, []string{"first", "second"}, data.Snippets(domain.CategoryNews))
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t,
		"MSFT stock quarterly revenue profit margins earnings growth",
		domain.SearchQuery("MSFT", domain.CategoryFinancials),
	)
}

func TestAudioMIMEType(t *testing.T) {
	assert.True(t, domain.IsAudioMIMEType("audio/webm"))
	assert.True(t, domain.IsAudioMIMEType("audio/webm;codecs=opus"))
	assert.False(t, domain.IsAudioMIMEType("text/plain"))
	assert.False(t, domain.IsAudioMIMEType(""))

	assert.Equal(t, "audio/webm", domain.BaseMIMEType("audio/webm; codecs=opus"))
	assert.Equal(t, "audio/wav", domain.BaseMIMEType("audio/wav"))
}
