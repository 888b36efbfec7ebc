package application

import (
	"context"

	"stockvoice/internal/domain"
)

// SearchEngine runs one web search and returns the organic results in rank order.
// A non-success HTTP answer must be reported as *domain.SearchRequestError.
type SearchEngine interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}
