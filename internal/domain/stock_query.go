package domain

import "fmt"

var categoryQueries = map[Category]string{
	CategoryMarketData: "%s stock current price market cap volume PE ratio 52-week high low",
	CategoryFinancials: "%s stock quarterly revenue profit margins earnings growth",
	CategoryAnalysis:   "%s stock analyst buy sell ratings price targets next 12 months",
	CategoryNews:       "%s stock breaking news market moves catalysts last 24 hours",
}

// SearchQuery builds the web search query for one symbol and category.
func SearchQuery(symbol string, c Category) string {
	return fmt.Sprintf(categoryQueries[c], symbol)
}
