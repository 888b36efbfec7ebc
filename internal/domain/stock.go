package domain

type Category string

const (
	CategoryMarketData Category = "market_data"
	CategoryFinancials Category = "financials"
	CategoryAnalysis   Category = "analysis"
	CategoryNews       Category = "news"
)

// Categories lists every category a bundle carries, in query order.
var Categories = []Category{
	CategoryMarketData,
	CategoryFinancials,
	CategoryAnalysis,
	CategoryNews,
}

// MaxResultsPerCategory caps how many organic results are kept per query.
const MaxResultsPerCategory = 3

type SearchResult struct {
	Title   string
	Snippet string
	Link    string
}

// StockData is the bundle of search snippets gathered for one symbol.
type StockData map[Category][]SearchResult

// NewStockData returns a bundle with every category present and empty.
func NewStockData() StockData {
	data := make(StockData, len(Categories))
	for _, c := range Categories {
		data[c] = []SearchResult{}
	}
	return data
}

// Snippets returns the snippets of one category in result order.
func (d StockData) Snippets(c Category) []string {
	results := d[c]
	snippets := make([]string, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, r.Snippet)
	}
	return snippets
}
