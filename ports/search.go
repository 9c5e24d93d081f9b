package ports

import "context"

// Snippet is one ranked web search result
type Snippet struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// WebSearcher fetches ranked snippets for a free-text query
type WebSearcher interface {
	Search(ctx context.Context, query string, num int) ([]Snippet, error)
}
