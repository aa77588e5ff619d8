package domain

import "time"

// Query bounds.
const (
	DefaultLimit   = 20
	MaxCandidates  = 100
	DefaultSuggest = 5
	MaxSuggest     = 20
)

// SearchQuery holds the parameters of one search request. A nil Kind matches
// both kinds.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
	Page  int    `json:"page"`
	Kind  *Kind  `json:"kind,omitempty"`
}

// SearchResult is one page of ranked hits. Total counts the capped candidate list.
type SearchResult struct {
	Hits       []IndexedDocument `json:"hits"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
}

// RebuildStats summarizes one full hydration.
type RebuildStats struct {
	DocumentsIndexed int   `json:"documents_indexed"`
	DistinctTokens   int   `json:"distinct_tokens"`
	DurationMs       int64 `json:"duration_ms"`
	Skipped          int   `json:"skipped"`
}

// IndexStats describes the live index.
type IndexStats struct {
	Documents      int        `json:"documents"`
	DistinctTokens int        `json:"distinct_tokens"`
	LastHydratedAt *time.Time `json:"last_hydrated_at,omitempty"`
}
