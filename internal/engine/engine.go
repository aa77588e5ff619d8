package engine

import (
	"context"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/tokenizer"
)

// SearchEngine stores IndexedDocuments and answers token-overlap queries.
// Upsert and Remove are the only incremental mutators; Replace swaps in a
// complete new document set atomically.
type SearchEngine interface {
	// Upsert adds or fully replaces the document with doc.ID.
	Upsert(ctx context.Context, doc domain.IndexedDocument) error

	// Remove deletes the document with the given ID. Unknown IDs are a no-op.
	Remove(ctx context.Context, id string) error

	// Replace discards the current contents and installs docs. Readers observe
	// either the old or the new contents, never a mix.
	Replace(ctx context.Context, docs []domain.IndexedDocument) (Stats, error)

	// Search scores documents by the number of distinct query tokens they
	// contain and returns one page of the ranked, capped candidate list.
	Search(ctx context.Context, tokens tokenizer.Set, opts SearchOptions) (Page, error)

	// Stats reports the current index size.
	Stats(ctx context.Context) (Stats, error)
}

// SearchOptions selects a page of the ranked candidates. Cap bounds the
// candidate list before paging; Kind, when set, drops documents of other kinds.
type SearchOptions struct {
	Kind   *domain.Kind
	Cap    int
	Offset int
	Limit  int
}

// Page is a slice of ranked hits plus the size of the capped candidate list.
type Page struct {
	Hits  []domain.IndexedDocument
	Total int
}

// Stats describes index size.
type Stats struct {
	Documents      int
	DistinctTokens int
}
