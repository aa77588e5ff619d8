package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/engine"
	"github.com/utafrali/catalogsearch/internal/tokenizer"
)

// Engine is an in-memory inverted index implementing engine.SearchEngine.
// All state lives behind one RWMutex; searches score and resolve hits under a
// single read lock, so a concurrent Replace is never observed half-applied.
type Engine struct {
	mu sync.RWMutex
	ix *index
}

var _ engine.SearchEngine = (*Engine)(nil)

// New creates an empty engine.
func New() *Engine {
	return &Engine{ix: newIndex()}
}

// Upsert adds or fully replaces a document. A replaced document keeps its
// original ranking position among equal scores.
func (e *Engine) Upsert(_ context.Context, doc domain.IndexedDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ix.put(doc)
	return nil
}

// Remove deletes a document and every posting that references it.
func (e *Engine) Remove(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ix.drop(id)
	return nil
}

// Replace builds a fresh index from docs without holding the lock, then swaps
// it in. Later duplicates of an ID overwrite earlier ones.
func (e *Engine) Replace(_ context.Context, docs []domain.IndexedDocument) (engine.Stats, error) {
	fresh := newIndex()
	for i := range docs {
		fresh.put(docs[i])
	}

	e.mu.Lock()
	e.ix = fresh
	e.mu.Unlock()

	return fresh.stats(), nil
}

// Search ranks documents by descending overlap score. Equal scores rank by
// first insertion.
func (e *Engine) Search(_ context.Context, tokens tokenizer.Set, opts engine.SearchOptions) (engine.Page, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	scores := make(map[string]int)
	for token := range tokens {
		for id := range e.ix.postings[token] {
			scores[id]++
		}
	}

	ranked := make([]*entry, 0, len(scores))
	for id := range scores {
		ent := e.ix.documents[id]
		if opts.Kind != nil && ent.doc.Kind != *opts.Kind {
			continue
		}
		ranked = append(ranked, ent)
	}
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i].doc.ID], scores[ranked[j].doc.ID]
		if si != sj {
			return si > sj
		}
		return ranked[i].seq < ranked[j].seq
	})

	if opts.Cap > 0 && len(ranked) > opts.Cap {
		ranked = ranked[:opts.Cap]
	}

	page := engine.Page{Total: len(ranked), Hits: []domain.IndexedDocument{}}
	start := min(max(opts.Offset, 0), len(ranked))
	end := len(ranked)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, len(ranked))
	}
	for _, ent := range ranked[start:end] {
		page.Hits = append(page.Hits, ent.doc.Clone())
	}
	return page, nil
}

// Stats reports the number of documents and posting buckets.
func (e *Engine) Stats(_ context.Context) (engine.Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.ix.stats(), nil
}

type entry struct {
	doc domain.IndexedDocument
	seq uint64
}

// index holds the postings and document store. It is not safe for
// concurrent use on its own.
type index struct {
	postings  map[string]map[string]struct{}
	documents map[string]*entry
	nextSeq   uint64
}

func newIndex() *index {
	return &index{
		postings:  make(map[string]map[string]struct{}),
		documents: make(map[string]*entry),
	}
}

// put unlinks the old version of doc.ID before linking the new one. The
// stored document is a private copy of doc.
func (ix *index) put(doc domain.IndexedDocument) {
	doc = doc.Clone()
	ent, exists := ix.documents[doc.ID]
	if exists {
		ix.unlink(&ent.doc)
		ent.doc = doc
	} else {
		ent = &entry{doc: doc, seq: ix.nextSeq}
		ix.nextSeq++
		ix.documents[doc.ID] = ent
	}

	for token := range tokenizer.DocumentTokens(&ent.doc) {
		bucket, ok := ix.postings[token]
		if !ok {
			bucket = make(map[string]struct{})
			ix.postings[token] = bucket
		}
		bucket[doc.ID] = struct{}{}
	}
}

func (ix *index) drop(id string) {
	ent, ok := ix.documents[id]
	if !ok {
		return
	}
	ix.unlink(&ent.doc)
	delete(ix.documents, id)
}

// unlink removes doc.ID from every bucket its stored content produces and
// deletes buckets left empty.
func (ix *index) unlink(doc *domain.IndexedDocument) {
	for token := range tokenizer.DocumentTokens(doc) {
		bucket, ok := ix.postings[token]
		if !ok {
			continue
		}
		delete(bucket, doc.ID)
		if len(bucket) == 0 {
			delete(ix.postings, token)
		}
	}
}

func (ix *index) stats() engine.Stats {
	return engine.Stats{Documents: len(ix.documents), DistinctTokens: len(ix.postings)}
}
