package vectorstore

import (
	"sort"
	"sync"
	"time"

	"github.com/opskit/errbook/internal/playbook"
)

// Index owns the derived TF-IDF cache over the playbook. The playbook
// is the source of truth; everything here can be recomputed from it.
// Persisted vectors are loaded lazily on the first query.
type Index struct {
	mu         sync.RWMutex
	store      *DiskStore
	vectorizer *Vectorizer
	entries    map[string]Entry
	state      State
	loaded     bool
}

// NewIndex returns an index backed by the given disk store.
func NewIndex(store *DiskStore) *Index {
	return &Index{
		store:      store,
		vectorizer: NewVectorizer(),
		entries:    make(map[string]Entry),
		state:      StateEmpty,
	}
}

// State reports the lifecycle state.
func (ix *Index) State() State {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.state
}

// Size returns the number of indexed patterns, loading persisted state
// if none is in memory yet.
func (ix *Index) Size() (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.ensureLoaded(); err != nil {
		return 0, err
	}
	return len(ix.entries), nil
}

// IDs returns the indexed pattern ids, sorted.
func (ix *Index) IDs() ([]string, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.ensureLoaded(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(ix.entries))
	for id := range ix.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Invalidate marks the index stale. Call it after the pattern set
// changes; queries still answer from the stale vectors until the next
// Rebuild.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.state == StateBuilt {
		ix.state = StateStale
	}
}

// Rebuild recomputes the vocabulary and every pattern vector from the
// full pattern set, then persists both, overwriting prior state. An
// empty pattern set builds an empty index; later queries simply return
// no matches.
func (ix *Index) Rebuild(patterns []*playbook.Pattern) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	documents := make([]string, len(patterns))
	for i, p := range patterns {
		documents[i] = p.Document()
	}

	vectorizer := NewVectorizer()
	vectorizer.Fit(documents)

	now := time.Now().UTC()
	entries := make(map[string]Entry, len(patterns))
	for i, p := range patterns {
		entries[p.ID] = Entry{
			ID:        p.ID,
			Text:      documents[i],
			Vector:    vectorizer.Vectorize(documents[i]),
			UpdatedAt: now,
		}
	}

	if err := ix.store.SaveVocabulary(vectorizer.Vocabulary()); err != nil {
		return err
	}
	if err := ix.store.SaveVectors(entries); err != nil {
		return err
	}

	ix.vectorizer = vectorizer
	ix.entries = entries
	ix.loaded = true
	ix.state = StateBuilt
	return nil
}

// Query vectorizes text against the current IDF table and ranks all
// stored vectors by cosine similarity. Zero scores are dropped; ties
// break by pattern id so results are deterministic. limit <= 0 means
// no truncation.
func (ix *Index) Query(text string, limit int) ([]QueryResult, error) {
	ix.mu.Lock()
	if err := ix.ensureLoaded(); err != nil {
		ix.mu.Unlock()
		return nil, err
	}
	queryVec := ix.vectorizer.Vectorize(text)
	entries := ix.entries
	ix.mu.Unlock()

	results := make([]QueryResult, 0, len(entries))
	for _, entry := range entries {
		score := Cosine(queryVec, entry.Vector)
		if score <= 0 {
			continue
		}
		results = append(results, QueryResult{
			PatternID: entry.ID,
			Score:     score,
			Text:      entry.Text,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PatternID < results[j].PatternID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ensureLoaded pulls persisted state into memory once. Callers must
// hold the write lock.
func (ix *Index) ensureLoaded() error {
	if ix.loaded {
		return nil
	}

	vocab, found, err := ix.store.LoadVocabulary()
	if err != nil {
		return err
	}
	entries, err := ix.store.LoadVectors()
	if err != nil {
		return err
	}

	if found {
		ix.vectorizer = NewVectorizerFromVocabulary(vocab)
		ix.entries = entries
		ix.state = StateBuilt
	}
	ix.loaded = true
	return nil
}
