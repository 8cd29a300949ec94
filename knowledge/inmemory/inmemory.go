// Package inmemory provides a brute-force in-memory vector collection.
// It holds every embedding in a slice and scans linearly on query, which
// is plenty for a few thousand chunks and keeps tests free of disk state.
package inmemory

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"iitubot/knowledge"
	"iitubot/models"
)

type entry struct {
	id        string
	embedding []float32
	document  string
	metadata  models.ChunkMetadata
}

// Collection is an in-memory knowledge.Collection. Safe for concurrent use.
type Collection struct {
	mu      sync.RWMutex
	entries []entry
}

// New returns an empty collection.
func New() *Collection { return &Collection{} }

// Add appends the given chunks. The parallel slices must be equal length.
func (c *Collection) Add(ids []string, embeddings [][]float32, documents []string, metadatas []models.ChunkMetadata) error {
	if len(ids) != len(embeddings) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("mismatched lengths: %d ids, %d embeddings, %d documents, %d metadatas",
			len(ids), len(embeddings), len(documents), len(metadatas))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range ids {
		c.entries = append(c.entries, entry{
			id:        ids[i],
			embedding: embeddings[i],
			document:  documents[i],
			metadata:  metadatas[i],
		})
	}
	return nil
}

// Query scans every stored embedding and returns the k nearest by cosine
// distance, ascending.
func (c *Collection) Query(embedding []float32, k int) ([]knowledge.Hit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 || k <= 0 {
		return nil, nil
	}

	hits := make([]knowledge.Hit, 0, len(c.entries))
	for _, e := range c.entries {
		hits = append(hits, knowledge.Hit{
			ID:       e.id,
			Document: e.document,
			Metadata: e.metadata,
			Distance: cosineDistance(embedding, e.embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Reset drops all entries.
func (c *Collection) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	return nil
}

// Count returns the number of stored chunks.
func (c *Collection) Count() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// Close is a no-op for the in-memory backend.
func (c *Collection) Close() error { return nil }

// cosineDistance is 1 minus the cosine similarity of a and b, in [0, 2].
// Mismatched or zero-magnitude vectors count as maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
