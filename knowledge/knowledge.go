// Package knowledge stores page chunks as embeddings and answers
// similarity queries over them. The backing collection is pluggable: a
// sqlite-vec file for persistence or an in-memory index for tests.
package knowledge

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"iitubot/config"
	"iitubot/metrics"
	"iitubot/models"
	"iitubot/provider"
)

// Hit is a single nearest-neighbour match from a collection backend.
type Hit struct {
	ID       string
	Document string
	Metadata models.ChunkMetadata
	Distance float64
}

// Collection is the storage backend for embedded chunks. Query returns up
// to k hits ordered by ascending cosine distance.
type Collection interface {
	Add(ids []string, embeddings [][]float32, documents []string, metadatas []models.ChunkMetadata) error
	Query(embedding []float32, k int) ([]Hit, error)
	Reset() error
	Count() (int, error)
	Close() error
}

// Store embeds chunks through the provider and persists them in a
// collection backend.
type Store struct {
	provider provider.Provider
	backend  Collection
	cfg      config.KnowledgeConfig
	logger   *log.Logger
}

// NewStore wraps a collection backend with embedding and relevance logic.
func NewStore(p provider.Provider, backend Collection, cfg config.KnowledgeConfig, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.Writer(), "[KNOWLEDGE] ", log.LstdFlags)
	}
	return &Store{provider: p, backend: backend, cfg: cfg, logger: logger}
}

// Rebuild replaces the collection contents with the given chunks. Chunks
// are embedded and inserted in batches; whitespace-only chunks are skipped.
func (s *Store) Rebuild(ctx context.Context, chunks []models.ChunkRecord) error {
	if err := s.backend.Reset(); err != nil {
		return fmt.Errorf("resetting collection: %w", err)
	}

	kept := make([]models.ChunkRecord, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		s.logger.Printf("rebuild: no chunks to index")
		return nil
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	for start := 0; start < len(kept); start += batchSize {
		end := start + batchSize
		if end > len(kept) {
			end = len(kept)
		}
		batch := kept[start:end]

		docs := make([]string, len(batch))
		ids := make([]string, len(batch))
		metas := make([]models.ChunkMetadata, len(batch))
		for i, c := range batch {
			docs[i] = c.Content
			ids[i] = uuid.NewString()
			metas[i] = models.ChunkMetadata{
				SourceURL:       c.SourceURL,
				PageTitle:       c.PageTitle,
				PageDescription: c.PageDescription,
				ChunkIndex:      c.ChunkIndex,
				TotalChunks:     c.TotalChunks,
			}
		}

		embeddings, err := s.provider.CreateEmbedding(ctx, docs)
		if err != nil {
			return fmt.Errorf("embedding batch %d-%d: %w", start, end, err)
		}
		if len(embeddings) != len(docs) {
			return fmt.Errorf("embedding batch %d-%d: got %d vectors for %d documents", start, end, len(embeddings), len(docs))
		}

		if err := s.backend.Add(ids, embeddings, docs, metas); err != nil {
			return fmt.Errorf("inserting batch %d-%d: %w", start, end, err)
		}
		s.logger.Printf("indexed %d/%d chunks", end, len(kept))
	}
	return nil
}

// Search embeds the query and returns up to k matches ordered by ascending
// distance. Any failure degrades to an empty result so the caller can fall
// back to a general answer.
func (s *Store) Search(ctx context.Context, query string, k int) []models.SearchResult {
	if k <= 0 {
		k = s.cfg.SearchK
	}
	if k <= 0 {
		k = 5
	}

	embeddings, err := s.provider.CreateEmbedding(ctx, []string{query})
	if err != nil || len(embeddings) == 0 {
		metrics.SearchFailures.Inc()
		s.logger.Printf("search: embedding query failed: %v", err)
		return nil
	}

	hits, err := s.backend.Query(embeddings[0], k)
	if err != nil {
		metrics.SearchFailures.Inc()
		s.logger.Printf("search: collection query failed: %v", err)
		return nil
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, models.SearchResult{
			Content:  h.Document,
			Metadata: h.Metadata,
			Distance: h.Distance,
		})
	}
	return results
}

// IsRelevant reports whether the closest stored chunk clears the relevance
// threshold. Similarity is 1 minus cosine distance, so a threshold of 0.5
// admits matches with distance below 0.5.
func (s *Store) IsRelevant(ctx context.Context, query string) bool {
	results := s.Search(ctx, query, 1)
	if len(results) == 0 {
		return false
	}
	similarity := 1 - results[0].Distance
	return similarity >= s.cfg.RelevanceThreshold
}

// Info reports the collection name, chunk count and storage path.
func (s *Store) Info() (models.StoreInfo, error) {
	count, err := s.backend.Count()
	if err != nil {
		return models.StoreInfo{}, fmt.Errorf("counting chunks: %w", err)
	}
	return models.StoreInfo{
		Name:  s.cfg.Collection,
		Count: count,
		Path:  s.cfg.Path,
	}, nil
}

// Close releases the backend.
func (s *Store) Close() error { return s.backend.Close() }
