// Package sqlitevec persists the knowledge collection in a SQLite file,
// using the sqlite-vec extension's vec_distance_cosine function for
// nearest-neighbour queries.
package sqlitevec

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"iitubot/knowledge"
	"iitubot/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id               TEXT PRIMARY KEY,
	document         TEXT NOT NULL,
	source_url       TEXT NOT NULL,
	page_title       TEXT,
	page_description TEXT,
	chunk_index      INTEGER NOT NULL,
	total_chunks     INTEGER NOT NULL,
	embedding        BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_source_url ON chunks(source_url);
`

// Collection is a file-backed knowledge.Collection.
type Collection struct {
	db   *sql.DB
	path string
	dim  int
}

// Open creates or opens the collection database at path. dim is the
// expected embedding width; mismatched vectors are rejected on insert.
func Open(path string, dim int) (*Collection, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Collection{db: db, path: path, dim: dim}, nil
}

// Add inserts the given chunks in one transaction.
func (c *Collection) Add(ids []string, embeddings [][]float32, documents []string, metadatas []models.ChunkMetadata) error {
	if len(ids) != len(embeddings) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("mismatched lengths: %d ids, %d embeddings, %d documents, %d metadatas",
			len(ids), len(embeddings), len(documents), len(metadatas))
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO chunks
		(id, document, source_url, page_title, page_description, chunk_index, total_chunks, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range ids {
		if c.dim > 0 && len(embeddings[i]) != c.dim {
			return fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(embeddings[i]), c.dim)
		}
		m := metadatas[i]
		if _, err := stmt.Exec(ids[i], documents[i], m.SourceURL, m.PageTitle, m.PageDescription,
			m.ChunkIndex, m.TotalChunks, encodeEmbedding(embeddings[i])); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", ids[i], err)
		}
	}
	return tx.Commit()
}

// Query returns the k nearest chunks by cosine distance, ascending.
func (c *Collection) Query(embedding []float32, k int) ([]knowledge.Hit, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := c.db.Query(`SELECT
			id, document, source_url, page_title, page_description, chunk_index, total_chunks,
			vec_distance_cosine(embedding, ?) AS distance
		FROM chunks
		ORDER BY distance ASC
		LIMIT ?`, encodeEmbedding(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []knowledge.Hit
	for rows.Next() {
		var h knowledge.Hit
		if err := rows.Scan(&h.ID, &h.Document, &h.Metadata.SourceURL, &h.Metadata.PageTitle,
			&h.Metadata.PageDescription, &h.Metadata.ChunkIndex, &h.Metadata.TotalChunks, &h.Distance); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}
	return hits, nil
}

// Reset drops all stored chunks.
func (c *Collection) Reset() error {
	if _, err := c.db.Exec(`DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (c *Collection) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (c *Collection) Close() error { return c.db.Close() }

// encodeEmbedding serialises a vector as the little-endian float32 blob
// sqlite-vec expects.
func encodeEmbedding(v []float32) []byte {
	var buf bytes.Buffer
	buf.Grow(len(v) * 4)
	for _, f := range v {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
		buf.Write(b[:])
	}
	return buf.Bytes()
}
