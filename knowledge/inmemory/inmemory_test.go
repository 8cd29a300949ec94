package inmemory

import (
	"testing"

	"iitubot/models"
)

func TestQueryOrdersByDistance(t *testing.T) {
	c := New()
	err := c.Add(
		[]string{"far", "near", "mid"},
		[][]float32{{0, 1}, {1, 0}, {1, 1}},
		[]string{"far doc", "near doc", "mid doc"},
		make([]models.ChunkMetadata, 3),
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	hits, err := c.Query([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits", len(hits))
	}
	if hits[0].ID != "near" || hits[1].ID != "mid" || hits[2].ID != "far" {
		t.Errorf("order = %s, %s, %s", hits[0].ID, hits[1].ID, hits[2].ID)
	}
	if hits[0].Distance > 1e-9 {
		t.Errorf("identical vector distance = %f", hits[0].Distance)
	}
}

func TestQueryClampsK(t *testing.T) {
	c := New()
	if err := c.Add([]string{"a"}, [][]float32{{1}}, []string{"doc"}, make([]models.ChunkMetadata, 1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	hits, err := c.Query([]float32{1}, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("got %d hits, want 1", len(hits))
	}
}

func TestAddRejectsMismatchedLengths(t *testing.T) {
	c := New()
	if err := c.Add([]string{"a", "b"}, [][]float32{{1}}, []string{"doc"}, nil); err == nil {
		t.Error("expected error for mismatched slice lengths")
	}
}

func TestResetClears(t *testing.T) {
	c := New()
	if err := c.Add([]string{"a"}, [][]float32{{1}}, []string{"doc"}, make([]models.ChunkMetadata, 1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n, _ := c.Count(); n != 0 {
		t.Errorf("count after reset = %d", n)
	}
}

func TestMismatchedVectorIsMaximallyDistant(t *testing.T) {
	c := New()
	if err := c.Add([]string{"a"}, [][]float32{{1, 0, 0}}, []string{"doc"}, make([]models.ChunkMetadata, 1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	hits, err := c.Query([]float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 || hits[0].Distance != 2 {
		t.Errorf("hits = %+v, want distance 2", hits)
	}
}
