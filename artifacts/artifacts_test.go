package artifacts

import (
	"testing"
	"time"

	"iitubot/config"
	"iitubot/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(config.StorageConfig{
		DataDir:       t.TempDir(),
		RawFile:       "scraped_data.json",
		ProcessedFile: "processed_data.json",
	})
}

func TestRawRoundTrip(t *testing.T) {
	s := testStore(t)

	pages := []models.PageRecord{
		{URL: "https://iitu.edu.kz", Title: "Home", Content: "welcome", FetchedAt: time.Now().UTC().Truncate(time.Second)},
		{URL: "https://iitu.edu.kz/broken", Error: "unexpected status 404"},
	}
	if err := s.SaveRaw(pages); err != nil {
		t.Fatalf("SaveRaw: %v", err)
	}

	got, ok, err := s.LoadRaw()
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	if !ok {
		t.Fatal("artifact should exist after save")
	}
	if len(got) != 2 || got[0].URL != pages[0].URL || got[1].Error != pages[1].Error {
		t.Errorf("round trip = %+v", got)
	}
}

func TestProcessedRoundTrip(t *testing.T) {
	s := testStore(t)

	pages := []models.ProcessedPage{{
		PageRecord:      models.PageRecord{URL: "https://iitu.edu.kz/about", Title: "About"},
		ImprovedContent: "cleaned",
		Chunks:          []string{"c1", "c2"},
		Processed:       true,
	}}
	if err := s.SaveProcessed(pages); err != nil {
		t.Fatalf("SaveProcessed: %v", err)
	}

	got, ok, err := s.LoadProcessed()
	if err != nil {
		t.Fatalf("LoadProcessed: %v", err)
	}
	if !ok || len(got) != 1 || len(got[0].Chunks) != 2 || !got[0].Processed {
		t.Errorf("round trip = %+v", got)
	}
}

func TestMissingArtifactIsNotAnError(t *testing.T) {
	s := testStore(t)

	pages, ok, err := s.LoadRaw()
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	if ok || pages != nil {
		t.Errorf("missing artifact = (%v, %v)", pages, ok)
	}
}

func TestClearRemovesArtifacts(t *testing.T) {
	s := testStore(t)

	if err := s.SaveRaw([]models.PageRecord{{URL: "u"}}); err != nil {
		t.Fatalf("SaveRaw: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.LoadRaw(); ok {
		t.Error("artifact survived Clear")
	}
	// Clearing again is fine.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}
