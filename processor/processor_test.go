package processor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"iitubot/config"
	"iitubot/models"
)

// fakeProvider records prompts and returns a scripted response.
type fakeProvider struct {
	response string
	err      error

	calls      int
	lastPrompt string
}

func (f *fakeProvider) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeProvider) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not implemented")
}

func TestAIEnhancerRewritesText(t *testing.T) {
	p := &fakeProvider{response: "  cleaned up text  "}
	e := NewAIEnhancer(p, "IITU", 2000, nil)

	got := e.Enhance(context.Background(), "raw page text", "Admissions")
	if got != "cleaned up text" {
		t.Errorf("Enhance = %q", got)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1", p.calls)
	}
	if !strings.Contains(p.lastPrompt, "Admissions") || !strings.Contains(p.lastPrompt, "raw page text") {
		t.Errorf("prompt missing title or text: %q", p.lastPrompt)
	}
}

func TestAIEnhancerTruncatesBeforeCall(t *testing.T) {
	head := strings.Repeat("a", 100)
	tail := strings.Repeat("z", 100)
	text := head + strings.Repeat("b", 2000) + tail

	p := &fakeProvider{response: "ok"}
	e := NewAIEnhancer(p, "IITU", 100, nil)
	e.Enhance(context.Background(), text, "t")

	if !strings.Contains(p.lastPrompt, head) {
		t.Error("prompt should contain the leading portion of the text")
	}
	if strings.Contains(p.lastPrompt, tail) {
		t.Error("prompt should not contain text beyond the truncation bound")
	}
}

func TestAIEnhancerFailureKeepsRawText(t *testing.T) {
	p := &fakeProvider{err: errors.New("rate limited")}
	e := NewAIEnhancer(p, "IITU", 2000, nil)

	if got := e.Enhance(context.Background(), "original", "t"); got != "original" {
		t.Errorf("failed enhancement should keep raw text, got %q", got)
	}
}

func TestAIEnhancerEmptyResponseKeepsRawText(t *testing.T) {
	p := &fakeProvider{response: "   "}
	e := NewAIEnhancer(p, "IITU", 2000, nil)

	if got := e.Enhance(context.Background(), "original", "t"); got != "original" {
		t.Errorf("blank enhancement should keep raw text, got %q", got)
	}
}

func TestAIEnhancerSkipsEmptyInput(t *testing.T) {
	p := &fakeProvider{response: "ok"}
	e := NewAIEnhancer(p, "IITU", 2000, nil)

	if got := e.Enhance(context.Background(), "   ", "t"); got != "   " {
		t.Errorf("empty input should pass through, got %q", got)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times for empty input", p.calls)
	}
}

func TestProcessPageFailedPagePassesThrough(t *testing.T) {
	p := &fakeProvider{response: "should not be used"}
	proc := New(config.ProcessorConfig{ChunkSize: 100, ChunkOverlap: 10},
		NewAIEnhancer(p, "IITU", 2000, nil), nil)

	page := models.PageRecord{URL: "https://iitu.edu.kz/broken", Error: "unexpected status 404"}
	got := proc.ProcessPage(context.Background(), page)

	if got.Processed {
		t.Error("failed page should not be marked processed")
	}
	if len(got.Chunks) != 0 {
		t.Errorf("failed page produced %d chunks", len(got.Chunks))
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times for failed page", p.calls)
	}
}

func TestProcessPageChunksEnhancedText(t *testing.T) {
	p := &fakeProvider{response: strings.Repeat("improved sentence. ", 20)}
	proc := New(config.ProcessorConfig{ChunkSize: 100, ChunkOverlap: 20},
		NewAIEnhancer(p, "IITU", 2000, nil), nil)

	page := models.PageRecord{
		URL:     "https://iitu.edu.kz/about",
		Title:   "About",
		Content: "raw content",
	}
	got := proc.ProcessPage(context.Background(), page)

	if !got.Processed {
		t.Fatal("page should be marked processed")
	}
	if got.OriginalContent != "raw content" {
		t.Errorf("OriginalContent = %q", got.OriginalContent)
	}
	if !strings.Contains(got.ImprovedContent, "improved sentence") {
		t.Errorf("ImprovedContent = %q", got.ImprovedContent)
	}
	if len(got.Chunks) < 2 {
		t.Errorf("expected multiple chunks, got %d", len(got.Chunks))
	}
	for i, c := range got.Chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d has %d chars", i, len(c))
		}
	}
}

func TestExtractChunks(t *testing.T) {
	processed := []models.ProcessedPage{
		{
			PageRecord: models.PageRecord{URL: "https://iitu.edu.kz/a", Title: "A", Description: "desc a"},
			Chunks:     []string{"a0", "a1", "a2"},
			Processed:  true,
		},
		{
			PageRecord: models.PageRecord{URL: "https://iitu.edu.kz/broken", Error: "unexpected status 500"},
		},
		{
			PageRecord: models.PageRecord{URL: "https://iitu.edu.kz/empty"},
			Processed:  true,
		},
		{
			PageRecord: models.PageRecord{URL: "https://iitu.edu.kz/b", Title: "B"},
			Chunks:     []string{"b0"},
			Processed:  true,
		},
	}

	chunks := ExtractChunks(processed)
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	for i, want := range []struct {
		content string
		url     string
		index   int
		total   int
	}{
		{"a0", "https://iitu.edu.kz/a", 0, 3},
		{"a1", "https://iitu.edu.kz/a", 1, 3},
		{"a2", "https://iitu.edu.kz/a", 2, 3},
		{"b0", "https://iitu.edu.kz/b", 0, 1},
	} {
		c := chunks[i]
		if c.Content != want.content || c.SourceURL != want.url ||
			c.ChunkIndex != want.index || c.TotalChunks != want.total {
			t.Errorf("chunk %d = %+v, want %+v", i, c, want)
		}
	}
	if chunks[0].PageTitle != "A" || chunks[0].PageDescription != "desc a" {
		t.Errorf("chunk 0 provenance = %+v", chunks[0])
	}
}
