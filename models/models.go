package models

import "time"

// PageRecord is the raw result of fetching a single page during a crawl.
// Records are immutable once produced; a failed fetch sets Error and leaves
// Content and Links empty.
type PageRecord struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Links       []string  `json:"links"`
	FetchedAt   time.Time `json:"fetched_at"`
	Error       string    `json:"error,omitempty"`
}

// Failed reports whether the page could not be fetched.
func (p PageRecord) Failed() bool { return p.Error != "" }

// ProcessedPage is a PageRecord after the enhancement and chunking pass.
// Pages whose fetch failed pass through with Processed left false.
type ProcessedPage struct {
	PageRecord
	OriginalContent string   `json:"original_content,omitempty"`
	ImprovedContent string   `json:"improved_content,omitempty"`
	Chunks          []string `json:"chunks,omitempty"`
	Processed       bool     `json:"processed"`
}

// ChunkRecord is the unit of retrieval: one bounded, overlapping substring of
// a page's processed text together with its provenance. ChunkIndex is the
// 0-based position among the chunks of the same page and is always strictly
// less than TotalChunks.
type ChunkRecord struct {
	Content         string `json:"content"`
	SourceURL       string `json:"source_url"`
	PageTitle       string `json:"page_title"`
	PageDescription string `json:"page_description"`
	ChunkIndex      int    `json:"chunk_index"`
	TotalChunks     int    `json:"total_chunks"`
}

// ChunkMetadata is the provenance stored alongside a chunk in the vector
// collection and echoed back on search hits.
type ChunkMetadata struct {
	SourceURL       string `json:"source_url"`
	PageTitle       string `json:"page_title"`
	PageDescription string `json:"page_description"`
	ChunkIndex      int    `json:"chunk_index"`
	TotalChunks     int    `json:"total_chunks"`
}

// SearchResult is a single knowledge-base hit. Distance is a cosine distance
// in [0, 2]; lower means more similar. Results are ordered ascending.
type SearchResult struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}

// AnswerSource tags which path produced a reply.
type AnswerSource string

const (
	SourceRAG     AnswerSource = "rag"
	SourceGeneral AnswerSource = "general"
)

// Turn is one query/response exchange kept in a session's context window.
type Turn struct {
	Query    string       `json:"query"`
	Response string       `json:"response"`
	Source   AnswerSource `json:"source"`
}

// StoreInfo describes the state of the knowledge collection.
type StoreInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Path  string `json:"path"`
}
