// Package processor turns raw page records into retrieval-ready chunk
// records: an optional AI cleanup pass followed by recursive-separator
// chunking.
package processor

import (
	"context"
	"log"

	"iitubot/config"
	"iitubot/models"
)

// Processor runs the enhancement and chunking pipeline over crawled pages.
type Processor struct {
	enhancer     Enhancer
	chunkSize    int
	chunkOverlap int
	logger       *log.Logger
}

// New builds a processor. The enhancer decides whether pages get an AI
// cleanup pass; pass NoopEnhancer to chunk raw text directly.
func New(cfg config.ProcessorConfig, enhancer Enhancer, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.New(log.Writer(), "[PROCESSOR] ", log.LstdFlags)
	}
	return &Processor{
		enhancer:     enhancer,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		logger:       logger,
	}
}

// ProcessPage enhances and chunks a single page. Pages whose fetch failed
// pass through untouched with Processed left false.
func (p *Processor) ProcessPage(ctx context.Context, page models.PageRecord) models.ProcessedPage {
	if page.Failed() {
		return models.ProcessedPage{PageRecord: page}
	}

	improved := p.enhancer.Enhance(ctx, page.Content, page.Title)
	chunks := Split(improved, p.chunkSize, p.chunkOverlap)

	return models.ProcessedPage{
		PageRecord:      page,
		OriginalContent: page.Content,
		ImprovedContent: improved,
		Chunks:          chunks,
		Processed:       true,
	}
}

// ProcessAll runs ProcessPage over every crawled page in order.
func (p *Processor) ProcessAll(ctx context.Context, pages []models.PageRecord) []models.ProcessedPage {
	p.logger.Printf("processing %d pages", len(pages))

	processed := make([]models.ProcessedPage, 0, len(pages))
	for i, page := range pages {
		processed = append(processed, p.ProcessPage(ctx, page))
		p.logger.Printf("processed page %d/%d: %s", i+1, len(pages), page.URL)
	}
	return processed
}

// ExtractChunks flattens processed pages into chunk records with provenance
// metadata. ChunkIndex is 0-based; TotalChunks equals the number of chunks
// produced from the same page.
func ExtractChunks(processed []models.ProcessedPage) []models.ChunkRecord {
	var out []models.ChunkRecord
	for _, page := range processed {
		if !page.Processed || len(page.Chunks) == 0 {
			continue
		}
		for i, chunk := range page.Chunks {
			out = append(out, models.ChunkRecord{
				Content:         chunk,
				SourceURL:       page.URL,
				PageTitle:       page.Title,
				PageDescription: page.Description,
				ChunkIndex:      i,
				TotalChunks:     len(page.Chunks),
			})
		}
	}
	return out
}
