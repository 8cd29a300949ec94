// Package app wires the assistant together and implements the lifecycle
// commands: building the knowledge base, refreshing it, reporting status
// and serving the bot.
package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"iitubot/artifacts"
	"iitubot/bot"
	"iitubot/config"
	"iitubot/crawler"
	"iitubot/knowledge"
	knowmem "iitubot/knowledge/inmemory"
	"iitubot/knowledge/sqlitevec"
	"iitubot/models"
	"iitubot/processor"
	"iitubot/provider"
	"iitubot/server"
	"iitubot/session"
	sessmem "iitubot/session/inmemory"
	redissession "iitubot/session/redis"
)

// App owns the long-lived components shared by the CLI commands.
type App struct {
	cfg       *config.Config
	provider  provider.Provider
	knowledge *knowledge.Store
	sessions  session.Store
	artifacts *artifacts.Store
	logger    *log.Logger
}

// New builds the application from configuration, opening the knowledge
// backend and the session store.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := log.New(log.Writer(), "[APP] ", cfg.General.LogFlags())

	p, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}

	var backend knowledge.Collection
	switch cfg.Knowledge.Backend {
	case "inmemory":
		backend = knowmem.New()
	case "sqlite", "":
		backend, err = sqlitevec.Open(cfg.Knowledge.Path, cfg.Knowledge.EmbeddingDim)
		if err != nil {
			return nil, fmt.Errorf("opening knowledge store: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported knowledge backend: %s", cfg.Knowledge.Backend)
	}

	var sessions session.Store
	switch cfg.Session.Store {
	case "redis":
		sessions, err = redissession.New(ctx, cfg.Session.Redis, cfg.Session.TTL)
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("connecting session store: %w", err)
		}
	case "inmemory", "":
		sessions = sessmem.New(cfg.Session.MaxSessions)
	default:
		backend.Close()
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Session.Store)
	}

	return &App{
		cfg:       cfg,
		provider:  p,
		knowledge: knowledge.NewStore(p, backend, cfg.Knowledge, componentLogger(cfg, "[KNOWLEDGE] ")),
		sessions:  sessions,
		artifacts: artifacts.New(cfg.Storage),
		logger:    logger,
	}, nil
}

// componentLogger builds a prefixed logger honouring the general debug
// settings.
func componentLogger(cfg *config.Config, prefix string) *log.Logger {
	return log.New(log.Writer(), prefix, cfg.General.LogFlags())
}

// Close releases the knowledge backend.
func (a *App) Close() error { return a.knowledge.Close() }

// Setup builds the knowledge base, reusing cached artifacts where they
// exist: a processed cache skips crawling and enhancement entirely, a raw
// cache skips just the crawl.
func (a *App) Setup(ctx context.Context) error {
	processed, ok, err := a.artifacts.LoadProcessed()
	if err != nil {
		return err
	}
	if ok {
		a.logger.Printf("using cached processed pages from %s", a.artifacts.ProcessedPath())
	} else {
		pages, err := a.rawPages(ctx)
		if err != nil {
			return err
		}

		var enhancer processor.Enhancer = processor.NoopEnhancer{}
		if a.cfg.Processor.EnhanceEnabled {
			enhancer = processor.NewAIEnhancer(a.provider, a.cfg.Bot.UniversityName, a.cfg.Processor.EnhanceMaxChars,
				componentLogger(a.cfg, "[ENHANCER] "))
		}
		proc := processor.New(a.cfg.Processor, enhancer, componentLogger(a.cfg, "[PROCESSOR] "))

		processed = proc.ProcessAll(ctx, pages)
		if err := a.artifacts.SaveProcessed(processed); err != nil {
			return err
		}
	}

	chunks := processor.ExtractChunks(processed)
	a.logger.Printf("rebuilding knowledge base from %d chunks", len(chunks))
	if err := a.knowledge.Rebuild(ctx, chunks); err != nil {
		return fmt.Errorf("rebuilding knowledge base: %w", err)
	}

	info, err := a.knowledge.Info()
	if err != nil {
		return err
	}
	a.logger.Printf("knowledge base ready: %d chunks in %s", info.Count, info.Name)
	return nil
}

// rawPages loads the cached crawl or runs a fresh one.
func (a *App) rawPages(ctx context.Context) ([]models.PageRecord, error) {
	pages, ok, err := a.artifacts.LoadRaw()
	if err != nil {
		return nil, err
	}
	if ok {
		a.logger.Printf("using cached crawl from %s", a.artifacts.RawPath())
		return pages, nil
	}

	c := crawler.New(a.cfg.Crawler, componentLogger(a.cfg, "[CRAWLER] "))
	pages, err = c.Crawl(ctx, a.cfg.Crawler.BaseURL, a.cfg.Crawler.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("crawling %s: %w", a.cfg.Crawler.BaseURL, err)
	}
	if err := a.artifacts.SaveRaw(pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// Update discards cached artifacts and rebuilds everything from a fresh
// crawl.
func (a *App) Update(ctx context.Context) error {
	if err := a.artifacts.Clear(); err != nil {
		return err
	}
	return a.Setup(ctx)
}

// Status describes the knowledge base and cached artifacts.
func (a *App) Status(ctx context.Context) (string, error) {
	info, err := a.knowledge.Info()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "collection: %s\n", info.Name)
	fmt.Fprintf(&b, "chunks:     %d\n", info.Count)
	if info.Path != "" {
		fmt.Fprintf(&b, "path:       %s\n", info.Path)
	}

	_, rawOK, _ := a.artifacts.LoadRaw()
	_, procOK, _ := a.artifacts.LoadProcessed()
	fmt.Fprintf(&b, "raw cache:       %s (%v)\n", a.artifacts.RawPath(), rawOK)
	fmt.Fprintf(&b, "processed cache: %s (%v)\n", a.artifacts.ProcessedPath(), procOK)

	if n, err := a.sessions.Len(ctx); err == nil {
		fmt.Fprintf(&b, "sessions:   %d\n", n)
	}
	return b.String(), nil
}

// RunBot serves the assistant over HTTP until the context is cancelled.
func (a *App) RunBot(ctx context.Context) error {
	b := bot.New(a.provider, a.knowledge, a.sessions, a.cfg.Bot, componentLogger(a.cfg, "[BOT] "))
	srv := server.New(a.cfg.Server, b, a.knowledge, componentLogger(a.cfg, "[HTTP] "))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}
