package processor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"iitubot/metrics"
	"iitubot/provider"
)

const enhancePrompt = `You are a text-processing expert for the %s university website. Improve the following page text.

Page title: %s

Text: %s

Requirements:
1. Fix grammar and spelling mistakes
2. Improve readability and structure
3. Keep every piece of factual information
4. Remove navigation leftovers, advertising and other page noise
5. Keep the information in its original language

Return only the improved text without any extra commentary.`

// Enhancer cleans and restructures raw page text before chunking. It is a
// best-effort pass: implementations never fail, they return the input
// unchanged instead.
type Enhancer interface {
	Enhance(ctx context.Context, text, pageTitle string) string
}

// AIEnhancer rewrites page text through the completion provider.
type AIEnhancer struct {
	provider   provider.Provider
	university string
	maxChars   int
	logger     *log.Logger
}

// NewAIEnhancer builds an enhancer that truncates input to maxChars before
// submission, respecting provider payload limits.
func NewAIEnhancer(p provider.Provider, university string, maxChars int, logger *log.Logger) *AIEnhancer {
	if maxChars <= 0 {
		maxChars = 2000
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ENHANCER] ", log.LstdFlags)
	}
	return &AIEnhancer{provider: p, university: university, maxChars: maxChars, logger: logger}
}

// Enhance submits a bounded portion of text for cleanup. Any provider
// failure degrades to the original text.
func (e *AIEnhancer) Enhance(ctx context.Context, text, pageTitle string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	prompt := fmt.Sprintf(enhancePrompt, e.university, pageTitle, truncateRunes(text, e.maxChars))
	improved, err := e.provider.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(improved) == "" {
		metrics.EnhancerFallbacks.Inc()
		e.logger.Printf("enhancement failed for %q, keeping raw text: %v", pageTitle, err)
		return text
	}
	return strings.TrimSpace(improved)
}

// NoopEnhancer passes text through untouched; used when enhancement is
// disabled in configuration.
type NoopEnhancer struct{}

func (NoopEnhancer) Enhance(_ context.Context, text, _ string) string { return text }

// truncateRunes cuts s to at most n runes without splitting a character.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
