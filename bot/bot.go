// Package bot implements the answering protocol: relevance-gated retrieval
// over the knowledge store, a general-knowledge fallback, and a bounded
// /return refinement loop per user session.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"iitubot/config"
	"iitubot/metrics"
	"iitubot/models"
	"iitubot/provider"
	"iitubot/session"
)

// Knowledge is the retrieval surface the bot needs from the vector store.
type Knowledge interface {
	Search(ctx context.Context, query string, k int) []models.SearchResult
	IsRelevant(ctx context.Context, query string) bool
}

// Bot answers user messages. Safe for concurrent use as long as the
// session store is.
type Bot struct {
	provider  provider.Provider
	knowledge Knowledge
	sessions  session.Store
	cfg       config.BotConfig
	logger    *log.Logger
}

// New wires the bot. MaxRetries bounds /return refinements per query;
// ContextWindow bounds the per-session history.
func New(p provider.Provider, k Knowledge, s session.Store, cfg config.BotConfig, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.New(log.Writer(), "[BOT] ", log.LstdFlags)
	}
	return &Bot{provider: p, knowledge: k, sessions: s, cfg: cfg, logger: logger}
}

// HandleStart resets the user's session and returns the greeting.
func (b *Bot) HandleStart(ctx context.Context, userID string) (string, error) {
	if err := b.sessions.Save(ctx, session.Session{UserID: userID}); err != nil {
		return "", fmt.Errorf("resetting session: %w", err)
	}
	return startMessage(b.cfg.UniversityName, b.cfg.OfficialSite), nil
}

// HandleHelp returns the usage text. It does not touch session state.
func (b *Bot) HandleHelp() string {
	return helpMessage(b.cfg.UniversityName, b.cfg.OfficialSite)
}

// HandleMessage answers a free-text question. A new question resets the
// refinement budget and becomes the session's last query.
func (b *Bot) HandleMessage(ctx context.Context, userID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return emptyMessageReply, nil
	}

	sess, err := b.sessions.Ensure(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}

	sess.RetryCount = 0
	sess.LastQuery = text

	reply, source := b.answer(ctx, sess, text)
	sess.PushTurn(models.Turn{Query: text, Response: reply, Source: source}, b.cfg.ContextWindow)

	if err := b.sessions.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}
	return reply, nil
}

// HandleReturn retries the session's last query with a rephrased search.
// The budget is MaxRetries refinements per query; past that the user is
// told to reword, without spending a model call. Rejections leave session
// state untouched; in particular an unknown user gains no session.
func (b *Bot) HandleReturn(ctx context.Context, userID string) (string, error) {
	sess, ok, err := b.sessions.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}

	if !ok || strings.TrimSpace(sess.LastQuery) == "" {
		return nothingToRefineReply, nil
	}
	if sess.RetryCount >= b.cfg.MaxRetries {
		return refineExhaustedMessage(b.cfg.OfficialSite), nil
	}

	sess.RetryCount++
	metrics.Refinements.Inc()

	refined := b.refineQuery(ctx, sess)
	reply, source := b.answer(ctx, sess, refined)
	sess.PushTurn(models.Turn{Query: refined, Response: reply, Source: source}, b.cfg.ContextWindow)

	if err := b.sessions.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}
	// The acknowledgement wraps the sent reply only; the stored turn keeps
	// the bare response.
	return fmt.Sprintf("Rephrasing attempt %d:\n%s", sess.RetryCount, reply), nil
}

// answer runs the relevance gate and produces a reply. Both paths degrade
// to a fixed apology when the model call fails, never to an error.
func (b *Bot) answer(ctx context.Context, sess session.Session, query string) (string, models.AnswerSource) {
	results := b.knowledge.Search(ctx, query, 0)

	if len(results) > 0 && b.knowledge.IsRelevant(ctx, query) {
		prompt := fmt.Sprintf(ragPrompt,
			b.cfg.UniversityName,
			contextBlock(results, b.cfg.MaxContextChars),
			historyBlock(sess, b.cfg.ContextWindow),
			query,
			b.cfg.OfficialSite)
		reply, err := b.provider.Generate(ctx, prompt)
		if err != nil || strings.TrimSpace(reply) == "" {
			b.logger.Printf("rag answer failed for %q: %v", query, err)
			return answerFailureReply, models.SourceRAG
		}
		metrics.Answers.WithLabelValues(string(models.SourceRAG)).Inc()
		return strings.TrimSpace(reply), models.SourceRAG
	}

	prompt := fmt.Sprintf(generalPrompt,
		b.cfg.UniversityName,
		historyBlock(sess, b.cfg.ContextWindow),
		query,
		b.cfg.OfficialSite)
	reply, err := b.provider.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(reply) == "" {
		b.logger.Printf("general answer failed for %q: %v", query, err)
		return generalFailureReply(b.cfg.OfficialSite), models.SourceGeneral
	}
	metrics.Answers.WithLabelValues(string(models.SourceGeneral)).Inc()
	return strings.TrimSpace(reply), models.SourceGeneral
}

// refineQuery asks the model to rephrase the last query using recent
// history. Any failure falls back to the original wording.
func (b *Bot) refineQuery(ctx context.Context, sess session.Session) string {
	var history strings.Builder
	for _, t := range sess.RecentTurns(3) {
		fmt.Fprintf(&history, "Student: %s\nAssistant: %s\n", t.Query, t.Response)
	}

	prompt := fmt.Sprintf(refinePrompt, b.cfg.UniversityName, history.String(), sess.LastQuery)
	refined, err := b.provider.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(refined) == "" {
		b.logger.Printf("refinement failed, reusing original query: %v", err)
		return sess.LastQuery
	}
	return strings.TrimSpace(refined)
}
