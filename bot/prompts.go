package bot

import (
	"fmt"
	"strings"

	"iitubot/models"
	"iitubot/session"
)

const ragPrompt = `You are the official assistant of %s. Answer the student's question using the site excerpts below.

Site excerpts:
%s
%s Question: %s

Rules:
1. Answer only from the excerpts above; do not invent facts
2. Mention the source page when it helps the student find more detail
3. If the excerpts do not fully answer the question, say so and point to %s
4. Answer in the language of the question
5. Be concise and specific`

const generalPrompt = `You are the official assistant of %s. The knowledge base has no page matching this question, so answer from general knowledge about universities and study life.

%s Question: %s

Rules:
1. Make clear you are answering generally, not from the university site
2. For anything official (deadlines, fees, documents) direct the student to %s
3. Answer in the language of the question
4. Be concise`

const refinePrompt = `A student was not satisfied with the answers to their question. Rephrase the question so a search over the %s website finds better material.

Recent conversation:
%s
Original question: %s

Return only the rephrased question, nothing else.`

// Fixed replies that never go through the model.
const (
	emptyMessageReply = "Please type a question and I will try to help."

	nothingToRefineReply = "There is no previous question to retry. Ask me something first."

	answerFailureReply = "Sorry, I could not prepare an answer right now. Please try again in a moment."
)

func generalFailureReply(site string) string {
	return fmt.Sprintf("Sorry, I could not prepare an answer right now. Please try again later or check the official site: %s", site)
}

func startMessage(university, site string) string {
	return fmt.Sprintf("Hello! I am the %s assistant. Ask me about admissions, programmes, tuition or campus life. Official site: %s\n\nCommands:\n/help - what I can do\n/return - rephrase my last answer", university, site)
}

func helpMessage(university, site string) string {
	return fmt.Sprintf("I answer questions about %s using the content of %s. If an answer misses the mark, send /return and I will rephrase the question and try again. /start resets our conversation.", university, site)
}

func refineExhaustedMessage(site string) string {
	return fmt.Sprintf("I have already retried this question several times. Try wording it differently, or check %s directly.", site)
}

// historyBlock renders recent turns for inclusion in a prompt. Empty when
// the session has no history.
func historyBlock(sess session.Session, n int) string {
	turns := sess.RecentTurns(n)
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	for _, t := range turns {
		fmt.Fprintf(&b, "Student: %s\nAssistant: %s\n", t.Query, t.Response)
	}
	b.WriteString("\n")
	return b.String()
}

// contextBlock renders search hits with their provenance, stopping once
// maxChars is reached so the prompt stays within the model's budget.
func contextBlock(results []models.SearchResult, maxChars int) string {
	if maxChars <= 0 {
		maxChars = 6000
	}
	var b strings.Builder
	for _, r := range results {
		entry := fmt.Sprintf("[%s] (%s)\n%s\n\n", r.Metadata.PageTitle, r.Metadata.SourceURL, r.Content)
		if b.Len() > 0 && b.Len()+len(entry) > maxChars {
			break
		}
		b.WriteString(entry)
	}
	return strings.TrimRight(b.String(), "\n")
}
