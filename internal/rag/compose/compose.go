package compose

import (
	"fmt"
	"strings"

	"github.com/futig/ragchat-backend/internal/entity"
)

// DefaultInstructions is the instruction block wrapped around retrieved
// context unless the caller supplies its own.
const DefaultInstructions = `You are a helpful assistant answering questions from a private document collection.

INSTRUCTIONS:
1. Base your answer primarily on the documents provided below.
2. Reference the specific documents you used (e.g. "according to Document 2").
3. If the documents do not contain enough information, say so explicitly.
4. You may supplement with general knowledge, but only when you clearly flag it as such.`

// DefaultHistoryLimit caps how many prior conversation turns are carried
// into a composed message list.
const DefaultHistoryLimit = 10

// Composer assembles instructions, retrieved context and the user query
// into model input. Composition is deterministic string concatenation.
type Composer struct {
	instructions string
	historyLimit int
}

func New(instructions string, historyLimit int) *Composer {
	if instructions == "" {
		instructions = DefaultInstructions
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Composer{
		instructions: instructions,
		historyLimit: historyLimit,
	}
}

// Compose builds a single prompt string. With no context records the
// query is returned unchanged; the model is always invoked, context is
// strictly additive.
func (c *Composer) Compose(query string, contexts []entity.ContextRecord) string {
	if len(contexts) == 0 {
		return query
	}

	var b strings.Builder
	b.WriteString(c.instructions)
	b.WriteString("\n\nCONTEXT:\n")
	b.WriteString(contextSection(contexts))
	b.WriteString("\n\nUSER QUESTION:\n")
	b.WriteString(query)
	b.WriteString("\n\nANSWER:")
	return b.String()
}

// ComposeMessages builds a chat-style message list: a system message
// carrying instructions and context, the most recent history turns, then
// the current user turn. With no context records no system message is
// emitted.
func (c *Composer) ComposeMessages(query string, contexts []entity.ContextRecord, history []entity.Message) []entity.Message {
	messages := make([]entity.Message, 0, len(history)+2)

	if len(contexts) > 0 {
		messages = append(messages, entity.Message{
			Role:    entity.RoleSystem,
			Content: c.instructions + "\n\nCONTEXT:\n" + contextSection(contexts),
		})
	}

	if len(history) > c.historyLimit {
		history = history[len(history)-c.historyLimit:]
	}
	messages = append(messages, history...)

	messages = append(messages, entity.Message{
		Role:    entity.RoleUser,
		Content: query,
	})

	return messages
}

// contextSection enumerates the records in the order provided, one
// source-labeled block per record, joined by blank lines.
func contextSection(contexts []entity.ContextRecord) string {
	sections := make([]string, 0, len(contexts))
	for i, ctx := range contexts {
		source := ctx.Metadata.Source
		if source == "" {
			source = "unknown"
		}
		sections = append(sections, fmt.Sprintf("Document %d (from %s, relevance: %.2f): %s",
			i+1, source, ctx.Similarity, ctx.Text))
	}
	return strings.Join(sections, "\n\n")
}
