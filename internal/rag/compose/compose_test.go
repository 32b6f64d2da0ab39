package compose

import (
	"fmt"
	"strings"
	"testing"

	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(source, text string, similarity float64) entity.ContextRecord {
	return entity.ContextRecord{
		Text:       text,
		Metadata:   entity.ChunkMetadata{Source: source},
		Similarity: similarity,
	}
}

func TestCompose(t *testing.T) {
	t.Run("Empty context returns the query unchanged", func(t *testing.T) {
		c := New("", 0)

		prompt := c.Compose("what is covered?", nil)

		assert.Equal(t, "what is covered?", prompt)
	})

	t.Run("Context section enumerates records with source and relevance", func(t *testing.T) {
		c := New("", 0)
		contexts := []entity.ContextRecord{
			record("plan.txt", "dental care is covered", 0.91),
			record("faq.md", "claims take ten days", 0.72),
		}

		prompt := c.Compose("what is covered?", contexts)

		assert.Contains(t, prompt, "Document 1 (from plan.txt, relevance: 0.91): dental care is covered")
		assert.Contains(t, prompt, "Document 2 (from faq.md, relevance: 0.72): claims take ten days")
		assert.Contains(t, prompt, DefaultInstructions)
		assert.Contains(t, prompt, "USER QUESTION:\nwhat is covered?")
		assert.True(t, strings.HasSuffix(prompt, "ANSWER:"))
	})

	t.Run("Instructions precede context which precedes the question", func(t *testing.T) {
		c := New("custom instructions", 0)

		prompt := c.Compose("q", []entity.ContextRecord{record("a.txt", "text", 0.8)})

		instrIdx := strings.Index(prompt, "custom instructions")
		ctxIdx := strings.Index(prompt, "Document 1")
		queryIdx := strings.Index(prompt, "USER QUESTION")
		require.GreaterOrEqual(t, instrIdx, 0)
		assert.Less(t, instrIdx, ctxIdx)
		assert.Less(t, ctxIdx, queryIdx)
		assert.NotContains(t, prompt, DefaultInstructions)
	})

	t.Run("Deterministic output", func(t *testing.T) {
		c := New("", 0)
		contexts := []entity.ContextRecord{record("a.txt", "alpha", 0.9), record("b.txt", "beta", 0.8)}

		assert.Equal(t, c.Compose("q", contexts), c.Compose("q", contexts))
	})
}

func TestComposeMessages(t *testing.T) {
	t.Run("Empty context yields a single user message", func(t *testing.T) {
		c := New("", 0)

		messages := c.ComposeMessages("hello", nil, nil)

		require.Len(t, messages, 1)
		assert.Equal(t, entity.RoleUser, messages[0].Role)
		assert.Equal(t, "hello", messages[0].Content)
	})

	t.Run("Context goes into a leading system message", func(t *testing.T) {
		c := New("", 0)
		contexts := []entity.ContextRecord{record("plan.txt", "dental care is covered", 0.9)}

		messages := c.ComposeMessages("what is covered?", contexts, nil)

		require.Len(t, messages, 2)
		assert.Equal(t, entity.RoleSystem, messages[0].Role)
		assert.Contains(t, messages[0].Content, DefaultInstructions)
		assert.Contains(t, messages[0].Content, "Document 1 (from plan.txt, relevance: 0.90): dental care is covered")
		assert.Equal(t, entity.RoleUser, messages[1].Role)
		assert.Equal(t, "what is covered?", messages[1].Content)
	})

	t.Run("History is capped to the most recent turns", func(t *testing.T) {
		c := New("", 4)
		var history []entity.Message
		for i := 0; i < 12; i++ {
			role := entity.RoleUser
			if i%2 == 1 {
				role = entity.RoleAssistant
			}
			history = append(history, entity.Message{Role: role, Content: fmt.Sprintf("turn %d", i)})
		}

		messages := c.ComposeMessages("latest", nil, history)

		require.Len(t, messages, 5)
		assert.Equal(t, "turn 8", messages[0].Content)
		assert.Equal(t, "turn 11", messages[3].Content)
		assert.Equal(t, "latest", messages[4].Content)
	})

	t.Run("History order is preserved between system and user turns", func(t *testing.T) {
		c := New("", 0)
		contexts := []entity.ContextRecord{record("a.txt", "alpha", 0.9)}
		history := []entity.Message{
			{Role: entity.RoleUser, Content: "earlier question"},
			{Role: entity.RoleAssistant, Content: "earlier answer"},
		}

		messages := c.ComposeMessages("next question", contexts, history)

		require.Len(t, messages, 4)
		assert.Equal(t, entity.RoleSystem, messages[0].Role)
		assert.Equal(t, "earlier question", messages[1].Content)
		assert.Equal(t, "earlier answer", messages[2].Content)
		assert.Equal(t, "next question", messages[3].Content)
	})
}
