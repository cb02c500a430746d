package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cstutor/models"
	"cstutor/services"

	"github.com/anthropics/anthropic-sdk-go"
)

// EnforceLevelContainment checks the reply for vocabulary belonging to a
// different curriculum level and, when it finds any, asks the model once
// for a rewrite confined to the student's level. The rewrite itself is not
// re-checked.
func (s *Service) EnforceLevelContainment(ctx context.Context, reply string, level models.Level, topic string) string {
	term, leaked := services.FindForeignTerm(reply, level)
	if !leaked {
		return reply
	}

	log.Printf("[INFO] Level leak detected (%q) in %s reply, requesting rewrite", term, level)

	rewriteSystem := fmt.Sprintf(
		"You are a %s Computer Science tutor. Rewrite the given reply so it stays strictly within %s material on the topic \"%s\". Remove or re-explain anything from other levels. Keep the structure and tone, and return only the rewritten reply.",
		level, level, topic)

	response, err := s.messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: rewriteSystem}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(reply)),
		},
	})
	if err != nil {
		log.Printf("[ERROR] Level-containment rewrite failed, keeping original reply: %v", err)
		return reply
	}

	rewritten, _ := splitResponse(response)
	if strings.TrimSpace(rewritten) == "" {
		return reply
	}
	return strings.TrimSpace(rewritten)
}
