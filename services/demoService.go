package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cstutor/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DemoService answers the unauthenticated demo endpoint with a single
// OpenAI call, falling back to canned per-mode text when no key is
// configured or the call fails. The real tutor pipeline never uses this.
type DemoService struct {
	llm llms.Model
}

func NewDemoService(openAIAPIKey string) *DemoService {
	if openAIAPIKey == "" {
		log.Printf("[WARN] OPENAI_API_KEY not set, demo endpoint will serve canned replies")
		return &DemoService{}
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openAIAPIKey),
	)
	if err != nil {
		log.Printf("[ERROR] Failed to create OpenAI client for demo service: %v", err)
		return &DemoService{}
	}

	return &DemoService{llm: llm}
}

func (s *DemoService) Respond(ctx context.Context, systemPrompt, message string, mode models.Mode) string {
	if s.llm == nil {
		return cannedDemoReply(mode)
	}

	prompt := systemPrompt + "\n\nStudent: " + message
	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0.7))
	if err != nil {
		log.Printf("[ERROR] Demo LLM call failed, serving canned reply: %v", err)
		return cannedDemoReply(mode)
	}

	if strings.TrimSpace(completion) == "" {
		return cannedDemoReply(mode)
	}
	return strings.TrimSpace(completion)
}

func cannedDemoReply(mode models.Mode) string {
	switch mode {
	case models.ModeHint:
		return "Hint 1: Break the problem into the smallest step you can do first. Sign up for personalised hints!"
	case models.ModeQuiz:
		return "Sample question: What does a variable store? Sign up to take full quizzes with feedback."
	case models.ModeMark:
		return "Marking needs an account so we can track your progress. Sign up to get your work scored out of 10."
	default:
		return fmt.Sprintf("Here's a taster: a program is a list of instructions the computer follows in order. Sign up to ask your own questions in %s mode!", models.ModeExplain)
	}
}
