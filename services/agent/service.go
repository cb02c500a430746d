package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"cstutor/services"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/samber/lo/parallel"
)

const noOutputFallback = "(no output returned)"

// MessageAPI is the slice of the Anthropic client the service uses.
// Tests substitute a deterministic stub.
type MessageAPI interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type Service struct {
	messages  MessageAPI
	progress  *services.ProgressService
	model     anthropic.Model
	maxTokens int64
	maxSteps  int
}

func NewService(anthropicAPIKey string, progress *services.ProgressService, model string, maxTokens, maxSteps int) (*Service, error) {
	if anthropicAPIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(anthropicAPIKey))
	return NewServiceWithClient(&client.Messages, progress, model, maxTokens, maxSteps), nil
}

func NewServiceWithClient(messages MessageAPI, progress *services.ProgressService, model string, maxTokens, maxSteps int) *Service {
	if maxSteps <= 0 {
		maxSteps = 4
	}
	return &Service{
		messages:  messages,
		progress:  progress,
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
		maxSteps:  maxSteps,
	}
}

// Generate runs the bounded tool-calling loop: call the model, execute any
// requested tools, feed the results back, and repeat until the model stops
// asking for tools or the step budget runs out. Any model error abandons
// the whole loop; the caller decides how to fall back.
func (s *Service) Generate(ctx context.Context, tc ToolContext, systemPrompt, userMessage string) (string, error) {
	tools := NewToolRegistry(s.progress, tc)
	toolSpecs := buildAnthropicToolSpecs(tools)

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
	}

	var lastText string
	for step := 1; step <= s.maxSteps; step++ {
		log.Printf("[INFO] Agent step %d/%d for user %d", step, s.maxSteps, tc.UserID)

		response, err := s.messages.New(ctx, anthropic.MessageNewParams{
			Model:     s.model,
			MaxTokens: s.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
			Messages:  messages,
			Tools:     toolSpecs,
		})
		if err != nil {
			return "", fmt.Errorf("model call failed at step %d: %w", step, err)
		}

		text, toolUses := splitResponse(response)
		lastText = text

		if len(toolUses) == 0 {
			return finalizeReply(text), nil
		}

		// Tool results produced on the last step would never reach the
		// model, so don't run the tools at all.
		if step == s.maxSteps {
			break
		}

		messages = append(messages, assistantMessage(text, toolUses))
		messages = append(messages, toolResultsMessage(ctx, tools, toolUses))
	}

	log.Printf("[WARN] Agent step budget (%d) exhausted for user %d, finalizing with last text", s.maxSteps, tc.UserID)
	return finalizeReply(lastText), nil
}

// RespondDirect is the no-tools fallback: one model call with the same
// prompt, used when the agent loop fails.
func (s *Service) RespondDirect(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	response, err := s.messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("direct model call failed: %w", err)
	}

	text, _ := splitResponse(response)
	return finalizeReply(text), nil
}

func splitResponse(response *anthropic.Message) (string, []anthropic.ToolUseBlock) {
	var text string
	var toolUses []anthropic.ToolUseBlock

	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			text += block.Text
		case anthropic.ToolUseBlock:
			toolUses = append(toolUses, block)
		}
	}

	return text, toolUses
}

func assistantMessage(text string, toolUses []anthropic.ToolUseBlock) anthropic.MessageParam {
	contentBlocks := []anthropic.ContentBlockParamUnion{}

	if text != "" {
		contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
			OfText: &anthropic.TextBlockParam{Text: text},
		})
	}

	for _, toolUse := range toolUses {
		contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
			OfToolUse: &anthropic.ToolUseBlockParam{
				ID:    toolUse.ID,
				Name:  toolUse.Name,
				Input: toolUse.Input,
			},
		})
	}

	return anthropic.NewAssistantMessage(contentBlocks...)
}

// toolResultsMessage dispatches every tool call the step requested (the
// five tools are independent, so in parallel when there are several) and
// packs the outputs into one user message correlated by call ID.
func toolResultsMessage(ctx context.Context, tools []AgentTool, toolUses []anthropic.ToolUseBlock) anthropic.MessageParam {
	results := parallel.Map(toolUses, func(toolUse anthropic.ToolUseBlock, _ int) anthropic.ContentBlockParamUnion {
		inputJSON, _ := json.Marshal(toolUse.Input)
		output := executeTool(ctx, tools, toolUse.Name, string(inputJSON))

		return anthropic.ContentBlockParamUnion{
			OfToolResult: &anthropic.ToolResultBlockParam{
				ToolUseID: toolUse.ID,
				Content: []anthropic.ToolResultBlockParamContentUnion{
					{OfText: &anthropic.TextBlockParam{Text: output}},
				},
			},
		}
	})

	return anthropic.NewUserMessage(results...)
}

// executeTool never fails: unknown names and tool errors come back as an
// error payload the model can read.
func executeTool(ctx context.Context, tools []AgentTool, toolName, arguments string) string {
	for _, tool := range tools {
		if tool.Name() == toolName {
			result, err := tool.Call(ctx, arguments)
			if err != nil {
				log.Printf("[ERROR] Tool %s failed: %v", toolName, err)
				return errorPayload(err.Error())
			}
			log.Printf("[INFO] Tool %s executed", toolName)
			return result
		}
	}

	log.Printf("[ERROR] Model requested unknown tool: %s", toolName)
	return errorPayload(fmt.Sprintf("unknown tool: %s", toolName))
}

func errorPayload(message string) string {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return string(payload)
}

func buildAnthropicToolSpecs(tools []AgentTool) []anthropic.ToolUnionParam {
	var toolSpecs []anthropic.ToolUnionParam

	for _, tool := range tools {
		toolSpecs = append(toolSpecs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name(),
				Description: anthropic.String(tool.Description()),
				InputSchema: tool.GetAnthropicToolSpec(),
			},
		})
	}

	return toolSpecs
}

func finalizeReply(text string) string {
	if strings.TrimSpace(text) == "" {
		return noOutputFallback
	}
	return strings.TrimSpace(text)
}
