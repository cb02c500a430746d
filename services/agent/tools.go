package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"cstutor/models"
	"cstutor/services"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
)

// AgentTool interface that all tools must implement
type AgentTool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
	GetAnthropicToolSpec() anthropic.ToolInputSchemaParam
}

// ToolContext is the per-request state every tool sees: who is asking and
// what level/topic/mode the request resolved to.
type ToolContext struct {
	UserID int
	Level  models.Level
	Topic  string
	Mode   models.Mode
}

// NewToolRegistry builds the fixed five-tool registry for one request.
func NewToolRegistry(progress *services.ProgressService, tc ToolContext) []AgentTool {
	return []AgentTool{
		ListTopicsTool{tc: tc},
		GenerateQuizTool{tc: tc},
		EvaluateCodeTool{tc: tc},
		ProgressSnapshotTool{progress: progress, tc: tc},
		RecommendTopicTool{progress: progress, tc: tc},
	}
}

func generateAnthropicSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}

type ListTopicsToolInput struct{}

type ListTopicsTool struct {
	tc ToolContext
}

func (l ListTopicsTool) Name() string {
	return "list_allowed_topics"
}

func (l ListTopicsTool) Description() string {
	return "Lists the topics allowed at the student's current level and which topic is currently selected"
}

func (l ListTopicsTool) Call(ctx context.Context, input string) (string, error) {
	var params ListTopicsToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse list topics tool input: %v", err)
	}

	type TopicList struct {
		Level         string   `json:"level"`
		Topics        []string `json:"topics"`
		SelectedTopic string   `json:"selected_topic"`
	}

	result, err := json.Marshal(TopicList{
		Level:         string(l.tc.Level),
		Topics:        services.TopicsForLevel(l.tc.Level),
		SelectedTopic: l.tc.Topic,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal topic list: %v", err)
	}

	return string(result), nil
}

func (l ListTopicsTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[ListTopicsToolInput]()
}

type GenerateQuizToolInput struct {
	Topic string `json:"topic,omitempty" jsonschema:"description=Topic to quiz on (defaults to the current topic)"`
	Count int    `json:"count,omitempty" jsonschema:"description=Number of questions between 1 and 10 (default 5)"`
}

type GenerateQuizTool struct {
	tc ToolContext
}

func (g GenerateQuizTool) Name() string {
	return "generate_quiz"
}

func (g GenerateQuizTool) Description() string {
	return "Generates templated quiz questions with answer guides for a topic at the student's level"
}

func (g GenerateQuizTool) Call(ctx context.Context, input string) (string, error) {
	var params GenerateQuizToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse generate quiz tool input: %v", err)
	}

	topic := g.tc.Topic
	if params.Topic != "" && services.IsAllowedTopic(g.tc.Level, params.Topic) {
		topic = services.NormalizeTopic(g.tc.Level, params.Topic)
	}

	count := params.Count
	if count <= 0 {
		count = 5
	}
	if count > 10 {
		count = 10
	}

	type QuizQuestion struct {
		Index       int    `json:"index"`
		Level       string `json:"level"`
		Question    string `json:"question"`
		AnswerGuide string `json:"answer_guide"`
	}

	questions := lo.Map(lo.Range(count), func(_ int, i int) QuizQuestion {
		return QuizQuestion{
			Index:       i + 1,
			Level:       string(g.tc.Level),
			Question:    fmt.Sprintf("Q%d (%s, %s): Explain one key idea of %s and give a short example.", i+1, g.tc.Level, topic, topic),
			AnswerGuide: fmt.Sprintf("Award marks for a correct definition, a working example, and %s-appropriate terminology.", g.tc.Level),
		}
	})

	result, err := json.Marshal(map[string]any{
		"topic":     topic,
		"questions": questions,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal quiz: %v", err)
	}

	return string(result), nil
}

func (g GenerateQuizTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[GenerateQuizToolInput]()
}

type EvaluateCodeToolInput struct {
	Code string `json:"code" jsonschema:"required,description=The student's code to evaluate"`
}

type EvaluateCodeTool struct {
	tc ToolContext
}

func (e EvaluateCodeTool) Name() string {
	return "evaluate_code"
}

func (e EvaluateCodeTool) Description() string {
	return "Runs a heuristic static review of the student's code and returns a 1-10 score with feedback"
}

func (e EvaluateCodeTool) Call(ctx context.Context, input string) (string, error) {
	var params EvaluateCodeToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse evaluate code tool input: %v", err)
	}

	evaluation := services.EvaluateCode(params.Code)

	result, err := json.Marshal(evaluation)
	if err != nil {
		return "", fmt.Errorf("failed to marshal code evaluation: %v", err)
	}

	return string(result), nil
}

func (e EvaluateCodeTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[EvaluateCodeToolInput]()
}

type ProgressSnapshotToolInput struct{}

type ProgressSnapshotTool struct {
	progress *services.ProgressService
	tc       ToolContext
}

func (p ProgressSnapshotTool) Name() string {
	return "progress_snapshot"
}

func (p ProgressSnapshotTool) Description() string {
	return "Summarises the student's last 14 days of study: topic frequency, quiz and code averages, weak areas"
}

func (p ProgressSnapshotTool) Call(ctx context.Context, input string) (string, error) {
	var params ProgressSnapshotToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse progress snapshot tool input: %v", err)
	}

	if p.progress == nil {
		return "", fmt.Errorf("progress data is not available in this deployment")
	}

	snapshot, err := p.progress.Snapshot(p.tc.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to build progress snapshot: %v", err)
	}

	result, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to marshal progress snapshot: %v", err)
	}

	return string(result), nil
}

func (p ProgressSnapshotTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[ProgressSnapshotToolInput]()
}

type RecommendTopicToolInput struct{}

type RecommendTopicTool struct {
	progress *services.ProgressService
	tc       ToolContext
}

func (r RecommendTopicTool) Name() string {
	return "recommend_next_topic"
}

func (r RecommendTopicTool) Description() string {
	return "Recommends the next topic at the student's level that their recent history has not covered"
}

func (r RecommendTopicTool) Call(ctx context.Context, input string) (string, error) {
	var params RecommendTopicToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse recommend topic tool input: %v", err)
	}

	var recent []string
	if r.progress != nil {
		topics, err := r.progress.RecentTopics(r.tc.UserID)
		if err == nil {
			recent = topics
		}
	}

	result, err := json.Marshal(map[string]string{
		"level":      string(r.tc.Level),
		"next_topic": services.RecommendNextTopic(r.tc.Level, recent),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal recommendation: %v", err)
	}

	return string(result), nil
}

func (r RecommendTopicTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[RecommendTopicToolInput]()
}
