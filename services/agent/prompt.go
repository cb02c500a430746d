package agent

import (
	"fmt"
	"strings"

	"cstutor/models"
	"cstutor/services"
)

var levelInstructions = map[models.Level]string{
	models.LevelKS3:    "Use simple, friendly language suitable for 11-14 year olds. Keep sentences short, use everyday analogies, and explain any technical word the first time you use it.",
	models.LevelGCSE:   "Use correct GCSE Computer Science terminology. Be precise but approachable, and relate examples to exam-style questions where natural.",
	models.LevelALevel: "Use formal, technical language appropriate for A-Level students. Expect and use proper notation, and discuss trade-offs where relevant.",
}

var modeInstructions = map[models.Mode]string{
	models.ModeExplain: "Mode rules: explain the concept clearly and step-by-step, building from what the student likely already knows. Ask one clarifying question if the request is ambiguous.",
	models.ModeHint:    "Mode rules: do not give the answer away. Offer up to three progressively stronger hints (Hint 1, Hint 2, Hint 3), each revealing a little more, and only offer the full solution if the student asks for it afterwards.",
	models.ModeQuiz:    "Mode rules: ask exactly three questions ordered easy, then medium, then hard. Number them. Then stop and wait for the student's answers before saying anything else.",
	models.ModeMark:    "Mode rules: mark the student's work with a score out of 10, then list strengths, then improvements, then give a model answer.",
}

// BuildSystemPrompt assembles the instruction text that frames every model
// call. Same inputs always produce byte-identical output.
func BuildSystemPrompt(level models.Level, topic string, mode models.Mode, preferConcise bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a %s Computer Science tutor following the UK curriculum.\n", level)
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Mode: %s\n\n", mode)

	b.WriteString(levelInstructions[level])
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Stay strictly within %s material on the topic \"%s\". Do not introduce material from other levels (%s) unless the student explicitly asks for it.\n\n",
		level, topic, otherLevelNames(level))

	b.WriteString(modeInstructions[mode])

	if preferConcise {
		b.WriteString("\n\nKeep the reply concise: short paragraphs, no filler, no recap of these instructions.")
	}

	return b.String()
}

func otherLevelNames(level models.Level) string {
	var names []string
	for _, l := range services.Levels() {
		if l != level {
			names = append(names, string(l))
		}
	}
	return strings.Join(names, ", ")
}
