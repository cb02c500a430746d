package services

import (
	"strings"

	"cstutor/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var codeTopicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"loops", []string{"for", "while", "repeat"}},
	{"conditionals", []string{"if", "else", "elif", "switch"}},
	{"functions", []string{"def", "function", "func", "return"}},
	{"data structures", []string{"list", "array", "dict", "map", "append"}},
	{"error handling", []string{"try", "except", "catch", "raise", "throw"}},
	{"recursion", []string{"recursion", "recursive"}},
}

// EvaluateCode scores a code snippet with a cheap static heuristic: it
// looks at size, comments and a handful of structural markers. No code is
// executed.
func EvaluateCode(code string) *models.CodeEvaluation {
	lines := nonEmptyLines(code)
	lower := strings.ToLower(code)

	hasComments := strings.Contains(code, "#") || strings.Contains(code, "//") || strings.Contains(code, "/*")
	hasBranching := containsWord(lower, "if")
	hasLoop := containsWord(lower, "for") || containsWord(lower, "while")
	hasFunction := containsWord(lower, "def") || containsWord(lower, "function") || containsWord(lower, "func") || strings.Contains(lower, "=>")
	hasErrorHandling := containsWord(lower, "try") || containsWord(lower, "except") || containsWord(lower, "catch")

	score := 3
	if len(lines) >= 5 {
		score++
	}
	if len(lines) >= 15 {
		score++
	}
	if hasComments {
		score++
	}
	if hasBranching {
		score++
	}
	if hasLoop {
		score++
	}
	if hasFunction {
		score++
	}
	if hasErrorHandling {
		score++
	}
	if len(lines) == 0 {
		score = 1
	}
	if score > 10 {
		score = 10
	}

	var improvements []string
	if !hasComments {
		improvements = append(improvements, "Add comments explaining what each section does")
	}
	if !hasFunction {
		improvements = append(improvements, "Break the code into named functions")
	}
	if !hasErrorHandling {
		improvements = append(improvements, "Handle errors or invalid input explicitly")
	}
	if len(lines) > 0 && len(lines) < 3 {
		improvements = append(improvements, "Expand the solution to cover more cases")
	}

	return &models.CodeEvaluation{
		Score:        score,
		Summary:      summaryTier(score),
		Improvements: improvements,
		Tips: []string{
			"Use descriptive variable names",
			"Test your code with edge-case inputs",
			"Keep functions short and focused on one job",
		},
		Topics: inferCodeTopics(lower),
	}
}

func summaryTier(score int) string {
	switch {
	case score >= 8:
		return "Excellent: well structured code with good coverage of core techniques"
	case score >= 6:
		return "Good: solid foundations with a few things to tighten up"
	case score >= 4:
		return "Fair: the basics are there but the structure needs work"
	default:
		return "Needs work: start with small, complete examples and build up"
	}
}

func nonEmptyLines(code string) []string {
	var lines []string
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func containsWord(lower, word string) bool {
	for _, token := range strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_'
	}) {
		if token == word {
			return true
		}
	}
	return false
}

// inferCodeTopics tags the snippet with curriculum-ish topics. Fuzzy
// matching lets slightly mangled identifiers still count.
func inferCodeTopics(lower string) []string {
	tokens := strings.Fields(lower)

	var topics []string
	for _, entry := range codeTopicKeywords {
		for _, keyword := range entry.keywords {
			if containsWord(lower, keyword) || len(fuzzy.Find(keyword, tokens)) > 0 {
				topics = append(topics, entry.topic)
				break
			}
		}
	}
	return topics
}
