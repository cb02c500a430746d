package services

import (
	"strings"

	"cstutor/models"

	"github.com/samber/lo"
)

// The UK Computer Science curriculum the tutor is allowed to teach from.
// Topic lists are ordered; the first entry is the level's default topic.
var levelTopics = map[models.Level][]string{
	models.LevelKS3: {
		"Programming Basics",
		"Algorithms",
		"Data Representation",
		"Computer Systems",
		"Networks",
		"Online Safety",
	},
	models.LevelGCSE: {
		"Python Programming",
		"Boolean Logic",
		"Data Structures",
		"Computer Architecture",
		"Network Protocols",
		"Cyber Security",
		"Databases",
	},
	models.LevelALevel: {
		"Object-Oriented Programming",
		"Recursion",
		"Complexity & Big O",
		"Operating Systems",
		"TCP/IP & Routing",
		"Normalisation",
		"Assembly & Low-Level",
	},
}

// Signature vocabulary per level. A reply that contains a term from a
// different level's list is treated as a cross-level leak.
var levelVocabulary = map[models.Level][]string{
	models.LevelKS3: {
		"flowchart",
		"block-based",
		"storyboard",
		"e-safety",
	},
	models.LevelGCSE: {
		"truth table",
		"binary shift",
		"bubble sort",
		"merge sort",
		"fetch-execute",
	},
	models.LevelALevel: {
		"polymorphism",
		"encapsulation",
		"big o",
		"time complexity",
		"semaphore",
		"relational algebra",
		"third normal form",
		"accumulator register",
	},
}

// Levels returns the curriculum tiers in ascending order.
func Levels() []models.Level {
	return []models.Level{models.LevelKS3, models.LevelGCSE, models.LevelALevel}
}

// NormalizeLevel maps free-form client input onto a known tier. Anything
// unrecognised falls back to the lowest tier.
func NormalizeLevel(raw string) models.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ks3", "key stage 3":
		return models.LevelKS3
	case "gcse":
		return models.LevelGCSE
	case "a-level", "alevel", "a level", "as-level":
		return models.LevelALevel
	}
	return models.LevelKS3
}

// NormalizeMode maps free-form client input onto a known mode, defaulting
// to Explain.
func NormalizeMode(raw string) models.Mode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "explain":
		return models.ModeExplain
	case "hint":
		return models.ModeHint
	case "quiz":
		return models.ModeQuiz
	case "mark":
		return models.ModeMark
	}
	return models.ModeExplain
}

func TopicsForLevel(level models.Level) []string {
	return levelTopics[level]
}

func DefaultTopic(level models.Level) string {
	return levelTopics[level][0]
}

// IsAllowedTopic reports whether topic is on the level's list,
// case-insensitively.
func IsAllowedTopic(level models.Level, topic string) bool {
	return lo.ContainsBy(levelTopics[level], func(t string) bool {
		return strings.EqualFold(t, strings.TrimSpace(topic))
	})
}

// NormalizeTopic keeps a topic only when it is on the level's allowed list;
// otherwise the level's default topic is used.
func NormalizeTopic(level models.Level, topic string) string {
	trimmed := strings.TrimSpace(topic)
	for _, t := range levelTopics[level] {
		if strings.EqualFold(t, trimmed) {
			return t
		}
	}
	return DefaultTopic(level)
}

// ForeignVocabulary is the union of every other level's signature terms.
func ForeignVocabulary(level models.Level) []string {
	return lo.FlatMap(Levels(), func(l models.Level, _ int) []string {
		if l == level {
			return nil
		}
		return levelVocabulary[l]
	})
}

// FindForeignTerm returns the first out-of-level vocabulary term that
// appears in the text, case-insensitively.
func FindForeignTerm(text string, level models.Level) (string, bool) {
	lower := strings.ToLower(text)
	for _, term := range ForeignVocabulary(level) {
		if strings.Contains(lower, strings.ToLower(term)) {
			return term, true
		}
	}
	return "", false
}
