package services

import (
	"testing"

	"cstutor/models"
)

func TestNormalizeLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.Level
	}{
		{"exact KS3", "KS3", models.LevelKS3},
		{"lowercase ks3", "ks3", models.LevelKS3},
		{"exact GCSE", "GCSE", models.LevelGCSE},
		{"lowercase gcse", "gcse", models.LevelGCSE},
		{"a-level hyphenated", "A-Level", models.LevelALevel},
		{"alevel compact", "alevel", models.LevelALevel},
		{"a level spaced", "a level", models.LevelALevel},
		{"whitespace padding", "  GCSE  ", models.LevelGCSE},
		{"unknown falls to lowest tier", "university", models.LevelKS3},
		{"empty falls to lowest tier", "", models.LevelKS3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLevel(tt.input); got != tt.expected {
				t.Errorf("NormalizeLevel(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeMode(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Mode
	}{
		{"Explain", models.ModeExplain},
		{"hint", models.ModeHint},
		{"QUIZ", models.ModeQuiz},
		{"Mark", models.ModeMark},
		{"debate", models.ModeExplain},
		{"", models.ModeExplain},
	}

	for _, tt := range tests {
		if got := NormalizeMode(tt.input); got != tt.expected {
			t.Errorf("NormalizeMode(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizeTopic(t *testing.T) {
	tests := []struct {
		name     string
		level    models.Level
		topic    string
		expected string
	}{
		{"exact match kept", models.LevelKS3, "Algorithms", "Algorithms"},
		{"case-insensitive match canonicalised", models.LevelKS3, "algorithms", "Algorithms"},
		{"off-list topic replaced by level default", models.LevelKS3, "Quantum Computing", "Programming Basics"},
		{"topic from another level replaced", models.LevelKS3, "Normalisation", "Programming Basics"},
		{"empty topic replaced", models.LevelGCSE, "", "Python Programming"},
		{"gcse exact", models.LevelGCSE, "Boolean Logic", "Boolean Logic"},
		{"a-level default", models.LevelALevel, "whatever", "Object-Oriented Programming"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTopic(tt.level, tt.topic); got != tt.expected {
				t.Errorf("NormalizeTopic(%q, %q) = %q, expected %q", tt.level, tt.topic, got, tt.expected)
			}
		})
	}
}

func TestDefaultTopicIsFirstInList(t *testing.T) {
	for _, level := range Levels() {
		if DefaultTopic(level) != TopicsForLevel(level)[0] {
			t.Errorf("default topic for %s is not the first allowed topic", level)
		}
	}
}

func TestFindForeignTerm(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		level      models.Level
		expectLeak bool
	}{
		{
			name:       "a-level term in ks3 reply",
			text:       "A loop repeats instructions, a bit like polymorphism in OOP.",
			level:      models.LevelKS3,
			expectLeak: true,
		},
		{
			name:       "case insensitive detection",
			text:       "Think about the Time Complexity of your loop.",
			level:      models.LevelKS3,
			expectLeak: true,
		},
		{
			name:       "own-level vocabulary is fine",
			text:       "Draw a flowchart before you write any code.",
			level:      models.LevelKS3,
			expectLeak: false,
		},
		{
			name:       "clean reply",
			text:       "A loop repeats a set of steps until a condition is met.",
			level:      models.LevelKS3,
			expectLeak: false,
		},
		{
			name:       "ks3 term in a-level reply",
			text:       "Start with a flowchart if it helps.",
			level:      models.LevelALevel,
			expectLeak: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, leaked := FindForeignTerm(tt.text, tt.level)
			if leaked != tt.expectLeak {
				t.Errorf("FindForeignTerm(%q, %s) leak = %v (term %q), expected %v", tt.text, tt.level, leaked, term, tt.expectLeak)
			}
		})
	}
}
