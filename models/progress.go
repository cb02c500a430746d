package models

import "time"

// LearningEvent is a recorded study outcome (a finished quiz or a code
// evaluation) used by the progress aggregates. Written by the dashboard
// side of the system; read-only here.
type LearningEvent struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Kind      string    `json:"kind"` // "quiz" or "code"
	Topic     string    `json:"topic"`
	Score     float64   `json:"score"`
	MaxScore  float64   `json:"max_score"`
	CreatedAt time.Time `json:"created_at"`
}

type ProgressSnapshot struct {
	Days            int            `json:"days"`
	TopicFrequency  map[string]int `json:"topic_frequency"`
	AvgQuizPercent  float64        `json:"avg_quiz_percent"`
	AvgCodeScore    float64        `json:"avg_code_score"`
	WeakAreas       []string       `json:"weak_areas"`
	TotalEvents     int            `json:"total_events"`
	HasQuizActivity bool           `json:"has_quiz_activity"`
	HasCodeActivity bool           `json:"has_code_activity"`
}

type CodeEvaluation struct {
	Score        int      `json:"score"`
	Summary      string   `json:"summary"`
	Improvements []string `json:"improvements"`
	Tips         []string `json:"tips"`
	Topics       []string `json:"topics"`
}
