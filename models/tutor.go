package models

// Level is one of the three ordered curriculum tiers.
type Level string

const (
	LevelKS3    Level = "KS3"
	LevelGCSE   Level = "GCSE"
	LevelALevel Level = "A-Level"
)

// Mode is the pedagogical interaction style requested by the student.
type Mode string

const (
	ModeExplain Mode = "Explain"
	ModeHint    Mode = "Hint"
	ModeQuiz    Mode = "Quiz"
	ModeMark    Mode = "Mark"
)

type TutorRequest struct {
	Message string `json:"message"`
	Level   string `json:"level"`
	Topic   string `json:"topic"`
	Mode    string `json:"mode"`
}

type TutorResponse struct {
	Reply string         `json:"reply"`
	Usage *UsageSnapshot `json:"usage,omitempty"`
}

// StreamChunk is the wire shape of one SSE event on the stream endpoint:
// a series of delta events followed by a terminal done event.
type StreamChunk struct {
	Delta string `json:"delta,omitempty"`
	Done  bool   `json:"done,omitempty"`
}
