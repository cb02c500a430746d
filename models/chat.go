package models

import "time"

// ChatTurn is one persisted message of a tutoring exchange. Each completed
// request stores a pair: the user message and the assistant reply.
type ChatTurn struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Level     string    `json:"level"`
	Topic     string    `json:"topic"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}
