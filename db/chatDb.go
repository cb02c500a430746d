package db

import (
	"database/sql"
	"fmt"

	"cstutor/models"

	_ "github.com/lib/pq"
)

type ChatRepository interface {
	InsertTurnPair(userTurn, assistantTurn *models.ChatTurn) error
}

type PostgresChatRepository struct {
	db *sql.DB
}

func NewPostgresChatRepository(databaseURL string) (*PostgresChatRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresChatRepository{db: db}, nil
}

// InsertTurnPair stores the user message and the assistant reply together
// so history never shows one without the other.
func (r *PostgresChatRepository) InsertTurnPair(userTurn, assistantTurn *models.ChatTurn) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
		INSERT INTO cstutor.chat_turns (user_id, role, content, level, topic, mode)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, turn := range []*models.ChatTurn{userTurn, assistantTurn} {
		if _, err := tx.Exec(query, turn.UserID, turn.Role, turn.Content, turn.Level, turn.Topic, turn.Mode); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert chat turn: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat turns: %w", err)
	}

	return nil
}

func (r *PostgresChatRepository) Close() error {
	return r.db.Close()
}
