package db

import (
	"database/sql"
	"fmt"
	"time"

	"cstutor/models"

	_ "github.com/lib/pq"
)

type LearningEventRepository interface {
	GetRecentEvents(userID int, since time.Time) ([]*models.LearningEvent, error)
}

type PostgresLearningEventRepository struct {
	db *sql.DB
}

func NewPostgresLearningEventRepository(databaseURL string) (*PostgresLearningEventRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresLearningEventRepository{db: db}, nil
}

func (r *PostgresLearningEventRepository) GetRecentEvents(userID int, since time.Time) ([]*models.LearningEvent, error) {
	query := `
		SELECT id, user_id, kind, topic, score, max_score, created_at
		FROM cstutor.learning_events
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query learning events: %w", err)
	}
	defer rows.Close()

	var events []*models.LearningEvent
	for rows.Next() {
		event := &models.LearningEvent{}
		err := rows.Scan(&event.ID, &event.UserID, &event.Kind, &event.Topic, &event.Score, &event.MaxScore, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan learning event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate learning events: %w", err)
	}

	return events, nil
}

func (r *PostgresLearningEventRepository) Close() error {
	return r.db.Close()
}
