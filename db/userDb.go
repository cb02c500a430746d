package db

import (
	"database/sql"
	"fmt"

	"cstutor/models"

	_ "github.com/lib/pq"
)

type UserRepository interface {
	GetUserByID(id int) (*models.User, error)
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(databaseURL string) (*PostgresUserRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresUserRepository{db: db}, nil
}

func (r *PostgresUserRepository) GetUserByID(id int) (*models.User, error) {
	query := `
		SELECT id, email, role, plan, subscription_status, created_at
		FROM cstutor.users
		WHERE id = $1`

	user := &models.User{}
	row := r.db.QueryRow(query, id)

	err := row.Scan(&user.ID, &user.Email, &user.Role, &user.Plan, &user.SubscriptionStatus, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %d not found", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *PostgresUserRepository) Close() error {
	return r.db.Close()
}
