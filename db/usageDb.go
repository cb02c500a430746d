package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

// UsageRepository is the per-user per-UTC-day turn counter. Counts only
// ever go up within a day; a new day simply starts a fresh row/key.
type UsageRepository interface {
	GetTodayCount(userID int) (int, error)
	IncrementToday(userID int) error
}

func todayKey() string {
	return time.Now().UTC().Format("2006-01-02")
}

type PostgresUsageRepository struct {
	db *sql.DB
}

func NewPostgresUsageRepository(databaseURL string) (*PostgresUsageRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresUsageRepository{db: db}, nil
}

func (r *PostgresUsageRepository) GetTodayCount(userID int) (int, error) {
	query := `
		SELECT count
		FROM cstutor.usage_counters
		WHERE user_id = $1 AND day = $2`

	var count int
	err := r.db.QueryRow(query, userID, todayKey()).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get usage count: %w", err)
	}

	return count, nil
}

// IncrementToday is a single atomic upsert so concurrent requests never
// lose an increment.
func (r *PostgresUsageRepository) IncrementToday(userID int) error {
	query := `
		INSERT INTO cstutor.usage_counters (user_id, day, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day)
		DO UPDATE SET count = usage_counters.count + 1`

	if _, err := r.db.Exec(query, userID, todayKey()); err != nil {
		return fmt.Errorf("failed to increment usage count: %w", err)
	}

	return nil
}

func (r *PostgresUsageRepository) Close() error {
	return r.db.Close()
}

// InMemoryUsageRepository backs tests and deployments without a database.
// Only the current UTC day is held; the first access after midnight drops
// the previous day's counters, so the map never grows beyond one entry per
// active user.
type InMemoryUsageRepository struct {
	mu     sync.Mutex
	day    string
	counts map[int]int
}

func NewInMemoryUsageRepository() *InMemoryUsageRepository {
	return &InMemoryUsageRepository{day: todayKey(), counts: make(map[int]int)}
}

// rollover discards stale counters on day change. Caller holds mu.
func (r *InMemoryUsageRepository) rollover() {
	if day := todayKey(); r.day != day {
		r.day = day
		r.counts = make(map[int]int)
	}
}

func (r *InMemoryUsageRepository) GetTodayCount(userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()
	return r.counts[userID], nil
}

func (r *InMemoryUsageRepository) IncrementToday(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()
	r.counts[userID]++
	return nil
}
