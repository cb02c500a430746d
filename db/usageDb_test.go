package db

import "testing"

func TestInMemoryUsageCountsPerUser(t *testing.T) {
	repo := NewInMemoryUsageRepository()

	for i := 0; i < 3; i++ {
		if err := repo.IncrementToday(1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	repo.IncrementToday(2)

	if count, _ := repo.GetTodayCount(1); count != 3 {
		t.Errorf("expected 3 for user 1, got %d", count)
	}
	if count, _ := repo.GetTodayCount(2); count != 1 {
		t.Errorf("expected 1 for user 2, got %d", count)
	}
	if count, _ := repo.GetTodayCount(3); count != 0 {
		t.Errorf("expected 0 for an unseen user, got %d", count)
	}
}

func TestInMemoryUsageDropsPreviousDay(t *testing.T) {
	repo := NewInMemoryUsageRepository()

	// simulate counters left over from an earlier day
	repo.day = "2000-01-01"
	repo.counts[1] = 5
	repo.counts[2] = 3

	if count, _ := repo.GetTodayCount(1); count != 0 {
		t.Errorf("expected a fresh day to start at 0, got %d", count)
	}
	if len(repo.counts) != 0 {
		t.Errorf("expected stale counters to be evicted, %d remain", len(repo.counts))
	}

	repo.IncrementToday(1)
	if count, _ := repo.GetTodayCount(1); count != 1 {
		t.Errorf("expected 1 after incrementing on the new day, got %d", count)
	}
}
