package services

import (
	"testing"
	"time"

	"cstutor/models"
)

type fakeEventRepo struct {
	events []*models.LearningEvent
	err    error
}

func (f *fakeEventRepo) GetRecentEvents(userID int, since time.Time) ([]*models.LearningEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func quizEvent(topic string, score, max float64) *models.LearningEvent {
	return &models.LearningEvent{Kind: "quiz", Topic: topic, Score: score, MaxScore: max, CreatedAt: time.Now()}
}

func codeEvent(topic string, score float64) *models.LearningEvent {
	return &models.LearningEvent{Kind: "code", Topic: topic, Score: score, MaxScore: 10, CreatedAt: time.Now()}
}

func TestSnapshotAggregates(t *testing.T) {
	repo := &fakeEventRepo{events: []*models.LearningEvent{
		quizEvent("Algorithms", 8, 10),
		quizEvent("Algorithms", 6, 10),
		codeEvent("Programming Basics", 7),
	}}
	svc := NewProgressService(repo)

	snapshot, err := svc.Snapshot(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.TotalEvents != 3 {
		t.Errorf("expected 3 events, got %d", snapshot.TotalEvents)
	}
	if snapshot.TopicFrequency["Algorithms"] != 2 {
		t.Errorf("expected Algorithms frequency 2, got %d", snapshot.TopicFrequency["Algorithms"])
	}
	if snapshot.AvgQuizPercent != 70 {
		t.Errorf("expected avg quiz percent 70, got %.1f", snapshot.AvgQuizPercent)
	}
	if snapshot.AvgCodeScore != 7 {
		t.Errorf("expected avg code score 7, got %.1f", snapshot.AvgCodeScore)
	}
}

func TestSnapshotWeakAreaLowQuiz(t *testing.T) {
	repo := &fakeEventRepo{events: []*models.LearningEvent{
		quizEvent("Networks", 3, 10),
		quizEvent("Networks", 5, 10),
	}}
	svc := NewProgressService(repo)

	snapshot, err := svc.Snapshot(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snapshot.WeakAreas) != 1 || snapshot.WeakAreas[0] != "quiz accuracy" {
		t.Errorf("expected weak areas [quiz accuracy], got %v", snapshot.WeakAreas)
	}
}

func TestSnapshotWeakAreaLowCode(t *testing.T) {
	repo := &fakeEventRepo{events: []*models.LearningEvent{
		codeEvent("Algorithms", 4),
	}}
	svc := NewProgressService(repo)

	snapshot, err := svc.Snapshot(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snapshot.WeakAreas) != 1 || snapshot.WeakAreas[0] != "code quality" {
		t.Errorf("expected weak areas [code quality], got %v", snapshot.WeakAreas)
	}
}

func TestSnapshotWeakAreaFallsBackToLeastFrequentTopic(t *testing.T) {
	repo := &fakeEventRepo{events: []*models.LearningEvent{
		quizEvent("Algorithms", 9, 10),
		quizEvent("Algorithms", 8, 10),
		quizEvent("Networks", 9, 10),
	}}
	svc := NewProgressService(repo)

	snapshot, err := svc.Snapshot(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snapshot.WeakAreas) != 1 || snapshot.WeakAreas[0] != "Networks" {
		t.Errorf("expected least-frequent topic [Networks], got %v", snapshot.WeakAreas)
	}
}

func TestRecommendNextTopicSkipsCoveredTopics(t *testing.T) {
	recent := []string{"Programming Basics", "algorithms"}

	got := RecommendNextTopic(models.LevelKS3, recent)
	if got != "Data Representation" {
		t.Errorf("expected Data Representation, got %q", got)
	}
}

func TestRecommendNextTopicAllCovered(t *testing.T) {
	recent := TopicsForLevel(models.LevelKS3)

	got := RecommendNextTopic(models.LevelKS3, recent)
	if got != "Programming Basics" {
		t.Errorf("expected fallback to first topic, got %q", got)
	}
}

func TestRecentTopicsDeduplicates(t *testing.T) {
	repo := &fakeEventRepo{events: []*models.LearningEvent{
		quizEvent("Algorithms", 9, 10),
		quizEvent("Algorithms", 7, 10),
		codeEvent("Networks", 8),
	}}
	svc := NewProgressService(repo)

	topics, err := svc.RecentTopics(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(topics) != 2 || topics[0] != "Algorithms" || topics[1] != "Networks" {
		t.Errorf("expected [Algorithms Networks], got %v", topics)
	}
}
