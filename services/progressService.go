package services

import (
	"fmt"
	"strings"
	"time"

	"cstutor/db"
	"cstutor/models"

	"github.com/samber/lo"
)

const progressWindowDays = 14

type ProgressService struct {
	events db.LearningEventRepository
}

func NewProgressService(events db.LearningEventRepository) *ProgressService {
	return &ProgressService{events: events}
}

// Snapshot aggregates the user's recorded study outcomes over the last
// two weeks: topic frequency, average quiz percentage, average code score
// and a derived weak-areas list.
func (s *ProgressService) Snapshot(userID int) (*models.ProgressSnapshot, error) {
	since := time.Now().UTC().AddDate(0, 0, -progressWindowDays)
	events, err := s.events.GetRecentEvents(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning events: %v", err)
	}

	snapshot := &models.ProgressSnapshot{
		Days:           progressWindowDays,
		TopicFrequency: make(map[string]int),
		TotalEvents:    len(events),
	}

	var quizPctSum, codeScoreSum float64
	var quizCount, codeCount int

	for _, event := range events {
		if event.Topic != "" {
			snapshot.TopicFrequency[event.Topic]++
		}
		switch event.Kind {
		case "quiz":
			if event.MaxScore > 0 {
				quizPctSum += event.Score / event.MaxScore * 100
				quizCount++
			}
		case "code":
			codeScoreSum += event.Score
			codeCount++
		}
	}

	if quizCount > 0 {
		snapshot.AvgQuizPercent = quizPctSum / float64(quizCount)
		snapshot.HasQuizActivity = true
	}
	if codeCount > 0 {
		snapshot.AvgCodeScore = codeScoreSum / float64(codeCount)
		snapshot.HasCodeActivity = true
	}

	snapshot.WeakAreas = deriveWeakAreas(snapshot)
	return snapshot, nil
}

// Weak areas: poor quiz accuracy first, then poor code scores; when both
// look fine the least-practised topic is flagged instead.
func deriveWeakAreas(s *models.ProgressSnapshot) []string {
	var weak []string
	if s.HasQuizActivity && s.AvgQuizPercent < 65 {
		weak = append(weak, "quiz accuracy")
	}
	if s.HasCodeActivity && s.AvgCodeScore < 6 {
		weak = append(weak, "code quality")
	}
	if len(weak) == 0 {
		if topic, ok := leastFrequentTopic(s.TopicFrequency); ok {
			weak = append(weak, topic)
		}
	}
	return weak
}

func leastFrequentTopic(freq map[string]int) (string, bool) {
	topics := lo.Keys(freq)
	if len(topics) == 0 {
		return "", false
	}
	return lo.MinBy(topics, func(a, b string) bool {
		if freq[a] != freq[b] {
			return freq[a] < freq[b]
		}
		return a < b
	}), true
}

// RecentTopics lists the topics the user has touched inside the window,
// most recent first, without duplicates.
func (s *ProgressService) RecentTopics(userID int) ([]string, error) {
	since := time.Now().UTC().AddDate(0, 0, -progressWindowDays)
	events, err := s.events.GetRecentEvents(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning events: %v", err)
	}

	topics := lo.FilterMap(events, func(e *models.LearningEvent, _ int) (string, bool) {
		return e.Topic, e.Topic != ""
	})
	return lo.Uniq(topics), nil
}

// RecommendNextTopic picks the first topic on the level's list the user
// has not covered recently, falling back to the level's first topic once
// everything has been seen.
func RecommendNextTopic(level models.Level, recentTopics []string) string {
	covered := lo.Map(recentTopics, func(t string, _ int) string {
		return strings.ToLower(strings.TrimSpace(t))
	})

	for _, topic := range TopicsForLevel(level) {
		if !lo.Contains(covered, strings.ToLower(topic)) {
			return topic
		}
	}
	return DefaultTopic(level)
}
