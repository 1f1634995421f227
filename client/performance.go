package client

import (
	"context"
	"net/http"
)

// PerformanceClient fetches aggregated study metrics from the external
// performance service.
type PerformanceClient struct {
	api *Client
}

// NewPerformanceClient creates a client for the performance service at baseURL.
func NewPerformanceClient(baseURL string, opts ...Option) *PerformanceClient {
	return &PerformanceClient{api: New(baseURL, opts...)}
}

// PerformanceReport is the aggregated metrics document served by the
// performance service.
type PerformanceReport struct {
	OverallProgress    int               `json:"overallProgress"`
	StudyHours         float64           `json:"studyHours"`
	TasksCompleted     int               `json:"tasksCompleted"`
	AverageGrade       float64           `json:"averageGrade"`
	Streak             int               `json:"streak"`
	FocusScore         int               `json:"focusScore"`
	UpcomingDeadlines  []Deadline        `json:"upcomingDeadlines"`
	RecentAchievements []string          `json:"recentAchievements"`
	SubjectPerformance []SubjectScore    `json:"subjectPerformance"`
	WeeklyStudyHours   []DailyStudyHours `json:"weeklyStudyHours"`
}

// Deadline is one upcoming due item.
type Deadline struct {
	Task string `json:"task"`
	Date string `json:"date"`
}

// SubjectScore is a per-subject performance score.
type SubjectScore struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}

// DailyStudyHours is one day's study time.
type DailyStudyHours struct {
	Day   string  `json:"day"`
	Hours float64 `json:"hours"`
}

// Performance fetches the current metrics snapshot.
func (c *PerformanceClient) Performance(ctx context.Context) (PerformanceReport, error) {
	var report PerformanceReport
	err := c.api.do(ctx, http.MethodGet, "/performance", nil, nil, &report)
	return report, err
}
