package models

import (
	"time"

	"github.com/google/uuid"
)

// Run summarizes one scrape from launch to export.
type Run struct {
	ID          uuid.UUID
	StartedAt   time.Time
	FinishedAt  time.Time
	CategoryURL string
	OutputPath  string

	Links      int
	Records    int
	Rows       int
	Duplicates int
	Failed     int
}

func NewRun(categoryURL string, startedAt time.Time) *Run {
	return &Run{
		ID:          uuid.New(),
		StartedAt:   startedAt,
		CategoryURL: categoryURL,
	}
}

func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
