package models

import "time"

// BatchRun represents one execution over a URL list
type BatchRun struct {
	ID         string
	Total      int
	Succeeded  int
	Failed     int
	StartedAt  time.Time
	FinishedAt *time.Time
}
