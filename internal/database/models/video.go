package models

import "time"

// VideoDownload represents a video download record
type VideoDownload struct {
	ID              int64
	RunID           string
	VideoID         string
	VideoURL        string
	VideoTitle      string
	Author          string
	DurationSeconds int
	FilePath        string
	FileSizeBytes   int64
	DownloadedAt    time.Time
}
