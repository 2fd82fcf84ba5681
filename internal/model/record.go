package model

import "time"

// TimeLayout is the format of VideoRecord.DownloadTime
const TimeLayout = "2006-01-02 15:04:05"

// VideoRecord describes one successfully downloaded video
type VideoRecord struct {
	URL            string `json:"url"`
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	DownloadPath   string `json:"download_path"`
	AbsolutePath   string `json:"absolute_path"`
	FolderLocation string `json:"folder_location"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	Duration       int    `json:"duration"`
	DownloadURL    string `json:"download_url"`
	FileSize       int64  `json:"file_size"`
	DownloadTime   string `json:"download_time"`
}

// DownloadedAt parses DownloadTime back into local time.
// Zero time is returned when the field is empty or malformed.
func (r *VideoRecord) DownloadedAt() time.Time {
	t, err := time.ParseInLocation(TimeLayout, r.DownloadTime, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
