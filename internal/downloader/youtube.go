package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/artur/tiksaver/internal/model"
	"github.com/kkdai/youtube/v2"
)

var (
	youtubeIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	youtubePathPattern = regexp.MustCompile(`^/(?:shorts|embed|live)/([a-zA-Z0-9_-]{11})`)
)

// ErrNoFormats is returned when a video has no downloadable format with audio
var ErrNoFormats = errors.New("no formats with audio found")

// YouTubeDownloader saves YouTube videos via kkdai/youtube
type YouTubeDownloader struct {
	client    youtube.Client
	outputDir string
	progress  io.Writer
	now       func() time.Time
}

func NewYouTubeDownloader(outputDir string) *YouTubeDownloader {
	return &YouTubeDownloader{
		client:    youtube.Client{},
		outputDir: outputDir,
		now:       time.Now,
	}
}

func (d *YouTubeDownloader) SetProgressOutput(w io.Writer) {
	d.progress = w
}

func (d *YouTubeDownloader) CanHandle(videoURL string) bool {
	return extractYouTubeID(videoURL) != ""
}

func (d *YouTubeDownloader) Download(ctx context.Context, videoURL string) (*model.VideoRecord, error) {
	record, err := d.download(ctx, videoURL)
	if err != nil {
		log.Printf("[YOUTUBE] Failed to download %s: %v", videoURL, err)
		return nil, err
	}
	return record, nil
}

func (d *YouTubeDownloader) download(ctx context.Context, videoURL string) (*model.VideoRecord, error) {
	videoID := extractYouTubeID(videoURL)
	if videoID == "" {
		return nil, fmt.Errorf("not a youtube URL: %s", videoURL)
	}

	if err := ensureDir(d.outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	video, err := d.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	format := selectFormat(video.Formats.WithAudioChannels())
	if format == nil {
		return nil, ErrNoFormats
	}

	stream, size, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()

	filename := "youtube_" + videoID + ".mp4"
	filePath := filepath.Join(d.outputDir, filename)

	if _, err := saveStream(filePath, stream, size, d.progress); err != nil {
		return nil, err
	}
	log.Printf("[YOUTUBE] Download finished: %s", filePath)

	return buildRecord(recordInput{
		SourceURL:   videoURL,
		ID:          videoID,
		Filename:    filename,
		Dir:         d.outputDir,
		Title:       video.Title,
		Author:      video.Author,
		Duration:    int(video.Duration.Seconds()),
		DownloadURL: format.URL,
		At:          d.now(),
	})
}

// selectFormat picks the smallest MP4 format, falling back to the first one
func selectFormat(formats youtube.FormatList) *youtube.Format {
	if len(formats) == 0 {
		return nil
	}

	var selected *youtube.Format
	for i := range formats {
		if !strings.Contains(formats[i].MimeType, "video/mp4") {
			continue
		}
		if selected == nil || formats[i].ContentLength < selected.ContentLength {
			selected = &formats[i]
		}
	}

	if selected == nil {
		selected = &formats[0]
	}
	return selected
}

// extractYouTubeID returns the video ID of a youtube.com or youtu.be URL,
// or "" for anything else
func extractYouTubeID(text string) string {
	u, err := url.Parse(strings.TrimSpace(text))
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com":
		if u.Path == "/watch" {
			id = u.Query().Get("v")
		} else if m := youtubePathPattern.FindStringSubmatch(u.Path); m != nil {
			id = m[1]
		}
	}

	if !youtubeIDPattern.MatchString(id) {
		return ""
	}
	return id
}
