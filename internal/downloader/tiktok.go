package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/artur/tiksaver/internal/model"
	"github.com/artur/tiksaver/internal/tikwm"
)

// DefaultMediaTimeout bounds connecting to the media host and waiting for its headers
const DefaultMediaTimeout = 30 * time.Second

var (
	// ErrNoPlayURL is returned when the metadata lacks a playable download URL
	ErrNoPlayURL = errors.New("video URL not found in metadata")

	// ErrBadStatus is returned when the media host answers with anything but 200
	ErrBadStatus = errors.New("unexpected media status")
)

// TikTokDownloader resolves videos through the tikwm API and saves them to disk
type TikTokDownloader struct {
	api        *tikwm.Client
	httpClient *http.Client
	outputDir  string
	progress   io.Writer
	now        func() time.Time
}

// NewTikTokDownloader creates a downloader writing into outputDir
func NewTikTokDownloader(api *tikwm.Client, outputDir string, mediaTimeout time.Duration) *TikTokDownloader {
	if mediaTimeout <= 0 {
		mediaTimeout = DefaultMediaTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: mediaTimeout}).DialContext
	transport.ResponseHeaderTimeout = mediaTimeout

	return &TikTokDownloader{
		api:        api,
		httpClient: &http.Client{Transport: transport},
		outputDir:  outputDir,
		now:        time.Now,
	}
}

// SetProgressOutput sets where the live progress bar is drawn; nil disables it
func (d *TikTokDownloader) SetProgressOutput(w io.Writer) {
	d.progress = w
}

// CanHandle accepts any URL; tikwm decides whether it can resolve it
func (d *TikTokDownloader) CanHandle(videoURL string) bool {
	return strings.TrimSpace(videoURL) != ""
}

// Download resolves videoURL and streams the media into the output directory
func (d *TikTokDownloader) Download(ctx context.Context, videoURL string) (*model.VideoRecord, error) {
	record, err := d.download(ctx, videoURL)
	if err != nil {
		log.Printf("[DOWNLOAD] Failed to download %s: %v", videoURL, err)
		return nil, err
	}
	return record, nil
}

func (d *TikTokDownloader) download(ctx context.Context, videoURL string) (*model.VideoRecord, error) {
	if err := ensureDir(d.outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	log.Printf("[DOWNLOAD] Trying %s", videoURL)

	info, err := d.api.FetchInfo(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	playURL := info.PlayURL()
	if playURL == "" {
		return nil, ErrNoPlayURL
	}
	log.Printf("[DOWNLOAD] Video URL found")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build media request: %w", err)
	}

	res, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, res.Status)
	}

	id := videoIDFromURL(videoURL)
	if id == "" {
		id = string(info.Data.ID)
	}
	filename := "tiktok_" + sanitizeFileComponent(id) + ".mp4"
	filePath := filepath.Join(d.outputDir, filename)

	if _, err := saveStream(filePath, res.Body, res.ContentLength, d.progress); err != nil {
		return nil, err
	}
	log.Printf("[DOWNLOAD] Download finished: %s", filePath)

	return buildRecord(recordInput{
		SourceURL:   videoURL,
		ID:          id,
		Filename:    filename,
		Dir:         d.outputDir,
		Title:       string(info.Data.Title),
		Author:      string(info.Data.Author.Nickname),
		Duration:    int(info.Data.Duration),
		DownloadURL: playURL,
		At:          d.now(),
	})
}

// videoIDFromURL returns the last path segment of a video page URL
func videoIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := u.Path
	return p[strings.LastIndex(p, "/")+1:]
}
