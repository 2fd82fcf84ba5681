package downloader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/artur/tiksaver/internal/tikwm"
)

// newTestServer serves the tikwm API on /api/ and the media on /video.mp4
func newTestServer(t *testing.T, apiStatus int, apiBody func(base string) string, media []byte, mediaStatus int) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(apiStatus)
		w.Write([]byte(apiBody(srv.URL)))
	})
	mux.HandleFunc("/video.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(media)))
		w.WriteHeader(mediaStatus)
		w.Write(media)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestDownloader(srv *httptest.Server, dir string) *TikTokDownloader {
	api := tikwm.NewClient(srv.URL+"/api/", time.Second)
	d := NewTikTokDownloader(api, dir, time.Second)
	d.now = func() time.Time { return time.Date(2025, 10, 21, 14, 30, 0, 0, time.Local) }
	return d
}

func playBody(base string) string {
	return `{"data": {"play": "` + base + `/video.mp4", "title": "T", "author": {"nickname": "A"}, "duration": 5}}`
}

func TestTikTokDownloader_Download(t *testing.T) {
	media := bytes.Repeat([]byte{0xAB}, 1024)
	srv := newTestServer(t, http.StatusOK, playBody, media, http.StatusOK)
	dir := filepath.Join(t.TempDir(), "downloads")

	d := newTestDownloader(srv, dir)
	var progress bytes.Buffer
	d.SetProgressOutput(&progress)

	record, err := d.Download(context.Background(), "https://www.tiktok.com/@user/video/7563488421830823176")
	if err != nil {
		t.Fatalf("Download() unexpected error: %v", err)
	}

	filePath := filepath.Join(dir, "tiktok_7563488421830823176.mp4")
	info, err := os.Stat(filePath)
	if err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	if info.Size() != 1024 {
		t.Errorf("file size = %d, want 1024", info.Size())
	}
	if record.FileSize != info.Size() {
		t.Errorf("record FileSize = %d, file size = %d", record.FileSize, info.Size())
	}

	if record.Title != "T" {
		t.Errorf("Title = %q, want T", record.Title)
	}
	if record.Author != "A" {
		t.Errorf("Author = %q, want A", record.Author)
	}
	if record.Duration != 5 {
		t.Errorf("Duration = %d, want 5", record.Duration)
	}
	if record.ID != "7563488421830823176" {
		t.Errorf("ID = %q", record.ID)
	}
	if record.Filename != "tiktok_7563488421830823176.mp4" {
		t.Errorf("Filename = %q", record.Filename)
	}
	if record.DownloadPath != filePath {
		t.Errorf("DownloadPath = %q, want %q", record.DownloadPath, filePath)
	}
	if !filepath.IsAbs(record.AbsolutePath) || !filepath.IsAbs(record.FolderLocation) {
		t.Errorf("expected absolute paths, got %q and %q", record.AbsolutePath, record.FolderLocation)
	}
	if record.DownloadURL != srv.URL+"/video.mp4" {
		t.Errorf("DownloadURL = %q", record.DownloadURL)
	}
	if record.DownloadTime != "2025-10-21 14:30:00" {
		t.Errorf("DownloadTime = %q", record.DownloadTime)
	}
	if progress.Len() == 0 {
		t.Error("expected progress output for a sized download")
	}
}

func TestTikTokDownloader_LooselyTypedMetadata(t *testing.T) {
	body := func(base string) string {
		return `{"code":0,"data":{"id":42,"play":"` + base + `/video.mp4","title":"T","size":"1024",` +
			`"author":{"id":123,"nickname":"A"},"duration":5.0}}`
	}
	srv := newTestServer(t, http.StatusOK, body, bytes.Repeat([]byte{0x01}, 1024), http.StatusOK)

	record, err := newTestDownloader(srv, t.TempDir()).Download(context.Background(), "https://www.tiktok.com/@user/video/42")
	if err != nil {
		t.Fatalf("Download() unexpected error: %v", err)
	}
	if record.FileSize != 1024 {
		t.Errorf("FileSize = %d, want 1024", record.FileSize)
	}
	if record.Author != "A" || record.Duration != 5 {
		t.Errorf("unexpected metadata: author=%q duration=%d", record.Author, record.Duration)
	}
}

func TestTikTokDownloader_MetadataNon200(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, playBody, []byte("x"), http.StatusOK)
	dir := t.TempDir()

	record, err := newTestDownloader(srv, dir).Download(context.Background(), "https://www.tiktok.com/@user/video/1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if record != nil {
		t.Errorf("expected nil record, got %+v", record)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files written, found %d", len(entries))
	}
}

func TestTikTokDownloader_MissingPlayURL(t *testing.T) {
	bodies := map[string]string{
		"no data":    `{"code": -1, "msg": "Url parsing is failed!"}`,
		"empty play": `{"data": {"play": "", "title": "T"}}`,
		"no play":    `{"data": {"title": "T"}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, func(string) string { return body }, []byte("x"), http.StatusOK)
			dir := t.TempDir()

			record, err := newTestDownloader(srv, dir).Download(context.Background(), "https://www.tiktok.com/@user/video/1")
			if !errors.Is(err, ErrNoPlayURL) {
				t.Errorf("expected ErrNoPlayURL, got %v", err)
			}
			if record != nil {
				t.Errorf("expected nil record, got %+v", record)
			}
		})
	}
}

func TestTikTokDownloader_MediaNon200(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, playBody, []byte("gone"), http.StatusForbidden)
	dir := t.TempDir()

	record, err := newTestDownloader(srv, dir).Download(context.Background(), "https://www.tiktok.com/@user/video/1")
	if !errors.Is(err, ErrBadStatus) {
		t.Errorf("expected ErrBadStatus, got %v", err)
	}
	if record != nil {
		t.Errorf("expected nil record, got %+v", record)
	}
	if _, err := os.Stat(filepath.Join(dir, "tiktok_1.mp4")); !os.IsNotExist(err) {
		t.Error("expected no file for failed media request")
	}
}

func TestTikTokDownloader_NoContentLength(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(playBody(srv.URL)))
	})
	mux.HandleFunc("/video.mp4", func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 4; i++ {
			w.Write(bytes.Repeat([]byte{0x01}, 100))
			flusher.Flush()
		}
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	d := newTestDownloader(srv, dir)
	var progress bytes.Buffer
	d.SetProgressOutput(&progress)

	record, err := d.Download(context.Background(), "https://www.tiktok.com/@user/video/42")
	if err != nil {
		t.Fatalf("Download() unexpected error: %v", err)
	}
	if record.FileSize != 400 {
		t.Errorf("FileSize = %d, want 400", record.FileSize)
	}
	if progress.Len() != 0 {
		t.Errorf("expected no progress output without content length, got %q", progress.String())
	}
}

func TestTikTokDownloader_CreatesOutputDir(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, playBody, []byte("data"), http.StatusOK)
	dir := filepath.Join(t.TempDir(), "nested", "downloads")

	if _, err := newTestDownloader(srv, dir).Download(context.Background(), "https://www.tiktok.com/@user/video/9"); err != nil {
		t.Fatalf("Download() unexpected error: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("expected output dir to be created, err=%v", err)
	}
}

func TestVideoIDFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.tiktok.com/@kemoooonnnnn/video/7563488421830823176", "7563488421830823176"},
		{"https://www.tiktok.com/@user/video/123?is_from_webapp=1", "123"},
		{"https://vm.tiktok.com/ZMabc123/", ""},
		{"https://vm.tiktok.com/ZMabc123", "ZMabc123"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := videoIDFromURL(tt.url); got != tt.expected {
				t.Errorf("videoIDFromURL(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFileComponent(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"7563488421830823176", "7563488421830823176"},
		{"a b", "a_b"},
		{"..\\evil", ".._evil"},
		{"ok-name_1.x", "ok-name_1.x"},
	}

	for _, tt := range tests {
		if got := sanitizeFileComponent(tt.in); got != tt.expected {
			t.Errorf("sanitizeFileComponent(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestTikTokDownloader_CanHandle(t *testing.T) {
	d := NewTikTokDownloader(tikwm.NewClient("", 0), t.TempDir(), 0)

	if !d.CanHandle("https://www.tiktok.com/@user/video/1") {
		t.Error("expected tiktok URL to be handled")
	}
	if d.CanHandle("   ") {
		t.Error("blank URL should not be handled")
	}
}
