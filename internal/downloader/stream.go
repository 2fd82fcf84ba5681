package downloader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/artur/tiksaver/internal/model"
	"github.com/schollz/progressbar/v3"
)

const (
	chunkSize = 8192

	dirPermissions = 0755
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// sanitizeFileComponent keeps a URL segment usable as part of a file name
func sanitizeFileComponent(s string) string {
	return unsafeFileChars.ReplaceAllString(s, "_")
}

// ensureDir creates dir if it doesn't exist
func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, dirPermissions)
	}
	return nil
}

func newProgressBar(total int64, w io.Writer, label string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
	)
}

// saveStream copies body into dst in fixed-size chunks. A progress bar is
// rendered to progress when total is known; total <= 0 disables it.
// A partially written file is left in place on error.
func saveStream(dst string, body io.Reader, total int64, progress io.Writer) (int64, error) {
	if _, err := os.Stat(dst); err == nil {
		log.Printf("[DOWNLOAD] Overwriting existing file %s", dst)
	}

	f, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	var bar *progressbar.ProgressBar
	if total > 0 && progress != nil {
		bar = newProgressBar(total, progress, filepath.Base(dst))
	}

	var written int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				return written, fmt.Errorf("failed to write file: %w", werr)
			}
			written += int64(n)
			if bar != nil {
				bar.Add(n)
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			f.Close()
			return written, fmt.Errorf("failed to read stream: %w", rerr)
		}
	}

	if err := f.Close(); err != nil {
		return written, fmt.Errorf("failed to close file: %w", err)
	}
	if bar != nil {
		bar.Finish()
	}

	return written, nil
}

// recordInput carries what a source knows about a saved video
type recordInput struct {
	SourceURL   string
	ID          string
	Filename    string
	Dir         string
	Title       string
	Author      string
	Duration    int
	DownloadURL string
	At          time.Time
}

// buildRecord describes a file already written to in.Dir/in.Filename.
// FileSize comes from the file on disk, not from what the server declared.
func buildRecord(in recordInput) (*model.VideoRecord, error) {
	filePath := filepath.Join(in.Dir, in.Filename)

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat downloaded file: %w", err)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	absDir, err := filepath.Abs(in.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	return &model.VideoRecord{
		URL:            in.SourceURL,
		ID:             in.ID,
		Filename:       in.Filename,
		DownloadPath:   filePath,
		AbsolutePath:   absPath,
		FolderLocation: absDir,
		Title:          in.Title,
		Author:         in.Author,
		Duration:       in.Duration,
		DownloadURL:    in.DownloadURL,
		FileSize:       info.Size(),
		DownloadTime:   in.At.Format(model.TimeLayout),
	}, nil
}
