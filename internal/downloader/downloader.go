package downloader

import (
	"context"

	"github.com/artur/tiksaver/internal/model"
)

// Downloader fetches one video page URL into a local file.
// A nil record always comes with a non-nil error.
type Downloader interface {
	// CanHandle reports whether the downloader understands the URL
	CanHandle(videoURL string) bool

	// Download saves the video and describes what was written
	Download(ctx context.Context, videoURL string) (*model.VideoRecord, error)
}
