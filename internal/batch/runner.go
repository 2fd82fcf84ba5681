package batch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/artur/tiksaver/internal/downloader"
	"github.com/artur/tiksaver/internal/model"
	"github.com/artur/tiksaver/internal/ui"
)

// DefaultDelay is the pause between two consecutive URLs
const DefaultDelay = 2 * time.Second

// History stores runs and their successful downloads
type History interface {
	StartRun(total int) (string, error)
	RecordDownload(runID string, record *model.VideoRecord) error
	FinishRun(runID string, succeeded, failed int) error
}

// Notifier is told about every finished run
type Notifier interface {
	Notify(ctx context.Context, summary *Summary) error
}

// Runner downloads a list of URLs one after another
type Runner struct {
	downloaders []downloader.Downloader
	downloadDir string
	outputPath  string
	delay       time.Duration
	out         io.Writer
	history     History
	notifier    Notifier
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a Runner. The first downloader whose CanHandle accepts a
// URL is used for it, so catch-all downloaders go last.
func NewRunner(outputPath, downloadDir string, delay time.Duration, downloaders ...downloader.Downloader) *Runner {
	return &Runner{
		downloaders: downloaders,
		downloadDir: downloadDir,
		outputPath:  outputPath,
		delay:       delay,
		out:         os.Stdout,
		sleep:       sleepContext,
	}
}

// SetOutput sets where progress lines and the summary are printed
func (r *Runner) SetOutput(w io.Writer) {
	r.out = w
}

// SetHistory enables recording runs in h
func (r *Runner) SetHistory(h History) {
	r.history = h
}

// SetNotifier enables sending the summary through n
func (r *Runner) SetNotifier(n Notifier) {
	r.notifier = n
}

// Run attempts every URL exactly once, in order. A failed URL never stops
// the batch; only writing the JSON output can make Run return an error.
func (r *Runner) Run(ctx context.Context, urls []string) (*Summary, error) {
	fmt.Fprintln(r.out, ui.ProcessingStyle.Render(fmt.Sprintf("Starting download of %d videos...", len(urls))))

	runID := r.startRun(len(urls))

	var records []*model.VideoRecord
	succeeded := 0

	for i, u := range urls {
		n := i + 1
		fmt.Fprintf(r.out, "\n[%d/%d] Processing: %s\n", n, len(urls), u)

		record, err := r.downloadOne(ctx, u)
		if err != nil {
			fmt.Fprintln(r.out, ui.ErrorStyle.Render(fmt.Sprintf("✗ Failed to download video %d", n)))
		} else {
			succeeded++
			records = append(records, record)
			fmt.Fprintln(r.out, ui.SuccessStyle.Render(fmt.Sprintf("✓ Downloaded video %d", n)))
			fmt.Fprintf(r.out, "Video location: %s\n", record.AbsolutePath)
			r.recordDownload(runID, record)
		}

		if n < len(urls) {
			fmt.Fprintf(r.out, "Waiting %s before the next video...\n", r.delay)
			if err := r.sleep(ctx, r.delay); err != nil {
				log.Printf("[BATCH] Stopping after %d of %d: %v", n, len(urls), err)
				break
			}
		}
	}

	summary := &Summary{
		Total:     len(urls),
		Succeeded: succeeded,
		Failed:    len(urls) - succeeded,
		Records:   records,
		RunID:     runID,
	}

	absDir, err := filepath.Abs(r.downloadDir)
	if err != nil {
		absDir = r.downloadDir
	}
	summary.DownloadDir = absDir

	if len(records) > 0 {
		path, err := WriteRecords(r.outputPath, records)
		if err != nil {
			log.Printf("[BATCH] Failed to save records: %v", err)
			r.finishRun(summary)
			return nil, err
		}
		summary.OutputPath = path
		fmt.Fprintf(r.out, "\n%s\n", ui.SuccessStyle.Render("✓ Data saved to: "+path))
	}

	r.finishRun(summary)
	printSummary(r.out, summary)

	if r.notifier != nil {
		// a stopped batch still reports what it got through
		if err := r.notifier.Notify(context.WithoutCancel(ctx), summary); err != nil {
			log.Printf("[BATCH] Failed to send notification: %v", err)
		}
	}

	return summary, nil
}

func (r *Runner) downloadOne(ctx context.Context, videoURL string) (*model.VideoRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, d := range r.downloaders {
		if d.CanHandle(videoURL) {
			return d.Download(ctx, videoURL)
		}
	}

	log.Printf("[BATCH] No downloader for %s", videoURL)
	return nil, fmt.Errorf("unsupported URL: %s", videoURL)
}

func (r *Runner) startRun(total int) string {
	if r.history == nil {
		return ""
	}
	runID, err := r.history.StartRun(total)
	if err != nil {
		log.Printf("[BATCH] Failed to start history run: %v", err)
		return ""
	}
	return runID
}

func (r *Runner) recordDownload(runID string, record *model.VideoRecord) {
	if r.history == nil || runID == "" {
		return
	}
	if err := r.history.RecordDownload(runID, record); err != nil {
		log.Printf("[BATCH] Failed to record download: %v", err)
	}
}

func (r *Runner) finishRun(s *Summary) {
	if r.history == nil || s.RunID == "" {
		return
	}
	if err := r.history.FinishRun(s.RunID, s.Succeeded, s.Failed); err != nil {
		log.Printf("[BATCH] Failed to finish history run: %v", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
