package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/artur/tiksaver/internal/batch"
	"github.com/artur/tiksaver/internal/config"
	"github.com/artur/tiksaver/internal/database"
	"github.com/artur/tiksaver/internal/database/repository"
	"github.com/artur/tiksaver/internal/downloader"
	"github.com/artur/tiksaver/internal/notify"
	"github.com/artur/tiksaver/internal/tikwm"
	"github.com/artur/tiksaver/internal/ui"
)

// version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	if err := config.LoadDotenv(); err != nil {
		log.Printf("%v", err)
	}

	var cfg config.Config
	ctx := kong.Parse(&cfg,
		kong.Name("tiksaver"),
		kong.Description("Download TikTok videos through the tikwm API and record them as JSON."),
		kong.Vars{"version": version},
	)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.FatalIfErrorf(run(runCtx, &cfg, os.Stdout))
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	urls, err := cfg.TargetURLs()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ui.HeaderStyle.Render("tiksaver "+version))

	runner := batch.NewRunner(cfg.OutputFile, cfg.DownloadDir, cfg.Delay, newDownloaders(cfg, out)...)
	runner.SetOutput(out)

	var history *repository.History
	if cfg.DBPath != "" {
		db, err := database.New(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		history = repository.NewHistory(db.DB)
		runner.SetHistory(history)
	}

	if cfg.NotificationsEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			// Downloads still run without notifications
			log.Printf("[NOTIFY] Notifications disabled: %v", err)
		} else {
			runner.SetNotifier(tg)
		}
	}

	summary, err := runner.Run(ctx, urls)
	if err != nil {
		return err
	}

	if history != nil {
		printHistory(out, history, summary.RunID)
	}

	return nil
}

// topAuthors is how many authors the history footer lists
const topAuthors = 3

func printHistory(out io.Writer, history *repository.History, runID string) {
	runs, downloads, err := history.Totals()
	if err != nil {
		log.Printf("[DB] Failed to read totals: %v", err)
		return
	}
	fmt.Fprintln(out, ui.InfoStyle.Render(fmt.Sprintf("History: %d downloads across %d runs", downloads, runs)))

	if runID == "" {
		return
	}

	report, err := history.Report(runID, topAuthors)
	if err != nil {
		log.Printf("[DB] Failed to read run %s: %v", runID, err)
		return
	}
	fmt.Fprintln(out, ui.InfoStyle.Render(fmt.Sprintf("Run %s: %d of %d stored", report.Run.ID, report.Stored, report.Run.Total)))

	if len(report.TopAuthors) == 0 {
		return
	}
	names := make([]string, 0, len(report.TopAuthors))
	for _, a := range report.TopAuthors {
		names = append(names, fmt.Sprintf("%s (%d)", a.Author, a.DownloadCount))
	}
	fmt.Fprintln(out, ui.InfoStyle.Render("Top authors: "+strings.Join(names, ", ")))
}

// newDownloaders lists sources in routing order; TikTok accepts everything
// so it goes last.
func newDownloaders(cfg *config.Config, out io.Writer) []downloader.Downloader {
	api := tikwm.NewClient(cfg.APIEndpoint, cfg.MetadataTimeout)
	log.Printf("[TIKWM] Using endpoint %s", api.Endpoint())
	tiktok := downloader.NewTikTokDownloader(api, cfg.DownloadDir, cfg.MediaTimeout)
	youtube := downloader.NewYouTubeDownloader(cfg.DownloadDir)

	if !cfg.NoProgress {
		tiktok.SetProgressOutput(out)
		youtube.SetProgressOutput(out)
	}

	return []downloader.Downloader{youtube, tiktok}
}
