package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultURLs is used when no URL is given on the command line or in a file
var DefaultURLs = []string{
	"https://www.tiktok.com/@kemoooonnnnn/video/7563488421830823176",
	"https://www.tiktok.com/@kemoooonnnnn/video/7552568040936738056",
	"https://www.tiktok.com/@kemoooonnnnn/video/7545085888359927047",
}

// Config holds everything a batch run needs. Fields are parsed by kong from
// flags, falling back to environment variables.
type Config struct {
	URLs     []string `arg:"" optional:"" name:"url" help:"Video page URLs to download."`
	URLsFile string   `name:"urls-file" help:"File with one URL per line ('#' starts a comment)." env:"TIKSAVER_URLS_FILE" type:"existingfile"`

	DownloadDir string        `name:"dir" help:"Folder videos are saved to." default:"downloads" env:"TIKSAVER_DOWNLOAD_DIR"`
	OutputFile  string        `name:"output" help:"JSON file the records are written to." default:"tiktok_videos.json" env:"TIKSAVER_OUTPUT"`
	Delay       time.Duration `help:"Pause between two videos." default:"2s" env:"TIKSAVER_DELAY"`

	APIEndpoint     string        `name:"api-endpoint" help:"Extraction API URL." default:"https://www.tikwm.com/api/" env:"TIKSAVER_API_ENDPOINT"`
	MetadataTimeout time.Duration `name:"metadata-timeout" help:"Timeout of a metadata request." default:"15s"`
	MediaTimeout    time.Duration `name:"media-timeout" help:"Timeout for the media host to answer." default:"30s"`
	NoProgress      bool          `name:"no-progress" help:"Don't draw download progress bars."`

	DBPath string `name:"db" help:"SQLite file for download history (disabled when empty)." env:"TIKSAVER_DB_PATH"`

	TelegramToken  string `name:"telegram-token" help:"Bot token for summary notifications." env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `name:"telegram-chat-id" help:"Chat receiving summary notifications." env:"TELEGRAM_CHAT_ID"`
}

// LoadDotenv reads a .env file into the environment if one exists.
// Variables already set take precedence.
func LoadDotenv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Validate checks the configuration for values a run cannot work with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DownloadDir) == "" {
		return errors.New("download dir must not be empty")
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return errors.New("output file must not be empty")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative: %s", c.Delay)
	}
	if c.MetadataTimeout < 0 || c.MediaTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return errors.New("telegram chat id is required when a token is set")
	}
	return nil
}

// NotificationsEnabled reports whether a Telegram summary should be sent
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramToken != ""
}

// TargetURLs returns the URLs to process: arguments first, then the URL
// file, or DefaultURLs when neither yields any.
func (c *Config) TargetURLs() ([]string, error) {
	urls := make([]string, 0, len(c.URLs))
	for _, u := range c.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}

	if c.URLsFile != "" {
		fromFile, err := ReadURLs(c.URLsFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}

	if len(urls) == 0 {
		return append([]string(nil), DefaultURLs...), nil
	}
	return urls, nil
}

// ReadURLs reads one URL per line, skipping blank lines and '#' comments
func ReadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file: %w", err)
	}
	return urls, nil
}
