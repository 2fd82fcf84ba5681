package batch

import (
	"fmt"
	"io"
	"strings"

	"github.com/artur/tiksaver/internal/model"
	"github.com/artur/tiksaver/internal/ui"
)

// Summary is the outcome of one batch run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Records   []*model.VideoRecord

	// DownloadDir is the absolute download folder
	DownloadDir string
	// OutputPath is the absolute JSON path, empty when nothing was written
	OutputPath string
	// RunID identifies the run in the history store, empty without history
	RunID string
}

// Text renders the summary as plain text
func (s *Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total videos: %d\n", s.Total)
	fmt.Fprintf(&b, "Succeeded: %d\n", s.Succeeded)
	fmt.Fprintf(&b, "Failed: %d\n", s.Failed)

	if s.Succeeded > 0 {
		fmt.Fprintf(&b, "\nVideo folder: %s\n", s.DownloadDir)
		if s.OutputPath != "" {
			fmt.Fprintf(&b, "JSON file: %s\n", s.OutputPath)
		}
		b.WriteString("\nDownloaded files:\n")
		for _, r := range s.Records {
			fmt.Fprintf(&b, "• %s\n", r.Filename)
		}
	}
	return b.String()
}

func printSummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "\n%s\n", ui.HeaderStyle.Render("=== SUMMARY ==="))
	fmt.Fprintf(w, "Total videos: %d\n", s.Total)
	fmt.Fprintf(w, "%s\n", ui.SuccessStyle.Render(fmt.Sprintf("Succeeded: %d", s.Succeeded)))
	fmt.Fprintf(w, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("Failed: %d", s.Failed)))

	if s.Succeeded == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", ui.InfoStyle.Render("FILE LOCATIONS:"))
	fmt.Fprintf(w, "• Video folder: %s\n", s.DownloadDir)
	if s.OutputPath != "" {
		fmt.Fprintf(w, "• JSON file: %s\n", s.OutputPath)
	}

	fmt.Fprintf(w, "\n%s\n", ui.InfoStyle.Render("DOWNLOADED FILES:"))
	for _, r := range s.Records {
		fmt.Fprintf(w, "• %s\n", r.Filename)
		fmt.Fprintf(w, "  %s\n", r.AbsolutePath)
	}
}
