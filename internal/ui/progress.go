package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"golang.org/x/term"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/progress"
)

const (
	scanBarTemplate  = `{{string . "prefix"}} {{bar . "[" "=" ">" " " "]"}} {{percent .}} {{etime .}}`
	cleanBarTemplate = `{{string . "prefix"}} {{counters .}} {{bar . "[" "=" ">" " " "]"}} {{percent .}} {{etime .}}`

	// scanSteps is the resolution of the scan bar, which tracks a fraction
	scanSteps = 1000
)

// LiveProgress renders reporter updates on a terminal. On anything that is
// not a terminal it prints one plain line per phase change instead.
type LiveProgress struct {
	w        io.Writer
	reporter *progress.ProgressReporter
	tty      bool

	mu       sync.Mutex
	scanBar  *pb.ProgressBar
	cleanBar *pb.ProgressBar
	lastLine string
}

// NewLiveProgress creates a live progress display writing to w
func NewLiveProgress(w io.Writer, reporter *progress.ProgressReporter) *LiveProgress {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}

	return &LiveProgress{
		w:        w,
		reporter: reporter,
		tty:      tty,
	}
}

// Start begins rendering in the background. The returned func stops
// rendering, finishes any open bar and waits for the renderer to exit.
func (lp *LiveProgress) Start() (stop func()) {
	updates := lp.reporter.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for u := range updates {
			lp.handle(u)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			lp.reporter.Unsubscribe(updates)
			<-done
			lp.finish()
		})
	}
}

func (lp *LiveProgress) handle(u progress.Update) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	switch p := u.(type) {
	case *progress.ScanProgress:
		if !lp.tty {
			lp.println(progress.FormatScanProgress(p))
			return
		}
		if lp.scanBar == nil {
			lp.scanBar = lp.newBar(scanBarTemplate, scanSteps)
		}
		lp.scanBar.Set("prefix", fmt.Sprintf("%-28s", p.CurrentTask))
		lp.scanBar.SetCurrent(int64(p.OverallProgress * scanSteps))
		if p.Phase == progress.PhaseComplete || p.Phase == progress.PhaseError {
			lp.scanBar.Finish()
			lp.scanBar = nil
		}

	case *progress.CleanProgress:
		if !lp.tty {
			lp.println(progress.FormatCleanProgress(p))
			return
		}
		if lp.cleanBar == nil {
			lp.cleanBar = lp.newBar(cleanBarTemplate, p.Total)
		}
		prefix := "Deleting"
		if p.DryRun {
			prefix = "Deleting (dry run)"
		}
		lp.cleanBar.Set("prefix", prefix)
		lp.cleanBar.SetTotal(int64(p.Total))
		lp.cleanBar.SetCurrent(int64(p.Processed))
		if p.Phase == progress.PhaseComplete || p.Phase == progress.PhaseError {
			lp.cleanBar.Finish()
			lp.cleanBar = nil
		}
	}
}

func (lp *LiveProgress) newBar(tmpl string, total int) *pb.ProgressBar {
	bar := pb.ProgressBarTemplate(tmpl).New(total)
	bar.SetWriter(lp.w)
	bar.SetRefreshRate(100 * time.Millisecond)
	if w, _, err := term.GetSize(int(lp.w.(*os.File).Fd())); err == nil && w > 0 {
		bar.SetWidth(w)
	}
	return bar.Start()
}

// println skips repeats so polling publishers don't flood logs
func (lp *LiveProgress) println(line string) {
	if line == lp.lastLine {
		return
	}
	lp.lastLine = line
	fmt.Fprintln(lp.w, line)
}

func (lp *LiveProgress) finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if lp.scanBar != nil {
		lp.scanBar.Finish()
		lp.scanBar = nil
	}
	if lp.cleanBar != nil {
		lp.cleanBar.Finish()
		lp.cleanBar = nil
	}
}

// maxTreeItems caps the items printed per group
const maxTreeItems = 5

// PrintGroupTree prints duplicate groups as a tree, one branch per category
func PrintGroupTree(w io.Writer, groups []models.DuplicateGroup) {
	byCategory := make(map[models.Category][]models.DuplicateGroup)
	for _, g := range groups {
		byCategory[g.Category] = append(byCategory[g.Category], g)
	}

	redundant := 0
	for _, category := range models.AllCategories() {
		catGroups := byCategory[category]
		if len(catGroups) == 0 {
			continue
		}

		fmt.Fprintf(w, "\n╭─ %s (%s)\n", category.DisplayName(),
			english.Plural(len(catGroups), "group", "groups"))

		for gi, g := range catGroups {
			redundant += len(g.Items) - 1
			isLastGroup := gi == len(catGroups)-1

			connector, indent := "├", "│   "
			if isLastGroup {
				connector, indent = "╰", "    "
			}

			header := fmt.Sprintf("%s (%d copies)", g.Key, len(g.Items))
			if size := g.TotalSize(); size > 0 {
				header += " " + humanize.IBytes(uint64(size))
			}
			fmt.Fprintf(w, "%s── %s\n", connector, header)

			shown := min(len(g.Items), maxTreeItems)
			for i := 0; i < shown; i++ {
				item := g.Items[i]
				itemConnector := "├"
				if i == shown-1 && len(g.Items) <= maxTreeItems {
					itemConnector = "╰"
				}
				role := "duplicate"
				if i == 0 {
					role = "keep"
				}
				fmt.Fprintf(w, "%s%s── [%s] %s\n", indent, itemConnector, role, treeLabel(item))
			}
			if len(g.Items) > maxTreeItems {
				fmt.Fprintf(w, "%s╰── ... and %d more\n", indent, len(g.Items)-maxTreeItems)
			}
		}
	}

	fmt.Fprintf(w, "\n════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "Total: %s | %d redundant\n", english.Plural(len(groups), "group", "groups"), redundant)
}

func treeLabel(item models.Item) string {
	if item.Media != nil && item.Media.Path != "" {
		return filepath.Base(item.Media.Path)
	}
	if item.DisplayName != "" {
		return item.DisplayName
	}
	return item.ID
}
