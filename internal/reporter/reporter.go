package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/dupsweep/internal/cleaner"
	"github.com/fenilsonani/dupsweep/internal/config"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/scanner"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// ParseFormat validates a format name from the command line
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return f, nil
	case "":
		return FormatSummary, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// ReportScan writes a scan session snapshot
func (r *Reporter) ReportScan(snap scanner.SessionSnapshot) error {
	switch r.format {
	case FormatTable:
		return r.scanTable(snap)
	case FormatJSON:
		return r.encodeJSON(newScanReport(snap))
	case FormatYAML:
		return r.encodeYAML(newScanReport(snap))
	case FormatSummary:
		return r.scanSummary(snap)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// ReportDeletion writes the outcome of a delete request
func (r *Reporter) ReportDeletion(report *models.DeletionReport) error {
	switch r.format {
	case FormatTable:
		return r.deletionTable(report)
	case FormatJSON:
		return r.encodeJSON(newDeletionView(report))
	case FormatYAML:
		return r.encodeYAML(newDeletionView(report))
	case FormatSummary:
		return r.deletionSummary(report)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// ReportSessions lists saved sessions, newest first
func (r *Reporter) ReportSessions(sessions []*config.SavedSession) error {
	switch r.format {
	case FormatJSON:
		return r.encodeJSON(sessions)
	case FormatYAML:
		return r.encodeYAML(sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(r.writer, "No saved sessions")
		return nil
	}
	fmt.Fprintf(r.writer, "%-36s | %-10s | %-8s | %s\n", "Session", "Status", "Groups", "Saved")
	fmt.Fprintln(r.writer, strings.Repeat("-", 80))
	for _, s := range sessions {
		fmt.Fprintf(r.writer, "%-36s | %-10s | %-8s | %s\n",
			s.ID, s.Status, humanize.Comma(int64(len(s.Groups))), humanize.Time(s.Timestamp))
	}
	return nil
}

// scanSummary generates a summary report
func (r *Reporter) scanSummary(snap scanner.SessionSnapshot) error {
	groups := snap.Groups()
	redundant, size := redundancy(groups)

	fmt.Fprintf(r.writer, "=== Duplicate Scan Summary ===\n")
	fmt.Fprintf(r.writer, "Session: %s (%s in %s)\n", snap.ID, snap.Status, snap.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(r.writer, "Duplicate Groups: %s\n", humanize.Comma(int64(len(groups))))
	fmt.Fprintf(r.writer, "Redundant Items: %s", humanize.Comma(int64(redundant)))
	if size > 0 {
		fmt.Fprintf(r.writer, " (%s)", humanize.IBytes(uint64(size)))
	}
	fmt.Fprintf(r.writer, "\n\nBreakdown by Category:\n")

	for _, c := range snap.Categories {
		switch c.Status {
		case models.StatusCompleted:
			fmt.Fprintf(r.writer, "  %s: %s across %s\n", c.Category.DisplayName(),
				english.Plural(len(c.Groups), "group", "groups"),
				english.Plural(c.ItemsSeen, "item", "items"))
		case models.StatusFailed:
			// Partial results are still listed for failed categories
			fmt.Fprintf(r.writer, "  %s: %s (%s found before failing): %s\n", c.Category.DisplayName(),
				c.Status, english.Plural(len(c.Groups), "group", "groups"), c.Error)
		default:
			fmt.Fprintf(r.writer, "  %s: %s", c.Category.DisplayName(), c.Status)
			if c.Error != "" {
				fmt.Fprintf(r.writer, ": %s", c.Error)
			}
			fmt.Fprintln(r.writer)
		}
	}

	return nil
}

// scanTable generates a table report, one row per duplicate item
func (r *Reporter) scanTable(snap scanner.SessionSnapshot) error {
	fmt.Fprintf(r.writer, "%-16s | %-5s | %-40s | %-12s | %s\n", "Category", "Group", "Item", "Size", "Role")
	fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 100))

	var total int
	for gi, g := range snap.Groups() {
		for i, item := range g.Items {
			role := "keep"
			if i > 0 {
				role = "duplicate"
				total++
			}
			size := "-"
			if item.Size() > 0 {
				size = humanize.IBytes(uint64(item.Size()))
			}
			fmt.Fprintf(r.writer, "%-16s | %-5d | %-40s | %-12s | %s\n",
				g.Category.DisplayName(), gi+1, truncate(itemLabel(item), 40), size, role)
		}
	}

	fmt.Fprintf(r.writer, "\n%s\n", strings.Repeat("-", 100))
	fmt.Fprintf(r.writer, "Total: %s\n", english.Plural(total, "redundant item", "redundant items"))

	return nil
}

func (r *Reporter) deletionSummary(report *models.DeletionReport) error {
	title := "Deletion Summary"
	if report.DryRun {
		title = "Deletion Summary (dry run)"
	}
	fmt.Fprintf(r.writer, "=== %s ===\n", title)
	fmt.Fprintf(r.writer, "Requested: %s\n", humanize.Comma(int64(len(report.Outcomes))))
	fmt.Fprintf(r.writer, "Deleted: %s\n", humanize.Comma(int64(report.SucceededCount())))
	fmt.Fprintf(r.writer, "Failed: %s\n", humanize.Comma(int64(report.FailedCount())))
	fmt.Fprintf(r.writer, "Duration: %s\n", report.Duration.Round(time.Millisecond))

	byCategory := report.ByCategory()
	if len(byCategory) > 0 {
		fmt.Fprintf(r.writer, "\nBreakdown by Category:\n")
		for _, c := range models.AllCategories() {
			counts, ok := byCategory[c]
			if !ok {
				continue
			}
			fmt.Fprintf(r.writer, "  %s: %d deleted, %d failed\n", c.DisplayName(), counts[0], counts[1])
		}
	}

	if summary := cleaner.FormatErrorSummary(report); summary != "" {
		fmt.Fprintf(r.writer, "\n%s", summary)
	}

	return nil
}

func (r *Reporter) deletionTable(report *models.DeletionReport) error {
	fmt.Fprintf(r.writer, "%-16s | %-40s | %-8s | %s\n", "Category", "Item", "Result", "Detail")
	fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 100))

	for _, o := range report.Outcomes {
		result, detail := "deleted", ""
		if !o.Succeeded {
			result = "failed"
			if de := cleaner.CategorizeError(o.ItemID, o.Category, o.Err); de != nil {
				detail = de.Reason.String()
			}
		}
		fmt.Fprintf(r.writer, "%-16s | %-40s | %-8s | %s\n",
			o.Category.DisplayName(), truncate(o.ItemID, 40), result, detail)
	}

	fmt.Fprintf(r.writer, "\n%s\n", strings.Repeat("-", 100))
	fmt.Fprintf(r.writer, "Total: %d deleted, %d failed\n", report.SucceededCount(), report.FailedCount())

	return nil
}

// Encode writes any value as JSON for the JSON format and as YAML otherwise
func (r *Reporter) Encode(v any) error {
	if r.format == FormatJSON {
		return r.encodeJSON(v)
	}
	return r.encodeYAML(v)
}

func (r *Reporter) encodeJSON(v any) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (r *Reporter) encodeYAML(v any) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(v)
}

// SaveScanToFile saves a scan report to a file
func SaveScanToFile(snap scanner.SessionSnapshot, path string, format OutputFormat) error {
	return saveToFile(path, format, func(r *Reporter) error {
		return r.ReportScan(snap)
	})
}

// SaveDeletionToFile saves a deletion report to a file
func SaveDeletionToFile(report *models.DeletionReport, path string, format OutputFormat) error {
	return saveToFile(path, format, func(r *Reporter) error {
		return r.ReportDeletion(report)
	})
}

func saveToFile(path string, format OutputFormat, write func(*Reporter) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(New(file, format)); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func redundancy(groups []models.DuplicateGroup) (int, int64) {
	var count int
	var size int64
	for _, g := range groups {
		for _, item := range g.Redundant() {
			count++
			size += item.Size()
		}
	}
	return count, size
}

func itemLabel(item models.Item) string {
	if item.DisplayName != "" {
		return item.DisplayName
	}
	return item.ID
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-(n-3):]
}
