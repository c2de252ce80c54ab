package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fenilsonani/dupsweep/internal/config"
	"github.com/fenilsonani/dupsweep/internal/logger"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/scanner"
	"github.com/fenilsonani/dupsweep/internal/store/sqlstore"
)

func seededConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.GetDefault()
	cfg.Sources.Library = filepath.Join(t.TempDir(), "library.db")

	lib, err := sqlstore.Open(cfg.Sources.Library, sqlstore.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := seedLibrary(context.Background(), lib, 3); err != nil {
		t.Fatal(err)
	}
	if err := lib.Close(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestEngineScanAndClean(t *testing.T) {
	cfg := seededConfig(t)

	eng, err := newEngine(cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	sess, err := eng.scanner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	snap := sess.Snapshot()

	wantGroups := map[models.Category]int{
		models.CategoryPhoto:         5,
		models.CategoryVideo:         2,
		models.CategoryContact:       2,
		models.CategoryCalendarEvent: 2,
	}
	for _, c := range snap.Categories {
		if c.Status != models.StatusCompleted {
			t.Errorf("%s status = %s", c.Category, c.Status)
		}
		if len(c.Groups) != wantGroups[c.Category] {
			t.Errorf("%s groups = %d, want %d", c.Category, len(c.Groups), wantGroups[c.Category])
		}
	}

	var redundant []models.Item
	for _, g := range snap.Groups() {
		redundant = append(redundant, g.Redundant()...)
	}
	if len(redundant) != 22 {
		t.Fatalf("redundant items = %d, want 22", len(redundant))
	}

	report := eng.executor.Delete(context.Background(), redundant)
	if report.SucceededCount() != 22 || report.FailedCount() != 0 {
		t.Fatalf("deleted %d, failed %d", report.SucceededCount(), report.FailedCount())
	}

	sess, err = eng.scanner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if groups := sess.Snapshot().Groups(); len(groups) != 0 {
		t.Errorf("rescan found %d groups after cleaning", len(groups))
	}
}

func TestEngineDeniedCategory(t *testing.T) {
	cfg := seededConfig(t)
	cfg.Permissions.Contacts = "denied"
	cfg.Categories.Calendar = false

	eng, err := newEngine(cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	if got := eng.scanner.Categories(); len(got) != 3 {
		t.Fatalf("Categories() = %v, want 3 enabled", got)
	}

	sess, err := eng.scanner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := sess.CategoryStatus(models.CategoryContact); got != models.StatusPermissionDenied {
		t.Errorf("contact status = %s, want Permission Denied", got)
	}
	if got := sess.CategoryStatus(models.CategoryPhoto); got != models.StatusCompleted {
		t.Errorf("photo status = %s", got)
	}
}

func TestEngineNotifiesAfterDelete(t *testing.T) {
	posts := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts <- r.Header.Get("X-Source")
	}))
	defer srv.Close()

	cfg := seededConfig(t)
	cfg.Notifications.Enabled = true
	cfg.Notifications.Webhook.URL = srv.URL
	cfg.Notifications.Webhook.Headers = map[string]string{"X-Source": "dupsweep"}

	eng, err := newEngine(cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	sess, err := eng.scanner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	report := eng.executor.Delete(context.Background(), sess.Snapshot().Groups()[0].Redundant())
	eng.notifier.DeletionFinished(context.Background(), report)

	select {
	case got := <-posts:
		if got != "dupsweep" {
			t.Errorf("X-Source = %q", got)
		}
	default:
		t.Fatal("no webhook call after a real deletion")
	}
}

func TestEngineDryRun(t *testing.T) {
	cfg := seededConfig(t)
	cfg.DryRun = true

	eng, err := newEngine(cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	sess, err := eng.scanner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	groups := sess.Snapshot().Groups()

	report := eng.executor.Delete(context.Background(), groups[0].Redundant())
	if !report.DryRun || report.FailedCount() != 0 {
		t.Errorf("dry run report = %+v", report)
	}

	n, err := eng.library.Count(context.Background(), models.CategoryPhoto)
	if err != nil {
		t.Fatal(err)
	}
	if n != 20 {
		t.Errorf("photo count after dry run = %d, want 20", n)
	}
}

func TestSavedSessionRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	group := models.DuplicateGroup{
		Key:      "k",
		Category: models.CategoryContact,
		Items: []models.Item{
			{ID: "a", Category: models.CategoryContact},
			{ID: "b", Category: models.CategoryContact},
		},
	}
	snap := scanner.SessionSnapshot{
		ID:        "s1",
		Status:    scanner.SessionCancelled,
		StartedAt: at,
		Categories: []scanner.CategorySnapshot{
			{Category: models.CategoryPhoto, Status: models.StatusCancelled},
			{Category: models.CategoryContact, Status: models.StatusFailed, Groups: []models.DuplicateGroup{group}, Error: "boom"},
		},
	}

	saved := savedSession(snap)
	if saved.Status != "Cancelled" || len(saved.Groups) != 1 || len(saved.Categories) != 2 {
		t.Fatalf("savedSession() = %+v", saved)
	}
	if got := saved.Redundant(); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Redundant() = %v", got)
	}

	back := snapshotFromSaved(saved)
	if back.Status != scanner.SessionCancelled {
		t.Errorf("status = %s", back.Status)
	}
	if back.Categories[1].Status != models.StatusFailed || back.Categories[1].Error != "boom" {
		t.Errorf("contact category = %+v", back.Categories[1])
	}
	if len(back.Categories[1].Groups) != 1 || len(back.Categories[0].Groups) != 0 {
		t.Errorf("groups not restored per category: %+v", back.Categories)
	}
}

func TestParseCategories(t *testing.T) {
	set, err := parseCategories("photos, contacts")
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 2 || !set[models.CategoryPhoto] || !set[models.CategoryContact] {
		t.Errorf("parseCategories() = %v", set)
	}

	if set, err := parseCategories(" "); err != nil || set != nil {
		t.Errorf("empty list = %v, %v", set, err)
	}
	if _, err := parseCategories("photos,faxes"); err == nil {
		t.Error("unknown category accepted")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~/lib.db", filepath.Join(home, "lib.db")},
		{"~", home},
		{"/abs/lib.db", "/abs/lib.db"},
		{"~other/lib.db", "~other/lib.db"},
	}

	for _, tt := range tests {
		got, err := expandHome(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanManifestFlagUsage(t *testing.T) {
	flag := newCleanCmd().Flags().Lookup("manifest")
	if flag == nil || !strings.Contains(flag.Usage, "plain-text") {
		t.Errorf("manifest flag usage = %+v, want it to name the plain-text layout", flag)
	}
}

func TestScanAndCleanCommands(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := seededConfig(t)
	cfgFile := filepath.Join(home, "config.yaml")
	if err := config.Save(cfg, cfgFile); err != nil {
		t.Fatal(err)
	}

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetIn(strings.NewReader(""))
		rootCmd.SetArgs(append(args, "--config", cfgFile))
		if err := rootCmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	out := run("scan", "--format", "summary")
	if !strings.Contains(out, "Duplicate Groups: 11") {
		t.Errorf("scan output:\n%s", out)
	}

	sessions, err := os.ReadDir(filepath.Join(home, ".config", "dupsweep", "sessions"))
	if err != nil || len(sessions) != 1 {
		t.Fatalf("saved sessions = %v, %v", sessions, err)
	}

	manifest := filepath.Join(home, "manifest.txt")
	out = run("clean", "--yes", "--category", "photos", "--manifest", manifest)
	if !strings.Contains(out, "Deleted: 10") {
		t.Errorf("clean output:\n%s", out)
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "Deletion Manifest\n") || !strings.Contains(string(data), "Total Items: 10") {
		t.Errorf("manifest is not the plain-text layout:\n%s", data)
	}

	out = run("report", "--list")
	if !strings.Contains(out, "11") {
		t.Errorf("report --list output:\n%s", out)
	}
}
