package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fenilsonani/dupsweep/internal/config"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/platform"
	"github.com/fenilsonani/dupsweep/internal/reporter"
	"github.com/fenilsonani/dupsweep/internal/scanner"
	"github.com/fenilsonani/dupsweep/internal/ui"
	"github.com/fenilsonani/dupsweep/internal/ui/views"
)

func newScanCmd() *cobra.Command {
	var (
		format     string
		outputFile string
		tree       bool
		noSave     bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan every enabled category for duplicates",
		Long: `Scans the enabled categories concurrently and reports duplicate groups
without changing anything. The result is saved to the session history that
"report" shows.

Use --tree to list every group and its items.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := reporter.ParseFormat(format)
			if err != nil {
				return err
			}

			_, log, eng, err := setup(nil)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer eng.Close()

			snap, err := runScan(cmd, eng)
			if err != nil {
				return err
			}

			if !noSave {
				if err := saveSession(snap, log); err != nil {
					return err
				}
			}

			if tree {
				ui.PrintGroupTree(cmd.OutOrStdout(), snap.Groups())
				return nil
			}

			if outputFile != "" {
				if err := reporter.SaveScanToFile(snap, outputFile, outFormat); err != nil {
					return fmt.Errorf("failed to save report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", outputFile)
				return nil
			}
			return reporter.New(cmd.OutOrStdout(), outFormat).ReportScan(snap)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "summary", "output format (summary, table, json, yaml)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "save report to file")
	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "print every group as a tree")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "don't save the session")

	return cmd
}

// runScan runs one session to completion with live progress on stderr
func runScan(cmd *cobra.Command, eng *engine) (scanner.SessionSnapshot, error) {
	live := ui.NewLiveProgress(cmd.ErrOrStderr(), eng.progress)
	stop := live.Start()
	defer stop()

	sess, err := eng.scanner.Run(cmd.Context())
	if err != nil {
		return scanner.SessionSnapshot{}, fmt.Errorf("scan failed: %w", err)
	}
	return sess.Snapshot(), nil
}

func saveSession(snap scanner.SessionSnapshot, log *zap.Logger) error {
	sm, err := config.NewSessionManager("")
	if err != nil {
		return err
	}
	if err := sm.Save(savedSession(snap)); err != nil {
		return err
	}
	log.Debug("session saved", zap.String("session", snap.ID), zap.String("dir", sm.GetSessionsDir()))
	return nil
}

func newCleanCmd() *cobra.Command {
	var (
		dryRun       bool
		yes          bool
		manifestPath string
		format       string
		categoryList string
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Scan, then delete the redundant copies",
		Long: `Runs a fresh scan and deletes every item except the first of each
duplicate group. Items are deleted best effort; each one is reported as
deleted or failed with a reason.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := reporter.ParseFormat(format)
			if err != nil {
				return err
			}
			only, err := parseCategories(categoryList)
			if err != nil {
				return err
			}

			cfg, log, eng, err := setup(func(c *config.Config) {
				if cmd.Flags().Changed("dry-run") {
					c.DryRun = dryRun
				}
			})
			if err != nil {
				return err
			}
			defer log.Sync()
			defer eng.Close()

			out := cmd.OutOrStdout()

			snap, err := runScan(cmd, eng)
			if err != nil {
				return err
			}
			if err := saveSession(snap, log); err != nil {
				return err
			}
			for _, c := range snap.Categories {
				if c.Status != models.StatusCompleted {
					fmt.Fprintf(out, "⚠️  %s: %s\n", c.Category.DisplayName(), c.Status)
				}
			}

			var items []models.Item
			for _, g := range snap.Groups() {
				if len(only) > 0 && !only[g.Category] {
					continue
				}
				items = append(items, g.Redundant()...)
			}

			if len(items) == 0 {
				fmt.Fprintln(out, "\n✨ No duplicates to delete.")
				return nil
			}

			var size int64
			for _, item := range items {
				size += item.Size()
			}
			fmt.Fprintf(out, "\n%s selected for deletion", english.Plural(len(items), "item", "items"))
			if size > 0 {
				fmt.Fprintf(out, " (%s)", humanize.IBytes(uint64(size)))
			}
			fmt.Fprintln(out)

			if !yes && !cfg.DryRun {
				fmt.Fprint(out, "\nProceed with deletion? (y/N): ")
				var response string
				fmt.Fscanln(cmd.InOrStdin(), &response)
				if response != "y" && response != "Y" {
					fmt.Fprintln(out, "Deletion cancelled")
					return nil
				}
			}

			if cfg.DryRun {
				fmt.Fprintln(out, "\n[DRY RUN MODE] Nothing will be deleted.")
			}

			live := ui.NewLiveProgress(cmd.ErrOrStderr(), eng.progress)
			stopProgress := live.Start()
			report := eng.executor.Delete(cmd.Context(), items)
			stopProgress()
			eng.notifier.DeletionFinished(cmd.Context(), report)

			if manifestPath != "" {
				if err := eng.executor.SaveManifest(manifestPath); err != nil {
					log.Warn("failed to save manifest", zap.String("path", manifestPath), zap.Error(err))
				} else {
					fmt.Fprintf(out, "Manifest saved to: %s\n", manifestPath)
				}
			}

			if err := reporter.New(out, outFormat).ReportDeletion(report); err != nil {
				return err
			}
			if report.FailedCount() > 0 && report.SucceededCount() == 0 {
				return fmt.Errorf("no items were deleted")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without actually deleting")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "write a plain-text manifest of deleted items")
	cmd.Flags().StringVarP(&format, "format", "f", "summary", "output format (summary, table, json, yaml)")
	cmd.Flags().StringVarP(&categoryList, "category", "c", "", "only clean these categories (comma separated)")

	return cmd
}

func loadSession(id string) (*config.SavedSession, error) {
	sm, err := config.NewSessionManager("")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return sm.GetLatest()
	}
	return sm.Load(id)
}

// parseCategories turns "photos,contacts" into a set
func parseCategories(list string) (map[models.Category]bool, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	set := make(map[models.Category]bool)
	for _, name := range strings.Split(list, ",") {
		c, err := models.ParseCategory(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		set[c] = true
	}
	return set, nil
}

func newReportCmd() *cobra.Command {
	var (
		list       bool
		sessionID  string
		format     string
		outputFile string
		prune      int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show saved scan sessions",
		Long:  `Reports a saved session (the latest by default) or lists all of them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := reporter.ParseFormat(format)
			if err != nil {
				return err
			}

			sm, err := config.NewSessionManager("")
			if err != nil {
				return err
			}

			if prune > 0 {
				if err := sm.CleanOldSessions(prune); err != nil {
					return err
				}
			}

			if list {
				sessions, err := sm.List()
				if err != nil {
					return err
				}
				return reporter.New(cmd.OutOrStdout(), outFormat).ReportSessions(sessions)
			}

			saved, err := loadSession(sessionID)
			if err != nil {
				return err
			}
			snap := snapshotFromSaved(saved)

			if outputFile != "" {
				if err := reporter.SaveScanToFile(snap, outputFile, outFormat); err != nil {
					return fmt.Errorf("failed to save report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", outputFile)
				return nil
			}
			return reporter.New(cmd.OutOrStdout(), outFormat).ReportScan(snap)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "list saved sessions")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session to report (default: latest)")
	cmd.Flags().StringVarP(&format, "format", "f", "summary", "output format (summary, table, json, yaml)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "save report to file")
	cmd.Flags().IntVar(&prune, "prune-days", 0, "delete sessions older than this many days first")

	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvedConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write an example config file if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvedConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", path)
				return nil
			}
			if err := os.MkdirAll(dirOf(path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(config.GetExampleConfig()), 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file created: %s\n", path)
			if info, err := platform.GetInfo(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "To scan photo files instead of the library, add %s to sources.photo_dirs\n", info.PicturesDir)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvedConfigPath()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintf(out, "# %s does not exist; showing defaults\n", path)
			} else {
				fmt.Fprintf(out, "# %s\n", path)
			}
			return reporter.New(out, reporter.FormatYAML).Encode(cfg)
		},
	})

	return cmd
}

func resolvedConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

func dirOf(path string) string {
	if i := strings.LastIndexByte(path, os.PathSeparator); i > 0 {
		return path[:i]
	}
	return "."
}

func newInteractiveCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Scan and review duplicates in a terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, eng, err := setup(func(c *config.Config) {
				if cmd.Flags().Changed("dry-run") {
					c.DryRun = dryRun
				}
				// Anything on stderr corrupts the alt screen
				c.Log.Level = "error"
			})
			if err != nil {
				return err
			}
			defer log.Sync()
			defer eng.Close()

			return ui.RunInteractive(views.Deps{
				Ctx:      cmd.Context(),
				Scanner:  eng.scanner,
				Executor: eng.executor,
				Progress: eng.progress,
				DryRun:   cfg.DryRun,
				OnScanComplete: func(snap scanner.SessionSnapshot) {
					if err := saveSession(snap, log); err != nil {
						log.Warn("failed to save session", zap.Error(err))
					}
				},
				OnDeletionComplete: eng.notifier.DeletionFinished,
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "review without deleting anything")
	return cmd
}
