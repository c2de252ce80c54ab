package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/dupsweep/internal/logger"
	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/store/sqlstore"
)

func newSeedCmd() *cobra.Command {
	var (
		libraryPath string
		copies      int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a library database with sample duplicates",
		Long: `Creates (or extends) a SQLite library with sample photos, videos, contacts
and calendar events, some of them duplicated, so scan and clean can be tried
without real data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if copies < 2 {
				return fmt.Errorf("--copies must be at least 2")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if libraryPath == "" {
				libraryPath = cfg.Sources.Library
			}
			path, err := expandHome(libraryPath)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer log.Sync()

			lib, err := sqlstore.Open(path, sqlstore.Options{Logger: log})
			if err != nil {
				return err
			}
			defer lib.Close()

			if err := seedLibrary(cmd.Context(), lib, copies); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeded %s\n", path)
			for _, c := range models.AllCategories() {
				n, err := lib.Count(cmd.Context(), c)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-16s %d\n", c.DisplayName()+":", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&libraryPath, "library", "", "library database (default: sources.library from config)")
	cmd.Flags().IntVar(&copies, "copies", 3, "copies of each duplicated record")

	return cmd
}

// seedLibrary adds a fixed set of records. Every other record is repeated
// copies times; the rest are unique.
func seedLibrary(ctx context.Context, lib *sqlstore.Library, copies int) error {
	base := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)

	var media []sqlstore.MediaAsset
	for i := 0; i < 10; i++ {
		n := 1
		if i%2 == 0 {
			n = copies
		}
		at := base.Add(time.Duration(i) * time.Hour)
		for c := 0; c < n; c++ {
			media = append(media, sqlstore.MediaAsset{
				Kind:        sqlstore.KindPhoto,
				Filename:    fmt.Sprintf("IMG_%04d.jpg", i*10+c),
				PixelWidth:  4032,
				PixelHeight: 3024,
				CapturedAt:  at,
				SizeBytes:   int64(2_000_000 + i*1000),
			})
		}
		if i < 4 {
			for c := 0; c < n; c++ {
				media = append(media, sqlstore.MediaAsset{
					Kind:        sqlstore.KindVideo,
					Filename:    fmt.Sprintf("MOV_%04d.mov", i*10+c),
					PixelWidth:  1920,
					PixelHeight: 1080,
					CapturedAt:  at,
					SizeBytes:   int64(50_000_000 + i*1000),
				})
			}
		}
	}
	if err := lib.AddMedia(ctx, media...); err != nil {
		return err
	}

	people := []sqlstore.ContactRecord{
		{GivenName: "Ann", FamilyName: "Lee", Email: "ann@example.com"},
		{GivenName: "Bo", FamilyName: "Chen", Phone: "+1 555 010 0200"},
		{GivenName: "Carla", FamilyName: "Diaz", Email: "carla@example.com"},
		{GivenName: "Dev", FamilyName: "Patel"},
	}
	var contacts []sqlstore.ContactRecord
	for i, p := range people {
		n := 1
		if i%2 == 0 {
			n = copies
		}
		for c := 0; c < n; c++ {
			contacts = append(contacts, p)
		}
	}
	if err := lib.AddContacts(ctx, contacts...); err != nil {
		return err
	}

	titles := []string{"Team Sync", "Dentist", "Quarterly Review", "Birthday Dinner"}
	var events []sqlstore.CalendarEventRecord
	for i, title := range titles {
		n := 1
		if i%2 == 0 {
			n = copies
		}
		for c := 0; c < n; c++ {
			events = append(events, sqlstore.CalendarEventRecord{
				Title:    title,
				StartsAt: base.AddDate(0, 0, i),
			})
		}
	}
	return lib.AddEvents(ctx, events...)
}
