package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"qrmenu/internal/migrate"
	"qrmenu/internal/storage"
)

var (
	migrateDir    string
	migrateDryRun bool
	migratePrune  bool
	migrateQuiet  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Import static menu.json files into Postgres",
	Long: `migrate walks a directory laid out as <dir>/<restaurant-id>/menu.json
and upserts every menu into the store. With --prune, categories and items
that are no longer in the files are deleted from the store as well.`,
	Run: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDir, "dir", "", "menu directory (default <static_dir>/restaurants)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "parse and count, write nothing")
	migrateCmd.Flags().BoolVar(&migratePrune, "prune", false, "delete store rows missing from the files")
	migrateCmd.Flags().BoolVar(&migrateQuiet, "quiet", false, "suppress the progress bar")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg := loadConfigOrExit()

	dir := migrateDir
	if dir == "" {
		dir = filepath.Join(cfg.StaticDir, "restaurants")
	}

	db := cfg.MustInitPostgres()
	defer db.Close()

	store := storage.NewMenuStore(db)
	if err := store.EnsureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	importer := &migrate.Importer{
		Repo:         store,
		DryRun:       migrateDryRun,
		Prune:        migratePrune,
		ShowProgress: !migrateQuiet,
	}

	report, err := importer.Run(dir)
	if err != nil {
		log.Fatal("Migration failed:", err)
	}

	fmt.Printf("Imported %d restaurants, %d categories, %d items\n",
		report.Restaurants, report.Categories, report.Items)
	if migratePrune {
		fmt.Printf("Pruned %d stale rows\n", report.Pruned)
	}
	if len(report.Skipped) > 0 {
		fmt.Printf("Skipped: %v\n", report.Skipped)
	}
	if migrateDryRun {
		fmt.Println("Dry run: nothing was written")
	}
}
