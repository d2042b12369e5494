package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/repository"
	"github.com/noah-isme/course-planner-api/migrations"
	"github.com/noah-isme/course-planner-api/pkg/database"
	"github.com/noah-isme/course-planner-api/pkg/ingest"
)

var (
	buildOut    string
	buildIndent bool
	buildToDB   bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Build and migrate the course catalog",
}

var catalogBuildCmd = &cobra.Command{
	Use:   "build <listing.json>",
	Short: "Normalise a scraped listing into the catalog format",
	Long: `Read a scraped listing, either a flat array of sections or an object of
courses keyed by code, and write the grouped catalog the planner loads.

Examples:
  plannerctl catalog build scraped.json --out data/grouped_courses.json
  plannerctl catalog build scraped.json --to-db`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogBuild,
}

var catalogMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the catalog schema to the configured database",
	Args:  cobra.NoArgs,
	RunE:  runCatalogMigrate,
}

func init() {
	catalogBuildCmd.Flags().StringVar(&buildOut, "out", "", "Output catalog file (default CATALOG_PATH)")
	catalogBuildCmd.Flags().BoolVar(&buildIndent, "indent", true, "Indent the output JSON")
	catalogBuildCmd.Flags().BoolVar(&buildToDB, "to-db", false, "Replace the catalog in the configured database instead of writing a file")
	catalogCmd.AddCommand(catalogBuildCmd, catalogMigrateCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	courses, stats, err := ingest.Build(f)
	if err != nil {
		return err
	}
	log.Info("listing normalised",
		zap.Int("courses", stats.Courses),
		zap.Int("sections", stats.Sections),
		zap.Int("meetings", stats.Meetings),
		zap.Int("untimed", stats.Untimed),
	)

	if buildToDB {
		db, err := database.NewPostgres(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := migrations.Up(cmd.Context(), db); err != nil {
			return err
		}
		if err := repository.NewCatalogRepository(db).Replace(cmd.Context(), courses); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "replaced catalog in %s: %d courses, %d sections\n", cfg.Database.Name, stats.Courses, stats.Sections)
		return nil
	}

	out := buildOut
	if out == "" {
		out = cfg.Catalog.Path
	}
	if err := repository.NewCatalogFileRepository(out).Save(courses, buildIndent); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d courses, %d sections, %d untimed meetings\n", out, stats.Courses, stats.Sections, stats.Untimed)
	return nil
}

func runCatalogMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.NewPostgres(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := migrations.Up(cmd.Context(), db)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "catalog schema up to date")
		return nil
	}
	for _, name := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
	}
	return nil
}
