package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/repository"
	"github.com/noah-isme/course-planner-api/internal/service"
)

var (
	solveCatalog string
	solveDirect  bool
	solveNo840   bool
	solveDayOffs []int
	solveLimit   int
)

var solveCmd = &cobra.Command{
	Use:   "solve <course>...",
	Short: "Print conflict-free schedules for the given courses",
	Long: `Run the planner against a catalog file and print the result as JSON.

Examples:
  plannerctl solve CS201 MATH101
  plannerctl solve --direct --limit=20 CS201 MATH101 HIST191
  plannerctl solve --no840 --day-off=4 CS201 MATH101`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveCatalog, "catalog", "", "Catalog JSON file (default CATALOG_PATH)")
	solveCmd.Flags().BoolVar(&solveDirect, "direct", false, "Search order without diversification")
	solveCmd.Flags().BoolVar(&solveNo840, "no840", false, "Keep Monday to Friday 08:40-09:30 free")
	solveCmd.Flags().IntSliceVar(&solveDayOffs, "day-off", nil, "Weekday to keep free, 0 (Mon) to 6 (Sun); repeatable")
	solveCmd.Flags().IntVar(&solveLimit, "limit", 0, "Schedule cap (0 uses the configured cap)")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck

	path := solveCatalog
	if path == "" {
		path = cfg.Catalog.Path
	}

	catalog := service.NewCatalogService(repository.NewCatalogFileRepository(path), nil, nil, log)
	if _, err := catalog.Load(cmd.Context()); err != nil {
		return err
	}

	plannerCfg := service.PlannerConfig{
		SearchCap:   cfg.Planner.SearchCap,
		ResponseCap: cfg.Planner.ResponseCap,
		DirectCap:   cfg.Planner.DirectCap,
	}
	if solveLimit > 0 {
		plannerCfg.ResponseCap = solveLimit
		plannerCfg.DirectCap = solveLimit
	}
	planner := service.NewPlannerService(catalog, nil, nil, nil, log, plannerCfg)

	req := dto.ScheduleRequest{
		Items:       args,
		Constraints: dto.ScheduleConstraints{No840: solveNo840, DayOffs: solveDayOffs},
	}

	run := planner.Generate
	if solveDirect {
		run = planner.Solve
	}
	resp, meta, err := run(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	return writeJSON(cmd.OutOrStdout(), struct {
		Schedules interface{}   `json:"schedules"`
		Meta      *dto.PlanMeta `json:"meta"`
	}{resp.Schedules, meta})
}
