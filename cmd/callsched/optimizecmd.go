package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anescall/callsched/internal/calendar"
	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/optimize"
	"github.com/anescall/callsched/internal/optimize/bnb"
	"github.com/anescall/callsched/internal/reporting"
	"github.com/anescall/callsched/internal/requirements"
	"github.com/anescall/callsched/internal/sqliteexport"
	"github.com/anescall/callsched/internal/staff"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Solve one week's schedule from a derived schedule",
	Long: `optimize loads a DerivedSchedule JSON, builds and validates the
Schedule Model, applies an optional requirements overlay, solves the
weekly mixed-integer program with the reference backend, and writes the
solved document and human-readable report.`,
	RunE: runOptimize,
}

var (
	optimizeDerived      string
	optimizeRequirements string
	optimizeOut          string
	optimizeNoColor      bool
	optimizeWarehouse    bool
)

func init() {
	optimizeCmd.Flags().StringVar(&optimizeDerived, "derived", "", "derived schedule JSON (from derive)")
	optimizeCmd.Flags().StringVar(&optimizeRequirements, "requirements", "", "requirements overlay JSON (admin/whine), optional")
	optimizeCmd.Flags().StringVar(&optimizeOut, "out", "solved.json", "output path for the solved document")
	optimizeCmd.Flags().BoolVar(&optimizeNoColor, "no-color", false, "disable ANSI color in the printed report")
	optimizeCmd.Flags().BoolVar(&optimizeWarehouse, "warehouse", false, "also export the solved week into the SQLite warehouse")
	optimizeCmd.MarkFlagRequired("derived")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(optimizeDerived)
	if err != nil {
		return fmt.Errorf("read %s: %w", optimizeDerived, err)
	}
	var derived model.DerivedSchedule
	if err := json.Unmarshal(data, &derived); err != nil {
		return fmt.Errorf("parse %s: %w", optimizeDerived, err)
	}

	reg, err := staff.Load(cfg.Data.StaffFile)
	if err != nil {
		return err
	}

	sched, err := model.FromDerived(&derived, reg)
	if err != nil {
		return err
	}
	if err := sched.Validate(); err != nil {
		return err
	}
	cal, err := loadCalendar()
	if err != nil {
		return err
	}
	if err := sched.ValidateCalendar(cal); err != nil {
		return err
	}

	if optimizeRequirements != "" {
		sched, err = applyRequirements(sched, optimizeRequirements)
		if err != nil {
			return err
		}
	}

	solveCfg := optimize.Config{
		Weights: optimize.Weights{
			Alpha: cfg.Solver.Alpha,
			Beta:  cfg.Solver.Beta,
			Gamma: cfg.Solver.Gamma,
		},
		TimeLimit: cfg.Solver.TimeLimit,
	}

	program, err := optimize.Build(sched, reg, solveCfg)
	if err != nil {
		return err
	}

	solver := bnb.New()
	result, err := solver.Solve(context.Background(), program)
	if err != nil {
		return err
	}
	if result.Status == optimize.StatusInfeasible {
		return reportInfeasible(program)
	}

	reporting.PeelTable(os.Stdout, sched, result, reg, !optimizeNoColor)
	fmt.Println()
	reporting.Summary(os.Stdout, sched, result)

	sol := reporting.BuildSolution(sched, result)
	if err := reporting.Save(optimizeOut, &derived, sol); err != nil {
		return fmt.Errorf("save solved document: %w", err)
	}
	fmt.Printf("\nsolved document written to %s\n", optimizeOut)

	if optimizeWarehouse {
		if err := exportToWarehouse(optimizeOut, sched, result, reg, cal); err != nil {
			return err
		}
	}

	return nil
}

func yearsSpanned(sched *model.Schedule) (int, int) {
	if len(sched.Days) == 0 {
		return 0, 0
	}
	from := sched.Days[0].Date[:4]
	to := sched.Days[len(sched.Days)-1].Date[:4]
	fromYear, toYear := 0, 0
	fmt.Sscanf(from, "%d", &fromYear)
	fmt.Sscanf(to, "%d", &toYear)
	return fromYear, toYear
}

func reportInfeasible(program *optimize.Program) error {
	fmt.Fprintln(os.Stderr, "infeasibility diagnostics:")
	for _, line := range bnb.New().IIS(program) {
		fmt.Fprintln(os.Stderr, " -", line)
	}
	return fmt.Errorf("no feasible schedule found")
}

func applyRequirements(sched *model.Schedule, path string) (*model.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var overlay requirements.Overlay
	if err := json.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return requirements.Apply(sched, overlay)
}

func exportToWarehouse(solvedPath string, sched *model.Schedule, result *optimize.Result, reg *staff.Registry, cal *calendar.Calendar) error {
	store, err := sqliteexport.Open(cfg.Data.WarehousePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ImportStaff(reg); err != nil {
		return err
	}
	if fromYear, toYear := yearsSpanned(sched); fromYear > 0 {
		if err := store.ImportHolidays(cal, fromYear, toYear); err != nil {
			return err
		}
	}
	if err := store.ImportSchedule(solvedPath, sched, result); err != nil {
		return err
	}
	fmt.Printf("exported solved week to warehouse %s\n", cfg.Data.WarehousePath)
	return nil
}
