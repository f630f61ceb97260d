package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anescall/callsched/internal/calendar"
	"github.com/anescall/callsched/internal/deriver"
	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/staff"
	"github.com/anescall/callsched/pkg/logger"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive one week's transition roles and Unassigned pool",
	Long: `derive reads the previous, current, and next week's raw weekly
snapshots and produces the current week's DerivedSchedule JSON.`,
	RunE: runDerive,
}

var (
	derivePrev, deriveCurrent, deriveNext string
	deriveStart, deriveEnd                string
	deriveOut                              string
)

func init() {
	deriveCmd.Flags().StringVar(&derivePrev, "prev", "", "previous week's raw snapshot JSON")
	deriveCmd.Flags().StringVar(&deriveCurrent, "current", "", "current week's raw snapshot JSON")
	deriveCmd.Flags().StringVar(&deriveNext, "next", "", "next week's raw snapshot JSON")
	deriveCmd.Flags().StringVar(&deriveStart, "start", "", "current week's start date (YYYY-MM-DD, inclusive)")
	deriveCmd.Flags().StringVar(&deriveEnd, "end", "", "current week's end date (YYYY-MM-DD, inclusive)")
	deriveCmd.Flags().StringVar(&deriveOut, "out", "derived.json", "output path for the derived schedule")
	deriveCmd.MarkFlagRequired("current")
	deriveCmd.MarkFlagRequired("start")
	deriveCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(deriveCmd)
}

func loadFlatWeek(path string) (model.FlatWeek, error) {
	if path == "" {
		return model.FlatWeek{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var snap model.WeeklyRawSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return snap.Flatten(), nil
}

func runDerive(cmd *cobra.Command, args []string) error {
	prev, err := loadFlatWeek(derivePrev)
	if err != nil {
		return err
	}
	current, err := loadFlatWeek(deriveCurrent)
	if err != nil {
		return err
	}
	next, err := loadFlatWeek(deriveNext)
	if err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", deriveStart)
	if err != nil {
		return fmt.Errorf("parse --start: %w", err)
	}
	end, err := time.Parse("2006-01-02", deriveEnd)
	if err != nil {
		return fmt.Errorf("parse --end: %w", err)
	}

	cal, err := loadCalendar()
	if err != nil {
		return err
	}
	reg, err := staff.Load(cfg.Data.StaffFile)
	if err != nil {
		return err
	}

	log := logger.NewStdout("deriver", logger.LevelInfo)
	derived, err := deriver.DeriveWeek(prev, current, next, start, end, cal, reg, log)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(derived, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(deriveOut, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", deriveOut, err)
	}
	fmt.Printf("derived schedule written to %s\n", deriveOut)
	return nil
}

func loadCalendar() (*calendar.Calendar, error) {
	if cfg.Data.HolidayFile == "" {
		return calendar.New(), nil
	}
	return calendar.LoadCustomHolidays(cfg.Data.HolidayFile)
}
