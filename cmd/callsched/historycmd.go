package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anescall/callsched/internal/history"
	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/optimize"
	"github.com/anescall/callsched/internal/reporting"
	"github.com/anescall/callsched/internal/staff"
)

func loadStaffRegistry() (*staff.Registry, error) {
	return staff.Load(cfg.Data.StaffFile)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Cross-week relationship graph operations",
}

var historyRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a solved week's working relationships into the history graph",
	Long: `record reads a solved document (as written by optimize) and writes
its WorkedWith/ChargeOn/CardiacOn edges into the KuzuDB history graph. It
never feeds these edges back into optimization: every week is still solved
independently.`,
	RunE: runHistoryRecord,
}

var historySolvedPath string

func init() {
	historyRecordCmd.Flags().StringVar(&historySolvedPath, "solved", "", "solved document JSON (from optimize)")
	historyRecordCmd.MarkFlagRequired("solved")
	historyCmd.AddCommand(historyRecordCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryRecord(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(historySolvedPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", historySolvedPath, err)
	}
	var doc reporting.SolvedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", historySolvedPath, err)
	}
	if doc.DerivedSchedule == nil {
		return fmt.Errorf("%s: missing derived schedule fields", historySolvedPath)
	}

	reg, err := loadStaffRegistry()
	if err != nil {
		return err
	}
	sched, err := model.FromDerived(doc.DerivedSchedule, reg)
	if err != nil {
		return err
	}

	result := &optimize.Result{Mu: doc.Solution.Mu, Objective: doc.Solution.Objective, Telemetry: doc.Solution.Telemetry}
	for _, date := range doc.Order {
		result.Days = append(result.Days, optimize.DayAssignment{
			Date:    date,
			Peel:    doc.Solution.Peel[date],
			Charge:  doc.Solution.Charge[date],
			Cardiac: doc.Solution.Cardiac[date],
		})
	}

	store, err := history.Open(cfg.Data.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RecordWeek(sched, result); err != nil {
		return err
	}
	fmt.Printf("recorded week %s to %s into history graph %s\n", doc.Period.Start, doc.Period.End, cfg.Data.HistoryPath)
	return nil
}
