package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/weeksplit"
)

var splitCmd = &cobra.Command{
	Use:   "split-quarter",
	Short: "Split a multi-month quarterly snapshot into weekly buckets",
	Long: `split-quarter reads a QuarterInput JSON document and writes one
JSON file per ISO-8601 week into the output directory, verifying the
split is a lossless round trip before writing anything.`,
	RunE: runSplit,
}

var (
	splitInput string
	splitDir   string
)

func init() {
	splitCmd.Flags().StringVar(&splitInput, "input", "", "quarterly input JSON")
	splitCmd.Flags().StringVar(&splitDir, "out", ".", "output directory for weekly bucket files")
	splitCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(splitInput)
	if err != nil {
		return fmt.Errorf("read %s: %w", splitInput, err)
	}
	var quarter model.QuarterInput
	if err := json.Unmarshal(data, &quarter); err != nil {
		return fmt.Errorf("parse %s: %w", splitInput, err)
	}

	buckets, err := weeksplit.Split(quarter)
	if err != nil {
		return err
	}
	if err := weeksplit.VerifyRoundTrip(quarter, buckets); err != nil {
		return fmt.Errorf("split round-trip verification failed: %w", err)
	}

	if err := os.MkdirAll(splitDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", splitDir, err)
	}
	for _, name := range weeksplit.Filenames(buckets) {
		weekKey := name
		if len(name) > len(weeksplit.PartialSuffix) {
			if trimmed := name[:len(name)-len(weeksplit.PartialSuffix)]; name[len(name)-len(weeksplit.PartialSuffix):] == weeksplit.PartialSuffix {
				weekKey = trimmed
			}
		}
		bucket, ok := buckets[weekKey]
		if !ok {
			continue
		}
		out, err := json.MarshalIndent(bucket, "", "  ")
		if err != nil {
			return err
		}
		path := filepath.Join(splitDir, name+".json")
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	fmt.Printf("wrote %d weekly buckets to %s\n", len(buckets), splitDir)
	return nil
}
