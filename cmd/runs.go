package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/numopt/internal/store"
	"github.com/spf13/cobra"
)

var (
	runsDataDir   string
	keepLast      int
	olderThanDays int
	forceClean    bool
	showJSON      bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage saved runs",
	Long:  `Manage run records written by train --save and simplex --save.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved runs",
	Long:  `Display all runs with run ID, kind, timestamp, outcome, final value, and size on disk.`,
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var deleteRunCmd = &cobra.Command{
	Use:   "delete <run-id>...",
	Short: "Delete runs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDeleteRuns,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old runs",
	Long: `Delete old runs based on retention policy.
You can keep only the newest N runs or delete runs older than N days.`,
	RunE: runCleanRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(deleteRunCmd)
	runsCmd.AddCommand(cleanRunsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "data-dir", "./data", "Base directory for run records")

	showRunCmd.Flags().BoolVar(&showJSON, "json", false, "Print the raw run record")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N runs (0 = keep all)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func openRunStore() (*store.FSStore, error) {
	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create run store: %w", err)
	}
	return runStore, nil
}

func runListRuns(cmd *cobra.Command, args []string) error {
	runStore, err := openRunStore()
	if err != nil {
		return err
	}

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tKIND\tTIMESTAMP\tOUTCOME\tVALUE\tSIZE")
	fmt.Fprintln(w, "------\t----\t---------\t-------\t-----\t----")

	for _, info := range infos {
		size, err := getDirSize(runStore.RunDir(info.RunID))
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.6g\t%s\n",
			shortID(info.RunID),
			info.Kind,
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Outcome,
			info.Value,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Fprintf(out, "\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	runStore, err := openRunStore()
	if err != nil {
		return err
	}

	record, err := runStore.LoadRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Run:       %s\n", record.RunID)
	fmt.Fprintf(out, "Kind:      %s\n", record.Kind)
	fmt.Fprintf(out, "Timestamp: %s\n", record.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(out, "Duration:  %s\n", record.Duration)

	switch {
	case record.Train != nil:
		t := record.Train
		fmt.Fprintf(out, "Objective: %s\n", t.Objective)
		fmt.Fprintf(out, "Outcome:   %s after %d iterations\n", t.Outcome, t.Iterations)
		fmt.Fprintf(out, "f(x):      %.10f\n", t.FinalValue)
		fmt.Fprintf(out, "x0:        %v\n", t.Initial)
		fmt.Fprintf(out, "x:         %v\n", t.Final)
		return printTraceSummary(out, runStore.BaseDir(), record.RunID)
	case record.Simplex != nil:
		s := record.Simplex
		fmt.Fprintf(out, "Input:     %s (%d constraints, %d variables)\n", s.Input, s.Constraints, s.Variables)
		fmt.Fprintf(out, "Status:    %s\n", s.Status)
		if s.Status == "optimal" {
			fmt.Fprintf(out, "Optimal value: %.10f\n", s.Objective)
			for j, x := range s.Solution {
				fmt.Fprintf(out, "x%d = %.10f\n", j+1, x)
			}
		}
	}
	return nil
}

// printTraceSummary reports the trace length and endpoints when the run has one.
func printTraceSummary(out io.Writer, baseDir, runID string) error {
	reader, err := store.NewTraceReader(baseDir, runID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	first, last := entries[0], entries[len(entries)-1]
	fmt.Fprintf(out, "Trace:     %d entries, value %.6g -> %.6g\n", len(entries), first.Value, last.Value)
	return nil
}

func runDeleteRuns(cmd *cobra.Command, args []string) error {
	runStore, err := openRunStore()
	if err != nil {
		return err
	}

	for _, id := range args {
		if err := runStore.DeleteRun(id); err != nil {
			return fmt.Errorf("failed to delete run %s: %w", id, err)
		}
		slog.Info("Deleted run", "run_id", id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s).\n", len(args))
	return nil
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runStore, err := openRunStore()
	if err != nil {
		return err
	}

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs to clean.")
		return nil
	}

	toDelete := selectRunsForDeletion(infos, keepLast, olderThanDays, time.Now())

	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No runs match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %s)\n",
			shortID(info.RunID),
			info.Kind,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := runStore.DeleteRun(info.RunID); err != nil {
			slog.Error("Failed to delete run", "run_id", info.RunID, "error", err)
			failed++
		} else {
			slog.Info("Deleted run", "run_id", info.RunID)
			deleted++
		}
	}

	fmt.Fprintf(out, "\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion applies the retention policy: runs older than
// olderThanDays, plus everything but the newest keepLast runs.
func selectRunsForDeletion(infos []store.RunInfo, keepLast int, olderThanDays int, now time.Time) []store.RunInfo {
	var toDelete []store.RunInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.RunInfo, len(infos))
		copy(sorted, infos)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		for _, info := range sorted[:len(sorted)-keepLast] {
			if !selected[info.RunID] {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	return toDelete
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
