package main

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cwbudde/numopt/internal/store"
)

func TestTrainCommand_Converges(t *testing.T) {
	out, err := executeCommand(t, "train", "--objective", "quadratic", "--x0", "2", "--lr", "0.4", "--eps", "1e-5")
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if !strings.HasPrefix(out, "Outcome: converged after ") {
		t.Errorf("Expected convergence, got:\n%s", out)
	}
	if !strings.Contains(out, "x1 = 0.0000") && !strings.Contains(out, "x1 = -0.0000") {
		t.Errorf("Expected x1 near 0, got:\n%s", out)
	}
}

func TestTrainCommand_DefaultStartIsOrigin(t *testing.T) {
	out, err := executeCommand(t, "train", "--objective", "sincos", "--max-iters", "1")
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	// f(0, 0) = sin 0 + cos 0
	if !strings.Contains(out, "f(x) = 1.0000000000") {
		t.Errorf("Expected f(x) = 1 at the origin, got:\n%s", out)
	}
}

func TestTrainCommand_EarlyStop(t *testing.T) {
	out, err := executeCommand(t, "train", "--x0", "2", "--lr", "0.4", "--target", "0.5")
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if !strings.HasPrefix(out, "Outcome: stopped_early") {
		t.Errorf("Expected early stop, got:\n%s", out)
	}
}

func TestTrainCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "numopt.yaml", "lr: 0.4\neps: 1e-5\nmax-iters: 3\n")

	out, err := executeCommand(t, "--config", cfg, "train", "--x0", "2")
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if !strings.HasPrefix(out, "Outcome: exhausted after 3 iterations") {
		t.Errorf("Expected 3 iterations from config, got:\n%s", out)
	}

	// flags override the file
	out, err = executeCommand(t, "--config", cfg, "train", "--x0", "2", "--max-iters", "2")
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if !strings.HasPrefix(out, "Outcome: exhausted after 2 iterations") {
		t.Errorf("Expected flag to override config, got:\n%s", out)
	}
}

// resultCoord parses the "xN = value" line of train output.
func resultCoord(t *testing.T, out, name string) float64 {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if value, ok := strings.CutPrefix(line, name+" = "); ok {
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				t.Fatalf("Bad %s line %q: %v", name, line, err)
			}
			return f
		}
	}
	t.Fatalf("No %s in output:\n%s", name, out)
	return 0
}

func TestTrainCommand_ConfigVectors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "numopt.yaml",
		"lr: 0.4\neps: 1e-6\nx0: [1, 2]\nparam:\n  c1: 3\n  c2: -1\n")

	out, err := executeCommand(t, "--config", cfg, "train")
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if !strings.HasPrefix(out, "Outcome: converged") {
		t.Fatalf("Expected convergence, got:\n%s", out)
	}
	if x1 := resultCoord(t, out, "x1"); math.Abs(x1-3) > 1e-5 {
		t.Errorf("Expected x1 near 3 from config params, got %v", x1)
	}
	if x2 := resultCoord(t, out, "x2"); math.Abs(x2+1) > 1e-5 {
		t.Errorf("Expected x2 near -1 from config params, got %v", x2)
	}

	// a flag replaces the configured start point entirely
	_, err = executeCommand(t, "--config", cfg, "train", "--x0", "5")
	if err == nil {
		t.Error("Expected c2 to be rejected for a 1-dimensional flag start point")
	}
}

func TestTrainCommand_EnvVectors(t *testing.T) {
	t.Setenv("NUMOPT_X0", "0 0")
	t.Setenv("NUMOPT_PARAM", "c1=1,c2=2")

	out, err := executeCommand(t, "train", "--lr", "0.4", "--eps", "1e-6")
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if x1 := resultCoord(t, out, "x1"); math.Abs(x1-1) > 1e-5 {
		t.Errorf("Expected x1 near 1, got %v", x1)
	}
	if x2 := resultCoord(t, out, "x2"); math.Abs(x2-2) > 1e-5 {
		t.Errorf("Expected x2 near 2, got %v", x2)
	}

	t.Setenv("NUMOPT_X0", "0,zero")
	if _, err := executeCommand(t, "train"); err == nil {
		t.Error("Expected error for a non-numeric env start point")
	}
}

func TestTrainCommand_MissingConfigFile(t *testing.T) {
	_, err := executeCommand(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "train")
	if err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestTrainCommand_Env(t *testing.T) {
	t.Setenv("NUMOPT_MAX_ITERS", "4")

	out, err := executeCommand(t, "train", "--x0", "2")
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if !strings.HasPrefix(out, "Outcome: exhausted after 4 iterations") {
		t.Errorf("Expected 4 iterations from environment, got:\n%s", out)
	}
}

func TestTrainCommand_Outputs(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "log.csv")
	metricsPath := filepath.Join(dir, "metrics.prom")
	dataDir := filepath.Join(dir, "data")

	_, err := executeCommand(t, "train",
		"--x0", "2,-1", "--lr", "0.4", "--eps", "1e-5",
		"--csv", csvPath,
		"--metrics-file", metricsPath,
		"--save", "--trace", "--data-dir", dataDir,
	)
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if got := strings.Join(records[0], ","); got != "iter,value,grad_norm_inf,lr,x1,x2" {
		t.Errorf("Unexpected CSV header %q", got)
	}

	metrics, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("Failed to read metrics: %v", err)
	}
	if !strings.Contains(string(metrics), "numopt_gd_iterations_total") {
		t.Errorf("Expected iteration counter in metrics file, got:\n%s", metrics)
	}

	runStore, err := store.NewFSStore(dataDir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	infos, err := runStore.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 1 || infos[0].Kind != store.KindTrain || infos[0].Outcome != "converged" {
		t.Fatalf("Unexpected runs: %+v", infos)
	}

	record, err := runStore.LoadRun(infos[0].RunID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if len(records)-1 != record.Train.Iterations {
		t.Errorf("CSV has %d rows, run has %d iterations", len(records)-1, record.Train.Iterations)
	}

	reader, err := store.NewTraceReader(dataDir, infos[0].RunID)
	if err != nil {
		t.Fatalf("Failed to open trace: %v", err)
	}
	defer reader.Close()
	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read trace: %v", err)
	}
	if len(entries) != record.Train.Iterations {
		t.Errorf("Trace has %d entries, run has %d iterations", len(entries), record.Train.Iterations)
	}

	out, err := executeCommand(t, "runs", "show", infos[0].RunID, "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("runs show failed: %v", err)
	}
	if !strings.Contains(out, "Trace:") {
		t.Errorf("Expected trace summary in show output, got:\n%s", out)
	}
}

func TestTrainCommand_WarmStart(t *testing.T) {
	out, err := executeCommand(t, "train",
		"--x0", "0,0", "--lr", "0.5", "--eps", "1e-6", "--max-iters", "1000",
		"--warm-start", "--lower", "-5,-5", "--upper", "5,5", "--warm-iters", "30",
	)
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if !strings.HasPrefix(out, "Outcome: converged") {
		t.Errorf("Expected convergence after warm start, got:\n%s", out)
	}

	_, err = executeCommand(t, "train", "--x0", "0,0", "--warm-start", "--lower", "-5", "--upper", "5,5")
	if err == nil || !strings.Contains(err.Error(), "warm start") {
		t.Errorf("Expected warm start bounds error, got %v", err)
	}
}

func TestTrainCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown objective", []string{"train", "--objective", "rosenbrock"}},
		{"wrong dimension", []string{"train", "--objective", "sincos", "--x0", "1,2,3"}},
		{"unwritable csv", []string{"train", "--csv", filepath.Join(t.TempDir(), "missing", "log.csv")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(t, tt.args...); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "numopt version 0.1.0\n" {
		t.Errorf("Unexpected version output %q", out)
	}
}
