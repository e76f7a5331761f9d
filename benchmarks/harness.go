// Package benchmarks provides sample programs and a harness that reports
// instruction, cache and branch predictor statistics for them.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/c6461sim/config"
	"github.com/sarchlab/c6461sim/emu"
	"github.com/sarchlab/c6461sim/sim"
)

// ProgramBase is where every benchmark program is loaded.
const ProgramBase uint16 = 0o10

// Result holds the results for a single benchmark run.
type Result struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Instructions is the number of completed instructions
	Instructions uint64 `json:"instructions"`

	// FinalState is the run state after the benchmark stopped
	FinalState string `json:"final_state"`

	CacheReads     uint64  `json:"cache_reads"`
	CacheWrites    uint64  `json:"cache_writes"`
	CacheHits      uint64  `json:"cache_hits"`
	CacheMisses    uint64  `json:"cache_misses"`
	CacheEvictions uint64  `json:"cache_evictions"`
	CacheHitRate   float64 `json:"cache_hit_rate"`

	BranchPredictions    uint64  `json:"branch_predictions"`
	BranchCorrect        uint64  `json:"branch_correct"`
	BranchMispredictions uint64  `json:"branch_mispredictions"`
	BranchAccuracy       float64 `json:"branch_accuracy"`

	// Passed is true when the program halted cleanly and Verify succeeded
	Passed bool `json:"passed"`

	// Error describes why the benchmark did not pass
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is loaded at ProgramBase
	Program []uint16

	// Data holds extra words to deposit before running
	Data map[uint16]uint16

	// Verify checks the machine state after the program halts
	Verify func(e *emu.Emulator) error
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// SimConfig is the machine every benchmark runs on
	SimConfig *config.SimConfig

	// MaxTicks bounds each run
	MaxTicks uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose logs every step to Output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		SimConfig: config.Default(),
		MaxTicks:  100000,
		Output:    os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.SimConfig == nil {
		config.SimConfig = DefaultConfig().SimConfig
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []Result {
	results := make([]Result, 0, len(h.benchmarks))
	for _, bench := range h.benchmarks {
		results = append(results, h.Run(bench))
	}
	return results
}

func (h *Harness) logger() *logrus.Logger {
	logger := logrus.New()
	if h.config.Verbose {
		logger.SetOutput(h.config.Output)
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetOutput(io.Discard)
	}
	return logger
}

// Run executes a single benchmark on a fresh machine.
func (h *Harness) Run(bench Benchmark) Result {
	result := Result{
		Name:        bench.Name,
		Description: bench.Description,
	}

	s, err := sim.New(h.config.SimConfig, sim.WithLogger(h.logger()), sim.WithStdout(io.Discard))
	if err != nil {
		result.Error = err.Error()
		return result
	}
	e := s.Emulator()

	for addr, value := range bench.Data {
		if err := e.Deposit(addr, value); err != nil {
			result.Error = fmt.Sprintf("data at %04o: %v", addr, err)
			return result
		}
	}
	if err := e.LoadProgram(ProgramBase, bench.Program); err != nil {
		result.Error = err.Error()
		return result
	}

	var lastMessage string
	unsubscribe := s.Subscribe(emu.ObserverFunc(func(ev emu.Event) {
		if m, ok := ev.(emu.Message); ok {
			lastMessage = m.Text
		}
	}))
	defer unsubscribe()

	start := time.Now()
	state := s.RunFor(h.config.MaxTicks)
	result.WallTime = time.Since(start)

	stats := s.Stats()
	result.Instructions = stats.Instructions
	result.FinalState = state.String()
	result.CacheReads = stats.Cache.Reads
	result.CacheWrites = stats.Cache.Writes
	result.CacheHits = stats.Cache.Hits
	result.CacheMisses = stats.Cache.Misses
	result.CacheEvictions = stats.Cache.Evictions
	result.CacheHitRate = stats.Cache.HitRate()
	result.BranchPredictions = stats.Branch.Branches
	result.BranchCorrect = stats.Branch.Correct
	result.BranchMispredictions = stats.Branch.Mispredictions()
	result.BranchAccuracy = stats.Branch.Accuracy()

	switch {
	case state != emu.StateHalted:
		result.Error = fmt.Sprintf("did not halt within %d ticks", h.config.MaxTicks)
	case bench.Verify != nil:
		if err := bench.Verify(e); err != nil {
			result.Error = fmt.Sprintf("%v (last message: %q)", err, lastMessage)
		}
	}
	result.Passed = result.Error == ""

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []Result) {
	out := h.config.Output
	_, _ = fmt.Fprintln(out, "=== Benchmark Results ===")
	_, _ = fmt.Fprintln(out, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(out, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(out, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(out, "  Instructions: %d\n", r.Instructions)
		_, _ = fmt.Fprintf(out, "  Final State:  %s\n", r.FinalState)
		_, _ = fmt.Fprintln(out, "  --- Cache ---")
		_, _ = fmt.Fprintf(out, "  Reads/Writes: %d/%d\n", r.CacheReads, r.CacheWrites)
		_, _ = fmt.Fprintf(out, "  Hits:         %d\n", r.CacheHits)
		_, _ = fmt.Fprintf(out, "  Misses:       %d\n", r.CacheMisses)
		_, _ = fmt.Fprintf(out, "  Evictions:    %d\n", r.CacheEvictions)
		_, _ = fmt.Fprintf(out, "  Hit Rate:     %.1f%%\n", r.CacheHitRate*100)

		if r.BranchPredictions > 0 {
			_, _ = fmt.Fprintln(out, "  --- Branch Predictor ---")
			_, _ = fmt.Fprintf(out, "  Predictions:    %d\n", r.BranchPredictions)
			_, _ = fmt.Fprintf(out, "  Correct:        %d\n", r.BranchCorrect)
			_, _ = fmt.Fprintf(out, "  Mispredictions: %d\n", r.BranchMispredictions)
			_, _ = fmt.Fprintf(out, "  Accuracy:       %.1f%%\n", r.BranchAccuracy*100)
		}

		if r.Passed {
			_, _ = fmt.Fprintln(out, "  Result: PASS")
		} else {
			_, _ = fmt.Fprintf(out, "  Result: FAIL (%s)\n", r.Error)
		}
		_, _ = fmt.Fprintf(out, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(out, "")
	}
}

// PrintCSV outputs benchmark results in CSV format.
func (h *Harness) PrintCSV(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,instructions,cache_hits,cache_misses,cache_evictions,branch_predictions,branch_correct,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%d,%d,%t\n",
			r.Name,
			r.Instructions,
			r.CacheHits,
			r.CacheMisses,
			r.CacheEvictions,
			r.BranchPredictions,
			r.BranchCorrect,
			r.Passed,
		)
	}
}

// Report is the complete JSON output format.
type Report struct {
	Timestamp string   `json:"timestamp"`
	Config    any      `json:"config"`
	Results   []Result `json:"results"`
	Passed    int      `json:"passed"`
	Failed    int      `json:"failed"`
}

// PrintJSON outputs benchmark results in JSON format.
func (h *Harness) PrintJSON(results []Result) error {
	report := Report{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Config:    h.config.SimConfig,
		Results:   results,
	}
	for _, r := range results {
		if r.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
