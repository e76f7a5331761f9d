// Command benchmark runs the sample programs through the benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv         Output results in CSV format (default: human-readable)
//	-json        Output results in JSON format
//	-no-cache    Disable the operand cache
//	-cpuprofile  Write a CPU profile to the given file
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/sarchlab/c6461sim/benchmarks"
)

func main() {
	os.Exit(run())
}

func run() int {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	noCache := flag.Bool("no-cache", false, "Disable the operand cache")
	verbose := flag.Bool("v", false, "Log every step")
	cpuProfile := flag.String("cpuprofile", "", "write cpu profile to file")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	config := benchmarks.DefaultConfig()
	config.SimConfig.CacheEnabled = !*noCache
	config.Verbose = *verbose
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	harness.AddBenchmarks(benchmarks.GetPrograms())

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		fmt.Println("Benchmark Harness")
		fmt.Println("=================")
		fmt.Printf("Cache: %v\n", config.SimConfig.CacheEnabled)
		fmt.Println("")
		harness.PrintResults(results)
	}

	for _, r := range results {
		if !r.Passed {
			return 1
		}
	}
	return 0
}
