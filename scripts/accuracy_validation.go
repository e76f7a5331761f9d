// Package main checks that the operand cache is architecturally invisible:
// every benchmark must produce the same instruction count, branch
// statistics and verified result with the cache enabled and disabled.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/c6461sim/benchmarks"
)

func runAll(cacheEnabled bool) []benchmarks.Result {
	config := benchmarks.DefaultConfig()
	config.SimConfig.CacheEnabled = cacheEnabled
	config.Output = io.Discard

	harness := benchmarks.NewHarness(config)
	harness.AddBenchmarks(benchmarks.GetPrograms())
	return harness.RunAll()
}

func main() {
	fmt.Println("Testing cache transparency...")

	cached := runAll(true)
	uncached := runAll(false)

	ok := true
	for i := range cached {
		c, u := cached[i], uncached[i]
		switch {
		case !c.Passed || !u.Passed:
			fmt.Printf("❌ %s: cached passed=%v (%s), uncached passed=%v (%s)\n",
				c.Name, c.Passed, c.Error, u.Passed, u.Error)
			ok = false
		case c.Instructions != u.Instructions:
			fmt.Printf("❌ %s: %d instructions cached, %d uncached\n",
				c.Name, c.Instructions, u.Instructions)
			ok = false
		case c.BranchCorrect != u.BranchCorrect || c.BranchPredictions != u.BranchPredictions:
			fmt.Printf("❌ %s: branch statistics differ\n", c.Name)
			ok = false
		default:
			fmt.Printf("✅ %s: %d instructions, %.1f%% cache hit rate\n",
				c.Name, c.Instructions, c.CacheHitRate*100)
		}
	}

	if !ok {
		os.Exit(1)
	}
}
