package benchmarks_test

import (
	"bytes"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c6461sim/benchmarks"
)

var _ = Describe("Harness", func() {
	var (
		out     *bytes.Buffer
		harness *benchmarks.Harness
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		config := benchmarks.DefaultConfig()
		config.Output = out
		harness = benchmarks.NewHarness(config)
	})

	byName := func(name string) benchmarks.Benchmark {
		for _, b := range benchmarks.GetPrograms() {
			if b.Name == name {
				return b
			}
		}
		Fail("no benchmark named " + name)
		return benchmarks.Benchmark{}
	}

	It("should pass every program", func() {
		harness.AddBenchmarks(benchmarks.GetPrograms())

		results := harness.RunAll()

		Expect(results).To(HaveLen(5))
		for _, r := range results {
			Expect(r.Passed).To(BeTrue(), "%s: %s", r.Name, r.Error)
			Expect(r.FinalState).To(Equal("Halted"))
		}
	})

	It("should report sum_loop statistics", func() {
		r := harness.Run(byName("sum_loop"))

		Expect(r.Instructions).To(Equal(uint64(32)))
		Expect(r.CacheMisses).To(Equal(uint64(1)))
		Expect(r.CacheReads).To(Equal(uint64(11)))
		Expect(r.CacheWrites).To(Equal(uint64(10)))
		Expect(r.BranchPredictions).To(Equal(uint64(10)))
		Expect(r.BranchCorrect).To(Equal(uint64(8)))
	})

	It("should evict once the sweep exceeds the cache", func() {
		r := harness.Run(byName("cache_sweep"))

		Expect(r.CacheMisses).To(Equal(uint64(41)))
		Expect(r.CacheEvictions).To(Equal(uint64(25)))
	})

	It("should count both branches of branch_mix", func() {
		r := harness.Run(byName("branch_mix"))

		Expect(r.Instructions).To(Equal(uint64(30)))
		Expect(r.BranchPredictions).To(Equal(uint64(16)))
	})

	It("should fail a program that never halts", func() {
		config := benchmarks.DefaultConfig()
		config.Output = out
		config.MaxTicks = 10
		harness = benchmarks.NewHarness(config)

		r := harness.Run(byName("cache_sweep"))

		Expect(r.Passed).To(BeFalse())
		Expect(r.Error).To(ContainSubstring("did not halt"))
	})

	It("should fail a program whose result is wrong", func() {
		b := byName("sum_loop")
		b.Data = map[uint16]uint16{30: 3}

		r := harness.Run(b)

		Expect(r.Passed).To(BeFalse())
		Expect(r.Error).To(ContainSubstring("R1 = 6, want 55"))
	})

	Describe("output", func() {
		var results []benchmarks.Result

		BeforeEach(func() {
			harness.AddBenchmark(byName("subroutine"))
			results = harness.RunAll()
		})

		It("should print a readable report", func() {
			harness.PrintResults(results)
			Expect(out.String()).To(ContainSubstring("Benchmark: subroutine"))
			Expect(out.String()).To(ContainSubstring("Result: PASS"))
		})

		It("should print CSV", func() {
			harness.PrintCSV(results)
			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			Expect(lines).To(HaveLen(2))
			Expect(lines[1]).To(HavePrefix("subroutine,18,"))
		})

		It("should print JSON", func() {
			Expect(harness.PrintJSON(results)).To(Succeed())

			var report benchmarks.Report
			Expect(json.Unmarshal(out.Bytes(), &report)).To(Succeed())
			Expect(report.Passed).To(Equal(1))
			Expect(report.Results[0].Name).To(Equal("subroutine"))
		})
	})
})
