package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/c6461sim/config"
)

var _ = Describe("SimConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should provide a valid default", func() {
		c := config.Default()

		Expect(c.Validate()).To(Succeed())
		Expect(c.CacheLines).To(Equal(16))
		Expect(c.CacheBlockSize).To(Equal(8))
		Expect(c.PredictorEntries).To(Equal(uint32(128)))
		Expect(c.DefaultInputCount).To(Equal(20))
		Expect(c.StartPC).To(BeNil())
		Expect(c.TickInterval()).To(Equal(time.Millisecond))
		Expect(c.Level()).To(Equal(logrus.InfoLevel))
	})

	It("should round-trip through a file", func() {
		path := filepath.Join(dir, "sim.json")
		c := config.Default()
		pc := uint16(0o10)
		c.StartPC = &pc
		c.MaxInstructions = 500

		Expect(c.Save(path)).To(Succeed())
		loaded, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(c))
	})

	It("should keep defaults for fields missing from the file", func() {
		path := filepath.Join(dir, "partial.json")
		Expect(os.WriteFile(path, []byte(`{"log_level": "debug"}`), 0o644)).To(Succeed())

		c, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Level()).To(Equal(logrus.DebugLevel))
		Expect(c.CacheLines).To(Equal(16))
	})

	It("should fail on malformed JSON", func() {
		path := filepath.Join(dir, "bad.json")
		Expect(os.WriteFile(path, []byte(`{`), 0o644)).To(Succeed())

		_, err := config.Load(path)
		Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
	})

	DescribeTable("Validate rejects",
		func(mutate func(*config.SimConfig), msg string) {
			c := config.Default()
			mutate(c)
			Expect(c.Validate()).To(MatchError(ContainSubstring(msg)))
		},
		Entry("zero tick", func(c *config.SimConfig) { c.TickIntervalMS = 0 }, "tick_interval_ms"),
		Entry("zero input count", func(c *config.SimConfig) { c.DefaultInputCount = 0 }, "default_input_count"),
		Entry("start pc beyond memory", func(c *config.SimConfig) {
			pc := uint16(2048)
			c.StartPC = &pc
		}, "start_pc"),
		Entry("odd block size", func(c *config.SimConfig) { c.CacheBlockSize = 6 }, "cache_block_size"),
		Entry("no lines", func(c *config.SimConfig) { c.CacheLines = 0 }, "cache_lines"),
		Entry("predictor size", func(c *config.SimConfig) { c.PredictorEntries = 100 }, "predictor_entries"),
		Entry("log level", func(c *config.SimConfig) { c.LogLevel = "loud" }, "log_level"),
	)

	It("should ignore cache geometry when the cache is disabled", func() {
		c := config.Default()
		c.CacheEnabled = false
		c.CacheLines = 0
		Expect(c.Validate()).To(Succeed())
	})

	It("should deep copy on Clone", func() {
		c := config.Default()
		pc := uint16(7)
		c.StartPC = &pc

		clone := c.Clone()
		*clone.StartPC = 9
		clone.CacheLines = 4

		Expect(*c.StartPC).To(Equal(uint16(7)))
		Expect(c.CacheLines).To(Equal(16))
	})
})
