// Package sim provides the simulator context. A Simulator owns the memory,
// cache, branch predictor and emulator of one machine and drives run mode
// one instruction per tick.
package sim

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/c6461sim/cache"
	"github.com/sarchlab/c6461sim/config"
	"github.com/sarchlab/c6461sim/emu"
	"github.com/sarchlab/c6461sim/loader"
	"github.com/sarchlab/c6461sim/predictor"
)

// Stats holds execution statistics for the machine.
type Stats struct {
	// Ticks is the number of driver ticks that executed a step.
	Ticks uint64
	// Instructions is the number of completed instructions.
	Instructions uint64
	// Cache holds cache statistics. It is zero when the cache is disabled.
	Cache cache.Statistics
	// Branch holds branch predictor statistics.
	Branch predictor.Stats
}

// Simulator is one machine instance.
type Simulator struct {
	config *config.SimConfig

	memory    *emu.Memory
	cache     *cache.Cache
	predictor *predictor.Predictor
	bus       *emu.Bus
	emulator  *emu.Emulator

	logger logrus.FieldLogger
	stdout io.Writer

	ticks   uint64
	lastErr error
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger used by the simulator and its emulator.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Simulator) {
		s.logger = l
	}
}

// WithStdout sets the writer that character devices print to.
func WithStdout(w io.Writer) Option {
	return func(s *Simulator) {
		s.stdout = w
	}
}

// WithObserver subscribes o before the machine is built.
func WithObserver(o emu.Observer) Option {
	return func(s *Simulator) {
		s.bus.Subscribe(o)
	}
}

// New builds a machine from cfg. A nil cfg means config.Default().
func New(cfg *config.SimConfig, opts ...Option) (*Simulator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Simulator{
		config: cfg.Clone(),
		memory: emu.NewMemory(),
		bus:    emu.NewBus(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		logger := logrus.New()
		logger.SetLevel(s.config.Level())
		s.logger = logger
	}

	s.predictor = predictor.New(predictor.Config{BHTSize: s.config.PredictorEntries})

	emuOpts := []emu.EmulatorOption{
		emu.WithMemory(s.memory),
		emu.WithPredictor(s.predictor),
		emu.WithBus(s.bus),
		emu.WithLogger(s.logger),
		emu.WithMaxInstructions(s.config.MaxInstructions),
		emu.WithDefaultInputCount(s.config.DefaultInputCount),
	}
	if s.config.CacheEnabled {
		s.cache = cache.New(cache.Config{
			Lines:     s.config.CacheLines,
			BlockSize: s.config.CacheBlockSize,
		}, cache.NewMemoryBacking(s.memory))
		emuOpts = append(emuOpts, emu.WithCache(s.cache))
	}
	if s.stdout != nil {
		emuOpts = append(emuOpts, emu.WithStdout(s.stdout))
	}
	s.emulator = emu.NewEmulator(emuOpts...)

	return s, nil
}

// Config returns a copy of the configuration the machine was built from.
func (s *Simulator) Config() *config.SimConfig {
	return s.config.Clone()
}

// Emulator returns the machine's emulator.
func (s *Simulator) Emulator() *emu.Emulator {
	return s.emulator
}

// Memory returns the machine's memory.
func (s *Simulator) Memory() *emu.Memory {
	return s.memory
}

// Cache returns the operand cache, or nil when it is disabled.
func (s *Simulator) Cache() *cache.Cache {
	return s.cache
}

// Predictor returns the branch predictor.
func (s *Simulator) Predictor() *predictor.Predictor {
	return s.predictor
}

// State returns the run state.
func (s *Simulator) State() emu.State {
	return s.emulator.State()
}

// Subscribe registers o for machine events and returns a function that
// removes it.
func (s *Simulator) Subscribe(o emu.Observer) func() {
	return s.bus.Subscribe(o)
}

// Stats returns execution statistics.
func (s *Simulator) Stats() Stats {
	stats := Stats{
		Ticks:        s.ticks,
		Instructions: s.emulator.InstructionCount(),
		Branch:       s.predictor.Stats(),
	}
	if s.cache != nil {
		stats.Cache = s.cache.Stats()
	}
	return stats
}

// LoadFile loads an octal load file. On success the PC is set to the
// configured start address, if any.
func (s *Simulator) LoadFile(path string) (*loader.Program, error) {
	prog, err := loader.Load(path, s.emulator)
	return s.finishLoad(path, prog, err)
}

// LoadReader loads an octal load file from r.
func (s *Simulator) LoadReader(r io.Reader) (*loader.Program, error) {
	prog, err := loader.LoadReader(r, s.emulator)
	return s.finishLoad("input", prog, err)
}

func (s *Simulator) finishLoad(name string, prog *loader.Program, err error) (*loader.Program, error) {
	if err != nil {
		s.logger.WithError(err).WithField("file", name).Warn("load failed")
		s.bus.Publish(emu.Message{Text: "Load failed: " + err.Error()})
		return prog, err
	}

	s.logger.WithFields(logrus.Fields{
		"file":  name,
		"words": prog.Words,
	}).Info("program loaded")
	s.bus.Publish(emu.Message{Text: fmt.Sprintf("Loaded %d words from %s.", prog.Words, name)})

	if s.config.StartPC != nil {
		if err := s.emulator.SetPC(*s.config.StartPC); err != nil {
			return prog, err
		}
	}
	return prog, nil
}

// Run puts the machine in run mode. Steps happen on Tick.
func (s *Simulator) Run() {
	s.emulator.Start()
}

// Tick performs one step if the machine is running and reports whether the
// driver should keep ticking.
func (s *Simulator) Tick() bool {
	if s.emulator.State() != emu.StateRunning {
		return false
	}
	if result := s.emulator.Step(); result.Err != nil {
		s.lastErr = result.Err
	}
	s.ticks++
	return s.emulator.State() == emu.StateRunning
}

// RunFor starts the machine and ticks until it stops running or maxTicks
// ticks have passed. It returns the resulting state.
func (s *Simulator) RunFor(maxTicks uint64) emu.State {
	s.Run()
	for i := uint64(0); i < maxTicks; i++ {
		if !s.Tick() {
			break
		}
	}
	return s.emulator.State()
}

// Drive starts the machine and ticks it every configured interval until it
// stops running or ctx is done.
func (s *Simulator) Drive(ctx context.Context) error {
	s.Run()
	if s.emulator.State() != emu.StateRunning {
		return nil
	}

	ticker := time.NewTicker(s.config.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Halt()
			return ctx.Err()
		case <-ticker.C:
			if !s.Tick() {
				return nil
			}
		}
	}
}

// Step executes one instruction.
func (s *Simulator) Step() emu.StepResult {
	result := s.emulator.Step()
	if result.Err != nil {
		s.lastErr = result.Err
	}
	return result
}

// Err returns the last instruction failure since the machine was built or
// reset.
func (s *Simulator) Err() error {
	return s.lastErr
}

// Halt stops the machine.
func (s *Simulator) Halt() {
	s.emulator.Halt()
}

// Reset clears memory, registers, cache and predictor.
func (s *Simulator) Reset() {
	s.emulator.Reset()
	s.ticks = 0
	s.lastErr = nil
}

// SubmitConsoleInput satisfies a pending IN.
func (s *Simulator) SubmitConsoleInput(text string) error {
	return s.emulator.SubmitConsoleInput(text)
}
