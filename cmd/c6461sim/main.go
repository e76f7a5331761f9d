// Package main provides the command-line front-end for the simulator.
//
// Usage:
//
//	c6461sim [options] <program.txt>
//
// The program is an octal load file. The machine runs until it halts; an IN
// from the keyboard reads one line from stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/sarchlab/c6461sim/config"
	"github.com/sarchlab/c6461sim/emu"
	"github.com/sarchlab/c6461sim/sim"
)

var (
	configPath = flag.String("config", "", "Path to simulator configuration JSON file")
	startPC    = flag.String("pc", "", "Start address in octal (overrides the config)")
	maxInstr   = flag.Uint64("max-instr", 0, "Max instructions to execute (0 = config value)")
	noCache    = flag.Bool("no-cache", false, "Disable the operand cache")
	showCache  = flag.Bool("cache", false, "Print the cache lines after the run")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: c6461sim [options] <program.txt>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(cfg.Level())
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	s, err := sim.New(cfg, sim.WithLogger(logger), sim.WithObserver(emu.ObserverFunc(printMessage)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	programPath := flag.Arg(0)
	if _, err := s.LoadFile(programPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}
	if !s.Emulator().RegFile().PCSet {
		fmt.Fprintf(os.Stderr, "Error: no start address; use -pc or start_pc in the config\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, s, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	report(s)

	if s.Err() != nil || s.State() != emu.StateHalted {
		os.Exit(1)
	}
}

func loadConfig() (*config.SimConfig, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *startPC != "" {
		pc, err := strconv.ParseUint(*startPC, 8, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid -pc %q: %w", *startPC, err)
		}
		v := uint16(pc)
		cfg.StartPC = &v
	}
	if *maxInstr != 0 {
		cfg.MaxInstructions = *maxInstr
	}
	if *noCache {
		cfg.CacheEnabled = false
	}

	return cfg, nil
}

func printMessage(ev emu.Event) {
	if m, ok := ev.(emu.Message); ok {
		fmt.Fprintf(os.Stderr, "[sim] %s\n", m.Text)
	}
}

// run drives the machine until it halts, feeding stdin lines to IN.
func run(ctx context.Context, s *sim.Simulator, in *os.File) error {
	interactive := term.IsTerminal(int(in.Fd()))
	reader := bufio.NewReader(in)

	for {
		if err := s.Drive(ctx); err != nil {
			return err
		}
		if s.State() != emu.StateWaitingForInput {
			return nil
		}

		if err := readInput(s, reader, interactive); err != nil {
			s.Halt()
			return err
		}
	}
}

// readInput reads lines until one satisfies the pending IN.
func readInput(s *sim.Simulator, reader *bufio.Reader, interactive bool) error {
	for {
		if interactive {
			if p, ok := s.Emulator().PendingInput(); ok {
				fmt.Fprintf(os.Stderr, "IN R%d: enter %d numbers> ", p.Register, p.Count)
			}
		}

		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			return fmt.Errorf("reading console input: %w", err)
		}

		submitErr := s.SubmitConsoleInput(line)
		if submitErr == nil {
			return nil
		}
		// Malformed lines are retried while stdin has more to give.
		if !errors.Is(submitErr, emu.ErrMalformedConsoleInput) || err != nil {
			return submitErr
		}
	}
}

func report(s *sim.Simulator) {
	stats := s.Stats()

	fmt.Printf("\nState: %s\n", s.State())
	fmt.Printf("Instructions executed: %d\n", stats.Instructions)
	if s.Cache() != nil {
		fmt.Printf("Cache: %d hits, %d misses, %d evictions (%.1f%% hit rate)\n",
			stats.Cache.Hits, stats.Cache.Misses, stats.Cache.Evictions, stats.Cache.HitRate()*100)
	}
	fmt.Printf("Branches: %d predicted, %d correct (%.1f%%)\n",
		stats.Branch.Branches, stats.Branch.Correct, stats.Branch.Accuracy()*100)

	if *verbose {
		rf := s.Emulator().RegFile()
		fmt.Printf("PC=%04o IR=%06o CC=%v C=%v\n", rf.PC, rf.IR, rf.CC, rf.Carry)
		for i, v := range rf.GPR {
			fmt.Printf("R%d=%06o ", i, v)
		}
		fmt.Printf("\nX1=%06o X2=%06o X3=%06o FR0=%06o FR1=%06o\n",
			rf.IXR[1], rf.IXR[2], rf.IXR[3], rf.FR[0], rf.FR[1])
	}

	if *showCache {
		fmt.Println(s.Emulator().CacheSummary())
	}
}
