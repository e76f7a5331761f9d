package benchmarks

import (
	"fmt"

	"github.com/sarchlab/c6461sim/emu"
	"github.com/sarchlab/c6461sim/insts"
)

// GetPrograms returns the standard set of benchmark programs. Programs are
// loaded at ProgramBase (8); branch targets and data addresses below are
// absolute.
func GetPrograms() []Benchmark {
	return []Benchmark{
		sumLoop(),
		branchMix(),
		cacheSweep(),
		subroutine(),
		vectorAdd(),
	}
}

func ldr(r, ix uint8, addr uint8) uint16 {
	return insts.EncodeLoadStore(insts.CodeLDR, r, ix, false, addr)
}

func str(r uint8, addr uint8) uint16 {
	return insts.EncodeLoadStore(insts.CodeSTR, r, 0, false, addr)
}

func op(code, r, ix, addr uint8) uint16 {
	return insts.EncodeLoadStore(code, r, ix, false, addr)
}

func expectGPR(i uint8, want uint16) func(e *emu.Emulator) error {
	return func(e *emu.Emulator) error {
		if got := e.RegFile().GPR[i]; got != want {
			return fmt.Errorf("R%d = %d, want %d", i, got, want)
		}
		return nil
	}
}

// sumLoop adds 10+9+...+1 into R1. Every operand lives in one block, so
// after the first miss the loop runs entirely from the cache.
func sumLoop() Benchmark {
	return Benchmark{
		Name:        "sum_loop",
		Description: "SOB-driven sum of 1..10 - one cold miss, steady hits",
		Data:        map[uint16]uint16{30: 10},
		Program: []uint16{
			ldr(0, 0, 30),               // 8:  R0 = 10
			str(0, 31),                  // 9:  mem[31] = R0
			op(insts.CodeAMR, 1, 0, 31), // 10: R1 += mem[31]
			op(insts.CodeSOB, 0, 0, 9),  // 11: loop
			insts.HLT,                   // 12
		},
		Verify: expectGPR(1, 55),
	}
}

// branchMix alternates a JZ between taken and not taken inside a SOB loop.
func branchMix() Benchmark {
	return Benchmark{
		Name:        "branch_mix",
		Description: "alternating JZ inside a counted loop - predictor stress",
		Data:        map[uint16]uint16{29: 8},
		Program: []uint16{
			ldr(0, 0, 29),                              // 8:  R0 = 8
			insts.EncodeRegReg(insts.CodeNOT, 2, 0),    // 9:  toggle R2
			op(insts.CodeJZ, 2, 0, 12),                 // 10: skip when R2 == 0
			insts.EncodeImmediate(insts.CodeAIR, 1, 1), // 11: R1++
			op(insts.CodeSOB, 0, 0, 9),                 // 12: loop
			insts.HLT,                                  // 13
		},
		Verify: expectGPR(1, 4),
	}
}

// sweepBlocks is the number of distinct blocks cacheSweep touches.
const sweepBlocks = 40

// cacheSweep reads one word from each of 40 consecutive blocks through X1,
// which overflows the 16 lines and forces LRU evictions.
func cacheSweep() Benchmark {
	return Benchmark{
		Name:        "cache_sweep",
		Description: "strided reads over 40 blocks - capacity evictions",
		Data:        map[uint16]uint16{28: sweepBlocks, 29: 64},
		Program: []uint16{
			ldr(0, 0, 28),                              // 8:  R0 = block count
			op(insts.CodeLDX, 0, 1, 29),                // 9:  X1 = 64
			ldr(1, 1, 0),                               // 10: R1 = mem[X1]
			op(insts.CodeSTX, 0, 1, 30),                // 11: mem[30] = X1
			ldr(3, 0, 30),                              // 12: R3 = X1
			insts.EncodeImmediate(insts.CodeAIR, 3, 8), // 13: R3 += 8
			str(3, 30),                                 // 14: mem[30] = R3
			op(insts.CodeLDX, 0, 1, 30),                // 15: X1 = R3
			op(insts.CodeSOB, 0, 0, 10),                // 16: loop
			insts.HLT,                                  // 17
		},
		Verify: func(e *emu.Emulator) error {
			if got, want := e.RegFile().IXR[1], uint16(64+8*sweepBlocks); got != want {
				return fmt.Errorf("X1 = %d, want %d", got, want)
			}
			return nil
		},
	}
}

// subroutine calls a routine four times with JSR/RFS, counting with R2
// because RFS overwrites R0.
func subroutine() Benchmark {
	return Benchmark{
		Name:        "subroutine",
		Description: "JSR/RFS call and return in a loop",
		Data:        map[uint16]uint16{30: 4},
		Program: []uint16{
			ldr(2, 0, 30),                              // 8:  R2 = 4
			op(insts.CodeJSR, 0, 0, 13),                // 9:  call
			op(insts.CodeSOB, 2, 0, 9),                 // 10: loop
			insts.HLT,                                  // 11
			0,                                          // 12: unused
			insts.EncodeImmediate(insts.CodeAIR, 1, 3), // 13: R1 += 3
			insts.EncodeImmediate(insts.CodeRFS, 0, 1), // 14: return, R0 = 1
		},
		Verify: func(e *emu.Emulator) error {
			if err := expectGPR(1, 12)(e); err != nil {
				return err
			}
			return expectGPR(0, 1)(e)
		},
	}
}

// vectorAdd adds two 4-element vectors with a single VADD.
func vectorAdd() Benchmark {
	data := map[uint16]uint16{25: 4, 26: 64, 27: 72}
	for i := uint16(0); i < 4; i++ {
		data[64+i] = i + 1
		data[72+i] = 10 * (i + 1)
	}

	return Benchmark{
		Name:        "vector_add",
		Description: "VADD over two vectors in separate blocks",
		Data:        data,
		Program: []uint16{
			op(insts.CodeLDFR, 1, 0, 25), // 8:  FR1 = 4
			op(insts.CodeVADD, 1, 0, 26), // 9:  vector add
			insts.HLT,                    // 10
		},
		Verify: func(e *emu.Emulator) error {
			got, err := e.Memory().Dump(64, 67)
			if err != nil {
				return err
			}
			for i, v := range got {
				if want := uint16(11 * (i + 1)); v != want {
					return fmt.Errorf("mem[%d] = %d, want %d", 64+i, v, want)
				}
			}
			return nil
		},
	}
}
