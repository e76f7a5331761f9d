// Validate the decoder over the whole 16-bit word space: every word with a
// known opcode must re-encode to itself once unused bits are cleared, and
// decode throughput and allocations are reported.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/c6461sim/insts"
)

// reencode rebuilds the word from the decoded fields.
func reencode(inst *insts.Instruction) (uint16, bool) {
	switch inst.Format {
	case insts.FormatHalt:
		return 0, true
	case insts.FormatLoadStore:
		return insts.EncodeLoadStore(inst.Code, inst.R, inst.IX, inst.I, inst.Address), true
	case insts.FormatImmediate:
		return insts.EncodeImmediate(inst.Code, inst.R, inst.Imm), true
	case insts.FormatRegReg:
		return insts.EncodeRegReg(inst.Code, inst.Rx, inst.Ry), true
	case insts.FormatShiftRotate:
		return insts.EncodeShiftRotate(inst.Code, inst.R, inst.Count, inst.Left, inst.Logical), true
	case insts.FormatIO:
		return insts.EncodeIO(inst.Code, inst.R, inst.DevID), true
	}
	return 0, false
}

// usedBits is the mask of bits each format decodes.
var usedBits = map[insts.Format]uint16{
	insts.FormatHalt:        0xFFFF,
	insts.FormatLoadStore:   0xFFFF,
	insts.FormatImmediate:   0xFF1F,
	insts.FormatRegReg:      0xFFC0,
	insts.FormatShiftRotate: 0xFFFC,
	insts.FormatIO:          0xFFF8,
}

func main() {
	decoder := insts.NewDecoder()

	perFormat := map[insts.Format]int{}
	failures := 0
	for w := 0; w <= 0xFFFF; w++ {
		word := uint16(w)
		inst := decoder.Decode(word)
		perFormat[inst.Format]++

		got, ok := reencode(inst)
		if !ok {
			continue
		}
		if want := word & usedBits[inst.Format]; got != want {
			failures++
			if failures <= 10 {
				fmt.Printf("mismatch: %06o decoded as %v, re-encoded %06o, want %06o\n",
					word, inst.Op, got, want)
			}
		}
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000
	program := []uint16{
		insts.EncodeLoadStore(insts.CodeLDR, 0, 1, true, 12),
		insts.EncodeImmediate(insts.CodeAIR, 1, 5),
		insts.EncodeLoadStore(insts.CodeSOB, 0, 0, false, 9),
		insts.EncodeShiftRotate(insts.CodeSRC, 2, 3, true, true),
	}
	for i := 0; i < iterations; i++ {
		for _, word := range program {
			decoder.Decode(word)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(program)
	allocations := m2.Mallocs - m1.Mallocs

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	for _, f := range []insts.Format{
		insts.FormatHalt, insts.FormatLoadStore, insts.FormatImmediate,
		insts.FormatRegReg, insts.FormatShiftRotate, insts.FormatIO, insts.FormatUnknown,
	} {
		fmt.Printf("Format %d words: %d\n", f, perFormat[f])
	}
	fmt.Printf("Round-trip mismatches: %d\n", failures)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))

	if failures > 0 {
		os.Exit(1)
	}
}
