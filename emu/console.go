package emu

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/sarchlab/c6461sim/insts"
)

// Device ids understood by IN, OUT and CHK.
const (
	DeviceKeyboard = 0
	DevicePrinter  = 1
	DeviceReader   = 2
)

// DefaultInputCount is the number of values IN expects when R3 is not
// positive.
const DefaultInputCount = 20

// PendingInput describes an IN instruction waiting for console input.
type PendingInput struct {
	// Register receives the first value.
	Register uint8
	// Base is the first memory address written.
	Base uint16
	// Count is the number of values expected.
	Count int

	resume bool
}

// inputCount returns the value count carried in R3.
func (e *Emulator) inputCount() int {
	n := int(int16(e.regFile.ReadGPR(3)))
	if n <= 0 {
		return e.defaultInputCount
	}
	return n
}

func (e *Emulator) executeIO(inst *insts.Instruction) error {
	switch inst.Op {
	case insts.OpIN:
		return e.executeIN(inst)
	case insts.OpOUT:
		return e.executeOUT(inst)
	case insts.OpCHK:
		var status uint16
		if inst.DevID == DeviceKeyboard || inst.DevID == DevicePrinter {
			status = 1
		}
		e.regFile.WriteGPR(inst.R, status)
		return nil
	}
	return fmt.Errorf("unhandled I/O op %v", inst.Op)
}

// executeIN suspends the machine for console input on the keyboard.
// Other readable devices return 0.
func (e *Emulator) executeIN(inst *insts.Instruction) error {
	switch inst.DevID {
	case DevicePrinter:
		return fmt.Errorf("IN: %w: device %d", ErrBadDevice, inst.DevID)
	case DeviceKeyboard:
		e.pending = &PendingInput{
			Register: inst.R,
			Base:     e.regFile.ReadGPR(inst.R) & AddressMask,
			Count:    e.inputCount(),
			resume:   e.state == StateRunning,
		}
		e.setState(StateWaitingForInput)
		e.message(fmt.Sprintf("IN waiting for %d numbers for R%d.", e.pending.Count, inst.R))
	default:
		e.regFile.WriteGPR(inst.R, 0)
	}
	return nil
}

func (e *Emulator) executeOUT(inst *insts.Instruction) error {
	switch {
	case inst.DevID == DevicePrinter:
		base := e.regFile.ReadGPR(0) & AddressMask
		count := e.inputCount()
		last := (base + uint16(count) - 1) & AddressMask
		e.message(fmt.Sprintf("Enter %d numbers (decimal). They will be stored at %04o..%04o.",
			count, base, last))
	case inst.DevID > DeviceReader:
		value := int16(e.regFile.ReadGPR(inst.R))
		_, _ = fmt.Fprintf(e.stdout, "%d\n", value)
		e.message(fmt.Sprintf("OUT R%d to device %d: %d", inst.R, inst.DevID, value))
	default:
		return fmt.Errorf("OUT: %w: device %d", ErrBadDevice, inst.DevID)
	}
	return nil
}

// SubmitConsoleInput satisfies a pending IN. The text must hold at least as
// many comma or whitespace separated signed 16-bit decimals as the IN
// expects; otherwise it is rejected and the machine stays suspended. On
// success every value is written through the cache starting at the captured
// base address, the first value goes to the destination register, and the
// machine resumes if it was running.
func (e *Emulator) SubmitConsoleInput(text string) error {
	p := e.pending
	if p == nil {
		e.message("No IN pending; submit ignored.")
		return ErrNoPendingInput
	}

	values, err := parseConsoleInput(text, p.Count)
	if err != nil {
		e.message("IN failed: " + err.Error())
		return err
	}

	before := e.snapshot()
	for i, v := range values {
		addr := (p.Base + uint16(i)) & AddressMask
		if err := e.cache.Store(addr, v); err != nil {
			return err
		}
	}
	e.regFile.WriteGPR(p.Register, values[0])
	e.pending = nil
	e.publishChanges(before)
	e.message("Input accepted.")

	if p.resume {
		e.setState(StateRunning)
	} else {
		e.setState(StateHalted)
	}
	return nil
}

func parseConsoleInput(text string, count int) ([]uint16, error) {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(tokens) < count {
		return nil, fmt.Errorf("%w: entered %d of %d numbers",
			ErrMalformedConsoleInput, len(tokens), count)
	}

	values := make([]uint16, count)
	for i := range values {
		v, err := strconv.ParseInt(tokens[i], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number in [-32768, 32767]",
				ErrMalformedConsoleInput, tokens[i])
		}
		values[i] = uint16(v)
	}
	return values, nil
}
