package emu

import "errors"

// Sentinel errors returned by the machine. Callers match them with errors.Is;
// the emulator wraps them with instruction context.
var (
	// ErrAddressOutOfRange is returned when an address falls outside
	// [0, MemorySize).
	ErrAddressOutOfRange = errors.New("address out of range")

	// ErrIllegalReservedAccess is returned when a running program resolves
	// an effective address inside the protected region.
	ErrIllegalReservedAccess = errors.New("illegal access to reserved memory")

	// ErrBadRegisterSelector is returned for a register number outside the
	// legal set for the instruction.
	ErrBadRegisterSelector = errors.New("bad register selector")

	// ErrBadIndexRegister is returned for an index register selector that
	// is not 1, 2 or 3.
	ErrBadIndexRegister = errors.New("bad index register")

	// ErrDivisionByZero is returned by DVD with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrMalformedConsoleInput is returned when submitted console input
	// cannot satisfy the pending IN.
	ErrMalformedConsoleInput = errors.New("malformed console input")

	// ErrNoPendingInput is returned when console input is submitted while
	// no IN instruction is waiting.
	ErrNoPendingInput = errors.New("no IN pending")

	// ErrBadDevice is returned by IN and OUT for unsupported device ids.
	ErrBadDevice = errors.New("bad device")

	// ErrLatchUnset is returned when a front-panel operation needs MAR, MBR
	// or PC and it has not been set.
	ErrLatchUnset = errors.New("latch not set")

	// ErrMaxInstructions is returned once the instruction budget is spent.
	ErrMaxInstructions = errors.New("max instructions reached")
)
