// Package emu provides functional emulation of the 16-bit teaching computer.
package emu

import "fmt"

// Condition code indices into RegFile.CC.
const (
	CCOverflow  = 0
	CCUnderflow = 1
	CCDivZero   = 2
	CCEqual     = 3
)

// RegFile represents the machine register file.
// It contains four general-purpose registers, three index registers,
// two floating-point registers, the condition codes and the carry bit.
type RegFile struct {
	// GPR holds general-purpose registers R0-R3.
	GPR [4]uint16

	// IXR holds index registers X1-X3. IXR[0] is never used; selector 0
	// means "no indexing".
	IXR [4]uint16

	// FR holds floating-point registers FR0 and FR1.
	FR [2]uint16

	// PC is the program counter (11 bits). PCSet is false until the PC is
	// first initialized.
	PC    uint16
	PCSet bool

	// IR holds the last fetched instruction word.
	IR uint16

	// CC holds OVERFLOW, UNDERFLOW, DIVZERO and EQUAL.
	CC [4]bool

	// Carry is the shift/rotate carry bit, separate from CC.
	Carry bool
}

// ReadGPR reads a general-purpose register. Only the low two selector bits
// are used.
func (r *RegFile) ReadGPR(reg uint8) uint16 {
	return r.GPR[reg&0x3]
}

// WriteGPR writes a general-purpose register.
func (r *RegFile) WriteGPR(reg uint8, value uint16) {
	r.GPR[reg&0x3] = value
}

// ReadIXR reads an index register. Selector 0 is not a register.
func (r *RegFile) ReadIXR(x uint8) (uint16, error) {
	if x < 1 || x > 3 {
		return 0, fmt.Errorf("%w: X%d", ErrBadIndexRegister, x)
	}
	return r.IXR[x], nil
}

// WriteIXR writes an index register.
func (r *RegFile) WriteIXR(x uint8, value uint16) error {
	if x < 1 || x > 3 {
		return fmt.Errorf("%w: X%d", ErrBadIndexRegister, x)
	}
	r.IXR[x] = value
	return nil
}

// ReadFR reads a floating-point register.
func (r *RegFile) ReadFR(f uint8) (uint16, error) {
	if f > 1 {
		return 0, fmt.Errorf("%w: FR%d", ErrBadRegisterSelector, f)
	}
	return r.FR[f], nil
}

// WriteFR writes a floating-point register.
func (r *RegFile) WriteFR(f uint8, value uint16) error {
	if f > 1 {
		return fmt.Errorf("%w: FR%d", ErrBadRegisterSelector, f)
	}
	r.FR[f] = value
	return nil
}

// SetPC sets the program counter.
func (r *RegFile) SetPC(pc uint16) {
	r.PC = pc & AddressMask
	r.PCSet = true
}
