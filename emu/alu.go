package emu

import "fmt"

// ALU implements fixed-point arithmetic, logical, shift and rotate
// operations. All results are 16-bit two's complement.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// AMR adds a memory operand into GPR[r]: R = R + c(EA).
// OVERFLOW is set on signed overflow; UNDERFLOW is cleared.
func (a *ALU) AMR(r uint8, operand uint16) {
	op1 := a.regFile.ReadGPR(r)
	result := op1 + operand

	a.regFile.WriteGPR(r, result)
	a.regFile.CC[CCOverflow] = addOverflow16(op1, operand, result)
	a.regFile.CC[CCUnderflow] = false
}

// SMR subtracts a memory operand from GPR[r]: R = R - c(EA).
// UNDERFLOW is set on signed overflow; OVERFLOW is cleared.
func (a *ALU) SMR(r uint8, operand uint16) {
	a.subtract(r, operand)
}

// AIR adds an immediate to GPR[r]. Immediate 0 is a no-op. Condition codes
// are not changed.
func (a *ALU) AIR(r uint8, imm uint8) {
	if imm == 0 {
		return
	}
	a.regFile.WriteGPR(r, a.regFile.ReadGPR(r)+uint16(imm))
}

// SIR subtracts an immediate from GPR[r]. Immediate 0 is a no-op.
func (a *ALU) SIR(r uint8, imm uint8) {
	if imm == 0 {
		return
	}
	a.subtract(r, uint16(imm))
}

func (a *ALU) subtract(r uint8, operand uint16) {
	op1 := a.regFile.ReadGPR(r)
	result := op1 - operand

	a.regFile.WriteGPR(r, result)
	a.regFile.CC[CCOverflow] = false
	a.regFile.CC[CCUnderflow] = subOverflow16(op1, operand, result)
}

func checkPair(name string, rx, ry uint8) error {
	if (rx != 0 && rx != 2) || (ry != 0 && ry != 2) {
		return fmt.Errorf("%s: %w: rx and ry must be 0 or 2", name, ErrBadRegisterSelector)
	}
	return nil
}

// MLT multiplies GPR[rx] by GPR[ry]. The high half of the signed product goes
// to rx and the low half to rx+1.
func (a *ALU) MLT(rx, ry uint8) error {
	if err := checkPair("MLT", rx, ry); err != nil {
		return err
	}

	product := int32(int16(a.regFile.ReadGPR(rx))) * int32(int16(a.regFile.ReadGPR(ry)))
	a.regFile.WriteGPR(rx, uint16(uint32(product)>>16))
	a.regFile.WriteGPR(rx+1, uint16(uint32(product)))
	a.regFile.CC[CCOverflow] = false

	return nil
}

// DVD divides GPR[rx] by GPR[ry]. The signed quotient goes to rx and the
// remainder to rx+1. A zero divisor sets DIVZERO and fails.
func (a *ALU) DVD(rx, ry uint8) error {
	if err := checkPair("DVD", rx, ry); err != nil {
		return err
	}

	divisor := int32(int16(a.regFile.ReadGPR(ry)))
	if divisor == 0 {
		a.regFile.CC[CCDivZero] = true
		return fmt.Errorf("DVD: %w", ErrDivisionByZero)
	}

	dividend := int32(int16(a.regFile.ReadGPR(rx)))
	a.regFile.WriteGPR(rx, uint16(dividend/divisor))
	a.regFile.WriteGPR(rx+1, uint16(dividend%divisor))

	return nil
}

// TRR sets EQUAL when GPR[rx] equals GPR[ry].
func (a *ALU) TRR(rx, ry uint8) {
	a.regFile.CC[CCEqual] = a.regFile.ReadGPR(rx) == a.regFile.ReadGPR(ry)
}

// AND performs rx = rx & ry.
func (a *ALU) AND(rx, ry uint8) {
	a.regFile.WriteGPR(rx, a.regFile.ReadGPR(rx)&a.regFile.ReadGPR(ry))
}

// ORR performs rx = rx | ry.
func (a *ALU) ORR(rx, ry uint8) {
	a.regFile.WriteGPR(rx, a.regFile.ReadGPR(rx)|a.regFile.ReadGPR(ry))
}

// NOT performs rx = ^rx.
func (a *ALU) NOT(rx uint8) {
	a.regFile.WriteGPR(rx, ^a.regFile.ReadGPR(rx))
}

// SRC shifts GPR[r] by count (masked to 0..15). Arithmetic left shifts are
// the same as logical left shifts; arithmetic right shifts keep the sign.
// Carry receives the last bit shifted out and EQUAL is set on a zero result.
// Count 0 is a no-op.
func (a *ALU) SRC(r, count uint8, left, logical bool) {
	n := count & 0xF
	if n == 0 {
		return
	}

	v := a.regFile.ReadGPR(r)
	var lastOut uint16

	switch {
	case left:
		lastOut = (v >> (16 - n)) & 1
		v <<= n
	case logical:
		lastOut = (v >> (n - 1)) & 1
		v >>= n
	default:
		lastOut = (v >> (n - 1)) & 1
		v = uint16(int16(v) >> n)
	}

	a.regFile.WriteGPR(r, v)
	a.regFile.Carry = lastOut == 1
	a.regFile.CC[CCEqual] = v == 0
}

// RRC rotates GPR[r] by count (masked to 0..15). A plain rotate sets Carry
// to the last bit that wrapped around. A rotate through carry treats the
// register and Carry as one 17-bit ring. EQUAL is set on a zero result.
// Count 0 is a no-op.
func (a *ALU) RRC(r, count uint8, left, throughCarry bool) {
	n := count & 0xF
	if n == 0 {
		return
	}

	v := a.regFile.ReadGPR(r)

	if throughCarry {
		carry := a.regFile.Carry
		for i := uint8(0); i < n; i++ {
			if left {
				out := v&0x8000 != 0
				v <<= 1
				if carry {
					v |= 1
				}
				carry = out
			} else {
				out := v&1 != 0
				v >>= 1
				if carry {
					v |= 0x8000
				}
				carry = out
			}
		}
		a.regFile.Carry = carry
	} else {
		if left {
			v = v<<n | v>>(16-n)
			a.regFile.Carry = v&1 != 0
		} else {
			v = v>>n | v<<(16-n)
			a.regFile.Carry = v&0x8000 != 0
		}
	}

	a.regFile.WriteGPR(r, v)
	a.regFile.CC[CCEqual] = v == 0
}

// addOverflow16 reports signed overflow for a + b = sum.
func addOverflow16(a, b, sum uint16) bool {
	return (a^b)&0x8000 == 0 && (a^sum)&0x8000 != 0
}

// subOverflow16 reports signed overflow for a - b = diff.
func subOverflow16(a, b, diff uint16) bool {
	return (a^b)&0x8000 != 0 && (a^diff)&0x8000 != 0
}
