package emu

import (
	"fmt"
	"math"
)

// Floating-point words are {sign:1, exponent:7, mantissa:8} with an implicit
// leading one: value = (-1)^s * (256+m)/256 * 2^(e-63). A zero magnitude
// encodes 0.
const (
	floatBias     = 63
	floatMaxExp   = 0x7F
	floatImplicit = 0x100
)

type unpackedFloat struct {
	neg  bool
	exp  int
	mant int // 0 for zero, otherwise in [256, 511]
}

func unpackFloat(w uint16) unpackedFloat {
	if w&0x7FFF == 0 {
		return unpackedFloat{}
	}
	return unpackedFloat{
		neg:  w&0x8000 != 0,
		exp:  int(w>>8) & floatMaxExp,
		mant: int(w&0xFF) | floatImplicit,
	}
}

// packFloat normalizes mant into [256, 511] and packs the word. Exponent
// overflow saturates to the largest magnitude; exponent underflow flushes to
// zero.
func packFloat(neg bool, exp, mant int) (w uint16, overflow, underflow bool) {
	if mant == 0 {
		return 0, false, false
	}
	for mant > 0x1FF {
		mant >>= 1
		exp++
	}
	for mant < floatImplicit {
		mant <<= 1
		exp--
	}

	switch {
	case exp > floatMaxExp:
		w, overflow = 0x7FFF, true
	case exp < 0:
		return 0, false, true
	default:
		w = uint16(exp)<<8 | uint16(mant&0xFF)
		if w == 0 {
			return 0, false, true
		}
	}

	if neg {
		w |= 0x8000
	}
	return w, overflow, underflow
}

// floatAdd computes a+b (or a-b) by aligning the smaller exponent's mantissa,
// adding signed mantissas and renormalizing.
func floatAdd(a, b uint16, subtract bool) (uint16, bool, bool) {
	x, y := unpackFloat(a), unpackFloat(b)
	if subtract {
		y.neg = !y.neg
	}
	if x.mant == 0 {
		x.exp = y.exp
	}
	if y.mant == 0 {
		y.exp = x.exp
	}

	exp := x.exp
	if y.exp > exp {
		exp = y.exp
	}
	mx := x.mant >> uint(exp-x.exp)
	my := y.mant >> uint(exp-y.exp)
	if x.neg {
		mx = -mx
	}
	if y.neg {
		my = -my
	}

	sum := mx + my
	neg := sum < 0
	if neg {
		sum = -sum
	}
	return packFloat(neg, exp, sum)
}

// fixedToFloat converts a signed 16-bit integer to a float word.
func fixedToFloat(v uint16) uint16 {
	s := int(int16(v))
	neg := s < 0
	if neg {
		s = -s
	}
	w, _, _ := packFloat(neg, floatBias+8, s)
	return w
}

// floatToFixed converts a float word to a signed 16-bit integer, truncating
// toward zero. Magnitudes that do not fit saturate and report overflow.
func floatToFixed(w uint16) (uint16, bool) {
	f := unpackFloat(w)
	if f.mant == 0 {
		return 0, false
	}

	mag := int64(f.mant)
	shift := f.exp - floatBias - 8
	overflow := false
	switch {
	case shift > 16:
		overflow = true
	case shift >= 0:
		mag <<= uint(shift)
	default:
		mag >>= uint(-shift)
	}

	limit := int64(math.MaxInt16)
	if f.neg {
		limit++
	}
	if overflow || mag > limit {
		mag, overflow = limit, true
	}
	if f.neg {
		mag = -mag
	}
	return uint16(mag), overflow
}

// FloatValue returns the value encoded by a float word.
func FloatValue(w uint16) float64 {
	f := unpackFloat(w)
	if f.mant == 0 {
		return 0
	}
	v := math.Ldexp(float64(f.mant), f.exp-floatBias-8)
	if f.neg {
		return -v
	}
	return v
}

// FloatWord encodes v as a float word, truncating the mantissa.
func FloatWord(v float64) uint16 {
	if v == 0 || math.IsNaN(v) {
		return 0
	}
	neg := v < 0
	frac, exp := math.Frexp(math.Abs(v))
	w, _, _ := packFloat(neg, exp-1+floatBias, int(frac*512))
	return w
}

// FPU implements floating-point and vector instructions. Operands are read
// through the load/store unit so every access goes through the cache.
type FPU struct {
	regFile *RegFile
	lsu     *LoadStoreUnit
}

// NewFPU creates a new FPU.
func NewFPU(regFile *RegFile, lsu *LoadStoreUnit) *FPU {
	return &FPU{regFile: regFile, lsu: lsu}
}

// FADD performs FRf = FRf + c(EA).
func (u *FPU) FADD(f uint8, ea uint16) error {
	return u.addSub("FADD", f, ea, false)
}

// FSUB performs FRf = FRf - c(EA).
func (u *FPU) FSUB(f uint8, ea uint16) error {
	return u.addSub("FSUB", f, ea, true)
}

func (u *FPU) addSub(name string, f uint8, ea uint16, subtract bool) error {
	acc, err := u.regFile.ReadFR(f)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	operand, err := u.lsu.Load(ea)
	if err != nil {
		return err
	}

	result, overflow, underflow := floatAdd(acc, operand, subtract)
	u.regFile.FR[f] = result
	u.regFile.CC[CCOverflow] = overflow
	u.regFile.CC[CCUnderflow] = underflow
	return nil
}

// VADD adds the vector at c(EA+1) into the vector at c(EA), element-wise.
// The length is FRf.
func (u *FPU) VADD(f uint8, ea uint16) error {
	return u.vector("VADD", f, ea, func(a, b uint16) uint16 { return a + b })
}

// VSUB subtracts the vector at c(EA+1) from the vector at c(EA).
func (u *FPU) VSUB(f uint8, ea uint16) error {
	return u.vector("VSUB", f, ea, func(a, b uint16) uint16 { return a - b })
}

func (u *FPU) vector(name string, f uint8, ea uint16, op func(a, b uint16) uint16) error {
	length, err := u.regFile.ReadFR(f)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	p1, err := u.lsu.Load(ea)
	if err != nil {
		return err
	}
	p2, err := u.lsu.Load(ea + 1)
	if err != nil {
		return err
	}

	base1, base2 := int(p1&AddressMask), int(p2&AddressMask)
	for i := 0; i < int(length); i++ {
		a1, a2 := base1+i, base2+i
		if a1 >= MemorySize || a2 >= MemorySize {
			return fmt.Errorf("%s: %w: element %d", name, ErrAddressOutOfRange, i)
		}
		v1, err := u.lsu.Load(uint16(a1))
		if err != nil {
			return err
		}
		v2, err := u.lsu.Load(uint16(a2))
		if err != nil {
			return err
		}
		if err := u.lsu.Store(uint16(a1), op(v1, v2)); err != nil {
			return err
		}
	}
	return nil
}

// CNVRT converts c(EA). When GPR[r] is zero the operand is a float word and
// the truncated integer goes to GPR[r]; otherwise the operand is an integer
// and its float encoding goes to FR0.
func (u *FPU) CNVRT(r uint8, ea uint16) error {
	operand, err := u.lsu.Load(ea)
	if err != nil {
		return err
	}

	if u.regFile.ReadGPR(r) == 0 {
		value, overflow := floatToFixed(operand)
		u.regFile.WriteGPR(r, value)
		u.regFile.CC[CCOverflow] = overflow
		return nil
	}

	u.regFile.FR[0] = fixedToFloat(operand)
	return nil
}
