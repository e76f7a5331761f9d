package emu

import "fmt"

// OperandCache is the path every operand access takes. Instruction fetch
// and front-panel load/store bypass it.
type OperandCache interface {
	// Load returns the word at addr.
	Load(addr uint16) (uint16, error)
	// Store writes value at addr through to memory.
	Store(addr, value uint16) error
	// Invalidate drops the line holding addr, if any.
	Invalidate(addr uint16)
	// Reset invalidates every line.
	Reset()
	// Summary describes the resident lines.
	Summary() string
}

// uncached is the OperandCache used when no cache is attached.
type uncached struct {
	memory *Memory
}

func (u *uncached) Load(addr uint16) (uint16, error) {
	if err := checkAddress(addr); err != nil {
		return 0, err
	}
	return u.memory.Peek(addr), nil
}

func (u *uncached) Store(addr, value uint16) error {
	if err := checkAddress(addr); err != nil {
		return err
	}
	u.memory.Poke(addr, value)
	return nil
}

func (u *uncached) Invalidate(uint16) {}

func (u *uncached) Reset() {}

func (u *uncached) Summary() string {
	return "cache disabled"
}

// LoadStoreUnit implements register/memory transfers. Every access goes
// through the operand cache and latches MAR/MBR.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
	cache   OperandCache
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file, memory and operand cache.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory, cache OperandCache) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
		cache:   cache,
	}
}

// Load reads the operand at ea and latches it.
func (lsu *LoadStoreUnit) Load(ea uint16) (uint16, error) {
	value, err := lsu.cache.Load(ea)
	if err != nil {
		return 0, err
	}
	lsu.memory.Latch(ea, value)
	return value, nil
}

// Store writes value at ea and latches it.
func (lsu *LoadStoreUnit) Store(ea, value uint16) error {
	if err := lsu.cache.Store(ea, value); err != nil {
		return err
	}
	lsu.memory.Latch(ea, value)
	return nil
}

// LDR performs R = c(EA).
func (lsu *LoadStoreUnit) LDR(r uint8, ea uint16) error {
	value, err := lsu.Load(ea)
	if err != nil {
		return err
	}
	lsu.regFile.WriteGPR(r, value)
	return nil
}

// STR performs c(EA) = R.
func (lsu *LoadStoreUnit) STR(r uint8, ea uint16) error {
	return lsu.Store(ea, lsu.regFile.ReadGPR(r))
}

// LDA performs R = EA.
func (lsu *LoadStoreUnit) LDA(r uint8, ea uint16) {
	lsu.regFile.WriteGPR(r, ea)
}

// LDX performs Xx = c(EA).
func (lsu *LoadStoreUnit) LDX(x uint8, ea uint16) error {
	if x < 1 || x > 3 {
		return fmt.Errorf("LDX: %w: X%d", ErrBadIndexRegister, x)
	}
	value, err := lsu.Load(ea)
	if err != nil {
		return err
	}
	return lsu.regFile.WriteIXR(x, value)
}

// STX performs c(EA) = Xx.
func (lsu *LoadStoreUnit) STX(x uint8, ea uint16) error {
	value, err := lsu.regFile.ReadIXR(x)
	if err != nil {
		return fmt.Errorf("STX: %w", err)
	}
	return lsu.Store(ea, value)
}

// LDFR performs FRf = c(EA).
func (lsu *LoadStoreUnit) LDFR(f uint8, ea uint16) error {
	if f > 1 {
		return fmt.Errorf("LDFR: %w: FR%d", ErrBadRegisterSelector, f)
	}
	value, err := lsu.Load(ea)
	if err != nil {
		return err
	}
	return lsu.regFile.WriteFR(f, value)
}

// STFR performs c(EA) = FRf.
func (lsu *LoadStoreUnit) STFR(f uint8, ea uint16) error {
	value, err := lsu.regFile.ReadFR(f)
	if err != nil {
		return fmt.Errorf("STFR: %w", err)
	}
	return lsu.Store(ea, value)
}
