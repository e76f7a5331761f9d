package emu

import (
	"fmt"

	"github.com/sarchlab/c6461sim/insts"
)

// EffectiveAddress resolves the effective address of a load/store format
// instruction: indexing, then validation, then one level of indirection
// through the cache, then validation again. The protected region is only
// enforced while the machine is running.
func (e *Emulator) EffectiveAddress(inst *insts.Instruction) (uint16, error) {
	return e.resolveEA(inst, e.state == StateRunning)
}

// resolveEA computes the EA. When protected is set, addresses in the
// protected region are rejected.
func (e *Emulator) resolveEA(inst *insts.Instruction, protected bool) (uint16, error) {
	addr := uint32(inst.Address)

	// LDX and STX name their target in the IX field.
	if inst.IX != 0 && inst.Op != insts.OpLDX && inst.Op != insts.OpSTX {
		ix, err := e.regFile.ReadIXR(inst.IX)
		if err != nil {
			return 0, err
		}
		addr += uint32(ix & AddressMask)
	}

	if err := validateEA(addr, protected); err != nil {
		return 0, err
	}

	if inst.I {
		ptr, err := e.lsu.Load(uint16(addr))
		if err != nil {
			return 0, err
		}
		addr = uint32(ptr & AddressMask)
		if err := validateEA(addr, protected); err != nil {
			return 0, err
		}
	}

	return uint16(addr), nil
}

func validateEA(addr uint32, protected bool) error {
	if addr >= MemorySize {
		return fmt.Errorf("%w: effective address %d", ErrAddressOutOfRange, addr)
	}
	if protected && addr <= ProtectedLimit {
		return fmt.Errorf("%w: effective address %d", ErrIllegalReservedAccess, addr)
	}
	return nil
}
