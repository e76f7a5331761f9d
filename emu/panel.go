package emu

import "fmt"

// Front-panel commands. They bypass program flow and the protected-region
// rule, report problems as messages, and never halt the machine.

// SetGPR sets GPR[i].
func (e *Emulator) SetGPR(i uint8, value uint16) error {
	if i > 3 {
		return e.panelError(fmt.Errorf("set GPR: %w: R%d", ErrBadRegisterSelector, i))
	}
	before := e.snapshot()
	e.regFile.GPR[i] = value
	e.publishChanges(before)
	return nil
}

// SetIXR sets IXR[i] for i in 1..3.
func (e *Emulator) SetIXR(i uint8, value uint16) error {
	before := e.snapshot()
	if err := e.regFile.WriteIXR(i, value); err != nil {
		return e.panelError(fmt.Errorf("set IXR: %w", err))
	}
	e.publishChanges(before)
	return nil
}

// SetFR sets FR[i] for i in 0..1.
func (e *Emulator) SetFR(i uint8, value uint16) error {
	before := e.snapshot()
	if err := e.regFile.WriteFR(i, value); err != nil {
		return e.panelError(fmt.Errorf("set FR: %w", err))
	}
	e.publishChanges(before)
	return nil
}

// SetPC sets the program counter.
func (e *Emulator) SetPC(pc uint16) error {
	if err := checkAddress(pc); err != nil {
		return e.panelError(fmt.Errorf("set PC: %w", err))
	}
	before := e.snapshot()
	e.regFile.SetPC(pc)
	e.publishChanges(before)
	return nil
}

// SetMAR sets the memory address register.
func (e *Emulator) SetMAR(addr uint16) error {
	before := e.snapshot()
	if err := e.memory.SetMAR(addr); err != nil {
		return e.panelError(fmt.Errorf("set MAR: %w", err))
	}
	e.publishChanges(before)
	return nil
}

// SetMBR sets the memory buffer register.
func (e *Emulator) SetMBR(value uint16) {
	before := e.snapshot()
	e.memory.SetMBR(value)
	e.publishChanges(before)
}

// PanelLoad reads memory[MAR] into MBR, bypassing the cache.
func (e *Emulator) PanelLoad() error {
	mar, ok := e.memory.MAR()
	if !ok {
		return e.panelError(fmt.Errorf("load: %w: MAR must be defined", ErrLatchUnset))
	}

	before := e.snapshot()
	value, err := e.memory.Read(mar)
	if err != nil {
		return e.panelError(fmt.Errorf("load: %w", err))
	}
	e.publishChanges(before)
	e.message(fmt.Sprintf("Value %d was previously stored at address %d.", value, mar))
	return nil
}

// PanelStore writes MBR into memory[MAR], bypassing the cache. The cached
// copy of the block is dropped so the cache never disagrees with memory.
func (e *Emulator) PanelStore() error {
	mar, marOK := e.memory.MAR()
	mbr, mbrOK := e.memory.MBR()
	if !marOK || !mbrOK {
		return e.panelError(fmt.Errorf("store: %w: MAR and MBR must be defined", ErrLatchUnset))
	}

	before := e.snapshot()
	if err := e.memory.Write(mar, mbr); err != nil {
		return e.panelError(fmt.Errorf("store: %w", err))
	}
	e.cache.Invalidate(mar)
	e.publishChanges(before)
	e.message(fmt.Sprintf("MBR %d stored at address %d.", mbr, mar))
	return nil
}

// PanelLoadPlus reads c(MAR) through the cache into MBR, then advances MAR.
func (e *Emulator) PanelLoadPlus() error {
	mar, ok := e.memory.MAR()
	if !ok {
		return e.panelError(fmt.Errorf("load plus: %w: MAR must be defined", ErrLatchUnset))
	}

	before := e.snapshot()
	value, err := e.cache.Load(mar)
	if err != nil {
		return e.panelError(fmt.Errorf("load plus: %w", err))
	}
	e.memory.SetMBR(value)
	advanceErr := e.memory.SetMAR(mar + 1)
	e.publishChanges(before)
	if advanceErr != nil {
		return e.panelError(fmt.Errorf("load plus: %w", advanceErr))
	}
	e.message(fmt.Sprintf("Value %d loaded from address %d. New MAR at %d.", value, mar, mar+1))
	return nil
}

// PanelStorePlus writes MBR through the cache to c(MAR), then advances MAR.
func (e *Emulator) PanelStorePlus() error {
	mar, marOK := e.memory.MAR()
	mbr, mbrOK := e.memory.MBR()
	if !marOK || !mbrOK {
		return e.panelError(fmt.Errorf("store plus: %w: MAR and MBR must be defined", ErrLatchUnset))
	}

	before := e.snapshot()
	if err := e.cache.Store(mar, mbr); err != nil {
		return e.panelError(fmt.Errorf("store plus: %w", err))
	}
	advanceErr := e.memory.SetMAR(mar + 1)
	e.publishChanges(before)
	if advanceErr != nil {
		return e.panelError(fmt.Errorf("store plus: %w", advanceErr))
	}
	e.message(fmt.Sprintf("MBR value %d stored at address %d. New MAR at %d.", mbr, mar, mar+1))
	return nil
}

func (e *Emulator) panelError(err error) error {
	e.message(err.Error())
	return err
}
