package emu

import "fmt"

const (
	// MemorySize is the number of addressable words.
	MemorySize = 2048

	// AddressMask keeps the low 11 bits of a value.
	AddressMask = 0x7FF

	// ProtectedLimit is the highest address of the protected region.
	ProtectedLimit = 5
)

// Memory is a flat store of 16-bit words with MAR/MBR latches.
//
// Read and Write are bus transactions: they latch MAR and MBR. Peek and Poke
// touch the backing words without changing the latches and are used by the
// cache for block fills and write-through.
type Memory struct {
	words [MemorySize]uint16

	mar    uint16
	mbr    uint16
	marSet bool
	mbrSet bool
}

// NewMemory creates a zeroed memory with unset latches.
func NewMemory() *Memory {
	return &Memory{}
}

func checkAddress(addr uint16) error {
	if addr >= MemorySize {
		return fmt.Errorf("%w: %d", ErrAddressOutOfRange, addr)
	}
	return nil
}

// Read reads the word at addr, latching MAR and MBR.
func (m *Memory) Read(addr uint16) (uint16, error) {
	if err := checkAddress(addr); err != nil {
		return 0, err
	}
	m.Latch(addr, m.words[addr])
	return m.mbr, nil
}

// Write stores value at addr, latching MAR and MBR.
func (m *Memory) Write(addr, value uint16) error {
	if err := checkAddress(addr); err != nil {
		return err
	}
	m.words[addr] = value
	m.Latch(addr, value)
	return nil
}

// Peek returns the word at addr without touching the latches. Out-of-range
// addresses read as 0.
func (m *Memory) Peek(addr uint16) uint16 {
	if addr >= MemorySize {
		return 0
	}
	return m.words[addr]
}

// Poke stores value at addr without touching the latches. Out-of-range
// addresses are ignored.
func (m *Memory) Poke(addr, value uint16) {
	if addr >= MemorySize {
		return
	}
	m.words[addr] = value
}

// Latch records a bus transaction on MAR and MBR without accessing memory.
func (m *Memory) Latch(addr, value uint16) {
	m.mar = addr & AddressMask
	m.mbr = value
	m.marSet = true
	m.mbrSet = true
}

// MAR returns the memory address register and whether it has been set.
func (m *Memory) MAR() (uint16, bool) {
	return m.mar, m.marSet
}

// MBR returns the memory buffer register and whether it has been set.
func (m *Memory) MBR() (uint16, bool) {
	return m.mbr, m.mbrSet
}

// SetMAR sets the memory address register.
func (m *Memory) SetMAR(addr uint16) error {
	if err := checkAddress(addr); err != nil {
		return err
	}
	m.mar = addr
	m.marSet = true
	return nil
}

// SetMBR sets the memory buffer register.
func (m *Memory) SetMBR(value uint16) {
	m.mbr = value
	m.mbrSet = true
}

// Dump returns a copy of the words in [start, end].
func (m *Memory) Dump(start, end uint16) ([]uint16, error) {
	if err := checkAddress(start); err != nil {
		return nil, err
	}
	if err := checkAddress(end); err != nil {
		return nil, err
	}
	if end < start {
		return nil, nil
	}
	out := make([]uint16, int(end-start)+1)
	copy(out, m.words[start:end+1])
	return out, nil
}

// Reset zeroes every word and unsets both latches.
func (m *Memory) Reset() {
	m.words = [MemorySize]uint16{}
	m.mar, m.mbr = 0, 0
	m.marSet, m.mbrSet = false, false
}
