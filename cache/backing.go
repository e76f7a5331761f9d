package cache

import (
	"github.com/sarchlab/c6461sim/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore. Block fills and
// write-through use Peek and Poke, so they do not disturb MAR and MBR.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// ReadBlock fetches size words starting at addr.
func (m *MemoryBacking) ReadBlock(addr uint16, size int) []uint16 {
	data := make([]uint16, size)
	for i := range data {
		data[i] = m.memory.Peek(addr + uint16(i))
	}
	return data
}

// WriteWord stores a single word.
func (m *MemoryBacking) WriteWord(addr, value uint16) {
	m.memory.Poke(addr, value)
}
