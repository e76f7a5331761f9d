// Package cache provides the operand cache using Akita cache components.
package cache

import (
	"fmt"
	"strings"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/c6461sim/emu"
)

// Config holds cache configuration parameters.
type Config struct {
	// Lines is the number of cache lines. The cache is fully associative.
	Lines int
	// BlockSize is the number of words per line.
	BlockSize int
}

// DefaultConfig returns 16 lines of 8 words.
func DefaultConfig() Config {
	return Config{
		Lines:     16,
		BlockSize: 8,
	}
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits over accesses, or 0 before the first access.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// BackingStore is the memory behind the cache.
type BackingStore interface {
	// ReadBlock fetches size words starting at addr.
	ReadBlock(addr uint16, size int) []uint16
	// WriteWord stores a single word.
	WriteWord(addr, value uint16)
}

// Cache is a write-through, write-allocate word cache. Tag and recency state
// live in an Akita directory with a single set, so every line competes for
// every block and the LRU victim finder evicts the least recently touched
// line once all lines are valid.
type Cache struct {
	config Config

	directory *akitacache.DirectoryImpl

	// indexed by way
	dataStore [][]uint16

	stats Statistics

	backing BackingStore
}

// New creates a new cache with the given configuration.
func New(config Config, backing BackingStore) *Cache {
	dataStore := make([][]uint16, config.Lines)
	for i := range dataStore {
		dataStore[i] = make([]uint16, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			1,
			config.Lines,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockAddr(addr uint16) uint64 {
	return uint64(addr) / uint64(c.config.BlockSize) * uint64(c.config.BlockSize)
}

func (c *Cache) offset(addr uint16) int {
	return int(addr) % c.config.BlockSize
}

func checkAddress(addr uint16) error {
	if addr >= emu.MemorySize {
		return fmt.Errorf("%w: %d", emu.ErrAddressOutOfRange, addr)
	}
	return nil
}

// lookup returns the way data holding addr, filling a line on a miss. The
// line is promoted to most recently used either way.
func (c *Cache) lookup(addr uint16) []uint16 {
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return c.dataStore[block.WayID]
	}

	c.stats.Misses++
	victim := c.directory.FindVictim(blockAddr)
	if victim.IsValid {
		c.stats.Evictions++
	}

	data := c.dataStore[victim.WayID]
	copy(data, c.backing.ReadBlock(uint16(blockAddr), c.config.BlockSize))

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return data
}

// Load returns the word at addr.
func (c *Cache) Load(addr uint16) (uint16, error) {
	if err := checkAddress(addr); err != nil {
		return 0, err
	}
	c.stats.Reads++

	return c.lookup(addr)[c.offset(addr)], nil
}

// Store writes value into the cached line, allocating it on a miss, and
// writes the word through to the backing store.
func (c *Cache) Store(addr, value uint16) error {
	if err := checkAddress(addr); err != nil {
		return err
	}
	c.stats.Writes++

	c.lookup(addr)[c.offset(addr)] = value
	c.backing.WriteWord(addr, value)
	return nil
}

// Invalidate marks the line holding addr as invalid.
func (c *Cache) Invalidate(addr uint16) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	for _, data := range c.dataStore {
		clear(data)
	}
	c.stats = Statistics{}
}

// Line is a snapshot of one valid cache line.
type Line struct {
	Way   int
	Block uint16
	Words []uint16
}

// Lines returns the valid lines from least to most recently used.
func (c *Cache) Lines() []Line {
	var lines []Line
	for _, set := range c.directory.GetSets() {
		for _, block := range set.LRUQueue {
			if !block.IsValid {
				continue
			}
			words := make([]uint16, c.config.BlockSize)
			copy(words, c.dataStore[block.WayID])
			lines = append(lines, Line{
				Way:   block.WayID,
				Block: uint16(block.Tag),
				Words: words,
			})
		}
	}
	return lines
}

// Summary lists the valid lines in octal, least recently used first.
func (c *Cache) Summary() string {
	lines := c.Lines()
	if len(lines) == 0 {
		return "cache empty"
	}

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%04o:", line.Block)
		for _, w := range line.Words {
			fmt.Fprintf(&sb, " %06o", w)
		}
	}
	return sb.String()
}
