// Package predictor implements the dynamic branch predictor.
package predictor

// Config holds configuration for the branch predictor.
type Config struct {
	// BHTSize is the number of entries in the Branch History Table.
	// Must be a power of 2. Default is 128.
	BHTSize uint32
}

// DefaultConfig returns a 128-entry table.
func DefaultConfig() Config {
	return Config{BHTSize: 128}
}

// Counter states.
const (
	StronglyNotTaken uint8 = iota
	WeaklyNotTaken
	WeaklyTaken
	StronglyTaken
)

// Stats holds statistics for the branch predictor.
type Stats struct {
	// Branches is the number of recorded predictions.
	Branches uint64
	// Correct is the number of predictions whose next PC was right.
	Correct uint64
}

// Accuracy returns Correct/Branches, or 1 when no branch has been recorded.
func (s Stats) Accuracy() float64 {
	if s.Branches == 0 {
		return 1
	}
	return float64(s.Correct) / float64(s.Branches)
}

// Mispredictions returns the number of wrong predictions.
func (s Stats) Mispredictions() uint64 {
	return s.Branches - s.Correct
}

// Predictor is a bimodal predictor: a Branch History Table of 2-bit
// saturating counters indexed by the low bits of the branch address.
type Predictor struct {
	bht     []uint8
	bhtSize uint32

	stats Stats
}

// New creates a new branch predictor with the given configuration.
func New(config Config) *Predictor {
	bhtSize := config.BHTSize
	if bhtSize == 0 {
		bhtSize = DefaultConfig().BHTSize
	}

	p := &Predictor{
		bht:     make([]uint8, bhtSize),
		bhtSize: bhtSize,
	}
	p.Reset()

	return p
}

func (p *Predictor) index(addr uint16) uint32 {
	return uint32(addr) & (p.bhtSize - 1)
}

// Predict reports whether the branch at addr is predicted taken.
func (p *Predictor) Predict(addr uint16) bool {
	return p.bht[p.index(addr)] >= WeaklyTaken
}

// Update trains the counter for addr with the actual outcome.
func (p *Predictor) Update(addr uint16, taken bool) {
	i := p.index(addr)
	switch {
	case taken && p.bht[i] < StronglyTaken:
		p.bht[i]++
	case !taken && p.bht[i] > StronglyNotTaken:
		p.bht[i]--
	}
}

// Counter returns the raw counter for addr.
func (p *Predictor) Counter(addr uint16) uint8 {
	return p.bht[p.index(addr)]
}

// RecordResult counts one prediction.
func (p *Predictor) RecordResult(correct bool) {
	p.stats.Branches++
	if correct {
		p.stats.Correct++
	}
}

// Branches returns the number of recorded predictions.
func (p *Predictor) Branches() uint64 {
	return p.stats.Branches
}

// Correct returns the number of correct predictions.
func (p *Predictor) Correct() uint64 {
	return p.stats.Correct
}

// Accuracy returns the fraction of correct predictions.
func (p *Predictor) Accuracy() float64 {
	return p.stats.Accuracy()
}

// Stats returns the predictor statistics.
func (p *Predictor) Stats() Stats {
	return p.stats
}

// Reset sets every counter to weakly not taken and clears statistics.
func (p *Predictor) Reset() {
	for i := range p.bht {
		p.bht[i] = WeaklyNotTaken
	}
	p.stats = Stats{}
}
