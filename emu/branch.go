package emu

// BranchPredictor is the dynamic predictor consulted by conditional
// branches.
type BranchPredictor interface {
	// Predict reports whether the branch at addr is predicted taken.
	Predict(addr uint16) bool
	// Update trains the predictor with the actual outcome.
	Update(addr uint16, taken bool)
	// RecordResult feeds one prediction outcome into the accuracy counters.
	RecordResult(correct bool)
	// Branches returns the number of recorded predictions.
	Branches() uint64
	// Correct returns the number of correct predictions.
	Correct() uint64
	// Accuracy returns Correct/Branches, or 1 when no branch was seen.
	Accuracy() float64
	// Reset reinitializes counters and statistics.
	Reset()
}

// BranchUnit implements control transfer. Conditional branches run the
// predictor protocol: predict, resolve, score, train, then commit.
type BranchUnit struct {
	regFile   *RegFile
	predictor BranchPredictor
}

// NewBranchUnit creates a new BranchUnit. predictor may be nil, in which
// case conditional branches are resolved without prediction.
func NewBranchUnit(regFile *RegFile, predictor BranchPredictor) *BranchUnit {
	return &BranchUnit{regFile: regFile, predictor: predictor}
}

// JZ branches to target when GPR[r] is zero.
func (b *BranchUnit) JZ(branchPC, target uint16, r uint8) {
	zero := b.regFile.ReadGPR(r) == 0
	b.regFile.CC[CCEqual] = zero
	b.conditional(branchPC, target, zero)
}

// JNE branches to target when GPR[r] is not zero.
func (b *BranchUnit) JNE(branchPC, target uint16, r uint8) {
	zero := b.regFile.ReadGPR(r) == 0
	b.regFile.CC[CCEqual] = zero
	b.conditional(branchPC, target, !zero)
}

// JCC branches to target when condition code cc is set.
func (b *BranchUnit) JCC(branchPC, target uint16, cc uint8) {
	b.conditional(branchPC, target, b.regFile.CC[cc&0x3])
}

// SOB decrements GPR[r] and branches to target while the signed result is
// greater than zero.
func (b *BranchUnit) SOB(branchPC, target uint16, r uint8) {
	v := b.regFile.ReadGPR(r) - 1
	b.regFile.WriteGPR(r, v)
	b.regFile.CC[CCEqual] = v == 0
	b.conditional(branchPC, target, int16(v) > 0)
}

// JGE branches to target when GPR[r] is greater than or equal to zero.
func (b *BranchUnit) JGE(branchPC, target uint16, r uint8) {
	v := int16(b.regFile.ReadGPR(r))
	b.regFile.CC[CCEqual] = v == 0
	b.conditional(branchPC, target, v >= 0)
}

// JMA jumps unconditionally.
func (b *BranchUnit) JMA(target uint16) {
	b.regFile.SetPC(target)
}

// JSR saves the return address in R3 and jumps to target.
func (b *BranchUnit) JSR(target uint16) {
	b.regFile.WriteGPR(3, b.regFile.PC)
	b.regFile.SetPC(target)
}

// RFS loads R0 with imm and returns to the address in R3.
func (b *BranchUnit) RFS(imm uint8) {
	b.regFile.WriteGPR(0, uint16(imm))
	b.regFile.SetPC(b.regFile.ReadGPR(3))
}

// conditional commits the next PC for a conditional branch. The PC already
// points at the fall-through instruction.
func (b *BranchUnit) conditional(branchPC, target uint16, taken bool) {
	fallthroughPC := b.regFile.PC

	actualNext := fallthroughPC
	if taken {
		actualNext = target
	}

	if b.predictor != nil {
		predictedNext := fallthroughPC
		if b.predictor.Predict(branchPC) {
			predictedNext = target
		}
		b.predictor.RecordResult(predictedNext == actualNext)
		b.predictor.Update(branchPC, taken)
	}

	b.regFile.SetPC(actualNext)
}
