package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/c6461sim/insts"
)

// State is the run state of the machine.
type State uint8

// Run states.
const (
	StateHalted State = iota
	StateRunning
	StateWaitingForInput
)

func (s State) String() string {
	switch s {
	case StateHalted:
		return "Halted"
	case StateRunning:
		return "Running"
	case StateWaitingForInput:
		return "WaitingForInput"
	}
	return "Unknown"
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if this step stopped the machine (HLT, a failed
	// instruction, or the instruction budget).
	Halted bool

	// Waiting is true while an IN instruction waits for console input.
	Waiting bool

	// Err is set if the instruction failed.
	Err error
}

// Emulator executes instructions functionally.
type Emulator struct {
	regFile   *RegFile
	memory    *Memory
	cache     *trackingCache
	predictor BranchPredictor
	decoder   *insts.Decoder
	bus       *Bus

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit
	fpu        *FPU

	logger logrus.FieldLogger
	stdout io.Writer

	// Execution state
	state             State
	pending           *PendingInput
	defaultInputCount int
	instructionCount  uint64
	maxInstructions   uint64 // 0 means no limit

	operandCache OperandCache
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemory uses m instead of a fresh memory.
func WithMemory(m *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
	}
}

// WithCache routes operand accesses through c.
func WithCache(c OperandCache) EmulatorOption {
	return func(e *Emulator) {
		e.operandCache = c
	}
}

// WithPredictor attaches a branch predictor.
func WithPredictor(p BranchPredictor) EmulatorOption {
	return func(e *Emulator) {
		e.predictor = p
	}
}

// WithBus publishes events on b.
func WithBus(b *Bus) EmulatorOption {
	return func(e *Emulator) {
		e.bus = b
	}
}

// WithObserver subscribes o to the emulator's bus.
func WithObserver(o Observer) EmulatorOption {
	return func(e *Emulator) {
		if e.bus == nil {
			e.bus = NewBus()
		}
		e.bus.Subscribe(o)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logrus.FieldLogger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = l
	}
}

// WithStdout sets the writer for OUT to character devices.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithDefaultInputCount sets how many values IN expects when R3 is not
// positive.
func WithDefaultInputCount(n int) EmulatorOption {
	return func(e *Emulator) {
		if n > 0 {
			e.defaultInputCount = n
		}
	}
}

// NewEmulator creates a new emulator. The PC starts unset and the machine
// starts halted.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:           &RegFile{},
		decoder:           insts.NewDecoder(),
		stdout:            os.Stdout,
		defaultInputCount: DefaultInputCount,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.memory == nil {
		e.memory = NewMemory()
	}
	if e.operandCache == nil {
		e.operandCache = &uncached{memory: e.memory}
	}
	if e.bus == nil {
		e.bus = NewBus()
	}
	if e.logger == nil {
		e.logger = logrus.StandardLogger()
	}

	e.cache = &trackingCache{OperandCache: e.operandCache}

	// Create execution units
	e.alu = NewALU(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory, e.cache)
	e.branchUnit = NewBranchUnit(e.regFile, e.predictor)
	e.fpu = NewFPU(e.regFile, e.lsu)

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Bus returns the event bus.
func (e *Emulator) Bus() *Bus {
	return e.bus
}

// State returns the run state.
func (e *Emulator) State() State {
	return e.state
}

// PendingInput returns the IN waiting for console input, if any.
func (e *Emulator) PendingInput() (PendingInput, bool) {
	if e.pending == nil {
		return PendingInput{}, false
	}
	return *e.pending, true
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// CacheSummary describes the resident cache lines.
func (e *Emulator) CacheSummary() string {
	return e.cache.Summary()
}

// LoadProgram deposits words starting at entry and sets the PC to entry.
func (e *Emulator) LoadProgram(entry uint16, words []uint16) error {
	for i, w := range words {
		if err := e.Deposit(entry+uint16(i), w); err != nil {
			return err
		}
	}
	return e.SetPC(entry)
}

// Deposit writes a word straight into memory and drops any cached copy of
// its block. It is used by program loaders.
func (e *Emulator) Deposit(addr, value uint16) error {
	before := e.snapshot()
	if err := e.memory.Write(addr, value); err != nil {
		return err
	}
	e.cache.Invalidate(addr)
	e.publishChanges(before)
	return nil
}

// Start puts the machine in the running state. An IN that is already
// waiting keeps the machine suspended until input arrives.
func (e *Emulator) Start() {
	if e.pending != nil {
		e.pending.resume = true
		return
	}
	e.setState(StateRunning)
}

// Halt stops the machine. A pending IN stays pending but will no longer
// restart the machine when satisfied.
func (e *Emulator) Halt() {
	e.halt()
	e.message("Program halted")
}

func (e *Emulator) halt() {
	if e.pending != nil {
		e.pending.resume = false
	}
	e.setState(StateHalted)
}

// Run starts the machine and steps until it halts or waits for input.
func (e *Emulator) Run() StepResult {
	e.Start()
	result := StepResult{Waiting: e.pending != nil}
	for e.state == StateRunning {
		result = e.Step()
	}
	return result
}

// Reset zeroes every register, memory and the cache, clears predictor state,
// and leaves the machine halted with PC = 0.
func (e *Emulator) Reset() {
	before := e.snapshot()
	before.forceAll = true

	*e.regFile = RegFile{}
	e.regFile.SetPC(0)
	e.memory.Reset()
	e.cache.Reset()
	if e.predictor != nil {
		e.predictor.Reset()
	}
	e.pending = nil
	e.instructionCount = 0

	e.publishChanges(before)
	e.setState(StateHalted)
	e.message("CPU reset. Cache emptied, memory emptied, all registers zeroed.")
}

// Step executes a single instruction.
// It is a no-op while an IN waits for console input.
func (e *Emulator) Step() StepResult {
	if e.pending != nil {
		return StepResult{Waiting: true}
	}

	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return e.fail(fmt.Errorf("%w: %d", ErrMaxInstructions, e.maxInstructions))
	}
	if !e.regFile.PCSet {
		return e.fail(fmt.Errorf("fetch: %w: PC", ErrLatchUnset))
	}

	before := e.snapshot()

	// 1. Fetch directly from memory; instruction fetch bypasses the cache.
	pc := e.regFile.PC
	word, err := e.memory.Read(pc)
	if err != nil {
		return e.fail(fmt.Errorf("fetch: %w", err))
	}
	e.regFile.IR = word
	e.regFile.SetPC(pc + 1)

	// 2. Decode
	inst := e.decoder.Decode(word)
	e.logger.WithFields(logrus.Fields{
		"pc": fmt.Sprintf("%04o", pc),
		"ir": fmt.Sprintf("%06o", word),
		"op": inst.Op.String(),
	}).Debug("step")

	// 3. Execute
	err = e.execute(pc, inst)
	e.instructionCount++
	e.publishChanges(before)

	if err != nil {
		return e.fail(fmt.Errorf("%v at %04o: %w", inst.Op, pc, err))
	}

	return StepResult{
		Halted:  inst.Op == insts.OpHLT,
		Waiting: e.pending != nil,
	}
}

// fail converts an instruction failure into a diagnostic and halts.
func (e *Emulator) fail(err error) StepResult {
	e.logger.WithError(err).Warn("instruction failed")
	e.message(err.Error())
	e.halt()
	return StepResult{Halted: true, Err: err}
}

// execute dispatches and executes a decoded instruction.
func (e *Emulator) execute(pc uint16, inst *insts.Instruction) error {
	switch inst.Op {
	case insts.OpHLT:
		e.Halt()
		return nil
	case insts.OpUnknown:
		e.logger.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("%04o", pc),
			"code": fmt.Sprintf("%02o", inst.Code),
		}).Info("unknown opcode")
		e.message(fmt.Sprintf("Unknown opcode. May be data: %d", inst.Code))
		return nil
	}

	switch inst.Format {
	case insts.FormatLoadStore:
		return e.executeLoadStore(pc, inst)
	case insts.FormatImmediate:
		e.executeImmediate(inst)
		return nil
	case insts.FormatRegReg:
		return e.executeRegReg(inst)
	case insts.FormatShiftRotate:
		e.executeShiftRotate(inst)
		return nil
	case insts.FormatIO:
		return e.executeIO(inst)
	}

	return fmt.Errorf("unimplemented format %d", inst.Format)
}

// executeLoadStore executes every instruction that carries an effective
// address.
func (e *Emulator) executeLoadStore(pc uint16, inst *insts.Instruction) error {
	ea, err := e.resolveEA(inst, e.state == StateRunning)
	if err != nil {
		return err
	}

	switch inst.Op {
	case insts.OpLDR:
		return e.lsu.LDR(inst.R, ea)
	case insts.OpSTR:
		return e.lsu.STR(inst.R, ea)
	case insts.OpLDA:
		e.lsu.LDA(inst.R, ea)
	case insts.OpLDX:
		return e.lsu.LDX(inst.IX, ea)
	case insts.OpSTX:
		return e.lsu.STX(inst.IX, ea)
	case insts.OpLDFR:
		return e.lsu.LDFR(inst.R, ea)
	case insts.OpSTFR:
		return e.lsu.STFR(inst.R, ea)
	case insts.OpAMR:
		operand, err := e.lsu.Load(ea)
		if err != nil {
			return err
		}
		e.alu.AMR(inst.R, operand)
	case insts.OpSMR:
		operand, err := e.lsu.Load(ea)
		if err != nil {
			return err
		}
		e.alu.SMR(inst.R, operand)
	case insts.OpJZ:
		e.branchUnit.JZ(pc, ea, inst.R)
	case insts.OpJNE:
		e.branchUnit.JNE(pc, ea, inst.R)
	case insts.OpJCC:
		e.branchUnit.JCC(pc, ea, inst.R)
	case insts.OpJMA:
		e.branchUnit.JMA(ea)
	case insts.OpJSR:
		e.branchUnit.JSR(ea)
	case insts.OpSOB:
		e.branchUnit.SOB(pc, ea, inst.R)
	case insts.OpJGE:
		e.branchUnit.JGE(pc, ea, inst.R)
	case insts.OpFADD:
		return e.fpu.FADD(inst.R, ea)
	case insts.OpFSUB:
		return e.fpu.FSUB(inst.R, ea)
	case insts.OpVADD:
		return e.fpu.VADD(inst.R, ea)
	case insts.OpVSUB:
		return e.fpu.VSUB(inst.R, ea)
	case insts.OpCNVRT:
		return e.fpu.CNVRT(inst.R, ea)
	default:
		return fmt.Errorf("unhandled load/store op %v", inst.Op)
	}

	return nil
}

func (e *Emulator) executeImmediate(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpAIR:
		e.alu.AIR(inst.R, inst.Imm)
	case insts.OpSIR:
		e.alu.SIR(inst.R, inst.Imm)
	case insts.OpRFS:
		e.branchUnit.RFS(inst.Imm)
	}
}

func (e *Emulator) executeRegReg(inst *insts.Instruction) error {
	switch inst.Op {
	case insts.OpMLT:
		return e.alu.MLT(inst.Rx, inst.Ry)
	case insts.OpDVD:
		return e.alu.DVD(inst.Rx, inst.Ry)
	case insts.OpTRR:
		e.alu.TRR(inst.Rx, inst.Ry)
	case insts.OpAND:
		e.alu.AND(inst.Rx, inst.Ry)
	case insts.OpORR:
		e.alu.ORR(inst.Rx, inst.Ry)
	case insts.OpNOT:
		e.alu.NOT(inst.Rx)
	}
	return nil
}

func (e *Emulator) executeShiftRotate(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpSRC:
		e.alu.SRC(inst.R, inst.Count, inst.Left, inst.Logical)
	case insts.OpRRC:
		// For RRC the A/L bit selects rotation through carry.
		e.alu.RRC(inst.R, inst.Count, inst.Left, inst.Logical)
	}
}

func (e *Emulator) setState(s State) {
	if e.state == s {
		return
	}
	e.state = s
	e.bus.Publish(StateChanged{State: s})
}

func (e *Emulator) message(text string) {
	e.bus.Publish(Message{Text: text})
}
