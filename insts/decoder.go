package insts

// Op represents a machine opcode.
type Op uint16

// Machine opcodes.
const (
	OpUnknown Op = iota
	OpHLT
	OpLDR
	OpSTR
	OpLDA
	OpAMR
	OpSMR
	OpAIR
	OpSIR
	OpJZ
	OpJNE
	OpJCC
	OpJMA
	OpJSR
	OpRFS
	OpSOB
	OpJGE
	OpSRC
	OpRRC
	OpFADD
	OpFSUB
	OpVADD
	OpVSUB
	OpCNVRT
	OpLDX
	OpSTX
	OpLDFR
	OpSTFR
	OpIN
	OpOUT
	OpCHK
	OpMLT
	OpDVD
	OpTRR
	OpAND
	OpORR
	OpNOT
)

var opNames = map[Op]string{
	OpUnknown: "UNKNOWN",
	OpHLT:     "HLT",
	OpLDR:     "LDR",
	OpSTR:     "STR",
	OpLDA:     "LDA",
	OpAMR:     "AMR",
	OpSMR:     "SMR",
	OpAIR:     "AIR",
	OpSIR:     "SIR",
	OpJZ:      "JZ",
	OpJNE:     "JNE",
	OpJCC:     "JCC",
	OpJMA:     "JMA",
	OpJSR:     "JSR",
	OpRFS:     "RFS",
	OpSOB:     "SOB",
	OpJGE:     "JGE",
	OpSRC:     "SRC",
	OpRRC:     "RRC",
	OpFADD:    "FADD",
	OpFSUB:    "FSUB",
	OpVADD:    "VADD",
	OpVSUB:    "VSUB",
	OpCNVRT:   "CNVRT",
	OpLDX:     "LDX",
	OpSTX:     "STX",
	OpLDFR:    "LDFR",
	OpSTFR:    "STFR",
	OpIN:      "IN",
	OpOUT:     "OUT",
	OpCHK:     "CHK",
	OpMLT:     "MLT",
	OpDVD:     "DVD",
	OpTRR:     "TRR",
	OpAND:     "AND",
	OpORR:     "ORR",
	OpNOT:     "NOT",
}

// String returns the assembler mnemonic for the opcode.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown     Format = iota
	FormatHalt               // The all-zero word
	FormatLoadStore          // R | IX | I | address
	FormatImmediate          // R | immed
	FormatRegReg             // Rx | Ry
	FormatShiftRotate        // R | count | L/R | A/L
	FormatIO                 // R | device id
)

// Raw 6-bit opcode values as they appear in bits [15:10].
const (
	CodeHLT   uint8 = 0o00
	CodeLDR   uint8 = 0o01
	CodeSTR   uint8 = 0o02
	CodeLDA   uint8 = 0o03
	CodeAMR   uint8 = 0o04
	CodeSMR   uint8 = 0o05
	CodeAIR   uint8 = 0o06
	CodeSIR   uint8 = 0o07
	CodeJZ    uint8 = 0o10
	CodeJNE   uint8 = 0o11
	CodeJCC   uint8 = 0o12
	CodeJMA   uint8 = 0o13
	CodeJSR   uint8 = 0o14
	CodeRFS   uint8 = 0o15
	CodeSOB   uint8 = 0o16
	CodeJGE   uint8 = 0o17
	CodeTRAP  uint8 = 0o30
	CodeSRC   uint8 = 0o31
	CodeRRC   uint8 = 0o32
	CodeFADD  uint8 = 0o33
	CodeFSUB  uint8 = 0o34
	CodeVADD  uint8 = 0o35
	CodeVSUB  uint8 = 0o36
	CodeCNVRT uint8 = 0o37
	CodeLDX   uint8 = 0o41
	CodeSTX   uint8 = 0o42
	CodeLDFR  uint8 = 0o50
	CodeSTFR  uint8 = 0o51
	CodeIN    uint8 = 0o61
	CodeOUT   uint8 = 0o62
	CodeCHK   uint8 = 0o63
	CodeMLT   uint8 = 0o70
	CodeDVD   uint8 = 0o71
	CodeTRR   uint8 = 0o72
	CodeAND   uint8 = 0o73
	CodeORR   uint8 = 0o74
	CodeNOT   uint8 = 0o75
)

type opInfo struct {
	op     Op
	format Format
}

var opTable = map[uint8]opInfo{
	CodeLDR:   {OpLDR, FormatLoadStore},
	CodeSTR:   {OpSTR, FormatLoadStore},
	CodeLDA:   {OpLDA, FormatLoadStore},
	CodeAMR:   {OpAMR, FormatLoadStore},
	CodeSMR:   {OpSMR, FormatLoadStore},
	CodeAIR:   {OpAIR, FormatImmediate},
	CodeSIR:   {OpSIR, FormatImmediate},
	CodeJZ:    {OpJZ, FormatLoadStore},
	CodeJNE:   {OpJNE, FormatLoadStore},
	CodeJCC:   {OpJCC, FormatLoadStore},
	CodeJMA:   {OpJMA, FormatLoadStore},
	CodeJSR:   {OpJSR, FormatLoadStore},
	CodeRFS:   {OpRFS, FormatImmediate},
	CodeSOB:   {OpSOB, FormatLoadStore},
	CodeJGE:   {OpJGE, FormatLoadStore},
	CodeSRC:   {OpSRC, FormatShiftRotate},
	CodeRRC:   {OpRRC, FormatShiftRotate},
	CodeFADD:  {OpFADD, FormatLoadStore},
	CodeFSUB:  {OpFSUB, FormatLoadStore},
	CodeVADD:  {OpVADD, FormatLoadStore},
	CodeVSUB:  {OpVSUB, FormatLoadStore},
	CodeCNVRT: {OpCNVRT, FormatLoadStore},
	CodeLDX:   {OpLDX, FormatLoadStore},
	CodeSTX:   {OpSTX, FormatLoadStore},
	CodeLDFR:  {OpLDFR, FormatLoadStore},
	CodeSTFR:  {OpSTFR, FormatLoadStore},
	CodeIN:    {OpIN, FormatIO},
	CodeOUT:   {OpOUT, FormatIO},
	CodeCHK:   {OpCHK, FormatIO},
	CodeMLT:   {OpMLT, FormatRegReg},
	CodeDVD:   {OpDVD, FormatRegReg},
	CodeTRR:   {OpTRR, FormatRegReg},
	CodeAND:   {OpAND, FormatRegReg},
	CodeORR:   {OpORR, FormatRegReg},
	CodeNOT:   {OpNOT, FormatRegReg},
}

// Instruction represents a decoded instruction word.
type Instruction struct {
	Op     Op     // Operation
	Format Format // Encoding format
	Code   uint8  // Raw 6-bit opcode, bits [15:10]
	Word   uint16 // The undecoded instruction word

	// Load/store fields
	R       uint8 // Register selector, bits [9:8] (CC index for JCC)
	IX      uint8 // Index register selector, bits [7:6]
	I       bool  // Indirect flag, bit [5]
	Address uint8 // Direct address field, bits [4:0]

	// Immediate format
	Imm uint8 // 5-bit immediate, bits [4:0]

	// Register-register format
	Rx uint8 // bits [9:8]
	Ry uint8 // bits [7:6]

	// Shift/rotate format
	Count   uint8 // Shift count, masked to bits [7:4]
	Left    bool  // L/R bit [3]; true shifts or rotates left
	Logical bool  // A/L bit [2]; true is logical, false arithmetic

	// I/O format
	DevID uint8 // Device id, bits [7:3]
}

// Decoder decodes 16-bit machine words into instructions.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Opcode extracts the raw 6-bit opcode from an instruction word.
func Opcode(word uint16) uint8 {
	return uint8((word >> 10) & 0x3F)
}

// Decode decodes a 16-bit instruction word. Words whose opcode has no
// handler decode to OpUnknown with only Code and Word set.
func (d *Decoder) Decode(word uint16) *Instruction {
	inst := &Instruction{
		Op:     OpUnknown,
		Format: FormatUnknown,
		Code:   Opcode(word),
		Word:   word,
	}

	if word == 0 {
		inst.Op = OpHLT
		inst.Format = FormatHalt
		return inst
	}

	info, ok := opTable[inst.Code]
	if !ok {
		return inst
	}

	inst.Op = info.op
	inst.Format = info.format

	switch info.format {
	case FormatLoadStore:
		d.decodeLoadStore(word, inst)
	case FormatImmediate:
		d.decodeImmediate(word, inst)
	case FormatRegReg:
		d.decodeRegReg(word, inst)
	case FormatShiftRotate:
		d.decodeShiftRotate(word, inst)
	case FormatIO:
		d.decodeIO(word, inst)
	}

	return inst
}

// decodeLoadStore decodes: opcode | R | IX | I | address
func (d *Decoder) decodeLoadStore(word uint16, inst *Instruction) {
	inst.R = uint8((word >> 8) & 0x3)
	inst.IX = uint8((word >> 6) & 0x3)
	inst.I = (word>>5)&0x1 == 1
	inst.Address = uint8(word & 0x1F)
}

// decodeImmediate decodes: opcode | R | unused | immed
func (d *Decoder) decodeImmediate(word uint16, inst *Instruction) {
	inst.R = uint8((word >> 8) & 0x3)
	inst.Imm = uint8(word & 0x1F)
}

// decodeRegReg decodes: opcode | Rx | Ry | unused
func (d *Decoder) decodeRegReg(word uint16, inst *Instruction) {
	inst.Rx = uint8((word >> 8) & 0x3)
	inst.Ry = uint8((word >> 6) & 0x3)
	inst.R = inst.Rx
}

// decodeShiftRotate decodes: opcode | R | count | L/R | A/L | unused
// The count field is architecturally wider but only four bits are honored.
func (d *Decoder) decodeShiftRotate(word uint16, inst *Instruction) {
	inst.R = uint8((word >> 8) & 0x3)
	inst.Count = uint8((word >> 4) & 0xF)
	inst.Left = (word>>3)&0x1 == 1
	inst.Logical = (word>>2)&0x1 == 1
}

// decodeIO decodes: opcode | R | device id | unused
func (d *Decoder) decodeIO(word uint16, inst *Instruction) {
	inst.R = uint8((word >> 8) & 0x3)
	inst.DevID = uint8((word >> 3) & 0x1F)
}
