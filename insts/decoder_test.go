package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c6461sim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	It("should decode the zero word as HLT", func() {
		inst := decoder.Decode(0)

		Expect(inst.Op).To(Equal(insts.OpHLT))
		Expect(inst.Format).To(Equal(insts.FormatHalt))
	})

	Describe("Load/Store format", func() {
		// LDR R1, 0, 10 -> 000001 01 00 0 01010
		It("should decode LDR R1, 0, 10", func() {
			inst := decoder.Decode(0o002412)

			Expect(inst.Op).To(Equal(insts.OpLDR))
			Expect(inst.Format).To(Equal(insts.FormatLoadStore))
			Expect(inst.R).To(Equal(uint8(1)))
			Expect(inst.IX).To(Equal(uint8(0)))
			Expect(inst.I).To(BeFalse())
			Expect(inst.Address).To(Equal(uint8(10)))
		})

		It("should decode index and indirect bits", func() {
			word := insts.EncodeLoadStore(insts.CodeSTR, 3, 2, true, 31)
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpSTR))
			Expect(inst.R).To(Equal(uint8(3)))
			Expect(inst.IX).To(Equal(uint8(2)))
			Expect(inst.I).To(BeTrue())
			Expect(inst.Address).To(Equal(uint8(31)))
		})

		It("should decode the branch family with the load/store layout", func() {
			inst := decoder.Decode(insts.EncodeLoadStore(insts.CodeJCC, 3, 1, false, 7))

			Expect(inst.Op).To(Equal(insts.OpJCC))
			Expect(inst.R).To(Equal(uint8(3)))
			Expect(inst.IX).To(Equal(uint8(1)))
			Expect(inst.Address).To(Equal(uint8(7)))
		})

		It("should decode LDX with the target in the IX field", func() {
			inst := decoder.Decode(insts.EncodeLoadStore(insts.CodeLDX, 0, 3, false, 20))

			Expect(inst.Op).To(Equal(insts.OpLDX))
			Expect(inst.IX).To(Equal(uint8(3)))
		})
	})

	Describe("Immediate format", func() {
		It("should decode AIR R2, 17", func() {
			inst := decoder.Decode(insts.EncodeImmediate(insts.CodeAIR, 2, 17))

			Expect(inst.Op).To(Equal(insts.OpAIR))
			Expect(inst.Format).To(Equal(insts.FormatImmediate))
			Expect(inst.R).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(uint8(17)))
		})

		It("should decode RFS 5", func() {
			inst := decoder.Decode(insts.EncodeImmediate(insts.CodeRFS, 0, 5))

			Expect(inst.Op).To(Equal(insts.OpRFS))
			Expect(inst.Imm).To(Equal(uint8(5)))
		})
	})

	Describe("Register-register format", func() {
		It("should decode MLT R0, R2", func() {
			inst := decoder.Decode(insts.EncodeRegReg(insts.CodeMLT, 0, 2))

			Expect(inst.Op).To(Equal(insts.OpMLT))
			Expect(inst.Format).To(Equal(insts.FormatRegReg))
			Expect(inst.Rx).To(Equal(uint8(0)))
			Expect(inst.Ry).To(Equal(uint8(2)))
		})

		It("should decode NOT R3", func() {
			inst := decoder.Decode(insts.EncodeRegReg(insts.CodeNOT, 3, 0))

			Expect(inst.Op).To(Equal(insts.OpNOT))
			Expect(inst.Rx).To(Equal(uint8(3)))
		})
	})

	Describe("Shift/rotate format", func() {
		It("should decode SRC R0, 6, L, logical", func() {
			inst := decoder.Decode(insts.EncodeShiftRotate(insts.CodeSRC, 0, 6, true, true))

			Expect(inst.Op).To(Equal(insts.OpSRC))
			Expect(inst.Format).To(Equal(insts.FormatShiftRotate))
			Expect(inst.Count).To(Equal(uint8(6)))
			Expect(inst.Left).To(BeTrue())
			Expect(inst.Logical).To(BeTrue())
		})

		It("should decode RRC R3, 8, R, arithmetic", func() {
			inst := decoder.Decode(insts.EncodeShiftRotate(insts.CodeRRC, 3, 8, false, false))

			Expect(inst.Op).To(Equal(insts.OpRRC))
			Expect(inst.R).To(Equal(uint8(3)))
			Expect(inst.Count).To(Equal(uint8(8)))
			Expect(inst.Left).To(BeFalse())
			Expect(inst.Logical).To(BeFalse())
		})

		It("should honor only four bits of the count field", func() {
			// Bit 8 is shared between R and the wide count field.
			word := uint16(insts.CodeSRC)<<10 | 1<<8 | 0xF<<4
			inst := decoder.Decode(word)

			Expect(inst.R).To(Equal(uint8(1)))
			Expect(inst.Count).To(Equal(uint8(15)))
		})

		It("should not read R into a zero count", func() {
			inst := decoder.Decode(insts.EncodeShiftRotate(insts.CodeSRC, 3, 0, true, false))

			Expect(inst.R).To(Equal(uint8(3)))
			Expect(inst.Count).To(BeZero())
		})
	})

	Describe("I/O format", func() {
		It("should decode IN R2, 0", func() {
			inst := decoder.Decode(insts.EncodeIO(insts.CodeIN, 2, 0))

			Expect(inst.Op).To(Equal(insts.OpIN))
			Expect(inst.Format).To(Equal(insts.FormatIO))
			Expect(inst.R).To(Equal(uint8(2)))
			Expect(inst.DevID).To(Equal(uint8(0)))
		})

		It("should decode OUT R1, 1", func() {
			inst := decoder.Decode(insts.EncodeIO(insts.CodeOUT, 1, 1))

			Expect(inst.Op).To(Equal(insts.OpOUT))
			Expect(inst.DevID).To(Equal(uint8(1)))
		})
	})

	Describe("Unknown opcodes", func() {
		It("should decode TRAP as unknown", func() {
			inst := decoder.Decode(insts.EncodeImmediate(insts.CodeTRAP, 0, 3))

			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Code).To(Equal(insts.CodeTRAP))
		})

		It("should decode unassigned opcodes as unknown", func() {
			inst := decoder.Decode(0o177777)

			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Code).To(Equal(uint8(0o77)))
			Expect(inst.Word).To(Equal(uint16(0o177777)))
		})
	})

	It("should name opcodes by mnemonic", func() {
		Expect(insts.OpLDR.String()).To(Equal("LDR"))
		Expect(insts.OpCNVRT.String()).To(Equal("CNVRT"))
		Expect(insts.Op(999).String()).To(Equal("UNKNOWN"))
	})
})
