package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c6461sim/emu"
)

var _ = Describe("ALU", func() {
	var (
		rf  *emu.RegFile
		alu *emu.ALU
	)

	BeforeEach(func() {
		rf = &emu.RegFile{}
		alu = emu.NewALU(rf)
	})

	Describe("AMR", func() {
		It("should set OVERFLOW when two positives give a negative", func() {
			rf.GPR[0] = 0x7FFF
			alu.AMR(0, 1)

			Expect(rf.GPR[0]).To(Equal(uint16(0x8000)))
			Expect(rf.CC[emu.CCOverflow]).To(BeTrue())
			Expect(rf.CC[emu.CCUnderflow]).To(BeFalse())
		})

		It("should not set OVERFLOW for mixed signs", func() {
			rf.GPR[1] = 0xFFFF // -1
			alu.AMR(1, 5)

			Expect(rf.GPR[1]).To(Equal(uint16(4)))
			Expect(rf.CC[emu.CCOverflow]).To(BeFalse())
		})
	})

	Describe("SMR", func() {
		It("should set UNDERFLOW when a negative minus a positive wraps", func() {
			rf.GPR[2] = 0x8000
			alu.SMR(2, 1)

			Expect(rf.GPR[2]).To(Equal(uint16(0x7FFF)))
			Expect(rf.CC[emu.CCUnderflow]).To(BeTrue())
			Expect(rf.CC[emu.CCOverflow]).To(BeFalse())
		})

		It("should clear UNDERFLOW on an ordinary subtraction", func() {
			rf.CC[emu.CCUnderflow] = true
			rf.GPR[0] = 10
			alu.SMR(0, 3)

			Expect(rf.GPR[0]).To(Equal(uint16(7)))
			Expect(rf.CC[emu.CCUnderflow]).To(BeFalse())
		})
	})

	Describe("AIR and SIR", func() {
		It("should add an immediate without touching condition codes", func() {
			rf.GPR[3] = 0x7FFF
			alu.AIR(3, 1)

			Expect(rf.GPR[3]).To(Equal(uint16(0x8000)))
			Expect(rf.CC[emu.CCOverflow]).To(BeFalse())
		})

		It("should treat immediate 0 as a no-op", func() {
			rf.GPR[0] = 0x8000
			rf.CC[emu.CCUnderflow] = true
			alu.AIR(0, 0)
			alu.SIR(0, 0)

			Expect(rf.GPR[0]).To(Equal(uint16(0x8000)))
			Expect(rf.CC[emu.CCUnderflow]).To(BeTrue())
		})

		It("should set UNDERFLOW on SIR wrap", func() {
			rf.GPR[0] = 0x8000
			alu.SIR(0, 1)

			Expect(rf.GPR[0]).To(Equal(uint16(0x7FFF)))
			Expect(rf.CC[emu.CCUnderflow]).To(BeTrue())
		})
	})

	Describe("MLT", func() {
		It("should split the product across the register pair", func() {
			rf.GPR[0] = 300
			rf.GPR[2] = 40

			Expect(alu.MLT(0, 2)).To(Succeed())
			Expect(rf.GPR[0]).To(Equal(uint16(12000 >> 16)))
			Expect(rf.GPR[1]).To(Equal(uint16(12000 & 0xFFFF)))
		})

		It("should produce the high half of a large product", func() {
			rf.GPR[2] = 0x4000
			rf.GPR[0] = 8

			Expect(alu.MLT(2, 0)).To(Succeed())
			Expect(rf.GPR[2]).To(Equal(uint16(0x0002)))
			Expect(rf.GPR[3]).To(Equal(uint16(0x0000)))
		})

		It("should sign-extend negative products", func() {
			rf.GPR[0] = 0xFFFF // -1
			rf.GPR[2] = 2

			Expect(alu.MLT(0, 2)).To(Succeed())
			Expect(rf.GPR[0]).To(Equal(uint16(0xFFFF)))
			Expect(rf.GPR[1]).To(Equal(uint16(0xFFFE)))
		})

		It("should reject odd registers", func() {
			Expect(alu.MLT(1, 2)).To(MatchError(emu.ErrBadRegisterSelector))
		})
	})

	Describe("DVD", func() {
		It("should place quotient and remainder", func() {
			rf.GPR[2] = 17
			rf.GPR[0] = 5

			Expect(alu.DVD(2, 0)).To(Succeed())
			Expect(rf.GPR[2]).To(Equal(uint16(3)))
			Expect(rf.GPR[3]).To(Equal(uint16(2)))
		})

		It("should divide signed values", func() {
			rf.GPR[0] = uint16(0xFFF9) // -7
			rf.GPR[2] = 2

			Expect(alu.DVD(0, 2)).To(Succeed())
			Expect(int16(rf.GPR[0])).To(Equal(int16(-3)))
			Expect(int16(rf.GPR[1])).To(Equal(int16(-1)))
		})

		It("should treat all-ones as -1", func() {
			rf.GPR[0] = 0xFFFF
			rf.GPR[2] = 2

			Expect(alu.DVD(0, 2)).To(Succeed())
			Expect(rf.GPR[0]).To(BeZero())
			Expect(rf.GPR[1]).To(Equal(uint16(0xFFFF)))
		})

		It("should set DIVZERO and fail on a zero divisor", func() {
			rf.GPR[0] = 9

			Expect(alu.DVD(0, 2)).To(MatchError(emu.ErrDivisionByZero))
			Expect(rf.CC[emu.CCDivZero]).To(BeTrue())
			Expect(rf.GPR[0]).To(Equal(uint16(9)))
		})
	})

	Describe("TRR and logic", func() {
		It("should set EQUAL on equal registers", func() {
			rf.GPR[0], rf.GPR[1] = 5, 5
			alu.TRR(0, 1)
			Expect(rf.CC[emu.CCEqual]).To(BeTrue())

			rf.GPR[1] = 6
			alu.TRR(0, 1)
			Expect(rf.CC[emu.CCEqual]).To(BeFalse())
		})

		It("should AND, ORR and NOT", func() {
			rf.GPR[0], rf.GPR[1] = 0xF0F0, 0xFF00
			alu.AND(0, 1)
			Expect(rf.GPR[0]).To(Equal(uint16(0xF000)))

			alu.ORR(0, 1)
			Expect(rf.GPR[0]).To(Equal(uint16(0xFF00)))

			alu.NOT(0)
			Expect(rf.GPR[0]).To(Equal(uint16(0x00FF)))
		})
	})

	Describe("SRC", func() {
		It("should shift left logically", func() {
			rf.GPR[0] = 0x0003
			alu.SRC(0, 6, true, true)

			Expect(rf.GPR[0]).To(Equal(uint16(0x00C0)))
			Expect(rf.Carry).To(BeFalse())
		})

		It("should carry the last bit shifted out", func() {
			rf.GPR[1] = 0x8001
			alu.SRC(1, 1, true, true)

			Expect(rf.GPR[1]).To(Equal(uint16(0x0002)))
			Expect(rf.Carry).To(BeTrue())
		})

		It("should keep the sign on an arithmetic right shift", func() {
			rf.GPR[2] = 0x8000
			alu.SRC(2, 3, false, false)

			Expect(rf.GPR[2]).To(Equal(uint16(0xF000)))
		})

		It("should fill with zeros on a logical right shift", func() {
			rf.GPR[2] = 0x8004
			alu.SRC(2, 3, false, true)

			Expect(rf.GPR[2]).To(Equal(uint16(0x1000)))
			Expect(rf.Carry).To(BeTrue())
		})

		It("should set EQUAL on a zero result", func() {
			rf.GPR[0] = 0x0001
			alu.SRC(0, 1, false, true)

			Expect(rf.GPR[0]).To(BeZero())
			Expect(rf.CC[emu.CCEqual]).To(BeTrue())
		})

		It("should treat count 0 as a no-op", func() {
			rf.GPR[0] = 0x1234
			rf.Carry = true
			alu.SRC(0, 0, true, true)

			Expect(rf.GPR[0]).To(Equal(uint16(0x1234)))
			Expect(rf.Carry).To(BeTrue())
		})
	})

	Describe("RRC", func() {
		It("should rotate left by 8", func() {
			rf.GPR[0] = 0x12AB
			alu.RRC(0, 8, true, false)

			Expect(rf.GPR[0]).To(Equal(uint16(0xAB12)))
		})

		It("should rotate right", func() {
			rf.GPR[1] = 0x0001
			alu.RRC(1, 1, false, false)

			Expect(rf.GPR[1]).To(Equal(uint16(0x8000)))
			Expect(rf.Carry).To(BeTrue())
		})

		It("should rotate through carry as a 17-bit ring", func() {
			rf.GPR[0] = 0x8000
			rf.Carry = false
			alu.RRC(0, 1, true, true)

			Expect(rf.GPR[0]).To(BeZero())
			Expect(rf.Carry).To(BeTrue())
			Expect(rf.CC[emu.CCEqual]).To(BeTrue())

			alu.RRC(0, 1, true, true)
			Expect(rf.GPR[0]).To(Equal(uint16(0x0001)))
			Expect(rf.Carry).To(BeFalse())
		})

		It("should treat count 0 as a no-op", func() {
			rf.GPR[3] = 0xABCD
			alu.RRC(3, 0, true, false)

			Expect(rf.GPR[3]).To(Equal(uint16(0xABCD)))
		})
	})
})
