package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c6461sim/emu"
	"github.com/sarchlab/c6461sim/insts"
)

var _ = Describe("Effective address", func() {
	var (
		e       *emu.Emulator
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		e = emu.NewEmulator(emu.WithLogger(testLogger()))
		decoder = insts.NewDecoder()
	})

	ea := func(code, ix uint8, indirect bool, address uint8) (uint16, error) {
		return e.EffectiveAddress(decoder.Decode(insts.EncodeLoadStore(code, 0, ix, indirect, address)))
	}

	It("should use the direct field alone", func() {
		Expect(ea(insts.CodeLDR, 0, false, 10)).To(Equal(uint16(10)))
	})

	It("should add the index register", func() {
		Expect(e.SetIXR(2, 40)).To(Succeed())
		Expect(ea(insts.CodeLDR, 2, false, 10)).To(Equal(uint16(50)))
	})

	It("should follow one level of indirection", func() {
		Expect(e.SetIXR(2, 40)).To(Succeed())
		Expect(e.Deposit(50, 77)).To(Succeed())

		Expect(ea(insts.CodeLDR, 2, true, 10)).To(Equal(uint16(77)))
	})

	It("should mask the pointer to 11 bits", func() {
		Expect(e.Deposit(20, 0xF864)).To(Succeed())
		Expect(ea(insts.CodeLDR, 0, true, 20)).To(Equal(uint16(0x064)))
	})

	It("should not index LDX and STX", func() {
		Expect(e.SetIXR(3, 100)).To(Succeed())
		Expect(ea(insts.CodeLDX, 3, false, 12)).To(Equal(uint16(12)))
		Expect(ea(insts.CodeSTX, 3, false, 12)).To(Equal(uint16(12)))
	})

	Context("while running", func() {
		BeforeEach(func() {
			Expect(e.SetPC(progBase)).To(Succeed())
			e.Start()
		})

		It("should reject the protected region", func() {
			_, err := ea(insts.CodeLDR, 0, false, 5)
			Expect(err).To(MatchError(emu.ErrIllegalReservedAccess))
		})

		It("should reject a pointer into the protected region", func() {
			Expect(e.Deposit(20, 2)).To(Succeed())
			_, err := ea(insts.CodeLDR, 0, true, 20)
			Expect(err).To(MatchError(emu.ErrIllegalReservedAccess))
		})
	})

	It("should allow the protected region while halted", func() {
		Expect(ea(insts.CodeLDR, 0, false, 5)).To(Equal(uint16(5)))
	})

	It("should reject indexed addresses beyond memory", func() {
		Expect(e.SetIXR(1, 2040)).To(Succeed())
		_, err := ea(insts.CodeLDR, 1, false, 20)
		Expect(err).To(MatchError(emu.ErrAddressOutOfRange))
	})
})
