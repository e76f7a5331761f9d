package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c6461sim/emu"
)

var _ = Describe("Memory", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory()
	})

	It("should start with unset latches", func() {
		_, marSet := mem.MAR()
		_, mbrSet := mem.MBR()
		Expect(marSet).To(BeFalse())
		Expect(mbrSet).To(BeFalse())
	})

	It("should latch MAR and MBR on read and write", func() {
		Expect(mem.Write(100, 0xBEEF)).To(Succeed())

		mar, _ := mem.MAR()
		mbr, _ := mem.MBR()
		Expect(mar).To(Equal(uint16(100)))
		Expect(mbr).To(Equal(uint16(0xBEEF)))

		value, err := mem.Read(100)
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal(uint16(0xBEEF)))
	})

	It("should not latch on peek and poke", func() {
		mem.Poke(7, 42)
		Expect(mem.Peek(7)).To(Equal(uint16(42)))

		_, marSet := mem.MAR()
		Expect(marSet).To(BeFalse())
	})

	It("should reject addresses beyond the last word", func() {
		_, err := mem.Read(emu.MemorySize)
		Expect(err).To(MatchError(emu.ErrAddressOutOfRange))

		Expect(mem.Write(emu.MemorySize, 1)).To(MatchError(emu.ErrAddressOutOfRange))
		Expect(mem.SetMAR(4000)).To(MatchError(emu.ErrAddressOutOfRange))
	})

	It("should accept the last word", func() {
		Expect(mem.Write(emu.MemorySize-1, 9)).To(Succeed())
		Expect(mem.Peek(emu.MemorySize - 1)).To(Equal(uint16(9)))
	})

	It("should dump an inclusive range", func() {
		mem.Poke(10, 1)
		mem.Poke(11, 2)
		mem.Poke(12, 3)

		words, err := mem.Dump(10, 12)
		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(Equal([]uint16{1, 2, 3}))
	})

	It("should zero words and unset latches on reset", func() {
		Expect(mem.Write(50, 5)).To(Succeed())
		mem.Reset()

		Expect(mem.Peek(50)).To(BeZero())
		_, marSet := mem.MAR()
		Expect(marSet).To(BeFalse())
	})
})
