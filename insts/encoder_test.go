package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c6461sim/insts"
)

var _ = Describe("Encoder", func() {
	It("should produce the documented LDR word", func() {
		Expect(insts.EncodeLoadStore(insts.CodeLDR, 1, 0, false, 10)).
			To(Equal(uint16(0o002412)))
	})

	It("should set the indirect bit", func() {
		word := insts.EncodeLoadStore(insts.CodeLDA, 0, 0, true, 0)
		Expect(word & (1 << 5)).NotTo(BeZero())
	})

	It("should truncate oversized fields", func() {
		word := insts.EncodeLoadStore(insts.CodeLDR, 7, 0, false, 0x3F)
		inst := insts.NewDecoder().Decode(word)

		Expect(inst.R).To(Equal(uint8(3)))
		Expect(inst.Address).To(Equal(uint8(31)))
	})

	It("should encode HLT as the zero word", func() {
		Expect(insts.EncodeImmediate(insts.CodeHLT, 0, 0)).To(BeZero())
	})

	It("should place the device id in bits 7 through 3", func() {
		Expect(insts.EncodeIO(insts.CodeOUT, 0, 1)).To(Equal(uint16(0o062<<10 | 1<<3)))
	})
})
