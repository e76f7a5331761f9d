package insts

// HLT is the halt instruction word.
const HLT uint16 = 0

// EncodeLoadStore builds a load/store format word.
func EncodeLoadStore(code, r, ix uint8, indirect bool, address uint8) uint16 {
	word := uint16(code&0x3F)<<10 |
		uint16(r&0x3)<<8 |
		uint16(ix&0x3)<<6 |
		uint16(address&0x1F)
	if indirect {
		word |= 1 << 5
	}
	return word
}

// EncodeImmediate builds an immediate format word (AIR, SIR, RFS).
func EncodeImmediate(code, r, imm uint8) uint16 {
	return uint16(code&0x3F)<<10 | uint16(r&0x3)<<8 | uint16(imm&0x1F)
}

// EncodeRegReg builds a register-register format word.
func EncodeRegReg(code, rx, ry uint8) uint16 {
	return uint16(code&0x3F)<<10 | uint16(rx&0x3)<<8 | uint16(ry&0x3)<<6
}

// EncodeShiftRotate builds a shift/rotate format word.
func EncodeShiftRotate(code, r, count uint8, left, logical bool) uint16 {
	word := uint16(code&0x3F)<<10 | uint16(r&0x3)<<8 | uint16(count&0xF)<<4
	if left {
		word |= 1 << 3
	}
	if logical {
		word |= 1 << 2
	}
	return word
}

// EncodeIO builds an I/O format word.
func EncodeIO(code, r, devID uint8) uint16 {
	return uint16(code&0x3F)<<10 | uint16(r&0x3)<<8 | uint16(devID&0x1F)<<3
}
