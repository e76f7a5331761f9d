// Package insts provides instruction definitions and decoding for the
// 16-bit teaching computer.
//
// Every instruction word carries its opcode in bits [15:10]. The remaining
// ten bits are laid out according to one of a few formats:
//   - Load/Store: R, IX, I and a 5-bit address (LDR, STR, AMR, JZ, LDX, ...)
//   - Immediate: R and a 5-bit immediate (AIR, SIR, RFS)
//   - Register-register: Rx and Ry (MLT, DVD, TRR, AND, ORR, NOT)
//   - Shift/rotate: R, count, L/R and A/L (SRC, RRC)
//   - I/O: R and a 5-bit device id (IN, OUT, CHK)
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0o002412) // LDR R1, 0, 10
//	fmt.Printf("Op: %v, R: %d, Address: %d\n", inst.Op, inst.R, inst.Address)
package insts
