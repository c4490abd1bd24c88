package cpu

import (
	"github.com/solsix/mos6502/flags"
	"github.com/solsix/mos6502/memory"
)

// opcodeEntry is one row of the 256 entry dispatch table: the instruction's
// total encoded length (opcode byte included), its base cycle cost, and
// the execFunc that resolves addressing and performs the operation.
type opcodeEntry struct {
	length uint8
	cycles uint8
	exec   execFunc
}

// --- implied/accumulator/control-flow operations not expressible via the
// ld/rmw/st/branch combinators ---

func execBRK(c *Core, _ uint8) uint8 {
	ret := c.PC + 2
	c.pushWord(ret)
	c.push(c.P.Byte() | flags.Break)
	c.P.Interrupt = true
	c.PC = memory.ReadWord(c.mem, IRQ_VECTOR)
	c.jumped = true
	return 0
}

func execJMP(c *Core, _ uint8) uint8 {
	c.PC = memory.ReadWord(c.mem, c.PC+1)
	c.jumped = true
	return 0
}

// execJMPIndirect reproduces the page-wrap pointer-fetch bug on NMOS parts.
// CMOS parts fixed it (at the cost of an extra cycle real hardware pays and
// this emulator does not separately account for).
func execJMPIndirect(c *Core, _ uint8) uint8 {
	ptr := memory.ReadWord(c.mem, c.PC+1)
	if c.cpuType == CPU_CMOS && ptr&0x00FF == 0x00FF {
		lo := c.mem.Read(ptr)
		hi := c.mem.Read(ptr + 1)
		c.PC = uint16(hi)<<8 | uint16(lo)
	} else {
		c.PC = wrappingRead(c.mem, ptr)
	}
	c.jumped = true
	return 0
}

func execJSR(c *Core, _ uint8) uint8 {
	ret := c.PC + 2
	target := memory.ReadWord(c.mem, c.PC+1)
	c.pushWord(ret)
	c.PC = target
	c.jumped = true
	return 0
}

// execRTS deliberately leaves c.jumped false: JSR pushed PC+2 (the address
// of its own last byte), and Step's default "PC += length" (length 1 for
// this implied-mode instruction) supplies the final +1 to land on PC+3.
// See SPEC_FULL.md §9 for why this, not RTS doing the +1 itself, is correct.
func execRTS(c *Core, _ uint8) uint8 {
	c.PC = c.pullWord()
	return 0
}

func execRTI(c *Core, _ uint8) uint8 {
	c.P.SetByte(c.pull())
	c.PC = c.pullWord()
	c.jumped = true
	return 0
}

func execPHA(c *Core, _ uint8) uint8 { c.push(c.A); return 0 }
func execPLA(c *Core, _ uint8) uint8 { c.loadReg(&c.A, c.pull()); return 0 }
func execPHP(c *Core, _ uint8) uint8 { c.push(c.P.Byte() | flags.Break); return 0 }
func execPLP(c *Core, _ uint8) uint8 { c.P.SetByte(c.pull()); return 0 }

func execCLC(c *Core, _ uint8) uint8 { c.P.Carry = false; return 0 }
func execSEC(c *Core, _ uint8) uint8 { c.P.Carry = true; return 0 }
func execCLD(c *Core, _ uint8) uint8 { c.P.Decimal = false; return 0 }
func execSED(c *Core, _ uint8) uint8 { c.P.Decimal = true; return 0 }
func execCLI(c *Core, _ uint8) uint8 { c.P.Interrupt = false; return 0 }
func execSEI(c *Core, _ uint8) uint8 { c.P.Interrupt = true; return 0 }
func execCLV(c *Core, _ uint8) uint8 { c.P.Overflow = false; return 0 }

func execTAX(c *Core, _ uint8) uint8 { c.loadReg(&c.X, c.A); return 0 }
func execTAY(c *Core, _ uint8) uint8 { c.loadReg(&c.Y, c.A); return 0 }
func execTXA(c *Core, _ uint8) uint8 { c.loadReg(&c.A, c.X); return 0 }
func execTYA(c *Core, _ uint8) uint8 { c.loadReg(&c.A, c.Y); return 0 }
func execTSX(c *Core, _ uint8) uint8 { c.loadReg(&c.X, c.S); return 0 }
func execTXS(c *Core, _ uint8) uint8 { c.S = c.X; return 0 } // TXS does not affect flags.

func execINX(c *Core, _ uint8) uint8 { c.loadReg(&c.X, c.X+1); return 0 }
func execINY(c *Core, _ uint8) uint8 { c.loadReg(&c.Y, c.Y+1); return 0 }
func execDEX(c *Core, _ uint8) uint8 { c.loadReg(&c.X, c.X-1); return 0 }
func execDEY(c *Core, _ uint8) uint8 { c.loadReg(&c.Y, c.Y-1); return 0 }

func execNOP(c *Core, _ uint8) uint8 { return 0 }

func execHLT(c *Core, _ uint8) uint8 { c.halted = true; return 0 }

// nopRead builds the execFunc for the undocumented multi-byte NOPs (NOP d,
// NOP a, NOP d,x, NOP a,x, ...) that still perform the addressing mode's
// memory read (and owe its page-cross penalty) but discard the result.
func nopRead(af addrFunc) execFunc {
	return func(c *Core, _ uint8) uint8 {
		addr, crossed := af(c)
		_ = c.mem.Read(addr)
		if crossed {
			return 1
		}
		return 0
	}
}

// opcodeTable is the full, total 256 entry NMOS 6502 dispatch table,
// official and undocumented opcodes alike — see SPEC_FULL.md §4.3 for why
// nothing here returns a generic "illegal opcode" error: every byte maps
// to a defined entry, and only the HLT family halts the CPU.
var opcodeTable = [256]opcodeEntry{
	0x00: {2, 7, execBRK},
	0x01: {2, 6, ld(addrIndirectX, ora)},
	0x02: {1, 2, execHLT},
	0x03: {2, 8, rmw(addrIndirectX, slo)},
	0x04: {2, 3, nopRead(addrZeroPage)},
	0x05: {2, 3, ld(addrZeroPage, ora)},
	0x06: {2, 5, rmw(addrZeroPage, asl)},
	0x07: {2, 5, rmw(addrZeroPage, slo)},
	0x08: {1, 3, execPHP},
	0x09: {2, 2, ld(addrImmediate, ora)},
	0x0A: {1, 2, func(c *Core, _ uint8) uint8 { return aslAcc(c) }},
	0x0B: {2, 2, ld(addrImmediate, anc)},
	0x0C: {3, 4, nopRead(addrAbsolute)},
	0x0D: {3, 4, ld(addrAbsolute, ora)},
	0x0E: {3, 6, rmw(addrAbsolute, asl)},
	0x0F: {3, 6, rmw(addrAbsolute, slo)},

	0x10: {2, 2, branch(func(c *Core) bool { return !c.P.Negative })},
	0x11: {2, 5, ld(addrIndirectY, ora)},
	0x12: {1, 2, execHLT},
	0x13: {2, 8, rmw(addrIndirectY, slo)},
	0x14: {2, 4, nopRead(addrZeroPageX)},
	0x15: {2, 4, ld(addrZeroPageX, ora)},
	0x16: {2, 6, rmw(addrZeroPageX, asl)},
	0x17: {2, 6, rmw(addrZeroPageX, slo)},
	0x18: {1, 2, execCLC},
	0x19: {3, 4, ld(addrAbsoluteY, ora)},
	0x1A: {1, 2, execNOP},
	0x1B: {3, 7, rmw(addrAbsoluteY, slo)},
	0x1C: {3, 4, nopRead(addrAbsoluteX)},
	0x1D: {3, 4, ld(addrAbsoluteX, ora)},
	0x1E: {3, 7, rmw(addrAbsoluteX, asl)},
	0x1F: {3, 7, rmw(addrAbsoluteX, slo)},

	0x20: {3, 6, execJSR},
	0x21: {2, 6, ld(addrIndirectX, and)},
	0x22: {1, 2, execHLT},
	0x23: {2, 8, rmw(addrIndirectX, rla)},
	0x24: {2, 3, ld(addrZeroPage, bit)},
	0x25: {2, 3, ld(addrZeroPage, and)},
	0x26: {2, 5, rmw(addrZeroPage, rol)},
	0x27: {2, 5, rmw(addrZeroPage, rla)},
	0x28: {1, 4, execPLP},
	0x29: {2, 2, ld(addrImmediate, and)},
	0x2A: {1, 2, func(c *Core, _ uint8) uint8 { return rolAcc(c) }},
	0x2B: {2, 2, ld(addrImmediate, anc)},
	0x2C: {3, 4, ld(addrAbsolute, bit)},
	0x2D: {3, 4, ld(addrAbsolute, and)},
	0x2E: {3, 6, rmw(addrAbsolute, rol)},
	0x2F: {3, 6, rmw(addrAbsolute, rla)},

	0x30: {2, 2, branch(func(c *Core) bool { return c.P.Negative })},
	0x31: {2, 5, ld(addrIndirectY, and)},
	0x32: {1, 2, execHLT},
	0x33: {2, 8, rmw(addrIndirectY, rla)},
	0x34: {2, 4, nopRead(addrZeroPageX)},
	0x35: {2, 4, ld(addrZeroPageX, and)},
	0x36: {2, 6, rmw(addrZeroPageX, rol)},
	0x37: {2, 6, rmw(addrZeroPageX, rla)},
	0x38: {1, 2, execSEC},
	0x39: {3, 4, ld(addrAbsoluteY, and)},
	0x3A: {1, 2, execNOP},
	0x3B: {3, 7, rmw(addrAbsoluteY, rla)},
	0x3C: {3, 4, nopRead(addrAbsoluteX)},
	0x3D: {3, 4, ld(addrAbsoluteX, and)},
	0x3E: {3, 7, rmw(addrAbsoluteX, rol)},
	0x3F: {3, 7, rmw(addrAbsoluteX, rla)},

	0x40: {1, 6, execRTI},
	0x41: {2, 6, ld(addrIndirectX, eor)},
	0x42: {1, 2, execHLT},
	0x43: {2, 8, rmw(addrIndirectX, sre)},
	0x44: {2, 3, nopRead(addrZeroPage)},
	0x45: {2, 3, ld(addrZeroPage, eor)},
	0x46: {2, 5, rmw(addrZeroPage, lsr)},
	0x47: {2, 5, rmw(addrZeroPage, sre)},
	0x48: {1, 3, execPHA},
	0x49: {2, 2, ld(addrImmediate, eor)},
	0x4A: {1, 2, func(c *Core, _ uint8) uint8 { return lsrAcc(c) }},
	0x4B: {2, 2, ld(addrImmediate, alr)},
	0x4C: {3, 3, execJMP},
	0x4D: {3, 4, ld(addrAbsolute, eor)},
	0x4E: {3, 6, rmw(addrAbsolute, lsr)},
	0x4F: {3, 6, rmw(addrAbsolute, sre)},

	0x50: {2, 2, branch(func(c *Core) bool { return !c.P.Overflow })},
	0x51: {2, 5, ld(addrIndirectY, eor)},
	0x52: {1, 2, execHLT},
	0x53: {2, 8, rmw(addrIndirectY, sre)},
	0x54: {2, 4, nopRead(addrZeroPageX)},
	0x55: {2, 4, ld(addrZeroPageX, eor)},
	0x56: {2, 6, rmw(addrZeroPageX, lsr)},
	0x57: {2, 6, rmw(addrZeroPageX, sre)},
	0x58: {1, 2, execCLI},
	0x59: {3, 4, ld(addrAbsoluteY, eor)},
	0x5A: {1, 2, execNOP},
	0x5B: {3, 7, rmw(addrAbsoluteY, sre)},
	0x5C: {3, 4, nopRead(addrAbsoluteX)},
	0x5D: {3, 4, ld(addrAbsoluteX, eor)},
	0x5E: {3, 7, rmw(addrAbsoluteX, lsr)},
	0x5F: {3, 7, rmw(addrAbsoluteX, sre)},

	0x60: {1, 6, execRTS},
	0x61: {2, 6, ld(addrIndirectX, adc)},
	0x62: {1, 2, execHLT},
	0x63: {2, 8, rmw(addrIndirectX, rra)},
	0x64: {2, 3, nopRead(addrZeroPage)},
	0x65: {2, 3, ld(addrZeroPage, adc)},
	0x66: {2, 5, rmw(addrZeroPage, ror)},
	0x67: {2, 5, rmw(addrZeroPage, rra)},
	0x68: {1, 4, execPLA},
	0x69: {2, 2, ld(addrImmediate, adc)},
	0x6A: {1, 2, func(c *Core, _ uint8) uint8 { return rorAcc(c) }},
	0x6B: {2, 2, ld(addrImmediate, arr)},
	0x6C: {3, 5, execJMPIndirect},
	0x6D: {3, 4, ld(addrAbsolute, adc)},
	0x6E: {3, 6, rmw(addrAbsolute, ror)},
	0x6F: {3, 6, rmw(addrAbsolute, rra)},

	0x70: {2, 2, branch(func(c *Core) bool { return c.P.Overflow })},
	0x71: {2, 5, ld(addrIndirectY, adc)},
	0x72: {1, 2, execHLT},
	0x73: {2, 8, rmw(addrIndirectY, rra)},
	0x74: {2, 4, nopRead(addrZeroPageX)},
	0x75: {2, 4, ld(addrZeroPageX, adc)},
	0x76: {2, 6, rmw(addrZeroPageX, ror)},
	0x77: {2, 6, rmw(addrZeroPageX, rra)},
	0x78: {1, 2, execSEI},
	0x79: {3, 4, ld(addrAbsoluteY, adc)},
	0x7A: {1, 2, execNOP},
	0x7B: {3, 7, rmw(addrAbsoluteY, rra)},
	0x7C: {3, 4, nopRead(addrAbsoluteX)},
	0x7D: {3, 4, ld(addrAbsoluteX, adc)},
	0x7E: {3, 7, rmw(addrAbsoluteX, ror)},
	0x7F: {3, 7, rmw(addrAbsoluteX, rra)},

	0x80: {2, 2, nopRead(addrImmediate)},
	0x81: {2, 6, st(addrIndirectX, staVal)},
	0x82: {2, 2, nopRead(addrImmediate)},
	0x83: {2, 6, st(addrIndirectX, saxVal)},
	0x84: {2, 3, st(addrZeroPage, styVal)},
	0x85: {2, 3, st(addrZeroPage, staVal)},
	0x86: {2, 3, st(addrZeroPage, stxVal)},
	0x87: {2, 3, st(addrZeroPage, saxVal)},
	0x88: {1, 2, execDEY},
	0x89: {2, 2, nopRead(addrImmediate)},
	0x8A: {1, 2, execTXA},
	0x8B: {2, 2, ld(addrImmediate, xaa)},
	0x8C: {3, 4, st(addrAbsolute, styVal)},
	0x8D: {3, 4, st(addrAbsolute, staVal)},
	0x8E: {3, 4, st(addrAbsolute, stxVal)},
	0x8F: {3, 4, st(addrAbsolute, saxVal)},

	0x90: {2, 2, branch(func(c *Core) bool { return !c.P.Carry })},
	0x91: {2, 6, st(addrIndirectY, staVal)},
	0x92: {1, 2, execHLT},
	0x93: {2, 6, stAddr(addrIndirectY, ahxVal)},
	0x94: {2, 4, st(addrZeroPageX, styVal)},
	0x95: {2, 4, st(addrZeroPageX, staVal)},
	0x96: {2, 4, st(addrZeroPageY, stxVal)},
	0x97: {2, 4, st(addrZeroPageY, saxVal)},
	0x98: {1, 2, execTYA},
	0x99: {3, 5, st(addrAbsoluteY, staVal)},
	0x9A: {1, 2, execTXS},
	0x9B: {3, 5, stAddr(addrAbsoluteY, tasVal)},
	0x9C: {3, 5, stAddr(addrAbsoluteX, shyVal)},
	0x9D: {3, 5, st(addrAbsoluteX, staVal)},
	0x9E: {3, 5, stAddr(addrAbsoluteY, shxVal)},
	0x9F: {3, 5, stAddr(addrAbsoluteY, ahxVal)},

	0xA0: {2, 2, ld(addrImmediate, ldy)},
	0xA1: {2, 6, ld(addrIndirectX, lda)},
	0xA2: {2, 2, ld(addrImmediate, ldx)},
	0xA3: {2, 6, ld(addrIndirectX, lax)},
	0xA4: {2, 3, ld(addrZeroPage, ldy)},
	0xA5: {2, 3, ld(addrZeroPage, lda)},
	0xA6: {2, 3, ld(addrZeroPage, ldx)},
	0xA7: {2, 3, ld(addrZeroPage, lax)},
	0xA8: {1, 2, execTAY},
	0xA9: {2, 2, ld(addrImmediate, lda)},
	0xAA: {1, 2, execTAX},
	0xAB: {2, 2, ld(addrImmediate, oal)},
	0xAC: {3, 4, ld(addrAbsolute, ldy)},
	0xAD: {3, 4, ld(addrAbsolute, lda)},
	0xAE: {3, 4, ld(addrAbsolute, ldx)},
	0xAF: {3, 4, ld(addrAbsolute, lax)},

	0xB0: {2, 2, branch(func(c *Core) bool { return c.P.Carry })},
	0xB1: {2, 5, ld(addrIndirectY, lda)},
	0xB2: {1, 2, execHLT},
	0xB3: {2, 5, ld(addrIndirectY, lax)},
	0xB4: {2, 4, ld(addrZeroPageX, ldy)},
	0xB5: {2, 4, ld(addrZeroPageX, lda)},
	0xB6: {2, 4, ld(addrZeroPageY, ldx)},
	0xB7: {2, 4, ld(addrZeroPageY, lax)},
	0xB8: {1, 2, execCLV},
	0xB9: {3, 4, ld(addrAbsoluteY, lda)},
	0xBA: {1, 2, execTSX},
	0xBB: {3, 4, ld(addrAbsoluteY, las)},
	0xBC: {3, 4, ld(addrAbsoluteX, ldy)},
	0xBD: {3, 4, ld(addrAbsoluteX, lda)},
	0xBE: {3, 4, ld(addrAbsoluteY, ldx)},
	0xBF: {3, 4, ld(addrAbsoluteY, lax)},

	0xC0: {2, 2, ld(addrImmediate, cmpY)},
	0xC1: {2, 6, ld(addrIndirectX, cmpA)},
	0xC2: {2, 2, nopRead(addrImmediate)},
	0xC3: {2, 8, rmw(addrIndirectX, dcp)},
	0xC4: {2, 3, ld(addrZeroPage, cmpY)},
	0xC5: {2, 3, ld(addrZeroPage, cmpA)},
	0xC6: {2, 5, rmw(addrZeroPage, dec)},
	0xC7: {2, 5, rmw(addrZeroPage, dcp)},
	0xC8: {1, 2, execINY},
	0xC9: {2, 2, ld(addrImmediate, cmpA)},
	0xCA: {1, 2, execDEX},
	0xCB: {2, 2, ld(addrImmediate, axs)},
	0xCC: {3, 4, ld(addrAbsolute, cmpY)},
	0xCD: {3, 4, ld(addrAbsolute, cmpA)},
	0xCE: {3, 6, rmw(addrAbsolute, dec)},
	0xCF: {3, 6, rmw(addrAbsolute, dcp)},

	0xD0: {2, 2, branch(func(c *Core) bool { return !c.P.Zero })},
	0xD1: {2, 5, ld(addrIndirectY, cmpA)},
	0xD2: {1, 2, execHLT},
	0xD3: {2, 8, rmw(addrIndirectY, dcp)},
	0xD4: {2, 4, nopRead(addrZeroPageX)},
	0xD5: {2, 4, ld(addrZeroPageX, cmpA)},
	0xD6: {2, 6, rmw(addrZeroPageX, dec)},
	0xD7: {2, 6, rmw(addrZeroPageX, dcp)},
	0xD8: {1, 2, execCLD},
	0xD9: {3, 4, ld(addrAbsoluteY, cmpA)},
	0xDA: {1, 2, execNOP},
	0xDB: {3, 7, rmw(addrAbsoluteY, dcp)},
	0xDC: {3, 4, nopRead(addrAbsoluteX)},
	0xDD: {3, 4, ld(addrAbsoluteX, cmpA)},
	0xDE: {3, 7, rmw(addrAbsoluteX, dec)},
	0xDF: {3, 7, rmw(addrAbsoluteX, dcp)},

	0xE0: {2, 2, ld(addrImmediate, cmpX)},
	0xE1: {2, 6, ld(addrIndirectX, sbc)},
	0xE2: {2, 2, nopRead(addrImmediate)},
	0xE3: {2, 8, rmw(addrIndirectX, isc)},
	0xE4: {2, 3, ld(addrZeroPage, cmpX)},
	0xE5: {2, 3, ld(addrZeroPage, sbc)},
	0xE6: {2, 5, rmw(addrZeroPage, inc)},
	0xE7: {2, 5, rmw(addrZeroPage, isc)},
	0xE8: {1, 2, execINX},
	0xE9: {2, 2, ld(addrImmediate, sbc)},
	0xEA: {1, 2, execNOP},
	0xEB: {2, 2, ld(addrImmediate, sbc)},
	0xEC: {3, 4, ld(addrAbsolute, cmpX)},
	0xED: {3, 4, ld(addrAbsolute, sbc)},
	0xEE: {3, 6, rmw(addrAbsolute, inc)},
	0xEF: {3, 6, rmw(addrAbsolute, isc)},

	0xF0: {2, 2, branch(func(c *Core) bool { return c.P.Zero })},
	0xF1: {2, 5, ld(addrIndirectY, sbc)},
	0xF2: {1, 2, execHLT},
	0xF3: {2, 8, rmw(addrIndirectY, isc)},
	0xF4: {2, 4, nopRead(addrZeroPageX)},
	0xF5: {2, 4, ld(addrZeroPageX, sbc)},
	0xF6: {2, 6, rmw(addrZeroPageX, inc)},
	0xF7: {2, 6, rmw(addrZeroPageX, isc)},
	0xF8: {1, 2, execSED},
	0xF9: {3, 4, ld(addrAbsoluteY, sbc)},
	0xFA: {1, 2, execNOP},
	0xFB: {3, 7, rmw(addrAbsoluteY, isc)},
	0xFC: {3, 4, nopRead(addrAbsoluteX)},
	0xFD: {3, 4, ld(addrAbsoluteX, sbc)},
	0xFE: {3, 7, rmw(addrAbsoluteX, inc)},
	0xFF: {3, 7, rmw(addrAbsoluteX, isc)},
}
