// Package disassemble renders the instruction at a given address as a
// fixed-width text line, independent of the cpu package — it only needs a
// memory.Bank to read operand bytes, never an executing Core.
package disassemble

import (
	"fmt"

	"github.com/solsix/mos6502/memory"
)

type mode int

const (
	modeImplied mode = iota
	modeAccumulator
	modeImmediate
	modeZP
	modeZPX
	modeZPY
	modeIndirectX
	modeIndirectY
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeRelative
)

type entry struct {
	mnemonic string
	mode     mode
}

// table mirrors cpu.opcodeTable's addressing assignment for every opcode
// byte, official and undocumented alike, so a disassembly and the Core
// that would execute it never disagree about operand shape.
var table = [256]entry{
	// BRK is encoded as modeImmediate even though it takes no real operand:
	// the byte after its opcode is still read and skipped on real hardware
	// (a "signature byte" convention some disassemblers surface), so this
	// keeps the 2 byte length in step with cpu.opcodeTable's BRK entry.
	0x00: {"BRK", modeImmediate}, 0x01: {"ORA", modeIndirectX}, 0x02: {"HLT", modeImplied}, 0x03: {"SLO", modeIndirectX},
	0x04: {"NOP", modeZP}, 0x05: {"ORA", modeZP}, 0x06: {"ASL", modeZP}, 0x07: {"SLO", modeZP},
	0x08: {"PHP", modeImplied}, 0x09: {"ORA", modeImmediate}, 0x0A: {"ASL", modeAccumulator}, 0x0B: {"ANC", modeImmediate},
	0x0C: {"NOP", modeAbsolute}, 0x0D: {"ORA", modeAbsolute}, 0x0E: {"ASL", modeAbsolute}, 0x0F: {"SLO", modeAbsolute},

	0x10: {"BPL", modeRelative}, 0x11: {"ORA", modeIndirectY}, 0x12: {"HLT", modeImplied}, 0x13: {"SLO", modeIndirectY},
	0x14: {"NOP", modeZPX}, 0x15: {"ORA", modeZPX}, 0x16: {"ASL", modeZPX}, 0x17: {"SLO", modeZPX},
	0x18: {"CLC", modeImplied}, 0x19: {"ORA", modeAbsoluteY}, 0x1A: {"NOP", modeImplied}, 0x1B: {"SLO", modeAbsoluteY},
	0x1C: {"NOP", modeAbsoluteX}, 0x1D: {"ORA", modeAbsoluteX}, 0x1E: {"ASL", modeAbsoluteX}, 0x1F: {"SLO", modeAbsoluteX},

	0x20: {"JSR", modeAbsolute}, 0x21: {"AND", modeIndirectX}, 0x22: {"HLT", modeImplied}, 0x23: {"RLA", modeIndirectX},
	0x24: {"BIT", modeZP}, 0x25: {"AND", modeZP}, 0x26: {"ROL", modeZP}, 0x27: {"RLA", modeZP},
	0x28: {"PLP", modeImplied}, 0x29: {"AND", modeImmediate}, 0x2A: {"ROL", modeAccumulator}, 0x2B: {"ANC", modeImmediate},
	0x2C: {"BIT", modeAbsolute}, 0x2D: {"AND", modeAbsolute}, 0x2E: {"ROL", modeAbsolute}, 0x2F: {"RLA", modeAbsolute},

	0x30: {"BMI", modeRelative}, 0x31: {"AND", modeIndirectY}, 0x32: {"HLT", modeImplied}, 0x33: {"RLA", modeIndirectY},
	0x34: {"NOP", modeZPX}, 0x35: {"AND", modeZPX}, 0x36: {"ROL", modeZPX}, 0x37: {"RLA", modeZPX},
	0x38: {"SEC", modeImplied}, 0x39: {"AND", modeAbsoluteY}, 0x3A: {"NOP", modeImplied}, 0x3B: {"RLA", modeAbsoluteY},
	0x3C: {"NOP", modeAbsoluteX}, 0x3D: {"AND", modeAbsoluteX}, 0x3E: {"ROL", modeAbsoluteX}, 0x3F: {"RLA", modeAbsoluteX},

	0x40: {"RTI", modeImplied}, 0x41: {"EOR", modeIndirectX}, 0x42: {"HLT", modeImplied}, 0x43: {"SRE", modeIndirectX},
	0x44: {"NOP", modeZP}, 0x45: {"EOR", modeZP}, 0x46: {"LSR", modeZP}, 0x47: {"SRE", modeZP},
	0x48: {"PHA", modeImplied}, 0x49: {"EOR", modeImmediate}, 0x4A: {"LSR", modeAccumulator}, 0x4B: {"ALR", modeImmediate},
	0x4C: {"JMP", modeAbsolute}, 0x4D: {"EOR", modeAbsolute}, 0x4E: {"LSR", modeAbsolute}, 0x4F: {"SRE", modeAbsolute},

	0x50: {"BVC", modeRelative}, 0x51: {"EOR", modeIndirectY}, 0x52: {"HLT", modeImplied}, 0x53: {"SRE", modeIndirectY},
	0x54: {"NOP", modeZPX}, 0x55: {"EOR", modeZPX}, 0x56: {"LSR", modeZPX}, 0x57: {"SRE", modeZPX},
	0x58: {"CLI", modeImplied}, 0x59: {"EOR", modeAbsoluteY}, 0x5A: {"NOP", modeImplied}, 0x5B: {"SRE", modeAbsoluteY},
	0x5C: {"NOP", modeAbsoluteX}, 0x5D: {"EOR", modeAbsoluteX}, 0x5E: {"LSR", modeAbsoluteX}, 0x5F: {"SRE", modeAbsoluteX},

	0x60: {"RTS", modeImplied}, 0x61: {"ADC", modeIndirectX}, 0x62: {"HLT", modeImplied}, 0x63: {"RRA", modeIndirectX},
	0x64: {"NOP", modeZP}, 0x65: {"ADC", modeZP}, 0x66: {"ROR", modeZP}, 0x67: {"RRA", modeZP},
	0x68: {"PLA", modeImplied}, 0x69: {"ADC", modeImmediate}, 0x6A: {"ROR", modeAccumulator}, 0x6B: {"ARR", modeImmediate},
	0x6C: {"JMP", modeIndirect}, 0x6D: {"ADC", modeAbsolute}, 0x6E: {"ROR", modeAbsolute}, 0x6F: {"RRA", modeAbsolute},

	0x70: {"BVS", modeRelative}, 0x71: {"ADC", modeIndirectY}, 0x72: {"HLT", modeImplied}, 0x73: {"RRA", modeIndirectY},
	0x74: {"NOP", modeZPX}, 0x75: {"ADC", modeZPX}, 0x76: {"ROR", modeZPX}, 0x77: {"RRA", modeZPX},
	0x78: {"SEI", modeImplied}, 0x79: {"ADC", modeAbsoluteY}, 0x7A: {"NOP", modeImplied}, 0x7B: {"RRA", modeAbsoluteY},
	0x7C: {"NOP", modeAbsoluteX}, 0x7D: {"ADC", modeAbsoluteX}, 0x7E: {"ROR", modeAbsoluteX}, 0x7F: {"RRA", modeAbsoluteX},

	0x80: {"NOP", modeImmediate}, 0x81: {"STA", modeIndirectX}, 0x82: {"NOP", modeImmediate}, 0x83: {"SAX", modeIndirectX},
	0x84: {"STY", modeZP}, 0x85: {"STA", modeZP}, 0x86: {"STX", modeZP}, 0x87: {"SAX", modeZP},
	0x88: {"DEY", modeImplied}, 0x89: {"NOP", modeImmediate}, 0x8A: {"TXA", modeImplied}, 0x8B: {"XAA", modeImmediate},
	0x8C: {"STY", modeAbsolute}, 0x8D: {"STA", modeAbsolute}, 0x8E: {"STX", modeAbsolute}, 0x8F: {"SAX", modeAbsolute},

	0x90: {"BCC", modeRelative}, 0x91: {"STA", modeIndirectY}, 0x92: {"HLT", modeImplied}, 0x93: {"AHX", modeIndirectY},
	0x94: {"STY", modeZPX}, 0x95: {"STA", modeZPX}, 0x96: {"STX", modeZPY}, 0x97: {"SAX", modeZPY},
	0x98: {"TYA", modeImplied}, 0x99: {"STA", modeAbsoluteY}, 0x9A: {"TXS", modeImplied}, 0x9B: {"TAS", modeAbsoluteY},
	0x9C: {"SHY", modeAbsoluteX}, 0x9D: {"STA", modeAbsoluteX}, 0x9E: {"SHX", modeAbsoluteY}, 0x9F: {"AHX", modeAbsoluteY},

	0xA0: {"LDY", modeImmediate}, 0xA1: {"LDA", modeIndirectX}, 0xA2: {"LDX", modeImmediate}, 0xA3: {"LAX", modeIndirectX},
	0xA4: {"LDY", modeZP}, 0xA5: {"LDA", modeZP}, 0xA6: {"LDX", modeZP}, 0xA7: {"LAX", modeZP},
	0xA8: {"TAY", modeImplied}, 0xA9: {"LDA", modeImmediate}, 0xAA: {"TAX", modeImplied}, 0xAB: {"OAL", modeImmediate},
	0xAC: {"LDY", modeAbsolute}, 0xAD: {"LDA", modeAbsolute}, 0xAE: {"LDX", modeAbsolute}, 0xAF: {"LAX", modeAbsolute},

	0xB0: {"BCS", modeRelative}, 0xB1: {"LDA", modeIndirectY}, 0xB2: {"HLT", modeImplied}, 0xB3: {"LAX", modeIndirectY},
	0xB4: {"LDY", modeZPX}, 0xB5: {"LDA", modeZPX}, 0xB6: {"LDX", modeZPY}, 0xB7: {"LAX", modeZPY},
	0xB8: {"CLV", modeImplied}, 0xB9: {"LDA", modeAbsoluteY}, 0xBA: {"TSX", modeImplied}, 0xBB: {"LAS", modeAbsoluteY},
	0xBC: {"LDY", modeAbsoluteX}, 0xBD: {"LDA", modeAbsoluteX}, 0xBE: {"LDX", modeAbsoluteY}, 0xBF: {"LAX", modeAbsoluteY},

	0xC0: {"CPY", modeImmediate}, 0xC1: {"CMP", modeIndirectX}, 0xC2: {"NOP", modeImmediate}, 0xC3: {"DCP", modeIndirectX},
	0xC4: {"CPY", modeZP}, 0xC5: {"CMP", modeZP}, 0xC6: {"DEC", modeZP}, 0xC7: {"DCP", modeZP},
	0xC8: {"INY", modeImplied}, 0xC9: {"CMP", modeImmediate}, 0xCA: {"DEX", modeImplied}, 0xCB: {"AXS", modeImmediate},
	0xCC: {"CPY", modeAbsolute}, 0xCD: {"CMP", modeAbsolute}, 0xCE: {"DEC", modeAbsolute}, 0xCF: {"DCP", modeAbsolute},

	0xD0: {"BNE", modeRelative}, 0xD1: {"CMP", modeIndirectY}, 0xD2: {"HLT", modeImplied}, 0xD3: {"DCP", modeIndirectY},
	0xD4: {"NOP", modeZPX}, 0xD5: {"CMP", modeZPX}, 0xD6: {"DEC", modeZPX}, 0xD7: {"DCP", modeZPX},
	0xD8: {"CLD", modeImplied}, 0xD9: {"CMP", modeAbsoluteY}, 0xDA: {"NOP", modeImplied}, 0xDB: {"DCP", modeAbsoluteY},
	0xDC: {"NOP", modeAbsoluteX}, 0xDD: {"CMP", modeAbsoluteX}, 0xDE: {"DEC", modeAbsoluteX}, 0xDF: {"DCP", modeAbsoluteX},

	0xE0: {"CPX", modeImmediate}, 0xE1: {"SBC", modeIndirectX}, 0xE2: {"NOP", modeImmediate}, 0xE3: {"ISC", modeIndirectX},
	0xE4: {"CPX", modeZP}, 0xE5: {"SBC", modeZP}, 0xE6: {"INC", modeZP}, 0xE7: {"ISC", modeZP},
	0xE8: {"INX", modeImplied}, 0xE9: {"SBC", modeImmediate}, 0xEA: {"NOP", modeImplied}, 0xEB: {"SBC", modeImmediate},
	0xEC: {"CPX", modeAbsolute}, 0xED: {"SBC", modeAbsolute}, 0xEE: {"INC", modeAbsolute}, 0xEF: {"ISC", modeAbsolute},

	0xF0: {"BEQ", modeRelative}, 0xF1: {"SBC", modeIndirectY}, 0xF2: {"HLT", modeImplied}, 0xF3: {"ISC", modeIndirectY},
	0xF4: {"NOP", modeZPX}, 0xF5: {"SBC", modeZPX}, 0xF6: {"INC", modeZPX}, 0xF7: {"ISC", modeZPX},
	0xF8: {"SED", modeImplied}, 0xF9: {"SBC", modeAbsoluteY}, 0xFA: {"NOP", modeImplied}, 0xFB: {"ISC", modeAbsoluteY},
	0xFC: {"NOP", modeAbsoluteX}, 0xFD: {"SBC", modeAbsoluteX}, 0xFE: {"INC", modeAbsoluteX}, 0xFF: {"ISC", modeAbsoluteX},
}

// Step disassembles the instruction at pc and returns its text rendering
// plus the byte count to advance by. It always reads the two bytes after
// pc regardless of the actual instruction length, so pc+2 must be a valid
// address to read (harmless on a full 64KiB address space).
func Step(pc uint16, m memory.Bank) (string, int) {
	op := m.Read(pc)
	b1 := m.Read(pc + 1)
	b2 := m.Read(pc + 2)
	e := table[op]

	count := 2
	out := fmt.Sprintf("%04X %02X ", pc, op)
	switch e.mode {
	case modeImmediate:
		out += fmt.Sprintf("%02X      %s #%02X       ", b1, e.mnemonic, b1)
	case modeZP:
		out += fmt.Sprintf("%02X      %s %02X        ", b1, e.mnemonic, b1)
	case modeZPX:
		out += fmt.Sprintf("%02X      %s %02X,X      ", b1, e.mnemonic, b1)
	case modeZPY:
		out += fmt.Sprintf("%02X      %s %02X,Y      ", b1, e.mnemonic, b1)
	case modeIndirectX:
		out += fmt.Sprintf("%02X      %s (%02X,X)    ", b1, e.mnemonic, b1)
	case modeIndirectY:
		out += fmt.Sprintf("%02X      %s (%02X),Y    ", b1, e.mnemonic, b1)
	case modeAbsolute:
		out += fmt.Sprintf("%02X %02X   %s %02X%02X      ", b1, b2, e.mnemonic, b2, b1)
		count++
	case modeAbsoluteX:
		out += fmt.Sprintf("%02X %02X   %s %02X%02X,X    ", b1, b2, e.mnemonic, b2, b1)
		count++
	case modeAbsoluteY:
		out += fmt.Sprintf("%02X %02X   %s %02X%02X,Y    ", b1, b2, e.mnemonic, b2, b1)
		count++
	case modeIndirect:
		out += fmt.Sprintf("%02X %02X   %s (%02X%02X)    ", b1, b2, e.mnemonic, b2, b1)
		count++
	case modeAccumulator:
		out += fmt.Sprintf("        %s A         ", e.mnemonic)
		count--
	case modeImplied:
		out += fmt.Sprintf("        %s           ", e.mnemonic)
		count--
	case modeRelative:
		target := pc + 2 + uint16(int16(int8(b1)))
		out += fmt.Sprintf("%02X      %s %02X (%04X) ", b1, e.mnemonic, b1, target)
	default:
		panic(fmt.Sprintf("invalid mode: %d", e.mode))
	}
	return out, count
}
