package cpu

import "github.com/solsix/mos6502/memory"

// addrFunc resolves the effective address of an instruction's operand,
// reading whatever bytes that requires from PC+1 onward. It reports
// whether resolving the address crossed a page boundary; only load-type
// accesses ever owe an extra cycle for that (store and read-modify-write
// accesses already pay the worst case in their table-listed cycle count).
//
// Each addrFunc assumes c.PC still points at the opcode byte — it is only
// ever called once per Step, before PC is advanced.
type addrFunc func(c *Core) (addr uint16, pageCrossed bool)

func addrImmediate(c *Core) (uint16, bool) {
	return c.PC + 1, false
}

func addrZeroPage(c *Core) (uint16, bool) {
	return uint16(c.mem.Read(c.PC + 1)), false
}

func addrZeroPageX(c *Core) (uint16, bool) {
	return uint16(c.mem.Read(c.PC+1) + c.X), false
}

func addrZeroPageY(c *Core) (uint16, bool) {
	return uint16(c.mem.Read(c.PC+1) + c.Y), false
}

func addrAbsolute(c *Core) (uint16, bool) {
	return memory.ReadWord(c.mem, c.PC+1), false
}

func addrAbsoluteX(c *Core) (uint16, bool) {
	base := memory.ReadWord(c.mem, c.PC+1)
	return indexAddr(base, c.X)
}

func addrAbsoluteY(c *Core) (uint16, bool) {
	base := memory.ReadWord(c.mem, c.PC+1)
	return indexAddr(base, c.Y)
}

// addrIndirectX implements (d,x): the zero page pointer is formed by
// adding X to the operand byte (wrapping within zero page) before the
// pointer itself is read.
func addrIndirectX(c *Core) (uint16, bool) {
	ptr := uint16(c.mem.Read(c.PC+1) + c.X)
	return wrappingRead(c.mem, ptr), false
}

// addrIndirectY implements (d),y: the zero page pointer is read first,
// then Y is added to the resulting 16 bit base address (no zero page
// wrap involved in this half).
func addrIndirectY(c *Core) (uint16, bool) {
	ptr := uint16(c.mem.Read(c.PC + 1))
	base := wrappingRead(c.mem, ptr)
	return indexAddr(base, c.Y)
}

// indexAddr adds reg to base and reports whether doing so crossed a page
// boundary (changed the high byte).
func indexAddr(base uint16, reg uint8) (uint16, bool) {
	addr := base + uint16(reg)
	return addr, addr&0xFF00 != base&0xFF00
}

// wrappingRead reads the 16 bit pointer stored at addr, reproducing the
// classic 6502 hardware bug: if addr's low byte is 0xFF, the high byte is
// read from addr&0xFF00 (wrapping within the same page) instead of
// addr+1. This affects both JMP (abs) and every zero-page-indirect mode,
// since in all of them the pointer fetch never crosses out of its page.
func wrappingRead(m memory.Bank, addr uint16) uint16 {
	lo := m.Read(addr)
	var hiAddr uint16
	if addr&0x00FF == 0x00FF {
		hiAddr = addr & 0xFF00
	} else {
		hiAddr = addr + 1
	}
	hi := m.Read(hiAddr)
	return uint16(hi)<<8 | uint16(lo)
}
