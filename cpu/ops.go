package cpu

import "github.com/solsix/mos6502/flags"

// execFunc is the full body of one opcode: resolve operand(s), perform the
// operation, mutate c, and report any cycle cost beyond the table's base
// count (a page-cross penalty on a load, or a taken-branch penalty). op is
// the opcode byte itself; no current execFunc reads it (Step records which
// byte halted the CPU on its own).
type execFunc func(c *Core, op uint8) uint8

// loadReg stores val into *reg and sets Z/N from it — the single-tick
// "loadRegister" pattern shared by every load, transfer, and most ALU ops.
func (c *Core) loadReg(reg *uint8, val uint8) {
	*reg = val
	c.P.SetZN(val)
}

// carryFrom16 sets C if an 8 bit ALU op (computed as a 16 bit intermediate)
// produced a carry out, i.e. res >= 0x100. BCD fixups can still legally
// produce values up to ~0x200 here, which is still a carry.
func (c *Core) carryFrom16(res uint16) {
	c.P.Carry = res >= 0x100
}

// overflow sets V if combining reg and arg into res caused a two's
// complement sign change — http://www.righto.com/2012/12/the-6502-overflow-flag-explained.html
func (c *Core) overflow(reg, arg, res uint8) {
	c.P.Overflow = (reg^res)&(arg^res)&0x80 != 0
}

// ld builds an execFunc for a load-type instruction: resolve af, read the
// operand byte, and hand it to op. Reports 1 extra cycle on a page cross.
func ld(af addrFunc, op func(c *Core, val uint8)) execFunc {
	return func(c *Core, _ uint8) uint8 {
		addr, crossed := af(c)
		op(c, c.mem.Read(addr))
		if crossed {
			return 1
		}
		return 0
	}
}

// rmw builds an execFunc for a read-modify-write instruction: resolve af,
// read the operand, let op compute the new value (setting flags as a side
// effect), and write it back. No page-cross penalty — RMW addressing
// always pays the worst-case cycle count already listed in the table.
func rmw(af addrFunc, op func(c *Core, val uint8) uint8) execFunc {
	return func(c *Core, _ uint8) uint8 {
		addr, _ := af(c)
		val := c.mem.Read(addr)
		newVal := op(c, val)
		c.mem.Write(addr, newVal)
		return 0
	}
}

// st builds an execFunc for a store-type instruction: resolve af and write
// whatever val returns. No page-cross penalty.
func st(af addrFunc, val func(c *Core) uint8) execFunc {
	return func(c *Core, _ uint8) uint8 {
		addr, _ := af(c)
		c.mem.Write(addr, val(c))
		return 0
	}
}

// stAddr builds an execFunc for the small family of undocumented stores
// (AHX/SHX/SHY/TAS) whose stored value itself depends on the resolved
// address (specifically its high byte + 1).
func stAddr(af addrFunc, val func(c *Core, addr uint16) uint8) execFunc {
	return func(c *Core, _ uint8) uint8 {
		addr, _ := af(c)
		c.mem.Write(addr, val(c, addr))
		return 0
	}
}

// branch builds an execFunc for a conditional relative branch. If cond is
// false the branch falls through (0 extra cycles, PC advances normally by
// the instruction's 2 byte length). If true, PC is repositioned directly
// and 1 cycle is charged, plus 1 more if the branch target is on a
// different page.
func branch(cond func(c *Core) bool) execFunc {
	return func(c *Core, _ uint8) uint8 {
		offset := int8(c.mem.Read(c.PC + 1))
		if !cond(c) {
			return 0
		}
		next := c.PC + 2
		target := uint16(int32(next) + int32(offset))
		c.PC = target
		c.jumped = true
		extra := uint8(1)
		if target&0xFF00 != next&0xFF00 {
			extra++
		}
		return extra
	}
}

// --- Load/ALU value operations (operate on an already-fetched operand byte) ---

func lda(c *Core, val uint8) { c.loadReg(&c.A, val) }
func ldx(c *Core, val uint8) { c.loadReg(&c.X, val) }
func ldy(c *Core, val uint8) { c.loadReg(&c.Y, val) }
func ora(c *Core, val uint8) { c.loadReg(&c.A, c.A|val) }
func and(c *Core, val uint8) { c.loadReg(&c.A, c.A&val) }
func eor(c *Core, val uint8) { c.loadReg(&c.A, c.A^val) }

// lax loads the same value into both A and X (undocumented).
func lax(c *Core, val uint8) {
	c.loadReg(&c.A, val)
	c.loadReg(&c.X, val)
}

// bit tests val against A without affecting A: Z reflects A&val, N/V are
// copied straight from bits 7/6 of val.
func bit(c *Core, val uint8) {
	c.P.Zero = c.A&val == 0
	c.P.Negative = val&flags.Negative != 0
	c.P.Overflow = val&flags.Overflow != 0
}

// adc implements ADC for both binary and (where decimalCapable and D set)
// BCD modes. http://6502.org/tutorials/decimal_mode.html
func adc(c *Core, val uint8) {
	carry := uint8(0)
	if c.P.Carry {
		carry = 1
	}
	if c.decimalCapable && c.P.Decimal {
		al := (c.A & 0x0F) + (val & 0x0F) + carry
		if al >= 0x0A {
			al = ((al + 0x06) & 0x0F) + 0x10
		}
		sum := uint16(c.A&0xF0) + uint16(val&0xF0) + uint16(al)
		if sum >= 0xA0 {
			sum += 0x60
		}
		res := uint8(sum & 0xFF)
		seq := (c.A & 0xF0) + (val & 0xF0) + al
		bin := c.A + val + carry
		c.overflow(c.A, val, seq)
		c.carryFrom16(sum)
		c.P.Negative = seq&flags.Negative != 0
		c.P.Zero = bin == 0
		c.A = res
		return
	}
	sum := c.A + val + carry
	c.overflow(c.A, val, sum)
	c.carryFrom16(uint16(c.A) + uint16(val) + uint16(carry))
	c.loadReg(&c.A, sum)
}

// sbc implements SBC. In binary mode it is exactly ones-complement-and-ADC;
// in BCD mode the result byte gets its own nibble fixups but C/Z/N/V are
// always computed from the binary-mode subtraction (see SPEC_FULL.md §9).
func sbc(c *Core, val uint8) {
	if c.decimalCapable && c.P.Decimal {
		carry := uint8(0)
		if c.P.Carry {
			carry = 1
		}
		al := int8(c.A&0x0F) - int8(val&0x0F) + int8(carry) - 1
		if al < 0 {
			al = ((al - 0x06) & 0x0F) - 0x10
		}
		sum := int16(c.A&0xF0) - int16(val&0xF0) + int16(al)
		if sum < 0x0000 {
			sum -= 0x60
		}
		res := uint8(sum & 0xFF)

		b := c.A + ^val + carry
		c.overflow(c.A, ^val, b)
		c.P.Negative = b&flags.Negative != 0
		c.carryFrom16(uint16(c.A) + uint16(^val) + uint16(carry))
		c.P.Zero = b == 0
		c.A = res
		return
	}
	adc(c, ^val)
}

func cmp(c *Core, reg, val uint8) {
	c.P.Zero = reg-val == 0
	c.P.Negative = (reg-val)&flags.Negative != 0
	// A-M via two's complement addition (ones complement + 1) so the same
	// carry-out test used everywhere else applies.
	c.carryFrom16(uint16(reg) + uint16(^val) + uint16(1))
}

func cmpA(c *Core, val uint8) { cmp(c, c.A, val) }
func cmpX(c *Core, val uint8) { cmp(c, c.X, val) }
func cmpY(c *Core, val uint8) { cmp(c, c.Y, val) }

// anc (undocumented): AND #i then copies bit 7 of the result into carry.
func anc(c *Core, val uint8) {
	c.loadReg(&c.A, c.A&val)
	c.P.Carry = c.A&flags.Negative != 0
}

// alr (undocumented): AND #i then LSR A.
func alr(c *Core, val uint8) {
	c.loadReg(&c.A, c.A&val)
	lsrAcc(c)
}

// arr (undocumented): AND #i then ROR A, with odd BCD-aware flag fixups.
// http://nesdev.com/6502_cpu.txt
func arr(c *Core, val uint8) {
	t := c.A & val
	c.loadReg(&c.A, t)
	rorAcc(c)
	if c.decimalCapable && c.P.Decimal {
		c.P.Overflow = (t^c.A)&0x40 != 0
		ah := t >> 4
		al := t & 0x0F
		if (al + (al & 0x01)) > 5 {
			c.A = (c.A & 0xF0) | ((c.A + 6) & 0x0F)
		}
		if (ah + (ah & 1)) > 5 {
			c.P.Carry = true
			c.A += 0x60
		} else {
			c.P.Carry = false
		}
		return
	}
	c.P.Carry = c.A&0x40 != 0
	c.P.Overflow = ((c.A&0x40)>>6)^((c.A&0x20)>>5) != 0
}

// axs (undocumented, aka SBX): X = (A & X) - val with no borrow in, C/Z/N
// set like the subtraction, D and V left exactly as they were.
func axs(c *Core, val uint8) {
	origA := c.A
	savedD := c.P.Decimal
	savedV := c.P.Overflow
	c.A = c.A & c.X
	c.P.Decimal = false
	c.P.Carry = true
	sbc(c, val)
	result := c.A
	c.A = origA
	c.X = result
	c.P.SetZN(result)
	c.P.Overflow = savedV
	c.P.Decimal = savedD
}

// xaa (undocumented, aka ANE): unstable on real silicon; implemented per
// http://visual6502.org/wiki/index.php?title=6502_Opcode_8B_(XAA,_ANE)
// using the commonly cited 0xEE magic constant.
func xaa(c *Core, val uint8) {
	c.loadReg(&c.A, (c.A|0xEE)&c.X&val)
}

// oal (undocumented, aka LXA/ATX): behaves unpredictably on real hardware,
// reported to alternate between the XAA formula and a clean A=X=A&val.
func oal(c *Core, val uint8) {
	if rngFloat32() >= 0.5 {
		xaa(c, val)
		return
	}
	v := c.A & val
	c.loadReg(&c.A, v)
	c.loadReg(&c.X, v)
}

// las (undocumented): ANDs val with S and loads the result into A, X, and S.
func las(c *Core, val uint8) {
	c.S &= val
	c.loadReg(&c.X, c.S)
	c.loadReg(&c.A, c.S)
}

// --- Read-modify-write operations (operate on a fetched byte, return the new one) ---

func asl(c *Core, val uint8) uint8 {
	c.carryFrom16(uint16(val) << 1)
	res := val << 1
	c.P.SetZN(res)
	return res
}

func lsr(c *Core, val uint8) uint8 {
	c.P.Carry = val&0x01 != 0
	res := val >> 1
	c.P.SetZN(res)
	return res
}

func rol(c *Core, val uint8) uint8 {
	carry := uint8(0)
	if c.P.Carry {
		carry = 1
	}
	c.carryFrom16(uint16(val) << 1)
	res := (val << 1) | carry
	c.P.SetZN(res)
	return res
}

func ror(c *Core, val uint8) uint8 {
	carry := uint8(0)
	if c.P.Carry {
		carry = 0x80
	}
	c.P.Carry = val&0x01 != 0
	res := (val >> 1) | carry
	c.P.SetZN(res)
	return res
}

func inc(c *Core, val uint8) uint8 {
	res := val + 1
	c.P.SetZN(res)
	return res
}

func dec(c *Core, val uint8) uint8 {
	res := val - 1
	c.P.SetZN(res)
	return res
}

// slo (undocumented): ASL the memory operand, then OR the result into A.
func slo(c *Core, val uint8) uint8 {
	c.carryFrom16(uint16(val) << 1)
	res := val << 1
	c.loadReg(&c.A, res|c.A)
	return res
}

// rla (undocumented): ROL the memory operand, then AND the result into A.
func rla(c *Core, val uint8) uint8 {
	carry := uint8(0)
	if c.P.Carry {
		carry = 1
	}
	c.carryFrom16(uint16(val) << 1)
	res := (val << 1) | carry
	c.loadReg(&c.A, res&c.A)
	return res
}

// sre (undocumented, aka LSE): LSR the memory operand, then EOR the result into A.
func sre(c *Core, val uint8) uint8 {
	c.P.Carry = val&0x01 != 0
	res := val >> 1
	c.loadReg(&c.A, res^c.A)
	return res
}

// rra (undocumented): ROR the memory operand, then ADC the result into A.
// Fully implemented (not stubbed) per SPEC_FULL.md §9.
func rra(c *Core, val uint8) uint8 {
	carry := uint8(0)
	if c.P.Carry {
		carry = 0x80
	}
	c.P.Carry = val&0x01 != 0
	res := (val >> 1) | carry
	adc(c, res)
	return res
}

// dcp (undocumented, aka DCM): decrement the memory operand, then CMP A against it.
func dcp(c *Core, val uint8) uint8 {
	res := val - 1
	cmpA(c, res)
	return res
}

// isc (undocumented, aka ISB/INS): increment the memory operand, then SBC it from A.
func isc(c *Core, val uint8) uint8 {
	res := val + 1
	sbc(c, res)
	return res
}

// --- Accumulator-mode shift/rotate (no memory operand) ---

func aslAcc(c *Core) uint8 {
	c.A = asl(c, c.A)
	return 0
}

func lsrAcc(c *Core) uint8 {
	c.A = lsr(c, c.A)
	return 0
}

func rolAcc(c *Core) uint8 {
	c.A = rol(c, c.A)
	return 0
}

func rorAcc(c *Core) uint8 {
	c.A = ror(c, c.A)
	return 0
}

// --- Store operations ---

func staVal(c *Core) uint8 { return c.A }
func stxVal(c *Core) uint8 { return c.X }
func styVal(c *Core) uint8 { return c.Y }

// sax (undocumented, aka AXS-store): stores A&X.
func saxVal(c *Core) uint8 { return c.A & c.X }

// ahx/shx/shy/tas (all undocumented): the stored byte ANDs register(s)
// with (address-high-byte + 1) — a side effect of how these opcodes
// corrupt the high address byte on real silicon when a page boundary is
// crossed during their addressing.
func ahxVal(c *Core, addr uint16) uint8 { return c.A & c.X & uint8(addr>>8+1) }
func shxVal(c *Core, addr uint16) uint8 { return c.X & uint8(addr>>8+1) }
func shyVal(c *Core, addr uint16) uint8 { return c.Y & uint8(addr>>8+1) }

// tas (undocumented): like ahx but also sets S = A&X first.
func tasVal(c *Core, addr uint16) uint8 {
	c.S = c.A & c.X
	return ahxVal(c, addr)
}
