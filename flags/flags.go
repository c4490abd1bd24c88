// Package flags packs and unpacks the 6502 processor status register (P).
//
// The register is conventionally drawn as:
//
//	N V - B D I Z C
//
// Bit 5 ("-") is unused and always reads as 1 on real silicon; bit 4 ("B")
// is never stored by the processor itself and only materializes in the byte
// pushed to the stack by BRK or PHP (cleared for a pushed IRQ/NMI). Flags
// does not have fields for bit 4/5; callers that push P construct the pushed
// byte explicitly (see cpu.execBRK, cpu.execPHP, and cpu.enterInterrupt).
package flags

// Bit positions within the status byte.
const (
	Carry     = uint8(0x01)
	Zero      = uint8(0x02)
	Interrupt = uint8(0x04)
	Decimal   = uint8(0x08)
	Break     = uint8(0x10) // only meaningful in a byte already pushed to stack
	Unused    = uint8(0x20) // always reads 1 on real silicon
	Overflow  = uint8(0x40)
	Negative  = uint8(0x80)
)

// Flags is the subset of the status register the core keeps resident:
// N V D I Z C. B and Unused are synthesized only when the byte is pushed.
type Flags struct {
	Carry     bool
	Zero      bool
	Interrupt bool
	Decimal   bool
	Overflow  bool
	Negative  bool
}

// Byte packs the resident flags into a status byte. Bit 5 is always set;
// bit 4 (B) is always clear — callers that need B set (BRK/PHP) OR it in
// themselves after calling Byte.
func (f Flags) Byte() uint8 {
	var b uint8 = Unused
	if f.Carry {
		b |= Carry
	}
	if f.Zero {
		b |= Zero
	}
	if f.Interrupt {
		b |= Interrupt
	}
	if f.Decimal {
		b |= Decimal
	}
	if f.Overflow {
		b |= Overflow
	}
	if f.Negative {
		b |= Negative
	}
	return b
}

// SetByte unpacks a status byte into f, discarding bits 4 and 5.
func (f *Flags) SetByte(b uint8) {
	f.Carry = b&Carry != 0
	f.Zero = b&Zero != 0
	f.Interrupt = b&Interrupt != 0
	f.Decimal = b&Decimal != 0
	f.Overflow = b&Overflow != 0
	f.Negative = b&Negative != 0
}

// SetZN sets the Zero and Negative flags from the given result byte, the
// pattern every load/transfer/ALU op that affects Z/N shares.
func (f *Flags) SetZN(v uint8) {
	f.Zero = v == 0
	f.Negative = v&Negative != 0
}
