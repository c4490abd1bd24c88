// Package trace renders the pre-execution CPU state as a single text line
// in the format nestest-style reference logs use, so a driver can diff its
// own run byte-for-byte against one.
package trace

import (
	"fmt"

	"github.com/solsix/mos6502/cpu"
)

// Line formats c's current (pre-execution) state: PC, registers, packed
// status byte, stack pointer, a PPU dot position derived from the cycle
// count (3 PPU dots per CPU cycle, 341 dots per scanline), and the
// cumulative cycle count.
func Line(c *cpu.Core) string {
	ppuDot := c.Cycles * 3
	return fmt.Sprintf("%04X  A:%02X X:%02X Y:%02X P:%02X SP:%02X PPU:%3d,%3d CYC:%d",
		c.PC, c.A, c.X, c.Y, c.P.Byte(), c.S, ppuDot/341, ppuDot%341, c.Cycles)
}
