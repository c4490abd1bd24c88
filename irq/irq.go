// Package irq decouples interrupt sources (a PPU's VBlank line, a mapper's
// IRQ counter, a timer peripheral) from cpu.Core, which only needs to poll
// whether a line is currently held. cpu.Core distinguishes NMI (always
// serviced, edge triggered) from IRQ (masked by the I flag, level
// triggered) itself; Sender makes no such distinction, since that is a
// property of which field a caller wires a given Sender into, not of the
// source.
package irq

// Sender reports whether an interrupt line is currently asserted.
type Sender interface {
	Raised() bool
}

// Line is a simple level-triggered Sender a caller can set and clear
// directly, useful for wiring a synthetic IRQ/NMI source (tests, a
// minimal peripheral) without writing a one-off type.
type Line struct {
	held bool
}

// Raise asserts the line.
func (l *Line) Raise() { l.held = true }

// Clear deasserts the line.
func (l *Line) Clear() { l.held = false }

// Raised implements Sender.
func (l *Line) Raised() bool { return l.held }
