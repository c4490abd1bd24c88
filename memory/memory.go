// Package memory defines the basic interfaces for working
// with a 6502 family memory map. Since each implementation
// that is emulated has specific mappings (including shadowed
// regions) this is defined as an interface.
package memory

import (
	"fmt"
	"math/rand"
	"time"
)

// Bank is a 16 bit addressable, 8 bit wide memory device.
type Bank interface {
	// Read returns the data byte stored at addr.
	Read(addr uint16) uint8
	// Write updates addr with the new value. For ROM addresses this is simply a no-op without
	// any error.
	Write(addr uint16, val uint8)
	// PowerOn performs power on reset of the memory. This is implementation specific as to
	// whether it's randomized or preset to all zeros.
	PowerOn()
	// Parent holds a reference (if non-nil) to the next level memory controller. A chain
	// of these can be created in order to find the top one and be able to query items
	// such as the databus state (from the last value to go over it). Some implementations
	// depend on transient databus state due to side effects.
	Parent() Bank
	// DatabusVal returns the last value seen to go across on the data bus.
	DatabusVal() uint8
}

// LatestDatabusVal hunts up a chain of Banks until it finds the outermost one and
// return the DatabusVal from it.
func LatestDatabusVal(b Bank) uint8 {
	if b.Parent() != nil {
		return LatestDatabusVal(b.Parent())
	}
	return b.DatabusVal()
}

// ReadWord reads a little-endian 16 bit value at addr and addr+1.
func ReadWord(b Bank, addr uint16) uint16 {
	lo := b.Read(addr)
	hi := b.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// ReadSigned reads the byte at addr interpreted as a two's complement
// signed value, as used by relative branch operands.
func ReadSigned(b Bank, addr uint16) int8 {
	return int8(b.Read(addr))
}

// ram implements a standard R/W interface to an address space for 8 bit systems.
// If this is mapped into a larger memory map it's up to a parent Bank to properly mask addr
// before calling Read/Write.
type ram struct {
	ram        []uint8
	parent     Bank
	databusVal uint8
}

// New8BitRAMBank creates a R/W RAM bank of the given size. Size must be a power of 2.
// If this is smaller than 64k (uint16 max) aliasing will occur on Read/Write.
func New8BitRAMBank(size int, parent Bank) (Bank, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("invalid size: %d must be a power of 2", size)
	}
	if size > 1<<16 {
		return nil, fmt.Errorf("invalid size: %d is bigger than 64k", size)
	}
	b := &ram{
		parent: parent,
	}
	// Go ahead and completely preallocate this now.
	b.ram = make([]uint8, size, size)
	return b, nil
}

// Read implements the interface for Bank. Address is clipped based on length of ram buffer.
func (r *ram) Read(addr uint16) uint8 {
	// Mask addr to fit
	addr &= uint16(len(r.ram) - 1)
	val := r.ram[addr]
	r.databusVal = val
	return val
}

// Write implements the interface for Bank. Address is clipped based on length of ram buffer.
func (r *ram) Write(addr uint16, val uint8) {
	// Mask addr to fit
	addr &= uint16(len(r.ram) - 1)
	r.databusVal = val
	r.ram[addr] = val
}

// PowerOn implements the interface for memory.Bank and randomizes the RAM.
func (r *ram) PowerOn() {
	rand.Seed(time.Now().UnixNano())
	for i := range r.ram {
		r.ram[i] = uint8(rand.Intn(256))
	}
}

// Parent implements the interface for returning a possible parent memory.Bank.
func (r *ram) Parent() Bank {
	return r.parent
}

// DatabusVal returns the most recent seen databus item.
func (r *ram) DatabusVal() uint8 {
	return r.databusVal
}

// rom implements Bank over a fixed, preloaded byte slice. Writes are
// silently discarded, matching real cartridge/mask-ROM behavior.
type rom struct {
	data       []uint8
	parent     Bank
	databusVal uint8
}

// NewROM creates a read-only Bank backed by data. data is used directly, not
// copied; callers should not mutate it afterwards.
func NewROM(data []uint8, parent Bank) Bank {
	return &rom{data: data, parent: parent}
}

func (r *rom) Read(addr uint16) uint8 {
	val := r.data[int(addr)%len(r.data)]
	r.databusVal = val
	return val
}

func (r *rom) Write(addr uint16, val uint8) {
	// Writes to ROM are no-ops, but still observable on the data bus.
	r.databusVal = val
}

func (r *rom) PowerOn() {}

func (r *rom) Parent() Bank { return r.parent }

func (r *rom) DatabusVal() uint8 { return r.databusVal }

// mirror wraps an underlying Bank of a given logical size, masking every
// address into a smaller physical window before delegating. This is the
// standard "N KiB mirrored every M bytes" pattern (NES internal RAM,
// PPU register window, and similar).
type mirror struct {
	underlying Bank
	mask       uint16
	size       uint16
	parent     Bank
}

// NewMirror returns a Bank of logical size size that mirrors underlying
// every (mask+1) bytes. mask must be (mirrored window size - 1), e.g. 0x07FF
// to mirror a 2 KiB window.
func NewMirror(underlying Bank, mask uint16, size uint16, parent Bank) Bank {
	return &mirror{underlying: underlying, mask: mask, size: size, parent: parent}
}

func (m *mirror) Read(addr uint16) uint8 {
	return m.underlying.Read(addr & m.mask)
}

func (m *mirror) Write(addr uint16, val uint8) {
	m.underlying.Write(addr&m.mask, val)
}

func (m *mirror) PowerOn() { m.underlying.PowerOn() }

func (m *mirror) Parent() Bank { return m.parent }

func (m *mirror) DatabusVal() uint8 { return m.underlying.DatabusVal() }

// region is one entry of an AddressMap: an inclusive [start, end] range
// delegated to bank, with addresses rebased by subtracting start before the
// delegate sees them.
type region struct {
	start uint16
	end   uint16 // inclusive
	bank  Bank
}

// AddressMap composes several Banks into one, each covering a disjoint
// address range. It is the Go analogue of a hand-written range-dispatch
// Read/Write method: built once from a slice of ranges rather than a
// bespoke switch per system.
type AddressMap struct {
	regions    []region
	parent     Bank
	databusVal uint8
}

// Range describes one entry passed to NewAddressMap: addresses in
// [Start, End] (inclusive) are rebased to start at 0 and delegated to Bank.
type Range struct {
	Start uint16
	End   uint16
	Bank  Bank
}

// NewAddressMap builds a composed Bank from non-overlapping ranges. Ranges
// need not be supplied in address order. An address not covered by any
// range reads as 0 and discards writes.
func NewAddressMap(ranges []Range, parent Bank) *AddressMap {
	m := &AddressMap{parent: parent}
	for _, r := range ranges {
		m.regions = append(m.regions, region{start: r.Start, end: r.End, bank: r.Bank})
	}
	return m
}

func (m *AddressMap) find(addr uint16) *region {
	for i := range m.regions {
		r := &m.regions[i]
		if addr >= r.start && addr <= r.end {
			return r
		}
	}
	return nil
}

func (m *AddressMap) Read(addr uint16) uint8 {
	if r := m.find(addr); r != nil {
		val := r.bank.Read(addr - r.start)
		m.databusVal = val
		return val
	}
	return 0
}

func (m *AddressMap) Write(addr uint16, val uint8) {
	if r := m.find(addr); r != nil {
		r.bank.Write(addr-r.start, val)
	}
	m.databusVal = val
}

func (m *AddressMap) PowerOn() {
	for _, r := range m.regions {
		r.bank.PowerOn()
	}
}

func (m *AddressMap) Parent() Bank { return m.parent }

func (m *AddressMap) DatabusVal() uint8 { return m.databusVal }
