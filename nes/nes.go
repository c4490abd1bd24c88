// Package nes assembles cpu.Core's generic memory.Bank interface into the
// specific memory map the Nintendo Entertainment System's Ricoh 2A03
// exposes, and parses just enough of the iNES ROM format to load an NROM
// cartridge. Everything this package models beyond that composition — the
// PPU, the APU, mappers other than NROM, controller input — is explicitly
// out of scope; see SPEC_FULL.md.
package nes

import (
	"fmt"

	"github.com/solsix/mos6502/memory"
)

const (
	ramSize    = 0x0800 // 2 KiB internal work RAM.
	ramMirrors = 0x1FFF // mirrored through 0x1FFF.

	ppuRegisters = 8      // $2000-$2007, mirrored every 8 bytes through $3FFF.
	ppuWindowEnd = 0x3FFF

	apuIOSize = 0x0020 // $4000-$401F.

	prgBankSize = 16 * 1024
	iNESMagic   = "NES\x1a"
)

// stubBank is an always-zero, write-discarding Bank: a placeholder for the
// APU/IO registers this package does not model. Reads always return 0, the
// simplest safe stand-in, since no component in this module depends on APU
// register semantics.
type stubBank struct {
	parent     memory.Bank
	databusVal uint8
}

func newStubBank(parent memory.Bank) memory.Bank { return &stubBank{parent: parent} }

func (s *stubBank) Read(addr uint16) uint8     { return 0 }
func (s *stubBank) Write(addr uint16, v uint8) { s.databusVal = v }
func (s *stubBank) PowerOn()                   {}
func (s *stubBank) Parent() memory.Bank         { return s.parent }
func (s *stubBank) DatabusVal() uint8           { return s.databusVal }

// NewAddressMap composes the standard NES CPU memory map around prg, the
// cartridge's PRG-ROM (or PRG-RAM) bank as already prepared by LoadINES or
// a caller's own mapper. Layout matches spec.md §6's table: 2 KiB RAM
// mirrored through $1FFF, an 8 register PPU window mirrored through $3FFF,
// a flat APU/IO register window through $401F, and the cartridge from
// $4020 through $FFFF.
func NewAddressMap(prg memory.Bank) (*memory.AddressMap, error) {
	ram, err := memory.New8BitRAMBank(ramSize, nil)
	if err != nil {
		return nil, fmt.Errorf("nes: building work RAM: %w", err)
	}
	ppu, err := memory.New8BitRAMBank(ppuRegisters, nil)
	if err != nil {
		return nil, fmt.Errorf("nes: building PPU register backing store: %w", err)
	}

	m := memory.NewAddressMap([]memory.Range{
		{Start: 0x0000, End: ramMirrors, Bank: memory.NewMirror(ram, ramSize-1, ramMirrors+1, nil)},
		{Start: 0x2000, End: ppuWindowEnd, Bank: memory.NewMirror(ppu, ppuRegisters-1, ppuWindowEnd-0x2000+1, nil)},
		{Start: 0x4000, End: 0x4000 + apuIOSize - 1, Bank: newStubBank(nil)},
		{Start: 0x4020, End: 0xFFFF, Bank: prg},
	}, nil)
	return m, nil
}

// LoadINES parses the 16 byte iNES header enough to build an NROM PRG-ROM
// bank: the magic number and the PRG-ROM bank count (in 16 KiB units). A 16
// KiB image is mirrored to fill $8000-$FFFF (addresses below $8000 within
// the cartridge window read as 0, matching unpopulated NROM cartridge
// space); a 32 KiB image is used unmirrored. Trainers, CHR-ROM, and every
// byte past the PRG-ROM data are ignored: this is not a general mapper
// loader, only the minimal slice needed to run a PRG-only test ROM like
// nestest.nes.
func LoadINES(rom []byte) (memory.Bank, error) {
	if len(rom) < 16 || string(rom[0:4]) != iNESMagic {
		return nil, fmt.Errorf("nes: not an iNES file (bad magic)")
	}
	prgBanks := int(rom[4])
	if prgBanks == 0 {
		return nil, fmt.Errorf("nes: iNES header declares zero PRG-ROM banks")
	}
	hasTrainer := rom[6]&0x04 != 0
	offset := 16
	if hasTrainer {
		offset += 512
	}
	prgSize := prgBanks * prgBankSize
	if len(rom) < offset+prgSize {
		return nil, fmt.Errorf("nes: iNES file too short for declared PRG-ROM size (%d bytes)", prgSize)
	}
	prg := rom[offset : offset+prgSize]

	// Build the cartridge window ($4020-$FFFF, rebased to start at 0) as a
	// plain byte slice rather than a RAM Bank: RAM's PowerOn randomizes its
	// contents, which would clobber the loaded PRG-ROM the first time a
	// caller powers on the composed AddressMap. NewROM's PowerOn is a no-op,
	// matching real cartridge ROM's write-once-at-load-time semantics.
	window := make([]uint8, 0x10000-0x4020)
	start := 0x8000 - 0x4020
	if prgBanks == 1 {
		// Mirror the single 16 KiB bank across both halves of $8000-$FFFF.
		copy(window[start:start+prgBankSize], prg)
		copy(window[start+prgBankSize:start+2*prgBankSize], prg)
	} else {
		copy(window[start:start+prgSize], prg)
	}
	return memory.NewROM(window, nil), nil
}
