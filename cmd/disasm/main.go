// disasm loads a flat binary into RAM at a given offset and disassembles it
// to stdout starting at the first instruction.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/solsix/mos6502/disassemble"
	"github.com/solsix/mos6502/memory"
)

var (
	startPC = flag.Int("start_pc", 0x0000, "PC value to start disassembling")
	offset  = flag.Int("offset", 0x0000, "Offset into RAM to start loading data. All other RAM will be zero'd out.")
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		log.Fatalf("usage: %s [-start_pc <pc>] [-offset <offset>] <filename>", os.Args[0])
	}
	fn := flag.Args()[0]

	f, err := memory.New8BitRAMBank(1<<16, nil)
	if err != nil {
		log.Fatalf("can't initialize RAM: %v", err)
	}

	b, err := ioutil.ReadFile(fn)
	if err != nil {
		log.Fatalf("can't open %s: %v", fn, err)
	}
	max := 1<<16 - *offset
	if l := len(b); l > max {
		log.Printf("length %d at offset %d too long, truncating to 64k", l, *offset)
		b = b[:max]
	}
	for i, by := range b {
		f.Write(uint16(*offset+i), by)
	}

	pc := uint16(*startPC)
	cnt := 0
	for cnt < len(b) {
		dis, off := disassemble.Step(pc, f)
		fmt.Println(dis)
		pc += uint16(off)
		cnt += off
	}
}
