// nestest loads an iNES ROM (conventionally nestest.nes) and runs it
// headless from the CPU test entry point, printing one trace line per
// instruction and stopping when the test writes a nonzero result code.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/solsix/mos6502/cpu"
	"github.com/solsix/mos6502/nes"
	"github.com/solsix/mos6502/trace"
)

var (
	startPC  = flag.Int("start_pc", 0xC000, "PC value to start execution at (nestest's automated entry point)")
	refLog   = flag.String("reference_log", "", "Optional path to a nestest.log-style reference trace to diff against")
	maxSteps = flag.Int("max_steps", 10000, "Maximum instructions to execute before giving up")
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		log.Fatalf("usage: %s [-start_pc <pc>] [-reference_log <path>] <rom.nes>", os.Args[0])
	}

	rom, err := ioutil.ReadFile(flag.Args()[0])
	if err != nil {
		log.Fatalf("can't read %s: %v", flag.Args()[0], err)
	}
	prg, err := nes.LoadINES(rom)
	if err != nil {
		log.Fatalf("can't load iNES image: %v", err)
	}
	mem, err := nes.NewAddressMap(prg)
	if err != nil {
		log.Fatalf("can't build NES memory map: %v", err)
	}

	c, err := cpu.New(&cpu.ChipDef{Cpu: cpu.CPU_NMOS_RICOH, Mem: mem, DecimalMode: false})
	if err != nil {
		log.Fatalf("can't create CPU: %v", err)
	}
	c.PC = uint16(*startPC)
	c.P.Interrupt = true
	c.S = 0xFD
	c.Cycles = 7
	c.A, c.X, c.Y = 0, 0, 0

	var ref *bufio.Scanner
	if *refLog != "" {
		f, err := os.Open(*refLog)
		if err != nil {
			log.Fatalf("can't open reference log %s: %v", *refLog, err)
		}
		defer f.Close()
		s := bufio.NewScanner(f)
		ref = s
	}

	instructions := 0
	for instructions < *maxSteps {
		if b := mem.Read(0x0002); b != 0 {
			fmt.Printf("FAILED: $0002 = %02X after %d instructions\n", b, instructions)
			os.Exit(1)
		}
		if b := mem.Read(0x0003); b != 0 {
			fmt.Printf("FAILED: $0003 = %02X after %d instructions\n", b, instructions)
			os.Exit(1)
		}

		line := trace.Line(c)
		fmt.Println(line)
		if ref != nil && ref.Scan() {
			if got, want := line, ref.Text(); got != want {
				fmt.Printf("MISMATCH at instruction %d:\n got:  %s\n want: %s\n", instructions, got, want)
				os.Exit(1)
			}
		}

		if err := c.Step(); err != nil {
			log.Fatalf("Step failed after %d instructions: %v", instructions, err)
		}
		instructions++
	}
	fmt.Printf("PASSED: ran %d instructions with $0002=$0003=0\n", instructions)
}
