// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "strings"

// An opsym is an internal symbol used to associate an opcode's data
// with its instructions.
type opsym byte

const (
	symADC opsym = iota
	symAND
	symASL
	symBCC
	symBCS
	symBEQ
	symBIT
	symBMI
	symBNE
	symBPL
	symBRK
	symBVC
	symBVS
	symCLC
	symCLD
	symCLI
	symCLV
	symCMP
	symCPX
	symCPY
	symDEC
	symDEX
	symDEY
	symEOR
	symINC
	symINX
	symINY
	symJMP
	symJSR
	symLDA
	symLDX
	symLDY
	symLSR
	symNOP
	symORA
	symPHA
	symPHP
	symPLA
	symPLP
	symROL
	symROR
	symRTI
	symRTS
	symSBC
	symSEC
	symSED
	symSEI
	symSTA
	symSTX
	symSTY
	symTAX
	symTAY
	symTSX
	symTXA
	symTXS
	symTYA

	// undocumented
	symALR
	symANC
	symARR
	symAXS
	symDCP
	symISC
	symKIL
	symLAS
	symLAX
	symLXA
	symRLA
	symRRA
	symSAX
	symSHA
	symSHX
	symSHY
	symSLO
	symSRE
	symTAS
	symXAA
)

// An instfunc executes an instruction whose operand has already been
// resolved. It returns 1 if the instruction takes part in the extra
// page-crossing cycle, 0 otherwise.
type instfunc func(c *CPU) byte

// Emulator implementation for each opcode
type opcodeImpl struct {
	sym     opsym
	name    string
	fn      instfunc
	illegal bool
}

var impl = []opcodeImpl{
	{symADC, "ADC", (*CPU).adc, false},
	{symAND, "AND", (*CPU).and, false},
	{symASL, "ASL", (*CPU).asl, false},
	{symBCC, "BCC", (*CPU).bcc, false},
	{symBCS, "BCS", (*CPU).bcs, false},
	{symBEQ, "BEQ", (*CPU).beq, false},
	{symBIT, "BIT", (*CPU).bit, false},
	{symBMI, "BMI", (*CPU).bmi, false},
	{symBNE, "BNE", (*CPU).bne, false},
	{symBPL, "BPL", (*CPU).bpl, false},
	{symBRK, "BRK", (*CPU).brk, false},
	{symBVC, "BVC", (*CPU).bvc, false},
	{symBVS, "BVS", (*CPU).bvs, false},
	{symCLC, "CLC", (*CPU).clc, false},
	{symCLD, "CLD", (*CPU).cld, false},
	{symCLI, "CLI", (*CPU).cli, false},
	{symCLV, "CLV", (*CPU).clv, false},
	{symCMP, "CMP", (*CPU).cmp, false},
	{symCPX, "CPX", (*CPU).cpx, false},
	{symCPY, "CPY", (*CPU).cpy, false},
	{symDEC, "DEC", (*CPU).dec, false},
	{symDEX, "DEX", (*CPU).dex, false},
	{symDEY, "DEY", (*CPU).dey, false},
	{symEOR, "EOR", (*CPU).eor, false},
	{symINC, "INC", (*CPU).inc, false},
	{symINX, "INX", (*CPU).inx, false},
	{symINY, "INY", (*CPU).iny, false},
	{symJMP, "JMP", (*CPU).jmp, false},
	{symJSR, "JSR", (*CPU).jsr, false},
	{symLDA, "LDA", (*CPU).lda, false},
	{symLDX, "LDX", (*CPU).ldx, false},
	{symLDY, "LDY", (*CPU).ldy, false},
	{symLSR, "LSR", (*CPU).lsr, false},
	{symNOP, "NOP", (*CPU).nop, false},
	{symORA, "ORA", (*CPU).ora, false},
	{symPHA, "PHA", (*CPU).pha, false},
	{symPHP, "PHP", (*CPU).php, false},
	{symPLA, "PLA", (*CPU).pla, false},
	{symPLP, "PLP", (*CPU).plp, false},
	{symROL, "ROL", (*CPU).rol, false},
	{symROR, "ROR", (*CPU).ror, false},
	{symRTI, "RTI", (*CPU).rti, false},
	{symRTS, "RTS", (*CPU).rts, false},
	{symSBC, "SBC", (*CPU).sbc, false},
	{symSEC, "SEC", (*CPU).sec, false},
	{symSED, "SED", (*CPU).sed, false},
	{symSEI, "SEI", (*CPU).sei, false},
	{symSTA, "STA", (*CPU).sta, false},
	{symSTX, "STX", (*CPU).stx, false},
	{symSTY, "STY", (*CPU).sty, false},
	{symTAX, "TAX", (*CPU).tax, false},
	{symTAY, "TAY", (*CPU).tay, false},
	{symTSX, "TSX", (*CPU).tsx, false},
	{symTXA, "TXA", (*CPU).txa, false},
	{symTXS, "TXS", (*CPU).txs, false},
	{symTYA, "TYA", (*CPU).tya, false},
	{symALR, "ALR", (*CPU).alr, true},
	{symANC, "ANC", (*CPU).anc, true},
	{symARR, "ARR", (*CPU).arr, true},
	{symAXS, "AXS", (*CPU).axs, true},
	{symDCP, "DCP", (*CPU).dcp, true},
	{symISC, "ISC", (*CPU).isc, true},
	{symKIL, "KIL", (*CPU).halt, true},
	{symLAS, "LAS", (*CPU).las, true},
	{symLAX, "LAX", (*CPU).lax, true},
	{symLXA, "LXA", (*CPU).lxa, true},
	{symRLA, "RLA", (*CPU).rla, true},
	{symRRA, "RRA", (*CPU).rra, true},
	{symSAX, "SAX", (*CPU).sax, true},
	{symSHA, "SHA", (*CPU).sha, true},
	{symSHX, "SHX", (*CPU).shx, true},
	{symSHY, "SHY", (*CPU).shy, true},
	{symSLO, "SLO", (*CPU).slo, true},
	{symSRE, "SRE", (*CPU).sre, true},
	{symTAS, "TAS", (*CPU).tas, true},
	{symXAA, "XAA", (*CPU).xaa, true},
}

// Mode describes a memory addressing mode.
type Mode byte

// All possible memory addressing modes
const (
	IMM Mode = iota // Immediate
	IMP             // Implied (the accumulator is the operand)
	REL             // Relative
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IND             // (Indirect)
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
)

var modeName = []string{
	"IMM", "IMP", "REL", "ZPG", "ZPX", "ZPY",
	"ABS", "ABX", "ABY", "IND", "IDX", "IDY",
}

func (m Mode) String() string {
	if int(m) < len(modeName) {
		return modeName[m]
	}
	return "???"
}

// OperandSize returns the number of instruction bytes following the
// opcode consumed by the addressing mode.
func (m Mode) OperandSize() byte {
	switch m {
	case IMP:
		return 0
	case ABS, ABX, ABY, IND:
		return 2
	default:
		return 1
	}
}

// Opcode data for an (opcode, mode) pair
type opcodeData struct {
	sym    opsym // internal opcode key value
	mode   Mode  // addressing mode
	opcode byte  // opcode hex value
	cycles byte  // base number of CPU cycles to execute command
}

// One entry per opcode, in opcode order.
var data = [256]opcodeData{
	// $00-$0F
	{symBRK, IMM, 0x00, 7},
	{symORA, IDX, 0x01, 6},
	{symKIL, IMP, 0x02, 1},
	{symSLO, IDX, 0x03, 8},
	{symNOP, ZPG, 0x04, 3},
	{symORA, ZPG, 0x05, 3},
	{symASL, ZPG, 0x06, 5},
	{symSLO, ZPG, 0x07, 5},
	{symPHP, IMP, 0x08, 3},
	{symORA, IMM, 0x09, 2},
	{symASL, IMP, 0x0a, 2},
	{symANC, IMM, 0x0b, 2},
	{symNOP, ABS, 0x0c, 4},
	{symORA, ABS, 0x0d, 4},
	{symASL, ABS, 0x0e, 6},
	{symSLO, ABS, 0x0f, 6},

	// $10-$1F
	{symBPL, REL, 0x10, 2},
	{symORA, IDY, 0x11, 5},
	{symKIL, IMP, 0x12, 1},
	{symSLO, IDY, 0x13, 8},
	{symNOP, ZPX, 0x14, 4},
	{symORA, ZPX, 0x15, 4},
	{symASL, ZPX, 0x16, 6},
	{symSLO, ZPX, 0x17, 6},
	{symCLC, IMP, 0x18, 2},
	{symORA, ABY, 0x19, 4},
	{symNOP, IMP, 0x1a, 2},
	{symSLO, ABY, 0x1b, 7},
	{symNOP, ABX, 0x1c, 4},
	{symORA, ABX, 0x1d, 4},
	{symASL, ABX, 0x1e, 7},
	{symSLO, ABX, 0x1f, 7},

	// $20-$2F
	{symJSR, ABS, 0x20, 6},
	{symAND, IDX, 0x21, 6},
	{symKIL, IMP, 0x22, 1},
	{symRLA, IDX, 0x23, 8},
	{symBIT, ZPG, 0x24, 3},
	{symAND, ZPG, 0x25, 3},
	{symROL, ZPG, 0x26, 5},
	{symRLA, ZPG, 0x27, 5},
	{symPLP, IMP, 0x28, 4},
	{symAND, IMM, 0x29, 2},
	{symROL, IMP, 0x2a, 2},
	{symANC, IMM, 0x2b, 2},
	{symBIT, ABS, 0x2c, 4},
	{symAND, ABS, 0x2d, 4},
	{symROL, ABS, 0x2e, 6},
	{symRLA, ABS, 0x2f, 6},

	// $30-$3F
	{symBMI, REL, 0x30, 2},
	{symAND, IDY, 0x31, 5},
	{symKIL, IMP, 0x32, 1},
	{symRLA, IDY, 0x33, 8},
	{symNOP, ZPX, 0x34, 4},
	{symAND, ZPX, 0x35, 4},
	{symROL, ZPX, 0x36, 6},
	{symRLA, ZPX, 0x37, 6},
	{symSEC, IMP, 0x38, 2},
	{symAND, ABY, 0x39, 4},
	{symNOP, IMP, 0x3a, 2},
	{symRLA, ABY, 0x3b, 7},
	{symNOP, ABX, 0x3c, 4},
	{symAND, ABX, 0x3d, 4},
	{symROL, ABX, 0x3e, 7},
	{symRLA, ABX, 0x3f, 7},

	// $40-$4F
	{symRTI, IMP, 0x40, 6},
	{symEOR, IDX, 0x41, 6},
	{symKIL, IMP, 0x42, 1},
	{symSRE, IDX, 0x43, 8},
	{symNOP, ZPG, 0x44, 3},
	{symEOR, ZPG, 0x45, 3},
	{symLSR, ZPG, 0x46, 5},
	{symSRE, ZPG, 0x47, 5},
	{symPHA, IMP, 0x48, 3},
	{symEOR, IMM, 0x49, 2},
	{symLSR, IMP, 0x4a, 2},
	{symALR, IMM, 0x4b, 2},
	{symJMP, ABS, 0x4c, 3},
	{symEOR, ABS, 0x4d, 4},
	{symLSR, ABS, 0x4e, 6},
	{symSRE, ABS, 0x4f, 6},

	// $50-$5F
	{symBVC, REL, 0x50, 2},
	{symEOR, IDY, 0x51, 5},
	{symKIL, IMP, 0x52, 1},
	{symSRE, IDY, 0x53, 8},
	{symNOP, ZPX, 0x54, 4},
	{symEOR, ZPX, 0x55, 4},
	{symLSR, ZPX, 0x56, 6},
	{symSRE, ZPX, 0x57, 6},
	{symCLI, IMP, 0x58, 2},
	{symEOR, ABY, 0x59, 4},
	{symNOP, IMP, 0x5a, 2},
	{symSRE, ABY, 0x5b, 7},
	{symNOP, ABX, 0x5c, 4},
	{symEOR, ABX, 0x5d, 4},
	{symLSR, ABX, 0x5e, 7},
	{symSRE, ABX, 0x5f, 7},

	// $60-$6F
	{symRTS, IMP, 0x60, 6},
	{symADC, IDX, 0x61, 6},
	{symKIL, IMP, 0x62, 1},
	{symRRA, IDX, 0x63, 8},
	{symNOP, ZPG, 0x64, 3},
	{symADC, ZPG, 0x65, 3},
	{symROR, ZPG, 0x66, 5},
	{symRRA, ZPG, 0x67, 5},
	{symPLA, IMP, 0x68, 4},
	{symADC, IMM, 0x69, 2},
	{symROR, IMP, 0x6a, 2},
	{symARR, IMM, 0x6b, 2},
	{symJMP, IND, 0x6c, 5},
	{symADC, ABS, 0x6d, 4},
	{symROR, ABS, 0x6e, 6},
	{symRRA, ABS, 0x6f, 6},

	// $70-$7F
	{symBVS, REL, 0x70, 2},
	{symADC, IDY, 0x71, 5},
	{symKIL, IMP, 0x72, 1},
	{symRRA, IDY, 0x73, 8},
	{symNOP, ZPX, 0x74, 4},
	{symADC, ZPX, 0x75, 4},
	{symROR, ZPX, 0x76, 6},
	{symRRA, ZPX, 0x77, 6},
	{symSEI, IMP, 0x78, 2},
	{symADC, ABY, 0x79, 4},
	{symNOP, IMP, 0x7a, 2},
	{symRRA, ABY, 0x7b, 7},
	{symNOP, ABX, 0x7c, 4},
	{symADC, ABX, 0x7d, 4},
	{symROR, ABX, 0x7e, 7},
	{symRRA, ABX, 0x7f, 7},

	// $80-$8F
	{symNOP, IMM, 0x80, 2},
	{symSTA, IDX, 0x81, 6},
	{symNOP, IMM, 0x82, 2},
	{symSAX, IDX, 0x83, 6},
	{symSTY, ZPG, 0x84, 3},
	{symSTA, ZPG, 0x85, 3},
	{symSTX, ZPG, 0x86, 3},
	{symSAX, ZPG, 0x87, 3},
	{symDEY, IMP, 0x88, 2},
	{symNOP, IMM, 0x89, 2},
	{symTXA, IMP, 0x8a, 2},
	{symXAA, IMM, 0x8b, 2},
	{symSTY, ABS, 0x8c, 4},
	{symSTA, ABS, 0x8d, 4},
	{symSTX, ABS, 0x8e, 4},
	{symSAX, ABS, 0x8f, 4},

	// $90-$9F
	{symBCC, REL, 0x90, 2},
	{symSTA, IDY, 0x91, 6},
	{symKIL, IMP, 0x92, 1},
	{symSHA, IDY, 0x93, 6},
	{symSTY, ZPX, 0x94, 4},
	{symSTA, ZPX, 0x95, 4},
	{symSTX, ZPY, 0x96, 4},
	{symSAX, ZPY, 0x97, 4},
	{symTYA, IMP, 0x98, 2},
	{symSTA, ABY, 0x99, 5},
	{symTXS, IMP, 0x9a, 2},
	{symTAS, ABY, 0x9b, 5},
	{symSHY, ABX, 0x9c, 5},
	{symSTA, ABX, 0x9d, 5},
	{symSHX, ABY, 0x9e, 5},
	{symSHA, ABY, 0x9f, 5},

	// $A0-$AF
	{symLDY, IMM, 0xa0, 2},
	{symLDA, IDX, 0xa1, 6},
	{symLDX, IMM, 0xa2, 2},
	{symLAX, IDX, 0xa3, 6},
	{symLDY, ZPG, 0xa4, 3},
	{symLDA, ZPG, 0xa5, 3},
	{symLDX, ZPG, 0xa6, 3},
	{symLAX, ZPG, 0xa7, 3},
	{symTAY, IMP, 0xa8, 2},
	{symLDA, IMM, 0xa9, 2},
	{symTAX, IMP, 0xaa, 2},
	{symLXA, IMM, 0xab, 2},
	{symLDY, ABS, 0xac, 4},
	{symLDA, ABS, 0xad, 4},
	{symLDX, ABS, 0xae, 4},
	{symLAX, ABS, 0xaf, 4},

	// $B0-$BF
	{symBCS, REL, 0xb0, 2},
	{symLDA, IDY, 0xb1, 5},
	{symKIL, IMP, 0xb2, 1},
	{symLAX, IDY, 0xb3, 5},
	{symLDY, ZPX, 0xb4, 4},
	{symLDA, ZPX, 0xb5, 4},
	{symLDX, ZPY, 0xb6, 4},
	{symLAX, ZPY, 0xb7, 4},
	{symCLV, IMP, 0xb8, 2},
	{symLDA, ABY, 0xb9, 4},
	{symTSX, IMP, 0xba, 2},
	{symLAS, ABY, 0xbb, 4},
	{symLDY, ABX, 0xbc, 4},
	{symLDA, ABX, 0xbd, 4},
	{symLDX, ABY, 0xbe, 4},
	{symLAX, ABY, 0xbf, 4},

	// $C0-$CF
	{symCPY, IMM, 0xc0, 2},
	{symCMP, IDX, 0xc1, 6},
	{symNOP, IMM, 0xc2, 2},
	{symDCP, IDX, 0xc3, 8},
	{symCPY, ZPG, 0xc4, 3},
	{symCMP, ZPG, 0xc5, 3},
	{symDEC, ZPG, 0xc6, 5},
	{symDCP, ZPG, 0xc7, 5},
	{symINY, IMP, 0xc8, 2},
	{symCMP, IMM, 0xc9, 2},
	{symDEX, IMP, 0xca, 2},
	{symAXS, IMM, 0xcb, 2},
	{symCPY, ABS, 0xcc, 4},
	{symCMP, ABS, 0xcd, 4},
	{symDEC, ABS, 0xce, 6},
	{symDCP, ABS, 0xcf, 6},

	// $D0-$DF
	{symBNE, REL, 0xd0, 2},
	{symCMP, IDY, 0xd1, 5},
	{symKIL, IMP, 0xd2, 1},
	{symDCP, IDY, 0xd3, 8},
	{symNOP, ZPX, 0xd4, 4},
	{symCMP, ZPX, 0xd5, 4},
	{symDEC, ZPX, 0xd6, 6},
	{symDCP, ZPX, 0xd7, 6},
	{symCLD, IMP, 0xd8, 2},
	{symCMP, ABY, 0xd9, 4},
	{symNOP, IMP, 0xda, 2},
	{symDCP, ABY, 0xdb, 7},
	{symNOP, ABX, 0xdc, 4},
	{symCMP, ABX, 0xdd, 4},
	{symDEC, ABX, 0xde, 7},
	{symDCP, ABX, 0xdf, 7},

	// $E0-$EF
	{symCPX, IMM, 0xe0, 2},
	{symSBC, IDX, 0xe1, 6},
	{symNOP, IMM, 0xe2, 2},
	{symISC, IDX, 0xe3, 8},
	{symCPX, ZPG, 0xe4, 3},
	{symSBC, ZPG, 0xe5, 3},
	{symINC, ZPG, 0xe6, 5},
	{symISC, ZPG, 0xe7, 5},
	{symINX, IMP, 0xe8, 2},
	{symSBC, IMM, 0xe9, 2},
	{symNOP, IMP, 0xea, 2},
	{symSBC, IMM, 0xeb, 2},
	{symCPX, ABS, 0xec, 4},
	{symSBC, ABS, 0xed, 4},
	{symINC, ABS, 0xee, 6},
	{symISC, ABS, 0xef, 6},

	// $F0-$FF
	{symBEQ, REL, 0xf0, 2},
	{symSBC, IDY, 0xf1, 5},
	{symKIL, IMP, 0xf2, 1},
	{symISC, IDY, 0xf3, 8},
	{symNOP, ZPX, 0xf4, 4},
	{symSBC, ZPX, 0xf5, 4},
	{symINC, ZPX, 0xf6, 6},
	{symISC, ZPX, 0xf7, 6},
	{symSED, IMP, 0xf8, 2},
	{symSBC, ABY, 0xf9, 4},
	{symNOP, IMP, 0xfa, 2},
	{symISC, ABY, 0xfb, 7},
	{symNOP, ABX, 0xfc, 4},
	{symSBC, ABX, 0xfd, 4},
	{symINC, ABX, 0xfe, 7},
	{symISC, ABX, 0xff, 7},
}

// An Instruction describes a CPU instruction, including its name,
// its addressing mode, its opcode value, its operand size, and its base
// CPU cycle cost.
type Instruction struct {
	Name    string   // all-caps name of the instruction
	Mode    Mode     // addressing mode
	Opcode  byte     // hexadecimal opcode value
	Length  byte     // combined size of opcode and operand, in bytes
	Cycles  byte     // base number of CPU cycles to execute the instruction
	Illegal bool     // true for undocumented opcodes
	fn      instfunc // emulator implementation of the function
}

// An InstructionSet defines the set of all possible instructions that
// can run on the emulated CPU.
type InstructionSet struct {
	instructions [256]Instruction          // all instructions by opcode
	variants     map[string][]*Instruction // variants of each instruction
}

// Lookup retrieves a CPU instruction corresponding to the requested opcode.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return &s.instructions[opcode]
}

// GetInstructions returns all CPU instructions whose name matches the
// provided string.
func (s *InstructionSet) GetInstructions(name string) []*Instruction {
	return s.variants[strings.ToUpper(name)]
}

// Create the instruction set. Panics if any opcode is left without an
// implementation.
func newInstructionSet() *InstructionSet {
	set := &InstructionSet{}

	// Create a map from symbol to implementation for fast lookups.
	symToImpl := make(map[opsym]*opcodeImpl, len(impl))
	for i := range impl {
		symToImpl[impl[i].sym] = &impl[i]
	}

	// Create a map from instruction name to the slice of all instruction
	// variants matching that name.
	set.variants = make(map[string][]*Instruction)

	for i, d := range data {
		if int(d.opcode) != i {
			panic("instruction table out of order")
		}

		impl, ok := symToImpl[d.sym]
		if !ok || impl.fn == nil || d.cycles == 0 {
			panic("missing instruction")
		}

		inst := &set.instructions[d.opcode]
		inst.Name = impl.name
		inst.Mode = d.mode
		inst.Opcode = d.opcode
		inst.Length = 1 + d.mode.OperandSize()
		inst.Cycles = d.cycles
		inst.Illegal = impl.illegal
		inst.fn = impl.fn

		set.variants[inst.Name] = append(set.variants[inst.Name], inst)
	}

	return set
}

var instructionSet = newInstructionSet()

// GetInstructionSet returns the NMOS 6502 instruction set, including the
// undocumented opcodes.
func GetInstructionSet() *InstructionSet {
	return instructionSet
}
