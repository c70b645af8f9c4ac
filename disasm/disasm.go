// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a disassembler for the NMOS 6502 instruction
// set, including the undocumented opcodes.
package disasm

import (
	"fmt"

	"github.com/beevik/cycle6502/cpu"
)

// Disassembler formatting for addressing modes
var modeFormat = []string{
	"#$%s",    // IMM
	"%s",      // IMP
	"$%s",     // REL
	"$%s",     // ZPG
	"$%s,X",   // ZPX
	"$%s,Y",   // ZPY
	"$%s",     // ABS
	"$%s,X",   // ABX
	"$%s,Y",   // ABY
	"($%s)",   // IND
	"($%s,X)", // IDX
	"($%s),Y", // IDY
}

// Implied-mode instructions that operate on the accumulator.
var accumulatorForm = map[string]bool{
	"ASL": true,
	"LSR": true,
	"ROL": true,
	"ROR": true,
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the little-endian byte
// slice.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code in memory 'm' at address 'addr'. Return a
// 'line' string representing the disassembled instruction and a 'next'
// address that starts the following line of machine code.
func Disassemble(m cpu.Memory, addr uint16) (line string, next uint16) {
	opcode := m.LoadByte(addr)
	inst := cpu.GetInstructionSet().Lookup(opcode)

	operand := make([]byte, inst.Length-1)
	for i := range operand {
		operand[i] = m.LoadByte(addr + 1 + uint16(i))
	}

	var arg string
	switch {
	case inst.Mode == cpu.REL:
		// Convert relative offset to absolute address.
		braddr := addr + uint16(inst.Length) + uint16(int8(operand[0]))
		arg = hexString([]byte{byte(braddr), byte(braddr >> 8)})
	case inst.Mode == cpu.IMP && accumulatorForm[inst.Name]:
		arg = "A"
	default:
		arg = hexString(operand)
	}

	line = fmt.Sprintf("%s "+modeFormat[inst.Mode], inst.Name, arg)
	if inst.Mode == cpu.IMP && arg == "" {
		line = inst.Name
	}
	next = addr + uint16(inst.Length)
	return line, next
}

// GetRegisterString returns a string describing the contents of the 6502
// registers.
func GetRegisterString(r *cpu.Registers) string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X PS=[%s] SP=%02X PC=%04X",
		r.A, r.X, r.Y, r.PS, r.SP, r.PC)
}
