package disasm_test

import (
	"testing"

	"github.com/beevik/cycle6502/cpu"
	"github.com/beevik/cycle6502/disasm"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		code []byte
		line string
	}{
		{[]byte{0xa9, 0xff}, "LDA #$FF"},
		{[]byte{0xea}, "NOP"},
		{[]byte{0x0a}, "ASL A"},
		{[]byte{0xad, 0x34, 0x12}, "LDA $1234"},
		{[]byte{0xbd, 0x34, 0x12}, "LDA $1234,X"},
		{[]byte{0xb6, 0x10}, "LDX $10,Y"},
		{[]byte{0x6c, 0xff, 0x30}, "JMP ($30FF)"},
		{[]byte{0xa1, 0x20}, "LDA ($20,X)"},
		{[]byte{0xb1, 0x20}, "LDA ($20),Y"},
		{[]byte{0xf0, 0x04}, "BEQ $1006"},
		{[]byte{0xd0, 0xfe}, "BNE $1000"},
		{[]byte{0xa7, 0x10}, "LAX $10"},
		{[]byte{0x02}, "KIL"},
		{[]byte{0x00, 0x00}, "BRK #$00"},
	}

	mem := cpu.NewFlatMemory()
	for _, test := range tests {
		mem.StoreBytes(0x1000, test.code)
		line, next := disasm.Disassemble(mem, 0x1000)
		if line != test.line {
			t.Errorf("Disassembly incorrect. exp: %q, got: %q", test.line, line)
		}
		if exp := 0x1000 + uint16(len(test.code)); next != exp {
			t.Errorf("%s: next address incorrect. exp: $%04X, got: $%04X", test.line, exp, next)
		}
	}
}

func TestRegisterString(t *testing.T) {
	var r cpu.Registers
	r.Init()
	r.PC = 0x0200
	exp := "A=00 X=00 Y=00 PS=[--UB-I--] SP=FD PC=0200"
	if got := disasm.GetRegisterString(&r); got != exp {
		t.Errorf("Register string incorrect. exp: %q, got: %q", exp, got)
	}
}
