package host

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runScript(t *testing.T, h *Host, script string) string {
	t.Helper()
	var out bytes.Buffer
	if err := h.RunCommands(strings.NewReader(script), &out, false); err != nil {
		t.Fatalf("RunCommands failed: %v", err)
	}
	return out.String()
}

func expectOutput(t *testing.T, out string, exp ...string) {
	t.Helper()
	for _, e := range exp {
		if !strings.Contains(out, e) {
			t.Errorf("Output missing %q. got:\n%s", e, out)
		}
	}
}

type mapResolver map[string]int64

func (m mapResolver) resolveIdentifier(s string) (int64, error) {
	if v, ok := m[s]; ok {
		return v, nil
	}
	return 0, errors.New("not found")
}

func TestExpressions(t *testing.T) {
	r := mapResolver{"a": 0x10, "pc": 0x0200, "label_1": 7}
	tests := []struct {
		expr string
		exp  int64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"8-2-1", 5},
		{"16/4/2", 2},
		{"$ff", 255},
		{"0x1F", 31},
		{"%1010", 10},
		{"0b11", 3},
		{"0d99", 99},
		{"10 % 3", 1},
		{"'A'", 65},
		{"-1", -1},
		{"~0 & $ff", 255},
		{"1 << 4 | 1", 17},
		{"$f0 >> 4 ^ 1", 14},
		{"pc + a", 0x0210},
		{"label_1*2", 14},
		{"- -3", 3},
	}

	p := newExprParser()
	for _, test := range tests {
		v, err := p.Parse(test.expr, r)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.expr, err)
			continue
		}
		if v != test.exp {
			t.Errorf("%s: incorrect value. exp: %d, got: %d", test.expr, test.exp, v)
		}
	}
}

func TestExpressionErrors(t *testing.T) {
	r := mapResolver{}
	tests := []struct {
		expr string
		err  error
	}{
		{"", errExprParse},
		{"1 +", errExprParse},
		{"(1", errExprParse},
		{"1)", errExprParse},
		{"$", errExprParse},
		{"1 < 2", errExprParse},
		{"'A", errExprParse},
		{"1/0", errDivideByZero},
		{"5 % (2-2)", errDivideByZero},
	}

	p := newExprParser()
	for _, test := range tests {
		_, err := p.Parse(test.expr, r)
		if !errors.Is(err, test.err) {
			t.Errorf("%q: incorrect error. exp: %v, got: %v", test.expr, test.err, err)
		}
	}

	if _, err := p.Parse("nosuch", r); err == nil {
		t.Error("unknown identifier resolved")
	}
}

func TestExpressionHexMode(t *testing.T) {
	r := mapResolver{"pc": 0x0200}
	p := newExprParser()
	p.hexMode = true

	tests := []struct {
		expr string
		exp  int64
	}{
		{"ff", 0xff},
		{"10", 0x10},
		{"a", 0x0a},
		{"pc+1", 0x0201},
		{"0d10", 10},
	}
	for _, test := range tests {
		v, err := p.Parse(test.expr, r)
		if err != nil || v != test.exp {
			t.Errorf("%s: incorrect value. exp: $%X, got: $%X (%v)", test.expr, test.exp, v, err)
		}
	}
}

func TestMemory(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $0200 $a9 $ff $00
memory dump $0200 3
memory set $fff8 $41 $42
memory dump $fff8 2
`)
	expectOutput(t, out,
		"Stored 3 byte(s) at $0200.",
		"0200- A9 FF 00",
		"FFF8- 41 42",
		"AB",
	)
}

func TestStepIn(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $0200 $a9 $ff
register pc $0200
step in
register
`)
	expectOutput(t, out,
		"Register PC set to $0200.",
		"A=FF X=00 Y=00 PS=[N-UB-I--] SP=FD PC=0202 C=2",
	)
}

func TestTick(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $0200 $ad $00 $03
register pc $0200
tick
tick 3
`)
	expectOutput(t, out,
		"Cycles=1 (instruction at $0200 in progress)",
		"Cycles=4\n",
	)
}

func TestStepOver(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $0500 $20 $00 $06 $e8
memory set $0600 $c8 $c8 $60
register pc $0500
step over
register
breakpoint list
`)
	expectOutput(t, out,
		"A=00 X=00 Y=02 PS=[--UB-I--] SP=FD PC=0503 C=16",
	)
	if strings.Contains(out, "$0503") {
		t.Errorf("Temporary breakpoint left behind:\n%s", out)
	}
}

func TestRunBreakpoint(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $0200 $e8 $e8 $e8 $00
breakpoint add $0202
run $0200
register
breakpoint disable $0202
breakpoint list
breakpoint remove $0400
`)
	expectOutput(t, out,
		"Breakpoint added at $0202.",
		"Running from $0200. Press ctrl-C to break.",
		"Breakpoint hit at $0202.",
		"X=02",
		"PC=0202",
		"Breakpoint at $0202 disabled.",
		"$0202 false",
		"No breakpoint was set on $0400.",
	)
}

func TestDataBreakpoint(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $0200 $a9 $42 $8d $00 $10 $e8
databreakpoint add $1000 $42
databreakpoint list
run $0200
register
memory dump $1000 1
`)
	expectOutput(t, out,
		"Conditional data breakpoint added at $1000 for value $42.",
		"$1000 true     $42",
		"Data breakpoint hit on address $1000.",
		"A=42 X=00",
		"PC=0205",
		"1000- 42",
	)
}

func TestHalt(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $0300 $a2 $05 $02
run $0300
register
`)
	expectOutput(t, out,
		"CPU halted at $0302.",
		"X=05",
		"PC=0302",
	)
}

func TestStopOnBrk(t *testing.T) {
	h := New()
	out := runScript(t, h, `
set stoponbrk true
memory set $0400 $e8 $00 $00 $e8
run $0400
register
`)
	expectOutput(t, out,
		"Setting StopOnBrk updated.",
		"BRK at $0401.",
		"X=01",
		"PC=0403",
	)
}

func TestRegisters(t *testing.T) {
	h := New()
	out := runScript(t, h, `
register c 1
register a $80
register sp $ff
register q 1
register
`)
	expectOutput(t, out,
		"Flag C set to true.",
		"Register A set to $80.",
		"Register SP set to $FF.",
		"Register 'q' not found.",
		"A=80 X=00 Y=00 PS=[--UB-I-C] SP=FF",
	)
}

func TestInterrupts(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $fffe $00 $09
register pc $1234
irq
register i 0
irq
register
memory dump $01fb 3
nmi
`)
	expectOutput(t, out,
		"IRQ ignored; interrupts are disabled.",
		"Flag I set to false.",
		"IRQ signaled. PC=$0900.",
		"SP=FA PC=0900",
		"24 34 12",
		"NMI signaled. PC=$0900.",
	)
}

func TestInterruptAfterTick(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $fffe $00 $09
memory set $0200 $ad $00 $03
register pc $0200
tick
nmi
tick 7
memory dump $01fc 2
`)
	expectOutput(t, out,
		"Cycles=1 (instruction at $0200 in progress)",
		"NMI signaled. PC=$0900.",
		"Cycles=11\n",
		"01FC- 03 02",
	)
}

func TestInstructions(t *testing.T) {
	h := New()
	out := runScript(t, h, `
instructions lda
instructions lax
instructions foo
instructions
`)
	expectOutput(t, out,
		"Opcode Mode Bytes Cycles",
		"$A9    IMM  2     2",
		"$BD    ABX  3     4",
		"$AF    ABS  3     4  (undocumented)",
		"Instruction 'foo' not found.",
		"Usage: instructions <name>",
	)
}

func TestIncompleteCommand(t *testing.T) {
	h := New()
	out := runScript(t, h, "memory\nregister a $33\n")
	expectOutput(t, out,
		"Command is incomplete.",
		"Register A set to $33.",
	)
}

func TestReset(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $fffc $00 $c0
reset
reset vector
`)
	expectOutput(t, out,
		"CPU reset. PC=$0000 SP=$FA.",
		"CPU reset. PC=$C000 SP=$F7.",
	)
}

func TestDisassemble(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $0200 $a9 $ff $ea
disassemble $0200 2
set trace 1
register pc $0200
step in
`)
	expectOutput(t, out,
		"0200-   A9 FF       LDA #$FF",
		"0202-   EA          NOP",
		"Setting TraceInstructions updated.",
		"LDA #$FF     A=00 X=00 Y=00 PS=[--UB-I--] SP=FD PC=0200 C=0",
	)
}

func TestSettings(t *testing.T) {
	h := New()
	out := runScript(t, h, `
set
set hex 1
evaluate ff
set bogus 1
set hexmode maybe
`)
	expectOutput(t, out,
		"Variables:",
		"MemDumpBytes",
		"Setting HexMode updated.",
		"$00FF (255)",
		"setting 'bogus' not found",
		"invalid bool value 'maybe'",
	)
}

func TestEvaluate(t *testing.T) {
	h := New()
	out := runScript(t, h, `
register x 3
evaluate x * 2 + 1
evaluate 1/0
evaluate -1
`)
	expectOutput(t, out,
		"$0007 (7)",
		"division by zero",
		"$FFFF (-1)",
	)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.bin")
	if err := os.WriteFile(path, []byte{0xa9, 0x01}, 0600); err != nil {
		t.Fatal(err)
	}

	h := New()
	out := runScript(t, h, "load "+path+" $0300\nregister\n")
	expectOutput(t, out,
		"Loaded 'prog.bin' to $0300..$0301.",
		"PC=0300",
	)

	if _, err := h.Load(path, 0xffff); err == nil {
		t.Error("Load past $FFFF succeeded")
	}
	if _, err := h.Load(filepath.Join(dir, "missing.bin"), 0); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Error incorrect. exp: %v, got: %v", os.ErrNotExist, err)
	}
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.txt")
	script := "# setup\nregister a $11\nquit\n"
	if err := os.WriteFile(path, []byte(script), 0600); err != nil {
		t.Fatal(err)
	}

	h := New()
	var out bytes.Buffer
	err := h.RunCommands(strings.NewReader("execute "+path+"\nregister a $22\n"), &out, false)
	if !errors.Is(err, ErrQuit) {
		t.Errorf("Error incorrect. exp: %v, got: %v", ErrQuit, err)
	}
	expectOutput(t, out.String(), "Register A set to $11.")
	if strings.Contains(out.String(), "$22") {
		t.Errorf("Commands ran after quit:\n%s", out.String())
	}
}

func TestVectors(t *testing.T) {
	h := New()
	out := runScript(t, h, "vectors "+filepath.Join("..", "vectors", "testdata", "sample.json")+"\n")
	expectOutput(t, out, "sample.json: 5/5 passed")
}

func TestHelp(t *testing.T) {
	h := New()
	out := runScript(t, h, `
help
help load
help breakpoint
frobnicate
`)
	expectOutput(t, out,
		"Commands:",
		"vectors",
		"Usage: load <filename> <address>",
		"Breakpoint commands:",
		"breakpoint add",
		"Command not found.",
	)
}
