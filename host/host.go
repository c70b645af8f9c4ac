// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive monitor around an emulated 6502
// CPU with 64K of memory.
//
// Within the host it is possible to load raw machine code into memory,
// step through it an instruction or a clock cycle at a time, set address
// and data breakpoints, signal interrupts, dump and modify memory and
// registers, disassemble code, evaluate expressions, and run conformance
// test vectors against the CPU.
package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/cycle6502/cpu"
	"github.com/beevik/cycle6502/disasm"
	"github.com/beevik/cycle6502/vectors"
)

// ErrQuit is returned by RunCommands when the quit command was entered.
var ErrQuit = errors.New("quit")

// Maximum depth of nested script execution.
const maxScriptDepth = 8

type displayFlags uint8

const (
	displayRegisters displayFlags = 1 << iota
	displayCycles

	displayAll = displayRegisters | displayCycles
)

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateBreakpoint
	stateStepOverBreakpoint
	stateHalted
)

// A Host represents a fully emulated 6502 system with 64K of memory and a
// built-in debugger.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	depth       int
	mem         *cpu.FlatMemory
	cpu         *cpu.CPU
	debugger    *cpu.Debugger
	handler     *debugHandler
	lastCmd     *selection
	state       state
	exprParser  *exprParser
	settings    *settings
}

// New creates a new 6502 host environment.
func New() *Host {
	h := &Host{
		output:     bufio.NewWriter(os.Stdout),
		state:      stateProcessingCommands,
		exprParser: newExprParser(),
		settings:   newSettings(),
	}

	h.mem = cpu.NewFlatMemory()
	h.cpu = cpu.NewCPU(h.mem)

	h.handler = newDebugHandler(h)
	h.debugger = cpu.NewDebugger(h.handler)
	h.cpu.AttachDebugger(h.debugger)

	h.onSettingsUpdate()
	return h
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the next command to be entered. It returns ErrQuit if
// the quit command was processed, or nil once the reader is exhausted.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) error {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	defer h.flush()

	if interactive {
		h.println()
	}
	h.displayPC()

	return h.processCommands()
}

func (h *Host) processCommands() error {
	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			if err != io.EOF {
				return err
			}
			return nil
		}

		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}

		var c selection
		if line != "" {
			c, err = lookup(line)
			switch {
			case errors.Is(err, errIncomplete):
				h.println("Command is incomplete.")
				continue
			case errors.Is(err, cmd.ErrNotFound):
				h.println("Command not found.")
				continue
			case errors.Is(err, cmd.ErrAmbiguous):
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		command, ok := c.Command.Data.(*command)
		if !ok {
			h.println("Command is incomplete.")
			continue
		}
		h.lastCmd = &c

		if err := command.handler(h, c); err != nil {
			return err
		}
	}
}

// Break interrupts a running CPU.
func (h *Host) Break() {
	h.println()

	if h.state == stateRunning {
		h.displayPC()
	}
	if h.state == stateProcessingCommands {
		h.prompt()
	}
	h.state = stateProcessingCommands
}

// Load reads the raw contents of a binary file into memory at 'addr' and
// points the program counter at it. It returns the number of bytes loaded.
func (h *Host) Load(filename string, addr uint16) (int, error) {
	code, err := os.ReadFile(filename)
	if err != nil {
		return 0, err
	}
	if len(code) == 0 {
		return 0, fmt.Errorf("%s: file is empty", filepath.Base(filename))
	}
	if len(code) > 0x10000-int(addr) {
		return 0, fmt.Errorf("%s: %d bytes do not fit at $%04X", filepath.Base(filename), len(code), addr)
	}

	h.mem.StoreBytes(addr, code)
	h.cpu.SetPC(addr)
	h.settings.NextDisasmAddr = addr
	return len(code), nil
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.print("* ")
		h.flush()
	}
}

func (h *Host) displayPC() {
	if h.interactive {
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
	}
}

func (h *Host) cmdBreakpointList(c selection) error {
	h.println("Addr  Enabled")
	h.println("----- -------")
	for _, b := range h.debugger.GetBreakpoints() {
		h.printf("$%04X %v\n", b.Address, !b.Disabled)
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(c selection) error {
	addr, ok := h.argAddress(c, 0)
	if !ok {
		return nil
	}

	h.debugger.AddBreakpoint(addr)
	h.printf("Breakpoint added at $%04X.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointRemove(c selection) error {
	addr, ok := h.argAddress(c, 0)
	if !ok {
		return nil
	}

	if h.debugger.GetBreakpoint(addr) == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}

	h.debugger.RemoveBreakpoint(addr)
	h.printf("Breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointEnable(c selection) error {
	return h.enableBreakpoint(c, true)
}

func (h *Host) cmdBreakpointDisable(c selection) error {
	return h.enableBreakpoint(c, false)
}

func (h *Host) enableBreakpoint(c selection, enable bool) error {
	addr, ok := h.argAddress(c, 0)
	if !ok {
		return nil
	}

	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = !enable
	h.printf("Breakpoint at $%04X %s.\n", addr, enabledString(enable))
	return nil
}

func (h *Host) cmdDataBreakpointList(c selection) error {
	h.println("Addr  Enabled  Value")
	h.println("----- -------  -----")
	for _, b := range h.debugger.GetDataBreakpoints() {
		if b.Conditional {
			h.printf("$%04X %-5v    $%02X\n", b.Address, !b.Disabled, b.Value)
		} else {
			h.printf("$%04X %-5v    <none>\n", b.Address, !b.Disabled)
		}
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(c selection) error {
	addr, ok := h.argAddress(c, 0)
	if !ok {
		return nil
	}

	if len(c.Args) > 1 {
		value, err := h.parseExpr(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.debugger.AddConditionalDataBreakpoint(addr, byte(value))
		h.printf("Conditional data breakpoint added at $%04X for value $%02X.\n", addr, byte(value))
	} else {
		h.debugger.AddDataBreakpoint(addr)
		h.printf("Data breakpoint added at $%04X.\n", addr)
	}
	return nil
}

func (h *Host) cmdDataBreakpointRemove(c selection) error {
	addr, ok := h.argAddress(c, 0)
	if !ok {
		return nil
	}

	if h.debugger.GetDataBreakpoint(addr) == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}

	h.debugger.RemoveDataBreakpoint(addr)
	h.printf("Data breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointEnable(c selection) error {
	return h.enableDataBreakpoint(c, true)
}

func (h *Host) cmdDataBreakpointDisable(c selection) error {
	return h.enableDataBreakpoint(c, false)
}

func (h *Host) enableDataBreakpoint(c selection, enable bool) error {
	addr, ok := h.argAddress(c, 0)
	if !ok {
		return nil
	}

	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = !enable
	h.printf("Data breakpoint at $%04X %s.\n", addr, enabledString(enable))
	return nil
}

func (h *Host) cmdDisassemble(c selection) error {
	addr := h.settings.NextDisasmAddr
	if len(c.Args) > 0 {
		a, ok := h.argStartAddress(c.Args[0], h.settings.NextDisasmAddr)
		if !ok {
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(c.Args) > 1 {
		n, err := h.parseExpr(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(n)
	}

	for i := 0; i < lines; i++ {
		d, next := h.disassemble(addr, 0)
		h.println(d)
		addr = next
	}

	h.settings.NextDisasmAddr = addr
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", lines)}
	return nil
}

func (h *Host) cmdEvaluate(c selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	v, err := h.exprParser.Parse(strings.Join(c.Args, " "), h)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("$%04X (%d)\n", uint16(v), v)
	return nil
}

func (h *Host) cmdExecute(c selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	if h.depth >= maxScriptDepth {
		h.println("Scripts are nested too deeply.")
		return nil
	}

	file, err := os.Open(c.Args[0])
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(c.Args[0]), err)
		return nil
	}
	defer file.Close()

	input, interactive, lastCmd := h.input, h.interactive, h.lastCmd
	h.input, h.interactive, h.lastCmd = bufio.NewScanner(file), false, nil
	h.depth++

	err = h.processCommands()

	h.depth--
	h.input, h.interactive, h.lastCmd = input, interactive, lastCmd
	if err != nil && !errors.Is(err, ErrQuit) {
		h.printf("Failed to read '%s': %v\n", filepath.Base(c.Args[0]), err)
		return nil
	}
	return err
}

func (h *Host) cmdHelp(c selection) error {
	if len(c.Args) == 0 {
		h.displayCommands()
		return nil
	}

	topic := strings.Join(c.Args, " ")
	if s, err := lookup(topic); err == nil {
		if command, ok := s.Command.Data.(*command); ok {
			h.displayHelp(command)
			return nil
		}
	}

	for _, t := range subtrees {
		if strings.HasPrefix(t.name, strings.ToLower(topic)) {
			h.printf("%s:\n", t.brief)
			for _, command := range commands {
				if strings.HasPrefix(command.path, t.name+" ") {
					h.printf("    %-22s  %s\n", command.path, command.brief)
				}
			}
			return nil
		}
	}

	h.println("Command not found.")
	return nil
}

func (h *Host) cmdInstructions(c selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	insts := h.cpu.InstSet.GetInstructions(c.Args[0])
	if len(insts) == 0 {
		h.printf("Instruction '%s' not found.\n", c.Args[0])
		return nil
	}

	h.println("Opcode Mode Bytes Cycles")
	for _, inst := range insts {
		line := fmt.Sprintf("$%02X    %-4s %-5d %d", inst.Opcode, inst.Mode, inst.Length, inst.Cycles)
		if inst.Illegal {
			line += "  (undocumented)"
		}
		h.println(line)
	}
	return nil
}

func (h *Host) cmdInterruptIRQ(c selection) error {
	if h.cpu.Reg.IsSet(cpu.InterruptDisable) {
		h.println("IRQ ignored; interrupts are disabled.")
		return nil
	}

	h.finishInstruction()
	h.cpu.IRQ()
	h.printf("IRQ signaled. PC=$%04X.\n", h.cpu.Reg.PC)
	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdInterruptNMI(c selection) error {
	h.finishInstruction()
	h.cpu.NMI()
	h.printf("NMI signaled. PC=$%04X.\n", h.cpu.Reg.PC)
	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdLoad(c selection) error {
	if len(c.Args) < 2 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[1])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	n, err := h.Load(c.Args[0], addr)
	if err != nil {
		h.printf("Failed to load: %v\n", err)
		return nil
	}

	h.printf("Loaded '%s' to $%04X..$%04X.\n", filepath.Base(c.Args[0]), addr, int(addr)+n-1)
	return nil
}

func (h *Host) cmdMemoryDump(c selection) error {
	addr := h.settings.NextMemDumpAddr
	if len(c.Args) > 0 {
		a, ok := h.argStartAddress(c.Args[0], h.settings.NextMemDumpAddr)
		if !ok {
			return nil
		}
		addr = a
	}

	count := h.settings.MemDumpBytes
	if len(c.Args) > 1 {
		n, err := h.exprParser.Parse(c.Args[1], h)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		count = int(n)
	}

	h.dumpMemory(addr, count)

	h.settings.NextMemDumpAddr = addr + uint16(count)
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", count)}
	return nil
}

func (h *Host) cmdMemorySet(c selection) error {
	if len(c.Args) < 2 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := make([]byte, 0, len(c.Args)-1)
	for _, arg := range c.Args[1:] {
		v, err := h.parseExpr(arg)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		b = append(b, byte(v))
	}

	h.mem.StoreBytes(addr, b)
	h.printf("Stored %d byte(s) at $%04X.\n", len(b), addr)
	return nil
}

func (h *Host) cmdQuit(c selection) error {
	return ErrQuit
}

func (h *Host) cmdRegister(c selection) error {
	switch len(c.Args) {
	case 0:
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
		return nil
	case 1:
		h.displayUsage(c.Command)
		return nil
	}

	key := strings.ToLower(c.Args[0])
	v, err := h.exprParser.Parse(strings.Join(c.Args[1:], " "), h)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	r := &h.cpu.Reg
	switch key {
	case "a":
		r.A = byte(v)
	case "x":
		r.X = byte(v)
	case "y":
		r.Y = byte(v)
	case "sp":
		r.SP = byte(v)
	case "ps", "p":
		key = "ps"
		r.PS = cpu.Status(v) | cpu.Unused
	case "pc", ".":
		key = "pc"
		r.PC = uint16(v)
		h.settings.NextDisasmAddr = r.PC
	default:
		flag, ok := flagNames[key]
		if !ok {
			h.printf("Register '%s' not found.\n", c.Args[0])
			return nil
		}
		r.Set(flag, v != 0)
		h.printf("Flag %s set to %v.\n", strings.ToUpper(key), v != 0)
		return nil
	}

	switch key {
	case "pc":
		h.printf("Register PC set to $%04X.\n", r.PC)
	case "ps":
		h.printf("Register PS set to $%02X.\n", byte(r.PS))
	default:
		h.printf("Register %s set to $%02X.\n", strings.ToUpper(key), byte(v))
	}
	return nil
}

var flagNames = map[string]cpu.Status{
	"n": cpu.Negative,
	"v": cpu.Overflow,
	"d": cpu.Decimal,
	"i": cpu.InterruptDisable,
	"z": cpu.Zero,
	"c": cpu.Carry,
}

func (h *Host) cmdReset(c selection) error {
	h.cpu.Reset()
	if len(c.Args) > 0 {
		if !strings.HasPrefix("vector", strings.ToLower(c.Args[0])) {
			h.displayUsage(c.Command)
			return nil
		}
		h.cpu.ResetVector()
	}

	h.printf("CPU reset. PC=$%04X SP=$%02X.\n", h.cpu.Reg.PC, h.cpu.Reg.SP)
	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdRun(c selection) error {
	if len(c.Args) > 0 {
		pc, err := h.parseExpr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.cpu.SetPC(pc)
	}

	h.printf("Running from $%04X. Press ctrl-C to break.\n", h.cpu.Reg.PC)

	h.state = stateRunning
	for h.state == stateRunning {
		h.step()
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdSet(c selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c.Command)

	default:
		name, err := h.settings.Set(c.Args[0], strings.Join(c.Args[1:], " "), func(s string) (int64, error) {
			return h.exprParser.Parse(s, h)
		})
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.printf("Setting %s updated.\n", name)
		h.onSettingsUpdate()
	}
	return nil
}

func (h *Host) cmdStepIn(c selection) error {
	return h.stepCount(c, (*Host).step)
}

func (h *Host) cmdStepOver(c selection) error {
	return h.stepCount(c, (*Host).stepOver)
}

// Run the step function 'fn' the number of times requested by the
// command's first argument.
func (h *Host) stepCount(c selection, fn func(h *Host)) error {
	count := 1
	if len(c.Args) > 0 {
		n, err := h.exprParser.Parse(c.Args[0], h)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		count = int(n)
	}

	h.state = stateRunning
	for i := count - 1; i >= 0 && h.state == stateRunning; i-- {
		fn(h)
		switch {
		case i == h.settings.MaxStepLines:
			if h.interactive {
				h.println("...")
			}
		case i < h.settings.MaxStepLines:
			h.displayPC()
		}
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdTick(c selection) error {
	count := 1
	if len(c.Args) > 0 {
		n, err := h.exprParser.Parse(c.Args[0], h)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		count = int(n)
	}

	h.state = stateRunning
	for i := 0; i < count && h.state == stateRunning; i++ {
		h.tick()
	}
	h.state = stateProcessingCommands

	if h.cpu.Complete() {
		h.printf("Cycles=%d\n", h.cpu.Cycles)
	} else {
		h.printf("Cycles=%d (instruction at $%04X in progress)\n", h.cpu.Cycles, h.cpu.LastPC)
	}
	h.displayPC()

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdVectors(c selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	var files []string
	for _, arg := range c.Args {
		f, err := vectors.Glob(arg)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		files = append(files, f...)
	}

	summaries, err := vectors.RunFiles(context.Background(), files, h.settings.VectorJobs)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	var cases, passed int
	for _, s := range summaries {
		h.printf("%s: %d/%d passed", filepath.Base(s.Path), s.Passed, s.Cases)
		if s.CycleDiffs > 0 {
			h.printf(", %d cycle count differences", s.CycleDiffs)
		}
		h.println()
		if s.Failed() > 0 {
			r := s.Failures[0]
			for _, m := range r.Mismatches {
				h.printf("    %s: %s\n", r.Name, m)
			}
		}
		cases += s.Cases
		passed += s.Passed
	}
	if len(summaries) > 1 {
		h.printf("Total: %d/%d passed\n", passed, cases)
	}
	return nil
}

// Return the address in the command's argument 'i', or display the
// command's usage if it is missing.
func (h *Host) argAddress(c selection, i int) (uint16, bool) {
	if len(c.Args) <= i {
		h.displayUsage(c.Command)
		return 0, false
	}

	addr, err := h.parseExpr(c.Args[i])
	if err != nil {
		h.printf("%v\n", err)
		return 0, false
	}
	return addr, true
}

// Parse a starting address argument, where "$" continues from 'next' and
// "." is the program counter.
func (h *Host) argStartAddress(arg string, next uint16) (uint16, bool) {
	switch arg {
	case "$":
		return next, true
	case ".":
		return h.cpu.Reg.PC, true
	}

	addr, err := h.parseExpr(arg)
	if err != nil {
		h.printf("%v\n", err)
		return 0, false
	}
	return addr, true
}

// Advance the CPU by one clock cycle.
func (h *Host) tick() {
	if h.cpu.Complete() {
		h.trace()
	}
	h.cpu.Tick()
	if h.cpu.Complete() {
		h.checkHalted()
	}
}

// Run the CPU until the current instruction completes.
func (h *Host) step() {
	if h.cpu.Complete() {
		h.trace()
	}
	h.cpu.Step()
	h.checkHalted()
}

// Spend the remaining cycles of an instruction left in flight by tick, so
// that an interrupt sequence does not discard them.
func (h *Host) finishInstruction() {
	if !h.cpu.Complete() {
		h.cpu.Step()
	}
}

func (h *Host) stepOver() {
	c := h.cpu

	// JSR instructions need to be handled specially.
	inst := c.GetInstruction(c.Reg.PC)
	if inst.Name != "JSR" || !c.Complete() {
		h.step()
		return
	}

	// Place a step-over breakpoint on the instruction following the JSR,
	// reusing an existing breakpoint there if there is one.
	next := c.Reg.PC + uint16(inst.Length)
	tmpBreakpointCreated := false
	b := h.debugger.GetBreakpoint(next)
	if b == nil {
		b = h.debugger.AddBreakpoint(next)
		tmpBreakpointCreated = true
	}
	b.StepOver = true

	for h.state == stateRunning {
		h.step()
	}
	b.StepOver = false

	if h.state == stateStepOverBreakpoint {
		h.state = stateRunning
	}
	if tmpBreakpointCreated {
		h.debugger.RemoveBreakpoint(next)
	}
}

// Stop running if the instruction that just completed jammed the CPU.
func (h *Host) checkHalted() {
	c := h.cpu
	if c.Reg.PC == c.LastPC && c.GetInstruction(c.LastPC).Name == "KIL" {
		h.printf("CPU halted at $%04X.\n", c.LastPC)
		h.state = stateHalted
	}
}

// Display the instruction about to execute when tracing is enabled.
func (h *Host) trace() {
	if h.settings.TraceInstructions {
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
	}
}

func (h *Host) onSettingsUpdate() {
	h.exprParser.hexMode = h.settings.HexMode
	if h.settings.StopOnBrk {
		h.cpu.AttachBrkHandler(h.handler)
	} else {
		h.cpu.AttachBrkHandler(nil)
	}
}

func (h *Host) parseExpr(expr string) (uint16, error) {
	v, err := h.exprParser.Parse(expr, h)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func (h *Host) disassemble(addr uint16, flags displayFlags) (str string, next uint16) {
	var line string
	line, next = disasm.Disassemble(h.mem, addr)

	b := make([]byte, next-addr)
	h.mem.LoadBytes(addr, b)

	str = fmt.Sprintf("%04X-   %-8s    %-12s", addr, codeString(b), line)

	if (flags & displayRegisters) != 0 {
		str += " " + disasm.GetRegisterString(&h.cpu.Reg)
	}
	if (flags & displayCycles) != 0 {
		str += fmt.Sprintf(" C=%d", h.cpu.Cycles)
	}
	return strings.TrimRight(str, " "), next
}

// Dump 'count' bytes of memory starting at 'addr', eight bytes per line
// with lines aligned to 8-byte boundaries.
func (h *Host) dumpMemory(addr uint16, count int) {
	if count <= 0 {
		return
	}

	first := uint32(addr)
	last := min(first+uint32(count)-1, 0xffff)

	buf := make([]byte, 39)
	for row := first &^ 7; row <= last; row += 8 {
		for i := range buf {
			buf[i] = ' '
		}
		addrToBuf(uint16(row), buf[0:4])
		buf[4] = '-'
		for i := uint32(0); i < 8; i++ {
			a := row + i
			if a < first || a > last {
				continue
			}
			v := h.mem.LoadByte(uint16(a))
			byteToBuf(v, buf[6+3*i:8+3*i])
			buf[31+i] = toPrintableChar(v)
		}
		h.println(strings.TrimRight(string(buf), " "))
	}
}

func (h *Host) displayUsage(c *cmd.Command) {
	if command, ok := c.Data.(*command); ok && command.usage != "" {
		h.printf("Usage: %s\n", command.usage)
	} else {
		h.println("<no help text>")
	}
}

func (h *Host) displayHelp(c *command) {
	if c.usage != "" {
		h.printf("Usage: %s\n\n", c.usage)
	}
	switch {
	case c.description != "":
		h.printf("Description:\n%s\n\n", indentWrap(3, 76, c.description))
	case c.brief != "":
		h.printf("Description:\n%s.\n\n", indentWrap(3, 76, c.brief))
	}
}

func (h *Host) displayCommands() {
	h.println("Commands:")
	for _, c := range commands {
		if c.brief != "" && !strings.Contains(c.path, " ") {
			h.printf("    %-15s  %s\n", c.path, c.brief)
		}
	}
	for _, t := range subtrees {
		h.printf("    %-15s  %s\n", t.name, t.brief)
	}
}

func (h *Host) resolveIdentifier(s string) (int64, error) {
	r := &h.cpu.Reg
	switch strings.ToLower(s) {
	case "a":
		return int64(r.A), nil
	case "x":
		return int64(r.X), nil
	case "y":
		return int64(r.Y), nil
	case "sp":
		return int64(r.SP), nil
	case "ps", "p":
		return int64(r.PS), nil
	case ".", "pc":
		return int64(r.PC), nil
	}
	return 0, fmt.Errorf("identifier '%s' not found", s)
}

func (h *Host) onBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	if b.StepOver {
		h.state = stateStepOverBreakpoint
		return
	}

	h.state = stateBreakpoint
	h.printf("Breakpoint hit at $%04X.\n", b.Address)
	h.displayPC()
}

func (h *Host) onDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	h.printf("Data breakpoint hit on address $%04X.\n", b.Address)
	h.state = stateBreakpoint

	if h.interactive {
		d, _ := h.disassemble(c.LastPC, displayAll)
		h.println(d)
	}
}

// Called in place of BRK when StopOnBrk is set. The BRK and its padding
// byte are skipped so that execution can continue afterward.
func (h *Host) onBrk(c *cpu.CPU) {
	h.printf("BRK at $%04X.\n", c.Reg.PC)
	c.Reg.PC += 2
	h.state = stateBreakpoint
}

func enabledString(enable bool) string {
	if enable {
		return "enabled"
	}
	return "disabled"
}
