// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements a cycle-accounting NMOS 6502 CPU, including the
// undocumented opcodes.
package cpu

// BrkHandler is an interface implemented by types that wish to be notified
// when a BRK instruction is about to be executed.
type BrkHandler interface {
	OnBrk(cpu *CPU)
}

// CPU represents a single 6502 CPU. It contains a pointer to the
// memory associated with the CPU.
type CPU struct {
	Reg     Registers       // CPU registers
	Mem     Memory          // assigned memory
	Cycles  uint64          // total number of ticks executed
	LastPC  uint16          // address of the most recently fetched opcode
	InstSet *InstructionSet // Instruction set used by the CPU

	// Latches holding the state of the instruction in flight.
	fetched byte         // operand value
	addrAbs uint16       // resolved effective address
	addrRel uint16       // sign-extended branch offset
	opcode  byte         // opcode being executed
	cycles  byte         // ticks remaining before the next fetch
	inst    *Instruction // instruction being executed

	debugger   *Debugger
	brkHandler BrkHandler
	storeByte  func(cpu *CPU, addr uint16, v byte)
}

// Interrupt vectors
const (
	vectorReset = 0xfffc
	vectorIRQ   = 0xfffe
)

// Cycle count charged for an interrupt sequence.
const interruptCycles = 7

// NewCPU creates an emulated 6502 CPU bound to the specified memory. The
// registers hold their power-on values and the PC is zero.
func NewCPU(m Memory) *CPU {
	cpu := &CPU{
		Mem:       m,
		InstSet:   GetInstructionSet(),
		storeByte: (*CPU).storeByteNormal,
	}

	cpu.Reg.Init()
	cpu.inst = cpu.InstSet.Lookup(0)
	return cpu
}

// SetPC updates the CPU program counter to 'addr'.
func (cpu *CPU) SetPC(addr uint16) {
	cpu.Reg.PC = addr
}

// GetInstruction returns the instruction opcode at the requested address.
func (cpu *CPU) GetInstruction(addr uint16) *Instruction {
	opcode := cpu.Mem.LoadByte(addr)
	return cpu.InstSet.Lookup(opcode)
}

// NextAddr returns the address of the next instruction following the
// instruction at addr.
func (cpu *CPU) NextAddr(addr uint16) uint16 {
	opcode := cpu.Mem.LoadByte(addr)
	inst := cpu.InstSet.Lookup(opcode)
	return addr + uint16(inst.Length)
}

// Tick advances the CPU by a single clock cycle. When no instruction is in
// flight, the next instruction is fetched and executed in full, and the
// remaining ticks of its cycle budget are spent idling.
func (cpu *CPU) Tick() {
	if cpu.cycles == 0 {
		cpu.execute()
	}
	if cpu.cycles > 0 {
		cpu.cycles--
	}
	cpu.Cycles++
}

// Complete returns true when the current instruction's cycle budget has
// been spent and the next tick will fetch a new opcode.
func (cpu *CPU) Complete() bool {
	return cpu.cycles == 0
}

// Step ticks the cpu until the current instruction completes, and returns
// the number of ticks consumed.
func (cpu *CPU) Step() int {
	n := 0
	for {
		cpu.Tick()
		n++
		if cpu.Complete() {
			return n
		}
	}
}

// Reset the CPU. Only the stack pointer and the interrupt-disable flag
// change; the program counter is left where it is. Use ResetVector to
// load the PC from $FFFC.
func (cpu *CPU) Reset() {
	cpu.Reg.SP -= 3
	cpu.Reg.Set(InterruptDisable, true)
}

// ResetVector loads the program counter from the reset vector at $FFFC.
func (cpu *CPU) ResetVector() {
	cpu.Reg.PC = cpu.loadAddress(vectorReset)
}

// IRQ signals a maskable interrupt request. It is ignored while the
// interrupt-disable flag is set, and otherwise runs the same sequence as
// NMI.
func (cpu *CPU) IRQ() {
	if !cpu.Reg.IsSet(InterruptDisable) {
		cpu.NMI()
	}
}

// NMI signals a non-maskable interrupt. The PC and status are pushed and
// the PC is loaded from $FFFE. Any cycles left over from an instruction
// still in flight are replaced by the interrupt's own budget, so callers
// that care should Step to instruction completion first.
func (cpu *CPU) NMI() {
	cpu.pushAddress(cpu.Reg.PC)

	cpu.Reg.Set(Break, false)
	cpu.Reg.Set(Unused, true)
	cpu.Reg.Set(InterruptDisable, true)
	cpu.push(byte(cpu.Reg.PS))

	cpu.Reg.PC = cpu.loadAddress(vectorIRQ)
	cpu.cycles = interruptCycles
}

// AttachBrkHandler attaches a handler that is called whenever the BRK
// instruction is about to be executed. The handler runs in place of the
// instruction and consumes one tick.
func (cpu *CPU) AttachBrkHandler(handler BrkHandler) {
	cpu.brkHandler = handler
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU executes an instruction or stores a byte
// to memory.
func (cpu *CPU) AttachDebugger(debugger *Debugger) {
	cpu.debugger = debugger
	cpu.storeByte = (*CPU).storeByteDebugger
}

// DetachDebugger detaches the currently debugger from the CPU.
func (cpu *CPU) DetachDebugger() {
	cpu.debugger = nil
	cpu.storeByte = (*CPU).storeByteNormal
}

// Fetch, decode and execute the instruction at PC.
func (cpu *CPU) execute() {
	cpu.opcode = cpu.Mem.LoadByte(cpu.Reg.PC)

	if cpu.opcode == 0x00 && cpu.brkHandler != nil {
		cpu.brkHandler.OnBrk(cpu)
		cpu.cycles = 1
		return
	}

	cpu.LastPC = cpu.Reg.PC
	cpu.Reg.PC++
	cpu.Reg.Set(Unused, true)

	cpu.inst = cpu.InstSet.Lookup(cpu.opcode)
	cpu.cycles = cpu.inst.Cycles

	e1 := cpu.resolve(cpu.inst.Mode)
	e2 := cpu.inst.fn(cpu)
	cpu.cycles += e1 & e2

	cpu.Reg.Set(Unused, true)

	if cpu.debugger != nil {
		cpu.debugger.onUpdatePC(cpu, cpu.Reg.PC)
	}
}

// Read the byte at PC and advance PC past it.
func (cpu *CPU) nextByte() byte {
	v := cpu.Mem.LoadByte(cpu.Reg.PC)
	cpu.Reg.PC++
	return v
}

// Read a little-endian address from the two bytes at PC and advance PC
// past them.
func (cpu *CPU) nextAddress() uint16 {
	lo := cpu.nextByte()
	hi := cpu.nextByte()
	return uint16(lo) | uint16(hi)<<8
}

// Load a little-endian 16-bit address stored at 'addr'.
func (cpu *CPU) loadAddress(addr uint16) uint16 {
	lo := cpu.Mem.LoadByte(addr)
	hi := cpu.Mem.LoadByte(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// Load a little-endian 16-bit address stored in the zero page, wrapping
// the high byte's address within the page.
func (cpu *CPU) loadZeroPageAddress(zpaddr byte) uint16 {
	lo := cpu.Mem.LoadByte(uint16(zpaddr))
	hi := cpu.Mem.LoadByte(uint16(zpaddr + 1))
	return uint16(lo) | uint16(hi)<<8
}

// Resolve the operand location of the current instruction using the
// requested addressing mode. Returns 1 if resolving the address crossed a
// page boundary in a mode that can charge an extra cycle for it.
func (cpu *CPU) resolve(mode Mode) byte {
	switch mode {
	case IMP:
		cpu.fetched = cpu.Reg.A
		return 0
	case IMM:
		cpu.addrAbs = cpu.Reg.PC
		cpu.Reg.PC++
		return 0
	case ZPG:
		cpu.addrAbs = uint16(cpu.nextByte())
		return 0
	case ZPX:
		cpu.addrAbs = offsetZeroPage(uint16(cpu.nextByte()), cpu.Reg.X)
		return 0
	case ZPY:
		cpu.addrAbs = offsetZeroPage(uint16(cpu.nextByte()), cpu.Reg.Y)
		return 0
	case REL:
		cpu.addrRel = uint16(cpu.nextByte())
		if cpu.addrRel&0x80 != 0 {
			cpu.addrRel |= 0xff00
		}
		return 0
	case ABS:
		cpu.addrAbs = cpu.nextAddress()
		return 0
	case ABX:
		var crossed bool
		cpu.addrAbs, crossed = offsetAddress(cpu.nextAddress(), cpu.Reg.X)
		return boolToByte(crossed)
	case ABY:
		var crossed bool
		cpu.addrAbs, crossed = offsetAddress(cpu.nextAddress(), cpu.Reg.Y)
		return boolToByte(crossed)
	case IND:
		ptr := cpu.nextAddress()
		lo := cpu.Mem.LoadByte(ptr)
		var hi byte
		if ptr&0x00ff == 0x00ff {
			// The high byte is fetched without carrying into the
			// pointer's page.
			hi = cpu.Mem.LoadByte(ptr & 0xff00)
		} else {
			hi = cpu.Mem.LoadByte(ptr + 1)
		}
		cpu.addrAbs = uint16(lo) | uint16(hi)<<8
		return 0
	case IDX:
		zpaddr := cpu.nextByte() + cpu.Reg.X
		cpu.addrAbs = cpu.loadZeroPageAddress(zpaddr)
		return 0
	case IDY:
		base := cpu.loadZeroPageAddress(cpu.nextByte())
		var crossed bool
		cpu.addrAbs, crossed = offsetAddress(base, cpu.Reg.Y)
		return boolToByte(crossed)
	default:
		panic("invalid addressing mode")
	}
}

// Return the operand of the current instruction. Implied-mode
// instructions operate on the latched accumulator.
func (cpu *CPU) fetch() byte {
	if cpu.inst.Mode != IMP {
		cpu.fetched = cpu.Mem.LoadByte(cpu.addrAbs)
	}
	return cpu.fetched
}

// Store the result of a read-modify-write instruction back to the
// accumulator or to memory, depending on the addressing mode.
func (cpu *CPU) writeBack(v byte) {
	if cpu.inst.Mode == IMP {
		cpu.Reg.A = v
	} else {
		cpu.storeByte(cpu, cpu.addrAbs, v)
	}
}

// Take a branch to PC + the relative offset if 'cond' is true. A taken
// branch costs one extra cycle, and one more if it lands on a different
// page.
func (cpu *CPU) branch(cond bool) {
	if !cond {
		return
	}
	cpu.cycles++
	cpu.addrAbs = cpu.Reg.PC + cpu.addrRel
	if (cpu.addrAbs & 0xff00) != (cpu.Reg.PC & 0xff00) {
		cpu.cycles++
	}
	cpu.Reg.PC = cpu.addrAbs
}

// Store the byte value 'v' at the address 'addr'.
func (cpu *CPU) storeByteNormal(addr uint16, v byte) {
	cpu.Mem.StoreByte(addr, v)
}

// Store the byte value 'v' at the address 'addr', notifying the debugger
// first.
func (cpu *CPU) storeByteDebugger(addr uint16, v byte) {
	cpu.debugger.onDataStore(cpu, addr, v)
	cpu.Mem.StoreByte(addr, v)
}

// Push a value 'v' onto the stack.
func (cpu *CPU) push(v byte) {
	cpu.storeByte(cpu, stackAddress(cpu.Reg.SP), v)
	cpu.Reg.SP--
}

// Push the address 'addr' onto the stack, high byte first.
func (cpu *CPU) pushAddress(addr uint16) {
	cpu.push(byte(addr >> 8))
	cpu.push(byte(addr))
}

// Pop a value from the stack and return it.
func (cpu *CPU) pop() byte {
	cpu.Reg.SP++
	return cpu.Mem.LoadByte(stackAddress(cpu.Reg.SP))
}

// Pop a 16-bit address off the stack.
func (cpu *CPU) popAddress() uint16 {
	lo := cpu.pop()
	hi := cpu.pop()
	return uint16(lo) | (uint16(hi) << 8)
}

// Update the Zero and Negative flags based on the value of 'v'.
func (cpu *CPU) updateNZ(v byte) {
	cpu.Reg.Set(Zero, v == 0)
	cpu.Reg.Set(Negative, (v&0x80) != 0)
}
