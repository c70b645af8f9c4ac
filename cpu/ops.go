// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Fixed approximations of the unstable undocumented opcodes. Real chips
// vary with temperature and revision; these values are pinned so that
// results are deterministic.
const (
	aneMagic byte = 0xee // ANE (XAA): A = (A | magic) & X & operand
	lxaMagic byte = 0xee // LXA: A = X = (A | magic) & operand
)

// Return the value used by the SHA/SHX/SHY/TAS family to mask the stored
// byte: the high byte of the effective address, plus one.
func (cpu *CPU) highPlusOne() byte {
	return byte(cpu.addrAbs>>8) + 1
}

// Add 'v' and the carry flag to the accumulator.
func (cpu *CPU) addWithCarry(v byte) {
	acc := uint16(cpu.Reg.A)
	add := uint16(v)
	result := acc + add + uint16(cpu.Reg.Get(Carry))

	cpu.Reg.Set(Carry, result > 0xff)
	cpu.Reg.Set(Overflow, (^(acc^add)&(acc^result)&0x80) != 0)

	cpu.Reg.A = byte(result)
	cpu.updateNZ(cpu.Reg.A)
}

// Compare register value 'r' against the operand.
func (cpu *CPU) compare(r byte) {
	v := cpu.fetch()
	cpu.Reg.Set(Carry, r >= v)
	cpu.Reg.Set(Zero, r == v)
	cpu.Reg.Set(Negative, ((r-v)&0x80) != 0)
}

// Add with carry
func (cpu *CPU) adc() byte {
	cpu.addWithCarry(cpu.fetch())
	return 1
}

// Boolean AND
func (cpu *CPU) and() byte {
	cpu.Reg.A &= cpu.fetch()
	cpu.updateNZ(cpu.Reg.A)
	return 1
}

// Arithmetic Shift Left
func (cpu *CPU) asl() byte {
	v := cpu.fetch()
	cpu.Reg.Set(Carry, (v&0x80) != 0)
	v <<= 1
	cpu.updateNZ(v)
	cpu.writeBack(v)
	return 0
}

// Branch if Carry Clear
func (cpu *CPU) bcc() byte {
	cpu.branch(!cpu.Reg.IsSet(Carry))
	return 0
}

// Branch if Carry Set
func (cpu *CPU) bcs() byte {
	cpu.branch(cpu.Reg.IsSet(Carry))
	return 0
}

// Branch if EQual (to zero)
func (cpu *CPU) beq() byte {
	cpu.branch(cpu.Reg.IsSet(Zero))
	return 0
}

// Bit Test
func (cpu *CPU) bit() byte {
	v := cpu.fetch()
	cpu.Reg.Set(Zero, (v&cpu.Reg.A) == 0)
	cpu.Reg.Set(Negative, (v&0x80) != 0)
	cpu.Reg.Set(Overflow, (v&0x40) != 0)
	return 0
}

// Branch if MInus (negative)
func (cpu *CPU) bmi() byte {
	cpu.branch(cpu.Reg.IsSet(Negative))
	return 0
}

// Branch if Not Equal (not zero)
func (cpu *CPU) bne() byte {
	cpu.branch(!cpu.Reg.IsSet(Zero))
	return 0
}

// Branch if PLus (positive)
func (cpu *CPU) bpl() byte {
	cpu.branch(!cpu.Reg.IsSet(Negative))
	return 0
}

// Break. The padding byte after the opcode has already been skipped by
// the immediate addressing mode.
func (cpu *CPU) brk() byte {
	cpu.pushAddress(cpu.Reg.PC)

	cpu.Reg.Set(Break, true)
	cpu.push(byte(cpu.Reg.PS))
	cpu.Reg.Set(Break, false)

	cpu.Reg.PC = cpu.loadAddress(vectorIRQ)
	cpu.Reg.Set(InterruptDisable, true)
	return 0
}

// Branch if oVerflow Clear
func (cpu *CPU) bvc() byte {
	cpu.branch(!cpu.Reg.IsSet(Overflow))
	return 0
}

// Branch if oVerflow Set
func (cpu *CPU) bvs() byte {
	cpu.branch(cpu.Reg.IsSet(Overflow))
	return 0
}

// Clear Carry flag
func (cpu *CPU) clc() byte {
	cpu.Reg.Set(Carry, false)
	return 0
}

// Clear Decimal flag
func (cpu *CPU) cld() byte {
	cpu.Reg.Set(Decimal, false)
	return 0
}

// Clear InterruptDisable flag
func (cpu *CPU) cli() byte {
	cpu.Reg.Set(InterruptDisable, false)
	return 0
}

// Clear oVerflow flag
func (cpu *CPU) clv() byte {
	cpu.Reg.Set(Overflow, false)
	return 0
}

// Compare to accumulator
func (cpu *CPU) cmp() byte {
	cpu.compare(cpu.Reg.A)
	return 0
}

// Compare to X register
func (cpu *CPU) cpx() byte {
	cpu.compare(cpu.Reg.X)
	return 0
}

// Compare to Y register
func (cpu *CPU) cpy() byte {
	cpu.compare(cpu.Reg.Y)
	return 0
}

// Decrement memory value
func (cpu *CPU) dec() byte {
	v := cpu.fetch() - 1
	cpu.storeByte(cpu, cpu.addrAbs, v)
	cpu.updateNZ(v)
	return 0
}

// Decrement X register
func (cpu *CPU) dex() byte {
	cpu.Reg.X--
	cpu.updateNZ(cpu.Reg.X)
	return 0
}

// Decrement Y register
func (cpu *CPU) dey() byte {
	cpu.Reg.Y--
	cpu.updateNZ(cpu.Reg.Y)
	return 0
}

// Boolean XOR
func (cpu *CPU) eor() byte {
	cpu.Reg.A ^= cpu.fetch()
	cpu.updateNZ(cpu.Reg.A)
	return 0
}

// Increment memory value
func (cpu *CPU) inc() byte {
	v := cpu.fetch() + 1
	cpu.storeByte(cpu, cpu.addrAbs, v)
	cpu.updateNZ(v)
	return 0
}

// Increment X register
func (cpu *CPU) inx() byte {
	cpu.Reg.X++
	cpu.updateNZ(cpu.Reg.X)
	return 1
}

// Increment Y register
func (cpu *CPU) iny() byte {
	cpu.Reg.Y++
	cpu.updateNZ(cpu.Reg.Y)
	return 0
}

// Jump to memory address
func (cpu *CPU) jmp() byte {
	cpu.Reg.PC = cpu.addrAbs
	return 0
}

// Jump to subroutine
func (cpu *CPU) jsr() byte {
	cpu.pushAddress(cpu.Reg.PC - 1)
	cpu.Reg.PC = cpu.addrAbs
	return 0
}

// load Accumulator
func (cpu *CPU) lda() byte {
	cpu.Reg.A = cpu.fetch()
	cpu.updateNZ(cpu.Reg.A)
	return 1
}

// load the X register
func (cpu *CPU) ldx() byte {
	cpu.Reg.X = cpu.fetch()
	cpu.updateNZ(cpu.Reg.X)
	return 1
}

// load the Y register
func (cpu *CPU) ldy() byte {
	cpu.Reg.Y = cpu.fetch()
	cpu.updateNZ(cpu.Reg.Y)
	return 1
}

// Logical Shift Right
func (cpu *CPU) lsr() byte {
	v := cpu.fetch()
	cpu.Reg.Set(Carry, (v&1) != 0)
	v >>= 1
	cpu.updateNZ(v)
	cpu.writeBack(v)
	return 0
}

// No-operation
func (cpu *CPU) nop() byte {
	return 0
}

// Boolean OR
func (cpu *CPU) ora() byte {
	cpu.Reg.A |= cpu.fetch()
	cpu.updateNZ(cpu.Reg.A)
	return 0
}

// Push Accumulator
func (cpu *CPU) pha() byte {
	cpu.push(cpu.Reg.A)
	return 0
}

// Push Processor flags. The pushed copy has B and U set; both are then
// cleared in the live register (U is restored when the instruction
// completes).
func (cpu *CPU) php() byte {
	cpu.push(byte(cpu.Reg.PS | Break | Unused))
	cpu.Reg.Set(Break, false)
	cpu.Reg.Set(Unused, false)
	return 0
}

// Pull (pop) Accumulator
func (cpu *CPU) pla() byte {
	cpu.Reg.A = cpu.pop()
	cpu.updateNZ(cpu.Reg.A)
	return 0
}

// Pull (pop) Processor flags
func (cpu *CPU) plp() byte {
	cpu.Reg.PS = Status(cpu.pop())
	cpu.Reg.Set(Unused, true)
	cpu.Reg.Set(Break, false)
	return 0
}

// Rotate Left
func (cpu *CPU) rol() byte {
	v := cpu.fetch()
	r := v<<1 | cpu.Reg.Get(Carry)
	cpu.Reg.Set(Carry, (v&0x80) != 0)
	cpu.updateNZ(r)
	cpu.writeBack(r)
	return 0
}

// Rotate Right
func (cpu *CPU) ror() byte {
	v := cpu.fetch()
	r := v>>1 | cpu.Reg.Get(Carry)<<7
	cpu.Reg.Set(Carry, (v&1) != 0)
	cpu.updateNZ(r)
	cpu.writeBack(r)
	return 0
}

// Return from Interrupt
func (cpu *CPU) rti() byte {
	cpu.Reg.PS = Status(cpu.pop())
	cpu.Reg.Set(Break, false)
	cpu.Reg.Set(Unused, false)
	cpu.Reg.PC = cpu.popAddress()
	return 0
}

// Return from Subroutine
func (cpu *CPU) rts() byte {
	cpu.Reg.PC = cpu.popAddress() + 1
	return 0
}

// Subtract with Carry. Binary only; the decimal flag is ignored.
func (cpu *CPU) sbc() byte {
	cpu.addWithCarry(cpu.fetch() ^ 0xff)
	return 1
}

// Set Carry flag
func (cpu *CPU) sec() byte {
	cpu.Reg.Set(Carry, true)
	return 1
}

// Set Decimal flag
func (cpu *CPU) sed() byte {
	cpu.Reg.Set(Decimal, true)
	return 0
}

// Set InterruptDisable flag
func (cpu *CPU) sei() byte {
	cpu.Reg.Set(InterruptDisable, true)
	return 0
}

// Store Accumulator
func (cpu *CPU) sta() byte {
	cpu.storeByte(cpu, cpu.addrAbs, cpu.Reg.A)
	return 0
}

// Store X register
func (cpu *CPU) stx() byte {
	cpu.storeByte(cpu, cpu.addrAbs, cpu.Reg.X)
	return 0
}

// Store Y register
func (cpu *CPU) sty() byte {
	cpu.storeByte(cpu, cpu.addrAbs, cpu.Reg.Y)
	return 0
}

// Transfer Accumulator to X register
func (cpu *CPU) tax() byte {
	cpu.Reg.X = cpu.Reg.A
	cpu.updateNZ(cpu.Reg.X)
	return 0
}

// Transfer Accumulator to Y register
func (cpu *CPU) tay() byte {
	cpu.Reg.Y = cpu.Reg.A
	cpu.updateNZ(cpu.Reg.Y)
	return 0
}

// Transfer Stack pointer to X register
func (cpu *CPU) tsx() byte {
	cpu.Reg.X = cpu.Reg.SP
	cpu.updateNZ(cpu.Reg.X)
	return 0
}

// Transfer X register to Accumulator
func (cpu *CPU) txa() byte {
	cpu.Reg.A = cpu.Reg.X
	cpu.updateNZ(cpu.Reg.A)
	return 0
}

// Transfer X register to the Stack pointer
func (cpu *CPU) txs() byte {
	cpu.Reg.SP = cpu.Reg.X
	return 0
}

// Transfer Y register to the Accumulator
func (cpu *CPU) tya() byte {
	cpu.Reg.A = cpu.Reg.Y
	cpu.updateNZ(cpu.Reg.A)
	return 0
}

//
// Undocumented opcodes
//

// AND immediate, then shift the accumulator right (ASR)
func (cpu *CPU) alr() byte {
	cpu.and()
	cpu.Reg.Set(Carry, (cpu.Reg.A&1) != 0)
	cpu.Reg.A >>= 1
	cpu.updateNZ(cpu.Reg.A)
	return 1
}

// AND immediate, then copy bit 7 into carry
func (cpu *CPU) anc() byte {
	cpu.and()
	cpu.Reg.Set(Carry, (cpu.Reg.A&0x80) != 0)
	return 1
}

// AND immediate, then rotate the accumulator right. V is bit 6 xor bit 5
// of the result.
func (cpu *CPU) arr() byte {
	cpu.Reg.A &= cpu.fetch()
	t := cpu.Reg.A >> 7
	cpu.Reg.A = cpu.Reg.A>>1 | cpu.Reg.Get(Carry)<<7
	cpu.Reg.Set(Carry, (t&1) != 0)
	cpu.updateNZ(cpu.Reg.A)
	cpu.Reg.Set(Overflow, ((cpu.Reg.A>>6)^(cpu.Reg.A>>5))&1 != 0)
	return 0
}

// X = (A & X) - operand (SBX)
func (cpu *CPU) axs() byte {
	ax := cpu.Reg.A & cpu.Reg.X
	res := ax - cpu.fetch()
	cpu.Reg.Set(Carry, ax >= res)
	cpu.updateNZ(res)
	cpu.Reg.X = res
	return 0
}

// Decrement memory, then compare with the accumulator (DCM)
func (cpu *CPU) dcp() byte {
	cpu.dec()
	cpu.cmp()
	return 0
}

// Jam the processor. The PC is moved back onto the opcode so that it is
// fetched again on every instruction boundary.
func (cpu *CPU) halt() byte {
	cpu.Reg.PC--
	return 0
}

// Increment memory, then subtract it from the accumulator (ISB)
func (cpu *CPU) isc() byte {
	cpu.inc()
	cpu.sbc()
	return 1
}

// A = X = SP = operand & SP
func (cpu *CPU) las() byte {
	res := cpu.fetch() & cpu.Reg.SP
	cpu.Reg.A = res
	cpu.Reg.X = res
	cpu.Reg.SP = res
	cpu.updateNZ(res)
	return 0
}

// Load the accumulator, then transfer it to X
func (cpu *CPU) lax() byte {
	cpu.lda()
	cpu.tax()
	return 1
}

// A = X = (A | magic) & operand
func (cpu *CPU) lxa() byte {
	res := (cpu.Reg.A | lxaMagic) & cpu.fetch()
	cpu.Reg.A = res
	cpu.Reg.X = res
	cpu.updateNZ(res)
	return 0
}

// Rotate memory left, then AND with the accumulator
func (cpu *CPU) rla() byte {
	cpu.rol()
	cpu.and()
	return 1
}

// Rotate memory right, then add it to the accumulator
func (cpu *CPU) rra() byte {
	cpu.ror()
	cpu.adc()
	return 1
}

// Store A & X
func (cpu *CPU) sax() byte {
	cpu.storeByte(cpu, cpu.addrAbs, cpu.Reg.A&cpu.Reg.X)
	return 0
}

// Store A & X & (high byte of address + 1) (AHX)
func (cpu *CPU) sha() byte {
	cpu.storeByte(cpu, cpu.addrAbs, cpu.Reg.A&cpu.Reg.X&cpu.highPlusOne())
	return 0
}

// Store X & (high byte of address + 1)
func (cpu *CPU) shx() byte {
	cpu.storeByte(cpu, cpu.addrAbs, cpu.Reg.X&cpu.highPlusOne())
	return 0
}

// Store Y & (high byte of address + 1)
func (cpu *CPU) shy() byte {
	cpu.storeByte(cpu, cpu.addrAbs, cpu.Reg.Y&cpu.highPlusOne())
	return 0
}

// Shift memory left, then OR with the accumulator (ASO)
func (cpu *CPU) slo() byte {
	cpu.asl()
	cpu.ora()
	return 0
}

// Shift memory right, then XOR with the accumulator (LSE)
func (cpu *CPU) sre() byte {
	cpu.lsr()
	cpu.eor()
	return 0
}

// SP = A & X, then store SP & (high byte of address + 1) (SHS)
func (cpu *CPU) tas() byte {
	cpu.Reg.SP = cpu.Reg.A & cpu.Reg.X
	cpu.storeByte(cpu, cpu.addrAbs, cpu.Reg.SP&cpu.highPlusOne())
	return 0
}

// A = (A | magic) & X & operand (ANE)
func (cpu *CPU) xaa() byte {
	cpu.Reg.A = (cpu.Reg.A | aneMagic) & cpu.Reg.X & cpu.fetch()
	cpu.updateNZ(cpu.Reg.A)
	return 0
}
