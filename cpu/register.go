// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Status holds the bits of the processor status register.
type Status byte

// Bits assigned to the processor status byte
const (
	Carry            Status = 1 << 0 // C
	Zero             Status = 1 << 1 // Z
	InterruptDisable Status = 1 << 2 // I
	Decimal          Status = 1 << 3 // D
	Break            Status = 1 << 4 // B
	Unused           Status = 1 << 5 // always reads as 1
	Overflow         Status = 1 << 6 // V
	Negative         Status = 1 << 7 // N
)

// Power-on register values.
const (
	initSP = 0xfd
	initPS = Unused | Break | InterruptDisable // $34
)

// Registers contains the state of all 6502 registers.
type Registers struct {
	A  byte   // accumulator
	X  byte   // X indexing register
	Y  byte   // Y indexing register
	SP byte   // stack pointer ($100 + SP = stack memory location)
	PC uint16 // program counter
	PS Status // processor status bits
}

// Init initializes all registers to their power-on state. A, X, Y = 0.
// SP = $FD. PC = 0. PS = $34.
func (r *Registers) Init() {
	r.A = 0
	r.X = 0
	r.Y = 0
	r.SP = initSP
	r.PC = 0
	r.PS = initPS
}

// IsSet returns true if the processor status bit 's' is set.
func (r *Registers) IsSet(s Status) bool {
	return (r.PS & s) != 0
}

// Get returns 1 if the process status bit 's' is set. Otherwise it
// returns 0.
func (r *Registers) Get(s Status) byte {
	if (r.PS & s) == 0 {
		return 0
	}
	return 1
}

// Set sets process status bit 's' to 1 if 'on' is true. Otherwise it sets
// the bit to 0.
func (r *Registers) Set(s Status, on bool) {
	if on {
		r.PS |= s
	} else {
		r.PS &^= s
	}
}

// String returns the status flags as an "NVUBDIZC" string, with cleared
// flags shown as dashes.
func (s Status) String() string {
	const names = "CZIDBUVN"
	var b [8]byte
	for i := 0; i < 8; i++ {
		if s&(1<<i) != 0 {
			b[7-i] = names[i]
		} else {
			b[7-i] = '-'
		}
	}
	return string(b[:])
}

func boolToByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
