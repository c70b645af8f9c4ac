// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// The Memory interface presents an interface to the CPU through which all
// memory accesses occur. Every 16-bit address is valid.
type Memory interface {
	// LoadByte loads a single byte from the address and returns it.
	LoadByte(addr uint16) byte

	// StoreByte stores a byte to the requested address.
	StoreByte(addr uint16, v byte)
}

// FlatMemory represents an entire 16-bit address space as a singular
// 64K buffer.
type FlatMemory struct {
	b [64 * 1024]byte
}

// NewFlatMemory creates a new 16-bit memory space.
func NewFlatMemory() *FlatMemory {
	return &FlatMemory{}
}

// LoadByte loads a single byte from the address and returns it.
func (m *FlatMemory) LoadByte(addr uint16) byte {
	return m.b[addr]
}

// LoadBytes loads multiple bytes from the address and stores them into
// the buffer 'b'. Reads past $FFFF wrap around to $0000.
func (m *FlatMemory) LoadBytes(addr uint16, b []byte) {
	for i := range b {
		b[i] = m.b[addr+uint16(i)]
	}
}

// StoreByte stores a byte at the requested address.
func (m *FlatMemory) StoreByte(addr uint16, v byte) {
	m.b[addr] = v
}

// StoreBytes stores multiple bytes to the requested address. Writes past
// $FFFF wrap around to $0000.
func (m *FlatMemory) StoreBytes(addr uint16, b []byte) {
	for i, v := range b {
		m.b[addr+uint16(i)] = v
	}
}

// Clear zeroes the entire address space.
func (m *FlatMemory) Clear() {
	m.b = [64 * 1024]byte{}
}

// AccessKind identifies the direction of a bus access.
type AccessKind byte

const (
	// Read is a load from memory.
	Read AccessKind = iota

	// Write is a store to memory.
	Write
)

func (k AccessKind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

// An Access is a single recorded bus transaction.
type Access struct {
	Addr  uint16
	Value byte
	Kind  AccessKind
}

// TraceMemory wraps another Memory and records every access made through
// it, in order.
type TraceMemory struct {
	Mem      Memory   // underlying memory
	Accesses []Access // recorded accesses since the last Reset
}

// NewTraceMemory creates a recording wrapper around 'm'.
func NewTraceMemory(m Memory) *TraceMemory {
	return &TraceMemory{Mem: m}
}

// LoadByte loads a byte from the underlying memory and records the read.
func (t *TraceMemory) LoadByte(addr uint16) byte {
	v := t.Mem.LoadByte(addr)
	t.Accesses = append(t.Accesses, Access{addr, v, Read})
	return v
}

// StoreByte stores a byte to the underlying memory and records the write.
func (t *TraceMemory) StoreByte(addr uint16, v byte) {
	t.Mem.StoreByte(addr, v)
	t.Accesses = append(t.Accesses, Access{addr, v, Write})
}

// Reset discards all recorded accesses.
func (t *TraceMemory) Reset() {
	t.Accesses = t.Accesses[:0]
}

// Return the offset address 'addr' + 'offset'. If the offset
// crossed a page boundary, return 'pageCrossed' as true.
func offsetAddress(addr uint16, offset byte) (newAddr uint16, pageCrossed bool) {
	newAddr = addr + uint16(offset)
	pageCrossed = ((newAddr & 0xff00) != (addr & 0xff00))
	return newAddr, pageCrossed
}

// Offset a zero-page address 'addr' by 'offset'. If the address
// exceeds the zero-page address space, wrap it.
func offsetZeroPage(addr uint16, offset byte) uint16 {
	return (addr + uint16(offset)) & 0xff
}

// Given a 1-byte stack pointer register, return the stack
// corresponding memory address.
func stackAddress(offset byte) uint16 {
	return uint16(0x100) + uint16(offset)
}
