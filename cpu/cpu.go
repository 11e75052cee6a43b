// Package cpu implements a cycle-accurate interpreter for a reduced
// MOS 6502 instruction subset: loads, stores, logical operations, BIT,
// the control-flow trio JMP/JSR/RTS, and the stack/status transfer
// group (PHA/PHP/PLA/PLP/TSX/TSA/TXS). It does not model peripherals,
// interrupts, decimal mode, or any addressing mode beyond what that
// subset requires.
package cpu

import (
	"fmt"

	"github.com/retrostack/m6502/memory"
)

const (
	// ResetVector is the literal program counter value a Chip starts
	// from when Reset is called without an explicit override. Unlike a
	// real 6502, the byte stored AT this address is never consulted;
	// the vector itself is the starting PC.
	ResetVector = uint16(0xFFFC)

	// StackBase is the fixed page the stack pointer indexes into.
	StackBase = uint16(0x0100)

	// initialStackPointer is where S sits immediately after Reset, per
	// spec §3: SP = 0xFF rather than the real 6502's post-power-up 0xFD.
	initialStackPointer = uint8(0xFF)
)

// Status register bit layout, packed into P from bit 0 to bit 7.
const (
	P_CARRY     = uint8(0x01)
	P_ZERO      = uint8(0x02)
	P_INTERRUPT = uint8(0x04)
	P_DECIMAL   = uint8(0x08)
	P_BREAK     = uint8(0x10)
	P_RESERVED  = uint8(0x20) // Not forced to any value; Reset clears it like the rest.
	P_OVERFLOW  = uint8(0x40)
	P_NEGATIVE  = uint8(0x80)
)

// InvalidCPUState represents an invalid CPU state or a precondition
// violation inside the emulator (e.g. an addressing evaluator invoked
// with a mode an opcode doesn't declare).
type InvalidCPUState struct {
	Reason string
}

// Error implements the error interface.
func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// Chip holds the full architectural register state of the processor.
// Executing instructions mutates these fields and the attached memory
// bank directly; there is no pipeline or tick-by-tick state machine.
type Chip struct {
	A  uint8  // Accumulator
	X  uint8  // X index register
	Y  uint8  // Y index register
	S  uint8  // Stack pointer (indexes StackBase+S)
	P  uint8  // Packed status register
	PC uint16 // Program counter

	ram memory.Bank

	// UnhandledInstruction is set when Execute encounters an opcode byte
	// with no table entry. Execute stops immediately, counting only the
	// one fetch cycle and leaving PC on the offending opcode.
	UnhandledInstruction bool
	// HaltOpcode is the opcode byte that set UnhandledInstruction, valid
	// only when that flag is true.
	HaltOpcode uint8
	// CycleOverflow is set when a single instruction's cost exceeds the
	// cycle budget remaining in the call to Execute that ran it. The
	// instruction still runs to completion; overflow is reported, not
	// prevented, since this interpreter has no mid-instruction state to
	// suspend from.
	CycleOverflow bool
}

// ChipDef configures a new Chip.
type ChipDef struct {
	// Ram is the memory bank the CPU reads instructions and operands
	// from. Required.
	Ram memory.Bank
	// PC is the literal program counter to start from. Zero means use
	// ResetVector.
	PC uint16
}

// New creates a Chip attached to the given memory bank and resets it to
// its initial architectural state, which (per Reset) also clears the
// bank to zero.
func New(def *ChipDef) (*Chip, error) {
	if def == nil || def.Ram == nil {
		return nil, InvalidCPUState{"ChipDef.Ram must be non-nil"}
	}
	c := &Chip{ram: def.Ram}
	pc := def.PC
	if pc == 0 {
		pc = ResetVector
	}
	c.Reset(pc)
	return c, nil
}

// Reset restores the architectural register state, clears the attached
// memory bank to zero, and sets PC to pc directly — pc is used as the
// program counter itself, never as an address to read a vector from.
// Per spec §3/§6, every register and status bit goes to zero except PC
// and SP (0xFF), and the attached memory is cleared to zero, matching
// original_source's Reset(), which ends with memory.Initialize().
//
// Load a program into the bank after calling Reset, not before: Reset
// zeroes whatever Reset's caller already wrote.
func (c *Chip) Reset(pc uint16) {
	c.A = 0
	c.X = 0
	c.Y = 0
	c.S = initialStackPointer
	c.P = 0
	c.PC = pc
	c.ram.PowerOn()
	c.UnhandledInstruction = false
	c.HaltOpcode = 0
	c.CycleOverflow = false
}

// Execute runs instructions until the cycle budget is exhausted, an
// unhandled opcode is fetched, or a single instruction overruns the
// remaining budget. Per spec §6/§7 it returns the number of cycles
// actually consumed — which may exceed budget when the last
// instruction overruns it, and includes the one fetch cycle charged
// even when that fetch turns up an unhandled opcode.
func (c *Chip) Execute(budget int32) int32 {
	remaining := budget
	var consumed int32
	for remaining > 0 {
		op := c.ram.Read(c.PC)
		entry, ok := opcodeTable[op]
		if !ok {
			c.UnhandledInstruction = true
			c.HaltOpcode = op
			consumed++
			return consumed
		}
		c.PC++
		spent := int32(entry.run(c, entry.mode))
		if spent > remaining {
			c.CycleOverflow = true
		}
		consumed += spent
		remaining -= spent
	}
	return consumed
}

func (c *Chip) setZeroNegative(val uint8) {
	c.P &^= P_ZERO | P_NEGATIVE
	if val == 0 {
		c.P |= P_ZERO
	}
	if val&P_NEGATIVE != 0 {
		c.P |= P_NEGATIVE
	}
}

func (c *Chip) setBitTestFlags(memVal uint8) {
	c.P &^= P_ZERO | P_OVERFLOW | P_NEGATIVE
	if c.A&memVal == 0 {
		c.P |= P_ZERO
	}
	c.P |= memVal & (P_OVERFLOW | P_NEGATIVE)
}

// pushByte pushes val onto the stack, charging 1 cycle.
func (c *Chip) pushByte(val uint8) int {
	c.ram.Write(StackBase+uint16(c.S), val)
	c.S--
	return 1
}

// popByte pops a byte off the stack, charging 2 cycles.
func (c *Chip) popByte() (uint8, int) {
	c.S++
	return c.ram.Read(StackBase + uint16(c.S)), 2
}

// pushWord pushes val onto the stack high-byte-first, charging 2 cycles.
func (c *Chip) pushWord(val uint16) int {
	c.pushByte(uint8(val >> 8))
	c.pushByte(uint8(val))
	return 2
}

// popWord pops a word off the stack low-byte-first, charging 3 cycles.
func (c *Chip) popWord() (uint16, int) {
	lo, _ := c.popByte()
	hi, _ := c.popByte()
	return uint16(lo) | uint16(hi)<<8, 3
}

// PeekByte returns the byte at the top of the stack without consuming
// budget or moving S. Useful for inspecting what PHA/PHP last pushed.
func (c *Chip) PeekByte() uint8 {
	return c.ram.Read(StackBase + uint16(c.S+1))
}

// PeekWord returns the word at the top of the stack (as pushed by JSR)
// without consuming budget or moving S.
func (c *Chip) PeekWord() uint16 {
	lo := c.ram.Read(StackBase + uint16(c.S+1))
	hi := c.ram.Read(StackBase + uint16(c.S+2))
	return uint16(lo) | uint16(hi)<<8
}
