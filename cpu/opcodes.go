package cpu

// Opcode byte assignments. Most match the canonical NMOS 6502 encoding.
// Two do not, and are resolved from the prior implementation this
// interpreter's instruction subset descends from rather than from real
// 6502 canon, since neither has a canonical encoding in this reduced
// subset's own design:
//
//   - LDX zero-page,Y takes 0xB2, the byte the prior implementation
//     assigns it, not the real 6502's 0xB6.
//   - TSA (accumulator <- stack pointer, a transfer this subset adds
//     that stock 6502 doesn't have) takes the byte 0x8A, which on a real
//     6502 is TXA. This subset has no TXA, so the collision is only with
//     real 6502 canon, not with any opcode defined here.
const (
	opLDAImmediate = 0xA9
	opLDAZeroPage  = 0xA5
	opLDAZeroPageX = 0xB5
	opLDAAbsolute  = 0xAD
	opLDAAbsoluteX = 0xBD
	opLDAAbsoluteY = 0xB9
	opLDAIndirectX = 0xA1
	opLDAIndirectY = 0xB1

	opLDXImmediate = 0xA2
	opLDXZeroPage  = 0xA6
	opLDXZeroPageY = 0xB2
	opLDXAbsolute  = 0xAE
	opLDXAbsoluteY = 0xBE

	opLDYImmediate = 0xA0
	opLDYZeroPage  = 0xA4
	opLDYZeroPageX = 0xB4
	opLDYAbsolute  = 0xAC
	opLDYAbsoluteX = 0xBC

	opSTAZeroPage  = 0x85
	opSTAZeroPageX = 0x95
	opSTAAbsolute  = 0x8D
	opSTAAbsoluteX = 0x9D
	opSTAAbsoluteY = 0x99
	opSTAIndirectX = 0x81
	opSTAIndirectY = 0x91

	opSTXZeroPage  = 0x86
	opSTXZeroPageY = 0x96
	opSTXAbsolute  = 0x8E

	opSTYZeroPage  = 0x84
	opSTYZeroPageX = 0x94
	opSTYAbsolute  = 0x8C

	opANDImmediate = 0x29
	opANDZeroPage  = 0x25
	opANDZeroPageX = 0x35
	opANDAbsolute  = 0x2D
	opANDAbsoluteX = 0x3D
	opANDAbsoluteY = 0x39
	opANDIndirectX = 0x21
	opANDIndirectY = 0x31

	opORAImmediate = 0x09
	opORAZeroPage  = 0x05
	opORAZeroPageX = 0x15
	opORAAbsolute  = 0x0D
	opORAAbsoluteX = 0x1D
	opORAAbsoluteY = 0x19
	opORAIndirectX = 0x01
	opORAIndirectY = 0x11

	opEORImmediate = 0x49
	opEORZeroPage  = 0x45
	opEORZeroPageX = 0x55
	opEORAbsolute  = 0x4D
	opEORAbsoluteX = 0x5D
	opEORAbsoluteY = 0x59
	opEORIndirectX = 0x41
	opEORIndirectY = 0x51

	opBITZeroPage = 0x24
	opBITAbsolute = 0x2C

	opJMPAbsolute = 0x4C
	opJMPIndirect = 0x6C
	opJSR         = 0x20
	opRTS         = 0x60

	opPHA = 0x48
	opPHP = 0x08
	opPLA = 0x68
	opPLP = 0x28
	opTSX = 0xBA
	opTXS = 0x9A
	opTSA = 0x8A
)

// opcodeEntry binds an opcode's addressing mode to the handler that
// implements it. run returns the number of cycles the instruction cost.
type opcodeEntry struct {
	mode AddressMode
	run  func(c *Chip, mode AddressMode) int
}

var opcodeTable map[uint8]opcodeEntry

func init() {
	opcodeTable = buildOpcodeTable()
}

func buildOpcodeTable() map[uint8]opcodeEntry {
	t := map[uint8]opcodeEntry{}

	reg := func(op uint8, mode AddressMode, fn func(c *Chip, mode AddressMode) int) {
		t[op] = opcodeEntry{mode: mode, run: fn}
	}

	lda := loadInto(func(c *Chip) *uint8 { return &c.A })
	ldx := loadInto(func(c *Chip) *uint8 { return &c.X })
	ldy := loadInto(func(c *Chip) *uint8 { return &c.Y })

	reg(opLDAImmediate, ModeImmediate, lda)
	reg(opLDAZeroPage, ModeZeroPage, lda)
	reg(opLDAZeroPageX, ModeZeroPageX, lda)
	reg(opLDAAbsolute, ModeAbsolute, lda)
	reg(opLDAAbsoluteX, ModeAbsoluteX, lda)
	reg(opLDAAbsoluteY, ModeAbsoluteY, lda)
	reg(opLDAIndirectX, ModeIndirectX, lda)
	reg(opLDAIndirectY, ModeIndirectY, lda)

	reg(opLDXImmediate, ModeImmediate, ldx)
	reg(opLDXZeroPage, ModeZeroPage, ldx)
	reg(opLDXZeroPageY, ModeZeroPageY, ldx)
	reg(opLDXAbsolute, ModeAbsolute, ldx)
	reg(opLDXAbsoluteY, ModeAbsoluteY, ldx)

	reg(opLDYImmediate, ModeImmediate, ldy)
	reg(opLDYZeroPage, ModeZeroPage, ldy)
	reg(opLDYZeroPageX, ModeZeroPageX, ldy)
	reg(opLDYAbsolute, ModeAbsolute, ldy)
	reg(opLDYAbsoluteX, ModeAbsoluteX, ldy)

	sta := storeFrom(func(c *Chip) uint8 { return c.A })
	stx := storeFrom(func(c *Chip) uint8 { return c.X })
	sty := storeFrom(func(c *Chip) uint8 { return c.Y })

	reg(opSTAZeroPage, ModeZeroPage, sta)
	reg(opSTAZeroPageX, ModeZeroPageX, sta)
	reg(opSTAAbsolute, ModeAbsolute, sta)
	reg(opSTAAbsoluteX, ModeAbsoluteX, sta)
	reg(opSTAAbsoluteY, ModeAbsoluteY, sta)
	reg(opSTAIndirectX, ModeIndirectX, sta)
	reg(opSTAIndirectY, ModeIndirectY, sta)

	reg(opSTXZeroPage, ModeZeroPage, stx)
	reg(opSTXZeroPageY, ModeZeroPageY, stx)
	reg(opSTXAbsolute, ModeAbsolute, stx)

	reg(opSTYZeroPage, ModeZeroPage, sty)
	reg(opSTYZeroPageX, ModeZeroPageX, sty)
	reg(opSTYAbsolute, ModeAbsolute, sty)

	and := logicalOp(func(a, v uint8) uint8 { return a & v })
	ora := logicalOp(func(a, v uint8) uint8 { return a | v })
	eor := logicalOp(func(a, v uint8) uint8 { return a ^ v })

	reg(opANDImmediate, ModeImmediate, and)
	reg(opANDZeroPage, ModeZeroPage, and)
	reg(opANDZeroPageX, ModeZeroPageX, and)
	reg(opANDAbsolute, ModeAbsolute, and)
	reg(opANDAbsoluteX, ModeAbsoluteX, and)
	reg(opANDAbsoluteY, ModeAbsoluteY, and)
	reg(opANDIndirectX, ModeIndirectX, and)
	reg(opANDIndirectY, ModeIndirectY, and)

	reg(opORAImmediate, ModeImmediate, ora)
	reg(opORAZeroPage, ModeZeroPage, ora)
	reg(opORAZeroPageX, ModeZeroPageX, ora)
	reg(opORAAbsolute, ModeAbsolute, ora)
	reg(opORAAbsoluteX, ModeAbsoluteX, ora)
	reg(opORAAbsoluteY, ModeAbsoluteY, ora)
	reg(opORAIndirectX, ModeIndirectX, ora)
	reg(opORAIndirectY, ModeIndirectY, ora)

	reg(opEORImmediate, ModeImmediate, eor)
	reg(opEORZeroPage, ModeZeroPage, eor)
	reg(opEORZeroPageX, ModeZeroPageX, eor)
	reg(opEORAbsolute, ModeAbsolute, eor)
	reg(opEORAbsoluteX, ModeAbsoluteX, eor)
	reg(opEORAbsoluteY, ModeAbsoluteY, eor)
	reg(opEORIndirectX, ModeIndirectX, eor)
	reg(opEORIndirectY, ModeIndirectY, eor)

	reg(opBITZeroPage, ModeZeroPage, opBIT)
	reg(opBITAbsolute, ModeAbsolute, opBIT)

	reg(opJMPAbsolute, ModeAbsolute, opJMPExec)
	reg(opJMPIndirect, ModeIndirect, opJMPIndirectExec)
	reg(opJSR, ModeAbsolute, opJSRExec)
	reg(opRTS, ModeImplied, opRTSExec)

	reg(opPHA, ModeImplied, opPHAExec)
	reg(opPHP, ModeImplied, opPHPExec)
	reg(opPLA, ModeImplied, opPLAExec)
	reg(opPLP, ModeImplied, opPLPExec)
	reg(opTSX, ModeImplied, opTSXExec)
	reg(opTXS, ModeImplied, opTXSExec)
	reg(opTSA, ModeImplied, opTSAExec)

	return t
}

// loadInto builds a handler for LDA/LDX/LDY: fetch the operand under
// mode, store it through reg, and set Z/N from the loaded value.
func loadInto(reg func(c *Chip) *uint8) func(c *Chip, mode AddressMode) int {
	return func(c *Chip, mode AddressMode) int {
		val, cycles := c.loadOperand(mode)
		*reg(c) = val
		c.setZeroNegative(val)
		return cycles
	}
}

// storeFrom builds a handler for STA/STX/STY: compute the destination
// address under mode and write the register's current value there. No
// flags change.
func storeFrom(reg func(c *Chip) uint8) func(c *Chip, mode AddressMode) int {
	return func(c *Chip, mode AddressMode) int {
		addr, cycles := c.storeAddress(mode)
		c.ram.Write(addr, reg(c))
		return cycles
	}
}

// logicalOp builds a handler for AND/ORA/EOR: fetch the operand under
// mode, combine it into A via apply, and set Z/N from the result.
func logicalOp(apply func(a, v uint8) uint8) func(c *Chip, mode AddressMode) int {
	return func(c *Chip, mode AddressMode) int {
		val, cycles := c.loadOperand(mode)
		c.A = apply(c.A, val)
		c.setZeroNegative(c.A)
		return cycles
	}
}

func opBIT(c *Chip, mode AddressMode) int {
	val, cycles := c.loadOperand(mode)
	c.setBitTestFlags(val)
	return cycles
}

func opJMPExec(c *Chip, mode AddressMode) int {
	c.PC = c.fetchWord()
	return 3
}

func opJMPIndirectExec(c *Chip, mode AddressMode) int {
	ptr := c.fetchWord()
	c.PC = c.ram.ReadWord(ptr)
	return 5
}

func opJSRExec(c *Chip, mode AddressMode) int {
	target := c.fetchWord()
	// JSR pushes the address of the last byte of itself, not the next
	// instruction; RTS accounts for that by incrementing after the pop.
	c.pushWord(c.PC - 1)
	c.PC = target
	return 6
}

func opRTSExec(c *Chip, mode AddressMode) int {
	addr, _ := c.popWord()
	c.PC = addr + 1
	return 6
}

func opPHAExec(c *Chip, mode AddressMode) int {
	c.pushByte(c.A)
	return 3
}

func opPHPExec(c *Chip, mode AddressMode) int {
	c.pushByte(c.P)
	return 3
}

func opPLAExec(c *Chip, mode AddressMode) int {
	val, _ := c.popByte()
	c.A = val
	c.setZeroNegative(val)
	return 4
}

// opPLPExec restores P directly from the popped byte. It deliberately
// does not re-derive Z/N from A afterward.
func opPLPExec(c *Chip, mode AddressMode) int {
	val, _ := c.popByte()
	c.P = val
	return 4
}

func opTSXExec(c *Chip, mode AddressMode) int {
	c.X = c.S
	c.setZeroNegative(c.X)
	return 2
}

// opTXSExec transfers X into S. Unlike TSX it sets no flags, matching
// real 6502 behavior for this direction of the transfer.
func opTXSExec(c *Chip, mode AddressMode) int {
	c.S = c.X
	return 2
}

// opTSAExec transfers the stack pointer into the accumulator. This
// subset has no corresponding ATS instruction going the other way.
func opTSAExec(c *Chip, mode AddressMode) int {
	c.A = c.S
	c.setZeroNegative(c.A)
	return 2
}
