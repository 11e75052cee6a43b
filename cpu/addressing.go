package cpu

// AddressMode enumerates the operand-addressing forms this instruction
// subset supports. Every opcode table entry names exactly one of these;
// the addressing helpers below assume the caller only ever asks for a
// mode a given opcode actually declares.
type AddressMode int

const (
	ModeImplied AddressMode = iota
	ModeImmediate
	ModeZeroPage
	ModeZeroPageX
	ModeZeroPageY
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeIndirectX
	ModeIndirectY
	ModeIndirect // JMP (addr) only.
)

func (c *Chip) fetchByte() uint8 {
	v := c.ram.Read(c.PC)
	c.PC++
	return v
}

func (c *Chip) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return uint16(lo) | uint16(hi)<<8
}

// zpReadWord reads a little-endian word entirely within zero page: the
// high byte comes from ptr+1 wrapped modulo 256, never spilling into
// page 1 the way a normal 16 bit address would.
func (c *Chip) zpReadWord(ptr uint8) uint16 {
	lo := c.ram.Read(uint16(ptr))
	hi := c.ram.Read(uint16(ptr + 1))
	return uint16(lo) | uint16(hi)<<8
}

func pageCrossed(base, effective uint16) bool {
	return base&0xFF00 != effective&0xFF00
}

// loadOperand fetches the operand byte for a read-only instruction
// (LDA/LDX/LDY, AND/ORA/EOR, BIT) under mode, returning the value read
// and the total cycle cost including any page-cross penalty.
func (c *Chip) loadOperand(mode AddressMode) (uint8, int) {
	switch mode {
	case ModeImmediate:
		return c.fetchByte(), 2
	case ModeZeroPage:
		addr := uint16(c.fetchByte())
		return c.ram.Read(addr), 3
	case ModeZeroPageX:
		zp := c.fetchByte()
		addr := uint16(zp + c.X)
		return c.ram.Read(addr), 4
	case ModeZeroPageY:
		zp := c.fetchByte()
		addr := uint16(zp + c.Y)
		return c.ram.Read(addr), 4
	case ModeAbsolute:
		addr := c.fetchWord()
		return c.ram.Read(addr), 4
	case ModeAbsoluteX:
		base := c.fetchWord()
		addr := base + uint16(c.X)
		cycles := 4
		if pageCrossed(base, addr) {
			cycles++
		}
		return c.ram.Read(addr), cycles
	case ModeAbsoluteY:
		base := c.fetchWord()
		addr := base + uint16(c.Y)
		cycles := 4
		if pageCrossed(base, addr) {
			cycles++
		}
		return c.ram.Read(addr), cycles
	case ModeIndirectX:
		zp := c.fetchByte()
		ptr := zp + c.X
		addr := c.zpReadWord(ptr)
		return c.ram.Read(addr), 6
	case ModeIndirectY:
		zp := c.fetchByte()
		base := c.zpReadWord(zp)
		addr := base + uint16(c.Y)
		cycles := 5
		if pageCrossed(base, addr) {
			cycles++
		}
		return c.ram.Read(addr), cycles
	default:
		panic(InvalidCPUState{"loadOperand: unsupported address mode"})
	}
}

// storeAddress computes the destination address for STA/STX/STY under
// mode, returning the address and the total cycle cost. Stores always
// pay the worst-case cost for an indexed mode: there is no page-cross
// discount, since the write has to happen regardless of which page it
// lands on.
func (c *Chip) storeAddress(mode AddressMode) (uint16, int) {
	switch mode {
	case ModeZeroPage:
		return uint16(c.fetchByte()), 3
	case ModeZeroPageX:
		zp := c.fetchByte()
		return uint16(zp + c.X), 4
	case ModeZeroPageY:
		zp := c.fetchByte()
		return uint16(zp + c.Y), 4
	case ModeAbsolute:
		return c.fetchWord(), 4
	case ModeAbsoluteX:
		base := c.fetchWord()
		return base + uint16(c.X), 5
	case ModeAbsoluteY:
		base := c.fetchWord()
		return base + uint16(c.Y), 5
	case ModeIndirectX:
		zp := c.fetchByte()
		ptr := zp + c.X
		return c.zpReadWord(ptr), 6
	case ModeIndirectY:
		zp := c.fetchByte()
		base := c.zpReadWord(zp)
		return base + uint16(c.Y), 6
	default:
		panic(InvalidCPUState{"storeAddress: unsupported address mode"})
	}
}
