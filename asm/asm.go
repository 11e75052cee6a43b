// Package asm loads hand-assembled 6502 listings directly into a
// memory.Bank. A listing line has the form:
//
//	XXXX OP A1 A2 A3 ...
//
// where XXXX is a 4 hex digit address and the remaining tokens are hex
// byte values written starting at that address. Anything from a tab or
// a "(*)" marker to the end of the line is a comment and is stripped
// before parsing; blank lines and lines that don't start with a 4 hex
// digit address are skipped entirely, so free-form notes can sit
// alongside the listing.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retrostack/m6502/memory"
)

// Load reads listing lines from r and writes their bytes into bank,
// returning the lowest and highest address written. If no lines matched
// the listing format low and high are both zero.
func Load(r io.Reader, bank memory.Bank) (low, high uint16, err error) {
	scanner := bufio.NewScanner(r)
	line := 0
	first := true
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if len(text) < 4 || !isHexAddress(text[:4]) {
			continue
		}
		if idx := strings.IndexByte(text, '\t'); idx >= 0 {
			text = text[:idx]
		}
		if idx := strings.Index(text, "(*)"); idx >= 0 {
			text = text[:idx]
		}

		addrVal, err := strconv.ParseUint(text[:4], 16, 16)
		if err != nil {
			return 0, 0, fmt.Errorf("asm: line %d: bad address %q: %w", line, text[:4], err)
		}
		addr := uint16(addrVal)

		rest := strings.TrimSpace(text[4:])
		if rest == "" {
			continue
		}
		toks := strings.Fields(rest)
		for i, tok := range toks {
			b, err := strconv.ParseUint(tok, 16, 8)
			if err != nil {
				return 0, 0, fmt.Errorf("asm: line %d: bad byte %q: %w", line, tok, err)
			}
			a := addr + uint16(i)
			bank.Write(a, uint8(b))
			if first {
				low, high = a, a
				first = false
			}
			if a < low {
				low = a
			}
			if a > high {
				high = a
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, fmt.Errorf("asm: scanning input: %w", err)
	}
	return low, high, nil
}

func isHexAddress(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'F':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
