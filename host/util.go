// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"strings"
)

// Return the machine code bytes of an instruction as hex pairs.
func codeString(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(hexDigits[v>>4])
		sb.WriteByte(hexDigits[v&0xf])
	}
	return sb.String()
}

func stringToBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "0", "false", "off":
		return false, nil
	case "1", "true", "on":
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool value '%s'", s)
	}
}

const hexDigits = "0123456789ABCDEF"

func addrToBuf(addr uint16, b []byte) {
	b[0] = hexDigits[(addr>>12)&0xf]
	b[1] = hexDigits[(addr>>8)&0xf]
	b[2] = hexDigits[(addr>>4)&0xf]
	b[3] = hexDigits[addr&0xf]
}

func byteToBuf(v byte, b []byte) {
	b[0] = hexDigits[v>>4]
	b[1] = hexDigits[v&0xf]
}

func toPrintableChar(v byte) byte {
	if v >= 32 && v < 127 {
		return v
	}
	return '.'
}

// Word-wrap 's' to lines of at most 'width' columns, each indented by
// 'indent' spaces.
func indentWrap(indent, width int, s string) string {
	pad := strings.Repeat(" ", indent)
	var sb strings.Builder
	col := 0
	for _, word := range strings.Fields(s) {
		switch {
		case col == 0:
			sb.WriteString(pad)
			col = indent
		case col+1+len(word) > width:
			sb.WriteString("\n" + pad)
			col = indent
		default:
			sb.WriteByte(' ')
			col++
		}
		sb.WriteString(word)
		col += len(word)
	}
	return sb.String()
}
