package main

import "testing"

func TestParseLoadArg(t *testing.T) {
	tests := []struct {
		arg      string
		filename string
		addr     uint16
		ok       bool
	}{
		{"prog.bin@0600", "prog.bin", 0x0600, true},
		{"prog.bin@$C000", "prog.bin", 0xc000, true},
		{"dir@x/prog.bin@0x8000", "dir@x/prog.bin", 0x8000, true},
		{"prog.bin", "", 0, false},
		{"prog.bin@", "", 0, false},
		{"@0600", "", 0, false},
		{"prog.bin@12345", "", 0, false},
	}

	for _, test := range tests {
		filename, addr, err := parseLoadArg(test.arg)
		if (err == nil) != test.ok {
			t.Errorf("%s: incorrect error result: %v", test.arg, err)
			continue
		}
		if filename != test.filename || addr != test.addr {
			t.Errorf("%s: incorrect result. exp: %s $%04X, got: %s $%04X", test.arg, test.filename, test.addr, filename, addr)
		}
	}
}
