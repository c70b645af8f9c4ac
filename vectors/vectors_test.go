package vectors_test

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/cycle6502/cpu"
	"github.com/beevik/cycle6502/vectors"
)

// Point -vectors at a directory of SingleStepTests 6502 files (for example
// a checkout of SingleStepTests/65x02/6502/v1) to run the full suite.
var vectorDir = flag.String("vectors", "", "directory holding SingleStepTests 6502 JSON files")

func expectSummary(t *testing.T, s *vectors.Summary, cases, passed int) {
	t.Helper()
	if s.Cases != cases || s.Passed != passed {
		t.Errorf("Summary incorrect. exp: %d/%d passed, got: %d/%d", passed, cases, s.Passed, s.Cases)
	}
	for _, r := range s.Failures {
		for _, m := range r.Mismatches {
			t.Logf("%s: %s", r.Name, m)
		}
	}
}

func TestRunFile(t *testing.T) {
	for _, name := range []string{"sample.json", "sample.json.gz"} {
		t.Run(name, func(t *testing.T) {
			s, err := vectors.RunFile(filepath.Join("testdata", name))
			if err != nil {
				t.Fatal(err)
			}
			expectSummary(t, s, 5, 5)
			if s.CycleDiffs != 0 {
				t.Errorf("Cycle differences incorrect. exp: 0, got: %d", s.CycleDiffs)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := vectors.Load(filepath.Join("testdata", "empty.json"))
	if !errors.Is(err, vectors.ErrNoCases) {
		t.Errorf("Error incorrect. exp: %v, got: %v", vectors.ErrNoCases, err)
	}

	_, err = vectors.Load(filepath.Join("testdata", "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Error incorrect. exp: %v, got: %v", os.ErrNotExist, err)
	}

	_, err = vectors.Decode(strings.NewReader(`[{"name":"x","cycles":[[1,2,"fetch"]]}]`))
	if err == nil {
		t.Error("invalid bus cycle kind accepted")
	}
}

func TestMismatch(t *testing.T) {
	cases, err := vectors.Load(filepath.Join("testdata", "sample.json"))
	if err != nil {
		t.Fatal(err)
	}

	tc := cases[0]
	tc.Final.A = 0x7f
	tc.Final.RAM = append(tc.Final.RAM, [2]uint16{0x0010, 0x01})

	r := tc.Run()
	if r.Passed() {
		t.Fatal("mismatched case passed")
	}
	if len(r.Mismatches) != 2 {
		t.Fatalf("Mismatch count incorrect. exp: 2, got: %d", len(r.Mismatches))
	}
	if got := r.Mismatches[0].String(); got != "A exp: $7F, got: $FF" {
		t.Errorf("Mismatch incorrect. got: %s", got)
	}
	if got := r.Mismatches[1].String(); got != "$0010 exp: $0001, got: $0000" {
		t.Errorf("Mismatch incorrect. got: %s", got)
	}
}

func TestBusTrace(t *testing.T) {
	cases, err := vectors.Load(filepath.Join("testdata", "sample.json"))
	if err != nil {
		t.Fatal(err)
	}

	// PHA: opcode fetch, operand fetch skipped, stack write.
	r := cases[3].Run()
	last := r.Accesses[len(r.Accesses)-1]
	exp := cpu.Access{Addr: 0x0101, Value: 0x42, Kind: cpu.Write}
	if last != exp {
		t.Errorf("Last access incorrect. exp: %+v, got: %+v", exp, last)
	}
	if cases[3].Cycles[2].Kind != cpu.Write {
		t.Errorf("Cycle kind incorrect. exp: write, got: %s", cases[3].Cycles[2].Kind)
	}
}

func TestApply(t *testing.T) {
	cases, err := vectors.Load(filepath.Join("testdata", "sample.json"))
	if err != nil {
		t.Fatal(err)
	}

	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)
	cases[2].Apply(c, mem)

	if c.Reg.PC != 0x1000 || c.Reg.PS != 0x24 {
		t.Errorf("Registers incorrect. got: PC=$%04X P=$%02X", c.Reg.PC, byte(c.Reg.PS))
	}
	if v := mem.LoadByte(0x30ff); v != 0x40 {
		t.Errorf("Memory at $30FF incorrect. exp: $40, got: $%02X", v)
	}
}

func TestRunFiles(t *testing.T) {
	files, err := vectors.Glob("testdata")
	if err != nil {
		t.Fatal(err)
	}
	exp := []string{"empty.json", "sample.json", "sample.json.gz"}
	if len(files) != len(exp) {
		t.Fatalf("File count incorrect. exp: %d, got: %d", len(exp), len(files))
	}
	for i, f := range files {
		if filepath.Base(f) != exp[i] {
			t.Errorf("File %d incorrect. exp: %s, got: %s", i, exp[i], filepath.Base(f))
		}
	}

	summaries, err := vectors.RunFiles(context.Background(), files[1:], 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range summaries {
		if s.Path != files[i+1] {
			t.Errorf("Summary order incorrect. exp: %s, got: %s", files[i+1], s.Path)
		}
		expectSummary(t, s, 5, 5)
	}

	_, err = vectors.RunFiles(context.Background(), files, 0)
	if !errors.Is(err, vectors.ErrNoCases) {
		t.Errorf("Error incorrect. exp: %v, got: %v", vectors.ErrNoCases, err)
	}
}

func TestSingleStepSuite(t *testing.T) {
	if *vectorDir == "" {
		t.Skip("no -vectors directory given")
	}

	files, err := filepath.Glob(filepath.Join(*vectorDir, "*.json*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Skipf("no vector files in %s", *vectorDir)
	}

	for _, file := range files {
		file := file
		t.Run(filepath.Base(file), func(t *testing.T) {
			s, err := vectors.RunFile(file)
			if err != nil {
				t.Fatal(err)
			}
			if s.Failed() > 0 {
				r := s.Failures[0]
				t.Errorf("%d of %d cases failed; first: %s %v", s.Failed(), s.Cases, r.Name, r.Mismatches)
			}
		})
	}
}
