// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vectors loads and runs single-instruction conformance tests in
// the SingleStepTests 6502 JSON format. Each test case holds an initial
// machine state, the expected final state after one instruction, and the
// expected bus activity.
package vectors

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/cycle6502/cpu"
	"golang.org/x/sync/errgroup"
)

// ErrNoCases is returned when a vector file holds no test cases.
var ErrNoCases = errors.New("no test cases")

// A State is a snapshot of the registers and of selected memory cells.
type State struct {
	PC  uint16      `json:"pc"`
	S   byte        `json:"s"`
	A   byte        `json:"a"`
	X   byte        `json:"x"`
	Y   byte        `json:"y"`
	P   byte        `json:"p"`
	RAM [][2]uint16 `json:"ram"` // [address, value] pairs
}

// A Cycle is one expected bus transaction.
type Cycle struct {
	Addr  uint16
	Value byte
	Kind  cpu.AccessKind
}

// UnmarshalJSON decodes a cycle from its [address, value, "read"|"write"]
// array form.
func (c *Cycle) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("bus cycle has %d fields, expected 3", len(raw))
	}

	var kind string
	if err := json.Unmarshal(raw[0], &c.Addr); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &c.Value); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[2], &kind); err != nil {
		return err
	}

	switch kind {
	case "read":
		c.Kind = cpu.Read
	case "write":
		c.Kind = cpu.Write
	default:
		return fmt.Errorf("invalid bus cycle kind %q", kind)
	}
	return nil
}

// A Case is a single conformance test.
type Case struct {
	Name    string  `json:"name"`
	Initial State   `json:"initial"`
	Final   State   `json:"final"`
	Cycles  []Cycle `json:"cycles"`
}

// A Mismatch describes one value that differed from the expected final
// state.
type Mismatch struct {
	Field string // register name, or memory address in $XXXX form
	Exp   int
	Got   int
}

func (m Mismatch) String() string {
	if strings.HasPrefix(m.Field, "$") || m.Field == "PC" {
		return fmt.Sprintf("%s exp: $%04X, got: $%04X", m.Field, m.Exp, m.Got)
	}
	return fmt.Sprintf("%s exp: $%02X, got: $%02X", m.Field, m.Exp, m.Got)
}

// A Result holds the outcome of running a single test case.
type Result struct {
	Name       string
	Ticks      int          // ticks taken by the instruction
	BusCycles  int          // bus cycles listed by the test case
	Accesses   []cpu.Access // bus accesses made while executing
	Mismatches []Mismatch
}

// Passed returns true if the final state matched the expected state.
func (r *Result) Passed() bool {
	return len(r.Mismatches) == 0
}

// CyclesMatch returns true if the instruction took as many ticks as the
// test case lists bus cycles.
func (r *Result) CyclesMatch() bool {
	return r.Ticks == r.BusCycles
}

// Load reads all test cases from a JSON file. Files whose names end in
// ".gz" are decompressed first.
func Load(path string) ([]Case, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	cases, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// Decode reads a JSON array of test cases from 'r'.
func Decode(r io.Reader) ([]Case, error) {
	var cases []Case
	if err := json.NewDecoder(r).Decode(&cases); err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, ErrNoCases
	}
	return cases, nil
}

// Apply installs the test case's initial state into the CPU registers and
// into 'mem'. The CPU's in-flight instruction state is left alone, so it
// should be called on a CPU that sits on an instruction boundary.
func (tc *Case) Apply(c *cpu.CPU, mem cpu.Memory) {
	s := &tc.Initial
	c.Reg.PC = s.PC
	c.Reg.SP = s.S
	c.Reg.A = s.A
	c.Reg.X = s.X
	c.Reg.Y = s.Y
	c.Reg.PS = cpu.Status(s.P)

	for _, cell := range s.RAM {
		mem.StoreByte(cell[0], byte(cell[1]))
	}
}

// Run executes the test case on a freshly created CPU and compares the
// resulting state against the expected final state.
func (tc *Case) Run() *Result {
	mem := cpu.NewFlatMemory()
	trace := cpu.NewTraceMemory(mem)
	c := cpu.NewCPU(trace)
	tc.Apply(c, mem)

	r := &Result{
		Name:      tc.Name,
		BusCycles: len(tc.Cycles),
	}
	r.Ticks = c.Step()
	r.Accesses = trace.Accesses

	f := &tc.Final
	r.compare("PC", int(f.PC), int(c.Reg.PC))
	r.compare("S", int(f.S), int(c.Reg.SP))
	r.compare("A", int(f.A), int(c.Reg.A))
	r.compare("X", int(f.X), int(c.Reg.X))
	r.compare("Y", int(f.Y), int(c.Reg.Y))
	r.compare("P", int(f.P), int(c.Reg.PS))
	for _, cell := range f.RAM {
		field := fmt.Sprintf("$%04X", cell[0])
		r.compare(field, int(cell[1]), int(mem.LoadByte(cell[0])))
	}
	return r
}

func (r *Result) compare(field string, exp, got int) {
	if exp != got {
		r.Mismatches = append(r.Mismatches, Mismatch{field, exp, got})
	}
}

// A Summary aggregates the results of every test case in a file.
type Summary struct {
	Path       string
	Cases      int
	Passed     int
	CycleDiffs int       // cases whose tick count differs from the bus cycles
	Failures   []*Result // results of the failed cases
}

// Failed returns the number of failed test cases.
func (s *Summary) Failed() int {
	return s.Cases - s.Passed
}

// RunFile loads the test cases in 'path' and runs all of them.
func RunFile(path string) (*Summary, error) {
	cases, err := Load(path)
	if err != nil {
		return nil, err
	}
	return RunCases(path, cases), nil
}

// RunCases runs each test case and returns the aggregated results.
func RunCases(path string, cases []Case) *Summary {
	s := &Summary{Path: path, Cases: len(cases)}
	for i := range cases {
		r := cases[i].Run()
		if r.Passed() {
			s.Passed++
		} else {
			s.Failures = append(s.Failures, r)
		}
		if !r.CyclesMatch() {
			s.CycleDiffs++
		}
	}
	return s
}

// RunFiles runs the test cases of several files concurrently, with at most
// 'limit' files in flight (no limit when 'limit' <= 0). The summaries are
// returned in the order of 'paths'. The first file that fails to load
// cancels the remaining work and its error is returned.
func RunFiles(ctx context.Context, paths []string, limit int) ([]*Summary, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	summaries := make([]*Summary, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := RunFile(path)
			if err != nil {
				return err
			}
			summaries[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Glob expands 'path' into a sorted list of vector files. A directory
// expands to every .json and .json.gz file it contains; anything else is
// returned as is.
func Glob(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.json.gz"} {
		m, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, m...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCases)
	}
	sort.Strings(files)
	return files, nil
}
