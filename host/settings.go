// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	HexMode           bool   `doc:"hexadecimal input mode"`
	MemDumpBytes      int    `doc:"default number of memory bytes to dump"`
	DisasmLines       int    `doc:"default number of lines to disassemble"`
	MaxStepLines      int    `doc:"max lines to disassemble when stepping"`
	TraceInstructions bool   `doc:"disassemble each instruction as it runs"`
	StopOnBrk         bool   `doc:"stop running when a BRK is reached"`
	VectorJobs        int    `doc:"vector files run concurrently"`
	NextDisasmAddr    uint16 `doc:"address of next disassembly"`
	NextMemDumpAddr   uint16 `doc:"address of next memory dump"`
}

func newSettings() *settings {
	return &settings{
		MemDumpBytes: 64,
		DisasmLines:  10,
		MaxStepLines: 20,
		VectorJobs:   4,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	t := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, t.NumField())
	for i := range settingsFields {
		f := t.Field(i)
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			doc:   f.Tag.Get("doc"),
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

// Display writes every setting and its current value to 'w'.
func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for _, f := range settingsFields {
		v := value.Field(f.index)
		var str string
		switch f.kind {
		case reflect.Uint16:
			str = fmt.Sprintf("    %-18s $%04X", f.name, v.Uint())
		default:
			str = fmt.Sprintf("    %-18s %v", f.name, v.Interface())
		}
		fmt.Fprintf(w, "%-30s (%s)\n", str, f.doc)
	}
}

// Set assigns the setting whose name begins with 'key'. Boolean settings
// accept 0/1/true/false; numeric settings are evaluated with 'eval'.
// The full name of the updated setting is returned.
func (s *settings) Set(key, value string, eval func(string) (int64, error)) (string, error) {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return "", fmt.Errorf("setting '%s' not found", key)
	}

	field := reflect.ValueOf(s).Elem().Field(f.index)
	switch f.kind {
	case reflect.Bool:
		b, err := stringToBool(value)
		if err != nil {
			return "", err
		}
		field.SetBool(b)

	case reflect.Int:
		v, err := eval(value)
		if err != nil {
			return "", err
		}
		if v < 0 {
			return "", fmt.Errorf("invalid value for %s: %d", f.name, v)
		}
		field.SetInt(v)

	case reflect.Uint16:
		v, err := eval(value)
		if err != nil {
			return "", err
		}
		field.SetUint(uint64(uint16(v)))
	}
	return f.name, nil
}
