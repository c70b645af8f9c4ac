// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/beevik/cycle6502/host"
	"github.com/beevik/term"
)

var (
	load string
)

func init() {
	flag.StringVar(&load, "load", "", "load a binary file (`file@addr`, addr in hex)")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: cycle6502 [options] [script] ..\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	h := host.New()

	if load != "" {
		filename, addr, err := parseLoadArg(load)
		if err != nil {
			exitOnError(err)
		}
		if _, err := h.Load(filename, addr); err != nil {
			exitOnError(err)
		}
	}

	// Run commands contained in command-line files.
	for _, filename := range flag.Args() {
		file, err := os.Open(filename)
		if err != nil {
			exitOnError(err)
		}
		err = h.RunCommands(file, os.Stdout, false)
		file.Close()
		switch {
		case errors.Is(err, host.ErrQuit):
			return
		case err != nil:
			exitOnError(err)
		}
	}

	// Break on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go handleInterrupt(h, c)

	// Run commands from stdin, prompting only when it is a terminal.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	err := h.RunCommands(os.Stdin, os.Stdout, interactive)
	if err != nil && !errors.Is(err, host.ErrQuit) {
		exitOnError(err)
	}
}

// Split a "file@addr" argument into its file name and hexadecimal load
// address.
func parseLoadArg(s string) (string, uint16, error) {
	i := strings.LastIndexByte(s, '@')
	if i <= 0 || i == len(s)-1 {
		return "", 0, fmt.Errorf("invalid -load argument '%s', expected file@addr", s)
	}

	a := strings.TrimPrefix(strings.TrimPrefix(s[i+1:], "$"), "0x")
	addr, err := strconv.ParseUint(a, 16, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid load address '%s'", s[i+1:])
	}
	return s[:i], uint16(addr), nil
}

func handleInterrupt(h *host.Host, c chan os.Signal) {
	for {
		<-c
		h.Break()
	}
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
