// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"strings"

	"github.com/beevik/cmd"
)

// A command holds a host command's handler and the text used to describe
// it in help output. It is stored as the Data of each cmd.Command.
type command struct {
	path        string
	brief       string
	description string
	usage       string
	handler     func(h *Host, c selection) error
}

// A selection is the command matched by a line of input, along with the
// arguments that follow it.
type selection struct {
	Command *cmd.Command
	Args    []string
}

// A subtree groups related commands under a common first word.
type subtree struct {
	name  string
	brief string
}

var errIncomplete = errors.New("command is incomplete")

var (
	cmds     *cmd.Tree
	commands []*command // all commands, in the order they were added
	subtrees []subtree
)

// Find the command matched by 'line'. A line naming only a subtree yields
// errIncomplete.
func lookup(line string) (selection, error) {
	n, args, err := cmds.Lookup(line)
	if err != nil {
		return selection{}, err
	}
	c, ok := n.(*cmd.Command)
	if !ok {
		return selection{}, errIncomplete
	}
	return selection{Command: c, Args: args}, nil
}

func addSubtree(t *cmd.Tree, name, brief string) *cmd.Tree {
	subtrees = append(subtrees, subtree{name, brief})
	return t.AddSubtree(cmd.TreeDescriptor{Name: name, Brief: brief})
}

// Add a command to the tree 't', whose full command path begins with
// 'prefix'.
func addCommand(t *cmd.Tree, prefix string, c command) {
	cc := c
	cc.path = strings.TrimSpace(prefix + " " + c.path)
	commands = append(commands, &cc)
	t.AddCommand(cmd.CommandDescriptor{
		Name:        c.path,
		Brief:       c.brief,
		Description: c.description,
		Usage:       c.usage,
		Data:        &cc,
	})
}

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "cycle6502"})
	addCommand(root, "", command{
		path:        "help",
		description: "Display help for a command.",
		usage:       "help [<command>]",
		handler:     (*Host).cmdHelp,
	})

	// Breakpoint commands
	bp := addSubtree(root, "breakpoint", "Breakpoint commands")
	addCommand(bp, "breakpoint", command{
		path:        "list",
		brief:       "List breakpoints",
		description: "List all current breakpoints.",
		usage:       "breakpoint list",
		handler:     (*Host).cmdBreakpointList,
	})
	addCommand(bp, "breakpoint", command{
		path:  "add",
		brief: "Add a breakpoint",
		description: "Add a breakpoint at the specified address." +
			" The breakpoint starts enabled.",
		usage:   "breakpoint add <address>",
		handler: (*Host).cmdBreakpointAdd,
	})
	addCommand(bp, "breakpoint", command{
		path:        "remove",
		brief:       "Remove a breakpoint",
		description: "Remove a breakpoint at the specified address.",
		usage:       "breakpoint remove <address>",
		handler:     (*Host).cmdBreakpointRemove,
	})
	addCommand(bp, "breakpoint", command{
		path:        "enable",
		brief:       "Enable a breakpoint",
		description: "Enable a previously added breakpoint.",
		usage:       "breakpoint enable <address>",
		handler:     (*Host).cmdBreakpointEnable,
	})
	addCommand(bp, "breakpoint", command{
		path:  "disable",
		brief: "Disable a breakpoint",
		description: "Disable a previously added breakpoint. This" +
			" prevents the breakpoint from being hit when running the CPU.",
		usage:   "breakpoint disable <address>",
		handler: (*Host).cmdBreakpointDisable,
	})

	// Data breakpoint commands
	db := addSubtree(root, "databreakpoint", "Data breakpoint commands")
	addCommand(db, "databreakpoint", command{
		path:        "list",
		brief:       "List data breakpoints",
		description: "List all current data breakpoints.",
		usage:       "databreakpoint list",
		handler:     (*Host).cmdDataBreakpointList,
	})
	addCommand(db, "databreakpoint", command{
		path:  "add",
		brief: "Add a data breakpoint",
		description: "Add a new data breakpoint at the specified" +
			" memory address. When the CPU stores data at this address, the" +
			" breakpoint will stop the CPU. Optionally, a byte value may be" +
			" specified, and the CPU will stop only when this value is stored.",
		usage:   "databreakpoint add <address> [<value>]",
		handler: (*Host).cmdDataBreakpointAdd,
	})
	addCommand(db, "databreakpoint", command{
		path:        "remove",
		brief:       "Remove a data breakpoint",
		description: "Remove a previously added data breakpoint.",
		usage:       "databreakpoint remove <address>",
		handler:     (*Host).cmdDataBreakpointRemove,
	})
	addCommand(db, "databreakpoint", command{
		path:        "enable",
		brief:       "Enable a data breakpoint",
		description: "Enable a previously added data breakpoint.",
		usage:       "databreakpoint enable <address>",
		handler:     (*Host).cmdDataBreakpointEnable,
	})
	addCommand(db, "databreakpoint", command{
		path:        "disable",
		brief:       "Disable a data breakpoint",
		description: "Disable a previously added data breakpoint.",
		usage:       "databreakpoint disable <address>",
		handler:     (*Host).cmdDataBreakpointDisable,
	})

	addCommand(root, "", command{
		path:  "disassemble",
		brief: "Disassemble code",
		description: "Disassemble machine code starting at the requested" +
			" address. The number of instruction lines to disassemble may be" +
			" specified as an option. If no address is specified, the" +
			" disassembly continues from where the last disassembly left off.",
		usage:   "disassemble [<address>] [<lines>]",
		handler: (*Host).cmdDisassemble,
	})
	addCommand(root, "", command{
		path:        "evaluate",
		brief:       "Evaluate an expression",
		description: "Evaluate a mathematical expression.",
		usage:       "evaluate <expression>",
		handler:     (*Host).cmdEvaluate,
	})
	addCommand(root, "", command{
		path:        "execute",
		brief:       "Execute a script file",
		description: "Load a script file from disk and execute the commands it contains.",
		usage:       "execute <filename>",
		handler:     (*Host).cmdExecute,
	})
	addCommand(root, "", command{
		path:  "instructions",
		brief: "List the variants of an instruction",
		description: "List every opcode implementing the named instruction," +
			" along with its addressing mode, length and base cycle cost." +
			" Undocumented opcodes are marked.",
		usage:   "instructions <name>",
		handler: (*Host).cmdInstructions,
	})

	// Interrupt commands
	in := addSubtree(root, "interrupt", "Interrupt commands")
	addCommand(in, "interrupt", command{
		path:  "irq",
		brief: "Signal a maskable interrupt",
		description: "Signal a maskable interrupt request. The request is" +
			" ignored while the I flag is set.",
		usage:   "interrupt irq",
		handler: (*Host).cmdInterruptIRQ,
	})
	addCommand(in, "interrupt", command{
		path:        "nmi",
		brief:       "Signal a non-maskable interrupt",
		description: "Signal a non-maskable interrupt.",
		usage:       "interrupt nmi",
		handler:     (*Host).cmdInterruptNMI,
	})

	addCommand(root, "", command{
		path:  "load",
		brief: "Load a binary file",
		description: "Load the raw contents of a binary file into the" +
			" emulated system's memory at the specified address, and set" +
			" the program counter to that address.",
		usage:   "load <filename> <address>",
		handler: (*Host).cmdLoad,
	})

	// Memory commands
	me := addSubtree(root, "memory", "Memory commands")
	addCommand(me, "memory", command{
		path:  "dump",
		brief: "Dump memory at address",
		description: "Dump the contents of memory starting from the" +
			" specified address. The number of bytes to dump may be" +
			" specified as an option. If no address is specified, the" +
			" memory dump continues from where the last dump left off.",
		usage:   "memory dump [<address>] [<bytes>]",
		handler: (*Host).cmdMemoryDump,
	})
	addCommand(me, "memory", command{
		path:  "set",
		brief: "Set memory at address",
		description: "Set the contents of memory starting from the specified" +
			" address. The values to assign should be a series of" +
			" space-separated byte values. You may use an expression for each" +
			" byte value.",
		usage:   "memory set <address> <byte> [<byte> ...]",
		handler: (*Host).cmdMemorySet,
	})

	addCommand(root, "", command{
		path:        "quit",
		brief:       "Quit the program",
		description: "Quit the program.",
		usage:       "quit",
		handler:     (*Host).cmdQuit,
	})
	addCommand(root, "", command{
		path:  "register",
		brief: "View or change register values",
		description: "When used without arguments, this command displays the current" +
			" contents of the CPU registers. When used with arguments, this" +
			" command changes the value of a register or one of the CPU's status" +
			" flags. Allowed register names include A, X, Y, PC, SP and PS. Allowed" +
			" status flag names include N (Negative), V (Overflow), D (Decimal)," +
			" I (InterruptDisable), Z (Zero) and C (Carry).",
		usage:   "register [<name> <value>]",
		handler: (*Host).cmdRegister,
	})
	addCommand(root, "", command{
		path:  "reset",
		brief: "Reset the CPU",
		description: "Signal a CPU reset. The stack pointer is decremented by" +
			" three and the I flag is set. If 'vector' is specified, the" +
			" program counter is then loaded from the reset vector at $FFFC.",
		usage:   "reset [vector]",
		handler: (*Host).cmdReset,
	})
	addCommand(root, "", command{
		path:  "run",
		brief: "Run the CPU",
		description: "Run the CPU until a breakpoint is hit, the CPU jams," +
			" or the user types Ctrl-C.",
		usage:   "run [<address>]",
		handler: (*Host).cmdRun,
	})
	addCommand(root, "", command{
		path:  "set",
		brief: "Set a configuration variable",
		description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		usage:   "set [<var> <value>]",
		handler: (*Host).cmdSet,
	})

	// Step commands
	st := addSubtree(root, "step", "Step the debugger")
	addCommand(st, "step", command{
		path:  "in",
		brief: "Step into next instruction",
		description: "Step the CPU by a single instruction. If the" +
			" instruction is a subroutine call, step into the subroutine." +
			" The number of steps may be specified as an option.",
		usage:   "step in [<count>]",
		handler: (*Host).cmdStepIn,
	})
	addCommand(st, "step", command{
		path:  "over",
		brief: "Step over next instruction",
		description: "Step the CPU by a single instruction. If the" +
			" instruction is a subroutine call, step over the subroutine." +
			" The number of steps may be specified as an option.",
		usage:   "step over [<count>]",
		handler: (*Host).cmdStepOver,
	})

	addCommand(root, "", command{
		path:  "tick",
		brief: "Advance the CPU clock",
		description: "Advance the CPU by a number of clock cycles. An" +
			" instruction executes entirely on the first cycle it is" +
			" given; the remaining cycles of its budget are idle.",
		usage:   "tick [<cycles>]",
		handler: (*Host).cmdTick,
	})
	addCommand(root, "", command{
		path:  "vectors",
		brief: "Run a conformance test file",
		description: "Run every test case in a SingleStepTests JSON file" +
			" (optionally gzip-compressed) and report the results. The" +
			" host's own CPU and memory are not affected.",
		usage:   "vectors <filename>",
		handler: (*Host).cmdVectors,
	})

	// Add command shortcuts.
	root.AddShortcut("b", "breakpoint")
	root.AddShortcut("bp", "breakpoint")
	root.AddShortcut("ba", "breakpoint add")
	root.AddShortcut("br", "breakpoint remove")
	root.AddShortcut("bl", "breakpoint list")
	root.AddShortcut("be", "breakpoint enable")
	root.AddShortcut("bd", "breakpoint disable")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("db", "databreakpoint")
	root.AddShortcut("dbp", "databreakpoint")
	root.AddShortcut("dbl", "databreakpoint list")
	root.AddShortcut("dba", "databreakpoint add")
	root.AddShortcut("dbr", "databreakpoint remove")
	root.AddShortcut("dbe", "databreakpoint enable")
	root.AddShortcut("dbd", "databreakpoint disable")
	root.AddShortcut("e", "evaluate")
	root.AddShortcut("irq", "interrupt irq")
	root.AddShortcut("nmi", "interrupt nmi")
	root.AddShortcut("m", "memory dump")
	root.AddShortcut("ms", "memory set")
	root.AddShortcut("r", "register")
	root.AddShortcut("s", "step over")
	root.AddShortcut("si", "step in")
	root.AddShortcut("t", "tick")
	root.AddShortcut("?", "help")
	root.AddShortcut(".", "register")

	cmds = root
}
