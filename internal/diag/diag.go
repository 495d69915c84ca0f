// Package diag implements the engine's debug diagnostics: a small toggle-able
// logger following the teacher's ad hoc fmt/log-to-stderr register (spec
// SPEC_FULL.md AMBIENT STACK: "no structured logging library in the pack
// for this concern"), plus a verbose-mode structural dump of a compiled
// relation program via kr/pretty.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/kr/pretty"

	"graphest/internal/program"
)

// Logger is the engine's verbosity-gated diagnostic sink. Out must be set
// before use (the zero value has no writer); Default supplies stderr.
type Logger struct {
	Out     io.Writer
	Verbose bool
}

// Default returns a Logger writing to stderr with verbose output disabled.
func Default() *Logger { return &Logger{Out: os.Stderr} }

// Printf writes a message unconditionally (errors, warnings).
func (l *Logger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.Out, format+"\n", args...)
}

// Debugf writes a message only when Verbose is set.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if !l.Verbose {
		return
	}
	fmt.Fprintf(l.Out, "[debug] "+format+"\n", args...)
}

// DumpProgram writes a kr/pretty structural dump of p's instructions
// alongside its human-readable disassembly, for verbose sessions
// inspecting what the normalizer produced (spec §4.2).
func (l *Logger) DumpProgram(p *program.Program) {
	if !l.Verbose {
		return
	}
	fmt.Fprintln(l.Out, "[debug] disassembly:")
	fmt.Fprint(l.Out, p.Disassemble())
	fmt.Fprintln(l.Out, "[debug] program struct:")
	fmt.Fprintln(l.Out, pretty.Sprint(p.Instructions))
}
