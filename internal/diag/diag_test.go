package diag

import (
	"bytes"
	"strings"
	"testing"

	"graphest/internal/compiler"
)

func TestPrintfAlwaysWrites(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Out: &buf, Verbose: false}
	l.Printf("hello %s", "world")
	if got := buf.String(); got != "hello world\n" {
		t.Errorf("Printf output = %q", got)
	}
}

func TestDebugfGatedOnVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Out: &buf, Verbose: false}
	l.Debugf("should not appear")
	if buf.Len() != 0 {
		t.Errorf("Debugf wrote output with Verbose=false: %q", buf.String())
	}

	buf.Reset()
	l.Verbose = true
	l.Debugf("should appear: %d", 42)
	if got := buf.String(); !strings.Contains(got, "should appear: 42") {
		t.Errorf("Debugf output = %q", got)
	}
}

func TestDumpProgramGatedOnVerboseAndIncludesDisassembly(t *testing.T) {
	p, err := compiler.Compile("y = x")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var quiet bytes.Buffer
	l := &Logger{Out: &quiet, Verbose: false}
	l.DumpProgram(p)
	if quiet.Len() != 0 {
		t.Errorf("DumpProgram wrote output with Verbose=false")
	}

	var verbose bytes.Buffer
	l.Out = &verbose
	l.Verbose = true
	l.DumpProgram(p)
	if got := verbose.String(); !strings.Contains(got, "mode=cartesian") {
		t.Errorf("DumpProgram output missing disassembly: %q", got)
	}
}

func TestDefaultWritesToStderrQuietly(t *testing.T) {
	l := Default()
	if l.Verbose {
		t.Errorf("Default() should start with Verbose=false")
	}
	if l.Out == nil {
		t.Errorf("Default() should set an output writer")
	}
}
