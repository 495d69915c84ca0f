package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain registers "graph" as a testscript command backed directly by
// run(), so the golden-file scripts below exercise the real argument
// parser, compiler, and session loop rather than a shell-spawned binary.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"graph": func() int { return run(os.Args[1:]) },
	}))
}

func TestGraphCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
