// cmd/graphest/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"graphest/internal/program"
	"graphest/internal/session"
)

// Exit codes per spec §6: 0 success (possibly with undecided), 1
// parse/compile error, 2 runtime error, 130 cancelled.
const (
	exitOK       = 0
	exitParse    = 1
	exitRuntime  = 2
	exitCanceled = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "graph: %v\n", err)
		showUsage()
		return exitParse
	}
	if opts.showHelp {
		showUsage()
		return exitOK
	}

	prog, err := session.Compile(opts.relation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "graph: %v\n", err)
		return exitParse
	}
	if opts.modeSet {
		want := program.ModeCartesian
		if opts.mode == "polar" {
			want = program.ModePolar
		}
		if prog.Mode != want {
			fmt.Fprintf(os.Stderr, "graph: relation uses %s variables but -m %s was given\n", prog.Mode, opts.mode)
			return exitParse
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := session.Config{
		Bounds:   session.Bounds{X0: opts.x0, X1: opts.x1, Y0: opts.y0, Y1: opts.y1},
		Width:    opts.width,
		Height:   opts.height,
		MaxLevel: 15,
		Deadline: opts.timeout,
	}
	// §6's --mem is advisory for this reference front-end: a ≤8-component
	// interval set and a bounded work queue keep per-item memory small and
	// roughly constant, so there is no allocator knob here to wire it to. It
	// is accepted and parsed for CLI compatibility but otherwise unused.

	sess := session.Plot(prog, cfg)
	defer sess.Close()

	interactive := isatty.IsTerminal(os.Stderr.Fd())
	start := time.Now()
	for {
		if ctx.Err() != nil {
			sess.Cancel()
			if interactive {
				fmt.Fprintln(os.Stderr)
			}
			fmt.Fprintln(os.Stderr, "graph: cancelled")
			return exitCanceled
		}

		progress, stepErr := sess.Step(10000)
		if interactive {
			fmt.Fprintf(os.Stderr, "\r%s / %s pixels decided (%s elapsed)  ",
				humanize.Comma(int64(progress.DonePixels)),
				humanize.Comma(int64(progress.TotalPixels)),
				progress.Elapsed.Round(time.Millisecond))
		}
		if stepErr != nil {
			if interactive {
				fmt.Fprintln(os.Stderr)
			}
			fmt.Fprintf(os.Stderr, "graph: %v\n", stepErr)
			return exitRuntime
		}
		if sess.Done() {
			break
		}
		if opts.timeout > 0 && time.Since(start) >= opts.timeout {
			break // deadline passed: write the image with its undecided pixels
		}
	}
	if interactive {
		fmt.Fprintln(os.Stderr)
	}

	png, err := sess.Image().EncodePNG()
	if err != nil {
		fmt.Fprintf(os.Stderr, "graph: encode: %v\n", err)
		return exitRuntime
	}
	if err := os.WriteFile(opts.output, png, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "graph: write %s: %v\n", opts.output, err)
		return exitRuntime
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	fmt.Printf("graph: wrote %s in %s\n", opts.output, elapsed)
	return exitOK
}

type options struct {
	relation string
	x0, x1   float64
	y0, y1   float64
	width    int
	height   int
	output   string
	memMB    int
	timeout  time.Duration
	mode     string
	modeSet  bool
	showHelp bool
}

func parseArgs(args []string) (options, error) {
	opts := options{x0: -10, x1: 10, y0: -10, y1: 10, width: 512, height: 512, output: "out.png"}
	if len(args) == 0 {
		return opts, fmt.Errorf("missing <relation> argument")
	}

	relationSet := false
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "-h" || a == "--help" {
			opts.showHelp = true
			return opts, nil
		}
		if a[0] != '-' {
			if relationSet {
				return opts, fmt.Errorf("unexpected argument %q", a)
			}
			opts.relation = a
			relationSet = true
			continue
		}
		switch a {
		case "-b":
			if i+4 >= len(args) {
				return opts, fmt.Errorf("-b requires 4 arguments: x0 x1 y0 y1")
			}
			var err error
			if opts.x0, err = strconv.ParseFloat(args[i+1], 64); err != nil {
				return opts, fmt.Errorf("-b x0: %w", err)
			}
			if opts.x1, err = strconv.ParseFloat(args[i+2], 64); err != nil {
				return opts, fmt.Errorf("-b x1: %w", err)
			}
			if opts.y0, err = strconv.ParseFloat(args[i+3], 64); err != nil {
				return opts, fmt.Errorf("-b y0: %w", err)
			}
			if opts.y1, err = strconv.ParseFloat(args[i+4], 64); err != nil {
				return opts, fmt.Errorf("-b y1: %w", err)
			}
			i += 4
		case "-s":
			if i+2 >= len(args) {
				return opts, fmt.Errorf("-s requires 2 arguments: W H")
			}
			var err error
			if opts.width, err = strconv.Atoi(args[i+1]); err != nil {
				return opts, fmt.Errorf("-s W: %w", err)
			}
			if opts.height, err = strconv.Atoi(args[i+2]); err != nil {
				return opts, fmt.Errorf("-s H: %w", err)
			}
			i += 2
		case "-o":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("-o requires a path")
			}
			opts.output = args[i+1]
			i++
		case "--mem":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--mem requires a number")
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				return opts, fmt.Errorf("--mem: %w", err)
			}
			opts.memMB = n
			i++
		case "--timeout":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--timeout requires milliseconds")
			}
			ms, err := strconv.Atoi(args[i+1])
			if err != nil {
				return opts, fmt.Errorf("--timeout: %w", err)
			}
			opts.timeout = time.Duration(ms) * time.Millisecond
			i++
		case "-m":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("-m requires cartesian or polar")
			}
			opts.mode = args[i+1]
			if opts.mode != "cartesian" && opts.mode != "polar" {
				return opts, fmt.Errorf("-m must be cartesian or polar, got %q", opts.mode)
			}
			opts.modeSet = true
			i++
		default:
			return opts, fmt.Errorf("unknown flag %q", a)
		}
	}
	if !relationSet {
		return opts, fmt.Errorf("missing <relation> argument")
	}
	return opts, nil
}

func showUsage() {
	fmt.Println(`graph - plot a relation as a three-state raster image

Usage:
  graph "<relation>" [-b x0 x1 y0 y1] [-s W H] [-o path] [--mem N] [--timeout T] [-m cartesian|polar]

Examples:
  graph "y = sin(x)" -b -6.28 6.28 -2 2 -s 512 256 -o sine.png
  graph "r = 1" -m polar -o circle.png

Exit codes: 0 success, 1 parse/compile error, 2 runtime error, 130 cancelled.`)
}
