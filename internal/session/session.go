// Package session implements spec §6's Engine API: compile, plot, and the
// resulting Session's step/cancel/image operations.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"graphest/internal/box"
	"graphest/internal/compiler"
	"graphest/internal/image"
	"graphest/internal/program"
	"graphest/internal/search"
	"graphest/internal/sink"
)

// Bounds is the Cartesian/polar plotting window, spec §6's
// Config.bounds:(x0,x1,y0,y1).
type Bounds struct {
	X0, X1, Y0, Y1 float64
}

// Config carries spec §6's Config: bounds, pixel grid, max_level, deadline
// and the output sink, plus the search's worker count. There is no mode
// field; the mode comes from the compiled program.
type Config struct {
	Bounds   Bounds
	Width    int
	Height   int
	MaxLevel int
	Deadline time.Duration // 0 means no deadline
	Workers  int
	Sink     sink.Sink
}

// Progress reports a Session's advancement, spec §6's
// step() → Progress{done_pixels, total_pixels, elapsed}.
type Progress struct {
	DonePixels  int
	TotalPixels int
	Elapsed     time.Duration
}

// Compile parses and normalizes relation text into an immutable program
// (spec §6: compile(text) → Program | Error). Parse/compile errors are
// fatal and are returned before any plotting begins (spec §4.5, §7).
func Compile(text string) (*program.Program, error) {
	return compiler.Compile(text)
}

// Session is one in-progress or completed plot (spec §3's Lifecycles: a
// session owns exactly one Image3 and one Searcher for its entire life).
type Session struct {
	ID      uuid.UUID
	cfg     Config
	img     *image.Image3
	s       *search.Searcher
	start   time.Time
	mu      sync.Mutex
	cancel  context.CancelFunc
	ctx     context.Context
	elapsed time.Duration
}

// Plot starts a new session evaluating prog over cfg's window and pixel
// grid (spec §6: plot(program, Config) → Session).
func Plot(prog *program.Program, cfg Config) *Session {
	grid := box.Grid{X0: cfg.Bounds.X0, X1: cfg.Bounds.X1, Y0: cfg.Bounds.Y0, Y1: cfg.Bounds.Y1, W: cfg.Width, H: cfg.Height}
	img := image.New(cfg.Width, cfg.Height)

	var deadline time.Time
	if cfg.Deadline > 0 {
		deadline = time.Now().Add(cfg.Deadline)
	}

	s := search.New(prog, grid, img, search.Config{
		MaxLevel:     cfg.MaxLevel,
		Workers:      cfg.Workers,
		PublishEvery: 10000,
		Deadline:     deadline,
		Sink:         cfg.Sink,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:     uuid.New(),
		cfg:    cfg,
		img:    img,
		s:      s,
		start:  time.Now(),
		cancel: cancel,
		ctx:    ctx,
	}
}

// Step advances the search by up to budget work items (spec §4.5's
// batching) and reports progress. Budget exhaustion is not an error (spec
// §4.5, §7); a caller drives the session to completion by calling Step
// repeatedly until Done reports true or the session is cancelled.
// DonePixels counts solution and empty pixels only, so pixels left
// undecided at L_max keep it below TotalPixels even after Done.
func (sess *Session) Step(budget int) (Progress, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	_, err := sess.s.Step(sess.ctx, budget)
	sess.elapsed = time.Since(sess.start)

	solution, empty, undecided := sess.img.Counts()
	total := solution + empty + undecided
	return Progress{
		DonePixels:  solution + empty,
		TotalPixels: total,
		Elapsed:     sess.elapsed,
	}, err
}

// Cancel stops the session cooperatively (spec §5: "workers check a shared
// flag between items"). Surviving pixels retain their last ternary state
// (spec §4.5).
func (sess *Session) Cancel() {
	sess.cancel()
	sess.s.Close()
}

// Image returns the session's current Image3 snapshot. Safe to call
// concurrently with Step since every pixel transition is atomic.
func (sess *Session) Image() *image.Image3 { return sess.img }

// Done reports whether every pixel has reached a terminal state or
// exhausted its subdivision budget at L_max.
func (sess *Session) Done() bool { return sess.s.Drained() }

// Close releases the session's background resources (its publish-rate
// limiter). Call once the caller is done driving Step, whether the session
// finished, was cancelled, or the caller simply gave up.
func (sess *Session) Close() { sess.s.Close() }
