// Package search implements spec §4.5's subdivision search: a priority
// queue of work items refined by repeated evaluation and bisection, sharded
// across workers per spec §5's "W per-worker queues with work-stealing"
// concurrency model.
package search

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"graphest/internal/box"
	"graphest/internal/evaluator"
	"graphest/internal/image"
	"graphest/internal/program"
	"graphest/internal/sink"
	"graphest/internal/ternary"
	"graphest/internal/throttle"
)

// WorkItem is one unit of the search: a pixel's box at some refinement
// level, plus a monotonic sequence number used only to break priority ties
// deterministically (spec §9: "any fair ordering... preserves all
// invariants").
type WorkItem struct {
	Col, Row int
	B        box.Box
	seq      uint64
}

// less implements spec §4.5's heuristic ("coarser level first"); ties are
// broken by arrival order so a single-worker run is deterministic (spec §8's
// Determinism property).
func less(a, b WorkItem) bool {
	if a.B.Level != b.B.Level {
		return a.B.Level < b.B.Level
	}
	return a.seq < b.seq
}

// shard is one worker-local slice of the global priority queue, kept
// sorted ascending by less() so the highest-priority item is always at
// index 0.
type shard struct {
	mu    sync.Mutex
	items []WorkItem
}

func (s *shard) push(item WorkItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := sort.Search(len(s.items), func(i int) bool { return less(item, s.items[i]) })
	s.items = slices.Insert(s.items, idx, item)
}

func (s *shard) pop() (WorkItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return WorkItem{}, false
	}
	item := s.items[0]
	s.items = slices.Delete(s.items, 0, 1)
	return item, true
}

func (s *shard) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Config configures a Searcher. Zero values pick sane defaults.
type Config struct {
	MaxLevel     int       // spec §4.5's L_max; default 15
	Workers      int       // default 1
	PublishEvery int       // spec §4.5's N; default 10000, a negative value disables publication
	PublishHz    int       // cap on sink publishes per second; default 5
	Deadline     time.Time // spec §5's wall-clock deadline; zero means none
	Sink         sink.Sink // spec §6's Config.image_sink; nil is equivalent to sink.Discard{}
}

// Searcher drives spec §4.5's loop to completion or budget exhaustion over
// one compiled program and one Image3, sharding work across Config.Workers
// goroutines (spec §5).
type Searcher struct {
	grid     box.Grid
	prog     *program.Program
	img      *image.Image3
	maxLevel int
	shards   []*shard
	seq      uint64
	deadline time.Time
	sink     sink.Sink
	publishN int
	limiter  *throttle.RateLimiter
	n        uint64 // total items processed this run, for publish cadence
}

// New seeds a Searcher with every pixel's level-0 box as one work item
// (spec §4.5: "each image pixel starts as Undecided with a 2×2 subpixel
// bitmap all set" — here represented as Image3's one-pending-unit start
// state, see internal/image).
func New(prog *program.Program, grid box.Grid, img *image.Image3, cfg Config) *Searcher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	maxLevel := cfg.MaxLevel
	if maxLevel <= 0 {
		maxLevel = 15
	}
	publishN := cfg.PublishEvery
	if cfg.PublishEvery == 0 {
		publishN = 10000
	}
	publishHz := cfg.PublishHz
	if publishHz <= 0 {
		publishHz = 5
	}
	s := &Searcher{
		grid:     grid,
		prog:     prog,
		img:      img,
		maxLevel: maxLevel,
		shards:   make([]*shard, workers),
		deadline: cfg.Deadline,
		sink:     cfg.Sink,
		publishN: publishN,
	}
	if s.sink != nil {
		s.limiter = throttle.NewRateLimiter(publishHz, 1)
	}
	for i := range s.shards {
		s.shards[i] = &shard{}
	}
	for row := 0; row < grid.H; row++ {
		for col := 0; col < grid.W; col++ {
			s.push(WorkItem{Col: col, Row: row, B: grid.PixelBox(col, row)})
		}
	}
	return s
}

func (s *Searcher) push(item WorkItem) {
	item.seq = atomic.AddUint64(&s.seq, 1)
	idx := item.seq % uint64(len(s.shards))
	s.shards[idx].push(item)
}

// pop returns the next item for worker idx, stealing from another shard if
// its own is empty (spec §5's "shard... with work-stealing").
func (s *Searcher) pop(idx int) (WorkItem, bool) {
	if item, ok := s.shards[idx].pop(); ok {
		return item, true
	}
	for i := 1; i < len(s.shards); i++ {
		victim := (idx + i) % len(s.shards)
		if item, ok := s.shards[victim].pop(); ok {
			return item, true
		}
	}
	return WorkItem{}, false
}

// Close releases the searcher's publish-rate limiter, if any. Safe to call
// on a Searcher with no configured sink.
func (s *Searcher) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Drained reports whether every shard's queue is empty, i.e. every pixel
// has either reached a terminal state or bottomed out at L_max (spec §4.5).
func (s *Searcher) Drained() bool {
	for _, sh := range s.shards {
		if sh.len() > 0 {
			return false
		}
	}
	return true
}

// Step runs the search until budget work items have been processed, the
// queue drains, ctx is cancelled, or the configured deadline passes — spec
// §4.5's "while the queue is non-empty and the work budget is not
// exhausted" loop, chunked so Session.step() (spec §6) can report progress
// between calls. It returns the number of items actually processed.
func (s *Searcher) Step(ctx context.Context, budget int) (processed int, err error) {
	if budget <= 0 {
		return 0, nil
	}
	remaining := int64(budget)
	var done int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < len(s.shards); w++ {
		w := w
		g.Go(func() error {
			return s.worker(gctx, w, &remaining, &done)
		})
	}
	err = g.Wait()
	if err == context.Canceled || err == context.DeadlineExceeded {
		err = nil // cooperative cancellation is not a search failure (spec §5)
	}
	return int(atomic.LoadInt64(&done)), err
}

func (s *Searcher) worker(ctx context.Context, idx int, remaining, done *int64) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if !s.deadline.IsZero() && time.Now().After(s.deadline) {
			return nil
		}
		if atomic.AddInt64(remaining, -1) < 0 {
			return nil
		}
		item, ok := s.pop(idx)
		if !ok {
			return nil
		}
		s.process(item)
		atomic.AddInt64(done, 1)
		n := atomic.AddUint64(&s.n, 1)
		if s.sink != nil && s.publishN > 0 && n%uint64(s.publishN) == 0 && s.limiter.TryAcquire() {
			s.sink.Publish(ctx, s.img) //nolint:errcheck // a stalled viewer must never abort the search (spec §5)
		}
	}
}

// process implements spec §4.5's steps 2-5 for a single work item.
func (s *Searcher) process(item WorkItem) {
	t, err := evaluator.Eval(s.prog, item.B)
	if err != nil {
		// InternalError on one box degrades it to UU and forces further
		// subdivision (spec §7), never aborts the run.
		t = ternary.UU
	}
	switch t {
	case ternary.TT:
		s.img.MarkSolution(item.Col, item.Row)
		s.img.ResolveLeaf(item.Col, item.Row)
	case ternary.FF:
		s.img.ResolveLeaf(item.Col, item.Row)
	default: // ternary.UU (Eval never returns TF: it is upgraded to TT, see evaluator.resultOf)
		if item.B.Level < s.maxLevel {
			s.img.Split(item.Col, item.Row)
			for _, child := range item.B.Bisect() {
				s.push(WorkItem{Col: item.Col, Row: item.Row, B: child})
			}
		} else {
			s.img.ResolveUndecidedLeaf(item.Col, item.Row)
		}
	}
}
