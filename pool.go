package slidedeck

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// DeckStage is a Stage that can load a deck and capture its slides.
// BrowserStage is the production implementation.
type DeckStage interface {
	Stage
	Rasterizer
	Load(ctx context.Context, deck *Deck) (int, error)
	Close() error
}

var _ DeckStage = (*BrowserStage)(nil)

// ExportDeck loads deck into stage and runs one export job per assembler,
// in order, saving each artifact to sink. It stops at the first failure.
func ExportDeck(ctx context.Context, stage DeckStage, deck *Deck, assemblers []Assembler, sink Sink, opts ...Option) ([]*ExportResult, error) {
	n, err := stage.Load(ctx, deck)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if n != deck.Slides {
		return nil, fmt.Errorf("%w: %w: page has %d slides, deck has %d", ErrExportFailed, ErrAssembly, n, deck.Slides)
	}

	p := NewPresentation(n, stage)
	exp := NewExporter(stage, opts...)
	results := make([]*ExportResult, 0, len(assemblers))
	for _, a := range assemblers {
		res, err := exp.Export(ctx, p, a, sink)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// ExporterPool manages browser-backed stages for exporting several decks
// in parallel. Each stage owns its own browser. Stages are created lazily
// on first acquire to avoid startup delay.
type ExporterPool struct {
	size    int
	newFn   func() DeckStage
	stages  []DeckStage
	sem     chan DeckStage
	mu      sync.Mutex
	created int
	closed  bool
}

// NewExporterPool creates a pool with capacity for n stages built by newFn.
// A nil newFn creates BrowserStages with default settings.
func NewExporterPool(n int, newFn func() DeckStage) *ExporterPool {
	if n < 1 {
		n = 1
	}
	if newFn == nil {
		newFn = func() DeckStage { return NewBrowserStage() }
	}
	return &ExporterPool{
		size:   n,
		newFn:  newFn,
		stages: make([]DeckStage, 0, n),
		sem:    make(chan DeckStage, n),
	}
}

// Acquire gets a stage from the pool, creating one if needed.
// Blocks until a stage is free or ctx is done.
func (p *ExporterPool) Acquire(ctx context.Context) (DeckStage, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errPoolClosed
	}
	select {
	case s := <-p.sem:
		p.mu.Unlock()
		return s, nil
	default:
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		s := p.newFn()

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			_ = s.Close()
			return nil, errPoolClosed
		}
		p.stages = append(p.stages, s)
		return s, nil
	}
	p.mu.Unlock()

	select {
	case s, ok := <-p.sem:
		if !ok {
			return nil, errPoolClosed
		}
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a stage to the pool. The channel holds one slot per
// stage, so the send never blocks.
func (p *ExporterPool) Release(s DeckStage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.sem <- s:
	default:
	}
}

// Discard closes a broken stage and puts a fresh one in its slot, so the
// next Acquire starts a new browser instead of reusing a dead one.
func (p *ExporterPool) Discard(s DeckStage) error {
	err := s.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, st := range p.stages {
		if st == s {
			p.stages = append(p.stages[:i], p.stages[i+1:]...)
			break
		}
	}
	if p.closed {
		return err
	}
	fresh := p.newFn()
	p.stages = append(p.stages, fresh)
	select {
	case p.sem <- fresh:
	default:
	}
	return err
}

// brokenStage reports whether err means the stage's browser or page is
// unusable for later decks.
func brokenStage(err error) bool {
	return errors.Is(err, ErrBrowserConnect) || errors.Is(err, ErrPageCreate) || errors.Is(err, ErrPageLoad)
}

// Close shuts down every stage the pool created.
func (p *ExporterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	stages := p.stages
	p.mu.Unlock()

	var errs []error
	for _, s := range stages {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ExporterPool) Size() int {
	return p.size
}

var errPoolClosed = errors.New("exporter pool closed")

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is container-aware once automaxprocs has run.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
