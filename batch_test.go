package slidedeck

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestExportBatch(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	pool := NewExporterPool(2, func() DeckStage {
		created.Add(1)
		return newFakeStage(t, 2)
	})
	defer pool.Close()

	opts := []Option{WithSettleDelay(0), WithSuccessLinger(0), WithRasterSpec(testRaster)}
	jobs := make([]BatchJob, 5)
	sinks := make([]*MemorySink, len(jobs))
	for i := range jobs {
		sinks[i] = &MemorySink{}
		slides := 2
		if i == 3 {
			slides = 7 // does not match what the stage loads
		}
		jobs[i] = BatchJob{
			Name:       fmt.Sprintf("deck-%d", i),
			Deck:       &Deck{Slides: slides},
			Assemblers: []Assembler{&fakeAssembler{kind: KindPDF}},
			Sink:       sinks[i],
			Options:    opts,
		}
	}

	results := ExportBatch(context.Background(), pool, jobs)
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}
	for i, r := range results {
		if r.Name != jobs[i].Name {
			t.Errorf("result %d name = %q, want %q", i, r.Name, jobs[i].Name)
		}
		if i == 3 {
			if !errors.Is(r.Err, ErrAssembly) {
				t.Errorf("result 3 error = %v, want ErrAssembly", r.Err)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("result %d error = %v", i, r.Err)
		}
		if len(r.Results) != 1 || sinks[i].Saves() != 1 {
			t.Errorf("result %d: %d exports, %d saves, want 1 each", i, len(r.Results), sinks[i].Saves())
		}
	}
	if n := created.Load(); n < 1 || n > 2 {
		t.Errorf("created %d stages, want 1-2", n)
	}
}

func TestExportBatch_ClosedPool(t *testing.T) {
	t.Parallel()

	pool := NewExporterPool(1, func() DeckStage { return newFakeStage(t, 1) })
	_ = pool.Close()

	results := ExportBatch(context.Background(), pool, []BatchJob{{Name: "a", Deck: &Deck{Slides: 1}}})
	if !errors.Is(results[0].Err, errPoolClosed) {
		t.Errorf("error = %v, want errPoolClosed", results[0].Err)
	}
}

func TestExportBatch_DiscardsBrokenStage(t *testing.T) {
	t.Parallel()

	var stages []*fakeStage
	pool := NewExporterPool(1, func() DeckStage {
		s := newFakeStage(t, 2)
		if len(stages) == 0 {
			s.loadErr = fmt.Errorf("%w: chrome exited", ErrBrowserConnect)
		}
		stages = append(stages, s)
		return s
	})
	defer pool.Close()

	opts := []Option{WithSettleDelay(0), WithSuccessLinger(0), WithRasterSpec(testRaster)}
	sink := &MemorySink{}
	jobs := []BatchJob{
		{Name: "first", Deck: &Deck{Slides: 2}, Assemblers: []Assembler{&fakeAssembler{kind: KindPDF}}, Sink: sink, Options: opts},
		{Name: "second", Deck: &Deck{Slides: 2}, Assemblers: []Assembler{&fakeAssembler{kind: KindPDF}}, Sink: sink, Options: opts},
	}

	results := ExportBatch(context.Background(), pool, jobs)
	if !errors.Is(results[0].Err, ErrBrowserConnect) {
		t.Errorf("first error = %v, want ErrBrowserConnect", results[0].Err)
	}
	if results[1].Err != nil {
		t.Errorf("second error = %v, want a fresh stage to succeed", results[1].Err)
	}
	if len(stages) != 2 {
		t.Fatalf("created %d stages, want 2", len(stages))
	}
	if !stages[0].closed || stages[1].closed {
		t.Errorf("closed = [%v %v], want only the broken stage closed", stages[0].closed, stages[1].closed)
	}
	if sink.Saves() != 1 {
		t.Errorf("saves = %d, want 1", sink.Saves())
	}
}
