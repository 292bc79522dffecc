package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/remeh/sizedwaitgroup"

	"kartvid/internal/kv"
	"kartvid/internal/logging"
)

// Job is one source of a batch.
type Job struct {
	Name string
	Open func(ctx context.Context) (Source, error)
}

// OutputFunc builds the emitter for one source writing to w. It may write a
// header for src before returning.
type OutputFunc func(w io.Writer, src Source) (kv.Emitter, error)

// Batch runs several jobs with bounded parallelism.
type Batch struct {
	Workers int
	// Options is shared by every job; its Emitter is replaced by Output.
	Options Options
	Output  OutputFunc
	Writer  io.Writer
}

// Run processes jobs and returns one result per job in input order. A
// failing job does not stop the others; all failures are joined into the
// returned error.
func (b Batch) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	workers := max(b.Workers, 1)
	results := make([]Result, len(jobs))
	errs := make([]error, len(jobs))

	if workers == 1 || len(jobs) <= 1 {
		for i, job := range jobs {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			results[i], errs[i] = b.runJob(ctx, job, b.Writer)
		}
		return results, errors.Join(errs...)
	}

	flusher := newOrderedFlusher(b.Writer, len(jobs))
	swg := sizedwaitgroup.New(workers)
	for i, job := range jobs {
		if err := swg.AddWithContext(ctx); err != nil {
			errs[i] = err
			flusher.done(i, nil)
			continue
		}
		go func(i int, job Job) {
			defer swg.Done()
			var buf bytes.Buffer
			results[i], errs[i] = b.runJob(ctx, job, &buf)
			flusher.done(i, buf.Bytes())
		}(i, job)
	}
	swg.Wait()
	if err := flusher.err(); err != nil {
		errs = append(errs, err)
	}
	return results, errors.Join(errs...)
}

func (b Batch) runJob(ctx context.Context, job Job, w io.Writer) (Result, error) {
	src, err := job.Open(ctx)
	if err != nil {
		logging.ErrorWithContext(b.Options.Logger, "source could not be opened", logging.EventSourceOpenFailed,
			logging.String(logging.FieldSource, job.Name),
			logging.Error(err),
		)
		return Result{Source: job.Name}, fmt.Errorf("open %s: %w", job.Name, err)
	}
	emitter, err := b.Output(w, src)
	if err != nil {
		return Result{Source: job.Name}, fmt.Errorf("output for %s: %w", job.Name, err)
	}
	opts := b.Options
	opts.Emitter = emitter
	return Run(ctx, job.Name, src, opts)
}

// orderedFlusher writes per-job buffers in job order as soon as every
// earlier job has finished.
type orderedFlusher struct {
	mu       sync.Mutex
	w        io.Writer
	pending  [][]byte
	finished []bool
	next     int
	writeErr error
}

func newOrderedFlusher(w io.Writer, n int) *orderedFlusher {
	return &orderedFlusher{w: w, pending: make([][]byte, n), finished: make([]bool, n)}
}

func (f *orderedFlusher) done(i int, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[i] = data
	f.finished[i] = true
	for f.next < len(f.finished) && f.finished[f.next] {
		if f.writeErr == nil && len(f.pending[f.next]) > 0 {
			if _, err := f.w.Write(f.pending[f.next]); err != nil {
				f.writeErr = fmt.Errorf("write output: %w", err)
			}
		}
		f.pending[f.next] = nil
		f.next++
	}
}

func (f *orderedFlusher) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeErr
}
