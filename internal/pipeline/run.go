package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"golang.org/x/time/rate"

	"kartvid/internal/emit"
	"kartvid/internal/kv"
	"kartvid/internal/logging"
	"kartvid/internal/masks"
	"kartvid/internal/racedb"
	"kartvid/internal/video"
)

// unknownProgressEvery throttles progress logs for sources of unknown length.
const unknownProgressEvery = 10 * time.Second

// Source delivers the frames of one video or frame directory.
type Source interface {
	// FrameCount returns the expected number of frames, or 0 when unknown.
	FrameCount() int64
	Frames(ctx context.Context, fn video.FrameFunc) (int, error)
}

// Options configures a run.
type Options struct {
	Catalog *masks.Catalog
	Params  kv.Params
	Emitter kv.Emitter
	// FrameWriter, when set, stores the frame behind every emitted state.
	FrameWriter kv.FrameWriter
	// Store, when set, records the run and its events.
	Store  *racedb.Store
	Logger *slog.Logger
}

// Result describes a finished run.
type Result struct {
	Source  string
	RunID   string
	Decoded int
	Stats   kv.Stats
	Elapsed time.Duration
}

// Summary renders the run counters on one line.
func (r Result) Summary() string {
	return fmt.Sprintf("%s: %s frames, %s emitted, %d races (%d finished, %d aborted) in %s",
		r.Source,
		humanize.Comma(int64(r.Stats.Frames)),
		humanize.Comma(int64(r.Stats.Emitted)),
		r.Stats.Races,
		r.Stats.Finished,
		r.Stats.Aborted,
		durafmt.Parse(r.Elapsed.Round(time.Millisecond)).LimitFirstN(2).String(),
	)
}

// Run processes every frame of src, naming it name in emitted records.
func Run(ctx context.Context, name string, src Source, opts Options) (Result, error) {
	if opts.Catalog == nil {
		return Result{}, fmt.Errorf("run %s: no mask catalog", name)
	}
	if opts.Emitter == nil {
		return Result{}, fmt.Errorf("run %s: no emitter", name)
	}
	started := time.Now()
	res := Result{Source: name}

	emitter := opts.Emitter
	if opts.Store != nil {
		run, err := opts.Store.StartRun(ctx, name)
		if err != nil {
			return res, fmt.Errorf("run %s: %w", name, err)
		}
		res.RunID = run.ID
		emitter = emit.Multi(emitter, emit.NewStoreEmitter(ctx, opts.Store, run.ID))
	} else {
		res.RunID = uuid.NewString()
	}

	logger := logging.NewComponentLogger(opts.Logger, "pipeline").With(
		logging.String(logging.FieldRunID, res.RunID),
		logging.String(logging.FieldSource, name),
	)
	vcOpts := []kv.Option{kv.WithLogger(logger)}
	if opts.FrameWriter != nil {
		vcOpts = append(vcOpts, kv.WithFrameWriter(opts.FrameWriter))
	}
	vc := kv.NewVideoContext(opts.Catalog, opts.Params, emitter, vcOpts...)

	total := src.FrameCount()
	logger.Info("processing source", logging.Int64("expected_frames", total))
	progress := newProgress(logger, name, total)

	decoded, err := src.Frames(ctx, func(f video.Frame) error {
		if err := vc.Frame(name, f.Index, f.TimeMs, f.Image); err != nil {
			return err
		}
		progress.frame(f.Index)
		return ctx.Err()
	})
	res.Decoded = decoded
	res.Stats = vc.Finish(name)
	res.Elapsed = time.Since(started)

	if opts.Store != nil {
		totals := racedb.RunTotals{
			Frames:        res.Stats.Frames,
			Emitted:       res.Stats.Emitted,
			Races:         res.Stats.Races,
			FinishedRaces: res.Stats.Finished,
		}
		if ferr := opts.Store.FinishRun(context.WithoutCancel(ctx), res.RunID, totals); ferr != nil {
			logger.Warn("run totals not recorded", logging.Error(ferr))
		}
	}

	if err != nil {
		return res, fmt.Errorf("run %s: %w", name, err)
	}
	logger.Info("source complete",
		logging.Int("frames", res.Stats.Frames),
		logging.Int("emitted", res.Stats.Emitted),
		logging.Int("skipped", res.Stats.Skipped),
		logging.Int("rejected", res.Stats.Rejected),
		logging.Int("races", res.Stats.Races),
		logging.Int("finished", res.Stats.Finished),
		logging.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

type progress struct {
	logger  *slog.Logger
	source  string
	total   int64
	sampler *logging.ProgressSampler
	limiter *rate.Limiter
}

func newProgress(logger *slog.Logger, source string, total int64) *progress {
	p := &progress{logger: logger, source: source, total: total}
	if total > 0 {
		p.sampler = logging.NewProgressSampler(10)
		p.sampler.ShouldLog(0, source)
	} else {
		p.limiter = rate.NewLimiter(rate.Every(unknownProgressEvery), 1)
		p.limiter.Allow()
	}
	return p
}

func (p *progress) frame(index int) {
	if p.total > 0 {
		percent := float64(index) * 100 / float64(p.total)
		if p.sampler.ShouldLog(percent, p.source) {
			p.logger.Info("processing progress",
				logging.Int(logging.FieldFrame, index),
				logging.Float64(logging.FieldProgressPercent, min(percent, 100)),
			)
		}
		return
	}
	if p.limiter.Allow() {
		p.logger.Info("processing progress", logging.Int(logging.FieldFrame, index))
	}
}
