// Package pipeline applies the label mapper, span resolver and BILUO
// encoder to every sentence of a corpus.
//
// Stages always run in the order map, resolve, encode. Each stage is a pass
// over all sentences on a worker pool; sentences share no state, so the
// output does not depend on the worker count.
package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/FocuswithJustin/nerconv/core/biluo"
	"github.com/FocuswithJustin/nerconv/core/errors"
	"github.com/FocuswithJustin/nerconv/core/ir"
	"github.com/FocuswithJustin/nerconv/core/labelmap"
	"github.com/FocuswithJustin/nerconv/core/resolve"
	"github.com/FocuswithJustin/nerconv/internal/logging"
	"github.com/FocuswithJustin/nerconv/internal/workerpool"
)

// Stages selects which stages run.
type Stages struct {
	Map     bool
	Resolve bool
	Encode  bool
}

// AllStages enables every stage.
var AllStages = Stages{Map: true, Resolve: true, Encode: true}

// Config configures a Walker.
type Config struct {
	Stages Stages

	// Table is required when Stages.Map is set.
	Table labelmap.Table
	// Strict aborts the run on the first mapping diagnostic.
	Strict bool

	// Legacy selects the historical resolver scan boundary.
	Legacy bool
	// Seed seeds the per-sentence tie-break generators.
	Seed uint64

	// Workers is the pool size; 0 means one per CPU.
	Workers int
}

// ChooserFactory returns the tie-break source for one sentence.
type ChooserFactory func(documentID, sentenceIndex int) resolve.Chooser

// Option configures a Walker.
type Option func(*Walker)

// WithChooserFactory replaces the seeded per-sentence generators.
func WithChooserFactory(f ChooserFactory) Option {
	return func(w *Walker) {
		w.chooser = f
	}
}

// Walker runs the configured stages over a corpus.
type Walker struct {
	cfg     Config
	chooser ChooserFactory
}

// New creates a Walker.
func New(cfg Config, opts ...Option) *Walker {
	w := &Walker{cfg: cfg}
	w.chooser = w.seeded
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// seeded derives an independent generator from the seed and the sentence
// position, so every sentence draws the same values whatever the schedule.
func (w *Walker) seeded(documentID, sentenceIndex int) resolve.Chooser {
	key := uint64(uint32(documentID))<<32 | uint64(uint32(sentenceIndex))
	return rand.New(rand.NewPCG(w.cfg.Seed, key))
}

// Report summarizes a run.
type Report struct {
	Sentences  int
	Mapping    *labelmap.Report
	Resolve    resolve.Stats
	Violations []*errors.InvariantViolation
}

// Err joins the invariant violations, nil when there are none.
func (r *Report) Err() error {
	if len(r.Violations) == 0 {
		return nil
	}
	errs := make([]error, len(r.Violations))
	for i, v := range r.Violations {
		errs[i] = v
	}
	return errors.Join(errs...)
}

type job struct {
	documentID    int
	sentenceIndex int
	sentence      *ir.Sentence
}

// Run applies the stages to c in place. It returns an error when the
// context is cancelled or strict mapping fails; invariant violations only
// skip their sentence and are collected in the report.
func (w *Walker) Run(ctx context.Context, c *ir.Corpus) (*Report, error) {
	if w.cfg.Stages.Map && w.cfg.Table == nil {
		return nil, errors.NewValidation("table", "mapping stage needs a label table")
	}

	var jobs []job
	for _, d := range c.Documents {
		for si, s := range d.Sentences() {
			jobs = append(jobs, job{documentID: d.ID, sentenceIndex: si, sentence: s})
		}
	}

	rep := &Report{Sentences: len(jobs), Mapping: labelmap.NewReport()}
	workers := w.cfg.Workers
	if workers <= 0 {
		workers = workerpool.DefaultWorkers()
	}
	logging.DebugContext(ctx, "walking corpus",
		"documents", len(c.Documents),
		"sentences", len(jobs),
		"workers", workers)
	if w.cfg.Stages.Map {
		if err := w.mapStage(ctx, jobs, rep); err != nil {
			return rep, err
		}
	}
	if w.cfg.Stages.Resolve {
		if err := w.resolveStage(ctx, jobs, rep); err != nil {
			return rep, err
		}
	}
	if w.cfg.Stages.Encode {
		if err := w.encodeStage(ctx, jobs, rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

type mapResult struct {
	report *labelmap.Report
	err    error
}

func (w *Walker) mapStage(ctx context.Context, jobs []job, rep *Report) error {
	start := time.Now()
	opts := labelmap.Options{Strict: w.cfg.Strict}
	results, err := workerpool.Map(ctx, w.cfg.Workers, jobs, func(j job) mapResult {
		r, err := labelmap.Map(j.sentence.Tokens, w.cfg.Table, opts)
		return mapResult{report: r, err: err}
	})
	if err != nil {
		return err
	}

	for _, r := range results {
		if w.cfg.Strict && r.err != nil {
			return r.err
		}
		rep.Mapping.Merge(r.report)
	}

	for _, ch := range rep.Mapping.UnmappedChannels() {
		logging.MappingDiagnostic(ctx, "unmapped", ch, rep.Mapping.Unmapped[ch])
	}
	for _, c := range rep.Mapping.Conflicts {
		logging.MappingDiagnostic(ctx, "conflict", c.Target, len(c.Channels), "token_id", c.TokenID)
	}
	logging.StageFinished(ctx, "map", len(jobs), time.Since(start),
		"renamed", rep.Mapping.Renamed,
		"unmapped", len(rep.Mapping.Unmapped),
		"conflicts", len(rep.Mapping.Conflicts))
	return nil
}

func (w *Walker) resolveStage(ctx context.Context, jobs []job, rep *Report) error {
	start := time.Now()
	results, err := workerpool.Map(ctx, w.cfg.Workers, jobs, func(j job) resolve.Stats {
		return resolve.Resolve(j.sentence.Tokens, resolve.Options{
			Chooser: w.chooser(j.documentID, j.sentenceIndex),
			Legacy:  w.cfg.Legacy,
		})
	})
	if err != nil {
		return err
	}

	for _, st := range results {
		rep.Resolve.Add(st)
	}
	logging.StageFinished(ctx, "resolve", len(jobs), time.Since(start),
		"runs", rep.Resolve.Runs,
		"ambiguous", rep.Resolve.Ambiguous,
		"unresolved", rep.Resolve.Unresolved)
	return nil
}

type encodeResult struct {
	tokens []*ir.Token
	err    error
}

func (w *Walker) encodeStage(ctx context.Context, jobs []job, rep *Report) error {
	start := time.Now()
	results, err := workerpool.Map(ctx, w.cfg.Workers, jobs, func(j job) encodeResult {
		out, err := biluo.Encode(j.sentence.Tokens)
		return encodeResult{tokens: out, err: err}
	})
	if err != nil {
		return err
	}

	for i, r := range results {
		j := jobs[i]
		if r.err == nil {
			j.sentence.Tokens = r.tokens
			continue
		}
		var iv *errors.InvariantViolation
		if !errors.As(r.err, &iv) {
			return r.err
		}
		iv.DocumentID = j.documentID
		iv.SentenceIndex = j.sentenceIndex
		rep.Violations = append(rep.Violations, iv)
		logging.WarnContext(ctx, "invariant violation", "error", iv.Error())
	}
	logging.StageFinished(ctx, "encode", len(jobs), time.Since(start),
		"violations", len(rep.Violations))
	return nil
}
