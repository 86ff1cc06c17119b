// Command nerconv converts nested named-entity annotation corpora to flat
// BILUO tag sequences.
// It provides the full pipeline plus each stage on its own, readers for KPWr
// CCL and CoNLL files, and corpus validation and hashing.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/FocuswithJustin/nerconv/core/biluo"
	"github.com/FocuswithJustin/nerconv/core/ir"
	"github.com/FocuswithJustin/nerconv/core/labelmap"
	"github.com/FocuswithJustin/nerconv/core/pipeline"
	"github.com/FocuswithJustin/nerconv/internal/corpusio"
	"github.com/FocuswithJustin/nerconv/internal/formats/ccl"
	"github.com/FocuswithJustin/nerconv/internal/formats/conll"
	"github.com/FocuswithJustin/nerconv/internal/logging"
	"github.com/FocuswithJustin/nerconv/internal/validation"
)

const version = "0.1.0"

// CLI defines the command-line interface for nerconv.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level" default:"info" enum:"debug,info,warn,error" env:"NERCONV_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format" default:"text" enum:"text,json" env:"NERCONV_LOG_FORMAT"`
	Workers   int    `short:"w" help:"Number of parallel workers (default: number of CPUs)" default:"0" env:"NERCONV_WORKERS"`
	Seed      uint64 `help:"Seed for tie-breaks between equally strong entity types" default:"0" env:"NERCONV_SEED"`

	Convert  ConvertCmd  `cmd:"" help:"Map, resolve and BILUO-encode a corpus"`
	Map      MapCmd      `cmd:"" help:"Rename annotation channels through a label table"`
	Resolve  ResolveCmd  `cmd:"" help:"Resolve overlapping entity runs"`
	Biluo    BiluoCmd    `cmd:"" name:"biluo" help:"BILUO-encode a resolved corpus"`
	Flatten  FlattenCmd  `cmd:"" help:"Collapse every token to its first active channel"`
	Ingest   IngestGroup `cmd:"" help:"Read corpora from other formats"`
	Export   ExportGroup `cmd:"" help:"Write corpora to other formats"`
	Validate ValidateCmd `cmd:"" help:"Check corpus structure and stage invariants"`
	Hash     HashCmd     `cmd:"" help:"Hash the canonical encoding of a corpus"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// IngestGroup contains the input adapters.
type IngestGroup struct {
	CCL   IngestCCLCmd   `cmd:"" name:"ccl" help:"Read a KPWr CCL file or index directory"`
	CoNLL IngestCoNLLCmd `cmd:"" name:"conll" help:"Read a CoNLL file"`
}

// ExportGroup contains the output adapters.
type ExportGroup struct {
	CoNLL ExportCoNLLCmd `cmd:"" name:"conll" help:"Write a BILUO-encoded corpus as CoNLL"`
}

// CorpusFlags are shared by commands that read and write a JSON corpus.
type CorpusFlags struct {
	In     string `arg:"" help:"Input corpus (.json, .json.xz, .json.gz or - for stdin)"`
	Out    string `short:"o" help:"Output corpus (- for stdout)" default:"-"`
	Format string `help:"Representation of the ner field" default:"annotations" enum:"annotations,tags"`
}

// MapFlags configure the label mapper.
type MapFlags struct {
	Table  string `short:"t" help:"Label table file (.json or text); default is the built-in KPWr table" type:"path"`
	Strict bool   `help:"Fail on the first unmapped channel or conflicting mapping"`
}

func (a MapFlags) table() (labelmap.Table, error) {
	if a.Table == "" {
		return labelmap.KPWr(), nil
	}
	return labelmap.LoadFile(a.Table)
}

// ConvertCmd runs all stages.
type ConvertCmd struct {
	CorpusFlags
	MapFlags
	Legacy bool `help:"Use the historical resolver scan boundary"`
}

func (c *ConvertCmd) Run() error {
	table, err := c.table()
	if err != nil {
		return err
	}
	return runPipeline(c.CorpusFlags, pipeline.Config{
		Stages: pipeline.AllStages,
		Table:  table,
		Strict: c.Strict,
		Legacy: c.Legacy,
	})
}

// MapCmd runs the label mapper only.
type MapCmd struct {
	CorpusFlags
	MapFlags
}

func (c *MapCmd) Run() error {
	table, err := c.table()
	if err != nil {
		return err
	}
	return runPipeline(c.CorpusFlags, pipeline.Config{
		Stages: pipeline.Stages{Map: true},
		Table:  table,
		Strict: c.Strict,
	})
}

// ResolveCmd runs the span resolver only.
type ResolveCmd struct {
	CorpusFlags
	Legacy bool `help:"Use the historical resolver scan boundary"`
}

func (c *ResolveCmd) Run() error {
	return runPipeline(c.CorpusFlags, pipeline.Config{
		Stages: pipeline.Stages{Resolve: true},
		Legacy: c.Legacy,
	})
}

// BiluoCmd runs the BILUO encoder only.
type BiluoCmd struct {
	CorpusFlags
}

func (c *BiluoCmd) Run() error {
	return runPipeline(c.CorpusFlags, pipeline.Config{
		Stages: pipeline.Stages{Encode: true},
	})
}

// FlattenCmd rewrites a corpus with one label string per token.
type FlattenCmd struct {
	In  string `arg:"" help:"Input corpus"`
	Out string `short:"o" help:"Output corpus (- for stdout)" default:"-"`
}

func (c *FlattenCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()

	corpus, err := loadCorpus(ctx, c.In)
	if err != nil {
		return err
	}
	return writeCorpus(ctx, c.Out, corpus, ir.NERTags)
}

// IngestCCLCmd reads KPWr CCL input.
type IngestCCLCmd struct {
	Path   string `arg:"" help:"CCL file, or directory holding an index file" type:"path"`
	Index  string `help:"Index file name inside the directory" default:"index_names.txt"`
	Suffix string `help:"Keep only channels ending with this suffix (empty keeps all)" default:"nam"`
	Out    string `short:"o" help:"Output corpus (- for stdout)" default:"-"`
}

func (c *IngestCCLCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()

	if err := validation.ValidatePath(c.Path); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	info, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("failed to stat input: %w", err)
	}

	opts := ccl.Options{ChannelSuffix: c.Suffix}
	var corpus *ir.Corpus
	if info.IsDir() {
		corpus, err = ccl.ReadIndex(c.Path, c.Index, opts)
	} else {
		var doc *ir.Document
		doc, err = ccl.ReadFile(c.Path, 0, opts)
		corpus = &ir.Corpus{Documents: []*ir.Document{doc}}
	}
	if err != nil {
		return err
	}

	st := corpus.Stats()
	logging.CorpusLoaded(ctx, c.Path, st.Documents, st.Tokens, "format", "ccl")
	return writeCorpus(ctx, c.Out, corpus, ir.NERAnnotations)
}

// IngestCoNLLCmd reads CoNLL input.
type IngestCoNLLCmd struct {
	In        string `arg:"" help:"CoNLL file (- for stdin)"`
	TagColumn int    `name:"tag-column" help:"1-based column holding the tag (default: last)" default:"0"`
	Out       string `short:"o" help:"Output corpus (- for stdout)" default:"-"`
}

func (c *IngestCoNLLCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()

	r, err := corpusio.Open(c.In)
	if err != nil {
		return err
	}
	defer r.Close()

	corpus, err := conll.Read(r, conll.ReadOptions{TagColumn: c.TagColumn, Name: c.In})
	if err != nil {
		return err
	}

	st := corpus.Stats()
	logging.CorpusLoaded(ctx, c.In, st.Documents, st.Tokens, "format", "conll")
	return writeCorpus(ctx, c.Out, corpus, ir.NERAnnotations)
}

// ExportCoNLLCmd writes CoNLL output.
type ExportCoNLLCmd struct {
	In  string `arg:"" help:"Input corpus"`
	Out string `short:"o" help:"Output CoNLL file (- for stdout)" default:"-"`
}

func (c *ExportCoNLLCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()

	corpus, err := loadCorpus(ctx, c.In)
	if err != nil {
		return err
	}

	w, err := corpusio.Create(c.Out)
	if err != nil {
		return err
	}
	if err := conll.Write(w, corpus); err != nil {
		w.Close()
		return fmt.Errorf("failed to write CoNLL: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	logging.CorpusWritten(ctx, c.Out, w.Written(), "format", "conll")
	return nil
}

// ValidateCmd checks a corpus.
type ValidateCmd struct {
	In    string `arg:"" help:"Input corpus"`
	Stage string `help:"Pipeline stage the corpus has reached" default:"raw" enum:"raw,resolved,encoded"`
}

func (c *ValidateCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()

	corpus, err := loadCorpus(ctx, c.In)
	if err != nil {
		return err
	}
	stage, err := ir.ParseStage(c.Stage)
	if err != nil {
		return err
	}

	errs := ir.ValidateStage(corpus, stage)
	if stage == ir.StageEncoded && len(errs) == 0 {
		errs = checkSequences(corpus)
	}
	for _, e := range errs {
		fmt.Fprintln(stdout, e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s validation errors", humanize.Comma(int64(len(errs))))
	}

	st := corpus.Stats()
	fmt.Fprintf(stdout, "OK: %s documents, %s sentences, %s tokens (%s)\n",
		humanize.Comma(int64(st.Documents)),
		humanize.Comma(int64(st.Sentences)),
		humanize.Comma(int64(st.Tokens)),
		stage)
	return nil
}

// checkSequences decodes every encoded sentence back into spans.
func checkSequences(c *ir.Corpus) []error {
	var errs []error
	for _, d := range c.Documents {
		for si, s := range d.Sentences() {
			if _, err := biluo.Spans(biluo.Tags(s.Tokens)); err != nil {
				errs = append(errs, fmt.Errorf("document %d sentence %d: %w", d.ID, si, err))
			}
		}
	}
	return errs
}

// HashCmd prints the digests of a corpus.
type HashCmd struct {
	In     string `arg:"" help:"Input corpus"`
	Format string `help:"Representation of the ner field to hash" default:"annotations" enum:"annotations,tags"`
}

func (c *HashCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()

	corpus, err := loadCorpus(ctx, c.In)
	if err != nil {
		return err
	}
	format, err := ir.ParseNERFormat(c.Format)
	if err != nil {
		return err
	}
	h, err := ir.HashCorpus(corpus, format)
	if err != nil {
		return fmt.Errorf("failed to hash corpus: %w", err)
	}
	fmt.Fprintf(stdout, "SHA-256: %s\n", h.SHA256)
	fmt.Fprintf(stdout, "BLAKE3:  %s\n", h.BLAKE3)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "nerconv version %s\n", version)
	return nil
}

// Helper functions

// stdout receives command summaries. Tests may replace it.
var stdout io.Writer = os.Stdout

func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return logging.WithRunID(ctx, logging.NewRunID()), cancel
}

func loadCorpus(ctx context.Context, path string) (*ir.Corpus, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("invalid input path: %w", err)
	}
	corpus, err := corpusio.ReadCorpus(path)
	if err != nil {
		return nil, err
	}
	st := corpus.Stats()
	logging.CorpusLoaded(ctx, path, st.Documents, st.Tokens)
	return corpus, nil
}

func writeCorpus(ctx context.Context, path string, corpus *ir.Corpus, format ir.NERFormat) error {
	if err := validation.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	n, err := corpusio.WriteCorpus(path, corpus, format)
	if err != nil {
		return err
	}
	logging.CorpusWritten(ctx, path, n)
	return nil
}

func runPipeline(args CorpusFlags, cfg pipeline.Config) error {
	ctx, cancel := commandContext()
	defer cancel()

	format, err := ir.ParseNERFormat(args.Format)
	if err != nil {
		return err
	}
	corpus, err := loadCorpus(ctx, args.In)
	if err != nil {
		return err
	}

	cfg.Workers = CLI.Workers
	cfg.Seed = CLI.Seed
	rep, err := pipeline.New(cfg).Run(ctx, corpus)
	if err != nil {
		return err
	}
	if err := writeCorpus(ctx, args.Out, corpus, format); err != nil {
		return err
	}

	// violating sentences are written unchanged but still fail the command
	if err := rep.Err(); err != nil {
		return fmt.Errorf("%d sentences left unencoded: %w", len(rep.Violations), err)
	}
	return nil
}

func initLogging() error {
	level, err := logging.ParseLevel(CLI.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(CLI.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("nerconv"),
		kong.Description("nerconv - nested named-entity annotations to BILUO"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(initLogging())
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
