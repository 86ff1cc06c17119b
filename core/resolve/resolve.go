// Package resolve reduces nested multi-channel annotations to one label per
// token.
//
// A single left-to-right scan grows runs of consecutive entity tokens. A
// token continues the run when it shares, with the previous token, some
// channel active at both at the same strength; the run's candidate labels
// are then narrowed to the channels active on the token. Each closed run is
// stamped with one of its remaining candidates, picked by an injected
// Chooser.
package resolve

import (
	"github.com/FocuswithJustin/nerconv/core/ir"
)

// Chooser picks an index in [0, n). *math/rand/v2.Rand satisfies it.
type Chooser interface {
	IntN(n int) int
}

// Options configures a scan.
type Options struct {
	// Chooser breaks ties between candidate labels. Nil picks the first
	// candidate in annotation order.
	Chooser Chooser

	// Legacy reproduces the historical scan: the last token of the sentence
	// is never examined, a run still open when the scan stops is dropped, a
	// run whose candidates run out contributes nothing, and tokens outside
	// resolved runs keep their annotations.
	Legacy bool
}

// Run is a resolved span [Begin, End) of sentence positions.
type Run struct {
	Begin      int
	End        int
	Label      string
	Candidates []string
}

// Len returns the number of tokens in the run.
func (r Run) Len() int {
	return r.End - r.Begin
}

// Stats summarizes a scan.
type Stats struct {
	Runs       int // resolved runs
	Ambiguous  int // runs with more than one candidate label
	Unresolved int // entity tokens left outside every run
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Runs += o.Runs
	s.Ambiguous += o.Ambiguous
	s.Unresolved += o.Unresolved
}

// Resolve stamps every resolved run with a single (label, "1") pair.
func Resolve(tokens []*ir.Token, opts Options) Stats {
	runs, st := Runs(tokens, opts)
	inRun := make([]bool, len(tokens))
	for _, r := range runs {
		for i := r.Begin; i < r.End; i++ {
			tokens[i].SetLabel(r.Label)
			inRun[i] = true
		}
	}
	if !opts.Legacy {
		for i, tok := range tokens {
			if !inRun[i] {
				tok.Annotations = nil
			}
		}
	}
	return st
}

// Runs computes the resolved runs of a sentence without modifying it.
func Runs(tokens []*ir.Token, opts Options) ([]Run, Stats) {
	s := scanner{opts: opts}
	n := len(tokens)
	if opts.Legacy && n > 0 {
		n--
	}
	for i := 0; i < n; i++ {
		s.step(i, active(tokens[i]))
	}
	if s.open && !opts.Legacy {
		s.close(n)
	}

	inRun := 0
	for _, r := range s.runs {
		inRun += r.Len()
	}
	entities := 0
	for _, tok := range tokens {
		if len(active(tok)) > 0 {
			entities++
		}
	}
	s.stats.Unresolved = entities - inRun
	return s.runs, s.stats
}

type scanner struct {
	opts  Options
	runs  []Run
	stats Stats

	open       bool
	begin      int
	candidates []string
	prev       map[string]string
}

func (s *scanner) step(i int, cur []ir.Annotation) {
	if len(cur) == 0 {
		if s.open {
			s.close(i)
		}
		return
	}
	if !s.open || len(s.candidates) == 0 {
		if s.open {
			s.close(i)
		}
		s.start(i, cur)
		return
	}

	now := strengths(cur)
	if !s.inSequence(now) {
		s.close(i)
		s.start(i, cur)
		return
	}

	next := intersect(s.candidates, now)
	if len(next) == 0 && !s.opts.Legacy {
		// keep the labels the run had so far
		s.close(i)
		s.start(i, cur)
		return
	}
	s.candidates = next
	s.prev = now
}

// inSequence reports whether some channel is active at the previous and
// current token with the same strength.
func (s *scanner) inSequence(now map[string]string) bool {
	for c, v := range now {
		if s.prev[c] == v {
			return true
		}
	}
	return false
}

// intersect keeps the candidates active in now, in candidate order.
func intersect(candidates []string, now map[string]string) []string {
	var out []string
	for _, c := range candidates {
		if _, ok := now[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *scanner) start(i int, cur []ir.Annotation) {
	s.open = true
	s.begin = i
	s.candidates = make([]string, 0, len(cur))
	for _, a := range cur {
		s.candidates = append(s.candidates, a.Channel)
	}
	s.prev = strengths(cur)
}

func (s *scanner) close(end int) {
	s.open = false
	if len(s.candidates) == 0 {
		return
	}
	label := s.candidates[0]
	if len(s.candidates) > 1 {
		s.stats.Ambiguous++
		if s.opts.Chooser != nil {
			label = s.candidates[s.opts.Chooser.IntN(len(s.candidates))]
		}
	}
	s.runs = append(s.runs, Run{Begin: s.begin, End: end, Label: label, Candidates: s.candidates})
	s.stats.Runs++
}

// active returns the active annotations of tok, skipping the outside tag.
func active(tok *ir.Token) []ir.Annotation {
	var out []ir.Annotation
	for _, a := range tok.Annotations {
		if a.IsActive() && a.Channel != ir.OutsideTag {
			out = append(out, a)
		}
	}
	return out
}

func strengths(anns []ir.Annotation) map[string]string {
	m := make(map[string]string, len(anns))
	for _, a := range anns {
		m[a.Channel] = a.Strength
	}
	return m
}
