// Package labelmap renames annotation channels through a lookup table.
//
// Channels missing from the table are dropped and reported. Two channels of
// one token that map to the same target merge when at most one of them is
// active; two active ones are reported as a conflict and the first is kept.
// In strict mode the first miss or conflict stops the mapping.
package labelmap

import (
	"sort"

	"github.com/FocuswithJustin/nerconv/core/errors"
	"github.com/FocuswithJustin/nerconv/core/ir"
)

// Options configures Map.
type Options struct {
	// Strict stops at the first unmapped channel or conflict.
	Strict bool
}

// Report collects mapping diagnostics.
type Report struct {
	Tokens    int                               // tokens visited
	Renamed   int                               // pairs renamed
	Unmapped  map[string]int                    // unmapped channel -> occurrences
	Conflicts []*errors.ConflictingMappingError // in visiting order
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{Unmapped: make(map[string]int)}
}

// Merge adds the counts and diagnostics of o to r.
func (r *Report) Merge(o *Report) {
	if o == nil {
		return
	}
	if r.Unmapped == nil {
		r.Unmapped = make(map[string]int, len(o.Unmapped))
	}
	r.Tokens += o.Tokens
	r.Renamed += o.Renamed
	for ch, n := range o.Unmapped {
		r.Unmapped[ch] += n
	}
	r.Conflicts = append(r.Conflicts, o.Conflicts...)
}

// UnmappedChannels returns every unmapped channel once, sorted.
func (r *Report) UnmappedChannels() []string {
	out := make([]string, 0, len(r.Unmapped))
	for ch := range r.Unmapped {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

// Clean reports whether no diagnostics were recorded.
func (r *Report) Clean() bool {
	return len(r.Unmapped) == 0 && len(r.Conflicts) == 0
}

// Err joins the diagnostics into one error, nil when the report is clean.
// Unmapped channels are aggregated into a single UnmappedChannelError.
func (r *Report) Err() error {
	if r.Clean() {
		return nil
	}
	var errs []error
	if len(r.Unmapped) > 0 {
		errs = append(errs, &errors.UnmappedChannelError{Channels: r.UnmappedChannels(), TokenID: -1})
	}
	for _, c := range r.Conflicts {
		errs = append(errs, c)
	}
	return errors.Join(errs...)
}

// Map renames the annotation channels of tokens in place. The returned
// error is Report.Err() in report mode, or the first diagnostic in strict
// mode, in which case the failing token and everything after it is left
// untouched.
func Map(tokens []*ir.Token, table Table, opts Options) (*Report, error) {
	rep := NewReport()
	for _, tok := range tokens {
		anns, err := mapToken(tok, table, opts.Strict, rep)
		if err != nil {
			return rep, err
		}
		tok.Annotations = anns
		rep.Tokens++
	}
	return rep, rep.Err()
}

func mapToken(tok *ir.Token, table Table, strict bool, rep *Report) ([]ir.Annotation, error) {
	out := make([]ir.Annotation, 0, len(tok.Annotations))
	pos := make(map[string]int, len(tok.Annotations))
	// first active source per target
	active := make(map[string]string, len(tok.Annotations))
	// conflict already reported for a target on this token
	conflicts := make(map[string]*errors.ConflictingMappingError)

	var pending []*errors.ConflictingMappingError
	unmapped := make(map[string]int)
	renamed := 0

	for _, a := range tok.Annotations {
		target, ok := table[a.Channel]
		if !ok {
			if strict {
				return nil, &errors.UnmappedChannelError{Channels: []string{a.Channel}, TokenID: tok.ID}
			}
			unmapped[a.Channel]++
			continue
		}
		renamed++

		i, seen := pos[target]
		if !seen {
			pos[target] = len(out)
			out = append(out, ir.Annotation{Channel: target, Strength: a.Strength})
			if a.IsActive() {
				active[target] = a.Channel
			}
			continue
		}

		switch {
		case !a.IsActive():
		case !out[i].IsActive():
			out[i].Strength = a.Strength
			active[target] = a.Channel
		default:
			if c, ok := conflicts[target]; ok {
				c.Channels = append(c.Channels, a.Channel)
				continue
			}
			c := &errors.ConflictingMappingError{
				Target:   target,
				Channels: []string{active[target], a.Channel},
				TokenID:  tok.ID,
			}
			if strict {
				return nil, c
			}
			conflicts[target] = c
			pending = append(pending, c)
		}
	}

	rep.Renamed += renamed
	for ch, n := range unmapped {
		rep.Unmapped[ch] += n
	}
	rep.Conflicts = append(rep.Conflicts, pending...)
	return out, nil
}
