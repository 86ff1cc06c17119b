package ir

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// newValidationError creates a new ValidationError.
func newValidationError(path, message string) error {
	return &ValidationError{Path: path, Message: message}
}

// Stage identifies how far a corpus has travelled through the pipeline.
type Stage int

const (
	// StageRaw is a freshly read corpus with arbitrary channels.
	StageRaw Stage = iota
	// StageResolved is a corpus after span resolution.
	StageResolved
	// StageEncoded is a corpus after BILUO encoding.
	StageEncoded
)

// String returns the flag spelling of the stage.
func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageResolved:
		return "resolved"
	case StageEncoded:
		return "encoded"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// ParseStage parses the flag spelling of a stage.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "raw", "":
		return StageRaw, nil
	case "resolved":
		return StageResolved, nil
	case "encoded":
		return StageEncoded, nil
	}
	return 0, fmt.Errorf("unknown stage %q", s)
}

// ValidateCorpus checks the structural invariants of a corpus and returns
// all violations found.
func ValidateCorpus(c *Corpus) []error {
	return ValidateStage(c, StageRaw)
}

// ValidateStage checks the structural invariants plus the per-token
// invariants of the given stage.
func ValidateStage(c *Corpus, stage Stage) []error {
	var errs []error
	for i, d := range c.Documents {
		errs = append(errs, validateDocument(fmt.Sprintf("corpus[%d]", i), d, stage)...)
	}
	return errs
}

// ValidateDocument checks a single document.
func ValidateDocument(d *Document, stage Stage) []error {
	return validateDocument("document", d, stage)
}

func validateDocument(path string, d *Document, stage Stage) []error {
	var errs []error
	next := 0
	for pi, p := range d.Paragraphs {
		for si, s := range p.Sentences {
			for ti, t := range s.Tokens {
				tpath := fmt.Sprintf("%s.paragraphs[%d].sentences[%d].tokens[%d]", path, pi, si, ti)
				if t.ID != next {
					errs = append(errs, newValidationError(tpath,
						fmt.Sprintf("token id %d, want %d", t.ID, next)))
					next = t.ID
				}
				next++
				errs = append(errs, validateToken(tpath, t, stage)...)
			}
		}
	}
	return errs
}

func validateToken(path string, t *Token, stage Stage) []error {
	var errs []error
	seen := make(map[string]bool, len(t.Annotations))
	for _, a := range t.Annotations {
		if a.Channel == "" {
			errs = append(errs, newValidationError(path, "empty channel name"))
		}
		if seen[a.Channel] {
			errs = append(errs, newValidationError(path, fmt.Sprintf("duplicate channel %q", a.Channel)))
		}
		seen[a.Channel] = true
		if !ValidStrength(a.Strength) {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("invalid strength %q for %q", a.Strength, a.Channel)))
		}
	}

	switch stage {
	case StageResolved:
		if len(t.Annotations) > 1 || (len(t.Annotations) == 1 && t.Annotations[0].Strength != Active) {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("resolved token must carry at most one (label, %q) pair, got %d annotations", Active, len(t.Annotations))))
		}
	case StageEncoded:
		if len(t.Annotations) != 1 || t.Annotations[0].Strength != Active {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("encoded token must carry exactly one (tag, %q) pair", Active)))
		} else if !IsTagShape(t.Annotations[0].Channel) {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("%q is not a BILUO tag", t.Annotations[0].Channel)))
		}
	}
	return errs
}

// IsTagShape reports whether s is "O" or one of B-T, I-T, L-T, U-T with a
// non-empty type.
func IsTagShape(s string) bool {
	if s == OutsideTag {
		return true
	}
	if len(s) < 3 || s[1] != '-' {
		return false
	}
	return strings.ContainsRune("BILU", rune(s[0]))
}
