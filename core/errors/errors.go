// Package errors provides standardized error types and helpers for the nerconv codebase.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedInput indicates a persisted corpus that does not match the expected shape
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnmappedChannel indicates an annotation channel missing from a label table
	ErrUnmappedChannel = errors.New("unmapped channel")
	// ErrConflictingMapping indicates two channels of one token mapped to the same label
	ErrConflictingMapping = errors.New("conflicting mapping")
	// ErrInvariant indicates a broken pipeline invariant
	ErrInvariant = errors.New("invariant violation")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// UnmappedChannelError lists channels that had no entry in a label table.
type UnmappedChannelError struct {
	Channels []string // Unmapped channel names, each listed once
	TokenID  int      // Token of the first miss (-1 when aggregated)
	Err      error    // Underlying error, if any
}

func (e *UnmappedChannelError) Error() string {
	if e.TokenID >= 0 && len(e.Channels) == 1 {
		return fmt.Sprintf("unmapped channel %q at token %d", e.Channels[0], e.TokenID)
	}
	return fmt.Sprintf("unmapped channels: %s", strings.Join(e.Channels, ", "))
}

func (e *UnmappedChannelError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnmappedChannel
}

// ConflictingMappingError reports distinct active channels of one token that
// were mapped onto the same target label.
type ConflictingMappingError struct {
	Target   string   // Label both channels map to
	Channels []string // Source channels, in annotation order
	TokenID  int      // Token where the conflict was first seen
}

func (e *ConflictingMappingError) Error() string {
	return fmt.Sprintf("channels %s all map to %q at token %d",
		strings.Join(e.Channels, ", "), e.Target, e.TokenID)
}

func (e *ConflictingMappingError) Unwrap() error {
	return ErrConflictingMapping
}

// InvariantViolation is raised when the BILUO encoder receives a sentence the
// span resolver should never have produced.
type InvariantViolation struct {
	DocumentID    int    // Document id, -1 if unknown
	SentenceIndex int    // Sentence position within the document, -1 if unknown
	TokenID       int    // Offending token
	State         string // Encoder state when the violation was seen
	Message       string
}

func (e *InvariantViolation) Error() string {
	var b strings.Builder
	b.WriteString("invariant violation")
	if e.DocumentID >= 0 {
		fmt.Fprintf(&b, " in document %d", e.DocumentID)
	}
	if e.SentenceIndex >= 0 {
		fmt.Fprintf(&b, " sentence %d", e.SentenceIndex)
	}
	fmt.Fprintf(&b, " at token %d", e.TokenID)
	if e.State != "" {
		fmt.Fprintf(&b, " (state %s)", e.State)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *InvariantViolation) Unwrap() error {
	return ErrInvariant
}

// MalformedInputError represents a corpus element that is missing required
// fields or carries values outside the allowed domain.
type MalformedInputError struct {
	Path    string // JSON path of the element (e.g., "[0].paragraphs[1]")
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *MalformedInputError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed input at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("malformed input: %s", e.Message)
}

func (e *MalformedInputError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedInput
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing error in one of the adapter formats
type ParseError struct {
	Format  string // Format being parsed (e.g., "CCL", "CoNLL", "label table")
	Path    string // File path, if applicable
	Line    int    // 1-based line number, 0 if unknown
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		if loc == "" {
			loc = fmt.Sprintf("line %d", e.Line)
		} else {
			loc = fmt.Sprintf("%s:%d", loc, e.Line)
		}
	}
	if loc != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, loc, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewMalformed creates a MalformedInputError
func NewMalformed(path, message string) *MalformedInputError {
	return &MalformedInputError{
		Path:    path,
		Message: message,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join wraps errors.Join for convenience
func Join(errs ...error) error {
	return errors.Join(errs...)
}
