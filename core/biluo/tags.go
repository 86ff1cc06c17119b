package biluo

import (
	"fmt"

	"github.com/FocuswithJustin/nerconv/core/errors"
	"github.com/FocuswithJustin/nerconv/core/ir"
)

// Prefix is the position marker of a tag.
type Prefix byte

const (
	Begin   Prefix = 'B'
	Inside  Prefix = 'I'
	Last    Prefix = 'L'
	Unit    Prefix = 'U'
	Outside Prefix = 'O'
)

// Tag is a parsed BILUO tag. Type is empty for Outside.
type Tag struct {
	Prefix Prefix
	Type   string
}

func (t Tag) String() string {
	if t.Prefix == Outside {
		return ir.OutsideTag
	}
	return string(t.Prefix) + "-" + t.Type
}

// ParseTag parses "O" or "P-TYPE" with P one of B, I, L, U.
func ParseTag(s string) (Tag, error) {
	if s == ir.OutsideTag {
		return Tag{Prefix: Outside}, nil
	}
	if !ir.IsTagShape(s) {
		return Tag{}, errors.NewParse("BILUO", "", fmt.Sprintf("invalid tag %q", s))
	}
	return Tag{Prefix: Prefix(s[0]), Type: s[2:]}, nil
}

// Span is an entity run [Begin, End) of sentence positions.
type Span struct {
	Begin int
	End   int
	Type  string
}

// Tags returns the tag of every encoded token. Tokens without an entity
// label read as "O".
func Tags(tokens []*ir.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		if label, ok := tok.Entity(); ok {
			out[i] = label
		} else {
			out[i] = ir.OutsideTag
		}
	}
	return out
}

// Spans decodes a BILUO sequence into entity spans. Any I or L without an
// open B of the same type, and any B left open, is an error.
func Spans(tags []string) ([]Span, error) {
	var spans []Span
	open := false
	var cur Span

	fail := func(i int, msg string) error {
		return errors.NewParse("BILUO", "", fmt.Sprintf("position %d: %s", i, msg))
	}

	for i, s := range tags {
		tag, err := ParseTag(s)
		if err != nil {
			return nil, fail(i, fmt.Sprintf("invalid tag %q", s))
		}
		switch tag.Prefix {
		case Outside, Unit, Begin:
			if open {
				return nil, fail(i, fmt.Sprintf("%s after unterminated B-%s", s, cur.Type))
			}
			switch tag.Prefix {
			case Unit:
				spans = append(spans, Span{Begin: i, End: i + 1, Type: tag.Type})
			case Begin:
				open = true
				cur = Span{Begin: i, Type: tag.Type}
			}
		case Inside, Last:
			if !open || cur.Type != tag.Type {
				return nil, fail(i, fmt.Sprintf("%s without an open B-%s", s, tag.Type))
			}
			if tag.Prefix == Last {
				cur.End = i + 1
				spans = append(spans, cur)
				open = false
			}
		}
	}
	if open {
		return nil, fail(len(tags), fmt.Sprintf("unterminated B-%s", cur.Type))
	}
	return spans, nil
}

// EntitySpans returns the maximal runs of equal labels in a resolved
// sentence.
func EntitySpans(tokens []*ir.Token) []Span {
	var spans []Span
	for i, tok := range tokens {
		label, ok := tok.Entity()
		if !ok {
			continue
		}
		if n := len(spans); n > 0 && spans[n-1].End == i && spans[n-1].Type == label {
			spans[n-1].End++
			continue
		}
		spans = append(spans, Span{Begin: i, End: i + 1, Type: label})
	}
	return spans
}
