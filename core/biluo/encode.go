// Package biluo encodes resolved sentences into BILUO tags and decodes tag
// sequences back into entity spans.
package biluo

import (
	"fmt"

	"github.com/FocuswithJustin/nerconv/core/errors"
	"github.com/FocuswithJustin/nerconv/core/ir"
)

// state is the encoder state: empty when outside, the open type otherwise.
type state string

const outside state = ""

func (s state) String() string {
	if s == outside {
		return "OUTSIDE"
	}
	return fmt.Sprintf("INSIDE(%s)", string(s))
}

// Encode converts a resolved sentence into new tokens, each carrying exactly
// one (tag, "1") pair. Orth and id are kept. Input tokens are never
// modified; on an InvariantViolation no tokens are returned.
func Encode(tokens []*ir.Token) ([]*ir.Token, error) {
	labels, err := resolvedLabels(tokens)
	if err != nil {
		return nil, err
	}

	out := make([]*ir.Token, len(tokens))
	st := outside
	for i, tok := range tokens {
		label := labels[i]
		next := ""
		if i+1 < len(labels) {
			next = labels[i+1]
		}

		var tag Tag
		if st == outside {
			switch {
			case label == "":
				tag = Tag{Prefix: Outside}
			case next == label:
				tag = Tag{Prefix: Begin, Type: label}
				st = state(label)
			default:
				tag = Tag{Prefix: Unit, Type: label}
			}
		} else {
			if label != string(st) {
				return nil, &errors.InvariantViolation{
					DocumentID:    -1,
					SentenceIndex: -1,
					TokenID:       tok.ID,
					State:         st.String(),
					Message:       fmt.Sprintf("token labelled %q inside an open run", label),
				}
			}
			if next == label {
				tag = Tag{Prefix: Inside, Type: label}
			} else {
				tag = Tag{Prefix: Last, Type: label}
				st = outside
			}
		}

		out[i] = ir.NewToken(tok.Orth, tok.ID, ir.Annotation{Channel: tag.String(), Strength: ir.Active})
	}
	return out, nil
}

// resolvedLabels returns the single active label of every token, empty for
// non-entities.
func resolvedLabels(tokens []*ir.Token) ([]string, error) {
	labels := make([]string, len(tokens))
	for i, tok := range tokens {
		var found []string
		for _, a := range tok.Annotations {
			if a.IsActive() && a.Channel != ir.OutsideTag {
				found = append(found, a.Channel)
			}
		}
		switch len(found) {
		case 0:
		case 1:
			labels[i] = found[0]
		default:
			return nil, &errors.InvariantViolation{
				DocumentID:    -1,
				SentenceIndex: -1,
				TokenID:       tok.ID,
				Message:       fmt.Sprintf("token carries %d active labels %v, want at most one", len(found), found),
			}
		}
	}
	return labels, nil
}
