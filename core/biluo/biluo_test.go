package biluo

import (
	"reflect"
	"strings"
	"testing"

	"github.com/FocuswithJustin/nerconv/core/errors"
	"github.com/FocuswithJustin/nerconv/core/ir"
)

// resolved builds a resolved sentence; an empty label is a non-entity token.
func resolved(pairs ...string) []*ir.Token {
	out := make([]*ir.Token, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		tok := ir.NewToken(pairs[i], i/2)
		if pairs[i+1] != "" {
			tok.SetLabel(pairs[i+1])
		}
		out = append(out, tok)
	}
	return out
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		tokens []*ir.Token
		want   []string
	}{
		{
			name:   "person then verb",
			tokens: resolved("Jan", "PERSON", "Kowalski", "PERSON", "przyjechał", ""),
			want:   []string{"B-PERSON", "L-PERSON", "O"},
		},
		{
			name:   "single entity",
			tokens: resolved("Warszawa", "GPE"),
			want:   []string{"U-GPE"},
		},
		{
			name:   "single non-entity",
			tokens: resolved("i", ""),
			want:   []string{"O"},
		},
		{
			name:   "inner tokens",
			tokens: resolved("Uniwersytet", "ORG", "Jagielloński", "ORG", "w", "ORG", "Krakowie", "ORG"),
			want:   []string{"B-ORG", "I-ORG", "I-ORG", "L-ORG"},
		},
		{
			name:   "adjacent types",
			tokens: resolved("Jan", "PERSON", "Warszawa", "GPE", "Polska", "GPE"),
			want:   []string{"U-PERSON", "B-GPE", "L-GPE"},
		},
		{
			name:   "entity at both ends",
			tokens: resolved("Anna", "PERSON", "i", "", "Ewa", "PERSON"),
			want:   []string{"U-PERSON", "O", "U-PERSON"},
		},
		{
			name:   "empty",
			tokens: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Encode(tt.tokens)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if got := Tags(out); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Encode() = %v, want %v", got, tt.want)
			}
			for i, tok := range out {
				if tok.ID != tt.tokens[i].ID || tok.Orth != tt.tokens[i].Orth {
					t.Errorf("token %d = (%q, %d), want orth and id kept", i, tok.Orth, tok.ID)
				}
				if len(tok.Annotations) != 1 || tok.Annotations[0].Strength != ir.Active {
					t.Errorf("token %d annotations = %v", i, tok.Annotations)
				}
			}
		})
	}
}

func TestEncodeKeepsInput(t *testing.T) {
	tokens := resolved("Jan", "PERSON", "Kowalski", "PERSON")
	if _, err := Encode(tokens); err != nil {
		t.Fatal(err)
	}
	if tokens[0].Annotations[0].Channel != "PERSON" {
		t.Errorf("input modified: %v", tokens[0].Annotations)
	}
}

func TestEncodeMultipleActiveLabels(t *testing.T) {
	tokens := resolved("Jan", "PERSON")
	tokens = append(tokens, ir.NewToken("Gdańsk", 1,
		ir.Annotation{Channel: "GPE", Strength: "1"},
		ir.Annotation{Channel: "LOC", Strength: "1"}))

	out, err := Encode(tokens)
	if out != nil {
		t.Errorf("Encode() returned tokens on violation: %v", out)
	}
	if !errors.Is(err, errors.ErrInvariant) {
		t.Fatalf("Encode() error = %v, want ErrInvariant", err)
	}
	var iv *errors.InvariantViolation
	if !errors.As(err, &iv) || iv.TokenID != 1 {
		t.Errorf("violation = %+v, want token 1", iv)
	}
	if len(tokens[1].Annotations) != 2 {
		t.Error("input must be untouched on violation")
	}
}

func TestEncodeIgnoresInactiveAndOutside(t *testing.T) {
	tokens := []*ir.Token{
		ir.NewToken("a", 0, ir.Annotation{Channel: "PERSON", Strength: "0"}),
		ir.NewToken("b", 1, ir.Annotation{Channel: "O", Strength: "1"}, ir.Annotation{Channel: "GPE", Strength: "1"}),
	}
	out, err := Encode(tokens)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := Tags(out); !reflect.DeepEqual(got, []string{"O", "U-GPE"}) {
		t.Errorf("Encode() = %v", got)
	}
}

func TestSpans(t *testing.T) {
	tests := []struct {
		name    string
		tags    []string
		want    []Span
		wantErr string
	}{
		{
			name: "mixed",
			tags: []string{"B-PERSON", "L-PERSON", "O", "U-GPE", "B-ORG", "I-ORG", "L-ORG"},
			want: []Span{{0, 2, "PERSON"}, {3, 4, "GPE"}, {4, 7, "ORG"}},
		},
		{name: "all outside", tags: []string{"O", "O"}, want: nil},
		{name: "inside after outside", tags: []string{"O", "I-PERSON"}, wantErr: "without an open B-PERSON"},
		{name: "last after other type", tags: []string{"B-ORG", "L-GPE"}, wantErr: "without an open B-GPE"},
		{name: "unterminated", tags: []string{"B-ORG", "I-ORG"}, wantErr: "unterminated"},
		{name: "begin inside run", tags: []string{"B-ORG", "B-ORG", "L-ORG"}, wantErr: "unterminated"},
		{name: "outside inside run", tags: []string{"B-ORG", "O"}, wantErr: "unterminated"},
		{name: "bad tag", tags: []string{"X-ORG"}, wantErr: "invalid tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Spans(tt.tags)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Spans() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Spans() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Spans() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	sentences := [][]*ir.Token{
		resolved("Jan", "PERSON", "Kowalski", "PERSON", "przyjechał", ""),
		resolved("Warszawa", "GPE"),
		resolved("a", "", "b", ""),
		resolved("A", "ORG", "B", "ORG", "C", "ORG", "D", "GPE", "e", "", "F", "PERSON"),
		resolved("x", "LOC", "y", "LOC", "z", "PERSON", "w", "PERSON"),
	}

	for i, s := range sentences {
		out, err := Encode(s)
		if err != nil {
			t.Fatalf("sentence %d: Encode() error = %v", i, err)
		}
		tags := Tags(out)
		spans, err := Spans(tags)
		if err != nil {
			t.Fatalf("sentence %d: encoder output %v is not well formed: %v", i, tags, err)
		}
		if want := EntitySpans(s); !reflect.DeepEqual(spans, want) {
			t.Errorf("sentence %d: Spans(Encode()) = %v, want %v", i, spans, want)
		}
	}
}

func TestParseTag(t *testing.T) {
	tag, err := ParseTag("L-WORK_OF_ART")
	if err != nil || tag.Prefix != Last || tag.Type != "WORK_OF_ART" {
		t.Errorf("ParseTag() = (%+v, %v)", tag, err)
	}
	if tag.String() != "L-WORK_OF_ART" {
		t.Errorf("String() = %q", tag.String())
	}
	if o, _ := ParseTag("O"); o.Prefix != Outside || o.String() != "O" {
		t.Errorf("ParseTag(O) = %+v", o)
	}
	if _, err := ParseTag("B-"); err == nil {
		t.Error("ParseTag(B-) should fail")
	}
}
