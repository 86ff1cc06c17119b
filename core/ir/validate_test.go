package ir

import (
	"errors"
	"strings"
	"testing"
)

func corpusOf(docs ...*Document) *Corpus {
	return &Corpus{Documents: docs}
}

func TestValidateCorpusValid(t *testing.T) {
	b := NewDocumentBuilder(0)
	b.Token("Jan", ann("person_nam", "1"), ann("city_nam", "0"))
	b.Sentence()
	b.Token("Kraków", ann("person_nam", "0"), ann("city_nam", "2"))

	if errs := ValidateCorpus(corpusOf(b.Document())); len(errs) > 0 {
		t.Errorf("ValidateCorpus returned errors for valid corpus: %v", errs)
	}
}

func TestValidateCorpusTokenIDs(t *testing.T) {
	tests := []struct {
		name    string
		ids     []int
		wantErr int
	}{
		{name: "contiguous", ids: []int{0, 1, 2, 3}, wantErr: 0},
		{name: "starts at one", ids: []int{1, 2, 3}, wantErr: 1},
		{name: "gap", ids: []int{0, 1, 3, 4}, wantErr: 1},
		{name: "repeat", ids: []int{0, 1, 1, 2}, wantErr: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sentence{}
			for _, id := range tt.ids {
				s.Add(NewToken("t", id))
			}
			doc := &Document{Paragraphs: []*Paragraph{{Sentences: []*Sentence{s}}}}

			errs := ValidateCorpus(corpusOf(doc))
			if len(errs) != tt.wantErr {
				t.Errorf("ValidateCorpus() = %v, want %d errors", errs, tt.wantErr)
			}
			for _, err := range errs {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("error %T is not a ValidationError", err)
				} else if !strings.HasPrefix(ve.Path, "corpus[0].paragraphs[0]") {
					t.Errorf("Path = %q", ve.Path)
				}
			}
		})
	}
}

func TestValidateCorpusIDsSpanSentences(t *testing.T) {
	doc := &Document{Paragraphs: []*Paragraph{
		{Sentences: []*Sentence{{Tokens: []*Token{NewToken("a", 0)}}}},
		// numbering restarted per sentence is a violation
		{Sentences: []*Sentence{{Tokens: []*Token{NewToken("b", 0)}}}},
	}}
	errs := ValidateCorpus(corpusOf(doc))
	if len(errs) != 1 {
		t.Fatalf("ValidateCorpus() = %v, want 1 error", errs)
	}
	if !strings.Contains(errs[0].Error(), "want 1") {
		t.Errorf("error = %q", errs[0].Error())
	}
}

func TestValidateTokenAnnotations(t *testing.T) {
	tests := []struct {
		name    string
		anns    []Annotation
		wantMsg string
	}{
		{name: "duplicate", anns: []Annotation{ann("x", "1"), ann("x", "0")}, wantMsg: "duplicate channel"},
		{name: "empty channel", anns: []Annotation{ann("", "1")}, wantMsg: "empty channel"},
		{name: "bad strength", anns: []Annotation{ann("x", "true")}, wantMsg: "invalid strength"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Paragraphs: []*Paragraph{{Sentences: []*Sentence{{Tokens: []*Token{NewToken("a", 0, tt.anns...)}}}}}}
			errs := ValidateDocument(doc, StageRaw)
			if len(errs) != 1 || !strings.Contains(errs[0].Error(), tt.wantMsg) {
				t.Errorf("ValidateDocument() = %v, want one error containing %q", errs, tt.wantMsg)
			}
		})
	}
}

func TestValidateStage(t *testing.T) {
	tests := []struct {
		name    string
		stage   Stage
		anns    []Annotation
		wantErr bool
	}{
		{name: "resolved label", stage: StageResolved, anns: []Annotation{ann("PERSON", "1")}},
		{name: "resolved outside", stage: StageResolved, anns: nil},
		{name: "resolved with two labels", stage: StageResolved, anns: []Annotation{ann("PERSON", "1"), ann("GPE", "1")}, wantErr: true},
		{name: "resolved with instance strength", stage: StageResolved, anns: []Annotation{ann("PERSON", "2")}, wantErr: true},
		{name: "resolved with inactive pair", stage: StageResolved, anns: []Annotation{ann("PERSON", "0")}, wantErr: true},
		{name: "encoded tag", stage: StageEncoded, anns: []Annotation{ann("U-GPE", "1")}},
		{name: "encoded outside", stage: StageEncoded, anns: []Annotation{ann("O", "1")}},
		{name: "encoded raw label", stage: StageEncoded, anns: []Annotation{ann("GPE", "1")}, wantErr: true},
		{name: "encoded missing", stage: StageEncoded, anns: nil, wantErr: true},
		{name: "raw anything", stage: StageRaw, anns: []Annotation{ann("a_nam", "3"), ann("b_nam", "1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewDocumentBuilder(0)
			b.Token("x", tt.anns...)
			errs := ValidateStage(corpusOf(b.Document()), tt.stage)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateStage(%s) = %v, wantErr %v", tt.stage, errs, tt.wantErr)
			}
		})
	}
}

func TestIsTagShape(t *testing.T) {
	for _, s := range []string{"O", "B-PERSON", "I-ORG", "L-GPE", "U-X"} {
		if !IsTagShape(s) {
			t.Errorf("IsTagShape(%q) = false", s)
		}
	}
	for _, s := range []string{"", "B-", "X-PERSON", "PERSON", "o", "BPERSON"} {
		if IsTagShape(s) {
			t.Errorf("IsTagShape(%q) = true", s)
		}
	}
}

func TestParseStage(t *testing.T) {
	for _, s := range []Stage{StageRaw, StageResolved, StageEncoded} {
		got, err := ParseStage(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStage(%q) = (%v, %v)", s.String(), got, err)
		}
	}
	if _, err := ParseStage("cooked"); err == nil {
		t.Error("ParseStage(cooked) should fail")
	}
}
