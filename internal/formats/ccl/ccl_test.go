package ccl

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/FocuswithJustin/nerconv/core/errors"
	"github.com/FocuswithJustin/nerconv/core/ir"
	"github.com/FocuswithJustin/nerconv/internal/validation"
)

const sampleCCL = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE chunkList SYSTEM "ccl.dtd">
<chunkList>
 <chunk id="ch1" type="p">
  <sentence id="s1">
   <tok>
    <orth>Jan</orth>
    <lex disamb="1"><base>Jan</base><ctag>subst:sg:nom:m1</ctag></lex>
    <ann chan="person_nam" head="1">1</ann>
    <ann chan="city_nam">0</ann>
    <ann chan="chunk_np">1</ann>
   </tok>
   <tok>
    <orth>Kowalski</orth>
    <ann chan="person_nam">1</ann>
    <ann chan="city_nam">0</ann>
    <ann chan="chunk_np">1</ann>
   </tok>
   <ns/>
   <tok>
    <orth>.</orth>
    <ann chan="person_nam">0</ann>
    <ann chan="city_nam">0</ann>
   </tok>
  </sentence>
 </chunk>
 <chunk id="ch2" type="p">
  <sentence id="s2">
   <tok>
    <orth>Kraków</orth>
    <ann chan="person_nam">0</ann>
    <ann chan="city_nam">1</ann>
   </tok>
  </sentence>
  <sentence id="s3">
   <tok>
    <orth>Łódź</orth>
    <ann chan="city_nam">2</ann>
   </tok>
  </sentence>
 </chunk>
</chunkList>
`

func TestReadDocument(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(sampleCCL), 3, DefaultOptions())
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if doc.ID != 3 {
		t.Errorf("ID = %d, want 3", doc.ID)
	}
	if len(doc.Paragraphs) != 2 || len(doc.Paragraphs[0].Sentences) != 1 || len(doc.Paragraphs[1].Sentences) != 2 {
		t.Fatalf("unexpected shape: %d paragraphs", len(doc.Paragraphs))
	}

	toks := doc.Tokens()
	var orths []string
	for i, tok := range toks {
		orths = append(orths, tok.Orth)
		if tok.ID != i {
			t.Errorf("token %q id = %d, want %d", tok.Orth, tok.ID, i)
		}
	}
	if want := []string{"Jan", "Kowalski", ".", "Kraków", "Łódź"}; !reflect.DeepEqual(orths, want) {
		t.Errorf("orths = %v, want %v", orths, want)
	}

	wantAnns := []ir.Annotation{{Channel: "person_nam", Strength: "1"}, {Channel: "city_nam", Strength: "0"}}
	if !reflect.DeepEqual(toks[0].Annotations, wantAnns) {
		t.Errorf("annotations = %v, want %v", toks[0].Annotations, wantAnns)
	}
	if a, ok := toks[4].Channel("city_nam"); !ok || a.Strength != "2" {
		t.Errorf("instance strength lost: %v", toks[4].Annotations)
	}
	if errs := ir.ValidateCorpus(&ir.Corpus{Documents: []*ir.Document{doc}}); len(errs) > 0 {
		t.Errorf("ValidateCorpus() = %v", errs)
	}
}

func TestReadDocumentAllChannels(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(sampleCCL), 0, Options{})
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if _, ok := doc.Tokens()[0].Channel("chunk_np"); !ok {
		t.Error("empty suffix should keep every channel")
	}
}

func TestReadDocumentNormalizesOrth(t *testing.T) {
	// "o" followed by a combining acute accent
	input := "<chunkList><chunk><sentence><tok><orth>Krako\u0301w</orth></tok></sentence></chunk></chunkList>"
	doc, err := ReadDocument(strings.NewReader(input), 0, DefaultOptions())
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if got := doc.Tokens()[0].Orth; got != "Kraków" {
		t.Errorf("orth = %q, want NFC form", got)
	}
}

func TestReadDocumentWithoutChunks(t *testing.T) {
	input := "<cesAna><sentence><tok><orth>a</orth></tok></sentence><sentence><tok><orth>b</orth></tok></sentence></cesAna>"
	doc, err := ReadDocument(strings.NewReader(input), 0, DefaultOptions())
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if len(doc.Paragraphs) != 1 || len(doc.Sentences()) != 2 {
		t.Errorf("want one paragraph with two sentences, got %d paragraphs", len(doc.Paragraphs))
	}
}

func TestReadDocumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "missing orth", input: "<chunk><sentence><tok><ann chan=\"x_nam\">1</ann></tok></sentence></chunk>", wantMsg: "missing orth"},
		{name: "bad strength", input: "<chunk><sentence><tok><orth>a</orth><ann chan=\"x_nam\">yes</ann></tok></sentence></chunk>", wantMsg: "invalid strength"},
		{name: "duplicate channel", input: "<chunk><sentence><tok><orth>a</orth><ann chan=\"x_nam\">1</ann><ann chan=\"x_nam\">0</ann></tok></sentence></chunk>", wantMsg: "duplicate channel"},
		{name: "malformed xml", input: "<chunk><sentence></chunk>", wantMsg: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDocument(strings.NewReader(tt.input), 0, DefaultOptions())
			var pe *errors.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ReadDocument() error = %v, want ParseError", err)
			}
			if !strings.Contains(pe.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to contain %q", pe.Message, tt.wantMsg)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "00101.xml"), sampleCCL)
	writeFile(t, filepath.Join(dir, "b", "00102.xml"), "<chunkList><chunk><sentence><tok><orth>x</orth></tok></sentence></chunk></chunkList>")
	writeFile(t, filepath.Join(dir, DefaultIndex), "a/00101.xml\n\nb/00102.xml\n")

	c, err := ReadIndex(dir, "", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadIndex() error = %v", err)
	}
	if len(c.Documents) != 2 || c.Documents[0].ID != 0 || c.Documents[1].ID != 1 {
		t.Fatalf("documents = %+v", c.Documents)
	}
	if got := c.Stats().Tokens; got != 6 {
		t.Errorf("tokens = %d, want 6", got)
	}
}

func TestReadIndexRejectsNonDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.txt"), "a/00101.xml\na/00101.rel.xml\n")

	_, err := ReadIndex(dir, "index.txt", DefaultOptions())
	var pe *errors.ParseError
	if !errors.As(err, &pe) || pe.Line != 2 {
		t.Errorf("ReadIndex() error = %v, want ParseError on line 2", err)
	}

	writeFile(t, filepath.Join(dir, "escape.txt"), "../outside.xml\n")
	if _, err := ReadIndex(dir, "escape.txt", DefaultOptions()); !errors.Is(err, validation.ErrPathTraversal) {
		t.Errorf("ReadIndex(escape) error = %v, want ErrPathTraversal", err)
	}

	var ioErr *errors.IOError
	if _, err := ReadIndex(dir, "missing.txt", DefaultOptions()); !errors.As(err, &ioErr) {
		t.Errorf("ReadIndex(missing) error = %v, want IOError", err)
	}
}
