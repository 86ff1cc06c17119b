// Package conll reads and writes CoNLL-style token-per-line NER files.
//
// Columns are separated by whitespace with the token first. Blank lines end
// sentences and -DOCSTART- lines start documents. Tags in IO, IOB, BIO,
// BIOES or BILUO notation are read; BILUO is written.
package conll

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/nerconv/core/biluo"
	"github.com/FocuswithJustin/nerconv/core/errors"
	"github.com/FocuswithJustin/nerconv/core/ir"
)

// DocStart marks the beginning of a document.
const DocStart = "-DOCSTART-"

// ReadOptions configures Read.
type ReadOptions struct {
	// TagColumn is the 1-based column holding the tag; 0 selects the last.
	TagColumn int
	// Name is used in error messages.
	Name string
}

// Read parses a CoNLL file into a corpus with one paragraph per document.
// Each entity mention becomes an annotation {TYPE: k} where k numbers the
// mentions of TYPE within the sentence. The resolver keeps adjacent mentions
// of one type as separate runs, but BILUO encoding joins them into one span.
func Read(r io.Reader, opts ReadOptions) (*ir.Corpus, error) {
	c := &ir.Corpus{}
	var b *ir.DocumentBuilder
	var mentions *mentionCounter

	flush := func() {
		if b != nil && b.NextID() > 0 {
			c.Add(b.Document())
		}
		b = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			mentions = nil
			continue
		}
		if fields[0] == DocStart {
			flush()
			mentions = nil
			continue
		}
		if len(fields) < 2 {
			return nil, &errors.ParseError{Format: "CoNLL", Path: opts.Name, Line: line, Message: "expected a token and a tag"}
		}

		col := len(fields) - 1
		if opts.TagColumn > 0 {
			col = opts.TagColumn - 1
		}
		if col >= len(fields) || col == 0 {
			return nil, &errors.ParseError{
				Format:  "CoNLL",
				Path:    opts.Name,
				Line:    line,
				Message: fmt.Sprintf("no tag in column %d of %d", col+1, len(fields)),
			}
		}

		if b == nil {
			b = ir.NewDocumentBuilder(len(c.Documents))
		}
		if mentions == nil {
			b.Sentence()
			mentions = newMentionCounter()
		}

		ann, err := mentions.next(fields[col])
		if err != nil {
			return nil, &errors.ParseError{Format: "CoNLL", Path: opts.Name, Line: line, Message: err.Error()}
		}
		if ann == nil {
			b.Token(fields[0])
		} else {
			b.Token(fields[0], *ann)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewIO("read", opts.Name, err)
	}
	flush()
	return c, nil
}

// mentionCounter numbers entity mentions within one sentence.
type mentionCounter struct {
	open  string
	count map[string]int
}

func newMentionCounter() *mentionCounter {
	return &mentionCounter{count: make(map[string]int)}
}

func (m *mentionCounter) next(raw string) (*ir.Annotation, error) {
	prefix, typ, err := splitTag(raw)
	if err != nil {
		return nil, err
	}

	switch prefix {
	case biluo.Outside:
		m.open = ""
		return nil, nil
	case biluo.Begin, biluo.Unit:
		m.count[typ]++
		m.open = typ
	case biluo.Inside, biluo.Last:
		// IOB1 and IO start mentions with I
		if m.open != typ {
			m.count[typ]++
			m.open = typ
		}
	}

	ann := &ir.Annotation{Channel: typ, Strength: strconv.Itoa(m.count[typ])}
	if prefix == biluo.Unit || prefix == biluo.Last {
		m.open = ""
	}
	return ann, nil
}

// splitTag maps a tag onto a BILUO prefix and type. BIOES E and S read as L
// and U; a bare type reads as I.
func splitTag(raw string) (biluo.Prefix, string, error) {
	if raw == ir.OutsideTag {
		return biluo.Outside, "", nil
	}
	if len(raw) > 2 && raw[1] == '-' {
		switch raw[0] {
		case 'E':
			return biluo.Last, raw[2:], nil
		case 'S':
			return biluo.Unit, raw[2:], nil
		}
		tag, err := biluo.ParseTag(raw)
		if err != nil {
			return 0, "", fmt.Errorf("invalid tag %q", raw)
		}
		return tag.Prefix, tag.Type, nil
	}
	if strings.ContainsAny(raw, "-") {
		return 0, "", fmt.Errorf("invalid tag %q", raw)
	}
	return biluo.Inside, raw, nil
}

// Write emits orth<TAB>tag lines with a blank line after every sentence and
// a -DOCSTART- line between documents. The tag is the token's entity label,
// or O. Whitespace inside orth is replaced with underscores.
func Write(w io.Writer, c *ir.Corpus) error {
	bw := bufio.NewWriter(w)
	for i, d := range c.Documents {
		if i > 0 {
			if _, err := fmt.Fprintf(bw, "%s\n\n", DocStart); err != nil {
				return err
			}
		}
		for _, s := range d.Sentences() {
			if len(s.Tokens) == 0 {
				continue
			}
			tags := biluo.Tags(s.Tokens)
			for j, tok := range s.Tokens {
				orth := strings.Join(strings.Fields(tok.Orth), "_")
				if orth == "" {
					orth = "_"
				}
				if _, err := fmt.Fprintf(bw, "%s\t%s\n", orth, tags[j]); err != nil {
					return err
				}
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
