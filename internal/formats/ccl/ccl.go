// Package ccl reads KPWr corpora in the CCL XML format.
//
// A CCL file is a chunkList of chunks, each holding sentences of tok
// elements:
//
//	<chunk id="ch1">
//	  <sentence id="s1">
//	    <tok>
//	      <orth>Jan</orth>
//	      <lex disamb="1"><base>Jan</base><ctag>subst:sg:nom:m1</ctag></lex>
//	      <ann chan="person_nam" head="1">1</ann>
//	    </tok>
//	  </sentence>
//	</chunk>
//
// Every chunk becomes a paragraph and every ann element whose channel ends
// with the configured suffix becomes an annotation.
package ccl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/text/unicode/norm"

	"github.com/FocuswithJustin/nerconv/core/errors"
	"github.com/FocuswithJustin/nerconv/core/ir"
	"github.com/FocuswithJustin/nerconv/internal/validation"
)

// DefaultIndex is the index file name shipped with KPWr.
const DefaultIndex = "index_names.txt"

// Options configures the reader.
type Options struct {
	// ChannelSuffix selects the ann channels to keep. Empty keeps all.
	ChannelSuffix string
}

// DefaultOptions keeps the named entity channels.
func DefaultOptions() Options {
	return Options{ChannelSuffix: "nam"}
}

var (
	chunkExpr    = xpath.MustCompile("//chunk")
	sentenceExpr = xpath.MustCompile(".//sentence")
	tokExpr      = xpath.MustCompile("./tok")
	orthExpr     = xpath.MustCompile("./orth")
	annExpr      = xpath.MustCompile("./ann")
)

// ReadDocument reads one CCL document. Token ids run from 0.
func ReadDocument(r io.Reader, id int, opts Options) (*ir.Document, error) {
	return readDocument(r, "", id, opts)
}

// ReadFile reads one CCL file.
func ReadFile(path string, id int, opts Options) (*ir.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()
	return readDocument(bufio.NewReader(f), path, id, opts)
}

func readDocument(r io.Reader, path string, id int, opts Options) (*ir.Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, &errors.ParseError{Format: "CCL", Path: path, Message: err.Error(), Err: err}
	}

	b := ir.NewDocumentBuilder(id)
	chunks := xmlquery.QuerySelectorAll(root, chunkExpr)
	if len(chunks) == 0 {
		chunks = []*xmlquery.Node{root}
	}

	for _, chunk := range chunks {
		b.Paragraph()
		for _, sent := range xmlquery.QuerySelectorAll(chunk, sentenceExpr) {
			b.Sentence()
			for _, tok := range xmlquery.QuerySelectorAll(sent, tokExpr) {
				orth, anns, err := readToken(tok, opts)
				if err != nil {
					return nil, &errors.ParseError{
						Format:  "CCL",
						Path:    path,
						Message: fmt.Sprintf("token %d: %s", b.NextID(), err),
					}
				}
				b.Token(orth, anns...)
			}
		}
	}
	return b.Document(), nil
}

func readToken(tok *xmlquery.Node, opts Options) (string, []ir.Annotation, error) {
	orthNode := xmlquery.QuerySelector(tok, orthExpr)
	if orthNode == nil {
		return "", nil, fmt.Errorf("missing orth")
	}
	orth := norm.NFC.String(strings.TrimSpace(orthNode.InnerText()))

	var anns []ir.Annotation
	seen := make(map[string]bool)
	for _, a := range xmlquery.QuerySelectorAll(tok, annExpr) {
		channel := a.SelectAttr("chan")
		if channel == "" || !strings.HasSuffix(channel, opts.ChannelSuffix) {
			continue
		}
		strength := strings.TrimSpace(a.InnerText())
		if !ir.ValidStrength(strength) {
			return "", nil, fmt.Errorf("invalid strength %q for %q", strength, channel)
		}
		if seen[channel] {
			return "", nil, fmt.Errorf("duplicate channel %q", channel)
		}
		seen[channel] = true
		anns = append(anns, ir.Annotation{Channel: channel, Strength: strength})
	}
	return orth, anns, nil
}

// ReadIndex reads every file listed in the index file of dir, one path
// relative to dir per line. Documents are numbered in index order.
func ReadIndex(dir, index string, opts Options) (*ir.Corpus, error) {
	if index == "" {
		index = DefaultIndex
	}
	files, err := readIndexFile(dir, filepath.Join(dir, index))
	if err != nil {
		return nil, err
	}

	c := &ir.Corpus{Documents: make([]*ir.Document, 0, len(files))}
	for i, name := range files {
		doc, err := ReadFile(filepath.Join(dir, name), i, opts)
		if err != nil {
			return nil, err
		}
		c.Add(doc)
	}
	return c, nil
}

func readIndexFile(dir, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var files []string
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		// relation and metadata files carry no tokens
		if strings.HasSuffix(name, "rel.xml") || strings.HasSuffix(name, ".ini") {
			return nil, &errors.ParseError{
				Format:  "CCL index",
				Path:    path,
				Line:    line,
				Message: fmt.Sprintf("%s is not a CCL document", name),
			}
		}
		clean, err := validation.SanitizePath(dir, name)
		if err != nil {
			return nil, &errors.ParseError{Format: "CCL index", Path: path, Line: line, Message: err.Error(), Err: err}
		}
		files = append(files, clean)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return files, nil
}
