package labelmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/nerconv/core/errors"
)

// Table maps source channel names to target channel names.
type Table map[string]string

// Clone returns a copy of the table.
func (t Table) Clone() Table {
	c := make(Table, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// Targets returns the distinct target names, sorted.
func (t Table) Targets() []string {
	seen := make(map[string]bool, len(t))
	var out []string
	for _, v := range t {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Sources returns the source channel names, sorted.
func (t Table) Sources() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// tableFile is the grammar of the text table format:
//
//	# comment
//	person_nam = PERSON
//	city_nam -> GPE
type tableFile struct {
	Entries []*tableEntry `parser:"@@*"`
}

type tableEntry struct {
	Pos    lexer.Position
	Source string `parser:"@Ident"`
	Arrow  string `parser:"@( \"=\" | \"->\" )"`
	Target string `parser:"@Ident"`
}

var tableLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Equals", Pattern: `=`},
	// hyphens only between word characters so "a->B" splits at the arrow
	{Name: "Ident", Pattern: `[\p{L}\p{N}_.]+(?:-[\p{L}\p{N}_.]+)*`},
})

var tableParser = participle.MustBuild[tableFile](
	participle.Lexer(tableLexer),
	participle.Elide("Comment", "Whitespace"),
)

// Parse reads a text table. name is used in error messages only.
func Parse(name string, r io.Reader) (Table, error) {
	f, err := tableParser.Parse(name, r)
	if err != nil {
		perr := &errors.ParseError{Format: "label table", Path: name, Message: err.Error(), Err: err}
		var pe participle.Error
		if errors.As(err, &pe) {
			perr.Line = pe.Position().Line
			perr.Message = pe.Message()
		}
		return nil, perr
	}

	t := make(Table, len(f.Entries))
	lines := make(map[string]int, len(f.Entries))
	for _, e := range f.Entries {
		if prev, dup := lines[e.Source]; dup {
			return nil, &errors.ParseError{
				Format:  "label table",
				Path:    name,
				Line:    e.Pos.Line,
				Message: fmt.Sprintf("duplicate source %q (first defined on line %d)", e.Source, prev),
			}
		}
		lines[e.Source] = e.Pos.Line
		t[e.Source] = e.Target
	}
	return t, nil
}

// ParseJSON reads a flat {"source": "target"} object. Duplicate keys and
// non-string targets are rejected.
func ParseJSON(name string, r io.Reader) (Table, error) {
	fail := func(msg string) error {
		return &errors.ParseError{Format: "label table", Path: name, Message: msg}
	}

	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fail(err.Error())
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fail("expected a JSON object")
	}

	t := make(Table)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fail(err.Error())
		}
		source := tok.(string)
		tok, err = dec.Token()
		if err != nil {
			return nil, fail(err.Error())
		}
		target, ok := tok.(string)
		if !ok {
			return nil, fail(fmt.Sprintf("target of %q must be a string", source))
		}
		if source == "" || target == "" {
			return nil, fail("empty channel name")
		}
		if _, dup := t[source]; dup {
			return nil, fail(fmt.Sprintf("duplicate source %q", source))
		}
		t[source] = target
	}
	if _, err := dec.Token(); err != nil {
		return nil, fail(err.Error())
	}
	return t, nil
}

// LoadFile reads a table from path. Files ending in .json are read as a
// JSON object, anything else as a text table.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(path, bytes.NewReader(data))
	}
	return Parse(path, bytes.NewReader(data))
}
