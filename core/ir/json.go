package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/FocuswithJustin/nerconv/core/errors"
)

// NERFormat selects the representation of the "ner" field when writing.
type NERFormat int

const (
	// NERAnnotations writes a list of single-key {channel: strength} objects.
	NERAnnotations NERFormat = iota
	// NERTags writes the token's entity label (or tag) as a single string.
	NERTags
)

// String returns the flag spelling of the format.
func (f NERFormat) String() string {
	switch f {
	case NERAnnotations:
		return "annotations"
	case NERTags:
		return "tags"
	default:
		return fmt.Sprintf("NERFormat(%d)", int(f))
	}
}

// ParseNERFormat parses the flag spelling of a format.
func ParseNERFormat(s string) (NERFormat, error) {
	switch s {
	case "annotations", "":
		return NERAnnotations, nil
	case "tags":
		return NERTags, nil
	}
	return 0, errors.NewUnsupported("ner format", s)
}

// Wire types mirror the persisted shape. Pointers mark required fields.

type wireDocument struct {
	ID         *int             `json:"id"`
	Paragraphs *[]wireParagraph `json:"paragraphs"`
}

type wireParagraph struct {
	Sentences []wireSentence `json:"sentences"`
}

type wireSentence struct {
	Tokens   []wireToken       `json:"tokens"`
	Brackets []json.RawMessage `json:"brackets"`
}

type wireToken struct {
	Orth *string         `json:"orth"`
	ID   *int            `json:"id"`
	NER  json.RawMessage `json:"ner"`
}

type outDocument struct {
	ID         int            `json:"id"`
	Paragraphs []outParagraph `json:"paragraphs"`
}

type outParagraph struct {
	Sentences []outSentence `json:"sentences"`
}

type outSentence struct {
	Tokens   []outToken        `json:"tokens"`
	Brackets []json.RawMessage `json:"brackets"`
}

type outToken struct {
	Orth string `json:"orth"`
	ID   int    `json:"id"`
	NER  any    `json:"ner"`
}

// annotationJSON marshals as a single-key object.
type annotationJSON Annotation

func (a annotationJSON) MarshalJSON() ([]byte, error) {
	k, err := json.Marshal(a.Channel)
	if err != nil {
		return nil, err
	}
	v, err := json.Marshal(a.Strength)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ValidStrength reports whether s is "0" or a positive decimal integer
// without a leading zero.
func ValidStrength(s string) bool {
	if s == Inactive {
		return true
	}
	if s == "" || s[0] < '1' || s[0] > '9' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ReadJSON decodes a corpus from its persisted JSON shape.
// Loading stops at the first malformed element.
func ReadJSON(r io.Reader) (*Corpus, error) {
	var docs []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&docs); err != nil {
		return nil, &errors.MalformedInputError{
			Message: fmt.Sprintf("corpus must be a JSON array of documents: %v", err),
		}
	}

	corpus := &Corpus{Documents: make([]*Document, 0, len(docs))}
	for i, raw := range docs {
		path := fmt.Sprintf("[%d]", i)
		doc, err := decodeDocument(path, raw)
		if err != nil {
			return nil, err
		}
		corpus.Add(doc)
	}
	return corpus, nil
}

func decodeDocument(path string, raw json.RawMessage) (*Document, error) {
	var wd wireDocument
	if err := json.Unmarshal(raw, &wd); err != nil {
		return nil, errors.NewMalformed(path, err.Error())
	}
	if wd.ID == nil {
		return nil, errors.NewMalformed(path, `missing "id"`)
	}
	if wd.Paragraphs == nil {
		return nil, errors.NewMalformed(path, `missing "paragraphs"`)
	}

	doc := &Document{ID: *wd.ID, Paragraphs: make([]*Paragraph, 0, len(*wd.Paragraphs))}
	for pi, wp := range *wd.Paragraphs {
		para := &Paragraph{Sentences: make([]*Sentence, 0, len(wp.Sentences))}
		for si, ws := range wp.Sentences {
			sent := &Sentence{Tokens: make([]*Token, 0, len(ws.Tokens))}
			for ti, wt := range ws.Tokens {
				tpath := fmt.Sprintf("%s.paragraphs[%d].sentences[%d].tokens[%d]", path, pi, si, ti)
				tok, err := decodeToken(tpath, wt)
				if err != nil {
					return nil, err
				}
				sent.Add(tok)
			}
			para.Add(sent)
		}
		doc.Add(para)
	}
	return doc, nil
}

func decodeToken(path string, wt wireToken) (*Token, error) {
	if wt.Orth == nil {
		return nil, errors.NewMalformed(path, `missing "orth"`)
	}
	if wt.ID == nil {
		return nil, errors.NewMalformed(path, `missing "id"`)
	}
	if wt.NER == nil {
		return nil, errors.NewMalformed(path, `missing "ner"`)
	}
	anns, err := decodeNER(path+".ner", wt.NER)
	if err != nil {
		return nil, err
	}
	return &Token{Orth: *wt.Orth, ID: *wt.ID, Annotations: anns}, nil
}

func decodeNER(path string, raw json.RawMessage) ([]Annotation, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.NewMalformed(path, "empty value")
	}

	switch trimmed[0] {
	case 'n':
		return nil, nil
	case '"':
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return nil, errors.NewMalformed(path, err.Error())
		}
		if tag == "" {
			return nil, errors.NewMalformed(path, "empty tag")
		}
		return []Annotation{{Channel: tag, Strength: Active}}, nil
	case '[':
	default:
		return nil, errors.NewMalformed(path, "expected a list of annotations, a tag or null")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, errors.NewMalformed(path, err.Error())
	}

	anns := make([]Annotation, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		ipath := fmt.Sprintf("%s[%d]", path, i)
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			return nil, errors.NewMalformed(ipath, "annotation must be a {channel: strength} object")
		}
		if len(obj) != 1 {
			return nil, errors.NewMalformed(ipath, fmt.Sprintf("annotation must have exactly one key, got %d", len(obj)))
		}
		for channel, rawStrength := range obj {
			var strength string
			if err := json.Unmarshal(rawStrength, &strength); err != nil {
				return nil, errors.NewMalformed(ipath, fmt.Sprintf("strength of %q must be a string", channel))
			}
			if channel == "" {
				return nil, errors.NewMalformed(ipath, "empty channel name")
			}
			if !ValidStrength(strength) {
				return nil, errors.NewMalformed(ipath, fmt.Sprintf("invalid strength %q for %q", strength, channel))
			}
			if seen[channel] {
				return nil, errors.NewMalformed(ipath, fmt.Sprintf("duplicate channel %q", channel))
			}
			seen[channel] = true
			anns = append(anns, Annotation{Channel: channel, Strength: strength})
		}
	}
	return anns, nil
}

// WriteJSON encodes the corpus in its persisted JSON shape.
func WriteJSON(w io.Writer, c *Corpus, format NERFormat) error {
	docs := make([]outDocument, 0, len(c.Documents))
	for _, d := range c.Documents {
		od := outDocument{ID: d.ID, Paragraphs: make([]outParagraph, 0, len(d.Paragraphs))}
		for _, p := range d.Paragraphs {
			op := outParagraph{Sentences: make([]outSentence, 0, len(p.Sentences))}
			for _, s := range p.Sentences {
				osent := outSentence{
					Tokens:   make([]outToken, 0, len(s.Tokens)),
					Brackets: []json.RawMessage{},
				}
				for _, t := range s.Tokens {
					osent.Tokens = append(osent.Tokens, outToken{Orth: t.Orth, ID: t.ID, NER: nerValue(t, format)})
				}
				op.Sentences = append(op.Sentences, osent)
			}
			od.Paragraphs = append(od.Paragraphs, op)
		}
		docs = append(docs, od)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(docs)
}

// MarshalJSON encodes the corpus with annotation lists.
func (c *Corpus) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, c, NERAnnotations); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a corpus, rejecting malformed input.
func (c *Corpus) UnmarshalJSON(data []byte) error {
	decoded, err := ReadJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

func nerValue(t *Token, format NERFormat) any {
	if format == NERAnnotations {
		anns := make([]annotationJSON, len(t.Annotations))
		for i, a := range t.Annotations {
			anns[i] = annotationJSON(a)
		}
		return anns
	}

	for _, a := range t.Annotations {
		if a.IsActive() {
			return a.Channel
		}
	}
	return nil
}
