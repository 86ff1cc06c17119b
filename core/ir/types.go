package ir

// types.go - Annotation tree type definitions
// Corpus -> Document -> Paragraph -> Sentence -> Token, each token carrying an
// ordered list of channel/strength annotation pairs.

// Inactive is the strength of a channel that does not mark the token.
const Inactive = "0"

// Active is the strength stamped on resolved and encoded labels.
const Active = "1"

// OutsideTag is the tag of tokens outside any entity.
const OutsideTag = "O"

// Annotation is a single channel/strength pair on a token.
type Annotation struct {
	// Channel is the annotation dimension (e.g., "person_nam", "PERSON", "B-ORG").
	Channel string

	// Strength is "0" for inactive, otherwise a positive instance number.
	Strength string
}

// IsActive returns true if the annotation marks the token.
func (a Annotation) IsActive() bool {
	return a.Strength != Inactive
}

// Token is a single word unit with its annotations.
type Token struct {
	// Orth is the surface form.
	Orth string

	// ID is the document-wide, zero-based position of the token.
	ID int

	// Annotations is the ordered list of channel annotations.
	Annotations []Annotation
}

// NewToken creates a token with the given annotations.
func NewToken(orth string, id int, anns ...Annotation) *Token {
	return &Token{Orth: orth, ID: id, Annotations: anns}
}

// Entity returns the first active channel of the token, ignoring the outside tag.
func (t *Token) Entity() (string, bool) {
	for _, a := range t.Annotations {
		if a.IsActive() {
			if a.Channel == OutsideTag {
				return "", false
			}
			return a.Channel, true
		}
	}
	return "", false
}

// IsEntity returns true if the token carries an active, non-outside channel.
func (t *Token) IsEntity() bool {
	_, ok := t.Entity()
	return ok
}

// ActiveChannels returns the active annotations in order.
func (t *Token) ActiveChannels() []Annotation {
	var out []Annotation
	for _, a := range t.Annotations {
		if a.IsActive() {
			out = append(out, a)
		}
	}
	return out
}

// Channel looks up an annotation by channel name.
func (t *Token) Channel(name string) (Annotation, bool) {
	for _, a := range t.Annotations {
		if a.Channel == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// SetLabel replaces all annotations with a single active label.
func (t *Token) SetLabel(label string) {
	t.Annotations = []Annotation{{Channel: label, Strength: Active}}
}

// Clone returns a deep copy of the token.
func (t *Token) Clone() *Token {
	c := &Token{Orth: t.Orth, ID: t.ID}
	if t.Annotations != nil {
		c.Annotations = append([]Annotation(nil), t.Annotations...)
	}
	return c
}

// Sentence is an ordered sequence of tokens.
type Sentence struct {
	Tokens []*Token
}

// Add appends a token to the sentence.
func (s *Sentence) Add(t *Token) {
	s.Tokens = append(s.Tokens, t)
}

// Paragraph is an ordered sequence of sentences.
type Paragraph struct {
	Sentences []*Sentence
}

// Add appends a sentence to the paragraph.
func (p *Paragraph) Add(s *Sentence) {
	p.Sentences = append(p.Sentences, s)
}

// Document is a single source text with document-wide token numbering.
type Document struct {
	ID         int
	Paragraphs []*Paragraph
}

// Add appends a paragraph to the document.
func (d *Document) Add(p *Paragraph) {
	d.Paragraphs = append(d.Paragraphs, p)
}

// Sentences returns every sentence of the document in order.
func (d *Document) Sentences() []*Sentence {
	var out []*Sentence
	for _, p := range d.Paragraphs {
		out = append(out, p.Sentences...)
	}
	return out
}

// Tokens returns every token of the document in order.
func (d *Document) Tokens() []*Token {
	var out []*Token
	for _, p := range d.Paragraphs {
		for _, s := range p.Sentences {
			out = append(out, s.Tokens...)
		}
	}
	return out
}

// Corpus is the root of the annotation tree.
type Corpus struct {
	Documents []*Document
}

// Add appends a document to the corpus.
func (c *Corpus) Add(d *Document) {
	c.Documents = append(c.Documents, d)
}

// Stats summarizes the size of a corpus.
type Stats struct {
	Documents  int `json:"documents"`
	Paragraphs int `json:"paragraphs"`
	Sentences  int `json:"sentences"`
	Tokens     int `json:"tokens"`
	Entities   int `json:"entities"`
}

// Stats counts the elements of the corpus.
func (c *Corpus) Stats() Stats {
	var st Stats
	st.Documents = len(c.Documents)
	for _, d := range c.Documents {
		st.Paragraphs += len(d.Paragraphs)
		for _, p := range d.Paragraphs {
			st.Sentences += len(p.Sentences)
			for _, s := range p.Sentences {
				st.Tokens += len(s.Tokens)
				for _, t := range s.Tokens {
					if t.IsEntity() {
						st.Entities++
					}
				}
			}
		}
	}
	return st
}

// Clone returns a deep copy of the corpus.
func (c *Corpus) Clone() *Corpus {
	out := &Corpus{Documents: make([]*Document, len(c.Documents))}
	for i, d := range c.Documents {
		nd := &Document{ID: d.ID, Paragraphs: make([]*Paragraph, len(d.Paragraphs))}
		for j, p := range d.Paragraphs {
			np := &Paragraph{Sentences: make([]*Sentence, len(p.Sentences))}
			for k, s := range p.Sentences {
				ns := &Sentence{Tokens: make([]*Token, len(s.Tokens))}
				for l, t := range s.Tokens {
					ns.Tokens[l] = t.Clone()
				}
				np.Sentences[k] = ns
			}
			nd.Paragraphs[j] = np
		}
		out.Documents[i] = nd
	}
	return out
}
