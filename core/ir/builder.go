package ir

// DocumentBuilder constructs a Document while assigning token ids
// sequentially across sentence and paragraph boundaries.
type DocumentBuilder struct {
	doc  *Document
	para *Paragraph
	sent *Sentence
	next int
}

// NewDocumentBuilder starts a document with the given id.
func NewDocumentBuilder(id int) *DocumentBuilder {
	return &DocumentBuilder{doc: &Document{ID: id}}
}

// Paragraph starts a new paragraph. Empty trailing paragraphs are kept.
func (b *DocumentBuilder) Paragraph() *DocumentBuilder {
	b.para = &Paragraph{}
	b.doc.Add(b.para)
	b.sent = nil
	return b
}

// Sentence starts a new sentence in the current paragraph, opening one if needed.
func (b *DocumentBuilder) Sentence() *DocumentBuilder {
	if b.para == nil {
		b.Paragraph()
	}
	b.sent = &Sentence{}
	b.para.Add(b.sent)
	return b
}

// Token appends a token to the current sentence and returns it.
func (b *DocumentBuilder) Token(orth string, anns ...Annotation) *Token {
	if b.sent == nil {
		b.Sentence()
	}
	t := NewToken(orth, b.next, anns...)
	b.next++
	b.sent.Add(t)
	return t
}

// NextID returns the id the next token will receive.
func (b *DocumentBuilder) NextID() int {
	return b.next
}

// Document returns the built document.
func (b *DocumentBuilder) Document() *Document {
	return b.doc
}
