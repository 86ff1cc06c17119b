// Package ir provides the annotation tree shared by every nerconv stage.
//
// # Core Types
//
// The tree is organized hierarchically:
//
//   - Corpus: root container, owns its documents
//   - Document: one source text; token ids run from 0 across the whole document
//   - Paragraph: ordered sentences
//   - Sentence: ordered tokens, the unit every pipeline stage works on
//   - Token: surface form plus an ordered list of channel/strength annotations
//
// # Annotations
//
// An Annotation is a (channel, strength) pair. Strength "0" means inactive;
// any other value marks the token, and values above "1" number distinct
// mentions of the same channel within a sentence. A token's entity label is
// its first active channel, so annotation order is significant and is
// preserved by the JSON codec.
//
// # Persisted Shape
//
// ReadJSON and WriteJSON speak the corpus JSON shape:
//
//	[{"id": 0, "paragraphs": [{"sentences": [{"tokens": [
//	    {"orth": "Jan", "id": 0, "ner": [{"person_nam": "1"}]}
//	], "brackets": []}]}]}]
//
// After BILUO encoding the "ner" field is written as a single tag string
// (NERTags).
//
// # Example
//
//	b := ir.NewDocumentBuilder(0)
//	b.Sentence()
//	b.Token("Jan", ir.Annotation{Channel: "PERSON", Strength: "1"})
//	b.Token("Kowalski", ir.Annotation{Channel: "PERSON", Strength: "1"})
//	b.Token("przyjechał")
//	corpus := &ir.Corpus{Documents: []*ir.Document{b.Document()}}
package ir
