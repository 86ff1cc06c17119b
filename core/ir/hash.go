package ir

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// writeJSON is a variable to allow testing of encoding errors.
var writeJSON = WriteJSON

// HashResult contains both SHA-256 and BLAKE3 hashes of an encoded corpus.
type HashResult struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// HashBytes computes both digests of data.
func HashBytes(data []byte) *HashResult {
	s := sha256.Sum256(data)
	b := blake3.Sum256(data)
	return &HashResult{
		SHA256: hex.EncodeToString(s[:]),
		BLAKE3: hex.EncodeToString(b[:]),
	}
}

// HashCorpus computes the digests of the corpus' canonical JSON encoding.
// Two corpora hash equal iff they serialize identically in the given format.
func HashCorpus(c *Corpus, format NERFormat) (*HashResult, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, c, format); err != nil {
		return nil, err
	}
	return HashBytes(buf.Bytes()), nil
}

// HashDocument computes the digests of a single document.
func HashDocument(d *Document, format NERFormat) (*HashResult, error) {
	return HashCorpus(&Corpus{Documents: []*Document{d}}, format)
}
