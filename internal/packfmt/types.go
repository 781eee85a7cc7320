// Package packfmt encodes and decodes the pack container: a sequence of
// length-prefixed sections (metadata, lexicon, postings, blocks, and an
// optional semantic tail) framed exactly as described by the external
// binary format. It owns section framing and the version-gated
// differences between pack versions; it does not tokenize, score, or
// quantize.
package packfmt

import "encoding/json"

// CurrentVersion is the highest format version this package writes.
// Loaders accept anything up to and including this version; anything
// higher is VersionUnsupported.
const CurrentVersion = 3

// blockIDOffsetVersion is the version at and after which postings encode
// block ids as block_id+1 rather than the raw block id.
const blockIDOffsetVersion = 3

// Stats holds the pack-level counters persisted in metadata.
type Stats struct {
	Docs        uint32  `json:"docs"`
	Blocks      uint32  `json:"blocks"`
	Terms       uint32  `json:"terms"`
	AvgBlockLen float64 `json:"avgBlockLen,omitempty"`
}

// Meta is the parsed metadata section. Extra carries any opaque
// pass-through fields (e.g. an embedded tool registry) the core does not
// interpret itself.
type Meta struct {
	Version uint32          `json:"version"`
	Stats   Stats           `json:"stats"`
	Extra   json.RawMessage `json:"-"`
}

// Block is one persisted block payload, in block-id order.
type Block struct {
	Text      string
	Heading   *string
	DocID     *string
	Namespace *string
	Len       uint32
}

// blockJSON is the v2/v3 wire shape of Block.
type blockJSON struct {
	Text      string  `json:"text"`
	Heading   *string `json:"heading,omitempty"`
	DocID     *string `json:"docId,omitempty"`
	Namespace *string `json:"namespace,omitempty"`
	Len       uint32  `json:"len,omitempty"`
}

// SemanticMeta describes the layout of the semantic blob.
type SemanticMeta struct {
	Version        int              `json:"version"`
	ModelID        string           `json:"modelId"`
	Dims           int              `json:"dims"`
	Encoding       string           `json:"encoding"`
	PerVectorScale bool             `json:"perVectorScale"`
	Blocks         SemanticBlockRef `json:"blocks"`
}

// SemanticBlockRef locates the vectors and scales sub-ranges within the
// semantic blob.
type SemanticBlockRef struct {
	Vectors ByteRange `json:"vectors"`
	Scales  ByteRange `json:"scales"`
}

// ByteRange is a byte offset/length pair into the semantic blob.
type ByteRange struct {
	ByteOffset int `json:"byteOffset"`
	Length     int `json:"length"`
}

// Semantic is the decoded semantic section: metadata plus the raw blob
// bytes (vectors-first, then scales), left undecoded until a query
// actually needs a given block's vector.
type Semantic struct {
	Meta SemanticMeta
	Blob []byte
}
