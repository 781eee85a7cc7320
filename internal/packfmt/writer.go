package packfmt

import (
	"bytes"
	"encoding/binary"
	"encoding/json"

	kerrors "github.com/HiveForensics-AI/knolo-core/internal/errors"
)

// WriteInput bundles everything needed to serialize one pack.
type WriteInput struct {
	Stats        Stats
	Extra        json.RawMessage // opaque pass-through metadata fields, or nil
	LexiconPairs [][2]any        // ordered (term, term_id) pairs
	Postings     []uint32
	Blocks       []Block
	Semantic     *SemanticInput // nil if the pack has no semantic section
}

// SemanticInput is the already-quantized semantic section ready to
// serialize: one int8 vector plus one float16 scale per block.
type SemanticInput struct {
	ModelID string
	Dims    int
	Vectors [][]int8 // len == Stats.Blocks, each of length Dims
	Scales  []uint16 // len == Stats.Blocks, float16-encoded
}

// Write serializes in into the pack container format, returning the
// complete byte sequence.
func Write(in WriteInput) ([]byte, error) {
	meta := metaDoc{Version: CurrentVersion, Stats: in.Stats}
	metaJSON, err := marshalMeta(meta, in.Extra)
	if err != nil {
		return nil, kerrors.Internalf("marshal metadata: %v", err)
	}

	lexJSON, err := json.Marshal(in.LexiconPairs)
	if err != nil {
		return nil, kerrors.Internalf("marshal lexicon: %v", err)
	}

	blockDocs := make([]blockJSON, len(in.Blocks))
	for i, b := range in.Blocks {
		blockDocs[i] = blockJSON{Text: b.Text, Heading: b.Heading, DocID: b.DocID, Namespace: b.Namespace, Len: b.Len}
	}
	blkJSON, err := json.Marshal(blockDocs)
	if err != nil {
		return nil, kerrors.Internalf("marshal blocks: %v", err)
	}

	var buf bytes.Buffer
	writeSection(&buf, metaJSON)
	writeSection(&buf, lexJSON)

	binary.Write(&buf, binary.LittleEndian, uint32(len(in.Postings)))
	for _, p := range in.Postings {
		binary.Write(&buf, binary.LittleEndian, p)
	}

	writeSection(&buf, blkJSON)

	if in.Semantic != nil {
		semJSON, blob, err := encodeSemantic(in.Semantic)
		if err != nil {
			return nil, err
		}
		writeSection(&buf, semJSON)
		writeSection(&buf, blob)
	}

	return buf.Bytes(), nil
}

// metaDoc is the fixed part of the metadata section (version and
// stats). marshalMeta merges Extra's fields alongside them rather than
// nesting them, so opaque caller fields sit at the top level of the
// metadata JSON object.
type metaDoc struct {
	Version uint32 `json:"version"`
	Stats   Stats  `json:"stats"`
}

func marshalMeta(m metaDoc, extra json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	return mergeJSONObjects(base, extra)
}

// mergeJSONObjects shallow-merges two JSON objects, with fields from b
// overriding fields from a on key collision.
func mergeJSONObjects(a, b json.RawMessage) ([]byte, error) {
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(a, &merged); err != nil {
		return nil, err
	}
	var extra map[string]json.RawMessage
	if err := json.Unmarshal(b, &extra); err != nil {
		return nil, err
	}
	for k, v := range extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func encodeSemantic(in *SemanticInput) (semJSON, blob []byte, err error) {
	n := len(in.Vectors)
	vectorBytes := n * in.Dims
	scaleBytes := n * 2

	blob = make([]byte, 0, vectorBytes+scaleBytes)
	for _, v := range in.Vectors {
		for _, q := range v {
			blob = append(blob, byte(q))
		}
	}
	scaleStart := len(blob)
	for _, s := range in.Scales {
		blob = append(blob, byte(s), byte(s>>8))
	}

	meta := SemanticMeta{
		Version:        1,
		ModelID:        in.ModelID,
		Dims:           in.Dims,
		Encoding:       "int8_l2norm",
		PerVectorScale: true,
		Blocks: SemanticBlockRef{
			Vectors: ByteRange{ByteOffset: 0, Length: vectorBytes},
			Scales:  ByteRange{ByteOffset: scaleStart, Length: scaleBytes},
		},
	}
	semJSON, err = json.Marshal(meta)
	if err != nil {
		return nil, nil, kerrors.Internalf("marshal semantic meta: %v", err)
	}
	return semJSON, blob, nil
}

func writeSection(buf *bytes.Buffer, data []byte) {
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
}
