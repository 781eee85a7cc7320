package packfmt

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	kerrors "github.com/HiveForensics-AI/knolo-core/internal/errors"
	"github.com/HiveForensics-AI/knolo-core/internal/lexidx"
	"github.com/HiveForensics-AI/knolo-core/internal/tokenizer"
)

// Pack is the result of parsing a pack container: typed views over the
// metadata, lexicon, posting stream, blocks, and (optionally) the
// semantic section.
type Pack struct {
	Version  uint32
	Stats    Stats
	Extra    json.RawMessage
	Lexicon  *lexidx.Lexicon
	Postings []uint32
	Blocks   []Block
	Semantic *Semantic
	idOffset uint32 // 0 or 1, per Version
}

// BlockIDOffset returns the bias applied to block ids as they are
// encoded in the posting stream (1 for version >= 3, 0 otherwise).
func (p *Pack) BlockIDOffset() uint32 {
	return p.idOffset
}

// HasSemantic reports whether the pack carries a semantic section.
func (p *Pack) HasSemantic() bool {
	return p.Semantic != nil
}

// Load parses buf into a Pack, reading sections sequentially by their
// length prefixes. It is tolerant of older block payload shapes (v1
// string arrays, v2 objects missing newer fields) and rejects versions
// newer than this package understands.
func Load(buf []byte) (*Pack, error) {
	r := bytes.NewReader(buf)

	metaBytes, err := readSection(r, "metadata")
	if err != nil {
		return nil, err
	}
	var rawMeta map[string]json.RawMessage
	if err := json.Unmarshal(metaBytes, &rawMeta); err != nil {
		return nil, kerrors.Malformedf("metadata", "metadata section is not valid JSON: %v", err)
	}

	meta, extra, err := splitMeta(rawMeta)
	if err != nil {
		return nil, err
	}
	if meta.Version > CurrentVersion {
		return nil, kerrors.New(kerrors.VersionUnsupported, "version",
			fmt.Sprintf("pack version %d is newer than this loader supports (max %d)", meta.Version, CurrentVersion))
	}

	lexBytes, err := readSection(r, "lexicon")
	if err != nil {
		return nil, err
	}
	lex, err := parseLexicon(lexBytes)
	if err != nil {
		return nil, err
	}

	var postCount uint32
	if err := binary.Read(r, binary.LittleEndian, &postCount); err != nil {
		return nil, kerrors.Malformedf("postings", "truncated posting count: %v", err)
	}
	postings := make([]uint32, postCount)
	for i := range postings {
		if err := binary.Read(r, binary.LittleEndian, &postings[i]); err != nil {
			return nil, kerrors.Malformedf("postings", "truncated posting stream at entry %d: %v", i, err)
		}
	}

	blkBytes, err := readSection(r, "blocks")
	if err != nil {
		return nil, err
	}
	blocks, err := parseBlocks(blkBytes)
	if err != nil {
		return nil, err
	}

	idOffset := uint32(0)
	if meta.Version >= blockIDOffsetVersion {
		idOffset = 1
	}
	if err := validatePostings(postings, lex, len(blocks), idOffset); err != nil {
		return nil, err
	}

	pack := &Pack{
		Version:  meta.Version,
		Stats:    meta.Stats,
		Extra:    extra,
		Lexicon:  lex,
		Postings: postings,
		Blocks:   blocks,
		idOffset: idOffset,
	}

	if r.Len() > 0 {
		semantic, err := parseSemantic(r)
		if err != nil {
			return nil, err
		}
		pack.Semantic = semantic
	}

	return pack, nil
}

func splitMeta(raw map[string]json.RawMessage) (Meta, json.RawMessage, error) {
	var m Meta
	versionRaw, ok := raw["version"]
	if !ok {
		return Meta{}, nil, kerrors.Malformed("metadata.version", "metadata is missing required field \"version\"")
	}
	if err := json.Unmarshal(versionRaw, &m.Version); err != nil {
		return Meta{}, nil, kerrors.Malformedf("metadata.version", "version is not a number: %v", err)
	}
	if statsRaw, ok := raw["stats"]; ok {
		if err := json.Unmarshal(statsRaw, &m.Stats); err != nil {
			return Meta{}, nil, kerrors.Malformedf("metadata.stats", "stats section malformed: %v", err)
		}
	}

	delete(raw, "version")
	delete(raw, "stats")
	var extra json.RawMessage
	if len(raw) > 0 {
		b, err := json.Marshal(raw)
		if err != nil {
			return Meta{}, nil, kerrors.Internalf("re-marshal opaque metadata: %v", err)
		}
		extra = b
	}
	return m, extra, nil
}

func parseLexicon(data []byte) (*lexidx.Lexicon, error) {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, kerrors.Malformedf("lexicon", "lexicon section is not a JSON array of pairs: %v", err)
	}
	lex := lexidx.NewLexicon()
	for i, pair := range pairs {
		var term string
		if err := json.Unmarshal(pair[0], &term); err != nil {
			return nil, kerrors.Malformedf("lexicon", "lexicon entry %d: term is not a string: %v", i, err)
		}
		got := lex.IDFor(term)
		expected := uint32(i + 1)
		if got != expected {
			return nil, kerrors.Malformedf("lexicon", "lexicon entry %d: expected dense term_id %d, got %d", i, expected, got)
		}
	}
	return lex, nil
}

func parseBlocks(data []byte) ([]Block, error) {
	var strs []string
	if err := json.Unmarshal(data, &strs); err == nil {
		blocks := make([]Block, len(strs))
		for i, text := range strs {
			blocks[i] = Block{Text: text, Len: uint32(len(tokenizer.Tokenize(text)))}
		}
		return blocks, nil
	}

	var docs []blockJSON
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, kerrors.Malformedf("blocks", "blocks section matches neither v1 string array nor object array: %v", err)
	}
	blocks := make([]Block, len(docs))
	for i, d := range docs {
		blocks[i] = Block{Text: d.Text, Heading: d.Heading, DocID: d.DocID, Namespace: d.Namespace, Len: d.Len}
	}
	return blocks, nil
}

func validatePostings(postings []uint32, lex *lexidx.Lexicon, numBlocks int, idOffset uint32) error {
	i := 0
	for i < len(postings) {
		termID := postings[i]
		i++
		if _, ok := lex.Term(termID); !ok {
			return kerrors.Malformedf("postings", "posting entry references unknown term_id %d", termID)
		}
		for i < len(postings) && postings[i] != 0 {
			encoded := postings[i]
			i++
			blockID := encoded - idOffset
			if blockID >= uint32(numBlocks) {
				return kerrors.Malformedf("postings", "posting entry references block_id %d, pack has %d blocks", blockID, numBlocks)
			}
			lastPos := uint32(0)
			for i < len(postings) && postings[i] != 0 {
				pos := postings[i]
				if pos <= lastPos && lastPos != 0 {
					return kerrors.Malformedf("postings", "positions for term_id %d, block_id %d are not strictly increasing", termID, blockID)
				}
				lastPos = pos
				i++
			}
			if i >= len(postings) {
				return kerrors.Malformed("postings", "posting stream truncated inside a block entry")
			}
			i++ // consume block terminator
		}
		if i >= len(postings) {
			return kerrors.Malformed("postings", "posting stream truncated inside a term entry")
		}
		i++ // consume term terminator
	}
	return nil
}

func parseSemantic(r *bytes.Reader) (*Semantic, error) {
	semBytes, err := readSection(r, "semantic metadata")
	if err != nil {
		return nil, err
	}
	var meta SemanticMeta
	if err := json.Unmarshal(semBytes, &meta); err != nil {
		return nil, kerrors.Malformedf("semantic", "semantic metadata is not valid JSON: %v", err)
	}
	blob, err := readSection(r, "semantic blob")
	if err != nil {
		return nil, err
	}
	return &Semantic{Meta: meta, Blob: blob}, nil
}

func readSection(r *bytes.Reader, name string) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, kerrors.Malformedf(name, "truncated %s length prefix: %v", name, err)
	}
	if int64(length) > int64(r.Len()) {
		return nil, kerrors.Malformedf(name, "%s length %d exceeds remaining buffer (%d bytes)", name, length, r.Len())
	}
	buf := make([]byte, length)
	if _, err := r.Read(buf); err != nil {
		return nil, kerrors.Malformedf(name, "failed reading %s section: %v", name, err)
	}
	return buf, nil
}
