// Package knolo is a local-first, embeddable knowledge retrieval
// engine. Given a corpus of short text documents it builds a single
// self-contained pack artifact — metadata, a lexicon, a positional
// inverted index, block payloads, and an optional quantized vector
// section — and serves deterministic ranked queries against it with
// zero runtime services.
//
// A typical build-then-query round trip:
//
//	data, err := knolo.BuildPack(docs)
//	pack, err := knolo.MountPack(data)
//	hits, err := knolo.Query(pack, "throttle bridge pressure", knolo.WithTopK(5))
//	patch := knolo.MakeContextPatch(hits, knolo.BudgetSmall)
package knolo

// Document is one input document. Text is required and must be
// non-empty; ID, Heading, and Namespace are optional.
type Document struct {
	ID        string
	Text      string
	Heading   string
	Namespace string
}
