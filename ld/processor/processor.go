/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

// Package processor turns JSON-LD documents into canonical N-Quads. JSON-LD
// expansion and RDF conversion are delegated to json-gold as a black box;
// canonical blank node labeling is done by the canonicalizer package.
package processor

import (
	"github.com/piprate/json-gold/ld"

	"github.com/Instun/sm2-2023-cryptosuite/docerr"
	"github.com/Instun/sm2-2023-cryptosuite/ld/canonicalizer"
	"github.com/Instun/sm2-2023-cryptosuite/ld/rdf"
)

const (
	format           = "application/n-quads"
	defaultAlgorithm = "URDNA2015"
)

// processorOpts holds options for canonicalization of JSON-LD docs.
type processorOpts struct {
	removeInvalidRDF  bool
	validateRDF       bool
	documentLoader    ld.DocumentLoader
	externalContexts  []string
	maxDeepIterations int
}

// Opts are the options for JSON-LD operations on docs (like canonicalization
// or compacting).
type Opts func(opts *processorOpts)

// WithRemoveAllInvalidRDF option for removing all invalid RDF statements
// (generalized RDF such as blank node predicates) from the normalized
// document.
func WithRemoveAllInvalidRDF() Opts {
	return func(opts *processorOpts) {
		opts.removeInvalidRDF = true
	}
}

// WithValidateRDF option fails canonicalization if any invalid RDF statement
// is found. This option takes precedence over WithRemoveAllInvalidRDF.
func WithValidateRDF() Opts {
	return func(opts *processorOpts) {
		opts.validateRDF = true
	}
}

// WithDocumentLoader option is for passing a custom JSON-LD document loader.
func WithDocumentLoader(loader ld.DocumentLoader) Opts {
	return func(opts *processorOpts) {
		opts.documentLoader = loader
	}
}

// WithExternalContext option is for definition of external context when doing
// JSON-LD operations.
func WithExternalContext(context ...string) Opts {
	return func(opts *processorOpts) {
		opts.externalContexts = context
	}
}

// WithMaxDeepIterations overrides the canonicalizer's n-degree hash budget.
func WithMaxDeepIterations(n int) Opts {
	return func(opts *processorOpts) {
		opts.maxDeepIterations = n
	}
}

// Processor canonicalizes JSON-LD documents.
// processing mode JSON-LD 1.1 {RFC: https://www.w3.org/TR/json-ld11}
type Processor struct {
	algorithm string
}

// NewProcessor returns a new processor for the given RDF dataset
// canonicalization algorithm.
func NewProcessor(algorithm string) *Processor {
	if algorithm == "" {
		return Default()
	}

	return &Processor{algorithm}
}

// Default returns a new processor with the default canonicalization
// algorithm.
func Default() *Processor {
	return &Processor{defaultAlgorithm}
}

// GetCanonicalDocument returns the canonical form of the given JSON-LD
// document: expansion and RDF conversion via json-gold, then deterministic
// blank node labeling and sorted N-Quads serialization.
func (p *Processor) GetCanonicalDocument(doc map[string]interface{}, opts ...Opts) ([]byte, error) {
	if p.algorithm != defaultAlgorithm {
		return nil, docerr.Newf(docerr.CodeArgument, "unsupported canonicalization algorithm %q", p.algorithm)
	}

	procOptions := prepareOpts(opts)

	ldOptions := ld.NewJsonLdOptions("")
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.Format = format
	ldOptions.ProduceGeneralizedRdf = true

	if procOptions.documentLoader != nil {
		ldOptions.DocumentLoader = procOptions.documentLoader
	}

	if len(procOptions.externalContexts) > 0 {
		doc["@context"] = AppendExternalContexts(doc["@context"], procOptions.externalContexts...)
	}

	view, err := ld.NewJsonLdProcessor().ToRDF(doc, ldOptions)
	if err != nil {
		return nil, docerr.Wrap(docerr.CodeFormat, err, "failed to convert JSON-LD document to RDF")
	}

	nquads, ok := view.(string)
	if !ok {
		return nil, docerr.New(docerr.CodeFormat, "failed to convert JSON-LD document to RDF, invalid view")
	}

	return p.canonicalizeNQuads(nquads, procOptions)
}

// GetCanonicalNQuads canonicalizes a pre-expanded quad set given as N-Quads
// text, applying the same invalid-RDF handling as GetCanonicalDocument.
func (p *Processor) GetCanonicalNQuads(nquads string, opts ...Opts) ([]byte, error) {
	if p.algorithm != defaultAlgorithm {
		return nil, docerr.Newf(docerr.CodeArgument, "unsupported canonicalization algorithm %q", p.algorithm)
	}

	return p.canonicalizeNQuads(nquads, prepareOpts(opts))
}

func (p *Processor) canonicalizeNQuads(nquads string, procOptions *processorOpts) ([]byte, error) {
	ds, err := rdf.ParseNQuads(nquads)
	if err != nil {
		return nil, err
	}

	ds, err = filterInvalidRDF(ds, procOptions)
	if err != nil {
		return nil, err
	}

	var canonOpts []canonicalizer.Option

	if procOptions.maxDeepIterations > 0 {
		canonOpts = append(canonOpts, canonicalizer.WithMaxDeepIterations(procOptions.maxDeepIterations))
	}

	result, err := canonicalizer.New(canonOpts...).Canonicalize(ds)
	if err != nil {
		return nil, err
	}

	return []byte(result.Serialized), nil
}

// filterInvalidRDF handles statements that are valid only as generalized RDF.
// By default they pass through; WithValidateRDF rejects them and
// WithRemoveAllInvalidRDF drops them.
func filterInvalidRDF(ds *rdf.Dataset, opts *processorOpts) (*rdf.Dataset, error) {
	if !opts.removeInvalidRDF && !opts.validateRDF {
		return ds, nil
	}

	filtered := rdf.NewDataset()

	for _, q := range ds.Quads() {
		if q.GeneralizedRDF() {
			if opts.validateRDF {
				return nil, docerr.New(docerr.CodeFormat, "invalid RDF statement found in normalized document")
			}

			continue
		}

		filtered.Add(q)
	}

	return filtered, nil
}

// AppendExternalContexts appends external context(s) to the JSON-LD context
// which can have one or several contexts already.
func AppendExternalContexts(context interface{}, extraContexts ...string) []interface{} {
	var contexts []interface{}

	switch c := context.(type) {
	case string:
		contexts = append(contexts, c)
	case []interface{}:
		contexts = append(contexts, c...)
	case map[string]interface{}:
		contexts = append(contexts, c)
	}

	for i := range extraContexts {
		contexts = append(contexts, extraContexts[i])
	}

	return contexts
}

// Compact compacts the given JSON-LD object with the provided context. When
// context is nil, the document's own context is used.
func (p *Processor) Compact(input, context map[string]interface{}, opts ...Opts) (map[string]interface{}, error) {
	procOptions := prepareOpts(opts)

	ldOptions := ld.NewJsonLdOptions("")
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.Format = format
	ldOptions.ProduceGeneralizedRdf = true

	if procOptions.documentLoader != nil {
		ldOptions.DocumentLoader = procOptions.documentLoader
	}

	if context == nil {
		inputContext := input["@context"]

		if len(procOptions.externalContexts) > 0 {
			inputContext = AppendExternalContexts(inputContext, procOptions.externalContexts...)
			input["@context"] = inputContext
		}

		context = map[string]interface{}{"@context": inputContext}
	}

	compacted, err := ld.NewJsonLdProcessor().Compact(input, context, ldOptions)
	if err != nil {
		return nil, docerr.Wrap(docerr.CodeFormat, err, "failed to compact JSON-LD document")
	}

	return compacted, nil
}

// prepareOpts prepare processorOpts from given CanonicalizationOpts arguments.
func prepareOpts(opts []Opts) *processorOpts {
	procOpts := &processorOpts{}

	for _, opt := range opts {
		opt(procOpts)
	}

	return procOpts
}
