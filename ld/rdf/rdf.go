/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

// Package rdf provides the quad model shared by the canonicalization engine
// and the proof protocol: IRI, blank node and literal terms, immutable quads
// with an optional graph label, and datasets with set semantics and a total
// order. Quads serialize to and parse from RDF 1.1 N-Quads lines.
package rdf

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/Instun/sm2-2023-cryptosuite/docerr"
)

// Well-known datatype IRIs.
const (
	XSDString     = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger    = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDouble     = "http://www.w3.org/2001/XMLSchema#double"
	XSDBoolean    = "http://www.w3.org/2001/XMLSchema#boolean"
	RDFLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// Term is an RDF term: *IRI, *BlankNode or *Literal.
type Term interface {
	isTerm()
}

// IRI is an absolute IRI term.
type IRI struct {
	Value string
}

// NewIRI returns an IRI term.
func NewIRI(value string) *IRI {
	return &IRI{Value: value}
}

func (i *IRI) isTerm() {}

// BlankNode is an anonymous node. ID is the input-local identifier without
// the "_:" prefix; it has no canonical meaning.
type BlankNode struct {
	ID string
}

// NewBlankNode returns a blank node term.
func NewBlankNode(id string) *BlankNode {
	return &BlankNode{ID: strings.TrimPrefix(id, "_:")}
}

func (b *BlankNode) isTerm() {}

// Literal is a literal term with an optional datatype and language tag.
// Values are always lexical strings, never native numerics, so that input
// forms round-trip exactly.
type Literal struct {
	Value    string
	Datatype string
	Language string
}

// NewLiteral returns a literal term. An empty datatype defaults to xsd:string,
// or rdf:langString when a language tag is present.
func NewLiteral(value, datatype, language string) *Literal {
	if datatype == "" {
		datatype = XSDString
	}

	if language != "" {
		datatype = RDFLangString
	}

	return &Literal{Value: value, Datatype: datatype, Language: language}
}

func (l *Literal) isTerm() {}

// Quad is one statement: subject, predicate, object and an optional graph
// label (nil means the default graph). Quads are immutable once produced.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// NewQuad returns a quad. Pass graph == nil for the default graph.
func NewQuad(subject, predicate, object, graph Term) *Quad {
	return &Quad{Subject: subject, Predicate: predicate, Object: object, Graph: graph}
}

// Validate checks the structural invariants of the quad. It fails with a
// FormatError on a missing term, a literal in subject, predicate or graph
// position, or an empty IRI or blank node identifier. Blank node predicates
// are permitted here (generalized RDF); see GeneralizedRDF.
func (q *Quad) Validate() error {
	if q.Subject == nil || q.Predicate == nil || q.Object == nil {
		return docerr.New(docerr.CodeFormat, "quad is missing a required term")
	}

	for _, t := range []Term{q.Subject, q.Predicate, q.Object, q.Graph} {
		if err := validateTerm(t); err != nil {
			return err
		}
	}

	if _, ok := q.Subject.(*Literal); ok {
		return docerr.New(docerr.CodeFormat, "subject must not be a literal")
	}

	if _, ok := q.Predicate.(*Literal); ok {
		return docerr.New(docerr.CodeFormat, "predicate must not be a literal")
	}

	if _, ok := q.Graph.(*Literal); ok {
		return docerr.New(docerr.CodeFormat, "graph label must not be a literal")
	}

	return nil
}

func validateTerm(t Term) error {
	switch term := t.(type) {
	case nil:
	case *IRI:
		if term.Value == "" {
			return docerr.New(docerr.CodeFormat, "empty IRI")
		}
	case *BlankNode:
		if term.ID == "" {
			return docerr.New(docerr.CodeFormat, "empty blank node identifier")
		}
	case *Literal:
		if term.Datatype == "" {
			return docerr.New(docerr.CodeFormat, "literal is missing a datatype")
		}
	}

	return nil
}

// GeneralizedRDF reports whether the quad is valid only as generalized RDF,
// i.e. its predicate is a blank node.
func (q *Quad) GeneralizedRDF() bool {
	_, ok := q.Predicate.(*BlankNode)
	return ok
}

// Equal reports whether two quads are identical term for term.
func (q *Quad) Equal(other *Quad) bool {
	return q.String() == other.String()
}

// Compare defines the total order over quads: lexicographic over the
// serialized term forms, comparing graph, subject, predicate and object in
// that field order. The order is meaningful only after blank nodes carry
// canonical labels.
func (q *Quad) Compare(other *Quad) int {
	if c := strings.Compare(FormatTerm(q.Graph), FormatTerm(other.Graph)); c != 0 {
		return c
	}

	if c := strings.Compare(FormatTerm(q.Subject), FormatTerm(other.Subject)); c != 0 {
		return c
	}

	if c := strings.Compare(FormatTerm(q.Predicate), FormatTerm(other.Predicate)); c != 0 {
		return c
	}

	return strings.Compare(FormatTerm(q.Object), FormatTerm(other.Object))
}

// String returns the N-Quads line for the quad, without a trailing newline.
func (q *Quad) String() string {
	return FormatQuad(q)
}

// Dataset is a set of quads: duplicates collapse on Add.
type Dataset struct {
	quads []*Quad
	seen  map[string]struct{}
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{seen: make(map[string]struct{})}
}

// Add inserts the quad unless an identical quad is already present.
func (d *Dataset) Add(q *Quad) {
	key := FormatQuad(q)
	if _, ok := d.seen[key]; ok {
		return
	}

	d.seen[key] = struct{}{}
	d.quads = append(d.quads, q)
}

// Quads returns the quads in insertion order.
func (d *Dataset) Quads() []*Quad {
	return d.quads
}

// Len returns the number of distinct quads.
func (d *Dataset) Len() int {
	return len(d.quads)
}

// Sort orders the quads per Quad.Compare.
func (d *Dataset) Sort() {
	slices.SortFunc(d.quads, func(a, b *Quad) int {
		return a.Compare(b)
	})
}

// Validate checks every quad; it is called before any hashing work begins.
func (d *Dataset) Validate() error {
	for _, q := range d.quads {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// BlankNodeIDs returns the distinct blank node identifiers mentioned in the
// dataset, in first-mention order.
func (d *Dataset) BlankNodeIDs() []string {
	var ids []string

	seen := make(map[string]struct{})

	add := func(t Term) {
		if bn, ok := t.(*BlankNode); ok {
			if _, dup := seen[bn.ID]; !dup {
				seen[bn.ID] = struct{}{}
				ids = append(ids, bn.ID)
			}
		}
	}

	for _, q := range d.quads {
		add(q.Subject)
		add(q.Predicate)
		add(q.Object)

		if q.Graph != nil {
			add(q.Graph)
		}
	}

	return ids
}
