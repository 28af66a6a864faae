/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

// Package canonicalizer implements the URDNA2015 RDF dataset canonicalization
// algorithm: blank nodes are assigned canonical c14n labels by iterative
// hashing of their structural neighborhood, and the relabeled dataset is
// serialized to one sorted N-Quads string. The output is a pure function of
// graph structure, never of input blank node naming or statement order.
//
// The message digest is SHA-256, pinned by the algorithm definition.
package canonicalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/Instun/sm2-2023-cryptosuite/docerr"
	"github.com/Instun/sm2-2023-cryptosuite/ld/rdf"
)

// DefaultMaxDeepIterations bounds the number of n-degree hash invocations in
// one canonicalization run. Datasets needing more are pathologically
// symmetric and are rejected instead of searched without bound.
const DefaultMaxDeepIterations = 4096

const canonicalPrefix = "c14n"

// Canonicalizer canonicalizes RDF datasets. It is stateless across calls and
// safe for concurrent use; all per-run state lives on the call stack.
type Canonicalizer struct {
	maxDeepIterations int
}

// Option configures a Canonicalizer.
type Option func(*Canonicalizer)

// WithMaxDeepIterations overrides the n-degree hash invocation budget.
func WithMaxDeepIterations(n int) Option {
	return func(c *Canonicalizer) {
		c.maxDeepIterations = n
	}
}

// New returns a Canonicalizer.
func New(opts ...Option) *Canonicalizer {
	c := &Canonicalizer{maxDeepIterations: DefaultMaxDeepIterations}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Result holds the two artifacts of one canonicalization run.
type Result struct {
	// Serialized is the canonical document string: sorted N-Quads lines, each
	// terminated by a newline. Empty for an empty dataset.
	Serialized string
	// Labels maps each input blank node identifier to its canonical c14n<N>
	// label. The mapping is bijective within this run and never reused.
	Labels map[string]string
}

// Canonicalize validates the dataset and produces its canonical form.
// Malformed quads fail with a FormatError before any hashing begins.
func (c *Canonicalizer) Canonicalize(ds *rdf.Dataset) (*Result, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	bnodes := ds.BlankNodeIDs()

	// common fast path: no blank nodes means serialize-and-sort only
	if len(bnodes) == 0 {
		return &Result{
			Serialized: serializeSorted(ds.Quads(), nil),
			Labels:     map[string]string{},
		}, nil
	}

	s := newState(ds, bnodes, c.maxDeepIterations)

	if err := s.assignCanonicalLabels(); err != nil {
		return nil, err
	}

	labels := maps.Clone(s.canonical.issued)

	return &Result{
		Serialized: serializeSorted(ds.Quads(), labels),
		Labels:     labels,
	}, nil
}

// serializeSorted relabels blank nodes, serializes every quad to its N-Quads
// line and joins the byte-sorted lines. Each line carries its own trailing
// newline, so a non-empty result always ends with one.
func serializeSorted(quads []*rdf.Quad, labels map[string]string) string {
	lines := make([]string, 0, len(quads))

	for _, q := range quads {
		lines = append(lines, formatQuadRelabeled(q, func(id string) string {
			return labels[id]
		}))
	}

	slices.Sort(lines)

	return strings.Join(lines, "")
}

// formatQuadRelabeled serializes a quad with blank node identifiers replaced
// per relabel. The line includes the trailing newline.
func formatQuadRelabeled(q *rdf.Quad, relabel func(string) string) string {
	sub := func(t rdf.Term) rdf.Term {
		if bn, ok := t.(*rdf.BlankNode); ok {
			if label := relabel(bn.ID); label != "" {
				return rdf.NewBlankNode(label)
			}
		}

		return t
	}

	out := rdf.NewQuad(sub(q.Subject), sub(q.Predicate), sub(q.Object), nil)
	if q.Graph != nil {
		out.Graph = sub(q.Graph)
	}

	return rdf.FormatQuad(out) + "\n"
}

// state is the per-run canonicalization state of one dataset.
type state struct {
	// mentions maps each blank node identifier to the quads mentioning it.
	mentions map[string][]*rdf.Quad
	bnodes   []string

	canonical *issuer

	firstDegree map[string]string

	deepBudget int
}

func newState(ds *rdf.Dataset, bnodes []string, maxDeep int) *state {
	s := &state{
		mentions:    make(map[string][]*rdf.Quad, len(bnodes)),
		bnodes:      bnodes,
		canonical:   newIssuer(canonicalPrefix),
		firstDegree: make(map[string]string, len(bnodes)),
		deepBudget:  maxDeep,
	}

	for _, q := range ds.Quads() {
		for _, t := range []rdf.Term{q.Subject, q.Predicate, q.Object, q.Graph} {
			if bn, ok := t.(*rdf.BlankNode); ok {
				s.mentions[bn.ID] = append(s.mentions[bn.ID], q)
			}
		}
	}

	return s
}

// assignCanonicalLabels runs the labeling phases: first-degree partition,
// immediate labels for unique hashes, then n-degree resolution of the
// remaining equivalence classes.
func (s *state) assignCanonicalLabels() error {
	hashToBNodes := make(map[string][]string)

	for _, id := range s.bnodes {
		h := s.hashFirstDegree(id)
		hashToBNodes[h] = append(hashToBNodes[h], id)
	}

	hashes := maps.Keys(hashToBNodes)
	slices.Sort(hashes)

	// unique first-degree hashes label immediately, in hash order
	for _, h := range hashes {
		if group := hashToBNodes[h]; len(group) == 1 {
			s.canonical.issue(group[0])
		}
	}

	// remaining groups are structurally symmetric at first degree and need
	// n-degree exploration
	for _, h := range hashes {
		group := hashToBNodes[h]
		if len(group) == 1 {
			continue
		}

		type pathResult struct {
			hash   string
			issuer *issuer
		}

		var results []pathResult

		for _, id := range group {
			if s.canonical.has(id) {
				continue
			}

			temp := newIssuer("b")
			temp.issue(id)

			ndHash, ndIssuer, err := s.hashNDegree(id, temp)
			if err != nil {
				return err
			}

			results = append(results, pathResult{hash: ndHash, issuer: ndIssuer})
		}

		slices.SortFunc(results, func(a, b pathResult) int {
			return strings.Compare(a.hash, b.hash)
		})

		for _, r := range results {
			for _, existing := range r.issuer.order {
				s.canonical.issue(existing)
			}
		}
	}

	return nil
}

// hashFirstDegree captures a blank node's immediate structural signature: the
// sorted serialization of its mention quads with the node itself as _:a and
// every other blank node as _:z, hashed. Independent of input naming.
func (s *state) hashFirstDegree(id string) string {
	if h, ok := s.firstDegree[id]; ok {
		return h
	}

	lines := make([]string, 0, len(s.mentions[id]))

	for _, q := range s.mentions[id] {
		lines = append(lines, formatQuadRelabeled(q, func(other string) string {
			if other == id {
				return "a"
			}

			return "z"
		}))
	}

	slices.Sort(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
	}

	digest := hex.EncodeToString(h.Sum(nil))
	s.firstDegree[id] = digest

	return digest
}

// hashRelated hashes the relation between a quad and one blank node mentioned
// in it: the node's position, the predicate (except in graph position), and
// the strongest identifier available for the node — canonical label, then
// temporary label, then first-degree hash.
func (s *state) hashRelated(related string, q *rdf.Quad, iss *issuer, position string) string {
	input := position

	if position != "g" && position != "p" {
		if p, ok := q.Predicate.(*rdf.IRI); ok {
			input += "<" + p.Value + ">"
		}
	}

	switch {
	case s.canonical.has(related):
		input += "_:" + s.canonical.get(related)
	case iss.has(related):
		input += "_:" + iss.get(related)
	default:
		input += s.hashFirstDegree(related)
	}

	digest := sha256.Sum256([]byte(input))

	return hex.EncodeToString(digest[:])
}

// hashNDegree explores the neighborhood of a blank node at increasing depth,
// hashing paths of related blank nodes until the node's signature is unique.
// Residual ties between genuinely interchangeable nodes are broken by
// enumerating permutations of the related nodes and keeping the
// lexicographically smallest path.
func (s *state) hashNDegree(id string, iss *issuer) (string, *issuer, error) {
	if s.deepBudget--; s.deepBudget < 0 {
		return "", nil, docerr.New(docerr.CodeFormat,
			"maximum deep iteration count exceeded while canonicalizing")
	}

	hashToRelated := make(map[string][]string)

	for _, q := range s.mentions[id] {
		for position, t := range map[string]rdf.Term{
			"s": q.Subject, "p": q.Predicate, "o": q.Object, "g": q.Graph,
		} {
			bn, ok := t.(*rdf.BlankNode)
			if !ok || bn.ID == id {
				continue
			}

			h := s.hashRelated(bn.ID, q, iss, position)
			hashToRelated[h] = append(hashToRelated[h], bn.ID)
		}
	}

	relatedHashes := maps.Keys(hashToRelated)
	slices.Sort(relatedHashes)

	digest := sha256.New()

	for _, relHash := range relatedHashes {
		digest.Write([]byte(relHash))

		var (
			chosenPath   string
			chosenIssuer *issuer
		)

		perm := newPermuter(hashToRelated[relHash])

		for p, ok := perm.next(); ok; p, ok = perm.next() {
			issuerCopy := iss.clone()
			path := ""
			skip := false

			var recursionList []string

			for _, related := range p {
				if s.canonical.has(related) {
					path += "_:" + s.canonical.get(related)
				} else {
					if !issuerCopy.has(related) {
						recursionList = append(recursionList, related)
					}

					path += "_:" + issuerCopy.issue(related)
				}

				if chosenPath != "" && len(path) >= len(chosenPath) && path > chosenPath {
					skip = true
					break
				}
			}

			if !skip {
				for _, related := range recursionList {
					resHash, resIssuer, err := s.hashNDegree(related, issuerCopy)
					if err != nil {
						return "", nil, err
					}

					path += "_:" + issuerCopy.issue(related)
					path += "<" + resHash + ">"
					issuerCopy = resIssuer

					if chosenPath != "" && len(path) >= len(chosenPath) && path > chosenPath {
						skip = true
						break
					}
				}
			}

			if !skip && (chosenPath == "" || path < chosenPath) {
				chosenPath = path
				chosenIssuer = issuerCopy
			}
		}

		digest.Write([]byte(chosenPath))
		iss = chosenIssuer
	}

	return hex.EncodeToString(digest.Sum(nil)), iss, nil
}
