/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

package canonicalizer

import "golang.org/x/exp/slices"

// permuter enumerates the distinct permutations of a list of identifiers in
// lexicographic order, starting from the sorted list. Starting sorted keeps
// the enumeration order independent of the caller's input order.
type permuter struct {
	cur  []string
	done bool
}

func newPermuter(ids []string) *permuter {
	cur := slices.Clone(ids)
	slices.Sort(cur)

	return &permuter{cur: cur}
}

// next returns the next permutation, or false when exhausted.
func (p *permuter) next() ([]string, bool) {
	if p.done {
		return nil, false
	}

	out := slices.Clone(p.cur)

	// advance cur to the lexicographic successor
	i := len(p.cur) - 2
	for i >= 0 && p.cur[i] >= p.cur[i+1] {
		i--
	}

	if i < 0 {
		p.done = true
		return out, true
	}

	j := len(p.cur) - 1
	for p.cur[j] <= p.cur[i] {
		j--
	}

	p.cur[i], p.cur[j] = p.cur[j], p.cur[i]

	for lo, hi := i+1, len(p.cur)-1; lo < hi; lo, hi = lo+1, hi-1 {
		p.cur[lo], p.cur[hi] = p.cur[hi], p.cur[lo]
	}

	return out, true
}
