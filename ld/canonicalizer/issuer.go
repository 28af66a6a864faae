/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

package canonicalizer

import (
	"strconv"

	"golang.org/x/exp/maps"
)

// issuer assigns identifiers from a prefix and an incrementing counter,
// remembering the order in which input identifiers were first seen. Issued
// identifiers are stable for the lifetime of one issuer and are never reused
// across canonicalization runs.
type issuer struct {
	prefix  string
	counter int
	issued  map[string]string
	order   []string
}

func newIssuer(prefix string) *issuer {
	return &issuer{
		prefix: prefix,
		issued: make(map[string]string),
	}
}

// issue returns the identifier for existing, allocating the next one on first
// use.
func (i *issuer) issue(existing string) string {
	if id, ok := i.issued[existing]; ok {
		return id
	}

	id := i.prefix + strconv.Itoa(i.counter)
	i.counter++
	i.issued[existing] = id
	i.order = append(i.order, existing)

	return id
}

func (i *issuer) has(existing string) bool {
	_, ok := i.issued[existing]
	return ok
}

func (i *issuer) get(existing string) string {
	return i.issued[existing]
}

func (i *issuer) clone() *issuer {
	c := &issuer{
		prefix:  i.prefix,
		counter: i.counter,
		issued:  maps.Clone(i.issued),
		order:   append([]string(nil), i.order...),
	}

	return c
}
