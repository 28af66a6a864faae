/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

package rdf

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Instun/sm2-2023-cryptosuite/docerr"
)

// FormatQuad returns the canonical N-Quads line for the quad, without a
// trailing newline.
func FormatQuad(q *Quad) string {
	var b strings.Builder

	b.WriteString(FormatTerm(q.Subject))
	b.WriteByte(' ')
	b.WriteString(FormatTerm(q.Predicate))
	b.WriteByte(' ')
	b.WriteString(FormatTerm(q.Object))
	b.WriteByte(' ')

	if q.Graph != nil {
		b.WriteString(FormatTerm(q.Graph))
		b.WriteByte(' ')
	}

	b.WriteByte('.')

	return b.String()
}

// FormatTerm returns the canonical N-Quads form of a term. A nil term (the
// default graph) formats as the empty string.
func FormatTerm(t Term) string {
	switch term := t.(type) {
	case nil:
		return ""
	case *IRI:
		return "<" + term.Value + ">"
	case *BlankNode:
		return "_:" + term.ID
	case *Literal:
		out := `"` + escapeLiteral(term.Value) + `"`

		switch {
		case term.Language != "":
			out += "@" + term.Language
		case term.Datatype != XSDString:
			out += "^^<" + term.Datatype + ">"
		}

		return out
	}

	return ""
}

// escapeLiteral applies the canonical ECHAR escapes used by the
// canonicalization algorithm's serialization: backslash, quote, newline,
// carriage return and tab.
func escapeLiteral(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// ParseNQuads parses N-Quads text into a dataset. Duplicate statements
// collapse. Parsing is strict about term structure (a FormatError names the
// offending line) but permits generalized RDF, i.e. blank node predicates.
func ParseNQuads(input string) (*Dataset, error) {
	ds := NewDataset()

	for i, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		q, err := parseQuadLine(trimmed)
		if err != nil {
			return nil, docerr.Wrap(docerr.CodeFormat, err, fmt.Sprintf("invalid N-Quads statement on line %d", i+1))
		}

		ds.Add(q)
	}

	return ds, nil
}

type lineScanner struct {
	s   string
	pos int
}

func parseQuadLine(line string) (*Quad, error) {
	sc := &lineScanner{s: line}

	subject, err := sc.readSubject()
	if err != nil {
		return nil, err
	}

	sc.skipSpace()

	predicate, err := sc.readSubject() // same term forms as a subject
	if err != nil {
		return nil, err
	}

	sc.skipSpace()

	object, err := sc.readObject()
	if err != nil {
		return nil, err
	}

	sc.skipSpace()

	var graph Term

	if !sc.peekByte('.') {
		graph, err = sc.readObject()
		if err != nil {
			return nil, err
		}

		if _, ok := graph.(*Literal); ok {
			return nil, fmt.Errorf("graph label must not be a literal")
		}

		sc.skipSpace()
	}

	if !sc.consumeByte('.') {
		return nil, fmt.Errorf("statement is not terminated by '.'")
	}

	sc.skipSpace()

	if sc.pos != len(sc.s) {
		return nil, fmt.Errorf("unexpected content after statement terminator")
	}

	q := NewQuad(subject, predicate, object, graph)

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

func (sc *lineScanner) skipSpace() {
	for sc.pos < len(sc.s) && (sc.s[sc.pos] == ' ' || sc.s[sc.pos] == '\t') {
		sc.pos++
	}
}

func (sc *lineScanner) peekByte(c byte) bool {
	return sc.pos < len(sc.s) && sc.s[sc.pos] == c
}

func (sc *lineScanner) consumeByte(c byte) bool {
	if sc.peekByte(c) {
		sc.pos++
		return true
	}

	return false
}

// readSubject reads an IRI or blank node term.
func (sc *lineScanner) readSubject() (Term, error) {
	switch {
	case sc.peekByte('<'):
		return sc.readIRIRef()
	case strings.HasPrefix(sc.s[sc.pos:], "_:"):
		return sc.readBlankNode()
	default:
		return nil, fmt.Errorf("expected IRI or blank node at offset %d", sc.pos)
	}
}

// readObject reads an IRI, blank node or literal term.
func (sc *lineScanner) readObject() (Term, error) {
	if sc.peekByte('"') {
		return sc.readLiteral()
	}

	return sc.readSubject()
}

func (sc *lineScanner) readIRIRef() (Term, error) {
	sc.pos++ // consume '<'

	end := strings.IndexByte(sc.s[sc.pos:], '>')
	if end < 0 {
		return nil, fmt.Errorf("unterminated IRI at offset %d", sc.pos)
	}

	raw := sc.s[sc.pos : sc.pos+end]
	sc.pos += end + 1

	value, err := unescape(raw)
	if err != nil {
		return nil, err
	}

	if value == "" || strings.ContainsAny(value, " \"{}|^`") {
		return nil, fmt.Errorf("malformed IRI %q", value)
	}

	return NewIRI(value), nil
}

func isLangTagChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '-'
}

func isBlankNodeLabelChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.'
}

func (sc *lineScanner) readBlankNode() (Term, error) {
	sc.pos += 2 // consume '_:'

	start := sc.pos
	for sc.pos < len(sc.s) && isBlankNodeLabelChar(sc.s[sc.pos]) {
		sc.pos++
	}

	label := sc.s[start:sc.pos]
	if label == "" || strings.HasSuffix(label, ".") {
		return nil, fmt.Errorf("malformed blank node label at offset %d", start)
	}

	return NewBlankNode(label), nil
}

func (sc *lineScanner) readLiteral() (Term, error) {
	sc.pos++ // consume opening quote

	var b strings.Builder

	for {
		if sc.pos >= len(sc.s) {
			return nil, fmt.Errorf("unterminated literal")
		}

		c := sc.s[sc.pos]
		if c == '"' {
			sc.pos++
			break
		}

		if c == '\\' {
			if sc.pos+1 >= len(sc.s) {
				return nil, fmt.Errorf("truncated escape in literal")
			}

			b.WriteByte(c)
			b.WriteByte(sc.s[sc.pos+1])
			sc.pos += 2

			continue
		}

		b.WriteByte(c)
		sc.pos++
	}

	value, err := unescape(b.String())
	if err != nil {
		return nil, err
	}

	switch {
	case sc.consumeByte('@'):
		start := sc.pos
		for sc.pos < len(sc.s) && isLangTagChar(sc.s[sc.pos]) {
			sc.pos++
		}

		lang := sc.s[start:sc.pos]
		if lang == "" {
			return nil, fmt.Errorf("empty language tag")
		}

		return NewLiteral(value, "", lang), nil

	case strings.HasPrefix(sc.s[sc.pos:], "^^"):
		sc.pos += 2

		dt, err := sc.readIRIRef()
		if err != nil {
			return nil, err
		}

		return NewLiteral(value, dt.(*IRI).Value, ""), nil
	}

	return NewLiteral(value, "", ""), nil
}

// unescape resolves ECHAR and UCHAR escape sequences.
func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var b strings.Builder

	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			i++

			continue
		}

		if i+1 >= len(s) {
			return "", fmt.Errorf("truncated escape sequence")
		}

		switch s[i+1] {
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case '\\':
			b.WriteByte('\\')
		case 'u', 'U':
			width := 4
			if s[i+1] == 'U' {
				width = 8
			}

			if i+2+width > len(s) {
				return "", fmt.Errorf("truncated unicode escape")
			}

			code, err := strconv.ParseUint(s[i+2:i+2+width], 16, 32)
			if err != nil || !utf8.ValidRune(rune(code)) {
				return "", fmt.Errorf("invalid unicode escape %q", s[i:i+2+width])
			}

			b.WriteRune(rune(code))
			i += 2 + width

			continue
		default:
			return "", fmt.Errorf("invalid escape sequence %q", s[i:i+2])
		}

		i += 2
	}

	return b.String(), nil
}
