/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

package processor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Instun/sm2-2023-cryptosuite/docerr"
)

func jsonDoc(t *testing.T, raw string) map[string]interface{} {
	t.Helper()

	doc := make(map[string]interface{})
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	return doc
}

const testContext = `{
	"name": "http://schema.org/name",
	"age": {"@id": "http://schema.org/age", "@type": "http://www.w3.org/2001/XMLSchema#integer"},
	"verified": {"@id": "http://schema.org/verified", "@type": "http://www.w3.org/2001/XMLSchema#boolean"},
	"knows": {"@id": "http://schema.org/knows", "@type": "@id"},
	"tags": {"@id": "http://schema.org/tags", "@container": "@list"}
}`

func TestGetCanonicalDocument(t *testing.T) {
	proc := Default()

	t.Run("canonical output is stable bytes", func(t *testing.T) {
		doc := jsonDoc(t, `{
			"@context": `+testContext+`,
			"@id": "http://example.org/alice",
			"name": "Alice"
		}`)

		out, err := proc.GetCanonicalDocument(doc)
		require.NoError(t, err)
		require.Equal(t, "<http://example.org/alice> <http://schema.org/name> \"Alice\" .\n", string(out))
	})

	t.Run("independent of JSON key order", func(t *testing.T) {
		a := jsonDoc(t, `{
			"@context": `+testContext+`,
			"@id": "http://example.org/alice",
			"name": "Alice",
			"age": 30
		}`)

		b := jsonDoc(t, `{
			"age": 30,
			"name": "Alice",
			"@id": "http://example.org/alice",
			"@context": `+testContext+`
		}`)

		outA, err := proc.GetCanonicalDocument(a)
		require.NoError(t, err)

		outB, err := proc.GetCanonicalDocument(b)
		require.NoError(t, err)

		require.Equal(t, string(outA), string(outB))
	})

	t.Run("typed literals keep lexical form", func(t *testing.T) {
		doc := jsonDoc(t, `{
			"@context": `+testContext+`,
			"@id": "http://example.org/alice",
			"age": 30,
			"verified": true
		}`)

		out, err := proc.GetCanonicalDocument(doc)
		require.NoError(t, err)
		require.Contains(t, string(out), `"30"^^<http://www.w3.org/2001/XMLSchema#integer>`)
		require.Contains(t, string(out), `"true"^^<http://www.w3.org/2001/XMLSchema#boolean>`)
	})

	t.Run("null values are excluded", func(t *testing.T) {
		withNull := jsonDoc(t, `{
			"@context": `+testContext+`,
			"@id": "http://example.org/alice",
			"name": "Alice",
			"age": null
		}`)

		without := jsonDoc(t, `{
			"@context": `+testContext+`,
			"@id": "http://example.org/alice",
			"name": "Alice"
		}`)

		outA, err := proc.GetCanonicalDocument(withNull)
		require.NoError(t, err)

		outB, err := proc.GetCanonicalDocument(without)
		require.NoError(t, err)

		require.Equal(t, string(outA), string(outB))
	})

	t.Run("list order is preserved", func(t *testing.T) {
		doc := jsonDoc(t, `{
			"@context": `+testContext+`,
			"@id": "http://example.org/alice",
			"tags": ["x", "y"]
		}`)

		swapped := jsonDoc(t, `{
			"@context": `+testContext+`,
			"@id": "http://example.org/alice",
			"tags": ["y", "x"]
		}`)

		outA, err := proc.GetCanonicalDocument(doc)
		require.NoError(t, err)

		outB, err := proc.GetCanonicalDocument(swapped)
		require.NoError(t, err)

		require.NotEqual(t, string(outA), string(outB))
	})

	t.Run("blank nodes get canonical labels", func(t *testing.T) {
		doc := jsonDoc(t, `{
			"@context": `+testContext+`,
			"name": "Anonymous",
			"knows": {"name": "Friend"}
		}`)

		out, err := proc.GetCanonicalDocument(doc)
		require.NoError(t, err)
		require.Contains(t, string(out), "_:c14n0")
		require.Contains(t, string(out), "_:c14n1")
		require.NotContains(t, string(out), "_:b0")
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := NewProcessor("URGNA2012").GetCanonicalDocument(jsonDoc(t, `{}`))
		require.Error(t, err)
		require.True(t, docerr.IsArgument(err))
	})

	t.Run("empty algorithm falls back to default", func(t *testing.T) {
		out, err := NewProcessor("").GetCanonicalDocument(jsonDoc(t, `{}`))
		require.NoError(t, err)
		require.Empty(t, out)
	})
}

func TestGetCanonicalNQuads(t *testing.T) {
	proc := Default()

	t.Run("canonicalizes raw quads", func(t *testing.T) {
		out, err := proc.GetCanonicalNQuads(`_:z <http://example.org/p> "v" .`)
		require.NoError(t, err)
		require.Equal(t, "_:c14n0 <http://example.org/p> \"v\" .\n", string(out))
	})

	t.Run("generalized RDF passes through by default", func(t *testing.T) {
		out, err := proc.GetCanonicalNQuads(`<http://example.org/s> _:p "v" .`)
		require.NoError(t, err)
		require.NotEmpty(t, out)
	})

	t.Run("WithValidateRDF rejects generalized RDF", func(t *testing.T) {
		_, err := proc.GetCanonicalNQuads(`<http://example.org/s> _:p "v" .`, WithValidateRDF())
		require.Error(t, err)
		require.True(t, docerr.IsFormat(err))
	})

	t.Run("WithRemoveAllInvalidRDF drops generalized RDF", func(t *testing.T) {
		input := `<http://example.org/s> _:p "v" .
<http://example.org/s> <http://example.org/p> "kept" .`

		out, err := proc.GetCanonicalNQuads(input, WithRemoveAllInvalidRDF())
		require.NoError(t, err)
		require.Equal(t, "<http://example.org/s> <http://example.org/p> \"kept\" .\n", string(out))
	})

	t.Run("WithMaxDeepIterations propagates", func(t *testing.T) {
		input := `_:a <http://example.org/p> _:b .
_:b <http://example.org/p> _:c .
_:c <http://example.org/p> _:d .
_:d <http://example.org/p> _:a .
_:b <http://example.org/p> _:a .
_:c <http://example.org/p> _:b .
_:d <http://example.org/p> _:c .
_:a <http://example.org/p> _:d .`

		_, err := proc.GetCanonicalNQuads(input, WithMaxDeepIterations(1))
		require.Error(t, err)
		require.True(t, docerr.IsFormat(err))
	})
}

func TestAppendExternalContexts(t *testing.T) {
	t.Run("string context", func(t *testing.T) {
		out := AppendExternalContexts("http://example.org/c1", "http://example.org/c2")
		require.Equal(t, []interface{}{"http://example.org/c1", "http://example.org/c2"}, out)
	})

	t.Run("array context", func(t *testing.T) {
		out := AppendExternalContexts([]interface{}{"http://example.org/c1"}, "http://example.org/c2")
		require.Equal(t, []interface{}{"http://example.org/c1", "http://example.org/c2"}, out)
	})

	t.Run("inline map context", func(t *testing.T) {
		inline := map[string]interface{}{"name": "http://schema.org/name"}

		out := AppendExternalContexts(inline, "http://example.org/c2")
		require.Equal(t, []interface{}{inline, "http://example.org/c2"}, out)
	})
}
