/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

package cryptosuite_test

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/emmansun/gmsm/sm2"
	"github.com/stretchr/testify/require"

	cryptosuite "github.com/Instun/sm2-2023-cryptosuite"
	"github.com/Instun/sm2-2023-cryptosuite/suite/sm22023"
)

func TestPackageSurface(t *testing.T) {
	key, err := sm2.GenerateKey(rand.Reader)
	require.NoError(t, err)

	vm, err := sm22023.NewVerificationMethod("did:example:alice#key-1", "did:example:alice", &key.PublicKey)
	require.NoError(t, err)

	signer, err := cryptosuite.NewSigner(sm22023.NewKeySigner(key))
	require.NoError(t, err)

	verifier, err := cryptosuite.NewVerifier(nil)
	require.NoError(t, err)

	doc := []byte(`{
		"@context": {"name": "http://schema.org/name"},
		"@id": "http://example.org/alice",
		"name": "Alice"
	}`)

	signed, err := signer.AddProof(doc, &cryptosuite.ProofOptions{
		SuiteType:          cryptosuite.SuiteType,
		Purpose:            "assertionMethod",
		VerificationMethod: vm,
		Created:            time.Now(),
	})
	require.NoError(t, err)

	result, err := verifier.VerifyProof(signed, &cryptosuite.ProofOptions{
		Purpose:            "assertionMethod",
		VerificationMethod: vm,
	})
	require.NoError(t, err)
	require.True(t, result.Verified)
}
