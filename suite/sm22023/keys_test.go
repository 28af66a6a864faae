/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

package sm22023

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/emmansun/gmsm/sm2"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"
	"github.com/stretchr/testify/require"

	"github.com/Instun/sm2-2023-cryptosuite/docerr"
	"github.com/Instun/sm2-2023-cryptosuite/models"
)

func TestKeyCapabilities(t *testing.T) {
	key := testKey(t)
	msg := []byte("message to sign")

	t.Run("sign and verify", func(t *testing.T) {
		sig, err := NewKeySigner(key).Sign(msg)
		require.NoError(t, err)
		require.NotEmpty(t, sig)

		require.NoError(t, NewKeyVerifier(&key.PublicKey).Verify(msg, sig))
	})

	t.Run("mismatch is ErrSignatureMismatch", func(t *testing.T) {
		sig, err := NewKeySigner(key).Sign(msg)
		require.NoError(t, err)

		err = NewKeyVerifier(&key.PublicKey).Verify([]byte("other message"), sig)
		require.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("wrong key is ErrSignatureMismatch", func(t *testing.T) {
		sig, err := NewKeySigner(key).Sign(msg)
		require.NoError(t, err)

		other := testKey(t)

		err = NewKeyVerifier(&other.PublicKey).Verify(msg, sig)
		require.ErrorIs(t, err, ErrSignatureMismatch)
	})
}

func TestPublicKeyMultibase(t *testing.T) {
	key := testKey(t)

	t.Run("round trip", func(t *testing.T) {
		mb, err := EncodePublicKeyMultibase(&key.PublicKey)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(mb, "z"), "base58btc multibase starts with z")

		pub, err := PublicKeyFromVerificationMethod(&models.VerificationMethod{
			ID:                 "did:example:alice#key-1",
			Type:               VerificationMethodTypeMultikey,
			PublicKeyMultibase: mb,
		})
		require.NoError(t, err)
		require.True(t, key.PublicKey.Equal(pub))
	})

	t.Run("legacy key type accepted", func(t *testing.T) {
		mb, err := EncodePublicKeyMultibase(&key.PublicKey)
		require.NoError(t, err)

		_, err = PublicKeyFromVerificationMethod(&models.VerificationMethod{
			Type:               VerificationMethodTypeSm2,
			PublicKeyMultibase: mb,
		})
		require.NoError(t, err)
	})

	t.Run("nil verification method", func(t *testing.T) {
		_, err := PublicKeyFromVerificationMethod(nil)
		require.Error(t, err)
		require.True(t, docerr.IsArgument(err))
	})

	t.Run("unsupported key type", func(t *testing.T) {
		_, err := PublicKeyFromVerificationMethod(&models.VerificationMethod{
			Type: "Ed25519VerificationKey2020",
		})
		require.Error(t, err)
		require.True(t, docerr.IsArgument(err))
	})

	t.Run("missing key material", func(t *testing.T) {
		_, err := PublicKeyFromVerificationMethod(&models.VerificationMethod{
			Type: VerificationMethodTypeMultikey,
		})
		require.Error(t, err)
		require.True(t, docerr.IsArgument(err))
	})

	t.Run("invalid multibase encoding", func(t *testing.T) {
		_, err := PublicKeyFromVerificationMethod(&models.VerificationMethod{
			Type:               VerificationMethodTypeMultikey,
			PublicKeyMultibase: "!!bad!!",
		})
		require.Error(t, err)
		require.True(t, docerr.IsArgument(err))
	})

	t.Run("wrong multicodec prefix", func(t *testing.T) {
		// ed25519-pub multicodec instead of sm2
		data := append(varint.ToUvarint(0xed), make([]byte, 32)...)

		mb, err := multibase.Encode(multibase.Base58BTC, data)
		require.NoError(t, err)

		_, err = PublicKeyFromVerificationMethod(&models.VerificationMethod{
			Type:               VerificationMethodTypeMultikey,
			PublicKeyMultibase: mb,
		})
		require.Error(t, err)
		require.True(t, docerr.IsArgument(err))
	})

	t.Run("invalid compressed point", func(t *testing.T) {
		data := append(varint.ToUvarint(sm2PubMulticodec), make([]byte, 33)...)

		mb, err := multibase.Encode(multibase.Base58BTC, data)
		require.NoError(t, err)

		_, err = PublicKeyFromVerificationMethod(&models.VerificationMethod{
			Type:               VerificationMethodTypeMultikey,
			PublicKeyMultibase: mb,
		})
		require.Error(t, err)
		require.True(t, docerr.IsArgument(err))
	})

	t.Run("nil public key", func(t *testing.T) {
		_, err := EncodePublicKeyMultibase(nil)
		require.Error(t, err)
		require.True(t, docerr.IsArgument(err))
	})
}

func TestNewVerificationMethod(t *testing.T) {
	key, err := sm2.GenerateKey(rand.Reader)
	require.NoError(t, err)

	vm, err := NewVerificationMethod("did:example:alice#key-1", "did:example:alice", &key.PublicKey)
	require.NoError(t, err)

	require.Equal(t, "did:example:alice#key-1", vm.ID)
	require.Equal(t, "did:example:alice", vm.Controller)
	require.Equal(t, VerificationMethodTypeMultikey, vm.Type)
	require.NotEmpty(t, vm.PublicKeyMultibase)

	verifier, err := NewVerifier(vm)
	require.NoError(t, err)
	require.NotNil(t, verifier)
}
