/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

package sm22023

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"

	"github.com/emmansun/gmsm/sm2"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"

	"github.com/Instun/sm2-2023-cryptosuite/docerr"
	"github.com/Instun/sm2-2023-cryptosuite/models"
)

// Verification method types accepted by this suite.
const (
	// VerificationMethodTypeMultikey is the generic multibase key container
	// type from the data integrity specification.
	VerificationMethodTypeMultikey = "Multikey"
	// VerificationMethodTypeSm2 is the suite-specific legacy key type.
	VerificationMethodTypeSm2 = "Sm2VerificationKey2023"
)

// sm2PubMulticodec is the multicodec code prefixed, varint-encoded, to the
// compressed SM2 public key point inside publicKeyMultibase.
const sm2PubMulticodec = 0x8624

// ErrSignatureMismatch is returned by a Verifier capability when the
// signature does not match the signed data. It is the only verifier error
// treated as a normal negative outcome rather than a CryptoError.
var ErrSignatureMismatch = errors.New("signature does not match")

// KeySigner is a local Signer capability over an SM2 private key, for callers
// that do not bring a key management service.
type KeySigner struct {
	key *sm2.PrivateKey
}

// NewKeySigner returns a Signer capability bound to the given key.
func NewKeySigner(key *sm2.PrivateKey) *KeySigner {
	return &KeySigner{key: key}
}

// Sign signs msg with SM2, applying the standard ZA identity hashing, and
// returns the ASN.1-encoded signature.
func (s *KeySigner) Sign(msg []byte) ([]byte, error) {
	return s.key.Sign(rand.Reader, msg, sm2.DefaultSM2SignerOpts)
}

// KeyVerifier is a local Verifier capability over an SM2 public key.
type KeyVerifier struct {
	pub *ecdsa.PublicKey
}

// NewKeyVerifier returns a Verifier capability bound to the given key.
func NewKeyVerifier(pub *ecdsa.PublicKey) *KeyVerifier {
	return &KeyVerifier{pub: pub}
}

// Verify checks an ASN.1-encoded SM2 signature over msg. A signature that
// does not match returns ErrSignatureMismatch.
func (v *KeyVerifier) Verify(msg, signature []byte) error {
	if !sm2.VerifyASN1WithSM2(v.pub, nil, msg, signature) {
		return ErrSignatureMismatch
	}

	return nil
}

// NewVerifier validates the verification method and returns a Verifier
// capability bound to its public key. An incompatible or malformed method
// fails with an ArgumentError before any cryptographic work.
func NewVerifier(vm *models.VerificationMethod) (Verifier, error) {
	pub, err := PublicKeyFromVerificationMethod(vm)
	if err != nil {
		return nil, err
	}

	return NewKeyVerifier(pub), nil
}

// PublicKeyFromVerificationMethod decodes the SM2 public key carried in a
// Multikey or Sm2VerificationKey2023 verification method.
func PublicKeyFromVerificationMethod(vm *models.VerificationMethod) (*ecdsa.PublicKey, error) {
	if vm == nil {
		return nil, docerr.New(docerr.CodeArgument, "verification method is missing")
	}

	if vm.Type != VerificationMethodTypeMultikey && vm.Type != VerificationMethodTypeSm2 {
		return nil, docerr.Newf(docerr.CodeArgument,
			"verification method type %q is not supported by the %s suite", vm.Type, SuiteType)
	}

	if vm.PublicKeyMultibase == "" {
		return nil, docerr.New(docerr.CodeArgument, "verification method has no publicKeyMultibase")
	}

	_, data, err := multibase.Decode(vm.PublicKeyMultibase)
	if err != nil {
		return nil, docerr.Wrap(docerr.CodeArgument, err, "invalid publicKeyMultibase encoding")
	}

	code, n, err := varint.FromUvarint(data)
	if err != nil || code != sm2PubMulticodec {
		return nil, docerr.New(docerr.CodeArgument, "publicKeyMultibase does not carry an sm2 public key")
	}

	x, y := elliptic.UnmarshalCompressed(sm2.P256(), data[n:])
	if x == nil {
		return nil, docerr.New(docerr.CodeArgument, "invalid compressed sm2 public key point")
	}

	return &ecdsa.PublicKey{Curve: sm2.P256(), X: x, Y: y}, nil
}

// EncodePublicKeyMultibase encodes an SM2 public key into the
// publicKeyMultibase form used by this suite: base58btc multibase over the
// sm2 multicodec prefix and the compressed point.
func EncodePublicKeyMultibase(pub *ecdsa.PublicKey) (string, error) {
	if pub == nil || pub.X == nil {
		return "", docerr.New(docerr.CodeArgument, "public key is missing")
	}

	point := elliptic.MarshalCompressed(sm2.P256(), pub.X, pub.Y)
	data := append(varint.ToUvarint(sm2PubMulticodec), point...)

	return multibase.Encode(multibase.Base58BTC, data)
}

// NewVerificationMethod builds a Multikey verification method for an SM2
// public key.
func NewVerificationMethod(id, controller string, pub *ecdsa.PublicKey) (*models.VerificationMethod, error) {
	mb, err := EncodePublicKeyMultibase(pub)
	if err != nil {
		return nil, err
	}

	return &models.VerificationMethod{
		ID:                 id,
		Type:               VerificationMethodTypeMultikey,
		Controller:         controller,
		PublicKeyMultibase: mb,
	}, nil
}
