/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

// Package cryptosuite exposes the sm2-2023 data integrity cryptosuite
// behind a small surface: suite identity constants, local key capabilities,
// and the proof protocol entry points. The subpackages remain importable
// directly for callers that need finer control.
package cryptosuite

import (
	"github.com/Instun/sm2-2023-cryptosuite/dataintegrity"
	"github.com/Instun/sm2-2023-cryptosuite/models"
	"github.com/Instun/sm2-2023-cryptosuite/suite/sm22023"
)

// Suite identity.
const (
	// SuiteType is the cryptosuite identifier carried in proofs.
	SuiteType = sm22023.SuiteType
	// RequiredAlgorithm is the signature algorithm the suite requires of its
	// verification methods.
	RequiredAlgorithm = sm22023.RequiredAlgorithm
)

// Data model aliases.
type (
	// Proof is a data integrity proof.
	Proof = models.Proof
	// ProofOptions selects the suite, key and binding values for one
	// operation.
	ProofOptions = models.ProofOptions
	// VerificationMethod carries the public key material a proof binds to.
	VerificationMethod = models.VerificationMethod
	// VerificationResult reports the outcome of a completed verification.
	VerificationResult = models.VerificationResult
)

// NewSigner returns a data integrity signer backed by the sm2-2023 suite with
// the given signing capability.
func NewSigner(signer sm22023.Signer) (*dataintegrity.Signer, error) {
	return dataintegrity.NewSigner(sm22023.NewSignerInitializer(&sm22023.SignerInitializerOptions{
		Signer: signer,
	}))
}

// NewVerifier returns a data integrity verifier backed by the sm2-2023 suite.
// The verification method is taken from the proof options or resolved through
// opts.VMResolver.
func NewVerifier(opts *dataintegrity.Options) (*dataintegrity.Verifier, error) {
	return dataintegrity.NewVerifier(opts, sm22023.NewVerifierInitializer(&sm22023.VerifierInitializerOptions{}))
}
