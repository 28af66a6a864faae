/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

package dataintegrity

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Instun/sm2-2023-cryptosuite/models"
	"github.com/Instun/sm2-2023-cryptosuite/suite"
)

// Signer implements the Add Proof algorithm of the verifiable credential data
// integrity specification, using a set of provided cryptographic suites.
type Signer struct {
	suites map[string]suite.Signer
}

// NewSigner initializes a Signer that supports using the provided
// cryptographic suites to perform data integrity signing.
func NewSigner(suites ...suite.SignerInitializer) (*Signer, error) {
	signer := &Signer{
		suites: map[string]suite.Signer{},
	}

	for _, initializer := range suites {
		suiteType := initializer.Type()

		if _, ok := signer.suites[suiteType]; ok {
			continue
		}

		signingSuite, err := initializer.Signer()
		if err != nil {
			return nil, err
		}

		signer.suites[suiteType] = signingSuite
	}

	return signer, nil
}

// ErrProofGeneration is returned when Signer.AddProof() fails to generate a
// proof using a supported cryptographic suite. The suite's own error is
// joined in, so the caller can still classify it.
var ErrProofGeneration = errors.New("data integrity proof generation error")

// AddProof returns the provided JSON doc, with a top-level "proof" field
// added, signed using the provided options. When the document already carries
// a proof, the new proof is appended, forming a proof set.
//
// If the provided options request a cryptographic suite that this Signer does
// not support, AddProof returns ErrUnsupportedSuite.
//
// If signing fails, or the created proof is invalid, AddProof returns
// ErrProofGeneration.
func (s *Signer) AddProof(doc []byte, opts *models.ProofOptions) ([]byte, error) { // nolint:gocyclo
	signerSuite, ok := s.suites[opts.SuiteType]
	if !ok {
		return nil, ErrUnsupportedSuite
	}

	proof, err := signerSuite.CreateProof(doc, opts)
	if err != nil {
		return nil, errors.Join(ErrProofGeneration, err)
	}

	if proof.Type == "" || proof.ProofPurpose == "" || proof.VerificationMethod == "" {
		return nil, ErrProofGeneration
	}

	if proof.Created == "" && signerSuite.RequiresCreated() {
		return nil, ErrProofGeneration
	}

	if opts.Domain != "" && opts.Domain != proof.Domain {
		return nil, ErrProofGeneration
	}

	if opts.Challenge != "" && opts.Challenge != proof.Challenge {
		return nil, ErrProofGeneration
	}

	if opts.GenerateProofID {
		proof.ID = "urn:uuid:" + uuid.NewString()
	}

	proofRaw, err := json.Marshal(proof)
	if err != nil {
		return nil, ErrProofGeneration
	}

	out, err := appendProof(doc, proofRaw)
	if err != nil {
		return nil, errors.Join(ErrProofGeneration, err)
	}

	return out, nil
}

// appendProof writes proofRaw into doc's proof field. An existing proof turns
// into a proof set, an existing proof set grows by one element.
func appendProof(doc, proofRaw []byte) ([]byte, error) {
	existing := gjson.GetBytes(doc, proofPath)

	switch {
	case !existing.Exists():
		return sjson.SetRawBytes(doc, proofPath, proofRaw)
	case existing.IsArray():
		return sjson.SetRawBytes(doc, proofPath+".-1", proofRaw)
	default:
		withSet, err := sjson.SetRawBytes(doc, proofPath, []byte("["+existing.Raw+"]"))
		if err != nil {
			return nil, err
		}

		return sjson.SetRawBytes(withSet, proofPath+".-1", proofRaw)
	}
}
