/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

package dataintegrity

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Instun/sm2-2023-cryptosuite/docerr"
	"github.com/Instun/sm2-2023-cryptosuite/models"
	"github.com/Instun/sm2-2023-cryptosuite/suite"
)

const (
	proofPath = "proof"
)

// Verifier implements the Verify Proof algorithm of the verifiable credential
// data integrity specification, using a set of provided cryptographic suites.
type Verifier struct {
	suites   map[string]suite.Verifier
	resolver VMResolver
}

// NewVerifier initializes a Verifier that supports using the provided
// cryptographic suites to perform data integrity verification.
func NewVerifier(opts *Options, suites ...suite.VerifierInitializer) (*Verifier, error) {
	if opts == nil {
		opts = &Options{}
	}

	verifier := &Verifier{
		suites:   map[string]suite.Verifier{},
		resolver: opts.VMResolver,
	}

	for _, initializer := range suites {
		suiteType := initializer.Type()

		if _, ok := verifier.suites[suiteType]; ok {
			continue
		}

		verifierSuite, err := initializer.Verifier()
		if err != nil {
			return nil, err
		}

		verifier.suites[suiteType] = verifierSuite
	}

	return verifier, nil
}

var (
	// ErrMissingProof is returned when Verifier.VerifyProof() is given a
	// document without a data integrity proof field.
	ErrMissingProof = errors.New("missing data integrity proof")
	// ErrMalformedProof is returned when Verifier.VerifyProof() is given a
	// document with a proof that isn't a JSON object or is missing necessary
	// standard fields.
	ErrMalformedProof = errors.New("malformed data integrity proof")
	// ErrWrongProofType is returned when Verifier.VerifyProof() is given a
	// document with a proof that isn't a Data Integrity proof.
	ErrWrongProofType = errors.New("proof provided is not a data integrity proof")
)

// Failure reasons reported in models.VerificationResult when a check ran to
// completion and failed.
const (
	ReasonInvalidSignature  = "proof signature does not verify against the document"
	ReasonMismatchedPurpose = "proof does not match expected purpose"
	ReasonInvalidDomain     = "proof has invalid domain"
	ReasonInvalidChallenge  = "proof has invalid challenge"
	ReasonOutOfDate         = "proof out of date"
)

// VerifyProof verifies the data integrity proof on the given JSON document.
// When the document carries a proof set, every proof in the set is checked
// and the result is positive only if all of them verify.
//
// A check that ran and failed, a bad signature included, is reported through
// models.VerificationResult with a nil error. An error is returned only when
// verification could not run at all: missing or malformed proof, unsupported
// suite, unresolvable verification method, or a suite-level
// ArgumentError/FormatError/CryptoError.
func (v *Verifier) VerifyProof(doc []byte, opts *models.ProofOptions) (*models.VerificationResult, error) {
	proofRaw := gjson.GetBytes(doc, proofPath)

	if !proofRaw.Exists() {
		return nil, docerr.Wrap(docerr.CodeFormat, ErrMissingProof, "document has no proof")
	}

	unsecuredDoc, err := sjson.DeleteBytes(doc, proofPath)
	if err != nil {
		return nil, docerr.Wrap(docerr.CodeFormat, err, "failed to remove proof from document")
	}

	proofs := []gjson.Result{proofRaw}
	if proofRaw.IsArray() {
		proofs = proofRaw.Array()

		if len(proofs) == 0 {
			return nil, docerr.Wrap(docerr.CodeFormat, ErrMissingProof, "document proof set is empty")
		}
	}

	for _, raw := range proofs {
		// each proof binds its own verification method; give every proof a
		// private copy of the options so resolution does not leak across the set
		proofOpts := *opts

		result, err := v.verifyOne(unsecuredDoc, raw, &proofOpts)
		if err != nil {
			return nil, err
		}

		if !result.Verified {
			return result, nil
		}
	}

	return &models.VerificationResult{Verified: true}, nil
}

func (v *Verifier) verifyOne(unsecuredDoc []byte, proofRaw gjson.Result, opts *models.ProofOptions) (*models.VerificationResult, error) { // nolint:funlen,gocyclo,lll
	proof := &models.Proof{}

	err := json.Unmarshal([]byte(proofRaw.Raw), proof)
	if err != nil {
		return nil, docerr.Wrap(docerr.CodeFormat, ErrMalformedProof, "proof is not a JSON object")
	}

	if proof.Type == "" || proof.VerificationMethod == "" || proof.ProofPurpose == "" {
		return nil, docerr.Wrap(docerr.CodeFormat, ErrMalformedProof, "proof is missing required fields")
	}

	if proof.Type != models.DataIntegrityProof {
		return nil, docerr.Wrap(docerr.CodeArgument, ErrWrongProofType, "unexpected proof type")
	}

	verifierSuite, ok := v.suites[proof.CryptoSuite]
	if !ok {
		return nil, docerr.Wrap(docerr.CodeArgument, ErrUnsupportedSuite, "no verifier suite for "+proof.CryptoSuite)
	}

	if verifierSuite.RequiresCreated() && proof.Created == "" {
		return nil, docerr.Wrap(docerr.CodeFormat, ErrMalformedProof, "proof is missing created")
	}

	var createdTime time.Time

	if proof.Created != "" {
		createdTime, err = time.Parse(models.DateTimeFormat, proof.Created)
		if err != nil {
			return nil, docerr.Wrap(docerr.CodeFormat, ErrMalformedProof, "proof created is not a valid timestamp")
		}
	}

	if opts.Purpose != "" && proof.ProofPurpose != opts.Purpose {
		return &models.VerificationResult{Reason: ReasonMismatchedPurpose}, nil
	}

	if opts.Domain != "" && opts.Domain != proof.Domain {
		return &models.VerificationResult{Reason: ReasonInvalidDomain}, nil
	}

	if opts.Challenge != "" && opts.Challenge != proof.Challenge {
		return &models.VerificationResult{Reason: ReasonInvalidChallenge}, nil
	}

	if opts.MaxAge > 0 && !createdTime.IsZero() {
		if time.Since(createdTime) > time.Second*time.Duration(opts.MaxAge) {
			return &models.VerificationResult{Reason: ReasonOutOfDate}, nil
		}
	}

	err = resolveVM(opts, v.resolver, proof.VerificationMethod)
	if err != nil {
		return nil, docerr.Wrap(docerr.CodeArgument, err, "cannot resolve proof verification method")
	}

	err = verifierSuite.VerifyProof(unsecuredDoc, proof, opts)
	if err != nil {
		if errors.Is(err, suite.ErrInvalidProof) {
			return &models.VerificationResult{Reason: ReasonInvalidSignature}, nil
		}

		return nil, err
	}

	return &models.VerificationResult{Verified: true}, nil
}
