/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

// Package models holds the data integrity proof data model shared by the
// proof protocol and the cryptographic suite.
package models

import "time"

// DataIntegrityProof is the proof type of every data integrity proof,
// regardless of cryptosuite.
const DataIntegrityProof = "DataIntegrityProof"

// DateTimeFormat is the date-time format used by the data integrity
// specification, which matches RFC3339.
// https://www.w3.org/TR/xmlschema11-2/#dateTime
const DateTimeFormat = time.RFC3339

// VerificationMethod implements the data integrity verification method model:
// https://www.w3.org/TR/vc-data-integrity/#verification-methods
type VerificationMethod struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyMultibase string `json:"publicKeyMultibase,omitempty"`
	Fields             map[string]interface{}
}

// Proof implements the data integrity proof model:
// https://www.w3.org/TR/vc-data-integrity/#proofs
//
// Created is carried as the original lexical string so that the verify path
// re-canonicalizes the proof configuration byte-for-byte as it was signed.
type Proof struct {
	ID                 string `json:"id,omitempty"`
	Type               string `json:"type"`
	CryptoSuite        string `json:"cryptosuite,omitempty"`
	ProofPurpose       string `json:"proofPurpose"`
	VerificationMethod string `json:"verificationMethod"`
	Created            string `json:"created,omitempty"`
	Domain             string `json:"domain,omitempty"`
	Challenge          string `json:"challenge,omitempty"`
	ProofValue         string `json:"proofValue"`
	PreviousProof      string `json:"previousProof,omitempty"`
}

// ProofOptions provides options for signing or verifying a data integrity
// proof. Options are immutable for the duration of one operation.
type ProofOptions struct {
	// Purpose is the proof purpose (required).
	Purpose string
	// VerificationMethod is the key reference the proof binds to. Either the
	// resolved method or, on the verify path, a resolver may supply it.
	VerificationMethod *VerificationMethod
	// VerificationMethodID overrides the identifier written into the proof;
	// defaults to VerificationMethod.ID.
	VerificationMethodID string
	// SuiteType selects the cryptosuite (e.g. "sm2-2023").
	SuiteType string
	// ProofType is the proof type; defaults to DataIntegrityProof.
	ProofType string
	// Created is the proof creation time; the zero value means "now" on the
	// create path.
	Created time.Time
	// Domain and Challenge bind the proof to a relying party context.
	Domain    string
	Challenge string
	// MaxAge, in seconds, rejects proofs created too long ago on the verify
	// path. Zero disables the check.
	MaxAge int64
	// GenerateProofID asks the create path to mint a urn:uuid proof id so the
	// proof can be referenced from proof sets.
	GenerateProofID bool
}

// VerificationResult reports the outcome of a proof verification that ran to
// completion. Verified false with a Reason is a normal outcome, distinct from
// the errors raised when the check could not run at all.
type VerificationResult struct {
	Verified bool
	Reason   string
}
