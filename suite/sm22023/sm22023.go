/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

// Package sm22023 implements the sm2-2023 data integrity cryptographic
// suite: RDF dataset canonicalization of the document and the proof
// configuration, an SM3 digest over both, and an SM2 signature carried as a
// base58btc multibase proofValue.
package sm22023

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/emmansun/gmsm/sm3"
	"github.com/multiformats/go-multibase"
	"github.com/piprate/json-gold/ld"

	"github.com/Instun/sm2-2023-cryptosuite/docerr"
	"github.com/Instun/sm2-2023-cryptosuite/ld/processor"
	"github.com/Instun/sm2-2023-cryptosuite/models"
	"github.com/Instun/sm2-2023-cryptosuite/suite"
)

const (
	// SuiteType "sm2-2023" is the data integrity cryptosuite identifier for
	// the suite implementing SM2 signatures with RDF canonicalization.
	SuiteType = "sm2-2023"

	// RequiredAlgorithm is the signature algorithm every verification method
	// used with this suite must support.
	RequiredAlgorithm = "SM2"
)

const ldCtxKey = "@context"

// A Signer capability signs messages. It is supplied by a key-management
// collaborator; the suite never inspects key material directly.
type Signer interface {
	// Sign signs msg and returns the signature bytes.
	Sign(msg []byte) ([]byte, error)
}

// A Verifier capability checks signatures. Implementations return
// ErrSignatureMismatch when the signature does not match and any other error
// for unexpected failures.
type Verifier interface {
	// Verify checks signature over msg.
	Verify(msg, signature []byte) error
}

// Suite implements the sm2-2023 data integrity cryptographic suite.
type Suite struct {
	ldLoader ld.DocumentLoader
	proc     *processor.Processor
	signer   Signer
	verifier Verifier
}

// Options provides initialization options for Suite.
type Options struct {
	// LDDocumentLoader resolves external JSON-LD contexts; optional.
	LDDocumentLoader ld.DocumentLoader
	// Signer is the signing capability; required for CreateProof.
	Signer Signer
	// Verifier is the verifying capability; when nil, VerifyProof binds one
	// to the proof's verification method via NewVerifier.
	Verifier Verifier
}

// SuiteInitializer is the initializer for Suite.
type SuiteInitializer func() (suite.Suite, error)

// New constructs an initializer for Suite.
func New(options *Options) SuiteInitializer {
	return func() (suite.Suite, error) {
		return &Suite{
			ldLoader: options.LDDocumentLoader,
			proc:     processor.Default(),
			signer:   options.Signer,
			verifier: options.Verifier,
		}, nil
	}
}

type initializer SuiteInitializer

// Signer private, implements suite.SignerInitializer.
func (i initializer) Signer() (suite.Signer, error) {
	return i()
}

// Verifier private, implements suite.VerifierInitializer.
func (i initializer) Verifier() (suite.Verifier, error) {
	return i()
}

// Type private, implements suite.SignerInitializer and
// suite.VerifierInitializer.
func (i initializer) Type() string {
	return SuiteType
}

// SignerInitializerOptions provides options for a SignerInitializer.
type SignerInitializerOptions struct {
	LDDocumentLoader ld.DocumentLoader
	Signer           Signer
}

// NewSignerInitializer returns a suite.SignerInitializer that initializes an
// sm2-2023 signing Suite with the given SignerInitializerOptions.
func NewSignerInitializer(options *SignerInitializerOptions) suite.SignerInitializer {
	return initializer(New(&Options{
		LDDocumentLoader: options.LDDocumentLoader,
		Signer:           options.Signer,
	}))
}

// VerifierInitializerOptions provides options for a VerifierInitializer.
type VerifierInitializerOptions struct {
	LDDocumentLoader ld.DocumentLoader
	Verifier         Verifier
}

// NewVerifierInitializer returns a suite.VerifierInitializer that initializes
// an sm2-2023 verification Suite with the given VerifierInitializerOptions.
func NewVerifierInitializer(options *VerifierInitializerOptions) suite.VerifierInitializer {
	return initializer(New(&Options{
		LDDocumentLoader: options.LDDocumentLoader,
		Verifier:         options.Verifier,
	}))
}

// CreateProof implements the sm2-2023 cryptographic suite proof creation:
// canonicalize document and proof configuration, digest, sign, and assemble
// the proof.
func (s *Suite) CreateProof(doc []byte, opts *models.ProofOptions) (*models.Proof, error) {
	if err := validateCreateOptions(opts); err != nil {
		return nil, err
	}

	created := opts.Created
	if created.IsZero() {
		created = time.Now()
	}

	createdStr := created.Format(models.DateTimeFormat)

	verifyData, err := s.transformAndHash(doc, proofConfigValues{
		verificationMethod: verificationMethodID(opts),
		created:            createdStr,
		purpose:            opts.Purpose,
		domain:             opts.Domain,
		challenge:          opts.Challenge,
	})
	if err != nil {
		return nil, err
	}

	if s.signer == nil {
		return nil, docerr.New(docerr.CodeArgument, "signer is not defined")
	}

	sig, err := s.signer.Sign(verifyData)
	if err != nil {
		return nil, docerr.Wrap(docerr.CodeCrypto, err, "failed to sign canonical document digest")
	}

	sigStr, err := multibase.Encode(multibase.Base58BTC, sig)
	if err != nil {
		return nil, docerr.Wrap(docerr.CodeCrypto, err, "failed to encode proof value")
	}

	return &models.Proof{
		Type:               models.DataIntegrityProof,
		CryptoSuite:        SuiteType,
		ProofPurpose:       opts.Purpose,
		VerificationMethod: verificationMethodID(opts),
		Created:            createdStr,
		Domain:             opts.Domain,
		Challenge:          opts.Challenge,
		ProofValue:         sigStr,
	}, nil
}

// VerifyProof implements the sm2-2023 cryptographic suite proof
// verification. The proof configuration is rebuilt from the proof itself,
// minus the signature value, so that it canonicalizes exactly as signed. A
// signature mismatch returns suite.ErrInvalidProof.
func (s *Suite) VerifyProof(doc []byte, proof *models.Proof, opts *models.ProofOptions) error {
	if proof.Type != models.DataIntegrityProof || proof.CryptoSuite != SuiteType {
		return docerr.Newf(docerr.CodeArgument, "proof is not an %s data integrity proof", SuiteType)
	}

	verifyData, err := s.transformAndHash(doc, proofConfigValues{
		verificationMethod: proof.VerificationMethod,
		created:            proof.Created,
		purpose:            proof.ProofPurpose,
		domain:             proof.Domain,
		challenge:          proof.Challenge,
	})
	if err != nil {
		return err
	}

	_, sig, err := multibase.Decode(proof.ProofValue)
	if err != nil {
		return docerr.Wrap(docerr.CodeFormat, err, "failed to decode proof value")
	}

	verifier := s.verifier

	if verifier == nil {
		var vm *models.VerificationMethod
		if opts != nil {
			vm = opts.VerificationMethod
		}

		verifier, err = NewVerifier(vm)
		if err != nil {
			return err
		}
	}

	err = verifier.Verify(verifyData, sig)
	if err != nil {
		if errors.Is(err, ErrSignatureMismatch) {
			return suite.ErrInvalidProof
		}

		return docerr.Wrap(docerr.CodeCrypto, err, "failed to verify canonical document digest")
	}

	return nil
}

// RequiresCreated returns true: sm2-2023 proofs carry the created timestamp
// in the signed proof configuration.
func (s *Suite) RequiresCreated() bool {
	return true
}

// GetCanonicalDocument returns the canonical version of the document, using
// RDF dataset canonicalization.
func (s *Suite) GetCanonicalDocument(doc map[string]interface{}, opts ...processor.Opts) ([]byte, error) {
	if s.ldLoader != nil {
		opts = append(opts, processor.WithDocumentLoader(s.ldLoader))
	}

	return s.proc.GetCanonicalDocument(doc, opts...)
}

// GetDigest returns the SM3 digest of doc.
func (s *Suite) GetDigest(doc []byte) []byte {
	h := sm3.New()
	h.Write(doc)

	return h.Sum(nil)
}

type proofConfigValues struct {
	verificationMethod string
	created            string
	purpose            string
	domain             string
	challenge          string
}

// transformAndHash is the shared create/verify pipeline: parse the document,
// canonicalize it and the proof configuration, and digest both.
func (s *Suite) transformAndHash(doc []byte, conf proofConfigValues) ([]byte, error) {
	docData := make(map[string]interface{})

	err := json.Unmarshal(doc, &docData)
	if err != nil {
		return nil, docerr.Wrap(docerr.CodeFormat, err, "sm2-2023 suite expects JSON-LD payload")
	}

	confData := proofConfig(docData[ldCtxKey], conf)

	canonDoc, err := s.GetCanonicalDocument(docData)
	if err != nil {
		return nil, err
	}

	canonConf, err := s.GetCanonicalDocument(confData)
	if err != nil {
		return nil, err
	}

	// an empty proof config would leave the digest binding nothing but the
	// document; it can only mean the proof terms failed to expand
	if len(canonConf) == 0 {
		return nil, docerr.New(docerr.CodeFormat, "proof configuration canonicalized to zero statements")
	}

	return s.hashData(canonConf, canonDoc), nil
}

// hashData implements the suite's digest step. The order is a suite-versioned
// constant applied identically on create and verify: proof configuration
// digest first, document digest second, concatenated with no outer hash.
func (s *Suite) hashData(canonConf, canonDoc []byte) []byte {
	return append(s.GetDigest(canonConf), s.GetDigest(canonDoc)...)
}

// proofContext defines the data integrity proof terms against the security
// vocabulary. It is always the last entry of the proof configuration's
// context, so the proof fields expand to RDF no matter what the document's
// own context defines or omits.
var proofContext = map[string]interface{}{
	"id":                 "@id",
	"type":               "@type",
	"DataIntegrityProof": "https://w3id.org/security#DataIntegrityProof",
	"cryptosuite":        "https://w3id.org/security#cryptosuite",
	"created": map[string]interface{}{
		"@id":   "http://purl.org/dc/terms/created",
		"@type": "http://www.w3.org/2001/XMLSchema#dateTime",
	},
	"verificationMethod": map[string]interface{}{
		"@id":   "https://w3id.org/security#verificationMethod",
		"@type": "@id",
	},
	"proofPurpose": "https://w3id.org/security#proofPurpose",
	"domain":       "https://w3id.org/security#domain",
	"challenge":    "https://w3id.org/security#challenge",
}

// proofConfig builds the proof configuration that gets canonicalized and
// signed: every proof field except the signature value, under the document's
// context extended with the suite's proof context.
func proofConfig(docCtx interface{}, conf proofConfigValues) map[string]interface{} {
	ctx := processor.AppendExternalContexts(docCtx)
	ctx = append(ctx, proofContext)

	config := map[string]interface{}{
		ldCtxKey:             ctx,
		"type":               models.DataIntegrityProof,
		"cryptosuite":        SuiteType,
		"verificationMethod": conf.verificationMethod,
		"created":            conf.created,
		"proofPurpose":       conf.purpose,
	}

	if conf.domain != "" {
		config["domain"] = conf.domain
	}

	if conf.challenge != "" {
		config["challenge"] = conf.challenge
	}

	return config
}

func validateCreateOptions(opts *models.ProofOptions) error {
	if opts == nil {
		return docerr.New(docerr.CodeArgument, "proof options are missing")
	}

	if opts.VerificationMethod == nil && opts.VerificationMethodID == "" {
		return docerr.New(docerr.CodeArgument, "proof options are missing a verification method")
	}

	if opts.Purpose == "" {
		return docerr.New(docerr.CodeArgument, "proof options are missing a proof purpose")
	}

	if opts.ProofType != "" && opts.ProofType != models.DataIntegrityProof {
		return docerr.Newf(docerr.CodeArgument, "proof type %q is not supported", opts.ProofType)
	}

	if opts.SuiteType != "" && opts.SuiteType != SuiteType {
		return docerr.Newf(docerr.CodeArgument, "cryptosuite %q is not supported", opts.SuiteType)
	}

	return nil
}

func verificationMethodID(opts *models.ProofOptions) string {
	if opts.VerificationMethodID != "" {
		return opts.VerificationMethodID
	}

	if opts.VerificationMethod != nil {
		return opts.VerificationMethod.ID
	}

	return ""
}
