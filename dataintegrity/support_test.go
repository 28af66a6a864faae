/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

package dataintegrity

import (
	"time"

	"github.com/Instun/sm2-2023-cryptosuite/models"
	"github.com/Instun/sm2-2023-cryptosuite/suite"
)

const mockSuiteType = "mock-suite-2023"

type mockSuite struct {
	createdProof *models.Proof
	createErr    error
	verifyErr    error
	initErr      error
}

func (m *mockSuite) CreateProof(doc []byte, opts *models.ProofOptions) (*models.Proof, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}

	if m.createdProof != nil {
		return m.createdProof, nil
	}

	return &models.Proof{
		Type:               models.DataIntegrityProof,
		CryptoSuite:        mockSuiteType,
		ProofPurpose:       opts.Purpose,
		VerificationMethod: opts.VerificationMethodID,
		Created:            time.Now().Format(models.DateTimeFormat),
		Domain:             opts.Domain,
		Challenge:          opts.Challenge,
		ProofValue:         "zMockProofValue",
	}, nil
}

func (m *mockSuite) VerifyProof(doc []byte, proof *models.Proof, opts *models.ProofOptions) error {
	return m.verifyErr
}

func (m *mockSuite) RequiresCreated() bool {
	return true
}

func (m *mockSuite) Signer() (suite.Signer, error) {
	return m, m.initErr
}

func (m *mockSuite) Verifier() (suite.Verifier, error) {
	return m, m.initErr
}

func (m *mockSuite) Type() string {
	return mockSuiteType
}

type mockResolver struct {
	vm  *models.VerificationMethod
	err error
}

func (m *mockResolver) ResolveVerificationMethod(id string) (*models.VerificationMethod, error) {
	return m.vm, m.err
}
