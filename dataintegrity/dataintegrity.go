/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

// Package dataintegrity implements the Add Proof and Verify Proof algorithms
// of the verifiable credential data integrity specification over pluggable
// cryptographic suites.
package dataintegrity

import (
	"errors"

	"github.com/Instun/sm2-2023-cryptosuite/models"
)

var (
	// ErrUnsupportedSuite is returned when a Signer or Verifier is required to
	// use a cryptographic suite for which it doesn't have a suite.Signer or
	// suite.Verifier (respectively) initialized.
	ErrUnsupportedSuite = errors.New("data integrity proof requires unsupported cryptographic suite")
	// ErrNoResolver is returned when a Verifier needs to resolve a
	// verification method but has no resolver.
	ErrNoResolver = errors.New("either a verification method resolver or a resolved verification method must be provided") //nolint:lll
	// ErrVMResolution is returned when a Verifier needs to resolve a
	// verification method but this fails.
	ErrVMResolution = errors.New("failed to resolve verification method")
)

// VMResolver resolves a verification method reference found in a proof to the
// full verification method, including key material.
type VMResolver interface {
	ResolveVerificationMethod(id string) (*models.VerificationMethod, error)
}

// Options contains initialization parameters for the data integrity Signer
// and Verifier.
type Options struct {
	VMResolver VMResolver
}

func resolveVM(opts *models.ProofOptions, resolver VMResolver, vmID string) error {
	if opts.VerificationMethod != nil {
		return nil
	}

	if resolver == nil {
		return ErrNoResolver
	}

	vm, err := resolver.ResolveVerificationMethod(vmID)
	if err != nil {
		return errors.Join(ErrVMResolution, err)
	}

	opts.VerificationMethod = vm

	return nil
}
