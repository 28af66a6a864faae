/*
Copyright Instun, Inc. All Rights Reserved.

SPDX-License-Identifier: MIT
*/

// Package docerr defines the closed set of error kinds surfaced by the
// sm2-2023 cryptosuite: ArgumentError, FormatError and CryptoError. Every
// error carries a stable code, a human-readable message and an optional
// wrapped cause. A failed signature check is not an error of any kind; it is
// reported as a negative verification result by the caller.
package docerr

import (
	"errors"
	"fmt"
)

// Code identifies an error kind.
type Code string

const (
	// CodeArgument marks structurally invalid or missing caller input,
	// detected before any canonicalization or cryptographic work.
	CodeArgument Code = "ArgumentError"
	// CodeFormat marks a document, quad set or encoded value that could not
	// be parsed or decoded.
	CodeFormat Code = "FormatError"
	// CodeCrypto marks an unexpected failure of the underlying sign/verify
	// capability.
	CodeCrypto Code = "CryptoError"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	code  Code
	msg   string
	cause error
}

// New returns a new coded error.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Newf returns a new coded error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a new coded error wrapping cause.
func Wrap(code Code, cause error, msg string) *Error {
	return &Error{code: code, msg: msg, cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.code, e.msg, e.cause.Error())
	}

	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

func is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.code == code
	}

	return false
}

// IsArgument reports whether err is an ArgumentError.
func IsArgument(err error) bool {
	return is(err, CodeArgument)
}

// IsFormat reports whether err is a FormatError.
func IsFormat(err error) bool {
	return is(err, CodeFormat)
}

// IsCrypto reports whether err is a CryptoError.
func IsCrypto(err error) bool {
	return is(err, CodeCrypto)
}
