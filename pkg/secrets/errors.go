package secrets

import (
	"errors"
	"fmt"
)

// ErrUninitialized is returned by every read accessor until Initialize has succeeded.
var ErrUninitialized = errors.New("secrets manager must be initialized before any secrets can be retrieved")

// DecryptError reports a failed Decrypt call for one namespace.
type DecryptError struct {
	Namespace string
	Err       error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypt secret [%s]: %v", e.Namespace, e.Err)
}

func (e *DecryptError) Unwrap() error { return e.Err }

// ParseError reports a parse function that rejected a decrypted plaintext.
type ParseError struct {
	Namespace string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse secret [%s]: %v", e.Namespace, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
