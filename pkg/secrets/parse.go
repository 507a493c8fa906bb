package secrets

import (
	"encoding/json"
	"fmt"
)

// ParseFunc transforms a decrypted plaintext into the value stored under its namespace.
type ParseFunc func(plaintext []byte) (any, error)

// Identity stores the plaintext unchanged, as a string.
func Identity(plaintext []byte) (any, error) {
	return string(plaintext), nil
}

// JSON decodes the plaintext as a JSON document. Numbers decode as float64.
func JSON(plaintext []byte) (any, error) {
	var v any
	if err := json.Unmarshal(plaintext, &v); err != nil {
		return nil, fmt.Errorf("invalid json plaintext: %w", err)
	}
	return v, nil
}

// JSONInto returns a ParseFunc decoding the plaintext into a fresh T.
// Lookups descend into the result only when T is a map or slice.
func JSONInto[T any]() ParseFunc {
	return func(plaintext []byte) (any, error) {
		var v T
		if err := json.Unmarshal(plaintext, &v); err != nil {
			return nil, fmt.Errorf("invalid json plaintext: %w", err)
		}
		return v, nil
	}
}
