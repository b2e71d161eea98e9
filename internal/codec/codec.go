// Package codec provides the at-rest transform applied to interaction
// text. The transform is total and invertible; a keyed scheme can be
// swapped in behind the same interface without touching callers.
package codec

import (
	"encoding/base64"
	"fmt"
)

// Codec encodes text before it hits the store and decodes it on read.
// Decode(Encode(x)) must equal x for every input.
type Codec interface {
	Encode(plain string) (string, error)
	Decode(stored string) (string, error)
	// Obfuscating reports whether stored rows differ from plaintext,
	// which drives the interactions.encrypted flag.
	Obfuscating() bool
}

// EncodeError means the at-rest transform failed. Ingestion fails
// closed on it: the row is never stored as plaintext.
type EncodeError struct {
	Op  string
	Err error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("codec: %s: %v", e.Op, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// Base64 is a reversible, unkeyed obfuscation. It is deliberately not
// confidentiality-preserving; it exists to keep stored text out of
// casual grep reach while staying fully invertible.
type Base64 struct{}

func (Base64) Encode(plain string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(plain)), nil
}

func (Base64) Decode(stored string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", &EncodeError{Op: "decode", Err: err}
	}
	return string(b), nil
}

func (Base64) Obfuscating() bool { return true }

// Passthrough stores text unchanged. Decode is the identity.
type Passthrough struct{}

func (Passthrough) Encode(plain string) (string, error)  { return plain, nil }
func (Passthrough) Decode(stored string) (string, error) { return stored, nil }
func (Passthrough) Obfuscating() bool                    { return false }

// ForMode returns the codec for a config toggle.
func ForMode(obfuscate bool) Codec {
	if obfuscate {
		return Base64{}
	}
	return Passthrough{}
}
