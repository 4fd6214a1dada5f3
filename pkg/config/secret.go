package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// SecretSource tells where a secret phrase lives.
type SecretSource string

const (
	// SecretFromEnv reads the phrase from an environment variable.
	SecretFromEnv SecretSource = "env"
	// SecretFromFile reads the phrase from a file (e.g. a mounted secret).
	SecretFromFile SecretSource = "file"
)

// SecretRef is an opaque handle to the wallet secret phrase. It holds only
// the location; the phrase is read by Resolve at the point of use.
type SecretRef struct {
	Source SecretSource
	Key    string
}

// ParseSecretRef parses "env:NAME" or "file:PATH". A bare name is treated
// as an environment variable.
func ParseSecretRef(s string) (SecretRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SecretRef{}, errors.New("empty secret reference")
	}
	source, key, found := strings.Cut(s, ":")
	if !found {
		return SecretRef{Source: SecretFromEnv, Key: s}, nil
	}
	switch SecretSource(source) {
	case SecretFromEnv, SecretFromFile:
	default:
		return SecretRef{}, fmt.Errorf("unknown secret source %q", source)
	}
	if key == "" {
		return SecretRef{}, fmt.Errorf("secret reference %q has no key", s)
	}
	return SecretRef{Source: SecretSource(source), Key: key}, nil
}

// IsZero reports whether the reference is unset.
func (r SecretRef) IsZero() bool {
	return r.Key == ""
}

// String returns the reference, never the secret.
func (r SecretRef) String() string {
	if r.IsZero() {
		return ""
	}
	return string(r.Source) + ":" + r.Key
}

// Available reports whether the referenced secret exists and is non-empty,
// without keeping its value.
func (r SecretRef) Available(lookup LookupFunc) bool {
	v, err := r.Resolve(lookup)
	return err == nil && v != ""
}

// Resolve reads the secret phrase. Callers should not retain the result
// longer than needed to derive a key.
func (r SecretRef) Resolve(lookup LookupFunc) (string, error) {
	switch r.Source {
	case SecretFromEnv:
		if lookup == nil {
			lookup = os.LookupEnv
		}
		v, ok := lookup(r.Key)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return "", configErr(ErrMissingCredential, r.Key, "", nil)
		}
		return v, nil
	case SecretFromFile:
		data, err := os.ReadFile(r.Key)
		if err != nil {
			return "", configErr(ErrMissingCredential, r.Key, "", err)
		}
		v := strings.TrimSpace(string(data))
		if v == "" {
			return "", configErr(ErrMissingCredential, r.Key, "", nil)
		}
		return v, nil
	default:
		return "", configErr(ErrMissingCredential, "secret", "", nil)
	}
}
