// Package security provides token masking and log sanitization for the
// credentials workbridge holds for all three platforms.
package security

import "fmt"

const (
	// Minimum token length to show partial masking (last 4 chars).
	minTokenLengthForPartialMask = 8
	maskShowChars                = 4
	maskEmpty                    = "[empty]"
	maskRedacted                 = "[redacted]"
)

// SecureToken wraps a sensitive token so it cannot leak through string
// formatting. String and GoString return masked values, making the
// wrapper safe in logs and error messages.
type SecureToken struct {
	value string
}

// NewSecureToken wraps a raw token value.
func NewSecureToken(token string) SecureToken {
	return SecureToken{value: token}
}

// String implements fmt.Stringer with a masked representation.
func (t SecureToken) String() string {
	if t.value == "" {
		return maskEmpty
	}
	if len(t.value) < minTokenLengthForPartialMask {
		return maskRedacted
	}
	return fmt.Sprintf("[token:****%s]", t.value[len(t.value)-maskShowChars:])
}

// GoString implements fmt.GoStringer to prevent leaking via %#v.
func (t SecureToken) GoString() string {
	return t.String()
}

// Value returns the real token. Only call this to authenticate; never
// log or print the result.
func (t SecureToken) Value() string {
	return t.value
}

// IsEmpty reports whether no token is set.
func (t SecureToken) IsEmpty() bool {
	return t.value == ""
}
