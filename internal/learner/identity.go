// Package learner holds the identity of a learner as seen by the journey.
//
// The email address is the stable key. Names arrive from several places
// (quiz form, login, admin tools) and vary in casing and spacing, so both are
// normalized before they are written or compared.
package learner

import (
	"strings"
	"unicode"
)

// Profile identifies a learner.
type Profile struct {
	Name  string
	Email string
}

// New returns a Profile with name and email normalized.
func New(name, email string) Profile {
	return Profile{Name: NormalizeName(name), Email: NormalizeEmail(email)}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims the name and collapses inner whitespace runs to a
// single space. Casing is preserved for display; use NameKey to compare.
func NormalizeName(name string) string {
	return strings.Join(strings.FieldsFunc(name, unicode.IsSpace), " ")
}

// NameKey returns the case-insensitive comparison key for a name.
func NameKey(name string) string {
	return strings.ToLower(NormalizeName(name))
}

// SameName reports whether a and b refer to the same display name.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}
