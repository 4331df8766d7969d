// Package contact defines the contact record and its validation rules.
package contact

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPhoneDigits is the minimum number of digits a phone must contain.
const MinPhoneDigits = 7

// Contact is a single address book record as stored in the data file.
type Contact struct {
	Name    string `json:"name" validate:"present"`
	Phone   string `json:"phone" validate:"phonedigits"`
	Email   string `json:"email" validate:"looseemail"`
	Address string `json:"address"`
}

// emailPattern is matched as a prefix: trailing text after the last
// dotted segment is accepted.
var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)

// NormalizePhoneDigits returns only the decimal digits of phone.
func NormalizePhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidPhone reports whether phone carries at least MinPhoneDigits digits,
// ignoring any formatting characters.
func IsValidPhone(phone string) bool {
	return utf8.RuneCountInString(NormalizePhoneDigits(phone)) >= MinPhoneDigits
}

// IsValidEmail reports whether email looks like local@domain.tld.
// Blank input is valid because email is optional.
func IsValidEmail(email string) bool {
	return strings.TrimSpace(email) == "" || emailPattern.MatchString(email)
}

// CollapseSpace trims s and replaces internal whitespace runs with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NameKey returns the comparison key for exact-name matching.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
