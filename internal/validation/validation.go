// Package validation holds the predicates forms run before an operation is
// dispatched.
//
// Every predicate is total: any string is accepted, nothing panics, and the
// empty string is always invalid.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"
)

// space is the whitespace class browsers use for \s and String.trim: RE2's
// \s plus vertical tab, the Unicode space separators, the byte order mark
// and the line and paragraph separators.
const space = `\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}`

var (
	emailPattern = regexp.MustCompile(`^[^` + space + `@]+@[^` + space + `@]+\.[^` + space + `@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	namePattern  = regexp.MustCompile(`^[A-Za-z` + space + `]{2,}$`)
	letters      = regexp.MustCompile(`[A-Za-z]`)
	digits       = regexp.MustCompile(`\d`)
)

// isSpace matches one character of the space class.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// trim removes leading and trailing space-class characters.
func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// length counts UTF-16 code units, so a character outside the Basic
// Multilingual Plane counts twice.
func length(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// MinPasswordLength is the shortest password Password accepts.
const MinPasswordLength = 6

// Email reports whether s looks like local@domain.tld.
func Email(s string) bool {
	return s != "" && emailPattern.MatchString(s)
}

// Password reports whether s is at least MinPasswordLength UTF-16 units long
// and contains at least one ASCII letter and one digit.
func Password(s string) bool {
	if length(s) < MinPasswordLength {
		return false
	}
	return letters.MatchString(s) && digits.MatchString(s)
}

// PhoneNumber reports whether s, once spaces, dashes and parentheses are
// removed, is 7 to 15 digits with an optional leading + and a non-zero first
// digit.
func PhoneNumber(s string) bool {
	if s == "" {
		return false
	}
	return phonePattern.MatchString(stripPhoneSeparators(s))
}

func stripPhoneSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '(' || r == ')' || isSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Name reports whether the trimmed s is at least two characters of ASCII
// letters and spaces.
func Name(s string) bool {
	return namePattern.MatchString(trim(s))
}
