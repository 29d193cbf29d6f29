package whatsapp

import "strings"

// Normalize strips everything but digits from a phone number.
func Normalize(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EnsureCountryCode prefixes the Brazilian country code when the number
// looks like a local one (10-11 digits: area code + subscriber).
func EnsureCountryCode(phone string) string {
	digits := Normalize(phone)
	if len(digits) == 10 || len(digits) == 11 {
		return "55" + digits
	}
	return digits
}

// SameNumber compares two phone numbers by their trailing 9-digit suffix,
// tolerating country-code prefix variance. Numbers shorter than 9 digits
// only match on full equality.
func SameNumber(a, b string) bool {
	da, db := Normalize(a), Normalize(b)
	if da == "" || db == "" {
		return false
	}
	if len(da) < 9 || len(db) < 9 {
		return da == db
	}
	return da[len(da)-9:] == db[len(db)-9:]
}
