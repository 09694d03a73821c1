package checkout

import "strings"

// PhoneDigits strips every non-digit character from phone. The result is
// what goes into the order payload.
func PhoneDigits(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether phone is a Russian mobile number: exactly 11
// digits after stripping formatting, starting with 7 or 8. A leading 8 is
// accepted as equivalent to 7 without substitution.
func ValidPhone(phone string) bool {
	digits := PhoneDigits(phone)
	return len(digits) == 11 && (digits[0] == '7' || digits[0] == '8')
}

// FormatPhone renders a valid number in the +7 (XXX) XXX-XX-XX display form.
// Input that does not validate is returned unchanged.
func FormatPhone(phone string) string {
	digits := PhoneDigits(phone)
	if len(digits) != 11 || (digits[0] != '7' && digits[0] != '8') {
		return phone
	}
	return "+7 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:9] + "-" + digits[9:11]
}
