package utils

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone converts a guest phone number to E.164 ("+27821234567").
// A leading 0 is replaced by countryCode; WhatsApp JIDs ("27821234567@s.whatsapp.net")
// and formatting characters are stripped.
func NormalizePhone(raw, countryCode string) (string, error) {
	s := raw
	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	var digits strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", ErrInvalidPhone
		}
	}

	d := digits.String()
	switch {
	case strings.HasPrefix(d, "00"):
		d = d[2:]
	case strings.HasPrefix(d, "0"):
		d = strings.TrimLeft(countryCode, "+") + d[1:]
	}

	if len(d) < 8 || len(d) > 15 {
		return "", ErrInvalidPhone
	}
	return "+" + d, nil
}

// PhoneKey is the storage-safe form of a normalised phone number.
func PhoneKey(phone string) string {
	return strings.TrimPrefix(phone, "+")
}
