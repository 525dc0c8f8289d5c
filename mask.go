package shroud

import (
	"strings"
	"unicode"
)

// Content-aware obfuscators recognize a data format and keep its structure
// while hiding the identifying part. Text that does not look like the format is
// masked entirely.

type ssnObfuscator struct{}

// SSN returns an obfuscator for Social Security Numbers.
// 123-45-6789 -> ***-**-6789
func SSN() Obfuscator {
	return ssnObfuscator{}
}

func (ssnObfuscator) ObfuscateText(text string) string {
	digits := extractDigits(text)
	if len(digits) < 4 {
		return maskAll(text)
	}
	return "***-**-" + digits[len(digits)-4:]
}

type emailObfuscator struct{}

// Email returns an obfuscator for email addresses.
// alice@example.com -> a***@example.com
func Email() Obfuscator {
	return emailObfuscator{}
}

func (emailObfuscator) ObfuscateText(text string) string {
	at := strings.LastIndex(text, "@")
	if at < 1 {
		return maskAll(text)
	}
	return text[:1] + "***" + text[at:]
}

type phoneObfuscator struct{}

// Phone returns an obfuscator for phone numbers.
// (555) 123-4567 -> (***) ***-4567
func Phone() Obfuscator {
	return phoneObfuscator{}
}

func (phoneObfuscator) ObfuscateText(text string) string {
	digits := extractDigits(text)
	if len(digits) < 4 {
		return maskAll(text)
	}

	last4 := digits[len(digits)-4:]
	switch {
	case strings.HasPrefix(text, "(") && len(digits) >= 10:
		return "(***) ***-" + last4
	case len(digits) >= 10:
		return "***-***-" + last4
	default:
		return "***-" + last4
	}
}

type cardObfuscator struct{}

// Card returns an obfuscator for payment card numbers.
// 4111 1111 1111 1111 -> **** **** **** 1111
func Card() Obfuscator {
	return cardObfuscator{}
}

func (cardObfuscator) ObfuscateText(text string) string {
	digits := extractDigits(text)
	if len(digits) < 4 {
		return maskAll(text)
	}

	last4 := digits[len(digits)-4:]
	for _, sep := range []string{" ", "-"} {
		if strings.Contains(text, sep) {
			groups := make([]string, (len(digits)-1)/4)
			for i := range groups {
				groups[i] = "****"
			}
			return strings.Join(append(groups, last4), sep)
		}
	}
	return strings.Repeat("*", len(digits)-4) + last4
}

type ipObfuscator struct{}

// IP returns an obfuscator for IP addresses.
// IPv4 keeps the first two octets, IPv6 keeps the 64-bit network prefix.
func IP() Obfuscator {
	return ipObfuscator{}
}

func (ipObfuscator) ObfuscateText(text string) string {
	if parts := strings.Split(text, "."); len(parts) == 4 {
		return parts[0] + "." + parts[1] + ".xxx.xxx"
	}
	if strings.Contains(text, ":") {
		parts := strings.Split(expandIPv6(text), ":")
		if len(parts) == 8 {
			return strings.Join(parts[:4], ":") + ":xxxx:xxxx:xxxx:xxxx"
		}
	}
	return maskAll(text)
}

// expandIPv6 expands :: notation to the full 8-group form.
// Malformed input is returned unchanged.
func expandIPv6(text string) string {
	head, tail, found := strings.Cut(text, "::")
	if !found || strings.Contains(tail, "::") {
		return text
	}

	var left, right []string
	if head != "" {
		left = strings.Split(head, ":")
	}
	if tail != "" {
		right = strings.Split(tail, ":")
	}

	missing := 8 - len(left) - len(right)
	if missing < 0 {
		return text
	}

	groups := append([]string{}, left...)
	for range missing {
		groups = append(groups, "0000")
	}
	return strings.Join(append(groups, right...), ":")
}

type uuidObfuscator struct{}

// UUID returns an obfuscator for UUIDs that keeps the first segment.
func UUID() Obfuscator {
	return uuidObfuscator{}
}

func (uuidObfuscator) ObfuscateText(text string) string {
	first, _, _ := strings.Cut(text, "-")
	if strings.Count(text, "-") != 4 {
		return maskAll(text)
	}
	return first + "-****-****-****-************"
}

type ibanObfuscator struct{}

// IBAN returns an obfuscator for IBANs that keeps the country code, check
// digits and the last four characters.
func IBAN() Obfuscator {
	return ibanObfuscator{}
}

func (ibanObfuscator) ObfuscateText(text string) string {
	if len(text) <= 8 {
		return maskAll(text)
	}
	return text[:4] + strings.Repeat("*", len(text)-8) + text[len(text)-4:]
}

type nameObfuscator struct{}

// Name returns an obfuscator for personal names that keeps the first letter
// of each word.
func Name() Obfuscator {
	return nameObfuscator{}
}

func (nameObfuscator) ObfuscateText(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		runes := []rune(word)
		words[i] = string(runes[0]) + strings.Repeat("*", len(runes)-1)
	}
	return strings.Join(words, " ")
}

func extractDigits(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

func maskAll(s string) string {
	return All().ObfuscateText(s)
}
