// Package phonefmt formats phone numbers for display and resolves country
// flags from international calling codes. It mirrors the in-browser
// formatter shipped as a static asset, so stored numbers render the same way
// the form displayed them.
package phonefmt

import (
	"sort"
	"strings"
)

// GlobePlaceholder is shown when no calling code is recognized.
const GlobePlaceholder = "\U0001F310"

// CallingCodes maps a calling code to its ISO 3166-1 alpha-2 region.
var CallingCodes = map[string]string{
	"55": "BR",
	"1":  "US",
	"44": "GB",
	"34": "ES",
	"33": "FR",
	"49": "DE",
	"39": "IT",
	"52": "MX",
	"91": "IN",
	"7":  "RU",
}

// codesByLength holds calling codes longest-first so multi-digit codes are
// not shadowed by single-digit ones.
var codesByLength = func() []string {
	codes := make([]string, 0, len(CallingCodes))
	for code := range CallingCodes {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})
	return codes
}()

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DetectCallingCode finds the known calling code prefixing digits, trying
// longer codes first.
func DetectCallingCode(digits string) (string, bool) {
	for _, code := range codesByLength {
		if strings.HasPrefix(digits, code) {
			return code, true
		}
	}
	return "", false
}

// Format renders a raw phone input for display. A leading "00" is treated as
// an international prefix and dropped before detection.
func Format(raw string) string {
	digits := Digits(raw)
	digits = strings.TrimPrefix(digits, "00")

	code, ok := DetectCallingCode(digits)
	if !ok {
		return formatUngrouped(digits)
	}

	switch code {
	case "55":
		return formatBrazil(digits[len(code):])
	case "1":
		return formatNANP(digits[len(code):])
	default:
		return formatGeneric(code, digits[len(code):])
	}
}

func formatBrazil(nd string) string {
	switch {
	case len(nd) == 0:
		return "+55"
	case len(nd) <= 2:
		return "+55 " + nd
	case len(nd) <= 7:
		return "+55 (" + nd[:2] + ") " + nd[2:]
	default:
		return "+55 (" + nd[:2] + ") " + nd[2:7] + "-" + nd[7:]
	}
}

func formatNANP(nd string) string {
	switch {
	case len(nd) == 0:
		return "+1"
	case len(nd) <= 3:
		return "+1 " + nd
	case len(nd) <= 6:
		return "+1 (" + nd[:3] + ") " + nd[3:]
	default:
		return "+1 (" + nd[:3] + ") " + nd[3:6] + "-" + clip(nd[6:], 4)
	}
}

func formatGeneric(code, rest string) string {
	switch {
	case len(rest) == 0:
		return "+" + code
	case len(rest) <= 3:
		return "+" + code + " " + rest
	case len(rest) <= 6:
		return "+" + code + " " + rest[:3] + " " + rest[3:]
	default:
		return "+" + code + " " + rest[:3] + " " + rest[3:6] + " " + clip(rest[6:], 4)
	}
}

func formatUngrouped(digits string) string {
	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 6:
		return digits[:3] + " " + digits[3:]
	default:
		return digits[:3] + " " + digits[3:6] + " " + clip(digits[6:], 4)
	}
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// FlagEmoji maps a 2-letter region to its flag by shifting each letter into
// the Unicode regional-indicator block.
func FlagEmoji(region string) string {
	if region == "" {
		return GlobePlaceholder
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(region) {
		if r < 'A' || r > 'Z' {
			return GlobePlaceholder
		}
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	return b.String()
}

// FlagForNumber resolves the flag for an arbitrary phone string, falling back
// to the globe placeholder when no calling code is detected.
func FlagForNumber(raw string) string {
	digits := strings.TrimPrefix(Digits(raw), "00")
	code, ok := DetectCallingCode(digits)
	if !ok {
		return GlobePlaceholder
	}
	return FlagEmoji(CallingCodes[code])
}
