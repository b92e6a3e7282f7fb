package phonefmt

import "testing"

func TestDetectCallingCode(t *testing.T) {
	tests := []struct {
		digits string
		code   string
		ok     bool
	}{
		{"5511987654321", "55", true},
		{"15551234567", "1", true},
		{"442071838750", "44", true},
		{"79991234567", "7", true},
		{"919876543210", "91", true},
		{"999123", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		code, ok := DetectCallingCode(tt.digits)
		if code != tt.code || ok != tt.ok {
			t.Errorf("DetectCallingCode(%q) = %q, %v; want %q, %v", tt.digits, code, ok, tt.code, tt.ok)
		}
	}
}

func TestDetectPrefersLongerCodes(t *testing.T) {
	// 91 must win over a hypothetical shadowing by shorter codes, and 7 must
	// only match when nothing longer does.
	if code, _ := DetectCallingCode("912345"); code != "91" {
		t.Fatalf("expected 91, got %q", code)
	}
	if code, _ := DetectCallingCode("712345"); code != "7" {
		t.Fatalf("expected 7, got %q", code)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// Brazil
		{"5511987654321", "+55 (11) 98765-4321"},
		{"55", "+55"},
		{"5511", "+55 11"},
		{"55119876", "+55 (11) 9876"},
		// International 00 prefix detects NANP
		{"0015551234567", "+1 (555) 123-4567"},
		{"1555123", "+1 (555) 123"},
		{"1555", "+1 555"},
		// Generic grouping
		{"442071838750", "+44 207 183 8750"},
		{"4420718", "+44 207 18"},
		{"44", "+44"},
		// No known code
		{"999123", "999 123"},
		{"999", "999"},
		{"9991234567", "999 123 4567"},
		// Non-digits are stripped before formatting
		{"+55 (11) 98765-4321", "+55 (11) 98765-4321"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFlagEmoji(t *testing.T) {
	if got := FlagEmoji("BR"); got != "\U0001F1E7\U0001F1F7" {
		t.Errorf("FlagEmoji(BR) = %q", got)
	}
	if got := FlagEmoji(""); got != GlobePlaceholder {
		t.Errorf("FlagEmoji(\"\") = %q; want globe", got)
	}
	if got := FlagEmoji("B1"); got != GlobePlaceholder {
		t.Errorf("FlagEmoji(B1) = %q; want globe", got)
	}
}

func TestFlagForNumber(t *testing.T) {
	if got := FlagForNumber("5511987654321"); got != "\U0001F1E7\U0001F1F7" {
		t.Errorf("FlagForNumber(BR number) = %q", got)
	}
	if got := FlagForNumber("0015551234567"); got != "\U0001F1FA\U0001F1F8" {
		t.Errorf("FlagForNumber(US number) = %q", got)
	}
	if got := FlagForNumber("999123"); got != GlobePlaceholder {
		t.Errorf("FlagForNumber(unknown) = %q; want globe", got)
	}
}
