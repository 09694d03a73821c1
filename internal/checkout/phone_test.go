package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+7 (999) 123-45-67", "79991234567"},
		{"8 999 123 45 67", "89991234567"},
		{"89991234567", "89991234567"},
		{"phone: 7-999-123-45-67", "79991234567"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhoneDigits(tt.in), "input %q", tt.in)
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{
		"79991234567",
		"89991234567",
		"+7 (999) 123-45-67",
		"8 (999) 123-45-67",
	}
	for _, p := range valid {
		assert.True(t, ValidPhone(p), "expected %q to be valid", p)
	}

	invalid := []string{
		"",
		"12345",
		"99991234567",      // 11 digits but wrong leading digit
		"799912345678",     // 12 digits
		"7999123456",       // 10 digits
		"+1 (555) 123-4567",
	}
	for _, p := range invalid {
		assert.False(t, ValidPhone(p), "expected %q to be invalid", p)
	}
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+7 (999) 123-45-67", FormatPhone("79991234567"))
	assert.Equal(t, "+7 (999) 123-45-67", FormatPhone("89991234567"))
	assert.Equal(t, "+7 (999) 123-45-67", FormatPhone("+7 (999) 123-45-67"))

	// Invalid input passes through unchanged.
	assert.Equal(t, "12345", FormatPhone("12345"))
	assert.Equal(t, "", FormatPhone(""))
}
