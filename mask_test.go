package shroud

import (
	"testing"
)

func TestSSN(t *testing.T) {
	o := SSN()

	tests := []struct {
		input    string
		expected string
	}{
		{"123-45-6789", "***-**-6789"},
		{"123456789", "***-**-6789"},
		{"12-34-5678", "***-**-5678"},
		{"123", "***"}, // Too short
	}

	for _, tt := range tests {
		result := o.ObfuscateText(tt.input)
		if result != tt.expected {
			t.Errorf("SSN(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestEmail(t *testing.T) {
	o := Email()

	tests := []struct {
		input    string
		expected string
	}{
		{"alice@example.com", "a***@example.com"},
		{"bob@test.org", "b***@test.org"},
		{"a@b.com", "a***@b.com"},
		{"noatsign", "********"}, // No @
	}

	for _, tt := range tests {
		result := o.ObfuscateText(tt.input)
		if result != tt.expected {
			t.Errorf("Email(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestPhone(t *testing.T) {
	o := Phone()

	tests := []struct {
		input    string
		expected string
	}{
		{"(555) 123-4567", "(***) ***-4567"},
		{"555-123-4567", "***-***-4567"},
		{"5551234567", "***-***-4567"},
		{"123", "***"}, // Too short
	}

	for _, tt := range tests {
		result := o.ObfuscateText(tt.input)
		if result != tt.expected {
			t.Errorf("Phone(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestCard(t *testing.T) {
	o := Card()

	tests := []struct {
		input    string
		expected string
	}{
		{"4111111111111111", "************1111"},
		{"4111 1111 1111 1111", "**** **** **** 1111"},
		{"4111-1111-1111-1111", "****-****-****-1111"},
		{"123", "***"}, // Too short
	}

	for _, tt := range tests {
		result := o.ObfuscateText(tt.input)
		if result != tt.expected {
			t.Errorf("Card(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestIP(t *testing.T) {
	o := IP()

	tests := []struct {
		input    string
		expected string
	}{
		// IPv4
		{"192.168.1.100", "192.168.xxx.xxx"},
		{"10.0.0.1", "10.0.xxx.xxx"},
		// IPv6 full form
		{"2001:0db8:85a3:0000:0000:8a2e:0370:7334", "2001:0db8:85a3:0000:xxxx:xxxx:xxxx:xxxx"},
		// IPv6 compressed
		{"2001:db8:85a3::8a2e:370:7334", "2001:db8:85a3:0000:xxxx:xxxx:xxxx:xxxx"},
		// IPv6 loopback
		{"::1", "0000:0000:0000:0000:xxxx:xxxx:xxxx:xxxx"},
		// IPv6 all zeros
		{"::", "0000:0000:0000:0000:xxxx:xxxx:xxxx:xxxx"},
		// Invalid
		{"invalid", "*******"},
	}

	for _, tt := range tests {
		result := o.ObfuscateText(tt.input)
		if result != tt.expected {
			t.Errorf("IP(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestUUID(t *testing.T) {
	o := UUID()

	tests := []struct {
		input    string
		expected string
	}{
		{"550e8400-e29b-41d4-a716-446655440000", "550e8400-****-****-****-************"},
		{"12345678-1234-1234-1234-123456789012", "12345678-****-****-****-************"},
		{"invalid", "*******"}, // Not UUID format
	}

	for _, tt := range tests {
		result := o.ObfuscateText(tt.input)
		if result != tt.expected {
			t.Errorf("UUID(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestIBAN(t *testing.T) {
	o := IBAN()

	tests := []struct {
		input    string
		expected string
	}{
		{"GB82WEST12345698765432", "GB82**************5432"},
		{"DE89370400440532013000", "DE89**************3000"},
		{"SHORT", "*****"}, // Too short
	}

	for _, tt := range tests {
		result := o.ObfuscateText(tt.input)
		if result != tt.expected {
			t.Errorf("IBAN(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestName(t *testing.T) {
	o := Name()

	tests := []struct {
		input    string
		expected string
	}{
		{"John Smith", "J*** S****"},
		{"Alice", "A****"},
		{"Bob Jones Jr", "B** J**** J*"},
	}

	for _, tt := range tests {
		result := o.ObfuscateText(tt.input)
		if result != tt.expected {
			t.Errorf("Name(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestBuiltinContentObfuscators(t *testing.T) {
	f := NewConstructorFactory(nil, nil)

	names := []string{
		ObfuscateSSN, ObfuscateEmail, ObfuscatePhone, ObfuscateCard,
		ObfuscateIP, ObfuscateUUID, ObfuscateIBAN, ObfuscateName,
	}

	for _, name := range names {
		o, err := f.Obfuscator(TagSpec{Name: name})
		if err != nil {
			t.Errorf("Obfuscator(%q) error: %v", name, err)
			continue
		}
		if o == nil {
			t.Errorf("Obfuscator(%q) returned nil", name)
		}
	}
}

func TestExpandIPv6_Malformed(t *testing.T) {
	tests := []string{
		"1::2::3",
		"1:2:3:4:5:6:7:8:9::",
	}

	for _, input := range tests {
		if got := expandIPv6(input); got != input {
			t.Errorf("expandIPv6(%q) = %q, want input unchanged", input, got)
		}
	}
}
