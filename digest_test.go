package shroud

import (
	"errors"
	"strings"
	"testing"
)

func TestDigestObfuscators(t *testing.T) {
	keyed, err := BLAKE2b([]byte{0x00, 0x11, 0x22, 0x33})
	if err != nil {
		t.Fatalf("BLAKE2b() error: %v", err)
	}
	unkeyed, err := BLAKE2b(nil)
	if err != nil {
		t.Fatalf("BLAKE2b(nil) error: %v", err)
	}

	tests := []struct {
		name     string
		o        Obfuscator
		input    string
		expected string
	}{
		{"sha256", SHA256(), "hello", "2cf24dba5fb0"},
		{"sha256 empty", SHA256(), "", "e3b0c44298fc"},
		{"sha512", SHA512(), "hello", "9b71d224bd62"},
		{"blake2b", unkeyed, "hello", "324dcf027dd4"},
		{"blake2b keyed", keyed, "hello", "67dee1291b5a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.o.ObfuscateText(tt.input)
			if got != tt.expected {
				t.Errorf("ObfuscateText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			if len(got) != DigestLength {
				t.Errorf("len = %d, want %d", len(got), DigestLength)
			}
		})
	}
}

func TestDigest_Deterministic(t *testing.T) {
	o := SHA256()
	if o.ObfuscateText("secret") != o.ObfuscateText("secret") {
		t.Error("equal inputs should produce equal digests")
	}
	if o.ObfuscateText("secret") == o.ObfuscateText("Secret") {
		t.Error("different inputs should produce different digests")
	}
}

func TestBLAKE2b_KeyTooLong(t *testing.T) {
	_, err := BLAKE2b(make([]byte, 65))
	if err == nil {
		t.Error("BLAKE2b() should reject keys longer than 64 bytes")
	}
}

func TestBLAKE2b_TagKey(t *testing.T) {
	f := NewConstructorFactory(nil, nil)

	o, err := f.Obfuscator(TagSpec{Name: ObfuscateBLAKE2b, Args: []string{"00112233"}})
	if err != nil {
		t.Fatalf("Obfuscator() error: %v", err)
	}
	if got := o.ObfuscateText("hello"); got != "67dee1291b5a" {
		t.Errorf("ObfuscateText() = %q, want %q", got, "67dee1291b5a")
	}

	_, err = f.Obfuscator(TagSpec{Name: ObfuscateBLAKE2b, Params: map[string]string{"key": "zz"}})
	if !errors.Is(err, ErrInvalidTag) {
		t.Errorf("expected ErrInvalidTag for a non-hex key, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "blake2b") {
		t.Errorf("error should name the constructor: %v", err)
	}
}
