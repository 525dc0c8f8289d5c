package shroud

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// DigestLength is the number of hex characters kept by digest obfuscators.
const DigestLength = 12

// digestObfuscator renders text as a truncated, hex-encoded digest.
// Equal inputs produce equal outputs, so masked values can still be correlated
// in logs without revealing them. Not suitable for low-entropy secrets.
type digestObfuscator struct {
	newHash func() hash.Hash
}

// SHA256 returns an obfuscator that renders the first DigestLength hex
// characters of the SHA-256 digest of the text.
func SHA256() Obfuscator {
	return &digestObfuscator{newHash: sha256.New}
}

// SHA512 returns an obfuscator that renders the first DigestLength hex
// characters of the SHA-512 digest of the text.
func SHA512() Obfuscator {
	return &digestObfuscator{newHash: sha512.New}
}

// BLAKE2b returns an obfuscator that renders the first DigestLength hex
// characters of the keyed BLAKE2b-256 digest of the text.
// A nil key gives an unkeyed digest. Keys longer than 64 bytes are rejected.
func BLAKE2b(key []byte) (Obfuscator, error) {
	// Validate the key once so ObfuscateText cannot fail.
	if _, err := blake2b.New256(key); err != nil {
		return nil, err
	}
	return &digestObfuscator{newHash: func() hash.Hash {
		h, _ := blake2b.New256(key) //nolint:errcheck // key validated above
		return h
	}}, nil
}

func (o *digestObfuscator) ObfuscateText(text string) string {
	h := o.newHash()
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))[:DigestLength]
}
