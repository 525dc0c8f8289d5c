package shroud

import (
	"strings"
	"unicode/utf8"
)

// Obfuscator masks the text form of a value.
// Implementations must be safe for concurrent use; they are shared between
// fields and processors.
type Obfuscator interface {
	// ObfuscateText returns the masked form of text.
	ObfuscateText(text string) string
}

// ObfuscatorFunc adapts a function to the Obfuscator interface.
type ObfuscatorFunc func(text string) string

// ObfuscateText calls f(text).
func (f ObfuscatorFunc) ObfuscateText(text string) string {
	return f(text)
}

const defaultMaskChar = '*'

type noneObfuscator struct{}

// None returns an obfuscator that leaves text unchanged.
func None() Obfuscator {
	return noneObfuscator{}
}

func (noneObfuscator) ObfuscateText(text string) string {
	return text
}

type allObfuscator struct {
	mask rune
}

// All returns an obfuscator that replaces every character with '*'.
func All() Obfuscator {
	return allObfuscator{mask: defaultMaskChar}
}

func (o allObfuscator) ObfuscateText(text string) string {
	return strings.Repeat(string(o.mask), utf8.RuneCountInString(text))
}

type fixedLengthObfuscator struct {
	masked string
}

// FixedLength returns an obfuscator that replaces any text with length '*'
// characters, hiding the original length.
// A negative length is treated as zero.
func FixedLength(length int) Obfuscator {
	if length < 0 {
		length = 0
	}
	return fixedLengthObfuscator{masked: strings.Repeat(string(defaultMaskChar), length)}
}

func (o fixedLengthObfuscator) ObfuscateText(string) string {
	return o.masked
}

type fixedValueObfuscator struct {
	value string
}

// FixedValue returns an obfuscator that replaces any text with value.
func FixedValue(value string) Obfuscator {
	return fixedValueObfuscator{value: value}
}

func (o fixedValueObfuscator) ObfuscateText(string) string {
	return o.value
}

// PortionOptions configures a portion obfuscator.
type PortionOptions struct {
	KeepAtStart      int  // Characters left unmasked at the start
	KeepAtEnd        int  // Characters left unmasked at the end
	FixedTotalLength int  // Total result length when > 0; hides the original length
	MaskChar         rune // Mask character, '*' when zero
}

type portionObfuscator struct {
	opts PortionOptions
}

// Portion returns an obfuscator that keeps a number of characters at the start
// and end of the text and masks the rest.
//
// When the text is shorter than KeepAtStart+KeepAtEnd, the start keeps priority
// and the end keeps whatever remains. With FixedTotalLength set, the number of
// mask characters is FixedTotalLength-KeepAtStart-KeepAtEnd regardless of the
// text length.
func Portion(opts PortionOptions) Obfuscator {
	if opts.KeepAtStart < 0 {
		opts.KeepAtStart = 0
	}
	if opts.KeepAtEnd < 0 {
		opts.KeepAtEnd = 0
	}
	if opts.MaskChar == 0 {
		opts.MaskChar = defaultMaskChar
	}
	return portionObfuscator{opts: opts}
}

func (o portionObfuscator) ObfuscateText(text string) string {
	runes := []rune(text)
	length := len(runes)

	fromStart := min(o.opts.KeepAtStart, length)
	fromEnd := min(o.opts.KeepAtEnd, length-fromStart)

	masked := length - fromStart - fromEnd
	if o.opts.FixedTotalLength > 0 {
		masked = max(0, o.opts.FixedTotalLength-o.opts.KeepAtStart-o.opts.KeepAtEnd)
	}

	var b strings.Builder
	b.Grow(fromStart + masked + fromEnd)
	b.WriteString(string(runes[:fromStart]))
	b.WriteString(strings.Repeat(string(o.opts.MaskChar), masked))
	b.WriteString(string(runes[length-fromEnd:]))
	return b.String()
}
