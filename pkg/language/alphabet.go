package language

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// utf8Labels is the size of a byte-level alphabet: every byte value but zero.
const utf8Labels = 255

// Alphabet modes accepted by ResolveAlphabet.
const (
	ModeAuto     = "auto"
	ModeUTF8     = "utf8"
	ModeSpecific = "specific"
)

// SerializeLabels encodes labels in the decoder's alphabet format: a
// little-endian uint16 label count followed, per label, by its uint16 index,
// its uint16 byte length and its bytes.
func SerializeLabels(labels []string) []byte {
	size := 2
	for _, l := range labels {
		size += 4 + len(l)
	}
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(labels)))
	for i, l := range labels {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(i))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(l)))
		buf = append(buf, l...)
	}
	return buf
}

// SerializeUTF8Alphabet encodes the byte-level alphabet. Label i stands for
// byte i+1, so the decoder sees real byte values.
func SerializeUTF8Alphabet() []byte {
	labels := make([]string, utf8Labels)
	for i := range labels {
		labels[i] = string([]byte{byte(i + 1)})
	}
	return SerializeLabels(labels)
}

// LooksCharBased reports whether every vocabulary word is a single
// character, the sign of a corpus that was prepared for a byte-level model.
func LooksCharBased(vocabulary []string) bool {
	for _, w := range vocabulary {
		if utf8.RuneCountInString(w) > 1 {
			return false
		}
	}
	return true
}

// ResolveAlphabet serializes the alphabet selected by mode for lang.
// ModeAuto picks the byte-level alphabet when the vocabulary looks char based.
func ResolveAlphabet(mode string, lang Language, vocabulary []string) ([]byte, bool, error) {
	switch mode {
	case ModeUTF8:
		return SerializeUTF8Alphabet(), true, nil
	case ModeSpecific:
		return lang.SerializeAlphabet(), false, nil
	case ModeAuto, "":
		if LooksCharBased(vocabulary) {
			return SerializeUTF8Alphabet(), true, nil
		}
		return lang.SerializeAlphabet(), false, nil
	default:
		return nil, false, fmt.Errorf("unknown alphabet mode %q", mode)
	}
}
