package docpipe

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText interprets plain-text bytes. Russian contract files in the
// wild come in utf-8, cp1251 or cp866; the encodings are tried in that
// order and the first clean decode wins.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	if s, ok := decodeCharmap(data, charmap.Windows1251); ok {
		return s, nil
	}
	if s, ok := decodeCharmap(data, charmap.CodePage866); ok {
		return s, nil
	}
	// Last resort: cp1251 with whatever replacement runes it produced.
	s, _ := charmap.Windows1251.NewDecoder().Bytes(data)
	return string(s), nil
}

// decodeCharmap decodes with the given charmap and reports whether the
// result is clean (no byte mapped to the replacement rune).
func decodeCharmap(data []byte, cm *charmap.Charmap) (string, bool) {
	out, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	s := string(out)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}
