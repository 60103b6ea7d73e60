// Package charset converts between named legacy byte encodings and the
// code-point ([]rune) keys a datrie.Trie indexes on. It is a standalone
// collaborator: nothing in the core trie package imports it, and trietool
// is the only caller (its "-e ENC" flag on add-list/delete-list).
package charset

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// byName lists the encodings trietool's "-e ENC" flag accepts, matching the
// small, commonly-packaged set from golang.org/x/text/encoding/charmap plus
// UTF-8/UTF-16 passthroughs.
var byName = map[string]encoding.Encoding{
	"UTF-8":        encoding.Nop,
	"UTF-16":       unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"ISO-8859-1":   charmap.ISO8859_1,
	"LATIN1":       charmap.ISO8859_1,
	"ISO-8859-2":   charmap.ISO8859_2,
	"ISO-8859-15":  charmap.ISO8859_15,
	"WINDOWS-874":  charmap.Windows874,
	"TIS-620":      charmap.Windows874,
	"WINDOWS-1252": charmap.Windows1252,
}

// Lookup resolves an encoding name, case-sensitively, to its Encoding.
func Lookup(name string) (encoding.Encoding, error) {
	enc, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("charset: unknown encoding %q", name)
	}
	return enc, nil
}

// ToRunes decodes bytes encoded as enc into code points.
func ToRunes(enc encoding.Encoding, b []byte) ([]rune, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("charset: decode: %w", err)
	}
	return []rune(string(out)), nil
}

// FromRunes encodes code points as enc.
func FromRunes(enc encoding.Encoding, runes []rune) ([]byte, error) {
	out, err := enc.NewEncoder().Bytes([]byte(string(runes)))
	if err != nil {
		return nil, fmt.Errorf("charset: encode: %w", err)
	}
	return out, nil
}

// DecodingReader wraps r so reads come back transcoded from enc into UTF-8,
// for streaming line-oriented input such as trietool's add-list/delete-list
// word lists.
func DecodingReader(enc encoding.Encoding, r io.Reader) io.Reader {
	return enc.NewDecoder().Reader(r)
}
