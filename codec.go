package datrie

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// getSerializedSize returns the exact byte length Serialize will write.
func (t *Trie) getSerializedSize() int {
	return t.alphaMap.getSerializedSize() + t.da.getSerializedSize() + t.tail.getSerializedSize()
}

// Serialize writes the trie's three sub-blobs (AlphaMap, DoubleArray,
// TailPool, in that order) to w with no outer framing, and clears the
// dirty flag on success.
func (t *Trie) Serialize(w io.Writer) error {
	if err := t.alphaMap.writeTo(w); err != nil {
		return err
	}
	if err := t.da.writeTo(w); err != nil {
		return err
	}
	if err := t.tail.writeTo(w); err != nil {
		return err
	}
	t.isDirty = false
	return nil
}

// DeserializeTrie reads a trie previously written by Serialize. Each
// sub-blob reader seeks r back to that sub-blob's start on a signature
// mismatch, so r must support Seek.
func DeserializeTrie(r io.ReadSeeker) (*Trie, error) {
	am, err := readAlphaMap(r)
	if err != nil {
		return nil, err
	}
	da, err := readDoubleArray(r)
	if err != nil {
		return nil, err
	}
	tp, err := readTailPool(r)
	if err != nil {
		return nil, err
	}
	return &Trie{alphaMap: am, da: da, tail: tp, isDirty: false}, nil
}

// WriteFile serializes the trie to path, creating or truncating it.
func (t *Trie) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return wrapError(ErrIo, "write file: create", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := t.Serialize(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return wrapError(ErrIo, "write file: flush", err)
	}
	return nil
}

// ReadFile deserializes a trie from path. The file is read unbuffered
// (rather than through bufio, as WriteFile writes) because DeserializeTrie
// needs to seek the underlying file back on a signature mismatch, and a
// bufio.Reader's buffered position doesn't track the file's real offset.
func ReadFile(path string) (*Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapError(ErrIo, "read file: open", err)
	}
	defer f.Close()
	return DeserializeTrie(f)
}

// ParseAlphaMapText reads the ".abm" alphabet-map convention: one inclusive
// hex range per line, formatted "[BEGIN,END]" (surrounding whitespace and
// blank/unparseable lines are ignored, matching the original tool's
// permissive sscanf-based reader).
func ParseAlphaMapText(r io.Reader) (*AlphaMap, error) {
	m := NewAlphaMap()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var begin, end uint32
		line := strings.Join(strings.Fields(scanner.Text()), "")
		if _, err := fmt.Sscanf(line, "[%x,%x]", &begin, &end); err != nil {
			continue
		}
		if begin > end {
			continue
		}
		if err := m.AddRange(rune(begin), rune(end)); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapError(ErrIo, "parse alphabet map", err)
	}
	return m, nil
}

// triPath and abmPath implement the "<dir>/<name>.tri"/".abm" naming
// convention shared by the on-disk trie and its bootstrap alphabet map.
func triPath(dir, name string) string { return filepath.Join(dir, name+".tri") }
func abmPath(dir, name string) string { return filepath.Join(dir, name+".abm") }

// OpenOrCreate loads "<dir>/<name>.tri" if it exists; otherwise it builds a
// fresh trie from the alphabet ranges in "<dir>/<name>.abm", mirroring the
// reference tool's prepare_trie.
func OpenOrCreate(dir, name string) (*Trie, error) {
	tp := triPath(dir, name)
	if _, err := os.Stat(tp); err == nil {
		return ReadFile(tp)
	}
	af := abmPath(dir, name)
	f, err := os.Open(af)
	if err != nil {
		return nil, wrapError(ErrIo, fmt.Sprintf("cannot open alphabet map file %s", af), err)
	}
	defer f.Close()
	am, err := ParseAlphaMapText(f)
	if err != nil {
		return nil, err
	}
	return New(am), nil
}

// SaveIfDirty writes the trie back to "<dir>/<name>.tri" when IsDirty
// reports unsaved changes, mirroring the reference tool's close_trie.
func SaveIfDirty(t *Trie, dir, name string) error {
	if !t.IsDirty() {
		return nil
	}
	return t.WriteFile(triPath(dir, name))
}
