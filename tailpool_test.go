package datrie

import (
	"bytes"
	"io"
	"testing"
)

func TestTailPoolAddAndGetSuffix(t *testing.T) {
	p := NewTailPool()
	block, err := p.AddSuffix([]byte("llo"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p.GetSuffix(block), []byte("llo")) {
		t.Fatalf("GetSuffix = %q, want %q", p.GetSuffix(block), "llo")
	}
	if !p.SetData(block, 42) {
		t.Fatal("SetData on a valid block should succeed")
	}
	if got := p.GetData(block); got != 42 {
		t.Fatalf("GetData = %d, want 42", got)
	}
}

func TestTailPoolAddSuffixRejectsEmbeddedZero(t *testing.T) {
	p := NewTailPool()
	if _, err := p.AddSuffix([]byte{'a', 0, 'b'}); err == nil {
		t.Fatal("expected error for suffix containing the sentinel byte")
	}
}

func TestTailPoolWalkChar(t *testing.T) {
	p := NewTailPool()
	block, err := p.AddSuffix([]byte("hi"))
	if err != nil {
		t.Fatal(err)
	}
	var offset int16
	if !p.WalkChar(block, &offset, 'h') {
		t.Fatal("WalkChar('h') should succeed at offset 0")
	}
	if !p.WalkChar(block, &offset, 'i') {
		t.Fatal("WalkChar('i') should succeed at offset 1")
	}
	if !p.WalkChar(block, &offset, 0) {
		t.Fatal("WalkChar(0) should succeed at the suffix end")
	}
	if p.WalkChar(block, &offset, 'x') {
		t.Fatal("WalkChar should not advance past the terminal match")
	}
}

func TestTailPoolWalkStr(t *testing.T) {
	p := NewTailPool()
	block, err := p.AddSuffix([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	var offset int16
	n := p.WalkStr(block, &offset, []byte("hel"))
	if n != 3 || offset != 3 {
		t.Fatalf("WalkStr partial = (%d, %d), want (3, 3)", n, offset)
	}
	n = p.WalkStr(block, &offset, []byte("lo\x00"))
	if n != 3 || offset != 5 {
		t.Fatalf("WalkStr to terminal = (%d, %d), want (3, 5)", n, offset)
	}
}

func TestTailPoolDeleteRecyclesBlock(t *testing.T) {
	p := NewTailPool()
	b1, _ := p.AddSuffix([]byte("a"))
	p.Delete(b1)
	if p.GetSuffix(b1) != nil {
		t.Fatal("deleted block should have a nil suffix")
	}
	b2, err := p.AddSuffix([]byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	if b2 != b1 {
		t.Fatalf("AddSuffix after Delete should recycle block %d, got %d", b1, b2)
	}
}

func TestTailPoolSerializeRoundTrip(t *testing.T) {
	p := NewTailPool()
	b1, _ := p.AddSuffix([]byte("one"))
	p.SetData(b1, 1)
	b2, _ := p.AddSuffix([]byte("two"))
	p.SetData(b2, 2)
	p.Delete(b1)

	var buf bytes.Buffer
	if err := p.writeTo(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != p.getSerializedSize() {
		t.Fatalf("wrote %d bytes, want %d", buf.Len(), p.getSerializedSize())
	}
	back, err := readTailPool(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back.GetSuffix(b2), []byte("two")) {
		t.Fatalf("GetSuffix(%d) after round-trip = %q, want %q", b2, back.GetSuffix(b2), "two")
	}
	if back.GetData(b2) != 2 {
		t.Fatalf("GetData(%d) after round-trip = %d, want 2", b2, back.GetData(b2))
	}
	if back.firstFree != p.firstFree {
		t.Fatalf("firstFree after round-trip = %d, want %d", back.firstFree, p.firstFree)
	}
}

func TestReadTailPoolRewindsOnBadSignatureMidStream(t *testing.T) {
	prefix := []byte("preceding sub-blob bytes")
	blobStart := len(prefix)
	data := append(append([]byte(nil), prefix...), 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	r := bytes.NewReader(data)
	if _, err := r.Seek(int64(blobStart), io.SeekStart); err != nil {
		t.Fatal(err)
	}

	if _, err := readTailPool(r); err == nil {
		t.Fatal("expected ErrInvalidFileSignature")
	}
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatal(err)
	}
	if pos != int64(blobStart) {
		t.Fatalf("reader position after bad signature = %d, want %d", pos, blobStart)
	}
}
