package datrie

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// daSignature is the magic number written at the start of the DoubleArray
// sub-blob.
const daSignature uint32 = 0xDAFCDAFC

// daRootIndex is the constant cell index of the trie root.
const daRootIndex int32 = 2

// maxOutDegree bounds how far past a base a transition search looks: trie
// characters are 8-bit, so no cell has more than 256 possible children.
const maxOutDegree int32 = 255

// daCell is one base/check pair. Which of the five roles in spec.md §3's
// cell-role table a given cell plays is determined entirely by its index
// and the sign of base/check — no separate tag byte is kept, matching the
// source format's intrusive free-list packing (spec.md §9).
type daCell struct {
	base  int32
	check int32
}

// DoubleArray is the trie skeleton: two parallel integer arrays (folded
// here into one []daCell for locality) plus a free list threaded through
// cells whose check is negative.
type DoubleArray struct {
	cells []daCell
}

// NewDoubleArray returns a freshly initialized double array with only the
// header, free-list anchor, and root cells present.
func NewDoubleArray() *DoubleArray {
	sig := daSignature
	return &DoubleArray{
		cells: []daCell{
			{base: int32(sig), check: 3},
			{base: -1, check: -1},
			{base: 3, check: 0},
		},
	}
}

// Root returns the constant root cell index.
func (d *DoubleArray) Root() int32 { return daRootIndex }

// Base returns cell s's base field, or 0 if s is out of range.
func (d *DoubleArray) Base(s int32) int32 {
	if s >= 0 && int(s) < len(d.cells) {
		return d.cells[s].base
	}
	return 0
}

// Check returns cell s's check field, or 0 if s is out of range.
func (d *DoubleArray) Check(s int32) int32 {
	if s >= 0 && int(s) < len(d.cells) {
		return d.cells[s].check
	}
	return 0
}

func (d *DoubleArray) setBase(s, val int32) {
	if int(s) < len(d.cells) {
		d.cells[s].base = val
	}
}

func (d *DoubleArray) setCheck(s, val int32) {
	if int(s) < len(d.cells) {
		d.cells[s].check = val
	}
}

func (d *DoubleArray) numCells() int32 { return int32(len(d.cells)) }

// Walk tries to follow c from *s. On success it mutates *s to the child
// and returns true; on failure it leaves *s untouched.
func (d *DoubleArray) Walk(s *int32, c byte) bool {
	next := d.Base(*s) + int32(c)
	if d.Check(next) == *s {
		*s = next
		return true
	}
	return false
}

// InsertBranch creates, if absent, the child reached from s by c,
// relocating s's subtree first if the direct cell is already taken. It
// returns 0 on allocation failure, per spec.md §4.2.
func (d *DoubleArray) InsertBranch(s int32, c byte) int32 {
	base := d.Base(s)
	var next int32
	if base > 0 {
		next = base + int32(c)
		if d.Check(next) == s {
			return next
		}
		if base > math.MaxInt32-int32(c) || !d.checkFreeCell(next) {
			syms := d.OutputSymbols(s)
			syms = addSymbol(syms, c)
			newBase := d.findFreeBase(syms)
			if newBase == 0 {
				return 0
			}
			d.relocateBase(s, newBase)
			next = newBase + int32(c)
		}
	} else {
		newBase := d.findFreeBase([]byte{c})
		if newBase == 0 {
			return 0
		}
		d.setBase(s, newBase)
		next = newBase + int32(c)
	}
	d.allocCell(next)
	d.setCheck(next, s)
	return next
}

// addSymbol inserts c into the sorted, deduplicated symbol slice syms.
func addSymbol(syms []byte, c byte) []byte {
	i := 0
	for i < len(syms) && syms[i] < c {
		i++
	}
	if i < len(syms) && syms[i] == c {
		return syms
	}
	syms = append(syms, 0)
	copy(syms[i+1:], syms[i:len(syms)-1])
	syms[i] = c
	return syms
}

func (d *DoubleArray) checkFreeCell(s int32) bool {
	return d.extendPool(s) && d.Check(s) < 0
}

func (d *DoubleArray) hasChildren(s int32) bool {
	base := d.Base(s)
	if base <= 0 {
		return false
	}
	maxC := maxOutDegree
	if d.numCells()-base < maxC {
		maxC = d.numCells() - base
	}
	for c := int32(0); c <= maxC; c++ {
		if d.Check(base+c) == s {
			return true
		}
	}
	return false
}

// OutputSymbols returns, in ascending order, the characters for which
// check(base(s)+c) == s.
func (d *DoubleArray) OutputSymbols(s int32) []byte {
	base := d.Base(s)
	maxC := maxOutDegree
	if d.numCells()-base < maxC {
		maxC = d.numCells() - base
	}
	var out []byte
	for c := int32(0); c <= maxC; c++ {
		if d.Check(base+c) == s {
			out = append(out, byte(c))
		}
	}
	return out
}

// findFreeBase walks the free list looking for a base such that every
// base+sym for sym in symbols lands on a free cell, extending the pool as
// needed. Ties break to the first fit in ascending index order.
func (d *DoubleArray) findFreeBase(symbols []byte) int32 {
	firstSym := symbols[0]
	s := -d.Check(1)
	for s != 1 && s < int32(firstSym)+3 {
		s = -d.Check(s)
	}
	if s == 1 {
		s = int32(firstSym) + 3
		for {
			if !d.extendPool(s) {
				return 0
			}
			if d.Check(s) < 0 {
				break
			}
			s++
		}
	}
	for !d.fitSymbols(s-int32(firstSym), symbols) {
		if -d.Check(s) == 1 {
			if !d.extendPool(d.numCells()) {
				return 0
			}
		}
		s = -d.Check(s)
	}
	return s - int32(firstSym)
}

func (d *DoubleArray) fitSymbols(base int32, symbols []byte) bool {
	for _, sym := range symbols {
		if base > math.MaxInt32-int32(sym) || !d.checkFreeCell(base+int32(sym)) {
			return false
		}
	}
	return true
}

// relocateBase moves every child of s from oldBase+sym to newBase+sym,
// re-parenting grandchildren and freeing the vacated cells. This is what
// preserves the transition invariant across conflicting inserts.
func (d *DoubleArray) relocateBase(s, newBase int32) {
	oldBase := d.Base(s)
	syms := d.OutputSymbols(s)
	for _, sym := range syms {
		oldNext := oldBase + int32(sym)
		newNext := newBase + int32(sym)
		oldNextBase := d.Base(oldNext)
		d.allocCell(newNext)
		d.setCheck(newNext, s)
		d.setBase(newNext, oldNextBase)
		if oldNextBase > 0 {
			maxC := maxOutDegree
			if d.numCells()-oldNextBase < maxC {
				maxC = d.numCells() - oldNextBase
			}
			for c := int32(0); c <= maxC; c++ {
				if d.Check(oldNextBase+c) == oldNext {
					d.setCheck(oldNextBase+c, newNext)
				}
			}
		}
		d.freeCell(oldNext)
	}
	d.setBase(s, newBase)
}

// extendPool grows the cell array through toIndex, threading every new
// cell onto the free list in ascending order.
func (d *DoubleArray) extendPool(toIndex int32) bool {
	if toIndex <= 0 || toIndex >= math.MaxInt32 {
		return false
	}
	if toIndex < d.numCells() {
		return true
	}
	newBegin := d.numCells()
	grown := make([]daCell, toIndex+1)
	copy(grown, d.cells)
	d.cells = grown

	for i := newBegin; i < toIndex; i++ {
		d.setCheck(i, -(i + 1))
		d.setBase(i+1, -i)
	}
	freeTail := -d.Base(1)
	d.setCheck(freeTail, -newBegin)
	d.setBase(newBegin, -freeTail)
	d.setCheck(toIndex, -1)
	d.setBase(1, -toIndex)
	d.setCheck(0, d.numCells())
	return true
}

func (d *DoubleArray) allocCell(cell int32) {
	prev := -d.Base(cell)
	next := -d.Check(cell)
	d.setCheck(prev, -next)
	d.setBase(next, -prev)
}

func (d *DoubleArray) freeCell(cell int32) {
	i := -d.Check(1)
	for i != 1 && i < cell {
		i = -d.Check(i)
	}
	prev := -d.Base(i)
	d.setCheck(cell, -i)
	d.setBase(cell, -prev)
	d.setCheck(prev, -cell)
	d.setBase(i, -cell)
}

// Prune walks from s towards the root, freeing every cell with no
// remaining children.
func (d *DoubleArray) Prune(s int32) {
	d.PruneUpto(d.Root(), s)
}

// PruneUpto is Prune, but stops at p instead of the root.
func (d *DoubleArray) PruneUpto(p, s int32) {
	for p != s && !d.hasChildren(s) {
		parent := d.Check(s)
		d.freeCell(s)
		s = parent
	}
}

// FirstSeparate descends from s always taking the smallest-character
// child, appending each chosen character to keybuf, stopping at the first
// terminal or tail link (a cell whose base is non-positive). It returns 0
// if the subtree rooted at s is empty.
func (d *DoubleArray) FirstSeparate(root int32, keybuf *keyBuffer) int32 {
	for {
		base := d.Base(root)
		if base <= 0 {
			break
		}
		maxC := maxOutDegree
		if d.numCells()-base < maxC {
			maxC = d.numCells() - base
		}
		var c int32
		for c = 0; c <= maxC; c++ {
			if d.Check(base+c) == root {
				break
			}
		}
		if c > maxC {
			return 0
		}
		keybuf.appendChar(byte(c))
		root = base + c
	}
	return root
}

// NextSeparate backtracks from sep towards root, trying the next-larger
// sibling at each ancestor; it returns 0 once enumeration is exhausted.
func (d *DoubleArray) NextSeparate(root, sep int32, keybuf *keyBuffer) int32 {
	for sep != root {
		parent := d.Check(sep)
		base := d.Base(parent)
		c := sep - base
		keybuf.cutLast()
		maxC := maxOutDegree
		if d.numCells()-base < maxC {
			maxC = d.numCells() - base
		}
		for {
			c++
			if c > maxC {
				break
			}
			if d.Check(base+c) == parent {
				keybuf.appendChar(byte(c))
				return d.FirstSeparate(base+c, keybuf)
			}
		}
		sep = parent
	}
	return 0
}

func (d *DoubleArray) getSerializedSize() int {
	return 8 * len(d.cells)
}

func (d *DoubleArray) writeTo(w io.Writer) error {
	buf := make([]byte, 8*len(d.cells))
	for i, c := range d.cells {
		binary.BigEndian.PutUint32(buf[i*8:], uint32(c.base))
		binary.BigEndian.PutUint32(buf[i*8+4:], uint32(c.check))
	}
	if _, err := w.Write(buf); err != nil {
		return wrapError(ErrIo, "doublearray: write cells", err)
	}
	return nil
}

// readDoubleArray decodes a DoubleArray sub-blob from r. On signature
// mismatch it returns ErrInvalidFileSignature and seeks r back to the
// position it started at.
func readDoubleArray(r io.ReadSeeker) (*DoubleArray, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, wrapError(ErrIo, "doublearray: seek current", err)
	}
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, wrapError(ErrIo, "doublearray: read header", err)
	}
	sig := binary.BigEndian.Uint32(hdr[0:4])
	if sig != daSignature {
		if _, err := r.Seek(start, io.SeekStart); err != nil {
			return nil, wrapError(ErrIo, "doublearray: seek back after bad signature", err)
		}
		return nil, newError(ErrInvalidFileSignature, fmt.Sprintf("doublearray: unexpected signature 0x%08x", sig))
	}
	numCells := int32(binary.BigEndian.Uint32(hdr[4:8]))
	if numCells < 3 {
		return nil, newError(ErrBug, "doublearray: num_cells too small")
	}
	cells := make([]daCell, numCells)
	cells[0] = daCell{base: int32(sig), check: numCells}
	rest := make([]byte, 8*(numCells-1))
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, wrapError(ErrIo, "doublearray: read cells", err)
	}
	for i := int32(1); i < numCells; i++ {
		off := (i - 1) * 8
		cells[i] = daCell{
			base:  int32(binary.BigEndian.Uint32(rest[off : off+4])),
			check: int32(binary.BigEndian.Uint32(rest[off+4 : off+8])),
		}
	}
	return &DoubleArray{cells: cells}, nil
}
