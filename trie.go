package datrie

// Trie is the façade gluing an AlphaMap, a DoubleArray, and a TailPool into
// a single map[[]rune]int32-like structure keyed on arbitrary code points.
type Trie struct {
	alphaMap *AlphaMap
	da       *DoubleArray
	tail     *TailPool
	isDirty  bool
}

// New creates an empty trie over alphaMap. The map is cloned, so later
// mutation of the caller's map has no effect on the trie.
func New(alphaMap *AlphaMap) *Trie {
	return &Trie{
		alphaMap: alphaMap.Clone(),
		da:       NewDoubleArray(),
		tail:     NewTailPool(),
		isDirty:  true,
	}
}

// IsDirty reports whether the trie has unsaved changes since construction
// or the last successful Serialize/WriteFile.
func (t *Trie) IsDirty() bool { return t.isDirty }

// Root returns a cursor at the trie root.
func (t *Trie) Root() *State {
	return newState(t, t.da.Root(), 0, false)
}

func charAt(b []byte, idx int) byte {
	if idx < len(b) {
		return b[idx]
	}
	return 0
}

// Retrieve looks up key, returning its stored value and whether it was
// found. key needs no trailing sentinel; it is translated internally.
func (t *Trie) Retrieve(key []rune) (int32, bool) {
	p, ok := t.alphaMap.CharToTrieStr(key)
	if !ok {
		return 0, false
	}
	i := 0
	s := t.da.Root()
	for t.da.Base(s) >= 0 {
		tc := p[i]
		if !t.da.Walk(&s, tc) {
			return 0, false
		}
		if tc == 0 {
			break
		}
		i++
	}
	tidx := -t.da.Base(s)
	var suffixIdx int16
	for {
		tc := p[i]
		if !t.tail.WalkChar(tidx, &suffixIdx, tc) {
			return 0, false
		}
		if tc == 0 {
			break
		}
		i++
	}
	return t.tail.GetData(tidx), true
}

// Store inserts or overwrites key with data, returning false if key
// contains a code point outside the trie's alphabet.
func (t *Trie) Store(key []rune, data int32) bool {
	return t.storeConditionally(key, data, true)
}

// StoreIfAbsent is Store but never overwrites an existing key.
func (t *Trie) StoreIfAbsent(key []rune, data int32) bool {
	return t.storeConditionally(key, data, false)
}

func (t *Trie) storeConditionally(key []rune, data int32, overwrite bool) bool {
	p, ok := t.alphaMap.CharToTrieStr(key)
	if !ok {
		return false
	}
	i := 0
	s := t.da.Root()
	for t.da.Base(s) >= 0 {
		tc := p[i]
		if !t.da.Walk(&s, tc) {
			return t.branchInBranch(s, p[i:], data)
		}
		if tc == 0 {
			break
		}
		i++
	}
	sepIdx := i
	tidx := -t.da.Base(s)
	var suffixIdx int16
	for {
		tc := p[i]
		if !t.tail.WalkChar(tidx, &suffixIdx, tc) {
			return t.branchInTail(s, p[sepIdx:], data)
		}
		if tc == 0 {
			break
		}
		i++
	}
	if !overwrite {
		return false
	}
	t.tail.SetData(tidx, data)
	t.isDirty = true
	return true
}

// branchInBranch handles storing a key that diverges from every existing
// key while still inside the double array: it grows a new DA edge for the
// first diverging character and parks the remainder in a fresh tail block.
func (t *Trie) branchInBranch(sepNode int32, suffix []byte, data int32) bool {
	newDA := t.da.InsertBranch(sepNode, suffix[0])
	if newDA == 0 {
		return false
	}
	rest := suffix
	if suffix[0] != 0 {
		rest = suffix[1:]
	}
	stored := rest[:len(rest)-1]
	newTail, err := t.tail.AddSuffix(stored)
	if err != nil {
		return false
	}
	t.tail.SetData(newTail, data)
	t.da.setBase(newDA, -newTail)
	t.isDirty = true
	return true
}

// branchInTail handles storing a key that diverges partway through an
// existing tail suffix: it splits that suffix into shared DA edges up to
// the point of divergence, then re-parks both the old and new remainders.
func (t *Trie) branchInTail(sepNode int32, suffix []byte, data int32) bool {
	oldTail := -t.da.Base(sepNode)
	oldSuffix := t.tail.GetSuffix(oldTail)
	i, j := 0, 0
	s := sepNode
	failed := false
	for charAt(oldSuffix, j) == charAt(suffix, i) {
		nt := t.da.InsertBranch(s, charAt(oldSuffix, j))
		if nt == 0 {
			failed = true
			break
		}
		s = nt
		i++
		j++
	}
	if !failed {
		oldChar := charAt(oldSuffix, j)
		oldDA := t.da.InsertBranch(s, oldChar)
		if oldDA != 0 {
			var newOldSuffix []byte
			if oldChar != 0 {
				newOldSuffix = oldSuffix[j+1:]
			} else {
				newOldSuffix = oldSuffix[len(oldSuffix):]
			}
			t.tail.SetSuffix(oldTail, newOldSuffix)
			t.da.setBase(oldDA, -oldTail)
			return t.branchInBranch(s, suffix[i:], data)
		}
	}
	t.da.PruneUpto(sepNode, s)
	t.da.setBase(sepNode, -oldTail)
	return false
}

// Delete removes key, returning false if it was not present.
func (t *Trie) Delete(key []rune) bool {
	p, ok := t.alphaMap.CharToTrieStr(key)
	if !ok {
		return false
	}
	i := 0
	s := t.da.Root()
	for t.da.Base(s) >= 0 {
		tc := p[i]
		if !t.da.Walk(&s, tc) {
			return false
		}
		if tc == 0 {
			break
		}
		i++
	}
	tidx := -t.da.Base(s)
	var suffixIdx int16
	for {
		tc := p[i]
		if !t.tail.WalkChar(tidx, &suffixIdx, tc) {
			return false
		}
		if tc == 0 {
			break
		}
		i++
	}
	t.tail.Delete(tidx)
	t.da.setBase(s, 0)
	t.da.Prune(s)
	t.isDirty = true
	return true
}

// Enumerate visits every stored key in ascending order, stopping early if
// fn returns false. It returns the final fn result (true if enumeration
// ran to completion).
func (t *Trie) Enumerate(fn func(key []rune, data int32) bool) bool {
	it := NewIterator(t.Root())
	cont := true
	for cont && it.Next() {
		cont = fn(it.Key(), it.Data())
	}
	return cont
}
