package datrie

// Iterator walks every key reachable from its root state in ascending
// lexicographic order, one terminal at a time. A zero-value Iterator is not
// usable; construct one with NewIterator.
type Iterator struct {
	root  *State
	state *State
	key   *keyBuffer
}

// NewIterator returns an iterator enumerating every key at or below root.
// root is not mutated; Next clones it internally.
func NewIterator(root *State) *Iterator {
	return &Iterator{root: root}
}

// Next advances to the next terminal, returning false once enumeration is
// exhausted.
func (it *Iterator) Next() bool {
	if it.state == nil {
		it.state = it.root.Clone()
		if it.state.isSuffix {
			return true
		}
		it.key = newKeyBuffer(20)
		sep := it.state.trie.da.FirstSeparate(it.state.index, it.key)
		if sep == 0 {
			return false
		}
		it.state.index = sep
		return true
	}
	if it.state.isSuffix {
		return false
	}
	sep := it.state.trie.da.NextSeparate(it.root.index, it.state.index, it.key)
	if sep == 0 {
		return false
	}
	it.state.index = sep
	return true
}

// Key returns the full key at the iterator's current position.
func (it *Iterator) Key() []rune {
	s := it.state
	if s == nil {
		return nil
	}
	var prefix []rune
	var tailStr []byte
	if s.isSuffix {
		suffix := s.trie.tail.GetSuffix(s.index)
		if int(s.suffixIdx) <= len(suffix) {
			tailStr = suffix[s.suffixIdx:]
		}
	} else {
		tailIdx := -s.trie.da.Base(s.index)
		tailStr = s.trie.tail.GetSuffix(tailIdx)
		prefix = make([]rune, 0, it.key.length())
		for _, tc := range it.key.bytes() {
			if tc == 0 {
				break
			}
			if ch, ok := s.trie.alphaMap.TrieToChar(tc); ok {
				prefix = append(prefix, ch)
			}
		}
	}
	out := append([]rune(nil), prefix...)
	for _, tc := range tailStr {
		if ch, ok := s.trie.alphaMap.TrieToChar(tc); ok {
			out = append(out, ch)
		}
	}
	return out
}

// Data returns the value at the iterator's current position, or -1 if the
// iterator has not been advanced. A Next call that returns false leaves the
// position unchanged, so Data then still reports the last key's value.
func (it *Iterator) Data() int32 {
	s := it.state
	if s == nil {
		return -1
	}
	if !s.isSuffix {
		if s.trie.da.Base(s.index) >= 0 {
			return -1
		}
		return s.trie.tail.GetData(-s.trie.da.Base(s.index))
	}
	return s.trie.tail.GetData(s.index)
}
