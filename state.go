package datrie

// State is a cursor over a Trie: either a live DoubleArray node, or (once
// isSuffix flips on) an offset into a TailPool suffix. Walking past the
// point where a cell's base goes negative switches the cursor from DA mode
// into tail mode for the remainder of its life, per the two-phase walk
// protocol.
type State struct {
	trie      *Trie
	index     int32
	suffixIdx int16
	isSuffix  bool
}

func newState(trie *Trie, index int32, suffixIdx int16, isSuffix bool) *State {
	return &State{trie: trie, index: index, suffixIdx: suffixIdx, isSuffix: isSuffix}
}

// Clone returns an independent copy of s that can be walked without
// disturbing s itself.
func (s *State) Clone() *State {
	return &State{trie: s.trie, index: s.index, suffixIdx: s.suffixIdx, isSuffix: s.isSuffix}
}

// Rewind resets s back to the trie root.
func (s *State) Rewind() {
	s.index = s.trie.da.Root()
	s.isSuffix = false
	s.suffixIdx = 0
}

// Walk follows c from s, mutating s on success.
func (s *State) Walk(c rune) bool {
	tc, ok := s.trie.alphaMap.CharToTrie(c)
	if !ok {
		return false
	}
	if !s.isSuffix {
		ok := s.trie.da.Walk(&s.index, tc)
		if ok && s.trie.da.Base(s.index) < 0 {
			s.index = -s.trie.da.Base(s.index)
			s.suffixIdx = 0
			s.isSuffix = true
		}
		return ok
	}
	return s.trie.tail.WalkChar(s.index, &s.suffixIdx, tc)
}

// IsWalkable reports whether Walk(c) would succeed, without mutating s.
func (s *State) IsWalkable(c rune) bool {
	tc, ok := s.trie.alphaMap.CharToTrie(c)
	if !ok {
		return false
	}
	if !s.isSuffix {
		return s.trie.da.Check(s.trie.da.Base(s.index)+int32(tc)) == s.index
	}
	suffix := s.trie.tail.GetSuffix(s.index)
	if int(s.suffixIdx) >= len(suffix) {
		return tc == 0
	}
	return suffix[s.suffixIdx] == tc
}

// IsTerminal reports whether s sits at the end of a stored key.
func (s *State) IsTerminal() bool {
	return s.IsWalkable(0)
}

// IsSingle reports whether s has descended into a tail suffix (a single
// unbranching path to its terminal).
func (s *State) IsSingle() bool {
	return s.isSuffix
}

// WalkableChars returns every character that Walk would currently accept.
// In tail mode this is at most one character.
func (s *State) WalkableChars() []rune {
	if !s.isSuffix {
		syms := s.trie.da.OutputSymbols(s.index)
		out := make([]rune, 0, len(syms))
		for _, sym := range syms {
			if ch, ok := s.trie.alphaMap.TrieToChar(sym); ok {
				out = append(out, ch)
			}
		}
		return out
	}
	suffix := s.trie.tail.GetSuffix(s.index)
	var tc byte
	if int(s.suffixIdx) < len(suffix) {
		tc = suffix[s.suffixIdx]
	}
	ch, ok := s.trie.alphaMap.TrieToChar(tc)
	if !ok {
		return nil
	}
	return []rune{ch}
}

// Data returns the value stored at s if s is exactly at a terminal,
// otherwise -1.
func (s *State) Data() int32 {
	if !s.isSuffix {
		idx := s.index
		if s.trie.da.Walk(&idx, 0) && s.trie.da.Base(idx) < 0 {
			return s.trie.tail.GetData(-s.trie.da.Base(idx))
		}
		return -1
	}
	suffix := s.trie.tail.GetSuffix(s.index)
	var cur byte
	if int(s.suffixIdx) < len(suffix) {
		cur = suffix[s.suffixIdx]
	}
	if cur == 0 {
		return s.trie.tail.GetData(s.index)
	}
	return -1
}
