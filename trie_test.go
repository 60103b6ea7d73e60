package datrie

import (
	"reflect"
	"testing"
)

func lowercaseAlphaMap(t *testing.T) *AlphaMap {
	t.Helper()
	m := NewAlphaMap()
	if err := m.AddRange('a', 'z'); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestTrieStoreAndRetrieve(t *testing.T) {
	tr := New(lowercaseAlphaMap(t))
	if !tr.Store([]rune("cat"), 1) {
		t.Fatal("Store(cat) failed")
	}
	if !tr.Store([]rune("car"), 2) {
		t.Fatal("Store(car) failed")
	}
	if !tr.Store([]rune("cart"), 3) {
		t.Fatal("Store(cart) failed")
	}

	for _, want := range []struct {
		key  string
		data int32
	}{{"cat", 1}, {"car", 2}, {"cart", 3}} {
		got, ok := tr.Retrieve([]rune(want.key))
		if !ok {
			t.Fatalf("Retrieve(%q): not found", want.key)
		}
		if got != want.data {
			t.Fatalf("Retrieve(%q) = %d, want %d", want.key, got, want.data)
		}
	}
	if _, ok := tr.Retrieve([]rune("ca")); ok {
		t.Fatal("Retrieve(ca) should fail: only a prefix of stored keys")
	}
	if _, ok := tr.Retrieve([]rune("dog")); ok {
		t.Fatal("Retrieve(dog) should fail: never stored")
	}
}

func TestTrieStoreOverwritesByDefault(t *testing.T) {
	tr := New(lowercaseAlphaMap(t))
	tr.Store([]rune("a"), 1)
	tr.Store([]rune("a"), 2)
	got, ok := tr.Retrieve([]rune("a"))
	if !ok || got != 2 {
		t.Fatalf("Retrieve(a) = %d, %v; want 2, true", got, ok)
	}
}

func TestTrieStoreIfAbsentDoesNotOverwrite(t *testing.T) {
	tr := New(lowercaseAlphaMap(t))
	if !tr.StoreIfAbsent([]rune("a"), 1) {
		t.Fatal("first StoreIfAbsent should succeed")
	}
	if tr.StoreIfAbsent([]rune("a"), 2) {
		t.Fatal("second StoreIfAbsent on the same key should fail")
	}
	got, _ := tr.Retrieve([]rune("a"))
	if got != 1 {
		t.Fatalf("Retrieve(a) = %d, want 1 (unchanged)", got)
	}
}

func TestTrieRejectsOutOfAlphabetKey(t *testing.T) {
	tr := New(lowercaseAlphaMap(t))
	if tr.Store([]rune("Cat"), 1) {
		t.Fatal("Store with an out-of-alphabet rune should fail")
	}
	if _, ok := tr.Retrieve([]rune("Cat")); ok {
		t.Fatal("Retrieve with an out-of-alphabet rune should fail")
	}
}

func TestTrieEmptyKey(t *testing.T) {
	tr := New(lowercaseAlphaMap(t))
	if !tr.Store(nil, 7) {
		t.Fatal("Store(\"\") should succeed")
	}
	got, ok := tr.Retrieve(nil)
	if !ok || got != 7 {
		t.Fatalf("Retrieve(\"\") = %d, %v; want 7, true", got, ok)
	}
}

func TestTrieDelete(t *testing.T) {
	tr := New(lowercaseAlphaMap(t))
	tr.Store([]rune("cat"), 1)
	tr.Store([]rune("car"), 2)

	if !tr.Delete([]rune("cat")) {
		t.Fatal("Delete(cat) should succeed")
	}
	if _, ok := tr.Retrieve([]rune("cat")); ok {
		t.Fatal("Retrieve(cat) should fail after delete")
	}
	if got, ok := tr.Retrieve([]rune("car")); !ok || got != 2 {
		t.Fatalf("Retrieve(car) after deleting a sibling = %d, %v; want 2, true", got, ok)
	}
	if tr.Delete([]rune("cat")) {
		t.Fatal("deleting an already-deleted key should fail")
	}
	if tr.Delete([]rune("dog")) {
		t.Fatal("deleting a never-stored key should fail")
	}
}

func TestTrieEnumerateAscendingOrder(t *testing.T) {
	tr := New(lowercaseAlphaMap(t))
	for i, k := range []string{"b", "a", "ba", "ab"} {
		if !tr.Store([]rune(k), int32(i)) {
			t.Fatalf("Store(%q) failed", k)
		}
	}
	var got []string
	tr.Enumerate(func(key []rune, data int32) bool {
		got = append(got, string(key))
		return true
	})
	want := []string{"a", "ab", "b", "ba"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Enumerate order = %v, want %v", got, want)
	}
}

func TestTrieEnumerateStopsEarly(t *testing.T) {
	tr := New(lowercaseAlphaMap(t))
	tr.Store([]rune("a"), 1)
	tr.Store([]rune("b"), 2)
	tr.Store([]rune("c"), 3)

	seen := 0
	result := tr.Enumerate(func(key []rune, data int32) bool {
		seen++
		return false
	})
	if result {
		t.Fatal("Enumerate should report false when the callback stops early")
	}
	if seen != 1 {
		t.Fatalf("callback invoked %d times, want 1", seen)
	}
}

func TestTrieBulkStoreAndDelete(t *testing.T) {
	m := NewAlphaMap()
	if err := m.AddRange('a', 'z'); err != nil {
		t.Fatal(err)
	}
	tr := New(m)
	keys := []string{
		"apple", "application", "apply", "app", "apt",
		"banana", "band", "bandana", "bandit", "bank",
		"cat", "car", "cart", "care", "cared",
		"dog", "door", "dorm", "dose", "dot",
		"egg", "eager", "eagle", "ear", "earn",
		"fig", "file", "fill", "find", "fine",
		"grape", "grab", "grain", "grant", "grass",
		"hat", "hate", "have", "hay", "haze",
	}
	for i, k := range keys {
		if !tr.Store([]rune(k), int32(i)) {
			t.Fatalf("Store(%q) failed", k)
		}
	}
	for i, k := range keys {
		got, ok := tr.Retrieve([]rune(k))
		if !ok || got != int32(i) {
			t.Fatalf("Retrieve(%q) = %d, %v; want %d, true", k, got, ok, i)
		}
	}
	for i, k := range keys {
		if i%2 != 0 {
			continue
		}
		if !tr.Delete([]rune(k)) {
			t.Fatalf("Delete(%q) failed", k)
		}
	}
	for i, k := range keys {
		_, ok := tr.Retrieve([]rune(k))
		if i%2 == 0 && ok {
			t.Fatalf("Retrieve(%q) should fail: deleted", k)
		}
		if i%2 != 0 && !ok {
			t.Fatalf("Retrieve(%q) should still succeed: not deleted", k)
		}
	}
}

func TestTrieIsDirty(t *testing.T) {
	tr := New(lowercaseAlphaMap(t))
	if !tr.IsDirty() {
		t.Fatal("a freshly constructed trie should be dirty")
	}
}
