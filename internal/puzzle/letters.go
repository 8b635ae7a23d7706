// internal/puzzle/letters.go
//
// Letter multiset primitives. CanBuild is the single authority for "is this
// answer physically constructible from the shown letters" and is shared by
// both generation modes and by answer validation in the HTTP layer.

package puzzle

import "strings"

// Letters is a count-per-letter multiset over the lowercase a-z alphabet.
type Letters [26]int

// CountLetters builds the multiset for a word. Characters outside a-z are
// ignored; callers normalize with strings.ToLower first.
func CountLetters(word string) Letters {
	var l Letters
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c >= 'a' && c <= 'z' {
			l[c-'a']++
		}
	}
	return l
}

// Total returns the number of letters in the multiset.
func (l Letters) Total() int {
	n := 0
	for _, c := range l {
		n += c
	}
	return n
}

// Union returns the per-letter maximum of l and other. A letter needed twice
// by one word but once by another only needs to appear twice overall.
func (l Letters) Union(other Letters) Letters {
	out := l
	for i, c := range other {
		if c > out[i] {
			out[i] = c
		}
	}
	return out
}

// Expand renders the multiset as a string in alphabet order. The fixed order
// matters: it is the deterministic input to the seeded shuffles.
func (l Letters) Expand() string {
	var b strings.Builder
	b.Grow(l.Total())
	for i, c := range l {
		for j := 0; j < c; j++ {
			b.WriteByte(byte('a' + i))
		}
	}
	return b.String()
}

// CanBuild reports whether word is constructible from the available letters:
// a multiset-subset test, not a character-presence test. The empty word and
// words containing characters outside a-z are never buildable.
func CanBuild(word string, avail Letters) bool {
	word = strings.ToLower(word)
	if word == "" {
		return false
	}
	var need Letters
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c < 'a' || c > 'z' {
			return false
		}
		need[c-'a']++
	}
	for i := range need {
		if need[i] > avail[i] {
			return false
		}
	}
	return true
}
