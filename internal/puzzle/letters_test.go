package puzzle

import "testing"

func TestCanBuildMultisetSubset(t *testing.T) {
	one := CountLetters("b")
	two := CountLetters("bb")

	if CanBuild("bb", one) {
		t.Fatal(`canBuild("bb", {B:1}) must be false`)
	}
	if !CanBuild("bb", two) {
		t.Fatal(`canBuild("bb", {B:2}) must be true`)
	}
	if CanBuild("", two) {
		t.Fatal("empty word must never be buildable")
	}
}

func TestCanBuildNormalizesCase(t *testing.T) {
	avail := CountLetters("planet")
	if !CanBuild("PLAN", avail) {
		t.Fatal("uppercase candidate should normalize and build")
	}
	if CanBuild("pla-n", avail) {
		t.Fatal("non-alphabetic candidate must not build")
	}
}

func TestUnionTakesPerLetterMax(t *testing.T) {
	// "bell" needs two l's, "lab" one: the union needs exactly two.
	u := CountLetters("bell").Union(CountLetters("lab"))
	if u['l'-'a'] != 2 {
		t.Fatalf("union l-count = %d, want 2", u['l'-'a'])
	}
	if u.Total() != 5 {
		t.Fatalf("union total = %d, want 5", u.Total())
	}
	if got := u.Expand(); got != "abell" {
		t.Fatalf("expand = %q, want abell", got)
	}
}

func TestExpandAlphabetOrder(t *testing.T) {
	if got := CountLetters("banana").Expand(); got != "aaabnn" {
		t.Fatalf("expand = %q, want aaabnn", got)
	}
}
