package words

import "testing"

func TestInitLoadsEmbeddedLists(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	recall, search := Stats()
	if recall == 0 || search == 0 {
		t.Fatalf("empty lists: recall=%d search=%d", recall, search)
	}
	for _, w := range Recall() {
		if len(w) < recallMinLen || len(w) > recallMaxLen || !isAlpha(w) {
			t.Fatalf("recall word %q outside band", w)
		}
	}
	for _, w := range Search() {
		if len(w) < searchMinLen || len(w) > searchMaxLen || !isAlpha(w) {
			t.Fatalf("search word %q outside band", w)
		}
	}
}

func TestContainsIsCaseInsensitive(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	w := Search()[0]
	if !Contains(w) {
		t.Fatalf("Contains(%q) = false", w)
	}
	upper := []byte(w)
	upper[0] = upper[0] - 'a' + 'A'
	if !Contains(string(upper)) {
		t.Fatalf("Contains(%q) = false", upper)
	}
}

func TestContainsRejectsUnknown(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if Contains("zzzzqqq") {
		t.Fatal("unexpected dictionary hit")
	}
}
