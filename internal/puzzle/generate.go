// internal/puzzle/generate.go
//
// Deterministic puzzle generation. Both modes consume one prng.Stream seeded
// from the round's seed key, so any two machines holding the same key build
// bit-identical content.
//
// Recall mode picks a single dictionary word and a scrambled ordering of it.
// Letter-search mode assembles a letter multiset from several base words
// under solvability and anti-obviousness constraints; when the bounded
// attempt budget is exhausted it falls back to a fixed safe letter set and
// marks the puzzle degraded so callers can surface a "content syncing"
// notice instead of presenting it as a normal round.

package puzzle

import (
	"errors"
	"strings"

	"github.com/avense/lexiround/internal/prng"
)

// repickOffset is the fixed index shift used when the drawn recall word
// equals the word to avoid. A fixed offset keeps the re-pick deterministic
// and O(1) instead of a retry loop.
const repickOffset = 7

// Recall is a scrambled-word puzzle: the scrambled string is shown and the
// player reconstructs the word.
type Recall struct {
	Word      string `json:"word"`
	Scrambled string `json:"scrambled"`
}

// GenerateRecall deterministically picks a word from dict and scrambles it.
// avoid names the previous round's word; when drawn again the pick shifts by
// a fixed offset to prevent immediate repeats.
func GenerateRecall(seedKey string, dict []string, avoid string) (Recall, error) {
	if len(dict) == 0 {
		return Recall{}, errors.New("puzzle: empty dictionary")
	}
	s := prng.Seed(seedKey)
	idx := s.IntN(len(dict))
	if dict[idx] == avoid && len(dict) > 1 {
		idx = (idx + repickOffset) % len(dict)
	}
	word := strings.ToLower(dict[idx])

	tiles := []byte(word)
	prng.Shuffle(s, tiles)
	return Recall{Word: word, Scrambled: string(tiles)}, nil
}

// Search is a letter-search puzzle: a pool of letter tiles plus every
// dictionary word constructible from it.
type Search struct {
	Tiles    string   `json:"tiles"`    // on-screen tile order
	Base     []string `json:"-"`        // words the pool was built from
	Solvable []string `json:"solvable"` // constructible dictionary words
	Degraded bool     `json:"degraded"` // fallback letter set in use
}

// SearchConfig bounds letter-search generation.
type SearchConfig struct {
	BaseMinLen  int // length band for base words
	BaseMaxLen  int
	BaseCount   int // base words drawn per attempt
	MinLetters  int // accepted pool size band
	MaxLetters  int
	PoolMinLen  int // length band for counting solvable words
	PoolMaxLen  int
	MinSolvable int // accepted puzzles yield at least this many words
	MinLong     int // of which at least this many with length >= LongLen
	LongLen     int
	MaxAttempts int
	LeakMax     int // longest substring window checked (leak scan)
}

// DefaultSearchConfig mirrors production tuning.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		BaseMinLen:  3,
		BaseMaxLen:  7,
		BaseCount:   3,
		MinLetters:  10,
		MaxLetters:  14,
		PoolMinLen:  3,
		PoolMaxLen:  8,
		MinSolvable: 10,
		MinLong:     2,
		LongLen:     6,
		MaxAttempts: 360,
		LeakMax:     6,
	}
}

// fallbackTiles is the safe letter set used when no attempt satisfies the
// constraints. Rich in common letters so something is always playable.
const fallbackTiles = "aeristlnodp"

// GenerateSearch builds a letter-search puzzle from dict under cfg. The
// result is fully determined by seedKey and dict. Never fails: exhausting
// the attempt budget yields the fixed fallback set with Degraded=true.
func GenerateSearch(seedKey string, dict []string, cfg SearchConfig) Search {
	s := prng.Seed(seedKey)

	base := filterLenBand(dict, cfg.BaseMinLen, cfg.BaseMaxLen)
	pool := filterLenBand(dict, cfg.PoolMinLen, cfg.PoolMaxLen)
	if len(base) < cfg.BaseCount {
		return degradedSearch(seedKey, pool)
	}

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		words := drawDistinct(s, base, cfg.BaseCount)
		letters := unionOf(words)

		// Grow once when under the floor; shrinking is a retry, never a
		// truncation (truncating can destroy buildability of base words).
		if letters.Total() < cfg.MinLetters {
			extra := base[s.IntN(len(base))]
			letters = letters.Union(CountLetters(extra))
			words = append(words, extra)
		}
		if n := letters.Total(); n < cfg.MinLetters || n > cfg.MaxLetters {
			continue
		}

		// The shuffled ordering is both the leak-scan candidate and the
		// on-screen tile order: the string players see is exactly the
		// string that passed the scan.
		tiles := []byte(letters.Expand())
		prng.Shuffle(s, tiles)
		if leaksBaseWord(string(tiles), words, cfg.LeakMax) {
			continue
		}

		solvable := solvableWords(pool, letters)
		if len(solvable) < cfg.MinSolvable || countLong(solvable, cfg.LongLen) < cfg.MinLong {
			continue
		}

		return Search{Tiles: string(tiles), Base: words, Solvable: solvable}
	}

	return degradedSearch(seedKey, pool)
}

// degradedSearch is the explicit escape hatch: a fixed letter set, still
// deterministically shuffled for tile order, flagged for downstream callers.
func degradedSearch(seedKey string, pool []string) Search {
	s := prng.Seed(seedKey + "#fallback")
	tiles := []byte(fallbackTiles)
	prng.Shuffle(s, tiles)
	letters := CountLetters(fallbackTiles)
	return Search{
		Tiles:    string(tiles),
		Solvable: solvableWords(pool, letters),
		Degraded: true,
	}
}

// drawDistinct draws n distinct words from dict. Duplicate draws advance
// the stream and are skipped; the walk stays deterministic.
func drawDistinct(s *prng.Stream, dict []string, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[int]bool, n)
	for len(out) < n {
		idx := s.IntN(len(dict))
		if seen[idx] {
			// Deterministic linear probe so a tight dictionary terminates.
			for seen[idx] {
				idx = (idx + 1) % len(dict)
			}
		}
		seen[idx] = true
		out = append(out, strings.ToLower(dict[idx]))
	}
	return out
}

func unionOf(words []string) Letters {
	var l Letters
	for _, w := range words {
		l = l.Union(CountLetters(w))
	}
	return l
}

// leaksBaseWord reports whether any contiguous substring of a base word,
// with length in [4, min(leakMax, len(word))], appears verbatim in the
// candidate letter ordering. This is the anti-obviousness check that keeps
// a readable chunk of an answer from surviving the shuffle.
func leaksBaseWord(candidate string, words []string, leakMax int) bool {
	for _, w := range words {
		maxWin := leakMax
		if len(w) < maxWin {
			maxWin = len(w)
		}
		for win := 4; win <= maxWin; win++ {
			for i := 0; i+win <= len(w); i++ {
				if strings.Contains(candidate, w[i:i+win]) {
					return true
				}
			}
		}
	}
	return false
}

func solvableWords(pool []string, letters Letters) []string {
	var out []string
	for _, w := range pool {
		if CanBuild(w, letters) {
			out = append(out, w)
		}
	}
	return out
}

func countLong(words []string, longLen int) int {
	n := 0
	for _, w := range words {
		if len(w) >= longLen {
			n++
		}
	}
	return n
}

func filterLenBand(dict []string, minLen, maxLen int) []string {
	out := make([]string, 0, len(dict))
	for _, w := range dict {
		if len(w) >= minLen && len(w) <= maxLen {
			out = append(out, w)
		}
	}
	return out
}
