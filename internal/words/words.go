// internal/words/words.go
//
// Word list management for the round engine.
//
// Responsibilities:
//   - Load the recall-mode answer list and the letter-search dictionary from
//     environment-provided files or fall back to embedded defaults.
//   - Normalize to lowercase a-z and enforce per-mode length bands.
//   - Supply lookup helpers (Contains) and Stats for diagnostics.
//
// Lists are static for the session: the remote data service may hand the
// process fresher lists at startup (see main), but once installed they do
// not change, which keeps every seeded generation reproducible.
//
// Environment variables:
//   WORDS_RECALL_FILE=/path/to/recall.txt
//   WORDS_SEARCH_FILE=/path/to/search.txt

package words

import (
	"bufio"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/avense/lexiround/assets"
)

const (
	recallMinLen = 5
	recallMaxLen = 8
	searchMinLen = 3
	searchMaxLen = 8
)

var (
	initOnce   sync.Once
	recallList []string
	searchList []string
	searchSet  map[string]struct{}
	initialErr error
)

// Init loads both word lists exactly once. Returns an error if either list
// ends up empty, since neither game mode can run without its dictionary.
func Init() error {
	initOnce.Do(func() {
		recallList, initialErr = loadList(os.Getenv("WORDS_RECALL_FILE"), assets.RecallList, recallMinLen, recallMaxLen)
		if initialErr != nil {
			return
		}
		searchList, initialErr = loadList(os.Getenv("WORDS_SEARCH_FILE"), assets.SearchList, searchMinLen, searchMaxLen)
		if initialErr != nil {
			return
		}
		searchSet = toSet(searchList)
		if len(recallList) == 0 {
			initialErr = errors.New("words: recall list is empty")
			return
		}
		if len(searchList) == 0 {
			initialErr = errors.New("words: search list is empty")
		}
	})
	return initialErr
}

// loadList reads from path when set, otherwise from the embedded fallback,
// keeping only valid alphabetic words inside the length band.
func loadList(path string, embedded func() ([]string, error), minLen, maxLen int) ([]string, error) {
	var raw []string
	var err error
	if path != "" {
		raw, err = readWordFile(path)
	} else {
		raw, err = embedded()
	}
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		w = strings.TrimSpace(strings.ToLower(w))
		if len(w) >= minLen && len(w) <= maxLen && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Recall returns the recall-mode answer list.
func Recall() []string { return recallList }

// Search returns the letter-search dictionary.
func Search() []string { return searchList }

// Contains reports whether w is in the letter-search dictionary.
func Contains(w string) bool {
	_, ok := searchSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (recall, search).
func Stats() (recallCount, searchCount int) {
	return len(recallList), len(searchList)
}
