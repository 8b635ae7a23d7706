package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed recall.txt search.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// RecallList returns the embedded recall-mode answer words.
func RecallList() ([]string, error) {
	return readLines("recall.txt")
}

// SearchList returns the embedded letter-search dictionary.
func SearchList() ([]string, error) {
	return readLines("search.txt")
}
