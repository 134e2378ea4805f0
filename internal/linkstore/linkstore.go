// Package linkstore turns a raw seed file of match-page references into an
// ordered, deduplicated list of fetchable URLs.
//
// The seed file is typically the output of grepping a competition's match
// listing, so lines can carry arbitrary surrounding noise; only the embedded
// /zapasy/zapas/<id> path fragments matter.
package linkstore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrNoReferences is returned when the seed file contains no usable
// match references.
var ErrNoReferences = errors.New("seed file contains no match references")

// MatchReference points at one match's detail page on the federation site.
type MatchReference struct {
	// ID is the federation's external match identifier, the first path
	// segment after /zapasy/zapas/.
	ID string
	// URL is the absolute detail-page URL.
	URL string
}

// refPattern matches the detail-page path fragment the federation embeds in
// match listings, e.g. /zapasy/zapas/89d2518d-1d51-46c5-9b63-41e968c3e381/abc123.
var refPattern = regexp.MustCompile(`/zapasy/zapas/([0-9A-Za-z][0-9A-Za-z-]*)((?:/[0-9A-Za-z][0-9A-Za-z._-]*)*)`)

// Load reads the seed file at path and extracts match references,
// deduplicated by external match ID in first-seen order.
func Load(path, baseURL string) ([]MatchReference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	var (
		refs []MatchReference
		seen = make(map[string]struct{})
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		for _, m := range refPattern.FindAllStringSubmatch(scanner.Text(), -1) {
			id := m[1]
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			refs = append(refs, MatchReference{
				ID:  id,
				URL: buildURL(baseURL, id+m[2]),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoReferences)
	}
	return refs, nil
}

func buildURL(baseURL, fragment string) string {
	return strings.TrimRight(baseURL, "/") + "/souteze/zapasy/zapas/" + fragment
}
