package courseassets

import (
	"iter"
	"path"
	"regexp"
	"sort"
)

// assetPathPattern matches embedded asset path candidates: a literal
// course root segment, zero or more intermediate segments, and a file
// name with an extension. Candidates are matched as substrings of
// scalar strings so paths inside markup (img tags etc.) are found. The
// root segment must not be preceded by a name character, so "discourse/"
// does not yield a candidate; the candidate itself is group 1.
var assetPathPattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9_-])(course/(?:[A-Za-z0-9_-]+/)*[A-Za-z0-9_-]+\.[A-Za-z0-9]+)`)

// ExtractPaths walks a content payload and yields every embedded asset
// path candidate it contains, duplicates included. The walk is
// depth-first with map keys visited in sorted order, so the sequence is
// deterministic for a given payload. The traversal keeps its own stack
// rather than recursing, so deeply nested payloads cannot exhaust the
// goroutine stack.
//
// A payload with no candidates yields an empty sequence; extraction
// never fails.
func ExtractPaths(payload map[string]any) iter.Seq[string] {
	return func(yield func(string) bool) {
		stack := make([]any, 0, 16)
		stack = append(stack, payload)

		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch v := node.(type) {
			case string:
				for _, m := range assetPathPattern.FindAllStringSubmatch(v, -1) {
					if !yield(m[1]) {
						return
					}
				}
			case map[string]any:
				keys := make([]string, 0, len(v))
				for k := range v {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				// Push in reverse so the smallest key pops first.
				for i := len(keys) - 1; i >= 0; i-- {
					stack = append(stack, v[keys[i]])
				}
			case []any:
				for i := len(v) - 1; i >= 0; i-- {
					stack = append(stack, v[i])
				}
			}
			// Non-string scalars carry no paths and are skipped.
		}
	}
}

// FileName returns the last segment of an extracted path candidate,
// which is the name assets are looked up by.
func FileName(candidate string) string {
	return path.Base(candidate)
}
