package fragments

import (
	"fmt"
	"strings"
)

// Assemble orders entries by index and joins their text, with no separator
// for message and a single space for spaced.
//
// The keys must be exactly [0, len(entries)-1]. Anything else is a caller
// bug and panics.
func Assemble(entries map[int64]string) (message, spaced string) {
	texts := Ordered(entries)
	return strings.Join(texts, ""), strings.Join(texts, " ")
}

// Ordered returns the texts of entries in index order. It panics under the
// same conditions as Assemble.
func Ordered(entries map[int64]string) []string {
	texts := make([]string, len(entries))
	for i := range texts {
		t, ok := entries[int64(i)]
		if !ok {
			panic(fmt.Sprintf("fragments: assemble: index %d missing from %d entries", i, len(entries)))
		}
		texts[i] = t
	}
	return texts
}
