// Package merge combines incrementally loaded candidates without duplicates.
package merge

import (
	"github.com/neetwise/listing/internal/catalog"
)

// Mode selects where incoming candidates go relative to the existing ones.
type Mode int

const (
	// Append places incoming candidates after the existing ones (next page).
	Append Mode = iota
	// Prepend places incoming candidates before the existing ones (pushes).
	Prepend
)

func (m Mode) String() string {
	if m == Prepend {
		return "prepend"
	}
	return "append"
}

// Merge concatenates existing and incoming according to mode and removes
// duplicate keys. A duplicate keeps the position where its key was first seen.
// Its value is the incoming copy when there is one, otherwise the last
// occurrence.
func Merge(existing, incoming []catalog.Candidate, mode Mode) []catalog.Candidate {
	type batch struct {
		items    []catalog.Candidate
		incoming bool
	}

	batches := []batch{{existing, false}, {incoming, true}}
	if mode == Prepend {
		batches[0], batches[1] = batches[1], batches[0]
	}

	out := make([]catalog.Candidate, 0, len(existing)+len(incoming))
	positions := make(map[string]int, len(existing)+len(incoming))
	fresh := make([]bool, 0, len(existing)+len(incoming))

	for _, b := range batches {
		for _, c := range b.items {
			key := c.Key()
			if idx, ok := positions[key]; ok {
				if b.incoming || !fresh[idx] {
					out[idx] = c
					fresh[idx] = b.incoming
				}
				continue
			}
			positions[key] = len(out)
			out = append(out, c)
			fresh = append(fresh, b.incoming)
		}
	}

	return out
}

// InsertIfAbsent prepends a single pushed candidate unless a candidate with
// the same key is already listed, in which case existing is returned
// untouched. Unlike Merge the listed copy is never replaced.
func InsertIfAbsent(existing []catalog.Candidate, c catalog.Candidate) ([]catalog.Candidate, bool) {
	key := c.Key()
	for _, e := range existing {
		if e.Key() == key {
			return existing, false
		}
	}

	out := make([]catalog.Candidate, 0, len(existing)+1)
	out = append(out, c)
	out = append(out, existing...)

	return out, true
}
