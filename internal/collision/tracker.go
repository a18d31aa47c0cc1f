// Package collision detects inputs of a batch whose content digests collide,
// which for xxHash64 means the inputs are byte-identical copies.
package collision

import (
	"github.com/arloliu/bblconv/errs"
)

// Tracker maps content digests to the first input name seen with them.
type Tracker struct {
	byDigest map[uint64]string // digest -> first input name
	names    map[string]struct{}
	order    []string // unique inputs in tracking order
	dupes    int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byDigest: make(map[uint64]string),
		names:    make(map[string]struct{}),
		order:    make([]string, 0),
	}
}

// Track records an input and its digest.
//
// When an earlier input had the same digest, Track returns that input's name
// and true; the new input is counted as a duplicate and not added to Names.
//
// Returns ErrInvalidInputName for an empty name and ErrInputAlreadyTracked when
// the same name is tracked twice.
func (t *Tracker) Track(name string, digest uint64) (string, bool, error) {
	if name == "" {
		return "", false, errs.ErrInvalidInputName
	}
	if _, ok := t.names[name]; ok {
		return "", false, errs.ErrInputAlreadyTracked
	}
	t.names[name] = struct{}{}

	if first, ok := t.byDigest[digest]; ok {
		t.dupes++
		return first, true, nil
	}

	t.byDigest[digest] = name
	t.order = append(t.order, name)

	return "", false, nil
}

// Names returns the unique inputs in tracking order.
func (t *Tracker) Names() []string {
	return t.order
}

// Count returns the number of unique inputs.
func (t *Tracker) Count() int {
	return len(t.order)
}

// Duplicates returns the number of inputs that matched an earlier digest.
func (t *Tracker) Duplicates() int {
	return t.dupes
}

// Reset clears the tracker for a new batch.
func (t *Tracker) Reset() {
	clear(t.byDigest)
	clear(t.names)
	t.order = t.order[:0]
	t.dupes = 0
}
