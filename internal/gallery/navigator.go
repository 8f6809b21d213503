// Package gallery keeps the displayed position inside a product's image set.
package gallery

import (
	"errors"
	"fmt"
)

var ErrIndexOutOfRange = errors.New("image index out of range")

// Navigator is a cyclic index over a fixed image sequence. It is owned by a single view and
// is not safe for concurrent use.
type Navigator struct {
	images  []string
	index   int
	loading bool
}

func New(images []string) *Navigator {
	return &Navigator{
		images: append([]string(nil), images...),
	}
}

func (n *Navigator) Len() int {
	return len(n.images)
}

func (n *Navigator) Images() []string {
	return append([]string(nil), n.images...)
}

// Navigable reports whether next/previous controls apply, i.e. there is more than one image.
func (n *Navigator) Navigable() bool {
	return len(n.images) > 1
}

// Index returns the current position. ok is false for an empty gallery.
func (n *Navigator) Index() (index int, ok bool) {
	if len(n.images) == 0 {
		return 0, false
	}
	return n.index, true
}

// Current returns the image at the current position.
func (n *Navigator) Current() (string, bool) {
	if len(n.images) == 0 {
		return "", false
	}
	return n.images[n.index], true
}

// Loading reports whether the image at the current position is still being fetched.
func (n *Navigator) Loading() bool {
	return n.loading
}

// Next advances with wraparound. It returns false and does nothing when there is at most one
// image.
func (n *Navigator) Next() bool {
	if !n.Navigable() {
		return false
	}
	n.moveTo((n.index + 1) % len(n.images))
	return true
}

// Previous is the inverse of Next.
func (n *Navigator) Previous() bool {
	if !n.Navigable() {
		return false
	}
	n.moveTo((n.index - 1 + len(n.images)) % len(n.images))
	return true
}

// Select jumps to i. Indices outside [0, Len()) are rejected, never wrapped.
func (n *Navigator) Select(i int) error {
	if i < 0 || i >= len(n.images) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(n.images))
	}
	if i != n.index {
		n.moveTo(i)
	}
	return nil
}

// MarkLoaded clears the loading flag once the image at i finished loading. Completions for
// an index the user already moved away from are ignored.
func (n *Navigator) MarkLoaded(i int) bool {
	if len(n.images) == 0 || i != n.index {
		return false
	}
	n.loading = false
	return true
}

func (n *Navigator) moveTo(i int) {
	n.index = i
	n.loading = true
}
