// Package review manages the reviews shown in one product view.
package review

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"storefront/browser/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrIndexOutOfRange = errors.New("review index out of range")
	ErrReviewNotFound  = errors.New("review not found")
)

// Collection is the ordered, view-scoped list of reviews for one product. It lives as long as
// the view that owns it and is never written back to the catalog. Not safe for concurrent use.
type Collection struct {
	productID  string
	bounds     Bounds // create form
	editBounds Bounds
	reviews    []domain.Review
	ordering   Ordering
	now        func() time.Time
	lastStamp  time.Time
	newID      func() uuid.UUID
}

type Option func(*Collection)

// WithBounds sets one rating range for both create and edit.
func WithBounds(b Bounds) Option {
	return func(c *Collection) {
		c.bounds = b
		c.editBounds = b
	}
}

// WithFormBounds sets separate rating ranges for the create and edit forms.
func WithFormBounds(f FormBounds) Option {
	return func(c *Collection) {
		c.bounds = f.Create
		c.editBounds = f.Edit
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Collection) { c.now = now }
}

// NewCollection seeds a collection with the reviews embedded in the fetched product. Seed
// entries get a fresh id when they have none. Reviews created later are never stamped
// earlier than the newest seed entry.
func NewCollection(productID string, seed []domain.Review, opts ...Option) *Collection {
	c := &Collection{
		productID:  productID,
		bounds:     DefaultBounds,
		editBounds: DefaultBounds,
		now:        time.Now,
		newID:      uuid.New,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.reviews = make([]domain.Review, 0, len(seed))
	for _, r := range seed {
		if r.ID == uuid.Nil {
			r.ID = c.newID()
		}
		c.reviews = append(c.reviews, r)
		if r.CreatedAt.After(c.lastStamp) {
			c.lastStamp = r.CreatedAt
		}
	}

	return c
}

func (c *Collection) ProductID() string {
	return c.productID
}

// Bounds is the rating range of the create form.
func (c *Collection) Bounds() Bounds {
	return c.bounds
}

func (c *Collection) EditBounds() Bounds {
	return c.editBounds
}

func (c *Collection) Len() int {
	return len(c.reviews)
}

// List returns a copy of the reviews in display order.
func (c *Collection) List() []domain.Review {
	return slices.Clone(c.reviews)
}

// At returns the review displayed at index.
func (c *Collection) At(index int) (domain.Review, error) {
	if index < 0 || index >= len(c.reviews) {
		return domain.Review{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(c.reviews))
	}
	return c.reviews[index], nil
}

func (c *Collection) Get(id uuid.UUID) (domain.Review, error) {
	i, err := c.indexOf(id)
	if err != nil {
		return domain.Review{}, err
	}
	return c.reviews[i], nil
}

// Create stores a new review at the head of the list and then re-applies the active ordering.
func (c *Collection) Create(draft Draft) (domain.Review, error) {
	clean, err := draft.normalize(c.bounds)
	if err != nil {
		return domain.Review{}, err
	}

	r := domain.Review{
		ID:        c.newID(),
		Author:    clean.Author,
		Rating:    clean.Rating,
		Comment:   clean.Comment,
		CreatedAt: c.stamp(),
	}

	c.reviews = slices.Insert(c.reviews, 0, r)
	c.applyOrdering()

	return r, nil
}

// Edit replaces the review with id by a re-submission of draft. The id is kept, the creation
// time becomes now.
func (c *Collection) Edit(id uuid.UUID, draft Draft) (domain.Review, error) {
	i, err := c.indexOf(id)
	if err != nil {
		return domain.Review{}, err
	}

	clean, err := draft.normalize(c.editBounds)
	if err != nil {
		return domain.Review{}, err
	}

	r := domain.Review{
		ID:        id,
		Author:    clean.Author,
		Rating:    clean.Rating,
		Comment:   clean.Comment,
		CreatedAt: c.stamp(),
	}
	c.reviews[i] = r
	c.applyOrdering()

	return r, nil
}

// EditAt edits the review displayed at index when the call is made. The index is resolved
// against the current order, so an index read before a sort, create or remove may name a
// different review; hold on to the ID and use Edit in that case.
func (c *Collection) EditAt(index int, draft Draft) (domain.Review, error) {
	r, err := c.At(index)
	if err != nil {
		return domain.Review{}, err
	}
	return c.Edit(r.ID, draft)
}

func (c *Collection) Remove(id uuid.UUID) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	c.reviews = slices.Delete(c.reviews, i, i+1)
	return nil
}

// RemoveAt removes the review displayed at index when the call is made. Like EditAt, it does
// not track a review across reorders; use Remove with the ID for that.
func (c *Collection) RemoveAt(index int) error {
	r, err := c.At(index)
	if err != nil {
		return err
	}
	return c.Remove(r.ID)
}

// Sort makes criterion the whole active ordering. The list is reordered by it, stably, and
// again after every create or edit. The selector for the other key is cleared.
func (c *Collection) Sort(criterion Criterion) {
	o, ok := criterion.ordering()
	if !ok {
		return
	}
	c.SetOrdering(o)
}

func (c *Collection) Ordering() Ordering {
	return c.ordering
}

// SetOrdering records both selectors and reorders the list through the date-then-rating
// pipeline.
func (c *Collection) SetOrdering(o Ordering) {
	c.ordering = o
	c.applyOrdering()
}

func (c *Collection) SetDateOrder(o DateOrder) {
	c.SetOrdering(Ordering{Date: o, Rating: c.ordering.Rating})
}

func (c *Collection) SetRatingOrder(o RatingOrder) {
	c.SetOrdering(Ordering{Date: c.ordering.Date, Rating: o})
}

func (c *Collection) applyOrdering() {
	for _, stage := range c.ordering.stages() {
		sortReviews(c.reviews, stage)
	}
}

func (c *Collection) indexOf(id uuid.UUID) (int, error) {
	i := slices.IndexFunc(c.reviews, func(r domain.Review) bool { return r.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrReviewNotFound, id)
	}
	return i, nil
}

// stamp returns the creation time for a new submission. Timestamps handed out by one
// collection never go backwards, even if the wall clock does.
func (c *Collection) stamp() time.Time {
	now := c.now()
	if now.Before(c.lastStamp) {
		now = c.lastStamp
	}
	c.lastStamp = now
	return now
}
