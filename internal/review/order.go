package review

import (
	"cmp"
	"fmt"
	"slices"

	"storefront/browser/internal/domain"
)

type Criterion string

const (
	DateDesc   Criterion = "date-desc"
	DateAsc    Criterion = "date-asc"
	RatingDesc Criterion = "rating-desc"
	RatingAsc  Criterion = "rating-asc"
)

func ParseCriterion(raw string) (Criterion, error) {
	switch c := Criterion(raw); c {
	case DateDesc, DateAsc, RatingDesc, RatingAsc:
		return c, nil
	default:
		return "", fmt.Errorf("unknown sort criterion %q", raw)
	}
}

// ordering is the selector pair equivalent to sorting by c alone.
func (c Criterion) ordering() (Ordering, bool) {
	switch c {
	case DateDesc:
		return Ordering{Date: Newest}, true
	case DateAsc:
		return Ordering{Date: Oldest}, true
	case RatingDesc:
		return Ordering{Rating: RatingHigh}, true
	case RatingAsc:
		return Ordering{Rating: RatingLow}, true
	default:
		return Ordering{}, false
	}
}

// DateOrder is the date selector of the review list.
type DateOrder string

const (
	DateDefault DateOrder = ""
	Newest      DateOrder = "newest"
	Oldest      DateOrder = "oldest"
)

func ParseDateOrder(raw string) (DateOrder, error) {
	switch o := DateOrder(raw); o {
	case DateDefault, Newest, Oldest:
		return o, nil
	default:
		return "", fmt.Errorf("unknown date order %q", raw)
	}
}

func (o DateOrder) criterion() (Criterion, bool) {
	switch o {
	case Newest:
		return DateDesc, true
	case Oldest:
		return DateAsc, true
	default:
		return "", false
	}
}

// RatingOrder is the rating selector of the review list.
type RatingOrder string

const (
	RatingDefault RatingOrder = ""
	RatingHigh    RatingOrder = "rating-high"
	RatingLow     RatingOrder = "rating-low"
)

func ParseRatingOrder(raw string) (RatingOrder, error) {
	switch o := RatingOrder(raw); o {
	case RatingDefault, RatingHigh, RatingLow:
		return o, nil
	default:
		return "", fmt.Errorf("unknown rating order %q", raw)
	}
}

func (o RatingOrder) criterion() (Criterion, bool) {
	switch o {
	case RatingHigh:
		return RatingDesc, true
	case RatingLow:
		return RatingAsc, true
	default:
		return "", false
	}
}

// Ordering is the pair of selectors. The date ordering is applied first and the rating
// ordering last, so an active rating ordering decides the final order and the date ordering
// only breaks rating ties.
type Ordering struct {
	Date   DateOrder   `json:"date"`
	Rating RatingOrder `json:"rating"`
}

func (o Ordering) stages() []Criterion {
	stages := make([]Criterion, 0, 2)
	if c, ok := o.Date.criterion(); ok {
		stages = append(stages, c)
	}
	if c, ok := o.Rating.criterion(); ok {
		stages = append(stages, c)
	}
	return stages
}

// sortReviews reorders reviews in place. The sort is stable: equal keys keep their current
// relative order and no secondary key is consulted.
func sortReviews(reviews []domain.Review, c Criterion) {
	var compare func(a, b domain.Review) int
	switch c {
	case DateDesc:
		compare = func(a, b domain.Review) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case DateAsc:
		compare = func(a, b domain.Review) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case RatingDesc:
		compare = func(a, b domain.Review) int { return cmp.Compare(b.Rating, a.Rating) }
	case RatingAsc:
		compare = func(a, b domain.Review) int { return cmp.Compare(a.Rating, b.Rating) }
	default:
		return
	}
	slices.SortStableFunc(reviews, compare)
}
