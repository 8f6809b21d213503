package review

import (
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Draft is the user-entered content of a review form.
type Draft struct {
	Author  string  `json:"author"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// Bounds is the rating range a form accepts.
type Bounds struct {
	Min float64
	Max float64
}

var (
	// DefaultBounds matches the create form (0 to 5).
	DefaultBounds = Bounds{Min: 0, Max: 5}
	// EditFormBounds matches the stricter edit form (1 to 5).
	EditFormBounds = Bounds{Min: 1, Max: 5}
)

// FormBounds holds the rating range of each review form.
type FormBounds struct {
	Create Bounds
	Edit   Bounds
}

var DefaultFormBounds = FormBounds{Create: DefaultBounds, Edit: EditFormBounds}

func (b Bounds) Clamp(rating float64) float64 {
	return min(max(rating, b.Min), b.Max)
}

// ValidationError names the form field that blocked submission.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// normalize returns the draft as it will be stored: markup stripped, whitespace trimmed and
// rating clamped. The receiver is left untouched so a rejected form keeps its input.
func (d Draft) normalize(bounds Bounds) (Draft, error) {
	author, err := plainText(d.Author)
	if err != nil {
		return Draft{}, &ValidationError{Field: "author", Reason: err.Error()}
	}
	if author == "" {
		return Draft{}, &ValidationError{Field: "author", Reason: "is required"}
	}

	if math.IsNaN(d.Rating) || math.IsInf(d.Rating, 0) {
		return Draft{}, &ValidationError{Field: "rating", Reason: "must be a number"}
	}

	comment, err := plainText(d.Comment)
	if err != nil {
		return Draft{}, &ValidationError{Field: "comment", Reason: err.Error()}
	}
	if comment == "" {
		return Draft{}, &ValidationError{Field: "comment", Reason: "is required"}
	}

	return Draft{
		Author:  author,
		Rating:  bounds.Clamp(d.Rating),
		Comment: comment,
	}, nil
}

// plainText drops any markup from user input and keeps the text content.
func plainText(input string) (string, error) {
	if !strings.ContainsAny(input, "<&") {
		return strings.TrimSpace(input), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return "", fmt.Errorf("unreadable text: %w", err)
	}
	doc.Find("script, style").Remove()

	return strings.TrimSpace(doc.Text()), nil
}
