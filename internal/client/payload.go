package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"storefront/browser/internal/domain"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// flexibleID accepts both numeric and string ids.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither a string nor a number: %w", err)
	}
	*id = flexibleID(n.String())
	return nil
}

type productPayload struct {
	ID          flexibleID      `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Images      []string        `json:"images"`
	Thumbnail   string          `json:"thumbnail"` // Used when images is empty
	Rating      float64         `json:"rating"`
	Stock       int             `json:"stock"`
	Reviews     []reviewPayload `json:"reviews"`
}

type reviewPayload struct {
	ReviewerName string  `json:"reviewerName"`
	User         string  `json:"user"`
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	Comment      string  `json:"comment"`
	Date         string  `json:"date"`
}

type productListPayload struct {
	Products []productPayload `json:"products"`
}

type categoryPayload struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func (p productPayload) toDomain() (domain.Product, error) {
	if p.ID == "" {
		return domain.Product{}, fmt.Errorf("product without id")
	}
	if p.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("product %s has negative price %s", p.ID, p.Price)
	}

	images := p.Images
	if len(images) == 0 && p.Thumbnail != "" {
		images = []string{p.Thumbnail}
	}

	return domain.Product{
		ID:          string(p.ID),
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Tags:        nonNil(p.Tags),
		Images:      nonNil(images),
		Rating:      min(max(p.Rating, 0), 5),
		Stock:       max(p.Stock, 0),
	}, nil
}

func (r reviewPayload) toDomain() domain.Review {
	author := r.ReviewerName
	if author == "" {
		author = r.User
	}
	if author == "" {
		author = r.Name
	}

	var createdAt time.Time
	if r.Date != "" {
		parsed, err := time.Parse(time.RFC3339Nano, r.Date)
		if err != nil {
			log.Debugf("Unparseable review date %q: %v", r.Date, err)
		} else {
			createdAt = parsed
		}
	}

	return domain.Review{
		Author:    author,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: createdAt,
	}
}

// decodeProductList accepts either a bare JSON array or an object with a "products" field.
func decodeProductList(body []byte) ([]domain.Product, error) {
	body = bytes.TrimSpace(body)

	var payloads []productPayload
	switch {
	case len(body) == 0:
		return nil, fmt.Errorf("empty response body")
	case body[0] == '[':
		if err := json.Unmarshal(body, &payloads); err != nil {
			return nil, fmt.Errorf("failed to decode product list: %w", err)
		}
	case body[0] == '{':
		var wrapped productListPayload
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode product list: %w", err)
		}
		payloads = wrapped.Products
	default:
		return nil, fmt.Errorf("unexpected product list payload starting with %q", body[0])
	}

	items := make([]domain.Product, 0, len(payloads))
	for _, payload := range payloads {
		product, err := payload.toDomain()
		if err != nil {
			log.Warnf("Skipping malformed catalog item: %v", err)
			continue
		}
		items = append(items, product)
	}

	return items, nil
}

func decodeProductDetails(body []byte) (*domain.ProductDetails, error) {
	var payload productPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}

	product, err := payload.toDomain()
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(payload.Reviews))
	for _, r := range payload.Reviews {
		reviews = append(reviews, r.toDomain())
	}

	return &domain.ProductDetails{
		Product: product,
		Reviews: reviews,
	}, nil
}

// decodeCategories accepts plain names as well as {"slug", "name"} objects.
func decodeCategories(body []byte) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	categories := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		var name string
		if err := json.Unmarshal(entry, &name); err != nil {
			var obj categoryPayload
			if err := json.Unmarshal(entry, &obj); err != nil {
				return nil, fmt.Errorf("failed to decode category %s: %w", entry, err)
			}
			name = obj.Slug
			if name == "" {
				name = obj.Name
			}
		}

		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		categories = append(categories, name)
	}

	return categories, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
