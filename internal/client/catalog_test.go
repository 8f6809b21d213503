package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/browser/internal/config"
	"storefront/browser/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fake catalog service ---

type fakeItem struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Category string   `json:"category"`
	Images   []string `json:"images"`
	Tags     []string `json:"tags"`
	Rating   float64  `json:"rating"`
	Stock    int      `json:"stock"`
}

type fakeCatalog struct {
	items   []fakeItem
	wrapped bool // answer list requests with {"products": [...]}

	mu       sync.Mutex
	requests []url.Values
}

func newFakeCatalog(n int) *fakeCatalog {
	items := make([]fakeItem, n)
	for i := range items {
		category := "beauty"
		if i%3 == 0 {
			category = "groceries"
		}
		items[i] = fakeItem{
			ID:       i + 1,
			Title:    fmt.Sprintf("Item %02d", i+1),
			Price:    float64(i+1) * 1.25,
			Category: category,
			Images:   []string{fmt.Sprintf("https://img/%d/1.png", i+1)},
			Tags:     []string{category},
			Rating:   4.2,
			Stock:    i,
		}
	}
	return &fakeCatalog{items: items}
}

func (f *fakeCatalog) lastRequest() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.Query())
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/categories":
		_ = json.NewEncoder(w).Encode([]string{"beauty", "groceries", "beauty"})
	case r.URL.Path == "/products":
		f.serveList(w, r.URL.Query())
	case strings.HasPrefix(r.URL.Path, "/products/"):
		f.serveProduct(w, strings.TrimPrefix(r.URL.Path, "/products/"))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeCatalog) serveList(w http.ResponseWriter, q url.Values) {
	var result []fakeItem
	for _, item := range f.items {
		if c := q.Get("category"); c != "" && item.Category != c {
			continue
		}
		if s := q.Get("search"); s != "" && !strings.Contains(strings.ToLower(item.Title), strings.ToLower(s)) {
			continue
		}
		result = append(result, item)
	}

	if q.Get("sort") == "price" {
		desc := q.Get("order") == "desc"
		sort.SliceStable(result, func(i, j int) bool {
			if desc {
				return result[i].Price > result[j].Price
			}
			return result[i].Price < result[j].Price
		})
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	skip, _ := strconv.Atoi(q.Get("skip"))
	start := min(skip, len(result))
	end := min(skip+limit, len(result))
	page := result[start:end]

	if f.wrapped {
		_ = json.NewEncoder(w).Encode(map[string]any{"products": page})
		return
	}
	_ = json.NewEncoder(w).Encode(page)
}

func (f *fakeCatalog) serveProduct(w http.ResponseWriter, id string) {
	for _, item := range f.items {
		if strconv.Itoa(item.ID) != id {
			continue
		}
		payload := map[string]any{
			"id":       item.ID,
			"title":    item.Title,
			"price":    item.Price,
			"category": item.Category,
			"images":   []string{"a.png", "b.png", "c.png"},
			"tags":     item.Tags,
			"rating":   item.Rating,
			"stock":    item.Stock,
			"reviews": []map[string]any{
				{"reviewerName": "Bob", "rating": 5, "comment": "Superb", "date": "2024-05-23T08:56:21.618Z"},
				{"user": "Eve", "rating": 2, "comment": "Meh", "date": "2024-05-20T10:00:00Z"},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
		return
	}
	http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
}

func newTestClient(t *testing.T, handler http.Handler, pageSize int) CatalogClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewCatalogClient(config.CatalogConfig{
		BaseURL:  srv.URL,
		PageSize: pageSize,
		Timeout:  5,
	})
}

// --- Tests ---

func TestGetCatalogPageSecondPageByPriceDesc(t *testing.T) {
	catalog := newFakeCatalog(45)
	c := newTestClient(t, catalog, 20)

	state := query.Default().WithSort(query.SortPrice, query.Descending).WithPage(2)
	page, err := c.GetCatalogPage(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, page.Items, 20)
	assert.Equal(t, 2, page.PageNumber)
	assert.True(t, page.HasPrevious())
	assert.True(t, page.HasNext())

	// Descending by price the catalog is items 45..1, so positions 21-40 are items 25..6.
	for i, item := range page.Items {
		assert.Equal(t, strconv.Itoa(25-i), item.ID)
		if i > 0 {
			assert.True(t, page.Items[i-1].Price.GreaterThan(item.Price), "descending price at %d", i)
		}
	}

	req := catalog.lastRequest()
	assert.Equal(t, "20", req.Get("limit"))
	assert.Equal(t, "20", req.Get("skip"))
	assert.Equal(t, "price", req.Get("sort"))
	assert.Equal(t, "desc", req.Get("order"))
	assert.False(t, req.Has("search"))
	assert.False(t, req.Has("category"))
}

func TestGetCatalogPageForwardsFilters(t *testing.T) {
	catalog := newFakeCatalog(45)
	catalog.wrapped = true
	c := newTestClient(t, catalog, 20)

	state := query.Default().WithSearchTerm("item 1").WithCategory("beauty")
	page, err := c.GetCatalogPage(context.Background(), state)
	require.NoError(t, err)

	req := catalog.lastRequest()
	assert.Equal(t, "item 1", req.Get("search"))
	assert.Equal(t, "beauty", req.Get("category"))
	assert.Equal(t, "0", req.Get("skip"))
	assert.False(t, req.Has("sort"))
	assert.False(t, req.Has("order"))

	require.NotEmpty(t, page.Items)
	for _, item := range page.Items {
		assert.Equal(t, "beauty", item.Category)
		assert.Contains(t, item.Title, "Item 1")
	}
}

func TestGetCatalogPageLastPartialPage(t *testing.T) {
	c := newTestClient(t, newFakeCatalog(45), 20)

	page, err := c.GetCatalogPage(context.Background(), query.Default().WithPage(3))
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.False(t, page.HasNext())
}

func TestGetCatalogPageErrors(t *testing.T) {
	testCases := []struct {
		name       string
		handler    http.HandlerFunc
		statusCode int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusServiceUnavailable)
			},
			statusCode: http.StatusServiceUnavailable,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`"not a list"`))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, tc.handler, 20)

			_, err := c.GetCatalogPage(context.Background(), query.Default())
			require.Error(t, err)

			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, tc.statusCode, fetchErr.StatusCode)
			assert.Contains(t, fetchErr.Error(), "failed to fetch catalog page")
		})
	}
}

func TestGetCatalogPageCancelled(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), 20)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.GetCatalogPage(ctx, query.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetCategoriesDeduplicates(t *testing.T) {
	c := newTestClient(t, newFakeCatalog(3), 20)

	categories, err := c.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"beauty", "groceries"}, categories)
}

func TestDecodeCategoriesObjects(t *testing.T) {
	categories, err := decodeCategories([]byte(`[{"slug":"laptops","name":"Laptops"},{"name":"Tops"},"  "]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"laptops", "Tops"}, categories)
}

func TestGetProduct(t *testing.T) {
	c := newTestClient(t, newFakeCatalog(5), 20)

	details, err := c.GetProduct(context.Background(), "3")
	require.NoError(t, err)

	assert.Equal(t, "3", details.Product.ID)
	assert.Equal(t, "3.75", details.Product.Price.String())
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, details.Product.Images)

	require.Len(t, details.Reviews, 2)
	assert.Equal(t, "Bob", details.Reviews[0].Author)
	assert.Equal(t, 5.0, details.Reviews[0].Rating)
	assert.Equal(t, time.Date(2024, 5, 23, 8, 56, 21, 618000000, time.UTC), details.Reviews[0].CreatedAt.UTC())
	assert.Equal(t, "Eve", details.Reviews[1].Author)
}

func TestGetProductNotFound(t *testing.T) {
	c := newTestClient(t, newFakeCatalog(5), 20)

	_, err := c.GetProduct(context.Background(), "999")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestDecodeProductListSkipsMalformedItems(t *testing.T) {
	items, err := decodeProductList([]byte(`[
		{"id": 1, "title": "ok", "price": 3, "thumbnail": "t.png", "rating": 7, "stock": -2},
		{"id": 2, "title": "bad", "price": -1},
		{"title": "no id", "price": 1}
	]`))
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, []string{"t.png"}, items[0].Images)
	assert.Equal(t, 5.0, items[0].Rating)
	assert.Equal(t, 0, items[0].Stock)
	assert.Equal(t, []string{}, items[0].Tags)
}
