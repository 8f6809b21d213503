package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/browser/internal/cache"
	"storefront/browser/internal/client"
	"storefront/browser/internal/domain"
	"storefront/browser/internal/query"

	log "github.com/sirupsen/logrus"
)

// ErrSuperseded is returned by a load whose query was replaced by a newer one before it
// resolved. Its result was discarded.
var ErrSuperseded = errors.New("catalog load superseded by a newer query")

// CatalogView is what a browsing session currently shows.
type CatalogView struct {
	Query      query.State         `json:"query"`
	Page       *domain.CatalogPage `json:"page"`       // Last page that loaded successfully, nil before the first
	Categories []string            `json:"categories"` // Filter options
	Err        error               `json:"-"`          // Error of the latest load, nil on success
	Loading    bool                `json:"loading"`
}

// Coordinator issues catalog loads for one browsing session and keeps the displayed page
// consistent with the most recently issued query.
type Coordinator struct {
	client     client.CatalogClient
	categories cache.CategoryCache

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	query    query.State
	page     *domain.CatalogPage
	err      error
	loading  bool
	options  []string
	haveOpts bool
}

func NewCoordinator(client client.CatalogClient, categories cache.CategoryCache) *Coordinator {
	return &Coordinator{
		client:     client,
		categories: categories,
		query:      query.Default(),
	}
}

// Load fetches the page for state and, if no newer load was issued meanwhile, makes it the
// displayed page. Issuing a load cancels the one still in flight. On failure the previously
// displayed page stays in place and the error is recorded.
func (c *Coordinator) Load(ctx context.Context, state query.State) (*domain.CatalogPage, error) {
	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.query = state
	c.loading = true
	c.mu.Unlock()

	log.Debugf("🔄 Load #%d: %s", seq, query.String(state))

	page, err := c.client.GetCatalogPage(loadCtx, state)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		log.Debugf("Discarding result of superseded load #%d", seq)
		return nil, ErrSuperseded
	}
	c.loading = false
	c.cancel = nil
	if err != nil {
		c.err = err
		c.mu.Unlock()
		log.Warnf("❌ Catalog load #%d failed: %v", seq, err)
		return nil, err
	}
	c.page = page
	c.err = nil
	needOptions := !c.haveOpts
	c.mu.Unlock()

	if needOptions {
		c.loadCategories(loadCtx)
	}

	log.Debugf("✅ Load #%d displayed page %d with %d items", seq, page.PageNumber, len(page.Items))
	return page, nil
}

// View returns a snapshot of the displayed state.
func (c *Coordinator) View() CatalogView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CatalogView{
		Query:      c.query,
		Page:       c.page,
		Categories: append([]string(nil), c.options...),
		Err:        c.err,
		Loading:    c.loading,
	}
}

// Close cancels any load still in flight.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false
}

// loadCategories fills the filter options once per coordinator. A failure is only logged;
// the next successful page load tries again.
func (c *Coordinator) loadCategories(ctx context.Context) {
	categories, err := c.fetchCategories(ctx)
	if err != nil {
		log.Warnf("⚠️ Failed to load categories: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveOpts {
		c.options = categories
		c.haveOpts = true
	}
}

func (c *Coordinator) fetchCategories(ctx context.Context) ([]string, error) {
	if c.categories != nil {
		cached, ok, err := c.categories.GetCategories(ctx)
		if err != nil {
			log.Warnf("⚠️ Category cache unavailable: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	categories, err := c.client.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	if c.categories != nil {
		if err := c.categories.SetCategories(ctx, categories); err != nil {
			log.Warnf("⚠️ Failed to cache categories: %v", err)
		}
	}

	return categories, nil
}
