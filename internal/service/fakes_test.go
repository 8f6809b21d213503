package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/browser/internal/client"
	"storefront/browser/internal/domain"
	"storefront/browser/internal/query"

	"github.com/shopspring/decimal"
)

// --- Mock catalog client ---

type gate struct {
	started   chan struct{} // closed once the request is in flight
	release   chan struct{} // closed to let the request resolve
	ignoreCtx bool          // keep waiting after cancellation, like a server that never aborts
}

func newGate(ignoreCtx bool) *gate {
	return &gate{
		started:   make(chan struct{}),
		release:   make(chan struct{}),
		ignoreCtx: ignoreCtx,
	}
}

type MockCatalogClient struct {
	mu             sync.Mutex
	gates          map[string]*gate // keyed by search term
	pageErr        error
	categories     []string
	categoriesErr  error
	categoryCalls  int
	products       map[string]*domain.ProductDetails
	lastPageStates []query.State
}

func newMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{
		gates:      map[string]*gate{},
		categories: []string{"beauty", "groceries"},
		products:   map[string]*domain.ProductDetails{},
	}
}

func (m *MockCatalogClient) PageSize() int {
	return 20
}

func (m *MockCatalogClient) GetCatalogPage(ctx context.Context, state query.State) (*domain.CatalogPage, error) {
	m.mu.Lock()
	m.lastPageStates = append(m.lastPageStates, state)
	g := m.gates[state.SearchTerm]
	m.mu.Unlock()

	if g != nil {
		close(g.started)
		if g.ignoreCtx {
			<-g.release
		} else {
			select {
			case <-g.release:
			case <-ctx.Done():
				return nil, &client.FetchError{Op: "catalog page", Err: ctx.Err()}
			}
		}
	}

	m.mu.Lock()
	err := m.pageErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return &domain.CatalogPage{
		PageNumber: state.Page,
		PageSize:   20,
		Items: []domain.Product{
			{ID: "result-for-" + state.SearchTerm, Title: state.SearchTerm, Price: decimal.NewFromInt(1)},
		},
	}, nil
}

func (m *MockCatalogClient) GetCategories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.categoryCalls++
	if m.categoriesErr != nil {
		return nil, m.categoriesErr
	}
	return m.categories, nil
}

func (m *MockCatalogClient) GetProduct(_ context.Context, id string) (*domain.ProductDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	details, ok := m.products[id]
	if !ok {
		return nil, &client.FetchError{Op: "product", StatusCode: 404, Err: errors.New("not found")}
	}
	return details, nil
}

func (m *MockCatalogClient) setPageErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageErr = err
}

func (m *MockCatalogClient) setCategoriesErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categoriesErr = err
}

func (m *MockCatalogClient) categoryCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.categoryCalls
}

// --- Mock snapshot repository ---

type MockProductRepo struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (m *MockProductRepo) EnsureSchema(context.Context) error {
	return nil
}

func (m *MockProductRepo) SaveProduct(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, product.ID)
	return nil
}

func resultID(page *domain.CatalogPage) string {
	if page == nil || len(page.Items) == 0 {
		return ""
	}
	return page.Items[0].ID
}

var errBoom = fmt.Errorf("boom")
