package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront/browser/internal/config"
	"storefront/browser/internal/domain"
	"storefront/browser/internal/query"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	productsPath   = "/products"
	productPath    = "/products/{id}"
	categoriesPath = "/categories"
)

type CatalogClient interface {
	GetCatalogPage(ctx context.Context, state query.State) (*domain.CatalogPage, error)
	GetCategories(ctx context.Context) ([]string, error)
	GetProduct(ctx context.Context, id string) (*domain.ProductDetails, error)
	PageSize() int
}

type catalogClient struct {
	rl         ratelimit.Limiter
	config     config.CatalogConfig
	httpClient *resty.Client
	timeout    time.Duration
}

func NewCatalogClient(cfg config.CatalogConfig) CatalogClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &catalogClient{
		rl:         rl,
		config:     cfg,
		httpClient: client,
		timeout:    time.Duration(cfg.Timeout) * time.Second,
	}
}

func (c *catalogClient) PageSize() int {
	return c.config.PageSize
}

// GetCatalogPage fetches the page of products described by state.
func (c *catalogClient) GetCatalogPage(ctx context.Context, state query.State) (*domain.CatalogPage, error) {
	params := map[string]string{
		"limit": strconv.Itoa(c.config.PageSize),
		"skip":  strconv.Itoa(state.Offset(c.config.PageSize)),
	}
	if state.SearchTerm != "" {
		params["search"] = state.SearchTerm
	}
	if state.Category != "" {
		params["category"] = state.Category
	}
	if state.IsSorted() {
		params["sort"] = state.SortField.String()
		params["order"] = state.SortDirection.String()
	}

	body, err := c.get(ctx, "catalog page", productsPath, params, nil)
	if err != nil {
		return nil, err
	}

	items, err := decodeProductList(body)
	if err != nil {
		return nil, &FetchError{Op: "catalog page", URL: productsPath, Err: err}
	}

	log.Debugf("Fetched page %d with %d items (%s)", state.Page, len(items), query.String(state))
	return &domain.CatalogPage{
		PageNumber: state.Page,
		PageSize:   c.config.PageSize,
		Items:      items,
	}, nil
}

func (c *catalogClient) GetCategories(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "categories", categoriesPath, nil, nil)
	if err != nil {
		return nil, err
	}

	categories, err := decodeCategories(body)
	if err != nil {
		return nil, &FetchError{Op: "categories", URL: categoriesPath, Err: err}
	}

	log.Debugf("Fetched %d categories", len(categories))
	return categories, nil
}

func (c *catalogClient) GetProduct(ctx context.Context, id string) (*domain.ProductDetails, error) {
	if id == "" {
		return nil, &FetchError{Op: "product", URL: productPath, StatusCode: http.StatusNotFound, Err: fmt.Errorf("empty product id")}
	}

	body, err := c.get(ctx, "product", productPath, nil, map[string]string{"id": id})
	if err != nil {
		return nil, err
	}

	details, err := decodeProductDetails(body)
	if err != nil {
		return nil, &FetchError{Op: "product", URL: productPath, Err: err}
	}

	log.Debugf("Fetched product %s with %d reviews", details.Product.ID, len(details.Reviews))
	return details, nil
}

func (c *catalogClient) get(ctx context.Context, op, path string, params, pathParams map[string]string) ([]byte, error) {
	c.rl.Take()

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := c.httpClient.R().SetContext(reqCtx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	if len(pathParams) > 0 {
		req.SetPathParams(pathParams)
	}

	resp, err := req.Get(path)
	if err != nil {
		// Check if this is a cancellation from the caller rather than our own timeout
		if ctx.Err() != nil {
			return nil, &FetchError{Op: op, URL: path, Err: fmt.Errorf("request cancelled: %w", ctx.Err())}
		}
		return nil, &FetchError{Op: op, URL: path, Err: err}
	}

	if resp.IsError() || resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, &FetchError{Op: op, URL: path, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	return []byte(resp.String()), nil
}

func (c *catalogClient) Close() error {
	return c.httpClient.Close()
}
