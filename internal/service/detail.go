package service

import (
	"context"
	"time"

	"storefront/browser/internal/client"
	"storefront/browser/internal/domain"
	"storefront/browser/internal/gallery"
	"storefront/browser/internal/repository"
	"storefront/browser/internal/review"

	log "github.com/sirupsen/logrus"
)

// DetailView is one opened product: the product as fetched, its image gallery and the
// review list the visitor works on. Everything in it is discarded with the view.
type DetailView struct {
	Product domain.Product
	Gallery *gallery.Navigator
	Reviews *review.Collection
}

type DetailLoader struct {
	client    client.CatalogClient
	snapshots repository.ProductRepository
	bounds    review.FormBounds
	now       func() time.Time
}

// NewDetailLoader builds a loader. snapshots may be nil when no snapshot store is configured.
func NewDetailLoader(client client.CatalogClient, snapshots repository.ProductRepository, bounds review.FormBounds) *DetailLoader {
	return &DetailLoader{
		client:    client,
		snapshots: snapshots,
		bounds:    bounds,
		now:       time.Now,
	}
}

// Open fetches the product once and seeds the gallery and review list from it.
func (l *DetailLoader) Open(ctx context.Context, productID string) (*DetailView, error) {
	details, err := l.client.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if l.snapshots != nil {
		if err := l.snapshots.SaveProduct(ctx, &details.Product); err != nil {
			log.Warnf("⚠️ Failed to save snapshot of product %s: %v", details.Product.ID, err)
		}
	}

	log.Debugf("Opened product %s with %d images and %d reviews",
		details.Product.ID, len(details.Product.Images), len(details.Reviews))

	return &DetailView{
		Product: details.Product,
		Gallery: gallery.New(details.Product.Images),
		Reviews: review.NewCollection(details.Product.ID, details.Reviews,
			review.WithFormBounds(l.bounds),
			review.WithClock(l.now),
		),
	}, nil
}
