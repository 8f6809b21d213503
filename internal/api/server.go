package api

import (
	"net/http"
	"time"

	"storefront/browser/internal/cache"
	"storefront/browser/internal/client"
	"storefront/browser/internal/service"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Server exposes catalog browsing and product detail views over HTTP. Every visitor works in
// a session created with POST /sessions; state is kept in memory only.
type Server struct {
	client     client.CatalogClient
	categories cache.CategoryCache
	loader     *service.DetailLoader
	sessions   *sessionRegistry
}

func NewServer(client client.CatalogClient, categories cache.CategoryCache, loader *service.DetailLoader) *Server {
	return &Server{
		client:     client,
		categories: categories,
		loader:     loader,
		sessions:   newSessionRegistry(),
	}
}

// Router returns the HTTP handler with all routes registered.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(logRequests("/health"))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/sessions", s.createSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{sid}", s.deleteSession).Methods(http.MethodDelete)

	r.HandleFunc("/sessions/{sid}/catalog", s.loadCatalog).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{sid}/catalog/current", s.currentCatalog).Methods(http.MethodGet)

	r.HandleFunc("/sessions/{sid}/views", s.openView).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{sid}/views/{vid}", s.getView).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{sid}/views/{vid}", s.closeView).Methods(http.MethodDelete)

	v := r.PathPrefix("/sessions/{sid}/views/{vid}").Subrouter()

	v.HandleFunc("/gallery/next", s.galleryNext).Methods(http.MethodPost)
	v.HandleFunc("/gallery/previous", s.galleryPrevious).Methods(http.MethodPost)
	v.HandleFunc("/gallery/{index:[0-9]+}", s.gallerySelect).Methods(http.MethodPut)
	v.HandleFunc("/gallery/{index:[0-9]+}/loaded", s.galleryLoaded).Methods(http.MethodPost)

	v.HandleFunc("/reviews", s.listReviews).Methods(http.MethodGet)
	v.HandleFunc("/reviews", s.createReview).Methods(http.MethodPost)
	v.HandleFunc("/reviews/order", s.setReviewOrder).Methods(http.MethodPut)
	v.HandleFunc("/reviews/sort", s.sortReviews).Methods(http.MethodPost)
	v.HandleFunc("/reviews/{rid:[0-9a-fA-F-]{36}}", s.editReview).Methods(http.MethodPut)
	v.HandleFunc("/reviews/{rid:[0-9a-fA-F-]{36}}", s.deleteReview).Methods(http.MethodDelete)

	return r
}

// Close cancels the catalog loads of every open session.
func (s *Server) Close() {
	s.sessions.closeAll()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(skip ...string) mux.MiddlewareFunc {
	skipped := make(map[string]bool, len(skip))
	for _, path := range skip {
		skipped[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipped[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(log.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("request handled")
		})
	}
}
