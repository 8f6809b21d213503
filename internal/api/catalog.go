package api

import (
	"errors"
	"net/http"
	"net/url"

	"storefront/browser/internal/domain"
	"storefront/browser/internal/query"
	"storefront/browser/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type sessionResponse struct {
	ID uuid.UUID `json:"id"`
}

type catalogResponse struct {
	Query       string              `json:"query"` // Shareable query string of the displayed state
	State       query.State         `json:"state"`
	Page        *domain.CatalogPage `json:"page"`
	HasPrevious bool                `json:"has_previous"`
	HasNext     bool                `json:"has_next"`
	Categories  []string            `json:"categories"`
	Loading     bool                `json:"loading"`
	Error       string              `json:"error,omitempty"`
}

func newCatalogResponse(view service.CatalogView, base url.Values) catalogResponse {
	resp := catalogResponse{
		Query:      query.Encode(view.Query, base).Encode(),
		State:      view.Query,
		Page:       view.Page,
		Categories: view.Categories,
		Loading:    view.Loading,
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	if view.Page != nil {
		resp.HasPrevious = view.Page.HasPrevious()
		resp.HasNext = view.Page.HasNext()
	}
	if view.Err != nil {
		resp.Error = view.Err.Error()
	}
	return resp
}

func (s *Server) createSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.add(service.NewCoordinator(s.client, s.categories))
	log.Infof("🆕 Session %s created", sess.id)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.id})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.remove(mux.Vars(r)["sid"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadCatalog handles GET /sessions/{sid}/catalog. Without parameters it loads the default
// state, which is how filters are reset.
func (s *Server) loadCatalog(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(mux.Vars(r)["sid"])
	if err != nil {
		writeError(w, err)
		return
	}

	params := r.URL.Query()
	_, err = sess.coordinator.Load(r.Context(), query.Decode(params))

	resp := newCatalogResponse(sess.coordinator.View(), params)
	if err != nil {
		// The body still carries the page that is on display.
		if errors.Is(err, service.ErrSuperseded) {
			resp.Error = err.Error()
		}
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) currentCatalog(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(mux.Vars(r)["sid"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCatalogResponse(sess.coordinator.View(), r.URL.Query()))
}
