package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/browser/internal/domain"
	"storefront/browser/internal/gallery"
	"storefront/browser/internal/review"
	"storefront/browser/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type openViewRequest struct {
	ProductID string `json:"product_id"`
}

type galleryResponse struct {
	Images    []string `json:"images"`
	Index     *int     `json:"index"` // nil when there are no images
	Current   string   `json:"current,omitempty"`
	Navigable bool     `json:"navigable"`
	Loading   bool     `json:"loading"`
}

type reviewsResponse struct {
	Ordering review.Ordering `json:"ordering"`
	Items    []domain.Review `json:"items"`
}

type viewResponse struct {
	ID      uuid.UUID       `json:"id"`
	Product domain.Product  `json:"product"`
	Gallery galleryResponse `json:"gallery"`
	Reviews reviewsResponse `json:"reviews"`
}

type orderRequest struct {
	Date   string `json:"date"`
	Rating string `json:"rating"`
}

type sortRequest struct {
	Criterion string `json:"criterion"`
}

func newGalleryResponse(n *gallery.Navigator) galleryResponse {
	resp := galleryResponse{
		Images:    n.Images(),
		Navigable: n.Navigable(),
		Loading:   n.Loading(),
	}
	if index, ok := n.Index(); ok {
		resp.Index = &index
	}
	resp.Current, _ = n.Current()
	return resp
}

func newReviewsResponse(c *review.Collection) reviewsResponse {
	return reviewsResponse{
		Ordering: c.Ordering(),
		Items:    c.List(),
	}
}

func newViewResponse(v *view) viewResponse {
	return viewResponse{
		ID:      v.id,
		Product: v.detail.Product,
		Gallery: newGalleryResponse(v.detail.Gallery),
		Reviews: newReviewsResponse(v.detail.Reviews),
	}
}

// withView resolves the session and view of the request and runs fn while holding the view.
func (s *Server) withView(w http.ResponseWriter, r *http.Request, fn func(detail *service.DetailView) (int, any, error)) {
	vars := mux.Vars(r)
	sess, err := s.sessions.get(vars["sid"])
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := sess.view(vars["vid"])
	if err != nil {
		writeError(w, err)
		return
	}

	v.mu.Lock()
	status, body, err := fn(v.detail)
	v.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, body)
}

func (s *Server) openView(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(mux.Vars(r)["sid"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req openViewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		writeError(w, fmt.Errorf("%w: product_id is required", errBadRequest))
		return
	}

	detail, err := s.loader.Open(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}

	v := sess.openView(detail)
	log.Infof("📦 Session %s opened product %s as view %s", sess.id, req.ProductID, v.id)

	v.mu.Lock()
	defer v.mu.Unlock()
	writeJSON(w, http.StatusCreated, newViewResponse(v))
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := s.sessions.get(vars["sid"])
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := sess.view(vars["vid"])
	if err != nil {
		writeError(w, err)
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	writeJSON(w, http.StatusOK, newViewResponse(v))
}

func (s *Server) closeView(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := s.sessions.get(vars["sid"])
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sess.closeView(vars["vid"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Gallery ---

func (s *Server) galleryNext(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(detail *service.DetailView) (int, any, error) {
		detail.Gallery.Next()
		return http.StatusOK, newGalleryResponse(detail.Gallery), nil
	})
}

func (s *Server) galleryPrevious(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(detail *service.DetailView) (int, any, error) {
		detail.Gallery.Previous()
		return http.StatusOK, newGalleryResponse(detail.Gallery), nil
	})
}

func (s *Server) gallerySelect(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid image index", errBadRequest))
		return
	}

	s.withView(w, r, func(detail *service.DetailView) (int, any, error) {
		if err := detail.Gallery.Select(index); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, newGalleryResponse(detail.Gallery), nil
	})
}

// galleryLoaded is reported by the client once an image finished loading. Reports for an
// image that is no longer selected are ignored.
func (s *Server) galleryLoaded(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid image index", errBadRequest))
		return
	}

	s.withView(w, r, func(detail *service.DetailView) (int, any, error) {
		detail.Gallery.MarkLoaded(index)
		return http.StatusOK, newGalleryResponse(detail.Gallery), nil
	})
}

// --- Reviews ---

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(detail *service.DetailView) (int, any, error) {
		return http.StatusOK, newReviewsResponse(detail.Reviews), nil
	})
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	var draft review.Draft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, err)
		return
	}

	s.withView(w, r, func(detail *service.DetailView) (int, any, error) {
		created, err := detail.Reviews.Create(draft)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, created, nil
	})
}

func (s *Server) editReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["rid"])
	if err != nil {
		writeError(w, review.ErrReviewNotFound)
		return
	}
	var draft review.Draft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, err)
		return
	}

	s.withView(w, r, func(detail *service.DetailView) (int, any, error) {
		edited, err := detail.Reviews.Edit(id, draft)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, edited, nil
	})
}

func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["rid"])
	if err != nil {
		writeError(w, review.ErrReviewNotFound)
		return
	}

	s.withView(w, r, func(detail *service.DetailView) (int, any, error) {
		if err := detail.Reviews.Remove(id); err != nil {
			return 0, nil, err
		}
		return http.StatusNoContent, nil, nil
	})
}

func (s *Server) setReviewOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	date, err := review.ParseDateOrder(req.Date)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	rating, err := review.ParseRatingOrder(req.Rating)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	s.withView(w, r, func(detail *service.DetailView) (int, any, error) {
		detail.Reviews.SetOrdering(review.Ordering{Date: date, Rating: rating})
		return http.StatusOK, newReviewsResponse(detail.Reviews), nil
	})
}

func (s *Server) sortReviews(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	criterion, err := review.ParseCriterion(req.Criterion)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	s.withView(w, r, func(detail *service.DetailView) (int, any, error) {
		detail.Reviews.Sort(criterion)
		return http.StatusOK, newReviewsResponse(detail.Reviews), nil
	})
}
