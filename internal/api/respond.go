package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"storefront/browser/internal/client"
	"storefront/browser/internal/gallery"
	"storefront/browser/internal/review"
	"storefront/browser/internal/service"

	log "github.com/sirupsen/logrus"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnf("⚠️ Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorf("❌ Request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var validationErr *review.ValidationError
	var fetchErr *client.FetchError

	switch {
	case errors.As(err, &validationErr), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, errSessionNotFound),
		errors.Is(err, errViewNotFound),
		errors.Is(err, review.ErrReviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, review.ErrIndexOutOfRange),
		errors.Is(err, gallery.ErrIndexOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		if fetchErr.IsNotFound() {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}
