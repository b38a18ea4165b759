package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nkiryanov/ministore/internal/basket"
	"github.com/nkiryanov/ministore/internal/handlers/render"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
)

type SubmitRequest struct {
	Items []models.Product `json:"items"`
}

type SubmitResponse struct {
	Number int64 `json:"number"`
}

// Parse order number from path, renders error and returns false if it is not a number
func orderNum(w http.ResponseWriter, r *http.Request) (int64, bool) {
	number, err := strconv.ParseInt(chi.URLParam(r, "num"), 10, 64)
	if err != nil {
		render.ServiceError(w, "Order number must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return number, true
}

func handleSubmit(s orderService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[SubmitRequest](w, r)
		if err != nil {
			return
		}

		b := basket.New()
		for _, item := range req.Items {
			b.Add(item)
		}

		number, err := s.Submit(r.Context(), b)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSONWithStatus(w, SubmitResponse{Number: number}, http.StatusCreated)
	}
}

// 204 when there is nothing to pack
func handleNextUnpacked(s orderService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, ok, err := s.NextUnpacked(r.Context())

		switch {
		case err != nil:
			renderError(w, err, l)
		case !ok:
			w.WriteHeader(http.StatusNoContent)
		default:
			render.JSON(w, o)
		}
	}
}

func handleSnapshot(s orderService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := s.SnapshotByState(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, snapshot)
	}
}

func handleGetOrder(s orderService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, ok := orderNum(w, r)
		if !ok {
			return
		}

		o, err := s.GetOrder(r.Context(), number)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, o)
	}
}

func handleMarkPacked(s orderService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, ok := orderNum(w, r)
		if !ok {
			return
		}

		if err := s.MarkPacked(r.Context(), number); err != nil {
			renderError(w, err, l)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMarkCollected(s orderService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, ok := orderNum(w, r)
		if !ok {
			return
		}

		if err := s.MarkCollected(r.Context(), number); err != nil {
			renderError(w, err, l)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
