package handlers

import (
	"net/http"

	"github.com/nkiryanov/ministore/internal/handlers/render"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
)

type LowStockResponse struct {
	Threshold int              `json:"threshold"`
	Products  []models.Product `json:"products"`
}

func handleLowStock(s reportService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		low, err := s.LowStock(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, LowStockResponse{Threshold: s.Threshold(), Products: low})
	}
}
