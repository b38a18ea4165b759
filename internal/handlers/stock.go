package handlers

import (
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ministore/internal/handlers/render"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
)

type ProductRequest struct {
	Number      string          `json:"number" validate:"productnum"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Pointer makes an absent amount distinguishable from zero
type AmountRequest struct {
	Amount *int `json:"amount" validate:"required"`
}

type BuyResponse struct {
	Bought bool `json:"bought"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

type ImageRequest struct {
	Path string `json:"path" validate:"required"`
}

type NewProductRequest struct {
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func productNum(r *http.Request) string {
	return chi.URLParam(r, "num")
}

func handleListProducts(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := s.GetProducts(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, products)
	}
}

func handleGetProduct(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.GetDetails(r.Context(), productNum(r))
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, p)
	}
}

func handleExists(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exists, err := s.Exists(r.Context(), productNum(r))
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, ExistsResponse{Exists: exists})
	}
}

// Strict create, number is taken from body
func handleAddProduct(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[ProductRequest](w, r)
		if err != nil {
			return
		}

		p := models.Product(req)
		if err := s.AddProduct(r.Context(), p); err != nil {
			renderError(w, err, l)
			return
		}
		render.JSONWithStatus(w, p, http.StatusCreated)
	}
}

func handleNewProduct(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[NewProductRequest](w, r)
		if err != nil {
			return
		}

		p, err := s.NewProduct(r.Context(), req.Description, req.Price, req.Quantity)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSONWithStatus(w, p, http.StatusCreated)
	}
}

// Upsert, number is taken from path
func handleModifyStock(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[NewProductRequest](w, r)
		if err != nil {
			return
		}

		p := models.Product{Number: productNum(r), Description: req.Description, Price: req.Price, Quantity: req.Quantity}
		if err := s.ModifyStock(r.Context(), p); err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, p)
	}
}

func handleDeleteProduct(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.DeleteProduct(r.Context(), productNum(r)); err != nil {
			renderError(w, err, l)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetImage(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := s.GetImage(r.Context(), productNum(r))
		if err != nil {
			renderError(w, err, l)
			return
		}

		w.Header().Set("Content-Type", mimetype.Detect(data).String())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func handleUpdateImage(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[ImageRequest](w, r)
		if err != nil {
			return
		}

		if err := s.UpdateProductImage(r.Context(), productNum(r), req.Path); err != nil {
			renderError(w, err, l)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleBuyStock(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[AmountRequest](w, r)
		if err != nil {
			return
		}

		bought, err := s.BuyStock(r.Context(), productNum(r), *req.Amount)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, BuyResponse{Bought: bought})
	}
}

func handleAddStock(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[AmountRequest](w, r)
		if err != nil {
			return
		}

		if err := s.AddStock(r.Context(), productNum(r), *req.Amount); err != nil {
			renderError(w, err, l)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSetStock(s stockService, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[AmountRequest](w, r)
		if err != nil {
			return
		}

		if err := s.SetStock(r.Context(), productNum(r), *req.Amount); err != nil {
			renderError(w, err, l)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
