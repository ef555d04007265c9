package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inventory-service/internal/middleware"
	"inventory-service/internal/service"
)

// AddCartItemRequest adds quantity to the line, or sets it when replace is true
type AddCartItemRequest struct {
	ProductID *int64 `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
	Replace   bool   `json:"replace"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartHandler handles HTTP requests for carts
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, logger: logger}
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart/{user_id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/", h.AddItem)
		r.Delete("/", h.Clear)
		r.Put("/{product_id}", h.UpdateItem)
		r.Delete("/{product_id}", h.RemoveItem)
	})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id", "user")
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// AddItem answers 201 for a new line and 200 when an existing line changed
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id", "user")
	if !ok {
		return
	}

	var req AddCartItemRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	line, created, err := h.cartService.AddItem(r.Context(), userID, *req.ProductID, *req.Quantity, req.Replace)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	middleware.RespondWithJSON(w, status, line)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id", "user")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "product_id", "product")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	line, err := h.cartService.UpdateItem(r.Context(), userID, productID, *req.Quantity)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, line)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id", "user")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "product_id", "product")
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(r.Context(), userID, productID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithMessage(w, http.StatusOK, "Item removed from cart")
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id", "user")
	if !ok {
		return
	}

	cleared, err := h.cartService.ClearCart(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	if !cleared {
		middleware.RespondWithMessage(w, http.StatusOK, "Cart is already empty")
		return
	}
	middleware.RespondWithMessage(w, http.StatusOK, "Cart cleared")
}
