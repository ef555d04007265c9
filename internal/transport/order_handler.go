package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inventory-service/internal/domain"
	"inventory-service/internal/middleware"
	"inventory-service/internal/service"
)

// CreateOrderRequest orders the given items. When items is omitted the
// user's cart is checked out instead.
type CreateOrderRequest struct {
	UserID *int64              `json:"user_id" validate:"required"`
	Items  *[]OrderLineRequest `json:"items" validate:"omitempty,dive"`
}

type OrderLineRequest struct {
	ProductID *int64 `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
	})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	var (
		order *domain.Order
		err   error
	)
	if req.Items == nil {
		order, err = h.orderService.Checkout(r.Context(), *req.UserID)
	} else {
		lines := make([]domain.OrderLine, 0, len(*req.Items))
		for _, item := range *req.Items {
			lines = append(lines, domain.OrderLine{ProductID: *item.ProductID, Quantity: *item.Quantity})
		}
		order, err = h.orderService.CreateOrder(r.Context(), *req.UserID, lines)
	}
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}
