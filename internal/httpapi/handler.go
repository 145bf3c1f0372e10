package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nourtarek555/BuyerMS3/internal/cart"
	"github.com/nourtarek555/BuyerMS3/internal/checkout"
	"github.com/nourtarek555/BuyerMS3/internal/inventory"
	"github.com/nourtarek555/BuyerMS3/internal/order"
)

// CartAPI is the slice of the cart store the handlers need.
type CartAPI interface {
	AddItem(ctx context.Context, p cart.Product, requested int) (cart.AddResult, error)
	UpdateQuantity(ctx context.Context, productID string, newQty int) (cart.UpdateResult, error)
	RemoveItem(ctx context.Context, productID string) error
	Clear(ctx context.Context, restoreStock bool) (bool, error)
	Items() (map[string]cart.Item, error)
	TotalPrice() (float64, error)
	ItemCount() (int, error)
}

type CheckoutAPI interface {
	Checkout(ctx context.Context, buyerID string, deliveryType order.DeliveryType) ([]order.Order, error)
}

type Handler struct {
	cart      CartAPI
	checkout  CheckoutAPI
	orders    order.Repository
	lifecycle *order.Lifecycle
	logger    *log.Logger
}

func NewHandler(c CartAPI, co CheckoutAPI, orders order.Repository, lifecycle *order.Lifecycle, logger *log.Logger) *Handler {
	return &Handler{cart: c, checkout: co, orders: orders, lifecycle: lifecycle, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "buyerms",
	})
}

type addItemRequest struct {
	Product  cart.Product `json:"product"`
	Quantity int          `json:"quantity"`
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if req.Product.ID == "" || req.Product.SellerID == "" {
		writeError(w, http.StatusBadRequest, "missing product id or seller id")
		return
	}

	res, err := h.cart.AddItem(r.Context(), req.Product, req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	res, err := h.cart.UpdateQuantity(r.Context(), productID, req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.cart.RemoveItem(r.Context(), productID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": true})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	// A user-initiated clear returns the reservations to the pool unless
	// the caller says otherwise.
	restore := r.URL.Query().Get("restoreStock") != "false"

	allSucceeded, err := h.cart.Clear(r.Context(), restore)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"allSucceeded": allSucceeded})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.Items()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	total, err := h.cart.TotalPrice()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	count, err := h.cart.ItemCount()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"totalPrice": total,
		"itemCount":  count,
	})
}

type checkoutRequest struct {
	BuyerID      string `json:"buyerId"`
	DeliveryType string `json:"deliveryType"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if req.BuyerID == "" {
		writeError(w, http.StatusBadRequest, "missing buyerId")
		return
	}
	dt := order.DeliveryType(req.DeliveryType)
	if dt != order.DeliveryTypeDelivery && dt != order.DeliveryTypePickup {
		writeError(w, http.StatusBadRequest, "deliveryType must be delivery or pickup")
		return
	}

	orders, err := h.checkout.Checkout(r.Context(), req.BuyerID, dt)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"orders": orders})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) ListBuyerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByBuyer(r.Context(), chi.URLParam(r, "buyerId"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) ListSellerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListBySeller(r.Context(), chi.URLParam(r, "sellerId"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetTransitions returns the targets reachable from the order's current
// status, in presentation order.
func (h *Handler) GetTransitions(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current": o.Status,
		"next":    order.ValidNextStates(o.Status),
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	next, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.lifecycle.UpdateOrderStatus(r.Context(), o, next); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// writeDomainError maps domain failures to status codes. Business
// conditions keep their ready-to-display messages; anything unexpected
// is logged and hidden behind a generic 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var (
		insufficient *inventory.InsufficientStockError
		short        *cart.NotEnoughStockError
		invalid      *order.InvalidTransitionError
		transient    *inventory.TransientError
	)
	switch {
	case errors.As(err, &insufficient), errors.As(err, &short):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, inventory.ErrRecordNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalid):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, inventory.ErrInvalidQuantity), errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &transient):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
