package transport

import (
	"fmt"
	"net/http"
	"time"

	"shopverse/internal/cart"
	"shopverse/internal/middleware"
	"shopverse/internal/repository"
	"shopverse/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cartSessionCookie identifies the session cart across requests,
// including for guests who have not logged in yet.
const cartSessionCookie = "cart_session"

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// SetQuantityRequest represents the quantity update payload
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse represents the session cart plus the notification text
// the storefront surfaces as a toast
type CartResponse struct {
	Items   []cart.Line `json:"items"`
	Total   float64     `json:"total"`
	Message string      `json:"message,omitempty"`
}

// CartHandler handles HTTP requests for the session cart
type CartHandler struct {
	cartStore      *cart.Store
	productService service.ProductService
	logger         *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartStore *cart.Store, productService service.ProductService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartStore:      cartStore,
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all cart routes. Cart routes are public so
// guests can shop before logging in; the session cookie scopes the cart.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}", h.SetQuantity)
		r.Delete("/items/{productId}", h.RemoveItem)
	})
}

// GetCart returns the session's cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := resolveCartSession(w, r)
	lines := h.cartStore.Get(r.Context(), sessionID)

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items: lines,
		Total: lines.Total(),
	})
}

// AddItem looks up the product and adds it to the session cart. A
// quantity below 1 defaults to 1, matching the storefront's add button.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := resolveCartSession(w, r)

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to load product for cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	lines := h.cartStore.AddItem(r.Context(), sessionID, *product, quantity)

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:   lines,
		Total:   lines.Total(),
		Message: fmt.Sprintf("%s added to cart", product.Name),
	})
}

// SetQuantity updates a line's quantity; zero or below removes the line
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID := resolveCartSession(w, r)

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req SetQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := h.cartStore.SetQuantity(r.Context(), sessionID, productID, req.Quantity)

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items: lines,
		Total: lines.Total(),
	})
}

// RemoveItem removes a line from the session cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := resolveCartSession(w, r)

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	lines := h.cartStore.RemoveItem(r.Context(), sessionID, productID)

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:   lines,
		Total:   lines.Total(),
		Message: "Item removed from cart",
	})
}

// ClearCart empties the session cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := resolveCartSession(w, r)
	h.cartStore.Clear(r.Context(), sessionID)

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:   []cart.Line{},
		Total:   0,
		Message: "Cart cleared",
	})
}

// resolveCartSession returns the request's cart session ID, minting a
// cookie on first contact.
func resolveCartSession(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(cartSessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	sessionID := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     cartSessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID
}
