package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/service"
	"github.com/sirupsen/logrus"
)

// CartService is the cart surface exposed over HTTP.
type CartService interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int64) (domain.Cart, error)
	RemoveProduct(ctx context.Context, productID int64) (domain.Cart, error)
	UpdateProductAmount(ctx context.Context, update domain.AmountUpdate) (domain.Cart, error)
}

type HTTPHandler struct {
	cart CartService
	log  logrus.FieldLogger
}

type UpdateAmountHTTPRequest struct {
	Amount *int `json:"amount"`
}

type ErrorHTTPResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(cart CartService, log logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{cart: cart, log: log}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/items/{id}", h.AddProduct).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{id}", h.RemoveProduct).Methods(http.MethodDelete)
	r.HandleFunc("/cart/items/{id}", h.UpdateProductAmount).Methods(http.MethodPut)

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.Cart())
}

func (h *HTTPHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	cart, err := h.cart.AddProduct(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

func (h *HTTPHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	cart, err := h.cart.RemoveProduct(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

func (h *HTTPHandler) UpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req UpdateAmountHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "invalid request body"})
		return
	}

	cart, err := h.cart.UpdateProductAmount(r.Context(), domain.AmountUpdate{
		ProductID: id,
		Amount:    *req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		h.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "invalid product id"})
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		status = http.StatusConflict
		message = "out of stock"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = "product is not in cart"
	case errors.Is(err, domain.ErrUpstream):
		status = http.StatusBadGateway
		message = "inventory unavailable"
	case errors.Is(err, service.ErrClosed):
		status = http.StatusServiceUnavailable
		message = "cart is closed"
	}

	writeJSON(w, status, ErrorHTTPResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
