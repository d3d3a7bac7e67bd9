package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"qrmenu/internal/auth"
	"qrmenu/internal/cart"
	"qrmenu/internal/domain"
	"qrmenu/internal/resolver"
	"qrmenu/internal/service"
	"qrmenu/internal/storage"
)

// MenuResolver hands out the menu document for a restaurant. It never
// fails; unknown restaurants resolve to the built-in sample.
type MenuResolver interface {
	Resolve(ctx context.Context, restaurantID string) *domain.MenuDocument
}

type StatsReader interface {
	GetStats(ctx context.Context, restaurantID string) (map[string]string, error)
	DailyEdits(ctx context.Context, restaurantID string, day time.Time) (float64, error)
}

type Handler struct {
	Resolver  MenuResolver
	Menus     service.MenuServiceInterface
	Auth      service.AuthServiceInterface
	QR        service.QRGenerator
	Carts     *cart.SessionStore
	Stats     StatsReader
	Tokens    *auth.TokenManager
	DefaultID string
	StaticDir string
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/menu", h.getDefaultMenu).Methods("GET")
	r.HandleFunc("/api/menu/{restaurantID}", h.getMenu).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}/qrcode", h.getQRCode).Methods("GET")

	r.HandleFunc("/api/auth/register", h.register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.login).Methods("POST")

	r.HandleFunc("/api/cart", h.createCart).Methods("POST")
	r.HandleFunc("/api/cart/{id}", h.getCart).Methods("GET")
	r.HandleFunc("/api/cart/{id}", h.clearCart).Methods("DELETE")
	r.HandleFunc("/api/cart/{id}/items", h.addCartItem).Methods("POST")
	r.HandleFunc("/api/cart/{id}/items", h.adjustCartItem).Methods("PATCH")
	r.HandleFunc("/api/cart/{id}/items", h.removeCartItem).Methods("DELETE")
	r.HandleFunc("/api/cart/{id}/summary", h.getCartSummary).Methods("GET")

	h.registerOwnerRoutes(r)

	if h.StaticDir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(h.StaticDir))))
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "qrmenu",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

// getDefaultMenu serves the menu for a scanned QR payload: the front-end
// forwards the landing URL in ?url= and the restaurant is extracted from
// it, falling back to the configured default.
func (h *Handler) getDefaultMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID := h.DefaultID
	query := r.URL.Query()
	if raw := query.Get("url"); raw != "" {
		restaurantID = resolver.ExtractRestaurantID(raw, h.DefaultID)
	} else if id := query.Get("r"); id != "" {
		restaurantID = id
	} else if id := query.Get("restaurant"); id != "" {
		restaurantID = id
	}
	doc := h.Resolver.Resolve(r.Context(), restaurantID)
	writeJSON(w, http.StatusOK, doc.DinerView())
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID := mux.Vars(r)["restaurantID"]
	doc := h.Resolver.Resolve(r.Context(), restaurantID)
	writeJSON(w, http.StatusOK, doc.DinerView())
}

func (h *Handler) getQRCode(w http.ResponseWriter, r *http.Request) {
	restaurantID := mux.Vars(r)["id"]
	table := r.URL.Query().Get("table")
	png, err := h.QR.Generate(restaurantID, table)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	owner, token, err := h.Auth.Register(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"owner": owner,
		"token": token,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type createCartRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Table        string `json:"table"`
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	restaurantID := req.RestaurantID
	if restaurantID == "" {
		restaurantID = h.DefaultID
	}
	menu := h.Resolver.Resolve(r.Context(), restaurantID).DinerView()
	session := h.Carts.Create(menu, req.Table)
	writeJSON(w, http.StatusCreated, cartResponse(session))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.Carts.Get(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse(session))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.Carts.Get(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}
	session.Cart.Clear()
	w.WriteHeader(http.StatusNoContent)
}

type cartItemRequest struct {
	ItemID string `json:"item_id"`
	Size   string `json:"size"`
	Delta  int    `json:"delta"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.Carts.Get(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	line, err := session.Cart.Add(req.ItemID, req.Size)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"line":  line,
		"total": session.Cart.Total(),
	})
}

func (h *Handler) adjustCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.Carts.Get(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Delta == 0 {
		http.Error(w, "Delta must not be zero", http.StatusBadRequest)
		return
	}
	line, removed, err := session.Cart.Adjust(req.ItemID, req.Size, req.Delta)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"line":    line,
		"removed": removed,
		"total":   session.Cart.Total(),
	})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.Carts.Get(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}
	itemID := r.URL.Query().Get("item_id")
	size := r.URL.Query().Get("size")
	if err := session.Cart.Remove(itemID, size); err != nil {
		writeCartError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getCartSummary renders the plain-text order message a diner shows to
// the waiter or pastes into a chat.
func (h *Handler) getCartSummary(w http.ResponseWriter, r *http.Request) {
	session, ok := h.Carts.Get(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(session.Cart.Summary()))
}

func cartResponse(session *cart.Session) map[string]interface{} {
	return map[string]interface{}{
		"id":            session.ID,
		"restaurant_id": session.RestaurantID,
		"table":         session.Cart.Table(),
		"lines":         session.Cart.Lines(),
		"total":         session.Cart.Total(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Unrecognized errors
// become a short 500 without the internal detail.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrCategoryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrNotLinked),
		errors.Is(err, service.ErrRestaurantTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, storage.ErrDuplicateItem):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
	}
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrItemNotFound), errors.Is(err, cart.ErrLineNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
