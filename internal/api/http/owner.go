package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"qrmenu/internal/domain"
	"qrmenu/internal/service"
)

func (h *Handler) registerOwnerRoutes(r *mux.Router) {
	owner := r.PathPrefix("/api/owner").Subrouter()
	owner.Use(RequireOwner(h.Tokens))

	owner.HandleFunc("/link", h.linkRestaurant).Methods("POST")
	owner.HandleFunc("/restaurant", h.getOwnRestaurant).Methods("GET")
	owner.HandleFunc("/stats", h.getStats).Methods("GET")

	owner.HandleFunc("/categories", h.createCategory).Methods("POST")
	owner.HandleFunc("/categories/{id}", h.updateCategory).Methods("PATCH")
	owner.HandleFunc("/categories/{id}", h.deleteCategory).Methods("DELETE")

	owner.HandleFunc("/categories/{id}/items", h.createItem).Methods("POST")
	owner.HandleFunc("/categories/{id}/items/{itemID}", h.updateItem).Methods("PATCH")
	owner.HandleFunc("/categories/{id}/items/{itemID}", h.deleteItem).Methods("DELETE")
	owner.HandleFunc("/categories/{id}/items/{itemID}/move", h.moveItem).Methods("POST")
}

// ownerRestaurant resolves the caller's linked restaurant. Owners without
// a link get a conflict; the dashboard then walks them through linking.
func (h *Handler) ownerRestaurant(w http.ResponseWriter, r *http.Request) (string, bool) {
	rest, err := h.Menus.RestaurantForOwner(r.Context(), OwnerID(r))
	if err != nil {
		writeError(w, err)
		return "", false
	}
	return rest.ID, true
}

func (h *Handler) linkRestaurant(w http.ResponseWriter, r *http.Request) {
	var in service.LinkRestaurantInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rest, err := h.Menus.LinkRestaurant(r.Context(), OwnerID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) getOwnRestaurant(w http.ResponseWriter, r *http.Request) {
	rest, err := h.Menus.RestaurantForOwner(r.Context(), OwnerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := h.ownerRestaurant(w, r)
	if !ok {
		return
	}
	stats, err := h.Stats.GetStats(r.Context(), restaurantID)
	if err != nil {
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}
	today, err := h.Stats.DailyEdits(r.Context(), restaurantID, time.Now())
	if err != nil {
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"restaurant_id": restaurantID,
		"stats":         stats,
		"edits_today":   today,
	})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := h.ownerRestaurant(w, r)
	if !ok {
		return
	}
	var in service.CreateCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cat, err := h.Menus.CreateCategory(r.Context(), restaurantID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

type updateCategoryRequest struct {
	Name      *string `json:"name"`
	Enabled   *bool   `json:"enabled"`
	SortOrder *int    `json:"sort_order"`
}

// updateCategory applies a partial update: each present field maps to one
// mutation, so a rename and a toggle can ride in the same request.
func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := h.ownerRestaurant(w, r)
	if !ok {
		return
	}
	categoryID := mux.Vars(r)["id"]

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == nil && req.Enabled == nil && req.SortOrder == nil {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	var cat *domain.Category
	var err error
	if req.Name != nil {
		if cat, err = h.Menus.RenameCategory(r.Context(), restaurantID, categoryID, *req.Name); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Enabled != nil {
		if cat, err = h.Menus.ToggleCategory(r.Context(), restaurantID, categoryID, *req.Enabled); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.SortOrder != nil {
		if cat, err = h.Menus.SetCategoryOrder(r.Context(), restaurantID, categoryID, *req.SortOrder); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := h.ownerRestaurant(w, r)
	if !ok {
		return
	}
	if err := h.Menus.DeleteCategory(r.Context(), restaurantID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := h.ownerRestaurant(w, r)
	if !ok {
		return
	}
	var in service.CreateItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item, err := h.Menus.CreateItem(r.Context(), restaurantID, mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type updateItemRequest struct {
	Name      *string              `json:"name"`
	Price     *float64             `json:"price"`
	Sizes     []domain.SizeVariant `json:"sizes"`
	Type      *string              `json:"type"`
	Available *bool                `json:"available"`
	Image     *string              `json:"image"`
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := h.ownerRestaurant(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	categoryID, itemID := vars["id"], vars["itemID"]

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == nil && req.Price == nil && len(req.Sizes) == 0 &&
		req.Type == nil && req.Available == nil && req.Image == nil {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	var item *domain.Item
	var err error
	if req.Name != nil {
		if item, err = h.Menus.RenameItem(r.Context(), restaurantID, categoryID, itemID, *req.Name); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Price != nil || len(req.Sizes) > 0 {
		in := service.RepriceItemInput{Price: req.Price, Sizes: req.Sizes}
		if item, err = h.Menus.RepriceItem(r.Context(), restaurantID, categoryID, itemID, in); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Type != nil {
		if item, err = h.Menus.SetItemType(r.Context(), restaurantID, categoryID, itemID, *req.Type); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Available != nil {
		if item, err = h.Menus.ToggleItemAvailability(r.Context(), restaurantID, categoryID, itemID, *req.Available); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Image != nil {
		if item, err = h.Menus.UpdateItemImage(r.Context(), restaurantID, categoryID, itemID, *req.Image); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := h.ownerRestaurant(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	if err := h.Menus.DeleteItem(r.Context(), restaurantID, vars["id"], vars["itemID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveItemRequest struct {
	ToCategoryID string `json:"to_category_id"`
}

func (h *Handler) moveItem(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := h.ownerRestaurant(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	var req moveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ToCategoryID == "" {
		http.Error(w, "to_category_id is required", http.StatusBadRequest)
		return
	}
	if err := h.Menus.MoveItem(r.Context(), restaurantID, vars["id"], req.ToCategoryID, vars["itemID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
