package ws

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"qrmenu/internal/auth"
	"qrmenu/internal/domain"
	menusync "qrmenu/internal/sync"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Renamer is the slice of the menu service the dashboard needs for
// rename-while-typing flows.
type Renamer interface {
	RenameCategory(ctx context.Context, restaurantID, categoryID, name string) (*domain.Category, error)
	RenameItem(ctx context.Context, restaurantID, categoryID, itemID, name string) (*domain.Item, error)
}

// LinkStore resolves which restaurant an owner manages.
type LinkStore interface {
	GetLink(ownerID string) (*domain.OwnerLink, error)
}

type inbound struct {
	Op         string `json:"op"`
	CategoryID string `json:"category_id"`
	ItemID     string `json:"item_id"`
	Name       string `json:"name"`
}

type outbound struct {
	Type     string             `json:"type"`
	Snapshot *menusync.Snapshot `json:"snapshot,omitempty"`
	Message  string             `json:"message,omitempty"`
}

type renameTarget struct {
	categoryID string
	itemID     string // empty for category renames
}

type room struct {
	mu      sync.Mutex
	manager *menusync.Manager
	conns   map[*websocket.Conn]bool
	pending map[string]renameTarget
}

// Hub serves the owner dashboard over websockets: one live menu mirror
// per restaurant, shared by every connected tab. The mirror starts with
// the first client and stops with the last. Rename ops pass through the
// debouncer so a typing burst lands as a single write, and a pending
// rename is cancelled when its entity disappears from the mirror.
type Hub struct {
	tokens   *auth.TokenManager
	links    LinkStore
	store    menusync.Store
	broker   *menusync.Broker
	menus    Renamer
	debounce *menusync.Debouncer

	mu    sync.Mutex
	rooms map[string]*room
}

func NewHub(tokens *auth.TokenManager, links LinkStore, store menusync.Store, broker *menusync.Broker, menus Renamer, debounce *menusync.Debouncer) *Hub {
	return &Hub{
		tokens:   tokens,
		links:    links,
		store:    store,
		broker:   broker,
		menus:    menus,
		debounce: debounce,
		rooms:    make(map[string]*room),
	}
}

func (h *Hub) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws/dashboard", h.HandleDashboard).Methods("GET")
}

func (h *Hub) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	tokenString, err := auth.TokenFromRequest(r)
	if err != nil {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.tokens.Parse(tokenString)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}
	link, err := h.links.GetLink(claims.OwnerID)
	if err != nil {
		http.Error(w, "No restaurant linked", http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	h.join(link.RestaurantID, conn)
	go h.readLoop(link.RestaurantID, conn)
}

func (h *Hub) join(restaurantID string, conn *websocket.Conn) {
	h.mu.Lock()
	rm, ok := h.rooms[restaurantID]
	if !ok {
		rm = &room{
			conns:   make(map[*websocket.Conn]bool),
			pending: make(map[string]renameTarget),
		}
		rm.manager = menusync.NewManager(restaurantID, h.store, h.broker, func(snap menusync.Snapshot) {
			h.broadcast(rm, snap)
		})
		h.rooms[restaurantID] = rm
	}
	h.mu.Unlock()

	if !ok {
		if err := rm.manager.Start(); err != nil {
			// stays in linking state; a later notify catches it up
			log.Printf("[ws] initial sync for %s failed: %v", restaurantID, err)
		}
	}

	rm.mu.Lock()
	rm.conns[conn] = true
	rm.mu.Unlock()

	snap := rm.manager.Snapshot()
	h.send(rm, conn, outbound{Type: "snapshot", Snapshot: &snap})
}

func (h *Hub) leave(restaurantID string, conn *websocket.Conn) {
	conn.Close()

	h.mu.Lock()
	rm := h.rooms[restaurantID]
	if rm == nil {
		h.mu.Unlock()
		return
	}
	rm.mu.Lock()
	delete(rm.conns, conn)
	empty := len(rm.conns) == 0
	var flush []string
	if empty {
		for key := range rm.pending {
			flush = append(flush, key)
			delete(rm.pending, key)
		}
		delete(h.rooms, restaurantID)
	}
	rm.mu.Unlock()
	h.mu.Unlock()

	if !empty {
		return
	}
	// the last tab closed: land the in-flight keystrokes, then stop the mirror
	for _, key := range flush {
		h.debounce.FlushKey(key)
	}
	rm.manager.Stop()
}

func (h *Hub) readLoop(restaurantID string, conn *websocket.Conn) {
	defer h.leave(restaurantID, conn)
	for {
		var op inbound
		if err := conn.ReadJSON(&op); err != nil {
			return
		}
		h.handleOp(restaurantID, conn, op)
	}
}

func (h *Hub) handleOp(restaurantID string, conn *websocket.Conn, op inbound) {
	h.mu.Lock()
	rm := h.rooms[restaurantID]
	h.mu.Unlock()
	if rm == nil {
		return
	}

	switch op.Op {
	case "rename_category":
		if op.CategoryID == "" || strings.TrimSpace(op.Name) == "" {
			h.send(rm, conn, outbound{Type: "error", Message: "rename_category needs category_id and name"})
			return
		}
		h.queueRename(restaurantID, rm, renameTarget{categoryID: op.CategoryID}, op.Name)
	case "rename_item":
		if op.CategoryID == "" || op.ItemID == "" || strings.TrimSpace(op.Name) == "" {
			h.send(rm, conn, outbound{Type: "error", Message: "rename_item needs category_id, item_id and name"})
			return
		}
		h.queueRename(restaurantID, rm, renameTarget{categoryID: op.CategoryID, itemID: op.ItemID}, op.Name)
	default:
		h.send(rm, conn, outbound{Type: "error", Message: "unknown op: " + op.Op})
	}
}

func (h *Hub) queueRename(restaurantID string, rm *room, target renameTarget, name string) {
	key := renameKey(restaurantID, target)

	rm.mu.Lock()
	rm.pending[key] = target
	rm.mu.Unlock()

	h.debounce.Trigger(key, func() {
		rm.mu.Lock()
		delete(rm.pending, key)
		rm.mu.Unlock()

		var err error
		if target.itemID == "" {
			_, err = h.menus.RenameCategory(context.Background(), restaurantID, target.categoryID, name)
		} else {
			_, err = h.menus.RenameItem(context.Background(), restaurantID, target.categoryID, target.itemID, name)
		}
		if err != nil {
			log.Printf("[ws] debounced rename failed: %v", err)
		}
	})
}

func renameKey(restaurantID string, target renameTarget) string {
	if target.itemID == "" {
		return "rename:" + restaurantID + ":" + target.categoryID
	}
	return "rename:" + restaurantID + ":" + target.categoryID + "/" + target.itemID
}

// broadcast fans a fresh snapshot out to every tab of the room and drops
// pending renames whose entity no longer exists.
func (h *Hub) broadcast(rm *room, snap menusync.Snapshot) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	h.cancelVanishedLocked(rm, snap)
	for conn := range rm.conns {
		if err := conn.WriteJSON(outbound{Type: "snapshot", Snapshot: &snap}); err != nil {
			log.Printf("[ws] write error: %v", err)
			conn.Close()
			delete(rm.conns, conn)
		}
	}
}

func (h *Hub) send(rm *room, conn *websocket.Conn, msg outbound) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write error: %v", err)
		conn.Close()
		delete(rm.conns, conn)
	}
}

func (h *Hub) cancelVanishedLocked(rm *room, snap menusync.Snapshot) {
	if len(rm.pending) == 0 {
		return
	}
	alive := make(map[string]bool, len(snap.Categories))
	for _, cat := range snap.Categories {
		alive[cat.ID] = true
	}
	for key, target := range rm.pending {
		exists := alive[target.categoryID]
		if exists && target.itemID != "" {
			exists = false
			for _, item := range snap.Items[target.categoryID] {
				if item.ID == target.itemID {
					exists = true
					break
				}
			}
		}
		if !exists {
			h.debounce.Cancel(key)
			delete(rm.pending, key)
		}
	}
}
