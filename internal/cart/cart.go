package cart

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"qrmenu/internal/domain"
)

var (
	ErrItemNotFound = errors.New("item not on this menu")
	ErrUnavailable  = errors.New("item is currently unavailable")
	ErrSizeRequired = errors.New("a size must be picked for this item")
	ErrUnknownSize  = errors.New("unknown size for this item")
	ErrLineNotFound = errors.New("nothing selected for this item")
)

// Key identifies one selection line: an item plus the picked size, empty
// for items without size variants.
type Key struct {
	ItemID string `json:"item_id"`
	Size   string `json:"size,omitempty"`
}

type Line struct {
	Key       Key     `json:"key"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

func (l Line) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Cart tracks a diner's selections against one resolved menu document.
// Unit prices are snapshotted from the cart's own menu at add time, so a
// later reprice does not silently change an existing selection. Adding an
// already-selected line again increments its quantity.
type Cart struct {
	mu    sync.Mutex
	menu  *domain.MenuDocument
	table string
	lines []Line
	index map[Key]int
}

func New(menu *domain.MenuDocument, table string) *Cart {
	return &Cart{
		menu:  menu,
		table: table,
		index: make(map[Key]int),
	}
}

func (c *Cart) Menu() *domain.MenuDocument { return c.menu }

func (c *Cart) Table() string { return c.table }

func (c *Cart) Add(itemID, size string) (Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.menu.FindItem(itemID)
	if !ok {
		return Line{}, ErrItemNotFound
	}
	if !item.Available {
		return Line{}, ErrUnavailable
	}

	var unitPrice float64
	if len(item.Sizes) > 0 {
		if size == "" {
			return Line{}, ErrSizeRequired
		}
		price, ok := item.SizePrice(size)
		if !ok {
			return Line{}, ErrUnknownSize
		}
		unitPrice = price
	} else {
		if size != "" {
			return Line{}, ErrUnknownSize
		}
		unitPrice = item.DisplayPrice()
	}

	key := Key{ItemID: itemID, Size: size}
	if idx, exists := c.index[key]; exists {
		c.lines[idx].Quantity++
		return c.lines[idx], nil
	}

	line := Line{Key: key, Name: item.Name, UnitPrice: unitPrice, Quantity: 1}
	c.lines = append(c.lines, line)
	c.index[key] = len(c.lines) - 1
	return line, nil
}

// Adjust changes a line's quantity by delta; at zero or below the line is
// removed. Returns the line as it stands afterwards and whether it is gone.
func (c *Cart) Adjust(itemID, size string, delta int) (Line, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key{ItemID: itemID, Size: size}
	idx, exists := c.index[key]
	if !exists {
		return Line{}, false, ErrLineNotFound
	}

	c.lines[idx].Quantity += delta
	if c.lines[idx].Quantity <= 0 {
		c.removeAt(idx)
		return Line{Key: key}, true, nil
	}
	return c.lines[idx], false, nil
}

func (c *Cart) Remove(itemID, size string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key{ItemID: itemID, Size: size}
	idx, exists := c.index[key]
	if !exists {
		return ErrLineNotFound
	}
	c.removeAt(idx)
	return nil
}

func (c *Cart) removeAt(idx int) {
	removed := c.lines[idx]
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	delete(c.index, removed.Key)
	for i := idx; i < len(c.lines); i++ {
		c.index[c.lines[i].Key] = i
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.index = make(map[Key]int)
}

// Lines returns the selections in the order they were first added.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}

// Summary renders the order as plain text ready to hand to the kitchen or
// paste into a chat.
func (c *Cart) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	currency := c.menu.Restaurant.Currency
	var b strings.Builder

	fmt.Fprintf(&b, "Order - %s\n", c.menu.Restaurant.Name)
	if c.table != "" {
		fmt.Fprintf(&b, "Table: %s\n", c.table)
	}
	b.WriteString("\n")

	if len(c.lines) == 0 {
		b.WriteString("(nothing selected)\n")
		return b.String()
	}

	var total float64
	for _, line := range c.lines {
		name := line.Name
		if line.Key.Size != "" {
			name = fmt.Sprintf("%s (%s)", name, line.Key.Size)
		}
		fmt.Fprintf(&b, "%d x %s - %s\n", line.Quantity, name, domain.FormatPrice(currency, line.Subtotal()))
		total += line.Subtotal()
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", domain.FormatPrice(currency, total))
	return b.String()
}
