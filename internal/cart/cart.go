// Package cart holds the shopper's cart: an ordered, id-keyed collection of
// products persisted to the browser's durable storage.
package cart

import (
	"github.com/angelmondragon/greengrocer-web/pkg/types"
	"github.com/shopspring/decimal"
)

// Item is one cart row. Quantity is always at least 1 while present.
type Item struct {
	Product  types.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

// Line is the order-creation view of an item.
type Line struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Cart is the in-memory collection. The zero value is an empty cart.
type Cart struct {
	items []Item
}

// New builds a cart from items, dropping invalid rows and merging duplicates.
func New(items []Item) *Cart {
	c := &Cart{}
	for _, item := range items {
		c.AddItem(&item.Product, item.Quantity)
	}
	return c
}

// AddItem appends the product or increases the quantity of its existing row.
// A nil product or one without a positive id is ignored; a quantity below 1 adds one.
func (c *Cart) AddItem(product *types.Product, quantity int) {
	if product == nil || product.ID <= 0 {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	if i := c.index(product.ID); i >= 0 {
		c.items[i].Quantity += quantity
		return
	}
	c.items = append(c.items, Item{Product: *product, Quantity: quantity})
}

func (c *Cart) RemoveItem(productID int64) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// UpdateQuantity replaces the quantity in place. Zero or less removes the row.
func (c *Cart) UpdateQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.items {
		if item.Quantity > 0 {
			total += item.Quantity
		}
	}
	return total
}

// TotalPrice sums current price times quantity over every row.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		if item.Quantity <= 0 {
			continue
		}
		total = total.Add(item.Product.CurrentPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Items returns a copy of the rows in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Lines returns the (product id, quantity) pairs sent when an order is created.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.items))
	for _, item := range c.items {
		lines = append(lines, Line{ProductID: item.Product.ID, Quantity: item.Quantity})
	}
	return lines
}

func (c *Cart) index(productID int64) int {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
