package model

import "strconv"

// CartItem is one line of the shopping cart
type CartItem struct {
	GameID   int64
	Title    string
	Price    float64
	Quantity int
}

// Subtotal returns price times quantity
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Cart is a snapshot of the backend cart
type Cart struct {
	Items []CartItem
}

// TotalQuantity sums the quantities of all lines
func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums the subtotals of all lines
func (c *Cart) TotalPrice() float64 {
	if c == nil {
		return 0
	}
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line for a game
func (c *Cart) Item(gameID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, item := range c.Items {
		if item.GameID == gameID {
			return item, true
		}
	}
	return CartItem{}, false
}

// BadgeCap is the largest count shown verbatim on the cart badge
const BadgeCap = 99

// Badge is the cart counter shown in the header and the menu
type Badge struct {
	Count   int
	Label   string
	Visible bool
}

// BadgeFor builds the badge for a cart snapshot
func BadgeFor(c *Cart) Badge {
	return NewBadge(c.TotalQuantity())
}

// NewBadge builds a badge for a raw count
func NewBadge(count int) Badge {
	if count <= 0 {
		return Badge{}
	}
	label := strconv.Itoa(count)
	if count > BadgeCap {
		label = strconv.Itoa(BadgeCap) + "+"
	}
	return Badge{Count: count, Label: label, Visible: true}
}
