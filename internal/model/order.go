package model

import "time"

// OrderItem is one purchased line
type OrderItem struct {
	GameID   int64
	Title    string
	Quantity int
	Price    float64
	Keys     []string
}

// Order is a completed purchase
type Order struct {
	ID          string
	CreatedAt   time.Time
	TotalAmount float64
	Items       []OrderItem
}

// Total returns the backend total, or the sum of the lines when the backend omitted it
func (o *Order) Total() float64 {
	if o.TotalAmount > 0 {
		return o.TotalAmount
	}
	var total float64
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ItemCount returns the number of purchased copies
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// OrderLine is a request line for placing an order
type OrderLine struct {
	GameID   int64
	Quantity int
}
