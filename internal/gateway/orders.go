package gateway

import (
	"context"
	"net/http"

	"github.com/mcoot/keyshop/internal/model"
)

// CreateOrder calls POST /orders
func (c *Client) CreateOrder(ctx context.Context, lines []model.OrderLine) (*model.Order, error) {
	body := wireOrderRequest{OrderItems: make([]wireCartItemRequest, 0, len(lines))}
	for _, line := range lines {
		body.OrderItems = append(body.OrderItems, wireCartItemRequest{GameID: line.GameID, Quantity: line.Quantity})
	}

	var reply wireOrder
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/orders", body: body}, &reply); err != nil {
		return nil, err
	}
	o := reply.toModel()
	return &o, nil
}

// ListOrders calls GET /orders
func (c *Client) ListOrders(ctx context.Context, page, pageSize int) (model.Page[model.Order], error) {
	var reply wirePage[wireOrder]
	q := pageQuery(page, pageSize)
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/orders", query: q}, &reply); err != nil {
		return model.Page[model.Order]{}, err
	}
	return toPage(reply, page, pageSize, wireOrder.toModel), nil
}
