package gateway

import (
	"context"
	"net/http"

	"github.com/mcoot/keyshop/internal/model"
)

// GetCart calls GET /carts
func (c *Client) GetCart(ctx context.Context) (*model.Cart, error) {
	var reply wireCart
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/carts"}, &reply); err != nil {
		return nil, err
	}
	return reply.toModel(), nil
}

// AddCartItem calls POST /carts/items
func (c *Client) AddCartItem(ctx context.Context, gameID int64, quantity int) error {
	_, err := c.send(ctx, request{
		method: http.MethodPost,
		path:   "/carts/items",
		body:   wireCartItemRequest{GameID: gameID, Quantity: quantity},
	})
	return err
}

// RemoveCartItem calls DELETE /carts/items, removing quantity copies of the game
func (c *Client) RemoveCartItem(ctx context.Context, gameID int64, quantity int) error {
	_, err := c.send(ctx, request{
		method: http.MethodDelete,
		path:   "/carts/items",
		body:   wireCartItemRequest{GameID: gameID, Quantity: quantity},
	})
	return err
}
