package request

// CredentialsRequest is the body of the login and register endpoints.
// JSON keys match case-insensitively, so both Email and email decode.
type CredentialsRequest struct {
	Email    string `json:"Email"`
	Username string `json:"Username"`
	Password string `json:"Password"`
	UserRole string `json:"UserRole"`
}

// Identifier returns whichever login name was supplied
func (c CredentialsRequest) Identifier() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Email
}

// CartItemRequest is the body of POST and DELETE /carts/items
type CartItemRequest struct {
	GameID   int64 `json:"GameId"`
	Quantity int   `json:"Quantity"`
}

// OrderRequest is the body of POST /orders
type OrderRequest struct {
	OrderItems []CartItemRequest `json:"OrderItems"`
}
