package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrAuth                = errors.New("authentication failed")
	ErrCredentialsRequired = errors.New("fill in all fields")
	ErrUnknownRole         = errors.New("account role is not recognized")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrRoleRequired        = errors.New("role not permitted for this page")

	// Filter errors
	ErrInvalidPriceRange = errors.New("minimum price cannot be greater than maximum price")
	ErrInvalidPrice      = errors.New("price must be a non-negative number")

	// Cart errors
	ErrEmptyCart       = errors.New("cart is empty")
	ErrCartItemMissing = errors.New("item is not in the cart")

	// Seller form errors
	ErrTitleTooShort = errors.New("title must be at least 2 characters")
	ErrPriceRequired = errors.New("price must be greater than zero")
	ErrGenreRequired = errors.New("select at least one genre")
	ErrKeysRequired  = errors.New("choose a key file to upload")

	// Genre errors
	ErrUnknownGenre = errors.New("unknown genre")

	// Catalog errors
	ErrStaleResponse = errors.New("response superseded by a newer request")
	ErrGameNotFound  = errors.New("game not found")
)
