package model

// MenuVariant is which menu body applies to the session
type MenuVariant string

const (
	MenuNone     MenuVariant = ""
	MenuGuest    MenuVariant = "guest"
	MenuCustomer MenuVariant = "customer"
	MenuSeller   MenuVariant = "seller"
)

// VariantFor selects the menu body for a session
func VariantFor(s Session) MenuVariant {
	switch {
	case s.Is(RoleCustomer):
		return MenuCustomer
	case s.Is(RoleSeller):
		return MenuSeller
	default:
		return MenuGuest
	}
}
