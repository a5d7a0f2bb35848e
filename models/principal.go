package models

// Roles a principal may carry.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// Principal is the authenticated caller resolved at the HTTP boundary.
type Principal struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`
}

func (p Principal) IsBuyer() bool  { return p.Role == RoleBuyer }
func (p Principal) IsSeller() bool { return p.Role == RoleSeller }
