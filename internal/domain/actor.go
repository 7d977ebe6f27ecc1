package domain

type Role string

const (
	RoleCustomer Role = "customer"
	RoleBarber   Role = "barber"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleBarber || r == RoleAdmin
}

// Actor is the authenticated caller of a ledger operation, resolved by the identity provider.
type Actor struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
