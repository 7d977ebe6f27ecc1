package config

import "groomosphere-backend/internal/domain"

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// RoutePolicy is the authentication requirement of a named route. An empty Roles list
// admits any authenticated caller.
type RoutePolicy struct {
	Level SecurityLevel
	Roles []domain.Role
}

func access(roles ...domain.Role) RoutePolicy {
	return RoutePolicy{Level: SecurityAccess, Roles: roles}
}

// EndpointSecurityConfig maps mux route names to their policy. Routes that are not
// listed require an access token.
var EndpointSecurityConfig = map[string]RoutePolicy{
	"Health": {Level: SecurityPublic},

	// Bookings
	"CreateBooking":     access(domain.RoleCustomer),
	"ListMyBookings":    access(domain.RoleCustomer, domain.RoleBarber),
	"GetBooking":        access(),
	"TransitionBooking": access(),
	"CancelBooking":     access(),
	"RateBooking":       access(domain.RoleCustomer),

	// Barbers
	"FindNearbyBarbers":     {Level: SecurityPublic},
	"GetBarber":             {Level: SecurityPublic},
	"OnboardBarber":         access(domain.RoleBarber),
	"UpdateBarberLocation":  access(domain.RoleBarber),
	"SetBarberAvailability": access(domain.RoleBarber),
	"UpdateBarberProfile":   access(domain.RoleBarber),
	"GetBarberStats":        access(domain.RoleBarber),

	// Admin
	"AdminDashboard":       access(domain.RoleAdmin),
	"AdminPendingBarbers":  access(domain.RoleAdmin),
	"AdminVerifyBarber":    access(domain.RoleAdmin),
	"AdminSetBarberActive": access(domain.RoleAdmin),
	"AdminListBookings":    access(domain.RoleAdmin),
	"AdminRevenue":         access(domain.RoleAdmin),

	// Payment gateway callbacks use an admin service token
	"PaymentWebhook": access(domain.RoleAdmin),
}

// PolicyFor returns the policy of a route, defaulting to access-protected.
func PolicyFor(routeName string) RoutePolicy {
	if p, ok := EndpointSecurityConfig[routeName]; ok {
		return p
	}
	return access()
}

// Allows reports whether role satisfies the policy's role list.
func (p RoutePolicy) Allows(role domain.Role) bool {
	if len(p.Roles) == 0 {
		return true
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
