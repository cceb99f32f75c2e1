package gate

// Tier is one of the three independent access levels.
type Tier string

const (
	TierVisitor Tier = "visitor"
	TierAdmin   Tier = "admin"
	TierOwner   Tier = "owner"
)

// Session keys persisted for each tier. The visitor key predates the tiered naming.
const (
	SessionKeyVisitor = "isAuthenticated"
	SessionKeyAdmin   = "adminAuthenticated"
	SessionKeyOwner   = "ownerAuthenticated"

	// SessionKeyOwnerPending marks that the owner credentials were accepted and the security code is outstanding.
	SessionKeyOwnerPending = "ownerCredentialsVerified"

	// SessionValueAuthenticated is the literal stored under a tier key while the tier is active.
	SessionValueAuthenticated = "true"
)

// Routes served by the gate.
const (
	RouteVisitorHome    = "/"
	RouteAdminLogin     = "/admin/login"
	RouteAdminDashboard = "/admin/dashboard"
	RouteOwnerLogin     = "/owner/login"
	RouteOwnerDashboard = "/owner/dashboard"
)

// Tiers lists every tier in ascending order of privilege.
var Tiers = []Tier{TierVisitor, TierAdmin, TierOwner}

// Valid reports whether the tier is one of the known tiers.
func (tier Tier) Valid() bool {
	switch tier {
	case TierVisitor, TierAdmin, TierOwner:
		return true
	default:
		return false
	}
}

// SessionKey returns the persisted key holding the tier flag.
func (tier Tier) SessionKey() string {
	switch tier {
	case TierAdmin:
		return SessionKeyAdmin
	case TierOwner:
		return SessionKeyOwner
	case TierVisitor:
		return SessionKeyVisitor
	default:
		return ""
	}
}

func (tier Tier) String() string {
	return string(tier)
}

// LoginRouteFor returns the route that collects credentials for the tier.
func LoginRouteFor(tier Tier) string {
	switch tier {
	case TierAdmin:
		return RouteAdminLogin
	case TierOwner:
		return RouteOwnerLogin
	default:
		return RouteVisitorHome
	}
}

// DashboardRouteFor returns the protected route of the tier. The visitor tier has no dashboard.
func DashboardRouteFor(tier Tier) string {
	switch tier {
	case TierAdmin:
		return RouteAdminDashboard
	case TierOwner:
		return RouteOwnerDashboard
	default:
		return RouteVisitorHome
	}
}
