package gate

// View identifies a page the gate can render.
type View string

const (
	ViewVisitorLogin   View = "visitor_login"
	ViewVisitorHome    View = "visitor_home"
	ViewAdminLogin     View = "admin_login"
	ViewAdminDashboard View = "admin_dashboard"
	ViewOwnerLogin     View = "owner_login"
	ViewOwnerDashboard View = "owner_dashboard"
	ViewNotFound       View = "not_found"
)

// DecisionKind tags a Decision.
type DecisionKind int

const (
	DecisionShowView DecisionKind = iota
	DecisionShowLogin
	DecisionRedirect
)

// Decision is the outcome of gating a request. Location is set only for redirects.
type Decision struct {
	Kind     DecisionKind
	Tier     Tier
	View     View
	Location string
}

// GuardResult reports whether a protected view may render.
type GuardResult struct {
	Allowed  bool
	Redirect string
}

// Guard checks the flag of tier only; the other flags are ignored.
func Guard(sessions SessionStore, tier Tier) GuardResult {
	return guardFlags(ReadFlags(sessions), tier)
}

func guardFlags(flags Flags, tier Tier) GuardResult {
	if flags.Has(tier) {
		return GuardResult{Allowed: true}
	}
	return GuardResult{Redirect: LoginRouteFor(tier)}
}

// Decide maps the flags and the requested route to the view to render.
// Guarded dashboards answer to their own tier flag. Every other route
// shows the visitor login until the visitor flag is set.
func Decide(flags Flags, route string) Decision {
	normalizedRoute := NormalizeRoute(route)

	switch normalizedRoute {
	case RouteAdminDashboard:
		return guardedDecision(flags, TierAdmin, ViewAdminDashboard)
	case RouteOwnerDashboard:
		return guardedDecision(flags, TierOwner, ViewOwnerDashboard)
	}

	if !flags.Visitor {
		return Decision{Kind: DecisionShowLogin, Tier: TierVisitor, View: ViewVisitorLogin}
	}

	switch normalizedRoute {
	case RouteVisitorHome:
		return Decision{Kind: DecisionShowView, Tier: TierVisitor, View: ViewVisitorHome}
	case RouteAdminLogin:
		return loginDecision(flags, TierAdmin, ViewAdminLogin)
	case RouteOwnerLogin:
		return loginDecision(flags, TierOwner, ViewOwnerLogin)
	default:
		return Decision{Kind: DecisionShowView, Tier: TierVisitor, View: ViewNotFound}
	}
}

func guardedDecision(flags Flags, tier Tier, view View) Decision {
	result := guardFlags(flags, tier)
	if !result.Allowed {
		return Decision{Kind: DecisionRedirect, Tier: tier, Location: result.Redirect}
	}
	return Decision{Kind: DecisionShowView, Tier: tier, View: view}
}

func loginDecision(flags Flags, tier Tier, view View) Decision {
	if flags.Has(tier) {
		return Decision{Kind: DecisionRedirect, Tier: tier, Location: DashboardRouteFor(tier)}
	}
	return Decision{Kind: DecisionShowLogin, Tier: tier, View: view}
}
