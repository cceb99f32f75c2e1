package gate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
)

func TestGuardChecksOnlyItsOwnTier(testingT *testing.T) {
	allFlagCombinations := []gate.Flags{}
	for _, visitor := range []bool{false, true} {
		for _, admin := range []bool{false, true} {
			for _, owner := range []bool{false, true} {
				allFlagCombinations = append(allFlagCombinations, gate.Flags{Visitor: visitor, Admin: admin, Owner: owner})
			}
		}
	}

	for _, flags := range allFlagCombinations {
		for _, tier := range []gate.Tier{gate.TierAdmin, gate.TierOwner} {
			sessions := gate.NewMemorySessionStore()
			for _, candidateTier := range gate.Tiers {
				if flags.Has(candidateTier) {
					require.NoError(testingT, sessions.Set(candidateTier))
				}
			}

			result := gate.Guard(sessions, tier)
			if flags.Has(tier) {
				require.True(testingT, result.Allowed, "%+v %s", flags, tier)
				require.Empty(testingT, result.Redirect)
			} else {
				require.False(testingT, result.Allowed, "%+v %s", flags, tier)
				require.Equal(testingT, gate.LoginRouteFor(tier), result.Redirect)
			}
		}
	}
}

func TestDecideRoutes(testingT *testing.T) {
	testCases := []struct {
		name     string
		flags    gate.Flags
		route    string
		expected gate.Decision
	}{
		{
			name:     "fresh root shows visitor login",
			flags:    gate.Flags{},
			route:    "/",
			expected: gate.Decision{Kind: gate.DecisionShowLogin, Tier: gate.TierVisitor, View: gate.ViewVisitorLogin},
		},
		{
			name:     "fresh admin login shows visitor login",
			flags:    gate.Flags{},
			route:    "/admin/login",
			expected: gate.Decision{Kind: gate.DecisionShowLogin, Tier: gate.TierVisitor, View: gate.ViewVisitorLogin},
		},
		{
			name:     "visitor root",
			flags:    gate.Flags{Visitor: true},
			route:    "/",
			expected: gate.Decision{Kind: gate.DecisionShowView, Tier: gate.TierVisitor, View: gate.ViewVisitorHome},
		},
		{
			name:     "visitor admin login",
			flags:    gate.Flags{Visitor: true},
			route:    "/admin/login",
			expected: gate.Decision{Kind: gate.DecisionShowLogin, Tier: gate.TierAdmin, View: gate.ViewAdminLogin},
		},
		{
			name:     "admin login while admin is active",
			flags:    gate.Flags{Visitor: true, Admin: true},
			route:    "/admin/login",
			expected: gate.Decision{Kind: gate.DecisionRedirect, Tier: gate.TierAdmin, Location: gate.RouteAdminDashboard},
		},
		{
			name:     "owner dashboard without owner flag",
			flags:    gate.Flags{Visitor: true, Admin: true},
			route:    "/owner/dashboard",
			expected: gate.Decision{Kind: gate.DecisionRedirect, Tier: gate.TierOwner, Location: gate.RouteOwnerLogin},
		},
		{
			name:     "owner dashboard with only owner flag",
			flags:    gate.Flags{Owner: true},
			route:    "/owner/dashboard",
			expected: gate.Decision{Kind: gate.DecisionShowView, Tier: gate.TierOwner, View: gate.ViewOwnerDashboard},
		},
		{
			name:     "owner login form",
			flags:    gate.Flags{Visitor: true},
			route:    "/owner/login/",
			expected: gate.Decision{Kind: gate.DecisionShowLogin, Tier: gate.TierOwner, View: gate.ViewOwnerLogin},
		},
		{
			name:     "unknown route",
			flags:    gate.Flags{Visitor: true},
			route:    "/projects/unknown",
			expected: gate.Decision{Kind: gate.DecisionShowView, Tier: gate.TierVisitor, View: gate.ViewNotFound},
		},
	}

	for _, testCase := range testCases {
		testingT.Run(testCase.name, func(testingT *testing.T) {
			require.Equal(testingT, testCase.expected, gate.Decide(testCase.flags, testCase.route))
		})
	}
}
