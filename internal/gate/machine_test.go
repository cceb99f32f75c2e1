package gate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
)

type machineHarness struct {
	machine  *gate.Machine
	sessions *gate.MemorySessionStore
}

func newMachineHarness() machineHarness {
	sessions := gate.NewMemorySessionStore()
	credentials := gate.NewCredentialStore(gate.DemoCredentials(), nil)
	return machineHarness{
		machine:  gate.NewMachine(credentials, sessions, sessions),
		sessions: sessions,
	}
}

func TestSessionFlagsAreIndependent(testingT *testing.T) {
	sessions := gate.NewMemorySessionStore()

	require.NoError(testingT, sessions.Set(gate.TierAdmin))
	require.True(testingT, sessions.Get(gate.TierAdmin))
	require.False(testingT, sessions.Get(gate.TierOwner))
	require.False(testingT, sessions.Get(gate.TierVisitor))

	value, found := sessions.Value(gate.SessionKeyAdmin)
	require.True(testingT, found)
	require.Equal(testingT, "true", value)

	require.NoError(testingT, sessions.Set(gate.TierOwner))
	require.NoError(testingT, sessions.Clear(gate.TierAdmin))
	require.True(testingT, sessions.Get(gate.TierOwner))

	_, found = sessions.Value(gate.SessionKeyAdmin)
	require.False(testingT, found)

	require.NoError(testingT, sessions.ClearAll())
	require.Equal(testingT, gate.Flags{}, gate.ReadFlags(sessions))
}

func TestFreshStateRedirectsAdminDashboardToAdminLogin(testingT *testing.T) {
	harness := newMachineHarness()

	decision := harness.machine.Decide(gate.RouteAdminDashboard)
	require.Equal(testingT, gate.DecisionRedirect, decision.Kind)
	require.Equal(testingT, gate.RouteAdminLogin, decision.Location)
}

func TestAdminLoginWithDefaultsOpensDashboard(testingT *testing.T) {
	harness := newMachineHarness()

	state, loginErr := harness.machine.Login(context.Background(), gate.TierAdmin, gate.CredentialPair{Username: "tahabarakat", Password: "taha1234"})
	require.NoError(testingT, loginErr)
	require.Equal(testingT, gate.StateAdminActive, state)

	value, found := harness.sessions.Value(gate.SessionKeyAdmin)
	require.True(testingT, found)
	require.Equal(testingT, "true", value)

	decision := harness.machine.Decide(gate.RouteAdminDashboard)
	require.Equal(testingT, gate.DecisionShowView, decision.Kind)
	require.Equal(testingT, gate.ViewAdminDashboard, decision.View)
}

func TestAdminLoginWithWrongPasswordKeepsRedirecting(testingT *testing.T) {
	harness := newMachineHarness()

	state, loginErr := harness.machine.Login(context.Background(), gate.TierAdmin, gate.CredentialPair{Username: "tahabarakat", Password: "wrong"})
	require.ErrorIs(testingT, loginErr, gate.ErrAuthMismatch)
	require.Equal(testingT, gate.StateAdminPending, state)

	_, found := harness.sessions.Value(gate.SessionKeyAdmin)
	require.False(testingT, found)

	decision := harness.machine.Decide(gate.RouteAdminDashboard)
	require.Equal(testingT, gate.DecisionRedirect, decision.Kind)
	require.Equal(testingT, gate.RouteAdminLogin, decision.Location)
}

func TestLoginRejectsEmptyFieldsBeforeComparing(testingT *testing.T) {
	harness := newMachineHarness()

	state, loginErr := harness.machine.Login(context.Background(), gate.TierVisitor, gate.CredentialPair{Username: "1234"})
	require.ErrorIs(testingT, loginErr, gate.ErrValidation)
	require.Equal(testingT, gate.StatePublic, state)
	require.False(testingT, harness.sessions.Get(gate.TierVisitor))
}

func TestOwnerLoginRequiresSixDigitSecurityCode(testingT *testing.T) {
	harness := newMachineHarness()
	ownerPair := gate.CredentialPair{Username: "owner", Password: "owner123"}

	state, loginErr := harness.machine.Login(context.Background(), gate.TierOwner, ownerPair)
	require.NoError(testingT, loginErr)
	require.Equal(testingT, gate.StateOwnerPending, state)
	require.True(testingT, harness.machine.OwnerAwaitingCode())
	require.False(testingT, harness.sessions.Get(gate.TierOwner))

	for _, invalidCode := range []string{"12a45", "12345", "1234567", "", " 123456"} {
		state, codeErr := harness.machine.VerifySecurityCode(invalidCode)
		require.ErrorIs(testingT, codeErr, gate.ErrValidation, invalidCode)
		require.Equal(testingT, gate.StateOwnerPending, state)
		require.False(testingT, harness.sessions.Get(gate.TierOwner))
	}

	state, codeErr := harness.machine.VerifySecurityCode("123456")
	require.NoError(testingT, codeErr)
	require.Equal(testingT, gate.StateOwnerActive, state)
	require.True(testingT, harness.sessions.Get(gate.TierOwner))
	require.False(testingT, harness.machine.OwnerAwaitingCode())
	require.Equal(testingT, gate.StateOwnerActive, harness.machine.State(gate.RouteOwnerDashboard))
}

func TestSecurityCodeWithoutCredentialsIsRejected(testingT *testing.T) {
	harness := newMachineHarness()

	state, codeErr := harness.machine.VerifySecurityCode("123456")
	require.ErrorIs(testingT, codeErr, gate.ErrOwnerStepMissing)
	require.Equal(testingT, gate.StateOwnerPending, state)
	require.False(testingT, harness.sessions.Get(gate.TierOwner))
}

func TestOwnerLoginWithWrongPasswordDoesNotAdvance(testingT *testing.T) {
	harness := newMachineHarness()

	_, loginErr := harness.machine.Login(context.Background(), gate.TierOwner, gate.CredentialPair{Username: "owner", Password: "nope"})
	require.ErrorIs(testingT, loginErr, gate.ErrAuthMismatch)
	require.False(testingT, harness.machine.OwnerAwaitingCode())
}

func TestFailedOwnerLoginDiscardsAcceptedCredentials(testingT *testing.T) {
	harness := newMachineHarness()

	_, loginErr := harness.machine.Login(context.Background(), gate.TierOwner, gate.CredentialPair{Username: "owner", Password: "owner123"})
	require.NoError(testingT, loginErr)
	require.True(testingT, harness.machine.OwnerAwaitingCode())

	state, loginErr := harness.machine.Login(context.Background(), gate.TierOwner, gate.CredentialPair{Username: "owner", Password: "WRONG"})
	require.ErrorIs(testingT, loginErr, gate.ErrAuthMismatch)
	require.Equal(testingT, gate.StateOwnerPending, state)
	require.False(testingT, harness.machine.OwnerAwaitingCode())

	_, codeErr := harness.machine.VerifySecurityCode("123456")
	require.ErrorIs(testingT, codeErr, gate.ErrOwnerStepMissing)
	require.False(testingT, harness.sessions.Get(gate.TierOwner))

	_, loginErr = harness.machine.Login(context.Background(), gate.TierOwner, gate.CredentialPair{Username: "owner", Password: "owner123"})
	require.NoError(testingT, loginErr)
	_, loginErr = harness.machine.Login(context.Background(), gate.TierOwner, gate.CredentialPair{Username: "owner"})
	require.ErrorIs(testingT, loginErr, gate.ErrValidation)
	require.False(testingT, harness.machine.OwnerAwaitingCode())
}

func TestAdminLogoutKeepsOwnerFlag(testingT *testing.T) {
	harness := newMachineHarness()
	require.NoError(testingT, harness.sessions.Set(gate.TierVisitor))
	require.NoError(testingT, harness.sessions.Set(gate.TierAdmin))
	require.NoError(testingT, harness.sessions.Set(gate.TierOwner))

	state, logoutErr := harness.machine.Logout(gate.TierAdmin)
	require.NoError(testingT, logoutErr)
	require.Equal(testingT, gate.StateOwnerActive, state)

	_, adminFound := harness.sessions.Value(gate.SessionKeyAdmin)
	require.False(testingT, adminFound)
	ownerValue, ownerFound := harness.sessions.Value(gate.SessionKeyOwner)
	require.True(testingT, ownerFound)
	require.Equal(testingT, "true", ownerValue)
	require.True(testingT, harness.sessions.Get(gate.TierVisitor))
}

func TestLogoutFallsBackToPriorTier(testingT *testing.T) {
	harness := newMachineHarness()
	require.NoError(testingT, harness.sessions.Set(gate.TierVisitor))
	require.NoError(testingT, harness.sessions.Set(gate.TierAdmin))
	require.NoError(testingT, harness.sessions.Set(gate.TierOwner))

	state, logoutErr := harness.machine.Logout(gate.TierOwner)
	require.NoError(testingT, logoutErr)
	require.Equal(testingT, gate.StateAdminActive, state)

	state, logoutErr = harness.machine.Logout(gate.TierAdmin)
	require.NoError(testingT, logoutErr)
	require.Equal(testingT, gate.StateVisitor, state)

	state, logoutErr = harness.machine.Logout(gate.TierVisitor)
	require.NoError(testingT, logoutErr)
	require.Equal(testingT, gate.StatePublic, state)
}

func TestVisitorLogoutClearsEveryTier(testingT *testing.T) {
	harness := newMachineHarness()
	require.NoError(testingT, harness.sessions.Set(gate.TierVisitor))
	require.NoError(testingT, harness.sessions.Set(gate.TierAdmin))
	require.NoError(testingT, harness.sessions.MarkOwnerCredentialsVerified())

	state, logoutErr := harness.machine.Logout(gate.TierVisitor)
	require.NoError(testingT, logoutErr)
	require.Equal(testingT, gate.StatePublic, state)
	require.Equal(testingT, gate.Flags{}, harness.machine.Flags())
	require.False(testingT, harness.sessions.OwnerCredentialsVerified())
}

func TestStateForFollowsRequestedRoute(testingT *testing.T) {
	testCases := []struct {
		name     string
		flags    gate.Flags
		route    string
		expected gate.State
	}{
		{name: "fresh root", flags: gate.Flags{}, route: "/", expected: gate.StatePublic},
		{name: "visitor root", flags: gate.Flags{Visitor: true}, route: "/", expected: gate.StateVisitor},
		{name: "visitor admin route", flags: gate.Flags{Visitor: true}, route: "/admin/login", expected: gate.StateAdminPending},
		{name: "admin admin route", flags: gate.Flags{Visitor: true, Admin: true}, route: "/admin/dashboard", expected: gate.StateAdminActive},
		{name: "admin owner route", flags: gate.Flags{Visitor: true, Admin: true}, route: "/owner/dashboard/", expected: gate.StateOwnerPending},
		{name: "owner owner route", flags: gate.Flags{Owner: true}, route: "/owner/login", expected: gate.StateOwnerActive},
	}

	for _, testCase := range testCases {
		testingT.Run(testCase.name, func(testingT *testing.T) {
			require.Equal(testingT, testCase.expected, gate.StateFor(testCase.flags, testCase.route))
		})
	}
}
