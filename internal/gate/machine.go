package gate

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

const securityCodeField = "security_code"

var securityCodePattern = regexp.MustCompile(`^\d{6}$`)

// State is the position of a client in the tiered login flow.
type State int

const (
	StatePublic State = iota
	StateVisitor
	StateAdminPending
	StateAdminActive
	StateOwnerPending
	StateOwnerActive
)

var stateNames = map[State]string{
	StatePublic:       "public",
	StateVisitor:      "visitor",
	StateAdminPending: "admin_pending",
	StateAdminActive:  "admin_active",
	StateOwnerPending: "owner_pending",
	StateOwnerActive:  "owner_active",
}

func (state State) String() string {
	if name, found := stateNames[state]; found {
		return name
	}
	return "unknown"
}

// PendingOwnerStore remembers that the first owner login step succeeded.
type PendingOwnerStore interface {
	OwnerCredentialsVerified() bool
	MarkOwnerCredentialsVerified() error
	ClearOwnerCredentialsVerified() error
}

// NormalizeRoute strips a trailing slash from every route except the root.
func NormalizeRoute(route string) string {
	trimmed := strings.TrimSpace(route)
	if trimmed == "" {
		return RouteVisitorHome
	}
	if len(trimmed) > 1 {
		trimmed = strings.TrimRight(trimmed, "/")
		if trimmed == "" {
			return RouteVisitorHome
		}
	}
	return trimmed
}

// StateFor derives the state of a client requesting route with the given flags.
func StateFor(flags Flags, route string) State {
	switch NormalizeRoute(route) {
	case RouteOwnerLogin, RouteOwnerDashboard:
		if flags.Owner {
			return StateOwnerActive
		}
		return StateOwnerPending
	case RouteAdminLogin, RouteAdminDashboard:
		if flags.Admin {
			return StateAdminActive
		}
		return StateAdminPending
	default:
		if flags.Visitor {
			return StateVisitor
		}
		return StatePublic
	}
}

// Machine drives login, second-factor and logout transitions over a session.
type Machine struct {
	credentials CredentialVerifier
	sessions    SessionStore
	pending     PendingOwnerStore
}

// NewMachine constructs a Machine for a single client session.
func NewMachine(credentials CredentialVerifier, sessions SessionStore, pending PendingOwnerStore) *Machine {
	return &Machine{
		credentials: credentials,
		sessions:    sessions,
		pending:     pending,
	}
}

// Flags snapshots the session flags.
func (machine *Machine) Flags() Flags {
	return ReadFlags(machine.sessions)
}

// State returns the state of the client for route.
func (machine *Machine) State(route string) State {
	return StateFor(machine.Flags(), route)
}

// Decide returns the gate decision for route.
func (machine *Machine) Decide(route string) Decision {
	return Decide(machine.Flags(), route)
}

// OwnerAwaitingCode reports whether the owner credentials were accepted and the security code is outstanding.
func (machine *Machine) OwnerAwaitingCode() bool {
	return machine.pending != nil && machine.pending.OwnerCredentialsVerified() && !machine.sessions.Get(TierOwner)
}

// Login checks the candidate against the tier's credentials. Visitor and admin flags are
// set on success; the owner tier only advances to the security code step. A failed owner
// attempt discards any earlier accepted credentials.
func (machine *Machine) Login(ctx context.Context, tier Tier, candidate CredentialPair) (State, error) {
	if !tier.Valid() {
		return StatePublic, ErrUnknownTier
	}
	state, loginErr := machine.login(ctx, tier, candidate)
	if loginErr != nil && tier == TierOwner {
		if clearErr := machine.clearPendingOwner(); clearErr != nil {
			return state, errors.Join(loginErr, clearErr)
		}
	}
	return state, loginErr
}

func (machine *Machine) login(ctx context.Context, tier Tier, candidate CredentialPair) (State, error) {
	failureState := machine.pendingStateFor(tier)

	if validationErr := candidate.Validate(); validationErr != nil {
		return failureState, validationErr
	}

	matched, verifyErr := machine.credentials.Verify(ctx, tier, candidate)
	if verifyErr != nil {
		return failureState, verifyErr
	}
	if !matched {
		return failureState, ErrAuthMismatch
	}

	switch tier {
	case TierOwner:
		if machine.pending == nil {
			return failureState, ErrOwnerStepMissing
		}
		if markErr := machine.pending.MarkOwnerCredentialsVerified(); markErr != nil {
			return failureState, markErr
		}
		return StateOwnerPending, nil
	case TierAdmin:
		if setErr := machine.sessions.Set(TierAdmin); setErr != nil {
			return failureState, setErr
		}
		return StateAdminActive, nil
	default:
		if setErr := machine.sessions.Set(TierVisitor); setErr != nil {
			return failureState, setErr
		}
		return StateVisitor, nil
	}
}

// VerifySecurityCode completes the owner login. Any six-digit code is accepted.
func (machine *Machine) VerifySecurityCode(code string) (State, error) {
	if machine.pending == nil || !machine.pending.OwnerCredentialsVerified() {
		return StateOwnerPending, ErrOwnerStepMissing
	}
	if !securityCodePattern.MatchString(code) {
		return StateOwnerPending, ValidationError{Field: securityCodeField}
	}
	if setErr := machine.sessions.Set(TierOwner); setErr != nil {
		return StateOwnerPending, setErr
	}
	if clearErr := machine.pending.ClearOwnerCredentialsVerified(); clearErr != nil {
		return StateOwnerActive, clearErr
	}
	return StateOwnerActive, nil
}

// Logout clears the flag of the tier and returns the state the client falls back to.
// Visitor logout clears every tier; admin and owner logout leave the other flags alone.
func (machine *Machine) Logout(tier Tier) (State, error) {
	switch tier {
	case TierVisitor:
		if clearErr := machine.sessions.ClearAll(); clearErr != nil {
			return machine.fallbackState(), clearErr
		}
		if clearErr := machine.clearPendingOwner(); clearErr != nil {
			return StatePublic, clearErr
		}
		return StatePublic, nil
	case TierAdmin:
		if clearErr := machine.sessions.Clear(TierAdmin); clearErr != nil {
			return StateAdminActive, clearErr
		}
		return machine.fallbackState(), nil
	case TierOwner:
		if clearErr := machine.sessions.Clear(TierOwner); clearErr != nil {
			return StateOwnerActive, clearErr
		}
		if clearErr := machine.clearPendingOwner(); clearErr != nil {
			return machine.fallbackState(), clearErr
		}
		return machine.fallbackState(), nil
	default:
		return machine.fallbackState(), ErrUnknownTier
	}
}

func (machine *Machine) clearPendingOwner() error {
	if machine.pending == nil {
		return nil
	}
	return machine.pending.ClearOwnerCredentialsVerified()
}

func (machine *Machine) fallbackState() State {
	flags := machine.Flags()
	switch {
	case flags.Owner:
		return StateOwnerActive
	case flags.Admin:
		return StateAdminActive
	case flags.Visitor:
		return StateVisitor
	default:
		return StatePublic
	}
}

func (machine *Machine) pendingStateFor(tier Tier) State {
	switch tier {
	case TierAdmin:
		return StateAdminPending
	case TierOwner:
		return StateOwnerPending
	default:
		return StatePublic
	}
}
