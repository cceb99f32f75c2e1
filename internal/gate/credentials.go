package gate

import (
	"context"
	"fmt"
	"sync"
)

const (
	credentialFieldUsername = "username"
	credentialFieldPassword = "password"

	errorMessageLoadOverride   = "gate: load admin override"
	errorMessageSaveOverride   = "gate: save admin override"
	errorMessageDeleteOverride = "gate: delete admin override"
)

// Demo credentials used when no configuration overrides them.
const (
	DefaultVisitorUsername = "1234"
	DefaultVisitorPassword = "12345"
	DefaultAdminUsername   = "tahabarakat"
	DefaultAdminPassword   = "taha1234"
	DefaultOwnerUsername   = "owner"
	DefaultOwnerPassword   = "owner123"
)

// CredentialPair is a username and password compared for exact equality.
type CredentialPair struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Matches reports whether both fields are identical. No normalization is applied.
func (pair CredentialPair) Matches(candidate CredentialPair) bool {
	return pair.Username == candidate.Username && pair.Password == candidate.Password
}

// Validate rejects pairs with an empty username or password.
func (pair CredentialPair) Validate() error {
	if pair.Username == "" {
		return ValidationError{Field: credentialFieldUsername}
	}
	if pair.Password == "" {
		return ValidationError{Field: credentialFieldPassword}
	}
	return nil
}

// DefaultCredentials groups the built-in pair of every tier.
type DefaultCredentials struct {
	Visitor CredentialPair
	Admin   CredentialPair
	Owner   CredentialPair
}

// DemoCredentials returns the demo credential set.
func DemoCredentials() DefaultCredentials {
	return DefaultCredentials{
		Visitor: CredentialPair{Username: DefaultVisitorUsername, Password: DefaultVisitorPassword},
		Admin:   CredentialPair{Username: DefaultAdminUsername, Password: DefaultAdminPassword},
		Owner:   CredentialPair{Username: DefaultOwnerUsername, Password: DefaultOwnerPassword},
	}
}

// OverrideRepository persists the single admin credential override.
type OverrideRepository interface {
	LoadAdminOverride(ctx context.Context) (CredentialPair, bool, error)
	SaveAdminOverride(ctx context.Context, pair CredentialPair) error
	DeleteAdminOverride(ctx context.Context) error
}

// CredentialVerifier checks a candidate pair against the effective pair of a tier.
type CredentialVerifier interface {
	Verify(ctx context.Context, tier Tier, candidate CredentialPair) (bool, error)
}

// CredentialStore holds the default pairs and the admin override.
type CredentialStore struct {
	defaults  DefaultCredentials
	overrides OverrideRepository
}

// NewCredentialStore constructs a CredentialStore. A nil repository keeps overrides in memory.
func NewCredentialStore(defaults DefaultCredentials, overrides OverrideRepository) *CredentialStore {
	if overrides == nil {
		overrides = NewMemoryOverrideRepository()
	}
	return &CredentialStore{
		defaults:  defaults,
		overrides: overrides,
	}
}

// Verify returns true only when both fields match the effective pair of the tier.
func (store *CredentialStore) Verify(ctx context.Context, tier Tier, candidate CredentialPair) (bool, error) {
	switch tier {
	case TierVisitor:
		return store.defaults.Visitor.Matches(candidate), nil
	case TierOwner:
		return store.defaults.Owner.Matches(candidate), nil
	case TierAdmin:
		current, currentErr := store.CurrentAdminCredentials(ctx)
		if currentErr != nil {
			return false, currentErr
		}
		return current.Matches(candidate), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
}

// SetAdminOverride replaces the admin override after validating it.
func (store *CredentialStore) SetAdminOverride(ctx context.Context, pair CredentialPair) error {
	if validationErr := pair.Validate(); validationErr != nil {
		return validationErr
	}
	if saveErr := store.overrides.SaveAdminOverride(ctx, pair); saveErr != nil {
		return fmt.Errorf("%s: %w", errorMessageSaveOverride, saveErr)
	}
	return nil
}

// ClearAdminOverride removes the override so the admin default applies again.
func (store *CredentialStore) ClearAdminOverride(ctx context.Context) error {
	if deleteErr := store.overrides.DeleteAdminOverride(ctx); deleteErr != nil {
		return fmt.Errorf("%s: %w", errorMessageDeleteOverride, deleteErr)
	}
	return nil
}

// CurrentAdminCredentials returns the override when present, else the admin default.
func (store *CredentialStore) CurrentAdminCredentials(ctx context.Context) (CredentialPair, error) {
	override, found, loadErr := store.overrides.LoadAdminOverride(ctx)
	if loadErr != nil {
		return CredentialPair{}, fmt.Errorf("%s: %w", errorMessageLoadOverride, loadErr)
	}
	if !found {
		return store.defaults.Admin, nil
	}
	return override, nil
}

// HasAdminOverride reports whether a stored override replaces the admin default.
func (store *CredentialStore) HasAdminOverride(ctx context.Context) (bool, error) {
	_, found, loadErr := store.overrides.LoadAdminOverride(ctx)
	if loadErr != nil {
		return false, fmt.Errorf("%s: %w", errorMessageLoadOverride, loadErr)
	}
	return found, nil
}

// MemoryOverrideRepository keeps the admin override in process memory.
type MemoryOverrideRepository struct {
	mutex    sync.RWMutex
	override *CredentialPair
}

func NewMemoryOverrideRepository() *MemoryOverrideRepository {
	return &MemoryOverrideRepository{}
}

func (repository *MemoryOverrideRepository) LoadAdminOverride(context.Context) (CredentialPair, bool, error) {
	repository.mutex.RLock()
	defer repository.mutex.RUnlock()
	if repository.override == nil {
		return CredentialPair{}, false, nil
	}
	return *repository.override, true, nil
}

func (repository *MemoryOverrideRepository) SaveAdminOverride(_ context.Context, pair CredentialPair) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	stored := pair
	repository.override = &stored
	return nil
}

func (repository *MemoryOverrideRepository) DeleteAdminOverride(context.Context) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	repository.override = nil
	return nil
}
