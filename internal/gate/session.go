package gate

import "sync"

// SessionStore persists the three tier flags. Implementations write through on every Set and Clear.
type SessionStore interface {
	Get(tier Tier) bool
	Set(tier Tier) error
	Clear(tier Tier) error
	ClearAll() error
}

// Flags is a snapshot of the three tier flags.
type Flags struct {
	Visitor bool
	Admin   bool
	Owner   bool
}

// ReadFlags snapshots the store.
func ReadFlags(sessions SessionStore) Flags {
	return Flags{
		Visitor: sessions.Get(TierVisitor),
		Admin:   sessions.Get(TierAdmin),
		Owner:   sessions.Get(TierOwner),
	}
}

// Has reports the flag of a single tier.
func (flags Flags) Has(tier Tier) bool {
	switch tier {
	case TierVisitor:
		return flags.Visitor
	case TierAdmin:
		return flags.Admin
	case TierOwner:
		return flags.Owner
	default:
		return false
	}
}

// MemorySessionStore is a SessionStore backed by a string map laid out like the browser store.
type MemorySessionStore struct {
	mutex  sync.RWMutex
	values map[string]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{values: make(map[string]string)}
}

func (store *MemorySessionStore) Get(tier Tier) bool {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return store.values[tier.SessionKey()] == SessionValueAuthenticated
}

func (store *MemorySessionStore) Set(tier Tier) error {
	if !tier.Valid() {
		return ErrUnknownTier
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.values[tier.SessionKey()] = SessionValueAuthenticated
	return nil
}

func (store *MemorySessionStore) Clear(tier Tier) error {
	if !tier.Valid() {
		return ErrUnknownTier
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.values, tier.SessionKey())
	return nil
}

func (store *MemorySessionStore) ClearAll() error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	for _, tier := range Tiers {
		delete(store.values, tier.SessionKey())
	}
	return nil
}

// Value returns the raw persisted value for a key.
func (store *MemorySessionStore) Value(key string) (string, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	value, found := store.values[key]
	return value, found
}

func (store *MemorySessionStore) OwnerCredentialsVerified() bool {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return store.values[SessionKeyOwnerPending] == SessionValueAuthenticated
}

func (store *MemorySessionStore) MarkOwnerCredentialsVerified() error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.values[SessionKeyOwnerPending] = SessionValueAuthenticated
	return nil
}

func (store *MemorySessionStore) ClearOwnerCredentialsVerified() error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.values, SessionKeyOwnerPending)
	return nil
}
