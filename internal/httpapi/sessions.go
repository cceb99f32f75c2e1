package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
)

const (
	// SessionName is the cookie carrying the tier flags.
	SessionName = "portfolio_session"

	sessionKeyAdminLoginAttempts = "adminLoginAttempts"
	sessionKeyFlashes            = "_flash"
	maxQueuedToasts              = 5
	sessionMaxAgeSeconds         = 30 * 24 * 60 * 60
	MinimumSessionSecretLength   = 32

	contextKeySessionStore  = "httpapi_session_store"
	logEventLoadSession     = "load_session"
	logEventSaveSession     = "save_session"
	logEventDecodeFlash     = "decode_flash"
	errorMessageShortSecret = "httpapi: session secret must be at least 32 bytes"
)

// ErrShortSessionSecret indicates the configured session secret is too short to sign cookies.
var ErrShortSessionSecret = errors.New(errorMessageShortSecret)

// SessionConfig captures cookie settings.
type SessionConfig struct {
	Secret       []byte
	SecureCookie bool
}

// SessionManager opens the cookie-backed session store of each request.
type SessionManager struct {
	store  sessions.Store
	logger *zap.Logger
}

func NewSessionManager(configuration SessionConfig, logger *zap.Logger) (*SessionManager, error) {
	if len(configuration.Secret) < MinimumSessionSecretLength {
		return nil, ErrShortSessionSecret
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cookieStore := sessions.NewCookieStore(configuration.Secret)
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAgeSeconds,
		HttpOnly: true,
		Secure:   configuration.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: cookieStore, logger: logger}, nil
}

// Open returns the session store of the request, reusing it for the lifetime of the request.
func (manager *SessionManager) Open(context *gin.Context) *CookieSessionStore {
	if existing, found := context.Get(contextKeySessionStore); found {
		if sessionStore, ok := existing.(*CookieSessionStore); ok {
			return sessionStore
		}
	}

	sessionInstance, sessionErr := manager.store.Get(context.Request, SessionName)
	if sessionErr != nil {
		// A tampered or stale cookie yields a fresh session.
		manager.logger.Warn(logEventLoadSession, zap.Error(sessionErr))
	}
	if sessionInstance == nil {
		sessionInstance = sessions.NewSession(manager.store, SessionName)
	}

	sessionStore := &CookieSessionStore{
		session: sessionInstance,
		context: context,
		logger:  manager.logger,
	}
	context.Set(contextKeySessionStore, sessionStore)
	return sessionStore
}

// CookieSessionStore implements gate.SessionStore and gate.PendingOwnerStore over a signed cookie.
// Every mutation is written to the response immediately.
type CookieSessionStore struct {
	session *sessions.Session
	context *gin.Context
	logger  *zap.Logger
}

func (store *CookieSessionStore) Get(tier gate.Tier) bool {
	return store.stringValue(tier.SessionKey()) == gate.SessionValueAuthenticated
}

func (store *CookieSessionStore) Set(tier gate.Tier) error {
	if !tier.Valid() {
		return gate.ErrUnknownTier
	}
	store.session.Values[tier.SessionKey()] = gate.SessionValueAuthenticated
	return store.save()
}

func (store *CookieSessionStore) Clear(tier gate.Tier) error {
	if !tier.Valid() {
		return gate.ErrUnknownTier
	}
	delete(store.session.Values, tier.SessionKey())
	return store.save()
}

func (store *CookieSessionStore) ClearAll() error {
	for _, tier := range gate.Tiers {
		delete(store.session.Values, tier.SessionKey())
	}
	delete(store.session.Values, sessionKeyAdminLoginAttempts)
	return store.save()
}

func (store *CookieSessionStore) OwnerCredentialsVerified() bool {
	return store.stringValue(gate.SessionKeyOwnerPending) == gate.SessionValueAuthenticated
}

func (store *CookieSessionStore) MarkOwnerCredentialsVerified() error {
	store.session.Values[gate.SessionKeyOwnerPending] = gate.SessionValueAuthenticated
	return store.save()
}

func (store *CookieSessionStore) ClearOwnerCredentialsVerified() error {
	delete(store.session.Values, gate.SessionKeyOwnerPending)
	return store.save()
}

// RecordFailedAdminLogin bumps the cosmetic failed-attempt counter and returns the new count.
func (store *CookieSessionStore) RecordFailedAdminLogin() int {
	attempts, _ := strconv.Atoi(store.stringValue(sessionKeyAdminLoginAttempts))
	attempts++
	store.session.Values[sessionKeyAdminLoginAttempts] = strconv.Itoa(attempts)
	_ = store.save()
	return attempts
}

func (store *CookieSessionStore) ResetFailedAdminLogins() {
	if _, found := store.session.Values[sessionKeyAdminLoginAttempts]; !found {
		return
	}
	delete(store.session.Values, sessionKeyAdminLoginAttempts)
	_ = store.save()
}

// AddToast queues a notification for the next rendered page. Only the newest toasts are kept
// so the cookie stays under the browser size limit.
func (store *CookieSessionStore) AddToast(toast Toast) {
	encoded, encodeErr := json.Marshal(toast)
	if encodeErr != nil {
		return
	}
	store.session.AddFlash(string(encoded))
	if queued, ok := store.session.Values[sessionKeyFlashes].([]interface{}); ok && len(queued) > maxQueuedToasts {
		store.session.Values[sessionKeyFlashes] = append([]interface{}(nil), queued[len(queued)-maxQueuedToasts:]...)
	}
	_ = store.save()
}

// ConsumeToasts returns and clears the queued notifications.
func (store *CookieSessionStore) ConsumeToasts() []Toast {
	flashes := store.session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	toasts := make([]Toast, 0, len(flashes))
	for _, flash := range flashes {
		encoded, ok := flash.(string)
		if !ok {
			continue
		}
		var toast Toast
		if decodeErr := json.Unmarshal([]byte(encoded), &toast); decodeErr != nil {
			store.logger.Warn(logEventDecodeFlash, zap.Error(decodeErr))
			continue
		}
		toasts = append(toasts, toast)
	}
	_ = store.save()
	return toasts
}

func (store *CookieSessionStore) stringValue(key string) string {
	text, ok := store.session.Values[key].(string)
	if !ok {
		return ""
	}
	return text
}

func (store *CookieSessionStore) save() error {
	if saveErr := store.session.Save(store.context.Request, store.context.Writer); saveErr != nil {
		store.logger.Warn(logEventSaveSession, zap.Error(saveErr))
		return saveErr
	}
	return nil
}
