package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/socialai-labs/socialai-gateway/internal/identity"
	"github.com/socialai-labs/socialai-gateway/internal/user"
	pkgerrors "github.com/socialai-labs/socialai-gateway/pkg/errors"
	"github.com/socialai-labs/socialai-gateway/pkg/logger"
	"github.com/socialai-labs/socialai-gateway/pkg/metrics"
	"github.com/socialai-labs/socialai-gateway/pkg/store"
)

const genericFailureMessage = "Something went wrong. Please try again."

type identityClient interface {
	Login(ctx context.Context, email, password string) (user.User, error)
	ResetPassword(ctx context.Context, email string) error
	UpsertProfile(ctx context.Context, u user.User) error
}

// Result is the structured outcome handed back to the caller UI. Login,
// register, and reset-password report through it instead of raising
// errors across the manager boundary.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Profile is the payload required to register a new account.
type Profile struct {
	Name         string
	Email        string
	Password     string
	BusinessName string
}

// Subscriber receives a user snapshot and the derived authentication
// flag after every state change.
type Subscriber func(snapshot user.User, authenticated bool)

// Manager owns the device session: the in-memory user, its persisted
// counterpart in the session store, and every mutation path between
// them. It is the store's only writer. Reads and mutations are safe for
// concurrent use; each mutation writes memory and store together or not
// at all.
type Manager struct {
	store    store.Store
	identity identityClient
	logger   *logger.Logger
	metrics  *metrics.SessionMetrics

	mu      sync.RWMutex
	current *user.User
	subs    map[int]Subscriber
	nextSub int
}

// ManagerParams bundles the dependencies required to build a session manager.
type ManagerParams struct {
	Store    store.Store
	Identity identityClient
	Logger   *logger.Logger
	Metrics  *metrics.SessionMetrics
}

// NewManager constructs the manager and hydrates it from the session
// store. A missing or malformed stored record means "no session", never
// a construction failure.
func NewManager(ctx context.Context, params ManagerParams) (*Manager, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if params.Identity == nil {
		return nil, fmt.Errorf("identity client is required")
	}

	m := &Manager{
		store:    params.Store,
		identity: params.Identity,
		logger:   params.Logger,
		metrics:  params.Metrics,
		subs:     make(map[int]Subscriber),
	}
	m.hydrate(ctx)
	return m, nil
}

func (m *Manager) hydrate(ctx context.Context) {
	data, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logWarn(ctx, "session store unreadable, starting without a session")
			m.metrics.IncHydration("error")
			return
		}
		m.metrics.IncHydration("empty")
		return
	}

	var u user.User
	if err := json.Unmarshal(data, &u); err != nil || u.ID == "" {
		m.logWarn(ctx, "malformed session record, discarding")
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logError(ctx, "failed to discard malformed session record", clearErr)
		}
		m.metrics.IncHydration("malformed")
		return
	}

	m.current = &u
	m.metrics.IncHydration("restored")
}

// Login authenticates against the remote backend and establishes the
// device session. The store is left untouched when authentication fails.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		m.metrics.IncOperation("login", "validation")
		return Result{Success: false, Message: "Email and password are required."}
	}

	u, err := m.identity.Login(ctx, email, password)
	if err != nil {
		m.metrics.IncOperation("login", "failure")
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeUnauthorized {
			return Result{Success: false, Message: typed.Message()}
		}
		m.logError(ctx, "login request failed", err)
		return Result{Success: false, Message: genericFailureMessage}
	}

	// The backend's flat profile record carries no id. Assign one locally
	// so the persisted record survives the hydration check on restart.
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	if err := m.setUser(ctx, u); err != nil {
		m.logError(ctx, "failed to persist session after login", err)
		m.metrics.IncOperation("login", "failure")
		return Result{Success: false, Message: genericFailureMessage}
	}

	m.metrics.IncOperation("login", "success")
	return Result{Success: true, Message: "Logged in."}
}

// Register creates a skeleton user and persists it immediately so a
// restart mid-setup resumes the account instead of losing it. Remote
// account creation happens later, when the setup flow completes.
func (m *Manager) Register(ctx context.Context, profile Profile) Result {
	name := strings.TrimSpace(profile.Name)
	email := strings.TrimSpace(profile.Email)
	if name == "" || email == "" {
		m.metrics.IncOperation("register", "validation")
		return Result{Success: false, Message: "Name and email are required."}
	}

	u := user.User{
		ID:            uuid.NewString(),
		Name:          name,
		Email:         email,
		Password:      profile.Password,
		BusinessName:  strings.TrimSpace(profile.BusinessName),
		SetupComplete: false,
	}

	if err := m.setUser(ctx, u); err != nil {
		m.logError(ctx, "failed to persist session after registration", err)
		m.metrics.IncOperation("register", "failure")
		return Result{Success: false, Message: genericFailureMessage}
	}

	m.metrics.IncOperation("register", "success")
	return Result{Success: true, Message: "Account created."}
}

// Logout clears the in-memory user and removes the persisted record.
// Calling it without an active session is a no-op.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	if err := m.store.Clear(ctx); err != nil {
		m.mu.Unlock()
		m.logError(ctx, "failed to clear session store on logout", err)
		m.metrics.IncOperation("logout", "failure")
		return
	}
	m.current = nil
	m.mu.Unlock()

	m.metrics.IncOperation("logout", "success")
	m.notify()
}

// ResetPassword delegates to the backend. It never mutates local state
// and always reports through a Result so the caller can render the
// message regardless of outcome.
func (m *Manager) ResetPassword(ctx context.Context, email string) Result {
	email = strings.TrimSpace(email)
	if email == "" {
		m.metrics.IncOperation("reset_password", "validation")
		return Result{Success: false, Message: "Email is required."}
	}

	if err := m.identity.ResetPassword(ctx, email); err != nil {
		m.metrics.IncOperation("reset_password", "failure")
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return Result{Success: false, Message: typed.Message()}
		}
		m.logError(ctx, "password reset request failed", err)
		return Result{Success: false, Message: genericFailureMessage}
	}

	m.metrics.IncOperation("reset_password", "success")
	return Result{Success: true, Message: "Check your email for reset instructions."}
}

// UpdateUser merges the partial into the current user and writes the
// merged record back to the store synchronously. Without an active
// session it is a silent no-op: that situation is a programming error in
// the calling page, not a reportable condition.
func (m *Manager) UpdateUser(ctx context.Context, p user.Partial) {
	if p.IsZero() {
		return
	}

	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		m.logWarn(ctx, "updateUser called without an active session")
		return
	}

	merged := user.Merge(*m.current, p)
	if err := m.persist(ctx, merged); err != nil {
		m.mu.Unlock()
		m.logError(ctx, "failed to persist user update", err)
		m.metrics.IncOperation("update_user", "failure")
		return
	}
	m.current = &merged
	m.mu.Unlock()

	m.metrics.IncOperation("update_user", "success")
	m.notify()
}

// SaveUserToBackend sends the current user to the remote backend for
// durable persistence. The local store remains the source of truth for
// this session: a remote failure does not roll anything back.
// identity.ErrAlreadyExists passes through untouched so callers can map
// it to their own outcome.
func (m *Manager) SaveUserToBackend(ctx context.Context) error {
	snapshot, ok := m.CurrentUser()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session")
	}

	start := time.Now()
	err := m.identity.UpsertProfile(ctx, snapshot)
	switch {
	case err == nil:
		m.metrics.ObservePersist("success", time.Since(start))
	case errors.Is(err, identity.ErrAlreadyExists):
		m.metrics.ObservePersist("conflict", time.Since(start))
	default:
		m.metrics.ObservePersist("failure", time.Since(start))
		m.logError(ctx, "remote profile persistence failed", err)
	}
	return err
}

// CurrentUser returns a deep-copied snapshot of the session user.
func (m *Manager) CurrentUser() (user.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return user.User{}, false
	}
	return m.current.Clone(), true
}

// IsAuthenticated derives the authentication flag from the in-memory
// user. It is recomputed on every call, never cached.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Subscribe registers a callback invoked after every state change. The
// returned function removes the subscription.
func (m *Manager) Subscribe(fn Subscriber) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// setUser replaces the session user, writing the store first so memory
// and store change together or not at all.
func (m *Manager) setUser(ctx context.Context, u user.User) error {
	m.mu.Lock()
	if err := m.persist(ctx, u); err != nil {
		m.mu.Unlock()
		return err
	}
	m.current = &u
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *Manager) persist(ctx context.Context, u user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	if err := m.store.Save(ctx, data); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

func (m *Manager) notify() {
	m.mu.RLock()
	subs := make([]Subscriber, 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	var snapshot user.User
	authenticated := m.current != nil
	if authenticated {
		snapshot = m.current.Clone()
	}
	m.mu.RUnlock()

	for _, fn := range subs {
		fn(snapshot, authenticated)
	}
}

func (m *Manager) logWarn(ctx context.Context, msg string) {
	if m.logger != nil {
		m.logger.Warn(ctx, msg)
	}
}

func (m *Manager) logError(ctx context.Context, msg string, err error) {
	if m.logger != nil {
		m.logger.Error(ctx, msg, err)
	}
}
