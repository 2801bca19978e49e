package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/socialai-labs/socialai-gateway/internal/identity"
	"github.com/socialai-labs/socialai-gateway/internal/user"
	pkgerrors "github.com/socialai-labs/socialai-gateway/pkg/errors"
	"github.com/socialai-labs/socialai-gateway/pkg/store"
)

type memoryStore struct {
	data     []byte
	saves    int
	clears   int
	saveErr  error
	clearErr error
	loadErr  error
}

func (s *memoryStore) Load(ctx context.Context) ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.data == nil {
		return nil, store.ErrNotFound
	}
	return s.data, nil
}

func (s *memoryStore) Save(ctx context.Context, data []byte) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data = append([]byte(nil), data...)
	return nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.data = nil
	return nil
}

type stubIdentity struct {
	loginUser user.User
	loginErr  error
	resetErr  error
	upsertErr error
	upserted  *user.User
}

func (s *stubIdentity) Login(ctx context.Context, email, password string) (user.User, error) {
	if s.loginErr != nil {
		return user.User{}, s.loginErr
	}
	return s.loginUser, nil
}

func (s *stubIdentity) ResetPassword(ctx context.Context, email string) error {
	return s.resetErr
}

func (s *stubIdentity) UpsertProfile(ctx context.Context, u user.User) error {
	s.upserted = &u
	return s.upsertErr
}

func newTestManager(t *testing.T, st store.Store, id identityClient) *Manager {
	t.Helper()
	m, err := NewManager(context.Background(), ManagerParams{Store: st, Identity: id})
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	return m
}

func TestNewManagerRequiresDependencies(t *testing.T) {
	if _, err := NewManager(context.Background(), ManagerParams{Identity: &stubIdentity{}}); err == nil {
		t.Fatal("expected error without a store")
	}
	if _, err := NewManager(context.Background(), ManagerParams{Store: &memoryStore{}}); err == nil {
		t.Fatal("expected error without an identity client")
	}
}

func TestHydrateRestoresSession(t *testing.T) {
	saved, _ := json.Marshal(user.User{ID: "u-1", Name: "Ana", Email: "ana@padaria.com", SetupComplete: true})
	st := &memoryStore{data: saved}

	m := newTestManager(t, st, &stubIdentity{})

	if !m.IsAuthenticated() {
		t.Fatal("expected an authenticated session after hydration")
	}
	u, ok := m.CurrentUser()
	if !ok || u.Name != "Ana" || !u.SetupComplete {
		t.Fatalf("unexpected hydrated user: %+v", u)
	}
}

func TestHydrateMalformedRecordMeansNoSession(t *testing.T) {
	st := &memoryStore{data: []byte("{not json")}

	m := newTestManager(t, st, &stubIdentity{})

	if m.IsAuthenticated() {
		t.Fatal("malformed record must not produce a session")
	}
	if st.clears != 1 {
		t.Fatalf("expected the malformed record to be discarded, clears = %d", st.clears)
	}
}

func TestHydrateStoreErrorMeansNoSession(t *testing.T) {
	st := &memoryStore{loadErr: errors.New("disk on fire")}

	m := newTestManager(t, st, &stubIdentity{})

	if m.IsAuthenticated() {
		t.Fatal("unreadable store must not produce a session")
	}
}

func TestLoginPersistsSession(t *testing.T) {
	st := &memoryStore{}
	id := &stubIdentity{loginUser: user.User{ID: "u-1", Name: "Ana", Email: "ana@padaria.com"}}
	m := newTestManager(t, st, id)

	res := m.Login(context.Background(), "ana@padaria.com", "secret")
	if !res.Success {
		t.Fatalf("login failed: %s", res.Message)
	}
	if !m.IsAuthenticated() {
		t.Fatal("expected authenticated session after login")
	}

	var stored user.User
	if err := json.Unmarshal(st.data, &stored); err != nil {
		t.Fatalf("stored record is not valid JSON: %v", err)
	}
	if stored.ID != "u-1" || stored.Email != "ana@padaria.com" {
		t.Fatalf("unexpected stored record: %+v", stored)
	}
}

func TestLoginAssignsIDWhenBackendOmitsOne(t *testing.T) {
	st := &memoryStore{}
	id := &stubIdentity{loginUser: user.User{Name: "Ana", Email: "ana@padaria.com"}}
	m := newTestManager(t, st, id)

	res := m.Login(context.Background(), "ana@padaria.com", "secret")
	if !res.Success {
		t.Fatalf("login failed: %s", res.Message)
	}
	u, ok := m.CurrentUser()
	if !ok || u.ID == "" {
		t.Fatal("expected a locally assigned id for an id-less backend profile")
	}

	second := newTestManager(t, st, id)
	got, ok := second.CurrentUser()
	if !ok {
		t.Fatal("expected the session to survive a restart")
	}
	if got.ID != u.ID || got.Email != u.Email {
		t.Fatalf("restored session differs: got %+v want %+v", got, u)
	}
	if st.clears != 0 {
		t.Fatalf("hydration must not discard the record, clears = %d", st.clears)
	}
}

func TestLoginFailureLeavesStoreUntouched(t *testing.T) {
	st := &memoryStore{}
	id := &stubIdentity{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials")}
	m := newTestManager(t, st, id)

	res := m.Login(context.Background(), "ana@padaria.com", "wrong")
	if res.Success {
		t.Fatal("expected login to fail")
	}
	if res.Message != "Invalid credentials" {
		t.Fatalf("expected backend message to surface, got %q", res.Message)
	}
	if st.saves != 0 {
		t.Fatalf("failed login must not write the store, saves = %d", st.saves)
	}
	if m.IsAuthenticated() {
		t.Fatal("failed login must not establish a session")
	}
}

func TestLoginValidatesInput(t *testing.T) {
	m := newTestManager(t, &memoryStore{}, &stubIdentity{})

	if res := m.Login(context.Background(), "", "secret"); res.Success {
		t.Fatal("expected validation failure without email")
	}
	if res := m.Login(context.Background(), "ana@padaria.com", ""); res.Success {
		t.Fatal("expected validation failure without password")
	}
}

func TestLoginSaveFailureRollsBackMemory(t *testing.T) {
	st := &memoryStore{saveErr: errors.New("disk full")}
	id := &stubIdentity{loginUser: user.User{ID: "u-1", Email: "ana@padaria.com"}}
	m := newTestManager(t, st, id)

	res := m.Login(context.Background(), "ana@padaria.com", "secret")
	if res.Success {
		t.Fatal("expected login to fail when the store write fails")
	}
	if m.IsAuthenticated() {
		t.Fatal("memory and store must move together")
	}
}

func TestRegisterCreatesSkeletonUser(t *testing.T) {
	st := &memoryStore{}
	m := newTestManager(t, st, &stubIdentity{})

	res := m.Register(context.Background(), Profile{Name: "Ana", Email: "ana@padaria.com", Password: "secret"})
	if !res.Success {
		t.Fatalf("register failed: %s", res.Message)
	}

	u, ok := m.CurrentUser()
	if !ok {
		t.Fatal("expected a session after registration")
	}
	if u.ID == "" {
		t.Fatal("expected a locally assigned id")
	}
	if u.SetupComplete {
		t.Fatal("a fresh registration must start with setup incomplete")
	}
	if st.saves != 1 {
		t.Fatalf("expected the skeleton to be persisted immediately, saves = %d", st.saves)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	st := &memoryStore{}
	m := newTestManager(t, st, &stubIdentity{})

	m.Register(context.Background(), Profile{Name: "Ana", Email: "ana@padaria.com"})
	m.Logout(context.Background())
	if m.IsAuthenticated() {
		t.Fatal("expected no session after logout")
	}
	if st.data != nil {
		t.Fatal("expected the stored record to be removed")
	}

	m.Logout(context.Background())
	m.Logout(context.Background())
	if st.clears != 1 {
		t.Fatalf("repeated logout must not touch the store again, clears = %d", st.clears)
	}
}

func TestUpdateUserMergesAndPersists(t *testing.T) {
	st := &memoryStore{}
	m := newTestManager(t, st, &stubIdentity{})
	m.Register(context.Background(), Profile{Name: "Ana", Email: "ana@padaria.com"})

	m.UpdateUser(context.Background(), user.Partial{
		BusinessName: user.Ptr("Padaria da Ana"),
		BusinessInfo: &user.BusinessInfoPatch{Industry: user.Ptr("Food & Beverage")},
	})
	m.UpdateUser(context.Background(), user.Partial{
		BusinessInfo: &user.BusinessInfoPatch{Description: user.Ptr("Neighborhood bakery")},
	})

	u, _ := m.CurrentUser()
	if u.BusinessInfo == nil || u.BusinessInfo.Industry != "Food & Beverage" || u.BusinessInfo.Description != "Neighborhood bakery" {
		t.Fatalf("merge lost sibling fields: %+v", u.BusinessInfo)
	}

	var stored user.User
	if err := json.Unmarshal(st.data, &stored); err != nil {
		t.Fatalf("stored record is not valid JSON: %v", err)
	}
	if stored.BusinessInfo == nil || stored.BusinessInfo.Industry != "Food & Beverage" {
		t.Fatalf("store out of sync with memory: %+v", stored.BusinessInfo)
	}
}

func TestUpdateUserWithoutSessionIsNoOp(t *testing.T) {
	st := &memoryStore{}
	m := newTestManager(t, st, &stubIdentity{})

	m.UpdateUser(context.Background(), user.Partial{Name: user.Ptr("Ana")})
	if st.saves != 0 {
		t.Fatalf("no-op update must not write the store, saves = %d", st.saves)
	}
}

func TestUpdateUserPersistFailureKeepsOldState(t *testing.T) {
	st := &memoryStore{}
	m := newTestManager(t, st, &stubIdentity{})
	m.Register(context.Background(), Profile{Name: "Ana", Email: "ana@padaria.com"})

	st.saveErr = errors.New("disk full")
	m.UpdateUser(context.Background(), user.Partial{Name: user.Ptr("Renamed")})

	u, _ := m.CurrentUser()
	if u.Name != "Ana" {
		t.Fatalf("failed persist must not mutate memory, name = %q", u.Name)
	}
}

func TestResetPasswordNeverMutatesState(t *testing.T) {
	st := &memoryStore{}
	m := newTestManager(t, st, &stubIdentity{})
	m.Register(context.Background(), Profile{Name: "Ana", Email: "ana@padaria.com"})
	before := append([]byte(nil), st.data...)

	res := m.ResetPassword(context.Background(), "ana@padaria.com")
	if !res.Success {
		t.Fatalf("reset failed: %s", res.Message)
	}
	if string(st.data) != string(before) {
		t.Fatal("reset-password must not touch the session record")
	}
}

func TestResetPasswordSurfacesNotFound(t *testing.T) {
	id := &stubIdentity{resetErr: pkgerrors.New(pkgerrors.CodeNotFound, "No account for that email")}
	m := newTestManager(t, &memoryStore{}, id)

	res := m.ResetPassword(context.Background(), "nobody@example.com")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Message != "No account for that email" {
		t.Fatalf("unexpected message: %q", res.Message)
	}
}

func TestSaveUserToBackendPassesConflictThrough(t *testing.T) {
	id := &stubIdentity{upsertErr: identity.ErrAlreadyExists}
	m := newTestManager(t, &memoryStore{}, id)
	m.Register(context.Background(), Profile{Name: "Ana", Email: "ana@padaria.com"})

	err := m.SaveUserToBackend(context.Background())
	if !errors.Is(err, identity.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSaveUserToBackendFailureKeepsLocalState(t *testing.T) {
	st := &memoryStore{}
	id := &stubIdentity{upsertErr: pkgerrors.New(pkgerrors.CodeDependency, "backend unavailable")}
	m := newTestManager(t, st, id)
	m.Register(context.Background(), Profile{Name: "Ana", Email: "ana@padaria.com"})
	before := append([]byte(nil), st.data...)

	if err := m.SaveUserToBackend(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if string(st.data) != string(before) {
		t.Fatal("remote failure must not roll back the local record")
	}
	if !m.IsAuthenticated() {
		t.Fatal("remote failure must not drop the session")
	}
}

func TestSaveUserToBackendWithoutSession(t *testing.T) {
	m := newTestManager(t, &memoryStore{}, &stubIdentity{})

	err := m.SaveUserToBackend(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestSubscribeReceivesStateChanges(t *testing.T) {
	m := newTestManager(t, &memoryStore{}, &stubIdentity{})

	var calls []bool
	unsubscribe := m.Subscribe(func(_ user.User, authenticated bool) {
		calls = append(calls, authenticated)
	})

	m.Register(context.Background(), Profile{Name: "Ana", Email: "ana@padaria.com"})
	m.Logout(context.Background())
	unsubscribe()
	m.Register(context.Background(), Profile{Name: "Ana", Email: "ana@padaria.com"})

	if len(calls) != 2 || calls[0] != true || calls[1] != false {
		t.Fatalf("unexpected notifications: %v", calls)
	}
}

func TestReloadReproducesSession(t *testing.T) {
	st := &memoryStore{}
	first := newTestManager(t, st, &stubIdentity{})
	first.Register(context.Background(), Profile{Name: "Ana", Email: "ana@padaria.com"})
	first.UpdateUser(context.Background(), user.Partial{
		BusinessName: user.Ptr("Padaria da Ana"),
		BusinessInfo: &user.BusinessInfoPatch{Industry: user.Ptr("Food & Beverage")},
	})

	second := newTestManager(t, st, &stubIdentity{})
	got, ok := second.CurrentUser()
	if !ok {
		t.Fatal("expected the session to survive a restart")
	}
	want, _ := first.CurrentUser()
	if got.ID != want.ID || got.BusinessName != want.BusinessName || got.BusinessInfo.Industry != want.BusinessInfo.Industry {
		t.Fatalf("restored session differs: got %+v want %+v", got, want)
	}
}
