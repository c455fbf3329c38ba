package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/authcore/authcore/internal/apperr"
	"github.com/authcore/authcore/internal/auth"
	"github.com/authcore/authcore/internal/cache"
	"github.com/authcore/authcore/internal/middleware"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/service"
	"github.com/authcore/authcore/internal/token"
)

// memStore is an in-memory credential store for handler tests.
type memStore struct {
	users map[string]*model.User
	roles map[string][]string
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]*model.User),
		roles: make(map[string][]string),
	}
}

func (m *memStore) CreateUser(_ context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return apperr.Validation("email already exists")
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id string) (bool, error) {
	delete(m.users, id)
	return true, nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.Profile, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return user.Profile(), nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *memStore) HasRole(_ context.Context, userID, roleName string) (bool, error) {
	if _, ok := m.users[userID]; !ok {
		return false, apperr.NotFound("user not found")
	}
	for _, name := range m.roles[userID] {
		if name == roleName {
			return true, nil
		}
	}
	return false, nil
}

// memCache is a no-op profile cache; handler tests exercise the store path.
type memCache struct{}

func (memCache) GetProfile(context.Context, string) (*model.Profile, error) {
	return nil, cache.ErrCacheMiss
}
func (memCache) SetProfile(context.Context, *model.Profile) error { return nil }
func (memCache) DeleteProfile(context.Context, string) error      { return nil }

func newTestRouter(t *testing.T) (*chi.Mux, *memStore) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	tokens := token.NewService("test-signing-key", time.Hour, logger)
	svc := service.NewAuthService(store, auth.NewHasher(auth.MinCost), tokens, memCache{}, logger)
	authHandler := NewAuthHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.ValidateCredentials).Post("/signup", authHandler.SignUp)
		r.With(middleware.ValidateCredentials).Post("/signin", authHandler.SignIn)
		r.Get("/is-authenticated", authHandler.Authenticate)
		r.With(middleware.ValidateAdminCheck).Get("/is-admin", authHandler.IsAdmin)
		r.Delete("/users/{id}", authHandler.Destroy)
	})

	return r, store
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not an envelope: %v (body: %s)", err, rec.Body.String())
	}
	return rec, envelope
}

func TestSignUp_Created(t *testing.T) {
	t.Parallel()

	router, store := newTestRouter(t)

	rec, envelope := doJSON(t, router, "POST", "/api/v1/signup",
		`{"email":"alice@example.com","password":"s3cret"}`, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	if !envelope.Success {
		t.Error("expected success=true")
	}

	// The response must never carry the password hash.
	if strings.Contains(rec.Body.String(), "$2a$") || strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("response leaked the password hash")
	}

	if len(store.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(store.users))
	}
}

func TestSignUp_MissingFields(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec, envelope := doJSON(t, router, "POST", "/api/v1/signup",
		`{"email":"alice@example.com"}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if envelope.Success {
		t.Error("expected success=false")
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	body := `{"email":"dup@example.com","password":"s3cret"}`
	if rec, _ := doJSON(t, router, "POST", "/api/v1/signup", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("first signup failed with %d", rec.Code)
	}

	rec, envelope := doJSON(t, router, "POST", "/api/v1/signup", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if envelope.Err != "validation" {
		t.Errorf("expected validation kind in envelope, got %v", envelope.Err)
	}
}

func TestSignIn_And_Authenticate(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	if rec, _ := doJSON(t, router, "POST", "/api/v1/signup",
		`{"email":"bob@example.com","password":"hunter22"}`, nil); rec.Code != http.StatusCreated {
		t.Fatalf("signup failed with %d", rec.Code)
	}

	rec, envelope := doJSON(t, router, "POST", "/api/v1/signin",
		`{"email":"bob@example.com","password":"hunter22"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	tok, ok := envelope.Data.(string)
	if !ok || tok == "" {
		t.Fatalf("expected token string in data, got %v", envelope.Data)
	}

	rec, envelope = doJSON(t, router, "GET", "/api/v1/is-authenticated", "",
		map[string]string{"x-access-token": tok})
	if rec.Code != http.StatusOK {
		t.Fatalf("is-authenticated status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if userID, ok := envelope.Data.(string); !ok || userID == "" {
		t.Errorf("expected resolved user id in data, got %v", envelope.Data)
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	if rec, _ := doJSON(t, router, "POST", "/api/v1/signup",
		`{"email":"carol@example.com","password":"right"}`, nil); rec.Code != http.StatusCreated {
		t.Fatalf("signup failed with %d", rec.Code)
	}

	recWrong, envWrong := doJSON(t, router, "POST", "/api/v1/signin",
		`{"email":"carol@example.com","password":"wrong"}`, nil)
	if recWrong.Code != http.StatusUnauthorized {
		t.Fatalf("wrong-password status = %d, want 401", recWrong.Code)
	}

	recUnknown, envUnknown := doJSON(t, router, "POST", "/api/v1/signin",
		`{"email":"nobody@example.com","password":"whatever"}`, nil)
	if recUnknown.Code != http.StatusUnauthorized {
		t.Fatalf("unknown-email status = %d, want 401", recUnknown.Code)
	}

	// Same status and message either way; no credential enumeration.
	if envWrong.Message != envUnknown.Message {
		t.Errorf("sign-in failure messages differ: %q vs %q", envWrong.Message, envUnknown.Message)
	}
}

func TestAuthenticate_MissingOrBadToken(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, "GET", "/api/v1/is-authenticated", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", rec.Code)
	}

	rec, _ = doJSON(t, router, "GET", "/api/v1/is-authenticated", "",
		map[string]string{"x-access-token": "garbage"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", rec.Code)
	}
}

func TestIsAdmin(t *testing.T) {
	t.Parallel()

	router, store := newTestRouter(t)

	if rec, _ := doJSON(t, router, "POST", "/api/v1/signup",
		`{"email":"root@example.com","password":"s3cret"}`, nil); rec.Code != http.StatusCreated {
		t.Fatalf("signup failed with %d", rec.Code)
	}

	var adminID string
	for id := range store.users {
		adminID = id
	}
	store.roles[adminID] = []string{model.RoleAdmin}

	rec, envelope := doJSON(t, router, "GET", "/api/v1/is-admin",
		`{"id":"`+adminID+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("is-admin status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if envelope.Data != true {
		t.Errorf("expected data=true for admin, got %v", envelope.Data)
	}

	rec, _ = doJSON(t, router, "GET", "/api/v1/is-admin", `{"id":"no-such-user"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown-id status = %d, want 404", rec.Code)
	}

	rec, _ = doJSON(t, router, "GET", "/api/v1/is-admin", `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing-id status = %d, want 400", rec.Code)
	}
}

func TestDestroy_ThenTokenRejected(t *testing.T) {
	t.Parallel()

	router, store := newTestRouter(t)

	if rec, _ := doJSON(t, router, "POST", "/api/v1/signup",
		`{"email":"erin@example.com","password":"s3cret"}`, nil); rec.Code != http.StatusCreated {
		t.Fatalf("signup failed with %d", rec.Code)
	}

	_, envelope := doJSON(t, router, "POST", "/api/v1/signin",
		`{"email":"erin@example.com","password":"s3cret"}`, nil)
	tok := envelope.Data.(string)

	var userID string
	for id := range store.users {
		userID = id
	}

	rec, envelope := doJSON(t, router, "DELETE", "/api/v1/users/"+userID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("destroy status = %d, want 200", rec.Code)
	}
	if envelope.Data != true {
		t.Errorf("expected data=true, got %v", envelope.Data)
	}

	// Destroy is idempotent.
	if rec, _ := doJSON(t, router, "DELETE", "/api/v1/users/"+userID, "", nil); rec.Code != http.StatusOK {
		t.Errorf("second destroy status = %d, want 200", rec.Code)
	}

	// The still-unexpired token must no longer authenticate.
	rec, _ = doJSON(t, router, "GET", "/api/v1/is-authenticated", "",
		map[string]string{"x-access-token": tok})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("deleted-user token status = %d, want 401", rec.Code)
	}
}
