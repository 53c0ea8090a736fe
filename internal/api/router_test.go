package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/accounts-api/internal/api/handler"
	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/service"
	"github.com/99minutos/accounts-api/internal/infrastructure/security"
)

// memoryRepo is a minimal in-memory ports.UserRepository.
type memoryRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (r *memoryRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return nil, domain.ErrUsernameExists
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
	}
	r.users[user.Username] = *user
	created := *user
	return &created, nil
}

func (r *memoryRepo) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.Username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	stored.FirstName, stored.LastName, stored.Address = user.FirstName, user.LastName, user.Address
	r.users[user.Username] = stored
	return &stored, nil
}

type testServer struct {
	t      *testing.T
	server *httptest.Server
}

func newTestServer(t *testing.T, checks map[string]handler.HealthCheck) *testServer {
	t.Helper()
	hasher, err := security.NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	issuer, err := security.NewJWTIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	repo := &memoryRepo{users: make(map[string]domain.User)}
	svc, err := service.NewAuthService(repo, hasher, issuer, zerolog.Nop())
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	e := NewRouter(Deps{AuthService: svc, Tokens: issuer, Checks: checks, Log: zerolog.Nop()})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testServer{t: t, server: srv}
}

func (s *testServer) do(method, path, token, body string) (int, map[string]any) {
	s.t.Helper()
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

const aliceJSON = `{"username":"alice","password":"secret1","first_name":"Alice","last_name":"Lee","email":"alice@x.com","address":"Addr1"}`

func TestRouter_AccountFlow(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := s.do(http.MethodPost, "/auth/register", "", aliceJSON)
	if code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %v", code, body)
	}
	if _, ok := body["token"]; ok {
		t.Fatalf("register must not issue a token")
	}

	code, body = s.do(http.MethodPost, "/auth/register", "", aliceJSON)
	if code != http.StatusConflict || body["error"] != "Username already exists" {
		t.Fatalf("duplicate register: got %d %v", code, body)
	}

	code, body = s.do(http.MethodPost, "/auth/register", "",
		`{"username":"alice2","password":"secret1","first_name":"A","last_name":"L","email":"alice@x.com","address":"A"}`)
	if code != http.StatusConflict || body["error"] != "Email already exists" {
		t.Fatalf("duplicate email: got %d %v", code, body)
	}

	code, wrong := s.do(http.MethodPost, "/auth/login", "", `{"username":"alice","password":"wrong"}`)
	_, ghost := s.do(http.MethodPost, "/auth/login", "", `{"username":"ghost","password":"wrong"}`)
	if code != http.StatusUnauthorized || wrong["error"] != ghost["error"] {
		t.Fatalf("login failures must be indistinguishable: %v vs %v", wrong, ghost)
	}

	code, body = s.do(http.MethodPost, "/auth/login", "", `{"username":"alice","password":"secret1"}`)
	if code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d %v", code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login: expected token")
	}

	code, body = s.do(http.MethodGet, "/auth/protected", token, "")
	user, _ := body["user"].(map[string]any)
	if code != http.StatusOK || user["username"] != "alice" || user["role"] != "user" {
		t.Fatalf("protected: got %d %v", code, body)
	}
	if _, leaked := user["hashed_password"]; leaked {
		t.Fatalf("password hash leaked")
	}

	code, body = s.do(http.MethodPut, "/auth/profile", token, `{"first_name":"Alicia","last_name":"Lee","address":"Addr2"}`)
	if code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d %v", code, body)
	}
	rotated, _ := body["token"].(string)
	code, body = s.do(http.MethodGet, "/auth/protected", rotated, "")
	user, _ = body["user"].(map[string]any)
	if code != http.StatusOK || user["first_name"] != "Alicia" || user["address"] != "Addr2" {
		t.Fatalf("rotated token: got %d %v", code, body)
	}

	code, _ = s.do(http.MethodPost, "/auth/login", "", `{"username":"alice","password":"secret1"}`)
	if code != http.StatusOK {
		t.Fatalf("login after update: expected 200, got %d", code)
	}
}

func TestRouter_LongPasswordSuffixDoesNotLogIn(t *testing.T) {
	s := newTestServer(t, nil)

	password := strings.Repeat("x", 72)
	code, body := s.do(http.MethodPost, "/auth/register", "",
		`{"username":"bob","password":"`+password+`","first_name":"Bob","last_name":"Ray","email":"bob@x.com","address":"A"}`)
	if code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %v", code, body)
	}

	code, body = s.do(http.MethodPost, "/auth/login", "", `{"username":"bob","password":"`+password+`WRONG-SUFFIX"}`)
	if code == http.StatusOK {
		t.Fatalf("password with extra suffix must not log in: %v", body)
	}
	if _, ok := body["token"]; ok {
		t.Fatalf("no token expected, got %v", body)
	}

	code, _ = s.do(http.MethodPost, "/auth/login", "", `{"username":"bob","password":"`+password+`"}`)
	if code != http.StatusOK {
		t.Fatalf("exact password: expected 200, got %d", code)
	}
}

func TestRouter_MultiByteOverlongPasswordIsRejected(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := s.do(http.MethodPost, "/auth/register", "",
		`{"username":"carol","password":"`+strings.Repeat("ä", 40)+`","first_name":"C","last_name":"D","email":"carol@x.com","address":"A"}`)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %v", code, body)
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t, nil)

	if code, _ := s.do(http.MethodGet, "/auth/protected", "", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if code, _ := s.do(http.MethodPut, "/auth/profile", "garbage", `{}`); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRouter_ValidationErrors(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := s.do(http.MethodPost, "/auth/register", "", `{"username":"al","password":"x"}`)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %v", code, body)
	}
	if code, _ := s.do(http.MethodPost, "/auth/login", "", `{`); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, map[string]handler.HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	if code, _ := s.do(http.MethodGet, "/health", "", ""); code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", code)
	}
	if code, body := s.do(http.MethodGet, "/health/ready", "", ""); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("readiness: got %d %v", code, body)
	}

	down := newTestServer(t, map[string]handler.HealthCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})
	if code, body := down.do(http.MethodGet, "/health/ready", "", ""); code != http.StatusServiceUnavailable || body["status"] != "degraded" {
		t.Fatalf("readiness degraded: got %d %v", code, body)
	}
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t, nil)
	_, _ = s.do(http.MethodGet, "/health", "", "")

	resp, err := http.Get(s.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", resp.StatusCode)
	}
}
