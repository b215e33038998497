// Package fakeapi is an in-process stand-in for the ledger REST API. It
// issues real signed JWTs and mirrors the backend's status codes and error
// bodies closely enough to exercise the SDK end to end.
package fakeapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// APIPrefix is the path prefix of every endpoint.
const APIPrefix = "/api/v1"

// User is a registered account.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	DateJoined time.Time `json:"date_joined"`

	password string
}

type response struct {
	status int
	body   any
}

type gate struct {
	want    int
	arrived int
	release chan struct{}
}

// Server is a fake backend listening on a local port.
type Server struct {
	*httptest.Server

	signer     *signer
	accessTTL  time.Duration
	refreshTTL time.Duration
	rotate     bool

	mu        sync.Mutex
	clock     func() time.Time
	nextID    int64
	users     map[string]*User
	revoked   map[string]bool
	passkeys  map[string]*passkey // by credential id
	logins    map[string]string   // passkey login session cookie -> challenge
	resources map[string][]map[string]any
	calls     map[string]int
	responses map[string]response
	gates     map[string]*gate
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s, err := newServer()
	if err != nil {
		t.Fatalf("fakeapi: %v", err)
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func newServer() (*Server, error) {
	sg, err := newSigner()
	if err != nil {
		return nil, err
	}
	return &Server{
		signer:     sg,
		accessTTL:  15 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
		clock:      time.Now,
		users:      make(map[string]*User),
		revoked:    make(map[string]bool),
		passkeys:   make(map[string]*passkey),
		logins:     make(map[string]string),
		resources:  make(map[string][]map[string]any),
		calls:      make(map[string]int),
		responses:  make(map[string]response),
		gates:      make(map[string]*gate),
	}, nil
}

// BaseURL is the API root to hand to a client.
func (s *Server) BaseURL() string {
	return s.URL + APIPrefix
}

// SetClock replaces the time source used to issue and verify tokens.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = now
}

// RotateRefreshTokens makes the refresh endpoint issue a new refresh token
// and blacklist the old one.
func (s *Server) RotateRefreshTokens(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotate = on
}

func (s *Server) now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock()
}

// AddUser registers a user directly.
func (s *Server) AddUser(username, password string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, username+"@example.com", password, "", "")
}

func (s *Server) addUserLocked(username, email, password, first, last string) *User {
	s.nextID++
	u := &User{
		ID:         s.nextID,
		Username:   username,
		Email:      email,
		FirstName:  first,
		LastName:   last,
		DateJoined: s.clock().UTC().Truncate(time.Second),
		password:   password,
	}
	s.users[username] = u
	return u
}

func (s *Server) userByID(id int64) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// IssueTokens mints a token pair for an existing user.
func (s *Server) IssueTokens(username string) (access, refresh string) {
	s.mu.Lock()
	u := s.users[username]
	s.mu.Unlock()
	if u == nil {
		return "", ""
	}
	access, refresh, _ = s.issue(u)
	return access, refresh
}

func (s *Server) issue(u *User) (access, refresh string, err error) {
	now := s.now()
	if access, err = s.signer.sign(u.ID, tokenTypeAccess, s.accessTTL, now); err != nil {
		return "", "", err
	}
	if refresh, err = s.signer.sign(u.ID, tokenTypeRefresh, s.refreshTTL, now); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Revoked reports whether a refresh token has been blacklisted.
func (s *Server) Revoked(refresh string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[refresh]
}

// Calls returns how many requests hit method and path, where path is
// relative to APIPrefix (for example "/auth/me/").
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// Respond makes every request to method and path answer with status and
// body instead of the normal handler.
func (s *Server) Respond(method, path string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[method+" "+path] = response{status: status, body: body}
}

// Gate holds requests to method and path until n of them have arrived, so
// they are in flight at the same time.
func (s *Server) Gate(method, path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gates[method+" "+path] = &gate{want: n, release: make(chan struct{})}
}

// intercept counts calls and applies gates and canned responses.
func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, APIPrefix)

		s.mu.Lock()
		s.calls[key]++
		g := s.gates[key]
		var release chan struct{}
		if g != nil {
			g.arrived++
			if g.arrived == g.want {
				close(g.release)
			}
			release = g.release
		}
		resp, canned := s.responses[key]
		s.mu.Unlock()

		if release != nil {
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
		}

		if canned {
			if resp.body == nil {
				w.WriteHeader(resp.status)
				return
			}
			writeJSON(w, resp.status, resp.body)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	p := APIPrefix

	mux.HandleFunc("POST "+p+"/auth/register/", s.handleRegister)
	mux.HandleFunc("POST "+p+"/auth/login/", s.handleLogin)
	mux.HandleFunc("POST "+p+"/auth/logout/", s.authn(s.handleLogout))
	mux.HandleFunc("GET "+p+"/auth/me/", s.authn(s.handleMe))
	mux.HandleFunc("POST "+p+"/auth/token/refresh/", s.handleRefresh)

	mux.HandleFunc("POST "+p+"/auth/webauthn/register/begin/", s.authn(s.handlePasskeyRegisterBegin))
	mux.HandleFunc("POST "+p+"/auth/webauthn/register/complete/", s.authn(s.handlePasskeyRegisterComplete))
	mux.HandleFunc("POST "+p+"/auth/webauthn/login/begin/", s.handlePasskeyLoginBegin)
	mux.HandleFunc("POST "+p+"/auth/webauthn/login/complete/", s.handlePasskeyLoginComplete)
	mux.HandleFunc("GET "+p+"/auth/webauthn/credentials/", s.authn(s.handlePasskeyList))
	mux.HandleFunc("DELETE "+p+"/auth/webauthn/credentials/{id}/", s.authn(s.handlePasskeyDelete))

	for _, name := range []string{"accounts", "transactions", "budgets", "categories", "savings-goals"} {
		mux.HandleFunc("GET "+p+"/"+name+"/", s.authn(s.handleList(name, true)))
		mux.HandleFunc("GET "+p+"/"+name+"/{id}/", s.authn(s.handleGet(name)))
		mux.HandleFunc("DELETE "+p+"/"+name+"/{id}/", s.authn(s.handleDelete(name)))
	}
	mux.HandleFunc("POST "+p+"/accounts/", s.authn(s.handleCreateAccount))
	mux.HandleFunc("GET "+p+"/accounts/summary/", s.authn(s.handleAccountSummary))
	mux.HandleFunc("GET "+p+"/transactions/statistics/", s.authn(s.handleTransactionStats))
	mux.HandleFunc("GET "+p+"/budgets/summary/", s.authn(s.handleBudgetSummary))

	mux.HandleFunc("GET "+p+"/alerts/", s.authn(s.handleList("alerts", false)))
	mux.HandleFunc("GET "+p+"/alerts/count/", s.authn(s.handleAlertCount))
	mux.HandleFunc("POST "+p+"/alerts/{id}/dismiss/", s.authn(s.handleAlertDismiss))

	mux.HandleFunc("GET "+p+"/auth/tokens/", s.authn(s.handleList("tokens", false)))
	mux.HandleFunc("POST "+p+"/auth/tokens/create/", s.authn(s.handleCreateAPIToken))
	mux.HandleFunc("DELETE "+p+"/auth/tokens/{id}/", s.authn(s.handleDelete("tokens")))

	return s.intercept(mux)
}
