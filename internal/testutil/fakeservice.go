// Package testutil provides an in-process stand-in for the remote service so
// the login, directory and scraping code can be exercised over real TLS.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/loosehose/sunvoy/internal/types"
)

// SessionCookie is the cookie name the fake issues after a successful login.
const SessionCookie = "JSESSIONID"

// FakeService imitates the login form, the users API and the settings page.
// Zero-value knobs give a well-behaved service; tests adjust them before
// issuing requests.
type FakeService struct {
	Server *httptest.Server

	Username string
	Password string
	Nonce    string

	// Users is served by POST /api/users unless UsersBody is set.
	Users     []types.User
	UsersBody string

	// Settings is rendered by GET /settings unless SettingsHTML is set.
	Settings       types.Profile
	SettingsHTML   string
	SettingsStatus int

	// LoginStatus overrides the answer to a correct credential post.
	LoginStatus int

	mu       sync.Mutex
	token    string
	issued   int
	counts   map[string]int
	lastForm map[string]string
}

// NewFakeService starts a TLS server; it is closed when the test ends.
func NewFakeService(t testing.TB) *FakeService {
	t.Helper()

	f := &FakeService{
		Username: "demo@example.org",
		Password: "test",
		Nonce:    "a1b2c3d4e5",
		counts:   make(map[string]int),
	}
	f.Server = httptest.NewTLSServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the https base URL of the fake.
func (f *FakeService) URL() string { return f.Server.URL }

// Client trusts the fake's certificate.
func (f *FakeService) Client() *http.Client { return f.Server.Client() }

// Count returns how often method path was requested.
func (f *FakeService) Count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[method+" "+path]
}

// LastLoginForm returns the fields of the most recent credential post.
func (f *FakeService) LastLoginForm() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastForm
}

// ValidCookies returns cookies the fake currently accepts, minting a session
// if none has been issued yet.
func (f *FakeService) ValidCookies() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		f.mint()
	}
	return map[string]string{SessionCookie: f.token}
}

// Expire invalidates every issued session.
func (f *FakeService) Expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
}

func (f *FakeService) mint() {
	f.issued++
	f.token = fmt.Sprintf("session-%d", f.issued)
}

func (f *FakeService) authorized(r *http.Request) bool {
	c, err := r.Cookie(SessionCookie)
	return err == nil && f.token != "" && c.Value == f.token
}

func (f *FakeService) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[r.Method+" "+r.URL.Path]++

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/login":
		http.SetCookie(w, &http.Cookie{Name: "_csrf", Value: "c-" + f.Nonce, Path: "/"})
		fmt.Fprint(w, LoginPage(f.Nonce))

	case r.Method == http.MethodPost && r.URL.Path == "/login":
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.lastForm = map[string]string{
			"username": r.PostForm.Get("username"),
			"password": r.PostForm.Get("password"),
			"nonce":    r.PostForm.Get("nonce"),
		}
		if f.lastForm["username"] != f.Username || f.lastForm["password"] != f.Password || f.lastForm["nonce"] != f.Nonce {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, LoginPage(f.Nonce))
			return
		}
		if f.LoginStatus != 0 {
			w.WriteHeader(f.LoginStatus)
			return
		}
		f.mint()
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: f.token, Path: "/", HttpOnly: true})
		http.Redirect(w, r, "/list", http.StatusFound)

	case r.Method == http.MethodPost && r.URL.Path == "/api/users":
		if !f.authorized(r) {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if f.UsersBody != "" {
			fmt.Fprint(w, f.UsersBody)
			return
		}
		users := f.Users
		if users == nil {
			users = []types.User{}
		}
		json.NewEncoder(w).Encode(users)

	case r.Method == http.MethodGet && r.URL.Path == "/settings":
		if !f.authorized(r) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if f.SettingsStatus != 0 {
			w.WriteHeader(f.SettingsStatus)
			return
		}
		if f.SettingsHTML != "" {
			fmt.Fprint(w, f.SettingsHTML)
			return
		}
		fmt.Fprint(w, SettingsPage(f.Settings))

	default:
		http.NotFound(w, r)
	}
}

// LoginPage renders a login form carrying nonce.
func LoginPage(nonce string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><body>
<form method="post" action="/login">
  <input type="hidden" name="nonce" value="%s">
  <label>Username</label><input type="text" name="username">
  <label>Password</label><input type="password" name="password">
</form>
</body></html>`, nonce)
}

// SettingsPage renders the profile form for p.
func SettingsPage(p types.Profile) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><body>
<form>
  <input type="hidden" name="userId" value="%s">
  <div><label for="firstName">First Name</label><input id="firstName" value="%s"></div>
  <div><label for="lastName">Last Name</label><input id="lastName" value="%s"></div>
  <div><label for="email">Email</label><input id="email" type="email" value="%s"></div>
</form>
</body></html>`, p.ID, p.FirstName, p.LastName, p.Email)
}
