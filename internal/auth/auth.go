// Package auth performs the nonce-protected form login.
// A GET of the login page yields a one-time nonce; the credentials are then
// posted together with it and a 302 response means the session is signed in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/loosehose/sunvoy/internal/config"
	"github.com/loosehose/sunvoy/internal/extract"
	"github.com/loosehose/sunvoy/internal/session"
	"github.com/loosehose/sunvoy/internal/transport"
	"github.com/loosehose/sunvoy/internal/ui"
)

var tracer = otel.Tracer("sunvoy/auth")

// ErrLoginRejected means the credential post did not answer with a redirect.
var ErrLoginRejected = errors.New("login rejected")

// Doer is the request surface the authenticator needs.
type Doer interface {
	Do(ctx context.Context, sess session.Session, req transport.Request) (*transport.Response, session.Session, error)
}

// Authenticator signs a session in and caches it.
type Authenticator struct {
	client   Doer
	parser   extract.Parser
	store    *session.Store
	username string
	password string
	logger   *zap.Logger
}

// Credentials are the form values posted to the login endpoint.
type Credentials struct {
	Username string
	Password string
}

// DemoCredentials returns the built-in demo account.
func DemoCredentials() Credentials {
	return Credentials{Username: config.DefaultUsername, Password: config.DefaultPassword}
}

// NewAuthenticator wires an Authenticator. A nil logger disables logging.
func NewAuthenticator(client Doer, parser extract.Parser, store *session.Store, creds Credentials, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		client:   client,
		parser:   parser,
		store:    store,
		username: creds.Username,
		password: creds.Password,
		logger:   logger,
	}
}

// Login runs the two-step login once and returns the session carrying whatever
// cookies the exchange set. A non-redirect answer yields ErrLoginRejected;
// there is no retry.
func (a *Authenticator) Login(ctx context.Context, sess session.Session) (session.Session, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	ui.Info("Logging in...")

	// Step 1: fetch the form for its nonce
	res, sess, err := a.client.Do(ctx, sess, transport.Get(config.LoginPath))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return sess, fmt.Errorf("fetch login page: %w", err)
	}

	nonce := a.parser.Nonce(res.Body)
	if nonce == "" {
		a.logger.Warn("login page has no nonce, posting without one", zap.Int("status", res.Status))
	}

	// Step 2: post credentials
	res, sess, err = a.client.Do(ctx, sess, transport.PostForm(config.LoginPath, a.formBody(nonce)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post credentials")
		return sess, fmt.Errorf("post credentials: %w", err)
	}

	if err := res.Expect(http.MethodPost, config.LoginPath, http.StatusFound); err != nil {
		span.SetStatus(codes.Error, ErrLoginRejected.Error())
		return sess, fmt.Errorf("%w: %w", ErrLoginRejected, err)
	}

	if err := a.store.Save(sess); err != nil {
		ui.Warning("Could not cache session: %v", err)
	}

	a.logger.Debug("login redirected", zap.String("location", res.Location), zap.Int("cookies", sess.Len()))
	ui.Success("Login successful!")
	return sess, nil
}

// formBody keeps the username, password, nonce field order the form uses.
func (a *Authenticator) formBody(nonce string) string {
	return "username=" + url.QueryEscape(a.username) +
		"&password=" + url.QueryEscape(a.password) +
		"&nonce=" + url.QueryEscape(nonce)
}
