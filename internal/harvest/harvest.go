// Package harvest orchestrates a complete run: reuse or establish a session,
// fetch the directory and the current user's profile, merge them and write
// the result.
package harvest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/loosehose/sunvoy/internal/auth"
	"github.com/loosehose/sunvoy/internal/session"
	"github.com/loosehose/sunvoy/internal/types"
	"github.com/loosehose/sunvoy/internal/ui"
)

// =============================================================================
// Dependencies
// =============================================================================

// Authenticator signs a session in.
type Authenticator interface {
	Login(ctx context.Context, sess session.Session) (session.Session, error)
}

// DirectoryFetcher lists users.
type DirectoryFetcher interface {
	Fetch(ctx context.Context, sess session.Session) ([]types.User, session.Session, error)
}

// ProfileFetcher scrapes the current user.
type ProfileFetcher interface {
	Fetch(ctx context.Context, sess session.Session) (*types.Profile, session.Session, error)
}

// SessionLoader restores a saved session.
type SessionLoader interface {
	Load() (session.Session, bool)
}

// RecordWriter persists the merged records.
type RecordWriter interface {
	Write(records []types.Record) error
	Path() string
}

// Deps groups the collaborators of a Harvester.
type Deps struct {
	Store     SessionLoader
	Auth      Authenticator
	Directory DirectoryFetcher
	Profile   ProfileFetcher
	Output    RecordWriter
	Logger    *zap.Logger
}

// =============================================================================
// Harvester
// =============================================================================

// Harvester runs the workflow once per Run call.
type Harvester struct {
	store     SessionLoader
	auth      Authenticator
	directory DirectoryFetcher
	profile   ProfileFetcher
	output    RecordWriter
	logger    *zap.Logger

	state State
}

// Result summarizes a finished run.
type Result struct {
	Records []types.Record

	// SessionReused is true when the saved session passed the probe.
	SessionReused bool
	// LoginAttempts is 0 or 1; a run never logs in twice.
	LoginAttempts int
	// LoggedIn is true when a login attempt was accepted.
	LoggedIn bool
	// Degraded lists the steps that failed without aborting the run.
	Degraded []string
}

// New returns a Harvester. A nil logger disables diagnostic logging.
func New(d Deps) *Harvester {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harvester{
		store:     d.Store,
		auth:      d.Auth,
		directory: d.Directory,
		profile:   d.Profile,
		output:    d.Output,
		logger:    logger,
		state:     StateNoSession,
	}
}

// State reports where the last Run got to.
func (h *Harvester) State() State {
	return h.state
}

// Run executes the workflow. Degraded fetches (directory or profile failing)
// are reported and the run continues; a failed login request, a canceled
// context or a failed write aborts it.
func (h *Harvester) Run(ctx context.Context) (*Result, error) {
	ui.Header("Sunvoy User Harvest")

	result := &Result{}
	h.enter(StateNoSession)

	// Phase 1: session
	ui.Phase(1, "Establishing session")
	sess, err := h.establishSession(ctx, result)
	if err != nil {
		return nil, err
	}

	// Phase 2: data
	h.enter(StateFetchingData)
	ui.Phase(2, "Fetching data")

	ui.Info("Fetching users...")
	users, sess, err := h.directory.Fetch(ctx, sess)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		h.logger.Warn("directory fetch failed, continuing with no users", zap.Error(err))
		ui.Warning("Could not fetch users: %v", err)
		result.Degraded = append(result.Degraded, fmt.Sprintf("users: %v", err))
		users = nil
	}
	ui.Success("Found %d users", len(users))

	ui.Info("Fetching current user details...")
	current, _, err := h.profile.Fetch(ctx, sess)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		h.logger.Warn("profile fetch failed, continuing without current user", zap.Error(err))
		ui.Warning("Could not fetch current user: %v", err)
		result.Degraded = append(result.Degraded, fmt.Sprintf("current user: %v", err))
		current = nil
	}

	// Phase 3: merge and write
	h.enter(StateMerging)
	ui.Phase(3, "Merging and saving")
	result.Records = Merge(users, current)

	if err := h.output.Write(result.Records); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	h.enter(StateDone)
	ui.Success("Success! Saved %d users to %s", len(result.Records), h.output.Path())

	h.printSummary(result)
	return result, nil
}

// establishSession returns a session to fetch with, logging in at most once.
func (h *Harvester) establishSession(ctx context.Context, result *Result) (session.Session, error) {
	sess, ok := h.store.Load()
	if !ok {
		ui.Info("No saved session found")
		return h.login(ctx, sess, result)
	}

	h.enter(StateTestingSession)
	ui.Info("Testing saved session...")

	users, probed, err := h.directory.Fetch(ctx, sess)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return sess, ctx.Err()
		}
		h.logger.Debug("session probe failed", zap.Error(err))
	case len(users) == 0:
		// An empty directory cannot be told apart from an unauthenticated one
		// by this endpoint, so it is treated as expired too.
		h.logger.Debug("session probe returned no users")
	default:
		h.enter(StateSessionValid)
		result.SessionReused = true
		ui.Success("Session is valid!")
		return probed, nil
	}

	h.enter(StateSessionExpired)
	ui.Warning("Session expired")
	return h.login(ctx, probed, result)
}

func (h *Harvester) login(ctx context.Context, sess session.Session, result *Result) (session.Session, error) {
	result.LoginAttempts++
	next, err := h.auth.Login(ctx, sess)
	switch {
	case err == nil:
		result.LoggedIn = true
		return next, nil
	case errors.Is(err, auth.ErrLoginRejected):
		h.logger.Warn("login rejected, continuing with current session", zap.Error(err))
		ui.Warning("Login failed: %v", err)
		result.Degraded = append(result.Degraded, fmt.Sprintf("login: %v", err))
		return next, nil
	default:
		return sess, fmt.Errorf("login: %w", err)
	}
}

func (h *Harvester) enter(s State) {
	if h.state != s {
		h.logger.Debug("state", zap.Stringer("from", h.state), zap.Stringer("to", s))
	}
	h.state = s
}

func (h *Harvester) printSummary(r *Result) {
	ui.Header("Summary")
	ui.Stat("Session reused", r.SessionReused)
	ui.Stat("Login attempts", r.LoginAttempts)
	ui.Stat("Records written", len(r.Records))
	ui.Detail("%s", h.output.Path())
	for _, rec := range r.Records {
		if rec.IsCurrent {
			ui.Stat("Current user", rec.Email)
		}
	}
	if len(r.Degraded) > 0 {
		ui.Stat("Degraded steps", len(r.Degraded))
		for _, d := range r.Degraded {
			ui.Detail("%s", d)
		}
	}
}
