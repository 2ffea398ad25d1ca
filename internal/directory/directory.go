// Package directory lists the service's users.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/loosehose/sunvoy/internal/config"
	"github.com/loosehose/sunvoy/internal/session"
	"github.com/loosehose/sunvoy/internal/transport"
	"github.com/loosehose/sunvoy/internal/types"
)

var tracer = otel.Tracer("sunvoy/directory")

// ErrDecode wraps a users payload that is not a JSON array of users.
var ErrDecode = errors.New("decode users")

// Doer is the request surface the fetcher needs.
type Doer interface {
	Do(ctx context.Context, sess session.Session, req transport.Request) (*transport.Response, session.Session, error)
}

// Fetcher retrieves the user directory.
type Fetcher struct {
	client Doer
}

// NewFetcher returns a Fetcher using client.
func NewFetcher(client Doer) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch posts an empty form to the users endpoint. A genuinely empty directory
// is an empty slice with a nil error; every failure is reported as an error.
func (f *Fetcher) Fetch(ctx context.Context, sess session.Session) ([]types.User, session.Session, error) {
	ctx, span := tracer.Start(ctx, "directory.Fetch")
	defer span.End()

	res, sess, err := f.client.Do(ctx, sess, transport.PostForm(config.UsersPath, ""))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch users")
		return nil, sess, err
	}

	if err := res.Expect(http.MethodPost, config.UsersPath, http.StatusOK); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, sess, err
	}

	var users []types.User
	if err := json.Unmarshal([]byte(res.Body), &users); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse users")
		return nil, sess, fmt.Errorf("%w: %w (body: %s)", ErrDecode, err, truncate(res.Body))
	}
	if users == nil {
		users = []types.User{}
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, sess, nil
}

// truncate shortens response bodies quoted in errors.
func truncate(s string) string {
	const maxLen = 200
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
