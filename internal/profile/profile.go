// Package profile scrapes the signed-in user's own record from the settings
// page, the only place the service exposes it.
package profile

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/loosehose/sunvoy/internal/config"
	"github.com/loosehose/sunvoy/internal/extract"
	"github.com/loosehose/sunvoy/internal/session"
	"github.com/loosehose/sunvoy/internal/transport"
	"github.com/loosehose/sunvoy/internal/types"
)

var tracer = otel.Tracer("sunvoy/profile")

// Doer is the request surface the scraper needs.
type Doer interface {
	Do(ctx context.Context, sess session.Session, req transport.Request) (*transport.Response, session.Session, error)
}

// Scraper fetches and parses the settings page.
type Scraper struct {
	client Doer
	parser extract.Parser
}

// NewScraper returns a Scraper using client and parser.
func NewScraper(client Doer, parser extract.Parser) *Scraper {
	return &Scraper{client: client, parser: parser}
}

// Fetch returns the current user's profile. A page that loads but lacks some
// fields still yields a profile (with placeholders); a failed request or a
// non-200 answer yields no profile and an error.
func (s *Scraper) Fetch(ctx context.Context, sess session.Session) (*types.Profile, session.Session, error) {
	ctx, span := tracer.Start(ctx, "profile.Fetch")
	defer span.End()

	res, sess, err := s.client.Do(ctx, sess, transport.Get(config.SettingsPath))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch settings")
		return nil, sess, err
	}

	if err := res.Expect(http.MethodGet, config.SettingsPath, http.StatusOK); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, sess, err
	}

	p := s.parser.Profile(res.Body)
	return &p, sess, nil
}
