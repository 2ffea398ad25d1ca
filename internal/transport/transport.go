// Package transport performs single HTTPS requests against the service.
// It handles cookie headers, form encoding headers and redirect capture, and
// reports each exchange as a Response or an Error without following redirects
// or retrying.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/loosehose/sunvoy/internal/config"
	"github.com/loosehose/sunvoy/internal/session"
)

var tracer = otel.Tracer("sunvoy/transport")

// ErrInsecureURL is returned by New for base URLs that are not https.
var ErrInsecureURL = errors.New("base URL must use https")

// =============================================================================
// Client
// =============================================================================

// Client issues requests to one fixed host.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient replaces the underlying net/http client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout bounds each request. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a Client for baseURL, which must be an https URL with a host.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInsecureURL, baseURL)
	}

	o := options{
		timeout:   config.DefaultHTTPTimeout,
		userAgent: config.UserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}

	// Cookies are carried by session.Session, never by a jar.
	rc.SetCookieJar(nil)
	rc.SetBaseURL(u.Scheme + "://" + u.Host)
	rc.SetTimeout(o.timeout)
	rc.SetHeader("User-Agent", o.userAgent)
	rc.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	rc.SetLogger(o.logger.Sugar())
	rc.SetPreRequestHook(fixedLengthPost)

	return &Client{http: rc, logger: o.logger}, nil
}

// fixedLengthPost makes an empty POST go out with Content-Length: 0. resty
// hands net/http a reader of unknown length for an empty body, which would
// otherwise be sent chunked.
func fixedLengthPost(_ *resty.Client, hr *http.Request) error {
	if hr.Method == http.MethodPost && hr.ContentLength <= 0 {
		hr.Body = http.NoBody
		hr.GetBody = nil
		hr.ContentLength = 0
	}
	return nil
}

// =============================================================================
// Requests
// =============================================================================

// Request describes one call. Body is sent for POST only and should already be
// URL-encoded.
type Request struct {
	Method string
	Path   string
	Body   string
}

// Get builds a GET request for path.
func Get(path string) Request {
	return Request{Method: http.MethodGet, Path: path}
}

// PostForm builds a POST request carrying an encoded form body.
func PostForm(path, body string) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

// Do performs req with the cookies of sess and returns the response together
// with sess updated by any Set-Cookie headers. On a connection-level failure it
// returns a *Error and sess unchanged.
func (c *Client) Do(ctx context.Context, sess session.Session, req Request) (*Response, session.Session, error) {
	ctx, span := tracer.Start(ctx, "transport.Do")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.path", req.Path),
	)

	r := c.http.R().SetContext(ctx)
	if cookie := sess.Header(); cookie != "" {
		r.SetHeader("Cookie", cookie)
	}
	if req.Method == http.MethodPost {
		r.SetHeader("Content-Type", "application/x-www-form-urlencoded").
			SetContentLength(true).
			SetBody(req.Body)
	}

	res, err := r.Execute(req.Method, req.Path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request did not complete")
		c.logger.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err))
		return nil, sess, &Error{Method: req.Method, Path: req.Path, Err: err}
	}

	setCookies := res.Header().Values("Set-Cookie")
	next := sess.Absorb(setCookies)

	out := &Response{
		Status:   res.StatusCode(),
		Body:     string(res.Body()),
		Location: res.Header().Get("Location"),
	}
	span.SetAttributes(attribute.Int("http.status_code", out.Status))

	c.logger.Debug("request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", out.Status),
		zap.Int("bytes", len(out.Body)),
		zap.Int("set_cookies", len(setCookies)),
		zap.String("location", out.Location))

	return out, next, nil
}
