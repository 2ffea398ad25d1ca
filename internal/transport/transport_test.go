package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/loosehose/sunvoy/internal/session"
)

type seen struct {
	method        string
	path          string
	cookie        string
	hasCookie     bool
	contentType   string
	contentLength int64
	lengthHeader  string
	chunked       bool
	body          string
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewTLSServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return c, srv
}

func record(into *[]seen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, hasCookie := r.Header["Cookie"]
		*into = append(*into, seen{
			method:        r.Method,
			path:          r.URL.Path,
			cookie:        r.Header.Get("Cookie"),
			hasCookie:     hasCookie,
			contentType:   r.Header.Get("Content-Type"),
			contentLength: r.ContentLength,
			lengthHeader:  r.Header.Get("Content-Length"),
			chunked:       len(r.TransferEncoding) > 0,
			body:          string(body),
		})
	}
}

func TestNewRejectsInsecureURL(t *testing.T) {
	for _, u := range []string{"http://challenge.sunvoy.com", "challenge.sunvoy.com", "https://", "://bad"} {
		_, err := New(u)
		assert.Error(t, err, u)
	}

	_, err := New("http://challenge.sunvoy.com")
	assert.ErrorIs(t, err, ErrInsecureURL)
}

func TestDoGetWithoutCookies(t *testing.T) {
	var reqs []seen
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		record(&reqs)(w, r)
		w.Write([]byte("<html>login</html>"))
	})

	res, sess, err := c.Do(context.Background(), session.Session{}, Get("/login"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.OK())
	assert.Equal(t, "<html>login</html>", res.Body)
	assert.Zero(t, sess.Len())

	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].method)
	assert.Equal(t, "/login", reqs[0].path)
	assert.False(t, reqs[0].hasCookie, "no Cookie header expected for an empty session")
}

func TestDoPostSetsFormHeaders(t *testing.T) {
	var reqs []seen
	c, _ := newTestClient(t, record(&reqs))

	sess := session.New(map[string]string{"sid": "1"})
	_, _, err := c.Do(context.Background(), sess, PostForm("/login", "username=a&password=b&nonce=n"))
	require.NoError(t, err)
	_, _, err = c.Do(context.Background(), sess, PostForm("/api/users", ""))
	require.NoError(t, err)

	require.Len(t, reqs, 2)
	assert.Equal(t, "application/x-www-form-urlencoded", reqs[0].contentType)
	assert.EqualValues(t, len("username=a&password=b&nonce=n"), reqs[0].contentLength)
	assert.Equal(t, "username=a&password=b&nonce=n", reqs[0].body)
	assert.Equal(t, "sid=1", reqs[0].cookie)

	assert.Equal(t, "application/x-www-form-urlencoded", reqs[1].contentType)
	assert.EqualValues(t, 0, reqs[1].contentLength)
	assert.Empty(t, reqs[1].body)
}

func TestDoEmptyPostSendsZeroContentLength(t *testing.T) {
	var reqs []seen
	c, _ := newTestClient(t, record(&reqs))

	_, _, err := c.Do(context.Background(), session.Session{}, PostForm("/api/users", ""))
	require.NoError(t, err)
	_, _, err = c.Do(context.Background(), session.Session{}, PostForm("/login", "a=1"))
	require.NoError(t, err)

	require.Len(t, reqs, 2)
	assert.Equal(t, "0", reqs[0].lengthHeader)
	assert.EqualValues(t, 0, reqs[0].contentLength)
	assert.False(t, reqs[0].chunked, "empty POST must not be sent chunked")

	assert.Equal(t, "3", reqs[1].lengthHeader)
	assert.False(t, reqs[1].chunked)
	assert.Equal(t, "a=1", reqs[1].body)
}

func TestDoAccumulatesCookies(t *testing.T) {
	var reqs []seen
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		record(&reqs)(w, r)
		calls++
		switch calls {
		case 1:
			w.Header().Add("Set-Cookie", "b=2; Path=/; HttpOnly")
		case 2:
			w.Header().Add("Set-Cookie", "a=1")
			w.Header().Add("Set-Cookie", "b=3; Secure")
		}
	})

	ctx := context.Background()
	sess := session.Session{}
	var err error
	for i := 0; i < 3; i++ {
		_, sess, err = c.Do(ctx, sess, Get("/settings"))
		require.NoError(t, err)
	}

	require.Len(t, reqs, 3)
	assert.False(t, reqs[0].hasCookie)
	assert.Equal(t, "b=2", reqs[1].cookie)
	assert.Equal(t, "a=1; b=3", reqs[2].cookie)
	assert.Equal(t, map[string]string{"a": "1", "b": "3"}, sess.Cookies())
}

func TestDoDoesNotFollowRedirects(t *testing.T) {
	var reqs []seen
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		record(&reqs)(w, r)
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "xyz", Path: "/"})
			http.Redirect(w, r, "/list", http.StatusFound)
		}
	})

	res, sess, err := c.Do(context.Background(), session.Session{}, PostForm("/login", "x=1"))
	require.NoError(t, err)
	assert.True(t, res.IsRedirect())
	assert.Equal(t, "/list", res.Location)
	assert.Len(t, reqs, 1)

	v, ok := sess.Get("JSESSIONID")
	require.True(t, ok)
	assert.Equal(t, "xyz", v)
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	srv.Close()

	in := session.New(map[string]string{"sid": "1"})
	res, out, err := c.Do(context.Background(), in, Get("/login"))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "/login", terr.Path)
	assert.Equal(t, in.Cookies(), out.Cookies())
}

func TestDoCanceledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.Do(ctx, session.Session{}, Get("/login"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResponseExpect(t *testing.T) {
	res := &Response{Status: http.StatusUnauthorized}
	assert.False(t, res.OK())

	err := res.Expect(http.MethodPost, "/api/users", http.StatusOK)
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusUnauthorized, serr.Status)
	assert.EqualError(t, err, "POST /api/users: unexpected status 401 (want 200)")

	assert.NoError(t, (&Response{Status: http.StatusOK}).Expect(http.MethodGet, "/", http.StatusOK))
}
