// Package session holds the cookie set exchanged with the service and its
// on-disk cache.
//
// A Session is treated as a value: requests receive one and hand back a new one
// carrying whatever the response set, so there is no shared mutable cookie
// state between components.
package session

import (
	"sort"
	"strings"
)

// Session maps cookie names to values.
type Session struct {
	cookies map[string]string
}

// New returns a session holding a copy of cookies.
func New(cookies map[string]string) Session {
	s := Session{cookies: make(map[string]string, len(cookies))}
	for k, v := range cookies {
		s.cookies[k] = v
	}
	return s
}

// Len reports the number of cookies held.
func (s Session) Len() int {
	return len(s.cookies)
}

// Get returns the value of a cookie.
func (s Session) Get(name string) (string, bool) {
	v, ok := s.cookies[name]
	return v, ok
}

// Cookies returns a copy of the cookie map.
func (s Session) Cookies() map[string]string {
	out := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		out[k] = v
	}
	return out
}

// Header renders the session as a Cookie request header value, entries sorted
// by name and joined with "; ". It is empty when no cookies are held.
func (s Session) Header() string {
	if len(s.cookies) == 0 {
		return ""
	}

	names := make([]string, 0, len(s.cookies))
	for k := range s.cookies {
		names = append(names, k)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, k := range names {
		pairs = append(pairs, k+"="+s.cookies[k])
	}
	return strings.Join(pairs, "; ")
}

// Absorb returns a new session with every Set-Cookie header applied in order.
// Only the name=value part before the first ';' is kept; later values win and
// nothing is ever removed.
func (s Session) Absorb(setCookies []string) Session {
	if len(setCookies) == 0 {
		return s
	}

	next := New(s.cookies)
	for _, raw := range setCookies {
		pair, _, _ := strings.Cut(raw, ";")
		name, value, _ := strings.Cut(pair, "=")
		next.cookies[name] = value
	}
	return next
}
